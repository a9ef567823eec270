// Package httputil downloads label documents over HTTP.
//
// # Overview
//
// Catalog exports are often published by a scraper job rather than copied to
// the machine running the conversion. Anything that accepts an input path
// also accepts an http:// or https:// URL; [Fetcher] does the download.
//
//   - [Fetcher]: GET with size limit, status mapping and retries
//   - [Retry]: Automatic retry with exponential backoff
//
// # Retry
//
// Transient failures are retried:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// Other 4xx responses fail immediately. The delay doubles after each
// attempt:
//
//	f := httputil.NewFetcher()
//	data, err := f.Fetch(ctx, "https://example.com/Complete_OctavateArtistsList.json")
//
// # Configuration
//
// Default settings are suitable for most use cases:
//
//   - Timeout: 60 seconds per attempt
//   - Max attempts: 3
//   - Base backoff: 1 second
//   - Max body size: 256 MiB
package httputil
