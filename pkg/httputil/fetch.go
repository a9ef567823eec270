package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/octavate/labelgraph/pkg/buildinfo"
	"github.com/octavate/labelgraph/pkg/errors"
)

// Defaults used by [NewFetcher].
const (
	DefaultTimeout  = 60 * time.Second
	DefaultAttempts = 3
	DefaultDelay    = time.Second
	DefaultMaxBytes = 256 << 20
)

// Fetcher downloads documents.
type Fetcher struct {
	Client   *http.Client
	Attempts int
	Delay    time.Duration
	MaxBytes int64
}

// NewFetcher returns a Fetcher with the default settings.
func NewFetcher() *Fetcher {
	return &Fetcher{
		Client:   &http.Client{Timeout: DefaultTimeout},
		Attempts: DefaultAttempts,
		Delay:    DefaultDelay,
		MaxBytes: DefaultMaxBytes,
	}
}

// IsURL reports whether src should be fetched rather than opened.
func IsURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// Fetch GETs url and returns the body.
//
// A 404 is coded NOT_FOUND, other 4xx responses and oversized bodies
// INVALID_INPUT, and failures that persist after retrying NETWORK_ERROR.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	err := Retry(ctx, f.Attempts, f.Delay, func() error {
		var err error
		body, err = f.get(ctx, url)
		return err
	})
	if err == nil {
		return body, nil
	}
	if errors.GetCode(err) != "" || ctx.Err() != nil {
		return nil, err
	}
	return nil, errors.Wrap(errors.ErrCodeNetwork, err, "fetch %s", url)
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "fetch %s", url)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", buildinfo.UserAgent())

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &RetryableError{Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, &RetryableError{Err: fmt.Errorf("fetch %s: %s", url, resp.Status)}
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.New(errors.ErrCodeNotFound, "fetch %s: %s", url, resp.Status)
	case resp.StatusCode >= 300:
		return nil, errors.New(errors.ErrCodeInvalidInput, "fetch %s: %s", url, resp.Status)
	}

	limit := f.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, &RetryableError{Err: fmt.Errorf("read %s: %w", url, err)}
	}
	if int64(len(data)) > limit {
		return nil, errors.New(errors.ErrCodeInvalidInput, "fetch %s: body exceeds %d bytes", url, limit)
	}
	return data, nil
}
