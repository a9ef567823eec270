// Package storage groups the sinks that persist conversion output outside the
// local filesystem.
//
//   - [mongostore]: keeps every conversion run as one MongoDB document
//   - [neo4jstore]: merges the graph into a Neo4j database
//
// Both sinks verify connectivity when created, retrying transient failures
// with [cache.RetryWithBackoff], and report writes through
// [observability.Publish].
//
// [mongostore]: github.com/octavate/labelgraph/pkg/storage/mongostore
// [neo4jstore]: github.com/octavate/labelgraph/pkg/storage/neo4jstore
// [cache.RetryWithBackoff]: github.com/octavate/labelgraph/pkg/cache.RetryWithBackoff
// [observability.Publish]: github.com/octavate/labelgraph/pkg/observability.Publish
package storage
