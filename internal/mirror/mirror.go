// Package mirror defines the durable mirror contract: a best-effort sink
// and source the query service uses so published incidents survive
// process restarts. Implementations must make Upsert idempotent — calling
// it repeatedly with the same incident ids and fields leaves the mirrored
// records unchanged.
package mirror

import (
	"context"
	"time"

	"github.com/linnemanlabs/gridwatch/internal/incident"
)

// Store is the durable mirror interface. The service treats every call
// as an isolated failure domain: errors are logged and swallowed, and a
// later query retries naturally by re-attempting the upsert.
type Store interface {
	// Upsert inserts or merges incidents by id.
	Upsert(ctx context.Context, incidents []incident.Public) error

	// Query returns previously mirrored incidents ordered by recency
	// descending, optionally keeping only rows created strictly after
	// since.
	Query(ctx context.Context, limit int, since *time.Time) ([]incident.Public, error)
}
