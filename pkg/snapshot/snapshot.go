// Package snapshot persists full editor state so a session can be resumed
// later: the current container, the entire undo history, and the cursor
// into it.
//
// Three stores ship with the package: an in-memory store for tests and
// single-process servers, a file store for CLI usage, and a Redis store
// for multi-instance deployments. All stores speak the same JSON record,
// so state written by one backend restores from any other.
package snapshot

import (
	"context"
	"time"

	"github.com/shelfworks/shelfstack/pkg/planogram"
)

// DefaultTTL is how long a saved session survives without activity.
const DefaultTTL = 48 * time.Hour

// Record is the persisted editor state. History holds every container
// snapshot in chronological order; HistoryIndex is the cursor of the
// current state within it.
type Record struct {
	Container    planogram.Container   `json:"container"`
	History      []planogram.Container `json:"history"`
	HistoryIndex int                   `json:"historyIndex"`
	LayoutID     string                `json:"layoutId"`
	Timestamp    time.Time             `json:"timestamp"`
}

// Store persists session records under caller-chosen keys.
//
// Load reports a missing or expired record as ok=false with a nil error;
// errors are reserved for backend failures. A ttl of zero means the
// backend's notion of "no expiry".
type Store interface {
	Save(ctx context.Context, key string, rec Record, ttl time.Duration) error
	Load(ctx context.Context, key string) (Record, bool, error)
	Delete(ctx context.Context, key string) error
	Close() error
}
