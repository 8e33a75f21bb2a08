// Package history maintains the bounded, linear undo/redo log of container
// snapshots.
//
// The log is strictly linear: pushing after an undo discards the redo
// branch, standard linear-undo semantics rather than a DAG. The snapshot at
// the cursor always equals the live container; callers push the
// post-mutation state immediately after every successful mutation.
package history

import "github.com/shelfworks/shelfstack/pkg/planogram"

// DefaultLimit is the maximum number of snapshots retained. Older entries
// fall off the front; the cursor is adjusted so it keeps pointing at the
// same snapshot.
const DefaultLimit = 50

// Log is a bounded sequence of full container snapshots plus a cursor.
// Snapshots are deep-cloned on the way in and out, so callers can never
// mutate a stored entry in place.
//
// Log is not goroutine-safe; the editor serializes access.
type Log struct {
	snapshots []planogram.Container
	cursor    int
	limit     int
}

// New creates a log seeded with the initial snapshot at cursor 0.
func New(initial planogram.Container) *Log {
	return NewWithLimit(initial, DefaultLimit)
}

// NewWithLimit creates a log with a custom retention cap (minimum 1).
func NewWithLimit(initial planogram.Container, limit int) *Log {
	if limit < 1 {
		limit = 1
	}
	return &Log{
		snapshots: []planogram.Container{initial.Clone()},
		cursor:    0,
		limit:     limit,
	}
}

// Push records a post-mutation snapshot: the redo branch past the cursor is
// discarded, the snapshot appended, and the cursor advanced. When the log
// exceeds its cap the oldest entries are dropped from the front.
func (l *Log) Push(snapshot planogram.Container) {
	l.snapshots = append(l.snapshots[:l.cursor+1], snapshot.Clone())
	l.cursor = len(l.snapshots) - 1

	if excess := len(l.snapshots) - l.limit; excess > 0 {
		l.snapshots = l.snapshots[excess:]
		l.cursor -= excess
	}
}

// Undo steps the cursor back one snapshot and returns it. At the start of
// the log it returns the current snapshot with ok=false.
func (l *Log) Undo() (planogram.Container, bool) {
	if l.cursor == 0 {
		return l.Current(), false
	}
	l.cursor--
	return l.Current(), true
}

// Redo steps the cursor forward one snapshot and returns it. At the end of
// the log it returns the current snapshot with ok=false.
func (l *Log) Redo() (planogram.Container, bool) {
	if l.cursor >= len(l.snapshots)-1 {
		return l.Current(), false
	}
	l.cursor++
	return l.Current(), true
}

// Reset discards the entire log and starts over with the given snapshot at
// cursor 0. This backs the explicit, non-undoable clear-all operation and
// is the only way to deliberately drop prior history.
func (l *Log) Reset(snapshot planogram.Container) {
	l.snapshots = []planogram.Container{snapshot.Clone()}
	l.cursor = 0
}

// Current returns a copy of the snapshot at the cursor.
func (l *Log) Current() planogram.Container {
	return l.snapshots[l.cursor].Clone()
}

// Cursor returns the current history index.
func (l *Log) Cursor() int { return l.cursor }

// Len returns the number of retained snapshots.
func (l *Log) Len() int { return len(l.snapshots) }

// CanUndo reports whether Undo would move the cursor.
func (l *Log) CanUndo() bool { return l.cursor > 0 }

// CanRedo reports whether Redo would move the cursor.
func (l *Log) CanRedo() bool { return l.cursor < len(l.snapshots)-1 }

// Snapshots returns deep copies of all retained snapshots in order, for
// persistence.
func (l *Log) Snapshots() []planogram.Container {
	out := make([]planogram.Container, len(l.snapshots))
	for i, s := range l.snapshots {
		out[i] = s.Clone()
	}
	return out
}

// Restore rebuilds a log from persisted snapshots and cursor. Out-of-range
// cursors are clamped; an empty snapshot list yields a log seeded with an
// empty container.
func Restore(snapshots []planogram.Container, cursor int) *Log {
	if len(snapshots) == 0 {
		return New(planogram.Container{})
	}
	l := &Log{
		snapshots: make([]planogram.Container, len(snapshots)),
		limit:     DefaultLimit,
	}
	for i, s := range snapshots {
		l.snapshots[i] = s.Clone()
	}
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(snapshots)-1 {
		cursor = len(snapshots) - 1
	}
	l.cursor = cursor
	return l
}
