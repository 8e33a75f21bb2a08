// Package editor binds the planogram engine, the undo history, and the
// export transform into one editing session.
//
// A Session owns the live container. Every mutation goes through the
// engine's copy-on-write operations; on success the new state is pushed
// onto the history log, on failure the session is untouched and the
// placement error is returned as-is. Undo and redo restore full snapshots.
//
// Session is not goroutine-safe; callers holding one session across
// goroutines (the HTTP server does) must serialize access themselves.
package editor

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/shelfworks/shelfstack/pkg/export"
	"github.com/shelfworks/shelfstack/pkg/history"
	"github.com/shelfworks/shelfstack/pkg/observability"
	"github.com/shelfworks/shelfstack/pkg/planogram"
	"github.com/shelfworks/shelfstack/pkg/snapshot"
)

// Session is one live editing session over a container.
type Session struct {
	ID       string
	LayoutID string

	engine    planogram.Engine
	container planogram.Container
	log       *history.Log
}

// New opens a session over an initial container, usually one freshly built
// from a layout template. rules toggles the business placement checks;
// physical checks always apply.
func New(layoutID string, initial planogram.Container, rules bool) *Session {
	return &Session{
		ID:        uuid.NewString(),
		LayoutID:  layoutID,
		engine:    planogram.Engine{Rules: rules},
		container: initial.Clone(),
		log:       history.New(initial),
	}
}

// Restore reopens a session from a persisted record. The session gets a
// fresh identifier; the record key belongs to the store, not the session.
func Restore(rec snapshot.Record, rules bool) *Session {
	return &Session{
		ID:        uuid.NewString(),
		LayoutID:  rec.LayoutID,
		engine:    planogram.Engine{Rules: rules},
		container: rec.Container.Clone(),
		log:       history.Restore(rec.History, rec.HistoryIndex),
	}
}

// Container returns a copy of the current state.
func (s *Session) Container() planogram.Container {
	return s.container.Clone()
}

// RulesEnabled reports whether business placement checks are active.
func (s *Session) RulesEnabled() bool { return s.engine.Rules }

// CanUndo reports whether an undo step is available.
func (s *Session) CanUndo() bool { return s.log.CanUndo() }

// CanRedo reports whether a redo step is available.
func (s *Session) CanRedo() bool { return s.log.CanRedo() }

// apply commits a successful mutation or surfaces the rejection untouched.
func (s *Session) apply(ctx context.Context, op string, next planogram.Container, err error, started time.Time) error {
	observability.Editor().OnMutation(ctx, s.ID, op, time.Since(started), err)
	if err != nil {
		return err
	}
	s.container = next
	s.log.Push(next)
	return nil
}

// AddItem places a new item as a new stack in a row. index -1 appends.
func (s *Session) AddItem(ctx context.Context, doorID, rowID string, item planogram.Item, index int) error {
	started := time.Now()
	next, err := s.engine.AddItem(s.container, doorID, rowID, item, index)
	return s.apply(ctx, "add", next, err, started)
}

// MoveStack moves the stack containing itemID to a new row position.
func (s *Session) MoveStack(ctx context.Context, itemID, targetDoorID, targetRowID string, targetIndex int) error {
	started := time.Now()
	next, err := s.engine.MoveStack(s.container, itemID, targetDoorID, targetRowID, targetIndex)
	return s.apply(ctx, "move", next, err, started)
}

// StackOnto drops the stack containing draggedItemID on top of a target stack.
func (s *Session) StackOnto(ctx context.Context, draggedItemID string, target planogram.StackRef) error {
	started := time.Now()
	next, err := s.engine.StackOnto(s.container, draggedItemID, target)
	return s.apply(ctx, "stack", next, err, started)
}

// RemoveItem deletes one item.
func (s *Session) RemoveItem(ctx context.Context, itemID string) error {
	started := time.Now()
	next, err := s.engine.RemoveItem(s.container, itemID)
	return s.apply(ctx, "remove", next, err, started)
}

// RemoveItems deletes several items in one undoable step.
func (s *Session) RemoveItems(ctx context.Context, itemIDs []string) error {
	started := time.Now()
	next, err := s.engine.RemoveItems(s.container, itemIDs)
	return s.apply(ctx, "remove", next, err, started)
}

// DuplicateAsNewStack clones an item into a new stack beside its own.
func (s *Session) DuplicateAsNewStack(ctx context.Context, itemID string) error {
	started := time.Now()
	next, err := s.engine.DuplicateAsNewStack(s.container, itemID)
	return s.apply(ctx, "duplicate", next, err, started)
}

// DuplicateOntoStack clones an item onto the top of its own stack.
func (s *Session) DuplicateOntoStack(ctx context.Context, itemID string) error {
	started := time.Now()
	next, err := s.engine.DuplicateOntoStack(s.container, itemID)
	return s.apply(ctx, "duplicate", next, err, started)
}

// ReplaceItem swaps an item for a fresh instance of another product.
func (s *Session) ReplaceItem(ctx context.Context, itemID string, replacement planogram.Item) error {
	started := time.Now()
	next, err := s.engine.ReplaceItem(s.container, itemID, replacement)
	return s.apply(ctx, "replace", next, err, started)
}

// UpdateAdjustableWidth resizes an adjustable filler.
func (s *Session) UpdateAdjustableWidth(ctx context.Context, itemID string, widthMM int) error {
	started := time.Now()
	next, err := s.engine.UpdateAdjustableWidth(s.container, itemID, widthMM)
	return s.apply(ctx, "resize", next, err, started)
}

// ReorderStack moves a stack to a new position inside its own row. A
// reorder that lands back on its own index is accepted but not recorded,
// so undo never replays an identical snapshot.
func (s *Session) ReorderStack(ctx context.Context, doorID, rowID string, fromIndex, toIndex int) error {
	started := time.Now()
	next, err := s.engine.ReorderStack(s.container, doorID, rowID, fromIndex, toIndex)
	if err == nil && fromIndex == toIndex {
		observability.Editor().OnMutation(ctx, s.ID, "reorder", time.Since(started), nil)
		return nil
	}
	return s.apply(ctx, "reorder", next, err, started)
}

// Undo steps back one snapshot. Returns false when at the start of history.
func (s *Session) Undo(ctx context.Context) bool {
	prev, ok := s.log.Undo()
	observability.Editor().OnUndo(ctx, s.ID, "undo", ok)
	if ok {
		s.container = prev
	}
	return ok
}

// Redo steps forward one snapshot. Returns false when at the end of history.
func (s *Session) Redo(ctx context.Context) bool {
	next, ok := s.log.Redo()
	observability.Editor().OnUndo(ctx, s.ID, "redo", ok)
	if ok {
		s.container = next
	}
	return ok
}

// ClearAll empties every row of every door and resets history. The cleared
// state becomes the new history root; clear-all is deliberately not
// undoable.
func (s *Session) ClearAll(ctx context.Context) {
	cleared := s.container.Clone()
	for doorID, door := range cleared.Doors {
		for rowID, row := range door.Rows {
			row.Stacks = nil
			door.Rows[rowID] = row
		}
		cleared.Doors[doorID] = door
	}
	s.container = cleared
	s.log.Reset(cleared)
	observability.Editor().OnMutation(ctx, s.ID, "clear", 0, nil)
}

// LegalTargets computes the drop targets for a candidate within one door.
func (s *Session) LegalTargets(ctx context.Context, doorID string, cand planogram.Candidate) planogram.Targets {
	started := time.Now()
	targets := s.engine.LegalTargets(s.container, doorID, cand)
	observability.Editor().OnValidation(ctx, s.ID, "targets", len(targets.Rows)+len(targets.Stacks), time.Since(started))
	return targets
}

// Conflicts sweeps the whole container for rule violations.
func (s *Session) Conflicts(ctx context.Context) planogram.Conflicts {
	started := time.Now()
	conflicts := s.engine.FindConflicts(s.container)
	observability.Editor().OnValidation(ctx, s.ID, "conflicts", len(conflicts.All()), time.Since(started))
	return conflicts
}

// Export builds the absolute-pixel export document for the current state.
func (s *Session) Export(ctx context.Context, geo export.Geometry) export.Document {
	started := time.Now()
	doc := export.Build(s.container, geo)
	observability.Editor().OnExport(ctx, s.ID, s.container.ItemCount(), time.Since(started))
	return doc
}

// Record captures the full session state for persistence.
func (s *Session) Record() snapshot.Record {
	return snapshot.Record{
		Container:    s.container.Clone(),
		History:      s.log.Snapshots(),
		HistoryIndex: s.log.Cursor(),
		LayoutID:     s.LayoutID,
		Timestamp:    time.Now().UTC(),
	}
}
