package observability

import (
	"context"
	"testing"
	"time"
)

type recordingEditorHooks struct {
	NoopEditorHooks
	mutations int
	lastOp    string
}

func (r *recordingEditorHooks) OnMutation(_ context.Context, _, op string, _ time.Duration, _ error) {
	r.mutations++
	r.lastOp = op
}

type recordingStoreHooks struct {
	NoopStoreHooks
	loads int
}

func (r *recordingStoreHooks) OnLoad(context.Context, string, string, bool, time.Duration, error) {
	r.loads++
}

func TestDefaultHooksAreNoop(t *testing.T) {
	Reset()
	// no panic, no effect
	Editor().OnMutation(context.Background(), "s", "add", time.Millisecond, nil)
	Store().OnSave(context.Background(), "memory", "s", time.Millisecond, nil)
}

func TestSetEditorHooks(t *testing.T) {
	defer Reset()

	rec := &recordingEditorHooks{}
	SetEditorHooks(rec)

	Editor().OnMutation(context.Background(), "s", "move", time.Millisecond, nil)
	Editor().OnMutation(context.Background(), "s", "stack", time.Millisecond, nil)

	if rec.mutations != 2 || rec.lastOp != "stack" {
		t.Errorf("recorded %d mutations, last %q", rec.mutations, rec.lastOp)
	}
}

func TestSetStoreHooks(t *testing.T) {
	defer Reset()

	rec := &recordingStoreHooks{}
	SetStoreHooks(rec)
	Store().OnLoad(context.Background(), "file", "s", true, time.Millisecond, nil)
	if rec.loads != 1 {
		t.Errorf("recorded %d loads", rec.loads)
	}
}

func TestSetNilKeepsCurrent(t *testing.T) {
	defer Reset()

	rec := &recordingEditorHooks{}
	SetEditorHooks(rec)
	SetEditorHooks(nil)

	Editor().OnMutation(context.Background(), "s", "add", 0, nil)
	if rec.mutations != 1 {
		t.Error("nil registration replaced hooks")
	}
}
