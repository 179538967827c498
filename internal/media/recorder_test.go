package media

import (
	"bytes"
	"testing"
)

func TestRecorderLifecycle(t *testing.T) {
	r := NewRecorder()
	if r.Active() {
		t.Fatal("new recorder should not be active")
	}
	if err := r.Open(); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if !r.Active() {
		t.Fatal("recorder should be active after Open")
	}
	// Opening an already-open recorder is a guarded no-op.
	if err := r.Open(); err != nil {
		t.Fatalf("second Open should be a no-op, got %v", err)
	}

	if err := r.AppendChunk([]byte("part1-")); err != nil {
		t.Fatalf("AppendChunk failed: %v", err)
	}
	if err := r.AppendChunk([]byte("part2")); err != nil {
		t.Fatalf("AppendChunk failed: %v", err)
	}

	blob, err := r.Stop()
	if err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if !bytes.Equal(blob, []byte("part1-part2")) {
		t.Errorf("blob = %q, want part1-part2", blob)
	}

	// Stop is idempotent once finished.
	again, err := r.Stop()
	if err != nil {
		t.Fatalf("second Stop failed: %v", err)
	}
	if !bytes.Equal(again, blob) {
		t.Error("second Stop returned a different blob")
	}

	// The finished handle cannot be reused.
	if err := r.Open(); err == nil {
		t.Error("Open after Stop should fail")
	}
	if err := r.AppendChunk([]byte("late")); err == nil {
		t.Error("AppendChunk after Stop should fail")
	}
}

func TestRecorderChunkMutationDoesNotLeak(t *testing.T) {
	r := NewRecorder()
	if err := r.Open(); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	chunk := []byte("abc")
	if err := r.AppendChunk(chunk); err != nil {
		t.Fatalf("AppendChunk failed: %v", err)
	}
	chunk[0] = 'x'
	blob, err := r.Stop()
	if err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if string(blob) != "abc" {
		t.Errorf("blob = %q, caller mutation leaked into buffer", blob)
	}
}

func TestRecorderStopWithoutData(t *testing.T) {
	r := NewRecorder()
	if err := r.Open(); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := r.Stop(); err == nil {
		t.Error("Stop with no chunks should fail")
	}
}

func TestRecorderStopBeforeOpen(t *testing.T) {
	r := NewRecorder()
	if _, err := r.Stop(); err == nil {
		t.Error("Stop before Open should fail")
	}
}

func TestRecorderCloseReleasesOnAnyPath(t *testing.T) {
	r := NewRecorder()
	if err := r.Open(); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := r.AppendChunk([]byte("data")); err != nil {
		t.Fatalf("AppendChunk failed: %v", err)
	}
	r.Close()
	r.Close() // idempotent
	if r.Active() {
		t.Error("recorder should not be active after Close")
	}
	if err := r.AppendChunk([]byte("more")); err == nil {
		t.Error("AppendChunk after Close should fail")
	}
	if err := r.Open(); err == nil {
		t.Error("released recorder must not be reusable")
	}
}
