package media

import (
	"sync"

	"github.com/mvigneshwaran/health-assistant/internal/apperrors"
)

type recorderState int

const (
	recorderIdle recorderState = iota
	recorderOpen
	recorderStopped
	recorderClosed
)

// Recorder models the three-phase video capture handle: open the stream,
// buffer chunks while recording, stop to finalize a single blob. The
// stream must be released on every exit path, so Close is always safe to
// defer.
type Recorder struct {
	mu     sync.Mutex
	state  recorderState
	chunks [][]byte
	blob   []byte
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// Open acquires the capture stream. Opening an already-open recorder is a
// no-op; a finished or released recorder cannot be reused.
func (r *Recorder) Open() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch r.state {
	case recorderIdle:
		r.state = recorderOpen
		return nil
	case recorderOpen:
		return nil
	default:
		return apperrors.NewCaptureError("recording already finished, open a new capture")
	}
}

// AppendChunk buffers one binary chunk of the active recording.
func (r *Recorder) AppendChunk(p []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != recorderOpen {
		return apperrors.NewCaptureError("no active recording")
	}
	if len(p) == 0 {
		return nil
	}
	buf := make([]byte, len(p))
	copy(buf, p)
	r.chunks = append(r.chunks, buf)
	return nil
}

// Stop finalizes the buffered chunks into one blob. Stopping an
// already-stopped recorder returns the same blob.
func (r *Recorder) Stop() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch r.state {
	case recorderStopped:
		return r.blob, nil
	case recorderOpen:
	default:
		return nil, apperrors.NewCaptureError("no active recording to stop")
	}
	if len(r.chunks) == 0 {
		r.state = recorderStopped
		return nil, apperrors.NewCaptureError("no video data was recorded")
	}
	var size int
	for _, c := range r.chunks {
		size += len(c)
	}
	blob := make([]byte, 0, size)
	for _, c := range r.chunks {
		blob = append(blob, c...)
	}
	r.chunks = nil
	r.blob = blob
	r.state = recorderStopped
	return blob, nil
}

// Close releases the stream and drops any buffered data. Idempotent.
func (r *Recorder) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chunks = nil
	r.blob = nil
	r.state = recorderClosed
}

// Active reports whether the stream is currently held.
func (r *Recorder) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state == recorderOpen
}
