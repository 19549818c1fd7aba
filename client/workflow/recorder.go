package workflow

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"sync"
)

// Recorder captures one audio clip at a time. The stream is single-owner:
// Start while a capture is live returns ErrRecorderBusy, and Stop releases
// the resource even when the result is discarded.
type Recorder interface {
	Start(ctx context.Context) error
	Stop() (io.Reader, error)
}

var (
	// ErrRecorderBusy means a capture is already live.
	ErrRecorderBusy = errors.New("workflow: recorder already started")
	// ErrRecorderIdle means Stop was called without a live capture.
	ErrRecorderIdle = errors.New("workflow: recorder not started")
)

// FileRecorder "records" by reading a prepared audio file when stopped.
// It is what the CLI uses in place of a microphone.
type FileRecorder struct {
	mu   sync.Mutex
	path string
	live bool
}

// NewFileRecorder returns a recorder that yields the contents of path.
func NewFileRecorder(path string) *FileRecorder {
	return &FileRecorder{path: path}
}

func (r *FileRecorder) Start(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.live {
		return ErrRecorderBusy
	}
	r.live = true
	return nil
}

func (r *FileRecorder) Stop() (io.Reader, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.live {
		return nil, ErrRecorderIdle
	}
	r.live = false
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}

// StaticRecorder yields fixed bytes, for tests.
type StaticRecorder struct {
	mu   sync.Mutex
	data []byte
	live bool
}

// NewStaticRecorder returns a recorder that yields data on every capture.
func NewStaticRecorder(data []byte) *StaticRecorder {
	return &StaticRecorder{data: data}
}

func (r *StaticRecorder) Start(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.live {
		return ErrRecorderBusy
	}
	r.live = true
	return nil
}

func (r *StaticRecorder) Stop() (io.Reader, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.live {
		return nil, ErrRecorderIdle
	}
	r.live = false
	return bytes.NewReader(r.data), nil
}

// Live reports whether a capture is currently held. Tests use it to assert
// the stream is released on Close.
func (r *StaticRecorder) Live() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.live
}
