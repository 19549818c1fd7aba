// Package workflow drives souvenir creation as a state machine: record audio,
// upload it, transcribe, attach or generate an image, review, save. States
// form a tagged union and only the transitions listed on each method are
// legal. One network call runs at a time; triggers arriving while a call is
// in flight are rejected rather than queued.
package workflow

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/echomap/echomap/internal/api/validate"
	"github.com/echomap/echomap/internal/events"
	"github.com/echomap/echomap/internal/model"
)

// State is the workflow's current position.
type State string

const (
	StateIdle            State = "idle"
	StateRecording       State = "recording"
	StateUploading       State = "uploading"
	StateTranscriptReady State = "transcript_ready"
	StateUploadingImage  State = "uploading_image"
	StateGeneratingImage State = "generating_image"
	StateReview          State = "review"
	StateSaved           State = "saved"
	StateClosed          State = "closed"
)

var (
	// ErrIllegalTransition means the event is not legal in the current state.
	ErrIllegalTransition = errors.New("workflow: illegal transition")
	// ErrBusy means a network call is already in flight.
	ErrBusy = errors.New("workflow: call in flight")
	// ErrClosed means the workflow was closed and accepts no more events.
	ErrClosed = errors.New("workflow: closed")
	// ErrNotImage rejects attachments whose MIME type is not image/*.
	ErrNotImage = errors.New("workflow: file must be an image")
	// ErrImageTooLarge rejects attachments above the 5 MB cap.
	ErrImageTooLarge = errors.New("workflow: image exceeds 5 MB")
)

// maxImageBytes mirrors the server-side cap so bad files fail before upload.
const maxImageBytes = 5 << 20

// API is the slice of the service client the workflow drives.
type API interface {
	UploadAudio(ctx context.Context, r io.Reader) (string, error)
	Transcribe(ctx context.Context, audioURL string) (string, error)
	UploadImage(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
	GenerateImage(ctx context.Context, transcript string) (string, error)
	CreateSouvenir(ctx context.Context, req model.CreateSouvenirRequest) (*model.Souvenir, error)
}

// Session is the ephemeral draft owned by one open workflow.
type Session struct {
	Latitude   float64
	Longitude  float64
	Title      string
	Story      string
	AudioURL   string
	ImageURL   string
	Transcript string
}

// Workflow is one creation session. Safe for concurrent use; Close may be
// called from any goroutine while a call is in flight, in which case the
// late result is discarded.
type Workflow struct {
	mu      sync.Mutex
	state   State
	busy    bool
	session Session
	saved   *model.Souvenir

	api API
	rec Recorder
	bus *events.Bus

	// onToast, when set, receives user-facing error messages.
	onToast func(string)
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithToast installs the user-facing error callback.
func WithToast(fn func(string)) Option {
	return func(w *Workflow) { w.onToast = fn }
}

// Open starts a session seeded with the clicked map coordinates.
func Open(api API, rec Recorder, bus *events.Bus, lat, lng float64, opts ...Option) (*Workflow, error) {
	if err := validate.Coordinates(lat, lng); err != nil {
		return nil, err
	}
	w := &Workflow{
		state:   StateIdle,
		session: Session{Latitude: lat, Longitude: lng},
		api:     api,
		rec:     rec,
		bus:     bus,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// State returns the current state.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Session returns a copy of the current draft.
func (w *Workflow) Session() Session {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.session
}

// Saved returns the persisted souvenir after a successful Save, nil before.
func (w *Workflow) Saved() *model.Souvenir {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.saved
}

// StartRecording acquires the recorder. Legal only in Idle. The recorder is
// held exclusively until StopRecording or Close releases it.
func (w *Workflow) StartRecording(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateClosed {
		return ErrClosed
	}
	if w.state != StateIdle {
		return ErrIllegalTransition
	}
	if err := w.rec.Start(ctx); err != nil {
		w.toast("could not start recording")
		return err
	}
	w.state = StateRecording
	return nil
}

// StopRecording stops the recorder, uploads the audio and transcribes it.
// Legal only in Recording. On success the workflow lands in TranscriptReady;
// on failure it reverts to Idle so the user can re-record.
func (w *Workflow) StopRecording(ctx context.Context) error {
	if err := w.begin(StateRecording, StateUploading); err != nil {
		return err
	}

	audio, err := w.rec.Stop()
	if err != nil {
		return w.finish(StateTranscriptReady, StateIdle, err, "recording failed, try again")
	}

	audioURL, err := w.api.UploadAudio(ctx, audio)
	if err != nil {
		return w.finish(StateTranscriptReady, StateIdle, err, "upload failed, try again")
	}

	// Transcription is best-effort server-side: a 200 always carries text,
	// possibly a fallback. Only transport errors land here.
	transcript, err := w.api.Transcribe(ctx, audioURL)
	if err != nil {
		return w.finish(StateTranscriptReady, StateIdle, err, "transcription failed, try again")
	}

	return w.finishApply(StateTranscriptReady, func(s *Session) {
		s.AudioURL = audioURL
		s.Transcript = transcript
	})
}

// AttachImage validates and uploads a user-chosen image. Legal in
// TranscriptReady and Review (replacing a previous image). Validation
// failures are returned before any network call.
func (w *Workflow) AttachImage(ctx context.Context, filename, contentType string, size int64, r io.Reader) error {
	if !strings.HasPrefix(contentType, "image/") {
		return ErrNotImage
	}
	if size > maxImageBytes {
		return ErrImageTooLarge
	}

	from, err := w.beginEither(StateTranscriptReady, StateReview, StateUploadingImage)
	if err != nil {
		return err
	}

	url, err := w.api.UploadImage(ctx, filename, contentType, r)
	if err != nil {
		return w.finish(StateReview, from, err, "image upload failed")
	}

	return w.finishApply(StateReview, func(s *Session) { s.ImageURL = url })
}

// GenerateImage asks the service for an AI image keyed by the transcript.
// Legal in TranscriptReady and Review.
func (w *Workflow) GenerateImage(ctx context.Context) error {
	from, err := w.beginEither(StateTranscriptReady, StateReview, StateGeneratingImage)
	if err != nil {
		return err
	}

	url, err := w.api.GenerateImage(ctx, w.Session().Transcript)
	if err != nil {
		return w.finish(StateReview, from, err, "image generation failed")
	}

	return w.finishApply(StateReview, func(s *Session) { s.ImageURL = url })
}

// SetTitle updates the draft title. Legal in TranscriptReady and Review.
func (w *Workflow) SetTitle(title string) error {
	return w.edit(func(s *Session) { s.Title = title })
}

// SetStory updates the optional story text. Legal in TranscriptReady and Review.
func (w *Workflow) SetStory(story string) error {
	return w.edit(func(s *Session) { s.Story = story })
}

// SetTranscript lets the user correct the transcript before saving.
func (w *Workflow) SetTranscript(text string) error {
	return w.edit(func(s *Session) { s.Transcript = text })
}

func (w *Workflow) edit(fn func(*Session)) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateClosed {
		return ErrClosed
	}
	if w.state != StateTranscriptReady && w.state != StateReview {
		return ErrIllegalTransition
	}
	fn(&w.session)
	return nil
}

// Save posts the composed souvenir. Legal only in Review with a complete
// draft. Minting happens server-side; a mock transaction id never surfaces
// as an error here. On success the workflow publishes souvenir_created and
// lands in Saved; on failure it stays in Review.
func (w *Workflow) Save(ctx context.Context) error {
	if err := w.begin(StateReview, StateReview); err != nil {
		return err
	}

	s := w.Session()
	if err := validate.CreateSouvenir(s.Title, s.AudioURL, s.ImageURL, s.Transcript, s.Latitude, s.Longitude); err != nil {
		w.mu.Lock()
		w.busy = false
		w.mu.Unlock()
		return err
	}

	req := model.CreateSouvenirRequest{
		Title:      s.Title,
		AudioURL:   s.AudioURL,
		ImageURL:   s.ImageURL,
		Transcript: s.Transcript,
		Latitude:   s.Latitude,
		Longitude:  s.Longitude,
	}
	if s.Story != "" {
		req.Story = &s.Story
	}

	sv, err := w.api.CreateSouvenir(ctx, req)
	if err != nil {
		return w.finish(StateSaved, StateReview, err, "could not save souvenir")
	}

	w.mu.Lock()
	w.busy = false
	if w.state == StateClosed {
		// Closed while the save was in flight: the record exists server-side
		// but this session is gone, so the result is dropped.
		w.mu.Unlock()
		return ErrClosed
	}
	w.saved = sv
	w.state = StateSaved
	w.mu.Unlock()

	if w.bus != nil {
		w.bus.Publish(events.Event{Kind: events.SouvenirCreated, SouvenirID: sv.ID})
	}
	return nil
}

// Close abandons the session from any state. The recorder is released if it
// is still held. Uploaded blobs are not deleted; in-flight calls are not
// aborted — their results are discarded when they land.
func (w *Workflow) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateClosed {
		return
	}
	if w.state == StateRecording {
		_, _ = w.rec.Stop()
	}
	w.state = StateClosed
	w.session = Session{}
}

// begin takes the busy latch and moves to the transient state.
func (w *Workflow) begin(from, to State) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateClosed {
		return ErrClosed
	}
	if w.busy {
		return ErrBusy
	}
	if w.state != from {
		return ErrIllegalTransition
	}
	w.busy = true
	w.state = to
	return nil
}

// beginEither is begin for events legal in two states; returns the state to
// revert to on failure.
func (w *Workflow) beginEither(a, b, to State) (State, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateClosed {
		return "", ErrClosed
	}
	if w.busy {
		return "", ErrBusy
	}
	if w.state != a && w.state != b {
		return "", ErrIllegalTransition
	}
	from := w.state
	w.busy = true
	w.state = to
	return from, nil
}

// finishApply releases the busy latch, applies the draft update and settles
// into the success state. If the workflow was closed while the call was in
// flight the result is discarded.
func (w *Workflow) finishApply(ok State, apply func(*Session)) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.busy = false
	if w.state == StateClosed {
		return ErrClosed
	}
	apply(&w.session)
	w.state = ok
	return nil
}

// finish releases the busy latch and settles the state. If the workflow was
// closed while the call was in flight the result is discarded.
func (w *Workflow) finish(ok, revert State, err error, toast string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.busy = false
	if w.state == StateClosed {
		return ErrClosed
	}
	if err != nil {
		w.state = revert
		w.toastLocked(toast)
		return err
	}
	w.state = ok
	return nil
}

func (w *Workflow) toast(msg string) {
	w.toastLocked(msg)
}

func (w *Workflow) toastLocked(msg string) {
	if w.onToast != nil && msg != "" {
		w.onToast(msg)
	}
}
