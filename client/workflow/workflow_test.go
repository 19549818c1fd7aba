package workflow

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/echomap/echomap/internal/events"
	"github.com/echomap/echomap/internal/model"
	"github.com/echomap/echomap/internal/transcribe"
)

// fakeAPI records calls and can fail or block individual endpoints.
type fakeAPI struct {
	mu         sync.Mutex
	uploads    []string
	created    []model.CreateSouvenirRequest
	transcript string

	uploadErr     error
	transcribeErr error
	createErr     error

	blockUpload chan struct{} // when set, UploadAudio waits for it
}

func (f *fakeAPI) UploadAudio(_ context.Context, r io.Reader) (string, error) {
	if f.blockUpload != nil {
		<-f.blockUpload
	}
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	_, _ = io.Copy(io.Discard, r)
	f.mu.Lock()
	defer f.mu.Unlock()
	url := fmt.Sprintf("https://blob/audio/%d.webm", len(f.uploads)+1)
	f.uploads = append(f.uploads, url)
	return url, nil
}

func (f *fakeAPI) Transcribe(_ context.Context, audioURL string) (string, error) {
	if f.transcribeErr != nil {
		return "", f.transcribeErr
	}
	if f.transcript != "" {
		return f.transcript, nil
	}
	return "we watched the boats come in", nil
}

func (f *fakeAPI) UploadImage(_ context.Context, filename, contentType string, r io.Reader) (string, error) {
	_, _ = io.Copy(io.Discard, r)
	f.mu.Lock()
	defer f.mu.Unlock()
	url := "https://blob/images/" + filename
	f.uploads = append(f.uploads, url)
	return url, nil
}

func (f *fakeAPI) GenerateImage(_ context.Context, transcript string) (string, error) {
	return "https://images.example/gen.png", nil
}

func (f *fakeAPI) CreateSouvenir(_ context.Context, req model.CreateSouvenirRequest) (*model.Souvenir, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, req)
	return &model.Souvenir{
		ID:         fmt.Sprintf("sv-%d", len(f.created)),
		Title:      req.Title,
		AudioURL:   req.AudioURL,
		ImageURL:   req.ImageURL,
		Transcript: req.Transcript,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

func (f *fakeAPI) createdCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

func (f *fakeAPI) uploadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.uploads)
}

func newWorkflow(t *testing.T, api *fakeAPI) (*Workflow, *StaticRecorder, *events.Bus) {
	t.Helper()
	rec := NewStaticRecorder([]byte("webm-bytes"))
	bus := events.NewBus(8)
	w, err := Open(api, rec, bus, 40.7128, -74.0060)
	require.NoError(t, err)
	return w, rec, bus
}

func TestHappyPath_CoordinatesPersistVerbatim(t *testing.T) {
	api := &fakeAPI{}
	w, _, bus := newWorkflow(t, api)
	ctx := context.Background()

	require.NoError(t, w.StartRecording(ctx))
	require.Equal(t, StateRecording, w.State())

	require.NoError(t, w.StopRecording(ctx))
	require.Equal(t, StateTranscriptReady, w.State())
	require.NotEmpty(t, w.Session().AudioURL)
	require.NotEmpty(t, w.Session().Transcript)

	require.NoError(t, w.GenerateImage(ctx))
	require.Equal(t, StateReview, w.State())

	require.NoError(t, w.SetTitle("Harbor at dusk"))
	require.NoError(t, w.SetStory("gulls everywhere"))
	require.NoError(t, w.Save(ctx))
	require.Equal(t, StateSaved, w.State())

	sv := w.Saved()
	require.NotNil(t, sv)
	require.Equal(t, 40.7128, sv.Latitude)
	require.Equal(t, -74.0060, sv.Longitude)

	select {
	case evt := <-bus.Subscribe():
		require.Equal(t, events.SouvenirCreated, evt.Kind)
		require.Equal(t, sv.ID, evt.SouvenirID)
	default:
		t.Fatal("expected souvenir_created on the bus")
	}
}

func TestOpen_RejectsInvalidCoordinates(t *testing.T) {
	_, err := Open(&fakeAPI{}, NewStaticRecorder(nil), nil, 91, 0)
	require.Error(t, err)

	_, err = Open(&fakeAPI{}, NewStaticRecorder(nil), nil, 0, -181)
	require.Error(t, err)
}

func TestIllegalTransitions(t *testing.T) {
	api := &fakeAPI{}
	w, _, _ := newWorkflow(t, api)
	ctx := context.Background()

	require.ErrorIs(t, w.Save(ctx), ErrIllegalTransition)
	require.ErrorIs(t, w.StopRecording(ctx), ErrIllegalTransition)
	require.ErrorIs(t, w.GenerateImage(ctx), ErrIllegalTransition)

	require.NoError(t, w.StartRecording(ctx))
	require.ErrorIs(t, w.StartRecording(ctx), ErrIllegalTransition)
}

func TestSave_IncompleteDraftRejected(t *testing.T) {
	api := &fakeAPI{}
	w, _, _ := newWorkflow(t, api)
	ctx := context.Background()

	require.NoError(t, w.StartRecording(ctx))
	require.NoError(t, w.StopRecording(ctx))
	require.NoError(t, w.GenerateImage(ctx))

	// no title yet
	require.Error(t, w.Save(ctx))
	require.Equal(t, StateReview, w.State())
	require.Zero(t, api.createdCount())

	require.NoError(t, w.SetTitle("Now complete"))
	require.NoError(t, w.Save(ctx))
	require.Equal(t, 1, api.createdCount())
}

func TestTranscriptionFallback_StillReachesReview(t *testing.T) {
	api := &fakeAPI{transcript: transcribe.Fallbacks[0]}
	w, _, _ := newWorkflow(t, api)
	ctx := context.Background()

	require.NoError(t, w.StartRecording(ctx))
	require.NoError(t, w.StopRecording(ctx))
	require.True(t, transcribe.IsFallback(w.Session().Transcript))

	require.NoError(t, w.GenerateImage(ctx))
	require.Equal(t, StateReview, w.State())
}

func TestStopRecording_UploadFailureRevertsToIdle(t *testing.T) {
	var toasts []string
	api := &fakeAPI{uploadErr: errors.New("boom")}
	rec := NewStaticRecorder([]byte("webm"))
	w, err := Open(api, rec, nil, 10, 10, WithToast(func(msg string) { toasts = append(toasts, msg) }))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, w.StartRecording(ctx))
	require.Error(t, w.StopRecording(ctx))
	require.Equal(t, StateIdle, w.State())
	require.Len(t, toasts, 1)

	// the user can re-record
	require.NoError(t, w.StartRecording(ctx))
}

func TestAttachImage_Validation(t *testing.T) {
	api := &fakeAPI{}
	w, _, _ := newWorkflow(t, api)
	ctx := context.Background()

	require.NoError(t, w.StartRecording(ctx))
	require.NoError(t, w.StopRecording(ctx))
	uploadsBefore := api.uploadCount()

	err := w.AttachImage(ctx, "notes.pdf", "application/pdf", 100, strings.NewReader("x"))
	require.ErrorIs(t, err, ErrNotImage)

	err = w.AttachImage(ctx, "huge.png", "image/png", 6<<20, strings.NewReader("x"))
	require.ErrorIs(t, err, ErrImageTooLarge)

	// neither validation failure reached the network
	require.Equal(t, uploadsBefore, api.uploadCount())

	require.NoError(t, w.AttachImage(ctx, "photo.png", "image/png", 1024, bytes.NewReader([]byte("png"))))
	require.Equal(t, StateReview, w.State())
	require.Equal(t, "https://blob/images/photo.png", w.Session().ImageURL)
}

func TestBusyLatch_RejectsReentrantTriggers(t *testing.T) {
	api := &fakeAPI{blockUpload: make(chan struct{})}
	w, _, _ := newWorkflow(t, api)
	ctx := context.Background()

	require.NoError(t, w.StartRecording(ctx))

	done := make(chan error, 1)
	go func() { done <- w.StopRecording(ctx) }()

	// wait until the upload is in flight
	require.Eventually(t, func() bool { return w.State() == StateUploading }, time.Second, 5*time.Millisecond)

	require.ErrorIs(t, w.GenerateImage(ctx), ErrBusy)
	require.ErrorIs(t, w.Save(ctx), ErrBusy)

	close(api.blockUpload)
	require.NoError(t, <-done)
	require.Equal(t, StateTranscriptReady, w.State())
}

func TestClose_BeforeSaveLeavesNothingPersisted(t *testing.T) {
	api := &fakeAPI{}
	w, rec, _ := newWorkflow(t, api)
	ctx := context.Background()

	require.NoError(t, w.StartRecording(ctx))
	require.NoError(t, w.StopRecording(ctx))
	require.NoError(t, w.GenerateImage(ctx))
	require.NoError(t, w.SetTitle("Abandoned"))

	w.Close()
	require.Equal(t, StateClosed, w.State())
	require.False(t, rec.Live())

	// no souvenir was created; the uploaded audio blob stays (no compensating delete)
	require.Zero(t, api.createdCount())
	require.Equal(t, 1, api.uploadCount())

	// a closed workflow accepts nothing
	require.ErrorIs(t, w.Save(ctx), ErrClosed)
	require.ErrorIs(t, w.StartRecording(ctx), ErrClosed)
}

func TestClose_MidFlightResultDiscarded(t *testing.T) {
	api := &fakeAPI{blockUpload: make(chan struct{})}
	w, _, _ := newWorkflow(t, api)
	ctx := context.Background()

	require.NoError(t, w.StartRecording(ctx))

	done := make(chan error, 1)
	go func() { done <- w.StopRecording(ctx) }()
	require.Eventually(t, func() bool { return w.State() == StateUploading }, time.Second, 5*time.Millisecond)

	w.Close()
	close(api.blockUpload)

	require.ErrorIs(t, <-done, ErrClosed)
	require.Equal(t, StateClosed, w.State())
	require.Empty(t, w.Session().AudioURL)
}

func TestClose_ReleasesRecorder(t *testing.T) {
	api := &fakeAPI{}
	w, rec, _ := newWorkflow(t, api)

	require.NoError(t, w.StartRecording(context.Background()))
	require.True(t, rec.Live())

	w.Close()
	require.False(t, rec.Live())
}
