package mapview

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/echomap/echomap/internal/events"
	"github.com/echomap/echomap/internal/model"
)

type fakeLister struct {
	mu        sync.Mutex
	souvenirs []*model.Souvenir
	err       error
}

func (f *fakeLister) ListSouvenirs(_ context.Context) ([]*model.Souvenir, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.souvenirs, f.err
}

func (f *fakeLister) set(s []*model.Souvenir) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.souvenirs = s
}

func testSouvenirs() []*model.Souvenir {
	return []*model.Souvenir{
		{ID: "sv-1", Title: "Harbor", Latitude: 40.7128, Longitude: -74.0060,
			Transcript: "we watched the boats come in", AudioURL: "https://blob/audio/1.webm"},
		{ID: "sv-2", Title: "Mountain pass", Latitude: 46.5197, Longitude: 6.6323,
			Transcript: strings.Repeat("switchbacks ", 20), AudioURL: "https://blob/audio/2.webm"},
	}
}

func loadedViewer(t *testing.T, opts ...Option) (*Viewer, *fakeLister) {
	t.Helper()
	api := &fakeLister{souvenirs: testSouvenirs()}
	v := New(api, nil, opts...)
	require.NoError(t, v.Load(context.Background()))
	return v, api
}

func TestFindByCoordinate_WithinTolerance(t *testing.T) {
	v, _ := loadedViewer(t)

	// ~5.5 m off still matches
	s, ok := v.FindByCoordinate(40.71285, -74.00595)
	require.True(t, ok)
	require.Equal(t, "sv-1", s.ID)

	// beyond the 1e-4 deg window
	_, ok = v.FindByCoordinate(40.7131, -74.0060)
	require.False(t, ok)

	_, ok = v.FindByCoordinate(0, 0)
	require.False(t, ok)
}

func TestClick_MarkerOpensPopup(t *testing.T) {
	v, _ := loadedViewer(t)

	res := v.Click(40.7128, -74.0060, false)
	require.NotNil(t, res.Popup)
	require.Nil(t, res.Open)
	require.Equal(t, "Harbor", res.Popup.Title)
	require.Equal(t, "we watched the boats come in", res.Popup.Excerpt)
	require.Equal(t, "https://blob/audio/1.webm", res.Popup.Player.URL())
}

func TestClick_LongTranscriptExcerpted(t *testing.T) {
	v, _ := loadedViewer(t)

	res := v.Click(46.5197, 6.6323, false)
	require.NotNil(t, res.Popup)
	require.True(t, strings.HasSuffix(res.Popup.Excerpt, "…"))
	require.LessOrEqual(t, len(res.Popup.Excerpt), excerptLen+len("…"))
}

func TestClick_EmptyArea(t *testing.T) {
	v, _ := loadedViewer(t)

	// signed-in: seeds a creation workflow
	res := v.Click(10, 10, true)
	require.Nil(t, res.Popup)
	require.NotNil(t, res.Open)
	require.Equal(t, 10.0, res.Open.Latitude)

	// anonymous: ignored
	res = v.Click(10, 10, false)
	require.Nil(t, res.Popup)
	require.Nil(t, res.Open)
}

func TestHighlight_AutoClearsAfterTTL(t *testing.T) {
	var cleared []string
	v, _ := loadedViewer(t,
		WithHighlightTTL(20*time.Millisecond),
		WithHighlightCleared(func(id string) { cleared = append(cleared, id) }),
	)

	s, ok := v.Highlight(40.7128, -74.0060)
	require.True(t, ok)
	require.Equal(t, "sv-1", s.ID)

	id, ok := v.Highlighted()
	require.True(t, ok)
	require.Equal(t, "sv-1", id)

	require.Eventually(t, func() bool {
		_, ok := v.Highlighted()
		return !ok
	}, time.Second, 5*time.Millisecond)
	require.Equal(t, []string{"sv-1"}, cleared)
}

func TestHighlight_AcknowledgeClearsEarly(t *testing.T) {
	v, _ := loadedViewer(t, WithHighlightTTL(time.Hour))

	_, ok := v.Highlight(40.7128, -74.0060)
	require.True(t, ok)

	v.Acknowledge()
	_, ok = v.Highlighted()
	require.False(t, ok)
}

func TestHighlight_StaleTimerDoesNotClearNewer(t *testing.T) {
	v, _ := loadedViewer(t, WithHighlightTTL(30*time.Millisecond))

	_, ok := v.Highlight(40.7128, -74.0060)
	require.True(t, ok)

	// second highlight before the first timer fires
	time.Sleep(10 * time.Millisecond)
	_, ok = v.Highlight(46.5197, 6.6323)
	require.True(t, ok)

	// first timer firing must not clear sv-2
	time.Sleep(25 * time.Millisecond)
	id, ok := v.Highlighted()
	require.True(t, ok)
	require.Equal(t, "sv-2", id)
}

func TestHighlight_NoMatch(t *testing.T) {
	v, _ := loadedViewer(t)
	_, ok := v.Highlight(0, 0)
	require.False(t, ok)
	_, ok = v.Highlighted()
	require.False(t, ok)
}

func TestLoad_Error(t *testing.T) {
	api := &fakeLister{err: errors.New("down")}
	v := New(api, nil)
	require.Error(t, v.Load(context.Background()))
	require.Empty(t, v.Markers())
}

func TestWatch_ReloadsOnSave(t *testing.T) {
	api := &fakeLister{souvenirs: testSouvenirs()[:1]}
	bus := events.NewBus(8)
	v := New(api, bus)
	require.NoError(t, v.Load(context.Background()))
	require.Len(t, v.Markers(), 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go v.Watch(ctx)

	api.set(testSouvenirs())
	bus.Publish(events.Event{Kind: events.SouvenirCreated, SouvenirID: "sv-2"})

	require.Eventually(t, func() bool { return len(v.Markers()) == 2 }, time.Second, 5*time.Millisecond)
}

func TestPlayer_PlayPauseSeek(t *testing.T) {
	p := NewPlayer("https://blob/audio/1.webm")
	require.False(t, p.Playing())
	require.Zero(t, p.Position())

	p.Play()
	require.True(t, p.Playing())
	time.Sleep(15 * time.Millisecond)
	p.Pause()
	require.False(t, p.Playing())
	require.GreaterOrEqual(t, p.Position(), 15*time.Millisecond)

	require.NoError(t, p.SeekTo(2*time.Second))
	require.Equal(t, 2*time.Second, p.Position())

	require.ErrorIs(t, p.SeekTo(-time.Second), ErrSeekOutOfRange)
}
