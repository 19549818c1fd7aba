// Package mapview is the UI-agnostic model behind the world map: one marker
// per souvenir, popups with an audio player, coordinate search with a small
// tolerance, and a self-clearing highlight. It subscribes to the in-process
// event bus so a save elsewhere in the app reloads the markers.
package mapview

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/echomap/echomap/internal/events"
	"github.com/echomap/echomap/internal/model"
)

// CoordTolerance is the approximate-equality window for coordinate search,
// 1e-4 degrees, about eleven meters at the equator.
const CoordTolerance = 1e-4

// highlightTTL is how long a highlight stays before clearing itself.
const highlightTTL = 3 * time.Second

// excerptLen caps the transcript excerpt shown in a popup.
const excerptLen = 120

// Lister is the slice of the API client the viewer needs.
type Lister interface {
	ListSouvenirs(ctx context.Context) ([]*model.Souvenir, error)
}

// Marker is one souvenir pin on the map.
type Marker struct {
	SouvenirID string
	Latitude   float64
	Longitude  float64
	Title      string
}

// Popup is the model shown when a marker is clicked.
type Popup struct {
	SouvenirID string
	Title      string
	CreatedAt  time.Time
	Excerpt    string
	Player     *Player
}

// OpenRequest seeds a creation workflow with the clicked coordinates.
type OpenRequest struct {
	Latitude  float64
	Longitude float64
}

// Viewer holds the current marker set and highlight.
type Viewer struct {
	mu        sync.Mutex
	souvenirs []*model.Souvenir

	highlighted        string
	highlightGen       int
	highlightTTL       time.Duration
	onHighlightCleared func(string)

	api Lister
	bus *events.Bus
}

// Option configures a Viewer.
type Option func(*Viewer)

// WithHighlightTTL overrides the highlight auto-clear delay.
func WithHighlightTTL(d time.Duration) Option {
	return func(v *Viewer) { v.highlightTTL = d }
}

// WithHighlightCleared installs a callback fired when a highlight clears,
// whether by timeout or Acknowledge.
func WithHighlightCleared(fn func(souvenirID string)) Option {
	return func(v *Viewer) { v.onHighlightCleared = fn }
}

// New constructs a viewer. bus may be nil when no live reload is wanted.
func New(api Lister, bus *events.Bus, opts ...Option) *Viewer {
	v := &Viewer{
		api:          api,
		bus:          bus,
		highlightTTL: highlightTTL,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Load fetches the public souvenir list and replaces the marker set.
func (v *Viewer) Load(ctx context.Context) error {
	list, err := v.api.ListSouvenirs(ctx)
	if err != nil {
		return err
	}
	v.mu.Lock()
	v.souvenirs = list
	v.mu.Unlock()
	return nil
}

// Watch reloads markers whenever a souvenir is created or deleted. It blocks
// until ctx is cancelled; run it in its own goroutine.
func (v *Viewer) Watch(ctx context.Context) {
	if v.bus == nil {
		return
	}
	ch := v.bus.Subscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-ch:
			switch evt.Kind {
			case events.SouvenirCreated, events.SouvenirDeleted:
				_ = v.Load(ctx)
			}
		}
	}
}

// Markers returns a pin per loaded souvenir.
func (v *Viewer) Markers() []Marker {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]Marker, 0, len(v.souvenirs))
	for _, s := range v.souvenirs {
		out = append(out, Marker{
			SouvenirID: s.ID,
			Latitude:   s.Latitude,
			Longitude:  s.Longitude,
			Title:      s.Title,
		})
	}
	return out
}

// FindByCoordinate returns the first souvenir within CoordTolerance of the
// query point.
func (v *Viewer) FindByCoordinate(lat, lng float64) (*model.Souvenir, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, s := range v.souvenirs {
		if math.Abs(s.Latitude-lat) <= CoordTolerance && math.Abs(s.Longitude-lng) <= CoordTolerance {
			return s, true
		}
	}
	return nil, false
}

// ClickResult is what a map click produces: exactly one field is set.
type ClickResult struct {
	// Popup is set when the click landed on a marker.
	Popup *Popup
	// Open is set when an authenticated user clicked empty map.
	Open *OpenRequest
}

// Click resolves a map click. Marker hits open a popup for anyone; empty
// area starts a creation workflow only for signed-in users, otherwise the
// click is ignored and both fields are nil.
func (v *Viewer) Click(lat, lng float64, signedIn bool) ClickResult {
	if s, ok := v.FindByCoordinate(lat, lng); ok {
		return ClickResult{Popup: popupFor(s)}
	}
	if signedIn {
		return ClickResult{Open: &OpenRequest{Latitude: lat, Longitude: lng}}
	}
	return ClickResult{}
}

func popupFor(s *model.Souvenir) *Popup {
	excerpt := s.Transcript
	if r := []rune(excerpt); len(r) > excerptLen {
		excerpt = string(r[:excerptLen]) + "…"
	}
	return &Popup{
		SouvenirID: s.ID,
		Title:      s.Title,
		CreatedAt:  s.CreatedAt,
		Excerpt:    excerpt,
		Player:     NewPlayer(s.AudioURL),
	}
}

// Highlight centers on the souvenir nearest the query coordinates, marks it,
// and schedules the mark to clear. A new highlight replaces the previous
// one and cancels its pending clear.
func (v *Viewer) Highlight(lat, lng float64) (*model.Souvenir, bool) {
	s, ok := v.FindByCoordinate(lat, lng)
	if !ok {
		return nil, false
	}

	v.mu.Lock()
	v.highlighted = s.ID
	v.highlightGen++
	gen := v.highlightGen
	ttl := v.highlightTTL
	v.mu.Unlock()

	time.AfterFunc(ttl, func() { v.clearHighlight(gen) })
	return s, true
}

// Acknowledge clears the current highlight immediately.
func (v *Viewer) Acknowledge() {
	v.mu.Lock()
	gen := v.highlightGen
	v.mu.Unlock()
	v.clearHighlight(gen)
}

// Highlighted returns the highlighted souvenir id, if any.
func (v *Viewer) Highlighted() (string, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.highlighted, v.highlighted != ""
}

// clearHighlight drops the mark only if gen is still current, so a stale
// timer never clears a newer highlight.
func (v *Viewer) clearHighlight(gen int) {
	v.mu.Lock()
	if v.highlightGen != gen || v.highlighted == "" {
		v.mu.Unlock()
		return
	}
	id := v.highlighted
	v.highlighted = ""
	fn := v.onHighlightCleared
	v.mu.Unlock()

	if fn != nil {
		fn(id)
	}
}
