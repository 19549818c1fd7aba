package mapview

import (
	"errors"
	"sync"
	"time"
)

// ErrSeekOutOfRange rejects negative seek positions.
var ErrSeekOutOfRange = errors.New("mapview: seek position out of range")

// Player is the popup audio player model: play, pause, seek. Rendering and
// actual decoding belong to the UI layer; this tracks the logical position.
type Player struct {
	mu        sync.Mutex
	url       string
	playing   bool
	position  time.Duration
	startedAt time.Time
}

// NewPlayer returns a paused player at position zero.
func NewPlayer(audioURL string) *Player {
	return &Player{url: audioURL}
}

// URL returns the audio source.
func (p *Player) URL() string {
	return p.url
}

// Play starts or resumes playback.
func (p *Player) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playing {
		return
	}
	p.playing = true
	p.startedAt = time.Now()
}

// Pause freezes the position.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing {
		return
	}
	p.position += time.Since(p.startedAt)
	p.playing = false
}

// SeekTo jumps to an absolute position.
func (p *Player) SeekTo(pos time.Duration) error {
	if pos < 0 {
		return ErrSeekOutOfRange
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.position = pos
	if p.playing {
		p.startedAt = time.Now()
	}
	return nil
}

// Playing reports whether playback is active.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Position returns the current logical position.
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playing {
		return p.position + time.Since(p.startedAt)
	}
	return p.position
}
