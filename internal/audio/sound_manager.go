// Package audio turns audio intents from the simulation into synthesized sound.
package audio

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"

	"github.com/Garsondee/Skirmish-Sense/internal/game"
)

const (
	sampleRate = beep.SampleRate(44100)
	bufferTime = 100 * time.Millisecond
)

var (
	// ErrAlreadyInitialized is returned by Init when the shared manager exists.
	ErrAlreadyInitialized = errors.New("audio already initialized")
	// ErrUnknownCue is returned when a cue name has no sound.
	ErrUnknownCue = errors.New("unknown audio cue")
)

// Backend is the output device. The speaker-backed implementation is the
// default; tests drive a fake.
type Backend interface {
	Init(sr beep.SampleRate, bufferSize int) error
	Play(s beep.Streamer)
	Lock()
	Unlock()
}

type speakerBackend struct{}

func (speakerBackend) Init(sr beep.SampleRate, n int) error { return speaker.Init(sr, n) }
func (speakerBackend) Play(s beep.Streamer)                 { speaker.Play(s) }
func (speakerBackend) Lock()                                { speaker.Lock() }
func (speakerBackend) Unlock()                              { speaker.Unlock() }

// Speaker returns the system audio device.
func Speaker() Backend { return speakerBackend{} }

// SoundManager mixes cue one-shots and the ambient bed into one output.
type SoundManager struct {
	mu          sync.Mutex
	backend     Backend
	mixer       *beep.Mixer
	master      *effects.Volume
	music       *beep.Ctrl
	cues        map[string]Cue
	played      map[string]int
	unknown     int
	initialized bool
}

// NewSoundManager creates a manager with the default cue table.
func NewSoundManager(b Backend) *SoundManager {
	if b == nil {
		b = Speaker()
	}
	mixer := &beep.Mixer{}
	return &SoundManager{
		backend: b,
		mixer:   mixer,
		master:  &effects.Volume{Streamer: mixer, Base: 2},
		cues:    DefaultCues(),
		played:  make(map[string]int),
	}
}

// Initialize opens the device. Calling it again is a no-op.
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}
	if err := sm.backend.Init(sampleRate, sampleRate.N(bufferTime)); err != nil {
		return fmt.Errorf("audio init: %w", err)
	}
	sm.backend.Play(sm.master)
	sm.initialized = true
	return nil
}

// SetCue adds or replaces a named cue.
func (sm *SoundManager) SetCue(name string, c Cue) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.cues[name] = c
}

// Play starts a one-shot cue. Before initialization it does nothing.
func (sm *SoundManager) Play(name string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	c, ok := sm.cues[name]
	if !ok {
		sm.unknown++
		return fmt.Errorf("cue %q: %w", name, ErrUnknownCue)
	}
	if !sm.initialized {
		return nil
	}
	sm.backend.Lock()
	sm.mixer.Add(newTone(c, sampleRate))
	sm.backend.Unlock()
	sm.played[name]++
	return nil
}

// StartMusic starts the looping ambient bed once.
func (sm *SoundManager) StartMusic() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	sm.backend.Lock()
	defer sm.backend.Unlock()
	if sm.music != nil {
		sm.music.Paused = false
		return
	}
	sm.music = &beep.Ctrl{Streamer: &drone{sr: sampleRate}}
	sm.mixer.Add(sm.music)
}

// StopMusic pauses the ambient bed.
func (sm *SoundManager) StopMusic() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.music == nil {
		return
	}
	sm.backend.Lock()
	sm.music.Paused = true
	sm.backend.Unlock()
}

// MusicPlaying reports whether the ambient bed is audible.
func (sm *SoundManager) MusicPlaying() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.music != nil && !sm.music.Paused
}

// SetMuted silences or restores the master output.
func (sm *SoundManager) SetMuted(muted bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.backend.Lock()
	sm.master.Silent = muted
	sm.backend.Unlock()
}

// Played returns how many times a cue has been started.
func (sm *SoundManager) Played(name string) int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.played[name]
}

// Unknown returns how many requests named a missing cue.
func (sm *SoundManager) Unknown() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.unknown
}

// Active returns the number of streamers still in the mix.
func (sm *SoundManager) Active() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.backend.Lock()
	defer sm.backend.Unlock()
	return sm.mixer.Len()
}

// OnEvent plays audio intents and the respawn chime.
func (sm *SoundManager) OnEvent(e game.Event) {
	switch e.Kind {
	case game.EventAudioIntent:
		_ = sm.Play(e.Intent) // counted in Unknown
	case game.EventActorRespawned:
		_ = sm.Play("respawn")
	}
}

// Attach subscribes the manager to a world's bus.
func (sm *SoundManager) Attach(bus *game.Bus) {
	bus.Subscribe(game.EventAudioIntent, sm)
	bus.Subscribe(game.EventActorRespawned, sm)
}

// Cleanup stops everything in the mix.
func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	sm.backend.Lock()
	if sm.music != nil {
		sm.music.Paused = true
	}
	sm.mixer.Clear()
	sm.backend.Unlock()
	sm.music = nil
	sm.initialized = false
}

// --- shared instance ---

var (
	sharedMu sync.Mutex
	shared   *SoundManager
)

// Init creates and opens the process-wide manager. A second call returns the
// existing manager with ErrAlreadyInitialized.
func Init(b Backend) (*SoundManager, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if shared != nil {
		return shared, ErrAlreadyInitialized
	}
	sm := NewSoundManager(b)
	if err := sm.Initialize(); err != nil {
		return nil, err
	}
	shared = sm
	return sm, nil
}

// Shared returns the process-wide manager, or nil before Init.
func Shared() *SoundManager {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	return shared
}

// Shutdown cleans up and forgets the process-wide manager.
func Shutdown() {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if shared != nil {
		shared.Cleanup()
		shared = nil
	}
}
