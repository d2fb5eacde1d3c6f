package audio

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
)

// Wave is an oscillator shape.
type Wave int

const (
	WaveSine Wave = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

// Cue describes a synthesized one-shot sound.
type Cue struct {
	Freq     float64 // Hz at the start
	EndFreq  float64 // Hz at the end; 0 keeps Freq
	Duration time.Duration
	Wave     Wave
	Volume   float64 // 0..1
}

const (
	attackFrac  = 0.05 // share of the cue spent ramping in
	releaseFrac = 0.3  // share of the cue spent fading out
)

// DefaultCues maps audio intent names to sounds.
func DefaultCues() map[string]Cue {
	return map[string]Cue{
		"turret_fire":    {Freq: 220, EndFreq: 110, Duration: 120 * time.Millisecond, Wave: WaveSquare, Volume: 0.25},
		"missile_impact": {Freq: 90, Duration: 350 * time.Millisecond, Wave: WaveNoise, Volume: 0.35},
		"creature_hit":   {Freq: 330, EndFreq: 180, Duration: 180 * time.Millisecond, Wave: WaveSaw, Volume: 0.3},
		"respawn":        {Freq: 440, EndFreq: 880, Duration: 250 * time.Millisecond, Wave: WaveSine, Volume: 0.25},
	}
}

// tone is a finite oscillator with a linear attack/release envelope.
type tone struct {
	cue   Cue
	sr    beep.SampleRate
	pos   int
	total int
	phase float64
	rng   *rand.Rand
}

func newTone(c Cue, sr beep.SampleRate) *tone {
	return &tone{
		cue:   c,
		sr:    sr,
		total: sr.N(c.Duration),
		rng:   rand.New(rand.NewSource(int64(c.Freq*1000) + int64(c.Duration))), // #nosec G404 -- noise timbre
	}
}

func (t *tone) envelope(p float64) float64 {
	switch {
	case p < attackFrac:
		return p / attackFrac
	case p > 1-releaseFrac:
		return math.Max(0, (1-p)/releaseFrac)
	default:
		return 1
	}
}

func (t *tone) sample() float64 {
	switch t.cue.Wave {
	case WaveSquare:
		if t.phase < 0.5 {
			return 1
		}
		return -1
	case WaveSaw:
		return 2*t.phase - 1
	case WaveNoise:
		return t.rng.Float64()*2 - 1
	default:
		return math.Sin(2 * math.Pi * t.phase)
	}
}

func (t *tone) Stream(samples [][2]float64) (n int, ok bool) {
	if t.pos >= t.total {
		return 0, false
	}
	end := t.cue.EndFreq
	if end == 0 {
		end = t.cue.Freq
	}
	for i := range samples {
		if t.pos >= t.total {
			break
		}
		p := float64(t.pos) / float64(t.total)
		freq := t.cue.Freq + (end-t.cue.Freq)*p
		v := t.sample() * t.envelope(p) * t.cue.Volume
		samples[i][0] = v
		samples[i][1] = v

		t.phase += freq / float64(t.sr)
		t.phase -= math.Floor(t.phase)
		t.pos++
		n++
	}
	return n, true
}

func (t *tone) Err() error { return nil }

// drone is the endless ambient bed: two detuned sines under a slow swell.
type drone struct {
	sr  beep.SampleRate
	pos int
}

const (
	droneBase   = 55.0 // Hz
	droneDetune = 0.7  // Hz between the two voices
	droneSwell  = 0.1  // Hz of the volume swell
	droneVolume = 0.08
)

func (d *drone) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(d.pos) / float64(d.sr)
		swell := 0.6 + 0.4*math.Sin(2*math.Pi*droneSwell*t)
		l := math.Sin(2 * math.Pi * droneBase * t)
		r := math.Sin(2 * math.Pi * (droneBase + droneDetune) * t)
		samples[i][0] = droneVolume * swell * l
		samples[i][1] = droneVolume * swell * r
		d.pos++
	}
	return len(samples), true
}

func (d *drone) Err() error { return nil }
