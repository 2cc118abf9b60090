// Package sound plays the completion tone.
package sound

import (
	"math"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"github.com/hashicorp/go-hclog"

	"github.com/sadopc/bbomodoro/internal/engine"
)

const (
	sampleRate = beep.SampleRate(44100)

	toneFrequency = 800.0
	toneLength    = 500 * time.Millisecond
	startGain     = 0.3
	endGain       = 0.01
)

// Player is an engine.Notifier backed by the system speaker.
type Player struct {
	logger hclog.Logger

	once    sync.Once
	initErr error

	// swapped in tests
	initSpeaker func(beep.SampleRate, int) error
	play        func(...beep.Streamer)
}

var _ engine.Notifier = (*Player)(nil)

func NewPlayer(logger hclog.Logger) *Player {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Player{
		logger:      logger.Named("sound"),
		initSpeaker: speaker.Init,
		play:        speaker.Play,
	}
}

// Notify starts the tone and returns immediately. The speaker is opened on
// first use; if that fails the player stays silent.
func (p *Player) Notify(completed engine.SessionType) {
	p.once.Do(func() {
		p.initErr = p.initSpeaker(sampleRate, sampleRate.N(time.Second/10))
		if p.initErr != nil {
			p.logger.Warn("speaker unavailable, notifications muted", "error", p.initErr)
		}
	})
	if p.initErr != nil {
		return
	}
	p.logger.Debug("playing tone", "session", completed)
	p.play(Tone(sampleRate))
}

// Tone returns an 800 Hz sine whose gain falls exponentially from 0.3 to
// 0.01 over half a second.
func Tone(sr beep.SampleRate) beep.Streamer {
	total := sr.N(toneLength)
	ratio := endGain / startGain
	pos := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if pos >= total {
			return 0, false
		}
		n := 0
		for n < len(samples) && pos < total {
			t := float64(pos) / float64(sr)
			gain := startGain * math.Pow(ratio, t/toneLength.Seconds())
			v := gain * math.Sin(2*math.Pi*toneFrequency*t)
			samples[n][0] = v
			samples[n][1] = v
			n++
			pos++
		}
		return n, true
	})
}
