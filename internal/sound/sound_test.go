package sound

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/faiface/beep"
	"github.com/hashicorp/go-hclog"

	"github.com/sadopc/bbomodoro/internal/engine"
)

func drain(s beep.Streamer) [][2]float64 {
	var out [][2]float64
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		out = append(out, buf[:n]...)
		if !ok {
			return out
		}
	}
}

func TestToneLength(t *testing.T) {
	sr := beep.SampleRate(8000)
	samples := drain(Tone(sr))
	if len(samples) != 4000 {
		t.Fatalf("expected 4000 samples, got %d", len(samples))
	}
}

func TestToneEnvelope(t *testing.T) {
	sr := beep.SampleRate(8000)
	samples := drain(Tone(sr))

	peak := func(from, to int) float64 {
		m := 0.0
		for _, s := range samples[from:to] {
			m = math.Max(m, math.Abs(s[0]))
		}
		return m
	}
	head := peak(0, 100)
	tail := peak(len(samples)-100, len(samples))

	if head > startGain+1e-9 || head < 0.25 {
		t.Fatalf("head peak %.4f outside expected range", head)
	}
	if tail > 0.012 {
		t.Fatalf("tail should decay to ~%.2f, got %.4f", endGain, tail)
	}
	for i, s := range samples {
		if s[0] != s[1] {
			t.Fatalf("sample %d: channels differ", i)
		}
	}
}

func newTestPlayer(initErr error) (*Player, *int, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := hclog.New(&hclog.LoggerOptions{Output: &buf, Level: hclog.Trace})
	p := NewPlayer(logger)

	inits := 0
	p.initSpeaker = func(beep.SampleRate, int) error {
		inits++
		return initErr
	}
	return p, &inits, &buf
}

func TestNotifyPlaysTone(t *testing.T) {
	p, inits, _ := newTestPlayer(nil)
	played := 0
	p.play = func(s ...beep.Streamer) { played += len(s) }

	p.Notify(engine.Work)
	p.Notify(engine.Work)

	if *inits != 1 {
		t.Fatalf("speaker should be initialised once, got %d", *inits)
	}
	if played != 2 {
		t.Fatalf("expected 2 tones, got %d", played)
	}
}

func TestNotifyInitFailureIsSilent(t *testing.T) {
	p, inits, buf := newTestPlayer(errors.New("no audio device"))
	p.play = func(...beep.Streamer) { t.Fatal("should not play without a speaker") }

	p.Notify(engine.Work)
	p.Notify(engine.Work)

	if *inits != 1 {
		t.Fatalf("init should not be retried, got %d", *inits)
	}
	if !strings.Contains(buf.String(), "speaker unavailable") {
		t.Fatalf("init failure should be logged:\n%s", buf.String())
	}
}
