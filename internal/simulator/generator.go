package simulator

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"time"
)

// Reading is one generated payload and whether it is intentionally broken.
type Reading struct {
	Payload   []byte
	Malformed bool
}

// Generator produces a slow tempo ramp with per-reading jitter, the shape a
// metronome session produces in practice. Formats alternate between integer
// and decimal text to exercise both parse paths downstream.
type Generator struct {
	cfg  *Config
	rng  *rand.Rand
	step int
}

// NewGenerator creates a generator for the configured run.
func NewGenerator(cfg *Config) *Generator {
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Next returns the next reading in the ramp.
func (g *Generator) Next() Reading {
	g.step++

	if g.cfg.MalformedEvery > 0 && g.step%g.cfg.MalformedEvery == 0 {
		return Reading{Payload: []byte("not-a-tempo"), Malformed: true}
	}

	progress := 0.0
	if g.cfg.Count > 1 {
		progress = float64(g.step-1) / float64(g.cfg.Count-1)
	}
	bpm := g.cfg.BaseBPM + progress*g.cfg.RampBPM
	if g.cfg.Jitter > 0 {
		bpm += (g.rng.Float64()*2 - 1) * g.cfg.Jitter
	}
	if bpm < 1 {
		bpm = 1
	}

	// Alternate payload formats the way real telemetry firmware does.
	if g.step%2 == 0 {
		return Reading{Payload: []byte(strconv.Itoa(int(math.Round(bpm))))}
	}
	return Reading{Payload: []byte(fmt.Sprintf("%.1f", bpm))}
}
