package data

import (
	"fmt"
	"math/rand"

	"github.com/gopinn/gopinn/internal/tensor"
)

// ODEGenerator samples temporal collocation points uniformly over
// [tmin, tmax] and serves them in shuffled mini-batches. The curriculum
// controller replaces the window through WithWindow between phases; the
// generator itself never mutates during evaluation.
type ODEGenerator[B tensor.Backend] struct {
	backend   B
	rng       *rand.Rand
	tmin      float64
	tmax      float64
	nt        int
	batchSize int

	times  []float32
	cursor int
}

// NewODEGenerator draws nt uniform samples over [tmin, tmax].
func NewODEGenerator[B tensor.Backend](backend B, tmin, tmax float64, nt, batchSize int, rng *rand.Rand) (*ODEGenerator[B], error) {
	if nt <= 0 || batchSize <= 0 {
		return nil, fmt.Errorf("need positive sample and batch counts, got nt=%d batch=%d", nt, batchSize)
	}
	if batchSize > nt {
		return nil, fmt.Errorf("batch size %d exceeds sample count %d", batchSize, nt)
	}
	if tmax <= tmin {
		return nil, fmt.Errorf("empty time window [%v, %v]", tmin, tmax)
	}
	g := &ODEGenerator[B]{
		backend:   backend,
		rng:       rng,
		tmin:      tmin,
		tmax:      tmax,
		nt:        nt,
		batchSize: batchSize,
	}
	g.resample()
	return g, nil
}

// Window reports the current sampling window.
func (g *ODEGenerator[B]) Window() (tmin, tmax float64) {
	return g.tmin, g.tmax
}

// WithWindow returns a fresh generator over a new window, resampled.
func (g *ODEGenerator[B]) WithWindow(tmin, tmax float64) (*ODEGenerator[B], error) {
	return NewODEGenerator(g.backend, tmin, tmax, g.nt, g.batchSize, g.rng)
}

// Next serves the next mini-batch, reshuffling once the pool is
// exhausted.
func (g *ODEGenerator[B]) Next() (ODEBatch[B], error) {
	if g.cursor+g.batchSize > g.nt {
		g.shuffle()
		g.cursor = 0
	}
	chunk := g.times[g.cursor : g.cursor+g.batchSize]
	g.cursor += g.batchSize

	t, err := tensor.FromSlice(append([]float32(nil), chunk...), tensor.Shape{g.batchSize, 1}, g.backend)
	if err != nil {
		return ODEBatch[B]{}, fmt.Errorf("building temporal batch: %w", err)
	}
	return ODEBatch[B]{Temporal: t}, nil
}

func (g *ODEGenerator[B]) resample() {
	g.times = make([]float32, g.nt)
	span := g.tmax - g.tmin
	for i := range g.times {
		g.times[i] = float32(g.tmin + g.rng.Float64()*span)
	}
	g.shuffle()
	g.cursor = 0
}

func (g *ODEGenerator[B]) shuffle() {
	g.rng.Shuffle(len(g.times), func(i, j int) {
		g.times[i], g.times[j] = g.times[j], g.times[i]
	})
}
