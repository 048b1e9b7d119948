package service

import (
	"math"
	"math/rand/v2"

	"kc-mini-app-backend/internal/features/simulation/models"
)

// Source supplies uniform values in [0, 1). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// NewSource returns a PCG-backed source. Equal seeds give equal sequences.
func NewSource(seed1, seed2 uint64) Source {
	return rand.New(rand.NewPCG(seed1, seed2))
}

func randomSource() Source {
	return NewSource(rand.Uint64(), rand.Uint64())
}

// Stream is an infinite sequence of base values. Reset restarts it from its
// initial state; the underlying source is not rewound. Streams are not safe
// for concurrent use.
type Stream interface {
	Next() float64
	Reset()
}

func uniform(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}

type randomStream struct {
	src    Source
	params models.RandomParams
}

func NewRandomStream(src Source, params models.RandomParams) Stream {
	return &randomStream{src: src, params: params}
}

func (s *randomStream) Next() float64 {
	return uniform(s.src, s.params.Min, s.params.Max)
}

func (s *randomStream) Reset() {}

// mevStream draws from the spike range with probability SpikeChance.
type mevStream struct {
	src    Source
	params models.MEVParams
}

func NewMEVStream(src Source, params models.MEVParams) Stream {
	return &mevStream{src: src, params: params}
}

func (s *mevStream) Next() float64 {
	if s.src.Float64() < s.params.SpikeChance {
		return uniform(s.src, s.params.SpikeMin, s.params.SpikeMax)
	}
	return uniform(s.src, s.params.BaseMin, s.params.BaseMax)
}

func (s *mevStream) Reset() {}

// scalperStream is a trend walk: the trend in [-1, 1] is redrawn with
// probability TrendChangeChance and biases every value by trend*TrendStrength.
type scalperStream struct {
	src    Source
	params models.ScalperParams
	trend  float64
}

func NewScalperStream(src Source, params models.ScalperParams) Stream {
	return &scalperStream{src: src, params: params}
}

func (s *scalperStream) Next() float64 {
	if s.src.Float64() < s.params.TrendChangeChance {
		s.trend = uniform(s.src, -1, 1)
	}
	v := uniform(s.src, s.params.BaseMin, s.params.BaseMax) + s.trend*s.params.TrendStrength
	return math.Max(s.params.MinValue, math.Min(v, s.params.MaxValue))
}

func (s *scalperStream) Reset() {
	s.trend = 0
}

// Trend exposes the current trend for tests.
func (s *scalperStream) Trend() float64 {
	return s.trend
}

// NewStream builds the stream for profile from params.
func NewStream(profile models.Profile, src Source, params models.Params) Stream {
	switch profile {
	case models.ProfileMEV:
		return NewMEVStream(src, params.MEV)
	case models.ProfileScalper:
		return NewScalperStream(src, params.Scalper)
	default:
		return NewRandomStream(src, params.Random)
	}
}
