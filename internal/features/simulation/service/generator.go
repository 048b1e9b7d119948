package service

import (
	"context"
	"math"
	"sync"
	"time"

	"kc-mini-app-backend/internal/common/errors"
	"kc-mini-app-backend/internal/common/logger"
	"kc-mini-app-backend/internal/features/multiplier"
	"kc-mini-app-backend/internal/features/simulation/models"
	statemodels "kc-mini-app-backend/internal/features/state/models"
	"kc-mini-app-backend/internal/features/state/repository"
	stateservice "kc-mini-app-backend/internal/features/state/service"
	"kc-mini-app-backend/internal/metrics"
)

const (
	DefaultCount = 10
	tick         = time.Second
)

type Config struct {
	WindowSize int
	MaxBatch   int
	// IdleAfter is how long an untouched session is kept before EvictIdle
	// drops it. Defaults to a day.
	IdleAfter time.Duration
	Params    models.Params
	// NewSource seeds the stream of each user and profile. Defaults to a
	// randomly seeded PCG.
	NewSource func() Source
}

// Generator turns base values into balance credits. Each tick resolves the
// multiplier and credits the balance inside one store transaction.
type Generator struct {
	store *stateservice.Store
	cfg   Config

	mu       sync.Mutex
	sessions map[int64]*session
}

// session holds the per-user streams so trend state survives between
// requests, plus the rolling chart window.
type session struct {
	mu      sync.Mutex
	streams map[models.Profile]Stream
	window  *Window
	// guarded by Generator.mu
	lastUsed time.Time
}

func NewGenerator(store *stateservice.Store, cfg Config) *Generator {
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = defaultWindowSize
	}
	if cfg.MaxBatch <= 0 {
		cfg.MaxBatch = 500
	}
	if cfg.IdleAfter <= 0 {
		cfg.IdleAfter = 24 * time.Hour
	}
	if cfg.NewSource == nil {
		cfg.NewSource = randomSource
	}
	return &Generator{
		store:    store,
		cfg:      cfg,
		sessions: make(map[int64]*session),
	}
}

func (g *Generator) session(userID int64) *session {
	g.mu.Lock()
	defer g.mu.Unlock()

	s, ok := g.sessions[userID]
	if !ok {
		s = &session{
			streams: make(map[models.Profile]Stream),
			window:  NewWindow(g.cfg.WindowSize),
		}
		g.sessions[userID] = s
	}
	s.lastUsed = g.store.Now()
	return s
}

// Simulated produces count points for profile starting count seconds ago.
// count <= 0 means DefaultCount; larger batches are capped at MaxBatch.
func (g *Generator) Simulated(ctx context.Context, userID int64, profile models.Profile, count int) (*models.SimulationResponse, error) {
	if count <= 0 {
		count = DefaultCount
	}
	if count > g.cfg.MaxBatch {
		count = g.cfg.MaxBatch
	}

	s := g.session(userID)
	s.mu.Lock()
	stream, ok := s.streams[profile]
	if !ok {
		stream = NewStream(profile, g.cfg.NewSource(), g.cfg.Params)
		s.streams[profile] = stream
	}
	start := g.store.Now().Add(-time.Duration(count) * tick)
	points, err := g.batch(ctx, userID, profile, stream, count, start, s.window)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	snap, err := g.store.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &models.SimulationResponse{
		Type:       profile,
		Points:     points,
		Multiplier: multiplier.Resolve(snap.User, snap.ActiveBoosters, g.store.Now()),
	}
	if snap.HasUser() {
		balance := snap.User.Balance
		resp.Balance = &balance
	}
	return resp, nil
}

// Batch materializes count points from stream with timestamps start,
// start+1s, ... Cancelling ctx stops between ticks and returns the points
// produced so far with the context error.
func (g *Generator) Batch(ctx context.Context, userID int64, profile models.Profile, stream Stream, count int, start time.Time) ([]models.DataPoint, error) {
	s := g.session(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return g.batch(ctx, userID, profile, stream, count, start, s.window)
}

func (g *Generator) batch(ctx context.Context, userID int64, profile models.Profile, stream Stream, count int, start time.Time, window *Window) ([]models.DataPoint, error) {
	points := make([]models.DataPoint, 0, count)
	defer func() { window.Push(points...) }()

	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return points, err
		}

		value, err := g.Tick(ctx, userID, profile, stream.Next())
		if err != nil {
			return points, err
		}
		points = append(points, models.DataPoint{
			Timestamp: start.Add(time.Duration(i) * tick).UnixMilli(),
			Value:     value,
		})
	}
	return points, nil
}

// Tick scales one base value by the current multiplier and credits the
// result to the balance when a user is loaded. It returns the credited delta.
func (g *Generator) Tick(ctx context.Context, userID int64, profile models.Profile, base float64) (float64, error) {
	if math.IsNaN(base) || math.IsInf(base, 0) {
		appErr := errors.NewMalformedInputError("base_value", base).WithUserID(userID)
		logger.Warn().
			Int64("user_id", userID).
			Str("profile", string(profile)).
			Str("error_code", string(appErr.Code)).
			Msg("Non-numeric simulation value replaced with 0")
		metrics.IncSimulationMalformed()
		base = 0
	}

	var adjusted float64
	_, err := g.store.Apply(ctx, userID, func(snap *statemodels.Snapshot) error {
		now := g.store.Now()
		adjusted = base * multiplier.Resolve(snap.User, snap.ActiveBoosters, now)
		if !snap.HasUser() {
			return repository.ErrSkip
		}
		snap.User.Balance += adjusted
		snap.User.UpdatedAt = now
		return nil
	})
	if err != nil {
		return 0, err
	}

	metrics.IncSimulationTick(string(profile))
	metrics.AddBalanceCredited(adjusted)
	return adjusted, nil
}

// Window returns the last points generated for the user, oldest first.
func (g *Generator) Window(userID int64) []models.DataPoint {
	return g.session(userID).window.Points()
}

func (g *Generator) WindowSize() int {
	return g.cfg.WindowSize
}

// Forget drops streams and window of a user, e.g. after the session data
// was cleared.
func (g *Generator) Forget(userID int64) {
	g.mu.Lock()
	delete(g.sessions, userID)
	g.mu.Unlock()
}

// EvictIdle drops sessions not used for IdleAfter and returns how many went.
// An evicted user restarts with fresh streams and an empty window.
func (g *Generator) EvictIdle() int {
	cutoff := g.store.Now().Add(-g.cfg.IdleAfter)

	g.mu.Lock()
	defer g.mu.Unlock()

	n := 0
	for id, s := range g.sessions {
		if s.lastUsed.Before(cutoff) {
			delete(g.sessions, id)
			n++
		}
	}
	return n
}

// Multiplier explains the multiplier the next tick would use.
func (g *Generator) Multiplier(ctx context.Context, userID int64) (multiplier.Breakdown, error) {
	snap, err := g.store.Snapshot(ctx, userID)
	if err != nil {
		return multiplier.Breakdown{}, err
	}
	return multiplier.Explain(snap.User, snap.ActiveBoosters, g.store.Now()), nil
}
