// Package scheduler runs the periodic maintenance jobs.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"

	"kc-mini-app-backend/internal/common/logger"
	"kc-mini-app-backend/internal/metrics"
)

const jobTimeout = time.Minute

var errPanic = errors.New("job panicked")

type BoosterPruner interface {
	Prune(ctx context.Context) (int, error)
}

type PlanExpirer interface {
	ExpirePlans(ctx context.Context) (int, error)
}

type PriceRefresher interface {
	Refresh(ctx context.Context) (decimal.Decimal, error)
}

type StreamEvictor interface {
	EvictIdle() int
}

type Specs struct {
	BoosterPrune string
	PlanExpiry   string
	PriceRefresh string
}

type Deps struct {
	Boosters BoosterPruner
	Plans    PlanExpirer
	Prices   PriceRefresher
	// Streams shares the booster prune schedule.
	Streams StreamEvictor
}

// New registers every job whose dependency is set. Specs use the six field
// cron format with seconds.
func New(specs Specs, deps Deps) (*cron.Cron, error) {
	c := cron.New(cron.WithSeconds(), cron.WithLocation(time.UTC))

	if deps.Boosters != nil {
		if err := addJob(c, specs.BoosterPrune, "booster.prune", func(ctx context.Context) error {
			n, err := deps.Boosters.Prune(ctx)
			if n > 0 {
				logger.Info().Int("removed", n).Msg("Expired boosters pruned")
			}
			return err
		}); err != nil {
			return nil, err
		}
	}
	if deps.Streams != nil {
		if err := addJob(c, specs.BoosterPrune, "simulation.evict", func(context.Context) error {
			if n := deps.Streams.EvictIdle(); n > 0 {
				logger.Info().Int("removed", n).Msg("Idle simulation sessions evicted")
			}
			return nil
		}); err != nil {
			return nil, err
		}
	}
	if deps.Plans != nil {
		if err := addJob(c, specs.PlanExpiry, "plan.expire", func(ctx context.Context) error {
			_, err := deps.Plans.ExpirePlans(ctx)
			return err
		}); err != nil {
			return nil, err
		}
	}
	if deps.Prices != nil {
		if err := addJob(c, specs.PriceRefresh, "price.refresh", func(ctx context.Context) error {
			_, err := deps.Prices.Refresh(ctx)
			return err
		}); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func addJob(c *cron.Cron, spec, name string, fn func(ctx context.Context) error) error {
	_, err := c.AddFunc(spec, func() { run(name, fn) })
	if err != nil {
		logger.Error().Err(err).Str("job", name).Str("spec", spec).Msg("Failed to register scheduler job")
	}
	return err
}

func run(name string, fn func(ctx context.Context) error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			logger.Error().Str("job", name).Interface("panic", recovered).Msg("Scheduler job panic recovered")
			metrics.IncSchedulerRun(name, errPanic)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	metrics.IncSchedulerRun(name, err)
	if err != nil {
		logger.Error().Err(err).Str("job", name).Msg("Scheduler job failed")
		return
	}
	logger.Debug().Str("job", name).Dur("cost", time.Since(start)).Msg("Scheduler job finished")
}
