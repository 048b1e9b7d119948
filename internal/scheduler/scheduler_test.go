package scheduler

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pruner struct{ calls int }

func (p *pruner) Prune(context.Context) (int, error) {
	p.calls++
	return 2, nil
}

type expirer struct{}

func (expirer) ExpirePlans(context.Context) (int, error) { return 0, stderrors.New("redis down") }

type prices struct{}

func (prices) Refresh(context.Context) (decimal.Decimal, error) { return decimal.NewFromInt(2), nil }

type evictor struct{ calls int }

func (e *evictor) EvictIdle() int {
	e.calls++
	return 1
}

var now = time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)

var specs = Specs{
	BoosterPrune: "0 0 * * * *",
	PlanExpiry:   "0 */5 * * * *",
	PriceRefresh: "*/30 * * * * *",
}

func TestNew_RegistersConfiguredJobs(t *testing.T) {
	c, err := New(specs, Deps{Boosters: &pruner{}, Plans: expirer{}})
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 2)

	c, err = New(specs, Deps{Boosters: &pruner{}, Plans: expirer{}, Prices: prices{}})
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 3)
}

func TestNew_InvalidSpec(t *testing.T) {
	_, err := New(Specs{BoosterPrune: "every hour"}, Deps{Boosters: &pruner{}})
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	p := &pruner{}
	run("booster.prune", func(ctx context.Context) error {
		_, err := p.Prune(ctx)
		return err
	})
	assert.Equal(t, 1, p.calls)

	assert.NotPanics(t, func() {
		run("boom", func(context.Context) error { panic("boom") })
	})
}

func TestNew_StreamEvictionSharesPruneSchedule(t *testing.T) {
	e := &evictor{}
	c, err := New(specs, Deps{Boosters: &pruner{}, Streams: e})
	require.NoError(t, err)
	require.Len(t, c.Entries(), 2)
	assert.Equal(t, c.Entries()[0].Schedule.Next(now), c.Entries()[1].Schedule.Next(now))

	c.Entries()[1].Job.Run()
	c.Entries()[0].Job.Run()
	assert.Equal(t, 1, e.calls)
}
