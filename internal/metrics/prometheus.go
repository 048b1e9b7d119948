package metrics

import (
	"database/sql"
	stderrors "errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StoreApplyDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "kc_store_apply_duration_seconds",
		Help:    "Time spent in a single snapshot read-modify-write",
		Buckets: prometheus.DefBuckets,
	})

	StoreApplyErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kc_store_apply_errors_total",
		Help: "Snapshot writes that failed at the storage layer",
	})

	SimulationTicks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kc_simulation_ticks_total",
		Help: "Generated data points by profile",
	}, []string{"profile"})

	SimulationMalformed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kc_simulation_malformed_values_total",
		Help: "Non-numeric base values replaced by zero",
	})

	BalanceCredited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kc_balance_credited_total",
		Help: "Sum of simulation deltas applied to balances",
	})

	BoosterPurchases = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kc_booster_purchases_total",
		Help: "Booster purchase attempts by method and result",
	}, []string{"booster_id", "method", "result"})

	Withdrawals = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kc_withdrawal_transitions_total",
		Help: "Withdrawal session transitions by resulting state",
	}, []string{"state"})

	PaymentFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kc_payment_failures_total",
		Help: "Failed external payments by operation",
	}, []string{"operation"})

	SchedulerRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kc_scheduler_runs_total",
		Help: "Background job runs by job and result",
	}, []string{"job", "result"})

	PriceQuote = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kc_price_quote",
		Help: "Last fetched spot price of the payment asset",
	})
)

func ObserveStoreApply(duration time.Duration, err error) {
	StoreApplyDuration.Observe(duration.Seconds())
	if err != nil {
		StoreApplyErrors.Inc()
	}
}

func IncSimulationTick(profile string) {
	SimulationTicks.WithLabelValues(label(profile)).Inc()
}

func IncSimulationMalformed() {
	SimulationMalformed.Inc()
}

// AddBalanceCredited ignores negative deltas; counters only grow.
func AddBalanceCredited(delta float64) {
	if delta > 0 {
		BalanceCredited.Add(delta)
	}
}

func IncBoosterPurchase(boosterID, method, result string) {
	BoosterPurchases.WithLabelValues(label(boosterID), label(method), label(result)).Inc()
}

func IncWithdrawal(state string) {
	Withdrawals.WithLabelValues(label(state)).Inc()
}

func IncPaymentFailure(operation string) {
	PaymentFailures.WithLabelValues(label(operation)).Inc()
}

func IncSchedulerRun(job string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	SchedulerRuns.WithLabelValues(label(job), result).Inc()
}

func SetPriceQuote(price float64) {
	PriceQuote.Set(price)
}

func label(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "unknown"
	}
	return v
}

// RegisterDBStats exposes connection pool stats of db under the given name.
// Registering the same name twice is not an error.
func RegisterDBStats(reg prometheus.Registerer, db *sql.DB, name string) error {
	err := reg.Register(collectors.NewDBStatsCollector(db, name))
	var already prometheus.AlreadyRegisteredError
	if stderrors.As(err, &already) {
		return nil
	}
	return err
}
