package sweeper

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sweepRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shifthub_sweep_runs_total",
		Help: "Sweep runs by outcome (ok, error, skipped).",
	}, []string{"outcome"})

	shiftStatusUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shifthub_shift_status_updates_total",
		Help: "Shift status promotions applied by the sweep, by target status.",
	}, []string{"status"})

	staleRegistrationsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shifthub_stale_registrations_rejected_total",
		Help: "Pending registrations auto-rejected after their shift started.",
	})
)
