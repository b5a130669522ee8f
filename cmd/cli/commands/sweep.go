package commands

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hackneyvolunteers/shifthub/pkg/core/sweeper"
)

// SweepCmd creates the sweep command. By default it runs both sweeps once;
// with --daemon it keeps sweeping on an interval and serves Prometheus
// metrics when metricsAddr is configured.
func SweepCmd(app *AppContext) *cobra.Command {
	var daemon bool
	var intervalMinutes int

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Update shift statuses and auto-reject stale pending registrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := sweeper.New(app.Database, app.Clock, app.Logger, app.Cfg.SweepPageSize)

			if !daemon {
				stats, err := s.SweepShiftStatuses(app.Ctx)
				if err != nil {
					return fmt.Errorf("shift status sweep failed: %w", err)
				}
				rejected, err := s.SweepStalePending(app.Ctx)
				if err != nil {
					return fmt.Errorf("stale pending sweep failed: %w", err)
				}

				fmt.Printf("\nSweep complete\n")
				fmt.Printf("  Shifts updated:      %d\n", stats.Total())
				fmt.Printf("  Stale regs rejected: %d\n\n", rejected)
				return nil
			}

			interval := time.Duration(intervalMinutes) * time.Minute
			if intervalMinutes <= 0 {
				interval = time.Duration(app.Cfg.SweepIntervalMinutes) * time.Minute
			}

			if app.Cfg.MetricsAddr != "" {
				mux := http.NewServeMux()
				mux.Handle("/metrics", promhttp.Handler())
				go func() {
					app.Logger.Info("Serving metrics", zap.String("addr", app.Cfg.MetricsAddr))
					if err := http.ListenAndServe(app.Cfg.MetricsAddr, mux); err != nil {
						app.Logger.Error("Metrics server stopped", zap.Error(err))
					}
				}()
			}

			app.Logger.Info("Starting sweep daemon", zap.Duration("interval", interval))
			runner := sweeper.NewRunner(s, interval, app.Logger)
			runner.Run(app.Ctx)
			return nil
		},
	}

	cmd.Flags().BoolVar(&daemon, "daemon", false, "Keep sweeping on an interval until interrupted")
	cmd.Flags().IntVar(&intervalMinutes, "interval", 0, "Sweep interval in minutes (daemon mode, defaults to config)")

	return cmd
}
