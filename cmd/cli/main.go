package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hackneyvolunteers/shifthub/cmd/cli/commands"
	"github.com/hackneyvolunteers/shifthub/internal/config"
	"github.com/hackneyvolunteers/shifthub/pkg/clock"
	"github.com/hackneyvolunteers/shifthub/pkg/core/services"
	"github.com/hackneyvolunteers/shifthub/pkg/events"
	"github.com/hackneyvolunteers/shifthub/pkg/postgres"
	"github.com/hackneyvolunteers/shifthub/pkg/utils/logging"
)

var (
	env string
	app *commands.AppContext
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "shifthub",
		Short: "ShiftHub CLI - Manage volunteer shift registrations",
		Long:  `A CLI tool for managing volunteer shift registrations: joining, reviewing, attendance tracking and periodic status sweeps.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			teardownApp()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(commands.MigrateCmd(app))
	rootCmd.AddCommand(commands.DefineShiftSeriesCmd(app))
	rootCmd.AddCommand(commands.ViewShiftCmd(app))
	rootCmd.AddCommand(commands.ReviewQueueCmd(app))
	rootCmd.AddCommand(commands.JoinShiftCmd(app))
	rootCmd.AddCommand(commands.CancelJoinCmd(app))
	rootCmd.AddCommand(commands.ApproveCmd(app))
	rootCmd.AddCommand(commands.RejectCmd(app))
	rootCmd.AddCommand(commands.RemoveCmd(app))
	rootCmd.AddCommand(commands.LeaveShiftCmd(app))
	rootCmd.AddCommand(commands.CheckInCmd(app))
	rootCmd.AddCommand(commands.CheckOutCmd(app))
	rootCmd.AddCommand(commands.VerifyCheckInCmd(app))
	rootCmd.AddCommand(commands.ReviewShiftCmd(app))
	rootCmd.AddCommand(commands.SweepCmd(app))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, database and event bus. The commands hold a
// pointer to the shared AppContext, so dependencies initialized here are
// visible to whichever command runs.
func initApp() error {
	var err error

	app.Ctx = context.Background()
	app.Clock = clock.Real{}

	app.Logger, err = logging.InitLogger(env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Info("Starting application", zap.String("environment", env))

	app.Cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully")

	app.Database, err = postgres.NewDB(app.Ctx, app.Cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.Logger.Info("Database connection established")

	if app.Cfg.NATSURL != "" {
		app.Bus, err = events.NewNATSBus(app.Cfg.NATSURL, app.Logger)
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		app.Logger.Info("Connected to NATS", zap.String("url", app.Cfg.NATSURL))
	} else {
		app.Bus = events.NewMemoryBus(app.Logger)
		app.Logger.Debug("Using in-process event bus")
	}

	// Review events feed the skill re-evaluation handler.
	handler := services.NewReviewedEventHandler(app.Database, app.Logger)
	if err := app.Bus.Subscribe(events.SubjectShiftVolunteerReviewed, handler); err != nil {
		return fmt.Errorf("failed to subscribe to reviewed events: %w", err)
	}

	return nil
}

func teardownApp() {
	if app.Bus != nil {
		app.Bus.Close()
	}
	if app.Database != nil {
		app.Database.Close()
	}
	if app.Logger != nil {
		app.Logger.Sync()
	}
}

func init() {
	app = &commands.AppContext{}
}
