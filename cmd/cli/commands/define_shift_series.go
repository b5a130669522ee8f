package commands

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hackneyvolunteers/shifthub/pkg/core/services"
)

// DefineShiftSeriesCmd creates the defineShiftSeries command
func DefineShiftSeriesCmd(app *AppContext) *cobra.Command {
	var (
		description     string
		durationMinutes int
		maxOccurrences  int
		participants    int
		autoStatus      bool
		checkInLimit    int
		checkOutLimit   int
		lat             float64
		lng             float64
	)

	cmd := &cobra.Command{
		Use:   "defineShiftSeries <activity_id> <name> <rrule>",
		Short: "Expand an RRULE into a series of shifts for an activity",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			activityID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("activity_id must be a UUID: %w", err)
			}

			params := services.ShiftSeriesParams{
				ActivityID:            activityID,
				Name:                  args[1],
				Description:           description,
				RRule:                 args[2],
				Duration:              time.Duration(durationMinutes) * time.Minute,
				MaxOccurrences:        maxOccurrences,
				AutomaticStatusUpdate: autoStatus,
			}
			if participants > 0 {
				params.NumberOfParticipants = &participants
			}
			if checkInLimit > 0 {
				params.CheckInLimitMinutes = &checkInLimit
			}
			if checkOutLimit > 0 {
				params.CheckOutLimitMinutes = &checkOutLimit
			}
			if cmd.Flags().Changed("lat") && cmd.Flags().Changed("lng") {
				params.Lat = &lat
				params.Lng = &lng
			}

			shifts, err := services.DefineShiftSeries(app.Ctx, app.Database, app.Clock, app.Logger, params)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Shift series created!\n\n")
			fmt.Printf("Shifts created: %d\n\n", len(shifts))
			for i, shift := range shifts {
				fmt.Printf("  %2d. %s  %s - %s\n",
					i+1,
					shift.ID,
					shift.StartTime.Format("2006-01-02 15:04"),
					shift.EndTime.Format("15:04"))
			}
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "Shift description")
	cmd.Flags().IntVar(&durationMinutes, "duration", 120, "Shift duration in minutes")
	cmd.Flags().IntVar(&maxOccurrences, "max-occurrences", 52, "Maximum number of shifts to create")
	cmd.Flags().IntVar(&participants, "participants", 0, "Participant cap (0 = uncapped)")
	cmd.Flags().BoolVar(&autoStatus, "auto-status", true, "Derive shift status from its time window")
	cmd.Flags().IntVar(&checkInLimit, "check-in-limit", 0, "Minutes before start that check-in opens")
	cmd.Flags().IntVar(&checkOutLimit, "check-out-limit", 0, "Minutes after end that check-out stays open")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Shift latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "Shift longitude")

	return cmd
}
