package commands

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hackneyvolunteers/shifthub/pkg/core/services"
)

// ViewShiftCmd creates the viewShift command
func ViewShiftCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "viewShift <shift_id>",
		Short: "View a shift and all its registrations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shiftID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("shift_id must be a UUID: %w", err)
			}

			shift, err := app.Database.GetShift(app.Ctx, shiftID)
			if err != nil {
				return fmt.Errorf("failed to fetch shift: %w", err)
			}

			regs, err := services.GetByShiftID(app.Ctx, app.Database, shiftID)
			if err != nil {
				return err
			}

			fmt.Printf("\n%s (%s)\n", shift.Name, shift.Status)
			fmt.Printf("  %s - %s\n", shift.StartTime.Format("2006-01-02 15:04"), shift.EndTime.Format("15:04"))
			if shift.NumberOfParticipants != nil {
				fmt.Printf("  Capacity: %d/%d", shift.JoinedParticipants, *shift.NumberOfParticipants)
				if shift.AvailableSlots != nil {
					fmt.Printf(" (%d slots open)", *shift.AvailableSlots)
				}
				fmt.Println()
			}
			if shift.Rating > 0 {
				fmt.Printf("  Rating: %.1f\n", shift.Rating)
			}

			fmt.Printf("\nRegistrations (%d):\n", len(regs))
			for _, reg := range regs {
				line := fmt.Sprintf("  %s  %s  account=%s", reg.ID, reg.Status, reg.AccountID)
				if !reg.Active {
					line += "  (inactive)"
				}
				if reg.RejectionReason != nil {
					line += fmt.Sprintf("  reason=%q", *reg.RejectionReason)
				}
				fmt.Println(line)
			}
			fmt.Println()
			return nil
		},
	}
}

// ReviewQueueCmd creates the reviewQueue command
func ReviewQueueCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reviewQueue <shift_id>",
		Short: "List pending registrations for a shift with review hints",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shiftID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("shift_id must be a UUID: %w", err)
			}

			reviews, err := services.ListPendingReviews(app.Ctx, app.Database, app.Logger, shiftID)
			if err != nil {
				return err
			}

			if len(reviews) == 0 {
				fmt.Println("\nNo pending registrations.")
				return nil
			}

			fmt.Printf("\nPending registrations (%d):\n", len(reviews))
			for _, review := range reviews {
				reg := review.Registration
				line := fmt.Sprintf("  %s  account=%s", reg.ID, reg.AccountID)
				if !reg.MeetSkillRequirements {
					line += "  ⚠ skill requirements not met"
				}
				if review.HasTravelingConstrainedShift {
					line += "  ⚠ travel conflict with an approved shift"
				}
				fmt.Println(line)
			}
			fmt.Println()
			return nil
		},
	}
}
