package commands

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hackneyvolunteers/shifthub/pkg/core/services"
)

// JoinShiftCmd creates the joinShift command
func JoinShiftCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "joinShift <account_id> <shift_id>",
		Short: "Register a volunteer for a shift (pending review)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			accountID, shiftID, err := parseTwoUUIDs(args[0], args[1], "account_id", "shift_id")
			if err != nil {
				return err
			}

			reg, err := services.JoinShift(app.Ctx, app.Database, app.Clock, app.Logger, accountID, shiftID)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Registration created: %s (status %s)\n", reg.ID, reg.Status)
			if !reg.MeetSkillRequirements {
				fmt.Println("⚠ Volunteer does not yet meet the shift's skill requirements")
			}
			fmt.Println()
			return nil
		},
	}
}

// CancelJoinCmd creates the cancelJoin command
func CancelJoinCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancelJoin <account_id> <registration_id>",
		Short: "Cancel a volunteer's own pending registration",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			accountID, registrationID, err := parseTwoUUIDs(args[0], args[1], "account_id", "registration_id")
			if err != nil {
				return err
			}

			if err := services.CancelJoin(app.Ctx, app.Database, app.Logger, accountID, registrationID); err != nil {
				return err
			}
			fmt.Println("\n✓ Registration cancelled")
			return nil
		},
	}
}

// ApproveCmd creates the approve command
func ApproveCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "approve <censor_id> <registration_id>...",
		Short: "Approve one or more pending registrations",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			censorID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("censor_id must be a UUID: %w", err)
			}
			ids, err := parseUUIDs(args[1:])
			if err != nil {
				return err
			}

			result := services.ApproveMany(app.Ctx, app.Database, app.Clock, app.Logger, censorID, ids)
			printBatchResult("approved", result)
			return nil
		},
	}
}

// RejectCmd creates the reject command
func RejectCmd(app *AppContext) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "reject <censor_id> <registration_id>...",
		Short: "Reject one or more pending registrations",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			censorID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("censor_id must be a UUID: %w", err)
			}
			ids, err := parseUUIDs(args[1:])
			if err != nil {
				return err
			}

			result := services.RejectMany(app.Ctx, app.Database, app.Clock, app.Logger, censorID, ids, reason)
			printBatchResult("rejected", result)
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "Rejection reason shown to the volunteer")
	cmd.MarkFlagRequired("reason")

	return cmd
}

// RemoveCmd creates the remove command
func RemoveCmd(app *AppContext) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "remove <censor_id> <registration_id>...",
		Short: "Remove one or more approved volunteers from their shift",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			censorID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("censor_id must be a UUID: %w", err)
			}
			ids, err := parseUUIDs(args[1:])
			if err != nil {
				return err
			}

			result := services.RemoveMany(app.Ctx, app.Database, app.Clock, app.Logger, censorID, ids, reason)
			printBatchResult("removed", result)
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "Removal reason shown to the volunteer")
	cmd.MarkFlagRequired("reason")

	return cmd
}

// LeaveShiftCmd creates the leaveShift command
func LeaveShiftCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "leaveShift <account_id> <registration_id>",
		Short: "Withdraw an approved volunteer from an upcoming shift",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			accountID, registrationID, err := parseTwoUUIDs(args[0], args[1], "account_id", "registration_id")
			if err != nil {
				return err
			}

			if err := services.LeaveShift(app.Ctx, app.Database, app.Clock, app.Logger, accountID, registrationID); err != nil {
				return err
			}
			fmt.Println("\n✓ Left shift")
			return nil
		},
	}
}

// CheckInCmd creates the checkIn command
func CheckInCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "checkIn <account_id> <registration_id>",
		Short: "Check a volunteer in to their shift",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			accountID, registrationID, err := parseTwoUUIDs(args[0], args[1], "account_id", "registration_id")
			if err != nil {
				return err
			}

			if err := services.CheckIn(app.Ctx, app.Database, app.Clock, app.Logger, accountID, registrationID); err != nil {
				return err
			}
			fmt.Println("\n✓ Checked in")
			return nil
		},
	}
}

// CheckOutCmd creates the checkOut command
func CheckOutCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "checkOut <account_id> <registration_id>",
		Short: "Check a volunteer out of their shift",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			accountID, registrationID, err := parseTwoUUIDs(args[0], args[1], "account_id", "registration_id")
			if err != nil {
				return err
			}

			if err := services.CheckOut(app.Ctx, app.Database, app.Clock, app.Logger, accountID, registrationID); err != nil {
				return err
			}
			fmt.Println("\n✓ Checked out")
			return nil
		},
	}
}

// VerifyCheckInCmd creates the verifyCheckIn command
func VerifyCheckInCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "verifyCheckIn <verifier_id> <registration_id>...",
		Short: "Mark one or more checked-in volunteers as verified attendants",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			verifierID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("verifier_id must be a UUID: %w", err)
			}
			ids, err := parseUUIDs(args[1:])
			if err != nil {
				return err
			}

			result := services.VerifyCheckInMany(app.Ctx, app.Database, app.Logger, verifierID, ids)
			printBatchResult("verified", result)
			return nil
		},
	}
}

// ReviewShiftCmd creates the reviewShift command
func ReviewShiftCmd(app *AppContext) *cobra.Command {
	var comment string

	cmd := &cobra.Command{
		Use:   "reviewShift <account_id> <registration_id> <rating>",
		Short: "Leave a rating for a completed shift",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			accountID, registrationID, err := parseTwoUUIDs(args[0], args[1], "account_id", "registration_id")
			if err != nil {
				return err
			}
			rating, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("rating must be a number: %w", err)
			}

			err = services.ReviewShift(app.Ctx, app.Database, app.Clock, app.Logger, app.Bus, accountID, registrationID, rating, comment)
			if err != nil {
				return err
			}
			fmt.Println("\n✓ Review recorded")
			return nil
		},
	}

	cmd.Flags().StringVar(&comment, "comment", "", "Optional review comment")

	return cmd
}

func parseTwoUUIDs(a, b, nameA, nameB string) (uuid.UUID, uuid.UUID, error) {
	idA, err := uuid.Parse(a)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("%s must be a UUID: %w", nameA, err)
	}
	idB, err := uuid.Parse(b)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("%s must be a UUID: %w", nameB, err)
	}
	return idA, idB, nil
}

func parseUUIDs(args []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, len(args))
	for i, arg := range args {
		id, err := uuid.Parse(arg)
		if err != nil {
			return nil, fmt.Errorf("registration_id %q must be a UUID: %w", arg, err)
		}
		ids[i] = id
	}
	return ids, nil
}

func printBatchResult(verb string, result services.BatchResult) {
	fmt.Printf("\n✓ %d %s\n", len(result.Success), verb)
	if len(result.Errors) > 0 {
		fmt.Printf("⚠ %d failed:\n", len(result.Errors))
		for _, itemErr := range result.Errors {
			fmt.Printf("  ✗ %s: %v\n", itemErr.ID, itemErr.Err)
		}
	}
	fmt.Println()
}
