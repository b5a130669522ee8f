// Package sweeper promotes shifts between Pending/Ongoing/Completed as time
// passes and auto-rejects registrations left Pending past their shift start.
// Both sweeps read bounded keyset pages so no run holds locks over a full
// table scan, and both are idempotent: re-running on an unchanged shift set
// produces no writes.
package sweeper

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hackneyvolunteers/shifthub/pkg/clock"
	"github.com/hackneyvolunteers/shifthub/pkg/core/lifecycle"
	"github.com/hackneyvolunteers/shifthub/pkg/db"
)

// DefaultPageSize bounds how many rows a single sweep page touches.
const DefaultPageSize = 100

// AutoRejectReason is stamped on registrations rejected by the stale-pending
// sweep.
const AutoRejectReason = "Registration was not reviewed before the shift started"

// Store is the subset of datastore operations the sweeps need.
type Store interface {
	ListShiftsNeedingStatusUpdate(ctx context.Context, now time.Time, afterID uuid.UUID, limit int) ([]db.Shift, error)
	BulkUpdateShiftStatus(ctx context.Context, ids []uuid.UUID, status lifecycle.ShiftStatus) (int64, error)
	ListStalePendingRegistrations(ctx context.Context, now time.Time, afterID uuid.UUID, limit int) ([]db.Registration, error)
	BulkRejectRegistrations(ctx context.Context, ids []uuid.UUID, reason string) (int64, error)
}

// Sweeper runs the two periodic sweeps.
type Sweeper struct {
	store    Store
	clk      clock.Clock
	logger   *zap.Logger
	pageSize int
}

// New creates a Sweeper. pageSize <= 0 falls back to DefaultPageSize.
func New(store Store, clk clock.Clock, logger *zap.Logger, pageSize int) *Sweeper {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Sweeper{store: store, clk: clk, logger: logger, pageSize: pageSize}
}

// ShiftSweepStats counts status promotions by target status.
type ShiftSweepStats struct {
	BecamePending   int64
	BecameOngoing   int64
	BecameCompleted int64
}

// Total returns the number of shifts updated.
func (s ShiftSweepStats) Total() int64 {
	return s.BecamePending + s.BecameOngoing + s.BecameCompleted
}

// SweepShiftStatuses pages through shifts whose stored status differs from
// the status derived at sweep start, partitions each page into target-status
// buckets and issues one bulk update per bucket.
func (s *Sweeper) SweepShiftStatuses(ctx context.Context) (ShiftSweepStats, error) {
	var stats ShiftSweepStats
	now := s.clk.Now()
	afterID := uuid.Nil

	for {
		shifts, err := s.store.ListShiftsNeedingStatusUpdate(ctx, now, afterID, s.pageSize)
		if err != nil {
			return stats, fmt.Errorf("failed to list shifts needing status update: %w", err)
		}
		if len(shifts) == 0 {
			break
		}

		buckets := make(map[lifecycle.ShiftStatus][]uuid.UUID)
		for _, shift := range shifts {
			derived := lifecycle.DeriveShiftStatus(now, shift.StartTime, shift.EndTime)
			buckets[derived] = append(buckets[derived], shift.ID)
		}

		for status, ids := range buckets {
			updated, err := s.store.BulkUpdateShiftStatus(ctx, ids, status)
			if err != nil {
				return stats, fmt.Errorf("failed to bulk update shift status to %s: %w", status, err)
			}
			switch status {
			case lifecycle.ShiftPending:
				stats.BecamePending += updated
			case lifecycle.ShiftOngoing:
				stats.BecameOngoing += updated
			case lifecycle.ShiftCompleted:
				stats.BecameCompleted += updated
			}
			shiftStatusUpdates.WithLabelValues(string(status)).Add(float64(updated))
		}

		afterID = shifts[len(shifts)-1].ID
		if len(shifts) < s.pageSize {
			break
		}
	}

	if stats.Total() > 0 {
		s.logger.Info("Shift status sweep updated shifts",
			zap.Int64("became_pending", stats.BecamePending),
			zap.Int64("became_ongoing", stats.BecameOngoing),
			zap.Int64("became_completed", stats.BecameCompleted))
	}
	return stats, nil
}

// SweepStalePending auto-rejects active Pending registrations whose shift
// started before this sweep. A volunteer never reviewed before the shift
// began cannot be approved anymore without the explicit re-approval path.
func (s *Sweeper) SweepStalePending(ctx context.Context) (int64, error) {
	var rejected int64
	now := s.clk.Now()
	afterID := uuid.Nil

	for {
		regs, err := s.store.ListStalePendingRegistrations(ctx, now, afterID, s.pageSize)
		if err != nil {
			return rejected, fmt.Errorf("failed to list stale pending registrations: %w", err)
		}
		if len(regs) == 0 {
			break
		}

		ids := make([]uuid.UUID, len(regs))
		for i, reg := range regs {
			ids[i] = reg.ID
		}

		n, err := s.store.BulkRejectRegistrations(ctx, ids, AutoRejectReason)
		if err != nil {
			return rejected, fmt.Errorf("failed to bulk reject stale registrations: %w", err)
		}
		rejected += n
		staleRegistrationsRejected.Add(float64(n))

		afterID = regs[len(regs)-1].ID
		if len(regs) < s.pageSize {
			break
		}
	}

	if rejected > 0 {
		s.logger.Info("Stale pending sweep rejected registrations",
			zap.Int64("rejected", rejected))
	}
	return rejected, nil
}
