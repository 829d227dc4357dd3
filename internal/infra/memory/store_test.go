package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/vet-scheduler/internal/domain"
	"github.com/BruksfildServices01/vet-scheduler/internal/domain/uow"
	"github.com/BruksfildServices01/vet-scheduler/internal/httperr"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

func seedSupply(s *Store, stock int64) models.SupplyItem {
	return s.PutSupplyItem(models.SupplyItem{
		Name:         "Jeringa",
		CurrentStock: decimal.NewFromInt(stock),
		MinimumStock: decimal.NewFromInt(2),
		Batches: []models.Batch{{
			LotCode:      "L1",
			ExpiresAt:    time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
			InitialQty:   decimal.NewFromInt(stock),
			RemainingQty: decimal.NewFromInt(stock),
		}},
	})
}

func TestRollbackDiscardsStagedWrites(t *testing.T) {
	s := New()
	item := seedSupply(s, 10)
	boom := errors.New("boom")

	err := s.Do(context.Background(), func(ctx context.Context, tx uow.Tx) error {
		locked, err := tx.LockSupplyItem(ctx, item.ID)
		require.NoError(t, err)
		locked.CurrentStock = decimal.Zero
		require.NoError(t, tx.SaveSupplyItem(ctx, locked))
		require.NoError(t, tx.UpdateBatchRemaining(ctx, item.Batches[0].ID, decimal.Zero))
		require.NoError(t, tx.CreateMovement(ctx, &models.StockMovement{Reference: "r"}))

		// a própria transação enxerga o rascunho
		seen, err := tx.GetSupplyItem(ctx, item.ID)
		require.NoError(t, err)
		assert.True(t, seen.CurrentStock.IsZero())
		return boom
	})
	require.ErrorIs(t, err, boom)

	after, _ := s.SupplyItem(item.ID)
	assert.True(t, decimal.NewFromInt(10).Equal(after.CurrentStock))
	assert.Equal(t, 0, after.Version)
	assert.True(t, decimal.NewFromInt(10).Equal(s.Batches(item.ID)[0].RemainingQty))
	assert.Empty(t, s.Movements())
}

func TestCommitAppliesWritesAndBumpsVersion(t *testing.T) {
	s := New()
	item := seedSupply(s, 10)

	err := s.Do(context.Background(), func(ctx context.Context, tx uow.Tx) error {
		locked, err := tx.LockSupplyItem(ctx, item.ID)
		if err != nil {
			return err
		}
		locked.CurrentStock = decimal.NewFromInt(7)
		return tx.SaveSupplyItem(ctx, locked)
	})
	require.NoError(t, err)

	after, _ := s.SupplyItem(item.ID)
	assert.True(t, decimal.NewFromInt(7).Equal(after.CurrentStock))
	assert.Equal(t, 1, after.Version)
}

func TestLockWaitHonoursContext(t *testing.T) {
	s := New()
	item := seedSupply(s, 1)

	holding := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = s.Do(context.Background(), func(ctx context.Context, tx uow.Tx) error {
			_, err := tx.LockSupplyItem(ctx, item.ID)
			close(holding)
			<-release
			return err
		})
	}()
	<-holding

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := s.Do(ctx, func(ctx context.Context, tx uow.Tx) error {
		_, err := tx.LockSupplyItem(ctx, item.ID)
		return err
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)

	// liberado ao fim da primeira transação
	err = s.Do(context.Background(), func(ctx context.Context, tx uow.Tx) error {
		_, err := tx.LockSupplyItem(ctx, item.ID)
		return err
	})
	assert.NoError(t, err)
}

func TestLockIsReentrant(t *testing.T) {
	s := New()
	item := seedSupply(s, 1)

	err := s.Do(context.Background(), func(ctx context.Context, tx uow.Tx) error {
		for i := 0; i < 3; i++ {
			if _, err := tx.LockSupplyItem(ctx, item.ID); err != nil {
				return err
			}
		}
		return tx.LockCalendar(ctx)
	})
	assert.NoError(t, err)
}

func TestOptimisticAppointmentWrites(t *testing.T) {
	s := New()
	ap := s.PutAppointment(models.Appointment{Status: "CONFIRMED"})

	first := make(chan struct{})
	second := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- s.Do(context.Background(), func(ctx context.Context, tx uow.Tx) error {
			got, err := tx.GetAppointment(ctx, ap.ID)
			if err != nil {
				return err
			}
			close(first)
			<-second
			got.Status = "NO_SHOW"
			return tx.UpdateAppointment(ctx, got)
		})
	}()
	<-first

	err := s.Do(context.Background(), func(ctx context.Context, tx uow.Tx) error {
		got, err := tx.GetAppointment(ctx, ap.ID)
		if err != nil {
			return err
		}
		got.Status = "IN_ATTENTION"
		return tx.UpdateAppointment(ctx, got)
	})
	require.NoError(t, err)
	close(second)

	err = <-done
	assert.True(t, httperr.IsBusiness(err, "concurrent_modification"))

	stored, _ := s.Appointment(ap.ID)
	assert.Equal(t, "IN_ATTENTION", stored.Status)
	assert.Equal(t, 1, stored.Version)
}

func TestUpdateWithStaleVersionFailsImmediately(t *testing.T) {
	s := New()
	ap := s.PutAppointment(models.Appointment{Status: "CONFIRMED", Version: 3})

	err := s.Do(context.Background(), func(ctx context.Context, tx uow.Tx) error {
		stale := ap
		stale.Version = 2
		return tx.UpdateAppointment(ctx, &stale)
	})
	assert.True(t, httperr.IsBusiness(err, "concurrent_modification"))
}

func TestBlocksAndNotFound(t *testing.T) {
	s := New()
	day := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	var blockID uuid.UUID

	require.NoError(t, s.Do(context.Background(), func(ctx context.Context, tx uow.Tx) error {
		b := &models.ScheduleBlock{StartTime: day.Add(9 * time.Hour), EndTime: day.Add(10 * time.Hour), Reason: "capacitación"}
		if err := tx.CreateBlock(ctx, b); err != nil {
			return err
		}
		blockID = b.ID
		return nil
	}))

	require.NoError(t, s.Do(context.Background(), func(ctx context.Context, tx uow.Tx) error {
		blocks, err := tx.ListBlocks(ctx, day, day.AddDate(0, 0, 1))
		require.NoError(t, err)
		require.Len(t, blocks, 1)

		other, err := tx.ListBlocks(ctx, day.AddDate(0, 0, 1), day.AddDate(0, 0, 2))
		require.NoError(t, err)
		assert.Empty(t, other)

		return tx.DeleteBlock(ctx, blockID)
	}))

	err := s.Do(context.Background(), func(ctx context.Context, tx uow.Tx) error {
		_, err := tx.GetBlock(ctx, blockID)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = s.Do(context.Background(), func(ctx context.Context, tx uow.Tx) error {
		_, err := tx.GetService(ctx, uuid.New())
		return err
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBatchCheckConstraint(t *testing.T) {
	s := New()
	item := seedSupply(s, 5)

	err := s.Do(context.Background(), func(ctx context.Context, tx uow.Tx) error {
		return tx.UpdateBatchRemaining(ctx, item.Batches[0].ID, decimal.NewFromInt(-1))
	})
	assert.Error(t, err)

	err = s.Do(context.Background(), func(ctx context.Context, tx uow.Tx) error {
		return tx.UpdateBatchRemaining(ctx, item.Batches[0].ID, decimal.NewFromInt(6))
	})
	assert.Error(t, err)
}
