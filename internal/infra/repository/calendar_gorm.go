package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/vet-scheduler/internal/domain"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

// calendarLockKey identifica o advisory lock da agenda da clínica.
const calendarLockKey int64 = 0x7665_7463_616c

func (t *gormTx) LockCalendar(ctx context.Context) error {
	return t.conn(ctx).Exec("SELECT pg_advisory_xact_lock(?)", calendarLockKey).Error
}

func (t *gormTx) ListBlocks(
	ctx context.Context,
	from time.Time,
	to time.Time,
) ([]models.ScheduleBlock, error) {

	var blocks []models.ScheduleBlock
	if err := t.conn(ctx).
		Where("start_time < ? AND end_time > ?", to, from).
		Order("start_time ASC").
		Find(&blocks).Error; err != nil {
		return nil, err
	}
	return blocks, nil
}

func (t *gormTx) GetBlock(ctx context.Context, id uuid.UUID) (*models.ScheduleBlock, error) {
	var b models.ScheduleBlock
	if err := t.conn(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (t *gormTx) CreateBlock(ctx context.Context, b *models.ScheduleBlock) error {
	return t.conn(ctx).Create(b).Error
}

func (t *gormTx) DeleteBlock(ctx context.Context, id uuid.UUID) error {
	res := t.conn(ctx).Delete(&models.ScheduleBlock{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
