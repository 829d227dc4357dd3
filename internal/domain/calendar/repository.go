package calendar

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

type Repository interface {
	// LockCalendar serializa, até o fim da transação, quem grava na agenda.
	LockCalendar(ctx context.Context) error

	ListBlocks(ctx context.Context, from, to time.Time) ([]models.ScheduleBlock, error)
	GetBlock(ctx context.Context, id uuid.UUID) (*models.ScheduleBlock, error)
	CreateBlock(ctx context.Context, b *models.ScheduleBlock) error
	DeleteBlock(ctx context.Context, id uuid.UUID) error
}

// BlockIntervals converte bloqueios em intervalos ocupados.
func BlockIntervals(blocks []models.ScheduleBlock) []Interval {
	out := make([]Interval, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, Interval{Start: b.StartTime, End: b.EndTime})
	}
	return out
}
