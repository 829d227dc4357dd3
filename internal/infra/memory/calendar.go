package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/vet-scheduler/internal/domain"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

const calendarKey = "calendar"

func (t *tx) LockCalendar(ctx context.Context) error {
	return t.lock(ctx, calendarKey)
}

func (t *tx) ListBlocks(_ context.Context, from, to time.Time) ([]models.ScheduleBlock, error) {
	t.s.mu.Lock()
	var out []models.ScheduleBlock
	for id, b := range t.s.data.blocks {
		if _, staged := t.blocks[id]; staged {
			continue
		}
		out = append(out, b)
	}
	t.s.mu.Unlock()

	for _, b := range t.blocks {
		if b != nil {
			out = append(out, *b)
		}
	}

	filtered := out[:0]
	for _, b := range out {
		if b.StartTime.Before(to) && b.EndTime.After(from) {
			filtered = append(filtered, b)
		}
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].StartTime.Before(filtered[j].StartTime) })
	return filtered, nil
}

func (t *tx) GetBlock(_ context.Context, id uuid.UUID) (*models.ScheduleBlock, error) {
	if b, staged := t.blocks[id]; staged {
		if b == nil {
			return nil, domain.ErrNotFound
		}
		c := *b
		return &c, nil
	}

	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	b, ok := t.s.data.blocks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &b, nil
}

func (t *tx) CreateBlock(_ context.Context, b *models.ScheduleBlock) error {
	models.EnsureID(&b.ID)
	stamp(&b.CreatedAt, nil)
	c := *b
	t.blocks[b.ID] = &c
	return nil
}

func (t *tx) DeleteBlock(ctx context.Context, id uuid.UUID) error {
	if _, err := t.GetBlock(ctx, id); err != nil {
		return err
	}
	t.blocks[id] = nil
	return nil
}
