package appointment

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/vet-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/vet-scheduler/internal/domain/calendar"
	"github.com/BruksfildServices01/vet-scheduler/internal/domain/uow"
	"github.com/BruksfildServices01/vet-scheduler/internal/httperr"
)

type GetAvailability struct {
	env Env
}

func NewGetAvailability(env Env) *GetAvailability {
	return &GetAvailability{env: env}
}

func (uc *GetAvailability) Execute(
	ctx context.Context,
	in domain.AvailabilityInput,
) ([]domain.TimeSlot, error) {

	if in.DurationMin <= 0 {
		return nil, httperr.Validation("invalid_duration", "La duración debe ser mayor que cero.")
	}

	duration := time.Duration(in.DurationMin) * time.Minute

	var starts []time.Time
	err := uc.env.Runner.Do(ctx, func(ctx context.Context, tx uow.Tx) error {
		occupied, err := occupiedOn(ctx, tx, uc.env.Schedule, in.Date)
		if err != nil {
			return err
		}
		starts = uc.env.Schedule.ComputeSlots(in.Date, duration, occupied)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// antecedência mínima
	earliest := uc.env.now().Add(uc.env.MinAdvance)

	slots := make([]domain.TimeSlot, 0, len(starts))
	for _, s := range starts {
		if s.Before(earliest) {
			continue
		}
		slots = append(slots, domain.TimeSlot{Start: s, End: s.Add(duration)})
	}

	return slots, nil
}

// occupiedOn carrega uma única vez tudo que ocupa o dia: agendamentos
// ativos e bloqueios.
func occupiedOn(
	ctx context.Context,
	tx uow.Tx,
	schedule calendar.Schedule,
	date time.Time,
) ([]calendar.Interval, error) {
	dayStart, dayEnd := schedule.DayBounds(date)

	appointments, err := tx.ListAppointmentsForPeriod(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	blocks, err := tx.ListBlocks(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	return append(
		domain.OccupiedIntervals(appointments),
		calendar.BlockIntervals(blocks)...,
	), nil
}
