package schedule

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/vet-scheduler/internal/audit"
	shared "github.com/BruksfildServices01/vet-scheduler/internal/domain"
	"github.com/BruksfildServices01/vet-scheduler/internal/domain/uow"
	"github.com/BruksfildServices01/vet-scheduler/internal/httperr"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

// Blocks administra os fechamentos pontuais da agenda.
type Blocks struct {
	runner uow.Runner
	audit  *audit.Dispatcher
}

func NewBlocks(runner uow.Runner, audit *audit.Dispatcher) *Blocks {
	return &Blocks{runner: runner, audit: audit}
}

type CreateBlockInput struct {
	Actor  shared.Actor
	Start  time.Time
	End    time.Time
	Reason string
}

// Create não mexe em agendamentos já existentes no intervalo; só impede novos.
func (uc *Blocks) Create(ctx context.Context, in CreateBlockInput) (*models.ScheduleBlock, error) {
	if in.Start.IsZero() || in.End.IsZero() || !in.End.After(in.Start) {
		return nil, httperr.Validation("invalid_time", "El fin del bloqueo debe ser posterior al inicio.")
	}

	b := &models.ScheduleBlock{
		StartTime: in.Start,
		EndTime:   in.End,
		Reason:    strings.TrimSpace(in.Reason),
		CreatedBy: in.Actor.UserID,
	}

	err := uc.runner.Do(ctx, func(ctx context.Context, tx uow.Tx) error {
		if err := tx.LockCalendar(ctx); err != nil {
			return err
		}
		return tx.CreateBlock(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		ActorID:  in.Actor.IDPtr(),
		Action:   "schedule_block_created",
		Entity:   "schedule_block",
		EntityID: &b.ID,
		Metadata: map[string]any{"reason": b.Reason},
	})

	return b, nil
}

func (uc *Blocks) List(ctx context.Context, from, to time.Time) ([]models.ScheduleBlock, error) {
	if !to.After(from) {
		return nil, httperr.Validation("invalid_date", "Rango de fechas inválido.")
	}

	out := []models.ScheduleBlock{}
	err := uc.runner.Do(ctx, func(ctx context.Context, tx uow.Tx) error {
		list, err := tx.ListBlocks(ctx, from, to)
		if err != nil {
			return err
		}
		out = append(out, list...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (uc *Blocks) Delete(ctx context.Context, actor shared.Actor, id uuid.UUID) error {
	err := uc.runner.Do(ctx, func(ctx context.Context, tx uow.Tx) error {
		if _, err := tx.GetBlock(ctx, id); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return httperr.NotFound("block_not_found", "Bloqueo no encontrado.")
			}
			return err
		}
		if err := tx.LockCalendar(ctx); err != nil {
			return err
		}
		return tx.DeleteBlock(ctx, id)
	})
	if err != nil {
		return err
	}

	uc.audit.Dispatch(audit.Event{
		ActorID:  actor.IDPtr(),
		Action:   "schedule_block_deleted",
		Entity:   "schedule_block",
		EntityID: &id,
	})
	return nil
}
