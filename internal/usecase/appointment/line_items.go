package appointment

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/vet-scheduler/internal/audit"
	shared "github.com/BruksfildServices01/vet-scheduler/internal/domain"
	domain "github.com/BruksfildServices01/vet-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/vet-scheduler/internal/domain/uow"
	"github.com/BruksfildServices01/vet-scheduler/internal/httperr"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

type LineItemInput struct {
	Actor         shared.Actor
	AppointmentID uuid.UUID
	ItemID        uuid.UUID
	Reason        string
}

// ======================================================
// FULFIL
// ======================================================

// FulfilLineItem consome o estoque de uma linha durante o atendimento.
type FulfilLineItem struct {
	env Env
}

func NewFulfilLineItem(env Env) *FulfilLineItem {
	return &FulfilLineItem{env: env}
}

func (uc *FulfilLineItem) Execute(ctx context.Context, in LineItemInput) (*models.Appointment, error) {
	var ap *models.Appointment
	err := uc.env.Runner.Do(ctx, func(ctx context.Context, tx uow.Tx) error {
		cur, err := loadAppointment(ctx, tx, in.AppointmentID)
		if err != nil {
			return err
		}
		if domain.Status(cur.Status) != domain.StatusInAttention {
			return httperr.Conflict("appointment_not_in_attention", "La cita no está en atención.").
				With("status", cur.Status)
		}

		it, err := domain.FindItem(cur, in.ItemID)
		if err != nil {
			return err
		}
		if it.Status == models.LineItemCancelledClinical {
			return httperr.Conflict("line_item_cancelled", "El ítem fue cancelado.").
				With("item_id", it.ID.String())
		}

		ap = cur
		if it.StockConsumed {
			return nil
		}

		if err := consumeItem(ctx, uc.env, tx, it); err != nil {
			return withItemIndex(err, it.Position)
		}
		return tx.UpdateAppointment(ctx, cur)
	})
	if err != nil {
		if be, ok := httperr.AsBusiness(err); ok {
			uc.env.Metrics.ObserveRejection(be.Code)
		}
		entityID := in.AppointmentID
		uc.env.auditRejection(in.Actor, "line_item_fulfil_rejected", &entityID, err)
		return nil, err
	}

	uc.env.Audit.Dispatch(audit.Event{
		ActorID:  in.Actor.IDPtr(),
		Action:   "line_item_fulfilled",
		Entity:   "appointment",
		EntityID: &ap.ID,
		Metadata: map[string]any{"item_id": in.ItemID.String()},
	})

	return ap, nil
}

// ======================================================
// CLINICAL CANCEL
// ======================================================

// CancelLineItem cancela uma linha por motivo clínico, devolve o estoque
// já consumido e recalcula o total.
type CancelLineItem struct {
	env Env
}

func NewCancelLineItem(env Env) *CancelLineItem {
	return &CancelLineItem{env: env}
}

func (uc *CancelLineItem) Execute(ctx context.Context, in LineItemInput) (*models.Appointment, error) {
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, httperr.Validation("invalid_request", "El motivo es obligatorio.")
	}

	var ap *models.Appointment
	err := uc.env.Runner.Do(ctx, func(ctx context.Context, tx uow.Tx) error {
		cur, err := loadAppointment(ctx, tx, in.AppointmentID)
		if err != nil {
			return err
		}
		if domain.IsTerminal(domain.Status(cur.Status)) {
			return httperr.Conflict("appointment_closed", "La cita ya está cerrada.").
				With("status", cur.Status)
		}

		it, err := domain.FindItem(cur, in.ItemID)
		if err != nil {
			return err
		}
		if it.Status == models.LineItemCancelledClinical {
			return httperr.Conflict("line_item_cancelled", "El ítem ya fue cancelado.").
				With("item_id", it.ID.String())
		}

		if it.StockConsumed {
			if err := returnItem(ctx, uc.env, tx, it); err != nil {
				return err
			}
		}

		it.Status = models.LineItemCancelledClinical
		it.CancelReason = reason
		domain.RecomputeTotals(cur)

		if err := tx.UpdateAppointment(ctx, cur); err != nil {
			return err
		}
		ap = cur
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.env.Audit.Dispatch(audit.Event{
		ActorID:  in.Actor.IDPtr(),
		Action:   "line_item_cancelled",
		Entity:   "appointment",
		EntityID: &ap.ID,
		Metadata: map[string]any{
			"item_id":     in.ItemID.String(),
			"reason":      reason,
			"final_price": ap.FinalPrice.String(),
		},
	})

	return ap, nil
}
