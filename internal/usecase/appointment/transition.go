package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/BruksfildServices01/vet-scheduler/internal/audit"
	shared "github.com/BruksfildServices01/vet-scheduler/internal/domain"
	domain "github.com/BruksfildServices01/vet-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/vet-scheduler/internal/domain/inventory"
	"github.com/BruksfildServices01/vet-scheduler/internal/domain/uow"
	"github.com/BruksfildServices01/vet-scheduler/internal/httperr"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
	"github.com/BruksfildServices01/vet-scheduler/internal/notify"
)

var one = decimal.NewFromInt(1)

type TransitionInput struct {
	Actor         shared.Actor
	AppointmentID uuid.UUID
	To            string
	Reason        string
}

// TransitionAppointment move o agendamento pela máquina de estados.
// FINALIZED consome o estoque das linhas pendentes na mesma transação;
// CANCELLED devolve o que já foi consumido.
type TransitionAppointment struct {
	env Env
}

func NewTransitionAppointment(env Env) *TransitionAppointment {
	return &TransitionAppointment{env: env}
}

func (uc *TransitionAppointment) Execute(
	ctx context.Context,
	in TransitionInput,
) (ap *models.Appointment, err error) {

	ctx, span := tracer.Start(ctx, "appointment.transition")
	started := time.Now()
	defer func() {
		uc.env.observe("transition", started, err)
		recordError(span, err)
		span.End()
	}()

	to, err := domain.ParseStatus(in.To)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.String("appointment.id", in.AppointmentID.String()),
		attribute.String("appointment.to", string(to)),
	)

	var from domain.Status
	err = uc.env.Runner.Do(ctx, func(ctx context.Context, tx uow.Tx) error {
		cur, err := loadAppointment(ctx, tx, in.AppointmentID)
		if err != nil {
			return err
		}

		// tutor só cancela o próprio agendamento
		if !in.Actor.IsStaff() {
			if cur.TutorID != in.Actor.UserID {
				return httperr.Forbidden("appointment_not_owned_by_requester", "La cita no pertenece al tutor.")
			}
			if to != domain.StatusCancelled {
				return httperr.Forbidden("staff_only", "Solo el personal de la clínica puede realizar este cambio.")
			}
		}

		from = domain.Status(cur.Status)
		if err := domain.Transition(cur, to, uc.env.now()); err != nil {
			return err
		}

		switch to {
		case domain.StatusFinalized:
			if err := uc.consumePending(ctx, tx, cur); err != nil {
				return err
			}
		case domain.StatusCancelled:
			cur.CancelReason = in.Reason
			if err := uc.returnConsumed(ctx, tx, cur); err != nil {
				return err
			}
		}

		if err := tx.UpdateAppointment(ctx, cur); err != nil {
			return err
		}

		ap = cur
		return nil
	})
	if err != nil {
		entityID := in.AppointmentID
		uc.env.auditRejection(in.Actor, "appointment_transition_rejected", &entityID, err)
		return nil, err
	}

	uc.env.Metrics.ObserveTransition(string(from), string(to))

	uc.env.Audit.Dispatch(audit.Event{
		ActorID:  in.Actor.IDPtr(),
		Action:   "appointment_transitioned",
		Entity:   "appointment",
		EntityID: &ap.ID,
		Metadata: map[string]any{"from": string(from), "to": string(to), "reason": in.Reason},
	})

	uc.env.publish(ap, notify.EventForStatus(ap.Status))

	if to == domain.StatusFinalized {
		uc.env.Receipts.Archive(ap)
	}

	return ap, nil
}

// consumePending consome uma ocorrência de cada linha ativa ainda não
// consumida. Qualquer stock_conflict desfaz a transação inteira.
// Tudo o que as linhas tocam é travado antes, em ordem global, para que duas
// finalizações com carrinhos em ordens diferentes não se bloqueiem.
func (uc *TransitionAppointment) consumePending(ctx context.Context, tx uow.Tx, ap *models.Appointment) error {
	locks := inventory.NewLockSet()
	for i := range ap.Items {
		it := &ap.Items[i]
		if !pendingConsumption(it) {
			continue
		}
		svc, err := itemService(ctx, tx, it)
		if err != nil {
			return withItemIndex(err, i)
		}
		locks.AddConsumption(svc)
	}
	if err := locks.Acquire(ctx, tx); err != nil {
		return err
	}

	for i := range ap.Items {
		it := &ap.Items[i]
		if !pendingConsumption(it) {
			continue
		}
		if err := consumeItem(ctx, uc.env, tx, it); err != nil {
			return withItemIndex(err, i)
		}
	}
	return nil
}

func (uc *TransitionAppointment) returnConsumed(ctx context.Context, tx uow.Tx, ap *models.Appointment) error {
	locks := inventory.NewLockSet()
	for i := range ap.Items {
		it := &ap.Items[i]
		if !it.StockConsumed {
			continue
		}
		if err := locks.AddReturn(ctx, tx, it.ServiceID, it.Reference()); err != nil {
			return err
		}
	}
	if err := locks.Acquire(ctx, tx); err != nil {
		return err
	}

	for i := range ap.Items {
		it := &ap.Items[i]
		if !it.StockConsumed {
			continue
		}
		if err := returnItem(ctx, uc.env, tx, it); err != nil {
			return err
		}
	}
	return nil
}

func pendingConsumption(it *models.LineItem) bool {
	return it.Status == models.LineItemActive && !it.StockConsumed
}

func consumeItem(ctx context.Context, env Env, tx uow.Tx, it *models.LineItem) error {
	svc, err := itemService(ctx, tx, it)
	if err != nil {
		return err
	}
	if err := env.Stock.Consume(ctx, tx, svc, one, it.Reference()); err != nil {
		return err
	}
	it.StockConsumed = true
	return nil
}

func returnItem(ctx context.Context, env Env, tx uow.Tx, it *models.LineItem) error {
	svc, err := itemService(ctx, tx, it)
	if err != nil {
		return err
	}
	if err := env.Stock.ReturnStock(ctx, tx, svc, one, it.Reference()); err != nil {
		return err
	}
	it.StockConsumed = false
	return nil
}

func itemService(ctx context.Context, tx uow.Tx, it *models.LineItem) (*models.Service, error) {
	svc, err := tx.GetService(ctx, it.ServiceID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, httperr.NotFound("service_not_found", "Servicio no encontrado.").
			With("service_id", it.ServiceID.String())
	}
	return svc, err
}

func withItemIndex(err error, index int) error {
	if be, ok := httperr.AsBusiness(err); ok {
		return be.With("item_index", index)
	}
	return err
}
