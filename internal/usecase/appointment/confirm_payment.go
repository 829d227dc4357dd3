package appointment

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/vet-scheduler/internal/audit"
	shared "github.com/BruksfildServices01/vet-scheduler/internal/domain"
	domain "github.com/BruksfildServices01/vet-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/vet-scheduler/internal/domain/uow"
	"github.com/BruksfildServices01/vet-scheduler/internal/httperr"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
	"github.com/BruksfildServices01/vet-scheduler/internal/notify"
)

type ConfirmPaymentInput struct {
	// Actor vazio quando a confirmação vem do webhook do gateway.
	Actor         shared.Actor
	AppointmentID uuid.UUID
	Amount        decimal.Decimal
	Reference     string
}

// ConfirmPayment leva PENDING_PAYMENT → CONFIRMED e registra o pagamento.
// Reenvio da mesma referência é aceito sem efeito.
type ConfirmPayment struct {
	env Env
}

func NewConfirmPayment(env Env) *ConfirmPayment {
	return &ConfirmPayment{env: env}
}

func (uc *ConfirmPayment) Execute(
	ctx context.Context,
	in ConfirmPaymentInput,
) (ap *models.Appointment, err error) {

	started := time.Now()
	defer func() { uc.env.observe("confirm_payment", started, err) }()

	reference := strings.TrimSpace(in.Reference)
	if reference == "" {
		return nil, httperr.Validation("invalid_request", "Referencia de pago requerida.")
	}
	if in.Amount.IsNegative() {
		return nil, httperr.Validation("invalid_request", "Monto inválido.")
	}

	replayed := false
	err = uc.env.Runner.Do(ctx, func(ctx context.Context, tx uow.Tx) error {
		cur, err := loadAppointment(ctx, tx, in.AppointmentID)
		if err != nil {
			return err
		}

		if cur.PaymentReference != nil && *cur.PaymentReference == reference {
			replayed = true
			ap = cur
			return nil
		}

		if in.Amount.LessThan(cur.FinalPrice) {
			return httperr.Validation("payment_insufficient", "El monto pagado no cubre el total de la cita.").
				With("final_price", cur.FinalPrice.String()).
				With("amount", in.Amount.String())
		}

		if err := domain.Transition(cur, domain.StatusConfirmed, uc.env.now()); err != nil {
			return err
		}
		cur.PaidAmount = in.Amount
		cur.PaymentReference = &reference

		if err := tx.UpdateAppointment(ctx, cur); err != nil {
			return err
		}

		ap = cur
		return nil
	})
	if err != nil {
		return nil, err
	}
	if replayed {
		return ap, nil
	}

	uc.env.Metrics.ObserveTransition(string(domain.StatusPendingPayment), string(domain.StatusConfirmed))

	uc.env.Audit.Dispatch(audit.Event{
		ActorID:  in.Actor.IDPtr(),
		Action:   "payment_confirmed",
		Entity:   "appointment",
		EntityID: &ap.ID,
		Metadata: map[string]any{"amount": in.Amount.String(), "reference": reference},
	})

	uc.env.publish(ap, notify.AppointmentConfirmed)

	return ap, nil
}
