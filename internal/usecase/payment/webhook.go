// Package payment processa as notificações do gateway de pagamento.
package payment

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/vet-scheduler/internal/httperr"
	"github.com/BruksfildServices01/vet-scheduler/internal/payments"
	"github.com/BruksfildServices01/vet-scheduler/internal/usecase/appointment"
)

type Result struct {
	Status        string `json:"status"`
	AppointmentID string `json:"appointment_id,omitempty"`
}

// ProcessNotification consulta o pagamento no gateway e, se aprovado,
// confirma o agendamento da referência externa.
type ProcessNotification struct {
	gateway payments.Gateway
	confirm *appointment.ConfirmPayment
	log     zerolog.Logger
}

func NewProcessNotification(
	gateway payments.Gateway,
	confirm *appointment.ConfirmPayment,
	log zerolog.Logger,
) *ProcessNotification {
	return &ProcessNotification{gateway: gateway, confirm: confirm, log: log}
}

func (uc *ProcessNotification) Execute(ctx context.Context, paymentID string) (*Result, error) {
	if uc.gateway == nil {
		return nil, httperr.Validation("payments_disabled", "Pagos no configurados.")
	}
	if paymentID == "" {
		return nil, httperr.Validation("invalid_request", "Falta el id del pago.")
	}

	p, err := uc.gateway.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if p.Status != payments.StatusApproved {
		uc.log.Info().Str("payment_id", p.ID).Str("status", p.Status).Msg("payment not approved, ignoring")
		return &Result{Status: p.Status}, nil
	}

	apID, err := uuid.Parse(p.ExternalReference)
	if err != nil {
		return nil, httperr.Validation("invalid_request", "Referencia externa inválida.").
			With("external_reference", p.ExternalReference)
	}

	ap, err := uc.confirm.Execute(ctx, appointment.ConfirmPaymentInput{
		AppointmentID: apID,
		Amount:        p.Amount,
		Reference:     p.ID,
	})
	if err != nil {
		return nil, err
	}

	return &Result{Status: p.Status, AppointmentID: ap.ID.String()}, nil
}
