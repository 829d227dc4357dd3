// Package payments integra o gateway de pagamento (Mercado Pago): cria a
// preferência de cobrança de um agendamento e consulta pagamentos
// notificados pelo webhook.
package payments

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/preference"
	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

const StatusApproved = "approved"

type Preference struct {
	ID        string `json:"id"`
	InitPoint string `json:"init_point"`
}

type Payment struct {
	ID                string
	Status            string
	ExternalReference string
	Amount            decimal.Decimal
}

type Gateway interface {
	CreatePreference(ctx context.Context, ap *models.Appointment) (*Preference, error)
	GetPayment(ctx context.Context, paymentID string) (*Payment, error)
}

type MercadoPago struct {
	preferences     preference.Client
	payments        payment.Client
	notificationURL string
	currencyID      string
}

func NewMercadoPago(accessToken, notificationURL, currencyID string) (*MercadoPago, error) {
	cfg, err := config.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("mercadopago config: %w", err)
	}
	return &MercadoPago{
		preferences:     preference.NewClient(cfg),
		payments:        payment.NewClient(cfg),
		notificationURL: notificationURL,
		currencyID:      currencyID,
	}, nil
}

func (m *MercadoPago) CreatePreference(ctx context.Context, ap *models.Appointment) (*Preference, error) {
	res, err := m.preferences.Create(ctx, PreferenceRequest(ap, m.currencyID, m.notificationURL))
	if err != nil {
		return nil, fmt.Errorf("mercadopago preference: %w", err)
	}
	return &Preference{ID: res.ID, InitPoint: res.InitPoint}, nil
}

func (m *MercadoPago) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	id, err := strconv.Atoi(paymentID)
	if err != nil {
		return nil, fmt.Errorf("mercadopago payment id %q: %w", paymentID, err)
	}

	res, err := m.payments.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("mercadopago payment: %w", err)
	}

	return &Payment{
		ID:                strconv.Itoa(res.ID),
		Status:            res.Status,
		ExternalReference: res.ExternalReference,
		Amount:            decimal.NewFromFloat(res.TransactionAmount),
	}, nil
}

// PreferenceRequest monta a cobrança: uma linha por item ativo, referência
// externa = id do agendamento.
func PreferenceRequest(ap *models.Appointment, currencyID, notificationURL string) preference.Request {
	items := make([]preference.ItemRequest, 0, len(ap.Items))
	for _, it := range ap.Items {
		if it.Status == models.LineItemCancelledClinical || !it.UnitPrice.IsPositive() {
			continue
		}
		items = append(items, preference.ItemRequest{
			ID:         it.ServiceID.String(),
			Title:      it.ServiceName,
			Quantity:   1,
			UnitPrice:  it.UnitPrice.InexactFloat64(),
			CurrencyID: currencyID,
		})
	}

	return preference.Request{
		Items:             items,
		ExternalReference: ap.ID.String(),
		NotificationURL:   notificationURL,
	}
}
