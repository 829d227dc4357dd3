package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/vet-scheduler/internal/httperr"
	"github.com/BruksfildServices01/vet-scheduler/internal/httpresp"
	ucPayment "github.com/BruksfildServices01/vet-scheduler/internal/usecase/payment"
)

// WebhookHandler recebe as notificações do Mercado Pago.
type WebhookHandler struct {
	process *ucPayment.ProcessNotification
	log     zerolog.Logger
}

func NewWebhookHandler(process *ucPayment.ProcessNotification, log zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{process: process, log: log}
}

type mercadoPagoNotification struct {
	Type string `json:"type"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// MercadoPago aceita o id tanto na query (data.id / id) quanto no corpo.
// Notificações de outros tópicos são confirmadas sem processamento.
func (h *WebhookHandler) MercadoPago(c *gin.Context) {
	var body mercadoPagoNotification
	_ = c.ShouldBindJSON(&body)

	topic := firstNonEmpty(c.Query("type"), c.Query("topic"), body.Type)
	if topic != "" && topic != "payment" {
		httpresp.OK(c, gin.H{"status": "ignored"})
		return
	}

	paymentID := firstNonEmpty(c.Query("data.id"), c.Query("id"), body.Data.ID)

	res, err := h.process.Execute(c.Request.Context(), paymentID)
	if err != nil {
		h.log.Warn().Err(err).Str("payment_id", paymentID).Msg("mercadopago notification rejected")
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, res)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
