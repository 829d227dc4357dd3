package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domain "github.com/BruksfildServices01/vet-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/vet-scheduler/internal/httperr"
	"github.com/BruksfildServices01/vet-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/vet-scheduler/internal/middleware"
	ucAppointment "github.com/BruksfildServices01/vet-scheduler/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	loc *time.Location

	create     *ucAppointment.CreateAppointment
	transition *ucAppointment.TransitionAppointment
	confirm    *ucAppointment.ConfirmPayment
	fulfil     *ucAppointment.FulfilLineItem
	cancelItem *ucAppointment.CancelLineItem
	byDate     *ucAppointment.ListAppointmentsByDate
	byTutor    *ucAppointment.ListAppointmentsByTutor
}

// NewAppointmentHandler monta todos os use cases de agendamento sobre o mesmo Env.
func NewAppointmentHandler(env ucAppointment.Env) *AppointmentHandler {
	return &AppointmentHandler{
		loc:        env.Schedule.Location(),
		create:     ucAppointment.NewCreateAppointment(env),
		transition: ucAppointment.NewTransitionAppointment(env),
		confirm:    ucAppointment.NewConfirmPayment(env),
		fulfil:     ucAppointment.NewFulfilLineItem(env),
		cancelItem: ucAppointment.NewCancelLineItem(env),
		byDate:     ucAppointment.NewListAppointmentsByDate(env),
		byTutor:    ucAppointment.NewListAppointmentsByTutor(env),
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CartItemRequest struct {
	ServiceID uuid.UUID  `json:"service_id" binding:"required"`
	PetID     *uuid.UUID `json:"pet_id"`
}

type CreateAppointmentRequest struct {
	TutorID       uuid.UUID         `json:"tutor_id"`
	Items         []CartItemRequest `json:"items"`
	Start         string            `json:"start" binding:"required"` // RFC3339 ou "2006-01-02 15:04"
	OriginChannel string            `json:"origin_channel"`
	Notes         string            `json:"notes"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`

	// Preenchidos só para CONFIRMED com pagamento registrado pela recepção.
	Amount           decimal.Decimal `json:"amount"`
	PaymentReference string          `json:"payment_reference"`
}

type ReasonRequest struct {
	Reason string `json:"reason"`
}

// ======================================================
// CREATE
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	var req CreateAppointmentRequest
	if err := bindJSON(c, &req); err != nil {
		httperr.Respond(c, err)
		return
	}

	start, err := parseDateTime(req.Start, h.loc)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	items := make([]ucAppointment.CartItemInput, len(req.Items))
	for i, it := range req.Items {
		items[i] = ucAppointment.CartItemInput{ServiceID: it.ServiceID, PetID: it.PetID}
	}

	out, err := h.create.Execute(c.Request.Context(), ucAppointment.CreateAppointmentInput{
		Actor:         middleware.ActorFrom(c),
		TutorID:       req.TutorID,
		Items:         items,
		Start:         start,
		OriginChannel: req.OriginChannel,
		Notes:         strings.TrimSpace(req.Notes),
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, out)
}

// ======================================================
// TUTOR
// ======================================================

func (h *AppointmentHandler) ListMine(c *gin.Context) {
	actor := middleware.ActorFrom(c)

	list, err := h.byTutor.Execute(c.Request.Context(), actor.UserID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, list)
}

// CancelMine cancela um agendamento do próprio tutor.
func (h *AppointmentHandler) CancelMine(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	var req ReasonRequest
	_ = c.ShouldBindJSON(&req)

	ap, err := h.transition.Execute(c.Request.Context(), ucAppointment.TransitionInput{
		Actor:         middleware.ActorFrom(c),
		AppointmentID: id,
		To:            string(domain.StatusCancelled),
		Reason:        strings.TrimSpace(req.Reason),
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, ap)
}

// ======================================================
// STAFF
// ======================================================

func (h *AppointmentHandler) ListByDate(c *gin.Context) {
	date, err := parseDate(c.Query("date"), h.loc)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	list, err := h.byDate.Execute(c.Request.Context(), date)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, list)
}

func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	var req UpdateStatusRequest
	if err := bindJSON(c, &req); err != nil {
		httperr.Respond(c, err)
		return
	}

	actor := middleware.ActorFrom(c)
	ref := strings.TrimSpace(req.PaymentReference)

	if strings.EqualFold(req.Status, string(domain.StatusConfirmed)) && ref != "" {
		ap, err := h.confirm.Execute(c.Request.Context(), ucAppointment.ConfirmPaymentInput{
			Actor:         actor,
			AppointmentID: id,
			Amount:        req.Amount,
			Reference:     ref,
		})
		if err != nil {
			httperr.Respond(c, err)
			return
		}
		httpresp.OK(c, ap)
		return
	}

	ap, err := h.transition.Execute(c.Request.Context(), ucAppointment.TransitionInput{
		Actor:         actor,
		AppointmentID: id,
		To:            strings.ToUpper(strings.TrimSpace(req.Status)),
		Reason:        strings.TrimSpace(req.Reason),
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, ap)
}

func (h *AppointmentHandler) FulfilItem(c *gin.Context) {
	in, err := h.lineItemInput(c)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	ap, err := h.fulfil.Execute(c.Request.Context(), in)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, ap)
}

func (h *AppointmentHandler) CancelItem(c *gin.Context) {
	in, err := h.lineItemInput(c)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	var req ReasonRequest
	if err := bindJSON(c, &req); err != nil {
		httperr.Respond(c, err)
		return
	}
	in.Reason = strings.TrimSpace(req.Reason)

	ap, err := h.cancelItem.Execute(c.Request.Context(), in)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, ap)
}

func (h *AppointmentHandler) lineItemInput(c *gin.Context) (ucAppointment.LineItemInput, error) {
	id, err := uuidParam(c, "id")
	if err != nil {
		return ucAppointment.LineItemInput{}, err
	}
	itemID, err := uuidParam(c, "itemId")
	if err != nil {
		return ucAppointment.LineItemInput{}, err
	}
	return ucAppointment.LineItemInput{
		Actor:         middleware.ActorFrom(c),
		AppointmentID: id,
		ItemID:        itemID,
	}, nil
}
