package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/BruksfildServices01/vet-scheduler/internal/audit"
	shared "github.com/BruksfildServices01/vet-scheduler/internal/domain"
	"github.com/BruksfildServices01/vet-scheduler/internal/domain/calendar"
	"github.com/BruksfildServices01/vet-scheduler/internal/domain/inventory"
	"github.com/BruksfildServices01/vet-scheduler/internal/domain/pricing"
	"github.com/BruksfildServices01/vet-scheduler/internal/domain/uow"
	"github.com/BruksfildServices01/vet-scheduler/internal/httperr"
	"github.com/BruksfildServices01/vet-scheduler/internal/metrics"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
	"github.com/BruksfildServices01/vet-scheduler/internal/notify"
	"github.com/BruksfildServices01/vet-scheduler/internal/payments"
	"github.com/BruksfildServices01/vet-scheduler/internal/receipts"
)

var tracer = otel.Tracer("github.com/BruksfildServices01/vet-scheduler/usecase/appointment")

// Env reúne os colaboradores dos use cases de agendamento. Tudo que é
// best-effort (audit, notify, metrics, receipts, payments) pode ser nil.
type Env struct {
	Runner   uow.Runner
	Schedule calendar.Schedule
	Pricing  *pricing.Engine
	Stock    *inventory.Engine

	MinAdvance time.Duration
	Now        func() time.Time

	Audit    *audit.Dispatcher
	Notify   *notify.Dispatcher
	Metrics  *metrics.BookingMetrics
	Receipts *receipts.Archiver
	Payments payments.Gateway
	Log      zerolog.Logger
}

func (e Env) now() time.Time {
	if e.Now != nil {
		return e.Now().In(e.Schedule.Location())
	}
	return time.Now().In(e.Schedule.Location())
}

// observe registra latência e, em caso de erro de negócio, o código rejeitado.
func (e Env) observe(op string, started time.Time, err error) {
	e.Metrics.ObserveLatency(op, time.Since(started).Seconds())
	if be, ok := httperr.AsBusiness(err); ok {
		e.Metrics.ObserveRejection(be.Code)
	}
}

func (e Env) publish(ap *models.Appointment, eventType string) {
	if eventType == "" {
		return
	}
	e.Notify.Notify(notify.Event{
		Type:          eventType,
		AppointmentID: ap.ID,
		TutorID:       ap.TutorID,
		Status:        ap.Status,
		StartTime:     ap.StartTime,
		OccurredAt:    time.Now().UTC(),
	})
}

// loadAppointment traduz ErrNotFound para appointment_not_found.
func loadAppointment(ctx context.Context, tx uow.Tx, id uuid.UUID) (*models.Appointment, error) {
	ap, err := tx.GetAppointment(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, httperr.NotFound("appointment_not_found", "Cita no encontrada.").
			With("appointment_id", id.String())
	}
	return ap, err
}

func recordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// auditRejection registra conflitos (slot, estoque, transição) para a equipe.
func (e Env) auditRejection(actor shared.Actor, action string, entityID *uuid.UUID, err error) {
	be, ok := httperr.AsBusiness(err)
	if !ok || be.Kind != httperr.KindConflict {
		return
	}
	e.Audit.Dispatch(audit.Event{
		ActorID:  actor.IDPtr(),
		Action:   action,
		Entity:   "appointment",
		EntityID: entityID,
		Metadata: map[string]any{"error_code": be.Code, "details": be.Details},
	})
}
