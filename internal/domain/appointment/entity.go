package appointment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/vet-scheduler/internal/domain/calendar"
	"github.com/BruksfildServices01/vet-scheduler/internal/httperr"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

// ===============================
// Domain Actions
// ===============================

// Transition valida contra a tabela e carimba o horário do novo estado.
func Transition(ap *models.Appointment, to Status, now time.Time) error {
	if err := CanTransition(Status(ap.Status), to); err != nil {
		return err
	}

	ap.Status = string(to)

	switch to {
	case StatusConfirmed:
		ap.ConfirmedAt = &now
	case StatusInAttention:
		ap.StartedAt = &now
	case StatusFinalized:
		ap.FinalizedAt = &now
	case StatusCancelled:
		ap.CancelledAt = &now
	}

	return nil
}

// TotalDuration soma a duração de todas as linhas do carrinho.
func TotalDuration(items []models.LineItem) time.Duration {
	total := 0
	for _, it := range items {
		total += it.DurationMin
	}
	return time.Duration(total) * time.Minute
}

// RecomputeTotals recalcula o preço final como a soma das linhas não canceladas.
func RecomputeTotals(ap *models.Appointment) {
	total := decimal.Zero
	for _, it := range ap.Items {
		if it.Status == models.LineItemCancelledClinical {
			continue
		}
		total = total.Add(it.UnitPrice)
	}
	if total.IsNegative() {
		total = decimal.Zero
	}
	ap.FinalPrice = total
}

// FindItem devolve a linha do agendamento pelo id.
func FindItem(ap *models.Appointment, itemID uuid.UUID) (*models.LineItem, error) {
	for i := range ap.Items {
		if ap.Items[i].ID == itemID {
			return &ap.Items[i], nil
		}
	}
	return nil, httperr.NotFound("line_item_not_found", "Ítem no encontrado en la cita.").
		With("item_id", itemID.String())
}

// OccupiedIntervals filtra os agendamentos que seguram a agenda.
func OccupiedIntervals(list []models.Appointment) []calendar.Interval {
	out := make([]calendar.Interval, 0, len(list))
	for _, ap := range list {
		if !Occupies(Status(ap.Status)) {
			continue
		}
		out = append(out, calendar.Interval{Start: ap.StartTime, End: ap.EndTime})
	}
	return out
}
