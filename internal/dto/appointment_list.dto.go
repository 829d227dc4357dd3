package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

type AppointmentItemDTO struct {
	ID          uuid.UUID       `json:"id"`
	ServiceName string          `json:"service_name"`
	PetID       *uuid.UUID      `json:"pet_id,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Status      string          `json:"status"`
}

type AppointmentListDTO struct {
	ID         uuid.UUID            `json:"id"`
	TutorID    uuid.UUID            `json:"tutor_id"`
	StartTime  time.Time            `json:"start_time"`
	EndTime    time.Time            `json:"end_time"`
	Status     string               `json:"status"`
	FinalPrice decimal.Decimal      `json:"final_price"`
	Items      []AppointmentItemDTO `json:"items"`
}

func NewAppointmentList(list []models.Appointment) []AppointmentListDTO {
	out := make([]AppointmentListDTO, 0, len(list))
	for _, ap := range list {
		items := make([]AppointmentItemDTO, 0, len(ap.Items))
		for _, it := range ap.Items {
			items = append(items, AppointmentItemDTO{
				ID:          it.ID,
				ServiceName: it.ServiceName,
				PetID:       it.PetID,
				UnitPrice:   it.UnitPrice,
				Status:      it.Status,
			})
		}
		out = append(out, AppointmentListDTO{
			ID:         ap.ID,
			TutorID:    ap.TutorID,
			StartTime:  ap.StartTime,
			EndTime:    ap.EndTime,
			Status:     ap.Status,
			FinalPrice: ap.FinalPrice,
			Items:      items,
		})
	}
	return out
}
