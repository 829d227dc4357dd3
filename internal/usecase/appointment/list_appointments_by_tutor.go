package appointment

import (
	"context"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/vet-scheduler/internal/domain/uow"
	"github.com/BruksfildServices01/vet-scheduler/internal/dto"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

type ListAppointmentsByTutor struct {
	env Env
}

func NewListAppointmentsByTutor(env Env) *ListAppointmentsByTutor {
	return &ListAppointmentsByTutor{env: env}
}

func (uc *ListAppointmentsByTutor) Execute(
	ctx context.Context,
	tutorID uuid.UUID,
) ([]dto.AppointmentListDTO, error) {

	var appointments []models.Appointment
	err := uc.env.Runner.Do(ctx, func(ctx context.Context, tx uow.Tx) error {
		var err error
		appointments, err = tx.ListAppointmentsByTutor(ctx, tutorID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return dto.NewAppointmentList(appointments), nil
}
