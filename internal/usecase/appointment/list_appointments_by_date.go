package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/vet-scheduler/internal/domain/uow"
	"github.com/BruksfildServices01/vet-scheduler/internal/dto"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

type ListAppointmentsByDate struct {
	env Env
}

func NewListAppointmentsByDate(env Env) *ListAppointmentsByDate {
	return &ListAppointmentsByDate{env: env}
}

// Execute lista o dia inteiro no fuso da clínica, cancelados inclusive.
func (uc *ListAppointmentsByDate) Execute(
	ctx context.Context,
	date time.Time,
) ([]dto.AppointmentListDTO, error) {

	start, end := uc.env.Schedule.DayBounds(date)

	var appointments []models.Appointment
	err := uc.env.Runner.Do(ctx, func(ctx context.Context, tx uow.Tx) error {
		var err error
		appointments, err = tx.ListAppointmentsForPeriod(ctx, start, end)
		return err
	})
	if err != nil {
		return nil, err
	}

	return dto.NewAppointmentList(appointments), nil
}
