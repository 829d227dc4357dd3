package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

type Repository interface {
	// -------- Pet --------
	GetPet(
		ctx context.Context,
		id uuid.UUID,
	) (*models.Pet, error)

	// -------- Appointment (create / conflict) --------
	CreateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	// -------- Appointment (state change) --------
	GetAppointment(
		ctx context.Context,
		id uuid.UUID,
	) (*models.Appointment, error)

	// UpdateAppointment grava status, totais e linhas. Falha com
	// concurrent_modification se a versão lida já não é a atual.
	UpdateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	// -------- Availability / listing --------
	ListAppointmentsForPeriod(
		ctx context.Context,
		start time.Time,
		end time.Time,
	) ([]models.Appointment, error)

	ListAppointmentsByTutor(
		ctx context.Context,
		tutorID uuid.UUID,
	) ([]models.Appointment, error)
}
