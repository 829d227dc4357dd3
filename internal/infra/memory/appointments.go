package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/vet-scheduler/internal/domain"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

func (t *tx) GetPet(_ context.Context, id uuid.UUID) (*models.Pet, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	p, ok := t.s.data.pets[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := clonePet(p)
	return &c, nil
}

func (t *tx) CreateAppointment(_ context.Context, ap *models.Appointment) error {
	models.EnsureID(&ap.ID)
	for i := range ap.Items {
		models.EnsureID(&ap.Items[i].ID)
		ap.Items[i].AppointmentID = ap.ID
	}
	stamp(&ap.CreatedAt, &ap.UpdatedAt)

	t.appointments[ap.ID] = versioned[models.Appointment]{row: cloneAppointment(*ap), base: ap.Version, new: true}
	return nil
}

func (t *tx) appointment(id uuid.UUID) (models.Appointment, int, bool) {
	if w, ok := t.appointments[id]; ok {
		return w.row, w.base, true
	}
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	ap, ok := t.s.data.appointments[id]
	return ap, ap.Version, ok
}

func (t *tx) GetAppointment(_ context.Context, id uuid.UUID) (*models.Appointment, error) {
	ap, _, ok := t.appointment(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := cloneAppointment(ap)
	return &c, nil
}

func (t *tx) UpdateAppointment(_ context.Context, ap *models.Appointment) error {
	cur, base, ok := t.appointment(ap.ID)
	if !ok {
		return domain.ErrNotFound
	}
	if cur.Version != ap.Version {
		return domain.ConcurrentModification("appointment")
	}

	ap.Version++
	ap.UpdatedAt = time.Now()

	w := t.appointments[ap.ID]
	t.appointments[ap.ID] = versioned[models.Appointment]{row: cloneAppointment(*ap), base: base, new: w.new}
	return nil
}

// appointmentsView junta o confirmado com o rascunho da transação.
func (t *tx) appointmentsView() []models.Appointment {
	t.s.mu.Lock()
	out := make([]models.Appointment, 0, len(t.s.data.appointments)+len(t.appointments))
	for id, ap := range t.s.data.appointments {
		if _, staged := t.appointments[id]; staged {
			continue
		}
		out = append(out, cloneAppointment(ap))
	}
	t.s.mu.Unlock()

	for _, w := range t.appointments {
		out = append(out, cloneAppointment(w.row))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out
}

func (t *tx) ListAppointmentsForPeriod(_ context.Context, start, end time.Time) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, ap := range t.appointmentsView() {
		if ap.StartTime.Before(end) && ap.EndTime.After(start) {
			out = append(out, ap)
		}
	}
	return out, nil
}

func (t *tx) ListAppointmentsByTutor(_ context.Context, tutorID uuid.UUID) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, ap := range t.appointmentsView() {
		if ap.TutorID == tutorID {
			out = append(out, ap)
		}
	}
	// mais recentes primeiro
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	return out, nil
}
