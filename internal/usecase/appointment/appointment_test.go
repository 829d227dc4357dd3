package appointment_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	shared "github.com/BruksfildServices01/vet-scheduler/internal/domain"
	domain "github.com/BruksfildServices01/vet-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/vet-scheduler/internal/domain/calendar"
	"github.com/BruksfildServices01/vet-scheduler/internal/domain/inventory"
	"github.com/BruksfildServices01/vet-scheduler/internal/domain/pricing"
	"github.com/BruksfildServices01/vet-scheduler/internal/domain/uow"
	"github.com/BruksfildServices01/vet-scheduler/internal/httperr"
	"github.com/BruksfildServices01/vet-scheduler/internal/infra/memory"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
	"github.com/BruksfildServices01/vet-scheduler/internal/usecase/appointment"
)

// domingo; a segunda seguinte é 2026-10-19
var now = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func monday(h, m int) time.Time {
	return time.Date(2026, 10, 19, h, m, 0, 0, time.UTC)
}

func n(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

type fixture struct {
	store *memory.Store
	env   appointment.Env
	tutor shared.Actor
	staff shared.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	sched, err := calendar.NewSchedule(time.UTC, 15*time.Minute, map[time.Weekday]calendar.DayHours{
		time.Monday: {OpenMin: 9 * 60, CloseMin: 11 * 60},
	})
	require.NoError(t, err)

	clock := func() time.Time { return now }
	s := memory.New()

	return &fixture{
		store: s,
		env: appointment.Env{
			Runner:   s,
			Schedule: sched,
			Pricing:  pricing.NewEngine(0),
			Stock:    inventory.NewEngine(time.UTC, inventory.WithClock(clock)),
			Now:      clock,
			Log:      zerolog.Nop(),
		},
		tutor: shared.Actor{UserID: uuid.New(), Role: shared.RoleTutor},
		staff: shared.Actor{UserID: uuid.New(), Role: shared.RoleStaff},
	}
}

func (f *fixture) service(name string, price int64, minutes int) models.Service {
	return f.store.PutService(models.Service{
		Name:        name,
		BasePrice:   n(price),
		DurationMin: minutes,
		Active:      true,
	})
}

func (f *fixture) pet(name string) models.Pet {
	return f.store.PutPet(models.Pet{TutorID: f.tutor.UserID, Name: name, Species: "canine"})
}

func (f *fixture) book(svc models.Service, pet *models.Pet, start time.Time) (*appointment.CreateAppointmentOutput, error) {
	item := appointment.CartItemInput{ServiceID: svc.ID}
	if pet != nil {
		id := pet.ID
		item.PetID = &id
	}
	return appointment.NewCreateAppointment(f.env).Execute(context.Background(), appointment.CreateAppointmentInput{
		Actor: f.tutor,
		Items: []appointment.CartItemInput{item},
		Start: start,
	})
}

func code(t *testing.T, err error) string {
	t.Helper()
	be, ok := httperr.AsBusiness(err)
	require.True(t, ok, "expected business error, got %v", err)
	return be.Code
}

// ======================================================
// CREATE
// ======================================================

func TestCreateAppointmentBooksSlot(t *testing.T) {
	f := newFixture(t)
	consult := f.service("Consulta", 15000, 30)
	pet := f.pet("Toby")

	out, err := f.book(consult, &pet, monday(9, 0))
	require.NoError(t, err)

	ap := out.Appointment
	assert.Equal(t, string(domain.StatusPendingPayment), ap.Status)
	assert.Equal(t, monday(9, 30), ap.EndTime)
	assert.True(t, n(15000).Equal(ap.FinalPrice))
	require.Len(t, ap.Items, 1)
	assert.Equal(t, models.LineItemActive, ap.Items[0].Status)
	assert.Nil(t, out.Payment)

	stored, ok := f.store.Appointment(ap.ID)
	require.True(t, ok)
	assert.Equal(t, f.tutor.UserID, stored.TutorID)
	assert.Equal(t, appointment.DefaultChannel, stored.OriginChannel)

	slots, err := appointment.NewGetAvailability(f.env).Execute(context.Background(), domain.AvailabilityInput{
		Date:        monday(0, 0),
		DurationMin: 30,
	})
	require.NoError(t, err)

	starts := make([]time.Time, len(slots))
	for i, s := range slots {
		starts[i] = s.Start
	}
	assert.NotContains(t, starts, monday(9, 0))
	assert.NotContains(t, starts, monday(9, 15))
	assert.Contains(t, starts, monday(9, 30))
}

func TestCreateAppointmentAppliesCartPromotion(t *testing.T) {
	f := newFixture(t)
	test := f.service("Test retroviral", 20000, 15)
	vaccine := f.service("Vacuna", 10000, 15)
	pet := f.pet("Michi")

	f.store.PutPromotion(models.Promotion{
		Name:      "Pack felino",
		StartDate: now.AddDate(0, 0, -1),
		EndDate:   now.AddDate(0, 0, 30),
		Active:    true,
		Triggers:  []models.PromotionTrigger{{ServiceID: test.ID}},
		Benefits: []models.PromotionBenefit{
			{ServiceID: vaccine.ID, Kind: pricing.KindPercentOff, Value: n(10)},
		},
	})

	out, err := appointment.NewCreateAppointment(f.env).Execute(context.Background(), appointment.CreateAppointmentInput{
		Actor: f.tutor,
		Items: []appointment.CartItemInput{
			{ServiceID: test.ID, PetID: &pet.ID},
			{ServiceID: vaccine.ID, PetID: &pet.ID},
		},
		Start: monday(10, 0),
	})
	require.NoError(t, err)

	ap := out.Appointment
	require.Len(t, ap.Items, 2)
	assert.Equal(t, monday(10, 30), ap.EndTime)

	vac := ap.Items[1]
	assert.True(t, n(10000).Equal(vac.OriginalPrice))
	assert.True(t, n(9000).Equal(vac.UnitPrice))
	assert.True(t, vac.DiscountApplied)
	assert.Contains(t, vac.PriceNotes, "Promo: Pack felino")
	assert.True(t, n(29000).Equal(ap.FinalPrice))
}

func TestCreateAppointmentRejections(t *testing.T) {
	f := newFixture(t)
	consult := f.service("Consulta", 15000, 30)
	inactive := f.store.PutService(models.Service{Name: "Antigua", BasePrice: n(1), DurationMin: 30})
	needsPet := f.store.PutService(models.Service{Name: "Baño", BasePrice: n(1), DurationMin: 30, Active: true, RequiresPet: true})
	neuter := f.store.PutService(models.Service{Name: "Esterilización", BasePrice: n(1), DurationMin: 60, Active: true, BlockedIfSterilized: true})
	test := f.service("Test retroviral", 20000, 15)
	vaccine := f.store.PutService(models.Service{
		Name: "Vacuna", BasePrice: n(1), DurationMin: 15, Active: true,
		Prerequisites: []models.ServicePrerequisite{{RequiredServiceID: test.ID}},
	})

	own := f.pet("Toby")
	sterilized := f.store.PutPet(models.Pet{TutorID: f.tutor.UserID, Name: "Luna", Species: "canine", Sterilized: true})
	foreign := f.store.PutPet(models.Pet{TutorID: uuid.New(), Name: "Rex", Species: "canine"})

	cases := []struct {
		name  string
		items []appointment.CartItemInput
		start time.Time
		code  string
	}{
		{"empty cart", nil, monday(9, 0), "empty_cart"},
		{"unknown service", []appointment.CartItemInput{{ServiceID: uuid.New()}}, monday(9, 0), "service_not_found"},
		{"inactive service", []appointment.CartItemInput{{ServiceID: inactive.ID}}, monday(9, 0), "service_inactive"},
		{"unknown pet", []appointment.CartItemInput{{ServiceID: consult.ID, PetID: ptr(uuid.New())}}, monday(9, 0), "pet_not_found"},
		{"foreign pet", []appointment.CartItemInput{{ServiceID: consult.ID, PetID: &foreign.ID}}, monday(9, 0), "pet_not_owned_by_requester"},
		{"requires pet", []appointment.CartItemInput{{ServiceID: needsPet.ID}}, monday(9, 0), "service_requires_pet"},
		{"already sterilized", []appointment.CartItemInput{{ServiceID: neuter.ID, PetID: &sterilized.ID}}, monday(9, 0), "pet_already_sterilized"},
		{"prerequisite unmet", []appointment.CartItemInput{{ServiceID: vaccine.ID, PetID: &own.ID}}, monday(9, 0), "clinical_prerequisite_unmet"},
		{"in the past", []appointment.CartItemInput{{ServiceID: consult.ID}}, now.Add(-time.Hour), "too_soon"},
		{"after closing", []appointment.CartItemInput{{ServiceID: consult.ID}}, monday(10, 45), "slot_unavailable"},
		{"closed day", []appointment.CartItemInput{{ServiceID: consult.ID}}, monday(9, 0).AddDate(0, 0, 1), "slot_unavailable"},
		{"off grid", []appointment.CartItemInput{{ServiceID: consult.ID}}, monday(9, 5), "slot_unavailable"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := appointment.NewCreateAppointment(f.env).Execute(context.Background(), appointment.CreateAppointmentInput{
				Actor: f.tutor,
				Items: tc.items,
				Start: tc.start,
			})
			require.Error(t, err)
			assert.Equal(t, tc.code, code(t, err))
		})
	}

	_, err := f.book(consult, &foreign, monday(9, 0))
	assert.Equal(t, httperr.KindForbidden, httperr.KindOf(err))
}

func TestCreateAppointmentPrerequisiteInCartOrMarker(t *testing.T) {
	f := newFixture(t)
	test := f.service("Test retroviral", 20000, 15)
	vaccine := f.store.PutService(models.Service{
		Name: "Vacuna", BasePrice: n(10000), DurationMin: 15, Active: true,
		Prerequisites: []models.ServicePrerequisite{{RequiredServiceID: test.ID, SatisfiedByMarker: "retro_negative"}},
	})

	pet := f.pet("Michi")
	_, err := appointment.NewCreateAppointment(f.env).Execute(context.Background(), appointment.CreateAppointmentInput{
		Actor: f.tutor,
		Items: []appointment.CartItemInput{
			{ServiceID: vaccine.ID, PetID: &pet.ID},
			{ServiceID: test.ID, PetID: &pet.ID},
		},
		Start: monday(9, 0),
	})
	require.NoError(t, err)

	tested := f.store.PutPet(models.Pet{
		TutorID: f.tutor.UserID, Name: "Nala", Species: "feline",
		Markers: []models.PetClinicalMarker{{Code: "retro_negative", RecordedAt: now}},
	})
	_, err = f.book(vaccine, &tested, monday(10, 0))
	require.NoError(t, err)

	// o teste de outra mascota não vale
	other := f.pet("Bigotes")
	_, err = appointment.NewCreateAppointment(f.env).Execute(context.Background(), appointment.CreateAppointmentInput{
		Actor: f.tutor,
		Items: []appointment.CartItemInput{
			{ServiceID: vaccine.ID, PetID: &other.ID},
			{ServiceID: test.ID, PetID: &pet.ID},
		},
		Start: monday(10, 30),
	})
	require.Error(t, err)
	assert.Equal(t, "clinical_prerequisite_unmet", code(t, err))
}

func TestCreateAppointmentRejectsDoubleBooking(t *testing.T) {
	f := newFixture(t)
	consult := f.service("Consulta", 15000, 30)

	_, err := f.book(consult, nil, monday(9, 30))
	require.NoError(t, err)

	_, err = f.book(consult, nil, monday(9, 15))
	require.Error(t, err)
	assert.Equal(t, "slot_unavailable", code(t, err))

	_, err = f.book(consult, nil, monday(10, 0))
	assert.NoError(t, err)
}

func TestCreateAppointmentConcurrentSameSlot(t *testing.T) {
	f := newFixture(t)
	consult := f.service("Consulta", 15000, 30)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.book(consult, nil, monday(9, 0))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else if httperr.IsBusiness(err, "slot_unavailable") {
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, conflicts)
}

func TestCreateAppointmentStaffBooksForTutor(t *testing.T) {
	f := newFixture(t)
	consult := f.service("Consulta", 15000, 30)
	pet := f.pet("Toby")

	out, err := appointment.NewCreateAppointment(f.env).Execute(context.Background(), appointment.CreateAppointmentInput{
		Actor:         f.staff,
		TutorID:       f.tutor.UserID,
		Items:         []appointment.CartItemInput{{ServiceID: consult.ID, PetID: &pet.ID}},
		Start:         monday(9, 0),
		OriginChannel: "front_desk",
	})
	require.NoError(t, err)
	assert.Equal(t, f.tutor.UserID, out.Appointment.TutorID)
	assert.Equal(t, "front_desk", out.Appointment.OriginChannel)
}

// ======================================================
// AVAILABILITY
// ======================================================

func TestGetAvailabilityHonoursMinAdvance(t *testing.T) {
	f := newFixture(t)
	f.env.Now = func() time.Time { return monday(9, 10) }
	f.env.MinAdvance = 30 * time.Minute

	slots, err := appointment.NewGetAvailability(f.env).Execute(context.Background(), domain.AvailabilityInput{
		Date:        monday(0, 0),
		DurationMin: 30,
	})
	require.NoError(t, err)
	require.NotEmpty(t, slots)
	assert.Equal(t, monday(9, 45), slots[0].Start)
	assert.Equal(t, monday(10, 15), slots[0].End)

	_, err = appointment.NewGetAvailability(f.env).Execute(context.Background(), domain.AvailabilityInput{Date: monday(0, 0)})
	assert.Equal(t, "invalid_duration", code(t, err))
}

func TestGetAvailabilitySkipsBlocks(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Do(context.Background(), func(ctx context.Context, tx uow.Tx) error {
		return tx.CreateBlock(ctx, &models.ScheduleBlock{StartTime: monday(9, 0), EndTime: monday(10, 0), Reason: "Cirugía"})
	}))

	slots, err := appointment.NewGetAvailability(f.env).Execute(context.Background(), domain.AvailabilityInput{
		Date:        monday(0, 0),
		DurationMin: 30,
	})
	require.NoError(t, err)
	require.Len(t, slots, 3)
	assert.Equal(t, monday(10, 0), slots[0].Start)
}

func ptr[T any](v T) *T { return &v }
