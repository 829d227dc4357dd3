package appointment

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/BruksfildServices01/vet-scheduler/internal/audit"
	shared "github.com/BruksfildServices01/vet-scheduler/internal/domain"
	domain "github.com/BruksfildServices01/vet-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/vet-scheduler/internal/domain/calendar"
	"github.com/BruksfildServices01/vet-scheduler/internal/domain/catalog"
	"github.com/BruksfildServices01/vet-scheduler/internal/domain/pricing"
	"github.com/BruksfildServices01/vet-scheduler/internal/domain/uow"
	"github.com/BruksfildServices01/vet-scheduler/internal/httperr"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
	"github.com/BruksfildServices01/vet-scheduler/internal/notify"
	"github.com/BruksfildServices01/vet-scheduler/internal/payments"
)

const DefaultChannel = "app"

// ======================================================
// INPUT / OUTPUT
// ======================================================

type CartItemInput struct {
	ServiceID uuid.UUID
	PetID     *uuid.UUID
}

type CreateAppointmentInput struct {
	Actor shared.Actor

	// TutorID só é usado quando a equipe agenda em nome de um tutor.
	TutorID uuid.UUID

	Items         []CartItemInput
	Start         time.Time
	OriginChannel string
	Notes         string
}

type CreateAppointmentOutput struct {
	Appointment *models.Appointment  `json:"appointment"`
	Payment     *payments.Preference `json:"payment,omitempty"`
}

// ======================================================
// USE CASE
// ======================================================

type CreateAppointment struct {
	env Env
}

func NewCreateAppointment(env Env) *CreateAppointment {
	return &CreateAppointment{env: env}
}

type cartLine struct {
	svc *models.Service
	pet *models.Pet
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateAppointment) Execute(
	ctx context.Context,
	in CreateAppointmentInput,
) (out *CreateAppointmentOutput, err error) {

	ctx, span := tracer.Start(ctx, "appointment.create")
	started := time.Now()
	defer func() {
		uc.env.observe("create", started, err)
		recordError(span, err)
		span.End()
	}()

	// --------------------------------------------------
	// 1️⃣ Carrinho
	// --------------------------------------------------
	if len(in.Items) == 0 {
		return nil, httperr.Validation("empty_cart", "El carrito está vacío.")
	}

	// --------------------------------------------------
	// 2️⃣ Tutor
	// --------------------------------------------------
	tutorID := in.Actor.UserID
	if in.Actor.IsStaff() && in.TutorID != uuid.Nil {
		tutorID = in.TutorID
	}
	if tutorID == uuid.Nil {
		return nil, httperr.Validation("invalid_request", "Tutor requerido.")
	}

	// --------------------------------------------------
	// 3️⃣ Horário e antecedência mínima
	// --------------------------------------------------
	if in.Start.IsZero() {
		return nil, httperr.Validation("invalid_time", "Hora de inicio requerida.")
	}
	start := in.Start.In(uc.env.Schedule.Location())

	if start.Before(uc.env.now().Add(uc.env.MinAdvance)) {
		return nil, httperr.Validation("too_soon", "La cita debe reservarse con más anticipación.").
			With("start", start.Format(time.RFC3339))
	}

	channel := strings.TrimSpace(in.OriginChannel)
	if channel == "" {
		channel = DefaultChannel
	}

	span.SetAttributes(
		attribute.Int("cart.items", len(in.Items)),
		attribute.String("appointment.channel", channel),
	)

	var ap *models.Appointment
	err = uc.env.Runner.Do(ctx, func(ctx context.Context, tx uow.Tx) error {

		// --------------------------------------------------
		// 4️⃣ Serviços, mascotas e regras clínicas
		// --------------------------------------------------
		lines, err := resolveCart(ctx, tx, tutorID, in.Items)
		if err != nil {
			return err
		}

		// --------------------------------------------------
		// 5️⃣ Preço (promoções avaliadas sobre o carrinho inteiro)
		// --------------------------------------------------
		built, err := uc.price(ctx, tx, lines, start)
		if err != nil {
			return err
		}
		built.TutorID = tutorID
		built.OriginChannel = channel
		built.Notes = in.Notes

		// --------------------------------------------------
		// 6️⃣ Revalida o slot com a agenda travada
		// --------------------------------------------------
		if err := tx.LockCalendar(ctx); err != nil {
			return err
		}

		occupied, err := occupiedOn(ctx, tx, uc.env.Schedule, start)
		if err != nil {
			return err
		}

		slots := uc.env.Schedule.ComputeSlots(start, built.EndTime.Sub(start), occupied)
		if !calendar.Contains(slots, start) {
			return slotUnavailable(start)
		}

		// --------------------------------------------------
		// 7️⃣ Criação (status inicial centralizado)
		// --------------------------------------------------
		if err := tx.CreateAppointment(ctx, built); err != nil {
			if httperr.IsExclusionConflict(err) {
				return slotUnavailable(start)
			}
			return err
		}

		ap = built
		return nil
	})
	if err != nil {
		uc.env.auditRejection(in.Actor, "appointment_rejected", nil, err)
		return nil, err
	}

	span.SetAttributes(attribute.String("appointment.id", ap.ID.String()))

	// --------------------------------------------------
	// 8️⃣ Efeitos colaterais (best-effort)
	// --------------------------------------------------
	uc.env.Metrics.ObserveBooking(channel)

	uc.env.Audit.Dispatch(audit.Event{
		ActorID:  in.Actor.IDPtr(),
		Action:   "appointment_created",
		Entity:   "appointment",
		EntityID: &ap.ID,
		Metadata: map[string]any{
			"channel":     channel,
			"final_price": ap.FinalPrice.String(),
			"items":       len(ap.Items),
		},
	})

	uc.env.publish(ap, notify.AppointmentCreated)

	out = &CreateAppointmentOutput{Appointment: ap}

	if uc.env.Payments != nil && ap.FinalPrice.IsPositive() {
		pref, err := uc.env.Payments.CreatePreference(ctx, ap)
		if err != nil {
			uc.env.Log.Warn().Err(err).Str("appointment_id", ap.ID.String()).Msg("payment preference failed")
		} else {
			out.Payment = pref
		}
	}

	return out, nil
}

func slotUnavailable(start time.Time) error {
	return httperr.Conflict("slot_unavailable", "El horario solicitado ya no está disponible.").
		With("start", start.Format(time.RFC3339))
}

// resolveCart carrega serviço e mascota de cada linha e aplica as regras
// clínicas. Pré-requisitos contam só linhas da mesma mascota.
func resolveCart(
	ctx context.Context,
	tx uow.Tx,
	tutorID uuid.UUID,
	items []CartItemInput,
) ([]cartLine, error) {

	lines := make([]cartLine, len(items))
	pets := make(map[uuid.UUID]*models.Pet)
	perPet := make(map[uuid.UUID]map[uuid.UUID]bool)

	for i, item := range items {
		svc, err := tx.GetService(ctx, item.ServiceID)
		if errors.Is(err, shared.ErrNotFound) {
			return nil, httperr.NotFound("service_not_found", "Servicio no encontrado.").
				With("item_index", i).With("service_id", item.ServiceID.String())
		}
		if err != nil {
			return nil, err
		}
		if !svc.Active {
			return nil, httperr.Validation("service_inactive", svc.Name+" no está disponible.").
				With("item_index", i).With("service_id", svc.ID.String())
		}

		var pet *models.Pet
		if item.PetID != nil {
			pet = pets[*item.PetID]
			if pet == nil {
				pet, err = tx.GetPet(ctx, *item.PetID)
				if errors.Is(err, shared.ErrNotFound) {
					return nil, httperr.NotFound("pet_not_found", "Mascota no encontrada.").
						With("item_index", i).With("pet_id", item.PetID.String())
				}
				if err != nil {
					return nil, err
				}
				pets[pet.ID] = pet
			}
			if pet.TutorID != tutorID {
				return nil, httperr.Forbidden("pet_not_owned_by_requester", "La mascota no pertenece al tutor.").
					With("item_index", i).With("pet_id", pet.ID.String())
			}
		} else if svc.RequiresPet {
			return nil, httperr.Validation("service_requires_pet", svc.Name+" requiere una mascota.").
				With("item_index", i).With("service_id", svc.ID.String())
		}

		lines[i] = cartLine{svc: svc, pet: pet}

		var key uuid.UUID
		if pet != nil {
			key = pet.ID
		}
		if perPet[key] == nil {
			perPet[key] = make(map[uuid.UUID]bool)
		}
		perPet[key][svc.ID] = true
	}

	for i, l := range lines {
		var key uuid.UUID
		if l.pet != nil {
			key = l.pet.ID
		}
		if err := catalog.ValidateClinical(i, l.svc, l.pet, perPet[key]); err != nil {
			return nil, err
		}
	}

	return lines, nil
}

// price monta o agendamento com linhas cotadas, duração total e total final.
func (uc *CreateAppointment) price(
	ctx context.Context,
	tx uow.Tx,
	lines []cartLine,
	start time.Time,
) (*models.Appointment, error) {

	promotions, err := tx.ListActivePromotions(ctx)
	if err != nil {
		return nil, err
	}

	cart := make([]pricing.CartLine, len(lines))
	for i, l := range lines {
		base, note := pricing.ResolveBasePrice(l.svc, l.pet)
		cart[i] = pricing.CartLine{ServiceID: l.svc.ID, BasePrice: base}
		if note != "" {
			cart[i].Notes = []string{note}
		}
	}

	quotes := uc.env.Pricing.CalculateDiscounts(cart, promotions, start)

	ap := &models.Appointment{
		StartTime:  start,
		Status:     string(domain.InitialStatus()),
		PaidAmount: decimal.Zero,
		Items:      make([]models.LineItem, len(lines)),
	}

	for i, l := range lines {
		var petID *uuid.UUID
		if l.pet != nil {
			id := l.pet.ID
			petID = &id
		}
		ap.Items[i] = models.LineItem{
			ServiceID:       l.svc.ID,
			PetID:           petID,
			Position:        i,
			ServiceName:     l.svc.Name,
			DurationMin:     l.svc.DurationMin,
			OriginalPrice:   quotes[i].OriginalPrice,
			UnitPrice:       quotes[i].FinalPrice,
			DiscountApplied: quotes[i].DiscountApplied,
			PriceNotes:      strings.Join(quotes[i].Notes, "; "),
			Status:          models.LineItemActive,
		}
	}

	duration := domain.TotalDuration(ap.Items)
	if duration <= 0 {
		return nil, httperr.Validation("invalid_duration", "El carrito no tiene servicios con duración.")
	}
	ap.EndTime = start.Add(duration)

	domain.RecomputeTotals(ap)
	return ap, nil
}
