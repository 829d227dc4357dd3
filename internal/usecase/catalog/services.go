package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/vet-scheduler/internal/audit"
	shared "github.com/BruksfildServices01/vet-scheduler/internal/domain"
	domain "github.com/BruksfildServices01/vet-scheduler/internal/domain/catalog"
	"github.com/BruksfildServices01/vet-scheduler/internal/domain/inventory"
	"github.com/BruksfildServices01/vet-scheduler/internal/domain/uow"
	"github.com/BruksfildServices01/vet-scheduler/internal/httperr"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

// ======================================================
// OFFERABLE SERVICES
// ======================================================

// ListOfferableServices devolve os serviços ativos cujo estoque crítico
// atende ao menos uma ocorrência.
type ListOfferableServices struct {
	runner uow.Runner
	stock  *inventory.Engine
}

func NewListOfferableServices(runner uow.Runner, stock *inventory.Engine) *ListOfferableServices {
	return &ListOfferableServices{runner: runner, stock: stock}
}

// Execute filtra por espécie quando species não é vazio.
func (uc *ListOfferableServices) Execute(ctx context.Context, species string) ([]models.Service, error) {
	out := []models.Service{}
	err := uc.runner.Do(ctx, func(ctx context.Context, tx uow.Tx) error {
		services, err := tx.ListActiveServices(ctx)
		if err != nil {
			return err
		}

		for i := range services {
			svc := &services[i]
			if species != "" && !svc.SpeciesAllowed(species) {
				continue
			}
			ok, err := uc.stock.CheckAvailability(ctx, tx, svc, decimal.NewFromInt(1))
			if err != nil {
				return err
			}
			if ok {
				out = append(out, *svc)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ======================================================
// PREREQUISITES
// ======================================================

type PrerequisiteInput struct {
	RequiredServiceID uuid.UUID `json:"required_service_id"`
	SatisfiedByMarker string    `json:"satisfied_by_marker"`
}

// UpdatePrerequisites troca as arestas de um serviço, rejeitando ciclos.
type UpdatePrerequisites struct {
	runner uow.Runner
	audit  *audit.Dispatcher
}

func NewUpdatePrerequisites(runner uow.Runner, audit *audit.Dispatcher) *UpdatePrerequisites {
	return &UpdatePrerequisites{runner: runner, audit: audit}
}

func (uc *UpdatePrerequisites) Execute(
	ctx context.Context,
	actor shared.Actor,
	serviceID uuid.UUID,
	in []PrerequisiteInput,
) ([]models.ServicePrerequisite, error) {

	edges := make([]models.ServicePrerequisite, 0, len(in))
	err := uc.runner.Do(ctx, func(ctx context.Context, tx uow.Tx) error {
		if err := mustExist(ctx, tx, serviceID); err != nil {
			return err
		}

		seen := make(map[uuid.UUID]bool, len(in))
		required := make([]uuid.UUID, 0, len(in))
		for _, p := range in {
			if seen[p.RequiredServiceID] {
				continue
			}
			seen[p.RequiredServiceID] = true

			if p.RequiredServiceID != serviceID {
				if err := mustExist(ctx, tx, p.RequiredServiceID); err != nil {
					return err
				}
			}
			required = append(required, p.RequiredServiceID)
			edges = append(edges, models.ServicePrerequisite{
				ServiceID:         serviceID,
				RequiredServiceID: p.RequiredServiceID,
				SatisfiedByMarker: p.SatisfiedByMarker,
			})
		}

		existing, err := tx.ListPrerequisites(ctx)
		if err != nil {
			return err
		}
		if err := domain.ValidatePrerequisites(existing, serviceID, required); err != nil {
			return err
		}

		return tx.ReplacePrerequisites(ctx, serviceID, edges)
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		ActorID:  actor.IDPtr(),
		Action:   "prerequisites_updated",
		Entity:   "service",
		EntityID: &serviceID,
		Metadata: map[string]any{"count": len(edges)},
	})

	return edges, nil
}

func mustExist(ctx context.Context, tx uow.Tx, id uuid.UUID) error {
	_, err := tx.GetService(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return httperr.NotFound("service_not_found", "Servicio no encontrado.").
			With("service_id", id.String())
	}
	return err
}
