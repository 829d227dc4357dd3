package catalog

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/vet-scheduler/internal/httperr"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

// ValidateClinical aplica as regras clínicas de uma linha do carrinho.
// cart contém os serviços de todas as linhas; index identifica a linha
// no erro devolvido.
func ValidateClinical(
	index int,
	svc *models.Service,
	pet *models.Pet,
	cart map[uuid.UUID]bool,
) error {
	if pet == nil {
		return nil
	}

	if !svc.SpeciesAllowed(pet.Species) {
		return httperr.Validation(
			"species_not_allowed",
			fmt.Sprintf("%s no está disponible para la especie %s.", svc.Name, pet.Species),
		).With("item_index", index).With("service_id", svc.ID.String())
	}

	if svc.BlockedIfSterilized && pet.Sterilized {
		return httperr.Validation(
			"pet_already_sterilized",
			fmt.Sprintf("%s ya está esterilizada.", pet.Name),
		).With("item_index", index).With("service_id", svc.ID.String())
	}

	for _, pre := range svc.Prerequisites {
		if cart[pre.RequiredServiceID] {
			continue
		}
		if pre.SatisfiedByMarker != "" && pet.HasMarker(pre.SatisfiedByMarker) {
			continue
		}
		return httperr.Validation(
			"clinical_prerequisite_unmet",
			fmt.Sprintf("%s requiere un servicio previo.", svc.Name),
		).With("item_index", index).
			With("service_id", svc.ID.String()).
			With("required_service_id", pre.RequiredServiceID.String())
	}

	return nil
}
