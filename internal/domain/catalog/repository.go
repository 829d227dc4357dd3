package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

type Repository interface {
	// GetService carrega faixas de peso, receita e pré-requisitos.
	GetService(ctx context.Context, id uuid.UUID) (*models.Service, error)
	ListActiveServices(ctx context.Context) ([]models.Service, error)

	ListActivePromotions(ctx context.Context) ([]models.Promotion, error)

	ListPrerequisites(ctx context.Context) ([]models.ServicePrerequisite, error)
	ReplacePrerequisites(ctx context.Context, serviceID uuid.UUID, edges []models.ServicePrerequisite) error
}
