package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

// Store é o acesso a estoque dentro da transação corrente.
type Store interface {
	// LockSupplyItem lê o insumo com lock exclusivo até o fim da transação.
	LockSupplyItem(ctx context.Context, id uuid.UUID) (*models.SupplyItem, error)
	GetSupplyItem(ctx context.Context, id uuid.UUID) (*models.SupplyItem, error)

	// SaveSupplyItem grava CurrentStock com checagem de versão e a incrementa.
	SaveSupplyItem(ctx context.Context, item *models.SupplyItem) error

	// ListBatches devolve todos os lotes do insumo, vencidos ou não.
	ListBatches(ctx context.Context, supplyItemID uuid.UUID) ([]models.Batch, error)
	CreateBatch(ctx context.Context, b *models.Batch) error
	UpdateBatchRemaining(ctx context.Context, batchID uuid.UUID, remaining decimal.Decimal) error

	// LockServiceStock trava a linha do serviço para o contador direto.
	LockServiceStock(ctx context.Context, serviceID uuid.UUID) (*models.Service, error)
	UpdateServiceStock(ctx context.Context, serviceID uuid.UUID, stock decimal.Decimal) error

	CreateMovement(ctx context.Context, m *models.StockMovement) error
	ListMovementsByReference(ctx context.Context, reference string) ([]models.StockMovement, error)

	// ListLowStock devolve insumos com CurrentStock <= MinimumStock.
	ListLowStock(ctx context.Context) ([]models.SupplyItem, error)
}
