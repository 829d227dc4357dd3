package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/vet-scheduler/internal/domain"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

// --------------------------------------------------
// Supply items
// --------------------------------------------------

func (t *gormTx) LockSupplyItem(ctx context.Context, id uuid.UUID) (*models.SupplyItem, error) {
	var item models.SupplyItem
	if err := t.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&item, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

func (t *gormTx) GetSupplyItem(ctx context.Context, id uuid.UUID) (*models.SupplyItem, error) {
	var item models.SupplyItem
	if err := t.conn(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

func (t *gormTx) SaveSupplyItem(ctx context.Context, item *models.SupplyItem) error {
	now := time.Now()
	res := t.conn(ctx).
		Model(&models.SupplyItem{}).
		Where("id = ? AND version = ?", item.ID, item.Version).
		Updates(map[string]any{
			"current_stock": item.CurrentStock,
			"version":       item.Version + 1,
			"updated_at":    now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ConcurrentModification("supply_item")
	}

	item.Version++
	item.UpdatedAt = now
	return nil
}

func (t *gormTx) ListLowStock(ctx context.Context) ([]models.SupplyItem, error) {
	var list []models.SupplyItem
	if err := t.conn(ctx).
		Where("current_stock <= minimum_stock").
		Order("name ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// --------------------------------------------------
// Batches
// --------------------------------------------------

func (t *gormTx) ListBatches(ctx context.Context, supplyItemID uuid.UUID) ([]models.Batch, error) {
	var batches []models.Batch
	if err := t.conn(ctx).
		Where("supply_item_id = ?", supplyItemID).
		Order("expires_at ASC, lot_code ASC").
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

func (t *gormTx) CreateBatch(ctx context.Context, b *models.Batch) error {
	return t.conn(ctx).Create(b).Error
}

func (t *gormTx) UpdateBatchRemaining(ctx context.Context, batchID uuid.UUID, remaining decimal.Decimal) error {
	res := t.conn(ctx).
		Model(&models.Batch{}).
		Where("id = ?", batchID).
		Updates(map[string]any{"remaining_qty": remaining, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// --------------------------------------------------
// Direct service counter
// --------------------------------------------------

func (t *gormTx) LockServiceStock(ctx context.Context, serviceID uuid.UUID) (*models.Service, error) {
	var svc models.Service
	if err := t.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&svc, "id = ?", serviceID).Error; err != nil {
		return nil, notFound(err)
	}
	return &svc, nil
}

func (t *gormTx) UpdateServiceStock(ctx context.Context, serviceID uuid.UUID, stock decimal.Decimal) error {
	return t.conn(ctx).
		Model(&models.Service{}).
		Where("id = ?", serviceID).
		Update("stock", stock).Error
}

// --------------------------------------------------
// Movements
// --------------------------------------------------

func (t *gormTx) CreateMovement(ctx context.Context, m *models.StockMovement) error {
	return t.conn(ctx).Create(m).Error
}

func (t *gormTx) ListMovementsByReference(ctx context.Context, reference string) ([]models.StockMovement, error) {
	var moves []models.StockMovement
	if err := t.conn(ctx).
		Where("reference = ?", reference).
		Order("created_at ASC").
		Find(&moves).Error; err != nil {
		return nil, err
	}
	return moves, nil
}
