package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/vet-scheduler/internal/audit"
	shared "github.com/BruksfildServices01/vet-scheduler/internal/domain"
	domain "github.com/BruksfildServices01/vet-scheduler/internal/domain/inventory"
	"github.com/BruksfildServices01/vet-scheduler/internal/domain/uow"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

// ======================================================
// LOW STOCK
// ======================================================

type ListLowStock struct {
	runner uow.Runner
}

func NewListLowStock(runner uow.Runner) *ListLowStock {
	return &ListLowStock{runner: runner}
}

func (uc *ListLowStock) Execute(ctx context.Context) ([]models.SupplyItem, error) {
	items := []models.SupplyItem{}
	err := uc.runner.Do(ctx, func(ctx context.Context, tx uow.Tx) error {
		list, err := tx.ListLowStock(ctx)
		if err != nil {
			return err
		}
		items = append(items, list...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ======================================================
// BATCH INTAKE
// ======================================================

type ReceiveBatchInput struct {
	Actor        shared.Actor
	SupplyItemID uuid.UUID
	LotCode      string
	ExpiresAt    time.Time
	Quantity     decimal.Decimal
}

type ReceiveBatch struct {
	runner uow.Runner
	stock  *domain.Engine
	audit  *audit.Dispatcher
}

func NewReceiveBatch(runner uow.Runner, stock *domain.Engine, audit *audit.Dispatcher) *ReceiveBatch {
	return &ReceiveBatch{runner: runner, stock: stock, audit: audit}
}

func (uc *ReceiveBatch) Execute(ctx context.Context, in ReceiveBatchInput) (*models.Batch, error) {
	var batch *models.Batch
	err := uc.runner.Do(ctx, func(ctx context.Context, tx uow.Tx) error {
		b, err := uc.stock.ReceiveBatch(ctx, tx, domain.ReceiveBatchInput{
			SupplyItemID: in.SupplyItemID,
			LotCode:      in.LotCode,
			ExpiresAt:    in.ExpiresAt,
			Quantity:     in.Quantity,
			Reference:    "intake:" + in.LotCode,
		})
		if err != nil {
			return err
		}
		batch = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		ActorID:  in.Actor.IDPtr(),
		Action:   "batch_received",
		Entity:   "supply_item",
		EntityID: &batch.SupplyItemID,
		Metadata: map[string]any{
			"batch_id": batch.ID.String(),
			"lot_code": batch.LotCode,
			"quantity": batch.InitialQty.String(),
		},
	})

	return batch, nil
}
