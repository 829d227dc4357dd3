package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/vet-scheduler/internal/domain"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

func supplyKey(id uuid.UUID) string  { return "supply:" + id.String() }
func serviceKey(id uuid.UUID) string { return "service:" + id.String() }

func (t *tx) supply(id uuid.UUID) (models.SupplyItem, int, bool) {
	if w, ok := t.supplies[id]; ok {
		return w.row, w.base, true
	}
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	item, ok := t.s.data.supplies[id]
	return item, item.Version, ok
}

func (t *tx) LockSupplyItem(ctx context.Context, id uuid.UUID) (*models.SupplyItem, error) {
	if _, _, ok := t.supply(id); !ok {
		return nil, domain.ErrNotFound
	}
	if err := t.lock(ctx, supplyKey(id)); err != nil {
		return nil, err
	}
	// relê depois do lock: quem segurava pode ter confirmado outra versão
	item, _, _ := t.supply(id)
	return &item, nil
}

func (t *tx) GetSupplyItem(_ context.Context, id uuid.UUID) (*models.SupplyItem, error) {
	item, _, ok := t.supply(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &item, nil
}

func (t *tx) SaveSupplyItem(_ context.Context, item *models.SupplyItem) error {
	cur, base, ok := t.supply(item.ID)
	if !ok {
		return domain.ErrNotFound
	}
	if cur.Version != item.Version {
		return domain.ConcurrentModification("supply_item")
	}

	item.Version++
	item.UpdatedAt = time.Now()

	row := *item
	row.Batches = nil
	t.supplies[item.ID] = versioned[models.SupplyItem]{row: row, base: base}
	return nil
}

func (t *tx) ListBatches(_ context.Context, supplyItemID uuid.UUID) ([]models.Batch, error) {
	t.s.mu.Lock()
	var out []models.Batch
	for id, b := range t.s.data.batches {
		if _, staged := t.batches[id]; staged {
			continue
		}
		if b.SupplyItemID == supplyItemID {
			out = append(out, b)
		}
	}
	t.s.mu.Unlock()

	for _, b := range t.batches {
		if b.SupplyItemID == supplyItemID {
			out = append(out, b)
		}
	}
	sortBatches(out)
	return out, nil
}

func (t *tx) batch(id uuid.UUID) (models.Batch, bool) {
	if b, ok := t.batches[id]; ok {
		return b, true
	}
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	b, ok := t.s.data.batches[id]
	return b, ok
}

func (t *tx) CreateBatch(_ context.Context, b *models.Batch) error {
	models.EnsureID(&b.ID)
	stamp(&b.CreatedAt, &b.UpdatedAt)
	t.batches[b.ID] = *b
	return nil
}

// UpdateBatchRemaining aplica a mesma restrição que o banco: 0 <= saldo <= inicial.
func (t *tx) UpdateBatchRemaining(_ context.Context, batchID uuid.UUID, remaining decimal.Decimal) error {
	b, ok := t.batch(batchID)
	if !ok {
		return domain.ErrNotFound
	}
	if remaining.IsNegative() || remaining.GreaterThan(b.InitialQty) {
		return errBatchCheck
	}
	b.RemainingQty = remaining
	b.UpdatedAt = time.Now()
	t.batches[batchID] = b
	return nil
}

func (t *tx) LockServiceStock(ctx context.Context, serviceID uuid.UUID) (*models.Service, error) {
	if _, err := t.GetService(ctx, serviceID); err != nil {
		return nil, err
	}
	if err := t.lock(ctx, serviceKey(serviceID)); err != nil {
		return nil, err
	}
	return t.GetService(ctx, serviceID)
}

func (t *tx) UpdateServiceStock(_ context.Context, serviceID uuid.UUID, stock decimal.Decimal) error {
	if stock.IsNegative() {
		return errServiceStockCheck
	}
	t.serviceStock[serviceID] = stock
	return nil
}

func (t *tx) CreateMovement(_ context.Context, m *models.StockMovement) error {
	models.EnsureID(&m.ID)
	stamp(&m.CreatedAt, nil)
	t.movements = append(t.movements, *m)
	return nil
}

func (t *tx) ListMovementsByReference(_ context.Context, reference string) ([]models.StockMovement, error) {
	var out []models.StockMovement

	t.s.mu.Lock()
	for _, m := range t.s.data.movements {
		if m.Reference == reference {
			out = append(out, m)
		}
	}
	t.s.mu.Unlock()

	for _, m := range t.movements {
		if m.Reference == reference {
			out = append(out, m)
		}
	}
	return out, nil
}

func (t *tx) ListLowStock(_ context.Context) ([]models.SupplyItem, error) {
	t.s.mu.Lock()
	ids := make([]uuid.UUID, 0, len(t.s.data.supplies))
	for id := range t.s.data.supplies {
		ids = append(ids, id)
	}
	t.s.mu.Unlock()

	var out []models.SupplyItem
	for _, id := range ids {
		item, _, _ := t.supply(id)
		if item.CurrentStock.LessThanOrEqual(item.MinimumStock) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
