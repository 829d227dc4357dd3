package inventory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/vet-scheduler/internal/domain"
	"github.com/BruksfildServices01/vet-scheduler/internal/httperr"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

const returnLotPrefix = "RET-"

// Engine consome e devolve estoque dentro da transação do chamador. Não
// abre transações próprias: rollback de qualquer falha é do chamador.
type Engine struct {
	loc       *time.Location
	now       func() time.Time
	shelfLife time.Duration
}

type Option func(*Engine)

// WithClock troca o relógio usado para decidir validade.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithReturnShelfLife define a validade de lotes de devolução quando não há
// lote vigente para servir de referência.
func WithReturnShelfLife(d time.Duration) Option {
	return func(e *Engine) { e.shelfLife = d }
}

func NewEngine(loc *time.Location, opts ...Option) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	e := &Engine{
		loc:       loc,
		now:       time.Now,
		shelfLife: 30 * 24 * time.Hour,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Engine) today() time.Time {
	return e.now().In(e.loc)
}

// StockConflict é o erro de estoque crítico insuficiente.
func StockConflict(msg string) *httperr.BusinessError {
	return httperr.Conflict("stock_conflict", msg)
}

// ======================================================
// CONSUME
// ======================================================

// Consume retira quantity ocorrências do serviço: primeiro o contador direto,
// depois a receita de insumos em FEFO. Insumos são travados em ordem de id.
// Falta de requisito crítico devolve stock_conflict; o chamador deve
// desfazer a transação inteira.
func (e *Engine) Consume(
	ctx context.Context,
	st Store,
	svc *models.Service,
	quantity decimal.Decimal,
	reference string,
) error {
	if !quantity.IsPositive() {
		return httperr.Validation("invalid_quantity", "La cantidad debe ser positiva.")
	}

	if svc.Stock != nil {
		if err := e.consumeCounter(ctx, st, svc, quantity, reference); err != nil {
			return err
		}
	}

	for _, req := range sortedRequirements(svc.SupplyRequirements) {
		need := req.Quantity.Mul(quantity)
		if !need.IsPositive() {
			continue
		}
		if err := e.consumeSupply(ctx, st, svc.ID, req, need, reference); err != nil {
			return err
		}
	}

	return nil
}

func (e *Engine) consumeCounter(
	ctx context.Context,
	st Store,
	svc *models.Service,
	quantity decimal.Decimal,
	reference string,
) error {
	locked, err := st.LockServiceStock(ctx, svc.ID)
	if err != nil {
		return err
	}
	if locked.Stock == nil {
		return nil
	}

	before := *locked.Stock
	if before.LessThan(quantity) {
		return StockConflict(fmt.Sprintf("Stock insuficiente de %s.", svc.Name)).
			With("service_id", svc.ID.String()).
			With("required", quantity.String()).
			With("available", before.String())
	}

	after := before.Sub(quantity)
	if err := st.UpdateServiceStock(ctx, svc.ID, after); err != nil {
		return err
	}

	serviceID := svc.ID
	return st.CreateMovement(ctx, &models.StockMovement{
		ServiceID:   &serviceID,
		Kind:        models.MovementConsume,
		Quantity:    quantity,
		StockBefore: before,
		StockAfter:  after,
		Reference:   reference,
	})
}

func (e *Engine) consumeSupply(
	ctx context.Context,
	st Store,
	serviceID uuid.UUID,
	req models.ServiceSupplyRequirement,
	need decimal.Decimal,
	reference string,
) error {
	item, err := st.LockSupplyItem(ctx, req.SupplyItemID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return httperr.NotFound("supply_item_not_found", "Insumo no encontrado.").
				With("supply_item_id", req.SupplyItemID.String())
		}
		return err
	}

	batches, err := st.ListBatches(ctx, item.ID)
	if err != nil {
		return err
	}

	plan := PlanFEFO(batches, need, e.today())
	if !plan.Complete && req.Critical {
		return StockConflict(fmt.Sprintf("Stock insuficiente de %s.", item.Name)).
			With("supply_item_id", item.ID.String()).
			With("required", need.String()).
			With("available", plan.Satisfied.String())
	}
	if !plan.Satisfied.IsPositive() {
		return nil
	}

	stock := item.CurrentStock
	itemID := item.ID
	svcID := serviceID

	for _, d := range plan.Draws {
		if err := st.UpdateBatchRemaining(ctx, d.BatchID, d.Remaining); err != nil {
			return err
		}

		after := stock.Sub(d.Quantity)
		if after.IsNegative() {
			after = decimal.Zero
		}
		batchID := d.BatchID
		if err := st.CreateMovement(ctx, &models.StockMovement{
			ServiceID:    &svcID,
			SupplyItemID: &itemID,
			BatchID:      &batchID,
			Kind:         models.MovementConsume,
			Quantity:     d.Quantity,
			StockBefore:  stock,
			StockAfter:   after,
			Reference:    reference,
		}); err != nil {
			return err
		}
		stock = after
	}

	item.CurrentStock = stock
	return st.SaveSupplyItem(ctx, item)
}

// ======================================================
// LOCK ORDER
// ======================================================

// LockSet reúne as linhas de estoque que uma transação com várias linhas vai
// tocar. Acquire trava tudo numa passada só: contadores de serviço por id
// crescente, depois insumos por id crescente. Os locks são da transação, então
// Consume e ReturnStock chamados depois não esperam de novo.
type LockSet struct {
	services map[uuid.UUID]struct{}
	supplies map[uuid.UUID]struct{}
}

func NewLockSet() *LockSet {
	return &LockSet{
		services: make(map[uuid.UUID]struct{}),
		supplies: make(map[uuid.UUID]struct{}),
	}
}

// AddConsumption inclui o que Consume travaria para svc.
func (l *LockSet) AddConsumption(svc *models.Service) {
	if svc.Stock != nil {
		l.services[svc.ID] = struct{}{}
	}
	for _, req := range svc.SupplyRequirements {
		if req.Quantity.IsPositive() {
			l.supplies[req.SupplyItemID] = struct{}{}
		}
	}
}

// AddReturn inclui o que ReturnStock travaria para reference, lido do razão.
func (l *LockSet) AddReturn(ctx context.Context, st Store, serviceID uuid.UUID, reference string) error {
	moves, err := st.ListMovementsByReference(ctx, reference)
	if err != nil {
		return err
	}
	counter, supplies := netConsumed(moves)
	if counter.IsPositive() {
		l.services[serviceID] = struct{}{}
	}
	for id, q := range supplies {
		if q.IsPositive() {
			l.supplies[id] = struct{}{}
		}
	}
	return nil
}

func (l *LockSet) Acquire(ctx context.Context, st Store) error {
	for _, id := range keys(l.services) {
		if _, err := st.LockServiceStock(ctx, id); err != nil {
			return err
		}
	}
	for _, id := range keys(l.supplies) {
		if _, err := st.LockSupplyItem(ctx, id); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return httperr.NotFound("supply_item_not_found", "Insumo no encontrado.").
					With("supply_item_id", id.String())
			}
			return err
		}
	}
	return nil
}

// ======================================================
// CHECK AVAILABILITY
// ======================================================

// CheckAvailability faz o mesmo percurso FEFO sem travar nem gravar.
// Só requisitos críticos e o contador direto podem reprovar.
func (e *Engine) CheckAvailability(
	ctx context.Context,
	st Store,
	svc *models.Service,
	quantity decimal.Decimal,
) (bool, error) {
	if svc.Stock != nil && svc.Stock.LessThan(quantity) {
		return false, nil
	}

	today := e.today()
	for _, req := range svc.SupplyRequirements {
		if !req.Critical {
			continue
		}
		batches, err := st.ListBatches(ctx, req.SupplyItemID)
		if err != nil {
			return false, err
		}
		if !PlanFEFO(batches, req.Quantity.Mul(quantity), today).Complete {
			return false, nil
		}
	}

	return true, nil
}

// ======================================================
// RETURN
// ======================================================

// ReturnStock devolve o que foi consumido sob reference, lido do razão de
// movimentações. O razão manda: sem movimentação de consumo não há o que
// devolver, mesmo que a receita atual do serviço peça insumos.
func (e *Engine) ReturnStock(
	ctx context.Context,
	st Store,
	svc *models.Service,
	quantity decimal.Decimal,
	reference string,
) error {
	if !quantity.IsPositive() {
		return httperr.Validation("invalid_quantity", "La cantidad debe ser positiva.")
	}

	moves, err := st.ListMovementsByReference(ctx, reference)
	if err != nil {
		return err
	}

	counter, supplies := netConsumed(moves)

	if counter.IsPositive() {
		if err := e.returnCounter(ctx, st, svc.ID, counter, reference); err != nil {
			return err
		}
	}

	ids := make([]uuid.UUID, 0, len(supplies))
	for id, q := range supplies {
		if q.IsPositive() {
			ids = append(ids, id)
		}
	}
	sortIDs(ids)

	for _, id := range ids {
		if err := e.returnSupply(ctx, st, svc.ID, id, supplies[id], reference); err != nil {
			return err
		}
	}

	return nil
}

func (e *Engine) returnCounter(ctx context.Context, st Store, serviceID uuid.UUID, qty decimal.Decimal, reference string) error {
	locked, err := st.LockServiceStock(ctx, serviceID)
	if err != nil {
		return err
	}
	before := decimal.Zero
	if locked.Stock != nil {
		before = *locked.Stock
	}
	after := before.Add(qty)
	if err := st.UpdateServiceStock(ctx, serviceID, after); err != nil {
		return err
	}
	return st.CreateMovement(ctx, &models.StockMovement{
		ServiceID:   &serviceID,
		Kind:        models.MovementReturn,
		Quantity:    qty,
		StockBefore: before,
		StockAfter:  after,
		Reference:   reference,
	})
}

// returnSupply devolve ao lote vigente de validade mais longa que ainda
// comporta a quantidade. Sem lote assim, abre um lote RET- atribuível.
func (e *Engine) returnSupply(
	ctx context.Context,
	st Store,
	serviceID uuid.UUID,
	supplyItemID uuid.UUID,
	qty decimal.Decimal,
	reference string,
) error {
	item, err := st.LockSupplyItem(ctx, supplyItemID)
	if err != nil {
		return err
	}

	batches, err := st.ListBatches(ctx, item.ID)
	if err != nil {
		return err
	}

	today := e.today()
	var target *models.Batch
	var latest *models.Batch
	for i := range batches {
		b := &batches[i]
		if Expired(*b, today) {
			continue
		}
		if latest == nil || dateKey(b.ExpiresAt) > dateKey(latest.ExpiresAt) {
			latest = b
		}
		if b.RemainingQty.Add(qty).GreaterThan(b.InitialQty) {
			continue
		}
		if target == nil || dateKey(b.ExpiresAt) > dateKey(target.ExpiresAt) {
			target = b
		}
	}

	var batchID uuid.UUID
	if target != nil {
		if err := st.UpdateBatchRemaining(ctx, target.ID, target.RemainingQty.Add(qty)); err != nil {
			return err
		}
		batchID = target.ID
	} else {
		expires := today.Add(e.shelfLife)
		if latest != nil {
			expires = latest.ExpiresAt
		}
		y, m, d := expires.Date()
		ret := &models.Batch{
			ID:           uuid.New(),
			SupplyItemID: item.ID,
			LotCode:      fmt.Sprintf("%s%s-%s", returnLotPrefix, today.Format("20060102"), uuid.NewString()[:8]),
			ExpiresAt:    time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
			InitialQty:   qty,
			RemainingQty: qty,
		}
		if err := st.CreateBatch(ctx, ret); err != nil {
			return err
		}
		batchID = ret.ID
	}

	before := item.CurrentStock
	item.CurrentStock = before.Add(qty)

	itemID := item.ID
	if err := st.CreateMovement(ctx, &models.StockMovement{
		ServiceID:    &serviceID,
		SupplyItemID: &itemID,
		BatchID:      &batchID,
		Kind:         models.MovementReturn,
		Quantity:     qty,
		StockBefore:  before,
		StockAfter:   item.CurrentStock,
		Reference:    reference,
	}); err != nil {
		return err
	}

	return st.SaveSupplyItem(ctx, item)
}

// ======================================================
// INTAKE
// ======================================================

type ReceiveBatchInput struct {
	SupplyItemID uuid.UUID
	LotCode      string
	ExpiresAt    time.Time
	Quantity     decimal.Decimal
	Reference    string
}

// ReceiveBatch registra um lote novo e soma ao estoque do insumo sob lock.
func (e *Engine) ReceiveBatch(ctx context.Context, st Store, in ReceiveBatchInput) (*models.Batch, error) {
	if !in.Quantity.IsPositive() {
		return nil, httperr.Validation("invalid_quantity", "La cantidad debe ser positiva.")
	}
	if in.LotCode == "" {
		return nil, httperr.Validation("invalid_request", "El código de lote es obligatorio.")
	}
	if Expired(models.Batch{ExpiresAt: in.ExpiresAt}, e.today()) {
		return nil, httperr.Validation("batch_expired", "El lote ya está vencido.")
	}

	item, err := st.LockSupplyItem(ctx, in.SupplyItemID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, httperr.NotFound("supply_item_not_found", "Insumo no encontrado.").
				With("supply_item_id", in.SupplyItemID.String())
		}
		return nil, err
	}

	b := &models.Batch{
		ID:           uuid.New(),
		SupplyItemID: item.ID,
		LotCode:      in.LotCode,
		ExpiresAt:    in.ExpiresAt,
		InitialQty:   in.Quantity,
		RemainingQty: in.Quantity,
	}
	if err := st.CreateBatch(ctx, b); err != nil {
		return nil, err
	}

	before := item.CurrentStock
	item.CurrentStock = before.Add(in.Quantity)

	itemID, batchID := item.ID, b.ID
	if err := st.CreateMovement(ctx, &models.StockMovement{
		SupplyItemID: &itemID,
		BatchID:      &batchID,
		Kind:         models.MovementIntake,
		Quantity:     in.Quantity,
		StockBefore:  before,
		StockAfter:   item.CurrentStock,
		Reference:    in.Reference,
	}); err != nil {
		return nil, err
	}

	if err := st.SaveSupplyItem(ctx, item); err != nil {
		return nil, err
	}
	return b, nil
}

// ======================================================
// HELPERS
// ======================================================

// netConsumed soma consumo menos devolução já feita, por contador e por insumo.
func netConsumed(moves []models.StockMovement) (decimal.Decimal, map[uuid.UUID]decimal.Decimal) {
	counter := decimal.Zero
	supplies := make(map[uuid.UUID]decimal.Decimal)

	for _, m := range moves {
		var sign decimal.Decimal
		switch m.Kind {
		case models.MovementConsume:
			sign = m.Quantity
		case models.MovementReturn:
			sign = m.Quantity.Neg()
		default:
			continue
		}

		if m.SupplyItemID == nil {
			counter = counter.Add(sign)
			continue
		}
		supplies[*m.SupplyItemID] = supplies[*m.SupplyItemID].Add(sign)
	}

	return counter, supplies
}

func sortedRequirements(in []models.ServiceSupplyRequirement) []models.ServiceSupplyRequirement {
	out := make([]models.ServiceSupplyRequirement, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		return bytes.Compare(out[i].SupplyItemID[:], out[j].SupplyItemID[:]) < 0
	})
	return out
}

func keys(set map[uuid.UUID]struct{}) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sortIDs(ids)
	return ids
}

func sortIDs(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool { return bytes.Compare(ids[i][:], ids[j][:]) < 0 })
}
