package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/vet-scheduler/internal/domain"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

// tx guarda só o que foi gravado; leituras caem no estado confirmado quando
// a transação ainda não tocou a linha.
type tx struct {
	s    *Store
	held map[string]bool

	supplies     map[uuid.UUID]versioned[models.SupplyItem]
	appointments map[uuid.UUID]versioned[models.Appointment]
	batches      map[uuid.UUID]models.Batch
	serviceStock map[uuid.UUID]decimal.Decimal
	prereqs      map[uuid.UUID][]models.ServicePrerequisite
	blocks       map[uuid.UUID]*models.ScheduleBlock
	movements    []models.StockMovement
}

// versioned lembra a versão confirmada que a transação leu antes de gravar.
type versioned[T any] struct {
	row  T
	base int
	new  bool
}

func newTx(s *Store) *tx {
	return &tx{
		s:            s,
		held:         make(map[string]bool),
		supplies:     make(map[uuid.UUID]versioned[models.SupplyItem]),
		appointments: make(map[uuid.UUID]versioned[models.Appointment]),
		batches:      make(map[uuid.UUID]models.Batch),
		serviceStock: make(map[uuid.UUID]decimal.Decimal),
		prereqs:      make(map[uuid.UUID][]models.ServicePrerequisite),
		blocks:       make(map[uuid.UUID]*models.ScheduleBlock),
	}
}

// lock é reentrante dentro da mesma transação e respeita ctx na espera.
func (t *tx) lock(ctx context.Context, key string) error {
	if t.held[key] {
		return nil
	}
	select {
	case t.s.lockChan(key) <- struct{}{}:
		t.held[key] = true
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *tx) release() {
	for key := range t.held {
		<-t.s.lockChan(key)
	}
	t.held = nil
}

func (t *tx) commit() error {
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, w := range t.supplies {
		if cur, ok := s.data.supplies[id]; ok && cur.Version != w.base {
			return domain.ConcurrentModification("supply_item")
		}
	}
	for id, w := range t.appointments {
		cur, ok := s.data.appointments[id]
		if w.new && ok {
			return domain.ConcurrentModification("appointment")
		}
		if !w.new && ok && cur.Version != w.base {
			return domain.ConcurrentModification("appointment")
		}
	}

	for id, w := range t.supplies {
		s.data.supplies[id] = w.row
	}
	for id, w := range t.appointments {
		s.data.appointments[id] = cloneAppointment(w.row)
	}
	for id, b := range t.batches {
		s.data.batches[id] = b
	}
	for id, stock := range t.serviceStock {
		svc := s.data.services[id]
		v := stock
		svc.Stock = &v
		s.data.services[id] = svc
	}
	for id, edges := range t.prereqs {
		svc := s.data.services[id]
		svc.Prerequisites = append([]models.ServicePrerequisite(nil), edges...)
		s.data.services[id] = svc
	}
	for id, b := range t.blocks {
		if b == nil {
			delete(s.data.blocks, id)
			continue
		}
		s.data.blocks[id] = *b
	}
	s.data.movements = append(s.data.movements, t.movements...)

	return nil
}
