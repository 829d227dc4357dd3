// Package memory é um store transacional em memória com as mesmas garantias
// que o gorm store oferece sobre PostgreSQL: gravações ficam em rascunho até
// o commit, locks de linha valem até o fim da transação e gravações com
// versão falham se outra transação chegou antes.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/vet-scheduler/internal/domain/uow"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

type Store struct {
	mu   sync.Mutex
	data dataset

	locksMu sync.Mutex
	locks   map[string]chan struct{}
}

type dataset struct {
	services     map[uuid.UUID]models.Service
	pets         map[uuid.UUID]models.Pet
	promotions   map[uuid.UUID]models.Promotion
	supplies     map[uuid.UUID]models.SupplyItem
	batches      map[uuid.UUID]models.Batch
	movements    []models.StockMovement
	appointments map[uuid.UUID]models.Appointment
	blocks       map[uuid.UUID]models.ScheduleBlock
	auditLogs    []models.AuditLog
}

func New() *Store {
	return &Store{
		data: dataset{
			services:     make(map[uuid.UUID]models.Service),
			pets:         make(map[uuid.UUID]models.Pet),
			promotions:   make(map[uuid.UUID]models.Promotion),
			supplies:     make(map[uuid.UUID]models.SupplyItem),
			batches:      make(map[uuid.UUID]models.Batch),
			appointments: make(map[uuid.UUID]models.Appointment),
			blocks:       make(map[uuid.UUID]models.ScheduleBlock),
		},
		locks: make(map[string]chan struct{}),
	}
}

var _ uow.Runner = (*Store)(nil)

// Do roda fn numa transação. Qualquer erro (ou panic) descarta o rascunho.
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context, tx uow.Tx) error) error {
	t := newTx(s)
	defer t.release()

	if err := fn(ctx, t); err != nil {
		return err
	}
	return t.commit()
}

// lockChan devolve o semáforo da chave, criando na primeira vez.
func (s *Store) lockChan(key string) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	ch, ok := s.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[key] = ch
	}
	return ch
}
