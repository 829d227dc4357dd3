package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/vet-scheduler/internal/domain"
	"github.com/BruksfildServices01/vet-scheduler/internal/domain/uow"
	"github.com/BruksfildServices01/vet-scheduler/internal/httperr"
)

// GormStore é o store PostgreSQL. Cada Do abre uma transação do banco; os
// locks de linha (FOR UPDATE) e o advisory lock da agenda duram até ela acabar.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

var _ uow.Runner = (*GormStore)(nil)

// Deadlock e falha de serialização voltam como concurrent_modification, que o
// cliente pode repetir.
func (s *GormStore) Do(ctx context.Context, fn func(ctx context.Context, tx uow.Tx) error) error {
	err := s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(ctx, &gormTx{db: db})
	})
	if httperr.IsRetryable(err) {
		return domain.ConcurrentModification("transaction")
	}
	return err
}

type gormTx struct {
	db *gorm.DB
}

func (t *gormTx) conn(ctx context.Context) *gorm.DB {
	return t.db.WithContext(ctx)
}

// notFound traduz o erro do gorm para o sentinela do domínio.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}
