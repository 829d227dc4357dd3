// Package uow define a unidade de trabalho: tudo que uma operação de
// negócio lê e grava passa por um Tx, confirmado ou desfeito de uma vez.
package uow

import (
	"context"

	"github.com/BruksfildServices01/vet-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/vet-scheduler/internal/domain/calendar"
	"github.com/BruksfildServices01/vet-scheduler/internal/domain/catalog"
	"github.com/BruksfildServices01/vet-scheduler/internal/domain/inventory"
)

type Tx interface {
	appointment.Repository
	calendar.Repository
	catalog.Repository
	inventory.Store
}

// Runner executa fn numa transação. Erro de fn (ou panic) desfaz tudo.
type Runner interface {
	Do(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
