package inventory

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

// Draw é quanto sai de um lote.
type Draw struct {
	BatchID  uuid.UUID
	Quantity decimal.Decimal
	// Remaining é o saldo do lote depois da retirada.
	Remaining decimal.Decimal
}

// Plan é o resultado de um percurso FEFO.
type Plan struct {
	Draws     []Draw
	Satisfied decimal.Decimal
	Complete  bool
}

// Expired compara só datas: um lote que vence hoje ainda pode ser usado.
func Expired(b models.Batch, today time.Time) bool {
	return dateKey(b.ExpiresAt) < dateKey(today)
}

// Eligible devolve os lotes não vencidos com saldo, do que vence primeiro
// ao que vence por último.
func Eligible(batches []models.Batch, today time.Time) []models.Batch {
	out := make([]models.Batch, 0, len(batches))
	for _, b := range batches {
		if Expired(b, today) || !b.RemainingQty.IsPositive() {
			continue
		}
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool {
		ki, kj := dateKey(out[i].ExpiresAt), dateKey(out[j].ExpiresAt)
		if ki != kj {
			return ki < kj
		}
		return out[i].LotCode < out[j].LotCode
	})
	return out
}

// PlanFEFO percorre os lotes elegíveis esgotando cada um antes de tocar o
// próximo, até atingir need ou acabar o estoque. Não altera a entrada.
func PlanFEFO(batches []models.Batch, need decimal.Decimal, today time.Time) Plan {
	plan := Plan{Satisfied: decimal.Zero}
	left := need

	for _, b := range Eligible(batches, today) {
		if !left.IsPositive() {
			break
		}
		take := decimal.Min(b.RemainingQty, left)
		plan.Draws = append(plan.Draws, Draw{
			BatchID:   b.ID,
			Quantity:  take,
			Remaining: b.RemainingQty.Sub(take),
		})
		plan.Satisfied = plan.Satisfied.Add(take)
		left = left.Sub(take)
	}

	plan.Complete = !left.IsPositive()
	return plan
}

// Available soma o saldo dos lotes não vencidos.
func Available(batches []models.Batch, today time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, b := range Eligible(batches, today) {
		total = total.Add(b.RemainingQty)
	}
	return total
}

func dateKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}
