package pricing

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

// ResolveBasePrice devolve o preço antes das promoções.
//
// Serviços por peso consultam as faixas em ordem de cadastro (Position) e a
// primeira faixa [min, max] que contém o peso vence. Sem peso conhecido ou
// sem faixa compatível, vale o preço base.
func ResolveBasePrice(svc *models.Service, pet *models.Pet) (decimal.Decimal, string) {
	if !svc.WeightDependent || pet == nil || pet.WeightKg == nil {
		return svc.BasePrice, ""
	}

	rules := make([]models.WeightPriceRule, len(svc.WeightPriceRules))
	copy(rules, svc.WeightPriceRules)
	sort.SliceStable(rules, func(i, j int) bool { return rules[i].Position < rules[j].Position })

	w := *pet.WeightKg
	for _, r := range rules {
		if w.GreaterThanOrEqual(r.MinWeight) && w.LessThanOrEqual(r.MaxWeight) {
			return r.Price, fmt.Sprintf("Precio por peso (%s-%s kg)", r.MinWeight, r.MaxWeight)
		}
	}

	return svc.BasePrice, ""
}
