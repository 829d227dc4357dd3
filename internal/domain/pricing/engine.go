package pricing

import (
	"bytes"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

// CartLine é uma linha do carrinho já com o preço base resolvido.
type CartLine struct {
	ServiceID uuid.UUID
	BasePrice decimal.Decimal
	Notes     []string
}

// Quote é o resultado de preço de uma linha.
type Quote struct {
	ServiceID       uuid.UUID       `json:"service_id"`
	OriginalPrice   decimal.Decimal `json:"original_price"`
	FinalPrice      decimal.Decimal `json:"final_price"`
	DiscountApplied bool            `json:"discount_applied"`
	Notes           []string        `json:"notes"`
}

type Engine struct {
	scale int32
}

// NewEngine recebe a escala da moeda (0 para CLP).
func NewEngine(scale int32) *Engine {
	return &Engine{scale: scale}
}

// PriceLineItem cota um único item isolado, como um carrinho de uma linha.
func (e *Engine) PriceLineItem(
	svc *models.Service,
	pet *models.Pet,
	promotions []models.Promotion,
	bookingDate time.Time,
) Quote {
	base, note := ResolveBasePrice(svc, pet)
	line := CartLine{ServiceID: svc.ID, BasePrice: base}
	if note != "" {
		line.Notes = []string{note}
	}
	return e.CalculateDiscounts([]CartLine{line}, promotions, bookingDate)[0]
}

// CalculateDiscounts aplica as promoções sobre o carrinho inteiro. O
// resultado tem uma cotação por linha, na mesma ordem da entrada.
//
// Promoções são aplicadas em ordem de id; FIXED_PRICE posterior sobrescreve,
// AMOUNT_OFF e PERCENT_OFF acumulam sobre o preço corrente.
func (e *Engine) CalculateDiscounts(
	lines []CartLine,
	promotions []models.Promotion,
	bookingDate time.Time,
) []Quote {
	quotes := make([]Quote, len(lines))
	inCart := make(map[uuid.UUID]bool, len(lines))

	for i, l := range lines {
		notes := append([]string(nil), l.Notes...)
		quotes[i] = Quote{
			ServiceID:     l.ServiceID,
			OriginalPrice: clamp(l.BasePrice),
			FinalPrice:    clamp(l.BasePrice),
			Notes:         notes,
		}
		inCart[l.ServiceID] = true
	}

	for _, p := range orderedPromotions(promotions) {
		if !Applies(p, bookingDate, inCart) {
			continue
		}

		for _, b := range p.Benefits {
			if !inCart[b.ServiceID] {
				continue
			}
			d, err := ParseDiscount(b.Kind, b.Value)
			if err != nil {
				continue
			}

			for i := range quotes {
				if quotes[i].ServiceID != b.ServiceID {
					continue
				}
				quotes[i].FinalPrice = Apply(d, quotes[i].FinalPrice, e.scale)
				quotes[i].DiscountApplied = true
				quotes[i].Notes = append(quotes[i].Notes, "Promo: "+p.Name)
			}
		}
	}

	for i := range quotes {
		if quotes[i].Notes == nil {
			quotes[i].Notes = []string{}
		}
	}

	return quotes
}

// Applies decide se a promoção vale para a data e o carrinho: ativa, dentro
// da vigência, num dia permitido e com todos os serviços gatilho presentes.
func Applies(p models.Promotion, bookingDate time.Time, inCart map[uuid.UUID]bool) bool {
	if !p.Active {
		return false
	}

	day := dateKey(bookingDate)
	if day < dateKey(p.StartDate) || day > dateKey(p.EndDate) {
		return false
	}

	if days := p.WeekdaySet(); len(days) > 0 {
		allowed := false
		for _, wd := range days {
			if wd == bookingDate.Weekday() {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}

	for _, t := range p.Triggers {
		if !inCart[t.ServiceID] {
			return false
		}
	}

	return true
}

func orderedPromotions(in []models.Promotion) []models.Promotion {
	out := make([]models.Promotion, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) < 0
	})
	return out
}

// dateKey compara datas de calendário sem depender do fuso: cada instante
// é lido na sua própria location.
func dateKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}
