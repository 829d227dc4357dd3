package pricing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// 2026-10-19 é segunda-feira.
var bookingDate = time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

func promo(name string, benefits ...models.PromotionBenefit) models.Promotion {
	return models.Promotion{
		ID:        uuid.New(),
		Name:      name,
		StartDate: day(2026, 10, 1),
		EndDate:   day(2026, 10, 31),
		Active:    true,
		Benefits:  benefits,
	}
}

func TestApplyDiscountKinds(t *testing.T) {
	tests := []struct {
		name  string
		d     Discount
		price string
		scale int32
		want  string
	}{
		{"fixed", FixedPrice{Value: dec("5000")}, "12000", 0, "5000"},
		{"amount", AmountOff{Value: dec("2500")}, "12000", 0, "9500"},
		{"amount below zero clamps", AmountOff{Value: dec("20000")}, "12000", 0, "0"},
		{"percent", PercentOff{Percent: dec("10")}, "12000", 0, "10800"},
		{"percent truncates discount", PercentOff{Percent: dec("15")}, "9999", 0, "8500"},
		{"percent with cents", PercentOff{Percent: dec("15")}, "99.99", 2, "85"},
		{"percent over 100 clamps", PercentOff{Percent: dec("150")}, "1000", 0, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(tt.d, dec(tt.price), tt.scale)
			assert.True(t, dec(tt.want).Equal(got), "want %s got %s", tt.want, got)
		})
	}
}

func TestParseDiscount(t *testing.T) {
	d, err := ParseDiscount("percent_off", dec("10"))
	require.NoError(t, err)
	assert.Equal(t, PercentOff{Percent: dec("10")}, d)

	_, err = ParseDiscount("BOGO", dec("1"))
	assert.Error(t, err)

	_, err = ParseDiscount(KindAmountOff, dec("-1"))
	assert.Error(t, err)
}

func TestResolveBasePriceWeightRules(t *testing.T) {
	svc := &models.Service{
		ID:              uuid.New(),
		BasePrice:       dec("20000"),
		WeightDependent: true,
		WeightPriceRules: []models.WeightPriceRule{
			{MinWeight: dec("10"), MaxWeight: dec("30"), Price: dec("25000"), Position: 2},
			{MinWeight: dec("0"), MaxWeight: dec("10"), Price: dec("15000"), Position: 1},
			{MinWeight: dec("5"), MaxWeight: dec("20"), Price: dec("99999"), Position: 3},
		},
	}
	weight := func(s string) *models.Pet {
		w := dec(s)
		return &models.Pet{WeightKg: &w}
	}

	tests := []struct {
		name string
		pet  *models.Pet
		want string
	}{
		{"inclusive lower bound", weight("0"), "15000"},
		{"shared boundary goes to first position", weight("10"), "15000"},
		{"overlap resolved by position", weight("12"), "25000"},
		{"inclusive upper bound", weight("30"), "25000"},
		{"no match falls back", weight("45"), "20000"},
		{"unknown weight falls back", &models.Pet{}, "20000"},
		{"no pet falls back", nil, "20000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, _ := ResolveBasePrice(svc, tt.pet)
			second, _ := ResolveBasePrice(svc, tt.pet)
			assert.True(t, dec(tt.want).Equal(first), "want %s got %s", tt.want, first)
			assert.True(t, first.Equal(second))
		})
	}
}

func TestResolveBasePriceFlatIgnoresRules(t *testing.T) {
	w := dec("3")
	svc := &models.Service{
		BasePrice:        dec("8000"),
		WeightPriceRules: []models.WeightPriceRule{{MinWeight: dec("0"), MaxWeight: dec("10"), Price: dec("1")}},
	}
	got, note := ResolveBasePrice(svc, &models.Pet{WeightKg: &w})
	assert.True(t, dec("8000").Equal(got))
	assert.Empty(t, note)
}

func TestCalculateDiscountsTriggerGating(t *testing.T) {
	consult := uuid.New()
	vaccine := uuid.New()
	test := uuid.New()

	p := promo("Pack vacuna", models.PromotionBenefit{ServiceID: vaccine, Kind: KindPercentOff, Value: dec("50")})
	p.Triggers = []models.PromotionTrigger{{ServiceID: consult}, {ServiceID: test}}

	e := NewEngine(0)

	// falta um gatilho: nenhum benefício
	quotes := e.CalculateDiscounts([]CartLine{
		{ServiceID: consult, BasePrice: dec("15000")},
		{ServiceID: vaccine, BasePrice: dec("10000")},
	}, []models.Promotion{p}, bookingDate)

	for _, q := range quotes {
		assert.False(t, q.DiscountApplied)
		assert.True(t, q.OriginalPrice.Equal(q.FinalPrice))
	}

	// todos os gatilhos presentes
	quotes = e.CalculateDiscounts([]CartLine{
		{ServiceID: consult, BasePrice: dec("15000")},
		{ServiceID: test, BasePrice: dec("9000")},
		{ServiceID: vaccine, BasePrice: dec("10000")},
	}, []models.Promotion{p}, bookingDate)

	require.Len(t, quotes, 3)
	assert.True(t, dec("5000").Equal(quotes[2].FinalPrice))
	assert.True(t, quotes[2].DiscountApplied)
	assert.Equal(t, []string{"Promo: Pack vacuna"}, quotes[2].Notes)
	assert.False(t, quotes[0].DiscountApplied)
}

func TestCalculateDiscountsValidity(t *testing.T) {
	svc := uuid.New()
	benefit := models.PromotionBenefit{ServiceID: svc, Kind: KindAmountOff, Value: dec("1000")}
	cart := []CartLine{{ServiceID: svc, BasePrice: dec("5000")}}
	e := NewEngine(0)

	inactive := promo("off", benefit)
	inactive.Active = false

	expired := promo("old", benefit)
	expired.StartDate = day(2026, 9, 1)
	expired.EndDate = day(2026, 9, 30)

	wrongDay := promo("weekend", benefit)
	wrongDay.Weekdays = "0,6"

	lastDay := promo("last day", benefit)
	lastDay.EndDate = day(2026, 10, 19)

	monday := promo("monday", benefit)
	monday.Weekdays = "1"

	for _, p := range []models.Promotion{inactive, expired, wrongDay} {
		q := e.CalculateDiscounts(cart, []models.Promotion{p}, bookingDate)[0]
		assert.False(t, q.DiscountApplied, p.Name)
	}
	for _, p := range []models.Promotion{lastDay, monday} {
		q := e.CalculateDiscounts(cart, []models.Promotion{p}, bookingDate)[0]
		assert.True(t, q.DiscountApplied, p.Name)
		assert.True(t, dec("4000").Equal(q.FinalPrice), p.Name)
	}
}

func TestCalculateDiscountsDeterministicOrder(t *testing.T) {
	svc := uuid.New()
	cart := []CartLine{{ServiceID: svc, BasePrice: dec("10000")}}

	a := promo("A", models.PromotionBenefit{ServiceID: svc, Kind: KindFixedPrice, Value: dec("8000")})
	b := promo("B", models.PromotionBenefit{ServiceID: svc, Kind: KindPercentOff, Value: dec("10")})
	a.ID = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	b.ID = uuid.MustParse("00000000-0000-0000-0000-000000000002")

	e := NewEngine(0)
	forward := e.CalculateDiscounts(cart, []models.Promotion{a, b}, bookingDate)[0]
	reverse := e.CalculateDiscounts(cart, []models.Promotion{b, a}, bookingDate)[0]

	// A (fixo 8000) depois B (-10%) = 7200, qualquer que seja a ordem de entrada
	assert.True(t, dec("7200").Equal(forward.FinalPrice))
	assert.True(t, forward.FinalPrice.Equal(reverse.FinalPrice))
	assert.Equal(t, []string{"Promo: A", "Promo: B"}, reverse.Notes)
}

func TestCalculateDiscountsStackingNeverNegative(t *testing.T) {
	svc := uuid.New()
	cart := []CartLine{
		{ServiceID: svc, BasePrice: dec("3000")},
		{ServiceID: svc, BasePrice: dec("3000")},
	}
	var promos []models.Promotion
	for i := 0; i < 5; i++ {
		promos = append(promos, promo("stack", models.PromotionBenefit{ServiceID: svc, Kind: KindAmountOff, Value: dec("1000")}))
	}

	for _, q := range NewEngine(0).CalculateDiscounts(cart, promos, bookingDate) {
		assert.False(t, q.FinalPrice.IsNegative())
		assert.True(t, q.FinalPrice.IsZero())
		assert.Len(t, q.Notes, 5)
	}
}

func TestPriceLineItemCombinesWeightAndPromo(t *testing.T) {
	w := dec("8")
	svc := &models.Service{
		ID:              uuid.New(),
		BasePrice:       dec("20000"),
		WeightDependent: true,
		WeightPriceRules: []models.WeightPriceRule{
			{MinWeight: dec("0"), MaxWeight: dec("10"), Price: dec("15000")},
		},
	}
	p := promo("Octubre", models.PromotionBenefit{ServiceID: svc.ID, Kind: KindPercentOff, Value: dec("20")})

	q := NewEngine(0).PriceLineItem(svc, &models.Pet{WeightKg: &w}, []models.Promotion{p}, bookingDate)

	assert.True(t, dec("15000").Equal(q.OriginalPrice))
	assert.True(t, dec("12000").Equal(q.FinalPrice))
	assert.True(t, q.DiscountApplied)
	require.Len(t, q.Notes, 2)
	assert.Equal(t, "Promo: Octubre", q.Notes[1])
}
