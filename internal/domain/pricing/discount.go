package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	KindFixedPrice = "FIXED_PRICE"
	KindAmountOff  = "AMOUNT_OFF"
	KindPercentOff = "PERCENT_OFF"
)

// Discount é fechado: só os tipos deste pacote o implementam.
type Discount interface {
	Kind() string
	sealed()
}

// FixedPrice substitui o preço pelo valor.
type FixedPrice struct{ Value decimal.Decimal }

// AmountOff subtrai um valor fixo.
type AmountOff struct{ Value decimal.Decimal }

// PercentOff subtrai um percentual do preço corrente.
type PercentOff struct{ Percent decimal.Decimal }

func (FixedPrice) Kind() string { return KindFixedPrice }
func (AmountOff) Kind() string  { return KindAmountOff }
func (PercentOff) Kind() string { return KindPercentOff }

func (FixedPrice) sealed() {}
func (AmountOff) sealed()  {}
func (PercentOff) sealed() {}

// ParseDiscount converte a linha persistida (kind, value) no tipo de desconto.
func ParseDiscount(kind string, value decimal.Decimal) (Discount, error) {
	if value.IsNegative() {
		return nil, fmt.Errorf("pricing: negative discount value %s", value)
	}
	switch strings.ToUpper(strings.TrimSpace(kind)) {
	case KindFixedPrice:
		return FixedPrice{Value: value}, nil
	case KindAmountOff:
		return AmountOff{Value: value}, nil
	case KindPercentOff:
		return PercentOff{Percent: value}, nil
	default:
		return nil, fmt.Errorf("pricing: unknown discount kind %q", kind)
	}
}

// Apply aplica o desconto ao preço corrente. O resultado nunca é negativo.
// Percentuais truncam o valor descontado na escala da moeda.
func Apply(d Discount, price decimal.Decimal, scale int32) decimal.Decimal {
	var out decimal.Decimal

	switch v := d.(type) {
	case FixedPrice:
		out = v.Value
	case AmountOff:
		out = price.Sub(v.Value)
	case PercentOff:
		off := price.Mul(v.Percent).Div(decimal.NewFromInt(100)).Truncate(scale)
		out = price.Sub(off)
	default:
		panic(fmt.Sprintf("pricing: unhandled discount %T", d))
	}

	return clamp(out)
}

func clamp(p decimal.Decimal) decimal.Decimal {
	if p.IsNegative() {
		return decimal.Zero
	}
	return p
}
