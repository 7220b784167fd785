package dto

import "github.com/shopspring/decimal"

// Monto is a money amount that always renders with two decimals ("60.00").
// Decoding accepts any decimal form.
type Monto struct {
	decimal.Decimal
}

func NewMonto(d decimal.Decimal) Monto { return Monto{Decimal: d} }

// NewMontoPtr keeps nil as nil.
func NewMontoPtr(d *decimal.Decimal) *Monto {
	if d == nil {
		return nil
	}
	m := NewMonto(*d)
	return &m
}

func (m Monto) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.StringFixed(2) + `"`), nil
}
