package service

import (
	"aguaya/internal/model"

	"github.com/shopspring/decimal"
)

type umbralBonificacion struct {
	monto    decimal.Decimal
	cantidad int
	bono     int
}

var umbrales = map[string]umbralBonificacion{
	model.TipoBasico:  {monto: decimal.NewFromInt(150), cantidad: 30, bono: 1},
	model.TipoPremium: {monto: decimal.NewFromInt(250), cantidad: 50, bono: 2},
	model.TipoVIP:     {monto: decimal.NewFromInt(500), cantidad: 100, bono: 5},
}

// CalcularBonificacion returns the bonus bottles earned by a subscription.
// Amount and quantity must both reach the tier threshold; unknown tiers earn nothing.
func CalcularBonificacion(tipo string, monto decimal.Decimal, cantidad int) int {
	u, ok := umbrales[tipo]
	if !ok {
		return 0
	}
	if monto.GreaterThanOrEqual(u.monto) && cantidad >= u.cantidad {
		return u.bono
	}
	return 0
}

func decimalInt(n int) decimal.Decimal { return decimal.NewFromInt(int64(n)) }
