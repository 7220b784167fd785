package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Estados de un vale.
const (
	ValeActivo    = "activo"
	ValeUsado     = "usado"
	ValeVencido   = "vencido"
	ValeCancelado = "cancelado"
)

// Vale is a credit note: money owed by a client, independent of any single order.
// MontoRestante is never trusted from input; NormalizarVale derives it on every write.
type Vale struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ClienteID        *uuid.UUID      `gorm:"type:uuid;index:idx_vales_cliente_estado,priority:1"`
	Monto            decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MontoUsado       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	MontoRestante    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Estado           string          `gorm:"type:varchar(20);not null;default:'activo';index:idx_vales_cliente_estado,priority:2"`
	FechaVencimiento *time.Time      `gorm:"index"`
	Descripcion      *string
	// Version backs the compare-and-swap update in ValeRepository.UpdateTx.
	Version   int `gorm:"not null;default:1"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (v *Vale) BeforeCreate(*gorm.DB) error {
	asignarID(&v.ID)
	return nil
}

// NormalizarVale recomputes MontoRestante = Monto - MontoUsado and the status
// that follows from it. A vale with nothing left is always "usado"; a vale
// with balance left cannot be "usado" and falls back to "activo".
// Vencido and cancelado are kept while balance remains.
func NormalizarVale(v *Vale) {
	v.MontoRestante = v.Monto.Sub(v.MontoUsado)
	if !v.MontoRestante.IsPositive() {
		v.Estado = ValeUsado
		return
	}
	if v.Estado == ValeUsado || v.Estado == "" {
		v.Estado = ValeActivo
	}
}
