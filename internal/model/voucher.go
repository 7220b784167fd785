package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Estados de un voucher. The only legal path is pendiente → entregado → pagado.
const (
	VoucherPendiente = "pendiente"
	VoucherEntregado = "entregado"
	VoucherPagado    = "pagado"
)

// Voucher records delivered product units awaiting payment.
// Total = Cantidad × PrecioUnitario, computed at creation.
type Voucher struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ClienteID        uuid.UUID       `gorm:"type:uuid;not null;index:idx_vouchers_cliente_estado,priority:1"`
	RepartidorID     *uuid.UUID      `gorm:"type:uuid;index"`
	PedidoID         *string         `gorm:"type:varchar(64)"`
	PedidoInvitadoID *string         `gorm:"type:varchar(64)"`
	ProductoID       string          `gorm:"type:varchar(64);not null"`
	Cantidad         int             `gorm:"not null"`
	PrecioUnitario   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Total            decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Estado           string          `gorm:"type:varchar(20);not null;default:'pendiente';index:idx_vouchers_cliente_estado,priority:2"`
	EntregadoAt      *time.Time
	PagadoAt         *time.Time `gorm:"index"`
	MetodoPago       *string    `gorm:"type:varchar(30)"`
	ReferenciaPago   *string    `gorm:"type:varchar(100)"`
	Version          int        `gorm:"not null;default:1"`
	CreatedAt        time.Time  `gorm:"index"`
	UpdatedAt        time.Time
}

func (v *Voucher) BeforeCreate(*gorm.DB) error {
	asignarID(&v.ID)
	return nil
}

// SiguienteEstadoVoucher returns the only state reachable from estado.
func SiguienteEstadoVoucher(estado string) (string, bool) {
	switch estado {
	case VoucherPendiente:
		return VoucherEntregado, true
	case VoucherEntregado:
		return VoucherPagado, true
	default:
		return "", false
	}
}
