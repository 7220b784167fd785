package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Modalidades de pago por defecto.
const (
	ModalidadContraentrega = "contraentrega"
	ModalidadVale          = "vale"
	ModalidadSuscripcion   = "suscripcion"
)

// PreferenciaCliente is the default payment modality of a client.
// At most one active row per Documento; replacing deactivates the previous row.
type PreferenciaCliente struct {
	ID                   uuid.UUID        `gorm:"type:uuid;primaryKey"`
	ClienteID            uuid.UUID        `gorm:"type:uuid;not null;index"`
	Documento            string           `gorm:"type:varchar(20);not null;index"`
	Modalidad            string           `gorm:"type:varchar(20);not null"`
	TipoSuscripcion      *string          `gorm:"type:varchar(20)"`
	MontoSuscripcion     *decimal.Decimal `gorm:"type:decimal(12,2)"`
	CantidadSuscripcion  *int
	BonificacionCantidad int `gorm:"not null;default:0"`
	ValidoHasta          *time.Time
	Activo               bool `gorm:"not null;default:true"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (PreferenciaCliente) TableName() string { return "preferencias_cliente" }

func (p *PreferenciaCliente) BeforeCreate(*gorm.DB) error {
	asignarID(&p.ID)
	return nil
}
