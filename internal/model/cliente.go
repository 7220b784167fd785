package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Cliente is referenced by vales, vouchers, preferences and subscriptions.
// Clients are never deleted; Activo=false disables them.
type Cliente struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Documento    string    `gorm:"type:varchar(20);uniqueIndex;not null"`
	Nombre       string    `gorm:"not null"`
	Telefono     *string   `gorm:"type:varchar(30)"`
	Email        *string
	Direccion    *string
	Distrito     string `gorm:"type:varchar(80);index"`
	TotalPedidos int    `gorm:"not null;default:0"`
	UltimoPedido *time.Time
	Activo       bool `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (c *Cliente) BeforeCreate(*gorm.DB) error {
	asignarID(&c.ID)
	return nil
}

// Distrito maps a district name to its delivery fee.
type Distrito struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Nombre         string          `gorm:"type:varchar(80);uniqueIndex;not null"`
	TarifaDelivery decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Activo         bool            `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (d *Distrito) BeforeCreate(*gorm.DB) error {
	asignarID(&d.ID)
	return nil
}
