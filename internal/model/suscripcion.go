package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Tipos de suscripción reconocidos por el cálculo de bonificación.
const (
	TipoBasico  = "basico"
	TipoPremium = "premium"
	TipoVIP     = "vip"
)

// Estados de una suscripción.
const (
	SuscripcionActiva     = "activa"
	SuscripcionPausada    = "pausada"
	SuscripcionCompletada = "completada"
	SuscripcionCancelada  = "cancelada"
	SuscripcionVencida    = "vencida"
)

// PlanSuscripcion defines a prepaid bottle bundle.
type PlanSuscripcion struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Nombre           string          `gorm:"not null"`
	Tipo             string          `gorm:"type:varchar(20);not null"`
	TotalBotellas    int             `gorm:"not null"`
	BotellasBono     int             `gorm:"not null;default:0"`
	PrecioMensual    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PrecioPorBotella decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MaxEntregaDiaria *int
	Activo           bool `gorm:"not null;default:true"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (PlanSuscripcion) TableName() string { return "planes_suscripcion" }

func (p *PlanSuscripcion) BeforeCreate(*gorm.DB) error {
	asignarID(&p.ID)
	return nil
}

// Suscripcion instantiates a plan for one billing period.
type Suscripcion struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	ClienteID          uuid.UUID `gorm:"type:uuid;not null;index"`
	PlanID             uuid.UUID `gorm:"type:uuid;not null"`
	BotellasEntregadas int       `gorm:"not null;default:0"`
	BotellasRestantes  int       `gorm:"not null"`
	EntregadasDia      int       `gorm:"not null;default:0"`
	UltimaEntregaAt    *time.Time
	FechaInicio        time.Time `gorm:"not null"`
	FechaFin           time.Time `gorm:"not null"`
	Estado             string    `gorm:"type:varchar(20);not null;default:'activa'"`
	Version            int       `gorm:"not null;default:1"`
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Plan *PlanSuscripcion `gorm:"foreignKey:PlanID"`
}

func (Suscripcion) TableName() string { return "suscripciones" }

func (s *Suscripcion) BeforeCreate(*gorm.DB) error {
	asignarID(&s.ID)
	return nil
}

// BotellasRestantes = TotalBotellas + BotellasBono - entregadas, floored at zero.
func BotellasRestantes(plan *PlanSuscripcion, entregadas int) int {
	restantes := plan.TotalBotellas + plan.BotellasBono - entregadas
	if restantes < 0 {
		return 0
	}
	return restantes
}
