package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearPlanRequest struct {
	Nombre           string          `json:"nombre"             validate:"required,min=2,max=100"`
	Tipo             string          `json:"tipo"               validate:"required,oneof=basico premium vip"`
	TotalBotellas    int             `json:"total_botellas"     validate:"required,min=1"`
	BotellasBono     int             `json:"botellas_bono"      validate:"min=0"`
	PrecioMensual    decimal.Decimal `json:"precio_mensual"     validate:"required,gt=0"`
	PrecioPorBotella decimal.Decimal `json:"precio_por_botella" validate:"required,gt=0"`
	MaxEntregaDiaria *int            `json:"max_entrega_diaria" validate:"omitempty,min=1"`
}

type SuscribirRequest struct {
	ClienteID   string     `json:"cliente_id"   validate:"required,uuid"`
	PlanID      string     `json:"plan_id"      validate:"required,uuid"`
	FechaInicio *time.Time `json:"fecha_inicio"`
}

type RegistrarEntregaRequest struct {
	Cantidad int `json:"cantidad" validate:"required,min=1"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PlanResponse struct {
	ID               string `json:"id"`
	Nombre           string `json:"nombre"`
	Tipo             string `json:"tipo"`
	TotalBotellas    int    `json:"total_botellas"`
	BotellasBono     int    `json:"botellas_bono"`
	PrecioMensual    Monto  `json:"precio_mensual"`
	PrecioPorBotella Monto  `json:"precio_por_botella"`
	MaxEntregaDiaria *int   `json:"max_entrega_diaria"`
	Activo           bool   `json:"activo"`
}

type SuscripcionResponse struct {
	ID                 string    `json:"id"`
	ClienteID          string    `json:"cliente_id"`
	PlanID             string    `json:"plan_id"`
	BotellasEntregadas int       `json:"botellas_entregadas"`
	BotellasRestantes  int       `json:"botellas_restantes"`
	FechaInicio        time.Time `json:"fecha_inicio"`
	FechaFin           time.Time `json:"fecha_fin"`
	Estado             string    `json:"estado"`
}
