package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type GuardarPreferenciaRequest struct {
	Modalidad           string           `json:"modalidad"            validate:"required,oneof=contraentrega vale suscripcion"`
	TipoSuscripcion     *string          `json:"tipo_suscripcion"     validate:"omitempty,oneof=basico premium vip"`
	MontoSuscripcion    *decimal.Decimal `json:"monto_suscripcion"`
	CantidadSuscripcion *int             `json:"cantidad_suscripcion" validate:"omitempty,min=0"`
	ValidoHasta         *time.Time       `json:"valido_hasta"`
}

type PreferenciaResponse struct {
	ID                   string     `json:"id"`
	ClienteID            string     `json:"cliente_id"`
	Documento            string     `json:"documento"`
	Modalidad            string     `json:"modalidad"`
	TipoSuscripcion      *string    `json:"tipo_suscripcion"`
	MontoSuscripcion     *Monto     `json:"monto_suscripcion"`
	CantidadSuscripcion  *int       `json:"cantidad_suscripcion"`
	BonificacionCantidad int        `json:"bonificacion_cantidad"`
	ValidoHasta          *time.Time `json:"valido_hasta"`
	Activo               bool       `json:"activo"`
	CreatedAt            time.Time  `json:"created_at"`
}
