package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearVoucherRequest struct {
	ClienteID        string          `json:"cliente_id"         validate:"required,uuid"`
	RepartidorID     *string         `json:"repartidor_id"      validate:"omitempty,uuid"`
	PedidoID         *string         `json:"pedido_id"          validate:"omitempty,max=64"`
	PedidoInvitadoID *string         `json:"pedido_invitado_id" validate:"omitempty,max=64"`
	ProductoID       string          `json:"producto_id"        validate:"required,max=64"`
	Cantidad         int             `json:"cantidad"           validate:"required,min=1"`
	PrecioUnitario   decimal.Decimal `json:"precio_unitario"    validate:"required,gt=0"`
}

// ActualizarEstadoVoucherRequest asks for the next state; skipping one is rejected.
type ActualizarEstadoVoucherRequest struct {
	Estado         string  `json:"estado"          validate:"required,oneof=pendiente entregado pagado"`
	MetodoPago     *string `json:"metodo_pago"     validate:"omitempty,max=30"`
	ReferenciaPago *string `json:"referencia_pago" validate:"omitempty,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type VoucherResponse struct {
	ID               string     `json:"id"`
	ClienteID        string     `json:"cliente_id"`
	RepartidorID     *string    `json:"repartidor_id"`
	PedidoID         *string    `json:"pedido_id"`
	PedidoInvitadoID *string    `json:"pedido_invitado_id"`
	ProductoID       string     `json:"producto_id"`
	Cantidad         int        `json:"cantidad"`
	PrecioUnitario   Monto      `json:"precio_unitario"`
	Total            Monto      `json:"total"`
	Estado           string     `json:"estado"`
	EntregadoAt      *time.Time `json:"entregado_at"`
	PagadoAt         *time.Time `json:"pagado_at"`
	MetodoPago       *string    `json:"metodo_pago"`
	ReferenciaPago   *string    `json:"referencia_pago"`
	CreatedAt        time.Time  `json:"created_at"`
}
