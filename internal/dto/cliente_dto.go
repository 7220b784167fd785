package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type CrearClienteRequest struct {
	Documento string  `json:"documento" validate:"required,min=8,max=20"`
	Nombre    string  `json:"nombre"    validate:"required,min=2,max=150"`
	Telefono  *string `json:"telefono"  validate:"omitempty,max=30"`
	Email     *string `json:"email"     validate:"omitempty,email"`
	Direccion *string `json:"direccion" validate:"omitempty,max=255"`
	Distrito  string  `json:"distrito"  validate:"omitempty,max=80"`
}

type ActualizarClienteRequest struct {
	Nombre    *string `json:"nombre"    validate:"omitempty,min=2,max=150"`
	Telefono  *string `json:"telefono"  validate:"omitempty,max=30"`
	Email     *string `json:"email"     validate:"omitempty,email"`
	Direccion *string `json:"direccion" validate:"omitempty,max=255"`
	Distrito  *string `json:"distrito"  validate:"omitempty,max=80"`
	Activo    *bool   `json:"activo"`
}

type ClienteResponse struct {
	ID           string     `json:"id"`
	Documento    string     `json:"documento"`
	Nombre       string     `json:"nombre"`
	Telefono     *string    `json:"telefono"`
	Email        *string    `json:"email"`
	Direccion    *string    `json:"direccion"`
	Distrito     string     `json:"distrito"`
	TotalPedidos int        `json:"total_pedidos"`
	UltimoPedido *time.Time `json:"ultimo_pedido"`
	Activo       bool       `json:"activo"`
}

type GuardarDistritoRequest struct {
	Nombre         string          `json:"nombre"          validate:"required,min=2,max=80"`
	TarifaDelivery decimal.Decimal `json:"tarifa_delivery" validate:"min=0"`
	Activo         *bool           `json:"activo"`
}

type DistritoResponse struct {
	ID             string `json:"id"`
	Nombre         string `json:"nombre"`
	TarifaDelivery Monto  `json:"tarifa_delivery"`
	Activo         bool   `json:"activo"`
}
