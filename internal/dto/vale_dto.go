package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearValeRequest struct {
	ClienteID        string          `json:"cliente_id"        validate:"required,uuid"`
	Monto            decimal.Decimal `json:"monto"             validate:"required,gt=0"`
	Descripcion      *string         `json:"descripcion"       validate:"omitempty,max=255"`
	FechaVencimiento *time.Time      `json:"fecha_vencimiento"`
}

// ActualizarValeRequest only touches the fields that are present.
// monto_restante is never accepted from callers.
type ActualizarValeRequest struct {
	Monto            *decimal.Decimal `json:"monto"`
	Descripcion      *string          `json:"descripcion"       validate:"omitempty,max=255"`
	FechaVencimiento *time.Time       `json:"fecha_vencimiento"`
	Estado           *string          `json:"estado"            validate:"omitempty,oneof=activo usado vencido cancelado"`
}

type UsarValeRequest struct {
	Monto decimal.Decimal `json:"monto" validate:"required,gt=0"`
}

type ProcesarPagoValesRequest struct {
	ClienteID  string          `json:"cliente_id"  validate:"required,uuid"`
	MontoPago  decimal.Decimal `json:"monto_pago"  validate:"required,gt=0"`
	MetodoPago string          `json:"metodo_pago" validate:"required,oneof=efectivo transferencia yape plin tarjeta"`
	Referencia *string         `json:"referencia"  validate:"omitempty,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ValeResponse struct {
	ID               string     `json:"id"`
	ClienteID        *string    `json:"cliente_id"`
	Monto            Monto      `json:"monto"`
	MontoUsado       Monto      `json:"monto_usado"`
	MontoRestante    Monto      `json:"monto_restante"`
	Estado           string     `json:"estado"`
	FechaVencimiento *time.Time `json:"fecha_vencimiento"`
	Descripcion      *string    `json:"descripcion"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// ProcesarPagoValesResponse is the result of settling every active vale of a client.
type ProcesarPagoValesResponse struct {
	ClienteID     string         `json:"cliente_id"`
	ValesPagados  int            `json:"vales_pagados"`
	TotalDeuda    Monto          `json:"total_deuda"`
	MontoRecibido Monto          `json:"monto_recibido"`
	Vuelto        Monto          `json:"vuelto"`
	MetodoPago    string         `json:"metodo_pago"`
	Referencia    *string        `json:"referencia"`
	ProcesadoAt   time.Time      `json:"procesado_at"`
	Vales         []ValeResponse `json:"vales"`
}

// ResumenPagoValesResponse previews what ProcesarPago would settle.
type ResumenPagoValesResponse struct {
	ClienteID     string         `json:"cliente_id"`
	CantidadVales int            `json:"cantidad_vales"`
	TotalMonto    Monto          `json:"total_monto"`
	TotalUsado    Monto          `json:"total_usado"`
	TotalRestante Monto          `json:"total_restante"`
	Vales         []ValeResponse `json:"vales"`
}

type EstadisticaEstadoVale struct {
	Estado        string `json:"estado"`
	Cantidad      int64  `json:"cantidad"`
	Monto         Monto  `json:"monto"`
	MontoUsado    Monto  `json:"monto_usado"`
	MontoRestante Monto  `json:"monto_restante"`
}

type EstadisticasValesResponse struct {
	TotalVales    int64                   `json:"total_vales"`
	TotalEmitido  Monto                   `json:"total_emitido"`
	TotalUsado    Monto                   `json:"total_usado"`
	TotalRestante Monto                   `json:"total_restante"`
	PorEstado     []EstadisticaEstadoVale `json:"por_estado"`
}
