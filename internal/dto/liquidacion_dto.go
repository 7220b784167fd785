package dto

import "time"

// PeriodoQuery is bound from ?mes=&anio=; zero values mean the current month.
type PeriodoQuery struct {
	Mes  int `form:"mes"  validate:"omitempty,min=1,max=12"`
	Anio int `form:"anio" validate:"omitempty,min=2000,max=2100"`
}

type ProcesarPagoMensualRequest struct {
	ClienteID      string  `json:"cliente_id"      validate:"required,uuid"`
	MetodoPago     string  `json:"metodo_pago"     validate:"required,oneof=efectivo transferencia yape plin tarjeta"`
	ReferenciaPago *string `json:"referencia_pago" validate:"omitempty,max=100"`
	Mes            int     `json:"mes"             validate:"omitempty,min=1,max=12"`
	Anio           int     `json:"anio"            validate:"omitempty,min=2000,max=2100"`
}

type PeriodoResponse struct {
	Mes    int       `json:"mes"`
	Anio   int       `json:"anio"`
	Inicio time.Time `json:"inicio"`
	Fin    time.Time `json:"fin"`
}

// BucketVouchers sums the vouchers sharing one status.
type BucketVouchers struct {
	Cantidad int   `json:"cantidad"`
	Total    Monto `json:"total"`
}

type ResumenMensual struct {
	ClienteID        string          `json:"cliente_id"`
	ClienteNombre    string          `json:"cliente_nombre"`
	Distrito         string          `json:"distrito"`
	Periodo          PeriodoResponse `json:"periodo"`
	TotalVouchers    int             `json:"total_vouchers"`
	Pendientes       BucketVouchers  `json:"pendientes"`
	Entregados       BucketVouchers  `json:"entregados"`
	Pagados          BucketVouchers  `json:"pagados"`
	Total            Monto           `json:"total"`
	TarifaDelivery   Monto           `json:"tarifa_delivery"`
	TotalConDelivery Monto           `json:"total_con_delivery"`
}

type ResumenMensualResponse struct {
	Resumen  ResumenMensual    `json:"resumen"`
	Vouchers []VoucherResponse `json:"vouchers"`
}

type PagoMensualResponse struct {
	ClienteID       string          `json:"cliente_id"`
	Periodo         PeriodoResponse `json:"periodo"`
	VouchersPagados int             `json:"vouchers_pagados"`
	Subtotal        Monto           `json:"subtotal"`
	TarifaDelivery  Monto           `json:"tarifa_delivery"`
	Total           Monto           `json:"total"`
	MetodoPago      string          `json:"metodo_pago"`
	ReferenciaPago  *string         `json:"referencia_pago"`
	PagadoAt        time.Time       `json:"pagado_at"`
}

// PagoMensualHistorial groups the paid vouchers of one calendar month.
type PagoMensualHistorial struct {
	Mes            int       `json:"mes"`
	Anio           int       `json:"anio"`
	Vouchers       int       `json:"vouchers"`
	Subtotal       Monto     `json:"subtotal"`
	TarifaDelivery Monto     `json:"tarifa_delivery"`
	Total          Monto     `json:"total"`
	UltimoPago     time.Time `json:"ultimo_pago"`
}
