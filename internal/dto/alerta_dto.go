package dto

import "time"

// Prioridades de alerta, used only for sorting on the client side.
const (
	PrioridadUrgente = "urgente"
	PrioridadAlta    = "alta"
	PrioridadMedia   = "media"
	PrioridadInfo    = "info"
)

type AlertaVale struct {
	ValeID           string    `json:"vale_id"`
	ClienteID        *string   `json:"cliente_id"`
	MontoRestante    Monto     `json:"monto_restante"`
	FechaVencimiento time.Time `json:"fecha_vencimiento"`
	DiasRestantes    int       `json:"dias_restantes"`
	Prioridad        string    `json:"prioridad"`
}

type AlertaPreferencia struct {
	PreferenciaID string    `json:"preferencia_id"`
	ClienteID     string    `json:"cliente_id"`
	Documento     string    `json:"documento"`
	Modalidad     string    `json:"modalidad"`
	ValidoHasta   time.Time `json:"valido_hasta"`
	DiasRestantes int       `json:"dias_restantes"`
	Prioridad     string    `json:"prioridad"`
}

type ResumenValesActivos struct {
	Cantidad      int    `json:"cantidad"`
	TotalMonto    Monto  `json:"total_monto"`
	TotalUsado    Monto  `json:"total_usado"`
	TotalRestante Monto  `json:"total_restante"`
	Prioridad     string `json:"prioridad"`
}

type AlertasAdminResponse struct {
	GeneradoAt            time.Time           `json:"generado_at"`
	ValesPorVencer        []AlertaVale        `json:"vales_por_vencer"`
	ValesVencidos         []AlertaVale        `json:"vales_vencidos"`
	PreferenciasPorVencer []AlertaPreferencia `json:"preferencias_por_vencer"`
	ResumenVales          ResumenValesActivos `json:"resumen_vales"`
}
