package service

import (
	"context"
	"testing"
	"time"

	"aguaya/internal/dto"
	"aguaya/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlertasAdmin(t *testing.T) {
	l := nuevoLedger(t)
	ctx := context.Background()
	ahora := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	c := l.cliente(t, "33445566", "")

	conVencimiento := func(monto string, vence time.Time) *model.Vale {
		v := l.vale(t, c.ID, monto, ahora.Add(-72*time.Hour))
		require.NoError(t, l.db.Model(&model.Vale{}).Where("id = ?", v.ID).
			Update("fecha_vencimiento", vence.UTC()).Error)
		return v
	}
	manana := conVencimiento("10", ahora.Add(12*time.Hour))
	tresDias := conVencimiento("20", ahora.Add(3*24*time.Hour))
	conVencimiento("30", ahora.Add(10*24*time.Hour))
	vencido := conVencimiento("40", ahora.Add(-2*24*time.Hour))

	cerrado := conVencimiento("50", ahora.Add(-24*time.Hour))
	require.NoError(t, l.db.Model(&model.Vale{}).Where("id = ?", cerrado.ID).
		Updates(map[string]interface{}{"estado": model.ValeUsado, "monto_usado": cerrado.Monto, "monto_restante": 0}).Error)

	validoHasta := ahora.Add(5 * 24 * time.Hour)
	pref := &model.PreferenciaCliente{ClienteID: c.ID, Documento: c.Documento, Modalidad: model.ModalidadVale, ValidoHasta: &validoHasta, Activo: true}
	require.NoError(t, l.preferencias.CreateTx(ctx, nil, pref))
	lejana := ahora.Add(30 * 24 * time.Hour)
	require.NoError(t, l.preferencias.CreateTx(ctx, nil, &model.PreferenciaCliente{
		ClienteID: uuid.New(), Documento: "99999999", Modalidad: model.ModalidadVale, ValidoHasta: &lejana, Activo: true,
	}))

	svc := NewAlertaService(l.vales, l.preferencias, 7).(*alertaService)
	svc.now = fijo(ahora)

	resp, err := svc.AlertasAdmin(ctx)
	require.NoError(t, err)

	require.Len(t, resp.ValesPorVencer, 2)
	assert.Equal(t, manana.ID.String(), resp.ValesPorVencer[0].ValeID)
	assert.Equal(t, dto.PrioridadUrgente, resp.ValesPorVencer[0].Prioridad)
	assert.Equal(t, 1, resp.ValesPorVencer[0].DiasRestantes)
	assert.Equal(t, tresDias.ID.String(), resp.ValesPorVencer[1].ValeID)
	assert.Equal(t, dto.PrioridadAlta, resp.ValesPorVencer[1].Prioridad)
	assert.Equal(t, 3, resp.ValesPorVencer[1].DiasRestantes)

	require.Len(t, resp.ValesVencidos, 1)
	assert.Equal(t, vencido.ID.String(), resp.ValesVencidos[0].ValeID)
	assert.Equal(t, dto.PrioridadUrgente, resp.ValesVencidos[0].Prioridad)
	assert.Equal(t, -2, resp.ValesVencidos[0].DiasRestantes)

	require.Len(t, resp.PreferenciasPorVencer, 1)
	assert.Equal(t, pref.ID.String(), resp.PreferenciasPorVencer[0].PreferenciaID)
	assert.Equal(t, dto.PrioridadMedia, resp.PreferenciasPorVencer[0].Prioridad)

	assert.Equal(t, 4, resp.ResumenVales.Cantidad)
	assert.True(t, resp.ResumenVales.TotalRestante.Equal(dec("100")))
	assert.Equal(t, dto.PrioridadInfo, resp.ResumenVales.Prioridad)

	// alerts are advisory: the overdue vale is still active
	assert.Equal(t, model.ValeActivo, l.recargarVale(t, vencido.ID).Estado)
}
