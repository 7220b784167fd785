package service

// alerta_service.go: read-only admin alert buckets. Nothing here mutates the
// ledger; an overdue vale stays "activo" until an operator acts on it.

import (
	"context"
	"math"
	"time"

	"aguaya/internal/dto"
	"aguaya/internal/model"
	"aguaya/internal/repository"
)

type AlertaService interface {
	AlertasAdmin(ctx context.Context) (*dto.AlertasAdminResponse, error)
}

type alertaService struct {
	vales        repository.ValeRepository
	preferencias repository.PreferenciaRepository
	ventana      time.Duration
	now          func() time.Time
}

// NewAlertaService builds the service; diasVentana <= 0 means 7 days.
func NewAlertaService(vales repository.ValeRepository, preferencias repository.PreferenciaRepository, diasVentana int) AlertaService {
	if diasVentana <= 0 {
		diasVentana = 7
	}
	return &alertaService{
		vales:        vales,
		preferencias: preferencias,
		ventana:      time.Duration(diasVentana) * 24 * time.Hour,
		now:          time.Now,
	}
}

func (s *alertaService) AlertasAdmin(ctx context.Context) (*dto.AlertasAdminResponse, error) {
	now := s.now().UTC()
	limite := now.Add(s.ventana)

	porVencer, err := s.vales.ListActivosVencenEntre(ctx, now, limite)
	if err != nil {
		return nil, storeErr(err, nil, "vales por vencer")
	}
	vencidos, err := s.vales.ListActivosVencidosAntes(ctx, now)
	if err != nil {
		return nil, storeErr(err, nil, "vales vencidos")
	}
	prefs, err := s.preferencias.ListVencenEntre(ctx, now, limite)
	if err != nil {
		return nil, storeErr(err, nil, "preferencias por vencer")
	}
	stats, err := s.vales.EstadisticasPorEstado(ctx)
	if err != nil {
		return nil, storeErr(err, nil, "estadisticas de vales")
	}

	resp := &dto.AlertasAdminResponse{
		GeneradoAt:            now,
		ValesPorVencer:        make([]dto.AlertaVale, 0, len(porVencer)),
		ValesVencidos:         make([]dto.AlertaVale, 0, len(vencidos)),
		PreferenciasPorVencer: make([]dto.AlertaPreferencia, 0, len(prefs)),
		ResumenVales: dto.ResumenValesActivos{
			Prioridad: dto.PrioridadInfo,
		},
	}

	for i := range porVencer {
		dias := diasHasta(now, *porVencer[i].FechaVencimiento)
		prioridad := dto.PrioridadAlta
		if dias <= 1 {
			prioridad = dto.PrioridadUrgente
		}
		resp.ValesPorVencer = append(resp.ValesPorVencer, alertaVale(&porVencer[i], dias, prioridad))
	}
	for i := range vencidos {
		dias := diasHasta(now, *vencidos[i].FechaVencimiento)
		resp.ValesVencidos = append(resp.ValesVencidos, alertaVale(&vencidos[i], dias, dto.PrioridadUrgente))
	}
	for _, p := range prefs {
		resp.PreferenciasPorVencer = append(resp.PreferenciasPorVencer, dto.AlertaPreferencia{
			PreferenciaID: p.ID.String(),
			ClienteID:     p.ClienteID.String(),
			Documento:     p.Documento,
			Modalidad:     p.Modalidad,
			ValidoHasta:   *p.ValidoHasta,
			DiasRestantes: diasHasta(now, *p.ValidoHasta),
			Prioridad:     dto.PrioridadMedia,
		})
	}
	for _, st := range stats {
		if st.Estado != model.ValeActivo {
			continue
		}
		resp.ResumenVales.Cantidad = int(st.Cantidad)
		resp.ResumenVales.TotalMonto = dto.NewMonto(st.Monto)
		resp.ResumenVales.TotalUsado = dto.NewMonto(st.MontoUsado)
		resp.ResumenVales.TotalRestante = dto.NewMonto(st.MontoRestante)
	}
	return resp, nil
}

// diasHasta rounds up to whole days; negative for dates already past.
func diasHasta(now, t time.Time) int {
	return int(math.Ceil(t.Sub(now).Hours() / 24))
}

func alertaVale(v *model.Vale, dias int, prioridad string) dto.AlertaVale {
	return dto.AlertaVale{
		ValeID:           v.ID.String(),
		ClienteID:        ptrString(v.ClienteID),
		MontoRestante:    dto.NewMonto(v.MontoRestante),
		FechaVencimiento: *v.FechaVencimiento,
		DiasRestantes:    dias,
		Prioridad:        prioridad,
	}
}
