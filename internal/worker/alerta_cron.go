package worker

// alerta_cron.go: periodically recomputes the admin alert buckets, logs the
// counts and publishes them as gauges. Purely read-only.

import (
	"context"
	"time"

	"aguaya/internal/dto"
	"aguaya/internal/metrics"

	"github.com/rs/zerolog/log"
)

// AlertaSource is satisfied by service.AlertaService.
type AlertaSource interface {
	AlertasAdmin(ctx context.Context) (*dto.AlertasAdminResponse, error)
}

type AlertasCronConfig struct {
	Source   AlertaSource
	Metrics  *metrics.Metrics
	Interval time.Duration
}

// StartAlertasCron sweeps once immediately and then every Interval until ctx is done.
func StartAlertasCron(ctx context.Context, cfg AlertasCronConfig) {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Dur("interval", cfg.Interval).Msg("alertas_cron: started")
		sweepAlertas(ctx, cfg)

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("alertas_cron: shutting down")
				return
			case <-ticker.C:
				sweepAlertas(ctx, cfg)
			}
		}
	}()
}

func sweepAlertas(ctx context.Context, cfg AlertasCronConfig) {
	a, err := cfg.Source.AlertasAdmin(ctx)
	if err != nil {
		log.Error().Err(err).Msg("alertas_cron: failed to compute alerts")
		return
	}

	cfg.Metrics.SetAlertas("vales_por_vencer", len(a.ValesPorVencer))
	cfg.Metrics.SetAlertas("vales_vencidos", len(a.ValesVencidos))
	cfg.Metrics.SetAlertas("preferencias_por_vencer", len(a.PreferenciasPorVencer))
	cfg.Metrics.SetAlertas("vales_activos", a.ResumenVales.Cantidad)

	ev := log.Info()
	if len(a.ValesVencidos) > 0 {
		ev = log.Warn()
	}
	ev.Int("vales_por_vencer", len(a.ValesPorVencer)).
		Int("vales_vencidos", len(a.ValesVencidos)).
		Int("preferencias_por_vencer", len(a.PreferenciasPorVencer)).
		Str("deuda_activa", a.ResumenVales.TotalRestante.StringFixed(2)).
		Msg("alertas_cron: sweep")
}
