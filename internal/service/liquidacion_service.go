package service

// liquidacion_service.go: monthly settlement of vouchers. The billing month is
// evaluated in the business timezone; every query bound is converted to UTC.

import (
	"context"
	"errors"
	"slices"
	"time"

	"aguaya/internal/apierror"
	"aguaya/internal/dto"
	"aguaya/internal/infra"
	"aguaya/internal/metrics"
	"aguaya/internal/model"
	"aguaya/internal/repository"
	"aguaya/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type LiquidacionService interface {
	ResumenMensual(ctx context.Context, clienteID uuid.UUID, q dto.PeriodoQuery) (*dto.ResumenMensualResponse, error)
	ProcesarPagoMensual(ctx context.Context, req dto.ProcesarPagoMensualRequest) (*dto.PagoMensualResponse, error)
	HistorialPagos(ctx context.Context, clienteID uuid.UUID, limite int) ([]dto.PagoMensualHistorial, error)
	ExportarHistorial(ctx context.Context, clienteID uuid.UUID, limite int) ([]byte, error)
}

// EstadoCuentaEnqueuer is satisfied by *worker.Dispatcher.
type EstadoCuentaEnqueuer interface {
	EnqueueEstadoCuenta(ctx context.Context, payload worker.EstadoCuentaJobPayload) error
}

// LiquidacionConfig carries the business settings the engine depends on.
type LiquidacionConfig struct {
	Location        *time.Location
	TarifaDefault   decimal.Decimal
	HistorialLimite int
}

type liquidacionService struct {
	vouchers  repository.VoucherRepository
	clientes  repository.ClienteRepository
	distritos repository.DistritoRepository
	locker    infra.Locker
	jobs      EstadoCuentaEnqueuer
	metrics   *metrics.Metrics
	cfg       LiquidacionConfig
	now       func() time.Time
}

func NewLiquidacionService(
	vouchers repository.VoucherRepository,
	clientes repository.ClienteRepository,
	distritos repository.DistritoRepository,
	locker infra.Locker,
	jobs EstadoCuentaEnqueuer,
	m *metrics.Metrics,
	cfg LiquidacionConfig,
) LiquidacionService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.HistorialLimite <= 0 {
		cfg.HistorialLimite = 12
	}
	return &liquidacionService{
		vouchers:  vouchers,
		clientes:  clientes,
		distritos: distritos,
		locker:    locker,
		jobs:      jobs,
		metrics:   m,
		cfg:       cfg,
		now:       time.Now,
	}
}

// periodo is one calendar month in the business timezone. hasta is exclusive.
type periodo struct {
	mes, anio    int
	desde, hasta time.Time
}

func (p periodo) response() dto.PeriodoResponse {
	return dto.PeriodoResponse{
		Mes:    p.mes,
		Anio:   p.anio,
		Inicio: p.desde,
		Fin:    p.hasta.Add(-time.Second),
	}
}

// ventana resolves mes/anio (zero means current) to the month window.
func (s *liquidacionService) ventana(mes, anio int) (periodo, error) {
	hoy := s.now().In(s.cfg.Location)
	if mes == 0 {
		mes = int(hoy.Month())
	}
	if anio == 0 {
		anio = hoy.Year()
	}
	if mes < 1 || mes > 12 {
		return periodo{}, apierror.Validation("mes debe estar entre 1 y 12")
	}
	if anio < 2000 || anio > 2100 {
		return periodo{}, apierror.Validation("anio fuera de rango")
	}
	desde := time.Date(anio, time.Month(mes), 1, 0, 0, 0, 0, s.cfg.Location)
	return periodo{mes: mes, anio: anio, desde: desde, hasta: desde.AddDate(0, 1, 0)}, nil
}

// tarifa returns the fee of the client's active district, or the default
// when the district is empty, unknown or inactive.
func (s *liquidacionService) tarifa(ctx context.Context, tx *gorm.DB, distrito string) (decimal.Decimal, error) {
	if distrito == "" {
		return s.cfg.TarifaDefault, nil
	}
	d, err := s.distritos.FindActivoPorNombre(ctx, tx, distrito)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.cfg.TarifaDefault, nil
	}
	if err != nil {
		return decimal.Zero, apierror.Persistence("buscar distrito", err)
	}
	return d.TarifaDelivery, nil
}

// ── ResumenMensual ───────────────────────────────────────────────────────────

func (s *liquidacionService) ResumenMensual(ctx context.Context, clienteID uuid.UUID, q dto.PeriodoQuery) (*dto.ResumenMensualResponse, error) {
	p, err := s.ventana(q.Mes, q.Anio)
	if err != nil {
		return nil, err
	}
	cliente, err := s.clientes.FindByID(ctx, nil, clienteID)
	if err != nil {
		return nil, storeErr(err, errClienteNoEncontrado(clienteID), "buscar cliente")
	}
	vouchers, err := s.vouchers.ListEnVentana(ctx, nil, clienteID, p.desde.UTC(), p.hasta.UTC(), "", false)
	if err != nil {
		return nil, storeErr(err, nil, "listar vouchers del periodo")
	}
	fee, err := s.tarifa(ctx, nil, cliente.Distrito)
	if err != nil {
		return nil, err
	}

	resumen := dto.ResumenMensual{
		ClienteID:      clienteID.String(),
		ClienteNombre:  cliente.Nombre,
		Distrito:       cliente.Distrito,
		Periodo:        p.response(),
		TotalVouchers:  len(vouchers),
		TarifaDelivery: dto.NewMonto(fee),
	}
	lista := make([]dto.VoucherResponse, 0, len(vouchers))
	for i := range vouchers {
		v := &vouchers[i]
		var b *dto.BucketVouchers
		switch v.Estado {
		case model.VoucherPendiente:
			b = &resumen.Pendientes
		case model.VoucherEntregado:
			b = &resumen.Entregados
		case model.VoucherPagado:
			b = &resumen.Pagados
		}
		if b != nil {
			b.Cantidad++
			b.Total.Decimal = b.Total.Add(v.Total)
		}
		resumen.Total.Decimal = resumen.Total.Add(v.Total)
		lista = append(lista, toVoucherResponse(v))
	}
	resumen.TotalConDelivery = dto.NewMonto(resumen.Total.Add(fee))

	return &dto.ResumenMensualResponse{Resumen: resumen, Vouchers: lista}, nil
}

// ── ProcesarPagoMensual ──────────────────────────────────────────────────────
// Settles every "entregado" voucher of the client created in the month:
//   1. Per-client lock (redislock)
//   2. BEGIN TX: load the vouchers (locked), resolve the district fee
//   3. Bulk update to "pagado"; a row count mismatch aborts the tx
//   4. COMMIT, then enqueue the statement job (PDF + email), best effort

func (s *liquidacionService) ProcesarPagoMensual(ctx context.Context, req dto.ProcesarPagoMensualRequest) (*dto.PagoMensualResponse, error) {
	clienteID, err := parseID("cliente_id", req.ClienteID)
	if err != nil {
		return nil, err
	}
	if req.MetodoPago == "" {
		return nil, apierror.Validation("metodo_pago es requerido")
	}
	p, err := s.ventana(req.Mes, req.Anio)
	if err != nil {
		return nil, err
	}

	var resp *dto.PagoMensualResponse
	err = withClienteLock(ctx, s.locker, clienteID, func() error {
		return runTx(ctx, s.vouchers.DB(), func(tx *gorm.DB) error {
			cliente, err := s.clientes.FindByID(ctx, tx, clienteID)
			if err != nil {
				return storeErr(err, errClienteNoEncontrado(clienteID), "buscar cliente")
			}
			vouchers, err := s.vouchers.ListEnVentana(ctx, tx, clienteID, p.desde.UTC(), p.hasta.UTC(), model.VoucherEntregado, true)
			if err != nil {
				return storeErr(err, nil, "listar vouchers del periodo")
			}
			if len(vouchers) == 0 {
				return apierror.Validation("nada que pagar: el cliente no tiene vouchers entregados en %02d/%04d", p.mes, p.anio)
			}
			fee, err := s.tarifa(ctx, tx, cliente.Distrito)
			if err != nil {
				return err
			}

			ids := lo.Map(vouchers, func(v model.Voucher, _ int) uuid.UUID { return v.ID })
			subtotal := lo.Reduce(vouchers, func(acc decimal.Decimal, v model.Voucher, _ int) decimal.Decimal {
				return acc.Add(v.Total)
			}, decimal.Zero)

			pagadoAt := s.now().UTC()
			n, err := s.vouchers.MarcarPagadosTx(ctx, tx, ids, req.MetodoPago, req.ReferenciaPago, pagadoAt)
			if err != nil {
				return storeErr(err, nil, "marcar vouchers pagados")
			}
			if int(n) != len(ids) {
				return apierror.Conflict("los vouchers del periodo cambiaron durante el pago, reintente")
			}

			resp = &dto.PagoMensualResponse{
				ClienteID:       clienteID.String(),
				Periodo:         p.response(),
				VouchersPagados: len(ids),
				Subtotal:        dto.NewMonto(subtotal),
				TarifaDelivery:  dto.NewMonto(fee),
				Total:           dto.NewMonto(subtotal.Add(fee)),
				MetodoPago:      req.MetodoPago,
				ReferenciaPago:  req.ReferenciaPago,
				PagadoAt:        pagadoAt,
			}
			return nil
		})
	})
	if err != nil {
		s.metrics.RecordLiquidacion(metrics.OperacionPagoMensual, decimal.Zero, err)
		return nil, err
	}
	s.metrics.RecordLiquidacion(metrics.OperacionPagoMensual, resp.Total.Decimal, nil)

	log.Info().Str("cliente_id", clienteID.String()).Int("mes", p.mes).Int("anio", p.anio).
		Int("vouchers", resp.VouchersPagados).Str("total", resp.Total.StringFixed(2)).
		Msg("pago mensual procesado")

	s.encolarEstadoCuenta(ctx, p, resp)
	return resp, nil
}

func (s *liquidacionService) encolarEstadoCuenta(ctx context.Context, p periodo, resp *dto.PagoMensualResponse) {
	if s.jobs == nil {
		return
	}
	payload := worker.EstadoCuentaJobPayload{
		ClienteID:      resp.ClienteID,
		Mes:            p.mes,
		Anio:           p.anio,
		Desde:          p.desde.UTC(),
		Hasta:          p.hasta.UTC(),
		TarifaDelivery: resp.TarifaDelivery.Decimal,
		MetodoPago:     resp.MetodoPago,
		Referencia:     lo.FromPtr(resp.ReferenciaPago),
		PagadoAt:       resp.PagadoAt,
	}
	if err := s.jobs.EnqueueEstadoCuenta(ctx, payload); err != nil {
		log.Warn().Err(err).Str("cliente_id", resp.ClienteID).Msg("no se pudo encolar el estado de cuenta")
	}
}

// ── HistorialPagos ───────────────────────────────────────────────────────────

type mesAnio struct{ anio, mes int }

func (s *liquidacionService) HistorialPagos(ctx context.Context, clienteID uuid.UUID, limite int) ([]dto.PagoMensualHistorial, error) {
	_, historial, err := s.historial(ctx, clienteID, limite)
	return historial, err
}

// historial groups paid vouchers by the calendar month of PagadoAt, newest first.
func (s *liquidacionService) historial(ctx context.Context, clienteID uuid.UUID, limite int) (*model.Cliente, []dto.PagoMensualHistorial, error) {
	if limite <= 0 {
		limite = s.cfg.HistorialLimite
	}
	cliente, err := s.clientes.FindByID(ctx, nil, clienteID)
	if err != nil {
		return nil, nil, storeErr(err, errClienteNoEncontrado(clienteID), "buscar cliente")
	}
	pagados, err := s.vouchers.ListPagadosPorCliente(ctx, clienteID)
	if err != nil {
		return nil, nil, storeErr(err, nil, "listar vouchers pagados")
	}
	fee, err := s.tarifa(ctx, nil, cliente.Distrito)
	if err != nil {
		return nil, nil, err
	}

	grupos := lo.GroupBy(pagados, func(v model.Voucher) mesAnio {
		t := v.PagadoAt.In(s.cfg.Location)
		return mesAnio{anio: t.Year(), mes: int(t.Month())}
	})

	historial := make([]dto.PagoMensualHistorial, 0, len(grupos))
	for k, vs := range grupos {
		h := dto.PagoMensualHistorial{
			Mes:            k.mes,
			Anio:           k.anio,
			Vouchers:       len(vs),
			TarifaDelivery: dto.NewMonto(fee),
		}
		for _, v := range vs {
			h.Subtotal.Decimal = h.Subtotal.Add(v.Total)
			if v.PagadoAt.After(h.UltimoPago) {
				h.UltimoPago = *v.PagadoAt
			}
		}
		h.Total = dto.NewMonto(h.Subtotal.Add(fee))
		historial = append(historial, h)
	}
	slices.SortFunc(historial, func(a, b dto.PagoMensualHistorial) int {
		if a.Anio != b.Anio {
			return b.Anio - a.Anio
		}
		return b.Mes - a.Mes
	})
	if len(historial) > limite {
		historial = historial[:limite]
	}
	return cliente, historial, nil
}

func (s *liquidacionService) ExportarHistorial(ctx context.Context, clienteID uuid.UUID, limite int) ([]byte, error) {
	cliente, historial, err := s.historial(ctx, clienteID, limite)
	if err != nil {
		return nil, err
	}
	filas := lo.Map(historial, func(h dto.PagoMensualHistorial, _ int) infra.FilaHistorial {
		return infra.FilaHistorial{
			Mes:            h.Mes,
			Anio:           h.Anio,
			Vouchers:       h.Vouchers,
			Subtotal:       h.Subtotal.Decimal,
			TarifaDelivery: h.TarifaDelivery.Decimal,
			Total:          h.Total.Decimal,
			UltimoPago:     h.UltimoPago.In(s.cfg.Location),
		}
	})
	data, err := infra.HistorialXLSX(cliente.Nombre, filas)
	if err != nil {
		return nil, apierror.Persistence("generar historial xlsx", err)
	}
	return data, nil
}
