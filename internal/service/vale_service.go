package service

import (
	"context"
	"time"

	"aguaya/internal/apierror"
	"aguaya/internal/dto"
	"aguaya/internal/infra"
	"aguaya/internal/metrics"
	"aguaya/internal/model"
	"aguaya/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ValeService interface {
	Crear(ctx context.Context, req dto.CrearValeRequest) (*dto.ValeResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarValeRequest) (*dto.ValeResponse, error)
	Usar(ctx context.Context, id uuid.UUID, monto decimal.Decimal) (*dto.ValeResponse, error)
	ProcesarPago(ctx context.Context, req dto.ProcesarPagoValesRequest) (*dto.ProcesarPagoValesResponse, error)
	ResumenPago(ctx context.Context, clienteID uuid.UUID) (*dto.ResumenPagoValesResponse, error)
	Estadisticas(ctx context.Context) (*dto.EstadisticasValesResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ValeResponse, error)
	ListarPorCliente(ctx context.Context, clienteID uuid.UUID, estado string) ([]dto.ValeResponse, error)
}

type valeService struct {
	repo     repository.ValeRepository
	clientes repository.ClienteRepository
	locker   infra.Locker
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewValeService(
	repo repository.ValeRepository,
	clientes repository.ClienteRepository,
	locker infra.Locker,
	m *metrics.Metrics,
) ValeService {
	return &valeService{repo: repo, clientes: clientes, locker: locker, metrics: m, now: time.Now}
}

func errValeNoEncontrado(id uuid.UUID) *apierror.Error {
	return apierror.NotFound("vale %s no encontrado", id)
}

func errClienteNoEncontrado(id uuid.UUID) *apierror.Error {
	return apierror.NotFound("cliente %s no encontrado", id)
}

// ── Crear ────────────────────────────────────────────────────────────────────

func (s *valeService) Crear(ctx context.Context, req dto.CrearValeRequest) (*dto.ValeResponse, error) {
	clienteID, err := parseID("cliente_id", req.ClienteID)
	if err != nil {
		return nil, err
	}
	if !req.Monto.IsPositive() {
		return nil, apierror.Validation("monto debe ser mayor a 0")
	}
	if err := validarMonto("monto", req.Monto); err != nil {
		return nil, err
	}

	vale := &model.Vale{
		ClienteID:        &clienteID,
		Monto:            req.Monto,
		MontoUsado:       decimal.Zero,
		Estado:           model.ValeActivo,
		FechaVencimiento: req.FechaVencimiento,
		Descripcion:      req.Descripcion,
		Version:          1,
	}
	model.NormalizarVale(vale)

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if _, err := s.clientes.FindByID(ctx, tx, clienteID); err != nil {
			return storeErr(err, errClienteNoEncontrado(clienteID), "buscar cliente")
		}
		return storeErr(s.repo.CreateTx(ctx, tx, vale), nil, "crear vale")
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("vale_id", vale.ID.String()).Str("cliente_id", clienteID.String()).
		Str("monto", vale.Monto.StringFixed(2)).Msg("vale creado")
	resp := toValeResponse(vale)
	return &resp, nil
}

// ── Actualizar ───────────────────────────────────────────────────────────────
// monto may not drop below what was already used. Explicit status moves:
// activo → vencido | cancelado, vencido → activo. "usado" is only reachable
// by consuming the balance.

func (s *valeService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarValeRequest) (*dto.ValeResponse, error) {
	if req.Monto != nil {
		if !req.Monto.IsPositive() {
			return nil, apierror.Validation("monto debe ser mayor a 0")
		}
		if err := validarMonto("monto", *req.Monto); err != nil {
			return nil, err
		}
	}

	var vale *model.Vale
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		v, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return storeErr(err, errValeNoEncontrado(id), "buscar vale")
		}

		if req.Monto != nil {
			if req.Monto.LessThan(v.MontoUsado) {
				return apierror.Validation("monto (%s) no puede ser menor al monto usado (%s)",
					req.Monto.StringFixed(2), v.MontoUsado.StringFixed(2))
			}
			v.Monto = *req.Monto
		}
		if req.Descripcion != nil {
			v.Descripcion = req.Descripcion
		}
		if req.FechaVencimiento != nil {
			v.FechaVencimiento = req.FechaVencimiento
		}
		if req.Estado != nil && *req.Estado != v.Estado {
			if err := validarCambioEstadoVale(v, *req.Estado); err != nil {
				return err
			}
			v.Estado = *req.Estado
		}

		model.NormalizarVale(v)
		if err := s.repo.UpdateTx(ctx, tx, v); err != nil {
			return storeErr(err, nil, "actualizar vale")
		}
		vale = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := toValeResponse(vale)
	return &resp, nil
}

func validarCambioEstadoVale(v *model.Vale, nuevo string) error {
	restante := v.Monto.Sub(v.MontoUsado)
	switch nuevo {
	case model.ValeUsado:
		if restante.IsPositive() {
			return apierror.Validation("el vale aún tiene saldo (%s), no puede marcarse como usado", restante.StringFixed(2))
		}
		return nil
	case model.ValeVencido, model.ValeCancelado:
		if v.Estado == model.ValeActivo {
			return nil
		}
	case model.ValeActivo:
		if v.Estado == model.ValeVencido {
			return nil
		}
	default:
		return apierror.Validation("estado %q desconocido", nuevo)
	}
	return apierror.InvalidTransition("no se puede pasar un vale de %s a %s", v.Estado, nuevo)
}

// ── Usar ─────────────────────────────────────────────────────────────────────
// Row lock + version compare-and-swap: two concurrent consumptions of the same
// vale cannot both succeed against the same balance.

func (s *valeService) Usar(ctx context.Context, id uuid.UUID, monto decimal.Decimal) (*dto.ValeResponse, error) {
	if !monto.IsPositive() {
		return nil, apierror.Validation("monto debe ser mayor a 0")
	}
	if err := validarMonto("monto", monto); err != nil {
		return nil, err
	}

	var vale *model.Vale
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		v, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return storeErr(err, errValeNoEncontrado(id), "buscar vale")
		}
		if v.Estado != model.ValeActivo {
			return apierror.Conflict("el vale no está activo (estado: %s)", v.Estado)
		}

		usado := v.MontoUsado.Add(monto)
		if usado.GreaterThan(v.Monto) {
			return &apierror.InsufficientBalanceError{
				Disponible: v.Monto.Sub(v.MontoUsado),
				Solicitado: monto,
				Msg:        "saldo insuficiente en el vale",
			}
		}
		v.MontoUsado = usado
		model.NormalizarVale(v)

		if err := s.repo.UpdateTx(ctx, tx, v); err != nil {
			return storeErr(err, nil, "usar vale")
		}
		vale = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("vale_id", id.String()).Str("monto", monto.StringFixed(2)).
		Str("restante", vale.MontoRestante.StringFixed(2)).Str("estado", vale.Estado).Msg("vale usado")
	resp := toValeResponse(vale)
	return &resp, nil
}

// ── ProcesarPago ─────────────────────────────────────────────────────────────
// Settles every active vale of the client at once, oldest first:
//   1. Per-client lock (redislock)
//   2. BEGIN TX: load active vales FIFO (locked), sum the remaining balance
//   3. Reject payments below the total; no subset is ever settled
//   4. Force each vale to fully used, CAS update
//   5. COMMIT, report change

func (s *valeService) ProcesarPago(ctx context.Context, req dto.ProcesarPagoValesRequest) (*dto.ProcesarPagoValesResponse, error) {
	clienteID, err := parseID("cliente_id", req.ClienteID)
	if err != nil {
		return nil, err
	}
	if !req.MontoPago.IsPositive() {
		return nil, apierror.Validation("monto_pago debe ser mayor a 0")
	}
	if err := validarMonto("monto_pago", req.MontoPago); err != nil {
		return nil, err
	}
	if req.MetodoPago == "" {
		return nil, apierror.Validation("metodo_pago es requerido")
	}

	var resp *dto.ProcesarPagoValesResponse
	err = withClienteLock(ctx, s.locker, clienteID, func() error {
		return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
			vales, err := s.repo.ListActivosPorClienteFIFO(ctx, tx, clienteID, true)
			if err != nil {
				return storeErr(err, nil, "listar vales activos")
			}
			if len(vales) == 0 {
				return apierror.NotFound("el cliente %s no tiene vales activos", clienteID)
			}

			total := sumarRestante(vales)
			if req.MontoPago.LessThan(total) {
				return &apierror.InsufficientBalanceError{
					Disponible: req.MontoPago,
					Solicitado: total,
					Msg:        "el pago no cubre la deuda total de vales",
				}
			}

			pagados := make([]dto.ValeResponse, 0, len(vales))
			for i := range vales {
				v := &vales[i]
				v.MontoUsado = v.Monto
				model.NormalizarVale(v)
				if err := s.repo.UpdateTx(ctx, tx, v); err != nil {
					return storeErr(err, nil, "liquidar vale")
				}
				pagados = append(pagados, toValeResponse(v))
			}

			resp = &dto.ProcesarPagoValesResponse{
				ClienteID:     clienteID.String(),
				ValesPagados:  len(vales),
				TotalDeuda:    dto.NewMonto(total),
				MontoRecibido: dto.NewMonto(req.MontoPago),
				Vuelto:        dto.NewMonto(req.MontoPago.Sub(total)),
				MetodoPago:    req.MetodoPago,
				Referencia:    req.Referencia,
				ProcesadoAt:   s.now(),
				Vales:         pagados,
			}
			return nil
		})
	})
	if err != nil {
		s.metrics.RecordLiquidacion(metrics.OperacionPagoVales, decimal.Zero, err)
		return nil, err
	}

	s.metrics.RecordLiquidacion(metrics.OperacionPagoVales, resp.TotalDeuda.Decimal, nil)
	log.Info().Str("cliente_id", clienteID.String()).Int("vales", resp.ValesPagados).
		Str("total", resp.TotalDeuda.StringFixed(2)).Str("vuelto", resp.Vuelto.StringFixed(2)).
		Msg("pago de vales procesado")
	return resp, nil
}

func sumarRestante(vales []model.Vale) decimal.Decimal {
	return lo.Reduce(vales, func(acc decimal.Decimal, v model.Vale, _ int) decimal.Decimal {
		return acc.Add(v.MontoRestante)
	}, decimal.Zero)
}

// ── Lecturas ─────────────────────────────────────────────────────────────────

func (s *valeService) ResumenPago(ctx context.Context, clienteID uuid.UUID) (*dto.ResumenPagoValesResponse, error) {
	if _, err := s.clientes.FindByID(ctx, nil, clienteID); err != nil {
		return nil, storeErr(err, errClienteNoEncontrado(clienteID), "buscar cliente")
	}
	vales, err := s.repo.ListActivosPorClienteFIFO(ctx, nil, clienteID, false)
	if err != nil {
		return nil, storeErr(err, nil, "listar vales activos")
	}

	monto, usado := decimal.Zero, decimal.Zero
	pendientes := make([]dto.ValeResponse, 0, len(vales))
	for i := range vales {
		monto = monto.Add(vales[i].Monto)
		usado = usado.Add(vales[i].MontoUsado)
		pendientes = append(pendientes, toValeResponse(&vales[i]))
	}
	return &dto.ResumenPagoValesResponse{
		ClienteID:     clienteID.String(),
		CantidadVales: len(vales),
		TotalMonto:    dto.NewMonto(monto),
		TotalUsado:    dto.NewMonto(usado),
		TotalRestante: dto.NewMonto(sumarRestante(vales)),
		Vales:         pendientes,
	}, nil
}

func (s *valeService) Estadisticas(ctx context.Context) (*dto.EstadisticasValesResponse, error) {
	stats, err := s.repo.EstadisticasPorEstado(ctx)
	if err != nil {
		return nil, storeErr(err, nil, "estadisticas de vales")
	}

	resp := &dto.EstadisticasValesResponse{
		PorEstado: make([]dto.EstadisticaEstadoVale, 0, len(stats)),
	}
	emitido, usado, restante := decimal.Zero, decimal.Zero, decimal.Zero
	for _, st := range stats {
		resp.TotalVales += st.Cantidad
		emitido = emitido.Add(st.Monto)
		usado = usado.Add(st.MontoUsado)
		restante = restante.Add(st.MontoRestante)
		resp.PorEstado = append(resp.PorEstado, dto.EstadisticaEstadoVale{
			Estado:        st.Estado,
			Cantidad:      st.Cantidad,
			Monto:         dto.NewMonto(st.Monto),
			MontoUsado:    dto.NewMonto(st.MontoUsado),
			MontoRestante: dto.NewMonto(st.MontoRestante),
		})
	}
	resp.TotalEmitido = dto.NewMonto(emitido)
	resp.TotalUsado = dto.NewMonto(usado)
	resp.TotalRestante = dto.NewMonto(restante)
	return resp, nil
}

func (s *valeService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ValeResponse, error) {
	v, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, storeErr(err, errValeNoEncontrado(id), "buscar vale")
	}
	resp := toValeResponse(v)
	return &resp, nil
}

func (s *valeService) ListarPorCliente(ctx context.Context, clienteID uuid.UUID, estado string) ([]dto.ValeResponse, error) {
	vales, err := s.repo.ListPorCliente(ctx, clienteID, estado)
	if err != nil {
		return nil, storeErr(err, nil, "listar vales")
	}
	resp := make([]dto.ValeResponse, len(vales))
	for i := range vales {
		resp[i] = toValeResponse(&vales[i])
	}
	return resp, nil
}
