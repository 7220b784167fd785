package service

import (
	"context"
	"time"

	"aguaya/internal/apierror"
	"aguaya/internal/dto"
	"aguaya/internal/model"
	"aguaya/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VoucherService interface {
	Crear(ctx context.Context, req dto.CrearVoucherRequest) (*dto.VoucherResponse, error)
	MarcarEntregado(ctx context.Context, id uuid.UUID) (*dto.VoucherResponse, error)
	MarcarPagado(ctx context.Context, id uuid.UUID, metodo, referencia *string) (*dto.VoucherResponse, error)
	ActualizarEstado(ctx context.Context, id uuid.UUID, req dto.ActualizarEstadoVoucherRequest) (*dto.VoucherResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.VoucherResponse, error)
	ListarPorCliente(ctx context.Context, clienteID uuid.UUID, estado string) ([]dto.VoucherResponse, error)
}

type voucherService struct {
	repo     repository.VoucherRepository
	clientes repository.ClienteRepository
	now      func() time.Time
}

func NewVoucherService(repo repository.VoucherRepository, clientes repository.ClienteRepository) VoucherService {
	return &voucherService{repo: repo, clientes: clientes, now: time.Now}
}

func errVoucherNoEncontrado(id uuid.UUID) *apierror.Error {
	return apierror.NotFound("voucher %s no encontrado", id)
}

func (s *voucherService) Crear(ctx context.Context, req dto.CrearVoucherRequest) (*dto.VoucherResponse, error) {
	clienteID, err := parseID("cliente_id", req.ClienteID)
	if err != nil {
		return nil, err
	}
	if req.Cantidad <= 0 {
		return nil, apierror.Validation("cantidad debe ser mayor a 0")
	}
	if !req.PrecioUnitario.IsPositive() {
		return nil, apierror.Validation("precio_unitario debe ser mayor a 0")
	}
	if err := validarMonto("precio_unitario", req.PrecioUnitario); err != nil {
		return nil, err
	}
	if req.ProductoID == "" {
		return nil, apierror.Validation("producto_id es requerido")
	}

	var repartidorID *uuid.UUID
	if req.RepartidorID != nil && *req.RepartidorID != "" {
		id, err := parseID("repartidor_id", *req.RepartidorID)
		if err != nil {
			return nil, err
		}
		repartidorID = &id
	}

	voucher := &model.Voucher{
		ClienteID:        clienteID,
		RepartidorID:     repartidorID,
		PedidoID:         req.PedidoID,
		PedidoInvitadoID: req.PedidoInvitadoID,
		ProductoID:       req.ProductoID,
		Cantidad:         req.Cantidad,
		PrecioUnitario:   req.PrecioUnitario,
		Total:            req.PrecioUnitario.Mul(decimal.NewFromInt(int64(req.Cantidad))),
		Estado:           model.VoucherPendiente,
		Version:          1,
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if _, err := s.clientes.FindByID(ctx, tx, clienteID); err != nil {
			return storeErr(err, errClienteNoEncontrado(clienteID), "buscar cliente")
		}
		if err := s.repo.CreateTx(ctx, tx, voucher); err != nil {
			return storeErr(err, nil, "crear voucher")
		}
		return storeErr(s.clientes.RegistrarPedidoTx(ctx, tx, clienteID, s.now().UTC()), nil, "registrar pedido")
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("voucher_id", voucher.ID.String()).Str("cliente_id", clienteID.String()).
		Str("total", voucher.Total.StringFixed(2)).Msg("voucher creado")
	resp := toVoucherResponse(voucher)
	return &resp, nil
}

func (s *voucherService) MarcarEntregado(ctx context.Context, id uuid.UUID) (*dto.VoucherResponse, error) {
	return s.transicionar(ctx, id, model.VoucherEntregado, func(v *model.Voucher, at time.Time) {
		v.EntregadoAt = &at
	})
}

func (s *voucherService) MarcarPagado(ctx context.Context, id uuid.UUID, metodo, referencia *string) (*dto.VoucherResponse, error) {
	return s.transicionar(ctx, id, model.VoucherPagado, func(v *model.Voucher, at time.Time) {
		v.PagadoAt = &at
		if metodo != nil {
			v.MetodoPago = metodo
		}
		if referencia != nil {
			v.ReferenciaPago = referencia
		}
	})
}

func (s *voucherService) ActualizarEstado(ctx context.Context, id uuid.UUID, req dto.ActualizarEstadoVoucherRequest) (*dto.VoucherResponse, error) {
	switch req.Estado {
	case model.VoucherEntregado:
		return s.MarcarEntregado(ctx, id)
	case model.VoucherPagado:
		return s.MarcarPagado(ctx, id, req.MetodoPago, req.ReferenciaPago)
	case model.VoucherPendiente:
		// pendiente is never a target; load the voucher only to report its current state
		v, err := s.repo.FindByID(ctx, nil, id)
		if err != nil {
			return nil, storeErr(err, errVoucherNoEncontrado(id), "buscar voucher")
		}
		return nil, apierror.InvalidTransition("no se puede pasar un voucher de %s a %s", v.Estado, req.Estado)
	default:
		return nil, apierror.Validation("estado %q desconocido", req.Estado)
	}
}

// transicionar applies the single forward move into destino. Anything else,
// including repeating the current state, is an invalid transition and leaves
// the voucher untouched.
func (s *voucherService) transicionar(ctx context.Context, id uuid.UUID, destino string, stamp func(*model.Voucher, time.Time)) (*dto.VoucherResponse, error) {
	var voucher *model.Voucher
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		v, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return storeErr(err, errVoucherNoEncontrado(id), "buscar voucher")
		}
		siguiente, ok := model.SiguienteEstadoVoucher(v.Estado)
		if !ok || siguiente != destino {
			return apierror.InvalidTransition("no se puede pasar un voucher de %s a %s", v.Estado, destino)
		}

		previo := v.Estado
		v.Estado = destino
		stamp(v, s.now().UTC())
		if err := s.repo.UpdateEstadoTx(ctx, tx, v, previo); err != nil {
			return storeErr(err, nil, "actualizar voucher")
		}
		voucher = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("voucher_id", id.String()).Str("estado", destino).Msg("voucher actualizado")
	resp := toVoucherResponse(voucher)
	return &resp, nil
}

func (s *voucherService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.VoucherResponse, error) {
	v, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, storeErr(err, errVoucherNoEncontrado(id), "buscar voucher")
	}
	resp := toVoucherResponse(v)
	return &resp, nil
}

func (s *voucherService) ListarPorCliente(ctx context.Context, clienteID uuid.UUID, estado string) ([]dto.VoucherResponse, error) {
	vouchers, err := s.repo.ListPorCliente(ctx, clienteID, estado)
	if err != nil {
		return nil, storeErr(err, nil, "listar vouchers")
	}
	resp := make([]dto.VoucherResponse, len(vouchers))
	for i := range vouchers {
		resp[i] = toVoucherResponse(&vouchers[i])
	}
	return resp, nil
}
