package service

import (
	"context"

	"aguaya/internal/apierror"
	"aguaya/internal/dto"
	"aguaya/internal/model"
	"aguaya/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type PreferenciaService interface {
	Obtener(ctx context.Context, clienteID uuid.UUID) (*dto.PreferenciaResponse, error)
	Guardar(ctx context.Context, clienteID uuid.UUID, req dto.GuardarPreferenciaRequest) (*dto.PreferenciaResponse, error)
}

type preferenciaService struct {
	repo     repository.PreferenciaRepository
	clientes repository.ClienteRepository
}

func NewPreferenciaService(repo repository.PreferenciaRepository, clientes repository.ClienteRepository) PreferenciaService {
	return &preferenciaService{repo: repo, clientes: clientes}
}

func (s *preferenciaService) Obtener(ctx context.Context, clienteID uuid.UUID) (*dto.PreferenciaResponse, error) {
	p, err := s.repo.FindActivaPorCliente(ctx, clienteID)
	if err != nil {
		return nil, storeErr(err, apierror.NotFound("el cliente %s no tiene preferencia activa", clienteID), "buscar preferencia")
	}
	resp := toPreferenciaResponse(p)
	return &resp, nil
}

// Guardar replaces the client's active preference: the previous active row
// for the same documento is deactivated and the new one inserted in one tx.
func (s *preferenciaService) Guardar(ctx context.Context, clienteID uuid.UUID, req dto.GuardarPreferenciaRequest) (*dto.PreferenciaResponse, error) {
	pref := &model.PreferenciaCliente{
		ClienteID:   clienteID,
		Modalidad:   req.Modalidad,
		ValidoHasta: req.ValidoHasta,
		Activo:      true,
	}

	switch req.Modalidad {
	case model.ModalidadSuscripcion:
		if req.TipoSuscripcion == nil || req.MontoSuscripcion == nil || req.CantidadSuscripcion == nil {
			return nil, apierror.Validation("tipo_suscripcion, monto_suscripcion y cantidad_suscripcion son requeridos para suscripcion")
		}
		if req.MontoSuscripcion.IsNegative() || *req.CantidadSuscripcion < 0 {
			return nil, apierror.Validation("monto_suscripcion y cantidad_suscripcion no pueden ser negativos")
		}
		if err := validarMonto("monto_suscripcion", *req.MontoSuscripcion); err != nil {
			return nil, err
		}
		pref.TipoSuscripcion = req.TipoSuscripcion
		pref.MontoSuscripcion = req.MontoSuscripcion
		pref.CantidadSuscripcion = req.CantidadSuscripcion
		pref.BonificacionCantidad = CalcularBonificacion(*req.TipoSuscripcion, *req.MontoSuscripcion, *req.CantidadSuscripcion)
	case model.ModalidadContraentrega, model.ModalidadVale:
	default:
		return nil, apierror.Validation("modalidad %q desconocida", req.Modalidad)
	}

	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		cliente, err := s.clientes.FindByID(ctx, tx, clienteID)
		if err != nil {
			return storeErr(err, errClienteNoEncontrado(clienteID), "buscar cliente")
		}
		pref.Documento = cliente.Documento

		if err := s.repo.DesactivarPorDocumentoTx(ctx, tx, cliente.Documento); err != nil {
			return storeErr(err, nil, "desactivar preferencia anterior")
		}
		return storeErr(s.repo.CreateTx(ctx, tx, pref), nil, "guardar preferencia")
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("cliente_id", clienteID.String()).Str("modalidad", pref.Modalidad).
		Int("bonificacion", pref.BonificacionCantidad).Msg("preferencia guardada")
	resp := toPreferenciaResponse(pref)
	return &resp, nil
}
