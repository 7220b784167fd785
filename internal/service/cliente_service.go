package service

import (
	"context"
	"errors"

	"aguaya/internal/apierror"
	"aguaya/internal/dto"
	"aguaya/internal/model"
	"aguaya/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type ClienteService interface {
	Crear(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarClienteRequest) (*dto.ClienteResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error)
	Listar(ctx context.Context, soloActivos bool) ([]dto.ClienteResponse, error)
	GuardarDistrito(ctx context.Context, req dto.GuardarDistritoRequest) (*dto.DistritoResponse, error)
	ListarDistritos(ctx context.Context) ([]dto.DistritoResponse, error)
}

type clienteService struct {
	repo      repository.ClienteRepository
	distritos repository.DistritoRepository
}

func NewClienteService(repo repository.ClienteRepository, distritos repository.DistritoRepository) ClienteService {
	return &clienteService{repo: repo, distritos: distritos}
}

func (s *clienteService) Crear(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error) {
	if _, err := s.repo.FindByDocumento(ctx, req.Documento); err == nil {
		return nil, apierror.Conflict("ya existe un cliente con documento %s", req.Documento)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.Persistence("buscar cliente", err)
	}

	c := &model.Cliente{
		Documento: req.Documento,
		Nombre:    req.Nombre,
		Telefono:  req.Telefono,
		Email:     req.Email,
		Direccion: req.Direccion,
		Distrito:  req.Distrito,
		Activo:    true,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, storeErr(err, nil, "crear cliente")
	}
	log.Info().Str("cliente_id", c.ID.String()).Str("documento", c.Documento).Msg("cliente creado")
	resp := toClienteResponse(c)
	return &resp, nil
}

// Actualizar never deletes: activo=false is how a client is retired.
func (s *clienteService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarClienteRequest) (*dto.ClienteResponse, error) {
	c, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, storeErr(err, errClienteNoEncontrado(id), "buscar cliente")
	}
	if req.Nombre != nil {
		c.Nombre = *req.Nombre
	}
	if req.Telefono != nil {
		c.Telefono = req.Telefono
	}
	if req.Email != nil {
		c.Email = req.Email
	}
	if req.Direccion != nil {
		c.Direccion = req.Direccion
	}
	if req.Distrito != nil {
		c.Distrito = *req.Distrito
	}
	if req.Activo != nil {
		c.Activo = *req.Activo
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, storeErr(err, nil, "actualizar cliente")
	}
	resp := toClienteResponse(c)
	return &resp, nil
}

func (s *clienteService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error) {
	c, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, storeErr(err, errClienteNoEncontrado(id), "buscar cliente")
	}
	resp := toClienteResponse(c)
	return &resp, nil
}

func (s *clienteService) Listar(ctx context.Context, soloActivos bool) ([]dto.ClienteResponse, error) {
	clientes, err := s.repo.List(ctx, soloActivos)
	if err != nil {
		return nil, storeErr(err, nil, "listar clientes")
	}
	resp := make([]dto.ClienteResponse, len(clientes))
	for i := range clientes {
		resp[i] = toClienteResponse(&clientes[i])
	}
	return resp, nil
}

// GuardarDistrito upserts by name.
func (s *clienteService) GuardarDistrito(ctx context.Context, req dto.GuardarDistritoRequest) (*dto.DistritoResponse, error) {
	if req.TarifaDelivery.IsNegative() {
		return nil, apierror.Validation("tarifa_delivery no puede ser negativa")
	}
	if err := validarMonto("tarifa_delivery", req.TarifaDelivery); err != nil {
		return nil, err
	}

	d, err := s.distritos.FindByNombre(ctx, req.Nombre)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		d = &model.Distrito{Nombre: req.Nombre, TarifaDelivery: req.TarifaDelivery, Activo: true}
		if err := s.distritos.Create(ctx, d); err != nil {
			return nil, storeErr(err, nil, "crear distrito")
		}
		if req.Activo != nil && !*req.Activo {
			d.Activo = false
			if err := s.distritos.Update(ctx, d); err != nil {
				return nil, storeErr(err, nil, "actualizar distrito")
			}
		}
	case err != nil:
		return nil, apierror.Persistence("buscar distrito", err)
	default:
		d.TarifaDelivery = req.TarifaDelivery
		if req.Activo != nil {
			d.Activo = *req.Activo
		}
		if err := s.distritos.Update(ctx, d); err != nil {
			return nil, storeErr(err, nil, "actualizar distrito")
		}
	}

	resp := toDistritoResponse(d)
	return &resp, nil
}

func (s *clienteService) ListarDistritos(ctx context.Context) ([]dto.DistritoResponse, error) {
	distritos, err := s.distritos.List(ctx)
	if err != nil {
		return nil, storeErr(err, nil, "listar distritos")
	}
	resp := make([]dto.DistritoResponse, len(distritos))
	for i := range distritos {
		resp[i] = toDistritoResponse(&distritos[i])
	}
	return resp, nil
}
