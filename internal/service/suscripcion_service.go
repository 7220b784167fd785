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
	"gorm.io/gorm"
)

type SuscripcionService interface {
	CrearPlan(ctx context.Context, req dto.CrearPlanRequest) (*dto.PlanResponse, error)
	ListarPlanes(ctx context.Context, soloActivos bool) ([]dto.PlanResponse, error)
	Suscribir(ctx context.Context, req dto.SuscribirRequest) (*dto.SuscripcionResponse, error)
	RegistrarEntrega(ctx context.Context, id uuid.UUID, cantidad int) (*dto.SuscripcionResponse, error)
	Pausar(ctx context.Context, id uuid.UUID) (*dto.SuscripcionResponse, error)
	Reanudar(ctx context.Context, id uuid.UUID) (*dto.SuscripcionResponse, error)
	Cancelar(ctx context.Context, id uuid.UUID) (*dto.SuscripcionResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.SuscripcionResponse, error)
	ListarPorCliente(ctx context.Context, clienteID uuid.UUID) ([]dto.SuscripcionResponse, error)
}

type suscripcionService struct {
	repo     repository.SuscripcionRepository
	clientes repository.ClienteRepository
	now      func() time.Time
}

func NewSuscripcionService(repo repository.SuscripcionRepository, clientes repository.ClienteRepository) SuscripcionService {
	return &suscripcionService{repo: repo, clientes: clientes, now: time.Now}
}

func errSuscripcionNoEncontrada(id uuid.UUID) *apierror.Error {
	return apierror.NotFound("suscripción %s no encontrada", id)
}

// ── Planes ───────────────────────────────────────────────────────────────────

func (s *suscripcionService) CrearPlan(ctx context.Context, req dto.CrearPlanRequest) (*dto.PlanResponse, error) {
	if req.TotalBotellas <= 0 {
		return nil, apierror.Validation("total_botellas debe ser mayor a 0")
	}
	if req.BotellasBono < 0 {
		return nil, apierror.Validation("botellas_bono no puede ser negativo")
	}
	if req.MaxEntregaDiaria != nil && *req.MaxEntregaDiaria <= 0 {
		return nil, apierror.Validation("max_entrega_diaria debe ser mayor a 0")
	}
	if err := validarMonto("precio_mensual", req.PrecioMensual); err != nil {
		return nil, err
	}
	if err := validarMonto("precio_por_botella", req.PrecioPorBotella); err != nil {
		return nil, err
	}

	plan := &model.PlanSuscripcion{
		Nombre:           req.Nombre,
		Tipo:             req.Tipo,
		TotalBotellas:    req.TotalBotellas,
		BotellasBono:     req.BotellasBono,
		PrecioMensual:    req.PrecioMensual,
		PrecioPorBotella: req.PrecioPorBotella,
		MaxEntregaDiaria: req.MaxEntregaDiaria,
		Activo:           true,
	}
	if err := s.repo.CreatePlan(ctx, plan); err != nil {
		return nil, storeErr(err, nil, "crear plan")
	}
	resp := toPlanResponse(plan)
	return &resp, nil
}

func (s *suscripcionService) ListarPlanes(ctx context.Context, soloActivos bool) ([]dto.PlanResponse, error) {
	planes, err := s.repo.ListPlanes(ctx, soloActivos)
	if err != nil {
		return nil, storeErr(err, nil, "listar planes")
	}
	resp := make([]dto.PlanResponse, len(planes))
	for i := range planes {
		resp[i] = toPlanResponse(&planes[i])
	}
	return resp, nil
}

// ── Suscripciones ────────────────────────────────────────────────────────────

// Suscribir opens a one-month period. A client holds at most one active or
// paused subscription at a time.
func (s *suscripcionService) Suscribir(ctx context.Context, req dto.SuscribirRequest) (*dto.SuscripcionResponse, error) {
	clienteID, err := parseID("cliente_id", req.ClienteID)
	if err != nil {
		return nil, err
	}
	planID, err := parseID("plan_id", req.PlanID)
	if err != nil {
		return nil, err
	}

	inicio := s.now().UTC()
	if req.FechaInicio != nil {
		inicio = req.FechaInicio.UTC()
	}

	var sus *model.Suscripcion
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if _, err := s.clientes.FindByID(ctx, tx, clienteID); err != nil {
			return storeErr(err, errClienteNoEncontrado(clienteID), "buscar cliente")
		}
		plan, err := s.repo.FindPlanByID(ctx, tx, planID)
		if err != nil {
			return storeErr(err, apierror.NotFound("plan %s no encontrado", planID), "buscar plan")
		}
		if !plan.Activo {
			return apierror.Conflict("el plan %s no está activo", plan.Nombre)
		}

		vigentes, err := s.repo.ListActivasPorCliente(ctx, tx, clienteID)
		if err != nil {
			return storeErr(err, nil, "listar suscripciones")
		}
		if len(vigentes) > 0 {
			return apierror.Conflict("el cliente ya tiene una suscripción vigente")
		}

		sus = &model.Suscripcion{
			ClienteID:         clienteID,
			PlanID:            plan.ID,
			BotellasRestantes: model.BotellasRestantes(plan, 0),
			FechaInicio:       inicio,
			FechaFin:          inicio.AddDate(0, 1, 0),
			Estado:            model.SuscripcionActiva,
			Version:           1,
		}
		return storeErr(s.repo.CreateTx(ctx, tx, sus), nil, "crear suscripción")
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("suscripcion_id", sus.ID.String()).Str("cliente_id", clienteID.String()).
		Int("botellas", sus.BotellasRestantes).Msg("suscripción creada")
	resp := toSuscripcionResponse(sus)
	return &resp, nil
}

func (s *suscripcionService) RegistrarEntrega(ctx context.Context, id uuid.UUID, cantidad int) (*dto.SuscripcionResponse, error) {
	if cantidad <= 0 {
		return nil, apierror.Validation("cantidad debe ser mayor a 0")
	}

	return s.mutar(ctx, id, func(sus *model.Suscripcion, plan *model.PlanSuscripcion) error {
		if sus.Estado != model.SuscripcionActiva {
			return apierror.Conflict("la suscripción no está activa (estado: %s)", sus.Estado)
		}
		if s.now().After(sus.FechaFin) {
			return apierror.Conflict("la suscripción venció el %s", sus.FechaFin.Format("2006-01-02"))
		}
		ahora := s.now()
		delDia := 0
		if sus.UltimaEntregaAt != nil && mismoDia(*sus.UltimaEntregaAt, ahora) {
			delDia = sus.EntregadasDia
		}
		if plan.MaxEntregaDiaria != nil && delDia+cantidad > *plan.MaxEntregaDiaria {
			return apierror.Validation("cantidad supera la entrega diaria máxima (%d, ya entregadas hoy %d)",
				*plan.MaxEntregaDiaria, delDia)
		}
		if cantidad > sus.BotellasRestantes {
			return &apierror.InsufficientBalanceError{
				Disponible: decimalInt(sus.BotellasRestantes),
				Solicitado: decimalInt(cantidad),
				Msg:        "botellas insuficientes en la suscripción",
			}
		}

		sus.BotellasEntregadas += cantidad
		sus.EntregadasDia = delDia + cantidad
		sus.UltimaEntregaAt = &ahora
		sus.BotellasRestantes = model.BotellasRestantes(plan, sus.BotellasEntregadas)
		if sus.BotellasRestantes == 0 {
			sus.Estado = model.SuscripcionCompletada
		}
		return nil
	})
}

func (s *suscripcionService) Pausar(ctx context.Context, id uuid.UUID) (*dto.SuscripcionResponse, error) {
	return s.cambiarEstado(ctx, id, model.SuscripcionActiva, model.SuscripcionPausada)
}

func (s *suscripcionService) Reanudar(ctx context.Context, id uuid.UUID) (*dto.SuscripcionResponse, error) {
	return s.cambiarEstado(ctx, id, model.SuscripcionPausada, model.SuscripcionActiva)
}

func (s *suscripcionService) Cancelar(ctx context.Context, id uuid.UUID) (*dto.SuscripcionResponse, error) {
	return s.mutar(ctx, id, func(sus *model.Suscripcion, _ *model.PlanSuscripcion) error {
		if sus.Estado != model.SuscripcionActiva && sus.Estado != model.SuscripcionPausada {
			return apierror.Conflict("no se puede cancelar una suscripción %s", sus.Estado)
		}
		sus.Estado = model.SuscripcionCancelada
		return nil
	})
}

func (s *suscripcionService) cambiarEstado(ctx context.Context, id uuid.UUID, desde, hacia string) (*dto.SuscripcionResponse, error) {
	return s.mutar(ctx, id, func(sus *model.Suscripcion, _ *model.PlanSuscripcion) error {
		if sus.Estado != desde {
			return apierror.Conflict("la suscripción está %s, se esperaba %s", sus.Estado, desde)
		}
		sus.Estado = hacia
		return nil
	})
}

// mismoDia compares calendar days in b's location.
func mismoDia(a, b time.Time) bool {
	a = a.In(b.Location())
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// mutar loads the subscription and its plan under lock, applies fn and
// persists the result with a version check.
func (s *suscripcionService) mutar(ctx context.Context, id uuid.UUID, fn func(*model.Suscripcion, *model.PlanSuscripcion) error) (*dto.SuscripcionResponse, error) {
	var sus *model.Suscripcion
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		actual, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return storeErr(err, errSuscripcionNoEncontrada(id), "buscar suscripción")
		}
		plan, err := s.repo.FindPlanByID(ctx, tx, actual.PlanID)
		if err != nil {
			return storeErr(err, apierror.NotFound("plan %s no encontrado", actual.PlanID), "buscar plan")
		}
		if err := fn(actual, plan); err != nil {
			return err
		}
		if err := s.repo.UpdateTx(ctx, tx, actual); err != nil {
			return storeErr(err, nil, "actualizar suscripción")
		}
		sus = actual
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("suscripcion_id", id.String()).Str("estado", sus.Estado).
		Int("restantes", sus.BotellasRestantes).Msg("suscripción actualizada")
	resp := toSuscripcionResponse(sus)
	return &resp, nil
}

func (s *suscripcionService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.SuscripcionResponse, error) {
	sus, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, storeErr(err, errSuscripcionNoEncontrada(id), "buscar suscripción")
	}
	resp := toSuscripcionResponse(sus)
	return &resp, nil
}

func (s *suscripcionService) ListarPorCliente(ctx context.Context, clienteID uuid.UUID) ([]dto.SuscripcionResponse, error) {
	subs, err := s.repo.ListPorCliente(ctx, clienteID)
	if err != nil {
		return nil, storeErr(err, nil, "listar suscripciones")
	}
	resp := make([]dto.SuscripcionResponse, len(subs))
	for i := range subs {
		resp[i] = toSuscripcionResponse(&subs[i])
	}
	return resp, nil
}
