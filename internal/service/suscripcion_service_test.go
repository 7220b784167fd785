package service

import (
	"context"
	"testing"
	"time"

	"aguaya/internal/apierror"
	"aguaya/internal/dto"
	"aguaya/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type SuscripcionSuite struct {
	suite.Suite
	l       *ledger
	svc     *suscripcionService
	cliente *model.Cliente
	plan    *dto.PlanResponse
	ctx     context.Context
	hoy     time.Time
}

func TestSuscripciones(t *testing.T) {
	suite.Run(t, new(SuscripcionSuite))
}

func (s *SuscripcionSuite) SetupTest() {
	s.ctx = context.Background()
	s.hoy = time.Date(2025, 5, 2, 9, 0, 0, 0, time.UTC)
	s.l = nuevoLedger(s.T())
	s.svc = NewSuscripcionService(s.l.suscripciones, s.l.clientes).(*suscripcionService)
	s.svc.now = fijo(s.hoy)
	s.cliente = s.l.cliente(s.T(), "80808080", "")

	maxDiaria := 3
	plan, err := s.svc.CrearPlan(s.ctx, dto.CrearPlanRequest{
		Nombre: "Básico 4", Tipo: model.TipoBasico, TotalBotellas: 4, BotellasBono: 1,
		PrecioMensual: dec("40"), PrecioPorBotella: dec("10"), MaxEntregaDiaria: &maxDiaria,
	})
	s.Require().NoError(err)
	s.plan = plan
}

func (s *SuscripcionSuite) suscribir() uuid.UUID {
	sus, err := s.svc.Suscribir(s.ctx, dto.SuscribirRequest{ClienteID: s.cliente.ID.String(), PlanID: s.plan.ID})
	s.Require().NoError(err)
	return uuid.MustParse(sus.ID)
}

func (s *SuscripcionSuite) TestSuscribir() {
	sus, err := s.svc.Suscribir(s.ctx, dto.SuscribirRequest{ClienteID: s.cliente.ID.String(), PlanID: s.plan.ID})
	s.Require().NoError(err)
	s.Equal(5, sus.BotellasRestantes)
	s.Equal(model.SuscripcionActiva, sus.Estado)
	s.True(sus.FechaFin.Equal(s.hoy.AddDate(0, 1, 0)))

	_, err = s.svc.Suscribir(s.ctx, dto.SuscribirRequest{ClienteID: s.cliente.ID.String(), PlanID: s.plan.ID})
	assertKind(s.T(), err, apierror.KindConflict)

	_, err = s.svc.Suscribir(s.ctx, dto.SuscribirRequest{ClienteID: uuid.NewString(), PlanID: s.plan.ID})
	assertKind(s.T(), err, apierror.KindNotFound)

	_, err = s.svc.Suscribir(s.ctx, dto.SuscribirRequest{ClienteID: s.cliente.ID.String(), PlanID: uuid.NewString()})
	assertKind(s.T(), err, apierror.KindNotFound)
}

func (s *SuscripcionSuite) TestSuscribirPlanInactivo() {
	s.Require().NoError(s.l.db.Model(&model.PlanSuscripcion{}).
		Where("id = ?", s.plan.ID).Update("activo", false).Error)
	_, err := s.svc.Suscribir(s.ctx, dto.SuscribirRequest{ClienteID: s.cliente.ID.String(), PlanID: s.plan.ID})
	assertKind(s.T(), err, apierror.KindConflict)

	planes, err := s.svc.ListarPlanes(s.ctx, true)
	s.Require().NoError(err)
	s.Empty(planes)
}

func (s *SuscripcionSuite) TestRegistrarEntregaHastaCompletar() {
	id := s.suscribir()

	_, err := s.svc.RegistrarEntrega(s.ctx, id, 4)
	assertKind(s.T(), err, apierror.KindValidation)

	sus, err := s.svc.RegistrarEntrega(s.ctx, id, 3)
	s.Require().NoError(err)
	s.Equal(3, sus.BotellasEntregadas)
	s.Equal(2, sus.BotellasRestantes)

	s.svc.now = fijo(s.hoy.Add(24 * time.Hour))
	_, err = s.svc.RegistrarEntrega(s.ctx, id, 3)
	s.ErrorIs(err, apierror.ErrInsufficientBalance)

	sus, err = s.svc.RegistrarEntrega(s.ctx, id, 2)
	s.Require().NoError(err)
	s.Equal(0, sus.BotellasRestantes)
	s.Equal(model.SuscripcionCompletada, sus.Estado)

	_, err = s.svc.RegistrarEntrega(s.ctx, id, 1)
	assertKind(s.T(), err, apierror.KindConflict)

	_, err = s.svc.RegistrarEntrega(s.ctx, id, 0)
	assertKind(s.T(), err, apierror.KindValidation)
}

func (s *SuscripcionSuite) TestRegistrarEntregaTopeDiarioAcumulado() {
	id := s.suscribir()

	_, err := s.svc.RegistrarEntrega(s.ctx, id, 2)
	s.Require().NoError(err)

	s.svc.now = fijo(s.hoy.Add(3 * time.Hour))
	_, err = s.svc.RegistrarEntrega(s.ctx, id, 2)
	assertKind(s.T(), err, apierror.KindValidation)

	sus, err := s.svc.RegistrarEntrega(s.ctx, id, 1)
	s.Require().NoError(err)
	s.Equal(3, sus.BotellasEntregadas)

	_, err = s.svc.RegistrarEntrega(s.ctx, id, 1)
	assertKind(s.T(), err, apierror.KindValidation)

	// the counter resets on the next calendar day
	s.svc.now = fijo(s.hoy.Add(24 * time.Hour))
	sus, err = s.svc.RegistrarEntrega(s.ctx, id, 2)
	s.Require().NoError(err)
	s.Equal(5, sus.BotellasEntregadas)
	s.Equal(0, sus.BotellasRestantes)

	var fila model.Suscripcion
	s.Require().NoError(s.l.db.First(&fila, "id = ?", id).Error)
	s.Equal(2, fila.EntregadasDia)
	s.Require().NotNil(fila.UltimaEntregaAt)
}

func (s *SuscripcionSuite) TestRegistrarEntregaVencida() {
	id := s.suscribir()
	s.svc.now = fijo(s.hoy.AddDate(0, 1, 1))

	_, err := s.svc.RegistrarEntrega(s.ctx, id, 1)
	assertKind(s.T(), err, apierror.KindConflict)
}

func (s *SuscripcionSuite) TestPausarReanudarCancelar() {
	id := s.suscribir()

	sus, err := s.svc.Pausar(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(model.SuscripcionPausada, sus.Estado)

	_, err = s.svc.RegistrarEntrega(s.ctx, id, 1)
	assertKind(s.T(), err, apierror.KindConflict)
	_, err = s.svc.Pausar(s.ctx, id)
	assertKind(s.T(), err, apierror.KindConflict)

	// a paused subscription still blocks a new one
	_, err = s.svc.Suscribir(s.ctx, dto.SuscribirRequest{ClienteID: s.cliente.ID.String(), PlanID: s.plan.ID})
	assertKind(s.T(), err, apierror.KindConflict)

	sus, err = s.svc.Reanudar(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(model.SuscripcionActiva, sus.Estado)

	sus, err = s.svc.Cancelar(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(model.SuscripcionCancelada, sus.Estado)

	_, err = s.svc.Cancelar(s.ctx, id)
	assertKind(s.T(), err, apierror.KindConflict)
	_, err = s.svc.Reanudar(s.ctx, id)
	assertKind(s.T(), err, apierror.KindConflict)

	_, err = s.svc.Suscribir(s.ctx, dto.SuscribirRequest{ClienteID: s.cliente.ID.String(), PlanID: s.plan.ID})
	s.NoError(err)

	lista, err := s.svc.ListarPorCliente(s.ctx, s.cliente.ID)
	s.Require().NoError(err)
	s.Len(lista, 2)

	_, err = s.svc.ObtenerPorID(s.ctx, uuid.New())
	assertKind(s.T(), err, apierror.KindNotFound)
}

func (s *SuscripcionSuite) TestCrearPlanValidaciones() {
	_, err := s.svc.CrearPlan(s.ctx, dto.CrearPlanRequest{Nombre: "x", Tipo: model.TipoVIP, TotalBotellas: 0})
	assertKind(s.T(), err, apierror.KindValidation)

	_, err = s.svc.CrearPlan(s.ctx, dto.CrearPlanRequest{Nombre: "x", Tipo: model.TipoVIP, TotalBotellas: 10, BotellasBono: -1})
	assertKind(s.T(), err, apierror.KindValidation)

	_, err = s.svc.CrearPlan(s.ctx, dto.CrearPlanRequest{
		Nombre: "x", Tipo: model.TipoVIP, TotalBotellas: 10, PrecioMensual: dec("80.333"), PrecioPorBotella: dec("8"),
	})
	assertKind(s.T(), err, apierror.KindValidation)
}
