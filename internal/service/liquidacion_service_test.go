package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"aguaya/internal/apierror"
	"aguaya/internal/dto"
	"aguaya/internal/infra"
	"aguaya/internal/metrics"
	"aguaya/internal/model"
	"aguaya/internal/worker"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/xuri/excelize/v2"
)

var lima = time.FixedZone("PET", -5*3600)

type LiquidacionSuite struct {
	suite.Suite
	l       *ledger
	svc     *liquidacionService
	jobs    *mockEstadoCuenta
	cliente *model.Cliente
	ctx     context.Context

	fueraAntes, inicio, pendiente, fin, pagado, fueraDespues *model.Voucher
}

func TestLiquidacion(t *testing.T) {
	suite.Run(t, new(LiquidacionSuite))
}

func (s *LiquidacionSuite) SetupTest() {
	s.ctx = context.Background()
	s.l = nuevoLedger(s.T())
	s.jobs = new(mockEstadoCuenta)
	s.svc = NewLiquidacionService(
		s.l.vouchers, s.l.clientes, s.l.distritos,
		infra.NewLocalLocker(), s.jobs,
		metrics.New(prometheus.NewRegistry()),
		LiquidacionConfig{Location: lima, TarifaDefault: dec("1.00"), HistorialLimite: 12},
	).(*liquidacionService)
	s.svc.now = fijo(time.Date(2025, 3, 15, 17, 0, 0, 0, time.UTC))

	// Callería has no district row: the fee falls back to the default.
	s.cliente = s.l.cliente(s.T(), "40506070", "Callería")
	id := s.cliente.ID
	s.fueraAntes = s.l.voucher(s.T(), id, "9.00", model.VoucherEntregado, time.Date(2025, 3, 1, 4, 59, 59, 0, time.UTC))
	s.inicio = s.l.voucher(s.T(), id, "10.00", model.VoucherEntregado, time.Date(2025, 3, 1, 5, 0, 0, 0, time.UTC))
	s.pendiente = s.l.voucher(s.T(), id, "4.00", model.VoucherPendiente, time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	s.fin = s.l.voucher(s.T(), id, "6.50", model.VoucherEntregado, time.Date(2025, 4, 1, 4, 59, 59, 0, time.UTC))
	s.pagado = s.l.voucher(s.T(), id, "3.00", model.VoucherPagado, time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC))
	s.fueraDespues = s.l.voucher(s.T(), id, "8.00", model.VoucherEntregado, time.Date(2025, 4, 1, 5, 0, 0, 0, time.UTC))
}

func (s *LiquidacionSuite) TestResumenMensualVentanaYBuckets() {
	resp, err := s.svc.ResumenMensual(s.ctx, s.cliente.ID, dto.PeriodoQuery{Mes: 3, Anio: 2025})
	s.Require().NoError(err)

	r := resp.Resumen
	s.Equal(4, r.TotalVouchers)
	s.Len(resp.Vouchers, 4)
	s.Equal(1, r.Pendientes.Cantidad)
	s.True(r.Pendientes.Total.Equal(dec("4")))
	s.Equal(2, r.Entregados.Cantidad)
	s.True(r.Entregados.Total.Equal(dec("16.50")))
	s.Equal(1, r.Pagados.Cantidad)
	s.True(r.Total.Equal(dec("23.50")))
	s.True(r.TarifaDelivery.Equal(dec("1.00")))
	s.True(r.TotalConDelivery.Equal(dec("24.50")))

	s.True(r.Periodo.Inicio.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, lima)))
	s.True(r.Periodo.Fin.Equal(time.Date(2025, 3, 31, 23, 59, 59, 0, lima)))
}

func (s *LiquidacionSuite) TestResumenMensualIdempotente() {
	q := dto.PeriodoQuery{}
	a, err := s.svc.ResumenMensual(s.ctx, s.cliente.ID, q)
	s.Require().NoError(err)
	b, err := s.svc.ResumenMensual(s.ctx, s.cliente.ID, q)
	s.Require().NoError(err)

	s.Equal(3, a.Resumen.Periodo.Mes)
	s.Equal(a.Resumen.TotalVouchers, b.Resumen.TotalVouchers)
	s.True(a.Resumen.Total.Equal(b.Resumen.Total.Decimal))
	s.True(a.Resumen.TotalConDelivery.Equal(b.Resumen.TotalConDelivery.Decimal))
	s.Require().Len(b.Vouchers, len(a.Vouchers))
	for i := range a.Vouchers {
		s.Equal(a.Vouchers[i].ID, b.Vouchers[i].ID)
		s.Equal(a.Vouchers[i].Estado, b.Vouchers[i].Estado)
	}
}

func (s *LiquidacionSuite) TestResumenMensualErrores() {
	_, err := s.svc.ResumenMensual(s.ctx, uuid.New(), dto.PeriodoQuery{})
	assertKind(s.T(), err, apierror.KindNotFound)

	_, err = s.svc.ResumenMensual(s.ctx, s.cliente.ID, dto.PeriodoQuery{Mes: 13})
	assertKind(s.T(), err, apierror.KindValidation)
}

func (s *LiquidacionSuite) TestTarifaPorDistrito() {
	yarina := &model.Distrito{Nombre: "Yarinacocha", TarifaDelivery: dec("3.50"), Activo: true}
	s.Require().NoError(s.l.distritos.Create(s.ctx, yarina))
	manantay := &model.Distrito{Nombre: "Manantay", TarifaDelivery: dec("9.00"), Activo: true}
	s.Require().NoError(s.l.distritos.Create(s.ctx, manantay))
	manantay.Activo = false
	s.Require().NoError(s.l.distritos.Update(s.ctx, manantay))

	activo := s.l.cliente(s.T(), "40506071", "Yarinacocha")
	inactivo := s.l.cliente(s.T(), "40506072", "Manantay")

	r, err := s.svc.ResumenMensual(s.ctx, activo.ID, dto.PeriodoQuery{})
	s.Require().NoError(err)
	s.True(r.Resumen.TarifaDelivery.Equal(dec("3.50")))
	s.True(r.Resumen.TotalConDelivery.Equal(dec("3.50")))

	r, err = s.svc.ResumenMensual(s.ctx, inactivo.ID, dto.PeriodoQuery{})
	s.Require().NoError(err)
	s.True(r.Resumen.TarifaDelivery.Equal(dec("1.00")))
}

func (s *LiquidacionSuite) TestProcesarPagoMensual() {
	ref := "TRX-2025-03"
	s.jobs.On("EnqueueEstadoCuenta", mock.Anything, mock.MatchedBy(func(p worker.EstadoCuentaJobPayload) bool {
		return p.ClienteID == s.cliente.ID.String() && p.Mes == 3 && p.Anio == 2025 &&
			p.Referencia == ref && p.TarifaDelivery.Equal(dec("1.00"))
	})).Return(nil).Once()

	resp, err := s.svc.ProcesarPagoMensual(s.ctx, dto.ProcesarPagoMensualRequest{
		ClienteID: s.cliente.ID.String(), MetodoPago: "transferencia", ReferenciaPago: &ref, Mes: 3, Anio: 2025,
	})
	s.Require().NoError(err)
	s.Equal(2, resp.VouchersPagados)
	s.True(resp.Subtotal.Equal(dec("16.50")))
	s.True(resp.TarifaDelivery.Equal(dec("1.00")))
	s.True(resp.Total.Equal(dec("17.50")))
	s.Equal("transferencia", resp.MetodoPago)

	for _, v := range []*model.Voucher{s.inicio, s.fin} {
		stored := s.l.recargarVoucher(s.T(), v.ID)
		s.Equal(model.VoucherPagado, stored.Estado)
		s.Require().NotNil(stored.PagadoAt)
		s.Equal("transferencia", *stored.MetodoPago)
		s.Equal(ref, *stored.ReferenciaPago)
	}
	s.Equal(model.VoucherPendiente, s.l.recargarVoucher(s.T(), s.pendiente.ID).Estado)
	s.Equal(model.VoucherEntregado, s.l.recargarVoucher(s.T(), s.fueraAntes.ID).Estado)
	s.Equal(model.VoucherEntregado, s.l.recargarVoucher(s.T(), s.fueraDespues.ID).Estado)
	s.jobs.AssertExpectations(s.T())

	// the month is settled; a second payment finds nothing
	_, err = s.svc.ProcesarPagoMensual(s.ctx, dto.ProcesarPagoMensualRequest{
		ClienteID: s.cliente.ID.String(), MetodoPago: "efectivo", Mes: 3, Anio: 2025,
	})
	assertKind(s.T(), err, apierror.KindValidation)
	s.jobs.AssertNumberOfCalls(s.T(), "EnqueueEstadoCuenta", 1)
}

func (s *LiquidacionSuite) TestProcesarPagoMensualSinVouchersNoEscribe() {
	otro := s.l.cliente(s.T(), "40506079", "Callería")
	pend := s.l.voucher(s.T(), otro.ID, "5.00", model.VoucherPendiente, time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC))

	_, err := s.svc.ProcesarPagoMensual(s.ctx, dto.ProcesarPagoMensualRequest{
		ClienteID: otro.ID.String(), MetodoPago: "efectivo", Mes: 3, Anio: 2025,
	})
	assertKind(s.T(), err, apierror.KindValidation)

	stored := s.l.recargarVoucher(s.T(), pend.ID)
	s.Equal(model.VoucherPendiente, stored.Estado)
	s.Equal(1, stored.Version)
	s.jobs.AssertNotCalled(s.T(), "EnqueueEstadoCuenta", mock.Anything, mock.Anything)
}

func (s *LiquidacionSuite) TestProcesarPagoMensualEncoladoFallidoNoRevierte() {
	s.jobs.On("EnqueueEstadoCuenta", mock.Anything, mock.Anything).Return(assertErr("redis caído"))

	resp, err := s.svc.ProcesarPagoMensual(s.ctx, dto.ProcesarPagoMensualRequest{
		ClienteID: s.cliente.ID.String(), MetodoPago: "efectivo", Mes: 3, Anio: 2025,
	})
	s.Require().NoError(err)
	s.Equal(2, resp.VouchersPagados)
	s.Equal(model.VoucherPagado, s.l.recargarVoucher(s.T(), s.inicio.ID).Estado)
}

func (s *LiquidacionSuite) TestProcesarPagoMensualErrores() {
	_, err := s.svc.ProcesarPagoMensual(s.ctx, dto.ProcesarPagoMensualRequest{
		ClienteID: uuid.NewString(), MetodoPago: "efectivo", Mes: 3, Anio: 2025,
	})
	assertKind(s.T(), err, apierror.KindNotFound)

	_, err = s.svc.ProcesarPagoMensual(s.ctx, dto.ProcesarPagoMensualRequest{ClienteID: "x", MetodoPago: "efectivo"})
	assertKind(s.T(), err, apierror.KindValidation)

	locker := new(mockLocker)
	locker.On("Obtain", mock.Anything, mock.Anything).Return(infra.ErrLockNotObtained)
	s.svc.locker = locker
	_, err = s.svc.ProcesarPagoMensual(s.ctx, dto.ProcesarPagoMensualRequest{
		ClienteID: s.cliente.ID.String(), MetodoPago: "efectivo", Mes: 3, Anio: 2025,
	})
	assertKind(s.T(), err, apierror.KindConflict)
	s.Equal(model.VoucherEntregado, s.l.recargarVoucher(s.T(), s.inicio.ID).Estado)
}

func (s *LiquidacionSuite) TestProcesarPagoMensualFalloAlMarcarRevierte() {
	s.svc.vouchers = &vouchersQueFallan{VoucherRepository: s.l.vouchers}

	_, err := s.svc.ProcesarPagoMensual(s.ctx, dto.ProcesarPagoMensualRequest{
		ClienteID: s.cliente.ID.String(), MetodoPago: "efectivo", Mes: 3, Anio: 2025,
	})
	assertKind(s.T(), err, apierror.KindPersistence)
	s.ErrorIs(err, errDiscoLleno)

	for _, v := range []*model.Voucher{s.inicio, s.fin} {
		stored := s.l.recargarVoucher(s.T(), v.ID)
		s.Equal(model.VoucherEntregado, stored.Estado)
		s.Nil(stored.PagadoAt)
		s.Nil(stored.MetodoPago)
		s.Equal(1, stored.Version)
	}
	s.jobs.AssertNotCalled(s.T(), "EnqueueEstadoCuenta", mock.Anything, mock.Anything)
}

func (s *LiquidacionSuite) pagadoEn(clienteID uuid.UUID, total string, at time.Time) {
	at = at.UTC()
	v := &model.Voucher{
		ClienteID:      clienteID,
		ProductoID:     "bidon-20l",
		Cantidad:       1,
		PrecioUnitario: dec(total),
		Total:          dec(total),
		Estado:         model.VoucherPagado,
		PagadoAt:       &at,
		Version:        1,
		CreatedAt:      at.Add(-48 * time.Hour),
	}
	s.Require().NoError(s.l.vouchers.CreateTx(s.ctx, nil, v))
}

func (s *LiquidacionSuite) TestHistorialPagos() {
	c := s.l.cliente(s.T(), "40506080", "")
	s.pagadoEn(c.ID, "5", time.Date(2024, 12, 20, 15, 0, 0, 0, time.UTC))
	s.pagadoEn(c.ID, "10", time.Date(2025, 1, 10, 15, 0, 0, 0, time.UTC))
	// 2025-01-31 22:00 in Lima
	s.pagadoEn(c.ID, "7", time.Date(2025, 2, 1, 3, 0, 0, 0, time.UTC))
	s.pagadoEn(c.ID, "8", time.Date(2025, 2, 14, 15, 0, 0, 0, time.UTC))

	todos, err := s.svc.HistorialPagos(s.ctx, c.ID, 0)
	s.Require().NoError(err)
	s.Require().Len(todos, 3)
	s.Equal([]int{2, 1, 12}, []int{todos[0].Mes, todos[1].Mes, todos[2].Mes})
	s.Equal(2024, todos[2].Anio)

	enero := todos[1]
	s.Equal(2, enero.Vouchers)
	s.True(enero.Subtotal.Equal(dec("17")))
	s.True(enero.TarifaDelivery.Equal(dec("1.00")))
	s.True(enero.Total.Equal(dec("18")))
	s.True(enero.UltimoPago.Equal(time.Date(2025, 2, 1, 3, 0, 0, 0, time.UTC)))

	dos, err := s.svc.HistorialPagos(s.ctx, c.ID, 2)
	s.Require().NoError(err)
	s.Len(dos, 2)
	s.Equal(2025, dos[0].Anio)
	s.Equal(2, dos[0].Mes)

	_, err = s.svc.HistorialPagos(s.ctx, uuid.New(), 5)
	assertKind(s.T(), err, apierror.KindNotFound)
}

func (s *LiquidacionSuite) TestExportarHistorial() {
	c := s.l.cliente(s.T(), "40506081", "")
	s.pagadoEn(c.ID, "12.50", time.Date(2025, 2, 14, 15, 0, 0, 0, time.UTC))

	data, err := s.svc.ExportarHistorial(s.ctx, c.ID, 0)
	s.Require().NoError(err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	s.Require().NoError(err)
	defer f.Close()
	periodo, err := f.GetCellValue("Historial", "A4")
	s.Require().NoError(err)
	s.Equal("2025-02", periodo)
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
