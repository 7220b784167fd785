package worker

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"aguaya/internal/dto"
	"aguaya/internal/metrics"
	"aguaya/internal/model"
	"aguaya/internal/repository"
	"aguaya/internal/testutil"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSender struct{ mock.Mock }

func (m *mockSender) SendEstadoCuenta(to, subject, body, pdfPath string) error {
	return m.Called(to, subject, body, pdfPath).Error(0)
}

type mockEnqueuer struct{ mock.Mock }

func (m *mockEnqueuer) EnqueueEmail(ctx context.Context, p EmailJobPayload) error {
	return m.Called(ctx, p).Error(0)
}

func TestEmailWorkerSends(t *testing.T) {
	sender := new(mockSender)
	sender.On("SendEstadoCuenta", "rosa@example.com", "asunto", "cuerpo", "/tmp/x.pdf").Return(nil)

	raw, _ := json.Marshal(EmailJobPayload{ToEmail: "rosa@example.com", Subject: "asunto", Body: "cuerpo", PDFPath: "/tmp/x.pdf"})
	require.NoError(t, NewEmailWorker(sender).Process(context.Background(), raw))
	sender.AssertExpectations(t)
}

func TestEmailWorkerErrors(t *testing.T) {
	sender := new(mockSender)
	w := NewEmailWorker(sender)

	err := w.Process(context.Background(), json.RawMessage(`{`))
	assert.ErrorIs(t, err, ErrPermanent)

	// empty recipient is skipped without calling SMTP
	assert.NoError(t, w.Process(context.Background(), json.RawMessage(`{"to_email":""}`)))

	sender.On("SendEstadoCuenta", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))
	err = w.Process(context.Background(), json.RawMessage(`{"to_email":"a@b.pe"}`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPermanent)
}

func TestEstadoCuentaWorkerRendersAndQueuesEmail(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	email := "rosa@example.com"
	cliente := &model.Cliente{Documento: "40000001", Nombre: "Rosa", Email: &email, Distrito: "Callería", Activo: true}
	require.NoError(t, db.Create(cliente).Error)

	pagado := time.Date(2026, 3, 20, 15, 0, 0, 0, time.UTC)
	v := &model.Voucher{
		ClienteID: cliente.ID, ProductoID: "bidon-20l", Cantidad: 2,
		PrecioUnitario: decimal.NewFromInt(10), Total: decimal.NewFromInt(20),
		Estado: model.VoucherPagado, PagadoAt: &pagado, Version: 1,
		CreatedAt: time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(v).Error)

	enq := new(mockEnqueuer)
	enq.On("EnqueueEmail", mock.Anything, mock.MatchedBy(func(p EmailJobPayload) bool {
		return p.ToEmail == email && p.PDFPath != ""
	})).Return(nil)

	dir := t.TempDir()
	w := NewEstadoCuentaWorker(repository.NewClienteRepository(db), repository.NewVoucherRepository(db), enq, dir, "Agua Ya")
	raw, _ := json.Marshal(EstadoCuentaJobPayload{
		ClienteID: cliente.ID.String(), Mes: 3, Anio: 2026,
		Desde: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), Hasta: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		TarifaDelivery: decimal.NewFromInt(1), MetodoPago: "efectivo", PagadoAt: pagado,
	})
	require.NoError(t, w.Process(ctx, raw))
	enq.AssertExpectations(t)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestEstadoCuentaWorkerUnknownClientIsPermanent(t *testing.T) {
	db := testutil.NewDB(t)
	w := NewEstadoCuentaWorker(repository.NewClienteRepository(db), repository.NewVoucherRepository(db), new(mockEnqueuer), t.TempDir(), "Agua Ya")

	err := w.Process(context.Background(), json.RawMessage(`{"cliente_id":"7b0c7c36-9f3e-4d4f-9d55-3d0f5b0a0c11"}`))
	assert.ErrorIs(t, err, ErrPermanent)
}

type fakeAlertas struct{ resp *dto.AlertasAdminResponse }

func (f fakeAlertas) AlertasAdmin(context.Context) (*dto.AlertasAdminResponse, error) {
	return f.resp, nil
}

func TestSweepAlertasPublishesGauges(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	src := fakeAlertas{resp: &dto.AlertasAdminResponse{
		ValesVencidos:  []dto.AlertaVale{{ValeID: "a"}, {ValeID: "b"}},
		ValesPorVencer: []dto.AlertaVale{{ValeID: "c"}},
		ResumenVales:   dto.ResumenValesActivos{Cantidad: 3},
	}}
	assert.NotPanics(t, func() {
		sweepAlertas(context.Background(), AlertasCronConfig{Source: src, Metrics: m})
	})
}

func TestDispatcherWithoutRedisDropsJobs(t *testing.T) {
	d := NewDispatcher(nil)
	assert.NoError(t, d.EnqueueEmail(context.Background(), EmailJobPayload{ToEmail: "x@y.pe"}))
}
