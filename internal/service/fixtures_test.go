package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"aguaya/internal/apierror"
	"aguaya/internal/model"
	"aguaya/internal/repository"
	"aguaya/internal/testutil"
	"aguaya/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ledger wires the real repositories over a private sqlite database.
type ledger struct {
	db            *gorm.DB
	clientes      repository.ClienteRepository
	distritos     repository.DistritoRepository
	vales         repository.ValeRepository
	vouchers      repository.VoucherRepository
	preferencias  repository.PreferenciaRepository
	suscripciones repository.SuscripcionRepository
	usuarios      repository.UsuarioRepository
}

func nuevoLedger(t testing.TB) *ledger {
	db := testutil.NewDB(t)
	return &ledger{
		db:            db,
		clientes:      repository.NewClienteRepository(db),
		distritos:     repository.NewDistritoRepository(db),
		vales:         repository.NewValeRepository(db),
		vouchers:      repository.NewVoucherRepository(db),
		preferencias:  repository.NewPreferenciaRepository(db),
		suscripciones: repository.NewSuscripcionRepository(db),
		usuarios:      repository.NewUsuarioRepository(db),
	}
}

func (l *ledger) cliente(t testing.TB, documento, distrito string) *model.Cliente {
	t.Helper()
	c := &model.Cliente{Documento: documento, Nombre: "Cliente " + documento, Distrito: distrito, Activo: true}
	require.NoError(t, l.clientes.Create(context.Background(), c))
	return c
}

func (l *ledger) vale(t testing.TB, clienteID uuid.UUID, monto string, creado time.Time) *model.Vale {
	t.Helper()
	v := &model.Vale{
		ClienteID:  &clienteID,
		Monto:      dec(monto),
		MontoUsado: decimal.Zero,
		Estado:     model.ValeActivo,
		Version:    1,
		CreatedAt:  creado.UTC(),
	}
	model.NormalizarVale(v)
	require.NoError(t, l.vales.CreateTx(context.Background(), nil, v))
	return v
}

func (l *ledger) voucher(t testing.TB, clienteID uuid.UUID, total, estado string, creado time.Time) *model.Voucher {
	t.Helper()
	v := &model.Voucher{
		ClienteID:      clienteID,
		ProductoID:     "bidon-20l",
		Cantidad:       1,
		PrecioUnitario: dec(total),
		Total:          dec(total),
		Estado:         estado,
		Version:        1,
		CreatedAt:      creado.UTC(),
	}
	require.NoError(t, l.vouchers.CreateTx(context.Background(), nil, v))
	return v
}

func (l *ledger) recargarVale(t testing.TB, id uuid.UUID) *model.Vale {
	t.Helper()
	v, err := l.vales.FindByID(context.Background(), nil, id)
	require.NoError(t, err)
	return v
}

func (l *ledger) recargarVoucher(t testing.TB, id uuid.UUID) *model.Voucher {
	t.Helper()
	v, err := l.vouchers.FindByID(context.Background(), nil, id)
	require.NoError(t, err)
	return v
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func fijo(t time.Time) func() time.Time { return func() time.Time { return t } }

// assertInvariantesVale checks the derived fields of a stored vale.
func assertInvariantesVale(t testing.TB, v *model.Vale) {
	t.Helper()
	assert.True(t, v.MontoRestante.Equal(v.Monto.Sub(v.MontoUsado)),
		"restante %s != monto %s - usado %s", v.MontoRestante, v.Monto, v.MontoUsado)
	assert.Equal(t, !v.MontoRestante.IsPositive(), v.Estado == model.ValeUsado, "estado %s con restante %s", v.Estado, v.MontoRestante)
}

type mockLocker struct{ mock.Mock }

func (m *mockLocker) Obtain(ctx context.Context, key string) (func(), error) {
	args := m.Called(ctx, key)
	return func() {}, args.Error(0)
}

type mockEstadoCuenta struct{ mock.Mock }

func (m *mockEstadoCuenta) EnqueueEstadoCuenta(ctx context.Context, p worker.EstadoCuentaJobPayload) error {
	return m.Called(ctx, p).Error(0)
}

func assertKind(t testing.TB, err error, kind apierror.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apierror.KindOf(err), err.Error())
}

// valesQueFallan writes the first n updates through the real repository
// and fails the next one, leaving earlier writes inside the open tx.
type valesQueFallan struct {
	repository.ValeRepository
	n, llamadas int
}

func (r *valesQueFallan) UpdateTx(ctx context.Context, tx *gorm.DB, v *model.Vale) error {
	r.llamadas++
	if r.llamadas > r.n {
		return errDiscoLleno
	}
	return r.ValeRepository.UpdateTx(ctx, tx, v)
}

// vouchersQueFallan runs the real bulk update and then reports a failure.
type vouchersQueFallan struct {
	repository.VoucherRepository
}

func (r *vouchersQueFallan) MarcarPagadosTx(ctx context.Context, tx *gorm.DB, ids []uuid.UUID, metodo string, referencia *string, at time.Time) (int64, error) {
	if _, err := r.VoucherRepository.MarcarPagadosTx(ctx, tx, ids, metodo, referencia, at); err != nil {
		return 0, err
	}
	return 0, errDiscoLleno
}

var errDiscoLleno = errors.New("disk full")
