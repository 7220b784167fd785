//go:build integration

package router

// End-to-end tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"aguaya/internal/apierror"
	"aguaya/internal/dto"
	"aguaya/internal/infra"
	"aguaya/internal/metrics"
	"aguaya/internal/model"
	"aguaya/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func setupE2E(t *testing.T) *apiEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("aguaya_test"),
		tcPostgres.WithUsername("aguaya"),
		tcPostgres.WithPassword("aguaya"),
		testcontainers.WithWaitStrategy(
			tcPostgres.BasicWaitStrategies()...,
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := newTestCfg()
	cfg.DatabaseURL = pgURL
	cfg.RedisURL = rdURL

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)
	require.NoError(t, infra.RunMigrations(db))

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	r := New(cfg, Deps{
		DB:       db,
		Redis:    rdb,
		Locker:   infra.NewRedisLocker(rdb, 5*time.Second),
		Jobs:     worker.NewDispatcher(rdb),
		Metrics:  metrics.New(reg),
		Gatherer: reg,
	})
	return &apiEnv{
		t:          t,
		engine:     r,
		admin:      signToken(t, uuid.NewString(), model.RolAdministrador),
		repartidor: signToken(t, uuid.NewString(), model.RolRepartidor),
	}
}

func TestE2E_HealthReportsRedis(t *testing.T) {
	env := setupE2E(t)
	w := env.do(http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	decodeJSON(t, w, &body)
	assert.Equal(t, "connected", body["redis"])
}

// Concurrent use of one vale never overdraws it.
func TestE2E_ConcurrentValeUse(t *testing.T) {
	env := setupE2E(t)
	c := env.crearCliente("20000001")

	w := env.do(http.MethodPost, "/v1/vales", map[string]any{"cliente_id": c.ID, "monto": "50.00"}, env.admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var vale dto.ValeResponse
	decodeJSON(t, w, &vale)

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		oks int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := env.do(http.MethodPost, "/v1/vales/"+vale.ID+"/usar", map[string]any{"monto": "10"}, env.repartidor)
			if w.Code == http.StatusOK {
				mu.Lock()
				oks++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 5, oks)

	w = env.do(http.MethodGet, "/v1/vales/"+vale.ID, nil, env.admin)
	require.Equal(t, http.StatusOK, w.Code)
	decodeJSON(t, w, &vale)
	assert.True(t, vale.MontoRestante.IsZero())
	assert.Equal(t, "usado", vale.Estado)
}

func TestE2E_MonthlySettlementWithDistrictFee(t *testing.T) {
	env := setupE2E(t)

	w := env.do(http.MethodPut, "/v1/distritos", map[string]any{"nombre": "Surco", "tarifa_delivery": "3.00"}, env.admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	c := env.crearCliente("20000002")

	for i := 0; i < 3; i++ {
		w := env.do(http.MethodPost, "/v1/vouchers", map[string]any{
			"cliente_id": c.ID, "producto_id": "bidon-20l", "cantidad": 1, "precio_unitario": "12.00",
		}, env.repartidor)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var v dto.VoucherResponse
		decodeJSON(t, w, &v)
		if i < 2 {
			w = env.do(http.MethodPut, "/v1/vouchers/"+v.ID+"/estado", map[string]any{"estado": "entregado"}, env.repartidor)
			require.Equal(t, http.StatusOK, w.Code)
		}
	}

	w = env.do(http.MethodPost, "/v1/pagos-mensuales", map[string]any{"cliente_id": c.ID, "metodo_pago": "transferencia"}, env.admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var pago dto.PagoMensualResponse
	decodeJSON(t, w, &pago)
	assert.Equal(t, 2, pago.VouchersPagados)
	assert.True(t, pago.Subtotal.Equal(decimal.NewFromInt(24)))
	assert.True(t, pago.Total.Equal(decimal.NewFromInt(27)))

	w = env.do(http.MethodGet, "/v1/clientes/"+c.ID+"/resumen-mensual", nil, env.admin)
	require.Equal(t, http.StatusOK, w.Code)
	var resumen dto.ResumenMensualResponse
	decodeJSON(t, w, &resumen)
	assert.Equal(t, 1, resumen.Resumen.Pendientes.Cantidad)
	assert.Equal(t, 2, resumen.Resumen.Pagados.Cantidad)

	w = env.do(http.MethodPost, "/v1/pagos-mensuales", map[string]any{"cliente_id": c.ID, "metodo_pago": "transferencia"}, env.admin)
	assertAPIError(t, w, http.StatusBadRequest, apierror.KindValidation)
}
