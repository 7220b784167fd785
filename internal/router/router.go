package router

import (
	"time"

	"aguaya/internal/config"
	"aguaya/internal/handler"
	"aguaya/internal/infra"
	"aguaya/internal/metrics"
	"aguaya/internal/middleware"
	"aguaya/internal/model"
	"aguaya/internal/repository"
	"aguaya/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the process-wide handles the HTTP layer is built on.
type Deps struct {
	DB    *gorm.DB
	Redis *redis.Client // nil when running without Redis

	Locker   infra.Locker
	Jobs     service.EstadoCuentaEnqueuer
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer // nil disables /metrics
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, d Deps) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if d.Locker == nil {
		d.Locker = infra.NewLocalLocker()
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigin))
	r.Use(middleware.ErrorHandler())
	r.Use(metrics.GinMiddleware(d.Metrics))
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(d.DB)
	clienteRepo := repository.NewClienteRepository(d.DB)
	distritoRepo := repository.NewDistritoRepository(d.DB)
	valeRepo := repository.NewValeRepository(d.DB)
	voucherRepo := repository.NewVoucherRepository(d.DB)
	preferenciaRepo := repository.NewPreferenciaRepository(d.DB)
	suscripcionRepo := repository.NewSuscripcionRepository(d.DB)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	clienteSvc := service.NewClienteService(clienteRepo, distritoRepo)
	valeSvc := service.NewValeService(valeRepo, clienteRepo, d.Locker, d.Metrics)
	voucherSvc := service.NewVoucherService(voucherRepo, clienteRepo)
	liquidacionSvc := service.NewLiquidacionService(voucherRepo, clienteRepo, distritoRepo, d.Locker, d.Jobs, d.Metrics,
		service.LiquidacionConfig{
			Location:        cfg.Location(),
			TarifaDefault:   cfg.TarifaDefault(),
			HistorialLimite: cfg.HistoryDefaultLimit,
		})
	alertaSvc := service.NewAlertaService(valeRepo, preferenciaRepo, cfg.AlertWindowDays)
	preferenciaSvc := service.NewPreferenciaService(preferenciaRepo, clienteRepo)
	suscripcionSvc := service.NewSuscripcionService(suscripcionRepo, clienteRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	clientesH := handler.NewClientesHandler(clienteSvc)
	valesH := handler.NewValesHandler(valeSvc)
	vouchersH := handler.NewVouchersHandler(voucherSvc)
	liquidacionH := handler.NewLiquidacionHandler(liquidacionSvc)
	alertasH := handler.NewAlertasHandler(alertaSvc)
	preferenciasH := handler.NewPreferenciasHandler(preferenciaSvc)
	suscripcionesH := handler.NewSuscripcionesHandler(suscripcionSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(d.DB, d.Redis))
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		soloAdmin := middleware.RequireRole(model.RolAdministrador)
		staff := middleware.RequireRole(model.RolAdministrador, model.RolRepartidor)

		vales := v1.Group("/vales")
		{
			vales.POST("", soloAdmin, valesH.Crear)
			vales.POST("/pago", soloAdmin, valesH.ProcesarPago)
			vales.GET("/estadisticas", soloAdmin, valesH.Estadisticas)
			vales.GET("/:id", staff, valesH.ObtenerPorID)
			vales.PUT("/:id", soloAdmin, valesH.Actualizar)
			vales.POST("/:id/usar", staff, valesH.Usar)
		}

		vouchers := v1.Group("/vouchers", staff)
		{
			vouchers.POST("", vouchersH.Crear)
			vouchers.GET("/:id", vouchersH.ObtenerPorID)
			vouchers.PUT("/:id/estado", vouchersH.ActualizarEstado)
		}

		v1.POST("/pagos-mensuales", soloAdmin, liquidacionH.ProcesarPagoMensual)
		v1.GET("/admin/alertas", soloAdmin, alertasH.AlertasAdmin)

		clientes := v1.Group("/clientes")
		{
			clientes.POST("", soloAdmin, clientesH.Crear)
			clientes.GET("", staff, clientesH.Listar)
			clientes.GET("/:id", staff, clientesH.ObtenerPorID)
			clientes.PUT("/:id", soloAdmin, clientesH.Actualizar)

			clientes.GET("/:id/vales", staff, valesH.ListarPorCliente)
			clientes.GET("/:id/vales/resumen-pago", staff, valesH.ResumenPago)
			clientes.GET("/:id/vouchers", staff, vouchersH.ListarPorCliente)
			clientes.GET("/:id/resumen-mensual", staff, liquidacionH.ResumenMensual)
			clientes.GET("/:id/historial-pagos", soloAdmin, liquidacionH.HistorialPagos)
			clientes.GET("/:id/historial-pagos/export", soloAdmin, liquidacionH.ExportarHistorial)
			clientes.GET("/:id/preferencia", soloAdmin, preferenciasH.Obtener)
			clientes.POST("/:id/preferencia", soloAdmin, preferenciasH.Guardar)
			clientes.GET("/:id/suscripciones", staff, suscripcionesH.ListarPorCliente)
		}

		distritos := v1.Group("/distritos")
		{
			distritos.GET("", staff, clientesH.ListarDistritos)
			distritos.PUT("", soloAdmin, clientesH.GuardarDistrito)
		}

		planes := v1.Group("/planes")
		{
			planes.GET("", staff, suscripcionesH.ListarPlanes)
			planes.POST("", soloAdmin, suscripcionesH.CrearPlan)
		}

		suscripciones := v1.Group("/suscripciones")
		{
			suscripciones.POST("", soloAdmin, suscripcionesH.Suscribir)
			suscripciones.GET("/:id", staff, suscripcionesH.ObtenerPorID)
			suscripciones.POST("/:id/entregas", staff, suscripcionesH.RegistrarEntrega)
			suscripciones.POST("/:id/pausar", soloAdmin, suscripcionesH.Pausar)
			suscripciones.POST("/:id/reanudar", soloAdmin, suscripcionesH.Reanudar)
			suscripciones.POST("/:id/cancelar", soloAdmin, suscripcionesH.Cancelar)
		}

		usuarios := v1.Group("/usuarios", soloAdmin)
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.PUT("/:id", usuariosH.Actualizar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
			usuarios.PATCH("/:id/reactivar", usuariosH.Reactivar)
		}
	}

	return r
}
