package http

import (
	"log/slog"
	"time"

	"github.com/geocoder89/parkingcontrol/internal/config"
	"github.com/geocoder89/parkingcontrol/internal/http/handlers"
	"github.com/geocoder89/parkingcontrol/internal/http/middlewares"
	"github.com/geocoder89/parkingcontrol/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const resourcePath = "/parking-spot"

// Deps is everything the router needs. Prom, Gatherer and the readiness entries are optional.
type Deps struct {
	Log       *slog.Logger
	Service   handlers.ParkingSpotService
	Prom      *observability.Prom
	Gatherer  prometheus.Gatherer
	Readiness map[string]handlers.Pinger
	Tracing   bool
}

func NewRouter(cfg config.Config, deps Deps) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	handlers.RegisterValidators()

	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	if deps.Tracing {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(middlewares.RequestLogger(deps.Log))
	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.SecurityHeaders("/docs"))

	// health
	h := handlers.NewHealthHandler(deps.Readiness)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	r.GET("/docs", handlers.SwaggerUI)
	r.GET("/docs/openapi.yaml", handlers.OpenAPISpec)
	r.GET("/docs/openapi.json", handlers.OpenAPISpecJSON)

	spotsHandler := handlers.NewParkingSpotsHandler(deps.Service, cfg.RequestTimeout)
	if deps.Prom != nil {
		spotsHandler.WithConflictHook(deps.Prom.IncConflict)
	}

	spots := r.Group(resourcePath)
	spots.Use(middlewares.CORSMiddleware([]string{"*"}, time.Hour))
	spots.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	spots.Use(middlewares.RequireJSON())
	{
		spots.GET("", spotsHandler.ListParkingSpots)
		spots.GET("/:id", spotsHandler.GetParkingSpotByID)
		spots.POST("", spotsHandler.CreateParkingSpot)
		spots.PUT("/:id", spotsHandler.UpdateParkingSpot)
		spots.DELETE("/:id", spotsHandler.DeleteParkingSpot)
		// preflight; the CORS middleware answers before this runs
		spots.OPTIONS("", func(*gin.Context) {})
		spots.OPTIONS("/:id", func(*gin.Context) {})
	}

	return r
}
