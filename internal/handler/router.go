package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"service-marketplace/internal/domain/user"
	"service-marketplace/internal/handler/api"
	"service-marketplace/internal/handler/middleware"
	"service-marketplace/internal/pkg/config"
	"service-marketplace/internal/pkg/metrics"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type RouterParams struct {
	fx.In

	Engine              *gin.Engine
	Config              config.Config
	Logger              *zap.Logger
	Metrics             *metrics.Metrics
	Gatherer            prometheus.Gatherer
	BookingHandler      *api.BookingHandler
	AvailabilityHandler *api.AvailabilityHandler
	AuthMiddleware      *middleware.AuthMiddleware
	RateLimiter         *middleware.RateLimiter
}

func NewRouter(p RouterParams) {
	setupMiddleware(p)
	setupRoutes(p)
}

func setupMiddleware(p RouterParams) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	p.Engine.Use(middleware.CustomRecovery(p.Logger))
	p.Engine.Use(middleware.NewCORSMiddleware(p.Config.CORS, p.Logger))
	p.Engine.Use(middleware.RequestLogger(p.Logger))
	p.Engine.Use(middleware.Metrics(p.Metrics))
	p.Engine.Use(middleware.ErrorHandler(p.Logger))
}

func setupRoutes(p RouterParams) {
	engine := p.Engine
	engine.GET("/health", healthCheck)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{})))

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	bookingHandler := p.BookingHandler
	availabilityHandler := p.AvailabilityHandler
	limited := []gin.HandlerFunc{p.RateLimiter.Middleware()}

	apiGroup := engine.Group("/api")
	{
		bookings := apiGroup.Group("/bookings")
		bookings.Use(p.AuthMiddleware.RequireAuth())
		{
			addRoutes(bookings, []route{
				{Method: http.MethodPost, Path: "", Handler: bookingHandler.Create, Mw: limited},
				{Method: http.MethodPost, Path: "/check", Handler: bookingHandler.CheckAvailability},
				{Method: http.MethodGet, Path: "", Handler: bookingHandler.List},
				{Method: http.MethodGet, Path: "/:id", Handler: bookingHandler.Get},
				{Method: http.MethodPatch, Path: "/:id", Handler: bookingHandler.Update, Mw: limited},
				{Method: http.MethodPatch, Path: "/:id/status", Handler: bookingHandler.ChangeStatus, Mw: limited},
				{Method: http.MethodPost, Path: "/:id/cancel", Handler: bookingHandler.Cancel, Mw: limited},
				{Method: http.MethodPost, Path: "/:id/reschedule", Handler: bookingHandler.Reschedule, Mw: limited},
				{Method: http.MethodDelete, Path: "/:id", Handler: bookingHandler.Delete, Mw: limited},
			})
		}

		addRoutes(apiGroup, []route{
			{Method: http.MethodGet, Path: "/providers/:id/availability", Handler: availabilityHandler.ListByProvider},
		})

		slots := apiGroup.Group("/availability")
		slots.Use(p.AuthMiddleware.RequireAuth(), p.AuthMiddleware.RequireRole(user.RoleProvider))
		{
			addRoutes(slots, []route{
				{Method: http.MethodPost, Path: "", Handler: availabilityHandler.Create},
				{Method: http.MethodPut, Path: "/:id", Handler: availabilityHandler.Update},
				{Method: http.MethodDelete, Path: "/:id", Handler: availabilityHandler.Delete},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
