package http

import (
	"context"
	"log/slog"

	"github.com/geocoder89/reviewhub/internal/config"
	"github.com/geocoder89/reviewhub/internal/domain/user"
	"github.com/geocoder89/reviewhub/internal/http/handlers"
	"github.com/geocoder89/reviewhub/internal/http/middlewares"
	"github.com/geocoder89/reviewhub/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps carries everything the router wires into handlers. Ping, Users,
// Prom and Gatherer are optional.
type Deps struct {
	Reviews  handlers.ReviewsService
	Auth     middlewares.KeyVerifier
	Users    handlers.UsersReloader
	Ping     func(ctx context.Context) error
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer
}

func NewRouter(log *slog.Logger, cfg config.Config, deps Deps) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	if cfg.TracingEnabled() {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))

	// health
	h := handlers.NewHealthHandler(deps.Ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	r.GET("/", handlers.Usage)

	authMw := middlewares.NewAuthMiddleware(deps.Auth, log)
	reviewsHandler := handlers.NewReviewsHandler(deps.Reviews, log)

	api := r.Group("/api")
	if cfg.RateLimitEnabled() {
		rl := middlewares.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
		api.Use(rl.RateLimiterMiddleware(middlewares.KeyByAPIKeyOrIP))
	}

	// reads are public
	api.GET("/reviews", reviewsHandler.ListReviews)
	api.GET("/reviews/:id", reviewsHandler.GetReview)

	authed := api.Group("")
	authed.Use(authMw.RequireAPIKey())
	{
		authed.POST("/reviews", reviewsHandler.CreateReview)
		authed.PUT("/reviews/:id", reviewsHandler.UpdateReview)
		authed.DELETE("/reviews/:id", reviewsHandler.DeleteReview)
	}

	if deps.Users != nil {
		adminUsers := handlers.NewAdminUsersHandler(deps.Users, log)

		admin := api.Group("/admin")
		admin.Use(authMw.RequireAPIKey(), authMw.RequireRole(user.RoleAdmin))
		admin.POST("/users/reload", adminUsers.ReloadUsers)
	}

	return r
}
