package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/usermanagement/api/controllers"
	"github.com/angelmondragon/usermanagement/api/middleware"
	"github.com/angelmondragon/usermanagement/api/validators"
	"github.com/angelmondragon/usermanagement/internal/users"
	"github.com/angelmondragon/usermanagement/pkg/config"
	"github.com/angelmondragon/usermanagement/pkg/logger"
	"github.com/angelmondragon/usermanagement/pkg/metrics"
	"github.com/angelmondragon/usermanagement/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	registry *prometheus.Registry,
	storeP controllers.Pinger,
	redisClient *redis.Client,
	userService users.Service,
) http.Handler {
	r := chi.NewRouter()

	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Metrics(metrics.NewHTTPMetrics(registry)),
		middleware.Logging(logg),
		middleware.CORS(cfg.HTTP.CORSAllowedOrigins),
	)

	readiness := map[string]controllers.Pinger{"store": storeP}
	// redis is optional; a nil client leaves throttling and replay off
	var (
		limiter     middleware.RateLimiterStore
		idempotency redis.IdempotencyStore
	)
	if redisClient != nil {
		readiness["redis"] = redisClient
		limiter = redisClient
		idempotency = redisClient
	}

	registerPolicy := middleware.NewRateLimitPolicy(
		"register",
		cfg.RateLimit.RegisterWindow,
		cfg.RateLimit.RegisterIPLimit,
		cfg.RateLimit.RegisterEmailLimit,
	)
	register := controllers.RegisterUser(userService, cfg.Registration.DefaultNotification, logg)
	getByID := controllers.GetUserByID(userService, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, readiness, logg))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))

	r.Route("/users", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.LimitBody(validators.MaxBodyBytes))
			r.Use(middleware.RegistrationRateLimit(registerPolicy, limiter, logg))
			r.Use(middleware.Idempotency(idempotency, cfg.Idempotency.TTL, logg))
			r.Post("/", register)
			r.Post("/createUser", register)
		})
		r.Get("/{id}", getByID)
		r.Get("/getUserById/{id}", getByID)
	})

	return r
}
