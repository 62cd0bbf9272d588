package routes

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wasteline/fleet_backendl/config"
	adminHandlers "github.com/wasteline/fleet_backendl/internal/handlers/admin"
	authHandlers "github.com/wasteline/fleet_backendl/internal/handlers/auth"
	locationHandlers "github.com/wasteline/fleet_backendl/internal/handlers/location"
	"github.com/wasteline/fleet_backendl/internal/metrics"
	"github.com/wasteline/fleet_backendl/internal/middleware"
	"github.com/wasteline/fleet_backendl/internal/pkg/response"
	"github.com/wasteline/fleet_backendl/internal/repositories"
	authService "github.com/wasteline/fleet_backendl/internal/services/auth"
	locationService "github.com/wasteline/fleet_backendl/internal/services/location"
	"github.com/wasteline/fleet_backendl/internal/services/ws"
)

// Setup инициализирует и возвращает настроенный маршрутизатор.
func Setup(cfg *config.Config, database *sql.DB, redisClient *redis.Client) *chi.Mux {
	jwtAuth := jwtauth.New("HS256", []byte(cfg.JwtSecret), nil)
	jwtService := authService.NewJWTService(cfg.JwtSecret)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	driverRepo := repositories.NewDriverRepository(database)
	adminRepo := repositories.NewAdminRepository(database)
	positionStore := locationService.NewRedisStore(redisClient)

	locationSvc := locationService.NewService(positionStore, driverRepo, cfg.StaleAfter, m)
	feedManager := ws.NewManager(locationSvc, m)
	locationSvc.SetListener(feedManager)

	authHandler := authHandlers.NewHandler(driverRepo, adminRepo, jwtService)
	locationHandler := locationHandlers.NewHandler(locationSvc)
	adminHandler := adminHandlers.NewHandler(driverRepo, positionStore)

	router := chi.NewRouter()
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(jwtauth.Verifier(jwtAuth))
	router.Use(middleware.AddIdentityToContext())

	// Публичные маршруты
	router.Post("/api/auth/driver/login", authHandler.DriverLoginHandler)
	router.Post("/api/auth/admin/login", authHandler.AdminLoginHandler)
	router.Post("/api/auth/refresh", authHandler.RefreshTokenHandler)

	// Viewer reads: polled every 1-2s by every open map, no auth.
	router.Get("/api/location/latest", locationHandler.GetLatest)
	router.Get("/api/location/shared", locationHandler.GetAllShared)
	router.Get("/api/location/ws", locationHandlers.FeedHandler(feedManager))
	router.Get("/api/location/{driverID}", locationHandler.GetDriverLocation)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	// Driver write path
	router.Group(func(r chi.Router) {
		r.Use(jwtauth.Authenticator(jwtAuth))
		r.Use(middleware.DriverOnly())
		r.Use(middleware.Limit(cfg.ShareRPS, cfg.ShareBurst))

		r.Post("/api/location/share", locationHandler.ShareLocation)
	})

	// Только для админов
	router.Group(func(r chi.Router) {
		r.Use(jwtauth.Authenticator(jwtAuth))
		r.Use(middleware.AdminOnly())

		r.Get("/api/admin/fleet/export", adminHandler.ExportFleetHandler)
	})

	return router
}
