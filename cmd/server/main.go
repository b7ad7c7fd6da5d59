package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ayush/sports-events-hub/internal/auth"
	"github.com/ayush/sports-events-hub/internal/config"
	"github.com/ayush/sports-events-hub/internal/dashboard"
	"github.com/ayush/sports-events-hub/internal/logging"
	"github.com/ayush/sports-events-hub/internal/middleware"
	"github.com/ayush/sports-events-hub/internal/preferences"
	"github.com/ayush/sports-events-hub/internal/sports"
	"github.com/ayush/sports-events-hub/internal/store"
)

func main() {
	cfg := config.Load()
	logger := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	ctx := context.Background()

	// ── Storage ──────────────────────────────────────────────
	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		fatal(logger, "open stores", err)
	}
	defer st.Close()

	// ── Redis (optional upstream cache) ──────────────────────
	var cache sports.Cache
	if cfg.RedisAddr != "" {
		rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			logger.Warn("redis unavailable, running without cache", "addr", cfg.RedisAddr, "error", err)
		} else {
			defer rdb.Close()
			cache = store.NewRedisCache(rdb, cfg.CacheTTL)
		}
	}

	// ── Sports data client ───────────────────────────────────
	sportsClient := sports.NewClient(cfg.SportsDBURL, cfg.SportsDBAPIKey, cfg.SportsDBTimeout, cache, logger)

	// ── Services & handlers ──────────────────────────────────
	authSvc := auth.NewService(st.users, st.sessions, logger)
	prefSvc := preferences.NewService(st.prefs, logger)
	engine := dashboard.NewEngine(sportsClient, cfg.DashboardTimeout, logger)

	authHandler := auth.NewHandler(authSvc, cfg.Production(), logger)
	prefHandler := preferences.NewHandler(prefSvc, logger)
	dashHandler := dashboard.NewHandler(engine, prefSvc)
	sportsHandler := sports.NewHandler(sportsClient, logger)
	requireAuth := middleware.RequireAuth(authSvc)

	// ── Router ───────────────────────────────────────────────
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Get("/check", authHandler.Check)
		r.Post("/logout", authHandler.Logout)
		r.Get("/check-username", authHandler.CheckUsername)
	})

	r.Route("/api/preferences", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", prefHandler.Get)
		r.Post("/", prefHandler.Save)
		r.Post("/reset", prefHandler.Reset)
	})

	r.Route("/api/dashboard", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/filtered", dashHandler.Filtered)
		r.Get("/events", dashHandler.Current)
	})

	// Catalog routes back the preference picker and are public.
	r.Get("/api/sports", sportsHandler.Sports)
	r.Get("/api/sports/{sport}/leagues", sportsHandler.Leagues)
	r.Get("/api/teams/search", sportsHandler.SearchTeams)
	r.Get("/api/teams/{id}/events", sportsHandler.TeamEvents)
	r.Get("/api/leagues/{id}/teams", sportsHandler.LeagueTeams)

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.DashboardTimeout + 15*time.Second,
	}

	go func() {
		logger.Info("backend listening", "port", cfg.Port, "store", cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fatal(logger, "server error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	srv.Shutdown(shutCtx)
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}
