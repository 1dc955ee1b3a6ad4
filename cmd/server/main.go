package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/orcabay/sail-reservation/internal/config"
	"github.com/orcabay/sail-reservation/internal/database"
	"github.com/orcabay/sail-reservation/internal/handler"
	"github.com/orcabay/sail-reservation/internal/middleware"
	"github.com/orcabay/sail-reservation/internal/queue"
	"github.com/orcabay/sail-reservation/internal/repository"
	"github.com/orcabay/sail-reservation/internal/router"
	"github.com/orcabay/sail-reservation/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()
	loc := cfg.Location()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	store := repository.NewSQLStore(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)

	notifier := queue.NewPublisher(cfg.RabbitURL)

	dashboard := service.NewDashboard(store, loc, cfg.LateThreshold, nil)
	availability := service.NewAvailability(store)
	reservations := service.NewReservations(store, notifier)
	lifecycle := service.NewLifecycle(store, notifier, dashboard, loc, nil)
	rebalancer := service.NewRebalancer(store, notifier,
		service.RebalancePolicy(cfg.RebalancePolicy), loc, cfg.LateThreshold, nil)

	e := echo.New()
	e.HideBanner = true

	// Redis-backed rate limiting and response caching.  A nil client
	// (Redis down at boot) disables both; the API itself keeps working.
	if rdb := config.NewRedisClient(); rdb != nil {
		e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
		e.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	} else {
		log.Println("redis unavailable, rate limiting and caching disabled")
	}

	router.Register(e, router.Handlers{
		Auth:      handler.NewAuthHandler(cfg, users, tokens),
		Booking:   handler.NewBookingHandler(availability, reservations),
		Sail:      handler.NewSailHandler(lifecycle, dashboard),
		Dashboard: handler.NewDashboardHandler(dashboard),
		Rebalance: handler.NewRebalanceHandler(rebalancer, dashboard),
	}, cfg.JWTSecret)

	go queue.StartSailsConsumer(cfg.RabbitURL)
	go rebalancer.Run(context.Background(), cfg.RebalanceInterval)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, tz=%s, policy=%s)", addr, cfg.Env, cfg.Timezone, cfg.RebalancePolicy)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
