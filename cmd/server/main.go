package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-booking/internal/booking"
	"github.com/iliyamo/salon-booking/internal/cache"
	"github.com/iliyamo/salon-booking/internal/config"
	"github.com/iliyamo/salon-booking/internal/database"
	"github.com/iliyamo/salon-booking/internal/handler"
	"github.com/iliyamo/salon-booking/internal/middleware"
	"github.com/iliyamo/salon-booking/internal/queue"
	"github.com/iliyamo/salon-booking/internal/repository"
	"github.com/iliyamo/salon-booking/internal/router"
	queuepublisher "github.com/iliyamo/salon-booking/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: with no client, availability caching becomes a
	// no-op and the HTTP cache / rate limit middlewares disable
	// themselves.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, caching and rate limiting disabled")
	}
	avail := cache.NewAvailability(rdb, cfg.AvailabilityCacheTTL)

	// Repositories.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	businesses := repository.NewBusinessRepo(db)
	staff := repository.NewStaffRepo(db)
	services := repository.NewServiceRepo(db)
	schedules := repository.NewScheduleRepo(db)
	appointments := repository.NewAppointmentRepo(db, staff)

	// Booking core.
	events := queuepublisher.New()
	step := time.Duration(cfg.AvailabilityStepMin) * time.Minute
	catalog := catalogAdapter{businesses: businesses, staff: staff, services: services}
	orchestrator := booking.NewOrchestrator(catalog, schedules, appointments, appointments, events, avail, step)
	lifecycle := booking.NewLifecycle(appointments, events, avail)

	// Background consumers for booked / status-changed events.
	queue.StartAppointmentConsumers()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterPublic(e,
		handler.NewPublicBrowseHandler(businesses, staff, services),
		handler.NewAvailabilityHandler(businesses, staff, services, schedules, appointments, avail, step),
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
	)
	router.RegisterOwner(e, router.OwnerHandlers{
		Businesses:   handler.NewOwnerBusinessHandler(businesses),
		Staff:        handler.NewOwnerStaffHandler(staff),
		Services:     handler.NewOwnerServiceHandler(services),
		Schedules:    handler.NewOwnerScheduleHandler(schedules),
		Appointments: handler.NewOwnerAppointmentHandler(appointments, businesses, lifecycle),
	}, cfg.JWTSecret)
	router.RegisterCustomer(e, handler.NewClientAppointmentHandler(appointments, orchestrator, lifecycle), cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
