package main // Entry point package

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/moviedesk/cinema-booking/internal/config"
	"github.com/moviedesk/cinema-booking/internal/database"
	"github.com/moviedesk/cinema-booking/internal/handler"
	"github.com/moviedesk/cinema-booking/internal/middleware"
	"github.com/moviedesk/cinema-booking/internal/queue"
	"github.com/moviedesk/cinema-booking/internal/repository"
	"github.com/moviedesk/cinema-booking/internal/router"
	"github.com/moviedesk/cinema-booking/internal/service"
)

func main() {
	// Load .env when present; real environments set variables directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	if err := database.Migrate(context.Background(), db); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	// Redis is optional: a nil client disables the seat cache and rate
	// limiting but the API keeps working.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; seat cache and rate limiting disabled")
	}

	store := repository.NewStore(db)
	bookingSvc := service.NewBookingService(store, rdb, queue.NewPublisher())

	authHandler := handler.NewAuthHandler(cfg, store.Users)
	theaterHandler := handler.NewTheaterHandler(store.Theaters, store.Screens)
	bookingHandler := handler.NewBookingHandler(bookingSvc, store.Bookings)

	// Background consumer records booking activity from the broker.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	rateLimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	router.RegisterRoutes(e, authHandler, theaterHandler, bookingHandler)
	router.RegisterProtected(e, authHandler, theaterHandler, bookingHandler, cfg.JWTSecret, rateLimit)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
