package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticketing/internal/config"
	"github.com/iliyamo/movie-ticketing/internal/database"
	"github.com/iliyamo/movie-ticketing/internal/handler"
	"github.com/iliyamo/movie-ticketing/internal/middleware"
	"github.com/iliyamo/movie-ticketing/internal/queue"
	"github.com/iliyamo/movie-ticketing/internal/repository"
	"github.com/iliyamo/movie-ticketing/internal/router"
	"github.com/iliyamo/movie-ticketing/internal/scheduler"
)

func main() {
	// .env is a local convenience; in real deployments the variables come
	// from the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	movies := repository.NewMovieRepo(db)
	showings := repository.NewShowingRepo(db, movies)
	orders := repository.NewOrderRepo(db, users, showings)

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, response cache and rate limiter disabled")
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.Register(e, router.Deps{
		Auth:      handler.NewAuthHandler(cfg, users, tokens),
		Movies:    handler.NewMovieHandler(movies),
		Showings:  handler.NewShowingHandler(showings),
		Orders:    handler.NewOrderHandler(orders),
		JWTSecret: cfg.JWTSecret,
		Cache:     config.LoadCacheConfig(),
		Redis:     rdb,
	})

	sched := scheduler.New(showings, cfg.ExpireSweep, cfg.PurgeSweep)
	sched.Start()
	defer sched.Stop()

	go func() {
		if err := queue.StartOrderConsumer(); err != nil {
			log.Printf("order consumer stopped: %v", err)
		}
	}()

	go func() {
		addr := ":" + cfg.Port
		log.Printf("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
