package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stintapp/stint/internal/api"
	"github.com/stintapp/stint/internal/clock"
	"github.com/stintapp/stint/internal/middleware"
	"github.com/stintapp/stint/internal/notify"
	"github.com/stintapp/stint/internal/repository"
	"github.com/stintapp/stint/internal/report"
	"github.com/stintapp/stint/internal/snapshot"
	"github.com/stintapp/stint/internal/timer"
)

func main() {
	clk := clock.RealClock{}
	bus := notify.NewBus(notify.DefaultTickInterval)
	engine := timer.New(clk, bus)

	var snaps *snapshot.Store
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		var err error
		snaps, err = snapshot.NewStore(redisAddr)
		if err != nil {
			log.Fatal(err)
		}
		defer func() {
			if err := snaps.Close(); err != nil {
				log.Printf("failed to close snapshot store: %v", err)
			}
		}()
		log.Printf("Connected to Redis at %s", redisAddr)

		restoreEngine(engine, snaps)
	}

	var repo repository.TimesheetRepository
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		pg, err := repository.NewPostgresTimesheetRepository(dsn)
		if err != nil {
			log.Fatal(err)
		}
		defer func() {
			if err := pg.Close(); err != nil {
				log.Printf("failed to close repository: %v", err)
			}
		}()
		repo = pg
		log.Printf("Connected to PostgreSQL")
	}

	var mailer api.SummaryMailer
	if os.Getenv("EMAIL_API_KEY") != "" {
		mailer = report.NewMailer()
	}

	apiHandler := api.NewAPI(engine, repo, snaps, mailer)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", middleware.MetricsMiddleware(apiHandler))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startCollectors(ctx, engine, bus, snaps, clk)

	go func() {
		<-ctx.Done()
		log.Printf("Shutting down, flushing timers")

		// Close every open span before the final snapshot so no accrued
		// time is lost on exit.
		engine.Flush()
		if snaps != nil {
			if err := snaps.Save(engine.Snapshot(), clk.Now()); err != nil {
				log.Printf("failed to write final snapshot: %v", err)
			}
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("failed to shut down server: %v", err)
		}
	}()

	log.Printf("Server starting on :%s", port)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

// restoreEngine seeds the engine from the last saved snapshot, if any.
func restoreEngine(engine *timer.Engine, snaps *snapshot.Store) {
	states, capturedAt, err := snaps.Load()
	if err != nil {
		log.Printf("failed to load snapshot: %v", err)
		return
	}
	if len(states) == 0 {
		return
	}

	engine.Restore(states, capturedAt)
	log.Printf("Restored %d timer(s) from snapshot captured at %s", len(states), capturedAt.Format(time.RFC3339))
}
