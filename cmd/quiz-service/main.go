package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"time"

	"quiz-platform/internal/auth"
	"quiz-platform/internal/config"
	"quiz-platform/internal/httpapi"
	"quiz-platform/internal/quiz"
)

func main() {
	cfg := config.Load()

	addr := flag.String("addr", cfg.Addr, "HTTP listen address")
	dbPath := flag.String("db", cfg.DBPath, "sqlite database path")
	flag.Parse()

	store, err := quiz.NewSQLiteStore(*dbPath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer store.Close()

	var credentials []auth.Credential
	if cfg.DemoSeed {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := store.Seed(ctx, quiz.DefaultSeedQuizzes()); err != nil {
			cancel()
			log.Fatalf("seed store: %v", err)
		}
		cancel()
		credentials = append(credentials, auth.Credential{
			UserID:   cfg.DemoUserID,
			Email:    cfg.DemoEmail,
			Password: cfg.DemoPassword,
		})
		log.Printf("demo user %s enabled", cfg.DemoEmail)
	}

	authService, err := auth.NewService(cfg.JWTSecret, cfg.TokenTTL, credentials)
	if err != nil {
		log.Fatalf("auth setup: %v", err)
	}

	lifecycle := quiz.NewLifecycle(store, store, store)

	server := &http.Server{
		Addr:              *addr,
		Handler:           httpapi.NewRouter(lifecycle, authService),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("quiz-service listening on %s (db=%s)", *addr, *dbPath)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server failed: %v", err)
	}
}
