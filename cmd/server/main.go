package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	croutons "github.com/malwarescan/croutons-merge-service"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

func main() {
	cfg := croutons.DefaultConfig()

	flag.StringVar(&cfg.Server.Addr, "addr", envOr("CROUTONS_ADDR", cfg.Server.Addr), "listen address")
	flag.StringVar(&cfg.Database.Driver, "db-driver", envOr("CROUTONS_DB_DRIVER", cfg.Database.Driver), "database driver (sqlite or postgres)")
	flag.StringVar(&cfg.Database.DSN, "db-dsn", envOr("CROUTONS_DB_DSN", cfg.Database.DSN), "database connection string")
	flag.StringVar(&cfg.Corpus.Dir, "corpus-dir", envOr("CROUTONS_CORPUS_DIR", cfg.Corpus.Dir), "corpus data directory")
	flag.StringVar(&cfg.Logging.Level, "log-level", envOr("CROUTONS_LOG_LEVEL", cfg.Logging.Level), "log level")
	flag.StringVar(&cfg.Logging.Format, "log-format", envOr("CROUTONS_LOG_FORMAT", cfg.Logging.Format), "log format (console, json, pretty)")
	flag.Parse()

	module, err := croutons.New(cfg)
	if err != nil {
		log.Fatalf("configure module: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if db := module.Container().DB(); db != nil {
		if err := croutons.ApplyMigrations(ctx, db); err != nil {
			log.Fatalf("apply migrations: %v", err)
		}
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           module.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Printf("listening on %s", cfg.Server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("serve: %v", err)
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
