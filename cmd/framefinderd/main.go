package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/solleo1989/framefinder/internal/api"
	"github.com/solleo1989/framefinder/internal/store"
)

func main() {
	addr := flag.String("addr", ":8090", "listen address")
	dbPath := flag.String("db", "framefinder.db", "sqlite database path; empty disables persistence")
	flag.Parse()

	log.Printf("Starting framefinder %s (Go %s)", api.EngineVersion, runtime.Version())

	var db store.DB
	if *dbPath != "" {
		sdb, err := store.NewSQLiteDB(*dbPath)
		if err != nil {
			log.Fatalf("open database %s: %v", *dbPath, err)
		}
		defer sdb.Close()
		if err := sdb.Migrate(); err != nil {
			log.Fatalf("migrate database: %v", err)
		}
		db = sdb
		log.Printf("search history persisted to %s", *dbPath)
	} else {
		log.Println("persistence disabled; scans will not be recorded")
	}

	srv := &http.Server{
		Addr:         *addr,
		Handler:      api.NewServer(db).Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", *addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Println("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown error: %v", err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}

	log.Println("framefinder exited")
}
