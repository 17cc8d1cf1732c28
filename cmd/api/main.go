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

	"github.com/joho/godotenv"

	"github.com/emmalund/plantwatch/backend/internal/config"
	"github.com/emmalund/plantwatch/backend/internal/handler"
	"github.com/emmalund/plantwatch/backend/internal/model/location"
	"github.com/emmalund/plantwatch/backend/internal/service/assistant"
	sessionservice "github.com/emmalund/plantwatch/backend/internal/service/session"
	"github.com/emmalund/plantwatch/backend/internal/service/storage"
	weatherservice "github.com/emmalund/plantwatch/backend/internal/service/weather"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	registry := location.Sweden()

	fetcher, uploader, engine, err := buildCollaborators(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize collaborators: %v", err)
	}

	coordinator := sessionservice.NewCoordinator(registry, fetcher, uploader, engine, cfg.AWS.Bucket)
	router := handler.NewRouter(registry, coordinator)

	startServer(ctx, cfg.Server, router)
}

// buildCollaborators selects simulated or live collaborator implementations
// from configuration, never by swapping source files.
func buildCollaborators(ctx context.Context, cfg *config.Config) (weatherservice.Fetcher, storage.Uploader, assistant.Engine, error) {
	if cfg.Simulated {
		log.Println("simulated collaborators enabled, no external services will be called")
		return weatherservice.NewSimulated(), storage.NewSimulated(), assistant.NewSimulated(), nil
	}

	uploader, err := storage.NewS3Uploader(ctx, cfg.AWS.Region)
	if err != nil {
		return nil, nil, nil, err
	}

	var engine assistant.Engine
	switch cfg.Assistant.Provider {
	case config.ProviderArk:
		engine, err = assistant.NewArkEngine(ctx, cfg.Ark)
	default:
		engine, err = assistant.NewLexEngine(ctx, cfg.AWS, cfg.Assistant)
	}
	if err != nil {
		return nil, nil, nil, err
	}
	log.Printf("assistant engine initialized (provider=%s)", cfg.Assistant.Provider)

	return weatherservice.NewSMHIClient(cfg.Weather), uploader, engine, nil
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("PlantWatch backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
