package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ewilliams-labs/encore/internal/adapters/filestore"
	"github.com/ewilliams-labs/encore/internal/adapters/huggingface"
	"github.com/ewilliams-labs/encore/internal/adapters/ollama"
	"github.com/ewilliams-labs/encore/internal/adapters/openai"
	"github.com/ewilliams-labs/encore/internal/adapters/rest"
	"github.com/ewilliams-labs/encore/internal/adapters/sqlite"
	"github.com/ewilliams-labs/encore/internal/adapters/tagreader"
	"github.com/ewilliams-labs/encore/internal/config"
	"github.com/ewilliams-labs/encore/internal/core/ports"
	"github.com/ewilliams-labs/encore/internal/core/services"
	"github.com/ewilliams-labs/encore/internal/worker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
}

func run(ctx context.Context, args []string) error {
	// 1. Configuration
	cfg, err := config.Load(args, os.Stderr)
	if err != nil {
		return err
	}

	// 2. Driven adapters
	db, err := sqlite.NewAdapter(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	assets, err := filestore.New(ctx, cfg.FSType, cfg.FSConn, cfg.Debug)
	if err != nil {
		return fmt.Errorf("failed to initialize asset store: %w", err)
	}

	var moods ports.MoodPredictor
	if loader := modelLoader(cfg); loader != nil {
		moods = services.NewMoodClassifier(loader,
			services.WithLoadTimeout(cfg.LoadTimeout),
			services.WithInferenceTimeout(cfg.InferenceTimeout),
		)
	} else {
		log.Println("WARN main: no mood model configured, classification disabled")
	}

	// 3. Core
	lib := services.NewLibrary(services.LibraryDeps{
		Songs:     db,
		Playlists: db,
		Comments:  db,
		Assets:    assets,
		Prober:    tagreader.New(),
		Moods:     moods,
	})
	streamer := services.NewStreamer(db, assets)

	// 4. Background analysis. The pool needs the library and the library
	// enqueues into the pool, so the queue is attached afterwards.
	pool := worker.NewPool(worker.NewAnalyzer(lib, worker.MP3Duration{}, cfg.AutoClassify), cfg.QueueSize, cfg.JobTimeout)
	lib.SetQueue(pool)
	pool.Start(cfg.Workers)
	defer pool.Stop()

	// 5. Driving adapter
	handler := rest.NewHandler(lib, streamer, rest.Options{
		Debug:          cfg.Debug,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		Readiness: map[string]rest.ReadinessCheck{
			"database": db.Ping,
			"assets":   assets.Ping,
		},
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
	}

	log.Printf("encore: listening on %s (assets=%s, model=%s)", cfg.Addr, cfg.FSType, cfg.ModelBackend)

	serverErr := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		log.Println("encore: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("ERROR main: shutdown: %v", err)
		}
	}
	return nil
}

// modelLoader picks the mood model backend. Nil means classification is off.
func modelLoader(cfg config.Config) ports.ModelLoader {
	switch cfg.ModelBackend {
	case config.BackendHuggingFace:
		return huggingface.NewLoader("", cfg.Model, cfg.HFToken)
	case config.BackendOllama:
		return ollama.NewLoader(cfg.OllamaHost, cfg.Model)
	case config.BackendOpenAI:
		return openai.NewLoader(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.Model)
	}
	return nil
}
