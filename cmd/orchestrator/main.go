// Package main is the entry point for the postflow orchestrator.
// The orchestrator claims due posts and fans them out to the platform
// adapters. It owns concurrency, retries and the publish state machine.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"postflow/internal/config"
	"postflow/internal/logger"
	"postflow/internal/observability"
	"postflow/internal/orchestrator"
	"postflow/internal/publish"
	"postflow/internal/publish/platforms"
	"postflow/internal/store/postgres"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tracing
	shutdownTracer, err := observability.Init(ctx, "postflow-orchestrator", cfg.OTELEndpoint)
	if err != nil {
		log.Fatalf("Failed to init tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Printf("Failed to shutdown tracer: %v", err)
		}
	}()

	store, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer store.Close()

	// One adapter per configured credential. Posts targeting a platform
	// without an adapter fail that platform at dispatch time.
	registry := publish.NewRegistry()
	for platform, token := range cfg.PlatformTokens {
		switch platform {
		case "facebook":
			registry.Register(platforms.NewFacebook(token))
		case "instagram":
			registry.Register(platforms.NewInstagram(token))
		case "twitter":
			registry.Register(platforms.NewTwitter(token))
		case "linkedin":
			registry.Register(platforms.NewLinkedIn(token))
		case "tiktok":
			registry.Register(platforms.NewTikTok(token))
		case "youtube":
			registry.Register(platforms.NewYouTube(token))
		default:
			log.Printf("Unknown platform %q in config, skipping", platform)
		}
	}
	log.Printf("Registered platform adapters: %v", registry.Platforms())

	slogger := logger.New("postflow-orchestrator")
	dispatcher := publish.NewDispatcher(registry, cfg.DispatchTimeout, slogger)

	orch := orchestrator.New(store, store, dispatcher, orchestrator.Config{
		ID:           cfg.OrchestratorID,
		Concurrency:  cfg.OrchestratorConcurrency,
		TickInterval: cfg.OrchestratorTickInterval,
		MaxBackoff:   cfg.OrchestratorMaxBackoff,
	}, slogger)

	log.Printf("Orchestrator started with concurrency %d", cfg.OrchestratorConcurrency)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := orch.Run(ctx); err != nil {
			log.Printf("Orchestrator stopped: %v", err)
		}
	}()

	// Janitor prunes terminal posts past the retention window.
	janitor := orchestrator.NewJanitor(store, cfg.RetentionWindow, slogger)
	if err := janitor.Start(); err != nil {
		log.Fatalf("Failed to start janitor: %v", err)
	}
	defer janitor.Stop()

	// Metrics
	metricsHandler, shutdownMetrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to init metrics: %v", err)
	}
	defer func() {
		if err := shutdownMetrics(context.Background()); err != nil {
			log.Printf("Failed to shutdown metrics: %v", err)
		}
	}()

	// Start a dedicated metrics server on port 8081
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metricsHandler)
		log.Println("Orchestrator metrics listening on :8081")
		if err := http.ListenAndServe(":8081", mux); err != nil {
			log.Printf("Metrics server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down orchestrator...")
	cancel()

	<-done
}
