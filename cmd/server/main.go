package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/paperdigest/internal/api"
	"github.com/dgallion1/paperdigest/internal/arxiv"
	"github.com/dgallion1/paperdigest/internal/config"
	"github.com/dgallion1/paperdigest/internal/docfetch"
	"github.com/dgallion1/paperdigest/internal/jobs"
	"github.com/dgallion1/paperdigest/internal/stats"
	"github.com/dgallion1/paperdigest/internal/summarize"
	"github.com/dgallion1/paperdigest/internal/textcache"
)

func main() {
	cfg, err := config.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	res, err := summarize.LoadEnglish()
	if err != nil {
		log.Error("failed to load language resources", "error", err)
		os.Exit(1)
	}
	summarizer := summarize.New(res)
	registry := stats.NewRegistry(cfg.StatsWindow)

	// Initialize clients.
	search := arxiv.NewClient(arxiv.Config{
		BaseURL:    cfg.ArxivAPIURL,
		UserAgent:  cfg.UserAgent,
		Timeout:    cfg.ArxivTimeout,
		MaxResults: cfg.SearchMaxResults,
		Stats:      registry.For("arxiv"),
		Logger:     log,
	})

	fetchOpts := docfetch.Options{
		HTTPClient:        &http.Client{Timeout: cfg.FetchTimeout},
		UserAgent:         cfg.UserAgent,
		MaxDocumentBytes:  cfg.MaxDocumentBytes,
		FallbackPdftotext: cfg.PDFFallbackPdftotext,
		RespectRobots:     cfg.RespectRobots,
		Stats:             registry.For("documents"),
		Logger:            log,
	}
	var cache *textcache.Cache
	if cfg.CachePath != "" {
		cache, err = textcache.Open(cfg.CachePath, cfg.CacheTTL)
		if err != nil {
			log.Error("failed to open text cache", "path", cfg.CachePath, "error", err)
			os.Exit(1)
		}
		fetchOpts.Cache = cache
		go pruneCache(ctx, cache, cfg.CacheTTL, log)
	}
	extractor := docfetch.New(fetchOpts)

	// Initialize job pipeline.
	orch := jobs.NewOrchestrator(jobs.Config{
		WorkerCount:  cfg.WorkerCount,
		MaxQueueSize: cfg.MaxQueueSize,
		JobTTL:       cfg.JobTTL,
		JobTimeout:   cfg.FetchTimeout + time.Minute,
	}, extractor, summarizer, registry.For("summarize"), log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(api.Deps{
		Searcher:   search,
		Extractor:  extractor,
		Summarizer: summarizer,
		Jobs:       orch,
		Stats:      registry,
	}, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.FetchTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if cache != nil {
			cache.Close()
		}
	}()

	log.Info("starting paperdigest", "port", cfg.Port, "workers", cfg.WorkerCount, "cache", cfg.CachePath != "")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

// pruneCache drops expired cache entries until ctx is cancelled.
func pruneCache(ctx context.Context, cache *textcache.Cache, ttl time.Duration, log *slog.Logger) {
	ticker := time.NewTicker(max(ttl/4, time.Minute))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := cache.Prune()
			if err != nil {
				log.Warn("cache prune failed", "error", err)
				continue
			}
			if n > 0 {
				log.Debug("pruned cache", "removed", n)
			}
		}
	}
}
