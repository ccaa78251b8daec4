package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"

	"shopfinder/src/config"
	"shopfinder/src/db"
	"shopfinder/src/events"
	"shopfinder/src/geocode"
	"shopfinder/src/handlers"
	"shopfinder/src/ingest"
	"shopfinder/src/logger"
	"shopfinder/src/metrics"
	"shopfinder/src/provider"
	"shopfinder/src/search"
	"shopfinder/src/token"
	"shopfinder/src/types"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal(err)
	}
	logger.Setup(cfg.LogLevel, cfg.LogFormat)

	if len(token.MySigningKey) == 0 {
		log.Fatal("MY_SIGNING_KEY environment variable is not set")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := db.NewElasticStore(cfg.ElasticURL)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	if err := store.CreateIndexWithMapping(ctx, cfg.ElasticIndex, cfg.SchemaPath); err != nil {
		log.Fatal(err)
	}

	var cache *redis.Client
	if cfg.RedisAddr != "" {
		cache = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}

	var publisher *events.Publisher
	if cfg.KafkaBroker != "" {
		publisher = events.NewPublisher(cfg.KafkaBroker)
		defer publisher.Close()
	}

	reg := metrics.NewRegistry()
	geocoder := geocode.New(cfg.GeocoderURL, cfg.GeocoderUserAgent, cache)

	var listings types.ListingsProvider = provider.Disabled{}
	if cfg.ScraperURL != "" {
		listings = provider.NewHTTP(cfg.ScraperURL, cfg.ScraperTimeout)
	}
	pipeline := ingest.New(listings, store, reg, publisher)

	if cfg.SeedFile != "" {
		seed := ingest.New(provider.NewFile(cfg.SeedFile), store, reg, nil)
		if _, err := seed.Acquire(ctx, "seed"); err != nil {
			slog.Warn("seed ingestion degraded", "file", cfg.SeedFile, "err", err)
		}
	}

	tmpl, err := handlers.LoadTemplate(cfg.TemplatePath)
	if err != nil {
		log.Fatal(err)
	}

	server := &handlers.Server{
		Search:          search.New(pipeline, geocoder, store, reg),
		Pipeline:        pipeline,
		Store:           store,
		Template:        tmpl,
		Metrics:         reg,
		DefaultRadiusKm: cfg.DefaultRadiusKm,
	}

	r := mux.NewRouter()
	server.RegisterRoutes(r)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		slog.Info("shutting down")
		cancel()
		_ = httpServer.Shutdown(context.Background())
	}()

	slog.Info("server started", "addr", cfg.HTTPAddr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
