package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"balades-api/config"
	"balades-api/handlers"
	"balades-api/logging"
	"balades-api/models"
	"balades-api/services"
	"balades-api/store"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Store
	var st store.Store
	switch cfg.Store {
	case config.StoreMemory:
		st = store.NewMemoryStore()
		log.Warn().Msg("using in-memory store, data is lost on restart")
	default:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		client, err := store.Connect(connectCtx, cfg.MongoURI)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("MongoDB connection failed")
		}
		defer func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Error().Err(err).Msg("MongoDB disconnect failed")
			}
		}()
		log.Info().Str("database", cfg.MongoDatabase).Str("collection", cfg.MongoCollection).Msg("connected to MongoDB")
		st = store.NewMongoStore(client, cfg.MongoDatabase, cfg.MongoCollection)
	}

	if cfg.SeedFile != "" {
		if err := seed(ctx, st, cfg.SeedFile); err != nil {
			log.Fatal().Err(err).Str("file", cfg.SeedFile).Msg("seeding failed")
		}
	}

	// Optional Redis geo index
	var geoService *services.GeoService
	var geoIndexer services.GeoIndexer
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("failed to connect to Redis")
		}
		geoService = services.NewGeoService(rdb, st)
		if _, err := geoService.Rebuild(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to build geo index")
		}
		geoIndexer = geoService
	}

	router := handlers.NewRouter(handlers.RouterConfig{
		Queries:        services.NewQueryService(st),
		Mutations:      services.NewMutationService(st, geoIndexer),
		Geo:            geoService,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server failed")
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
		}
	}
}

// seed loads a JSON array of balades into an empty store.
func seed(ctx context.Context, st store.Store, path string) error {
	seeder, ok := st.(store.Seeder)
	if !ok {
		return nil
	}
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var balades []models.Balade
	if err := json.NewDecoder(file).Decode(&balades); err != nil {
		return err
	}
	n, err := seeder.Seed(ctx, balades)
	if err != nil {
		return err
	}
	log.Info().Int("count", n).Msg("seeded balades")
	return nil
}
