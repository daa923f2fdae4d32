package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/harentsoaR/medlab-api/internal/config"
	"github.com/harentsoaR/medlab-api/internal/handlers"
	"github.com/harentsoaR/medlab-api/internal/logging"
	"github.com/harentsoaR/medlab-api/internal/response"
	"github.com/harentsoaR/medlab-api/internal/services"
	"github.com/harentsoaR/medlab-api/internal/store"
	"github.com/harentsoaR/medlab-api/internal/utils"
	"github.com/harentsoaR/medlab-api/internal/validation"
)

const (
	serviceName     = "medlab-api"
	connectTimeout  = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	rootCmd := &cobra.Command{
		Use:          serviceName,
		Short:        "Medical lab test booking API",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(serveCmd(), indexesCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			return runServer(cfg)
		},
	}
}

func indexesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "indexes",
		Short: "Create the unique indexes and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			client, _, err := connect(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer disconnect(client)
			log.Info().Str("database", cfg.MongoDatabase).Msg("indexes are up to date")
			return nil
		},
	}
}

func setup() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		return nil, err
	}
	logging.Init(serviceName, cfg.Env, cfg.LogLevel)
	return cfg, nil
}

// connect opens the database and makes sure every unique index exists.
func connect(ctx context.Context, cfg *config.Config) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := store.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return nil, nil, err
	}
	db := client.Database(cfg.MongoDatabase)
	if err := store.EnsureIndexes(ctx, db); err != nil {
		disconnect(client)
		return nil, nil, err
	}
	log.Info().Str("database", cfg.MongoDatabase).Msg("connected to MongoDB")
	return client, db, nil
}

func disconnect(client *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		log.Warn().Err(err).Msg("disconnect from MongoDB")
	}
}

func runServer(cfg *config.Config) error {
	validation.Install()
	response.ExposeErrors(!cfg.IsProduction())
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	client, db, err := connect(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer disconnect(client)

	tokens := utils.NewTokenService(cfg.JWTSecret, serviceName)
	hasher := utils.NewPasswordHasher(cfg.BcryptCost, cfg.HashConcurrency)

	h := handlers.NewHandler(
		services.NewCatalogService(store.NewCategoryStore(db)),
		services.NewOrderService(store.NewOrderStore(db), services.NewOrderNotifier(cfg.TextbeltAPIKey)),
		services.NewPatientService(store.NewPatientStore(db), tokens, cfg.PatientTokenTTL),
		services.NewLaboratoryService(store.NewLaboratoryStore(db), hasher, tokens, cfg.LabTokenTTL),
		store.NewPinger(client),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	router := handlers.NewRouter(h, handlers.RouterConfig{
		Tokens:       tokens,
		LabLoginPath: cfg.LabLoginPath,
		CORSOrigins:  cfg.CORSOrigins,
		Registry:     registry,
		Logger:       log.Logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}
