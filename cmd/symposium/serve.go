package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"symposium/config"
	"symposium/internal/adapters/auth"
	"symposium/internal/adapters/email"
	deliveryhttp "symposium/internal/delivery/http"
	"symposium/internal/delivery/http/controllers"
	"symposium/internal/delivery/http/middleware"
	"symposium/internal/domain"
	"symposium/internal/repository/docstore"
	mongostore "symposium/internal/repository/mongo"
	"symposium/internal/repository/postgres"
	"symposium/internal/repository/sqlite"
	"symposium/internal/services"
	"symposium/internal/tracing"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd() *cobra.Command {
	var skipMigrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, !skipMigrate)
		},
	}
	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not create missing Postgres tables on start")
	return cmd
}

// closer collects shutdown hooks and runs them in reverse order.
type closer []func(context.Context) error

func (c *closer) add(f func(context.Context) error) { *c = append(*c, f) }

func (c closer) run(ctx context.Context, logger *slog.Logger) {
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i](ctx); err != nil {
			logger.Warn("shutdown step failed", "err", err)
		}
	}
}

func serve(ctx context.Context, cfg *config.Config, migrate bool) error {
	logger := config.NewLogger(cfg)
	slog.SetDefault(logger)

	var cleanup closer
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		cleanup.run(shutdownCtx, logger)
	}()

	tp, err := tracing.NewProvider(ctx, tracing.Config{
		Exporter:     cfg.TracingExporter,
		OTLPEndpoint: cfg.OTLPEndpoint,
		SampleRate:   cfg.TracingSampleRate,
		ServiceName:  "symposium",
	})
	if err != nil {
		return err
	}
	cleanup.add(tp.Shutdown)

	cat, source, err := loadCatalog(ctx, cfg)
	if err != nil {
		return fmt.Errorf("load catalog from %s: %w", source, err)
	}
	logger.Info("catalog loaded", "source", source, "events", cat.Len())

	kv, err := sqlite.Open(cfg.SelectionDBPath)
	if err != nil {
		return err
	}
	cleanup.add(func(context.Context) error { return kv.Close() })

	db, err := openPostgres(ctx, cfg.DBUrl)
	if err != nil {
		return err
	}
	cleanup.add(func(context.Context) error { return db.Close() })
	if migrate {
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			return err
		}
	}

	var store domain.DocumentStore
	switch cfg.DocumentStore {
	case config.DocumentStoreMongo:
		client, mdb, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return err
		}
		cleanup.add(client.Disconnect)
		store = mongostore.NewDocumentStore(mdb)
	case config.DocumentStoreMemory:
		logger.Warn("registrations are kept in memory and lost on restart")
		store = docstore.NewMemoryStore()
	default:
		store = postgres.NewDocumentStore(db)
	}
	logger.Info("document store ready", "backend", cfg.DocumentStore)

	secret := cfg.JWTSecret
	if secret == "" {
		secret, err = randomSecret()
		if err != nil {
			return err
		}
		logger.Warn("JWT_SECRET not set; using a random secret, tokens will not survive a restart")
	}
	issuer := auth.NewJWTIssuer(secret)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.AWSRegion,
			AccessKeyID:        cfg.Email.AWSAccessKeyID,
			SecretAccessKey:    cfg.Email.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.Email.InsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		return err
	}
	emailSvc := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	registrations := docstore.NewRegistrationRepository(store)
	userSvc := services.NewUserService(
		postgres.NewUserRepository(db),
		postgres.NewLoginCodeRepository(db),
		issuer,
		cfg.JWTExpiry,
		emailSvc,
	)
	cartSvc := services.NewCartService(
		cat, kv, registrations, userSvc, emailSvc,
		cfg.SessionIdleTimeout, logger, services.NewMetrics(registry),
	)
	ticketSvc := services.NewTicketService(registrations, issuer)

	handler := deliveryhttp.NewRouter(deliveryhttp.RouterDeps{
		Logger:         logger,
		Verifier:       issuer,
		Gatherer:       registry,
		SecureCookies:  cfg.IsProduction(),
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Catalog:        controllers.NewCatalogController(logger, cat),
		Cart:           controllers.NewCartController(logger, cartSvc, middleware.ContextIdentity{}),
		Users:          controllers.NewUserController(logger, userSvc),
		Tickets:        controllers.NewTicketController(logger, ticketSvc),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate jwt secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
