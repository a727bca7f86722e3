package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finsight/finsight/internal/config"
	"github.com/finsight/finsight/internal/embed"
	"github.com/finsight/finsight/internal/log"
	"github.com/finsight/finsight/internal/observability"
	"github.com/finsight/finsight/internal/postgres"
	"github.com/finsight/finsight/internal/semantic"
)

// app holds the wired application components shared by the commands.
type app struct {
	Config  *config.Config
	Logger  log.Logger
	Pool    *pgxpool.Pool
	Service *semantic.Service

	shutdownTracing func(context.Context) error
}

// newApp loads configuration and wires the embedding client, the postgres
// repository, and the semantic service. Callers must Close the returned
// app.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if os.Getenv("GEMINI_API_KEY") == "" {
		return nil, errors.New("GEMINI_API_KEY is required")
	}

	shutdownTracing := func(context.Context) error { return nil }
	if cfg.OTLPEndpoint != "" {
		shutdownTracing, err = observability.Setup(ctx, observability.Config{
			Endpoint:    cfg.OTLPEndpoint,
			ServiceName: "finsight",
		})
		if err != nil {
			return nil, fmt.Errorf("setting up tracing: %w", err)
		}
	}

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", cfg.Redacted(), err)
	}

	repo := postgres.NewRepository(pool, logger.With("component", "postgres"))

	g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
	provider := embed.NewGoogleProvider(g, cfg.EmbedderModel, int32(cfg.EmbedderDimension))

	clientOpts := []embed.Option{
		embed.WithDimension(cfg.EmbedderDimension),
		embed.WithLogger(logger.With("component", "embed")),
	}
	if cfg.EmbedRateLimit > 0 {
		clientOpts = append(clientOpts, embed.WithRateLimit(cfg.EmbedRateLimit, 1))
	}
	client := embed.NewClient(provider, clientOpts...)

	svc := semantic.New(repo, repo, client, logger.With("component", "semantic"))

	return &app{
		Config:          cfg,
		Logger:          logger,
		Pool:            pool,
		Service:         svc,
		shutdownTracing: shutdownTracing,
	}, nil
}

// Close releases the connection pool and flushes pending trace spans.
func (a *app) Close(ctx context.Context) error {
	a.Pool.Close()
	if err := a.shutdownTracing(ctx); err != nil {
		return fmt.Errorf("flushing traces: %w", err)
	}
	return nil
}

func newLogger(cfg *config.Config) log.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	return log.New(log.Config{Level: level, JSON: cfg.LogJSON})
}
