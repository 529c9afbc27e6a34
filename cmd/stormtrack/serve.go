package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/storm-track-ingest/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/storm-track-ingest/internal/adapter/kafka"
	"github.com/couchcryptid/storm-track-ingest/internal/adapter/postgres"
	"github.com/couchcryptid/storm-track-ingest/internal/atcf"
	"github.com/couchcryptid/storm-track-ingest/internal/config"
	"github.com/couchcryptid/storm-track-ingest/internal/nhc"
	"github.com/couchcryptid/storm-track-ingest/internal/observability"
	"github.com/couchcryptid/storm-track-ingest/internal/pipeline"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the ingestion service",
		Long: "Polls the configured storms, decodes their advisory decks, publishes the\n" +
			"records to the configured sinks, and serves health and metrics endpoints.\n" +
			"All settings come from environment variables.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	fetcher := nhc.NewClient(cfg.FTPHost, cfg.FTPTimeout, logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var loaders []pipeline.Loader

	if cfg.KafkaSink() {
		writer := kafkaadapter.NewWriter(cfg, logger)
		defer writer.Close() //nolint:errcheck // shutdown path
		loaders = append(loaders, writer)
		logger.Info("kafka sink enabled", "topic", cfg.KafkaSinkTopic)
	}
	if cfg.PostgresSink() {
		loader, err := postgres.NewLoader(ctx, cfg.PostgresDSN, logger)
		if err != nil {
			return err
		}
		defer loader.Close() //nolint:errcheck // shutdown path
		loaders = append(loaders, loader)
		logger.Info("postgres sink enabled")
	}

	storms := make([]pipeline.StormRequest, 0, len(cfg.StormIDs))
	for _, id := range cfg.StormIDs {
		storms = append(storms, pipeline.StormRequest{
			ID:   id,
			Deck: atcf.FileDeck(cfg.FileDeck),
			Mode: atcf.Mode(cfg.Mode),
		})
	}

	p := pipeline.New(fetcher, loaders, storms, cfg.RecordTypes, cfg.PollInterval, logger, metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, statusReporter{p}, logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return p.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("service error", "error", err)
		return err
	}
	logger.Info("shutdown complete")
	return nil
}

// statusReporter exposes pipeline ingestion state in the HTTP adapter's shape.
type statusReporter struct {
	p *pipeline.Pipeline
}

func (r statusReporter) StormStatuses() []httpadapter.StormStatus {
	src := r.p.StormStatuses()
	out := make([]httpadapter.StormStatus, len(src))
	for i, s := range src {
		out[i] = httpadapter.StormStatus{
			StormID:     s.StormID,
			Records:     s.Records,
			LastIngest:  s.LastIngest,
			LastError:   s.LastError,
			LastSuccess: s.LastSuccess,
		}
	}
	return out
}
