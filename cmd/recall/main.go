// Command recall is a local retrieval engine for RAG pipelines.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/recall/internal/adapters/driven/admission"
	"github.com/custodia-labs/recall/internal/adapters/driven/config/file"
	"github.com/custodia-labs/recall/internal/adapters/driven/embedding/bagofwords"
	"github.com/custodia-labs/recall/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/recall/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/recall/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/recall/internal/adapters/driving/cli"
	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
	"github.com/custodia-labs/recall/internal/core/services"
	"github.com/custodia-labs/recall/internal/logger"
	"github.com/custodia-labs/recall/internal/normalisers"
	"github.com/custodia-labs/recall/internal/postprocessors/chunker"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx, version, bootstrap); err != nil {
		stop()
		os.Exit(1)
	}
}

// bootstrap wires the engine from settings.
func bootstrap(ctx context.Context, opts cli.Options) (*cli.Services, error) {
	configStore, err := openConfig(opts)
	if err != nil {
		return nil, err
	}

	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, err
	}
	if err := settingsService.Validate(); err != nil {
		return nil, err
	}
	if opts.DataDir != "" {
		settings.Storage.DataDir = opts.DataDir
	}

	store, err := openStore(opts, settings)
	if err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(ctx, settings.Embedding)
	if err != nil {
		store.Close()
		return nil, err
	}

	monitor := admission.New(settings.Admission)
	chunk := chunker.New(
		chunker.WithChunkSize(settings.Chunker.Size),
		chunker.WithOverlap(settings.Chunker.Overlap),
	)

	ingest := services.NewIngestService(store, embedder, chunk, monitor)
	ingest.SetDefaultCollection(settings.DefaultCollection)

	search := services.NewSearchService(store, embedder, monitor,
		services.WithSearchSettings(settings.Search),
		services.WithDefaultCollection(settings.DefaultCollection),
	)

	return &cli.Services{
		Search:      search,
		Ingest:      ingest,
		Collections: services.NewCollectionService(store, settings.DefaultCollection),
		Settings:    settingsService,
		Normalisers: normalisers.NewDefaultRegistry(),
		Admission:   monitor,
		Close: func() error {
			return errors.Join(embedder.Close(), store.Close())
		},
	}, nil
}

func openConfig(opts cli.Options) (driven.ConfigStore, error) {
	if opts.Ephemeral {
		return memory.NewConfigStore(), nil
	}
	if opts.ConfigPath != "" {
		return file.NewConfigStoreFromFile(opts.ConfigPath)
	}
	return file.NewConfigStore("")
}

func openStore(opts cli.Options, settings *domain.Settings) (driven.ChunkStore, error) {
	if opts.Ephemeral {
		logger.Info("Ephemeral mode: chunks are kept in memory")
		return memory.NewChunkStore(), nil
	}
	store, err := sqlite.NewStore(settings.Storage.DataDir)
	if err != nil {
		return nil, err
	}
	logger.Debug("Database: %s", store.Path())
	return store, nil
}

func newEmbedder(ctx context.Context, cfg domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	switch cfg.Provider {
	case domain.EmbeddingProviderOllama:
		svc := ollama.NewEmbeddingService(ollama.Config{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
		if err := svc.Ping(ctx); err != nil {
			logger.Warn("Ollama not reachable: %v", err)
		}
		return svc, nil
	default:
		if cfg.VocabularyFile == "" {
			return bagofwords.New(nil), nil
		}
		vocab, err := bagofwords.LoadVocabulary(cfg.VocabularyFile)
		if err != nil {
			return nil, fmt.Errorf("embedding: %w", err)
		}
		return bagofwords.New(vocab), nil
	}
}
