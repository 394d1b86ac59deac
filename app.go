package main

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/example/examprep/internal/ai"
	"github.com/example/examprep/internal/config"
	"github.com/example/examprep/internal/database"
	"github.com/example/examprep/internal/store"
)

// openSlot creates the snapshot slot selected by the config. The returned
// function releases it.
func openSlot(c *config.Config) (database.Slot, func() error, error) {
	noop := func() error { return nil }

	switch c.Storage.Driver {
	case config.StorageFile:
		return database.NewFileSlot(c.Storage.Path), noop, nil
	case config.StorageMemory:
		return database.NewMemorySlot(), noop, nil
	case config.StorageSQLite, config.StoragePostgres:
		db, err := database.Connect(c.Storage.Driver, c.Storage.DSN)
		if err != nil {
			return nil, nil, err
		}
		return database.NewSnapshotRepository(db, c.Storage.Key), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
}

// newGenerator builds the content generator selected by the config
func newGenerator(ctx context.Context, c *config.Config, log *zap.Logger) (ai.Generator, error) {
	var primary ai.Generator
	switch c.Generator.Provider {
	case config.ProviderMock:
		return ai.NewMock(), nil
	case config.ProviderOpenAI:
		client, err := ai.NewChatGPT(c.Generator.OpenAIKey,
			ai.WithChatGPTModel(c.Generator.OpenAIModel),
			ai.WithHTTPClient(&http.Client{Timeout: c.GeneratorTimeout()}))
		if err != nil {
			return nil, err
		}
		primary = ai.NewAssistant(client)
	case config.ProviderGemini:
		client, err := ai.NewGemini(ctx, c.Generator.GeminiKey, c.Generator.GeminiModel)
		if err != nil {
			return nil, err
		}
		primary = ai.NewAssistant(client)
	default:
		return nil, fmt.Errorf("unknown generator provider %q", c.Generator.Provider)
	}

	log.Info("Using content generator", zap.String("provider", c.Generator.Provider))
	if c.Generator.Fallback {
		return ai.NewFallback(primary, ai.NewMock(), log), nil
	}
	return primary, nil
}

// openStore wires the slot and generator into a loaded store
func openStore(ctx context.Context) (*store.Store, func(), error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, err
	}

	slot, closeSlot, err := openSlot(cfg)
	if err != nil {
		return nil, nil, err
	}
	release := func() {
		if err := closeSlot(); err != nil {
			logger.Warn("Failed to close storage", zap.Error(err))
		}
	}

	gen, err := newGenerator(ctx, cfg, logger)
	if err != nil {
		release()
		return nil, nil, err
	}

	st := store.New(slot, gen, store.WithLogger(logger), store.WithLocation(loc))
	if err := st.Open(ctx); err != nil {
		release()
		return nil, nil, err
	}
	return st, release, nil
}
