package backend

import (
	"context"
	"fmt"
	"log/slog"

	"financas/internal/storage"
	"financas/internal/storage/firestore"
	"financas/internal/storage/memory"
	"financas/internal/storage/mongo"
	"financas/internal/storage/relational"
	"financas/internal/storage/sqlite"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		repo storage.Repository
		err  error
	)
	switch config.Type {
	case MemoryBackend:
		repo = memory.New()
	case SQLiteBackend:
		repo, err = sqlite.NewRepository(config.SQLiteDBPath)
	case RelationalBackend:
		repo, err = relational.Open(config.DatabaseDriver, config.DatabaseURL, f.logger)
	case FirestoreBackend:
		var opts []firestore.Option
		if config.CollectionPrefix != "" {
			opts = append(opts, firestore.WithCollectionPrefix(config.CollectionPrefix))
		}
		repo, err = firestore.Connect(ctx, config.FirestoreProjectID, config.FirebaseCredentials, opts...)
	case MongoBackend:
		repo, err = mongo.Connect(ctx, config.MongoURI, config.MongoDatabase)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s backend: %w", config.Type, err)
	}

	f.logger.Info("Initialized storage backend", "backend", config.Type.String())

	return &BackendResult{
		Repository: repo,
		Cleanup:    repo.Close,
	}, nil
}
