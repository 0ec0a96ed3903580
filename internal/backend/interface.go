// Package backend builds the storage.Repository selected by configuration.
package backend

import (
	"context"

	"financas/internal/storage"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// BackendResult contains the repository and its cleanup function.
type BackendResult struct {
	Repository storage.Repository
	Cleanup    CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Relational (gorm) specific
	DatabaseDriver string
	DatabaseURL    string

	// Firestore specific
	FirestoreProjectID  string
	FirebaseCredentials string
	CollectionPrefix    string

	// MongoDB specific
	MongoURI      string
	MongoDatabase string
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend     BackendType = "memory"
	SQLiteBackend     BackendType = "sqlite"
	RelationalBackend BackendType = "relational"
	FirestoreBackend  BackendType = "firestore"
	MongoBackend      BackendType = "mongo"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, RelationalBackend, FirestoreBackend, MongoBackend:
		return true
	default:
		return false
	}
}
