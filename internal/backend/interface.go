package backend

import (
	"context"

	"studytracker/internal/config"
	"studytracker/internal/services"
	"studytracker/internal/storage"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the configured store, the optional entry publisher
// and a cleanup function releasing both.
type BackendResult struct {
	Store storage.Store
	// Publisher is nil when entry notifications are disabled.
	Publisher services.EntryPublisher
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a backend instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Backend type
	Type BackendType

	// JSON file specific
	DataFile string

	// SQLite specific
	SQLiteDBPath string

	// Entry notifications, disabled when AMQPURL is empty
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// DialAttempts bounds the AMQP connection retries at startup.
	DialAttempts int
}

// BackendType represents the type of backend
type BackendType string

const (
	JSONBackend   BackendType = config.BackendJSON
	SQLiteBackend BackendType = config.BackendSQLite
	MemoryBackend BackendType = config.BackendMemory
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case JSONBackend, SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
