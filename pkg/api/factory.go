// Package api provides factory implementations for dependency injection
package api

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ssargent/gdstxt/pkg/convert"
	"github.com/ssargent/gdstxt/pkg/metrics"
	"github.com/ssargent/gdstxt/pkg/storage"
	"github.com/ssargent/gdstxt/pkg/tags"
)

// DefaultServerFactory is the default implementation of ServerFactory
type DefaultServerFactory struct{}

// NewServerFactory creates a new server factory
func NewServerFactory() ServerFactory {
	return &DefaultServerFactory{}
}

// CreateServer creates an API server
func (f *DefaultServerFactory) CreateServer(
	table *tags.Table,
	store ResultStore,
	config ServerConfig,
	m *metrics.Metrics,
	logger *slog.Logger,
	opts ...convert.Option,
) ServerStarter {
	return NewServer(table, store, config, m, logger, opts...)
}

// DefaultStoreFactory opens pebble-backed result stores
type DefaultStoreFactory struct{}

// NewStoreFactory creates a new store factory
func NewStoreFactory() StoreFactory {
	return &DefaultStoreFactory{}
}

// OpenStore creates dataDir if needed and opens the result store in it
func (f *DefaultStoreFactory) OpenStore(dataDir string) (ClosableStore, error) {
	if err := os.MkdirAll(dataDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	store, err := storage.NewDefaultStorage(dataDir)
	if err != nil {
		return nil, err
	}
	return store, nil
}
