// Package api provides interfaces for dependency injection
package api

import (
	"context"
	"io"
	"log/slog"

	"github.com/ssargent/gdstxt/pkg/convert"
	"github.com/ssargent/gdstxt/pkg/metrics"
	"github.com/ssargent/gdstxt/pkg/tags"
)

// ServerStarter runs the API server
type ServerStarter interface {
	// Serve blocks until ctx is cancelled or the listener fails
	Serve(ctx context.Context) error
}

// ServerFactory creates server instances
type ServerFactory interface {
	CreateServer(
		table *tags.Table,
		store ResultStore,
		config ServerConfig,
		m *metrics.Metrics,
		logger *slog.Logger,
		opts ...convert.Option,
	) ServerStarter
}

// ClosableStore is a ResultStore that owns resources
type ClosableStore interface {
	ResultStore
	io.Closer
}

// StoreFactory opens result stores
type StoreFactory interface {
	OpenStore(dataDir string) (ClosableStore, error)
}
