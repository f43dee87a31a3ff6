// Package di provides dependency injection container
package di

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/ssargent/gdstxt/pkg/api"
	"github.com/ssargent/gdstxt/pkg/config"
	"github.com/ssargent/gdstxt/pkg/convert"
	"github.com/ssargent/gdstxt/pkg/metrics"
	"github.com/ssargent/gdstxt/pkg/tags"
)

// Container holds all the dependencies for the application
type Container struct {
	serverFactory api.ServerFactory
	storeFactory  api.StoreFactory

	config  *config.Config
	logger  *slog.Logger
	table   *tags.Table
	metrics *metrics.Metrics
}

// NewContainer creates a new dependency injection container. Configure must
// be called before the converter accessors are used.
func NewContainer() *Container {
	return &Container{
		serverFactory: api.NewServerFactory(),
		storeFactory:  api.NewStoreFactory(),
		config:        config.DefaultConfig(),
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		table:         tags.Default(),
		metrics:       metrics.New(),
	}
}

// Configure applies cfg: logs go to logOut and the tag table is loaded from
// cfg.Conversion.TagTable when set.
func (c *Container) Configure(cfg *config.Config, logOut io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	table := tags.Default()
	if cfg.Conversion.TagTable != "" {
		var err error
		table, err = tags.LoadFile(cfg.Conversion.TagTable)
		if err != nil {
			return err
		}
	}

	c.config = cfg
	c.logger = cfg.Logging.NewLogger(logOut)
	c.table = table
	return nil
}

// Config returns the active configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger
func (c *Container) Logger() *slog.Logger {
	return c.logger
}

// TagTable returns the configured tag table
func (c *Container) TagTable() *tags.Table {
	return c.table
}

// Metrics returns the shared metrics instance
func (c *Container) Metrics() *metrics.Metrics {
	return c.metrics
}

// ConvertOptions returns converter options derived from the configuration
func (c *Container) ConvertOptions() []convert.Option {
	conv := c.config.Conversion
	return []convert.Option{
		convert.WithWorkers(conv.Workers),
		convert.WithBatchSize(conv.BatchSize),
		convert.WithContinueOnError(conv.ContinueOnError),
	}
}

// Converter builds a converter from the configuration
func (c *Container) Converter() *convert.Converter {
	opts := append(c.ConvertOptions(),
		convert.WithLogger(c.logger),
		convert.WithObserver(c.metrics),
	)
	return convert.New(c.table, opts...)
}

// GetServerFactory returns the server factory
func (c *Container) GetServerFactory() api.ServerFactory {
	return c.serverFactory
}

// SetServerFactory allows overriding the server factory (for testing)
func (c *Container) SetServerFactory(factory api.ServerFactory) {
	c.serverFactory = factory
}

// GetStoreFactory returns the result store factory
func (c *Container) GetStoreFactory() api.StoreFactory {
	return c.storeFactory
}

// SetStoreFactory allows overriding the result store factory (for testing)
func (c *Container) SetStoreFactory(factory api.StoreFactory) {
	c.storeFactory = factory
}
