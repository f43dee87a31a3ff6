package convert

import (
	"io"
	"log/slog"

	"github.com/ssargent/gdstxt/pkg/gds"
)

// DefaultBatchSize is the number of records transcoded per batch
const DefaultBatchSize = 256

// Observer receives per-record and per-run events. Implementations must be
// safe for concurrent use when Workers > 1.
type Observer interface {
	RecordConverted(dir Direction, dt gds.DataType)
	RecordFailed(dir Direction, err error)
	ConversionFinished(dir Direction, res *Result, err error)
}

type nopObserver struct{}

func (nopObserver) RecordConverted(Direction, gds.DataType)      {}
func (nopObserver) RecordFailed(Direction, error)                {}
func (nopObserver) ConversionFinished(Direction, *Result, error) {}

type options struct {
	workers         int
	batchSize       int
	continueOnError bool
	logger          *slog.Logger
	observer        Observer
}

// Option configures a Converter
type Option func(*options)

func defaultOptions() options {
	return options{
		workers:   1,
		batchSize: DefaultBatchSize,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		observer:  nopObserver{},
	}
}

// WithWorkers transcodes each batch with n goroutines. Output order always
// matches input order. Values below 1 are treated as 1.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = 1
		}
		o.workers = n
	}
}

// WithBatchSize sets how many records are read ahead and transcoded together
func WithBatchSize(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = 1
		}
		o.batchSize = n
	}
}

// WithContinueOnError skips records that fail to transcode instead of
// aborting the run. Framing errors still abort.
func WithContinueOnError(enabled bool) Option {
	return func(o *options) {
		o.continueOnError = enabled
	}
}

// WithLogger sets the logger for skipped records and run summaries
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver registers a metrics hook
func WithObserver(observer Observer) Option {
	return func(o *options) {
		if observer != nil {
			o.observer = observer
		}
	}
}
