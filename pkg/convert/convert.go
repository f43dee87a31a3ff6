// Package convert drives whole-file conversions between GDSII stream files and
// their text form, one record at a time.
package convert

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/ksuid"
	"github.com/ssargent/gdstxt/pkg/gds"
)

// Direction names a conversion
type Direction string

const (
	GDSToText Direction = "gds2txt"
	TextToGDS Direction = "txt2gds"
)

// ParseDirection accepts "gds2txt" or "txt2gds"
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case GDSToText, TextToGDS:
		return Direction(s), nil
	}
	return "", fmt.Errorf("unknown direction %q", s)
}

// maxLineSize bounds a text line; the longest record payload printed as
// 32-bit integers stays well below it.
const maxLineSize = 1 << 20

// Result summarises one conversion run
type Result struct {
	RunID     ksuid.KSUID   `json:"run_id"`
	Direction Direction     `json:"direction"`
	Records   int           `json:"records"`
	Skipped   int           `json:"skipped"`
	BytesOut  int64         `json:"bytes_out"`
	Duration  time.Duration `json:"duration"`
}

// Converter converts whole streams. It is safe for concurrent use; each call
// owns its own reader and writer.
type Converter struct {
	table gds.TagTable
	opts  options
}

// New creates a converter that resolves tags through table
func New(table gds.TagTable, opts ...Option) *Converter {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Converter{table: table, opts: o}
}

// Convert dispatches to GDSToText or TextToGDS
func (c *Converter) Convert(ctx context.Context, dir Direction, r io.Reader, w io.Writer) (*Result, error) {
	switch dir {
	case GDSToText:
		return c.GDSToText(ctx, r, w)
	case TextToGDS:
		return c.TextToGDS(ctx, r, w)
	}
	return nil, fmt.Errorf("unknown direction %q", dir)
}

// outcome is the transcoded form of one input record
type outcome struct {
	data []byte
	dt   gds.DataType
	err  error
}

// GDSToText reads binary records from r and writes one text line per record to w.
func (c *Converter) GDSToText(ctx context.Context, r io.Reader, w io.Writer) (*Result, error) {
	res := c.newResult(GDSToText)
	start := time.Now()

	reader := gds.NewReader(r)
	out := &countingWriter{w: bufio.NewWriter(w)}

	err := c.run(ctx, res, out, func(batch [][]byte) ([][]byte, bool, error) {
		batch = batch[:0]
		for len(batch) < cap(batch) {
			block, err := reader.Next()
			if err == io.EOF {
				return batch, true, nil
			}
			if err != nil {
				return batch, false, err
			}
			batch = append(batch, block)
		}
		return batch, false, nil
	}, func(block []byte) outcome {
		rec, err := gds.NewStreamRecord(block, c.table)
		if err != nil {
			return outcome{err: err}
		}
		line, err := rec.ToText()
		if err != nil {
			return outcome{dt: rec.DataType(), err: err}
		}
		return outcome{data: append([]byte(line), '\n'), dt: rec.DataType()}
	})

	return c.finish(res, out, start, err)
}

// TextToGDS reads text lines from r and writes one binary record per line to w.
// Blank lines are ignored.
func (c *Converter) TextToGDS(ctx context.Context, r io.Reader, w io.Writer) (*Result, error) {
	res := c.newResult(TextToGDS)
	start := time.Now()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	out := &countingWriter{w: bufio.NewWriter(w)}

	err := c.run(ctx, res, out, func(batch [][]byte) ([][]byte, bool, error) {
		batch = batch[:0]
		for len(batch) < cap(batch) {
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil {
					return batch, false, fmt.Errorf("failed to read text input: %w", err)
				}
				return batch, true, nil
			}
			if strings.TrimSpace(scanner.Text()) == "" {
				continue
			}
			batch = append(batch, []byte(scanner.Text()))
		}
		return batch, false, nil
	}, func(line []byte) outcome {
		rec, err := gds.NewTextRecord(string(line), c.table)
		if err != nil {
			return outcome{err: err}
		}
		block, err := rec.ToStream()
		if err != nil {
			return outcome{err: err}
		}
		var framed bytes.Buffer
		framed.Grow(len(block) + 2)
		if err := gds.WriteBlock(&framed, block); err != nil {
			return outcome{err: err}
		}
		return outcome{data: framed.Bytes(), dt: gds.DataType(block[1])}
	})

	return c.finish(res, out, start, err)
}

// run pulls batches from next, transcodes them with fn and writes the
// results in input order. A read error ends the run without writing the
// batch it interrupted, whose last line or block may be incomplete.
func (c *Converter) run(
	ctx context.Context,
	res *Result,
	out *countingWriter,
	next func(batch [][]byte) ([][]byte, bool, error),
	fn func([]byte) outcome,
) error {
	batch := make([][]byte, 0, c.opts.batchSize)
	results := make([]outcome, c.opts.batchSize)
	index := 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var done bool
		var readErr error
		batch, done, readErr = next(batch)
		if readErr != nil {
			c.opts.observer.RecordFailed(res.Direction, readErr)
			return readErr
		}

		c.transcode(batch, results, fn)

		for i := range batch {
			o := results[i]
			index++
			if o.err != nil {
				c.opts.observer.RecordFailed(res.Direction, o.err)
				if !c.opts.continueOnError {
					return fmt.Errorf("record %d: %w", index, o.err)
				}
				res.Skipped++
				c.opts.logger.Warn("skipping record",
					"run_id", res.RunID.String(),
					"record", index,
					"kind", gds.ErrorKind(o.err),
					"error", o.err)
				continue
			}
			if _, err := out.Write(o.data); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			res.Records++
			c.opts.observer.RecordConverted(res.Direction, o.dt)
		}

		if done {
			return nil
		}
	}
}

// transcode fills results[i] with fn(batch[i]), in parallel when configured
func (c *Converter) transcode(batch [][]byte, results []outcome, fn func([]byte) outcome) {
	if c.opts.workers <= 1 || len(batch) < 2 {
		for i, in := range batch {
			results[i] = fn(in)
		}
		return
	}

	var wg sync.WaitGroup
	jobs := make(chan int)
	workers := c.opts.workers
	if workers > len(batch) {
		workers = len(batch)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = fn(batch[i])
			}
		}()
	}
	for i := range batch {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}

func (c *Converter) newResult(dir Direction) *Result {
	return &Result{RunID: ksuid.New(), Direction: dir}
}

func (c *Converter) finish(res *Result, out *countingWriter, start time.Time, err error) (*Result, error) {
	if flushErr := out.Flush(); flushErr != nil && err == nil {
		err = fmt.Errorf("failed to flush output: %w", flushErr)
	}
	res.BytesOut = out.n
	res.Duration = time.Since(start)
	c.opts.observer.ConversionFinished(res.Direction, res, err)

	if err != nil {
		c.opts.logger.Error("conversion failed",
			"run_id", res.RunID.String(),
			"direction", string(res.Direction),
			"records", res.Records,
			"error", err)
		return res, err
	}

	c.opts.logger.Info("conversion finished",
		"run_id", res.RunID.String(),
		"direction", string(res.Direction),
		"records", res.Records,
		"skipped", res.Skipped,
		"bytes_out", res.BytesOut,
		"duration", res.Duration)
	return res, nil
}

type countingWriter struct {
	w *bufio.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

func (cw *countingWriter) Flush() error {
	return cw.w.Flush()
}
