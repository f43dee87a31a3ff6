/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/klauspost/compress/gzip"
	"github.com/ssargent/gdstxt/pkg/convert"
)

func isGzip(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".gz")
}

type inputFile struct {
	io.Reader
	f  *os.File
	gz *gzip.Reader
}

func (in *inputFile) Close() error {
	if in.gz != nil {
		_ = in.gz.Close()
	}
	return in.f.Close()
}

// openInput opens path for reading, decompressing .gz files
func openInput(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	if !isGzip(path) {
		return &inputFile{Reader: f, f: f}, nil
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read gzip header of %s: %w", path, err)
	}
	return &inputFile{Reader: gz, f: f, gz: gz}, nil
}

// outputFile is written to a temporary file next to path and renamed into
// place by Commit. A lock file guards path against concurrent writers.
type outputFile struct {
	io.Writer
	path string
	f    *os.File
	gz   *gzip.Writer
	lock *flock.Flock
}

func lockPath(path string) string {
	return path + ".lock"
}

// createOutput prepares path for writing, compressing .gz files
func createOutput(path string) (*outputFile, error) {
	lock := flock.New(lockPath(path))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock output: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("output %s is being written by another process", path)
	}

	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		releaseLock(lock)
		return nil, fmt.Errorf("failed to create output: %w", err)
	}

	out := &outputFile{Writer: f, path: path, f: f, lock: lock}
	if isGzip(path) {
		out.gz = gzip.NewWriter(f)
		out.Writer = out.gz
	}
	return out, nil
}

// Commit flushes the output and moves it into place
func (o *outputFile) Commit() error {
	defer releaseLock(o.lock)

	if o.gz != nil {
		if err := o.gz.Close(); err != nil {
			o.discard()
			return fmt.Errorf("failed to finish gzip stream: %w", err)
		}
	}
	if err := o.f.Close(); err != nil {
		_ = os.Remove(o.f.Name())
		return fmt.Errorf("failed to close output: %w", err)
	}
	if err := os.Chmod(o.f.Name(), 0644); err != nil {
		_ = os.Remove(o.f.Name())
		return fmt.Errorf("failed to set output permissions: %w", err)
	}
	if err := os.Rename(o.f.Name(), o.path); err != nil {
		_ = os.Remove(o.f.Name())
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}

// Abort removes the partial output
func (o *outputFile) Abort() {
	defer releaseLock(o.lock)
	o.discard()
}

func (o *outputFile) discard() {
	_ = o.f.Close()
	_ = os.Remove(o.f.Name())
}

// releaseLock unlocks but keeps the lock file. Removing it would let a new
// writer lock a fresh inode while a waiter still holds the old one.
func releaseLock(lock *flock.Flock) {
	_ = lock.Unlock()
}

// convertFile converts input to output in the given direction. The output
// is left untouched when the conversion fails.
func convertFile(ctx context.Context, conv *convert.Converter, dir convert.Direction, input, output string) (*convert.Result, error) {
	if same, err := samePath(input, output); err != nil {
		return nil, err
	} else if same {
		return nil, fmt.Errorf("input and output are the same file: %s", input)
	}

	in, err := openInput(input)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	out, err := createOutput(output)
	if err != nil {
		return nil, err
	}

	res, err := conv.Convert(ctx, dir, in, out)
	if err != nil {
		out.Abort()
		return res, err
	}
	if err := out.Commit(); err != nil {
		return res, err
	}
	return res, nil
}

func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, fmt.Errorf("invalid path %s: %w", a, err)
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, fmt.Errorf("invalid path %s: %w", b, err)
	}
	return absA == absB, nil
}
