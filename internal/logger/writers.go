// internal/logger/writers.go
package logger

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const dayLayout = "2006-01-02"

// CSVOptions configures a SafeCSVWriter.
type CSVOptions struct {
	// Header is written at the top of every new or empty file.
	Header []string
	// FlushInterval of the background flush; 0 flushes on Close only.
	FlushInterval time.Duration
	// RotateDaily appends the local date to the file name, so
	// "data/swaps.csv" becomes "data/swaps-2025-06-01.csv", and starts a new
	// file at the first write of a new day.
	RotateDaily bool
}

// SafeCSVWriter appends CSV rows from any goroutine. It backs the swap
// history log.
type SafeCSVWriter struct {
	mu     sync.Mutex
	opts   CSVOptions
	base   string
	day    string
	path   string
	file   *os.File
	writer *csv.Writer
	logger *zap.Logger
	now    func() time.Time
	done   chan struct{}
	closed bool

	writtenRecords uint64
	flushCount     uint64
	rotations      uint64
}

// NewSafeCSVWriter opens path for appending, creating its directory.
func NewSafeCSVWriter(path string, opts CSVOptions, logger *zap.Logger) (*SafeCSVWriter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	w := &SafeCSVWriter{
		opts:   opts,
		base:   path,
		logger: logger,
		now:    time.Now,
		done:   make(chan struct{}),
	}
	if err := w.openLocked(w.now()); err != nil {
		return nil, err
	}

	if opts.FlushInterval > 0 {
		go w.flushLoop(opts.FlushInterval)
	}
	return w, nil
}

// pathFor returns the file for the day of t.
func (w *SafeCSVWriter) pathFor(t time.Time) (path, day string) {
	if !w.opts.RotateDaily {
		return w.base, ""
	}
	day = t.Format(dayLayout)
	ext := filepath.Ext(w.base)
	return strings.TrimSuffix(w.base, ext) + "-" + day + ext, day
}

func (w *SafeCSVWriter) openLocked(t time.Time) error {
	path, day := w.pathFor(t)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to stat file: %w", err)
	}

	writer := csv.NewWriter(file)
	if stat.Size() == 0 && len(w.opts.Header) > 0 {
		if err := writer.Write(w.opts.Header); err != nil {
			file.Close()
			return fmt.Errorf("failed to write header: %w", err)
		}
		writer.Flush()
	}

	w.file, w.writer, w.path, w.day = file, writer, path, day
	return nil
}

// rotateLocked closes the current file when the day changed.
func (w *SafeCSVWriter) rotateLocked(t time.Time) error {
	if !w.opts.RotateDaily || t.Format(dayLayout) == w.day {
		return nil
	}
	prev := w.path
	if err := w.closeFileLocked(); err != nil {
		return err
	}
	if err := w.openLocked(t); err != nil {
		return err
	}
	w.rotations++
	w.logger.Info("Swap history rotated", zap.String("from", prev), zap.String("to", w.path))
	return nil
}

// WriteRecord appends one row, rotating first when a new day began.
func (w *SafeCSVWriter) WriteRecord(record []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return fmt.Errorf("csv writer %s is closed", w.base)
	}
	if err := w.rotateLocked(w.now()); err != nil {
		return fmt.Errorf("failed to rotate: %w", err)
	}
	if err := w.writer.Write(record); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	w.writtenRecords++
	return nil
}

// Flush writes buffered rows and syncs the file.
func (w *SafeCSVWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	return w.flushLocked()
}

func (w *SafeCSVWriter) flushLocked() error {
	w.writer.Flush()
	if err := w.writer.Error(); err != nil {
		return fmt.Errorf("CSV writer error: %w", err)
	}
	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync file: %w", err)
	}
	w.flushCount++
	return nil
}

func (w *SafeCSVWriter) closeFileLocked() error {
	w.writer.Flush()
	if err := w.writer.Error(); err != nil {
		w.file.Close()
		return fmt.Errorf("CSV writer error: %w", err)
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	return nil
}

func (w *SafeCSVWriter) flushLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.Flush(); err != nil {
				w.logger.Error("Periodic CSV flush failed", zap.String("file", w.Path()), zap.Error(err))
			}
		case <-w.done:
			return
		}
	}
}

// Close stops the flush loop and writes out pending rows. Safe to call twice.
func (w *SafeCSVWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	close(w.done)

	if err := w.closeFileLocked(); err != nil {
		return err
	}
	w.logger.Debug("Swap history closed",
		zap.String("file", w.path),
		zap.Uint64("records", w.writtenRecords),
		zap.Uint64("rotations", w.rotations))
	return nil
}

// Path returns the file currently written to.
func (w *SafeCSVWriter) Path() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.path
}

// GetStats returns the rows written and flushes done.
func (w *SafeCSVWriter) GetStats() (records, flushes uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.writtenRecords, w.flushCount
}
