package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/platinummonkey/poolguide/pkg/observability"
)

const currentFileName = "audit.log"

// FileLogger appends events as JSON lines and rotates by size
type FileLogger struct {
	basePath string
	maxSize  int64
	maxFiles int
	logger   *observability.Logger

	mu      sync.Mutex
	file    *os.File
	encoder *json.Encoder
	closed  bool
	now     func() time.Time
}

// FileLoggerConfig configures the file logger
type FileLoggerConfig struct {
	BasePath string // directory holding audit.log and rotated files
	MaxSize  int64  // bytes before rotation, default 100MB
	MaxFiles int    // rotated files kept, default 10

	// Logger receives rotation failures, default the context-free service logger
	Logger *observability.Logger
}

// DefaultFileLoggerConfig returns default configuration
func DefaultFileLoggerConfig() FileLoggerConfig {
	return FileLoggerConfig{
		BasePath: "audit",
		MaxSize:  100 * 1024 * 1024,
		MaxFiles: 10,
	}
}

// NewFileLogger creates the directory if needed and opens audit.log for appending
func NewFileLogger(config FileLoggerConfig) (*FileLogger, error) {
	if err := os.MkdirAll(config.BasePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audit log directory: %w", err)
	}

	l := &FileLogger{
		basePath: config.BasePath,
		maxSize:  config.MaxSize,
		maxFiles: config.MaxFiles,
		logger:   config.Logger,
		now:      time.Now,
	}
	if l.maxSize <= 0 {
		l.maxSize = 100 * 1024 * 1024
	}
	if l.maxFiles <= 0 {
		l.maxFiles = 10
	}
	if l.logger == nil {
		l.logger = observability.GetLogger(context.Background())
	}
	l.logger = l.logger.WithField("component", "audit")

	if info, err := os.Stat(l.currentPath()); err == nil && info.Size() >= l.maxSize {
		l.rotateFile()
	}
	if err := l.openFile(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *FileLogger) currentPath() string {
	return filepath.Join(l.basePath, currentFileName)
}

func (l *FileLogger) openFile() error {
	file, err := os.OpenFile(l.currentPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return fmt.Errorf("failed to open audit log file: %w", err)
	}
	l.file = file
	l.encoder = json.NewEncoder(file)
	return nil
}

// rotate moves the full audit.log aside and reopens audit.log. A failed
// rename leaves the old file in place to be retried on the next write.
func (l *FileLogger) rotate() error {
	if l.file != nil {
		l.file.Close()
		l.file = nil
		l.encoder = nil
	}
	l.rotateFile()
	return l.openFile()
}

// rotateFile renames audit.log and prunes old rotations. Failures are logged only.
func (l *FileLogger) rotateFile() {
	rotated := filepath.Join(l.basePath, fmt.Sprintf("audit-%s.log", l.now().UTC().Format("20060102-150405.000000000")))
	if err := os.Rename(l.currentPath(), rotated); err != nil {
		l.logger.WithError(err).Warn("Failed to rotate audit log")
		return
	}
	if err := l.cleanupOldFiles(); err != nil {
		l.logger.WithError(err).Warn("Failed to remove old audit logs")
	}
}

// cleanupOldFiles keeps the newest maxFiles rotated files
func (l *FileLogger) cleanupOldFiles() error {
	files, err := l.rotatedFiles()
	if err != nil {
		return err
	}
	if len(files) <= l.maxFiles {
		return nil
	}

	var errs []error
	for _, f := range files[:len(files)-l.maxFiles] {
		if err := os.Remove(f); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// rotatedFiles lists rotated files oldest first. The timestamp names sort chronologically.
func (l *FileLogger) rotatedFiles() ([]string, error) {
	files, err := filepath.Glob(filepath.Join(l.basePath, "audit-*.log"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// Log appends the event, rotating first when the current file is full
func (l *FileLogger) Log(_ context.Context, event *Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return errors.New("audit log is closed")
	}

	if l.file == nil {
		if err := l.openFile(); err != nil {
			return err
		}
	} else if info, err := l.file.Stat(); err == nil && info.Size() >= l.maxSize {
		if err := l.rotate(); err != nil {
			return err
		}
	}

	if err := l.encoder.Encode(event); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// Close closes the current file
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.closed = true
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	l.encoder = nil
	return err
}

// ReadLogs returns events from the rotated files and the current file, oldest
// first, keeping only those that match f. A positive f.Limit keeps the newest.
func (l *FileLogger) ReadLogs(f Filter) ([]*Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	files, err := l.rotatedFiles()
	if err != nil {
		return nil, err
	}
	files = append(files, l.currentPath())

	var events []*Event
	for _, path := range files {
		if err := readFile(path, f, &events); err != nil {
			return nil, err
		}
	}

	if f.Limit > 0 && len(events) > f.Limit {
		events = events[len(events)-f.Limit:]
	}
	return events, nil
}

func readFile(path string, f Filter, events *[]*Event) error {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	for {
		var e Event
		if err := decoder.Decode(&e); err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("failed to decode audit log entry in %s: %w", filepath.Base(path), err)
		}
		if f.Matches(&e) {
			*events = append(*events, &e)
		}
	}
}
