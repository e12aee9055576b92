package logsink

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"truckmonitor/internal/model"
)

// ErrStoreUnwritable is matched by every append failure.
var ErrStoreUnwritable = errors.New("log store unwritable")

// StoreError describes a failed append.
type StoreError struct {
	Path string
	Op   string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("log store %s: %s: %v", e.Path, e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return target == ErrStoreUnwritable
}

// Store appends records durably.
type Store interface {
	Append(records ...model.LogRecord) error
}

// FileStore is an append-only text store, one record per line. It assumes a
// single writer; the mutex only serializes callers within this process.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store at path. The file is created on first append.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the store location.
func (s *FileStore) Path() string {
	return s.path
}

// Append writes each record as one line and syncs before returning. Lines are
// never merged, rewritten or deduplicated.
func (s *FileStore) Append(records ...model.LogRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return &StoreError{Path: s.path, Op: "mkdir", Err: err}
		}
	}

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return &StoreError{Path: s.path, Op: "open", Err: err}
	}

	for _, r := range records {
		// One write per line so readers never observe half a record.
		if _, err := file.WriteString(FormatLine(r)); err != nil {
			file.Close()
			return &StoreError{Path: s.path, Op: "write", Err: err}
		}
	}

	if err := file.Sync(); err != nil {
		file.Close()
		return &StoreError{Path: s.path, Op: "sync", Err: err}
	}
	if err := file.Close(); err != nil {
		return &StoreError{Path: s.path, Op: "close", Err: err}
	}
	return nil
}

// ReadLines returns the store content as lines without trailing newlines.
// A missing store reads as empty.
func ReadLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open log store: %w", err)
	}
	defer file.Close()

	lines := []string{}
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read log store: %w", err)
	}
	return lines, nil
}
