package receipt

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Writer for receipts
type Writer interface {
	Write(r Receipt) error
	Close() error
}

// Mode write strategy
type Mode string

const (
	// ModeOverwrite truncates the file and writes a single JSON object.
	ModeOverwrite Mode = "overwrite"
	// ModeAppend appends JSONL, building an audit trail across runs.
	ModeAppend Mode = "append"
)

// ParseMode accepts "", overwrite or append. Empty means overwrite.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeOverwrite:
		return ModeOverwrite, nil
	case ModeAppend:
		return ModeAppend, nil
	}
	return "", fmt.Errorf("invalid receipt mode %q (want overwrite or append)", s)
}

type fileWriter struct {
	mu   sync.Mutex
	file *os.File
	mode Mode
}

// NewWriter opens path for receipts, creating parent directories.
func NewWriter(path string, mode Mode) (Writer, error) {
	if mode != ModeAppend {
		mode = ModeOverwrite
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory for receipt: %w", err)
		}
	}

	flag := os.O_CREATE | os.O_TRUNC | os.O_WRONLY
	if mode == ModeAppend {
		flag = os.O_CREATE | os.O_APPEND | os.O_WRONLY
	}

	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open receipt file: %w", err)
	}

	return &fileWriter{file: f, mode: mode}, nil
}

func (w *fileWriter) Write(r Receipt) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal receipt: %w", err)
	}
	if w.mode == ModeAppend {
		data = append(data, '\n')
	}
	if _, err := w.file.Write(data); err != nil {
		return fmt.Errorf("failed to write receipt: %w", err)
	}
	return nil
}

func (w *fileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file != nil {
		return w.file.Close()
	}
	return nil
}
