package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"turadex/internal/model"
)

// JsonlStorage appends records to a JSONL file.
type JsonlStorage struct {
	path string
	mu   sync.Mutex
}

func NewJsonlStorage(path string) *JsonlStorage {
	return &JsonlStorage{path: path}
}

// Path returns the output file.
func (s *JsonlStorage) Path() string {
	return s.path
}

// PutQuotes appends quotes as JSON lines.
func (s *JsonlStorage) PutQuotes(_ context.Context, quotes []model.MintQuote) error {
	return s.appendLines(len(quotes), func(i int) interface{} { return quotes[i] })
}

// PutPositionSnapshots appends snapshots as JSON lines.
func (s *JsonlStorage) PutPositionSnapshots(_ context.Context, snapshots []model.PositionSnapshot) error {
	return s.appendLines(len(snapshots), func(i int) interface{} { return snapshots[i] })
}

func (s *JsonlStorage) appendLines(n int, record func(int) interface{}) error {
	if n == 0 {
		return nil
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for i := 0; i < n; i++ {
		line, err := json.Marshal(record(i))
		if err != nil {
			return fmt.Errorf("marshal record %d: %w", i, err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return file.Sync()
}
