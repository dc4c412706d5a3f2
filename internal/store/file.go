package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"nhlstats/ingestion/internal/metrics"
	"nhlstats/ingestion/internal/models"

	"github.com/rs/zerolog/log"
)

// FileStore keeps each entry as a JSON file under <root>/<YYYY-YYYY>/
type FileStore struct {
	root string
}

// NewFileStore creates the root directory if needed
func NewFileStore(root string) (*FileStore, error) {
	if root == "" {
		return nil, fmt.Errorf("file store root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store root: %w", err)
	}
	return &FileStore{root: root}, nil
}

// Root returns the store's root directory
func (s *FileStore) Root() string {
	return s.root
}

// Path returns the file an entry is stored in
func (s *FileStore) Path(season models.Season, key Key) string {
	return filepath.Join(s.root, season.Dir(), filepath.FromSlash(key.Path()))
}

// Put writes the value atomically: a temp file in the target directory is
// renamed over the previous entry, so readers never see a partial write.
func (s *FileStore) Put(ctx context.Context, season models.Season, key Key, value interface{}) (err error) {
	start := time.Now()
	defer func() { recordOp("file", "put", start, err) }()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := key.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	target := s.Path(season, key)
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create partition %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", key, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return fmt.Errorf("failed to replace %s: %w", key, err)
	}

	log.Debug().
		Str("season", season.String()).
		Str("key", key.Path()).
		Int("bytes", len(data)).
		Msg("Stored entry")

	return nil
}

// Get decodes the stored entry into out
func (s *FileStore) Get(ctx context.Context, season models.Season, key Key, out interface{}) (err error) {
	start := time.Now()
	defer func() { recordOp("file", "get", start, err) }()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := key.Validate(); err != nil {
		return err
	}

	data, err := os.ReadFile(s.Path(season, key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s/%s", ErrNotFound, season.Dir(), key.Path())
		}
		return fmt.Errorf("failed to read %s: %w", key, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return nil
}

func recordOp(backend, op string, start time.Time, err error) {
	status := "success"
	switch {
	case errors.Is(err, ErrNotFound):
		status = "not_found"
	case err != nil:
		status = "error"
	}
	metrics.RecordStoreOperation(backend, op, status, time.Since(start).Seconds())
}
