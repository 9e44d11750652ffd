// Package state persists crawl state as a human-inspectable JSON file.
package state

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ldes-tools/harvester/internal/harvester"
)

// stateFilename is the snapshot file kept inside the cache directory.
const stateFilename = "state.json"

// FileStore implements harvester.StateStore on a single JSON file.
type FileStore struct {
	path   string
	logger *zap.Logger
}

// NewFileStore returns a store writing to <dir>/state.json.
func NewFileStore(dir string, logger *zap.Logger) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{
		path:   filepath.Join(dir, stateFilename),
		logger: logger,
	}
}

// Path returns the location of the state file.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the prior snapshot. A missing, unreadable, or corrupt file
// yields (nil, nil) so the crawl starts fresh instead of failing.
func (s *FileStore) Load() (*harvester.State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("State file unreadable, starting fresh",
				zap.String("path", s.path),
				zap.Error(err),
			)
		}
		return nil, nil
	}

	var st harvester.State
	if err := json.Unmarshal(data, &st); err != nil {
		s.logger.Warn("State file corrupt, starting fresh",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return nil, nil
	}
	return &st, nil
}

// Save fully overwrites the snapshot. The write goes through a temp file
// and rename so a crash mid-write cannot leave a truncated snapshot.
func (s *FileStore) Save(st *harvester.State) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return &harvester.StatePersistError{Path: s.path, Err: err}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return &harvester.StatePersistError{Path: s.path, Err: err}
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return &harvester.StatePersistError{Path: s.path, Err: err}
	}
	return nil
}
