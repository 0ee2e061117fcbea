package localcache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"showdeck/pkg/errors"
)

// Store is the process-wide durable local cache: persisted key→string slots
// plus a small bounded list of recent search terms. The backing file is read
// once, synchronously, at construction; every mutation is written through.
// Each key has a single writer; there is no live-update channel.
type Store struct {
	fs        afero.Fs
	path      string
	maxRecent int
	logger    *zap.Logger

	mu     sync.Mutex
	slots  map[string]string
	recent []string
}

type fileShape struct {
	Slots  map[string]string `json:"slots"`
	Recent []string          `json:"recent_searches"`
}

func New(fs afero.Fs, path string, maxRecent int, logger *zap.Logger) (*Store, error) {
	s := &Store{
		fs:        fs,
		path:      path,
		maxRecent: maxRecent,
		logger:    logger,
		slots:     make(map[string]string),
		recent:    []string{},
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, errors.NewCacheError("failed to read cache file", "init", path, err)
		}
		logger.Info("Local cache file absent, starting empty", zap.String("path", path))
		return s, nil
	}

	var shape fileShape
	if err := json.Unmarshal(data, &shape); err != nil {
		// A corrupt cache is not fatal; the next write replaces it.
		logger.Warn("Local cache file corrupt, starting empty", zap.String("path", path), zap.Error(err))
		return s, nil
	}

	if shape.Slots != nil {
		s.slots = shape.Slots
	}
	if shape.Recent != nil {
		s.recent = shape.Recent
	}

	logger.Info("Local cache loaded",
		zap.String("path", path),
		zap.Int("slots", len(s.slots)),
		zap.Int("recent_searches", len(s.recent)),
	)

	return s, nil
}

// Read returns the cached value for key and whether it exists. It never
// touches the filesystem.
func (s *Store) Read(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.slots[key]
	return value, ok
}

// Write stores the value and persists the whole cache.
func (s *Store) Write(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.slots[key] = value
	return s.persistLocked()
}

// RecentSearches returns a copy of the recent search terms, most recent first.
func (s *Store) RecentSearches() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.recent))
	copy(out, s.recent)
	return out
}

// AddRecentSearch inserts the term at the front, removing any
// case-insensitive duplicate and capping the list length.
func (s *Store) AddRecentSearch(term string) error {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]string, 0, len(s.recent)+1)
	kept = append(kept, term)
	for _, existing := range s.recent {
		if strings.EqualFold(existing, term) {
			continue
		}
		kept = append(kept, existing)
	}
	if len(kept) > s.maxRecent {
		kept = kept[:s.maxRecent]
	}
	s.recent = kept

	return s.persistLocked()
}

func (s *Store) persistLocked() error {
	payload, err := json.Marshal(fileShape{
		Slots:  s.slots,
		Recent: s.recent,
	})
	if err != nil {
		return errors.NewCacheError("failed to marshal cache", "persist", s.path, err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return errors.NewCacheError("failed to create cache dir", "persist", s.path, err)
		}
	}

	if err := afero.WriteFile(s.fs, s.path, payload, 0o644); err != nil {
		s.logger.Error("Local cache write failed", zap.String("path", s.path), zap.Error(err))
		return errors.NewCacheError("failed to write cache file", "persist", s.path, err)
	}

	return nil
}
