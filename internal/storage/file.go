package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/guttosm/tradeflow/internal/domain/models"
)

// FileTradeStore persists trades as a single JSON document holding one
// object per trade, keyed by trade ID, plus the platform settings once an
// admin has saved them. Every write rewrites the file through
// a temporary file and a rename, so a crash never leaves a torn file behind.
type FileTradeStore struct {
	mu       sync.RWMutex
	path     string
	trades   map[string]*models.Trade
	settings *models.PlatformSettings
}

type fileSnapshot struct {
	Trades   map[string]*models.Trade `json:"trades"`
	Settings *models.PlatformSettings `json:"settings,omitempty"`
}

// OpenFileTradeStore loads (or creates) the store at path.
func OpenFileTradeStore(path string) (*FileTradeStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	s := &FileTradeStore{path: path, trades: make(map[string]*models.Trade)}

	raw, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return s, s.flushLocked()
	case err != nil:
		return nil, fmt.Errorf("read store: %w", err)
	case len(raw) == 0:
		return s, s.flushLocked()
	}

	var snap fileSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode store %s: %w", path, err)
	}
	if snap.Trades != nil {
		s.trades = snap.Trades
	}
	s.settings = snap.Settings
	return s, nil
}

func (s *FileTradeStore) Create(_ context.Context, t *models.Trade) (*models.Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.trades[t.ID]; ok {
		return nil, ErrDuplicate
	}
	s.trades[t.ID] = t.Clone()
	if err := s.flushLocked(); err != nil {
		delete(s.trades, t.ID)
		return nil, err
	}
	return t.Clone(), nil
}

func (s *FileTradeStore) Get(_ context.Context, id string) (*models.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.trades[id]
	if !ok {
		return nil, ErrNotFound
	}
	return t.Clone(), nil
}

func (s *FileTradeStore) Update(_ context.Context, t *models.Trade) (*models.Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.trades[t.ID]
	out, err := updateLocked(s.trades, t)
	if err != nil {
		return nil, err
	}
	if err := s.flushLocked(); err != nil {
		s.trades[t.ID] = prev
		return nil, err
	}
	return out, nil
}

func (s *FileTradeStore) List(_ context.Context, filter models.TradeFilter) ([]*models.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return listLocked(s.trades, filter), nil
}

// SettingsStore returns a SettingsStore kept in the same file. Get returns
// defaults until the first Save.
func (s *FileTradeStore) SettingsStore(defaults models.PlatformSettings) SettingsStore {
	return &fileSettingsStore{file: s, defaults: defaults}
}

type fileSettingsStore struct {
	file     *FileTradeStore
	defaults models.PlatformSettings
}

func (f *fileSettingsStore) Get(context.Context) (models.PlatformSettings, error) {
	f.file.mu.RLock()
	defer f.file.mu.RUnlock()
	if f.file.settings == nil {
		return f.defaults, nil
	}
	return *f.file.settings, nil
}

func (f *fileSettingsStore) Save(_ context.Context, next models.PlatformSettings) error {
	f.file.mu.Lock()
	defer f.file.mu.Unlock()

	prev := f.file.settings
	f.file.settings = &next
	if err := f.file.flushLocked(); err != nil {
		f.file.settings = prev
		return err
	}
	return nil
}

// Path returns the backing file location.
func (s *FileTradeStore) Path() string { return s.path }

func (s *FileTradeStore) flushLocked() error {
	raw, err := json.MarshalIndent(fileSnapshot{Trades: s.trades, Settings: s.settings}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".trades-*.json")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace store: %w", err)
	}
	return nil
}
