package storage

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/guttosm/tradeflow/internal/domain/models"
	"github.com/jmoiron/sqlx"
)

// SettingsStore holds the single PlatformSettings record.
type SettingsStore interface {
	Get(ctx context.Context) (models.PlatformSettings, error)
	Save(ctx context.Context, s models.PlatformSettings) error
}

// MemorySettingsStore keeps settings in process memory.
type MemorySettingsStore struct {
	mu sync.RWMutex
	s  models.PlatformSettings
}

// NewMemorySettingsStore seeds the store with initial.
func NewMemorySettingsStore(initial models.PlatformSettings) *MemorySettingsStore {
	return &MemorySettingsStore{s: initial}
}

func (m *MemorySettingsStore) Get(context.Context) (models.PlatformSettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.s, nil
}

func (m *MemorySettingsStore) Save(_ context.Context, s models.PlatformSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = s
	return nil
}

type postgresSettingsStore struct {
	db       *sqlx.DB
	defaults models.PlatformSettings
}

// NewPostgresSettingsStore returns a SettingsStore backed by the
// platform_settings table. defaults are served until the first Save.
func NewPostgresSettingsStore(db *sqlx.DB, defaults models.PlatformSettings) SettingsStore {
	return &postgresSettingsStore{db: db, defaults: defaults}
}

func (r *postgresSettingsStore) Get(ctx context.Context) (models.PlatformSettings, error) {
	var s models.PlatformSettings
	err := r.db.GetContext(ctx, &s, `
		SELECT fee_percent, insurance_enabled, insurance_premium_percent,
		       escrow_wallet, platform_wallet, updated_at
		FROM platform_settings WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return r.defaults, nil
	}
	if err != nil {
		return models.PlatformSettings{}, err
	}
	return s, nil
}

func (r *postgresSettingsStore) Save(ctx context.Context, s models.PlatformSettings) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO platform_settings (id, fee_percent, insurance_enabled, insurance_premium_percent,
		                               escrow_wallet, platform_wallet, updated_at)
		VALUES (1, :fee_percent, :insurance_enabled, :insurance_premium_percent,
		        :escrow_wallet, :platform_wallet, :updated_at)
		ON CONFLICT (id)
		DO UPDATE SET fee_percent = EXCLUDED.fee_percent,
		              insurance_enabled = EXCLUDED.insurance_enabled,
		              insurance_premium_percent = EXCLUDED.insurance_premium_percent,
		              escrow_wallet = EXCLUDED.escrow_wallet,
		              platform_wallet = EXCLUDED.platform_wallet,
		              updated_at = EXCLUDED.updated_at`, s)
	return err
}
