package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/guttosm/tradeflow/internal/domain/models"
	"github.com/jmoiron/sqlx"
	pq "github.com/lib/pq"
)

var (
	// ErrNotFound is returned when no trade exists for the requested ID.
	ErrNotFound = errors.New("trade not found")
	// ErrConflict is returned by Update when the stored version moved on.
	ErrConflict = errors.New("trade was modified concurrently")
	// ErrDuplicate is returned by Create when the ID is already taken.
	ErrDuplicate = errors.New("trade already exists")
)

// TradeStore defines the persistence contract consumed by the lifecycle.
//
// Implementations must be safe for concurrent use. Update is atomic for a
// single record and uses optimistic concurrency: it only succeeds when the
// stored version equals t.Version, and it returns the stored record with
// the version bumped.
type TradeStore interface {
	Create(ctx context.Context, t *models.Trade) (*models.Trade, error)
	Get(ctx context.Context, id string) (*models.Trade, error)
	Update(ctx context.Context, t *models.Trade) (*models.Trade, error)
	List(ctx context.Context, filter models.TradeFilter) ([]*models.Trade, error)
}

const tradeColumns = `id, commodity, quantity, unit_price, buyer_id, supplier_id, creator_role,
		deposit_pct, finance_pct, insurance_applied, status,
		buyer_deposit_paid, supplier_confirmed, docs_verified, final_paid, released,
		docs_files, key_code, version, created_at, updated_at`

// tradeRow adds the JSONB document column to the domain model.
type tradeRow struct {
	models.Trade
	Docs []byte `db:"docs_files"`
}

func toRow(t *models.Trade) (*tradeRow, error) {
	docs := t.DocsFiles
	if docs == nil {
		docs = []models.Document{}
	}
	raw, err := json.Marshal(docs)
	if err != nil {
		return nil, fmt.Errorf("encode documents: %w", err)
	}
	return &tradeRow{Trade: *t, Docs: raw}, nil
}

func (r *tradeRow) toModel() (*models.Trade, error) {
	t := r.Trade
	t.DocsFiles = nil
	if len(r.Docs) > 0 {
		if err := json.Unmarshal(r.Docs, &t.DocsFiles); err != nil {
			return nil, fmt.Errorf("decode documents: %w", err)
		}
	}
	return &t, nil
}

type postgresTradeStore struct {
	db *sqlx.DB
}

// NewPostgresTradeStore returns a TradeStore backed by the trades table.
func NewPostgresTradeStore(db *sqlx.DB) TradeStore {
	return &postgresTradeStore{db: db}
}

// Create inserts a new trade row.
func (r *postgresTradeStore) Create(ctx context.Context, t *models.Trade) (*models.Trade, error) {
	row, err := toRow(t)
	if err != nil {
		return nil, err
	}
	_, err = r.db.NamedExecContext(ctx, `
		INSERT INTO trades (`+tradeColumns+`)
		VALUES (:id, :commodity, :quantity, :unit_price, :buyer_id, :supplier_id, :creator_role,
		        :deposit_pct, :finance_pct, :insurance_applied, :status,
		        :buyer_deposit_paid, :supplier_confirmed, :docs_verified, :final_paid, :released,
		        :docs_files, :key_code, :version, :created_at, :updated_at)`, row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return t.Clone(), nil
}

// Get loads a trade by ID.
func (r *postgresTradeStore) Get(ctx context.Context, id string) (*models.Trade, error) {
	var row tradeRow
	err := r.db.GetContext(ctx, &row, `SELECT `+tradeColumns+` FROM trades WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toModel()
}

// Update writes every mutable column when the stored version still matches.
func (r *postgresTradeStore) Update(ctx context.Context, t *models.Trade) (*models.Trade, error) {
	row, err := toRow(t)
	if err != nil {
		return nil, err
	}
	res, err := r.db.NamedExecContext(ctx, `
		UPDATE trades SET
			status = :status,
			buyer_deposit_paid = :buyer_deposit_paid,
			supplier_confirmed = :supplier_confirmed,
			docs_verified = :docs_verified,
			final_paid = :final_paid,
			released = :released,
			docs_files = :docs_files,
			key_code = :key_code,
			updated_at = :updated_at,
			version = version + 1
		WHERE id = :id AND version = :version`, row)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		var exists bool
		if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM trades WHERE id = $1)`, t.ID); err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrNotFound
		}
		return nil, ErrConflict
	}

	out := t.Clone()
	out.Version++
	return out, nil
}

// List returns trades matching the filter, newest first.
func (r *postgresTradeStore) List(ctx context.Context, filter models.TradeFilter) ([]*models.Trade, error) {
	var rows []tradeRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT `+tradeColumns+` FROM trades
		WHERE ($1 = '' OR buyer_id = $1 OR supplier_id = $1)
		  AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC`, filter.PartyID, string(filter.Status))
	if err != nil {
		return nil, err
	}

	out := make([]*models.Trade, 0, len(rows))
	for i := range rows {
		t, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
