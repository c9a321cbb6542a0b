// Package lifecycle implements the guarded trade state machine:
// create -> deposit / supplier confirmation -> documents -> verification
// (key issued) -> final payment -> claim.
//
// Every transition runs under a per-trade lock, checks its guards against
// a private copy of the stored record, and writes back through the store's
// optimistic version check. A rejected transition never writes.
package lifecycle

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/guttosm/tradeflow/internal/domain/models"
	"github.com/guttosm/tradeflow/internal/finance"
	"github.com/guttosm/tradeflow/internal/logger"
	"github.com/guttosm/tradeflow/internal/notify"
	"github.com/guttosm/tradeflow/internal/storage"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Options tunes a Service. Zero values pick sensible defaults.
type Options struct {
	// DocumentProviders is the whitelist of accepted document sources.
	// Matching is case-insensitive.
	DocumentProviders []string
	KeyCodeLength     int
	Clock             func() time.Time
	NewID             func() string
	NewKeyCode        func(n int) (string, error)
}

// Service runs lifecycle transitions against a TradeStore.
type Service struct {
	store     storage.TradeStore
	settings  storage.SettingsStore
	notifier  notify.Notifier
	providers map[string]bool
	keyLen    int
	now       func() time.Time
	newID     func() string
	newKey    func(n int) (string, error)
	locks     *keyedMutex
	log       zerolog.Logger
}

// NewService wires a Service. A nil notifier discards events.
func NewService(store storage.TradeStore, settings storage.SettingsStore, notifier notify.Notifier, opts Options) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	providers := make(map[string]bool, len(opts.DocumentProviders))
	for _, p := range opts.DocumentProviders {
		if p = normalizeProvider(p); p != "" {
			providers[p] = true
		}
	}
	s := &Service{
		store:     store,
		settings:  settings,
		notifier:  notifier,
		providers: providers,
		keyLen:    opts.KeyCodeLength,
		now:       opts.Clock,
		newID:     opts.NewID,
		newKey:    opts.NewKeyCode,
		locks:     newKeyedMutex(),
		log:       logger.For("lifecycle"),
	}
	if s.keyLen <= 0 {
		s.keyLen = DefaultKeyCodeLength
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.newKey == nil {
		s.newKey = NewKeyCode
	}
	return s
}

// CreateParams describes a new trade.
type CreateParams struct {
	Commodity        string
	Quantity         decimal.Decimal
	UnitPrice        decimal.Decimal
	BuyerID          string
	SupplierID       string
	CreatorRole      models.Role
	DepositPct       int
	FinancePct       int
	InsuranceApplied bool
}

// DocumentInput is one file reference submitted for upload.
type DocumentInput struct {
	Name string
	URL  string
}

// TradeView is a trade together with its quote under the current settings.
type TradeView struct {
	Trade *models.Trade
	Quote finance.Quote
}

// CreateTrade validates p and stores a new trade. The caller must be the
// counterparty named by CreatorRole, or an admin. A supplier-created trade
// counts as confirmed by the supplier from the start.
func (s *Service) CreateTrade(ctx context.Context, caller models.Caller, p CreateParams) (*models.Trade, error) {
	if err := validateCreate(p); err != nil {
		s.reject("create", "", err)
		return nil, err
	}
	creator := p.BuyerID
	if p.CreatorRole == models.RoleSupplier {
		creator = p.SupplierID
	}
	if !caller.Admin && caller.ID != creator {
		err := forbidden("only the %s may open this trade", p.CreatorRole)
		s.reject("create", "", err)
		return nil, err
	}

	now := s.now()
	t := &models.Trade{
		ID:                s.newID(),
		Commodity:         strings.TrimSpace(p.Commodity),
		Quantity:          p.Quantity,
		UnitPrice:         p.UnitPrice,
		BuyerID:           p.BuyerID,
		SupplierID:        p.SupplierID,
		CreatorRole:       p.CreatorRole,
		DepositPct:        p.DepositPct,
		FinancePct:        p.FinancePct,
		InsuranceApplied:  p.InsuranceApplied,
		SupplierConfirmed: p.CreatorRole == models.RoleSupplier,
		DocsFiles:         []models.Document{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	t.Status = t.DeriveStatus()

	saved, err := s.store.Create(ctx, t)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	s.log.Info().Str("trade_id", saved.ID).Str("status", string(saved.Status)).Str("creator_role", string(saved.CreatorRole)).Msg("trade created")
	s.emit(ctx, notify.EventTradeCreated, saved)
	return saved, nil
}

func validateCreate(p CreateParams) error {
	switch {
	case strings.TrimSpace(p.Commodity) == "":
		return validation("commodity is required")
	case p.BuyerID == "" || p.SupplierID == "":
		return validation("buyer and supplier are required")
	case p.BuyerID == p.SupplierID:
		return validation("buyer and supplier must differ")
	case !p.CreatorRole.Valid():
		return validation("creator role must be buyer or supplier")
	case !p.Quantity.IsPositive() || !p.UnitPrice.IsPositive():
		return validation("quantity and unit price must be positive")
	case p.DepositPct < 1 || p.DepositPct > 99 || p.FinancePct < 1 || p.FinancePct > 99:
		return validation("deposit and finance percentages must be between 1 and 99")
	case p.DepositPct+p.FinancePct != 100:
		return validation("deposit and finance percentages must sum to 100, got %d", p.DepositPct+p.FinancePct)
	}
	return nil
}

// RecordDeposit marks the buyer's deposit as paid. Only the buyer or an
// admin may record it.
func (s *Service) RecordDeposit(ctx context.Context, id string, caller models.Caller) (*models.Trade, error) {
	return s.transition(ctx, id, "deposit", func(t *models.Trade) (notify.EventType, error) {
		if err := open(t); err != nil {
			return "", err
		}
		if !caller.Admin && caller.ID != t.BuyerID {
			return "", forbidden("only the buyer may record the deposit")
		}
		if t.BuyerDepositPaid {
			return "", alreadyDone("deposit already paid")
		}
		t.BuyerDepositPaid = true
		return notify.EventDepositMade, nil
	})
}

// ConfirmTrade records the supplier's confirmation. Only the supplier or an
// admin may confirm.
func (s *Service) ConfirmTrade(ctx context.Context, id string, caller models.Caller) (*models.Trade, error) {
	return s.transition(ctx, id, "confirm", func(t *models.Trade) (notify.EventType, error) {
		if err := open(t); err != nil {
			return "", err
		}
		if !caller.Admin && caller.ID != t.SupplierID {
			return "", forbidden("only the supplier may confirm")
		}
		if t.SupplierConfirmed {
			return "", alreadyDone("trade already confirmed")
		}
		t.SupplierConfirmed = true
		return notify.EventSupplierConfirmed, nil
	})
}

// UploadDocuments appends document references submitted by provider.
func (s *Service) UploadDocuments(ctx context.Context, id string, provider string, files []DocumentInput) (*models.Trade, error) {
	return s.transition(ctx, id, "upload", func(t *models.Trade) (notify.EventType, error) {
		if err := open(t); err != nil {
			return "", err
		}
		p := normalizeProvider(provider)
		if !s.providers[p] {
			return "", ErrProviderNotAllowed
		}
		if len(files) == 0 {
			return "", validation("at least one document is required")
		}
		now := s.now()
		docs := make([]models.Document, 0, len(files))
		for _, f := range files {
			name := strings.TrimSpace(f.Name)
			if name == "" {
				return "", validation("document name is required")
			}
			docs = append(docs, models.Document{
				ID:         s.newID(),
				Name:       name,
				URL:        strings.TrimSpace(f.URL),
				Provider:   p,
				UploadedAt: now,
			})
		}
		t.DocsFiles = append(t.DocsFiles, docs...)
		return notify.EventDocumentsUploaded, nil
	})
}

// VerifyDocuments marks the documents verified and issues a fresh key code.
// Admin only; requires the deposit and at least one uploaded document. The
// key is returned once, here; a repeated call does not issue another.
func (s *Service) VerifyDocuments(ctx context.Context, id string, caller models.Caller) (*models.Trade, string, error) {
	t, err := s.transition(ctx, id, "verify", func(t *models.Trade) (notify.EventType, error) {
		if !caller.Admin {
			return "", forbidden("only an admin may verify documents")
		}
		if err := open(t); err != nil {
			return "", err
		}
		if t.DocsVerified {
			return "", alreadyDone("documents already verified")
		}
		if !t.BuyerDepositPaid {
			return "", precondition("deposit has not been paid")
		}
		if len(t.DocsFiles) == 0 {
			return "", precondition("no documents uploaded")
		}
		code, err := s.newKey(s.keyLen)
		if err != nil {
			return "", err
		}
		t.DocsVerified = true
		t.KeyCode = code
		return notify.EventDocumentsVerified, nil
	})
	if err != nil {
		return t, "", err
	}
	return t, t.KeyCode, nil
}

// RecordFinalPayment records the buyer's final payment. The trade must be
// confirmed (deposit paid and supplier confirmed); verification may come
// before or after.
func (s *Service) RecordFinalPayment(ctx context.Context, id string, caller models.Caller) (*models.Trade, error) {
	return s.transition(ctx, id, "final_payment", func(t *models.Trade) (notify.EventType, error) {
		if caller.ID != t.BuyerID {
			return "", forbidden("only the buyer may make the final payment")
		}
		if err := open(t); err != nil {
			return "", err
		}
		if t.FinalPaid {
			return "", alreadyDone("final payment already recorded")
		}
		if !t.Confirmed() {
			return "", precondition("trade is not confirmed yet (status %s)", t.Status)
		}
		t.FinalPaid = true
		return notify.EventFinalPaymentMade, nil
	})
}

// Claim releases the trade when the documents are verified, the final
// payment is in and code matches the issued key.
func (s *Service) Claim(ctx context.Context, id string, caller models.Caller, code string) (*models.Trade, error) {
	return s.transition(ctx, id, "claim", func(t *models.Trade) (notify.EventType, error) {
		if !caller.Admin && !t.IsParty(caller.ID) {
			return "", forbidden("only a counterparty may claim")
		}
		if t.Released {
			return "", alreadyDone("trade already released")
		}
		if t.Status == models.StatusCancelled {
			return "", precondition("trade is cancelled")
		}
		if !t.DocsVerified {
			return "", precondition("documents not verified")
		}
		if !t.FinalPaid {
			return "", precondition("final payment missing")
		}
		if !keyMatches(t.KeyCode, code) {
			return "", ErrKeyMismatch
		}
		t.Released = true
		return notify.EventTradeClaimed, nil
	})
}

// CancelTrade moves a trade to the terminal cancelled status. Allowed for
// either counterparty or an admin, only while no deposit has been paid.
func (s *Service) CancelTrade(ctx context.Context, id string, caller models.Caller) (*models.Trade, error) {
	return s.transition(ctx, id, "cancel", func(t *models.Trade) (notify.EventType, error) {
		if !caller.Admin && !t.IsParty(caller.ID) {
			return "", forbidden("only a counterparty may cancel")
		}
		if t.Status == models.StatusCancelled {
			return "", alreadyDone("trade already cancelled")
		}
		if t.Released {
			return "", precondition("trade already released")
		}
		if t.BuyerDepositPaid {
			return "", precondition("deposit already paid")
		}
		t.Status = models.StatusCancelled
		return notify.EventTradeCancelled, nil
	})
}

// GetTrade returns a trade with its current quote. Only counterparties and
// admins may read it.
func (s *Service) GetTrade(ctx context.Context, id string, caller models.Caller) (*TradeView, error) {
	t, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if !caller.Admin && !t.IsParty(caller.ID) {
		return nil, forbidden("not a counterparty of this trade")
	}
	return s.view(ctx, t)
}

// ListTrades lists trades visible to caller. Non-admins only ever see
// their own trades regardless of the requested party filter.
func (s *Service) ListTrades(ctx context.Context, caller models.Caller, filter models.TradeFilter) ([]*TradeView, error) {
	if !caller.Admin {
		if caller.ID == "" {
			return nil, forbidden("caller identity required")
		}
		filter.PartyID = caller.ID
	}
	trades, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*TradeView, 0, len(trades))
	for _, t := range trades {
		q, err := finance.QuoteFor(t, settings)
		if err != nil {
			return nil, validation("%s", err)
		}
		out = append(out, &TradeView{Trade: t, Quote: q})
	}
	return out, nil
}

// Settings returns the current platform settings.
func (s *Service) Settings(ctx context.Context) (models.PlatformSettings, error) {
	return s.settings.Get(ctx)
}

// UpdateSettings replaces the platform settings. Admin only. Quotes of
// unsettled trades change immediately.
func (s *Service) UpdateSettings(ctx context.Context, caller models.Caller, next models.PlatformSettings) (models.PlatformSettings, error) {
	if !caller.Admin {
		return models.PlatformSettings{}, forbidden("only an admin may change settings")
	}
	hundred := decimal.NewFromInt(100)
	if next.FeePercent.IsNegative() || next.FeePercent.GreaterThanOrEqual(hundred) {
		return models.PlatformSettings{}, validation("fee percent must be in [0,100)")
	}
	if next.InsurancePremiumPercent.IsNegative() || next.InsurancePremiumPercent.GreaterThanOrEqual(hundred) {
		return models.PlatformSettings{}, validation("insurance premium percent must be in [0,100)")
	}
	next.UpdatedAt = s.now()
	if err := s.settings.Save(ctx, next); err != nil {
		return models.PlatformSettings{}, err
	}
	s.log.Info().
		Str("fee_percent", next.FeePercent.String()).
		Bool("insurance_enabled", next.InsuranceEnabled).
		Str("insurance_premium_percent", next.InsurancePremiumPercent.String()).
		Str("by", caller.ID).
		Msg("platform settings updated")
	return next, nil
}

// transition runs apply on a private copy of the trade under the per-trade
// lock, persists the result and then notifies. When apply fails nothing is written; for
// ErrAlreadyDone the current trade is returned alongside the error.
func (s *Service) transition(ctx context.Context, id, op string, apply func(t *models.Trade) (notify.EventType, error)) (*models.Trade, error) {
	saved, ev, err := s.commit(ctx, id, op, apply)
	if err != nil {
		return saved, err
	}

	// Delivery runs outside the per-trade lock.
	s.emit(ctx, ev, saved)
	return saved, nil
}

// commit applies one transition under the per-trade lock and persists it.
func (s *Service) commit(ctx context.Context, id, op string, apply func(t *models.Trade) (notify.EventType, error)) (*models.Trade, notify.EventType, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	cur, err := s.store.Get(ctx, id)
	if err != nil {
		err = mapStoreErr(err)
		s.reject(op, id, err)
		return nil, "", err
	}

	next := cur.Clone()
	ev, err := apply(next)
	if err != nil {
		s.reject(op, id, err)
		if errors.Is(err, ErrAlreadyDone) {
			return cur, "", err
		}
		return nil, "", err
	}

	next.Status = next.DeriveStatus()
	next.UpdatedAt = s.now()
	saved, err := s.store.Update(ctx, next)
	if err != nil {
		err = mapStoreErr(err)
		s.reject(op, id, err)
		return nil, "", err
	}

	s.log.Info().Str("trade_id", id).Str("op", op).Str("event", string(ev)).Str("status", string(saved.Status)).Msg("transition applied")
	return saved, ev, nil
}

func (s *Service) view(ctx context.Context, t *models.Trade) (*TradeView, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	q, err := finance.QuoteFor(t, settings)
	if err != nil {
		return nil, validation("%s", err)
	}
	return &TradeView{Trade: t, Quote: q}, nil
}

// emit hands the event to the notifier. Delivery is best-effort: failures
// are logged and never undo a committed transition.
func (s *Service) emit(ctx context.Context, typ notify.EventType, t *models.Trade) {
	recipients := []string{t.BuyerID, t.SupplierID}
	switch typ {
	case notify.EventDepositMade, notify.EventDocumentsUploaded:
		recipients = append(recipients, notify.RecipientAdmins)
	}
	if err := s.notifier.Notify(ctx, notify.NewEvent(typ, t, recipients...)); err != nil {
		s.log.Warn().Err(err).Str("trade_id", t.ID).Str("event", string(typ)).Msg("notification failed")
	}
}

func (s *Service) reject(op, id string, err error) {
	s.log.Debug().Str("op", op).Str("trade_id", id).Err(err).Msg("transition rejected")
}

// open rejects transitions on trades in a terminal status.
func open(t *models.Trade) error {
	switch t.Status {
	case models.StatusCancelled:
		return precondition("trade is cancelled")
	case models.StatusReleased:
		return precondition("trade already released")
	}
	return nil
}

func normalizeProvider(p string) string {
	return strings.ToLower(strings.TrimSpace(p))
}

func mapStoreErr(err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, storage.ErrConflict):
		return ErrConflict
	case errors.Is(err, storage.ErrDuplicate):
		return ErrConflict
	}
	return err
}
