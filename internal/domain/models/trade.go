package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a Trade.
//
// Status is always derived from the milestone flags (see Trade.DeriveStatus),
// except for StatusCancelled which is terminal and set explicitly.
type Status string

const (
	StatusAwaitingDepositAndConfirm Status = "awaiting_deposit_and_confirmation"
	StatusAwaitingBuyerDeposit      Status = "awaiting_buyer_deposit"
	StatusAwaitingSupplierConfirm   Status = "awaiting_supplier_confirm"
	StatusConfirmed                 Status = "confirmed"
	StatusVerified                  Status = "verified"
	StatusFinalPaid                 Status = "final_paid"
	StatusReleased                  Status = "released"
	StatusCancelled                 Status = "cancelled"
)

// Terminal reports whether no further transition can leave the status.
func (s Status) Terminal() bool {
	return s == StatusReleased || s == StatusCancelled
}

// Role identifies which counterparty opened a trade.
type Role string

const (
	RoleBuyer    Role = "buyer"
	RoleSupplier Role = "supplier"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleBuyer || r == RoleSupplier
}

// Document is a reference to a file uploaded against a trade.
// Storage of the file itself happens outside this service; only the
// reference is kept.
type Document struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	URL        string    `json:"url,omitempty"`
	Provider   string    `json:"provider"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Trade represents a single buyer/supplier commodity deal.
//
// Milestone flags (BuyerDepositPaid, SupplierConfirmed, DocsVerified,
// FinalPaid, Released) move from false to true exactly once and are never
// unset. Monetary amounts derived from Quantity and UnitPrice are not stored;
// see finance.QuoteFor.
type Trade struct {
	ID               string          `json:"id" db:"id"`
	Commodity        string          `json:"commodity" db:"commodity"`
	Quantity         decimal.Decimal `json:"quantity" db:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price" db:"unit_price"`
	BuyerID          string          `json:"buyer_id" db:"buyer_id"`
	SupplierID       string          `json:"supplier_id" db:"supplier_id"`
	CreatorRole      Role            `json:"creator_role" db:"creator_role"`
	DepositPct       int             `json:"deposit_pct" db:"deposit_pct"`
	FinancePct       int             `json:"finance_pct" db:"finance_pct"`
	InsuranceApplied bool            `json:"insurance_applied" db:"insurance_applied"`
	Status           Status          `json:"status" db:"status"`

	BuyerDepositPaid  bool `json:"buyer_deposit_paid" db:"buyer_deposit_paid"`
	SupplierConfirmed bool `json:"supplier_confirmed" db:"supplier_confirmed"`
	DocsVerified      bool `json:"docs_verified" db:"docs_verified"`
	FinalPaid         bool `json:"final_paid" db:"final_paid"`
	Released          bool `json:"released" db:"released"`

	DocsFiles []Document `json:"docs_files" db:"-"`
	KeyCode   string     `json:"key_code,omitempty" db:"key_code"`

	Version   int64     `json:"version" db:"version"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// DeriveStatus computes the lifecycle status from the milestone flags.
// A cancelled trade stays cancelled.
func (t *Trade) DeriveStatus() Status {
	switch {
	case t.Status == StatusCancelled:
		return StatusCancelled
	case t.Released:
		return StatusReleased
	case t.FinalPaid:
		return StatusFinalPaid
	case t.DocsVerified && t.BuyerDepositPaid && t.SupplierConfirmed:
		return StatusVerified
	case t.BuyerDepositPaid && t.SupplierConfirmed:
		return StatusConfirmed
	case t.BuyerDepositPaid:
		return StatusAwaitingSupplierConfirm
	case t.SupplierConfirmed:
		return StatusAwaitingBuyerDeposit
	default:
		return StatusAwaitingDepositAndConfirm
	}
}

// Confirmed reports whether both the deposit and the supplier confirmation are in.
func (t *Trade) Confirmed() bool {
	return t.BuyerDepositPaid && t.SupplierConfirmed
}

// IsParty reports whether userID is the buyer or the supplier of the trade.
func (t *Trade) IsParty(userID string) bool {
	return userID != "" && (userID == t.BuyerID || userID == t.SupplierID)
}

// Clone returns a deep copy so callers can mutate freely without touching
// a stored record.
func (t *Trade) Clone() *Trade {
	if t == nil {
		return nil
	}
	cp := *t
	if t.DocsFiles != nil {
		cp.DocsFiles = make([]Document, len(t.DocsFiles))
		copy(cp.DocsFiles, t.DocsFiles)
	}
	return &cp
}

// TradeFilter narrows a trade listing. Zero values match everything.
type TradeFilter struct {
	PartyID string
	Status  Status
}

// Match reports whether t satisfies the filter.
func (f TradeFilter) Match(t *Trade) bool {
	if f.PartyID != "" && !t.IsParty(f.PartyID) {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	return true
}
