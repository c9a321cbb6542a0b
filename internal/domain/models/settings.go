package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlatformSettings is the process-wide commercial configuration.
//
// It is read on every quote, so changing it retroactively changes the
// amounts quoted for trades that are not yet settled.
type PlatformSettings struct {
	FeePercent              decimal.Decimal `json:"fee_percent" db:"fee_percent"`
	InsuranceEnabled        bool            `json:"insurance_enabled" db:"insurance_enabled"`
	InsurancePremiumPercent decimal.Decimal `json:"insurance_premium_percent" db:"insurance_premium_percent"`
	EscrowWallet            string          `json:"escrow_wallet" db:"escrow_wallet"`
	PlatformWallet          string          `json:"platform_wallet" db:"platform_wallet"`
	UpdatedAt               time.Time       `json:"updated_at" db:"updated_at"`
}

// Caller is the identity performing a lifecycle operation.
type Caller struct {
	ID    string
	Admin bool
}
