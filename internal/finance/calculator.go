// Package finance derives the monetary breakdown of a trade.
//
// Amounts are never persisted as the source of truth: they are recomputed
// from quantity, unit price and the current platform settings every time a
// trade is read.
package finance

import (
	"errors"

	"github.com/guttosm/tradeflow/internal/domain/models"
	"github.com/shopspring/decimal"
)

// DisplayPlaces is the precision used when presenting amounts.
const DisplayPlaces = 2

var (
	// ErrNegativeAmount is returned when quantity or unit price is below zero.
	ErrNegativeAmount = errors.New("quantity and unit price must not be negative")
	// ErrDepositPct is returned when the deposit percentage is outside [1,99].
	ErrDepositPct = errors.New("deposit percentage must be between 1 and 99")
)

var hundred = decimal.NewFromInt(100)

// Input holds the trade-side values the calculator needs.
type Input struct {
	Quantity         decimal.Decimal
	UnitPrice        decimal.Decimal
	DepositPct       int
	InsuranceApplied bool
}

// Quote is the derived monetary breakdown of a trade.
//
// All fields are exact; Rounded gives the presentation form.
type Quote struct {
	Gross             decimal.Decimal `json:"gross"`
	DepositRequired   decimal.Decimal `json:"deposit_required"`
	FinanceRequired   decimal.Decimal `json:"finance_required"`
	PlatformFee       decimal.Decimal `json:"platform_fee"`
	InsurancePremium  decimal.Decimal `json:"insurance_premium"`
	SupplierNetOnDocs decimal.Decimal `json:"supplier_net_on_docs"`
}

// Calculate computes the quote for in under settings s.
//
// Steps, in order:
//  1. gross = quantity * unitPrice
//  2. depositRequired = gross * depositPct / 100, financeRequired = gross - depositRequired
//  3. platformFee = gross * feePercent / 100
//  4. insurancePremium = gross * premiumPercent / 100 when insurance is both enabled and applied, else 0
//  5. supplierNetOnDocs = gross - platformFee - insurancePremium
//
// No intermediate rounding is applied. Inputs are never mutated.
func Calculate(in Input, s models.PlatformSettings) (Quote, error) {
	if in.Quantity.IsNegative() || in.UnitPrice.IsNegative() {
		return Quote{}, ErrNegativeAmount
	}
	if in.DepositPct < 1 || in.DepositPct > 99 {
		return Quote{}, ErrDepositPct
	}

	gross := in.Quantity.Mul(in.UnitPrice)
	deposit := percentOf(gross, decimal.NewFromInt(int64(in.DepositPct)))
	fee := percentOf(gross, s.FeePercent)

	premium := decimal.Zero
	if s.InsuranceEnabled && in.InsuranceApplied {
		premium = percentOf(gross, s.InsurancePremiumPercent)
	}

	return Quote{
		Gross:             gross,
		DepositRequired:   deposit,
		FinanceRequired:   gross.Sub(deposit),
		PlatformFee:       fee,
		InsurancePremium:  premium,
		SupplierNetOnDocs: gross.Sub(fee).Sub(premium),
	}, nil
}

// QuoteFor is a convenience wrapper computing the quote of a stored trade.
func QuoteFor(t *models.Trade, s models.PlatformSettings) (Quote, error) {
	return Calculate(Input{
		Quantity:         t.Quantity,
		UnitPrice:        t.UnitPrice,
		DepositPct:       t.DepositPct,
		InsuranceApplied: t.InsuranceApplied,
	}, s)
}

// Rounded returns a copy with every amount rounded half away from zero to
// DisplayPlaces.
func (q Quote) Rounded() Quote {
	return Quote{
		Gross:             q.Gross.Round(DisplayPlaces),
		DepositRequired:   q.DepositRequired.Round(DisplayPlaces),
		FinanceRequired:   q.FinanceRequired.Round(DisplayPlaces),
		PlatformFee:       q.PlatformFee.Round(DisplayPlaces),
		InsurancePremium:  q.InsurancePremium.Round(DisplayPlaces),
		SupplierNetOnDocs: q.SupplierNetOnDocs.Round(DisplayPlaces),
	}
}

func percentOf(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(hundred)
}
