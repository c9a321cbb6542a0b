package dto

import (
	"time"

	"github.com/guttosm/tradeflow/internal/domain/models"
	"github.com/guttosm/tradeflow/internal/finance"
	"github.com/shopspring/decimal"
)

// CreateTradeRequest is the body of POST /api/v1/trades.
type CreateTradeRequest struct {
	Commodity        string          `json:"commodity" binding:"required" example:"cocoa"`
	Quantity         decimal.Decimal `json:"quantity" swaggertype:"string" example:"100"`
	UnitPrice        decimal.Decimal `json:"unit_price" swaggertype:"string" example:"7.5"`
	BuyerID          string          `json:"buyer_id" binding:"required" example:"buyer-1"`
	SupplierID       string          `json:"supplier_id" binding:"required" example:"supplier-1"`
	CreatorRole      string          `json:"creator_role" binding:"required" example:"supplier"`
	DepositPct       int             `json:"deposit_pct" example:"30"`
	FinancePct       int             `json:"finance_pct" example:"70"`
	InsuranceApplied bool            `json:"insurance_applied" example:"true"`
}

// DocumentUpload is one file reference in UploadDocumentsRequest.
type DocumentUpload struct {
	Name string `json:"name" example:"bill-of-lading.pdf"`
	URL  string `json:"url,omitempty" example:"https://files.example.com/bl.pdf"`
}

// UploadDocumentsRequest is the body of POST /api/v1/trades/{id}/documents.
type UploadDocumentsRequest struct {
	Provider string           `json:"provider" binding:"required" example:"docusign"`
	Files    []DocumentUpload `json:"files"`
}

// ClaimRequest is the body of POST /api/v1/trades/{id}/claim.
type ClaimRequest struct {
	KeyCode string `json:"key_code" binding:"required" example:"K7PQ2MXA"`
}

// QuoteResponse carries the derived amounts of a trade, rounded to cents.
type QuoteResponse struct {
	Gross             string `json:"gross" example:"750.00"`
	DepositRequired   string `json:"deposit_required" example:"225.00"`
	FinanceRequired   string `json:"finance_required" example:"525.00"`
	PlatformFee       string `json:"platform_fee" example:"5.63"`
	InsurancePremium  string `json:"insurance_premium" example:"9.38"`
	SupplierNetOnDocs string `json:"supplier_net_on_docs" example:"735.00"`
}

// TradeResponse is the public view of a trade. The release key is never part of it.
type TradeResponse struct {
	ID                string            `json:"id"`
	Commodity         string            `json:"commodity"`
	Quantity          string            `json:"quantity"`
	UnitPrice         string            `json:"unit_price"`
	BuyerID           string            `json:"buyer_id"`
	SupplierID        string            `json:"supplier_id"`
	CreatorRole       string            `json:"creator_role"`
	DepositPct        int               `json:"deposit_pct"`
	FinancePct        int               `json:"finance_pct"`
	InsuranceApplied  bool              `json:"insurance_applied"`
	Status            string            `json:"status"`
	BuyerDepositPaid  bool              `json:"buyer_deposit_paid"`
	SupplierConfirmed bool              `json:"supplier_confirmed"`
	DocsVerified      bool              `json:"docs_verified"`
	FinalPaid         bool              `json:"final_paid"`
	Released          bool              `json:"released"`
	DocsFiles         []models.Document `json:"docs_files"`
	Quote             *QuoteResponse    `json:"quote,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// VerifyResponse is returned once, when documents are verified. KeyCode is
// the only place the release key ever leaves the service.
type VerifyResponse struct {
	Trade   TradeResponse `json:"trade"`
	KeyCode string        `json:"key_code" example:"K7PQ2MXA"`
}

// SettingsRequest is the body of PUT /api/v1/admin/settings.
type SettingsRequest struct {
	FeePercent              decimal.Decimal `json:"fee_percent" swaggertype:"string" example:"0.75"`
	InsuranceEnabled        bool            `json:"insurance_enabled" example:"true"`
	InsurancePremiumPercent decimal.Decimal `json:"insurance_premium_percent" swaggertype:"string" example:"1.25"`
	EscrowWallet            string          `json:"escrow_wallet,omitempty"`
	PlatformWallet          string          `json:"platform_wallet,omitempty"`
}

// SettingsResponse mirrors models.PlatformSettings on the wire.
type SettingsResponse struct {
	FeePercent              string    `json:"fee_percent" example:"0.75"`
	InsuranceEnabled        bool      `json:"insurance_enabled" example:"true"`
	InsurancePremiumPercent string    `json:"insurance_premium_percent" example:"1.25"`
	EscrowWallet            string    `json:"escrow_wallet,omitempty"`
	PlatformWallet          string    `json:"platform_wallet,omitempty"`
	UpdatedAt               time.Time `json:"updated_at,omitempty"`
}

// NewTradeResponse maps a trade and an optional quote to the wire shape.
func NewTradeResponse(t *models.Trade, q *finance.Quote) TradeResponse {
	docs := t.DocsFiles
	if docs == nil {
		docs = []models.Document{}
	}
	resp := TradeResponse{
		ID:                t.ID,
		Commodity:         t.Commodity,
		Quantity:          t.Quantity.String(),
		UnitPrice:         t.UnitPrice.String(),
		BuyerID:           t.BuyerID,
		SupplierID:        t.SupplierID,
		CreatorRole:       string(t.CreatorRole),
		DepositPct:        t.DepositPct,
		FinancePct:        t.FinancePct,
		InsuranceApplied:  t.InsuranceApplied,
		Status:            string(t.Status),
		BuyerDepositPaid:  t.BuyerDepositPaid,
		SupplierConfirmed: t.SupplierConfirmed,
		DocsVerified:      t.DocsVerified,
		FinalPaid:         t.FinalPaid,
		Released:          t.Released,
		DocsFiles:         docs,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
	if q != nil {
		qr := NewQuoteResponse(*q)
		resp.Quote = &qr
	}
	return resp
}

// NewQuoteResponse rounds q to cents and formats every amount with two decimals.
func NewQuoteResponse(q finance.Quote) QuoteResponse {
	r := q.Rounded()
	return QuoteResponse{
		Gross:             r.Gross.StringFixed(2),
		DepositRequired:   r.DepositRequired.StringFixed(2),
		FinanceRequired:   r.FinanceRequired.StringFixed(2),
		PlatformFee:       r.PlatformFee.StringFixed(2),
		InsurancePremium:  r.InsurancePremium.StringFixed(2),
		SupplierNetOnDocs: r.SupplierNetOnDocs.StringFixed(2),
	}
}

// NewSettingsResponse maps platform settings to the wire shape.
func NewSettingsResponse(s models.PlatformSettings) SettingsResponse {
	return SettingsResponse{
		FeePercent:              s.FeePercent.String(),
		InsuranceEnabled:        s.InsuranceEnabled,
		InsurancePremiumPercent: s.InsurancePremiumPercent.String(),
		EscrowWallet:            s.EscrowWallet,
		PlatformWallet:          s.PlatformWallet,
		UpdatedAt:               s.UpdatedAt,
	}
}

// ToSettings converts the request into platform settings.
func (r SettingsRequest) ToSettings() models.PlatformSettings {
	return models.PlatformSettings{
		FeePercent:              r.FeePercent,
		InsuranceEnabled:        r.InsuranceEnabled,
		InsurancePremiumPercent: r.InsurancePremiumPercent,
		EscrowWallet:            r.EscrowWallet,
		PlatformWallet:          r.PlatformWallet,
	}
}
