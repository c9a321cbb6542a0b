package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/tradeflow/internal/domain/dto"
	"github.com/guttosm/tradeflow/internal/domain/models"
	"github.com/guttosm/tradeflow/internal/lifecycle"
	"github.com/guttosm/tradeflow/internal/middleware"
)

// TradeService is the lifecycle surface the HTTP layer drives.
// *lifecycle.Service implements it.
type TradeService interface {
	CreateTrade(ctx context.Context, caller models.Caller, p lifecycle.CreateParams) (*models.Trade, error)
	GetTrade(ctx context.Context, id string, caller models.Caller) (*lifecycle.TradeView, error)
	ListTrades(ctx context.Context, caller models.Caller, filter models.TradeFilter) ([]*lifecycle.TradeView, error)
	RecordDeposit(ctx context.Context, id string, caller models.Caller) (*models.Trade, error)
	ConfirmTrade(ctx context.Context, id string, caller models.Caller) (*models.Trade, error)
	UploadDocuments(ctx context.Context, id string, provider string, files []lifecycle.DocumentInput) (*models.Trade, error)
	VerifyDocuments(ctx context.Context, id string, caller models.Caller) (*models.Trade, string, error)
	RecordFinalPayment(ctx context.Context, id string, caller models.Caller) (*models.Trade, error)
	Claim(ctx context.Context, id string, caller models.Caller, code string) (*models.Trade, error)
	CancelTrade(ctx context.Context, id string, caller models.Caller) (*models.Trade, error)
	Settings(ctx context.Context) (models.PlatformSettings, error)
	UpdateSettings(ctx context.Context, caller models.Caller, next models.PlatformSettings) (models.PlatformSettings, error)
}

var _ TradeService = (*lifecycle.Service)(nil)

// Handler provides HTTP handlers for the trade lifecycle endpoints.
//
// Responsibilities:
//   - Bind and validate request bodies and path parameters
//   - Resolve the caller placed in the context by middleware.Caller
//   - Translate lifecycle error kinds into HTTP status codes
//   - Return response DTOs (never the raw model, which carries the release key)
type Handler struct {
	svc TradeService
}

// NewHandler constructs a new Handler instance.
//
// Parameters:
//   - svc (TradeService): lifecycle service driving every transition.
//
// Returns:
//   - *Handler: A handler ready to be registered with the router.
func NewHandler(svc TradeService) *Handler {
	return &Handler{svc: svc}
}

// CreateTrade godoc
// @Summary      Open a trade
// @Description  Creates a trade between a buyer and a supplier. The caller must be the party named by creator_role (or an admin).
// @Tags         trades
// @Accept       json
// @Produce      json
// @Param        X-User-ID  header    string                  true  "Caller identity"
// @Param        body       body      dto.CreateTradeRequest  true  "Trade terms"
// @Success      201        {object}  dto.TradeResponse
// @Failure      400        {object}  dto.ErrorResponse
// @Failure      403        {object}  dto.ErrorResponse
// @Router       /api/v1/trades [post]
func (h *Handler) CreateTrade(c *gin.Context) {
	var req dto.CreateTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	t, err := h.svc.CreateTrade(c.Request.Context(), middleware.CallerFrom(c), lifecycle.CreateParams{
		Commodity:        req.Commodity,
		Quantity:         req.Quantity,
		UnitPrice:        req.UnitPrice,
		BuyerID:          req.BuyerID,
		SupplierID:       req.SupplierID,
		CreatorRole:      models.Role(req.CreatorRole),
		DepositPct:       req.DepositPct,
		FinancePct:       req.FinancePct,
		InsuranceApplied: req.InsuranceApplied,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewTradeResponse(t, nil))
}

// ListTrades godoc
// @Summary      List trades
// @Description  Lists trades visible to the caller, newest first. Non-admins only see their own trades.
// @Tags         trades
// @Produce      json
// @Param        X-User-ID  header    string  true   "Caller identity"
// @Param        status     query     string  false  "Filter by status" example(confirmed)
// @Param        party      query     string  false  "Filter by counterparty (admins only)"
// @Success      200        {array}   dto.TradeResponse
// @Failure      403        {object}  dto.ErrorResponse
// @Router       /api/v1/trades [get]
func (h *Handler) ListTrades(c *gin.Context) {
	filter := models.TradeFilter{
		PartyID: c.Query("party"),
		Status:  models.Status(c.Query("status")),
	}
	views, err := h.svc.ListTrades(c.Request.Context(), middleware.CallerFrom(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]dto.TradeResponse, 0, len(views))
	for _, v := range views {
		out = append(out, dto.NewTradeResponse(v.Trade, &v.Quote))
	}
	c.JSON(http.StatusOK, out)
}

// GetTrade godoc
// @Summary      Get a trade
// @Description  Returns the trade with its quote derived from the current platform settings.
// @Tags         trades
// @Produce      json
// @Param        X-User-ID  header    string  true  "Caller identity"
// @Param        id         path      string  true  "Trade ID"
// @Success      200        {object}  dto.TradeResponse
// @Failure      403        {object}  dto.ErrorResponse
// @Failure      404        {object}  dto.ErrorResponse
// @Router       /api/v1/trades/{id} [get]
func (h *Handler) GetTrade(c *gin.Context) {
	v, err := h.svc.GetTrade(c.Request.Context(), c.Param("id"), middleware.CallerFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTradeResponse(v.Trade, &v.Quote))
}

// RecordDeposit godoc
// @Summary      Record the buyer deposit
// @Tags         trades
// @Produce      json
// @Param        X-User-ID  header    string  true  "Caller identity"
// @Param        id         path      string  true  "Trade ID"
// @Success      200        {object}  dto.TradeResponse
// @Failure      403        {object}  dto.ErrorResponse
// @Failure      404        {object}  dto.ErrorResponse
// @Failure      409        {object}  dto.ErrorResponse
// @Router       /api/v1/trades/{id}/deposit [post]
func (h *Handler) RecordDeposit(c *gin.Context) {
	h.transition(c, h.svc.RecordDeposit)
}

// ConfirmTrade godoc
// @Summary      Supplier confirmation
// @Tags         trades
// @Produce      json
// @Param        X-User-ID  header    string  true  "Caller identity"
// @Param        id         path      string  true  "Trade ID"
// @Success      200        {object}  dto.TradeResponse
// @Failure      403        {object}  dto.ErrorResponse
// @Failure      404        {object}  dto.ErrorResponse
// @Failure      409        {object}  dto.ErrorResponse
// @Router       /api/v1/trades/{id}/confirm [post]
func (h *Handler) ConfirmTrade(c *gin.Context) {
	h.transition(c, h.svc.ConfirmTrade)
}

// UploadDocuments godoc
// @Summary      Attach document references
// @Description  Appends document references. The provider must be whitelisted.
// @Tags         trades
// @Accept       json
// @Produce      json
// @Param        X-User-ID  header    string                      true  "Caller identity"
// @Param        id         path      string                      true  "Trade ID"
// @Param        body       body      dto.UploadDocumentsRequest  true  "Documents"
// @Success      200        {object}  dto.TradeResponse
// @Failure      400        {object}  dto.ErrorResponse
// @Failure      403        {object}  dto.ErrorResponse
// @Failure      404        {object}  dto.ErrorResponse
// @Router       /api/v1/trades/{id}/documents [post]
func (h *Handler) UploadDocuments(c *gin.Context) {
	var req dto.UploadDocumentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	caller := middleware.CallerFrom(c)
	if caller.ID == "" {
		respondError(c, lifecycle.ErrForbidden)
		return
	}
	files := make([]lifecycle.DocumentInput, 0, len(req.Files))
	for _, f := range req.Files {
		files = append(files, lifecycle.DocumentInput{Name: f.Name, URL: f.URL})
	}
	t, err := h.svc.UploadDocuments(c.Request.Context(), c.Param("id"), req.Provider, files)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTradeResponse(t, nil))
}

// VerifyDocuments godoc
// @Summary      Verify documents and issue the release key
// @Description  Admin only. The key code is returned in this response and nowhere else.
// @Tags         trades
// @Produce      json
// @Param        X-User-ID  header    string  true  "Caller identity"
// @Param        id         path      string  true  "Trade ID"
// @Success      200        {object}  dto.VerifyResponse
// @Failure      403        {object}  dto.ErrorResponse
// @Failure      409        {object}  dto.ErrorResponse
// @Router       /api/v1/trades/{id}/verify [post]
func (h *Handler) VerifyDocuments(c *gin.Context) {
	t, key, err := h.svc.VerifyDocuments(c.Request.Context(), c.Param("id"), middleware.CallerFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.VerifyResponse{Trade: dto.NewTradeResponse(t, nil), KeyCode: key})
}

// RecordFinalPayment godoc
// @Summary      Record the buyer final payment
// @Tags         trades
// @Produce      json
// @Param        X-User-ID  header    string  true  "Caller identity"
// @Param        id         path      string  true  "Trade ID"
// @Success      200        {object}  dto.TradeResponse
// @Failure      403        {object}  dto.ErrorResponse
// @Failure      409        {object}  dto.ErrorResponse
// @Router       /api/v1/trades/{id}/final-payment [post]
func (h *Handler) RecordFinalPayment(c *gin.Context) {
	h.transition(c, h.svc.RecordFinalPayment)
}

// Claim godoc
// @Summary      Release the trade with the key code
// @Tags         trades
// @Accept       json
// @Produce      json
// @Param        X-User-ID  header    string            true  "Caller identity"
// @Param        id         path      string            true  "Trade ID"
// @Param        body       body      dto.ClaimRequest  true  "Release key"
// @Success      200        {object}  dto.TradeResponse
// @Failure      409        {object}  dto.ErrorResponse
// @Failure      422        {object}  dto.ErrorResponse
// @Router       /api/v1/trades/{id}/claim [post]
func (h *Handler) Claim(c *gin.Context) {
	var req dto.ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	t, err := h.svc.Claim(c.Request.Context(), c.Param("id"), middleware.CallerFrom(c), req.KeyCode)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTradeResponse(t, nil))
}

// CancelTrade godoc
// @Summary      Cancel a trade before the deposit
// @Tags         trades
// @Produce      json
// @Param        X-User-ID  header    string  true  "Caller identity"
// @Param        id         path      string  true  "Trade ID"
// @Success      200        {object}  dto.TradeResponse
// @Failure      403        {object}  dto.ErrorResponse
// @Failure      409        {object}  dto.ErrorResponse
// @Router       /api/v1/trades/{id}/cancel [post]
func (h *Handler) CancelTrade(c *gin.Context) {
	h.transition(c, h.svc.CancelTrade)
}

// GetSettings godoc
// @Summary      Current platform settings
// @Tags         admin
// @Produce      json
// @Param        X-User-ID  header    string  true  "Admin identity"
// @Success      200        {object}  dto.SettingsResponse
// @Failure      403        {object}  dto.ErrorResponse
// @Router       /api/v1/admin/settings [get]
func (h *Handler) GetSettings(c *gin.Context) {
	if !middleware.CallerFrom(c).Admin {
		respondError(c, lifecycle.ErrForbidden)
		return
	}
	s, err := h.svc.Settings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSettingsResponse(s))
}

// UpdateSettings godoc
// @Summary      Replace platform settings
// @Description  Admin only. Quotes of trades not yet settled change immediately.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        X-User-ID  header    string               true  "Admin identity"
// @Param        body       body      dto.SettingsRequest  true  "New settings"
// @Success      200        {object}  dto.SettingsResponse
// @Failure      400        {object}  dto.ErrorResponse
// @Failure      403        {object}  dto.ErrorResponse
// @Router       /api/v1/admin/settings [put]
func (h *Handler) UpdateSettings(c *gin.Context) {
	var req dto.SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	s, err := h.svc.UpdateSettings(c.Request.Context(), middleware.CallerFrom(c), req.ToSettings())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSettingsResponse(s))
}

type transitionFunc func(ctx context.Context, id string, caller models.Caller) (*models.Trade, error)

func (h *Handler) transition(c *gin.Context, fn transitionFunc) {
	t, err := fn(c.Request.Context(), c.Param("id"), middleware.CallerFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTradeResponse(t, nil))
}

// statusFor maps a lifecycle error kind to its HTTP status.
func statusFor(err error) int {
	switch lifecycle.Kind(err) {
	case lifecycle.ErrValidation:
		return http.StatusBadRequest
	case lifecycle.ErrForbidden, lifecycle.ErrProviderNotAllowed:
		return http.StatusForbidden
	case lifecycle.ErrNotFound:
		return http.StatusNotFound
	case lifecycle.ErrAlreadyDone, lifecycle.ErrPreconditionFailed, lifecycle.ErrConflict:
		return http.StatusConflict
	case lifecycle.ErrKeyMismatch:
		return http.StatusUnprocessableEntity
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		// ErrorHandler logs and renders a generic body.
		c.Status(status)
		_ = c.Error(err)
		c.Abort()
		return
	}
	middleware.AbortWithError(c, status, lifecycle.Kind(err).Error(), err)
}
