package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/tradeflow/internal/domain/dto"
	"github.com/guttosm/tradeflow/internal/domain/models"
	"github.com/guttosm/tradeflow/internal/lifecycle"
	"github.com/guttosm/tradeflow/internal/storage"
	"github.com/shopspring/decimal"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := lifecycle.NewService(
		storage.NewMemoryTradeStore(),
		storage.NewMemorySettingsStore(models.PlatformSettings{
			FeePercent:              decimal.RequireFromString("0.75"),
			InsuranceEnabled:        true,
			InsurancePremiumPercent: decimal.RequireFromString("1.25"),
		}),
		nil,
		lifecycle.Options{DocumentProviders: []string{"docusign"}},
	)
	return NewRouter(NewHandler(svc), nil, RouterConfig{AdminUserIDs: []string{"ops"}, RateLimitRPS: 1000, RateLimitBurst: 1000})
}

func do(t *testing.T, r http.Handler, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json %q: %v", w.Body.String(), err)
	}
	return out
}

func createBody(role string) map[string]any {
	return map[string]any{
		"commodity":         "cocoa",
		"quantity":          "100",
		"unit_price":        "7.5",
		"buyer_id":          "B",
		"supplier_id":       "S",
		"creator_role":      role,
		"deposit_pct":       30,
		"finance_pct":       70,
		"insurance_applied": true,
	}
}

func TestTradeLifecycle_OverHTTP(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/trades", "S", createBody("supplier"))
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	tr := decode[dto.TradeResponse](t, w)
	if tr.Status != string(models.StatusAwaitingBuyerDeposit) {
		t.Fatalf("status=%s", tr.Status)
	}
	base := "/api/v1/trades/" + tr.ID

	steps := []struct {
		name   string
		method string
		path   string
		user   string
		body   any
		want   int
		status models.Status
	}{
		{name: "deposit by supplier", method: http.MethodPost, path: "/deposit", user: "S", want: http.StatusForbidden},
		{name: "deposit", method: http.MethodPost, path: "/deposit", user: "B", want: http.StatusOK, status: models.StatusConfirmed},
		{name: "deposit again", method: http.MethodPost, path: "/deposit", user: "B", want: http.StatusConflict},
		{name: "verify without docs", method: http.MethodPost, path: "/verify", user: "ops", want: http.StatusConflict},
		{name: "bad provider", method: http.MethodPost, path: "/documents", user: "S", body: map[string]any{"provider": "email", "files": []map[string]string{{"name": "bl.pdf"}}}, want: http.StatusForbidden},
		{name: "upload", method: http.MethodPost, path: "/documents", user: "S", body: map[string]any{"provider": "docusign", "files": []map[string]string{{"name": "bl.pdf"}}}, want: http.StatusOK, status: models.StatusConfirmed},
		{name: "verify by buyer", method: http.MethodPost, path: "/verify", user: "B", want: http.StatusForbidden},
		{name: "claim too early", method: http.MethodPost, path: "/claim", user: "S", body: map[string]string{"key_code": "NOPE"}, want: http.StatusConflict},
		{name: "final payment", method: http.MethodPost, path: "/final-payment", user: "B", want: http.StatusOK, status: models.StatusFinalPaid},
		{name: "cancel after deposit", method: http.MethodPost, path: "/cancel", user: "B", want: http.StatusConflict},
	}
	for _, st := range steps {
		w := do(t, r, st.method, base+st.path, st.user, st.body)
		if w.Code != st.want {
			t.Fatalf("%s: code=%d want %d body=%s", st.name, w.Code, st.want, w.Body.String())
		}
		if st.status != "" {
			if got := decode[dto.TradeResponse](t, w).Status; got != string(st.status) {
				t.Fatalf("%s: status=%s want %s", st.name, got, st.status)
			}
		}
	}

	w = do(t, r, http.MethodPost, base+"/verify", "ops", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("verify: %d %s", w.Code, w.Body.String())
	}
	verified := decode[dto.VerifyResponse](t, w)
	if verified.KeyCode == "" {
		t.Fatalf("no key issued")
	}

	w = do(t, r, http.MethodPost, base+"/claim", "S", map[string]string{"key_code": "WRONG"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("wrong key: %d", w.Code)
	}

	w = do(t, r, http.MethodPost, base+"/claim", "S", map[string]string{"key_code": verified.KeyCode})
	if w.Code != http.StatusOK {
		t.Fatalf("claim: %d %s", w.Code, w.Body.String())
	}
	if got := decode[dto.TradeResponse](t, w); !got.Released || got.Status != string(models.StatusReleased) {
		t.Fatalf("unexpected %+v", got)
	}

	w = do(t, r, http.MethodGet, base, "B", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get: %d", w.Code)
	}
	if bytes.Contains(w.Body.Bytes(), []byte(verified.KeyCode)) {
		t.Fatalf("key code leaked on read: %s", w.Body.String())
	}
	got := decode[dto.TradeResponse](t, w)
	if got.Quote == nil || got.Quote.PlatformFee != "5.63" || got.Quote.SupplierNetOnDocs != "735.00" {
		t.Fatalf("quote=%+v", got.Quote)
	}
}

func TestCreateTrade_BadRequests(t *testing.T) {
	r := newTestRouter(t)

	cases := []struct {
		name   string
		user   string
		mutate func(map[string]any)
		want   int
	}{
		{name: "pct sum", user: "B", mutate: func(b map[string]any) { b["finance_pct"] = 60 }, want: http.StatusBadRequest},
		{name: "same party", user: "B", mutate: func(b map[string]any) { b["supplier_id"] = "B" }, want: http.StatusBadRequest},
		{name: "missing commodity", user: "B", mutate: func(b map[string]any) { delete(b, "commodity") }, want: http.StatusBadRequest},
		{name: "bad decimal", user: "B", mutate: func(b map[string]any) { b["quantity"] = "lots" }, want: http.StatusBadRequest},
		{name: "not creator", user: "S", mutate: func(map[string]any) {}, want: http.StatusForbidden},
		{name: "anonymous", user: "", mutate: func(map[string]any) {}, want: http.StatusForbidden},
		{name: "ok", user: "B", mutate: func(map[string]any) {}, want: http.StatusCreated},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := createBody("buyer")
			tc.mutate(body)
			w := do(t, r, http.MethodPost, "/api/v1/trades", tc.user, body)
			if w.Code != tc.want {
				t.Fatalf("code=%d want %d body=%s", w.Code, tc.want, w.Body.String())
			}
			if tc.want >= 400 {
				if e := decode[dto.ErrorResponse](t, w); e.Message == "" || e.Timestamp.IsZero() {
					t.Fatalf("error body=%+v", e)
				}
			}
		})
	}
}

func TestListTrades_ScopedToCaller(t *testing.T) {
	r := newTestRouter(t)
	if w := do(t, r, http.MethodPost, "/api/v1/trades", "B", createBody("buyer")); w.Code != http.StatusCreated {
		t.Fatalf("create: %d", w.Code)
	}
	other := createBody("buyer")
	other["buyer_id"], other["supplier_id"] = "C", "D"
	if w := do(t, r, http.MethodPost, "/api/v1/trades", "C", other); w.Code != http.StatusCreated {
		t.Fatalf("create: %d", w.Code)
	}

	cases := []struct {
		name string
		user string
		path string
		want int
	}{
		{name: "buyer sees own", user: "B", path: "/api/v1/trades", want: 1},
		{name: "party filter ignored for non-admin", user: "B", path: "/api/v1/trades?party=C", want: 1},
		{name: "admin sees all", user: "ops", path: "/api/v1/trades", want: 2},
		{name: "admin filters party", user: "ops", path: "/api/v1/trades?party=D", want: 1},
		{name: "status filter", user: "ops", path: "/api/v1/trades?status=released", want: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, r, http.MethodGet, tc.path, tc.user, nil)
			if w.Code != http.StatusOK {
				t.Fatalf("code=%d", w.Code)
			}
			if got := decode[[]dto.TradeResponse](t, w); len(got) != tc.want {
				t.Fatalf("len=%d want %d", len(got), tc.want)
			}
		})
	}
}

func TestAdminSettings(t *testing.T) {
	r := newTestRouter(t)

	if w := do(t, r, http.MethodGet, "/api/v1/admin/settings", "B", nil); w.Code != http.StatusForbidden {
		t.Fatalf("non-admin get: %d", w.Code)
	}
	w := do(t, r, http.MethodGet, "/api/v1/admin/settings", "ops", nil)
	if w.Code != http.StatusOK || decode[dto.SettingsResponse](t, w).FeePercent != "0.75" {
		t.Fatalf("get: %d %s", w.Code, w.Body.String())
	}

	body := map[string]any{"fee_percent": "1.5", "insurance_enabled": false, "insurance_premium_percent": "1.25"}
	if w := do(t, r, http.MethodPut, "/api/v1/admin/settings", "B", body); w.Code != http.StatusForbidden {
		t.Fatalf("non-admin put: %d", w.Code)
	}
	if w := do(t, r, http.MethodPut, "/api/v1/admin/settings", "ops", map[string]any{"fee_percent": "150"}); w.Code != http.StatusBadRequest {
		t.Fatalf("invalid put: %d", w.Code)
	}
	w = do(t, r, http.MethodPut, "/api/v1/admin/settings", "ops", body)
	if w.Code != http.StatusOK {
		t.Fatalf("put: %d %s", w.Code, w.Body.String())
	}
	if got := decode[dto.SettingsResponse](t, w); got.FeePercent != "1.5" || got.InsuranceEnabled {
		t.Fatalf("unexpected %+v", got)
	}
}

type failingService struct {
	TradeService
	err error
}

func (f failingService) RecordDeposit(context.Context, string, models.Caller) (*models.Trade, error) {
	return nil, f.err
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{err: fmt.Errorf("%w: x", lifecycle.ErrValidation), want: http.StatusBadRequest},
		{err: lifecycle.ErrForbidden, want: http.StatusForbidden},
		{err: lifecycle.ErrProviderNotAllowed, want: http.StatusForbidden},
		{err: lifecycle.ErrNotFound, want: http.StatusNotFound},
		{err: lifecycle.ErrAlreadyDone, want: http.StatusConflict},
		{err: lifecycle.ErrPreconditionFailed, want: http.StatusConflict},
		{err: lifecycle.ErrConflict, want: http.StatusConflict},
		{err: lifecycle.ErrKeyMismatch, want: http.StatusUnprocessableEntity},
		{err: context.DeadlineExceeded, want: http.StatusGatewayTimeout},
		{err: errors.New("disk on fire"), want: http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			r := NewRouter(NewHandler(failingService{err: tc.err}), nil, RouterConfig{})
			w := do(t, r, http.MethodPost, "/api/v1/trades/t-1/deposit", "B", nil)
			if w.Code != tc.want {
				t.Fatalf("code=%d want %d", w.Code, tc.want)
			}
			e := decode[dto.ErrorResponse](t, w)
			if tc.want == http.StatusInternalServerError && e.Message != "Internal server error" {
				t.Fatalf("message=%q", e.Message)
			}
		})
	}
}
