package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tillpoint/backend/internal/cache"
	"tillpoint/backend/internal/domain"
	"tillpoint/backend/internal/sequence"
	"tillpoint/backend/internal/service"
	"tillpoint/backend/internal/store/memory"
)

// newTestAPI builds a full API with an in-memory store, real AuthManager and
// real Service so handler tests exercise the complete request path.
func newTestAPI(t *testing.T) *API {
	t.Helper()

	repo := memory.NewSeeded()
	seq := sequence.NewGenerator(repo)
	svc := service.New(repo, seq, cache.NoopReportCache{}, time.Minute)
	auth := NewAuthManager("test-secret-key", time.Hour, repo)

	return New(svc, auth, "*")
}

func loginAs(t *testing.T, handler http.Handler, username string, password string) string {
	t.Helper()

	payload, _ := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}

	var resp domain.LoginResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return resp.AccessToken
}

func fetchCSRFToken(t *testing.T, handler http.Handler) string {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/csrf-token", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("csrf token fetch failed: %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode csrf body: %v", err)
	}
	return body["csrf_token"]
}

// doJSON fires an authenticated JSON request with a valid CSRF token and
// returns the recorder.
func doJSON(t *testing.T, handler http.Handler, method string, path string, token string, csrf string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if csrf != "" {
		req.Header.Set("X-CSRF-Token", csrf)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["ok"] != true {
		t.Fatalf("expected ok:true, got %v", body["ok"])
	}
}

func TestHandleLogin_Success(t *testing.T) {
	api := newTestAPI(t)
	token := loginAs(t, api.Handler(), "admin", "admin123")
	if token == "" {
		t.Fatalf("expected non-empty access token")
	}
}

func TestHandleLogin_InvalidCredentials(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	payload, _ := json.Marshal(map[string]string{
		"username": "admin",
		"password": "wrongpassword",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestHandleLogin_RateLimit(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	// The loginLimiter allows 5 attempts per minute.
	// Fire 6 requests from the same "IP" (httptest uses RemoteAddr "192.0.2.1:1234").
	payload, _ := json.Marshal(map[string]string{
		"username": "admin",
		"password": "badpass",
	})

	var lastCode int
	for i := 0; i < 6; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "192.0.2.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		lastCode = rec.Code
	}

	if lastCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after 6 attempts, got %d", lastCode)
	}
}

func TestHandleCustomers_RequiresAuth(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/customers", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestHandleCustomers_CreateAndList(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginAs(t, handler, "staff", "staff123")
	csrf := fetchCSRFToken(t, handler)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/customers", token, csrf, map[string]string{
		"name":  "Budi Santoso",
		"phone": "0812000111",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	listRec := doJSON(t, handler, http.MethodGet, "/api/v1/customers", token, "", nil)
	if listRec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", listRec.Code)
	}
	var body map[string][]domain.Customer
	if err := json.NewDecoder(listRec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body["customers"]) != 1 {
		t.Fatalf("expected 1 customer, got %d", len(body["customers"]))
	}
}

func TestHandleDirectRefund_SuccessContract(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginAs(t, handler, "staff", "staff123")
	csrf := fetchCSRFToken(t, handler)

	custRec := doJSON(t, handler, http.MethodPost, "/api/v1/customers", token, csrf, map[string]string{"name": "Sari"})
	if custRec.Code != http.StatusCreated {
		t.Fatalf("create customer failed: %d", custRec.Code)
	}
	var custBody map[string]domain.Customer
	if err := json.NewDecoder(custRec.Body).Decode(&custBody); err != nil {
		t.Fatalf("decode customer: %v", err)
	}
	customerID := custBody["customer"].ID

	retRec := doJSON(t, handler, http.MethodPost, "/api/v1/returns", token, csrf, map[string]any{
		"originalSaleId": "sale-1",
		"customerId":     customerID,
		"staffId":        "staff",
		"refundAmount":   30.00,
	})
	if retRec.Code != http.StatusCreated {
		t.Fatalf("record return failed: %d (body: %s)", retRec.Code, retRec.Body.String())
	}

	refundRec := doJSON(t, handler, http.MethodPost, "/api/v1/returns/direct-refund", token, csrf, map[string]any{
		"customerId":  customerID,
		"cashPaidOut": 12.50,
		"staffId":     "staff",
	})
	if refundRec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", refundRec.Code, refundRec.Body.String())
	}

	var resp domain.DirectRefundResponse
	if err := json.NewDecoder(refundRec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode refund response: %v", err)
	}
	if resp.Message != "Direct refund processed successfully." {
		t.Fatalf("unexpected message: %q", resp.Message)
	}
	if resp.ReturnData.OriginalSaleID != domain.DirectRefundSaleID {
		t.Fatalf("expected DIRECT_REFUND sentinel, got %s", resp.ReturnData.OriginalSaleID)
	}
	if resp.ReturnData.RefundAmount != -12.50 {
		t.Fatalf("expected refundAmount -12.50, got %v", resp.ReturnData.RefundAmount)
	}
}

func TestHandleDirectRefund_InsufficientCredit(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginAs(t, handler, "staff", "staff123")
	csrf := fetchCSRFToken(t, handler)

	custRec := doJSON(t, handler, http.MethodPost, "/api/v1/customers", token, csrf, map[string]string{"name": "Rina"})
	var custBody map[string]domain.Customer
	if err := json.NewDecoder(custRec.Body).Decode(&custBody); err != nil {
		t.Fatalf("decode customer: %v", err)
	}
	customerID := custBody["customer"].ID

	doJSON(t, handler, http.MethodPost, "/api/v1/returns", token, csrf, map[string]any{
		"originalSaleId": "sale-1",
		"customerId":     customerID,
		"staffId":        "staff",
		"refundAmount":   20.00,
	})

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/returns/direct-refund", token, csrf, map[string]any{
		"customerId":  customerID,
		"cashPaidOut": 20.01,
		"staffId":     "staff",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	want := "Refund amount of 20.01 exceeds available credit of 20.00."
	if body["error"] != want {
		t.Fatalf("expected error %q, got %q", want, body["error"])
	}
}

func TestHandleDailyCount(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginAs(t, handler, "staff", "staff123")
	csrf := fetchCSRFToken(t, handler)

	saleRec := doJSON(t, handler, http.MethodPost, "/api/v1/sales", token, csrf, map[string]any{
		"staffId":     "staff",
		"totalAmount": 25.00,
		"paidCash":    25.00,
	})
	if saleRec.Code != http.StatusCreated {
		t.Fatalf("create sale failed: %d (body: %s)", saleRec.Code, saleRec.Body.String())
	}

	path := fmt.Sprintf("/api/v1/reports/daily-count?staffId=staff&date=%s", time.Now().UTC().Format("2006-01-02"))
	rec := doJSON(t, handler, http.MethodGet, path, token, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var summary domain.DailyCountSummary
	if err := json.NewDecoder(rec.Body).Decode(&summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.TotalTransactions != 1 || summary.TotalCashInCents != 2500 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestHandleAuditLogs_RequiresAdmin(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginAs(t, handler, "staff", "staff123")

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/audit-logs", token, "", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for staff, got %d", rec.Code)
	}

	adminToken := loginAs(t, handler, "admin", "admin123")
	adminRec := doJSON(t, handler, http.MethodGet, "/api/v1/audit-logs", adminToken, "", nil)
	if adminRec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", adminRec.Code)
	}
}
