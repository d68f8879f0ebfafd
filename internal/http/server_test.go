package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"tally/internal/services"
	"tally/internal/store/memory"
)

var serverNow = time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

func newTestServer() *Server {
	st := memory.New()
	ledger := services.NewLedgerService(st, nil, services.WithClock(func() time.Time { return serverNow }))
	return NewServer(":0", ledger, WithServerClock(func() time.Time { return serverNow }))
}

func doJSON(t *testing.T, srv *Server, method, path, user, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer()
	defer srv.Shutdown(context.Background())

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := doJSON(t, srv, http.MethodGet, path, "", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
}

func TestCreateTransactionValidationAndSuccess(t *testing.T) {
	srv := newTestServer()
	defer srv.Shutdown(context.Background())
	user := uuid.NewString()

	// Missing user header
	rr := doJSON(t, srv, http.MethodPost, "/api/transactions", "",
		`{"date":"2024-05-10","category":"groceries","amount":"12.50","kind":"expense"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without user header, got %d", rr.Code)
	}

	// Invalid amount
	rr = doJSON(t, srv, http.MethodPost, "/api/transactions", user,
		`{"date":"2024-05-10","category":"groceries","amount":"abc","kind":"expense"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for bad amount, got %d", rr.Code)
	}

	// Negative amount
	rr = doJSON(t, srv, http.MethodPost, "/api/transactions", user,
		`{"date":"2024-05-10","category":"groceries","amount":"-5","kind":"expense"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for negative amount, got %d", rr.Code)
	}

	// Invalid kind
	rr = doJSON(t, srv, http.MethodPost, "/api/transactions", user,
		`{"date":"2024-05-10","category":"groceries","amount":"12.50","kind":"transfer"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for bad kind, got %d", rr.Code)
	}

	// Over-long description
	rr = doJSON(t, srv, http.MethodPost, "/api/transactions", user,
		`{"date":"2024-05-10","category":"groceries","amount":"12.50","kind":"expense","description":"`+strings.Repeat("x", 201)+`"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for over-long description, got %d", rr.Code)
	}

	// Success
	rr = doJSON(t, srv, http.MethodPost, "/api/transactions", user,
		`{"date":"2024-05-10","category":"groceries","amount":"12.50","kind":"expense","description":"weekly shop"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var created transactionView
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.Amount != "12.50" || created.Category != "groceries" {
		t.Errorf("unexpected created view: %+v", created)
	}

	// List shows it
	rr = doJSON(t, srv, http.MethodGet, "/api/transactions", user, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list status=%d", rr.Code)
	}
	var list []transactionView
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 || list[0].ID != created.ID {
		t.Errorf("expected one transaction %s, got %+v", created.ID, list)
	}
}

func TestDeleteTransaction(t *testing.T) {
	srv := newTestServer()
	defer srv.Shutdown(context.Background())
	user := uuid.NewString()

	rr := doJSON(t, srv, http.MethodPost, "/api/transactions", user,
		`{"date":"2024-05-10","category":"fuel","amount":"40","kind":"expense"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d", rr.Code)
	}
	var created transactionView
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rr = doJSON(t, srv, http.MethodDelete, "/api/transactions/"+created.ID, user, "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status=%d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodDelete, "/api/transactions/"+created.ID, user, "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for repeated delete, got %d", rr.Code)
	}
}

func TestBudgetConflictAndUtilization(t *testing.T) {
	srv := newTestServer()
	defer srv.Shutdown(context.Background())
	user := uuid.NewString()

	rr := doJSON(t, srv, http.MethodPost, "/api/budgets", user,
		`{"category":"groceries","limit":"800","period":"monthly"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create budget status=%d: %s", rr.Code, rr.Body.String())
	}

	// Same category and period conflicts
	rr = doJSON(t, srv, http.MethodPost, "/api/budgets", user,
		`{"category":"groceries","limit":"900","period":"monthly"}`)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate budget, got %d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/transactions", user,
		`{"date":"2024-05-10","category":"groceries","amount":"1000","kind":"expense"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create tx status=%d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/budgets/utilization", user, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("utilization status=%d", rr.Code)
	}
	var utils []utilizationView
	if err := json.Unmarshal(rr.Body.Bytes(), &utils); err != nil {
		t.Fatalf("decode utilization: %v", err)
	}
	if len(utils) != 1 {
		t.Fatalf("expected one utilization row, got %d", len(utils))
	}
	u := utils[0]
	if u.Spent != "1000.00" || u.Remaining != "-200.00" || u.Percentage != 125.0 {
		t.Errorf("unexpected utilization: %+v", u)
	}
	if !u.OverBudget || u.NearLimit {
		t.Errorf("expected over budget only, got over=%v near=%v", u.OverBudget, u.NearLimit)
	}
}

func TestGoalLifecycle(t *testing.T) {
	srv := newTestServer()
	defer srv.Shutdown(context.Background())
	user := uuid.NewString()

	rr := doJSON(t, srv, http.MethodPost, "/api/goals", user,
		`{"title":"Emergency fund","target":"10000","deadline":"2024-06-10"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create goal status=%d: %s", rr.Code, rr.Body.String())
	}
	var g goalView
	if err := json.Unmarshal(rr.Body.Bytes(), &g); err != nil {
		t.Fatalf("decode goal: %v", err)
	}
	if g.Percentage != 0 || g.Status != "urgent" || g.DaysRemaining != 26 {
		t.Errorf("unexpected fresh goal progress: %+v", g)
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/goals/"+g.ID+"/progress", user, `{"delta":"9500"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("adjust status=%d: %s", rr.Code, rr.Body.String())
	}
	rr = doJSON(t, srv, http.MethodPost, "/api/goals/"+g.ID+"/progress", user, `{"delta":"1000"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("adjust status=%d", rr.Code)
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &g); err != nil {
		t.Fatalf("decode adjusted goal: %v", err)
	}
	if g.Current != "10500.00" || !g.Completed || g.Percentage != 100.0 {
		t.Errorf("unexpected adjusted goal: %+v", g)
	}

	rr = doJSON(t, srv, http.MethodDelete, "/api/goals/"+g.ID, user, "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete goal status=%d", rr.Code)
	}
}

func TestDashboardSummaryAndInvalidation(t *testing.T) {
	srv := newTestServer()
	defer srv.Shutdown(context.Background())
	user := uuid.NewString()

	seed := []string{
		`{"date":"2024-05-01","category":"salary","amount":"5000","kind":"income"}`,
		`{"date":"2024-05-05","category":"groceries","amount":"600","kind":"expense"}`,
		`{"date":"2024-05-12","category":"fuel","amount":"400","kind":"expense"}`,
		`{"date":"2024-04-30","category":"groceries","amount":"999","kind":"expense"}`,
	}
	for _, body := range seed {
		rr := doJSON(t, srv, http.MethodPost, "/api/transactions", user, body)
		if rr.Code != http.StatusCreated {
			t.Fatalf("seed status=%d: %s", rr.Code, rr.Body.String())
		}
	}

	rr := doJSON(t, srv, http.MethodGet, "/api/dashboard/summary", user, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("summary status=%d", rr.Code)
	}
	var sum summaryView
	if err := json.Unmarshal(rr.Body.Bytes(), &sum); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if sum.Income != "5000.00" || sum.Expenses != "1000.00" || sum.Balance != "4000.00" {
		t.Errorf("unexpected May summary: %+v", sum)
	}
	if len(sum.ByCategory) != 2 || sum.ByCategory[0].Category != "groceries" {
		t.Errorf("unexpected breakdown: %+v", sum.ByCategory)
	}

	// A new transaction must show up in the next summary read.
	rr = doJSON(t, srv, http.MethodPost, "/api/transactions", user,
		`{"date":"2024-05-14","category":"dining","amount":"100","kind":"expense"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d", rr.Code)
	}
	rr = doJSON(t, srv, http.MethodGet, "/api/dashboard/summary", user, "")
	if err := json.Unmarshal(rr.Body.Bytes(), &sum); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if sum.Expenses != "1100.00" {
		t.Errorf("expected refreshed expenses 1100.00, got %s", sum.Expenses)
	}
}

func TestSummaryCacheRespectsPeriodBoundary(t *testing.T) {
	clock := time.Date(2024, 4, 30, 23, 0, 0, 0, time.UTC)
	st := memory.New()
	ledger := services.NewLedgerService(st, nil, services.WithClock(func() time.Time { return clock }))
	srv := NewServer(":0", ledger, WithServerClock(func() time.Time { return clock }))
	defer srv.Shutdown(context.Background())
	user := uuid.NewString()

	rr := doJSON(t, srv, http.MethodPost, "/api/transactions", user,
		`{"date":"2024-04-30","category":"groceries","amount":"300","kind":"expense"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/dashboard/summary", user, "")
	var sum summaryView
	if err := json.Unmarshal(rr.Body.Bytes(), &sum); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if sum.Expenses != "300.00" {
		t.Fatalf("expected April expenses 300.00, got %s", sum.Expenses)
	}

	// Crossing into May must not serve the cached April entry.
	clock = time.Date(2024, 5, 1, 0, 30, 0, 0, time.UTC)
	rr = doJSON(t, srv, http.MethodGet, "/api/dashboard/summary", user, "")
	if err := json.Unmarshal(rr.Body.Bytes(), &sum); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if sum.Expenses != "0.00" {
		t.Errorf("expected fresh May expenses 0.00, got %s", sum.Expenses)
	}
}

func TestDashboardSeries(t *testing.T) {
	srv := newTestServer()
	defer srv.Shutdown(context.Background())
	user := uuid.NewString()

	rr := doJSON(t, srv, http.MethodPost, "/api/transactions", user,
		`{"date":"2024-05-15","category":"dining","amount":"25","kind":"expense"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/dashboard/series", user, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("series status=%d", rr.Code)
	}
	var buckets []bucketView
	if err := json.Unmarshal(rr.Body.Bytes(), &buckets); err != nil {
		t.Fatalf("decode series: %v", err)
	}
	if len(buckets) != 30 {
		t.Fatalf("expected 30 buckets, got %d", len(buckets))
	}
	if buckets[0].Date != "2024-04-16" || buckets[29].Date != "2024-05-15" {
		t.Errorf("unexpected bucket range: %s .. %s", buckets[0].Date, buckets[29].Date)
	}
	if buckets[29].Expenses != "25.00" {
		t.Errorf("expected expenses 25.00 on the last day, got %s", buckets[29].Expenses)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/dashboard/series?days=0", user, "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for days=0, got %d", rr.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer()
	defer srv.Shutdown(context.Background())
	user := uuid.NewString()

	cases := []struct {
		method, path string
	}{
		{http.MethodPut, "/api/transactions"},
		{http.MethodPost, "/api/dashboard/summary"},
		{http.MethodGet, "/api/transactions/" + uuid.NewString()},
	}
	for _, tc := range cases {
		rr := doJSON(t, srv, tc.method, tc.path, user, "")
		if rr.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s: expected 405, got %d", tc.method, tc.path, rr.Code)
		}
	}
}

func TestUserIsolation(t *testing.T) {
	srv := newTestServer()
	defer srv.Shutdown(context.Background())
	alice := uuid.NewString()
	bob := uuid.NewString()

	rr := doJSON(t, srv, http.MethodPost, "/api/transactions", alice,
		`{"date":"2024-05-10","category":"groceries","amount":"50","kind":"expense"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/transactions", bob, "")
	var list []transactionView
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected empty list for other user, got %d items", len(list))
	}
}

