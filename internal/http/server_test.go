package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"gastos/internal/core"
	"gastos/internal/services"
)

type fakeStore struct {
	expenses  []core.Expense
	nextID    int64
	listCalls int
	failList  bool
}

func (f *fakeStore) CreateExpense(_ context.Context, e core.Expense) (int64, error) {
	f.nextID++
	e.ID = f.nextID
	f.expenses = append(f.expenses, e)
	return e.ID, nil
}

func (f *fakeStore) ListExpenses(_ context.Context) ([]core.Expense, error) {
	f.listCalls++
	if f.failList {
		return nil, errors.New("store down")
	}
	out := make([]core.Expense, len(f.expenses))
	copy(out, f.expenses)
	return out, nil
}

func (f *fakeStore) ListCategories(_ context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, e := range f.expenses {
		if !seen[e.Category] {
			seen[e.Category] = true
			out = append(out, e.Category)
		}
	}
	return out, nil
}

func (f *fakeStore) RenameCategory(_ context.Context, oldName, newName string) (int64, error) {
	var affected int64
	for i := range f.expenses {
		if f.expenses[i].Category == oldName {
			f.expenses[i].Category = newName
			affected++
		}
	}
	return affected, nil
}

func (f *fakeStore) DeleteExpense(_ context.Context, id int64) (bool, error) {
	for i := range f.expenses {
		if f.expenses[i].ID == id {
			f.expenses = append(f.expenses[:i], f.expenses[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func newTestServer(t *testing.T) (*Server, *fakeStore) {
	t.Helper()
	store := &fakeStore{}
	ledger := services.NewLedgerService(store, nil)
	return NewServer(":0", ledger, 10), store
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, rec.Body.String())
	}
	return v
}

func TestCreateExpense(t *testing.T) {
	srv, store := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/expenses",
		`{"category":"Food","description":"lunch","payment_method":"Visa","amount":"12.50","date":"2024-03-01"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[map[string]int64](t, rec)
	if resp["id"] != 1 {
		t.Errorf("expected id 1, got %d", resp["id"])
	}
	if got := rec.Header().Get("X-Ledger-Version"); got != "1" {
		t.Errorf("expected ledger version 1, got %q", got)
	}
	if len(store.expenses) != 1 || !store.expenses[0].Amount.Equal(decimal.RequireFromString("12.5")) {
		t.Errorf("unexpected stored expenses: %+v", store.expenses)
	}
}

func TestCreateExpenseNormalizesForeignCurrency(t *testing.T) {
	srv, store := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/expenses",
		`{"category":"Transport","description":"taxi","payment_method":"Cash","amount":"1000","currency":"ARS","rate":"50","date":"2024-03-01"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if !store.expenses[0].Amount.Equal(decimal.NewFromInt(20)) {
		t.Errorf("expected normalized amount 20, got %s", store.expenses[0].Amount)
	}
}

func TestCreateExpenseRejectsBadInput(t *testing.T) {
	srv, _ := newTestServer(t)

	cases := []struct {
		name string
		body string
	}{
		{"zero amount", `{"category":"Food","description":"x","payment_method":"Visa","amount":"0"}`},
		{"negative amount", `{"category":"Food","description":"x","payment_method":"Visa","amount":"-5"}`},
		{"non-numeric amount", `{"category":"Food","description":"x","payment_method":"Visa","amount":"lots"}`},
		{"missing rate for foreign currency", `{"category":"Food","description":"x","payment_method":"Visa","amount":"10","currency":"EUR"}`},
		{"zero rate", `{"category":"Food","description":"x","payment_method":"Visa","amount":"10","currency":"EUR","rate":"0"}`},
		{"empty category", `{"category":"  ","description":"x","payment_method":"Visa","amount":"10"}`},
		{"empty description", `{"category":"Food","description":"","payment_method":"Visa","amount":"10"}`},
		{"bad date", `{"category":"Food","description":"x","payment_method":"Visa","amount":"10","date":"03/01/2024"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, srv, http.MethodPost, "/api/expenses", tc.body)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Errorf("expected 422, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestListExpenses(t *testing.T) {
	srv, _ := newTestServer(t)

	doRequest(t, srv, http.MethodPost, "/api/expenses",
		`{"category":"Food","description":"lunch","payment_method":"Visa","amount":"12.50","date":"2024-03-01"}`)

	rec := doRequest(t, srv, http.MethodGet, "/api/expenses", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeBody[expensesResponse](t, rec)
	if resp.Count != 1 || len(resp.Expenses) != 1 {
		t.Fatalf("expected one expense, got %+v", resp)
	}
	if resp.Expenses[0].Category != "Food" {
		t.Errorf("unexpected category: %s", resp.Expenses[0].Category)
	}
}

func TestDeleteExpense(t *testing.T) {
	srv, _ := newTestServer(t)

	doRequest(t, srv, http.MethodPost, "/api/expenses",
		`{"category":"Food","description":"lunch","payment_method":"Visa","amount":"12.50","date":"2024-03-01"}`)

	t.Run("found", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodDelete, "/api/expenses/delete?id=1", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got := rec.Header().Get("X-Ledger-Version"); got != "2" {
			t.Errorf("expected ledger version 2, got %q", got)
		}
	})

	t.Run("not found", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodDelete, "/api/expenses/delete?id=99", "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("missing id", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodDelete, "/api/expenses/delete", "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("id from body", func(t *testing.T) {
		doRequest(t, srv, http.MethodPost, "/api/expenses",
			`{"category":"Food","description":"snack","payment_method":"Cash","amount":"3","date":"2024-03-02"}`)
		rec := doRequest(t, srv, http.MethodPost, "/api/expenses/delete", `{"id":2}`)
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}

func TestCategories(t *testing.T) {
	srv, _ := newTestServer(t)

	doRequest(t, srv, http.MethodPost, "/api/expenses",
		`{"category":"Subscriptions","description":"vpn","payment_method":"Visa","amount":"5","date":"2024-03-01"}`)

	rec := doRequest(t, srv, http.MethodGet, "/api/categories", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeBody[map[string][]string](t, rec)

	got := map[string]bool{}
	for _, c := range resp["categories"] {
		got[c] = true
	}
	if !got["Subscriptions"] {
		t.Error("observed category missing from suggestions")
	}
	for _, seed := range core.DefaultCategories {
		if !got[seed] {
			t.Errorf("seed category %q missing from suggestions", seed)
		}
	}
}

func TestRenameCategory(t *testing.T) {
	srv, _ := newTestServer(t)

	doRequest(t, srv, http.MethodPost, "/api/expenses",
		`{"category":"Food","description":"lunch","payment_method":"Visa","amount":"12.50","date":"2024-03-01"}`)

	t.Run("renames", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/api/categories/rename", `{"old":"Food","new":"Groceries"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		resp := decodeBody[map[string]any](t, rec)
		if resp["affected"].(float64) != 1 {
			t.Errorf("expected 1 affected, got %v", resp["affected"])
		}
	})

	t.Run("same name is a no-op", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/api/categories/rename", `{"old":"Groceries","new":"Groceries"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		resp := decodeBody[map[string]any](t, rec)
		if resp["affected"].(float64) != 0 {
			t.Errorf("expected 0 affected, got %v", resp["affected"])
		}
	})

	t.Run("missing old name", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/api/categories/rename", `{"new":"Whatever"}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})
}

func TestReport(t *testing.T) {
	srv, store := newTestServer(t)

	doRequest(t, srv, http.MethodPost, "/api/expenses",
		`{"category":"Food","description":"lunch","payment_method":"Visa","amount":"10","date":"2024-03-01"}`)
	doRequest(t, srv, http.MethodPost, "/api/expenses",
		`{"category":"Home","description":"bulbs","payment_method":"Cash","amount":"30","date":"2024-03-03"}`)

	rec := doRequest(t, srv, http.MethodGet, "/api/report", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	overview := decodeBody[core.Overview](t, rec)

	if overview.Count != 2 {
		t.Errorf("expected count 2, got %d", overview.Count)
	}
	if !overview.Total.Equal(decimal.NewFromInt(40)) {
		t.Errorf("expected total 40, got %s", overview.Total)
	}
	if len(overview.Daily) != 3 {
		t.Errorf("expected 3-day gap-filled series, got %d", len(overview.Daily))
	}
	if got := rec.Header().Get("X-Ledger-Version"); got != "2" {
		t.Errorf("expected ledger version 2, got %q", got)
	}

	// Same version, second hit comes from the cache.
	listCalls := store.listCalls
	rec = doRequest(t, srv, http.MethodGet, "/api/report", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if store.listCalls != listCalls {
		t.Errorf("expected cached report, store was queried again")
	}

	// A mutation changes the version and forces a rebuild.
	doRequest(t, srv, http.MethodDelete, "/api/expenses/delete?id=1", "")
	rec = doRequest(t, srv, http.MethodGet, "/api/report", "")
	overview = decodeBody[core.Overview](t, rec)
	if overview.Count != 1 {
		t.Errorf("expected rebuilt report with count 1, got %d", overview.Count)
	}
}

func TestReportStoreFailure(t *testing.T) {
	srv, store := newTestServer(t)
	store.failList = true

	rec := doRequest(t, srv, http.MethodGet, "/api/report", "")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestExport(t *testing.T) {
	srv, _ := newTestServer(t)

	doRequest(t, srv, http.MethodPost, "/api/expenses",
		`{"category":"Food","description":"lunch","payment_method":"Visa","amount":"10","date":"2024-03-01"}`)

	rec := doRequest(t, srv, http.MethodGet, "/api/export.xlsx", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("unexpected content type: %s", ct)
	}
	if rec.Body.Len() == 0 {
		t.Error("expected non-empty workbook body")
	}
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodPut, "/api/expenses"},
		{http.MethodGet, "/api/categories/rename"},
		{http.MethodPost, "/api/report"},
		{http.MethodPost, "/api/export.xlsx"},
	}

	for _, tc := range cases {
		rec := doRequest(t, srv, tc.method, tc.path, "")
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s: expected 405, got %d", tc.method, tc.path, rec.Code)
		}
	}
}

func TestFormEncodedCreate(t *testing.T) {
	srv, store := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/expenses",
		strings.NewReader("category=Food&description=lunch&payment_method=Visa&amount=12,50&date=2024-03-01"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if !store.expenses[0].Amount.Equal(decimal.RequireFromString("12.5")) {
		t.Errorf("expected comma amount accepted, got %s", store.expenses[0].Amount)
	}
}
