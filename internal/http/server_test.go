package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	"fintrack/internal/repository"
	"fintrack/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	repo := repository.New(storage.NewMemoryStore())
	s := NewServer(":0", repo, Options{})
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

func do(s *Server, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func createTx(t *testing.T, s *Server, body string) core.Transaction {
	t.Helper()
	rec := do(s, http.MethodPost, "/api/transactions", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var tx core.Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tx))
	return tx
}

func TestCreateAndList(t *testing.T) {
	s := newTestServer(t)

	created := createTx(t, s, `{"type":"income","amount":1000,"description":"salary","date":"2024-01-01"}`)
	assert.NotEmpty(t, created.ID)
	assert.NotEmpty(t, created.CreatedAt)

	rec := do(s, http.MethodGet, "/api/transactions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var txs []core.Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &txs))
	require.Len(t, txs, 1)
	assert.Equal(t, created.ID, txs[0].ID)
}

func TestCreateAcceptsStringAmount(t *testing.T) {
	s := newTestServer(t)
	created := createTx(t, s, `{"type":"expense","amount":"12,34","description":"","date":"2024-01-02"}`)
	assert.Equal(t, 12.34, created.Amount)
}

func TestCreateAcceptsFormData(t *testing.T) {
	s := newTestServer(t)
	form := "type=expense&amount=9.99&description=coffee&date=2024-01-02"
	req := httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestCreateValidation(t *testing.T) {
	s := newTestServer(t)
	cases := []struct {
		name string
		body string
	}{
		{"negative amount", `{"type":"income","amount":-5,"date":"2024-01-01"}`},
		{"zero amount", `{"type":"income","amount":0,"date":"2024-01-01"}`},
		{"unknown type", `{"type":"transfer","amount":5,"date":"2024-01-01"}`},
		{"bad date", `{"type":"income","amount":5,"date":"01/02/2024"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(s, http.MethodPost, "/api/transactions", tc.body)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
		})
	}
}

func TestListFilters(t *testing.T) {
	s := newTestServer(t)
	createTx(t, s, `{"type":"income","amount":1000,"date":"2024-01-01"}`)
	expense := createTx(t, s, `{"type":"expense","amount":250.50,"date":"2024-01-02"}`)

	rec := do(s, http.MethodGet, "/api/transactions?type=expense", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var txs []core.Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &txs))
	require.Len(t, txs, 1)
	assert.Equal(t, expense.ID, txs[0].ID)

	rec = do(s, http.MethodGet, "/api/transactions?from=2024-01-02&to=2024-01-02", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &txs))
	require.Len(t, txs, 1)
	assert.Equal(t, expense.ID, txs[0].ID)

	rec = do(s, http.MethodGet, "/api/transactions?type=transfer", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateTransaction(t *testing.T) {
	s := newTestServer(t)
	created := createTx(t, s, `{"type":"expense","amount":10,"description":"old","date":"2024-01-01"}`)

	rec := do(s, http.MethodPatch, "/api/transactions/"+created.ID, `{"amount":20.5}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var txs []core.Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &txs))
	require.Len(t, txs, 1)
	assert.Equal(t, 20.5, txs[0].Amount)
	assert.Equal(t, "old", txs[0].Description)

	// Patch with an invalid amount is rejected.
	rec = do(s, http.MethodPatch, "/api/transactions/"+created.ID, `{"amount":-1}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestDeleteTransaction(t *testing.T) {
	s := newTestServer(t)
	created := createTx(t, s, `{"type":"expense","amount":10,"date":"2024-01-01"}`)

	rec := do(s, http.MethodDelete, "/api/transactions/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// Deleting again is still a success.
	rec = do(s, http.MethodDelete, "/api/transactions/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(s, http.MethodGet, "/api/transactions", "")
	var txs []core.Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &txs))
	assert.Empty(t, txs)
}

func TestSummary(t *testing.T) {
	s := newTestServer(t)
	createTx(t, s, `{"type":"income","amount":1000,"date":"2024-01-01"}`)
	createTx(t, s, `{"type":"expense","amount":250.50,"date":"2024-01-02"}`)

	rec := do(s, http.MethodGet, "/api/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var sum Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	assert.Equal(t, 749.50, sum.Balance)
	assert.Equal(t, 1000.0, sum.Income)
	assert.Equal(t, 250.50, sum.Expenses)
	assert.Equal(t, 2, sum.Count)
	assert.InDelta(t, 74.95, sum.SavingRate, 0.0001)
}

func TestSummaryCacheInvalidatedOnMutation(t *testing.T) {
	s := newTestServer(t)
	createTx(t, s, `{"type":"income","amount":100,"date":"2024-01-01"}`)

	rec := do(s, http.MethodGet, "/api/summary", "")
	var before Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &before))
	assert.Equal(t, 100.0, before.Balance)

	createTx(t, s, `{"type":"expense","amount":40,"date":"2024-01-02"}`)

	rec = do(s, http.MethodGet, "/api/summary", "")
	var after Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &after))
	assert.Equal(t, 60.0, after.Balance)
}

func TestStatsEndpoints(t *testing.T) {
	s := newTestServer(t)
	createTx(t, s, `{"type":"income","amount":100,"date":"2024-01-15"}`)
	createTx(t, s, `{"type":"expense","amount":40,"description":"food market","date":"2024-02-01"}`)

	rec := do(s, http.MethodGet, "/api/stats/monthly", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var monthly []core.MonthlyPoint
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &monthly))
	require.Len(t, monthly, 2)
	assert.Equal(t, core.MonthlyPoint{Month: "2024-01", Net: 100}, monthly[0])
	assert.Equal(t, core.MonthlyPoint{Month: "2024-02", Net: -40}, monthly[1])

	rec = do(s, http.MethodGet, "/api/stats/daily", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var daily []core.DailyPoint
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &daily))
	require.Len(t, daily, 2)
	assert.Equal(t, "2024-01-15", daily[0].Date)

	rec = do(s, http.MethodGet, "/api/stats/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var cats []core.CategoryAmount
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cats))
	require.Len(t, cats, 1)
	assert.Equal(t, core.CategoryAmount{Category: "Food", Total: 40}, cats[0])

	rec = do(s, http.MethodGet, "/api/stats/flows?months=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var flows []core.MonthlyFlow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &flows))
	assert.Len(t, flows, 2)
}

func TestDashboardPage(t *testing.T) {
	s := newTestServer(t)
	createTx(t, s, `{"type":"income","amount":1000,"description":"salary","date":"2024-01-01"}`)

	rec := do(s, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "$1000.00")
	assert.Contains(t, body, "salary")
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)
	rec := do(s, http.MethodPut, "/api/transactions", `{}`)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = do(s, http.MethodPost, "/api/summary", `{}`)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestUnknownAPIPath(t *testing.T) {
	s := newTestServer(t)
	rec := do(s, http.MethodGet, "/api/transactions/abc/extra", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusOK, do(s, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusOK, do(s, http.MethodGet, "/readyz", "").Code)
}

func TestRateLimitOnMutations(t *testing.T) {
	repo := repository.New(storage.NewMemoryStore())
	s := NewServer(":0", repo, Options{RateLimitPerMinute: 2})
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })

	body := `{"type":"income","amount":1,"date":"2024-01-01"}`
	assert.Equal(t, http.StatusCreated, do(s, http.MethodPost, "/api/transactions", body).Code)
	assert.Equal(t, http.StatusCreated, do(s, http.MethodPost, "/api/transactions", body).Code)
	rec := do(s, http.MethodPost, "/api/transactions", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Reads are not rate limited.
	assert.Equal(t, http.StatusOK, do(s, http.MethodGet, "/api/transactions", "").Code)
}
