package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
)

// Summary is the dashboard aggregate: everything the home screen shows
// in one response.
type Summary struct {
	Balance           float64 `json:"balance"`
	Income            float64 `json:"income"`
	Expenses          float64 `json:"expenses"`
	Count             int     `json:"count"`
	AverageAmount     float64 `json:"averageAmount"`
	SavingRate        float64 `json:"savingRate"`
	TodayIncome       float64 `json:"todayIncome"`
	TodayExpenses     float64 `json:"todayExpenses"`
	MonthlyAvgExpense float64 `json:"monthlyAvgExpense"`
}

// serveCached writes a cached JSON body for read-only endpoints,
// computing and caching it on miss. Mutations flush the whole cache.
func (s *Server) serveCached(w http.ResponseWriter, r *http.Request, compute func() any) {
	key := r.URL.Path
	if r.URL.RawQuery != "" {
		key += "?" + r.URL.RawQuery
	}

	if body, ok := s.statsCache.Get(key); ok {
		slog.DebugContext(r.Context(), "Stats cache hit", "key", key)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
		return
	}

	body, err := json.Marshal(compute())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed encoding stats", "error", err)
		writeError(w, http.StatusInternalServerError, "could not compute stats")
		return
	}
	s.statsCache.Set(key, body)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func requireGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	return true
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	s.serveCached(w, r, func() any {
		now := time.Now()
		txs := s.repo.Snapshot()
		today := core.DaySummary(txs, now.Format(core.DateLayout))
		daysInMonth := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day()
		return Summary{
			Balance:           core.TotalBalance(txs),
			Income:            core.TotalIncome(txs),
			Expenses:          core.TotalExpenses(txs),
			Count:             len(txs),
			AverageAmount:     core.AverageAmount(txs),
			SavingRate:        core.SavingRate(txs),
			TodayIncome:       today.Income,
			TodayExpenses:     today.Expenses,
			MonthlyAvgExpense: core.MonthlyAvgExpense(txs, daysInMonth),
		}
	})
}

// handleDailyStats returns the daily net series. By default the date
// sequence is every distinct date present; days=N asks for the last N
// calendar days ending today instead.
func (s *Server) handleDailyStats(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	days := parsePositiveInt(r.URL.Query().Get("days"))
	s.serveCached(w, r, func() any {
		txs := s.repo.Snapshot()
		var dates []string
		if days > 0 {
			dates = lastNDates(time.Now(), days)
		} else {
			dates = core.DistinctDates(txs)
		}
		return core.DailySeries(txs, dates)
	})
}

func (s *Server) handleMonthlyStats(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	s.serveCached(w, r, func() any {
		return core.MonthlySeries(s.repo.Snapshot())
	})
}

// handleMonthlyFlows returns income/expense totals per month for the
// last N months (default 6), the shape the comparison bar chart wants.
func (s *Server) handleMonthlyFlows(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	months := parsePositiveInt(r.URL.Query().Get("months"))
	if months == 0 {
		months = 6
	}
	s.serveCached(w, r, func() any {
		return core.MonthlyFlows(s.repo.Snapshot(), lastNMonths(time.Now(), months))
	})
}

func (s *Server) handleCategoryStats(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	s.serveCached(w, r, func() any {
		breakdown := core.CategoryBreakdown(s.repo.Snapshot())
		if breakdown == nil {
			breakdown = []core.CategoryAmount{}
		}
		return breakdown
	})
}

func parsePositiveInt(v string) int {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0
	}
	return n
}

// lastNDates returns the n calendar dates ending at now, ascending.
func lastNDates(now time.Time, n int) []string {
	dates := make([]string, n)
	for i := 0; i < n; i++ {
		dates[i] = now.AddDate(0, 0, i-n+1).Format(core.DateLayout)
	}
	return dates
}

// lastNMonths returns the n YYYY-MM months ending at now, ascending.
func lastNMonths(now time.Time, n int) []string {
	months := make([]string, n)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		months[i] = first.AddDate(0, i-n+1, 0).Format("2006-01")
	}
	return months
}
