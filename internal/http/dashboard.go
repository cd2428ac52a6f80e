package http

import (
	"log/slog"
	"net/http"

	"fintrack/internal/core"
)

type dashboardRow struct {
	Description string
	Date        string
	Amount      string
	Expense     bool
}

// handleDashboard renders the overview page: balance card, income and
// expense totals, the five most recent transactions.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if !requireGet(w, r) {
		return
	}
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "path", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	txs := s.repo.Snapshot()
	recent := core.Apply(txs, core.Filter{})
	if len(recent) > 5 {
		recent = recent[:5]
	}

	data := struct {
		Balance  string
		Income   string
		Expenses string
		Recent   []dashboardRow
	}{
		Balance:  formatUSD(core.TotalBalance(txs)),
		Income:   formatUSD(core.TotalIncome(txs)),
		Expenses: formatUSD(core.TotalExpenses(txs)),
	}
	for _, tx := range recent {
		amount := formatUSD(tx.Amount)
		if tx.Type == core.Expense {
			amount = "-" + amount
		}
		data.Recent = append(data.Recent, dashboardRow{
			Description: tx.Description,
			Date:        tx.Date,
			Amount:      amount,
			Expense:     tx.Type == core.Expense,
		})
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Dashboard template execution failed", "error", err, "template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
