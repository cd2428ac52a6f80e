package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"fintrack/internal/core"
)

// draftRequest is the wire form of a new transaction. Amount arrives as
// a JSON number from the API client or as a decimal string from the
// dashboard form.
type draftRequest struct {
	Type        string          `json:"type"`
	Amount      json.RawMessage `json:"amount"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listTransactions(w, r)
	case http.MethodPost:
		s.createTransaction(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := core.Filter{
		Type:     core.TransactionType(strings.TrimSpace(q.Get("type"))),
		DateFrom: strings.TrimSpace(q.Get("from")),
		DateTo:   strings.TrimSpace(q.Get("to")),
	}
	if f.Type != "" && f.Type != core.TypeAll && !f.Type.IsValid() {
		writeError(w, http.StatusBadRequest, "unknown type filter")
		return
	}

	txs := core.Apply(s.repo.Snapshot(), f)
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	draft, err := parseDraft(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.repo.Add(r.Context(), draft)
	switch {
	case errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidDate):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		slog.ErrorContext(r.Context(), "Transaction create failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not save transaction")
		return
	}

	s.statsCache.Clear()
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodPatch:
		s.updateTransaction(w, r, id)
	case http.MethodDelete:
		s.deleteTransaction(w, r, id)
	default:
		w.Header().Set("Allow", "PATCH, DELETE")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) updateTransaction(w http.ResponseWriter, r *http.Request, id string) {
	var patch core.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if patch.Description != nil {
		clean := sanitizeInput(*patch.Description)
		patch.Description = &clean
	}

	err := s.repo.Update(r.Context(), id, patch)
	switch {
	case errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidDate):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		slog.ErrorContext(r.Context(), "Transaction update failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "could not update transaction")
		return
	}

	s.statsCache.Clear()
	writeJSON(w, http.StatusOK, s.repo.Snapshot())
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.repo.Delete(r.Context(), id); err != nil {
		slog.ErrorContext(r.Context(), "Transaction delete failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "could not delete transaction")
		return
	}

	s.statsCache.Clear()
	// Deleting an absent id is a no-op, still a success.
	w.WriteHeader(http.StatusNoContent)
}

// parseDraft decodes a new-transaction request from JSON or form data.
func parseDraft(r *http.Request) (core.Draft, error) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/x-www-form-urlencoded") || strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseForm(); err != nil {
			return core.Draft{}, errors.New("invalid form data")
		}
		amount, err := core.ParseAmount(r.Form.Get("amount"))
		if err != nil {
			return core.Draft{}, err
		}
		return core.Draft{
			Type:        core.TransactionType(strings.TrimSpace(r.Form.Get("type"))),
			Amount:      amount,
			Description: sanitizeInput(r.Form.Get("description")),
			Date:        strings.TrimSpace(r.Form.Get("date")),
		}, nil
	}

	var req draftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return core.Draft{}, errors.New("invalid request body")
	}

	var amount float64
	if len(req.Amount) > 0 {
		// Accept both a JSON number and a decimal string.
		if err := json.Unmarshal(req.Amount, &amount); err != nil {
			var raw string
			if err := json.Unmarshal(req.Amount, &raw); err != nil {
				return core.Draft{}, core.ErrInvalidAmount
			}
			parsed, err := core.ParseAmount(raw)
			if err != nil {
				return core.Draft{}, err
			}
			amount = parsed
		}
	}

	return core.Draft{
		Type:        core.TransactionType(strings.TrimSpace(req.Type)),
		Amount:      amount,
		Description: sanitizeInput(req.Description),
		Date:        strings.TrimSpace(req.Date),
	}, nil
}
