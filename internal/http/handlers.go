package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"gastos/internal/core"
	"gastos/internal/export"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listExpenses(w, r)
	case http.MethodPost:
		s.createExpense(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type expensesResponse struct {
	Count    int            `json:"count"`
	Expenses []core.Expense `json:"expenses"`
}

func (s *Server) listExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.ledger.ListExpenses(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list expenses", "error", err)
		writeError(w, http.StatusInternalServerError, "error loading expenses")
		return
	}

	setLedgerVersion(w, s.ledger.Version())
	writeJSON(w, http.StatusOK, expensesResponse{
		Count:    len(expenses),
		Expenses: expenses,
	})
}

func (s *Server) createExpense(w http.ResponseWriter, r *http.Request) {
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		slog.ErrorContext(r.Context(), "Parse body error", "error", err, "url", r.URL.Path)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	amount, err := core.ParseAmount(parser.Get("amount"))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}

	currency := parser.Get("currency")
	if currency == "" {
		currency = core.CanonicalCurrency
	}

	rate := decimal.Zero
	if rateStr := parser.Get("rate"); rateStr != "" {
		rate, err = decimal.NewFromString(strings.ReplaceAll(rateStr, ",", "."))
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid exchange rate")
			return
		}
	}

	date := core.DateOf(time.Now())
	if dateStr := parser.Get("date"); dateStr != "" {
		date, err = core.ParseDate(dateStr)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid date, expected YYYY-MM-DD")
			return
		}
	}

	normalized, err := core.Normalize(amount, currency, rate)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	exp := core.Expense{
		Category:      parser.Get("category"),
		Description:   parser.Get("description"),
		PaymentMethod: parser.Get("payment_method"),
		Amount:        normalized,
		Date:          date,
	}

	id, err := s.ledger.CreateExpense(r.Context(), exp)
	if err != nil {
		if isInvalidInput(err) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Failed to save expense",
			"error", err,
			"category", exp.Category,
			"description", exp.Description)
		writeError(w, http.StatusInternalServerError, "error saving expense")
		return
	}

	slog.InfoContext(r.Context(), "Expense created",
		"id", id,
		"category", exp.Category,
		"amount", exp.Amount,
		"currency", currency,
		"date", exp.Date.String())

	setLedgerVersion(w, s.ledger.Version())
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodDelete, http.MethodPost) {
		return
	}

	idStr := r.URL.Query().Get("id")
	if idStr == "" {
		parser := NewRequestBodyParser(r)
		if err := parser.Parse(); err == nil {
			idStr = parser.Get("id")
		}
	}

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "missing or invalid expense id")
		return
	}

	found, err := s.ledger.DeleteExpense(r.Context(), id)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to delete expense", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "error deleting expense")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "expense not found")
		return
	}

	setLedgerVersion(w, s.ledger.Version())
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true, "id": id})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	categories, err := s.ledger.SuggestedCategories(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load categories", "error", err)
		writeError(w, http.StatusInternalServerError, "error loading categories")
		return
	}

	writeJSON(w, http.StatusOK, map[string][]string{"categories": categories})
}

func (s *Server) handleRenameCategory(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	oldName := parser.Get("old")
	newName := parser.Get("new")
	if oldName == "" {
		writeError(w, http.StatusBadRequest, "missing category to rename")
		return
	}

	affected, err := s.ledger.RenameCategory(r.Context(), oldName, newName)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to rename category",
			"error", err, "old", oldName, "new", newName)
		writeError(w, http.StatusInternalServerError, "error renaming category")
		return
	}

	setLedgerVersion(w, s.ledger.Version())
	writeJSON(w, http.StatusOK, map[string]any{
		"old":      oldName,
		"new":      newName,
		"affected": affected,
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	overview, version, err := s.getOverview(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to build report", "error", err)
		writeError(w, http.StatusInternalServerError, "error building report")
		return
	}

	setLedgerVersion(w, version)
	writeJSON(w, http.StatusOK, overview)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	expenses, err := s.ledger.ListExpenses(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load expenses for export", "error", err)
		writeError(w, http.StatusInternalServerError, "error loading expenses")
		return
	}

	data, err := export.LedgerXLSX(expenses)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to build export", "error", err)
		writeError(w, http.StatusInternalServerError, "error building export")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="gastos.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
