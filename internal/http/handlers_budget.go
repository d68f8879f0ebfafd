package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"tally/internal/core"
	"tally/internal/metrics"
	"tally/internal/store"
)

type budgetView struct {
	ID        string `json:"id"`
	Category  string `json:"category"`
	Limit     string `json:"limit"`
	Period    string `json:"period"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func toBudgetView(b core.Budget) budgetView {
	return budgetView{
		ID:        b.ID.String(),
		Category:  b.Category,
		Limit:     b.Limit.StringFixed(2),
		Period:    string(b.Period),
		StartDate: b.StartDate.Format("2006-01-02"),
		EndDate:   b.EndDate.Format("2006-01-02"),
	}
}

type utilizationView struct {
	BudgetID   string  `json:"budget_id"`
	Category   string  `json:"category"`
	Limit      string  `json:"limit"`
	Spent      string  `json:"spent"`
	Remaining  string  `json:"remaining"`
	Percentage float64 `json:"percentage"`
	OverBudget bool    `json:"over_budget"`
	NearLimit  bool    `json:"near_limit"`
}

func toUtilizationView(u metrics.BudgetUtilization) utilizationView {
	return utilizationView{
		BudgetID:   u.BudgetID,
		Category:   u.Category,
		Limit:      u.Limit.StringFixed(2),
		Spent:      u.Spent.StringFixed(2),
		Remaining:  u.Remaining.StringFixed(2),
		Percentage: u.Percentage,
		OverBudget: u.OverBudget,
		NearLimit:  u.NearLimit,
	}
}

type createBudgetRequest struct {
	Category string `json:"category"`
	Limit    string `json:"limit"`
	Period   string `json:"period"`
}

func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listBudgets(w, r)
	case http.MethodPost:
		s.createBudget(w, r)
	default:
		methodNotAllowed(w, "GET", "POST")
	}
}

func (s *Server) listBudgets(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	budgets, err := s.ledger.ListBudgets(r.Context(), user)
	if err != nil {
		slog.ErrorContext(r.Context(), "List budgets error", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list budgets")
		return
	}

	views := make([]budgetView, 0, len(budgets))
	for _, b := range budgets {
		views = append(views, toBudgetView(b))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) createBudget(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req createBudgetRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	limit, err := core.ParseAmount(req.Limit)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid limit")
		return
	}

	b, err := s.ledger.CreateBudget(r.Context(), user, sanitizeInput(req.Category),
		limit, core.BudgetPeriod(strings.TrimSpace(req.Period)))
	if err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateBudget):
			writeError(w, http.StatusConflict, "budget already exists for this category and period")
		case isValidationError(err):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			slog.ErrorContext(r.Context(), "Create budget error", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to create budget")
		}
		return
	}

	writeJSON(w, http.StatusCreated, toBudgetView(b))
}

func (s *Server) handleBudgetByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, "DELETE")
		return
	}

	user, err := userID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/api/budgets/")
	id, err := uuid.Parse(idStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid budget id")
		return
	}

	if err := s.ledger.DeleteBudget(r.Context(), user, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "budget not found")
			return
		}
		slog.ErrorContext(r.Context(), "Delete budget error", "error", err, "budget_id", id)
		writeError(w, http.StatusInternalServerError, "failed to delete budget")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBudgetUtilization(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	user, err := userID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils, err := s.ledger.BudgetUtilizations(r.Context(), user)
	if err != nil {
		slog.ErrorContext(r.Context(), "Budget utilization error", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute budget utilization")
		return
	}

	views := make([]utilizationView, 0, len(utils))
	for _, u := range utils {
		views = append(views, toUtilizationView(u))
	}
	writeJSON(w, http.StatusOK, views)
}
