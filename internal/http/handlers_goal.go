package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tally/internal/core"
	"tally/internal/metrics"
	"tally/internal/store"
)

type goalView struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Target        string  `json:"target"`
	Current       string  `json:"current"`
	Deadline      string  `json:"deadline,omitempty"`
	Category      string  `json:"category,omitempty"`
	Completed     bool    `json:"completed"`
	Percentage    float64 `json:"percentage"`
	DaysRemaining int     `json:"days_remaining"`
	Status        string  `json:"status"`
}

func (s *Server) toGoalView(g core.Goal) goalView {
	p := metrics.Progress(g, s.now())
	v := goalView{
		ID:            g.ID.String(),
		Title:         g.Title,
		Target:        g.Target.StringFixed(2),
		Current:       g.Current.StringFixed(2),
		Category:      g.Category,
		Completed:     g.Completed,
		Percentage:    p.Percentage,
		DaysRemaining: p.DaysRemaining,
		Status:        string(p.Status),
	}
	if !g.Deadline.IsZero() {
		v.Deadline = g.Deadline.Format("2006-01-02")
	}
	return v
}

type createGoalRequest struct {
	Title    string `json:"title"`
	Target   string `json:"target"`
	Deadline string `json:"deadline"`
	Category string `json:"category"`
}

type adjustGoalRequest struct {
	Delta string `json:"delta"`
}

func (s *Server) handleGoals(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listGoals(w, r)
	case http.MethodPost:
		s.createGoal(w, r)
	default:
		methodNotAllowed(w, "GET", "POST")
	}
}

func (s *Server) listGoals(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	goals, err := s.ledger.ListGoals(r.Context(), user)
	if err != nil {
		slog.ErrorContext(r.Context(), "List goals error", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list goals")
		return
	}

	views := make([]goalView, 0, len(goals))
	for _, g := range goals {
		views = append(views, s.toGoalView(g))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) createGoal(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req createGoalRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	target, err := core.ParseAmount(req.Target)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid target")
		return
	}

	var deadline core.Date
	if d := strings.TrimSpace(req.Deadline); d != "" {
		deadline, err = parseDate(d)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid deadline, expected YYYY-MM-DD")
			return
		}
	}

	g, err := s.ledger.CreateGoal(r.Context(), user, sanitizeInput(req.Title),
		target, deadline, sanitizeInput(req.Category))
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Create goal error", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create goal")
		return
	}

	writeJSON(w, http.StatusCreated, s.toGoalView(g))
}

func (s *Server) handleGoalByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/goals/")
	idStr, action, _ := strings.Cut(rest, "/")
	id, err := uuid.Parse(idStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid goal id")
		return
	}

	switch action {
	case "":
		if r.Method != http.MethodDelete {
			methodNotAllowed(w, "DELETE")
			return
		}
		s.deleteGoal(w, r, id)
	case "progress":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, "POST")
			return
		}
		s.adjustGoal(w, r, id)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *Server) deleteGoal(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	user, err := userID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.ledger.DeleteGoal(r.Context(), user, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "goal not found")
			return
		}
		slog.ErrorContext(r.Context(), "Delete goal error", "error", err, "goal_id", id)
		writeError(w, http.StatusInternalServerError, "failed to delete goal")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) adjustGoal(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	user, err := userID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req adjustGoalRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Delta is signed: withdrawals are negative.
	delta, err := decimal.NewFromString(strings.TrimSpace(req.Delta))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid delta")
		return
	}

	g, err := s.ledger.AdjustGoal(r.Context(), user, id, delta)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "goal not found")
			return
		}
		slog.ErrorContext(r.Context(), "Adjust goal error", "error", err, "goal_id", id)
		writeError(w, http.StatusInternalServerError, "failed to adjust goal")
		return
	}

	writeJSON(w, http.StatusOK, s.toGoalView(g))
}
