package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"tally/internal/metrics"
)

type summaryView struct {
	Income     string         `json:"income"`
	Expenses   string         `json:"expenses"`
	Balance    string         `json:"balance"`
	ByCategory []categoryView `json:"by_category"`
}

type categoryView struct {
	Category   string  `json:"category"`
	Amount     string  `json:"amount"`
	Percentage float64 `json:"percentage"`
}

func toSummaryView(s metrics.PeriodSummary) summaryView {
	v := summaryView{
		Income:     s.Income.StringFixed(2),
		Expenses:   s.Expenses.StringFixed(2),
		Balance:    s.Balance.StringFixed(2),
		ByCategory: make([]categoryView, 0, len(s.ByCategory)),
	}
	for _, c := range s.ByCategory {
		v.ByCategory = append(v.ByCategory, categoryView{
			Category:   c.Category,
			Amount:     c.Amount.StringFixed(2),
			Percentage: c.Percentage,
		})
	}
	return v
}

type bucketView struct {
	Date     string `json:"date"`
	Income   string `json:"income"`
	Expenses string `json:"expenses"`
	Balance  string `json:"balance"`
}

// parsePeriod reads the period query parameter, defaulting to the month view.
func parsePeriod(r *http.Request) (string, bool) {
	period := strings.TrimSpace(r.URL.Query().Get("period"))
	if period == "" {
		period = "month"
	}
	if period != "month" && period != "week" {
		return "", false
	}
	return period, true
}

func (s *Server) periodRange(period string) metrics.Range {
	if period == "week" {
		return metrics.WeekOf(s.now())
	}
	return metrics.MonthOf(s.now())
}

// getSummary returns the cached period summary for a user, recomputing it from
// the full transaction snapshot on a miss. The cache key carries the range
// start so an entry cached just before a month or week boundary cannot serve
// the old period after the boundary passes.
func (s *Server) getSummary(ctx context.Context, user uuid.UUID, period string) (metrics.PeriodSummary, error) {
	rng := s.periodRange(period)
	key := user.String() + ":" + period + ":" + rng.Start.Format("2006-01-02")

	if data, found := s.summaryCache.Get(key); found {
		slog.DebugContext(ctx, "Summary cache hit", "period", period)
		return data, nil
	}

	txs, err := s.ledger.ListTransactions(ctx, user)
	if err != nil {
		return metrics.PeriodSummary{}, err
	}
	summary := metrics.Summarize(txs, rng)

	s.summaryCache.Set(key, summary)
	return summary, nil
}

func (s *Server) handleDashboardSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	user, err := userID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	period, ok := parsePeriod(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid period, expected month or week")
		return
	}

	summary, err := s.getSummary(r.Context(), user, period)
	if err != nil {
		slog.ErrorContext(r.Context(), "Dashboard summary error", "error", err, "period", period)
		writeError(w, http.StatusInternalServerError, "failed to compute summary")
		return
	}

	writeJSON(w, http.StatusOK, toSummaryView(summary))
}

func (s *Server) handleDashboardCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	user, err := userID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	period, ok := parsePeriod(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid period, expected month or week")
		return
	}

	summary, err := s.getSummary(r.Context(), user, period)
	if err != nil {
		slog.ErrorContext(r.Context(), "Dashboard categories error", "error", err, "period", period)
		writeError(w, http.StatusInternalServerError, "failed to compute category breakdown")
		return
	}

	views := make([]categoryView, 0, len(summary.ByCategory))
	for _, c := range summary.ByCategory {
		views = append(views, categoryView{
			Category:   c.Category,
			Amount:     c.Amount.StringFixed(2),
			Percentage: c.Percentage,
		})
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleDashboardSeries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	user, err := userID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	days := metrics.SeriesDays
	if v := strings.TrimSpace(r.URL.Query().Get("days")); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil || d < 1 || d > 365 {
			writeError(w, http.StatusBadRequest, "invalid days, expected 1-365")
			return
		}
		days = d
	}

	// The window end is part of the key so entries cached before midnight
	// cannot serve yesterday's window.
	key := user.String() + ":series:" + strconv.Itoa(days) + ":" + s.now().Format("2006-01-02")
	buckets, found := s.seriesCache.Get(key)
	if !found {
		txs, err := s.ledger.ListTransactions(r.Context(), user)
		if err != nil {
			slog.ErrorContext(r.Context(), "Dashboard series error", "error", err, "days", days)
			writeError(w, http.StatusInternalServerError, "failed to compute series")
			return
		}
		buckets = metrics.DailySeries(txs, s.now(), days)
		s.seriesCache.Set(key, buckets)
	}

	views := make([]bucketView, 0, len(buckets))
	for _, b := range buckets {
		views = append(views, bucketView{
			Date:     b.Date.Format("2006-01-02"),
			Income:   b.Income.StringFixed(2),
			Expenses: b.Expenses.StringFixed(2),
			Balance:  b.Balance.StringFixed(2),
		})
	}
	writeJSON(w, http.StatusOK, views)
}
