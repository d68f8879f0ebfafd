// Package services orchestrates record mutations across the store, the
// metrics engine, alert publishing and the optional export mirror.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tally/internal/amqp"
	"tally/internal/core"
	"tally/internal/metrics"
	"tally/internal/store"
)

type (
	// AlertPublisher publishes budget alerts for asynchronous delivery.
	AlertPublisher interface {
		PublishBudgetAlert(ctx context.Context, msg *amqp.BudgetAlertMessage) error
	}

	// TransactionMirror receives a copy of every created transaction, e.g. a
	// spreadsheet export. Mirror failures never fail the mutation.
	TransactionMirror interface {
		Append(ctx context.Context, tx core.Transaction) error
	}

	// LedgerService coordinates writes and keeps derived budget state flowing
	// to the alert queue.
	LedgerService struct {
		store     store.RecordStore
		publisher AlertPublisher
		mirror    TransactionMirror
		now       func() time.Time
	}
)

// Option configures a LedgerService.
type Option func(*LedgerService)

// WithClock overrides the service clock; tests use it for deterministic
// period bounds.
func WithClock(now func() time.Time) Option {
	return func(s *LedgerService) { s.now = now }
}

// WithMirror attaches a transaction export mirror.
func WithMirror(m TransactionMirror) Option {
	return func(s *LedgerService) { s.mirror = m }
}

func NewLedgerService(st store.RecordStore, publisher AlertPublisher, opts ...Option) *LedgerService {
	s := &LedgerService{
		store:     st,
		publisher: publisher,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateTransaction validates and stores a new transaction, then recomputes
// the utilization of every budget matching its category and publishes an
// alert if the transaction pushed a budget across the near-limit or
// over-budget threshold. Store write success is never rolled back on publish
// or mirror failure.
func (s *LedgerService) CreateTransaction(ctx context.Context, userID uuid.UUID, date core.Date, category string, amount decimal.Decimal, kind core.TxKind, description string) (core.Transaction, error) {
	tx := core.Transaction{
		ID:          uuid.New(),
		UserID:      userID,
		Date:        date,
		Category:    category,
		Amount:      amount,
		Kind:        kind,
		Description: description,
		CreatedAt:   s.now(),
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.store.InsertTransaction(ctx, tx); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	if tx.Kind == core.Expense {
		s.checkBudgets(ctx, tx)
	}

	if s.mirror != nil {
		if err := s.mirror.Append(ctx, tx); err != nil {
			slog.ErrorContext(ctx, "Transaction mirror append failed",
				"id", tx.ID, "error", err)
		}
	}

	return tx, nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, userID, id uuid.UUID) error {
	return s.store.DeleteTransaction(ctx, userID, id)
}

// DeleteAllTransactions wipes the user's entire transaction history.
func (s *LedgerService) DeleteAllTransactions(ctx context.Context, userID uuid.UUID) error {
	return s.store.DeleteAllTransactions(ctx, userID)
}

func (s *LedgerService) ListTransactions(ctx context.Context, userID uuid.UUID) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx, userID)
}

// CreateBudget derives the frozen period bounds from the creation moment and
// stores the budget. The range never rolls forward.
func (s *LedgerService) CreateBudget(ctx context.Context, userID uuid.UUID, category string, limit decimal.Decimal, period core.BudgetPeriod) (core.Budget, error) {
	b, err := core.NewBudget(userID, category, limit, period, s.now())
	if err != nil {
		return core.Budget{}, err
	}
	if err := s.store.InsertBudget(ctx, b); err != nil {
		return core.Budget{}, fmt.Errorf("save budget: %w", err)
	}
	return b, nil
}

func (s *LedgerService) DeleteBudget(ctx context.Context, userID, id uuid.UUID) error {
	return s.store.DeleteBudget(ctx, userID, id)
}

func (s *LedgerService) ListBudgets(ctx context.Context, userID uuid.UUID) ([]core.Budget, error) {
	return s.store.ListBudgets(ctx, userID)
}

// BudgetUtilizations recomputes every budget's spent-to-limit picture from a
// fresh snapshot.
func (s *LedgerService) BudgetUtilizations(ctx context.Context, userID uuid.UUID) ([]metrics.BudgetUtilization, error) {
	budgets, err := s.store.ListBudgets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	txs, err := s.store.ListTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]metrics.BudgetUtilization, len(budgets))
	for i, b := range budgets {
		out[i] = metrics.Utilize(b, txs)
	}
	return out, nil
}

func (s *LedgerService) CreateGoal(ctx context.Context, userID uuid.UUID, title string, target decimal.Decimal, deadline core.Date, category string) (core.Goal, error) {
	g, err := core.NewGoal(userID, title, target, deadline, category, s.now())
	if err != nil {
		return core.Goal{}, err
	}
	if err := s.store.InsertGoal(ctx, g); err != nil {
		return core.Goal{}, fmt.Errorf("save goal: %w", err)
	}
	return g, nil
}

func (s *LedgerService) DeleteGoal(ctx context.Context, userID, id uuid.UUID) error {
	return s.store.DeleteGoal(ctx, userID, id)
}

func (s *LedgerService) ListGoals(ctx context.Context, userID uuid.UUID) ([]core.Goal, error) {
	return s.store.ListGoals(ctx, userID)
}

// AdjustGoal applies a signed delta to the goal's saved amount. The clamped
// amount and the recomputed completion flag are persisted in one write so the
// two fields never drift apart.
func (s *LedgerService) AdjustGoal(ctx context.Context, userID, id uuid.UUID, delta decimal.Decimal) (core.Goal, error) {
	g, err := s.store.GetGoal(ctx, userID, id)
	if err != nil {
		return core.Goal{}, err
	}
	next := g.ApplyDelta(delta)
	if err := s.store.UpdateGoalProgress(ctx, userID, id, next.Current, next.Completed); err != nil {
		return core.Goal{}, fmt.Errorf("update goal progress: %w", err)
	}
	return next, nil
}

// checkBudgets publishes an alert for every budget the new expense pushed
// across a threshold. Crossings are detected by comparing utilization with
// and without the new transaction, so an already-exceeded budget does not
// re-alert on every subsequent expense.
func (s *LedgerService) checkBudgets(ctx context.Context, tx core.Transaction) {
	if s.publisher == nil {
		return
	}
	budgets, err := s.store.ListBudgets(ctx, tx.UserID)
	if err != nil {
		slog.ErrorContext(ctx, "Budget check failed listing budgets", "error", err)
		return
	}
	txs, err := s.store.ListTransactions(ctx, tx.UserID)
	if err != nil {
		slog.ErrorContext(ctx, "Budget check failed listing transactions", "error", err)
		return
	}
	before := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if t.ID != tx.ID {
			before = append(before, t)
		}
	}

	for _, b := range budgets {
		if b.Category != tx.Category || !tx.Date.In(b.StartDate, b.EndDate) {
			continue
		}
		prev := metrics.Utilize(b, before)
		curr := metrics.Utilize(b, txs)

		var level amqp.AlertLevel
		switch {
		case curr.OverBudget && !prev.OverBudget:
			level = amqp.LevelOverBudget
		case curr.NearLimit && !prev.NearLimit && !prev.OverBudget:
			level = amqp.LevelNearLimit
		default:
			continue
		}

		msg := &amqp.BudgetAlertMessage{
			UserID:     tx.UserID.String(),
			BudgetID:   curr.BudgetID,
			Category:   curr.Category,
			Limit:      curr.Limit,
			Spent:      curr.Spent,
			Percentage: curr.Percentage,
			Level:      level,
			Timestamp:  s.now(),
		}
		if err := s.publisher.PublishBudgetAlert(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to publish budget alert",
				"budget_id", curr.BudgetID, "level", level, "error", err)
			// Don't fail the request - the transaction is saved
		}
	}
}

// Close releases the underlying store.
func (s *LedgerService) Close() error {
	return s.store.Close()
}
