// Package store defines the ports every record backend implements. All reads
// and writes are scoped to the owning user; callers never see another user's
// records.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tally/internal/core"
)

var (
	// ErrNotFound is returned when the record does not exist or belongs to a
	// different user.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateBudget is returned when a budget for the same
	// (category, period, start date) already exists for the user.
	ErrDuplicateBudget = errors.New("budget already exists for this category and period")
)

type (
	TransactionStore interface {
		InsertTransaction(ctx context.Context, tx core.Transaction) error
		DeleteTransaction(ctx context.Context, userID, id uuid.UUID) error
		// DeleteAllTransactions removes every transaction owned by the user.
		DeleteAllTransactions(ctx context.Context, userID uuid.UUID) error
		ListTransactions(ctx context.Context, userID uuid.UUID) ([]core.Transaction, error)
	}

	BudgetStore interface {
		InsertBudget(ctx context.Context, b core.Budget) error
		DeleteBudget(ctx context.Context, userID, id uuid.UUID) error
		ListBudgets(ctx context.Context, userID uuid.UUID) ([]core.Budget, error)
	}

	GoalStore interface {
		InsertGoal(ctx context.Context, g core.Goal) error
		DeleteGoal(ctx context.Context, userID, id uuid.UUID) error
		GetGoal(ctx context.Context, userID, id uuid.UUID) (core.Goal, error)
		ListGoals(ctx context.Context, userID uuid.UUID) ([]core.Goal, error)
		// UpdateGoalProgress persists a new saved amount together with the
		// matching completion flag in a single write.
		UpdateGoalProgress(ctx context.Context, userID, id uuid.UUID, current decimal.Decimal, completed bool) error
	}

	// RecordStore is the full persistence surface a backend provides.
	RecordStore interface {
		TransactionStore
		BudgetStore
		GoalStore
		Close() error
	}
)
