// Package postgres persists records in PostgreSQL through a pgx pool. Row
// ownership is enforced by scoping every statement to the acting user's id.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"tally/internal/core"
	"tally/internal/store"
)

const uniqueViolation = "23505"

type Repository struct {
	pool *pgxpool.Pool
}

var _ store.RecordStore = (*Repository)(nil)

func New(ctx context.Context, url string) (*Repository, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Repository{pool: pool}, nil
}

func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

func (r *Repository) InsertTransaction(ctx context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO transactions (id, user_id, tx_date, category, amount, kind, description, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		tx.ID, tx.UserID, tx.Date.Time, tx.Category, tx.Amount, string(tx.Kind), tx.Description, tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *Repository) DeleteTransaction(ctx context.Context, userID, id uuid.UUID) error {
	res, err := r.pool.Exec(ctx,
		`DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if res.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteAllTransactions(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM transactions WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete all transactions: %w", err)
	}
	return nil
}

func (r *Repository) ListTransactions(ctx context.Context, userID uuid.UUID) ([]core.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, tx_date, category, amount, kind, description, created_at
		 FROM transactions WHERE user_id = $1 ORDER BY tx_date, created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			tx   core.Transaction
			kind string
		)
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Date.Time, &tx.Category, &tx.Amount, &kind, &tx.Description, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Kind = core.TxKind(kind)
		tx.Date = core.DateOf(tx.Date.Time)
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (r *Repository) InsertBudget(ctx context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO budgets (id, user_id, category, limit_amount, period, start_date, end_date, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		b.ID, b.UserID, b.Category, b.Limit, string(b.Period), b.StartDate.Time, b.EndDate.Time, b.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return store.ErrDuplicateBudget
		}
		return fmt.Errorf("insert budget: %w", err)
	}
	return nil
}

func (r *Repository) DeleteBudget(ctx context.Context, userID, id uuid.UUID) error {
	res, err := r.pool.Exec(ctx,
		`DELETE FROM budgets WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if res.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *Repository) ListBudgets(ctx context.Context, userID uuid.UUID) ([]core.Budget, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, category, limit_amount, period, start_date, end_date, created_at
		 FROM budgets WHERE user_id = $1 ORDER BY start_date, category`, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var (
			b      core.Budget
			period string
		)
		if err := rows.Scan(&b.ID, &b.UserID, &b.Category, &b.Limit, &period, &b.StartDate.Time, &b.EndDate.Time, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		b.Period = core.BudgetPeriod(period)
		b.StartDate = core.DateOf(b.StartDate.Time)
		b.EndDate = core.DateOf(b.EndDate.Time)
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repository) InsertGoal(ctx context.Context, g core.Goal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	var deadline any
	if !g.Deadline.IsZero() {
		deadline = g.Deadline.Time
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO goals (id, user_id, title, target_amount, current_amount, deadline, category, is_completed, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		g.ID, g.UserID, g.Title, g.Target, g.Current, deadline, g.Category, g.Completed, g.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert goal: %w", err)
	}
	return nil
}

func (r *Repository) DeleteGoal(ctx context.Context, userID, id uuid.UUID) error {
	res, err := r.pool.Exec(ctx,
		`DELETE FROM goals WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	if res.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *Repository) GetGoal(ctx context.Context, userID, id uuid.UUID) (core.Goal, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, user_id, title, target_amount, current_amount, deadline, category, is_completed, created_at
		 FROM goals WHERE id = $1 AND user_id = $2`, id, userID)
	g, err := scanGoal(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Goal{}, store.ErrNotFound
	}
	return g, err
}

func (r *Repository) ListGoals(ctx context.Context, userID uuid.UUID) ([]core.Goal, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, title, target_amount, current_amount, deadline, category, is_completed, created_at
		 FROM goals WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var out []core.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *Repository) UpdateGoalProgress(ctx context.Context, userID, id uuid.UUID, current decimal.Decimal, completed bool) error {
	res, err := r.pool.Exec(ctx,
		`UPDATE goals SET current_amount = $1, is_completed = $2 WHERE id = $3 AND user_id = $4`,
		current, completed, id, userID)
	if err != nil {
		return fmt.Errorf("update goal progress: %w", err)
	}
	if res.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func scanGoal(row pgx.Row) (core.Goal, error) {
	var (
		g        core.Goal
		deadline *time.Time
	)
	err := row.Scan(&g.ID, &g.UserID, &g.Title, &g.Target, &g.Current, &deadline, &g.Category, &g.Completed, &g.CreatedAt)
	if err != nil {
		return core.Goal{}, err
	}
	if deadline != nil {
		g.Deadline = core.DateOf(*deadline)
	}
	return g, nil
}
