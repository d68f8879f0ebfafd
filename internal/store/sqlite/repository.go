// Package sqlite persists records in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"tally/internal/core"
	"tally/internal/store"
)

const dateLayout = "2006-01-02"

type Repository struct {
	db *sql.DB
}

var _ store.RecordStore = (*Repository)(nil)

func New(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Repository) InsertTransaction(ctx context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, user_id, tx_date, category, amount, kind, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID.String(), tx.UserID.String(), tx.Date.Format(dateLayout),
		tx.Category, tx.Amount.String(), string(tx.Kind), tx.Description, tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *Repository) DeleteTransaction(ctx context.Context, userID, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id.String(), userID.String())
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteAllTransactions(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE user_id = ?`, userID.String())
	if err != nil {
		return fmt.Errorf("delete all transactions: %w", err)
	}
	return nil
}

func (r *Repository) ListTransactions(ctx context.Context, userID uuid.UUID) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, tx_date, category, amount, kind, description, created_at
		 FROM transactions WHERE user_id = ? ORDER BY tx_date, created_at`, userID.String())
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			tx                   core.Transaction
			id, uid, date        string
			amount, kind         string
			createdAt            time.Time
		)
		if err := rows.Scan(&id, &uid, &date, &tx.Category, &amount, &kind, &tx.Description, &createdAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parse transaction id: %w", err)
		}
		tx.UserID, err = uuid.Parse(uid)
		if err != nil {
			return nil, fmt.Errorf("parse user id: %w", err)
		}
		tx.Date, err = parseDate(date)
		if err != nil {
			return nil, err
		}
		tx.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parse amount: %w", err)
		}
		tx.Kind = core.TxKind(kind)
		tx.CreatedAt = createdAt
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (r *Repository) InsertBudget(ctx context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (id, user_id, category, limit_amount, period, start_date, end_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID.String(), b.UserID.String(), b.Category, b.Limit.String(),
		string(b.Period), b.StartDate.Format(dateLayout), b.EndDate.Format(dateLayout), b.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrDuplicateBudget
		}
		return fmt.Errorf("insert budget: %w", err)
	}
	return nil
}

func (r *Repository) DeleteBudget(ctx context.Context, userID, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM budgets WHERE id = ? AND user_id = ?`, id.String(), userID.String())
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *Repository) ListBudgets(ctx context.Context, userID uuid.UUID) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, category, limit_amount, period, start_date, end_date, created_at
		 FROM budgets WHERE user_id = ? ORDER BY start_date, category`, userID.String())
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var (
			b                      core.Budget
			id, uid, limit, period string
			start, end             string
			createdAt              time.Time
		)
		if err := rows.Scan(&id, &uid, &b.Category, &limit, &period, &start, &end, &createdAt); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		b.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parse budget id: %w", err)
		}
		b.UserID, err = uuid.Parse(uid)
		if err != nil {
			return nil, fmt.Errorf("parse user id: %w", err)
		}
		b.Limit, err = decimal.NewFromString(limit)
		if err != nil {
			return nil, fmt.Errorf("parse limit: %w", err)
		}
		b.Period = core.BudgetPeriod(period)
		b.StartDate, err = parseDate(start)
		if err != nil {
			return nil, err
		}
		b.EndDate, err = parseDate(end)
		if err != nil {
			return nil, err
		}
		b.CreatedAt = createdAt
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repository) InsertGoal(ctx context.Context, g core.Goal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	var deadline sql.NullString
	if !g.Deadline.IsZero() {
		deadline = sql.NullString{String: g.Deadline.Format(dateLayout), Valid: true}
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO goals (id, user_id, title, target_amount, current_amount, deadline, category, is_completed, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID.String(), g.UserID.String(), g.Title, g.Target.String(), g.Current.String(),
		deadline, g.Category, g.Completed, g.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert goal: %w", err)
	}
	return nil
}

func (r *Repository) DeleteGoal(ctx context.Context, userID, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM goals WHERE id = ? AND user_id = ?`, id.String(), userID.String())
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *Repository) GetGoal(ctx context.Context, userID, id uuid.UUID) (core.Goal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, target_amount, current_amount, deadline, category, is_completed, created_at
		 FROM goals WHERE id = ? AND user_id = ?`, id.String(), userID.String())
	g, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Goal{}, store.ErrNotFound
	}
	return g, err
}

func (r *Repository) ListGoals(ctx context.Context, userID uuid.UUID) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, target_amount, current_amount, deadline, category, is_completed, created_at
		 FROM goals WHERE user_id = ? ORDER BY created_at`, userID.String())
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
	res, err := r.db.ExecContext(ctx,
		`UPDATE goals SET current_amount = ?, is_completed = ? WHERE id = ? AND user_id = ?`,
		current.String(), completed, id.String(), userID.String())
	if err != nil {
		return fmt.Errorf("update goal progress: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGoal(row rowScanner) (core.Goal, error) {
	var (
		g                         core.Goal
		id, uid, target, current  string
		deadline                  sql.NullString
		createdAt                 time.Time
	)
	err := row.Scan(&id, &uid, &g.Title, &target, &current, &deadline, &g.Category, &g.Completed, &createdAt)
	if err != nil {
		return core.Goal{}, err
	}
	g.ID, err = uuid.Parse(id)
	if err != nil {
		return core.Goal{}, fmt.Errorf("parse goal id: %w", err)
	}
	g.UserID, err = uuid.Parse(uid)
	if err != nil {
		return core.Goal{}, fmt.Errorf("parse user id: %w", err)
	}
	g.Target, err = decimal.NewFromString(target)
	if err != nil {
		return core.Goal{}, fmt.Errorf("parse target: %w", err)
	}
	g.Current, err = decimal.NewFromString(current)
	if err != nil {
		return core.Goal{}, fmt.Errorf("parse current: %w", err)
	}
	if deadline.Valid {
		g.Deadline, err = parseDate(deadline.String)
		if err != nil {
			return core.Goal{}, err
		}
	}
	g.CreatedAt = createdAt
	return g, nil
}

func parseDate(s string) (core.Date, error) {
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return core.Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return core.Date{Time: t}, nil
}
