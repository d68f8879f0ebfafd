// Package memory is the in-memory record store. It backs local development
// and tests; everything is lost on restart.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tally/internal/core"
	"tally/internal/store"
)

type Store struct {
	mu           sync.Mutex
	transactions map[uuid.UUID][]core.Transaction // keyed by user
	budgets      map[uuid.UUID][]core.Budget
	goals        map[uuid.UUID][]core.Goal
}

var _ store.RecordStore = (*Store)(nil)

func New() *Store {
	return &Store{
		transactions: make(map[uuid.UUID][]core.Transaction),
		budgets:      make(map[uuid.UUID][]core.Budget),
		goals:        make(map[uuid.UUID][]core.Goal),
	}
}

func (s *Store) InsertTransaction(_ context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions[tx.UserID] = append(s.transactions[tx.UserID], tx)
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, userID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	txs := s.transactions[userID]
	for i, tx := range txs {
		if tx.ID == id {
			s.transactions[userID] = append(txs[:i:i], txs[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) DeleteAllTransactions(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.transactions, userID)
	return nil
}

func (s *Store) ListTransactions(_ context.Context, userID uuid.UUID) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]core.Transaction(nil), s.transactions[userID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date.Time) })
	return out, nil
}

func (s *Store) InsertBudget(_ context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.budgets[b.UserID] {
		if existing.Category == b.Category && existing.Period == b.Period &&
			existing.StartDate.Equal(b.StartDate.Time) {
			return store.ErrDuplicateBudget
		}
	}
	s.budgets[b.UserID] = append(s.budgets[b.UserID], b)
	return nil
}

func (s *Store) DeleteBudget(_ context.Context, userID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	budgets := s.budgets[userID]
	for i, b := range budgets {
		if b.ID == id {
			s.budgets[userID] = append(budgets[:i:i], budgets[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) ListBudgets(_ context.Context, userID uuid.UUID) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Budget(nil), s.budgets[userID]...), nil
}

func (s *Store) InsertGoal(_ context.Context, g core.Goal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goals[g.UserID] = append(s.goals[g.UserID], g)
	return nil
}

func (s *Store) DeleteGoal(_ context.Context, userID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	goals := s.goals[userID]
	for i, g := range goals {
		if g.ID == id {
			s.goals[userID] = append(goals[:i:i], goals[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) GetGoal(_ context.Context, userID, id uuid.UUID) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.goals[userID] {
		if g.ID == id {
			return g, nil
		}
	}
	return core.Goal{}, store.ErrNotFound
}

func (s *Store) ListGoals(_ context.Context, userID uuid.UUID) ([]core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Goal(nil), s.goals[userID]...), nil
}

func (s *Store) UpdateGoalProgress(_ context.Context, userID, id uuid.UUID, current decimal.Decimal, completed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	goals := s.goals[userID]
	for i := range goals {
		if goals[i].ID == id {
			goals[i].Current = current
			goals[i].Completed = completed
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) Close() error { return nil }
