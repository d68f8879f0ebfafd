package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"tally/internal/backend"
	"tally/internal/config"
	"tally/internal/core"
	applog "tally/internal/log"
	"tally/internal/services"
)

var expenseCategories = []string{
	"groceries", "dining", "fuel", "utilities", "rent",
	"entertainment", "health", "clothing", "travel", "subscriptions",
}

var incomeCategories = []string{"salary", "freelance", "dividends"}

func main() {
	_ = godotenv.Load()

	users := flag.Int("users", 1, "number of demo users to create")
	txCount := flag.Int("transactions", 120, "transactions per user")
	days := flag.Int("days", 60, "spread transactions over the past N days")
	seed := flag.Int64("seed", 0, "random seed (0 means random)")
	flag.Parse()

	logger := applog.New(applog.Config{
		Level:     applog.DefaultConfig().Level,
		Component: applog.ComponentSeed,
	})
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	gofakeit.Seed(*seed)

	ctx := context.Background()
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, "backend", backendCfg.Type)
		os.Exit(1)
	}

	ledger := services.NewLedgerService(result.Store, nil)
	defer func() {
		if err := ledger.Close(); err != nil {
			logger.Error("Close error", applog.FieldError, err)
		}
	}()

	now := time.Now()
	for i := 0; i < *users; i++ {
		userID := uuid.New()
		logger.Info("Seeding user", applog.FieldUserID, userID.String())

		if err := seedTransactions(ctx, ledger, userID, now, *txCount, *days); err != nil {
			logger.Error("Failed seeding transactions", applog.FieldError, err)
			os.Exit(1)
		}
		if err := seedBudgets(ctx, ledger, userID); err != nil {
			logger.Error("Failed seeding budgets", applog.FieldError, err)
			os.Exit(1)
		}
		if err := seedGoals(ctx, ledger, userID, now); err != nil {
			logger.Error("Failed seeding goals", applog.FieldError, err)
			os.Exit(1)
		}
	}

	logger.Info("Seed complete", "users", *users, "transactions_per_user", *txCount)
}

func seedTransactions(ctx context.Context, ledger *services.LedgerService, userID uuid.UUID, now time.Time, count, days int) error {
	for i := 0; i < count; i++ {
		date := core.DateOf(now.AddDate(0, 0, -gofakeit.Number(0, days-1)))

		// Roughly one income for every five expenses.
		kind := core.Expense
		category := gofakeit.RandomString(expenseCategories)
		amount := decimal.NewFromFloat(gofakeit.Float64Range(3, 250)).Round(2)
		if gofakeit.Number(1, 6) == 1 {
			kind = core.Income
			category = gofakeit.RandomString(incomeCategories)
			amount = decimal.NewFromFloat(gofakeit.Float64Range(500, 4000)).Round(2)
		}

		_, err := ledger.CreateTransaction(ctx, userID, date, category, amount, kind, gofakeit.ProductName())
		if err != nil {
			return err
		}
	}
	return nil
}

func seedBudgets(ctx context.Context, ledger *services.LedgerService, userID uuid.UUID) error {
	for _, category := range []string{"groceries", "dining", "fuel"} {
		limit := decimal.NewFromInt(int64(gofakeit.Number(200, 900)))
		if _, err := ledger.CreateBudget(ctx, userID, category, limit, core.Monthly); err != nil {
			return err
		}
	}
	limit := decimal.NewFromInt(int64(gofakeit.Number(50, 150)))
	_, err := ledger.CreateBudget(ctx, userID, "entertainment", limit, core.Weekly)
	return err
}

func seedGoals(ctx context.Context, ledger *services.LedgerService, userID uuid.UUID, now time.Time) error {
	goals := []struct {
		title    string
		target   decimal.Decimal
		deadline core.Date
	}{
		{"Emergency fund", decimal.NewFromInt(10000), core.DateOf(now.AddDate(1, 0, 0))},
		{"Vacation", decimal.NewFromInt(2500), core.DateOf(now.AddDate(0, 4, 0))},
		{"New laptop", decimal.NewFromInt(1800), core.Date{}},
	}
	for _, spec := range goals {
		g, err := ledger.CreateGoal(ctx, userID, spec.title, spec.target, spec.deadline, "")
		if err != nil {
			return err
		}
		saved := decimal.NewFromFloat(gofakeit.Float64Range(0, 0.8)).Mul(spec.target).Round(2)
		if saved.IsPositive() {
			if _, err := ledger.AdjustGoal(ctx, userID, g.ID, saved); err != nil {
				return err
			}
		}
	}
	return nil
}
