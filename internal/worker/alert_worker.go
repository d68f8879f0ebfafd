// Package worker runs the alert delivery loop for cmd/tally-worker.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"tally/internal/amqp"
	"tally/internal/notify"
)

// AlertWorker consumes budget alert messages and hands them to a notifier.
type AlertWorker struct {
	notifier notify.Notifier
}

func NewAlertWorker(notifier notify.Notifier) *AlertWorker {
	return &AlertWorker{notifier: notifier}
}

// HandleAlert processes a single budget alert message from AMQP.
func (w *AlertWorker) HandleAlert(ctx context.Context, msg *amqp.BudgetAlertMessage) error {
	slog.InfoContext(ctx, "Processing budget alert",
		"budget_id", msg.BudgetID,
		"category", msg.Category,
		"level", msg.Level,
		"percentage", msg.Percentage)

	if w.notifier == nil {
		slog.WarnContext(ctx, "No notifier configured, dropping alert",
			"budget_id", msg.BudgetID)
		return nil
	}

	if err := w.notifier.Notify(ctx, msg); err != nil {
		return fmt.Errorf("deliver alert: %w", err)
	}
	return nil
}
