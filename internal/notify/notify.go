// Package notify delivers budget alerts to the user's configured channel.
package notify

import (
	"context"

	"tally/internal/amqp"
)

// Notifier delivers an alert to an end-user channel.
type Notifier interface {
	Notify(ctx context.Context, msg *amqp.BudgetAlertMessage) error
}
