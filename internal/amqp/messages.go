package amqp

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	LevelNearLimit  AlertLevel = "near_limit"
	LevelOverBudget AlertLevel = "over_budget"
)

// AlertLevel marks how severe a budget alert is.
type AlertLevel string

// BudgetAlertMessage is published when a transaction pushes a budget past its
// warning threshold or over its limit. It carries the full derived picture so
// consumers can deliver the alert without another store round trip.
type BudgetAlertMessage struct {
	UserID     string          `json:"user_id"`
	BudgetID   string          `json:"budget_id"`
	Category   string          `json:"category"`
	Limit      decimal.Decimal `json:"limit"`
	Spent      decimal.Decimal `json:"spent"`
	Percentage float64         `json:"percentage"`
	Level      AlertLevel      `json:"level"`
	Timestamp  time.Time       `json:"timestamp"`
}

// ToJSON converts the message to JSON bytes.
func (m *BudgetAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BudgetAlertMessageFromJSON creates a message from JSON bytes.
func BudgetAlertMessageFromJSON(data []byte) (*BudgetAlertMessage, error) {
	var msg BudgetAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
