package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType identifies what produced a notification
type NotificationType string

const (
	NotificationBudgetWarning  NotificationType = "budget_warning"
	NotificationBudgetCritical NotificationType = "budget_critical"
	NotificationMonthlyReport  NotificationType = "monthly_report"
)

// Notification is handed to the delivery collaborator
type Notification struct {
	ID        uuid.UUID        `json:"id"`
	UserID    int64            `json:"user_id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Priority  Priority         `json:"priority"`
	Data      map[string]any   `json:"data"`
	CreatedAt time.Time        `json:"created_at"`
	// DedupKey, when set, makes the notification unique per user
	DedupKey string `json:"-"`
}
