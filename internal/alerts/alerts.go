// Package alerts runs the per-budget alert state machine. Within a budget
// period the state only moves forward (none, warning, critical) and each
// forward move emits exactly one notification; a new period starts at none.
package alerts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dan9191/finance-insights/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Store is what the evaluator needs from persistence
type Store interface {
	ActiveBudgets(ctx context.Context, userID int64, at time.Time) ([]models.Budget, error)
	TransitionAlert(ctx context.Context, budgetID int64, from, to models.AlertMark, n *models.Notification) (bool, error)
}

// Next returns the state a budget moves to at the given usage, and whether the
// move must emit a notification
func Next(current models.AlertState, usage, warning, critical float64) (models.AlertState, bool) {
	switch {
	case usage >= critical && current != models.AlertCritical:
		return models.AlertCritical, true
	case usage >= warning && current == models.AlertNone:
		return models.AlertWarning, true
	}
	return current, false
}

// Evaluator applies Next to every active budget of a user
type Evaluator struct {
	store Store
	log   logrus.FieldLogger
}

// NewEvaluator initializes a new evaluator
func NewEvaluator(store Store, log logrus.FieldLogger) *Evaluator {
	return &Evaluator{store: store, log: log}
}

// Evaluate runs one alert pass for a user and returns the notifications this
// pass emitted. Running it again with unchanged spending emits nothing. A
// failing budget does not stop the others; its error is joined into the result.
func (e *Evaluator) Evaluate(ctx context.Context, userID int64, now time.Time) ([]models.Notification, error) {
	budgets, err := e.store.ActiveBudgets(ctx, userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load budgets for user %d: %w", userID, err)
	}

	var (
		sent []models.Notification
		errs []error
	)
	for _, b := range budgets {
		b = b.WithDefaults()
		log := e.log.WithFields(logrus.Fields{"user_id": userID, "budget_id": b.ID})

		from := models.AlertMark{State: b.Alert.State, PeriodStart: b.Alert.PeriodStart}
		current := b.CurrentAlertState()
		next, fire := Next(current, b.RawUsage(), b.WarningThreshold, b.CriticalThreshold)

		switch {
		case fire:
			n := newNotification(b, next, now)
			at := now
			to := models.AlertMark{State: next, PeriodStart: b.StartDate, LastAlertAt: &at}
			ok, err := e.store.TransitionAlert(ctx, b.ID, from, to, &n)
			if err != nil {
				log.Errorf("Budget alert transition failed: %v", err)
				errs = append(errs, fmt.Errorf("failed to transition budget %d: %w", b.ID, err))
				continue
			}
			if !ok {
				log.Debug("Budget alert already handled by a concurrent run")
				continue
			}
			log.Infof("Budget alert %s -> %s at %.1f%%", current, next, b.UsagePercentage())
			sent = append(sent, n)

		case from.State != "" && from.State != models.AlertNone && current == models.AlertNone:
			// Stale state from an earlier period: reset without notifying.
			to := models.AlertMark{State: models.AlertNone, PeriodStart: b.StartDate, LastAlertAt: b.Alert.LastAlertAt}
			ok, err := e.store.TransitionAlert(ctx, b.ID, from, to, nil)
			if err != nil {
				log.Errorf("Budget alert reset failed: %v", err)
				errs = append(errs, fmt.Errorf("failed to reset budget %d: %w", b.ID, err))
				continue
			}
			if ok {
				log.Debug("Budget alert state reset for new period")
			}
		}
	}
	return sent, errors.Join(errs...)
}

func newNotification(b models.Budget, state models.AlertState, now time.Time) models.Notification {
	pct := b.UsagePercentage()
	n := models.Notification{
		ID:     uuid.New(),
		UserID: b.UserID,
		Data: map[string]any{
			"category":   string(b.Category),
			"limit":      b.Limit.InexactFloat64(),
			"spent":      b.Spent.InexactFloat64(),
			"percentage": pct,
			"budgetId":   b.ID,
		},
		CreatedAt: now,
	}
	if state == models.AlertCritical {
		n.Type = models.NotificationBudgetCritical
		n.Title = fmt.Sprintf("Budget Alert: %s", b.Category.Label())
		n.Message = fmt.Sprintf("You have used %.1f%% of your %s budget (%s of %s).",
			pct, b.Category.Label(), b.Spent.StringFixed(2), b.Limit.StringFixed(2))
		n.Priority = models.PriorityHigh
		return n
	}
	n.Type = models.NotificationBudgetWarning
	n.Title = fmt.Sprintf("Budget Warning: %s", b.Category.Label())
	n.Message = fmt.Sprintf("You have used %.1f%% of your %s budget. %s left for this period.",
		pct, b.Category.Label(), b.Limit.Sub(b.Spent).StringFixed(2))
	n.Priority = models.PriorityMedium
	return n
}
