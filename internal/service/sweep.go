package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Dan9191/finance-insights/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// SweepResult summarises one scheduled run over all users
type SweepResult struct {
	RunID         uuid.UUID `json:"run_id"`
	Users         int       `json:"users"`
	Notifications int       `json:"notifications"`
	Failed        int       `json:"failed"`
}

// forEachUser runs fn for every user with at most SweepWorkers in flight.
// A failing user is logged and counted; it never stops the others. Work fn
// reports alongside an error still counts.
func (s *Service) forEachUser(ctx context.Context, name string, fn func(ctx context.Context, userID int64) (int, error)) (SweepResult, error) {
	res := SweepResult{RunID: uuid.New()}
	log := s.log.WithFields(logrus.Fields{"run_id": res.RunID, "sweep": name})

	ids, err := s.repo.UserIDs(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to list users: %w", err)
	}
	res.Users = len(ids)

	var sent, failed atomic.Int64
	g := new(errgroup.Group)
	g.SetLimit(s.config.SweepWorkers)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			if ctx.Err() != nil {
				failed.Add(1)
				return nil
			}
			n, err := fn(ctx, id)
			sent.Add(int64(n))
			if err != nil {
				failed.Add(1)
				log.WithField("user_id", id).Errorf("Sweep failed for user: %v", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	res.Notifications = int(sent.Load())
	res.Failed = int(failed.Load())
	log.Infof("Sweep finished: %d users, %d notifications, %d failed", res.Users, res.Notifications, res.Failed)
	return res, ctx.Err()
}

// RunAlertSweep evaluates the budget alert state machine for every user
func (s *Service) RunAlertSweep(ctx context.Context) (SweepResult, error) {
	now := s.now()
	return s.forEachUser(ctx, "budget_alerts", func(ctx context.Context, userID int64) (int, error) {
		sent, err := s.alerts.Evaluate(ctx, userID, now)
		if len(sent) > 0 {
			// cached insights carry the old budget states
			s.cache.Invalidate(userID)
		}
		return len(sent), err
	})
}

// RunMonthlyReport stores a monthly_report notification for the month before
// now and emails it when SMTP is configured. A month already reported for a
// user is skipped, so reruns neither duplicate the notification nor the email.
func (s *Service) RunMonthlyReport(ctx context.Context) (SweepResult, error) {
	now := s.now()
	return s.forEachUser(ctx, "monthly_report", func(ctx context.Context, userID int64) (int, error) {
		report, err := s.BuildMonthlyReport(ctx, userID, now)
		if err != nil {
			return 0, err
		}
		n := reportNotification(report, now)
		created, err := s.repo.CreateNotification(ctx, &n)
		if err != nil {
			return 0, err
		}
		if !created {
			s.log.WithField("user_id", userID).Debugf("Monthly report for %04d-%02d already stored", report.Year, report.Month)
			return 0, nil
		}
		s.mailReport(ctx, report)
		return 1, nil
	})
}

// BuildMonthlyReport summarises the calendar month preceding now
func (s *Service) BuildMonthlyReport(ctx context.Context, userID int64, now time.Time) (models.MonthlyReport, error) {
	month := models.MonthWindow(models.MonthWindow(now).Start.AddDate(0, -1, 0))
	r := models.MonthlyReport{
		UserID: userID,
		Year:   month.Start.Year(),
		Month:  int(month.Start.Month()),
	}

	income, err := s.repo.PeriodTotal(ctx, userID, models.KindIncome, month)
	if err != nil {
		return r, fmt.Errorf("failed to load income total: %w", err)
	}
	expense, err := s.repo.PeriodTotal(ctx, userID, models.KindExpense, month)
	if err != nil {
		return r, fmt.Errorf("failed to load expense total: %w", err)
	}
	r.Income, r.Expense = income.Total, expense.Total
	r.Net = income.Total.Sub(expense.Total)

	groups, err := s.repo.GroupedTotal(ctx, userID, models.KindExpense, month)
	if err != nil {
		return r, fmt.Errorf("failed to load category totals: %w", err)
	}
	if len(groups) > 0 && groups[0].Total.IsPositive() {
		r.TopCategory = models.ParseCategory(groups[0].GroupKey)
		r.TopSpend = groups[0].Total
	}

	health, err := s.analyzer.HealthScore(ctx, userID, month.End)
	if err != nil {
		return r, err
	}
	r.HealthGrade, r.HealthScore = health.Grade, health.Score
	return r, nil
}

func reportNotification(r models.MonthlyReport, now time.Time) models.Notification {
	period := time.Date(r.Year, time.Month(r.Month), 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
	data := map[string]any{
		"year":        r.Year,
		"month":       r.Month,
		"income":      r.Income.InexactFloat64(),
		"expense":     r.Expense.InexactFloat64(),
		"net":         r.Net.InexactFloat64(),
		"healthGrade": r.HealthGrade,
		"healthScore": r.HealthScore,
	}
	if r.TopCategory != "" {
		data["topCategory"] = string(r.TopCategory)
	}
	return models.Notification{
		ID:        uuid.New(),
		UserID:    r.UserID,
		Type:      models.NotificationMonthlyReport,
		Title:     fmt.Sprintf("Monthly report: %s", period),
		Message:   fmt.Sprintf("Income %s, expenses %s, net %s. Health grade %s.", r.Income.StringFixed(2), r.Expense.StringFixed(2), r.Net.StringFixed(2), r.HealthGrade),
		Priority:  models.PriorityLow,
		Data:      data,
		CreatedAt: now,
		DedupKey:  fmt.Sprintf("monthly_report:%04d-%02d", r.Year, r.Month),
	}
}

// mailReport is best effort: a delivery failure is logged, the stored
// notification stands
func (s *Service) mailReport(ctx context.Context, r models.MonthlyReport) {
	if s.mailer == nil || !s.config.MailEnabled() {
		return
	}
	profile, err := s.repo.UserProfile(ctx, r.UserID)
	if err != nil || profile.Email == "" {
		return
	}
	if err := s.mailer.SendMonthlyReport(profile.Email, profile.Username, r); err != nil {
		s.log.WithField("user_id", r.UserID).Warnf("Monthly report email not delivered: %v", err)
	}
}
