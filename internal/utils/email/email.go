package email

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/Dan9191/finance-insights/internal/config"
	"github.com/Dan9191/finance-insights/internal/models"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// MonthlyReportMessage builds the digest email for a finished month
func MonthlyReportMessage(from, to, username string, r models.MonthlyReport) *email.Email {
	period := time.Date(r.Year, time.Month(r.Month), 1, 0, 0, 0, 0, time.UTC).Format("January 2006")

	e := email.NewEmail()
	e.From = from
	e.To = []string{to}
	e.Subject = fmt.Sprintf("Your financial summary for %s", period)

	body := fmt.Sprintf("Dear %s,\n\n", username)
	body += fmt.Sprintf(
		"Here is how %s went:\n"+
			"Income: %s\n"+
			"Expenses: %s\n"+
			"Net: %s\n",
		period, r.Income.StringFixed(2), r.Expense.StringFixed(2), r.Net.StringFixed(2),
	)
	if r.TopCategory != "" {
		body += fmt.Sprintf("Largest spending category: %s (%s)\n", r.TopCategory.Label(), r.TopSpend.StringFixed(2))
	}
	body += fmt.Sprintf("Financial health: %s (%d/100)\n", r.HealthGrade, r.HealthScore)
	body += "\nBest regards,\nFinance Insights"
	e.Text = []byte(body)
	return e
}

// SendMonthlyReport emails the monthly digest to one user
func (s *Sender) SendMonthlyReport(to, username string, r models.MonthlyReport) error {
	e := MonthlyReportMessage(s.cfg.SenderEmail, to, username, r)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send monthly report to %s: %v", to, err)
		return fmt.Errorf("failed to send monthly report: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}
