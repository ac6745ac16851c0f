package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Dan9191/finance-insights/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), mock
}

func TestPeriodTotalEmptyWindow(t *testing.T) {
	repo, mock := newMockRepo(t)
	w := models.MonthWindow(time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC))

	mock.ExpectQuery(regexp.QuoteMeta("FROM finance.expenses")).
		WithArgs(int64(7), w.Start, w.End).
		WillReturnRows(sqlmock.NewRows([]string{"sum", "count"}).AddRow("0", 0))

	got, err := repo.PeriodTotal(context.Background(), 7, models.KindExpense, w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Total.IsZero() || got.Count != 0 {
		t.Errorf("expected zero aggregate, got %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPeriodTotalRejectsUnknownKind(t *testing.T) {
	repo, _ := newMockRepo(t)
	_, err := repo.PeriodTotal(context.Background(), 1, models.RecordKind("transfer"), models.Window{})
	if err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestGroupedTotalComputesAverage(t *testing.T) {
	repo, mock := newMockRepo(t)
	w := models.MonthWindow(time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC))

	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY category")).
		WithArgs(int64(7), w.Start, w.End).
		WillReturnRows(sqlmock.NewRows([]string{"category", "sum", "count"}).
			AddRow("food", "300.00", 3).
			AddRow("travel", "120.00", 1))

	got, err := repo.GroupedTotal(context.Background(), 7, models.KindExpense, w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].GroupKey != "food" {
		t.Fatalf("unexpected groups %+v", got)
	}
	if !got[0].Average.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected average 100, got %s", got[0].Average)
	}
}

func TestMonthlyTrendZeroFills(t *testing.T) {
	repo, mock := newMockRepo(t)
	asOf := time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("AT TIME ZONE $4")).
		WithArgs(int64(7), time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), sqlmock.AnyArg(), "UTC").
		WillReturnRows(sqlmock.NewRows([]string{"y", "m", "sum", "count"}).
			AddRow(2025, 2, "1000", 2))

	got, err := repo.MonthlyTrend(context.Background(), 7, models.KindIncome, 3, asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 months, got %d", len(got))
	}
	if got[1].Month != 3 || !got[1].Total.IsZero() {
		t.Errorf("expected empty March, got %+v", got[1])
	}
	if !got[0].Total.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected February total 1000, got %s", got[0].Total)
	}
}

func TestUserProfileNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM finance.users")).
		WithArgs(int64(9)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.UserProfile(context.Background(), 9)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTransitionAlertWritesNotificationInTransaction(t *testing.T) {
	repo, mock := newMockRepo(t)
	start := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	now := start.Add(48 * time.Hour)
	from := models.AlertMark{State: models.AlertNone}
	to := models.AlertMark{State: models.AlertWarning, PeriodStart: start, LastAlertAt: &now}
	n := &models.Notification{ID: uuid.New(), UserID: 7, Type: models.NotificationBudgetWarning, Priority: models.PriorityMedium, CreatedAt: now}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE finance.budgets")).
		WithArgs("warning", sqlmock.AnyArg(), sqlmock.AnyArg(), int64(3), "none", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO finance.notifications")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ok, err := repo.TransitionAlert(context.Background(), 3, from, to, n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected transition to apply")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestTransitionAlertLostRace(t *testing.T) {
	repo, mock := newMockRepo(t)
	to := models.AlertMark{State: models.AlertCritical}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE finance.budgets")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	ok, err := repo.TransitionAlert(context.Background(), 3, models.AlertMark{}, to, &models.Notification{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected lost race to report false")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCreateNotificationSkipsDuplicateKey(t *testing.T) {
	repo, mock := newMockRepo(t)
	n := &models.Notification{ID: uuid.New(), UserID: 7, Type: models.NotificationMonthlyReport, DedupKey: "monthly_report:2025-06"}

	anyArg := sqlmock.AnyArg()
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (user_id, dedup_key) DO NOTHING")).
		WithArgs(n.ID, int64(7), "monthly_report", anyArg, anyArg, anyArg, anyArg, anyArg, "monthly_report:2025-06").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (user_id, dedup_key) DO NOTHING")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	created, err := repo.CreateNotification(context.Background(), n)
	if err != nil || !created {
		t.Fatalf("expected first insert to be created, got %v, err %v", created, err)
	}
	created, err = repo.CreateNotification(context.Background(), n)
	if err != nil || created {
		t.Fatalf("expected duplicate insert to be skipped, got %v, err %v", created, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCreateNotificationWithoutKeyStoresNull(t *testing.T) {
	repo, mock := newMockRepo(t)
	n := &models.Notification{ID: uuid.New(), UserID: 7, Type: models.NotificationBudgetWarning}

	anyArg := sqlmock.AnyArg()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO finance.notifications")).
		WithArgs(n.ID, int64(7), "budget_warning", anyArg, anyArg, anyArg, anyArg, anyArg, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if _, err := repo.CreateNotification(context.Background(), n); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestEnsureSchema(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec(regexp.QuoteMeta("CREATE SCHEMA IF NOT EXISTS finance")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestWeekdayPatternWindowEndsWithAsOfDay(t *testing.T) {
	repo, mock := newMockRepo(t)
	asOf := time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)
	start := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond)

	mock.ExpectQuery(regexp.QuoteMeta("EXTRACT(DOW FROM date AT TIME ZONE $4)")).
		WithArgs(int64(7), start, end, "UTC").
		WillReturnRows(sqlmock.NewRows([]string{"dow", "sum", "count"}).AddRow(1, "1100", 11))

	got, err := repo.WeekdayPattern(context.Background(), 7, 3, asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// April 1 to June 15 2025 holds 11 Sundays.
	if !got[0].Average.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected sunday average 100, got %s", got[0].Average)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestDailyTotalsBucketsLocalZoneAsUTC(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("EXTRACT(DAY FROM date AT TIME ZONE $4)")).
		WithArgs(int64(7), time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), sqlmock.AnyArg(), "UTC").
		WillReturnRows(sqlmock.NewRows([]string{"day", "sum", "count"}))

	got, err := repo.DailyTotals(context.Background(), 7, models.KindExpense, 2025, time.June, time.Local)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 30 {
		t.Errorf("expected 30 days, got %d", len(got))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
