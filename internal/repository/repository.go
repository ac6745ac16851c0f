package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Dan9191/finance-insights/internal/aggregate"
	"github.com/Dan9191/finance-insights/internal/models"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when an entity read matches no row
var ErrNotFound = errors.New("not found")

// Store is the query collaborator consumed by the insights engine, the alert
// state machine and the sweeps. Repository and MemoryStore implement it.
type Store interface {
	PeriodTotal(ctx context.Context, userID int64, kind models.RecordKind, w models.Window) (models.PeriodTotal, error)
	GroupedTotal(ctx context.Context, userID int64, kind models.RecordKind, w models.Window) ([]models.GroupTotal, error)
	MonthlyTrend(ctx context.Context, userID int64, kind models.RecordKind, monthsBack int, asOf time.Time) ([]models.MonthlyTotal, error)
	WeekdayPattern(ctx context.Context, userID int64, monthsBack int, asOf time.Time) ([]models.WeekdayTotal, error)
	DailyTotals(ctx context.Context, userID int64, kind models.RecordKind, year int, month time.Month, loc *time.Location) ([]models.DailyTotal, error)
	FlaggedExpenseTotal(ctx context.Context, userID int64, w models.Window, flag models.ExpenseFlag) (models.PeriodTotal, error)

	ActiveBudgets(ctx context.Context, userID int64, at time.Time) ([]models.Budget, error)
	ActiveGoals(ctx context.Context, userID int64) ([]models.SavingsGoal, error)
	ActiveInvestments(ctx context.Context, userID int64) ([]models.Investment, error)
	UserProfile(ctx context.Context, userID int64) (*models.UserProfile, error)
	UserIDs(ctx context.Context) ([]int64, error)

	TransitionAlert(ctx context.Context, budgetID int64, from, to models.AlertMark, n *models.Notification) (bool, error)
	CreateNotification(ctx context.Context, n *models.Notification) (bool, error)
}

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

//go:embed schema.sql
var schema string

// EnsureSchema creates the finance schema and its tables when missing
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// recordSource returns the table and grouping column for a record kind
func recordSource(kind models.RecordKind) (table, key string, err error) {
	switch kind {
	case models.KindIncome:
		return "finance.incomes", "source", nil
	case models.KindExpense:
		return "finance.expenses", "category", nil
	}
	return "", "", fmt.Errorf("unknown record kind %q", kind)
}

// PeriodTotal sums the records of one kind inside the window
func (r *Repository) PeriodTotal(ctx context.Context, userID int64, kind models.RecordKind, w models.Window) (models.PeriodTotal, error) {
	table, _, err := recordSource(kind)
	if err != nil {
		return models.PeriodTotal{}, err
	}
	query := fmt.Sprintf(`
		SELECT COALESCE(SUM(amount), 0), COUNT(*)
		FROM %s
		WHERE user_id = $1 AND date BETWEEN $2 AND $3`, table)
	res := models.PeriodTotal{}
	if err := r.db.QueryRowContext(ctx, query, userID, w.Start, w.End).Scan(&res.Total, &res.Count); err != nil {
		return models.PeriodTotal{}, fmt.Errorf("failed to get %s period total: %w", kind, err)
	}
	return res, nil
}

// GroupedTotal sums the records of one kind per category (expenses) or source (income)
func (r *Repository) GroupedTotal(ctx context.Context, userID int64, kind models.RecordKind, w models.Window) ([]models.GroupTotal, error) {
	table, key, err := recordSource(kind)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
		SELECT %[2]s, SUM(amount), COUNT(*)
		FROM %[1]s
		WHERE user_id = $1 AND date BETWEEN $2 AND $3
		GROUP BY %[2]s
		ORDER BY SUM(amount) DESC, %[2]s`, table, key)
	rows, err := r.db.QueryContext(ctx, query, userID, w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s grouped totals: %w", kind, err)
	}
	defer rows.Close()

	var groups []models.GroupTotal
	for rows.Next() {
		var g models.GroupTotal
		if err := rows.Scan(&g.GroupKey, &g.Total, &g.Count); err != nil {
			return nil, fmt.Errorf("failed to scan grouped total: %w", err)
		}
		if g.Count > 0 {
			g.Average = g.Total.Div(decimal.NewFromInt(int64(g.Count)))
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read grouped totals: %w", err)
	}
	aggregate.SortGroups(groups)
	return groups, nil
}

// MonthlyTrend returns one total per month for the trailing monthsBack months, oldest first
func (r *Repository) MonthlyTrend(ctx context.Context, userID int64, kind models.RecordKind, monthsBack int, asOf time.Time) ([]models.MonthlyTotal, error) {
	table, _, err := recordSource(kind)
	if err != nil {
		return nil, err
	}
	w := models.TrailingMonths(models.CalendarTime(asOf), monthsBack)
	query := fmt.Sprintf(`
		SELECT EXTRACT(YEAR FROM date AT TIME ZONE $4)::int, EXTRACT(MONTH FROM date AT TIME ZONE $4)::int, SUM(amount), COUNT(*)
		FROM %s
		WHERE user_id = $1 AND date BETWEEN $2 AND $3
		GROUP BY 1, 2
		ORDER BY 1, 2`, table)
	rows, err := r.db.QueryContext(ctx, query, userID, w.Start, w.End, zoneName(w))
	if err != nil {
		return nil, fmt.Errorf("failed to get %s monthly trend: %w", kind, err)
	}
	defer rows.Close()

	var raw []models.MonthlyTotal
	for rows.Next() {
		var m models.MonthlyTotal
		if err := rows.Scan(&m.Year, &m.Month, &m.Total, &m.Count); err != nil {
			return nil, fmt.Errorf("failed to scan monthly total: %w", err)
		}
		raw = append(raw, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read monthly trend: %w", err)
	}
	return aggregate.FillMonths(raw, w), nil
}

// WeekdayPattern returns expense totals per weekday (1 = Sunday) over the trailing months
func (r *Repository) WeekdayPattern(ctx context.Context, userID int64, monthsBack int, asOf time.Time) ([]models.WeekdayTotal, error) {
	w := models.TrailingMonthsToDate(models.CalendarTime(asOf), monthsBack)
	query := `
		SELECT EXTRACT(DOW FROM date AT TIME ZONE $4)::int + 1, SUM(amount), COUNT(*)
		FROM finance.expenses
		WHERE user_id = $1 AND date BETWEEN $2 AND $3
		GROUP BY 1`
	rows, err := r.db.QueryContext(ctx, query, userID, w.Start, w.End, zoneName(w))
	if err != nil {
		return nil, fmt.Errorf("failed to get weekday pattern: %w", err)
	}
	defer rows.Close()

	var raw []models.WeekdayTotal
	for rows.Next() {
		var d models.WeekdayTotal
		if err := rows.Scan(&d.Weekday, &d.Total, &d.Count); err != nil {
			return nil, fmt.Errorf("failed to scan weekday total: %w", err)
		}
		raw = append(raw, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read weekday pattern: %w", err)
	}
	return aggregate.FillWeekdays(raw, w), nil
}

// DailyTotals returns one total per calendar day of the given month
func (r *Repository) DailyTotals(ctx context.Context, userID int64, kind models.RecordKind, year int, month time.Month, loc *time.Location) ([]models.DailyTotal, error) {
	table, _, err := recordSource(kind)
	if err != nil {
		return nil, err
	}
	w := models.MonthWindow(time.Date(year, month, 1, 0, 0, 0, 0, models.CalendarLocation(loc)))
	query := fmt.Sprintf(`
		SELECT EXTRACT(DAY FROM date AT TIME ZONE $4)::int, SUM(amount), COUNT(*)
		FROM %s
		WHERE user_id = $1 AND date BETWEEN $2 AND $3
		GROUP BY 1`, table)
	rows, err := r.db.QueryContext(ctx, query, userID, w.Start, w.End, zoneName(w))
	if err != nil {
		return nil, fmt.Errorf("failed to get %s daily totals: %w", kind, err)
	}
	defer rows.Close()

	var raw []models.DailyTotal
	for rows.Next() {
		var d models.DailyTotal
		if err := rows.Scan(&d.Day, &d.Total, &d.Count); err != nil {
			return nil, fmt.Errorf("failed to scan daily total: %w", err)
		}
		raw = append(raw, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read daily totals: %w", err)
	}
	return aggregate.FillDays(raw, w.Start), nil
}

// FlaggedExpenseTotal sums recurring or user-flagged unnecessary expenses inside the window
func (r *Repository) FlaggedExpenseTotal(ctx context.Context, userID int64, w models.Window, flag models.ExpenseFlag) (models.PeriodTotal, error) {
	var cond string
	switch flag {
	case models.FlagRecurring:
		cond = "is_recurring"
	case models.FlagUnnecessary:
		cond = "NOT is_necessary"
	default:
		return models.PeriodTotal{}, fmt.Errorf("unknown expense flag %q", flag)
	}
	query := `
		SELECT COALESCE(SUM(amount), 0), COUNT(*)
		FROM finance.expenses
		WHERE user_id = $1 AND date BETWEEN $2 AND $3 AND ` + cond
	res := models.PeriodTotal{}
	if err := r.db.QueryRowContext(ctx, query, userID, w.Start, w.End).Scan(&res.Total, &res.Count); err != nil {
		return models.PeriodTotal{}, fmt.Errorf("failed to get %s expense total: %w", flag, err)
	}
	return res, nil
}

// ActiveBudgets returns the budgets whose period contains at
func (r *Repository) ActiveBudgets(ctx context.Context, userID int64, at time.Time) ([]models.Budget, error) {
	query := `
		SELECT id, user_id, category, limit_amount, spent, start_date, end_date,
		       warning_threshold, critical_threshold, alert_state, alert_period_start, last_alert_at
		FROM finance.budgets
		WHERE user_id = $1 AND start_date <= $2 AND end_date >= $2
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, userID, at)
	if err != nil {
		return nil, fmt.Errorf("failed to get active budgets: %w", err)
	}
	defer rows.Close()

	var budgets []models.Budget
	for rows.Next() {
		var (
			b           models.Budget
			category    string
			state       string
			periodStart sql.NullTime
			lastAlert   sql.NullTime
		)
		err := rows.Scan(&b.ID, &b.UserID, &category, &b.Limit, &b.Spent, &b.StartDate, &b.EndDate,
			&b.WarningThreshold, &b.CriticalThreshold, &state, &periodStart, &lastAlert)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		b.Category = models.ParseCategory(category)
		b.Alert.State = models.AlertState(state)
		if periodStart.Valid {
			b.Alert.PeriodStart = periodStart.Time
		}
		if lastAlert.Valid {
			t := lastAlert.Time
			b.Alert.LastAlertAt = &t
		}
		budgets = append(budgets, b.WithDefaults())
	}
	return budgets, rows.Err()
}

// ActiveGoals returns the user's savings goals with status active
func (r *Repository) ActiveGoals(ctx context.Context, userID int64) ([]models.SavingsGoal, error) {
	query := `
		SELECT id, user_id, name, category, target_amount, current_amount, target_date, status
		FROM finance.savings_goals
		WHERE user_id = $1 AND status = 'active'
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active goals: %w", err)
	}
	defer rows.Close()

	var goals []models.SavingsGoal
	for rows.Next() {
		var g models.SavingsGoal
		if err := rows.Scan(&g.ID, &g.UserID, &g.Name, &g.Category, &g.TargetAmount, &g.CurrentAmount, &g.TargetDate, &g.Status); err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// ActiveInvestments returns the user's investments with status active
func (r *Repository) ActiveInvestments(ctx context.Context, userID int64) ([]models.Investment, error) {
	query := `
		SELECT id, user_id, name, type, invested_amount, current_value, status
		FROM finance.investments
		WHERE user_id = $1 AND status = 'active'
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active investments: %w", err)
	}
	defer rows.Close()

	var investments []models.Investment
	for rows.Next() {
		var i models.Investment
		if err := rows.Scan(&i.ID, &i.UserID, &i.Name, &i.Type, &i.InvestedAmount, &i.CurrentValue, &i.Status); err != nil {
			return nil, fmt.Errorf("failed to scan investment: %w", err)
		}
		investments = append(investments, i)
	}
	return investments, rows.Err()
}

// UserProfile retrieves the user's income and risk profile
func (r *Repository) UserProfile(ctx context.Context, userID int64) (*models.UserProfile, error) {
	p := &models.UserProfile{}
	query := `
		SELECT id, email, username, monthly_income, risk_tolerance
		FROM finance.users
		WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, userID).
		Scan(&p.ID, &p.Email, &p.Username, &p.MonthlyIncome, &p.RiskTolerance)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return p, nil
}

// UserIDs lists every user, for batch sweeps
func (r *Repository) UserIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM finance.users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// TransitionAlert moves a budget's alert mark from one value to another only if
// the stored mark still equals from. The notification, when given, is written
// in the same transaction. It returns false when another run changed the mark first.
func (r *Repository) TransitionAlert(ctx context.Context, budgetID int64, from, to models.AlertMark, n *models.Notification) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin alert transition: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE finance.budgets
		SET alert_state = $1, alert_period_start = $2, last_alert_at = $3
		WHERE id = $4 AND alert_state = $5 AND alert_period_start IS NOT DISTINCT FROM $6`
	res, err := tx.ExecContext(ctx, query,
		string(stateOrNone(to.State)), nullTime(to.PeriodStart), nullTimePtr(to.LastAlertAt),
		budgetID, string(stateOrNone(from.State)), nullTime(from.PeriodStart))
	if err != nil {
		return false, fmt.Errorf("failed to update alert state: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	if n != nil {
		if _, err := insertNotification(ctx, tx, n); err != nil {
			return false, err
		}
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit alert transition: %w", err)
	}
	return true, nil
}

// CreateNotification stores a notification for the delivery collaborator. It
// reports false when a notification with the same dedup key already exists.
func (r *Repository) CreateNotification(ctx context.Context, n *models.Notification) (bool, error) {
	return insertNotification(ctx, r.db, n)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertNotification(ctx context.Context, db execer, n *models.Notification) (bool, error) {
	data, err := json.Marshal(n.Data)
	if err != nil {
		return false, fmt.Errorf("failed to encode notification data: %w", err)
	}
	// NULL keys never conflict, so only keyed notifications are deduplicated
	query := `
		INSERT INTO finance.notifications (id, user_id, type, title, message, priority, data, created_at, dedup_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, dedup_key) DO NOTHING`
	dedup := sql.NullString{String: n.DedupKey, Valid: n.DedupKey != ""}
	res, err := db.ExecContext(ctx, query, n.ID, n.UserID, string(n.Type), n.Title, n.Message, string(n.Priority), data, n.CreatedAt, dedup)
	if err != nil {
		return false, fmt.Errorf("failed to create notification: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

// zoneName is the IANA name Postgres buckets a window's records in
func zoneName(w models.Window) string {
	return w.Start.Location().String()
}

func stateOrNone(s models.AlertState) models.AlertState {
	if s == "" {
		return models.AlertNone
	}
	return s
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func nullTimePtr(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return nullTime(*t)
}
