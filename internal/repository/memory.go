package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Dan9191/finance-insights/internal/aggregate"
	"github.com/Dan9191/finance-insights/internal/models"
)

// MemoryStore implements Store with in-memory storage. It backs local runs
// (STORE=memory) and tests.
type MemoryStore struct {
	mu sync.RWMutex

	users         map[int64]*models.UserProfile
	incomes       map[int64][]models.IncomeRecord
	expenses      map[int64][]models.ExpenseRecord
	budgets       map[int64]*models.Budget
	goals         map[int64][]models.SavingsGoal
	investments   map[int64][]models.Investment
	notifications []models.Notification
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:       make(map[int64]*models.UserProfile),
		incomes:     make(map[int64][]models.IncomeRecord),
		expenses:    make(map[int64][]models.ExpenseRecord),
		budgets:     make(map[int64]*models.Budget),
		goals:       make(map[int64][]models.SavingsGoal),
		investments: make(map[int64][]models.Investment),
	}
}

// PutUser creates or replaces a user profile
func (m *MemoryStore) PutUser(p models.UserProfile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[p.ID] = &p
}

// AddIncome appends income records
func (m *MemoryStore) AddIncome(records ...models.IncomeRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range records {
		m.incomes[r.UserID] = append(m.incomes[r.UserID], r)
	}
}

// AddExpense appends expense records
func (m *MemoryStore) AddExpense(records ...models.ExpenseRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range records {
		m.expenses[r.UserID] = append(m.expenses[r.UserID], r)
	}
}

// PutBudget creates or replaces a budget, keeping any alert mark already stored
// when the incoming budget carries none
func (m *MemoryStore) PutBudget(b models.Budget) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.budgets[b.ID]; ok && b.Alert.State == "" {
		b.Alert = old.Alert
	}
	b = b.WithDefaults()
	m.budgets[b.ID] = &b
}

// PutGoal appends a savings goal
func (m *MemoryStore) PutGoal(g models.SavingsGoal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.goals[g.UserID] = append(m.goals[g.UserID], g)
}

// PutInvestment appends an investment
func (m *MemoryStore) PutInvestment(i models.Investment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.investments[i.UserID] = append(m.investments[i.UserID], i)
}

// Budget returns a copy of a stored budget
func (m *MemoryStore) Budget(id int64) (models.Budget, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.budgets[id]
	if !ok {
		return models.Budget{}, false
	}
	return *b, true
}

// Notifications returns the stored notifications of one user in creation order
func (m *MemoryStore) Notifications(userID int64) []models.Notification {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

func (m *MemoryStore) entries(userID int64, kind models.RecordKind) ([]aggregate.Entry, error) {
	switch kind {
	case models.KindIncome:
		return aggregate.FromIncome(m.incomes[userID]), nil
	case models.KindExpense:
		return aggregate.FromExpenses(m.expenses[userID]), nil
	}
	return nil, fmt.Errorf("unknown record kind %q", kind)
}

func (m *MemoryStore) PeriodTotal(_ context.Context, userID int64, kind models.RecordKind, w models.Window) (models.PeriodTotal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries, err := m.entries(userID, kind)
	if err != nil {
		return models.PeriodTotal{}, err
	}
	return aggregate.Sum(entries, w), nil
}

func (m *MemoryStore) GroupedTotal(_ context.Context, userID int64, kind models.RecordKind, w models.Window) ([]models.GroupTotal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries, err := m.entries(userID, kind)
	if err != nil {
		return nil, err
	}
	return aggregate.Group(entries, w), nil
}

func (m *MemoryStore) MonthlyTrend(_ context.Context, userID int64, kind models.RecordKind, monthsBack int, asOf time.Time) ([]models.MonthlyTotal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries, err := m.entries(userID, kind)
	if err != nil {
		return nil, err
	}
	return aggregate.ByMonth(entries, models.TrailingMonths(models.CalendarTime(asOf), monthsBack)), nil
}

func (m *MemoryStore) WeekdayPattern(_ context.Context, userID int64, monthsBack int, asOf time.Time) ([]models.WeekdayTotal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return aggregate.ByWeekday(aggregate.FromExpenses(m.expenses[userID]), models.TrailingMonthsToDate(models.CalendarTime(asOf), monthsBack)), nil
}

func (m *MemoryStore) DailyTotals(_ context.Context, userID int64, kind models.RecordKind, year int, month time.Month, loc *time.Location) ([]models.DailyTotal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries, err := m.entries(userID, kind)
	if err != nil {
		return nil, err
	}
	return aggregate.ByDay(entries, year, month, models.CalendarLocation(loc)), nil
}

func (m *MemoryStore) FlaggedExpenseTotal(_ context.Context, userID int64, w models.Window, flag models.ExpenseFlag) (models.PeriodTotal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var selected []models.ExpenseRecord
	for _, e := range m.expenses[userID] {
		switch flag {
		case models.FlagRecurring:
			if e.Recurring {
				selected = append(selected, e)
			}
		case models.FlagUnnecessary:
			if !e.Necessary {
				selected = append(selected, e)
			}
		default:
			return models.PeriodTotal{}, fmt.Errorf("unknown expense flag %q", flag)
		}
	}
	return aggregate.Sum(aggregate.FromExpenses(selected), w), nil
}

func (m *MemoryStore) ActiveBudgets(_ context.Context, userID int64, at time.Time) ([]models.Budget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Budget
	for _, b := range m.budgets {
		if b.UserID == userID && b.Period().Contains(at) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) ActiveGoals(_ context.Context, userID int64) ([]models.SavingsGoal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.SavingsGoal
	for _, g := range m.goals[userID] {
		if g.Status == models.GoalActive {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *MemoryStore) ActiveInvestments(_ context.Context, userID int64) ([]models.Investment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Investment
	for _, i := range m.investments[userID] {
		if i.Status == models.InvestmentActive {
			out = append(out, i)
		}
	}
	return out, nil
}

func (m *MemoryStore) UserProfile(_ context.Context, userID int64) (*models.UserProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (m *MemoryStore) UserIDs(_ context.Context) ([]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]int64, 0, len(m.users))
	for id := range m.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// TransitionAlert applies the conditional update under the store lock
func (m *MemoryStore) TransitionAlert(_ context.Context, budgetID int64, from, to models.AlertMark, n *models.Notification) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.budgets[budgetID]
	if !ok {
		return false, fmt.Errorf("budget %d: %w", budgetID, ErrNotFound)
	}
	if stateOrNone(b.Alert.State) != stateOrNone(from.State) || !b.Alert.PeriodStart.Equal(from.PeriodStart) {
		return false, nil
	}
	b.Alert = to
	if n != nil {
		m.notifications = append(m.notifications, *n)
	}
	return true, nil
}

func (m *MemoryStore) CreateNotification(_ context.Context, n *models.Notification) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n.DedupKey != "" {
		for _, existing := range m.notifications {
			if existing.UserID == n.UserID && existing.DedupKey == n.DedupKey {
				return false, nil
			}
		}
	}
	m.notifications = append(m.notifications, *n)
	return true, nil
}

var (
	_ Store = (*Repository)(nil)
	_ Store = (*MemoryStore)(nil)
)
