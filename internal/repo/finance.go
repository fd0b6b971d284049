package repo

import (
	"context"
	"time"

	"ieum/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ExpenseRepository interface {
	CreateExpense(ctx context.Context, e *model.Expense) error
	GetExpense(ctx context.Context, coupleID, id uuid.UUID) (*model.Expense, error)
	ListExpenses(ctx context.Context, coupleID uuid.UUID, page Page) ([]model.Expense, int64, error)
	// ListExpensesInRange returns expenses dated in [from, to), newest first.
	ListExpensesInRange(ctx context.Context, coupleID uuid.UUID, from, to time.Time) ([]model.Expense, error)
	SaveExpense(ctx context.Context, e *model.Expense) error
	DeleteExpense(ctx context.Context, coupleID, id uuid.UUID) error
}

type expenseRepo struct {
	scoped[model.Expense]
}

func NewExpenseRepository(db *gorm.DB) ExpenseRepository {
	return &expenseRepo{scoped[model.Expense]{db: db}}
}

func (r *expenseRepo) CreateExpense(ctx context.Context, e *model.Expense) error {
	return r.create(ctx, e)
}

func (r *expenseRepo) GetExpense(ctx context.Context, coupleID, id uuid.UUID) (*model.Expense, error) {
	return r.get(ctx, coupleID, id)
}

func (r *expenseRepo) ListExpenses(ctx context.Context, coupleID uuid.UUID, page Page) ([]model.Expense, int64, error) {
	return r.page(ctx, coupleID, "date DESC", page)
}

func (r *expenseRepo) ListExpensesInRange(ctx context.Context, coupleID uuid.UUID, from, to time.Time) ([]model.Expense, error) {
	var out []model.Expense
	err := conn(ctx, r.db).
		Where("couple_id = ? AND date >= ? AND date < ?", coupleID, from, to).
		Order("date DESC").
		Find(&out).Error
	return out, err
}

func (r *expenseRepo) SaveExpense(ctx context.Context, e *model.Expense) error {
	return r.save(ctx, e)
}

func (r *expenseRepo) DeleteExpense(ctx context.Context, coupleID, id uuid.UUID) error {
	return r.delete(ctx, coupleID, id)
}

type BudgetRepository interface {
	GetBudget(ctx context.Context, coupleID uuid.UUID, yearMonth string) (*model.Budget, error)
	// UpsertBudget inserts or replaces the budget of (couple, yearMonth).
	UpsertBudget(ctx context.Context, b *model.Budget) (*model.Budget, error)
}

type budgetRepo struct {
	db *gorm.DB
}

func NewBudgetRepository(db *gorm.DB) BudgetRepository {
	return &budgetRepo{db: db}
}

func (r *budgetRepo) GetBudget(ctx context.Context, coupleID uuid.UUID, yearMonth string) (*model.Budget, error) {
	var b model.Budget
	err := conn(ctx, r.db).Where("couple_id = ? AND year_month = ?", coupleID, yearMonth).First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *budgetRepo) UpsertBudget(ctx context.Context, b *model.Budget) (*model.Budget, error) {
	err := conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "couple_id"}, {Name: "year_month"}},
		DoUpdates: clause.AssignmentColumns([]string{"total_budget", "category_budgets", "updated_at"}),
	}).Create(b).Error
	if err != nil {
		return nil, err
	}
	return r.GetBudget(ctx, b.CoupleID, b.YearMonth)
}
