package service

import (
	"context"
	"time"

	"ieum/internal/apperr"
	"ieum/internal/model"
	"ieum/internal/repo"
	"ieum/internal/validation"

	"github.com/google/uuid"
)

const defaultExpensePageSize = 50

const (
	FinanceBudgetUpdated = "BUDGET_UPDATED"
	FinanceExpenseAdded  = "EXPENSE_ADDED"
	FinanceExpenseUpdate = "EXPENSE_UPDATED"
	FinanceExpenseDelete = "EXPENSE_DELETED"
)

type CreateExpenseRequest struct {
	Amount      int64   `json:"amount" validate:"gt=0"`
	Category    string  `json:"category" validate:"required,oneof=FOOD CAFE DATE TRANSPORT SHOPPING TRAVEL GIFT CULTURE OTHER"`
	Description *string `json:"description" validate:"omitempty,max=200"`
	Date        string  `json:"date" validate:"required"`
	PaidBy      string  `json:"paidBy" validate:"required,oneof=ME PARTNER TOGETHER"`
}

type UpdateExpenseRequest struct {
	Amount      *int64  `json:"amount" validate:"omitempty,gt=0"`
	Category    *string `json:"category" validate:"omitempty,oneof=FOOD CAFE DATE TRANSPORT SHOPPING TRAVEL GIFT CULTURE OTHER"`
	Description *string `json:"description" validate:"omitempty,max=200"`
	Date        *string `json:"date"`
	PaidBy      *string `json:"paidBy" validate:"omitempty,oneof=ME PARTNER TOGETHER"`
}

type ExpenseResponse struct {
	ID          uuid.UUID             `json:"id"`
	Amount      int64                 `json:"amount"`
	Category    model.ExpenseCategory `json:"category"`
	Description *string               `json:"description"`
	Date        string                `json:"date"`
	PaidBy      model.PaidByType      `json:"paidBy"`
	CreatedByID uuid.UUID             `json:"createdById"`
	CreatedAt   time.Time             `json:"createdAt"`
}

func NewExpenseResponse(e *model.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          e.ID,
		Amount:      e.Amount,
		Category:    e.Category,
		Description: e.Description,
		Date:        formatDate(e.Date),
		PaidBy:      e.PaidBy,
		CreatedByID: e.CreatedByID,
		CreatedAt:   e.CreatedAt,
	}
}

type ExpenseListResponse struct {
	Expenses    []ExpenseResponse `json:"expenses"`
	TotalAmount int64             `json:"totalAmount"`
	TotalCount  int64             `json:"totalCount"`
	Page        int               `json:"page"`
	Size        int               `json:"size"`
}

type SetBudgetRequest struct {
	TotalBudget     int64            `json:"totalBudget" validate:"gte=0"`
	CategoryBudgets map[string]int64 `json:"categoryBudgets" validate:"omitempty,dive,keys,oneof=FOOD CAFE DATE TRANSPORT SHOPPING TRAVEL GIFT CULTURE OTHER,endkeys,gte=0"`
}

type BudgetResponse struct {
	ID              uuid.UUID        `json:"id"`
	YearMonth       string           `json:"yearMonth"`
	TotalBudget     int64            `json:"totalBudget"`
	CategoryBudgets map[string]int64 `json:"categoryBudgets"`
	TotalSpent      int64            `json:"totalSpent"`
	CategorySpent   map[string]int64 `json:"categorySpent"`
	RemainingBudget int64            `json:"remainingBudget"`
}

// FinanceService records expenses and monthly budgets. Mutations are announced on the finance topic.
type FinanceService struct {
	Deps
	Expenses repo.ExpenseRepository
	Budgets  repo.BudgetRepository
}

func NewFinanceService(d Deps, expenses repo.ExpenseRepository, budgets repo.BudgetRepository) *FinanceService {
	return &FinanceService{Deps: d, Expenses: expenses, Budgets: budgets}
}

// monthRange returns [first day, first day of next month) for a "YYYY-MM" value.
func monthRange(yearMonth string) (time.Time, time.Time, error) {
	if !validation.IsYearMonth(yearMonth) {
		return time.Time{}, time.Time{}, apperr.BadRequest("Invalid yearMonth %q, expected YYYY-MM", yearMonth)
	}
	from, err := time.Parse("2006-01", yearMonth)
	if err != nil {
		return time.Time{}, time.Time{}, apperr.BadRequest("Invalid yearMonth %q, expected YYYY-MM", yearMonth)
	}
	return from, from.AddDate(0, 1, 0), nil
}

func (s *FinanceService) CreateExpense(ctx context.Context, userID uuid.UUID, req CreateExpenseRequest) (*ExpenseResponse, error) {
	c, err := s.completeCoupleOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	date, err := ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	e := &model.Expense{
		CoupleID:    c.ID,
		CreatedByID: userID,
		Amount:      req.Amount,
		Category:    model.ExpenseCategory(req.Category),
		Description: req.Description,
		Date:        date,
		PaidBy:      model.PaidByType(req.PaidBy),
	}
	if err := s.Expenses.CreateExpense(ctx, e); err != nil {
		return nil, err
	}
	s.announceExpense(ctx, FinanceExpenseAdded, e, userID)
	resp := NewExpenseResponse(e)
	return &resp, nil
}

// ListExpenses returns the whole month when yearMonth is set, else one page newest first.
func (s *FinanceService) ListExpenses(ctx context.Context, userID uuid.UUID, yearMonth string, page, size int) (*ExpenseListResponse, error) {
	c, err := s.completeCoupleOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := PageRequest(page, size, defaultExpensePageSize)

	var (
		expenses []model.Expense
		total    int64
	)
	if yearMonth != "" {
		from, to, err := monthRange(yearMonth)
		if err != nil {
			return nil, err
		}
		if expenses, err = s.Expenses.ListExpensesInRange(ctx, c.ID, from, to); err != nil {
			return nil, err
		}
		total = int64(len(expenses))
	} else if expenses, total, err = s.Expenses.ListExpenses(ctx, c.ID, p); err != nil {
		return nil, err
	}

	out := &ExpenseListResponse{Expenses: make([]ExpenseResponse, 0, len(expenses)), TotalCount: total, Page: p.Number, Size: p.Size}
	for i := range expenses {
		out.TotalAmount += expenses[i].Amount
		out.Expenses = append(out.Expenses, NewExpenseResponse(&expenses[i]))
	}
	return out, nil
}

func (s *FinanceService) GetExpense(ctx context.Context, userID, id uuid.UUID) (*ExpenseResponse, error) {
	c, err := s.completeCoupleOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	e, err := s.Expenses.GetExpense(ctx, c.ID, id)
	if err != nil {
		return nil, notFound(err, "Expense not found")
	}
	resp := NewExpenseResponse(e)
	return &resp, nil
}

func (s *FinanceService) UpdateExpense(ctx context.Context, userID, id uuid.UUID, req UpdateExpenseRequest) (*ExpenseResponse, error) {
	c, err := s.completeCoupleOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	e, err := s.Expenses.GetExpense(ctx, c.ID, id)
	if err != nil {
		return nil, notFound(err, "Expense not found")
	}

	if req.Amount != nil {
		e.Amount = *req.Amount
	}
	if req.Category != nil {
		e.Category = model.ExpenseCategory(*req.Category)
	}
	if req.Description != nil {
		e.Description = req.Description
	}
	if req.Date != nil {
		if e.Date, err = ParseDate(*req.Date); err != nil {
			return nil, err
		}
	}
	if req.PaidBy != nil {
		e.PaidBy = model.PaidByType(*req.PaidBy)
	}

	if err := s.Expenses.SaveExpense(ctx, e); err != nil {
		return nil, err
	}
	s.announceExpense(ctx, FinanceExpenseUpdate, e, userID)
	resp := NewExpenseResponse(e)
	return &resp, nil
}

func (s *FinanceService) DeleteExpense(ctx context.Context, userID, id uuid.UUID) error {
	c, err := s.completeCoupleOf(ctx, userID)
	if err != nil {
		return err
	}
	e, err := s.Expenses.GetExpense(ctx, c.ID, id)
	if err != nil {
		return notFound(err, "Expense not found")
	}
	if err := s.Expenses.DeleteExpense(ctx, c.ID, id); err != nil {
		return notFound(err, "Expense not found")
	}
	s.announceExpense(ctx, FinanceExpenseDelete, e, userID)
	return nil
}

func (s *FinanceService) SetBudget(ctx context.Context, userID uuid.UUID, yearMonth string, req SetBudgetRequest) (*BudgetResponse, error) {
	if _, _, err := monthRange(yearMonth); err != nil {
		return nil, err
	}
	c, err := s.completeCoupleOf(ctx, userID)
	if err != nil {
		return nil, err
	}

	b, err := s.Budgets.UpsertBudget(ctx, &model.Budget{
		CoupleID:        c.ID,
		YearMonth:       yearMonth,
		TotalBudget:     req.TotalBudget,
		CategoryBudgets: req.CategoryBudgets,
	})
	if err != nil {
		return nil, err
	}
	resp, err := s.budgetResponse(ctx, b)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, c.ID, AreaFinance, FinanceSyncMessage{
		EventType: FinanceBudgetUpdated,
		Budget:    &BudgetData{MonthlyBudget: b.TotalBudget, Month: b.YearMonth},
		UserID:    userID,
		Timestamp: s.now(),
	})
	return resp, nil
}

func (s *FinanceService) GetBudget(ctx context.Context, userID uuid.UUID, yearMonth string) (*BudgetResponse, error) {
	if _, _, err := monthRange(yearMonth); err != nil {
		return nil, err
	}
	c, err := s.completeCoupleOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	b, err := s.Budgets.GetBudget(ctx, c.ID, yearMonth)
	if err != nil {
		return nil, notFound(err, "Budget not found for "+yearMonth)
	}
	return s.budgetResponse(ctx, b)
}

// budgetResponse sums the live expenses dated inside the budget month.
func (s *FinanceService) budgetResponse(ctx context.Context, b *model.Budget) (*BudgetResponse, error) {
	from, to, err := monthRange(b.YearMonth)
	if err != nil {
		return nil, err
	}
	expenses, err := s.Expenses.ListExpensesInRange(ctx, b.CoupleID, from, to)
	if err != nil {
		return nil, err
	}

	resp := &BudgetResponse{
		ID:              b.ID,
		YearMonth:       b.YearMonth,
		TotalBudget:     b.TotalBudget,
		CategoryBudgets: b.CategoryBudgets,
		CategorySpent:   make(map[string]int64),
	}
	for _, e := range expenses {
		resp.TotalSpent += e.Amount
		resp.CategorySpent[string(e.Category)] += e.Amount
	}
	resp.RemainingBudget = resp.TotalBudget - resp.TotalSpent
	return resp, nil
}

func (s *FinanceService) announceExpense(ctx context.Context, eventType string, e *model.Expense, userID uuid.UUID) {
	title := ""
	if e.Description != nil {
		title = *e.Description
	}
	s.publish(ctx, e.CoupleID, AreaFinance, FinanceSyncMessage{
		EventType: eventType,
		Expense: &ExpenseData{
			ID:       e.ID,
			Title:    title,
			Category: string(e.Category),
			Amount:   e.Amount,
			Date:     formatDate(e.Date),
		},
		UserID:    userID,
		Timestamp: s.now(),
	})
}
