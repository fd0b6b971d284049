package service

import (
	"context"
	"testing"

	"ieum/internal/apperr"
	"ieum/internal/repo"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFinance(f *fixture) *FinanceService {
	return NewFinanceService(f.d, repo.NewExpenseRepository(f.db), repo.NewBudgetRepository(f.db))
}

func TestFinanceService_BudgetTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := newFinance(f)
	a, b, _ := f.pair(t)

	budget, err := svc.SetBudget(ctx, a.ID, "2024-05", SetBudgetRequest{
		TotalBudget:     500000,
		CategoryBudgets: map[string]int64{"FOOD": 200000},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(500000), budget.RemainingBudget)

	add := func(userID uuid.UUID, amount int64, category, date string) *ExpenseResponse {
		t.Helper()
		e, err := svc.CreateExpense(ctx, userID, CreateExpenseRequest{
			Amount: amount, Category: category, Date: date, PaidBy: "ME", Description: strPtr(category),
		})
		require.NoError(t, err)
		return e
	}
	add(a.ID, 30000, "FOOD", "2024-05-01")
	add(b.ID, 12000, "CAFE", "2024-05-31")
	deleted := add(a.ID, 99000, "FOOD", "2024-05-15")
	add(a.ID, 70000, "FOOD", "2024-06-01")
	require.NoError(t, svc.DeleteExpense(ctx, b.ID, deleted.ID))

	got, err := svc.GetBudget(ctx, b.ID, "2024-05")
	require.NoError(t, err)
	assert.Equal(t, int64(42000), got.TotalSpent)
	assert.Equal(t, int64(30000), got.CategorySpent["FOOD"])
	assert.Equal(t, int64(12000), got.CategorySpent["CAFE"])
	assert.Equal(t, int64(458000), got.RemainingBudget)

	month, err := svc.ListExpenses(ctx, a.ID, "2024-05", 0, 0)
	require.NoError(t, err)
	assert.Len(t, month.Expenses, 2)
	assert.Equal(t, int64(42000), month.TotalAmount)

	paged, err := svc.ListExpenses(ctx, a.ID, "", 0, 2)
	require.NoError(t, err)
	assert.Len(t, paged.Expenses, 2)
	assert.Equal(t, int64(3), paged.TotalCount)

	assert.Equal(t, []string{AreaFinance, AreaFinance, AreaFinance, AreaFinance, AreaFinance, AreaFinance}, f.bc.areas())
	first, ok := f.bc.Calls[0].Arguments.Get(3).(FinanceSyncMessage)
	require.True(t, ok)
	assert.Equal(t, FinanceBudgetUpdated, first.EventType)
	last, ok := f.bc.Calls[5].Arguments.Get(3).(FinanceSyncMessage)
	require.True(t, ok)
	assert.Equal(t, FinanceExpenseDelete, last.EventType)
}

func TestFinanceService_BudgetErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := newFinance(f)
	a, _, _ := f.pair(t)

	_, err := svc.GetBudget(ctx, a.ID, "2024-07")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.EqualError(t, err, "Budget not found for 2024-07")

	for _, ym := range []string{"2024-13", "24-01", "2024/01", ""} {
		_, err = svc.GetBudget(ctx, a.ID, ym)
		assert.True(t, apperr.Is(err, apperr.KindBadRequest), ym)
	}

	_, err = svc.ListExpenses(ctx, a.ID, "2024-1", 0, 0)
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))
}

func TestFinanceService_UpsertKeepsOneBudget(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := newFinance(f)
	a, b, _ := f.pair(t)

	first, err := svc.SetBudget(ctx, a.ID, "2024-05", SetBudgetRequest{TotalBudget: 100})
	require.NoError(t, err)
	second, err := svc.SetBudget(ctx, b.ID, "2024-05", SetBudgetRequest{TotalBudget: 300})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int64(300), second.TotalBudget)
}
