package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Expense amounts are whole won.
type Expense struct {
	ID          uuid.UUID       `gorm:"primaryKey;type:uuid"`
	CoupleID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_expense_couple_date,priority:1"`
	CreatedByID uuid.UUID       `gorm:"type:uuid;not null"`
	Amount      int64           `gorm:"not null"`
	Category    ExpenseCategory `gorm:"not null"`
	Description *string
	Date        time.Time  `gorm:"not null;index:idx_expense_couple_date,priority:2"`
	PaidBy      PaidByType `gorm:"not null;default:'ME'"`

	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (e *Expense) BeforeCreate(_ *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// Budget is unique per couple and "YYYY-MM" month.
type Budget struct {
	ID              uuid.UUID        `gorm:"primaryKey;type:uuid"`
	CoupleID        uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_budget_couple_month,priority:1"`
	YearMonth       string           `gorm:"size:7;not null;uniqueIndex:idx_budget_couple_month,priority:2"`
	TotalBudget     int64            `gorm:"not null"`
	CategoryBudgets map[string]int64 `gorm:"serializer:json"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (b *Budget) BeforeCreate(_ *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
