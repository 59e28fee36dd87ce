package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Expense categories
const (
	ExpensePlumbing   = "plumbing"
	ExpenseElectrical = "electrical"
	ExpensePainting   = "painting"
	ExpenseCarpentry  = "carpentry"
	ExpenseCleaning   = "cleaning"
	ExpenseRepairs    = "repairs"
	ExpenseSecurity   = "security"
	ExpenseInternet   = "internet"
	ExpenseOther      = "other"
)

func IsValidExpenseCategory(c string) bool {
	switch c {
	case ExpensePlumbing, ExpenseElectrical, ExpensePainting, ExpenseCarpentry,
		ExpenseCleaning, ExpenseRepairs, ExpenseSecurity, ExpenseInternet, ExpenseOther:
		return true
	}
	return false
}

// MaintenanceExpense is a standalone ledger entry per building; it has no
// relation to the room/guest state machine.
type MaintenanceExpense struct {
	gorm.Model

	BuildingName string          `json:"building_name" gorm:"size:50"`
	Category     string          `json:"category" gorm:"size:20;default:other"`
	Amount       decimal.Decimal `json:"amount" gorm:"type:decimal(10,2)"`
	Date         time.Time       `json:"date" gorm:"type:date"`
	Description  string          `json:"description" gorm:"type:text"`
	IsPaid       bool            `json:"is_paid" gorm:"default:true"`
}
