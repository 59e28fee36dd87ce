package services

import (
	"errors"
	"fmt"

	"rental-backend/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrExpenseNotFound = errors.New("expense_not_found")

type ExpenseService struct {
	DB *gorm.DB
}

func NewExpenseService(db *gorm.DB) *ExpenseService {
	return &ExpenseService{DB: db}
}

func (s *ExpenseService) Create(expense *models.MaintenanceExpense) error {
	if expense.BuildingName == "" {
		return errors.New("validation: building name is required")
	}
	if expense.Category == "" {
		expense.Category = models.ExpenseOther
	}
	if !models.IsValidExpenseCategory(expense.Category) {
		return fmt.Errorf("validation: invalid expense category %q", expense.Category)
	}
	if !expense.Amount.IsPositive() {
		return errors.New("validation: amount must be greater than 0")
	}
	return s.DB.Create(expense).Error
}

// List returns expenses newest first, optionally filtered by building
// and/or category.
func (s *ExpenseService) List(building, category string) ([]models.MaintenanceExpense, error) {
	q := s.DB.Order("date DESC")
	if building != "" {
		q = q.Where("building_name = ?", building)
	}
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var expenses []models.MaintenanceExpense
	if err := q.Find(&expenses).Error; err != nil {
		return nil, err
	}
	return expenses, nil
}

func (s *ExpenseService) Update(id uint, updates map[string]interface{}) error {
	delete(updates, "id")
	delete(updates, "created_at")
	delete(updates, "updated_at")
	delete(updates, "deleted_at")

	if cat, ok := updates["category"].(string); ok && !models.IsValidExpenseCategory(cat) {
		return fmt.Errorf("validation: invalid expense category %q", cat)
	}

	res := s.DB.Model(&models.MaintenanceExpense{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrExpenseNotFound
	}
	return nil
}

func (s *ExpenseService) Delete(id uint) error {
	res := s.DB.Delete(&models.MaintenanceExpense{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrExpenseNotFound
	}
	return nil
}

// Total sums all expenses in Go with decimal arithmetic; driver-level SUM
// on decimal columns is not portable across the backends we run on.
func (s *ExpenseService) Total() (decimal.Decimal, error) {
	var expenses []models.MaintenanceExpense
	if err := s.DB.Find(&expenses).Error; err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for i := range expenses {
		total = total.Add(expenses[i].Amount)
	}
	return total, nil
}
