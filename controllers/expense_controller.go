package controllers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"rental-backend/models"
	"rental-backend/services"
	"rental-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type ExpenseController struct {
	Expenses *services.ExpenseService
}

func NewExpenseController(expenses *services.ExpenseService) *ExpenseController {
	return &ExpenseController{Expenses: expenses}
}

// GET /api/expenses?building=A&category=plumbing
func (ec *ExpenseController) GetExpenses(c *gin.Context) {
	expenses, err := ec.Expenses.List(c.Query("building"), c.Query("category"))
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to load expenses")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, expenses)
}

type createExpensePayload struct {
	BuildingName string          `json:"building_name" binding:"required"`
	Category     string          `json:"category"`
	Amount       decimal.Decimal `json:"amount"`
	Date         string          `json:"date"`
	Description  string          `json:"description"`
	IsPaid       bool            `json:"is_paid"`
}

// POST /api/expenses
func (ec *ExpenseController) CreateExpense(c *gin.Context) {
	var payload createExpensePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	date := time.Now().UTC()
	if payload.Date != "" {
		t, err := utils.ParseDate(payload.Date)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, err.Error())
			return
		}
		date = t
	}

	expense := models.MaintenanceExpense{
		BuildingName: strings.TrimSpace(payload.BuildingName),
		Category:     payload.Category,
		Amount:       payload.Amount,
		Date:         date,
		Description:  payload.Description,
		IsPaid:       payload.IsPaid,
	}

	if err := ec.Expenses.Create(&expense); err != nil {
		if strings.HasPrefix(err.Error(), "validation:") {
			utils.JSONError(c, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("❌ expense create failed: %v", err)
		utils.JSONError(c, http.StatusInternalServerError, "database error")
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, expense)
}

// PATCH /api/expenses/:id
func (ec *ExpenseController) UpdateExpense(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := ec.Expenses.Update(id, updates); err != nil {
		switch {
		case errors.Is(err, services.ErrExpenseNotFound):
			utils.JSONError(c, http.StatusNotFound, "expense not found")
		case strings.HasPrefix(err.Error(), "validation:"):
			utils.JSONError(c, http.StatusBadRequest, err.Error())
		default:
			log.Printf("❌ expense update failed: %v", err)
			utils.JSONError(c, http.StatusInternalServerError, "update failed")
		}
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"message": "expense updated"})
}

// DELETE /api/expenses/:id
func (ec *ExpenseController) DeleteExpense(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := ec.Expenses.Delete(id); err != nil {
		if errors.Is(err, services.ErrExpenseNotFound) {
			utils.JSONError(c, http.StatusNotFound, "expense not found")
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to delete expense")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"message": "expense deleted"})
}
