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

type PaymentController struct {
	Ledger *services.LedgerService
}

func NewPaymentController(ledger *services.LedgerService) *PaymentController {
	return &PaymentController{Ledger: ledger}
}

// GET /api/payments?status=partial
func (pc *PaymentController) GetPayments(c *gin.Context) {
	payments, err := pc.Ledger.List(c.Query("status"))
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to load payments")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, payments)
}

// GET /api/payments/:id
func (pc *PaymentController) GetPayment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	payment, err := pc.Ledger.GetByID(id)
	if err != nil {
		if errors.Is(err, services.ErrPaymentNotFound) {
			utils.JSONError(c, http.StatusNotFound, "payment not found")
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to load payment")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, payment)
}

type upsertPaymentPayload struct {
	RoomID     uint            `json:"room_id" binding:"required"`
	Month      string          `json:"month" binding:"required"`
	RentAmount decimal.Decimal `json:"rent_amount"`
	GuestID    *uint           `json:"guest_id"`
}

// POST /api/payments — creates the (room, month) rent header, or updates
// the rent snapshot when the row exists (idempotent upsert).
func (pc *PaymentController) UpsertMonthlyPayment(c *gin.Context) {
	var payload upsertPaymentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	payment, created, err := pc.Ledger.UpsertMonthlyPayment(payload.RoomID, payload.Month, payload.RentAmount, payload.GuestID)
	if err != nil {
		mapLedgerError(c, err)
		return
	}

	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}
	utils.JSONSuccess(c, code, payment)
}

type recordPaymentPayload struct {
	PaymentDate     string          `json:"payment_date" binding:"required"`
	PaymentAmount   decimal.Decimal `json:"payment_amount"`
	PaymentMethod   string          `json:"payment_method"`
	ReferenceNumber string          `json:"reference_number"`
	Notes           string          `json:"notes"`
}

// POST /api/payments/:id/records
func (pc *PaymentController) RecordPayment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var payload recordPaymentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	date, err := utils.ParseDate(payload.PaymentDate)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, err.Error())
		return
	}

	createdBy := ""
	if admin, exists := c.Get("currentAdmin"); exists {
		if a, okAdmin := admin.(*models.Admin); okAdmin {
			createdBy = a.Username
		}
	}

	payment, err := pc.Ledger.RecordPayment(id, date, payload.PaymentAmount,
		payload.PaymentMethod, payload.ReferenceNumber, payload.Notes, createdBy)
	if err != nil {
		mapLedgerError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, payment)
}

type updateRecordPayload struct {
	PaymentDate     string           `json:"payment_date"`
	PaymentAmount   *decimal.Decimal `json:"payment_amount"`
	PaymentMethod   string           `json:"payment_method"`
	ReferenceNumber string           `json:"reference_number"`
	Notes           string           `json:"notes"`
}

// PATCH /api/payment-records/:id
func (pc *PaymentController) UpdatePaymentRecord(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var payload updateRecordPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	var date *time.Time
	if payload.PaymentDate != "" {
		t, err := utils.ParseDate(payload.PaymentDate)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, err.Error())
			return
		}
		date = &t
	}

	payment, err := pc.Ledger.UpdateRecord(id, date, payload.PaymentAmount,
		payload.PaymentMethod, payload.ReferenceNumber, payload.Notes)
	if err != nil {
		mapLedgerError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, payment)
}

// DELETE /api/payment-records/:id
func (pc *PaymentController) DeletePaymentRecord(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	payment, err := pc.Ledger.DeleteRecord(id)
	if err != nil {
		mapLedgerError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, payment)
}

// GET /api/rooms/:id/payment-history
func (pc *PaymentController) GetPaymentHistory(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	history, err := pc.Ledger.HistoryByRoom(id)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to load payment history")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, history)
}

// POST /api/payments/reconcile?fix=true
func (pc *PaymentController) ReconcilePayments(c *gin.Context) {
	autofix := c.Query("fix") == "true"
	results, err := pc.Ledger.ReconcileAll(autofix)
	if err != nil {
		log.Printf("❌ ledger reconciliation failed: %v", err)
		utils.JSONError(c, http.StatusInternalServerError, "reconciliation failed")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"mismatches": results})
}

// POST /api/payments/mark-overdue
func (pc *PaymentController) MarkOverdue(c *gin.Context) {
	n, err := pc.Ledger.MarkOverdue(time.Now().UTC())
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "overdue sweep failed")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"payments_marked": n})
}

func mapLedgerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPaymentNotFound),
		errors.Is(err, services.ErrRecordNotFound),
		errors.Is(err, services.ErrRoomNotFound):
		utils.JSONError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrOverpayment),
		errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrInvalidRent):
		utils.JSONError(c, http.StatusBadRequest, err.Error())
	case strings.Contains(err.Error(), "invalid month") ||
		strings.Contains(err.Error(), "month is required") ||
		strings.Contains(err.Error(), "invalid_payment_method"):
		utils.JSONError(c, http.StatusBadRequest, err.Error())
	default:
		log.Printf("❌ ledger operation failed: %v", err)
		utils.JSONError(c, http.StatusInternalServerError, "database error")
	}
}
