package controllers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"rental-backend/services"
	"rental-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type BillingController struct {
	Billing *services.BillingService
}

func NewBillingController(billing *services.BillingService) *BillingController {
	return &BillingController{Billing: billing}
}

// GET /api/bills?status=pending
func (bc *BillingController) GetBills(c *gin.Context) {
	bills, err := bc.Billing.List(c.Query("status"))
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to load bills")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, bills)
}

// GET /api/bills/:id
func (bc *BillingController) GetBill(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	bill, err := bc.Billing.GetByID(id)
	if err != nil {
		if errors.Is(err, services.ErrBillNotFound) {
			utils.JSONError(c, http.StatusNotFound, "bill not found")
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to load bill")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, bill)
}

type upsertBillPayload struct {
	RoomID          uint            `json:"room_id" binding:"required"`
	Month           string          `json:"month" binding:"required"`
	StartingReading decimal.Decimal `json:"starting_reading"`
	EndingReading   decimal.Decimal `json:"ending_reading"`
	RatePerUnit     decimal.Decimal `json:"rate_per_unit"`
	DueDate         string          `json:"due_date"`
	GuestID         *uint           `json:"guest_id"`
	Notes           string          `json:"notes"`
}

// POST /api/bills — submits meter readings; units and amount are always
// derived server-side.
func (bc *BillingController) UpsertBill(c *gin.Context) {
	var payload upsertBillPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	in := services.BillInput{
		RoomID:          payload.RoomID,
		Month:           payload.Month,
		StartingReading: payload.StartingReading,
		EndingReading:   payload.EndingReading,
		RatePerUnit:     payload.RatePerUnit,
		GuestID:         payload.GuestID,
		Notes:           payload.Notes,
	}
	if payload.DueDate != "" {
		due, err := utils.ParseDate(payload.DueDate)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, err.Error())
			return
		}
		in.DueDate = &due
	}

	bill, created, err := bc.Billing.UpsertBill(in)
	if err != nil {
		mapBillingError(c, err)
		return
	}

	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}
	utils.JSONSuccess(c, code, bill)
}

type billPaymentPayload struct {
	Amount   decimal.Decimal `json:"amount"`
	PaidDate string          `json:"paid_date"`
}

// POST /api/bills/:id/payments
func (bc *BillingController) RecordBillPayment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var payload billPaymentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	paidDate := time.Now().UTC()
	if payload.PaidDate != "" {
		t, err := utils.ParseDate(payload.PaidDate)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, err.Error())
			return
		}
		paidDate = t
	}

	bill, err := bc.Billing.RecordBillPayment(id, payload.Amount, paidDate)
	if err != nil {
		mapBillingError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, bill)
}

// GET /api/rooms/:id/bill-history
func (bc *BillingController) GetBillHistory(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	history, err := bc.Billing.HistoryByRoom(id)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to load bill history")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, history)
}

// POST /api/bills/reconcile?fix=true
func (bc *BillingController) ReconcileBills(c *gin.Context) {
	autofix := c.Query("fix") == "true"
	results, err := bc.Billing.ReconcileAllBills(autofix)
	if err != nil {
		log.Printf("❌ bill reconciliation failed: %v", err)
		utils.JSONError(c, http.StatusInternalServerError, "reconciliation failed")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"mismatches": results})
}

// POST /api/bills/mark-overdue
func (bc *BillingController) MarkOverdueBills(c *gin.Context) {
	n, err := bc.Billing.MarkOverdueBills(time.Now().UTC())
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "overdue sweep failed")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"bills_marked": n})
}

func mapBillingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrBillNotFound),
		errors.Is(err, services.ErrRoomNotFound):
		utils.JSONError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrNegativeConsumption),
		errors.Is(err, services.ErrInvalidRate),
		errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrOverpayment):
		utils.JSONError(c, http.StatusBadRequest, err.Error())
	case strings.Contains(err.Error(), "invalid month") ||
		strings.Contains(err.Error(), "month is required"):
		utils.JSONError(c, http.StatusBadRequest, err.Error())
	default:
		log.Printf("❌ billing operation failed: %v", err)
		utils.JSONError(c, http.StatusInternalServerError, "database error")
	}
}
