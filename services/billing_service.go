package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"rental-backend/models"
	"rental-backend/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrBillNotFound        = errors.New("bill_not_found")
	ErrNegativeConsumption = errors.New("ending_reading_below_starting_reading")
	ErrInvalidRate         = errors.New("rate_must_be_positive")
)

// BillingService derives electricity charges from meter readings. One
// bill per (room, month); a second submission for the same key updates
// the stored readings instead of creating a duplicate.
type BillingService struct {
	DB *gorm.DB
}

func NewBillingService(db *gorm.DB) *BillingService {
	return &BillingService{DB: db}
}

// BillInput carries validated primitives from the handler layer.
type BillInput struct {
	RoomID          uint
	Month           string
	StartingReading decimal.Decimal
	EndingReading   decimal.Decimal
	RatePerUnit     decimal.Decimal
	DueDate         *time.Time
	GuestID         *uint
	Notes           string
}

// UpsertBill computes units = end - start and amount = units * rate, then
// creates or updates the (room, month) row.
func (s *BillingService) UpsertBill(in BillInput) (*models.ElectricityBill, bool, error) {
	if in.EndingReading.LessThan(in.StartingReading) {
		return nil, false, ErrNegativeConsumption
	}
	if !in.RatePerUnit.IsPositive() {
		return nil, false, ErrInvalidRate
	}
	month, err := utils.ParseMonth(in.Month)
	if err != nil {
		return nil, false, err
	}

	var room models.Room
	if err := s.DB.First(&room, in.RoomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrRoomNotFound
		}
		return nil, false, fmt.Errorf("db error checking room %d: %w", in.RoomID, err)
	}

	units := in.EndingReading.Sub(in.StartingReading)
	amount := units.Mul(in.RatePerUnit)

	var bill models.ElectricityBill
	created := false
	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("room_id = ? AND month = ?", in.RoomID, month).First(&bill).Error
		switch {
		case err == nil:
			updates := map[string]interface{}{
				"starting_reading": in.StartingReading,
				"ending_reading":   in.EndingReading,
				"units_consumed":   units,
				"rate_per_unit":    in.RatePerUnit,
				"bill_amount":      amount,
			}
			if in.DueDate != nil {
				updates["due_date"] = *in.DueDate
			}
			if in.GuestID != nil {
				updates["guest_id"] = *in.GuestID
			}
			if in.Notes != "" {
				updates["notes"] = in.Notes
			}
			if err := tx.Model(&bill).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update bill: %w", err)
			}
			bill.StartingReading = in.StartingReading
			bill.EndingReading = in.EndingReading
			bill.UnitsConsumed = units
			bill.RatePerUnit = in.RatePerUnit
			bill.BillAmount = amount
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			bill = models.ElectricityBill{
				RoomID:          in.RoomID,
				GuestID:         in.GuestID,
				Month:           month,
				StartingReading: in.StartingReading,
				EndingReading:   in.EndingReading,
				UnitsConsumed:   units,
				RatePerUnit:     in.RatePerUnit,
				BillAmount:      amount,
				PaidAmount:      decimal.Zero,
				BillStatus:      models.StatusPending,
				DueDate:         in.DueDate,
				Notes:           in.Notes,
			}
			if err := tx.Create(&bill).Error; err != nil {
				return fmt.Errorf("failed to create bill: %w", err)
			}
			created = true
			return nil
		default:
			return err
		}
	})
	if txErr != nil {
		return nil, false, txErr
	}
	return &bill, created, nil
}

// RecordBillPayment increments paid_amount directly; bills have no child
// record table to recompute from. Status follows the same derivation as
// the rent ledger, with the same overpayment guard.
func (s *BillingService) RecordBillPayment(billID uint, amount decimal.Decimal, paidDate time.Time) (*models.ElectricityBill, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	var bill models.ElectricityBill
	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).
			First(&bill, billID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBillNotFound
			}
			return err
		}

		if amount.GreaterThan(bill.RemainingAmount()) {
			return ErrOverpayment
		}

		paid := bill.PaidAmount.Add(amount)
		status := models.DeriveStatus(paid, bill.BillAmount)
		updates := map[string]interface{}{
			"paid_amount": paid,
			"bill_status": status,
		}
		if status == models.StatusPaid {
			updates["paid_date"] = paidDate
		}
		if err := tx.Model(&bill).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to record bill payment: %w", err)
		}

		bill.PaidAmount = paid
		bill.BillStatus = status
		if status == models.StatusPaid {
			bill.PaidDate = &paidDate
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return &bill, nil
}

// BillReconcileResult reports one formula drift check.
type BillReconcileResult struct {
	BillID        uint            `json:"bill_id"`
	StoredUnits   decimal.Decimal `json:"stored_units"`
	DerivedUnits  decimal.Decimal `json:"derived_units"`
	StoredAmount  decimal.Decimal `json:"stored_amount"`
	DerivedAmount decimal.Decimal `json:"derived_amount"`
	Mismatch      bool            `json:"mismatch"`
	Corrected     bool            `json:"corrected"`
}

// ReconcileBill checks stored units/amount against the readings-derived
// values within the 0.01 tolerance; autofix overwrites the stored fields
// from the formula.
func (s *BillingService) ReconcileBill(billID uint, autofix bool) (*BillReconcileResult, error) {
	var result BillReconcileResult
	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		var bill models.ElectricityBill
		if err := lockForUpdate(tx).
			First(&bill, billID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBillNotFound
			}
			return err
		}

		units := bill.EndingReading.Sub(bill.StartingReading)
		amount := units.Mul(bill.RatePerUnit)

		result = BillReconcileResult{
			BillID:        bill.ID,
			StoredUnits:   bill.UnitsConsumed,
			DerivedUnits:  units,
			StoredAmount:  bill.BillAmount,
			DerivedAmount: amount,
			Mismatch: bill.UnitsConsumed.Sub(units).Abs().GreaterThan(Tolerance) ||
				bill.BillAmount.Sub(amount).Abs().GreaterThan(Tolerance),
		}
		if !result.Mismatch {
			return nil
		}

		log.Printf("⚠️ bill drift on bill %d: stored units=%s amount=%s, derived units=%s amount=%s",
			bill.ID, bill.UnitsConsumed.StringFixed(2), bill.BillAmount.StringFixed(2),
			units.StringFixed(2), amount.StringFixed(2))

		if !autofix {
			return nil
		}
		status := models.DeriveStatus(bill.PaidAmount, amount)
		if bill.BillStatus == models.StatusOverdue && status != models.StatusPaid {
			status = models.StatusOverdue
		}
		if err := tx.Model(&bill).Updates(map[string]interface{}{
			"units_consumed": units,
			"bill_amount":    amount,
			"bill_status":    status,
		}).Error; err != nil {
			return err
		}
		result.Corrected = true
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return &result, nil
}

// ReconcileAllBills runs the formula check over every bill.
func (s *BillingService) ReconcileAllBills(autofix bool) ([]BillReconcileResult, error) {
	var ids []uint
	if err := s.DB.Model(&models.ElectricityBill{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}

	results := make([]BillReconcileResult, 0, len(ids))
	for _, id := range ids {
		r, err := s.ReconcileBill(id, autofix)
		if err != nil {
			return results, err
		}
		if r.Mismatch {
			results = append(results, *r)
		}
	}
	return results, nil
}

// MarkOverdueBills flips unpaid bills whose due date has passed.
func (s *BillingService) MarkOverdueBills(asOf time.Time) (int64, error) {
	res := s.DB.Model(&models.ElectricityBill{}).
		Where("bill_status IN ?", []models.PaymentStatus{models.StatusPending, models.StatusPartial}).
		Where("due_date IS NOT NULL AND due_date < ?", asOf).
		Update("bill_status", models.StatusOverdue)
	return res.RowsAffected, res.Error
}

// GetByID loads one bill.
func (s *BillingService) GetByID(billID uint) (*models.ElectricityBill, error) {
	var bill models.ElectricityBill
	if err := s.DB.First(&bill, billID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBillNotFound
		}
		return nil, err
	}
	return &bill, nil
}

// List returns bills, optionally filtered by status.
func (s *BillingService) List(status string) ([]models.ElectricityBill, error) {
	q := s.DB.Preload("Room").Preload("Guest").Order("month DESC")
	if status != "" {
		q = q.Where("bill_status = ?", status)
	}
	var bills []models.ElectricityBill
	if err := q.Find(&bills).Error; err != nil {
		return nil, err
	}
	return bills, nil
}

// HistoryByRoom returns the billing history for one room, newest first.
func (s *BillingService) HistoryByRoom(roomID uint) ([]models.ElectricityBill, error) {
	var bills []models.ElectricityBill
	if err := s.DB.Where("room_id = ?", roomID).Order("month DESC").Find(&bills).Error; err != nil {
		return nil, err
	}
	return bills, nil
}
