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

// Reconciliation tolerance: one minor currency unit.
var Tolerance = decimal.New(1, -2)

var (
	ErrPaymentNotFound = errors.New("payment_not_found")
	ErrRecordNotFound  = errors.New("payment_record_not_found")
	ErrInvalidAmount   = errors.New("invalid_amount")
	ErrOverpayment     = errors.New("amount_exceeds_remaining_balance")
	ErrInvalidRent     = errors.New("rent_must_be_positive")
)

// LedgerService keeps MonthlyPayment.paid_amount equal to the sum of its
// payment records. Every record mutation recomputes the total from the
// surviving set instead of incrementing, so out-of-order edits and
// deletions cannot drift the ledger.
type LedgerService struct {
	DB *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{DB: db}
}

// UpsertMonthlyPayment creates the rent ledger header for (room, month),
// or updates the rent snapshot when the row already exists.
func (s *LedgerService) UpsertMonthlyPayment(roomID uint, monthStr string, rentAmount decimal.Decimal, guestID *uint) (*models.MonthlyPayment, bool, error) {
	if !rentAmount.IsPositive() {
		return nil, false, ErrInvalidRent
	}
	month, err := utils.ParseMonth(monthStr)
	if err != nil {
		return nil, false, err
	}

	var room models.Room
	if err := s.DB.First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrRoomNotFound
		}
		return nil, false, fmt.Errorf("db error checking room %d: %w", roomID, err)
	}

	var payment models.MonthlyPayment
	created := false
	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("room_id = ? AND month = ?", roomID, month).First(&payment).Error
		switch {
		case err == nil:
			updates := map[string]interface{}{"rent_amount": rentAmount}
			if guestID != nil {
				updates["guest_id"] = *guestID
			}
			if err := tx.Model(&payment).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update payment: %w", err)
			}
			payment.RentAmount = rentAmount
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			payment = models.MonthlyPayment{
				RoomID:        roomID,
				GuestID:       guestID,
				Month:         month,
				RentAmount:    rentAmount,
				PaidAmount:    decimal.Zero,
				PaymentStatus: models.StatusPending,
			}
			if err := tx.Create(&payment).Error; err != nil {
				return fmt.Errorf("failed to create payment: %w", err)
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
	return &payment, created, nil
}

// RecordPayment appends one payment event and recomputes the parent
// ledger. The overpayment guard runs before the record is created.
func (s *LedgerService) RecordPayment(paymentID uint, date time.Time, amount decimal.Decimal, method, reference, notes, createdBy string) (*models.MonthlyPayment, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if method == "" {
		method = models.MethodCash
	}
	if !models.IsValidPaymentMethod(method) {
		return nil, fmt.Errorf("invalid_payment_method: %s", method)
	}

	var payment models.MonthlyPayment
	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).
			First(&payment, paymentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentNotFound
			}
			return err
		}

		if amount.GreaterThan(payment.RemainingAmount()) {
			return ErrOverpayment
		}

		record := models.PaymentRecord{
			MonthlyPaymentID: payment.ID,
			PaymentDate:      date,
			PaymentAmount:    amount,
			PaymentMethod:    method,
			ReferenceNumber:  reference,
			Notes:            notes,
			CreatedBy:        createdBy,
		}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("failed to create payment record: %w", err)
		}

		return s.recompute(tx, &payment)
	})
	if txErr != nil {
		return nil, txErr
	}
	return &payment, nil
}

// UpdateRecord corrects one payment event, then recomputes the parent.
func (s *LedgerService) UpdateRecord(recordID uint, date *time.Time, amount *decimal.Decimal, method, reference, notes string) (*models.MonthlyPayment, error) {
	var payment models.MonthlyPayment
	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		var record models.PaymentRecord
		if err := tx.First(&record, recordID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecordNotFound
			}
			return err
		}

		if err := lockForUpdate(tx).
			First(&payment, record.MonthlyPaymentID).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if date != nil {
			updates["payment_date"] = *date
		}
		if amount != nil {
			if !amount.IsPositive() {
				return ErrInvalidAmount
			}
			// the corrected total may not exceed the rent snapshot
			others := payment.PaidAmount.Sub(record.PaymentAmount)
			if others.Add(*amount).GreaterThan(payment.RentAmount) {
				return ErrOverpayment
			}
			updates["payment_amount"] = *amount
		}
		if method != "" {
			if !models.IsValidPaymentMethod(method) {
				return fmt.Errorf("invalid_payment_method: %s", method)
			}
			updates["payment_method"] = method
		}
		if reference != "" {
			updates["reference_number"] = reference
		}
		if notes != "" {
			updates["notes"] = notes
		}
		if len(updates) > 0 {
			if err := tx.Model(&record).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update payment record: %w", err)
			}
		}

		return s.recompute(tx, &payment)
	})
	if txErr != nil {
		return nil, txErr
	}
	return &payment, nil
}

// DeleteRecord removes one payment event and recomputes the parent from
// the surviving records.
func (s *LedgerService) DeleteRecord(recordID uint) (*models.MonthlyPayment, error) {
	var payment models.MonthlyPayment
	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		var record models.PaymentRecord
		if err := tx.First(&record, recordID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecordNotFound
			}
			return err
		}

		if err := lockForUpdate(tx).
			First(&payment, record.MonthlyPaymentID).Error; err != nil {
			return err
		}

		if err := tx.Delete(&record).Error; err != nil {
			return fmt.Errorf("failed to delete payment record: %w", err)
		}

		return s.recompute(tx, &payment)
	})
	if txErr != nil {
		return nil, txErr
	}
	return &payment, nil
}

// recompute reloads the surviving record set, overwrites paid_amount with
// its sum and re-derives the status. Must run inside the caller's
// transaction with the payment row locked.
func (s *LedgerService) recompute(tx *gorm.DB, payment *models.MonthlyPayment) error {
	var records []models.PaymentRecord
	if err := tx.Where("monthly_payment_id = ?", payment.ID).
		Order("payment_date ASC, id ASC").
		Find(&records).Error; err != nil {
		return fmt.Errorf("failed to load payment records: %w", err)
	}

	total := decimal.Zero
	var lastDate *time.Time
	for i := range records {
		total = total.Add(records[i].PaymentAmount)
		d := records[i].PaymentDate
		lastDate = &d
	}

	status := models.DeriveStatus(total, payment.RentAmount)
	updates := map[string]interface{}{
		"paid_amount":    total,
		"payment_status": status,
	}
	if status == models.StatusPaid && lastDate != nil {
		updates["paid_date"] = *lastDate
	} else {
		updates["paid_date"] = nil
	}
	if err := tx.Model(payment).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update payment totals: %w", err)
	}

	payment.PaidAmount = total
	payment.PaymentStatus = status
	if status == models.StatusPaid {
		payment.PaidDate = lastDate
	} else {
		payment.PaidDate = nil
	}
	return nil
}

// ReconcileResult reports one ledger drift check.
type ReconcileResult struct {
	PaymentID  uint            `json:"payment_id"`
	Stored     decimal.Decimal `json:"stored_paid_amount"`
	Recomputed decimal.Decimal `json:"recomputed_paid_amount"`
	Drift      decimal.Decimal `json:"drift"`
	Mismatch   bool            `json:"mismatch"`
	Corrected  bool            `json:"corrected"`
}

// Reconcile compares the stored paid_amount against the record sum and,
// when autofix is set, overwrites the stored total and status from the
// recomputed value.
func (s *LedgerService) Reconcile(paymentID uint, autofix bool) (*ReconcileResult, error) {
	var result ReconcileResult
	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		var payment models.MonthlyPayment
		if err := lockForUpdate(tx).
			First(&payment, paymentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentNotFound
			}
			return err
		}

		var records []models.PaymentRecord
		if err := tx.Where("monthly_payment_id = ?", payment.ID).Find(&records).Error; err != nil {
			return err
		}
		total := decimal.Zero
		for i := range records {
			total = total.Add(records[i].PaymentAmount)
		}

		drift := payment.PaidAmount.Sub(total)
		result = ReconcileResult{
			PaymentID:  payment.ID,
			Stored:     payment.PaidAmount,
			Recomputed: total,
			Drift:      drift,
			Mismatch:   drift.Abs().GreaterThan(Tolerance),
		}

		if !result.Mismatch {
			return nil
		}

		log.Printf("⚠️ ledger drift on payment %d: stored=%s recomputed=%s",
			payment.ID, payment.PaidAmount.StringFixed(2), total.StringFixed(2))

		if !autofix {
			return nil
		}
		if err := s.recompute(tx, &payment); err != nil {
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

// ReconcileAll runs the drift check over every monthly payment.
func (s *LedgerService) ReconcileAll(autofix bool) ([]ReconcileResult, error) {
	var ids []uint
	if err := s.DB.Model(&models.MonthlyPayment{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}

	results := make([]ReconcileResult, 0, len(ids))
	for _, id := range ids {
		r, err := s.Reconcile(id, autofix)
		if err != nil {
			return results, err
		}
		if r.Mismatch {
			results = append(results, *r)
		}
	}
	return results, nil
}

// MarkOverdue flips pending/partial rent rows for months before the
// current one, with no paid date, to overdue. Called on demand; there is
// no background sweep.
func (s *LedgerService) MarkOverdue(asOf time.Time) (int64, error) {
	currentMonth := utils.FirstOfMonth(asOf)
	res := s.DB.Model(&models.MonthlyPayment{}).
		Where("payment_status IN ?", []models.PaymentStatus{models.StatusPending, models.StatusPartial}).
		Where("paid_date IS NULL").
		Where("month < ?", currentMonth).
		Update("payment_status", models.StatusOverdue)
	return res.RowsAffected, res.Error
}

// GetByID loads one payment with its records.
func (s *LedgerService) GetByID(paymentID uint) (*models.MonthlyPayment, error) {
	var payment models.MonthlyPayment
	if err := s.DB.Preload("Records").First(&payment, paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// List returns payments, optionally filtered by status.
func (s *LedgerService) List(status string) ([]models.MonthlyPayment, error) {
	q := s.DB.Preload("Room").Preload("Guest").Order("month DESC")
	if status != "" {
		q = q.Where("payment_status = ?", status)
	}
	var payments []models.MonthlyPayment
	if err := q.Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// HistoryByRoom returns the rent ledger for one room, newest month first,
// with itemized records.
func (s *LedgerService) HistoryByRoom(roomID uint) ([]models.MonthlyPayment, error) {
	var payments []models.MonthlyPayment
	err := s.DB.Where("room_id = ?", roomID).
		Preload("Records", func(db *gorm.DB) *gorm.DB {
			return db.Order("payment_date DESC")
		}).
		Order("month DESC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}
