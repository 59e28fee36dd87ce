package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentStatus is the lifecycle shared by monthly rent payments and
// electricity bills.
type PaymentStatus string

const (
	StatusPending PaymentStatus = "pending"
	StatusPartial PaymentStatus = "partial"
	StatusPaid    PaymentStatus = "paid"

	// StatusOverdue is only ever assigned by the overdue sweep, never by
	// DeriveStatus.
	StatusOverdue PaymentStatus = "overdue"
)

// DeriveStatus maps (paid, total) onto the payment lifecycle:
// paid >= total => paid, 0 < paid < total => partial, otherwise pending.
func DeriveStatus(paid, total decimal.Decimal) PaymentStatus {
	if paid.GreaterThanOrEqual(total) && total.IsPositive() {
		return StatusPaid
	}
	if paid.IsPositive() {
		return StatusPartial
	}
	return StatusPending
}

// MonthlyPayment is the rent obligation for one room for one calendar
// month. One row per (room, month); Month is always the first day of the
// month.
type MonthlyPayment struct {
	gorm.Model

	RoomID  uint   `json:"room_id" gorm:"uniqueIndex:idx_payment_room_month;column:room_id"`
	Room    Room   `json:"-" gorm:"foreignKey:RoomID"`
	GuestID *uint  `json:"guest_id,omitempty" gorm:"index;column:guest_id"`
	Guest   *Guest `json:"guest,omitempty" gorm:"foreignKey:GuestID"`

	Month time.Time `json:"month" gorm:"uniqueIndex:idx_payment_room_month;type:date"`

	// Snapshot of the agreed charge for the month.
	RentAmount decimal.Decimal `json:"rent_amount" gorm:"type:decimal(10,2)"`

	// Running total; kept equal to the sum of Records by the ledger
	// reconciler.
	PaidAmount decimal.Decimal `json:"paid_amount" gorm:"type:decimal(10,2);default:0"`

	PaymentStatus PaymentStatus `json:"payment_status" gorm:"size:20;default:pending"`
	PaidDate      *time.Time    `json:"paid_date,omitempty" gorm:"type:date"`
	Notes         string        `json:"notes" gorm:"type:text"`

	Records []PaymentRecord `json:"records,omitempty" gorm:"foreignKey:MonthlyPaymentID;constraint:OnDelete:CASCADE"`
}

// RemainingAmount is rent still owed for the month.
func (p *MonthlyPayment) RemainingAmount() decimal.Decimal {
	return p.RentAmount.Sub(p.PaidAmount)
}

// Payment methods
const (
	MethodCash         = "cash"
	MethodCheck        = "check"
	MethodBankTransfer = "bank_transfer"
	MethodUPI          = "upi"
	MethodCard         = "card"
)

func IsValidPaymentMethod(m string) bool {
	switch m {
	case MethodCash, MethodCheck, MethodBankTransfer, MethodUPI, MethodCard:
		return true
	}
	return false
}

// PaymentRecord is one discrete payment event against a MonthlyPayment.
// Append-only in intended use; edits and deletes are explicit corrections
// that trigger a full recompute of the parent.
type PaymentRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	MonthlyPaymentID uint           `json:"monthly_payment_id" gorm:"index;column:monthly_payment_id"`
	MonthlyPayment   MonthlyPayment `json:"-" gorm:"foreignKey:MonthlyPaymentID;constraint:OnDelete:CASCADE"`

	PaymentDate     time.Time       `json:"payment_date" gorm:"type:date"`
	PaymentAmount   decimal.Decimal `json:"payment_amount" gorm:"type:decimal(10,2)"`
	PaymentMethod   string          `json:"payment_method" gorm:"size:20;default:cash"`
	ReferenceNumber string          `json:"reference_number" gorm:"size:100"`
	Notes           string          `json:"notes" gorm:"type:text"`
	CreatedBy       string          `json:"created_by" gorm:"size:150"`
}
