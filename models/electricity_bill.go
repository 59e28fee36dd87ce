package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ElectricityBill is the power billing header for one room for one
// calendar month. One row per (room, month); a second submission for the
// same key updates the readings in place.
type ElectricityBill struct {
	gorm.Model

	RoomID  uint   `json:"room_id" gorm:"uniqueIndex:idx_bill_room_month;column:room_id"`
	Room    Room   `json:"-" gorm:"foreignKey:RoomID"`
	GuestID *uint  `json:"guest_id,omitempty" gorm:"index;column:guest_id"`
	Guest   *Guest `json:"guest,omitempty" gorm:"foreignKey:GuestID"`

	Month time.Time `json:"month" gorm:"uniqueIndex:idx_bill_room_month;type:date"`

	StartingReading decimal.Decimal `json:"starting_reading" gorm:"type:decimal(10,2)"`
	EndingReading   decimal.Decimal `json:"ending_reading" gorm:"type:decimal(10,2)"`

	// Derived: EndingReading - StartingReading.
	UnitsConsumed decimal.Decimal `json:"units_consumed" gorm:"type:decimal(10,2)"`

	RatePerUnit decimal.Decimal `json:"rate_per_unit" gorm:"type:decimal(6,2)"`

	// Derived: UnitsConsumed * RatePerUnit.
	BillAmount decimal.Decimal `json:"bill_amount" gorm:"type:decimal(10,2)"`

	PaidAmount decimal.Decimal `json:"paid_amount" gorm:"type:decimal(10,2);default:0"`

	BillStatus PaymentStatus `json:"bill_status" gorm:"size:20;default:pending"`

	DueDate  *time.Time `json:"due_date,omitempty" gorm:"type:date"`
	PaidDate *time.Time `json:"paid_date,omitempty" gorm:"type:date"`
	Notes    string     `json:"notes" gorm:"type:text"`
}

func (b *ElectricityBill) RemainingAmount() decimal.Decimal {
	return b.BillAmount.Sub(b.PaidAmount)
}
