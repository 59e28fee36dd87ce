package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Room types
const (
	RoomTypeSingle = "single"
	RoomTypeDouble = "double"
	RoomTypeSuite  = "suite"
)

func IsValidRoomType(t string) bool {
	return t == RoomTypeSingle || t == RoomTypeDouble || t == RoomTypeSuite
}

type Room struct {
	gorm.Model

	Number   string `json:"number" gorm:"column:number;uniqueIndex;type:varchar(50)"`
	RoomType string `json:"room_type" gorm:"column:room_type;type:varchar(10)"`

	Price decimal.Decimal `json:"price" gorm:"type:decimal(10,2)"`

	// Per-room negotiated rent; overrides Price when set.
	AgreedRent *decimal.Decimal `json:"agreed_rent,omitempty" gorm:"type:decimal(10,2)"`

	// Maximum simultaneous occupants.
	Capacity int `json:"capacity" gorm:"default:1"`

	// Cached availability hint. True occupancy is derived from active
	// guests; never trust this alone for booking decisions.
	IsAvailable bool `json:"is_available" gorm:"default:true"`
}

// EffectiveRent returns the negotiated rent when present, otherwise the
// listed price.
func (r *Room) EffectiveRent() decimal.Decimal {
	if r.AgreedRent != nil {
		return *r.AgreedRent
	}
	return r.Price
}
