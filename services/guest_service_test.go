package services

import (
	"testing"
	"time"

	"rental-backend/models"

	"github.com/shopspring/decimal"
)

func TestRegisterSeedsMonthlyPayments(t *testing.T) {
	db := newTestDB(t)
	occupancy := NewOccupancyService(db)
	guests := NewGuestService(db, occupancy)
	room := mustCreateRoom(t, db, "401", 7000, 2)

	agreed := decimal.NewFromInt(6500)
	db.Model(&models.Room{}).Where("id = ?", room.ID).Update("agreed_rent", agreed)

	ci := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	co := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	guest := &models.Guest{
		FirstName:    "Hari",
		LastName:     "Patel",
		CheckInDate:  &ci,
		CheckOutDate: &co,
	}
	if err := guests.Register(guest, &room.ID); err != nil {
		t.Fatalf("Register: %v", err)
	}

	var payments []models.MonthlyPayment
	if err := db.Where("room_id = ?", room.ID).Order("month").Find(&payments).Error; err != nil {
		t.Fatalf("load payments: %v", err)
	}

	// stay touches January, February and March
	if len(payments) != 3 {
		t.Fatalf("seeded %d months, want 3", len(payments))
	}
	for i, p := range payments {
		if p.Month.Day() != 1 {
			t.Fatalf("month key %v is not first of month", p.Month)
		}
		if !p.RentAmount.Equal(agreed) {
			t.Fatalf("month %d rent = %s, want agreed rent 6500", i, p.RentAmount)
		}
		if p.PaymentStatus != models.StatusPending {
			t.Fatalf("month %d status = %s, want pending", i, p.PaymentStatus)
		}
		if p.GuestID == nil || *p.GuestID != guest.ID {
			t.Fatalf("month %d not linked to guest", i)
		}
	}
	if payments[0].Month.Month() != time.January || payments[2].Month.Month() != time.March {
		t.Fatalf("seeded window %v..%v, want Jan..Mar", payments[0].Month, payments[2].Month)
	}
}

func TestRegisterSkipsExistingMonths(t *testing.T) {
	db := newTestDB(t)
	occupancy := NewOccupancyService(db)
	guests := NewGuestService(db, occupancy)
	ledger := NewLedgerService(db)
	room := mustCreateRoom(t, db, "402", 7000, 2)

	// a manually created January row with a different rent must survive
	existing, _, err := ledger.UpsertMonthlyPayment(room.ID, "2026-01", decimal.NewFromInt(9999), nil)
	if err != nil {
		t.Fatalf("UpsertMonthlyPayment: %v", err)
	}

	ci := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	co := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	guest := &models.Guest{FirstName: "Indra", LastName: "Das", CheckInDate: &ci, CheckOutDate: &co}
	if err := guests.Register(guest, &room.ID); err != nil {
		t.Fatalf("Register: %v", err)
	}

	var payments []models.MonthlyPayment
	db.Where("room_id = ?", room.ID).Order("month").Find(&payments)
	if len(payments) != 2 {
		t.Fatalf("payment rows = %d, want 2", len(payments))
	}
	if payments[0].ID != existing.ID || !payments[0].RentAmount.Equal(decimal.NewFromInt(9999)) {
		t.Fatal("existing January row was replaced by the seeder")
	}
}

func TestUpdateMovesRoomUnderCapacityGuard(t *testing.T) {
	db := newTestDB(t)
	occupancy := NewOccupancyService(db)
	guests := NewGuestService(db, occupancy)

	from := mustCreateRoom(t, db, "403", 7000, 1)
	to := mustCreateRoom(t, db, "404", 7000, 1)

	guest := registerGuest(t, guests, "Jaya", "Singh", &from.ID)

	moved, err := guests.Update(guest.ID, map[string]interface{}{"phone": "555-0101"}, &to.ID)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if moved.RoomID == nil || *moved.RoomID != to.ID {
		t.Fatalf("guest room = %v, want %d", moved.RoomID, to.ID)
	}
	if moved.Phone != "555-0101" {
		t.Fatalf("phone = %s, want 555-0101", moved.Phone)
	}

	var vacated models.Room
	if err := db.First(&vacated, from.ID).Error; err != nil {
		t.Fatalf("reload vacated room: %v", err)
	}
	if !vacated.IsAvailable {
		t.Fatal("vacated room must be available")
	}
	var destination models.Room
	if err := db.First(&destination, to.ID).Error; err != nil {
		t.Fatalf("reload destination room: %v", err)
	}
	if destination.IsAvailable {
		t.Fatal("destination room at capacity must be unavailable")
	}

	// protected columns cannot be smuggled through updates
	if _, err := guests.Update(guest.ID, map[string]interface{}{"id": 999, "room_id": from.ID}, nil); err != nil {
		t.Fatalf("Update with protected keys: %v", err)
	}
	var reloaded models.Guest
	db.First(&reloaded, guest.ID)
	if reloaded.RoomID == nil || *reloaded.RoomID != to.ID {
		t.Fatal("room_id changed through a blind update")
	}
}

func TestBlindUpdateCannotReactivate(t *testing.T) {
	db := newTestDB(t)
	occupancy := NewOccupancyService(db)
	guests := NewGuestService(db, occupancy)
	room := mustCreateRoom(t, db, "405", 7000, 1)

	first := registerGuest(t, guests, "Kavi", "Reddy", &room.ID)
	if err := occupancy.Checkout(first.ID); err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	registerGuest(t, guests, "Leela", "Gupta", &room.ID)

	// reactivating through a field update would breach capacity
	if _, err := guests.Update(first.ID, map[string]interface{}{"is_active": true}, nil); err != nil {
		t.Fatalf("Update: %v", err)
	}
	var reloaded models.Guest
	if err := db.First(&reloaded, first.ID).Error; err != nil {
		t.Fatalf("reload guest: %v", err)
	}
	if reloaded.IsActive {
		t.Fatal("blind update reactivated an archived guest")
	}

	occ, err := occupancy.Occupancy(room.ID)
	if err != nil {
		t.Fatalf("Occupancy: %v", err)
	}
	if occ != 1 {
		t.Fatalf("occupancy = %d, want 1", occ)
	}
}

func TestParseStayWindow(t *testing.T) {
	ci, co, err := ParseStayWindow("2026-01-15", "2026-03-10")
	if err != nil {
		t.Fatalf("ParseStayWindow: %v", err)
	}
	if ci == nil || co == nil {
		t.Fatal("expected both dates parsed")
	}

	if _, _, err := ParseStayWindow("2026-03-10", "2026-01-15"); err == nil {
		t.Fatal("expected error for inverted window")
	}
	if _, _, err := ParseStayWindow("2026-01-15", "2026-01-15"); err == nil {
		t.Fatal("expected error for zero-length window")
	}
	if _, _, err := ParseStayWindow("15/01/2026", ""); err == nil {
		t.Fatal("expected error for bad format")
	}

	ci, co, err = ParseStayWindow("", "")
	if err != nil || ci != nil || co != nil {
		t.Fatalf("open-ended window: ci=%v co=%v err=%v", ci, co, err)
	}
}
