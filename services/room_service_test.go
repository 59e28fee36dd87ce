package services

import (
	"errors"
	"testing"

	"rental-backend/models"

	"github.com/shopspring/decimal"
)

func TestRoomCreateValidation(t *testing.T) {
	db := newTestDB(t)
	occupancy := NewOccupancyService(db)
	svc := NewRoomService(db, occupancy)

	if err := svc.Create(&models.Room{Number: "  ", RoomType: models.RoomTypeSingle}); err == nil {
		t.Fatal("blank room number accepted")
	}
	if err := svc.Create(&models.Room{Number: "601", RoomType: "penthouse"}); err == nil {
		t.Fatal("unknown room type accepted")
	}

	room := &models.Room{Number: "601", RoomType: models.RoomTypeSingle, Price: decimal.NewFromInt(5000)}
	if err := svc.Create(room); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if room.Capacity != 1 {
		t.Fatalf("capacity defaulted to %d, want 1", room.Capacity)
	}

	dup := &models.Room{Number: "601", RoomType: models.RoomTypeSingle}
	if err := svc.Create(dup); err == nil {
		t.Fatal("duplicate room number accepted")
	}
}

func TestGetAvailableFiltersFullRooms(t *testing.T) {
	db := newTestDB(t)
	occupancy := NewOccupancyService(db)
	guests := NewGuestService(db, occupancy)
	svc := NewRoomService(db, occupancy)

	open := mustCreateRoom(t, db, "602", 5000, 2)
	packed := mustCreateRoom(t, db, "603", 5000, 1)

	registerGuest(t, guests, "Lata", "Joshi", &packed.ID)
	// stale cache: flag says available even though the room is full
	db.Model(&models.Room{}).Where("id = ?", packed.ID).Update("is_available", true)

	available, err := svc.GetAvailable()
	if err != nil {
		t.Fatalf("GetAvailable: %v", err)
	}
	if len(available) != 1 || available[0].ID != open.ID {
		t.Fatalf("available = %d rooms, want only room 602", len(available))
	}
}

func TestRoomUpdateAndEffectiveRent(t *testing.T) {
	db := newTestDB(t)
	occupancy := NewOccupancyService(db)
	svc := NewRoomService(db, occupancy)

	room := mustCreateRoom(t, db, "604", 5000, 2)
	if !room.EffectiveRent().Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("effective rent = %s, want listed price", room.EffectiveRent())
	}

	if err := svc.Update(room.ID, map[string]interface{}{"agreed_rent": "4500"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	view, err := svc.GetByID(room.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !view.EffectiveRent().Equal(decimal.NewFromInt(4500)) {
		t.Fatalf("effective rent = %s, want agreed 4500", view.EffectiveRent())
	}

	if err := svc.Update(room.ID, map[string]interface{}{"room_type": "igloo"}); err == nil {
		t.Fatal("invalid room type accepted on update")
	}
	if err := svc.Update(999, map[string]interface{}{"capacity": 3}); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("got %v, want ErrRoomNotFound", err)
	}
}
