package services

import (
	"errors"
	"testing"

	"rental-backend/models"
)

func registerGuest(t *testing.T, svc *GuestService, first, last string, roomID *uint) *models.Guest {
	t.Helper()
	guest := &models.Guest{FirstName: first, LastName: last}
	if err := svc.Register(guest, roomID); err != nil {
		t.Fatalf("register %s %s: %v", first, last, err)
	}
	return guest
}

func TestCapacityGuard(t *testing.T) {
	db := newTestDB(t)
	occupancy := NewOccupancyService(db)
	guests := NewGuestService(db, occupancy)
	room := mustCreateRoom(t, db, "301", 7000, 2)

	registerGuest(t, guests, "Asha", "Rao", &room.ID)

	var reloaded models.Room
	db.First(&reloaded, room.ID)
	if !reloaded.IsAvailable {
		t.Fatal("room with one of two slots taken must stay available")
	}

	registerGuest(t, guests, "Bela", "Shah", &room.ID)
	db.First(&reloaded, room.ID)
	if reloaded.IsAvailable {
		t.Fatal("full room must be flagged unavailable")
	}

	third := &models.Guest{FirstName: "Chitra", LastName: "Iyer"}
	if err := guests.Register(third, &room.ID); !errors.Is(err, ErrRoomFull) {
		t.Fatalf("got %v, want ErrRoomFull", err)
	}

	// the rejected registration must not leave a guest row behind
	var count int64
	db.Model(&models.Guest{}).Count(&count)
	if count != 2 {
		t.Fatalf("guest rows = %d, want 2", count)
	}

	occ, err := occupancy.Occupancy(room.ID)
	if err != nil {
		t.Fatalf("Occupancy: %v", err)
	}
	if occ != 2 {
		t.Fatalf("occupancy = %d, want 2", occ)
	}
}

func TestCheckoutReleasesRoom(t *testing.T) {
	db := newTestDB(t)
	occupancy := NewOccupancyService(db)
	guests := NewGuestService(db, occupancy)
	room := mustCreateRoom(t, db, "302", 7000, 1)

	guest := registerGuest(t, guests, "Dev", "Kumar", &room.ID)

	var reloaded models.Room
	db.First(&reloaded, room.ID)
	if reloaded.IsAvailable {
		t.Fatal("single room with tenant must be unavailable")
	}

	if err := occupancy.Checkout(guest.ID); err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	db.First(&reloaded, room.ID)
	if !reloaded.IsAvailable {
		t.Fatal("room must be available after checkout")
	}

	var archived models.Guest
	db.First(&archived, guest.ID)
	if archived.IsActive {
		t.Fatal("checked-out guest must be archived")
	}
}

func TestAssignGuestReleasesVacatedRoom(t *testing.T) {
	db := newTestDB(t)
	occupancy := NewOccupancyService(db)
	guests := NewGuestService(db, occupancy)

	from := mustCreateRoom(t, db, "307", 7000, 1)
	to := mustCreateRoom(t, db, "308", 7000, 1)

	guest := registerGuest(t, guests, "Mira", "Pillai", &from.ID)

	if err := occupancy.AssignGuest(guest.ID, to.ID); err != nil {
		t.Fatalf("AssignGuest: %v", err)
	}

	var moved models.Guest
	if err := db.First(&moved, guest.ID).Error; err != nil {
		t.Fatalf("reload guest: %v", err)
	}
	if moved.RoomID == nil || *moved.RoomID != to.ID {
		t.Fatalf("guest room = %v, want %d", moved.RoomID, to.ID)
	}

	var vacated models.Room
	if err := db.First(&vacated, from.ID).Error; err != nil {
		t.Fatalf("reload vacated room: %v", err)
	}
	if !vacated.IsAvailable {
		t.Fatal("vacated room must be available after the move")
	}
	var destination models.Room
	if err := db.First(&destination, to.ID).Error; err != nil {
		t.Fatalf("reload destination room: %v", err)
	}
	if destination.IsAvailable {
		t.Fatal("destination room at capacity must be unavailable")
	}

	// assigning the current room is a no-op
	if err := occupancy.AssignGuest(guest.ID, to.ID); err != nil {
		t.Fatalf("AssignGuest(same room): %v", err)
	}

	occupied := mustCreateRoom(t, db, "309", 7000, 1)
	registerGuest(t, guests, "Nita", "Verma", &occupied.ID)
	if err := occupancy.AssignGuest(guest.ID, occupied.ID); !errors.Is(err, ErrRoomFull) {
		t.Fatalf("got %v, want ErrRoomFull", err)
	}
}

func TestDetachKeepsGuestActive(t *testing.T) {
	db := newTestDB(t)
	occupancy := NewOccupancyService(db)
	guests := NewGuestService(db, occupancy)
	room := mustCreateRoom(t, db, "310", 7000, 1)

	guest := registerGuest(t, guests, "Omar", "Sheikh", &room.ID)

	if err := occupancy.Detach(guest.ID); err != nil {
		t.Fatalf("Detach: %v", err)
	}

	var detached models.Guest
	if err := db.First(&detached, guest.ID).Error; err != nil {
		t.Fatalf("reload guest: %v", err)
	}
	if detached.RoomID != nil {
		t.Fatalf("guest room = %v, want nil", detached.RoomID)
	}
	if !detached.IsActive {
		t.Fatal("detached guest must stay active")
	}

	var released models.Room
	if err := db.First(&released, room.ID).Error; err != nil {
		t.Fatalf("reload room: %v", err)
	}
	if !released.IsAvailable {
		t.Fatal("room must be available after detach")
	}
}

func TestStateOfUsesManualFlag(t *testing.T) {
	db := newTestDB(t)
	occupancy := NewOccupancyService(db)
	guests := NewGuestService(db, occupancy)
	room := mustCreateRoom(t, db, "303", 7000, 3)

	registerGuest(t, guests, "Esha", "Nair", &room.ID)

	// landlord blocks the room despite spare capacity
	db.Model(&models.Room{}).Where("id = ?", room.ID).Update("is_available", false)

	var reloaded models.Room
	db.First(&reloaded, room.ID)
	state, err := occupancy.StateOf(&reloaded)
	if err != nil {
		t.Fatalf("StateOf: %v", err)
	}
	if state.Occupancy != 1 || state.AvailableSlots != 2 {
		t.Fatalf("occupancy=%d slots=%d, want 1/2", state.Occupancy, state.AvailableSlots)
	}
	if state.EffectiveAvailability {
		t.Fatal("manually blocked room must not be effectively available")
	}
}

func TestReconcileAvailability(t *testing.T) {
	db := newTestDB(t)
	occupancy := NewOccupancyService(db)
	guests := NewGuestService(db, occupancy)

	empty := mustCreateRoom(t, db, "304", 7000, 2)
	full := mustCreateRoom(t, db, "305", 7000, 1)
	partial := mustCreateRoom(t, db, "306", 7000, 3)

	registerGuest(t, guests, "Farid", "Khan", &full.ID)
	registerGuest(t, guests, "Gita", "Menon", &partial.ID)

	// corrupt the cached flags
	db.Model(&models.Room{}).Where("id = ?", empty.ID).Update("is_available", false)
	db.Model(&models.Room{}).Where("id = ?", full.ID).Update("is_available", true)
	db.Model(&models.Room{}).Where("id = ?", partial.ID).Update("is_available", false)

	changed, err := occupancy.ReconcileAvailability()
	if err != nil {
		t.Fatalf("ReconcileAvailability: %v", err)
	}
	if changed != 2 {
		t.Fatalf("changed = %d, want 2", changed)
	}

	// fresh struct per lookup: a reused dest would pin the previous
	// primary key into the query conditions
	var emptyReloaded models.Room
	if err := db.First(&emptyReloaded, empty.ID).Error; err != nil {
		t.Fatalf("reload empty room: %v", err)
	}
	if !emptyReloaded.IsAvailable {
		t.Fatal("empty room must be available after reconcile")
	}
	var fullReloaded models.Room
	if err := db.First(&fullReloaded, full.ID).Error; err != nil {
		t.Fatalf("reload full room: %v", err)
	}
	if fullReloaded.IsAvailable {
		t.Fatal("full room must be unavailable after reconcile")
	}
	var partialReloaded models.Room
	if err := db.First(&partialReloaded, partial.ID).Error; err != nil {
		t.Fatalf("reload partial room: %v", err)
	}
	if partialReloaded.IsAvailable {
		t.Fatal("partially occupied room keeps its manual flag")
	}
}
