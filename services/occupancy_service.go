package services

import (
	"errors"
	"fmt"

	"rental-backend/models"

	"gorm.io/gorm"
)

var (
	ErrRoomNotFound  = errors.New("room_not_found")
	ErrGuestNotFound = errors.New("guest_not_found")
	ErrRoomFull      = errors.New("room_full")
)

// OccupancyService derives room occupancy from active guest rows. The
// Room.is_available column is only a cache updated alongside the
// guest-count-changing writes; ReconcileAvailability can rebuild it for
// every room at once.
type OccupancyService struct {
	DB *gorm.DB
}

func NewOccupancyService(db *gorm.DB) *OccupancyService {
	return &OccupancyService{DB: db}
}

// Occupancy counts active guests assigned to the room.
func (s *OccupancyService) Occupancy(roomID uint) (int64, error) {
	return s.occupancy(s.DB, roomID)
}

func (s *OccupancyService) occupancy(tx *gorm.DB, roomID uint) (int64, error) {
	var count int64
	err := tx.Model(&models.Guest{}).
		Where("room_id = ? AND is_active = ?", roomID, true).
		Count(&count).Error
	return count, err
}

// RoomState is the derived view of one room.
type RoomState struct {
	Occupancy             int64 `json:"occupancy"`
	IsFull                bool  `json:"is_full"`
	AvailableSlots        int64 `json:"available_slots"`
	EffectiveAvailability bool  `json:"effective_availability"`
}

// StateOf returns occupancy-derived facts for a room. Effective
// availability is the manual flag AND spare capacity.
func (s *OccupancyService) StateOf(room *models.Room) (*RoomState, error) {
	occ, err := s.Occupancy(room.ID)
	if err != nil {
		return nil, err
	}
	full := occ >= int64(room.Capacity)
	slots := int64(room.Capacity) - occ
	if slots < 0 {
		slots = 0
	}
	return &RoomState{
		Occupancy:             occ,
		IsFull:                full,
		AvailableSlots:        slots,
		EffectiveAvailability: room.IsAvailable && !full,
	}, nil
}

// AssignGuest attaches a guest to a room inside one transaction. The room
// row is locked, the derived occupancy is checked against capacity before
// the write, and the availability cache is flipped when the assignment
// fills the room. Moving a guest releases the vacated room's cache.
func (s *OccupancyService) AssignGuest(guestID, roomID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var guest models.Guest
		if err := tx.First(&guest, guestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGuestNotFound
			}
			return err
		}

		if guest.RoomID != nil && *guest.RoomID == roomID {
			return nil
		}

		// copy the vacated id: AttachTx overwrites guest.RoomID in place
		var prevID *uint
		if guest.RoomID != nil {
			v := *guest.RoomID
			prevID = &v
		}

		if err := s.AttachTx(tx, &guest, roomID); err != nil {
			return err
		}

		if prevID != nil {
			if err := s.ReleaseTx(tx, *prevID); err != nil {
				return err
			}
		}
		return nil
	})
}

// AttachTx does the capacity-guarded room write. Caller owns the
// transaction.
func (s *OccupancyService) AttachTx(tx *gorm.DB, guest *models.Guest, roomID uint) error {
	var room models.Room
	if err := lockForUpdate(tx).
		First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRoomNotFound
		}
		return err
	}

	occ, err := s.occupancy(tx, roomID)
	if err != nil {
		return err
	}
	if occ >= int64(room.Capacity) {
		return ErrRoomFull
	}

	if err := tx.Model(guest).Updates(map[string]interface{}{
		"room_id":   roomID,
		"is_active": true,
	}).Error; err != nil {
		return fmt.Errorf("failed to assign guest %d to room %d: %w", guest.ID, roomID, err)
	}

	// assignment brought the room to capacity
	if occ+1 >= int64(room.Capacity) {
		if err := tx.Model(&models.Room{}).Where("id = ?", roomID).
			Update("is_available", false).Error; err != nil {
			return err
		}
	}
	return nil
}

// ReleaseTx marks a vacated room available again; removing one occupant
// guarantees a free slot.
func (s *OccupancyService) ReleaseTx(tx *gorm.DB, roomID uint) error {
	return tx.Model(&models.Room{}).Where("id = ?", roomID).
		Update("is_available", true).Error
}

// Checkout deactivates the guest and releases their room. Guests are
// archived, not deleted.
func (s *OccupancyService) Checkout(guestID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var guest models.Guest
		if err := tx.First(&guest, guestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGuestNotFound
			}
			return err
		}

		if err := tx.Model(&guest).Update("is_active", false).Error; err != nil {
			return err
		}

		if guest.RoomID != nil {
			return s.ReleaseTx(tx, *guest.RoomID)
		}
		return nil
	})
}

// Detach removes the guest from their room without deactivating them.
func (s *OccupancyService) Detach(guestID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var guest models.Guest
		if err := tx.First(&guest, guestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGuestNotFound
			}
			return err
		}
		if guest.RoomID == nil {
			return nil
		}
		roomID := *guest.RoomID
		if err := tx.Model(&guest).Update("room_id", nil).Error; err != nil {
			return err
		}
		return s.ReleaseTx(tx, roomID)
	})
}

// ReconcileAvailability recomputes the cached flag for every room from
// the authoritative guest count: zero occupancy means available, at or
// above capacity means unavailable. Rooms in between keep their manual
// flag.
func (s *OccupancyService) ReconcileAvailability() (int, error) {
	var rooms []models.Room
	if err := s.DB.Find(&rooms).Error; err != nil {
		return 0, err
	}

	changed := 0
	for i := range rooms {
		occ, err := s.Occupancy(rooms[i].ID)
		if err != nil {
			return changed, err
		}

		var want *bool
		switch {
		case occ == 0:
			v := true
			want = &v
		case occ >= int64(rooms[i].Capacity):
			v := false
			want = &v
		}
		if want == nil || *want == rooms[i].IsAvailable {
			continue
		}
		if err := s.DB.Model(&rooms[i]).Update("is_available", *want).Error; err != nil {
			return changed, err
		}
		changed++
	}
	return changed, nil
}
