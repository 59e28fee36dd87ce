package services

import (
	"errors"
	"fmt"
	"time"

	"rental-backend/models"
	"rental-backend/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GuestService handles tenant registration and updates. Room attachment
// always goes through the occupancy tracker's capacity guard.
type GuestService struct {
	DB        *gorm.DB
	Occupancy *OccupancyService
}

func NewGuestService(db *gorm.DB, occupancy *OccupancyService) *GuestService {
	return &GuestService{DB: db, Occupancy: occupancy}
}

// Register creates a guest and, when a room is given, assigns it under
// the capacity guard and seeds a pending rent row for every month of the
// stay window at the room's effective rent.
func (s *GuestService) Register(guest *models.Guest, roomID *uint) error {
	if guest.FirstName == "" || guest.LastName == "" {
		return errors.New("validation: first and last name are required")
	}
	guest.IsActive = true

	return s.DB.Transaction(func(tx *gorm.DB) error {
		// create unassigned first; AttachTx fills in room_id under the lock
		guest.RoomID = nil
		if err := tx.Create(guest).Error; err != nil {
			return fmt.Errorf("failed to create guest: %w", err)
		}

		if roomID == nil {
			return nil
		}

		if err := s.Occupancy.AttachTx(tx, guest, *roomID); err != nil {
			return err
		}
		guest.RoomID = roomID

		return s.seedMonthlyPayments(tx, guest, *roomID)
	})
}

// seedMonthlyPayments creates pending rent rows for each month the stay
// window touches. Existing (room, month) rows are left alone.
func (s *GuestService) seedMonthlyPayments(tx *gorm.DB, guest *models.Guest, roomID uint) error {
	if guest.CheckInDate == nil || guest.CheckOutDate == nil {
		return nil
	}
	if !guest.CheckOutDate.After(*guest.CheckInDate) {
		return errors.New("validation: check-out date must be after check-in date")
	}

	var room models.Room
	if err := tx.First(&room, roomID).Error; err != nil {
		return err
	}
	rent := room.EffectiveRent()
	if !rent.IsPositive() {
		return nil
	}

	for current := utils.FirstOfMonth(*guest.CheckInDate); current.Before(*guest.CheckOutDate); current = current.AddDate(0, 1, 0) {
		var existing models.MonthlyPayment
		err := tx.Where("room_id = ? AND month = ?", roomID, current).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		payment := models.MonthlyPayment{
			RoomID:        roomID,
			GuestID:       &guest.ID,
			Month:         current,
			RentAmount:    rent,
			PaidAmount:    decimal.Zero,
			PaymentStatus: models.StatusPending,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return fmt.Errorf("failed to seed payment for %s: %w", current.Format("2006-01"), err)
		}
	}
	return nil
}

// Update applies field changes. A room change re-runs the capacity guard
// and releases the vacated room.
func (s *GuestService) Update(guestID uint, updates map[string]interface{}, newRoomID *uint) (*models.Guest, error) {
	var guest models.Guest
	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&guest, guestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGuestNotFound
			}
			return err
		}

		// never let a blind update touch identity, room or activation
		// columns; reactivation must re-run the capacity guard
		delete(updates, "id")
		delete(updates, "room_id")
		delete(updates, "is_active")
		delete(updates, "created_at")
		delete(updates, "updated_at")

		if len(updates) > 0 {
			if err := tx.Model(&guest).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update guest: %w", err)
			}
		}

		if newRoomID == nil {
			return nil
		}
		if guest.RoomID != nil && *guest.RoomID == *newRoomID {
			return nil
		}
		// copy the vacated id: AttachTx overwrites guest.RoomID in place
		var prevID *uint
		if guest.RoomID != nil {
			v := *guest.RoomID
			prevID = &v
		}
		if err := s.Occupancy.AttachTx(tx, &guest, *newRoomID); err != nil {
			return err
		}
		if prevID != nil {
			if err := s.Occupancy.ReleaseTx(tx, *prevID); err != nil {
				return err
			}
		}
		guest.RoomID = newRoomID
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	if err := s.DB.Preload("Room").First(&guest, guestID).Error; err != nil {
		return nil, err
	}
	return &guest, nil
}

func (s *GuestService) GetByID(id uint) (*models.Guest, error) {
	var guest models.Guest
	if err := s.DB.Preload("Room").First(&guest, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGuestNotFound
		}
		return nil, err
	}
	return &guest, nil
}

// GetAll returns guests newest first; activeOnly filters out archived
// tenants.
func (s *GuestService) GetAll(activeOnly bool) ([]models.Guest, error) {
	q := s.DB.Preload("Room").Order("created_at DESC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var guests []models.Guest
	if err := q.Find(&guests).Error; err != nil {
		return nil, err
	}
	return guests, nil
}

// ActiveByRoom returns the current tenants of one room.
func (s *GuestService) ActiveByRoom(roomID uint) ([]models.Guest, error) {
	var guests []models.Guest
	err := s.DB.Where("room_id = ? AND is_active = ?", roomID, true).
		Order("check_in_date DESC").
		Find(&guests).Error
	if err != nil {
		return nil, err
	}
	return guests, nil
}

// Delete hard-deletes a guest and releases their room. Normal flow is
// Checkout (archive); this exists for admin corrections.
func (s *GuestService) Delete(id uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var guest models.Guest
		if err := tx.First(&guest, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGuestNotFound
			}
			return err
		}
		if err := tx.Delete(&guest).Error; err != nil {
			return err
		}
		if guest.RoomID != nil && guest.IsActive {
			return s.Occupancy.ReleaseTx(tx, *guest.RoomID)
		}
		return nil
	})
}

// SetDocumentPath stores an uploaded document path on one of the fixed
// slots.
func (s *GuestService) SetDocumentPath(guestID uint, column, path string) error {
	switch column {
	case "govt_id_photo_path", "college_id_photo_path", "document_verification_path":
	default:
		return fmt.Errorf("invalid document field: %s", column)
	}
	res := s.DB.Model(&models.Guest{}).Where("id = ?", guestID).Update(column, path)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrGuestNotFound
	}
	return nil
}

// ParseStayWindow parses stay dates from text input.
func ParseStayWindow(checkIn, checkOut string) (*time.Time, *time.Time, error) {
	var ci, co *time.Time
	if checkIn != "" {
		t, err := utils.ParseDate(checkIn)
		if err != nil {
			return nil, nil, err
		}
		ci = &t
	}
	if checkOut != "" {
		t, err := utils.ParseDate(checkOut)
		if err != nil {
			return nil, nil, err
		}
		co = &t
	}
	if ci != nil && co != nil && !co.After(*ci) {
		return nil, nil, errors.New("validation: check-out date must be after check-in date")
	}
	return ci, co, nil
}
