package services

import (
	"errors"
	"fmt"
	"strings"

	"rental-backend/models"

	"gorm.io/gorm"
)

type RoomService struct {
	DB        *gorm.DB
	Occupancy *OccupancyService
}

func NewRoomService(db *gorm.DB, occupancy *OccupancyService) *RoomService {
	return &RoomService{DB: db, Occupancy: occupancy}
}

// RoomView is a room plus its derived occupancy state.
type RoomView struct {
	models.Room
	RoomState
}

func (s *RoomService) Create(room *models.Room) error {
	room.Number = strings.TrimSpace(room.Number)
	if room.Number == "" {
		return errors.New("validation: room number is required")
	}
	if !models.IsValidRoomType(room.RoomType) {
		return fmt.Errorf("validation: invalid room type %q", room.RoomType)
	}
	if room.Capacity < 1 {
		room.Capacity = 1
	}
	return s.DB.Create(room).Error
}

func (s *RoomService) GetAll() ([]RoomView, error) {
	var rooms []models.Room
	if err := s.DB.Order("number").Find(&rooms).Error; err != nil {
		return nil, err
	}
	return s.withState(rooms)
}

// GetAvailable lists bookable rooms: manual flag set AND below capacity.
func (s *RoomService) GetAvailable() ([]RoomView, error) {
	var rooms []models.Room
	if err := s.DB.Where("is_available = ?", true).Order("number").Find(&rooms).Error; err != nil {
		return nil, err
	}
	views, err := s.withState(rooms)
	if err != nil {
		return nil, err
	}
	out := views[:0]
	for _, v := range views {
		if v.EffectiveAvailability {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *RoomService) withState(rooms []models.Room) ([]RoomView, error) {
	views := make([]RoomView, 0, len(rooms))
	for i := range rooms {
		state, err := s.Occupancy.StateOf(&rooms[i])
		if err != nil {
			return nil, err
		}
		views = append(views, RoomView{Room: rooms[i], RoomState: *state})
	}
	return views, nil
}

func (s *RoomService) GetByID(id uint) (*RoomView, error) {
	var room models.Room
	if err := s.DB.First(&room, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	state, err := s.Occupancy.StateOf(&room)
	if err != nil {
		return nil, err
	}
	return &RoomView{Room: room, RoomState: *state}, nil
}

// Update applies partial changes. Lowering capacity never evicts sitting
// tenants; the breach is only prevented at the next assignment.
func (s *RoomService) Update(id uint, updates map[string]interface{}) error {
	delete(updates, "id")
	delete(updates, "created_at")
	delete(updates, "updated_at")
	delete(updates, "deleted_at")

	if t, ok := updates["room_type"].(string); ok && !models.IsValidRoomType(t) {
		return fmt.Errorf("validation: invalid room type %q", t)
	}

	res := s.DB.Model(&models.Room{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRoomNotFound
	}
	return nil
}

func (s *RoomService) Delete(id uint) error {
	res := s.DB.Delete(&models.Room{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRoomNotFound
	}
	return nil
}
