package controllers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"rental-backend/models"
	"rental-backend/services"
	"rental-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type RoomController struct {
	Rooms     *services.RoomService
	Guests    *services.GuestService
	Occupancy *services.OccupancyService
}

func NewRoomController(rooms *services.RoomService, guests *services.GuestService, occupancy *services.OccupancyService) *RoomController {
	return &RoomController{Rooms: rooms, Guests: guests, Occupancy: occupancy}
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return uint(id), true
}

// GET /api/rooms
func (rc *RoomController) GetRooms(c *gin.Context) {
	rooms, err := rc.Rooms.GetAll()
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to load rooms")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rooms)
}

// GET /api/rooms/available
func (rc *RoomController) GetAvailableRooms(c *gin.Context) {
	rooms, err := rc.Rooms.GetAvailable()
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to load rooms")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rooms)
}

// GET /api/rooms/:id
func (rc *RoomController) GetRoom(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	room, err := rc.Rooms.GetByID(id)
	if err != nil {
		if errors.Is(err, services.ErrRoomNotFound) {
			utils.JSONError(c, http.StatusNotFound, "room not found")
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to load room")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, room)
}

type createRoomPayload struct {
	Number     string           `json:"number" binding:"required"`
	RoomType   string           `json:"room_type" binding:"required"`
	Price      decimal.Decimal  `json:"price"`
	AgreedRent *decimal.Decimal `json:"agreed_rent"`
	Capacity   int              `json:"capacity"`
	Available  *bool            `json:"is_available"`
}

func buildRoom(payload createRoomPayload) (*models.Room, error) {
	if payload.Price.IsNegative() {
		return nil, errors.New("validation: price must not be negative")
	}
	if payload.AgreedRent != nil && !payload.AgreedRent.IsPositive() {
		return nil, errors.New("validation: agreed rent must be greater than 0")
	}
	room := &models.Room{
		Number:      payload.Number,
		RoomType:    payload.RoomType,
		Price:       payload.Price,
		AgreedRent:  payload.AgreedRent,
		Capacity:    payload.Capacity,
		IsAvailable: true,
	}
	if payload.Available != nil {
		room.IsAvailable = *payload.Available
	}
	return room, nil
}

// POST /api/rooms
func (rc *RoomController) CreateRoom(c *gin.Context) {
	var payload createRoomPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		log.Printf("❌ JSON binding error: %v", err)
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	room, err := buildRoom(payload)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := rc.Rooms.Create(room); err != nil {
		lc := strings.ToLower(err.Error())
		if strings.Contains(lc, "duplicate") || strings.Contains(lc, "unique") {
			utils.JSONError(c, http.StatusConflict,
				fmt.Sprintf("room %s already exists", room.Number))
			return
		}
		if strings.HasPrefix(err.Error(), "validation:") {
			utils.JSONError(c, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("❌ room create failed: %v", err)
		utils.JSONError(c, http.StatusInternalServerError, "database error")
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, room)
}

// PATCH /api/rooms/:id
func (rc *RoomController) UpdateRoom(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := rc.Rooms.Update(id, updates); err != nil {
		switch {
		case errors.Is(err, services.ErrRoomNotFound):
			utils.JSONError(c, http.StatusNotFound, "room not found")
		case strings.HasPrefix(err.Error(), "validation:"):
			utils.JSONError(c, http.StatusBadRequest, err.Error())
		default:
			log.Printf("❌ room update failed: %v", err)
			utils.JSONError(c, http.StatusInternalServerError, "update failed")
		}
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"message": "room updated"})
}

// DELETE /api/rooms/:id
func (rc *RoomController) DeleteRoom(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := rc.Rooms.Delete(id); err != nil {
		if errors.Is(err, services.ErrRoomNotFound) {
			utils.JSONError(c, http.StatusNotFound, "room not found")
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to delete room")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"message": "room deleted"})
}

// GET /api/rooms/:id/tenants
func (rc *RoomController) GetRoomTenants(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	guests, err := rc.Guests.ActiveByRoom(id)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to load tenants")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, guests)
}

// POST /api/rooms/reconcile-availability
func (rc *RoomController) ReconcileAvailability(c *gin.Context) {
	changed, err := rc.Occupancy.ReconcileAvailability()
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "reconciliation failed")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"rooms_updated": changed})
}
