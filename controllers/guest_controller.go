package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"rental-backend/models"
	"rental-backend/services"
	"rental-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

type GuestController struct {
	Guests    *services.GuestService
	Occupancy *services.OccupancyService
}

func NewGuestController(guests *services.GuestService, occupancy *services.OccupancyService) *GuestController {
	return &GuestController{Guests: guests, Occupancy: occupancy}
}

// GET /api/guests?active=true
func (gc *GuestController) GetGuests(c *gin.Context) {
	activeOnly := c.Query("active") == "true"
	guests, err := gc.Guests.GetAll(activeOnly)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to load guests")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, guests)
}

// GET /api/guests/:id
func (gc *GuestController) GetGuestByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	guest, err := gc.Guests.GetByID(id)
	if err != nil {
		if errors.Is(err, services.ErrGuestNotFound) {
			utils.JSONError(c, http.StatusNotFound, "guest not found")
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to load guest")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, guest)
}

// document upload slots: form field -> (db column, uploads subdir)
var documentSlots = []struct {
	field  string
	column string
	subdir string
}{
	{"govt_id_photo", "govt_id_photo_path", "govt_ids"},
	{"college_id_photo", "college_id_photo_path", "college_ids"},
	{"document_verification_image", "document_verification_path", "document_verification"},
}

// POST /api/guests — multipart registration with document uploads.
func (gc *GuestController) RegisterGuest(c *gin.Context) {
	guest := models.Guest{
		FirstName:      strings.TrimSpace(c.PostForm("first_name")),
		LastName:       strings.TrimSpace(c.PostForm("last_name")),
		Email:          strings.TrimSpace(c.PostForm("email")),
		Phone:          strings.TrimSpace(c.PostForm("phone")),
		Gender:         c.DefaultPostForm("gender", "M"),
		Address:        c.PostForm("address"),
		City:           c.PostForm("city"),
		State:          c.PostForm("state"),
		Country:        c.PostForm("country"),
		ZipCode:        c.PostForm("zip_code"),
		IDType:         c.PostForm("id_type"),
		IDNumber:       c.PostForm("id_number"),
		CollegeID:      c.PostForm("college_id"),
		StudentCollege: c.PostForm("student_college"),
		Notes:          c.PostForm("notes"),
	}

	if dob := c.PostForm("date_of_birth"); dob != "" {
		t, err := utils.ParseDate(dob)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, err.Error())
			return
		}
		guest.DateOfBirth = &t
	}

	ci, co, err := services.ParseStayWindow(c.PostForm("check_in_date"), c.PostForm("check_out_date"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, err.Error())
		return
	}
	guest.CheckInDate = ci
	guest.CheckOutDate = co

	var roomID *uint
	if raw := c.PostForm("room_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid room_id")
			return
		}
		v := uint(id)
		roomID = &v
	}

	// validate all uploads before anything is written
	for _, slot := range documentSlots {
		if fh, err := c.FormFile(slot.field); err == nil {
			if vErr := services.ValidateImageUpload(fh); vErr != nil {
				utils.JSONError(c, http.StatusBadRequest, vErr.Error())
				return
			}
		}
	}
	for _, slot := range documentSlots {
		fh, err := c.FormFile(slot.field)
		if err != nil {
			continue
		}
		path, err := services.SaveUploadedImage(fh, slot.subdir)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, err.Error())
			return
		}
		switch slot.column {
		case "govt_id_photo_path":
			guest.GovtIDPhotoPath = path
		case "college_id_photo_path":
			guest.CollegeIDPhotoPath = path
		case "document_verification_path":
			guest.DocumentVerificationPath = path
		}
	}

	if err := gc.Guests.Register(&guest, roomID); err != nil {
		switch {
		case errors.Is(err, services.ErrRoomFull):
			utils.JSONError(c, http.StatusConflict, "room full")
		case errors.Is(err, services.ErrRoomNotFound):
			utils.JSONError(c, http.StatusNotFound, "room not found")
		case strings.HasPrefix(err.Error(), "validation:"):
			utils.JSONError(c, http.StatusBadRequest, err.Error())
		default:
			log.Printf("❌ guest registration failed: %v", err)
			utils.JSONError(c, http.StatusInternalServerError, "failed to register guest")
		}
		return
	}

	utils.JSONSuccess(c, http.StatusCreated, guest)
}

type updateGuestPayload struct {
	Updates map[string]interface{} `json:"updates"`
	RoomID  *uint                  `json:"room_id"`
}

// PUT /api/guests/:id
func (gc *GuestController) UpdateGuest(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var payload updateGuestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload")
		return
	}
	if payload.Updates == nil {
		payload.Updates = map[string]interface{}{}
	}

	guest, err := gc.Guests.Update(id, payload.Updates, payload.RoomID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrGuestNotFound):
			utils.JSONError(c, http.StatusNotFound, "guest not found")
		case errors.Is(err, services.ErrRoomFull):
			utils.JSONError(c, http.StatusConflict, "room full")
		case errors.Is(err, services.ErrRoomNotFound):
			utils.JSONError(c, http.StatusNotFound, "room not found")
		default:
			log.Printf("❌ guest update failed: %v", err)
			utils.JSONError(c, http.StatusInternalServerError, "failed to update guest")
		}
		return
	}
	utils.JSONSuccess(c, http.StatusOK, guest)
}

type assignRoomPayload struct {
	RoomID uint `json:"room_id" binding:"required"`
}

// POST /api/guests/:id/assign-room — direct room assignment/move under
// the capacity guard, without touching other guest fields.
func (gc *GuestController) AssignRoom(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var payload assignRoomPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := gc.Occupancy.AssignGuest(id, payload.RoomID); err != nil {
		switch {
		case errors.Is(err, services.ErrGuestNotFound):
			utils.JSONError(c, http.StatusNotFound, "guest not found")
		case errors.Is(err, services.ErrRoomNotFound):
			utils.JSONError(c, http.StatusNotFound, "room not found")
		case errors.Is(err, services.ErrRoomFull):
			utils.JSONError(c, http.StatusConflict, "room full")
		default:
			log.Printf("❌ room assignment failed: %v", err)
			utils.JSONError(c, http.StatusInternalServerError, "failed to assign room")
		}
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"message": "room assigned"})
}

// POST /api/guests/:id/detach — removes the guest from their room while
// keeping them active.
func (gc *GuestController) DetachRoom(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := gc.Occupancy.Detach(id); err != nil {
		if errors.Is(err, services.ErrGuestNotFound) {
			utils.JSONError(c, http.StatusNotFound, "guest not found")
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to detach guest")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"message": "guest detached"})
}

// POST /api/guests/:id/checkout — archives the guest and releases the
// room.
func (gc *GuestController) CheckoutGuest(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := gc.Occupancy.Checkout(id); err != nil {
		if errors.Is(err, services.ErrGuestNotFound) {
			utils.JSONError(c, http.StatusNotFound, "guest not found")
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "checkout failed")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"message": "guest checked out"})
}

// DELETE /api/guests/:id
func (gc *GuestController) DeleteGuest(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := gc.Guests.Delete(id); err != nil {
		if errors.Is(err, services.ErrGuestNotFound) {
			utils.JSONError(c, http.StatusNotFound, "guest not found")
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to delete guest")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"message": "guest deleted"})
}

type uploadDocumentPayload struct {
	Field string `json:"field" binding:"required"`
	Image string `json:"image" binding:"required"` // base64
}

// POST /api/guests/:id/documents — JSON/base64 document upload. Known
// fields land on the fixed slots; anything else is appended to the
// guest's extra documents.
func (gc *GuestController) UploadDocument(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var payload uploadDocumentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	guest, err := gc.Guests.GetByID(id)
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "guest not found")
		return
	}

	for _, slot := range documentSlots {
		if payload.Field != slot.field {
			continue
		}
		path, err := services.SaveBase64Image(payload.Image, slot.subdir)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, err.Error())
			return
		}
		if err := gc.Guests.SetDocumentPath(id, slot.column, path); err != nil {
			utils.JSONError(c, http.StatusInternalServerError, "failed to save document")
			return
		}
		utils.JSONSuccess(c, http.StatusOK, gin.H{"path": path})
		return
	}

	// unknown field: extra document
	path, err := services.SaveBase64Image(payload.Image, "extra_documents")
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, err.Error())
		return
	}

	extras := map[string]string{}
	if len(guest.ExtraDocuments) > 0 {
		_ = json.Unmarshal(guest.ExtraDocuments, &extras)
	}
	extras[payload.Field] = path
	raw, _ := json.Marshal(extras)
	if err := gc.Guests.DB.Model(&models.Guest{}).Where("id = ?", id).
		Update("extra_documents", datatypes.JSON(raw)).Error; err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to save document")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"path": path})
}
