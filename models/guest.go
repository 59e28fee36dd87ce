package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

type Guest struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	FirstName string `json:"first_name" gorm:"size:100"`
	LastName  string `json:"last_name" gorm:"size:100"`
	Email     string `json:"email" gorm:"size:255"`
	Phone     string `json:"phone" gorm:"size:15"`
	Gender    string `json:"gender" gorm:"size:1;default:M"`

	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`

	Address string `json:"address" gorm:"type:text"`
	City    string `json:"city" gorm:"size:50"`
	State   string `json:"state" gorm:"size:50"`
	Country string `json:"country" gorm:"size:50"`
	ZipCode string `json:"zip_code" gorm:"size:20"`

	IDType   string `json:"id_type" gorm:"size:50"`
	IDNumber string `json:"id_number" gorm:"size:50"`

	GovtIDPhotoPath          string `json:"govt_id_photo,omitempty" gorm:"size:255"`
	CollegeID                string `json:"college_id" gorm:"size:100"`
	CollegeIDPhotoPath       string `json:"college_id_photo,omitempty" gorm:"size:255"`
	StudentCollege           string `json:"student_college" gorm:"size:100"`
	DocumentVerificationPath string `json:"document_verification_image,omitempty" gorm:"size:255"`

	// Additional uploaded document paths beyond the fixed slots.
	ExtraDocuments datatypes.JSON `json:"extra_documents,omitempty" gorm:"column:extra_documents"`

	CheckInDate  *time.Time `json:"check_in_date,omitempty"`
	CheckOutDate *time.Time `json:"check_out_date,omitempty"`

	RoomID *uint `json:"room_id,omitempty" gorm:"index;column:room_id"`
	Room   *Room `json:"room,omitempty" gorm:"foreignKey:RoomID"`

	Notes    string `json:"notes" gorm:"type:text"`
	IsActive bool   `json:"is_active" gorm:"default:true"`
}

func (g *Guest) FullName() string {
	return strings.TrimSpace(g.FirstName + " " + g.LastName)
}
