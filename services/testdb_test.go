package services

import (
	"fmt"
	"strings"
	"testing"

	"rental-backend/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Admin{},
		&models.Room{},
		&models.Guest{},
		&models.MonthlyPayment{},
		&models.PaymentRecord{},
		&models.ElectricityBill{},
		&models.MaintenanceExpense{},
	); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}

func mustCreateRoom(t *testing.T, db *gorm.DB, number string, price int64, capacity int) *models.Room {
	t.Helper()
	room := &models.Room{
		Number:      number,
		RoomType:    models.RoomTypeDouble,
		Price:       decimal.NewFromInt(price),
		Capacity:    capacity,
		IsAvailable: true,
	}
	if err := db.Create(room).Error; err != nil {
		t.Fatalf("failed to create room %s: %v", number, err)
	}
	return room
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}
