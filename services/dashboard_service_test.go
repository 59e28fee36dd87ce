package services

import (
	"testing"
	"time"

	"rental-backend/models"

	"github.com/shopspring/decimal"
)

func TestPerformanceDashboard(t *testing.T) {
	db := newTestDB(t)
	occupancy := NewOccupancyService(db)
	guests := NewGuestService(db, occupancy)
	ledger := NewLedgerService(db)
	expenses := NewExpenseService(db)
	dashboard := NewDashboardService(db, occupancy, expenses)

	occupied := mustCreateRoom(t, db, "501", 7000, 2)
	vacant := mustCreateRoom(t, db, "502", 5000, 1)

	registerGuest(t, guests, "Kiran", "Bose", &occupied.ID)

	asOf := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	payment, _, err := ledger.UpsertMonthlyPayment(occupied.ID, "2026-08", decimal.NewFromInt(7000), nil)
	if err != nil {
		t.Fatalf("UpsertMonthlyPayment: %v", err)
	}
	if _, err := ledger.RecordPayment(payment.ID, asOf, decimal.NewFromInt(3500), models.MethodCash, "", "", ""); err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}

	// one overdue row from an earlier month
	if _, _, err := ledger.UpsertMonthlyPayment(occupied.ID, "2026-06", decimal.NewFromInt(7000), nil); err != nil {
		t.Fatalf("UpsertMonthlyPayment(june): %v", err)
	}

	if err := expenses.Create(&models.MaintenanceExpense{
		BuildingName: "Main Block",
		Category:     models.ExpensePlumbing,
		Amount:       decimal.NewFromInt(1200),
		Date:         asOf,
	}); err != nil {
		t.Fatalf("expense create: %v", err)
	}

	summary, err := dashboard.Performance(asOf)
	if err != nil {
		t.Fatalf("Performance: %v", err)
	}

	if summary.Month != "2026-08" {
		t.Fatalf("month = %s, want 2026-08", summary.Month)
	}
	if summary.TotalRooms != 2 || summary.OccupiedRooms != 1 {
		t.Fatalf("rooms = %d/%d occupied, want 2/1", summary.TotalRooms, summary.OccupiedRooms)
	}

	// expected: 7000 (ledger row) + 5000 (vacant room effective rent)
	if !summary.ExpectedThisMonth.Equal(decimal.NewFromInt(12000)) {
		t.Fatalf("expected = %s, want 12000", summary.ExpectedThisMonth)
	}
	if !summary.CollectedThisMonth.Equal(decimal.NewFromInt(3500)) {
		t.Fatalf("collected = %s, want 3500", summary.CollectedThisMonth)
	}
	if !summary.PendingThisMonth.Equal(decimal.NewFromInt(8500)) {
		t.Fatalf("pending = %s, want 8500", summary.PendingThisMonth)
	}
	if summary.CollectionEfficiency != 29 {
		t.Fatalf("efficiency = %d, want 29", summary.CollectionEfficiency)
	}
	if summary.OverduePayments != 1 {
		t.Fatalf("overdue = %d, want 1", summary.OverduePayments)
	}
	if !summary.TotalExpenses.Equal(decimal.NewFromInt(1200)) {
		t.Fatalf("expenses = %s, want 1200", summary.TotalExpenses)
	}

	if len(summary.RoomCollections) != 2 {
		t.Fatalf("room lines = %d, want 2", len(summary.RoomCollections))
	}
	byNumber := map[string]RoomCollection{}
	for _, line := range summary.RoomCollections {
		byNumber[line.RoomNumber] = line
	}

	occLine := byNumber[occupied.Number]
	if occLine.GuestName != "Kiran Bose" {
		t.Fatalf("guest name = %q, want Kiran Bose", occLine.GuestName)
	}
	if occLine.CollectionPercentage != 50 {
		t.Fatalf("collection pct = %d, want 50", occLine.CollectionPercentage)
	}
	if occLine.PaymentStatus != models.StatusPartial {
		t.Fatalf("status = %s, want partial", occLine.PaymentStatus)
	}
	if occLine.MonthlyPaymentID == nil || *occLine.MonthlyPaymentID != payment.ID {
		t.Fatal("occupied line not linked to ledger row")
	}

	vacLine := byNumber[vacant.Number]
	if vacLine.GuestName != "Vacant" {
		t.Fatalf("vacant line guest = %q, want Vacant", vacLine.GuestName)
	}
	if !vacLine.Pending.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("vacant pending = %s, want 5000", vacLine.Pending)
	}
	if vacLine.MonthlyPaymentID != nil {
		t.Fatal("vacant line must not carry a ledger id")
	}
}
