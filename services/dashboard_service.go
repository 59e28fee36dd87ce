package services

import (
	"time"

	"rental-backend/models"
	"rental-backend/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DashboardService aggregates collections performance. All money math is
// done on decimal accumulators; floats only appear at the JSON boundary.
type DashboardService struct {
	DB        *gorm.DB
	Occupancy *OccupancyService
	Expenses  *ExpenseService
}

func NewDashboardService(db *gorm.DB, occupancy *OccupancyService, expenses *ExpenseService) *DashboardService {
	return &DashboardService{DB: db, Occupancy: occupancy, Expenses: expenses}
}

// RoomCollection is the per-room current-month line of the dashboard.
type RoomCollection struct {
	RoomNumber           string               `json:"room_number"`
	GuestName            string               `json:"guest_name"`
	MonthlyRent          decimal.Decimal      `json:"monthly_rent"`
	Collected            decimal.Decimal      `json:"collected"`
	Pending              decimal.Decimal      `json:"pending"`
	CollectionPercentage int                  `json:"collection_percentage"`
	PaymentStatus        models.PaymentStatus `json:"payment_status"`
	MonthlyPaymentID     *uint                `json:"monthly_payment_id,omitempty"`
}

// PerformanceSummary is the dashboard payload.
type PerformanceSummary struct {
	Month                string           `json:"month"`
	TotalRooms           int64            `json:"total_rooms"`
	OccupiedRooms        int64            `json:"occupied_rooms"`
	TotalCollected       decimal.Decimal  `json:"total_collected"`
	ExpectedThisMonth    decimal.Decimal  `json:"expected_this_month"`
	CollectedThisMonth   decimal.Decimal  `json:"collected_this_month"`
	PendingThisMonth     decimal.Decimal  `json:"pending_this_month"`
	CollectionEfficiency int              `json:"collection_efficiency"`
	OverduePayments      int64            `json:"overdue_payments"`
	TotalExpenses        decimal.Decimal  `json:"total_expenses"`
	RoomCollections      []RoomCollection `json:"room_collections"`
}

// Performance builds the collections dashboard for the month containing
// asOf. Rooms with no rent row for the month are reported as pending at
// their effective rent.
func (s *DashboardService) Performance(asOf time.Time) (*PerformanceSummary, error) {
	currentMonth := utils.FirstOfMonth(asOf)

	var rooms []models.Room
	if err := s.DB.Order("number").Find(&rooms).Error; err != nil {
		return nil, err
	}

	var occupied int64
	if err := s.DB.Model(&models.Guest{}).
		Where("room_id IS NOT NULL AND is_active = ?", true).
		Count(&occupied).Error; err != nil {
		return nil, err
	}

	// all-time collected, from the itemized records
	var records []models.PaymentRecord
	if err := s.DB.Find(&records).Error; err != nil {
		return nil, err
	}
	totalCollected := decimal.Zero
	for i := range records {
		totalCollected = totalCollected.Add(records[i].PaymentAmount)
	}

	expected := decimal.Zero
	collected := decimal.Zero
	pending := decimal.Zero
	collections := make([]RoomCollection, 0, len(rooms))

	for i := range rooms {
		room := &rooms[i]

		var guest models.Guest
		guestName := "Vacant"
		if err := s.DB.Where("room_id = ? AND is_active = ?", room.ID, true).
			First(&guest).Error; err == nil {
			guestName = guest.FullName()
		}

		line := RoomCollection{RoomNumber: room.Number, GuestName: guestName}

		var payment models.MonthlyPayment
		err := s.DB.Where("room_id = ? AND month = ?", room.ID, currentMonth).
			First(&payment).Error
		if err == nil {
			line.MonthlyRent = payment.RentAmount
			line.Collected = payment.PaidAmount
			line.Pending = payment.RemainingAmount()
			line.PaymentStatus = payment.PaymentStatus
			id := payment.ID
			line.MonthlyPaymentID = &id
		} else {
			line.MonthlyRent = room.EffectiveRent()
			line.Collected = decimal.Zero
			line.Pending = line.MonthlyRent
			line.PaymentStatus = models.StatusPending
		}

		if line.MonthlyRent.IsPositive() {
			pct := line.Collected.Div(line.MonthlyRent).Mul(decimal.NewFromInt(100)).IntPart()
			if pct > 100 {
				pct = 100
			}
			line.CollectionPercentage = int(pct)
		}

		expected = expected.Add(line.MonthlyRent)
		collected = collected.Add(line.Collected)
		pending = pending.Add(line.Pending)
		collections = append(collections, line)
	}

	efficiency := 0
	if expected.IsPositive() {
		efficiency = int(collected.Div(expected).Mul(decimal.NewFromInt(100)).IntPart())
	}

	var overdue int64
	if err := s.DB.Model(&models.MonthlyPayment{}).
		Where("payment_status IN ?", []models.PaymentStatus{models.StatusPending, models.StatusPartial, models.StatusOverdue}).
		Where("paid_date IS NULL").
		Where("month < ?", currentMonth).
		Count(&overdue).Error; err != nil {
		return nil, err
	}

	totalExpenses, err := s.Expenses.Total()
	if err != nil {
		return nil, err
	}

	return &PerformanceSummary{
		Month:                currentMonth.Format("2006-01"),
		TotalRooms:           int64(len(rooms)),
		OccupiedRooms:        occupied,
		TotalCollected:       totalCollected,
		ExpectedThisMonth:    expected,
		CollectedThisMonth:   collected,
		PendingThisMonth:     pending,
		CollectionEfficiency: efficiency,
		OverduePayments:      overdue,
		TotalExpenses:        totalExpenses,
		RoomCollections:      collections,
	}, nil
}
