package routes

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"rental-backend/controllers"
	"rental-backend/middleware"
)

func parseCorsOrigins() []string {
	raw := strings.TrimSpace(os.Getenv("CORS_ORIGINS"))
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// SetupRouter wires the controllers. Everything under /api except
// /api/auth/login requires a valid admin token.
func SetupRouter(
	ac *controllers.AuthController,
	rc *controllers.RoomController,
	gc *controllers.GuestController,
	pc *controllers.PaymentController,
	bc *controllers.BillingController,
	ec *controllers.ExpenseController,
	dc *controllers.DashboardController,
	jwtSecret string,
	db *gorm.DB,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Static("/uploads", "./uploads")

	origins := parseCorsOrigins()
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/login", ac.Login)
	}

	protected := api.Group("")
	protected.Use(middleware.Auth(jwtSecret, db))
	{
		rooms := protected.Group("/rooms")
		{
			rooms.GET("", rc.GetRooms)

			// must come before /:id
			rooms.GET("/available", rc.GetAvailableRooms)
			rooms.POST("/reconcile-availability", rc.ReconcileAvailability)

			rooms.GET("/:id", rc.GetRoom)
			rooms.POST("", rc.CreateRoom)
			rooms.PATCH("/:id", rc.UpdateRoom)
			rooms.PUT("/:id", rc.UpdateRoom)
			rooms.DELETE("/:id", rc.DeleteRoom)
			rooms.GET("/:id/tenants", rc.GetRoomTenants)
			rooms.GET("/:id/payment-history", pc.GetPaymentHistory)
			rooms.GET("/:id/bill-history", bc.GetBillHistory)
		}

		guests := protected.Group("/guests")
		{
			guests.GET("", gc.GetGuests)
			guests.GET("/:id", gc.GetGuestByID)
			guests.POST("", gc.RegisterGuest)
			guests.PUT("/:id", gc.UpdateGuest)
			guests.POST("/:id/assign-room", gc.AssignRoom)
			guests.POST("/:id/detach", gc.DetachRoom)
			guests.POST("/:id/checkout", gc.CheckoutGuest)
			guests.POST("/:id/documents", gc.UploadDocument)
			guests.DELETE("/:id", gc.DeleteGuest)
		}

		payments := protected.Group("/payments")
		{
			payments.GET("", pc.GetPayments)

			// must come before /:id
			payments.POST("/reconcile", pc.ReconcilePayments)
			payments.POST("/mark-overdue", pc.MarkOverdue)

			payments.GET("/:id", pc.GetPayment)
			payments.POST("", pc.UpsertMonthlyPayment)
			payments.POST("/:id/records", pc.RecordPayment)
		}

		paymentRecords := protected.Group("/payment-records")
		{
			paymentRecords.PATCH("/:id", pc.UpdatePaymentRecord)
			paymentRecords.DELETE("/:id", pc.DeletePaymentRecord)
		}

		bills := protected.Group("/bills")
		{
			bills.GET("", bc.GetBills)

			bills.POST("/reconcile", bc.ReconcileBills)
			bills.POST("/mark-overdue", bc.MarkOverdueBills)

			bills.GET("/:id", bc.GetBill)
			bills.POST("", bc.UpsertBill)
			bills.POST("/:id/payments", bc.RecordBillPayment)
		}

		expenses := protected.Group("/expenses")
		{
			expenses.GET("", ec.GetExpenses)
			expenses.POST("", ec.CreateExpense)
			expenses.PATCH("/:id", ec.UpdateExpense)
			expenses.DELETE("/:id", ec.DeleteExpense)
		}

		dashboard := protected.Group("/dashboard")
		{
			dashboard.GET("/performance", dc.GetPerformance)
		}
	}

	return r
}
