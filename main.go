package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"rental-backend/config"
	"rental-backend/controllers"
	"rental-backend/routes"
	"rental-backend/services"
	"rental-backend/utils"
)

func main() {
	// Load .env (optional)
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env not found or couldn't load it; continuing with environment variables")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("❌ ERROR: JWT_SECRET environment variable is not set.")
	}

	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("❌ Database connect failed: %v", err)
	}
	db := config.DB
	if db == nil {
		log.Fatal("❌ config.DB is nil after ConnectDatabase()")
	}
	log.Println("✅ Database connection established and migrations applied.")

	// Services
	occupancyService := services.NewOccupancyService(db)
	roomService := services.NewRoomService(db, occupancyService)
	guestService := services.NewGuestService(db, occupancyService)
	ledgerService := services.NewLedgerService(db)
	billingService := services.NewBillingService(db)
	expenseService := services.NewExpenseService(db)
	dashboardService := services.NewDashboardService(db, occupancyService, expenseService)

	// Controllers
	authController := controllers.NewAuthController(jwtSecret)
	roomController := controllers.NewRoomController(roomService, guestService, occupancyService)
	guestController := controllers.NewGuestController(guestService, occupancyService)
	paymentController := controllers.NewPaymentController(ledgerService)
	billingController := controllers.NewBillingController(billingService)
	expenseController := controllers.NewExpenseController(expenseService)
	dashboardController := controllers.NewDashboardController(dashboardService)

	router := routes.SetupRouter(
		authController,
		roomController,
		guestController,
		paymentController,
		billingController,
		expenseController,
		dashboardController,
		jwtSecret,
		db,
	)

	addr := ":" + utils.EnvOrDefault("PORT", "8080")

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("🚀 Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("⚠️  Shutdown signal received, shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
