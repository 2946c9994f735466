package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/notbx57/peternakantelur/internal/handler"
	"github.com/notbx57/peternakantelur/internal/middleware"
	"github.com/notbx57/peternakantelur/internal/model"
	"github.com/notbx57/peternakantelur/internal/repository"
	"github.com/notbx57/peternakantelur/internal/service"
	"github.com/notbx57/peternakantelur/internal/ws"
	"github.com/notbx57/peternakantelur/pkg/database"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// 2. Setup Database
	db := database.ConnectDB()
	// Auto Migrate (Hati-hati di production, sebaiknya pakai tools migrasi terpisah)
	db.AutoMigrate(
		&model.User{},
		&model.Market{},
		&model.MarketMember{},
		&model.Kandang{},
		&model.KandangInvestor{},
		&model.Category{},
		&model.Transaction{},
		&model.Notification{},
		&model.InvestorRequest{},
	)

	// 3. Seed default transaction categories
	categoryRepo := repository.NewCategoryRepo(db)
	if err := categoryRepo.SeedDefaults(); err != nil {
		log.Printf("Warning: Failed to seed categories: %v", err)
	}

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 5. Dependency Injection (Wiring Layers)
	userRepo := repository.NewUserRepo(db)
	marketRepo := repository.NewMarketRepo(db)
	kandangRepo := repository.NewKandangRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	notificationRepo := repository.NewNotificationRepo(db)
	requestRepo := repository.NewInvestorRequestRepo(db)

	ledgerService := service.NewLedgerService(kandangRepo, txRepo)
	authService := service.NewAuthService(userRepo)
	roleService := service.NewRoleService(db, marketRepo, kandangRepo, userRepo)
	marketService := service.NewMarketService(db, marketRepo, kandangRepo, userRepo, ledgerService)
	kandangService := service.NewKandangService(db, kandangRepo, marketRepo, ledgerService)
	txService := service.NewTransactionService(db, txRepo)
	investorService := service.NewInvestorService(db, kandangRepo, requestRepo, wsHub)
	notificationService := service.NewNotificationService(notificationRepo)

	authHandler := handler.NewAuthHandler(authService)
	marketHandler := handler.NewMarketHandler(marketService, roleService)
	kandangHandler := handler.NewKandangHandler(kandangService, ledgerService, investorService, roleService)
	txHandler := handler.NewTransactionHandler(txService, categoryRepo)
	notificationHandler := handler.NewNotificationHandler(notificationService, investorService)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Peternakan Telur API v1.0",
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 7. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/validate-token", authHandler.ValidateToken)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(userRepo))

	// Profile
	protected.Put("/profile", authHandler.UpdateProfile)
	protected.Put("/profile/password", authHandler.ChangePassword)

	// Markets
	protected.Get("/markets", marketHandler.GetMarkets)
	protected.Get("/markets/mine", marketHandler.GetMyMarkets)
	protected.Get("/markets/count", marketHandler.GetMarketCount)
	protected.Get("/markets/check-handle", marketHandler.CheckHandle)
	protected.Get("/markets/handle/:handle", marketHandler.GetMarketByHandle)
	protected.Get("/markets/:id", marketHandler.GetMarket)
	protected.Post("/markets", marketHandler.CreateMarket)
	protected.Put("/markets/:id", marketHandler.UpdateMarket)
	protected.Delete("/markets/:id", marketHandler.DeleteMarket)
	protected.Get("/markets/:id/members", marketHandler.GetMembers)
	protected.Get("/markets/:id/role", marketHandler.GetMyRole)
	protected.Post("/markets/:id/co-owners", marketHandler.AddCoOwner)
	protected.Delete("/markets/:id/co-owners/:userId", marketHandler.RemoveCoOwner)
	protected.Get("/markets/:marketId/kandang", kandangHandler.ListByMarket)

	// Kandang
	protected.Post("/kandang", kandangHandler.CreateKandang)
	protected.Get("/kandang/:id", kandangHandler.GetKandang)
	protected.Put("/kandang/:id", kandangHandler.UpdateKandang)
	protected.Delete("/kandang/:id", kandangHandler.DeleteKandang)
	protected.Get("/kandang/:id/dashboard", kandangHandler.GetDashboard)
	protected.Get("/kandang/:id/stats", kandangHandler.GetStats)
	protected.Get("/kandang/:id/role", kandangHandler.GetMyRole)
	protected.Get("/kandang/:id/investors", kandangHandler.GetInvestors)
	protected.Post("/kandang/:id/investors", kandangHandler.AddInvestor)
	protected.Delete("/kandang/:id/investors/:userId", kandangHandler.RemoveInvestor)
	protected.Get("/kandang/:id/requests", kandangHandler.GetPendingRequests)
	protected.Get("/kandang/:kandangId/transactions", txHandler.List)

	// Investments (caller-scoped)
	protected.Get("/investments", kandangHandler.GetMyInvestments)

	// Transactions
	protected.Post("/transactions", txHandler.Create)
	protected.Get("/transactions/:id", txHandler.Get)
	protected.Put("/transactions/:id", txHandler.Update)
	protected.Delete("/transactions/:id", txHandler.Delete)
	protected.Get("/categories", txHandler.ListCategories)

	// Notifications & investor requests
	protected.Get("/notifications", notificationHandler.List)
	protected.Get("/notifications/unread-count", notificationHandler.UnreadCount)
	protected.Put("/notifications/:id/read", notificationHandler.MarkAsRead)
	protected.Put("/notifications/read-all", notificationHandler.MarkAllAsRead)
	protected.Post("/investor-requests", notificationHandler.RequestInvestor)
	protected.Post("/investor-requests/:requestId/accept", notificationHandler.AcceptRequest)
	protected.Post("/investor-requests/:requestId/reject", notificationHandler.RejectRequest)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		if err := app.Listen(":" + port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
