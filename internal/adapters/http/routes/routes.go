package routes

import (
	"epersmip-backend/internal/adapters/http/handlers"
	"epersmip-backend/internal/adapters/http/middleware"
	"epersmip-backend/internal/adapters/persistence/repositories"
	"epersmip-backend/internal/config"
	"epersmip-backend/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	bookRepo := repositories.NewBookRepository(db)
	tagRepo := repositories.NewTagRepository(db)
	borrowRepo := repositories.NewBorrowRepository(db)
	borrowLogRepo := repositories.NewBorrowLogRepository(db)
	reviewRepo := repositories.NewReviewRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	userService := services.NewUserService(userRepo)
	bookService := services.NewBookService(bookRepo, tagRepo)
	borrowService := services.NewBorrowService(borrowRepo, borrowLogRepo, bookRepo, userRepo)
	reviewService := services.NewReviewService(reviewRepo, borrowRepo, bookRepo)
	statsService := services.NewStatisticsService(db)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	bookHandler := handlers.NewBookHandler(bookService)
	borrowHandler := handlers.NewBorrowHandler(borrowService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	statsHandler := handlers.NewStatisticsHandler(statsService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")

	// Auth routes (public, rate limited)
	authRoutes := apiV1.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// Book catalog routes (browsing is public)
	bookRoutes := apiV1.Group("/books")
	setupBookRoutes(bookRoutes, bookHandler, borrowHandler, reviewHandler, cfg)

	// Categories (public)
	apiV1.Get("/categories", bookHandler.ListCategories)
	apiV1.Get("/authors", bookHandler.ListAuthors)

	// Borrow routes (authenticated)
	borrowRoutes := apiV1.Group("/borrows")
	borrowRoutes.Use(middleware.AuthMiddleware(cfg))
	setupBorrowRoutes(borrowRoutes, borrowHandler)

	// Review mutation routes (authenticated)
	reviewRoutes := apiV1.Group("/reviews")
	reviewRoutes.Use(middleware.AuthMiddleware(cfg))
	reviewRoutes.Put("/:id", reviewHandler.UpdateReview)
	reviewRoutes.Delete("/:id", reviewHandler.DeleteReview)

	// User management routes (admin only)
	userRoutes := apiV1.Group("/users")
	userRoutes.Use(middleware.AuthMiddleware(cfg))
	setupUserRoutes(userRoutes, userHandler)

	// Statistics routes (admin only)
	statsRoutes := apiV1.Group("/statistics")
	statsRoutes.Use(middleware.AuthMiddleware(cfg))
	statsRoutes.Use(middleware.AdminOnly())
	setupStatisticsRoutes(statsRoutes, statsHandler)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes (stricter rate limit)
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", middleware.AuthRateLimiter(), handler.RefreshToken)
	router.Post("/logout", handler.Logout)
	router.Get("/check-email", handler.CheckEmail)
	router.Get("/check-nim", handler.CheckNim)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupBookRoutes configures book catalog routes
func setupBookRoutes(
	router fiber.Router,
	bookHandler *handlers.BookHandler,
	borrowHandler *handlers.BorrowHandler,
	reviewHandler *handlers.ReviewHandler,
	cfg *config.Config,
) {
	// Public browsing
	router.Get("/", bookHandler.ListBooks)
	router.Get("/:id", bookHandler.GetBook)
	router.Get("/:id/reviews", reviewHandler.ListReviews)

	// Authenticated actions on a book
	router.Post("/:id/borrow", middleware.AuthMiddleware(cfg), borrowHandler.Borrow)
	router.Get("/:id/borrow-eligibility", middleware.AuthMiddleware(cfg), borrowHandler.BorrowEligibility)
	router.Post("/:id/reviews", middleware.AuthMiddleware(cfg), reviewHandler.CreateReview)
	router.Get("/:id/review-eligibility", middleware.AuthMiddleware(cfg), reviewHandler.ReviewEligibility)

	// Catalog management (admin only)
	adminRoutes := router.Group("")
	adminRoutes.Use(middleware.AuthMiddleware(cfg))
	adminRoutes.Use(middleware.AdminOnly())
	adminRoutes.Post("/", bookHandler.CreateBook)
	adminRoutes.Put("/:id", bookHandler.UpdateBook)
	adminRoutes.Delete("/:id", bookHandler.DeleteBook)
}

// setupBorrowRoutes configures borrow workflow routes
func setupBorrowRoutes(router fiber.Router, handler *handlers.BorrowHandler) {
	// Borrower routes
	router.Get("/my", handler.ListMy)
	router.Put("/:id/return", handler.Return)

	// Admin routes
	adminRoutes := router.Group("")
	adminRoutes.Use(middleware.AdminOnly())
	adminRoutes.Get("/", handler.ListAll)
	adminRoutes.Put("/:id", handler.AdminUpdate)
	adminRoutes.Get("/:id/history", handler.History)
}

// setupUserRoutes configures user management routes
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler) {
	// Authenticated self-service
	router.Put("/me/password", handler.ChangePassword)

	// Admin routes
	adminRoutes := router.Group("")
	adminRoutes.Use(middleware.AdminOnly())
	adminRoutes.Get("/", handler.ListUsers)
	adminRoutes.Get("/:id", handler.GetUser)
	adminRoutes.Put("/:id", handler.UpdateUser)
	adminRoutes.Delete("/:id", handler.DeleteUser)
}

// setupStatisticsRoutes configures statistics routes (admin only)
func setupStatisticsRoutes(router fiber.Router, handler *handlers.StatisticsHandler) {
	router.Get("/summary", handler.Summary)
	router.Get("/borrows-by-month", handler.BorrowsByMonth)
	router.Get("/popular-books", handler.PopularBooks)
}
