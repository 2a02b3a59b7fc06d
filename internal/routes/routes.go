package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/example/parkbay/internal/config"
	"github.com/example/parkbay/internal/handlers"
	"github.com/example/parkbay/internal/middleware"
	"github.com/example/parkbay/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config, logger *logrus.Logger) {
	emailSender := services.NewResendEmailSender(cfg.ResendAPIKey, cfg.EmailFrom, logger)
	verification := services.NewVerificationService(db, emailSender, cfg.AuthLinkExpiry)
	google := services.NewGoogleAuthService(cfg.GoogleClientID)
	recommender := services.NewRecommender(db, cfg.RecommendK, cfg.RecommendResults)
	description := services.NewDescriptionService(cfg.GeminiModel)

	authHandler := handlers.NewAuthHandler(db, cfg, verification, google)
	passwordResetHandler := handlers.NewPasswordResetHandler(db, cfg, verification)
	parkingAdminHandler := handlers.NewParkingAdminHandler(db)
	parkingPublicHandler := handlers.NewParkingPublicHandler(db)
	bookingHandler := handlers.NewBookingHandler(db)
	productAdminHandler := handlers.NewProductAdminHandler(db, description)
	productPublicHandler := handlers.NewProductPublicHandler(db, logger)
	recommendHandler := handlers.NewRecommendHandler(db, recommender)
	businessHandler := handlers.NewBusinessHandler(db)
	blogHandler := handlers.NewBlogHandler(db, logger)
	websiteHandler := handlers.NewWebsiteHandler(db)

	auth := middleware.AuthMiddleware(cfg)
	optionalAuth := middleware.OptionalAuth(cfg)
	signinLimiter := middleware.NewRateLimiter(rate.Every(time.Second), 5, 10*time.Minute)

	api := app.Group("/api/v1")
	admin := api.Group("/admin")
	public := api.Group("/public")

	// User app
	userApp := public.Group("/user-app")
	userApp.Post("/users/signup", authHandler.Signup)
	userApp.Post("/users/signin", signinLimiter.Middleware(), authHandler.Signin)
	userApp.Post("/users/verify", authHandler.Verify)
	userApp.Post("/users/social/auth", authHandler.SocialAuth)
	userApp.Post("/users/logout", authHandler.Logout)
	userApp.Get("/users/profile", auth, authHandler.Profile)
	userApp.Patch("/users/profile/update", auth, authHandler.UpdateProfile)
	userApp.Post("/users/forget-password-request", passwordResetHandler.RequestReset)
	userApp.Post("/users/forget-password", passwordResetHandler.Reset)
	userApp.Post("/auth/refresh", authHandler.Refresh)

	// Parking admin
	parkingAdmin := admin.Group("/parking-app", auth)
	parkingAdmin.Get("/parking-spots", parkingAdminHandler.ListSpots)
	parkingAdmin.Post("/parking-spots", parkingAdminHandler.CreateSpot)
	parkingAdmin.Get("/parking-spots/:id", parkingAdminHandler.GetSpot)
	parkingAdmin.Put("/parking-spots/:id", parkingAdminHandler.UpdateSpot)
	parkingAdmin.Delete("/parking-spots/:id", parkingAdminHandler.DeleteSpot)
	parkingAdmin.Delete("/availability/:id", parkingAdminHandler.DeleteAvailability)
	parkingAdmin.Delete("/vehicle-capacity/:id", parkingAdminHandler.DeleteVehicleCapacity)
	parkingAdmin.Delete("/features/:id", parkingAdminHandler.DeleteFeature)
	parkingAdmin.Get("/bookings", parkingAdminHandler.ListBookings)
	parkingAdmin.Patch("/bookings/:id/update-status", parkingAdminHandler.UpdateBookingStatus)

	// Parking public
	parkingPublic := public.Group("/parking-app")
	parkingPublic.Get("/parking-spots", parkingPublicHandler.ListSpots)
	parkingPublic.Get("/parking-spots/:id", parkingPublicHandler.GetSpot)
	parkingPublic.Post("/parking-spots/reviews", auth, parkingPublicHandler.CreateReview)
	parkingPublic.Post("/bookings", auth, bookingHandler.Create)
	parkingPublic.Get("/bookings", auth, bookingHandler.ListMine)

	// Product admin
	productAdmin := admin.Group("/product-app", auth)
	productAdmin.Get("/products", productAdminHandler.ListProducts)
	productAdmin.Post("/products", productAdminHandler.CreateProduct)
	productAdmin.Put("/products/:id", productAdminHandler.UpdateProduct)
	productAdmin.Delete("/products/:id", productAdminHandler.DeleteProduct)
	productAdmin.Get("/categories", productAdminHandler.ListCategories)
	productAdmin.Post("/product-description", productAdminHandler.GenerateDescription)

	// Product public
	productPublic := public.Group("/product-app")
	productPublic.Get("/products", productPublicHandler.ListProducts)
	productPublic.Get("/products/:id", optionalAuth, productPublicHandler.GetProduct)
	productPublic.Post("/product-review/create", auth, productPublicHandler.CreateReview)
	productPublic.Get("/categories", productPublicHandler.ListCategories)
	productPublic.Get("/search-suggestions", productPublicHandler.SearchSuggestions)
	productPublic.Get("/recommendations/top-demand", recommendHandler.TopDemand)
	productPublic.Get("/recommendations/for-user", auth, recommendHandler.ForUser)

	// Business app
	businessApp := public.Group("/business-app")
	businessApp.Post("/business-info", auth, businessHandler.CreateInfo)
	businessApp.Put("/business-info", auth, businessHandler.UpdateInfo)
	businessApp.Get("/business-info", auth, businessHandler.GetOwnInfo)
	businessApp.Get("/business-info/:farmerID", businessHandler.GetInfoByFarmer)
	businessApp.Get("/categories", businessHandler.ListCategories)
	businessApp.Post("/kyc", auth, businessHandler.SubmitKYC)

	// Blog app
	blogApp := public.Group("/blog-app")
	blogApp.Get("/posts", blogHandler.ListPosts)
	blogApp.Get("/posts/:slug", blogHandler.GetPost)
	blogApp.Post("/posts", auth, blogHandler.CreatePost)

	// Website app
	websiteApp := public.Group("/website-app")
	websiteApp.Post("/feedback", websiteHandler.CreateFeedback)
	websiteApp.Get("/feedback", websiteHandler.ListFeedback)
	websiteApp.Post("/newsletter/subscribe", websiteHandler.Subscribe)
}
