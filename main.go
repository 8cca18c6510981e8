package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"warrantytracker/internal/config"
	"warrantytracker/internal/database"
	"warrantytracker/internal/handlers"
	"warrantytracker/internal/logging"
	"warrantytracker/internal/mailer"
	"warrantytracker/internal/middleware"
	"warrantytracker/internal/sweep"
)

func main() {
	config.Load()
	logging.Setup(config.AppEnv.LogMode, config.AppEnv.LogFile)
	defer zap.L().Sync()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		zap.S().Fatalf("mongodb connection failed: %v", err)
	}

	db := client.Database(config.AppEnv.DBName)
	zap.S().Infof("mongodb connected to %s", db.Name())

	if err := database.EnsureProductIndexes(db); err != nil {
		zap.S().Warnf("product index warning: %v", err)
	}
	if err := database.EnsureServiceIndexes(db); err != nil {
		zap.S().Warnf("service index warning: %v", err)
	}
	if err := database.EnsureCategoryIndexes(db); err != nil {
		zap.S().Warnf("category index warning: %v", err)
	}
	if err := database.EnsureUserIndexes(db); err != nil {
		zap.S().Warnf("user index warning: %v", err)
	}

	if err := database.SeedDefaultCategories(db); err != nil {
		zap.S().Warnf("default category seed failed: %v", err)
	}

	smtp := mailer.NewSMTPMailer(
		config.AppEnv.SMTPHost,
		config.AppEnv.SMTPPort,
		config.AppEnv.SMTPUser,
		config.AppEnv.SMTPPass,
		config.AppEnv.MailFrom,
	)
	startSweep(db, smtp)

	r := gin.Default()

	api := r.Group("/api")
	api.Use(middleware.UserAuth(config.AppEnv.JWTSecret))
	{
		api.GET("/products", handlers.GetProducts(db))
		api.POST("/products", handlers.CreateProduct(db))
		api.GET("/products/export/csv", handlers.ExportProductsCSV(db))
		api.GET("/products/export/xlsx", handlers.ExportProductsXLSX(db))
		api.GET("/products/export/pdf", handlers.ExportProductsPDF(db))
		api.GET("/products/stats/dashboard", handlers.GetDashboardStats(db))
		api.GET("/products/:id", handlers.GetProduct(db))
		api.PUT("/products/:id", handlers.UpdateProduct(db))
		api.DELETE("/products/:id", handlers.DeleteProduct(db))
		api.POST("/products/:id/documents", handlers.AddProductDocument(db))
		api.DELETE("/products/:id/documents/:documentId", handlers.DeleteProductDocument(db))

		api.GET("/services", handlers.GetServices(db))
		api.POST("/services", handlers.CreateService(db))
		api.GET("/services/upcoming/due", handlers.GetUpcomingServices(db))
		api.GET("/services/:id", handlers.GetService(db))
		api.PUT("/services/:id", handlers.UpdateService(db))
		api.DELETE("/services/:id", handlers.DeleteService(db))
		api.DELETE("/services/:id/documents/:documentId", handlers.DeleteServiceDocument(db))

		api.GET("/categories", handlers.GetCategories(db))
		api.POST("/categories", handlers.CreateCategory(db))
		api.GET("/categories/:id", handlers.GetCategory(db))
		api.PUT("/categories/:id", handlers.UpdateCategory(db))
		api.DELETE("/categories/:id", handlers.DeleteCategory(db))

		api.GET("/users/profile", handlers.GetProfile(db))
		api.PUT("/users/profile", handlers.UpdateProfile(db))
	}

	if err := r.Run(":" + config.AppEnv.Port); err != nil {
		zap.S().Fatalf("server stopped: %v", err)
	}
}

// startSweep registers the daily expiration checks. Each run gets its own
// timeout; a failing run only logs.
func startSweep(db *mongo.Database, m mailer.Mailer) {
	sched := cron.New()
	_, err := sched.AddFunc(config.AppEnv.SweepSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		now := time.Now()
		if _, err := sweep.RunWarrantyCheck(ctx, db, m, now); err != nil {
			zap.S().Errorf("warranty sweep failed: %v", err)
		}
		if _, err := sweep.RunServiceDueCheck(ctx, db, m, now); err != nil {
			zap.S().Errorf("service due sweep failed: %v", err)
		}
	})
	if err != nil {
		zap.S().Fatalf("invalid sweep cron spec %q: %v", config.AppEnv.SweepSpec, err)
	}
	sched.Start()
	zap.S().Infof("expiration sweep scheduled (%s)", config.AppEnv.SweepSpec)
}
