package main

import (
	"log"
	"net/http"

	"github.com/fairhaven-home/fairhaven-api/config"
	"github.com/fairhaven-home/fairhaven-api/controllers"
	"github.com/fairhaven-home/fairhaven-api/middleware"
	"github.com/fairhaven-home/fairhaven-api/models"
	"github.com/fairhaven-home/fairhaven-api/services"
	"github.com/fairhaven-home/fairhaven-api/workers"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("Starting Fairhaven Home Services API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(models.All()...); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Photo evidence storage
	if cfg.AWSS3Bucket != "" {
		if _, err := services.InitS3Service(); err != nil {
			log.Fatalf("Failed to initialize S3 service: %v", err)
		}
		log.Println("S3 photo storage initialized")
	} else {
		log.Println("AWS_S3_BUCKET not set, photo uploads disabled")
	}

	router := setupRouter(cfg)

	// Background sweep for abandoned jobs
	sweeper := workers.NewSweeper(cfg)
	sweeper.Start()
	defer sweeper.Stop()

	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
	}))

	v1 := router.Group("/api/v1")
	{
		// Health check endpoint
		v1.GET("/health", healthCheck)

		// Database status endpoint
		v1.GET("/database/status", databaseStatus)

		// All remaining routes require a valid JWT
		authorized := v1.Group("")
		authorized.Use(middleware.EnsureValidToken(cfg))
		{
			// User profile
			authorized.POST("/users", controllers.CreateUser)
			authorized.GET("/users/me", controllers.GetMyProfile)
			authorized.PUT("/users/me", controllers.UpdateMyProfile)

			// Job lifecycle
			authorized.POST("/jobs", controllers.CreateJob)
			authorized.GET("/jobs", controllers.ListJobs)
			authorized.GET("/jobs/:jobNumber", controllers.GetJob)
			authorized.POST("/jobs/:jobNumber/schedule-evaluation", controllers.ScheduleEvaluation)
			authorized.POST("/jobs/:jobNumber/start-evaluation", controllers.StartEvaluation)
			authorized.POST("/jobs/:jobNumber/cancel", controllers.CancelJob)

			// Evaluation and quote
			authorized.GET("/jobs/:jobNumber/evaluation", controllers.GetEvaluation)
			authorized.PATCH("/jobs/:jobNumber/evaluation", controllers.UpdateEvaluation)
			authorized.POST("/jobs/:jobNumber/evaluation/submit", controllers.SubmitEvaluation)
			authorized.GET("/jobs/:jobNumber/quote", controllers.GetQuote)

			// Checklist
			authorized.GET("/jobs/:jobNumber/checklist", controllers.GetChecklist)
			authorized.PUT("/jobs/:jobNumber/checklist", controllers.UpdateChecklist)
			authorized.POST("/jobs/:jobNumber/work-complete", controllers.MarkWorkComplete)

			// Checkpoints
			authorized.GET("/jobs/:jobNumber/checkpoints", controllers.ListCheckpoints)
			authorized.POST("/jobs/:jobNumber/checkpoints/mid_project", controllers.RequestMidCheckpoint)
			authorized.POST("/jobs/:jobNumber/checkpoints/:type/resolve", controllers.ResolveCheckpoint)
			authorized.POST("/jobs/:jobNumber/checkpoints/:type/photo", controllers.UploadCheckpointPhoto)

			// Completion verification and payouts
			authorized.POST("/jobs/:jobNumber/verify-completion", controllers.VerifyCompletion)
			authorized.GET("/jobs/:jobNumber/eligibility", controllers.GetJobEligibility)
			authorized.POST("/payouts/:id/approve", controllers.ApprovePayout)
			authorized.POST("/payouts/:id/hold", controllers.HoldPayout)

			// Contractor wallet
			authorized.GET("/wallet", controllers.GetMyWallet)
			authorized.GET("/wallet/transactions", controllers.GetMyLedger)
			authorized.POST("/wallet/withdrawals", controllers.RequestPayout)

			// Disputes
			authorized.POST("/jobs/:jobNumber/disputes", controllers.OpenDispute)
			authorized.GET("/jobs/:jobNumber/disputes", controllers.ListJobDisputes)
			authorized.POST("/disputes/:id/escalate", controllers.EscalateDispute)
			authorized.POST("/disputes/:id/resolve", controllers.ResolveDispute)
		}
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Fairhaven Home Services API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	// Get the underlying SQL database to check connection
	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	// Ping the database to verify connection
	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	// Get list of tables
	var tables []string
	if err := db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public'").Scan(&tables).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
