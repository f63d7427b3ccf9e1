package main

import (
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
	"github.com/robfig/cron"

	config "github.com/crehm/artflow/configs"
	"github.com/crehm/artflow/internal/api/handlers"
	"github.com/crehm/artflow/internal/api/middleware"
	job "github.com/crehm/artflow/internal/jobs"
	"github.com/crehm/artflow/internal/platform"
	"github.com/crehm/artflow/internal/repository"
	"github.com/crehm/artflow/internal/service"
	"github.com/crehm/artflow/pkg/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	if cfg.AdminAPIKey == "" {
		key, err := utils.GenerateRandomKey(32)
		if err != nil {
			log.Fatalf("Failed to generate admin API key: %v", err)
		}
		cfg.AdminAPIKey = key
		log.Printf("ADMIN_API_KEY not set, generated one for this run: %s", key)
	}
	if cfg.SecretKey == "" {
		key, err := utils.GenerateRandomKey(32)
		if err != nil {
			log.Fatalf("Failed to generate secret key: %v", err)
		}
		cfg.SecretKey = key
	}

	db, err := repository.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer closeDB(db)

	if err := repository.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	contentRepo := repository.NewContentRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	roundRepo := repository.NewRoundRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	postLogRepo := repository.NewPostLogRepository(db)

	registry := platform.NewRegistry()
	registry.Register("mastodon", func() platform.Platform { return platform.NewMastodon(cfg.Mastodon) })
	registry.Register("pixelfed", func() platform.Platform { return platform.NewPixelfed(cfg.Pixelfed) })
	registry.Register("flickr", func() platform.Platform { return platform.NewFlickr(cfg.Flickr) })
	registry.Register("youtube", func() platform.Platform { return platform.NewYouTube(cfg.YouTube) })
	registry.Register("cara", func() platform.Platform { return platform.NewCara(cfg.SessionsDir) })
	registry.Register("upscrolled", func() platform.Platform { return platform.NewUpScrolled() })

	logHandle := slog.Default()

	assetResolver := service.NewAssetResolver(*cfg, logHandle)
	postLogger := service.NewPostLogger(postLogRepo, cfg.ScreenshotsDir, logHandle)
	contentService := service.NewContentService(contentRepo)
	sessionTracker := service.NewSessionTracker(sessionRepo)
	schedulerService := service.NewSchedulerService(db, scheduleRepo, contentRepo, registry,
		assetResolver, postLogger, cfg.MaxDescriptionWords, logHandle)
	rotationService := service.NewRotationService(contentRepo, roundRepo, registry,
		assetResolver, postLogger, cfg.RotationDestinations, cfg.MaxDescriptionWords, logHandle)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	auth := handlers.NewAuthHandler(*cfg)
	app.Post("/login", auth.Login)
	app.Post("/logout", auth.Logout)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	api.Get("/me", auth.Me)

	content := handlers.NewContentHandler(contentService)
	api.Post("/content/create", content.CreateContent)
	api.Get("/content", content.ListContent)

	schedule := handlers.NewScheduleHandler(schedulerService)
	api.Post("/posts/create", schedule.CreatePost)
	api.Get("/posts/pending", schedule.ListPending)
	api.Get("/posts/upcoming", schedule.ListUpcoming)
	api.Get("/posts/history", schedule.ListHistory)
	api.Post("/posts/:id/cancel", schedule.CancelPost)
	api.Post("/posts/run", schedule.RunDue)

	rotation := handlers.NewRotationHandler(rotationService)
	api.Post("/rotation/run", rotation.RunRotation)
	api.Get("/rotation/round", rotation.GetRound)

	session := handlers.NewSessionHandler(sessionTracker)
	api.Post("/sessions/login", session.RecordLogin)
	api.Get("/sessions/alerts", session.ListAlerts)
	api.Get("/sessions/:destination", session.GetStatus)

	destination := handlers.NewDestinationHandler(registry)
	api.Get("/destinations", destination.ListDestinations)
	api.Get("/destinations/:destination/verify", destination.VerifyDestination)

	postLog := handlers.NewPostLogHandler(postLogger)
	api.Get("/log", postLog.ListRecent)

	// cron jobs
	publishJob := job.NewPublishJob(schedulerService, rotationService, logHandle)

	c := cron.New()
	c.AddFunc("@every 00h05m00s", publishJob.RunDue)
	c.AddFunc("@every 24h00m00s", publishJob.RunRotation)
	c.Start()

	go func() {
		if err := app.Listen(cfg.ListenAddr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Printf("Server is running on %s", cfg.ListenAddr)

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
