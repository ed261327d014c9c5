package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"

	"github.com/cropai/backend/internal/catalog"
	"github.com/cropai/backend/internal/delivery/http"
	"github.com/cropai/backend/internal/service"
	"github.com/cropai/backend/pkg/logging"
	"github.com/cropai/backend/pkg/metrics"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	// Configuration
	cfg := loadConfig()

	appLogger := logging.NewStructuredLogger("cropai-backend", "2.0.0", logging.ParseLevel(cfg.LogLevel))
	collector := metrics.NewCollector("cropai")

	// Agronomy knowledge base
	cat, err := catalog.New()
	if err != nil {
		log.Fatalf("Invalid soil catalog: %v", err)
	}

	// Dependency Injection: model bridges
	modelTimeout := time.Duration(cfg.ModelTimeoutSeconds) * time.Second
	soilModel := service.NewSoilBridge(cfg.SoilModelURL, modelTimeout)
	cropModel := service.NewCropBridge(cfg.CropModelURL, modelTimeout)

	// Dependency Injection: Services
	recommender := service.NewRecommenderService(soilModel, cropModel, cat, appLogger, collector)

	// Fiber App
	app := fiber.New(fiber.Config{
		AppName:     "CropAI API v2.0",
		ReadTimeout: 30 * time.Second,
		// A complete analysis waits on two sequential model calls
		WriteTimeout: 2*modelTimeout + 10*time.Second,
		BodyLimit:    (cfg.MaxUploadMB + 1) << 20,
		ErrorHandler: http.NewErrorHandler(collector),
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Routes
	http.SetupRoutes(app, recommender, cat, collector, cfg.MaxUploadMB)

	// Frontend (registered last so /api and /metrics take precedence)
	if cfg.StaticDir != "" {
		app.Static("/frontend", cfg.StaticDir)
		app.Static("/", cfg.StaticDir)
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited gracefully")
}

type Config struct {
	Port                string
	SoilModelURL        string
	CropModelURL        string
	ModelTimeoutSeconds int
	MaxUploadMB         int
	StaticDir           string
	LogLevel            string
	Env                 string
}

func loadConfig() *Config {
	return &Config{
		Port:                getEnv("PORT", "8080"),
		SoilModelURL:        getEnv("SOIL_MODEL_URL", "http://localhost:8000"),
		CropModelURL:        getEnv("CROP_MODEL_URL", "http://localhost:8001"),
		ModelTimeoutSeconds: getEnvInt("MODEL_TIMEOUT_SECONDS", 30),
		MaxUploadMB:         getEnvInt("MAX_UPLOAD_MB", 10),
		StaticDir:           getEnv("STATIC_DIR", "./frontend"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		Env:                 getEnv("GO_ENV", "development"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		log.Printf("Warning: invalid %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}
