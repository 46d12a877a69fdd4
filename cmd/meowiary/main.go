package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/kwonwoosuk/MEOWIARY-sub000/internal/api"
	"github.com/kwonwoosuk/MEOWIARY-sub000/internal/db"
	"github.com/kwonwoosuk/MEOWIARY-sub000/internal/images"
	"github.com/kwonwoosuk/MEOWIARY-sub000/internal/services"
)

func main() {
	location := mustLoadLocation(getEnv("TZ", "UTC"))
	time.Local = location

	secretKey := getEnv("SECRET_KEY", "change_me_in_production")
	dbPath := getEnv("DB_PATH", filepath.Join("data", "meowiary.db"))
	imageDir := getEnv("IMAGE_DIR", filepath.Join("data", "images"))
	port := getEnv("PORT", "8080")
	cookieSecure := getEnv("COOKIE_SECURE", "") == "true"

	database, err := db.OpenSQLite(dbPath)
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}

	blobs := images.NewStore(imageDir)
	lifecycleCtx, cancelLifecycle := context.WithCancel(context.Background())
	defer cancelLifecycle()
	blobs.Start(lifecycleCtx)

	handler := api.NewHandler(database, blobs, secretKey, location, cookieSecure, nil, logEventPublisher{})

	app := fiber.New(fiber.Config{
		AppName:               "MEOWIARY",
		DisableStartupMessage: true,
		BodyLimit:             32 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	api.RegisterRoutes(app, handler)

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		blobs.Flush()
		cancelLifecycle()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("server shutdown failed: %v", err)
		}
	}()

	log.Printf("MEOWIARY listening on http://0.0.0.0:%s (db: %s, images: %s, tz: %s)", port, dbPath, imageDir, location.String())
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

// logEventPublisher stands in for the app-owned change-notification
// channel consumed by UI layers.
type logEventPublisher struct{}

func (logEventPublisher) DayChanged(event services.DayChangeEvent) {
	log.Printf("day changed: %d-%d day=%v symptom=%v", event.Year, event.Month, derefDay(event.Day), event.IsSymptom)
}

func (logEventPublisher) DayDeleted(event services.DayChangeEvent) {
	log.Printf("day deleted: %d-%d day=%v", event.Year, event.Month, derefDay(event.Day))
}

func derefDay(day *int) int {
	if day == nil {
		return 0
	}
	return *day
}

func mustLoadLocation(name string) *time.Location {
	location, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("invalid TZ %q, falling back to UTC", name)
		return time.UTC
	}
	return location
}

func getEnv(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
