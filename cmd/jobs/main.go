package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"cvstudio/internal/config"
	"cvstudio/internal/database"
	"cvstudio/internal/jobs"
	"cvstudio/internal/modules/notification"
	"cvstudio/internal/repository"
)

// One-shot job runner for external schedulers (cron, systemd timers). Runs
// the selected job once and exits.
func main() {
	job := flag.String("job", "", "job to run: overdue or retention")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadRuntimeConfig()
	if err != nil {
		log.Fatal(err)
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := database.Connect(databaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	taskRepo := repository.NewTaskRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	notificationService := notification.NewService(notificationRepo).
		WithTimeout(cfg.DispatchTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	switch *job {
	case "overdue":
		detector := jobs.NewOverdueDetector(taskRepo, notificationService, cfg.OverdueScanInterval)
		if err := detector.Run(ctx, time.Now()); err != nil {
			log.Fatalf("overdue scan failed: %v", err)
		}
	case "retention":
		retention := jobs.NewRetentionJob(notificationRepo, cfg.RetentionWindow, cfg.RetentionEvery)
		if err := retention.Run(ctx, time.Now()); err != nil {
			log.Fatalf("retention purge failed: %v", err)
		}
	default:
		log.Fatalf("unknown job %q (want overdue or retention)", *job)
	}
}
