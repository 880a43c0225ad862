package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"cvstudio/internal/config"
	"cvstudio/internal/database"
	"cvstudio/internal/jobs"
	"cvstudio/internal/middleware"
	"cvstudio/internal/modules/comment"
	"cvstudio/internal/modules/earnings"
	"cvstudio/internal/modules/notification"
	"cvstudio/internal/modules/task"
	"cvstudio/internal/modules/user"
	jwtsvc "cvstudio/internal/pkg/jwt"
	"cvstudio/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadRuntimeConfig()
	if err != nil {
		log.Fatal(err)
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is empty")
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal(err)
	}

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL)

	hub := notification.NewHub()
	defer hub.Close()

	notificationService := notification.NewService(notificationRepo).
		WithHub(hub).
		WithTimeout(cfg.DispatchTimeout)
	notificationHandler := notification.NewHandler(notificationService, hub)

	taskService := task.NewService(taskRepo, userRepo, notificationService)
	taskHandler := task.NewHandler(taskService)

	earningsService := earnings.NewService(taskRepo)
	earningsHandler := earnings.NewHandler(earningsService)

	userService := user.NewService(userRepo, notificationService)
	userHandler := user.NewHandler(userService)

	commentService := comment.NewService(commentRepo)
	commentHandler := comment.NewHandler(commentService)

	overdueDetector := jobs.NewOverdueDetector(taskRepo, notificationService, cfg.OverdueScanInterval)
	retentionJob := jobs.NewRetentionJob(notificationRepo, cfg.RetentionWindow, cfg.RetentionEvery)
	jobsHandler := jobs.NewHandler(overdueDetector, retentionJob)

	if cfg.EnableJobTickers {
		ctx := context.Background()
		stopOverdue := overdueDetector.Schedule(ctx)
		stopRetention := retentionJob.Schedule(ctx)
		defer close(stopOverdue)
		defer close(stopRetention)
	}

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())

	v1 := r.Group("/api/v1")
	{
		protected := v1.Group("/")
		protected.Use(middleware.JWTAuth(j))
		{
			taskHandler.RegisterRoutes(protected)
			notificationHandler.RegisterRoutes(protected)
			earningsHandler.RegisterRoutes(protected)
			userHandler.RegisterRoutes(protected)
			commentHandler.RegisterRoutes(protected)
		}

		internal := v1.Group("/internal")
		internal.Use(middleware.InternalTokenAuth())
		{
			jobsHandler.RegisterRoutes(internal)
		}
	}

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	if err := r.Run(addr); err != nil {
		log.Fatal(err)
	}
}
