package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"cvstudio/internal/config"
	"cvstudio/internal/database"
	"cvstudio/internal/domain"
	jwtsvc "cvstudio/internal/pkg/jwt"
	"cvstudio/internal/repository"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Seeds a local database with demo users and tasks. Authentication lives in
// a separate service, so alongside each user we print the bcrypt hash of its
// demo password (for importing into that service) and a ready-to-use dev JWT.
func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadRuntimeConfig()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect("cvstudio.db")
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM task_comments")
	db.Exec("DELETE FROM notifications")
	db.Exec("DELETE FROM tasks")
	db.Exec("DELETE FROM users")

	ctx := context.Background()
	users := repository.NewUserRepository(db)
	tasks := repository.NewTaskRepository(db)

	tokens := jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL)

	// ================== USERS ==================
	log.Println("Creating users...")

	type fixture struct {
		user     domain.User
		password string
	}

	fixtures := []fixture{
		{domain.User{Name: "Admin", Email: "admin@cvstudio.app", Role: domain.RoleAdmin}, "admin123"},
		{domain.User{Name: "Sara Moderator", Email: "sara@cvstudio.app", Phone: "+20 100 123 4501", Role: domain.RoleModerator}, "moderator123"},
		{domain.User{Name: "Omar Moderator", Email: "omar@cvstudio.app", Phone: "+20 100 123 4502", Role: domain.RoleModerator}, "moderator123"},
		{domain.User{Name: "Laila Designer", Email: "laila@cvstudio.app", Phone: "+20 100 123 4503", Role: domain.RoleDesigner}, "designer123"},
		{domain.User{Name: "Youssef Designer", Email: "youssef@cvstudio.app", Phone: "+20 100 123 4504", Role: domain.RoleDesigner}, "designer123"},
		{domain.User{Name: "Team Leader", Email: "lead@cvstudio.app", Role: domain.RoleTeamLeader}, "lead123"},
	}

	created := map[string]*domain.User{}
	for i := range fixtures {
		f := &fixtures[i]
		if err := users.Create(ctx, &f.user); err != nil {
			log.Fatalf("create user %s failed: %v", f.user.Email, err)
		}
		created[f.user.Email] = &f.user

		hash, _ := bcrypt.GenerateFromPassword([]byte(f.password), bcrypt.DefaultCost)
		token, _ := tokens.GenerateToken(f.user.ID, string(f.user.Role))

		fmt.Printf("\n%s (%s)\n", f.user.Email, f.user.Role)
		fmt.Printf("  password:    %s\n", f.password)
		fmt.Printf("  bcrypt hash: %s\n", hash)
		fmt.Printf("  dev token:   %s\n", token)
	}

	// ================== TASKS ==================
	log.Println("Creating tasks...")

	sara := created["sara@cvstudio.app"]
	laila := created["laila@cvstudio.app"]
	youssef := created["youssef@cvstudio.app"]

	now := time.Now().UTC()
	samples := []domain.Task{
		{
			Code:        fmt.Sprintf("%d", now.UnixMilli()),
			ClientName:  "Ahmed Hassan",
			ClientPhone: "+20 111 222 3301",
			Services: []domain.ServiceItem{
				{Type: "cv", Language: "ar", DeliveryTime: "48 ساعة"},
			},
			DesignerID:     laila.ID,
			ModeratorID:    sara.ID,
			Status:         domain.TaskInProgress,
			FinancialTotal: 350, FinancialPaid: 200, FinancialRemaining: 150,
			Currency: domain.CurrencyEGP,
			TaskDate: now.Add(-24 * time.Hour),
			DueDate:  now.Add(24 * time.Hour),
		},
		{
			Code:        fmt.Sprintf("%d", now.UnixMilli()+1),
			ClientName:  "Mona Adel",
			ClientPhone: "+20 111 222 3302",
			Services: []domain.ServiceItem{
				{Type: "cv", Language: "en", DeliveryTime: "24 ساعة"},
				{Type: "cover_letter", Language: "en", DeliveryTime: "72 ساعة"},
			},
			DesignerID:     youssef.ID,
			ModeratorID:    sara.ID,
			Status:         domain.TaskNew,
			FinancialTotal: 500, FinancialPaid: 500, FinancialRemaining: 0,
			Currency: domain.CurrencyEGP,
			TaskDate: now,
			DueDate:  now.Add(72 * time.Hour),
		},
		{
			Code:        fmt.Sprintf("%d", now.UnixMilli()+2),
			ClientName:  "Khaled Samir",
			ClientPhone: "+20 111 222 3303",
			Services: []domain.ServiceItem{
				{Type: "linkedin", Language: "ar", DeliveryTime: "96 ساعة"},
			},
			DesignerID:     laila.ID,
			ModeratorID:    sara.ID,
			Status:         domain.TaskDone,
			FinancialTotal: 400, FinancialPaid: 400, FinancialRemaining: 0,
			Currency: domain.CurrencyEGP,
			TaskDate: now.Add(-10 * 24 * time.Hour),
			DueDate:  now.Add(-6 * 24 * time.Hour),
		},
	}
	doneAt := now.Add(-5 * 24 * time.Hour)
	samples[2].CompletedAt = &doneAt

	for i := range samples {
		if err := tasks.Create(ctx, &samples[i]); err != nil {
			log.Fatalf("create task %s failed: %v", samples[i].Code, err)
		}
	}

	log.Printf("Seed completed: %d users, %d tasks", len(fixtures), len(samples))
}
