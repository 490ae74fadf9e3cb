package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"deskhub/internal/database"
	"deskhub/internal/domain"
	jwtsvc "deskhub/internal/pkg/jwt"
	"deskhub/internal/repository"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seeds the full 80-desk inventory, the auto-accept switch, and an admin
// account, then prints a ready-to-use admin token.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file loaded:", err)
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "deskhub.db"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("running AutoMigrate...")
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	ctx := context.Background()
	desks := repository.NewDeskRepository(db)
	users := repository.NewUserRepository(db)
	settings := repository.NewSettingsRepository(db)

	seeded := 0
	for n := domain.MinDeskNumber; n <= domain.MaxDeskNumber; n++ {
		if _, err := desks.GetByDeskNumber(ctx, n); err == nil {
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Fatal("lookup desk:", err)
		}

		d := &domain.Hotdesk{
			Title:      fmt.Sprintf("Hotdesk %d", n),
			DeskNumber: n,
			Area:       domain.DeskArea(n),
			Status:     domain.DeskAvailable,
		}
		if err := desks.Create(ctx, d); err != nil {
			log.Fatal("seed desk:", err)
		}
		seeded++
	}
	log.Printf("seeded %d desk(s)", seeded)

	// Materializes the switch row if it is missing.
	if _, err := settings.GetSwitch(ctx); err != nil {
		log.Fatal("seed switch:", err)
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin-dev-password"
		log.Println("ADMIN_PASSWORD not set, using the development default")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("hash password:", err)
	}

	admin := &domain.User{
		Username:     "admin",
		Email:        "admin@deskhub.local",
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
	}
	if err := users.Create(ctx, admin); err != nil {
		log.Println("admin account already present:", err)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "change-me-jwt-secret"
	}
	if admin.ID != 0 {
		token, err := jwtsvc.New(secret, 24*time.Hour).GenerateToken(admin.ID, string(domain.RoleAdmin))
		if err != nil {
			log.Fatal("mint token:", err)
		}
		fmt.Println("admin token:", token)
	}
}
