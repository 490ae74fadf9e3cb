package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"deskhub/internal/config"
	"deskhub/internal/database"
	"deskhub/internal/middleware"
	"deskhub/internal/modules/audit"
	"deskhub/internal/modules/desk"
	"deskhub/internal/modules/reservation"
	"deskhub/internal/modules/review"
	"deskhub/internal/modules/settings"
	"deskhub/internal/notification"
	jwtsvc "deskhub/internal/pkg/jwt"
	"deskhub/internal/repository"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file loaded:", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatal(err)
	}
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal(err)
	}

	userRepo := repository.NewUserRepository(db)
	deskRepo := repository.NewDeskRepository(db)
	reservationRepo := repository.NewReservationRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	jobLogRepo := repository.NewJobLogRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	hub := notification.NewHub()
	defer hub.Close()

	sender := notification.NewSender(hub, notification.MailConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	})

	recorder := audit.NewRecorder(auditRepo)

	checker := reservation.NewConflictChecker(reservationRepo, deskRepo)
	reservationService := reservation.NewService(
		reservationRepo, historyRepo, userRepo, settingsRepo, checker, sender,
	)
	reservationHandler := reservation.NewHandler(reservationService, recorder)

	deskService := desk.NewService(deskRepo, reservationRepo)
	deskHandler := desk.NewHandler(deskService, recorder)

	reviewService := review.NewService(reviewRepo, userRepo)
	reviewHandler := review.NewHandler(reviewService, recorder)

	settingsHandler := settings.NewHandler(settingsRepo)
	wsHandler := notification.NewWSHandler(hub, j)

	jobs := reservation.NewJobs(
		reservationRepo, historyRepo, reviewRepo, userRepo, jobLogRepo, sender,
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stopJobs := jobs.Start(ctx)
	defer close(stopJobs)

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())

	v1 := r.Group("/api/v1")
	{
		wsHandler.RegisterRoutes(v1)

		protected := v1.Group("/")
		protected.Use(middleware.Auth(j))

		admin := protected.Group("/")
		admin.Use(middleware.AdminOnly())

		reservationHandler.RegisterRoutes(protected, admin)
		deskHandler.RegisterRoutes(protected, admin)
		reviewHandler.RegisterRoutes(protected, admin)
		settingsHandler.RegisterRoutes(admin)
	}

	log.Printf("listening on %s", cfg.Addr)
	if err := r.Run(cfg.Addr); err != nil {
		log.Fatal(err)
	}
}
