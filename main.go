package main

import (
	"context"
	"html/template"
	"net/http"

	sentry "github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"timeclock/config"
	"timeclock/database"
	"timeclock/handlers"
	"timeclock/middleware"
	"timeclock/models"
	"timeclock/shift"
	"timeclock/store"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	middleware.SetJWTSecret(cfg.JWTSecret)

	if err := database.Init(cfg.DatabaseURL); err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}
	if err := database.EnsureAdmin(cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logrus.Fatalf("Failed to seed admin user: %v", err)
	}

	st := store.NewGormStore(database.GetDB())
	shifts := shift.NewService(st)

	// Redis is optional; without it balance lookups just hit Postgres.
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
		})
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			logrus.Fatalf("Failed to connect to Redis: %v", err)
		}
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN}); err != nil {
			logrus.Fatalf("Failed to initialize Sentry: %v", err)
		}
	}

	// Parse templates - each page template paired with base
	templates := make(map[string]*template.Template)
	pages := []string{"login", "dashboard", "admin", "edit-timesheet"}
	for _, page := range pages {
		templates[page] = template.Must(template.ParseFiles(
			"templates/base.html",
			"templates/"+page+".html",
		))
	}

	authHandler := handlers.NewAuthHandler(cfg, templates, st)
	timesheetHandler := handlers.NewTimesheetHandler(cfg, templates, st, shifts, rdb)
	adminHandler := handlers.NewAdminHandler(cfg, templates, st, rdb)

	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)

	// Public routes
	router.Get("/login", authHandler.LoginPage)
	router.Post("/login", authHandler.Login)

	// Protected routes
	router.Group(func(r chi.Router) {
		r.Use(middleware.Auth(st))

		r.Get("/logout", authHandler.Logout)
		r.Get("/", timesheetHandler.Home)

		r.Get("/me", timesheetHandler.Dashboard)
		r.Post("/me/clock-in", timesheetHandler.ClockIn)
		r.Post("/me/clock-out/{id}", timesheetHandler.ClockOut)

		// Owner-or-admin, enforced inside the handlers
		r.Get("/timesheet/{id}/edit", timesheetHandler.EditPage)
		r.Post("/timesheet/{id}/edit", timesheetHandler.EditSubmit)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(models.RoleAdmin))
			r.Get("/admin", adminHandler.Dashboard)
			r.Post("/admin/create-user", adminHandler.CreateUser)
			r.Get("/admin/export.csv", adminHandler.ExportCSV)
		})
	})

	var handler http.Handler = router
	if cfg.SentryDSN != "" {
		handler = sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle(router)
	}

	logrus.Infof("Server starting on port %s", cfg.ServerPort)
	logrus.Fatal(http.ListenAndServe(":"+cfg.ServerPort, handler))
}
