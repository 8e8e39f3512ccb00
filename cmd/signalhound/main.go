package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/signalhound-dev/signalhound/db"
	"github.com/signalhound-dev/signalhound/internal/auth"
	"github.com/signalhound-dev/signalhound/internal/automation"
	"github.com/signalhound-dev/signalhound/internal/crm"
	"github.com/signalhound-dev/signalhound/internal/emailgen"
	"github.com/signalhound-dev/signalhound/internal/handlers"
	"github.com/signalhound-dev/signalhound/internal/httpx"
	"github.com/signalhound-dev/signalhound/internal/notifications"
	"github.com/signalhound-dev/signalhound/internal/router"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	if err := auth.InitJWTSecret(); err != nil {
		log.Fatalf("Failed to initialize JWT secret: %v", err)
	}

	dsn := os.Getenv("DATABASE_URL")

	if dsn == "" {
		log.Fatal("DATABASE_URL is required")
	}

	if err := db.ConnectDatabase(dsn); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.MigrateDatabase(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	var port string

	if port = os.Getenv("PORT"); port == "" {
		port = "3000"
		log.Println("PORT not set, defaulting to 3000")
	}

	baseURL := os.Getenv("BASE_URL")

	if baseURL == "" {
		baseURL = "http://localhost:" + port
	}

	api := httpx.New(httpx.Options{})
	internalKey := os.Getenv("INTERNAL_API_KEY")
	crmConfig := crm.ConfigFromEnv()

	executor := &automation.Executor{
		Store: &automation.GormStore{DB: db.DB},
		CRM:   &crm.RegistrySyncer{Config: crmConfig},
		Slack: notifications.NewSlackClient(notifications.SlackOptions{HTTP: api}),
		Notify: notifications.NewSender(notifications.SenderOptions{
			BaseURL:     baseURL,
			InternalKey: internalKey,
			HTTP:        api,
		}),
		EmailGen: emailgen.NewHTTPClient(emailgen.HTTPClientOptions{
			BaseURL:     baseURL,
			InternalKey: internalKey,
			HTTP:        api,
		}),
	}

	gate := &notifications.Gate{
		Store: &notifications.GormStore{DB: db.DB},
		Sender: notifications.NewSender(notifications.SenderOptions{
			BaseURL:     baseURL,
			InternalKey: internalKey,
			HTTP:        api,
		}),
	}

	generator := emailgen.NewGenerator(db.DB, emailgen.Options{
		APIKey: os.Getenv("OPENROUTER_API_KEY"),
		Model:  os.Getenv("OPENROUTER_MODEL"),
		HTTP:   api,
	})

	handlers.Configure(handlers.Dependencies{
		Executor: executor,
		Gate:     gate,
		EmailGen: generator,
		CRM:      crmConfig,
	})

	r := router.NewRouter()

	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
