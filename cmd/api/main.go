package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/signaldrift/signaldrift/internal/application"
	appdocs "github.com/signaldrift/signaldrift/internal/application/documents"
	appprompts "github.com/signaldrift/signaldrift/internal/application/prompts"
	appruns "github.com/signaldrift/signaldrift/internal/application/runs"
	"github.com/signaldrift/signaldrift/internal/config"
	docdomain "github.com/signaldrift/signaldrift/internal/domain/documents"
	promptdomain "github.com/signaldrift/signaldrift/internal/domain/prompts"
	rundomain "github.com/signaldrift/signaldrift/internal/domain/runs"
	mysqlp "github.com/signaldrift/signaldrift/internal/infra/db/mysql"
	postgresp "github.com/signaldrift/signaldrift/internal/infra/db/postgres"
	openaic "github.com/signaldrift/signaldrift/internal/infra/ai/openai"
	"github.com/signaldrift/signaldrift/internal/infra/ai/prompt"
	"github.com/signaldrift/signaldrift/internal/infra/httpserver"
	"github.com/signaldrift/signaldrift/internal/infra/storage"
	"github.com/signaldrift/signaldrift/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	// connect database, driver per config
	var db *sql.DB
	switch cfg.Database.Driver {
	case "postgres":
		db, err = postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		if err := postgresp.EnsureSchema(ctx, db); err != nil {
			log.Fatalf("postgres schema error: %v", err)
		}
	default:
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		if err := mysqlp.EnsureSchema(ctx, db); err != nil {
			log.Fatalf("mysql schema error: %v", err)
		}
	}
	defer db.Close()

	// init repos
	promptsRepo, runsRepo := newRepos(cfg.Database.Driver, db)

	// init storage backend
	var files docdomain.FileStore
	switch cfg.Storage.Backend {
	case "minio":
		files, err = storage.NewMinio(ctx,
			cfg.Storage.Minio.Endpoint,
			cfg.Storage.Minio.Region,
			cfg.Storage.Minio.BucketName,
			cfg.Storage.Minio.AccessKey,
			cfg.Storage.Minio.SecretKey,
			cfg.Storage.Minio.UseSSL,
		)
		if err != nil {
			log.Fatalf("minio init error: %v", err)
		}
	default:
		files, err = storage.NewLocal(cfg.Storage.UploadDir, application.SystemClock{})
		if err != nil {
			log.Fatalf("local storage init error: %v", err)
		}
	}

	// init services
	docsSvc := &appdocs.Service{Files: files}
	promptsSvc := &appprompts.Service{Repo: promptsRepo, Clock: application.SystemClock{}}
	runsSvc := &appruns.Service{
		Runs:    runsRepo,
		Prompts: promptsRepo,
		Files:   files,
		AI:      openaic.NewClient(cfg.AI.APIKey, cfg.AI.Model, cfg.AI.BaseURL),
		Model:   cfg.AI.Model,
		Clock:   application.SystemClock{},
	}

	// seed stock prompt for fresh installs
	if err := promptsSvc.SeedDefault(ctx, prompt.DefaultAnalystPrompt); err != nil {
		log.Fatalf("prompt seed error: %v", err)
	}

	// init router
	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.APIKeyAuth(cfg.Server.APIKey))

	httpserver.NewRouter(docsSvc, promptsSvc, runsSvc).Mount(mux)

	mux.Get("/metrics", middleware.MetricsHandler)
	mux.Get("/healthz", middleware.HealthHandler(map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
		"storage": &middleware.StorageHealthChecker{Probe: func(ctx context.Context) error {
			_, err := files.List(ctx)
			return err
		}},
	}))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

func newRepos(driver string, db *sql.DB) (promptdomain.Repository, rundomain.Repository) {
	if driver == "postgres" {
		return postgresp.NewPromptRepository(db), postgresp.NewRunRepository(db)
	}
	return mysqlp.NewPromptRepository(db), mysqlp.NewRunRepository(db)
}
