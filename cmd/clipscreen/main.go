package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/clipscreen/clipscreen/internal/analysis"
	"github.com/clipscreen/clipscreen/internal/database"
	"github.com/clipscreen/clipscreen/internal/geoip"
	"github.com/clipscreen/clipscreen/internal/inference"
	"github.com/clipscreen/clipscreen/internal/moderation"
	"github.com/clipscreen/clipscreen/internal/plans"
	"github.com/clipscreen/clipscreen/internal/server"
	"github.com/clipscreen/clipscreen/internal/storage"
)

func main() {
	port := getEnv("PORT", "8080")

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, databaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(databaseURL); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}
	log.Println("database migrations applied")

	var analyzer inference.Analyzer
	if inferenceURL := os.Getenv("INFERENCE_URL"); inferenceURL != "" {
		analyzer = inference.NewClient(inferenceURL)
		log.Printf("inference service configured at %s", inferenceURL)
	} else {
		analyzer = inference.DemoAnalyzer{}
		log.Println("INFERENCE_URL not set, using demo analyzer with canned utterances")
	}

	var generator moderation.TextGenerator
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		gemini, err := moderation.NewGeminiClient(ctx, apiKey, os.Getenv("GEMINI_MODEL"))
		if err != nil {
			log.Fatalf("gemini client initialization failed: %v", err)
		}
		generator = gemini
	} else {
		log.Println("GEMINI_API_KEY not set, moderation endpoints disabled")
	}

	var store analysis.ObjectStore
	if os.Getenv("S3_ACCESS_KEY") != "" {
		s3, err := storage.New(ctx, storage.Config{
			Endpoint:       getEnv("S3_ENDPOINT", "http://localhost:3900"),
			PublicEndpoint: os.Getenv("S3_PUBLIC_ENDPOINT"),
			Bucket:         getEnv("S3_BUCKET", "clipscreen"),
			AccessKey:      os.Getenv("S3_ACCESS_KEY"),
			SecretKey:      os.Getenv("S3_SECRET_KEY"),
			Region:         getEnv("S3_REGION", "eu-central-1"),
		})
		if err != nil {
			log.Fatalf("storage initialization failed: %v", err)
		}
		if err := s3.EnsureBucket(ctx); err != nil {
			log.Fatalf("storage bucket check failed: %v", err)
		}
		store = s3
		log.Println("storage bucket ready, uploads will be archived")
	} else {
		log.Println("S3 credentials not set, upload archiving disabled")
	}

	geo, err := geoip.New(os.Getenv("GEOIP_DB_PATH"))
	if err != nil {
		log.Fatalf("geoip initialization failed: %v", err)
	}
	defer func() { _ = geo.Close() }()

	baseURL := getEnv("BASE_URL", "http://localhost:8080")

	srv := server.New(server.Config{
		DB:               db.Pool,
		Pinger:           db,
		Analyzer:         analyzer,
		Generator:        generator,
		Store:            store,
		GeoIP:            geo,
		JWTSecret:        jwtSecret,
		BaseURL:          baseURL,
		S3PublicEndpoint: os.Getenv("S3_PUBLIC_ENDPOINT"),
		MonthlyLimit:     int(getEnvInt64("MAX_ANALYSES_PER_MONTH", int64(plans.Free.MaxAnalysesPerMonth))),
		MaxUploadBytes:   getEnvInt64("MAX_UPLOAD_BYTES", plans.Free.MaxUploadBytes),
	})

	retentionCtx, retentionCancel := context.WithCancel(context.Background())
	defer retentionCancel()
	retention := time.Duration(getEnvInt64("UPLOAD_RETENTION_HOURS", 72)) * time.Hour
	analysis.StartRetentionLoop(retentionCtx, db.Pool, store, 10*time.Minute, retention)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("clipscreen listening on :%s", port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-shutdownCh
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown failed: %v", err)
	}
	log.Println("shutdown complete")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}
