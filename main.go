package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"wardrobe/internal/config"
	"wardrobe/internal/database"
	"wardrobe/internal/email"
	"wardrobe/internal/handlers"
	"wardrobe/internal/logger"
	"wardrobe/internal/middleware"
	"wardrobe/internal/recommend"
	"wardrobe/internal/storage"
	"wardrobe/internal/wardrobe"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	logger.Initialize(logger.ParseLevel(cfg.LogLevel), cfg.IsDevelopment())

	db, err := database.Initialize(cfg.DatabasePath)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	awsCfg, err := loadAWSConfig(cfg)
	if err != nil {
		log.Fatal("Failed to load AWS configuration:", err)
	}

	emailService := email.NewService(cfg)
	if emailService.IsEnabled() {
		log.Println("Email service enabled with Mailgun")
	} else {
		log.Println("Email service disabled - Mailgun not configured")
	}

	svc := &handlers.Services{
		Wardrobe:    wardrobe.NewStore(dynamodb.NewFromConfig(awsCfg), cfg.DynamoTable),
		Images:      storage.NewImageStore(newS3Client(awsCfg, cfg), cfg.ImageBucket),
		Email:       emailService,
		Recommender: recommend.NewRunner(cfg.RecommendInterpreter, cfg.RecommendScript),
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.RateLimit(cfg))

	handlers.SetupRoutes(r, db, cfg, svc)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go runCleanup(ctx, db)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed:", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Println("Forced shutdown:", err)
	}
}

func loadAWSConfig(cfg *config.Config) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}
	if cfg.AWSAccessKey != "" && cfg.AWSSecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKey, cfg.AWSSecretKey, "")))
	}
	if cfg.AWSEndpoint != "" {
		opts = append(opts, awsconfig.WithBaseEndpoint(cfg.AWSEndpoint))
	}
	return awsconfig.LoadDefaultConfig(context.Background(), opts...)
}

func newS3Client(awsCfg aws.Config, cfg *config.Config) *s3.Client {
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.AWSEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AWSEndpoint)
			// Local S3 stand-ins expect path style requests.
			o.UsePathStyle = true
		}
	})
}

func runCleanup(ctx context.Context, db *sql.DB) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := database.CleanupExpiredSessions(db); err != nil {
				logger.Warn("Session cleanup failed", "error", err)
			}
			if err := database.CleanupExpiredCSRFTokens(db); err != nil {
				logger.Warn("CSRF token cleanup failed", "error", err)
			}
		}
	}
}
