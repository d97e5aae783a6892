package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quizapp/config"
	"quizapp/handlers"
	"quizapp/middleware"
	"quizapp/models"
	"quizapp/repositories"
	"quizapp/routes"
	"quizapp/seeds"
	"quizapp/services"

	"github.com/gin-gonic/gin"
)

const maxBodyBytes = 10 << 20

func main() {
	seed := flag.Bool("seed", false, "create the default users and demo questions, then exit")
	flag.Parse()

	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("Failed to access database pool: ", err)
	}
	defer sqlDB.Close()

	// Auto-migrate database models
	if err := db.AutoMigrate(models.All()...); err != nil {
		log.Fatal("Failed to migrate database: ", err)
	}

	userRepo := repositories.NewUserRepository(db)
	questionRepo := repositories.NewQuestionRepository(db)
	resultRepo := repositories.NewResultRepository(db)
	hasher := services.NewPasswordHasher(cfg.BcryptCost)

	if *seed {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := seeds.Run(ctx, userRepo, questionRepo, hasher); err != nil {
			log.Fatal("Seeding failed: ", err)
		}
		return
	}

	// Rate limiting shares counters through Redis when it is configured.
	var limiter middleware.Limiter = middleware.NewMemoryLimiter(cfg.RateLimitMax, cfg.RateLimitWindow)
	redisClient, err := config.InitRedis(cfg)
	if err != nil {
		log.Printf("Redis unavailable, falling back to in-process rate limiting: %v", err)
	} else if redisClient != nil {
		defer redisClient.Close()
		limiter = middleware.NewRedisLimiter(redisClient, cfg.RateLimitMax, cfg.RateLimitWindow)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize WebSocket hub
	hub := services.NewResultHub()
	go hub.Run(ctx)

	// Initialize services
	tokens := services.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	authService := services.NewAuthService(userRepo, hasher, tokens)
	questionService := services.NewQuestionService(questionRepo)
	quizService := services.NewQuizService(questionRepo, resultRepo, hub)

	origins := middleware.OriginPolicy{
		Origins:       cfg.CORSOrigins,
		RequireOrigin: cfg.IsProduction(),
	}

	// Initialize handlers
	handlers.RegisterValidation()
	authHandler := handlers.NewAuthHandler(authService)
	questionHandler := handlers.NewQuestionHandler(questionService)
	quizHandler := handlers.NewQuizHandler(quizService)
	feedHandler := handlers.NewFeedHandler(tokens, hub, origins.Allows)

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		gin.Logger(),
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.SecurityHeaders(),
		middleware.BodyLimit(maxBodyBytes),
	)

	err = routes.SetupRoutes(router,
		routes.Options{
			Prefix:         cfg.APIPrefix,
			Environment:    cfg.Environment,
			Origins:        origins,
			Limiter:        limiter,
			Tokens:         tokens,
			TrustedProxies: cfg.TrustedProxies,
		},
		authHandler,
		questionHandler,
		quizHandler,
		feedHandler,
	)
	if err != nil {
		log.Fatal("Failed to set up routes: ", err)
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go func() {
		log.Printf("Server starting on %s (%s)", srv.Addr, cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server: ", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shut down: %v", err)
	}
}
