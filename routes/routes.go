package routes

import (
	"fmt"
	"net/http"
	"time"

	"quizapp/handlers"
	"quizapp/middleware"

	"github.com/gin-gonic/gin"
)

// Options carries everything the API surface needs besides its handlers.
type Options struct {
	Prefix      string
	Environment string
	Origins     middleware.OriginPolicy
	Limiter     middleware.Limiter
	Tokens      middleware.TokenVerifier

	// TrustedProxies may set X-Forwarded-For. Empty keys clients by socket peer.
	TrustedProxies []string
}

func SetupRoutes(
	router *gin.Engine,
	opts Options,
	authHandler *handlers.AuthHandler,
	questionHandler *handlers.QuestionHandler,
	quizHandler *handlers.QuizHandler,
	feedHandler *handlers.FeedHandler,
) error {
	if err := router.SetTrustedProxies(opts.TrustedProxies); err != nil {
		return fmt.Errorf("trusted proxies: %w", err)
	}

	health := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "OK",
			"timestamp":   time.Now().UTC().Format(time.RFC3339Nano),
			"environment": opts.Environment,
		})
	}
	router.GET("/health", health)
	// Probes send no Origin, so health stays outside the CORS group.
	router.GET(opts.Prefix+"/health", health)

	// API routes
	api := router.Group(opts.Prefix)
	api.Use(middleware.CORS(opts.Origins), middleware.RateLimit(opts.Limiter))
	{
		// Preflight requests are answered by the CORS middleware.
		api.OPTIONS("/*path", func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})

		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// The feed authenticates from its query string.
		api.GET("/quiz/feed", feedHandler.Connect)

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(opts.Tokens))
		{
			protected.GET("/auth/profile", authHandler.GetProfile)

			questions := protected.Group("/questions")
			{
				questions.GET("", questionHandler.GetAll)
				questions.POST("", questionHandler.Create)
				questions.PUT("/:id", questionHandler.Update)
				questions.DELETE("/:id", questionHandler.Delete)
			}

			quiz := protected.Group("/quiz")
			{
				quiz.GET("/start", quizHandler.StartQuiz)
				quiz.POST("/submit", quizHandler.SubmitQuiz)
				quiz.GET("/results", quizHandler.GetResults)
				quiz.GET("/results/best", quizHandler.GetBestResult)
			}
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not found",
			"message": "Route " + c.Request.Method + " " + c.Request.URL.Path + " not found",
		})
	})
	return nil
}
