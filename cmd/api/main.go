package main

import (
	"context"
	"log"
	"time"

	"github.com/TWCkaijin/Finder-For-FOOOOOD/internal/auth"
	"github.com/TWCkaijin/Finder-For-FOOOOOD/internal/config"
	"github.com/TWCkaijin/Finder-For-FOOOOOD/internal/db"
	"github.com/TWCkaijin/Finder-For-FOOOOOD/internal/llm"
	"github.com/TWCkaijin/Finder-For-FOOOOOD/internal/middleware"
	"github.com/TWCkaijin/Finder-For-FOOOOOD/internal/places"
	"github.com/TWCkaijin/Finder-For-FOOOOOD/internal/search"
	"github.com/TWCkaijin/Finder-For-FOOOOOD/internal/user"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {

	// ───────────────────────── CONFIG ─────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.MapsAPIKey == "" {
		log.Println("GOOGLE_MAPS_API_KEY not set, places verification disabled")
	}

	// ───────────────────────── DB ─────────────────────────
	pool, err := db.ConnectPostgres(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()
	log.Println("Connected to PostgreSQL")

	// ───────────────────────── GIN ─────────────────────────
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// ───────────────────────── AUTH ─────────────────────────
	tokens, err := auth.NewTokens(cfg.JWTSecret)
	if err != nil {
		log.Fatalf("auth: %v", err)
	}

	// ───────────────────────── SERVICES ─────────────────────────
	userRepo := user.NewPostgresRepository(pool)
	userService := user.NewService(userRepo)
	userHandler := user.NewHandler(userService)

	geminiClient := llm.NewGeminiClient(cfg.GeminiAPIKey)
	placesClient := places.NewClient(cfg.MapsAPIKey)

	searchService := search.NewService(geminiClient, placesClient, userService, cfg.GeminiModel)
	searchHandler := search.NewHandler(searchService)

	// ───────────────────────── ROUTES ─────────────────────────
	api := r.Group("/api")
	{
		ai := api.Group("/ai")
		ai.Use(middleware.OptionalAuth(tokens))
		{
			ai.POST("/search", searchHandler.Search)
		}

		u := api.Group("/user")
		u.Use(middleware.AuthMiddleware(tokens))
		{
			u.GET("/preferences", userHandler.GetPreferences)
			u.POST("/preferences", userHandler.SavePreferences)
			u.POST("/sync", userHandler.Sync)
			u.POST("/history", userHandler.AppendHistory)
			u.GET("/history", userHandler.GetHistory)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ───────────────────────── START ─────────────────────────
	log.Printf("API running at http://%s (%s mode)", cfg.Addr(), cfg.ServeMode)
	if err := r.Run(cfg.Addr()); err != nil {
		log.Fatal(err)
	}
}
