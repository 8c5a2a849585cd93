package server

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/nextgenbank/onboarding-api/internal/config"
	"github.com/nextgenbank/onboarding-api/internal/handler"
	"github.com/nextgenbank/onboarding-api/internal/mailer"
	"github.com/nextgenbank/onboarding-api/internal/middleware"
	"github.com/nextgenbank/onboarding-api/internal/model"
	"github.com/nextgenbank/onboarding-api/internal/queue"
	"github.com/nextgenbank/onboarding-api/internal/repository"
	"github.com/nextgenbank/onboarding-api/internal/search"
	"github.com/nextgenbank/onboarding-api/internal/service"
	"github.com/nextgenbank/onboarding-api/internal/worker"
	"github.com/nextgenbank/onboarding-api/pkg/storage"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
	cfg         *config.Config
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, imageStorage storage.ImageStorage) *Server {
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	viewRepo := repository.NewContentViewRepository(db)

	// Meilisearch is optional; without it the roster search falls back to SQL.
	var profileSearcher search.ProfileSearcher
	if cfg.MeiliSearchHost != "" {
		meiliHost := cfg.MeiliSearchHost
		if !strings.HasPrefix(meiliHost, "http") {
			meiliHost = "http://" + meiliHost + ":7700"
		}
		meiliClient := meilisearch.New(meiliHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
		profileSearcher = search.NewMeiliProfileSearcher(meiliClient)
	}

	var tasks queue.TaskQueue
	if redisClient != nil {
		tasks = queue.NewRedisTaskQueue(redisClient)
	}

	tokens := service.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	mail := mailer.New(cfg)

	authSvc := service.NewAuthService(userRepo, tokens, mail, cfg)
	authHandler := handler.NewAuthHandler(authSvc, cfg)

	viewSvc := service.NewViewService(viewRepo)

	profileSvc := service.NewProfileService(profileRepo, viewSvc, tasks, profileSearcher, cfg)
	profileHandler := handler.NewProfileHandler(profileSvc)

	if tasks != nil && imageStorage != nil {
		photoWorker := worker.NewPhotoUploadWorker(tasks, profileRepo, imageStorage)
		go photoWorker.Start(context.Background())
	} else {
		log.Println("photo upload worker disabled: redis or image storage unavailable")
	}

	router := gin.New()

	setupCORS(router, cfg)

	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	authMiddleware := middleware.NewAuthMiddleware(tokens, userRepo)

	api := router.Group("/api/v1")

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/verify-otp", authHandler.VerifyOTP)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", authHandler.Logout)
	}

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		staff := protected.Group("/profiles")
		staff.Use(authMiddleware.RequireRole(model.RoleBranchManager))
		{
			staff.GET("/all", profileHandler.ListProfiles)
		}

		me := protected.Group("/profiles/my-profile")
		{
			me.GET("", profileHandler.GetMyProfile)
			me.PUT("", profileHandler.UpdateMyProfile)
			me.PATCH("", profileHandler.UpdateMyProfile)

			me.GET("/next-of-kin", profileHandler.ListNextOfKin)
			me.POST("/next-of-kin", profileHandler.CreateNextOfKin)
			me.GET("/next-of-kin/:id", profileHandler.GetNextOfKin)
			me.PUT("/next-of-kin/:id", profileHandler.UpdateNextOfKin)
			me.PATCH("/next-of-kin/:id", profileHandler.UpdateNextOfKin)
			me.DELETE("/next-of-kin/:id", profileHandler.DeleteNextOfKin)
		}
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
		cfg:         cfg,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func setupCORS(router *gin.Engine, cfg *config.Config) {
	origins := strings.Split(cfg.AllowedOrigins, ",")

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
