package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/testprep-api/internal/config"
	"github.com/yourusername/testprep-api/internal/domain/entity"
	"github.com/yourusername/testprep-api/internal/handler"
	"github.com/yourusername/testprep-api/internal/middleware"
	pgRepo "github.com/yourusername/testprep-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/testprep-api/internal/repository/redis"
	"github.com/yourusername/testprep-api/internal/service"
	"github.com/yourusername/testprep-api/pkg/auth"
	"github.com/yourusername/testprep-api/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к Redis
	redisClient, err := database.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Инициализируем репозитории
	userRepo := pgRepo.NewUserRepo(db)
	testRepo := pgRepo.NewTestRepo(db)
	questionRepo := pgRepo.NewQuestionRepo(db)
	attemptRepo := pgRepo.NewAttemptRepo(db)
	answerRepo := pgRepo.NewAnswerRepo(db)
	refreshTokenRepo := pgRepo.NewRefreshTokenRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	// Инициализируем JWT-сервис
	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationHrs)
	if err != nil {
		log.Printf("Failed to initialize JWTService: %v", err)
		os.Exit(1)
	}

	// Отправка писем с результатами: noop без API-ключа
	var emailService service.EmailService
	if cfg.Email.ResendAPIKey != "" {
		emailService, err = service.NewResendEmailService(cfg.Email.ResendAPIKey, cfg.Email.From)
		if err != nil {
			log.Printf("Failed to initialize ResendEmailService: %v", err)
			os.Exit(1)
		}
		log.Println("Email: используется Resend")
	} else {
		emailService = &service.NoopEmailService{}
		log.Println("Email: RESEND_API_KEY не задан, письма отключены")
	}

	// Инициализируем сервисы
	authService := service.NewAuthService(userRepo, refreshTokenRepo, jwtService, cfg.Auth.RefreshTokenLifetimeDays)
	userService := service.NewUserService(userRepo)
	testService := service.NewTestService(testRepo, questionRepo, cacheRepo)
	attemptService := service.NewAttemptService(attemptRepo, answerRepo, testRepo, questionRepo, cacheRepo, emailService, userRepo)

	// Инициализируем обработчики
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	testHandler := handler.NewTestHandler(testService)
	attemptHandler := handler.NewAttemptHandler(attemptService)

	authMiddleware := middleware.NewAuthMiddleware(jwtService)

	// Периодическая очистка истекших refresh-токенов
	appCtx, cancel := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(12 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-appCtx.Done():
				return
			case <-ticker.C:
				authService.CleanupExpiredTokens()
			}
		}
	}()

	// Инициализируем роутер Gin
	router := gin.Default()

	isProduction := gin.Mode() == gin.ReleaseMode

	// Настройка доверенных прокси для корректной работы c.ClientIP()
	if isProduction {
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	// Настройка CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Настраиваем маршруты API
	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.RefreshToken)
			authGroup.POST("/logout", authHandler.Logout)

			authedAuth := authGroup.Group("/")
			authedAuth.Use(authMiddleware.RequireAuth())
			{
				authedAuth.POST("/change-password", authHandler.ChangePassword)
			}
		}

		users := api.Group("/users")
		users.Use(authMiddleware.RequireAuth())
		{
			users.GET("/me", userHandler.GetMe)
			users.PUT("/me", userHandler.UpdateProfile)
			users.GET("/test-attempts", attemptHandler.ListUserAttempts)
		}

		series := api.Group("/test-series")
		series.Use(authMiddleware.RequireAuth())
		{
			series.POST("", authMiddleware.RequireRole(entity.RoleTeacher, entity.RoleAdmin), testHandler.CreateSeries)
		}

		tests := api.Group("/tests")
		tests.Use(authMiddleware.RequireAuth())
		{
			tests.GET("", testHandler.ListTests)
			tests.POST("", authMiddleware.RequireRole(entity.RoleTeacher, entity.RoleAdmin), testHandler.CreateTest)

			testWithID := tests.Group("/:id")
			testWithID.Use(middleware.TestIDParam())
			{
				testWithID.GET("", testHandler.GetTest)
				testWithID.POST("/start", attemptHandler.StartAttempt)

				authoring := testWithID.Group("")
				authoring.Use(authMiddleware.RequireRole(entity.RoleTeacher, entity.RoleAdmin))
				{
					authoring.POST("/questions", testHandler.AddQuestion)
					authoring.PUT("/active", testHandler.SetActive)
				}
			}
		}

		attempts := api.Group("/test-attempts")
		attempts.Use(authMiddleware.RequireAuth())
		{
			attemptWithID := attempts.Group("/:id")
			attemptWithID.Use(middleware.AttemptIDParam())
			{
				attemptWithID.GET("", attemptHandler.GetAttemptDetail)
				attemptWithID.POST("/submit-answer", attemptHandler.SubmitAnswer)
				attemptWithID.POST("/complete", attemptHandler.CompleteAttempt)
			}
		}

		admin := api.Group("/admin")
		admin.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRole(entity.RoleAdmin))
		{
			adminTests := admin.Group("/tests/:id")
			adminTests.Use(middleware.TestIDParam())
			{
				adminTests.GET("/attempts", attemptHandler.ListTestAttempts)
				adminTests.GET("/attempts/export", attemptHandler.ExportTestAttempts)
			}

			adminUsers := admin.Group("/users/:id")
			adminUsers.Use(middleware.TargetUserIDParam())
			{
				adminUsers.PUT("/role", userHandler.SetRole)
			}
		}
	}

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Останавливаем фоновые горутины
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	log.Println("Server exited properly")
}
