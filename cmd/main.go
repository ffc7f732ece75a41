package main

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/survey-collector/cache"
	"github.com/vnkhanh/survey-collector/config"
	"github.com/vnkhanh/survey-collector/controllers"
	"github.com/vnkhanh/survey-collector/routes"
	"github.com/vnkhanh/survey-collector/services"
	"github.com/vnkhanh/survey-collector/views"
)

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	// Kết nối DB + AutoMigrate
	db, err := config.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}

	// Redis tuỳ chọn: không cấu hình thì thống kê tính trực tiếp
	var statsCache services.StatsCache
	rdb := config.InitRedis(cfg)
	if rdb != nil {
		statsCache = cache.NewStatsCache(rdb, cache.DefaultStatsTTL)
		log.Printf("Stats cache: redis %s", cfg.RedisAddr)
	}

	authSvc := services.NewAuthService(db)
	surveySvc := services.NewSurveyService(db, statsCache)
	questionSvc := services.NewQuestionService(db, statsCache)
	choiceSvc := services.NewChoiceService(db, statsCache)
	responseSvc := services.NewResponseService(db, statsCache)
	statsSvc := services.NewStatsService(db, statsCache)
	exportSvc := services.NewExportService(db)

	createLimiter, submitLimiter := routes.DefaultLimiters()

	// Tạo instance router
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if err := r.SetTrustedProxies(nil); err != nil {
		panic(err)
	}
	r.SetHTMLTemplate(views.Templates())

	routes.SetupRoutes(r, routes.Deps{
		Auth:          authSvc,
		Surveys:       controllers.NewSurveyController(surveySvc, statsSvc),
		Questions:     controllers.NewQuestionController(questionSvc, choiceSvc),
		Responses:     controllers.NewResponseController(responseSvc),
		Exports:       controllers.NewExportController(exportSvc),
		Accounts:      controllers.NewAuthController(authSvc),
		Pages:         controllers.NewPageController(authSvc, surveySvc, responseSvc, cfg.CookieSecure),
		Health:        controllers.NewHealthController(db, rdb),
		CreateLimiter: createLimiter,
		SubmitLimiter: submitLimiter,
	})

	log.Printf("Server listening on port %s\n", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
