package routes

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/survey-collector/controllers"
	"github.com/vnkhanh/survey-collector/middleware"
	"github.com/vnkhanh/survey-collector/services"
)

// Deps gom mọi controller + limiter đã khởi tạo ở main (hoặc ở test).
type Deps struct {
	Auth *services.AuthService

	Surveys   *controllers.SurveyController
	Questions *controllers.QuestionController
	Responses *controllers.ResponseController
	Exports   *controllers.ExportController
	Accounts  *controllers.AuthController
	Pages     *controllers.PageController
	Health    *controllers.HealthController

	// nil = không giới hạn
	CreateLimiter *middleware.IPRateLimiter
	SubmitLimiter *middleware.IPRateLimiter
}

// Limiter mặc định: tạo survey 10 req/phút, trả lời ẩn danh 30 req/phút.
func DefaultLimiters() (create, submit *middleware.IPRateLimiter) {
	return middleware.NewIPRateLimiter(10, 5, 10*time.Minute),
		middleware.NewIPRateLimiter(30, 10, 10*time.Minute)
}

func limit(rl *middleware.IPRateLimiter) gin.HandlerFunc {
	if rl == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.RateLimitByIP(rl)
}

func SetupRoutes(r *gin.Engine, d Deps) {
	r.GET("/ping", controllers.Ping)
	r.GET("/health", d.Health.HealthCheck)

	createLimit := limit(d.CreateLimiter)
	submitLimit := limit(d.SubmitLimiter)

	api := r.Group("/api")
	{
		// Tài khoản + token
		api.POST("/auth/register", createLimit, d.Accounts.Register)
		api.POST("/token", d.Accounts.ObtainToken)
		api.POST("/token/refresh", d.Accounts.RefreshToken)
		api.GET("/token/current", middleware.AuthJWT(d.Auth), d.Accounts.CurrentToken)
		api.GET("/me", middleware.AuthJWT(d.Auth), d.Accounts.Me)

		// Public: xem + nộp qua token
		public := api.Group("/public/surveys")
		public.Use(middleware.OptionalAuth(d.Auth))
		{
			public.GET("", d.Surveys.ListPublic)
			public.GET("/:token", d.Surveys.GetByToken)
			public.POST("/:token/submit", submitLimit, d.Responses.Submit)
		}

		// Tạo session/response ẩn danh
		api.POST("/sessions", submitLimit, d.Responses.CreateSession)
		api.POST("/responses", submitLimit, d.Responses.CreateResponse)

		protected := api.Group("")
		protected.Use(middleware.AuthJWT(d.Auth))
		{
			surveys := protected.Group("/surveys")
			surveys.GET("", d.Surveys.List)
			surveys.POST("", createLimit, d.Surveys.Create)
			surveys.GET("/:id", d.Surveys.Get)
			surveys.PUT("/:id", d.Surveys.Update)
			surveys.PATCH("/:id", d.Surveys.Update)
			surveys.DELETE("/:id", d.Surveys.Delete)
			surveys.GET("/:id/stats", d.Surveys.Stats)
			surveys.GET("/:id/export", d.Exports.Export)
			surveys.PUT("/:id/questions/reorder", d.Surveys.ReorderQuestions)

			questions := protected.Group("/questions")
			questions.GET("", d.Questions.List)
			questions.POST("", d.Questions.Create)
			questions.GET("/:id", d.Questions.Get)
			questions.PUT("/:id", d.Questions.Update)
			questions.PATCH("/:id", d.Questions.Update)
			questions.DELETE("/:id", d.Questions.Delete)

			choices := protected.Group("/choices")
			choices.GET("", d.Questions.ListChoices)
			choices.POST("", d.Questions.CreateChoice)
			choices.GET("/:id", d.Questions.GetChoice)
			choices.PUT("/:id", d.Questions.UpdateChoice)
			choices.PATCH("/:id", d.Questions.UpdateChoice)
			choices.DELETE("/:id", d.Questions.DeleteChoice)

			sessions := protected.Group("/sessions")
			sessions.GET("", d.Responses.ListSessions)
			sessions.GET("/:id", d.Responses.GetSession)
			sessions.DELETE("/:id", d.Responses.DeleteSession)

			responses := protected.Group("/responses")
			responses.GET("", d.Responses.ListResponses)
			responses.GET("/:id", d.Responses.GetResponse)
			responses.PUT("/:id", d.Responses.UpdateResponse)
			responses.PATCH("/:id", d.Responses.UpdateResponse)
			responses.DELETE("/:id", d.Responses.DeleteResponse)
		}
	}

	// Trang HTML
	if d.Pages == nil {
		return
	}
	pages := r.Group("/")
	pages.Use(middleware.OptionalAuth(d.Auth))
	{
		pages.GET("", d.Pages.Home)
		pages.GET("/public-surveys", d.Pages.PublicSurveys)
		pages.GET("/register", d.Pages.RegisterForm)
		pages.POST("/register", createLimit, d.Pages.Register)
		pages.GET("/login", d.Pages.LoginForm)
		pages.POST("/login", d.Pages.Login)
		pages.GET("/logout", d.Pages.Logout)
		pages.POST("/logout", d.Pages.Logout)
		pages.GET("/s/:token", d.Pages.SurveyDetail)
		pages.POST("/s/:token", submitLimit, d.Pages.SubmitSurvey)

		private := pages.Group("")
		private.Use(middleware.RequireLogin())
		{
			private.GET("/profile", d.Pages.Profile)
			private.GET("/surveys/new", d.Pages.NewSurveyForm)
			private.POST("/surveys/new", createLimit, d.Pages.CreateSurvey)
			private.GET("/surveys/edit/:id", d.Pages.EditSurveyForm)
			private.POST("/surveys/edit/:id", d.Pages.UpdateSurvey)
		}
	}
}
