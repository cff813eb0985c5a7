package app

import (
	"otos_backend/docs"
	"otos_backend/internal/config"
	"otos_backend/internal/middleware"
	"otos_backend/internal/model"
	"otos_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// Public routes
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// Authenticated routes
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.GET("/profile", c.auth.GetProfile)

		// Taking tests
		authGroup.POST("/tests", c.test.StartTest)
		authGroup.GET("/tests", c.test.ListMyTests)
		authGroup.POST("/tests/:id/answers", c.test.SubmitAnswer)
		authGroup.GET("/tests/:id/resume", c.test.ResumeTest)
		authGroup.POST("/tests/:id/submit", c.test.SubmitTest)
		authGroup.GET("/tests/:id/result", c.test.GetTestResult)

		// Browsing content
		authGroup.GET("/categories", c.category.ListCategories)
		authGroup.GET("/categories/:id", c.category.GetCategory)
		authGroup.GET("/packages", c.pkg.ListPackages)
		authGroup.GET("/packages/:id", c.pkg.GetPackage)

		// Leaderboards
		authGroup.GET("/rankings/overall", c.ranking.GetOverallRanking)
		authGroup.GET("/rankings/categories/:id", c.ranking.GetCategoryRanking)
		authGroup.GET("/rankings/packages/:id", c.ranking.GetPackageRanking)

		// Content management (teacher, operator, admin)
		editors := authGroup.Group("")
		editors.Use(middleware.RoleMiddleware(model.Teacher, model.Operator))
		{
			editors.POST("/categories", c.category.CreateCategory)
			editors.PUT("/categories/:id", c.category.UpdateCategory)
			editors.DELETE("/categories/:id", c.category.DeleteCategory)
			editors.GET("/categories/:id/weight-report", c.category.GetWeightReport)

			editors.POST("/questions", c.question.CreateQuestion)
			editors.GET("/questions", c.question.ListQuestions)
			editors.GET("/questions/:id", c.question.GetQuestion)
			editors.PUT("/questions/:id", c.question.UpdateQuestion)
			editors.DELETE("/questions/:id", c.question.DeleteQuestion)
			editors.POST("/questions/:id/image", c.question.UploadImage)

			editors.POST("/packages", c.pkg.CreatePackage)
			editors.GET("/packages/:id/readiness", c.pkg.GetPackageReadiness)
			editors.PUT("/packages/:id", c.pkg.UpdatePackage)
			editors.DELETE("/packages/:id", c.pkg.DeletePackage)
		}

		// Administration
		admin := authGroup.Group("/admin")
		admin.Use(middleware.RoleMiddleware(model.Admin))
		{
			admin.GET("/users", c.user.ListUsers)
			admin.GET("/users/:id", c.user.GetUser)
			admin.PUT("/users/:id", c.user.UpdateUser)
			admin.DELETE("/users/:id", c.user.DeleteUser)

			admin.POST("/tests/:id/recalculate", c.test.RecalculateTest)
			admin.POST("/calibration/run", c.calibration.RecalibrateAll)
			admin.POST("/calibration/categories/:id", c.calibration.RecalibrateCategory)
		}
	}
}
