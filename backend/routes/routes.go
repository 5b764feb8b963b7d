package routes

import (
	"studyproject/backend/config"
	"studyproject/backend/controllers"
	"studyproject/backend/middleware"
	"studyproject/backend/services"
	"studyproject/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, logger *utils.Logger) {
	media := utils.NewMediaStore(cfg.MediaDir, cfg.MediaURL)
	app.Static(media.URL, media.Root)

	catalog := services.NewCatalogService(db, logger)
	enrollments := services.NewEnrollmentService(db, logger)
	admin := services.NewAdminService(db, logger)
	accounts := services.NewAccountService(db, logger)

	// Middleware
	app.Use(middleware.Principal(accounts, cfg, logger))
	authRequired := middleware.AuthRequired()
	adminRequired := middleware.AdminRequired()

	// Public pages
	overviewController := controllers.NewOverviewController(catalog, cfg, logger)
	app.Get("/", overviewController.Home)
	app.Get("/about", overviewController.About)
	app.Get("/contacts", overviewController.Contacts)

	// Auth routes
	authController := controllers.NewAuthController(accounts, cfg, logger)
	app.Post("/auth/register", authController.Register)
	app.Post("/auth/login", authController.Login)
	app.Post("/auth/logout", authController.Logout)

	// User routes
	userController := controllers.NewUserController(enrollments, cfg, logger)
	app.Get("/account/profile", authRequired, userController.GetProfile)

	// Courses routes
	coursesController := controllers.NewCoursesController(catalog, cfg, logger)
	progressController := controllers.NewProgressController(enrollments, cfg, logger)
	reviewController := controllers.NewReviewController(enrollments, cfg, logger)
	courses := app.Group("/courses")
	courses.Get("/", coursesController.List)
	courses.Get("/category/:slug", coursesController.ByCategory)
	courses.Post("/:id<int>/enroll", authRequired, progressController.Enroll)
	courses.Post("/:id<int>/progress", authRequired, progressController.UpdateProgress)
	courses.Get("/:id<int>/review", authRequired, reviewController.Form)
	courses.Post("/:id<int>/review", authRequired, reviewController.Submit)
	courses.Get("/:slug", coursesController.Detail)

	// Admin panel
	adminController := controllers.NewAdminController(admin, media, cfg, logger)
	categoryController := controllers.NewCategoryController(admin, cfg, logger)
	analyticsController := controllers.NewAnalyticsController(admin, cfg, logger)
	panel := app.Group("/admin-panel", adminRequired)
	panel.Get("/", adminController.Dashboard)
	panel.Post("/", adminController.SaveCourse)
	panel.Get("/edit/:id<int>", adminController.EditCourse)
	panel.Post("/delete/:id<int>", adminController.DeleteCourse)
	panel.Post("/sample-courses", adminController.SampleCourses)
	panel.Post("/courses/:id<int>/lessons", adminController.AddLesson)
	panel.Get("/courses/:id<int>/analytics", analyticsController.GetCourseAnalytics)
	panel.Get("/enrollments", adminController.Enrollments)

	panel.Get("/manage-categories", categoryController.Manage)
	panel.Post("/manage-categories", categoryController.Create)
	panel.Get("/manage-categories/edit/:id<int>", categoryController.Edit)
	panel.Post("/manage-categories/edit/:id<int>", categoryController.Update)
	panel.Post("/manage-categories/delete/:id<int>", categoryController.Delete)
}
