package routes

import (
	"educprogress/backend/config"
	"educprogress/backend/controllers"
	"educprogress/backend/middleware"
	"educprogress/backend/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Deps are the already-built services the HTTP layer exposes.
type Deps struct {
	DB            *gorm.DB
	Progress      *services.ProgressService
	Summary       *services.SummaryService
	Notifications *services.NotificationService
	Log           logrus.FieldLogger
}

func SetupRoutes(app *fiber.App, deps Deps, cfg *config.Config) {
	healthController := controllers.NewHealthController(deps.DB)
	app.Get("/api/progress/health", healthController.Health)

	var handlers []fiber.Handler
	if cfg.AuthEnabled() {
		handlers = append(handlers, middleware.AuthMiddleware(cfg.JWTSecret))
	} else {
		deps.Log.Warn("JWT_SECRET is empty; /api/progress is unauthenticated")
	}
	progress := app.Group("/api/progress", handlers...)

	progressController := controllers.NewProgressController(deps.Progress, deps.Summary, deps.Log)
	notificationController := controllers.NewNotificationController(deps.Notifications, deps.Log)

	// Fixed prefixes before /:id
	progress.Get("/user/:userId", progressController.GetUserProgress)
	progress.Get("/parent/:parentId", progressController.GetParentProgress)
	progress.Get("/child-summary/:childId", progressController.GetChildSummary)
	progress.Get("/children-summary/:parentId", progressController.GetChildrenSummary)
	progress.Get("/badges/:userId", progressController.GetUserBadges)

	progress.Get("/notifications/:userId", notificationController.GetNotifications)
	progress.Get("/notifications/:userId/unread-count", notificationController.GetUnreadCount)
	progress.Put("/notifications/:notificationId/read", notificationController.MarkAsRead)
	progress.Put("/notifications/:userId/read-all", notificationController.MarkAllAsRead)

	progress.Post("/", progressController.CreateProgress)
	progress.Get("/:id", progressController.GetProgress)
	progress.Put("/:id", progressController.UpdateProgress)
	progress.Delete("/:id", progressController.DeleteProgress)
}
