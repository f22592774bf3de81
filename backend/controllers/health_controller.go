package controllers

import (
	"context"
	"time"

	"educprogress/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type HealthController struct {
	DB *gorm.DB
}

func NewHealthController(db *gorm.DB) *HealthController {
	return &HealthController{DB: db}
}

// Health godoc
// @Summary Liveness and database check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} utils.ErrorResponse
// @Router /progress/health [get]
func (hc *HealthController) Health(c *fiber.Ctx) error {
	sqlDB, err := hc.DB.DB()
	if err != nil {
		return utils.Error(c, fiber.StatusServiceUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return utils.Error(c, fiber.StatusServiceUnavailable, err)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}
