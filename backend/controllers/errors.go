package controllers

import (
	"educprogress/backend/services"
	"educprogress/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// respondError maps engine error kinds onto HTTP statuses.
func respondError(c *fiber.Ctx, log logrus.FieldLogger, err error) error {
	switch {
	case services.IsNotFound(err):
		return utils.Error(c, fiber.StatusNotFound, err)
	case services.IsValidation(err):
		return utils.Error(c, fiber.StatusUnprocessableEntity, err)
	case services.IsInvalidOperation(err):
		return utils.Error(c, fiber.StatusBadRequest, err)
	default:
		log.WithError(err).WithFields(logrus.Fields{
			"method": c.Method(),
			"path":   c.Path(),
		}).Error("request failed")
		return utils.InternalServerError(c, "Internal server error")
	}
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return uint(id), nil
}
