package controllers

import (
	"educprogress/backend/models"
	"educprogress/backend/services"
	"educprogress/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type ProgressController struct {
	Progress *services.ProgressService
	Summary  *services.SummaryService
	Log      logrus.FieldLogger
}

func NewProgressController(progress *services.ProgressService, summary *services.SummaryService, log logrus.FieldLogger) *ProgressController {
	return &ProgressController{Progress: progress, Summary: summary, Log: log}
}

type CreateProgressRequest struct {
	UserID           uint `json:"userId" validate:"required"`
	ModuleID         uint `json:"moduleId" validate:"required"`
	Status           int  `json:"status" validate:"gte=0,lte=4"`
	Score            int  `json:"score" validate:"gte=0"`
	TimeSpentMinutes int  `json:"timeSpentMinutes" validate:"gte=0"`
}

type UpdateProgressRequest struct {
	Status           int `json:"status" validate:"gte=0,lte=4"`
	Score            int `json:"score" validate:"gte=0"`
	TimeSpentMinutes int `json:"timeSpentMinutes" validate:"gte=0"`
	Attempts         int `json:"attempts" validate:"gte=0"`
}

// GetProgress godoc
// @Summary Get a progress record
// @Tags progress
// @Produce json
// @Param id path int true "Progress ID"
// @Success 200 {object} models.ProgressView
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress/{id} [get]
func (pc *ProgressController) GetProgress(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}

	view, err := pc.Progress.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, pc.Log, err)
	}
	return utils.Success(c, fiber.StatusOK, view)
}

// GetUserProgress godoc
// @Summary List a learner's progress
// @Description Most recently updated first
// @Tags progress
// @Produce json
// @Param userId path int true "Learner ID"
// @Success 200 {array} models.ProgressView
// @Security ApiKeyAuth
// @Router /progress/user/{userId} [get]
func (pc *ProgressController) GetUserProgress(c *fiber.Ctx) error {
	userID, err := paramID(c, "userId")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}

	views, err := pc.Progress.ListByLearner(c.UserContext(), userID)
	if err != nil {
		return respondError(c, pc.Log, err)
	}
	return utils.Success(c, fiber.StatusOK, views)
}

// GetParentProgress godoc
// @Summary List progress of all children linked to a parent
// @Tags progress
// @Produce json
// @Param parentId path int true "Parent ID"
// @Success 200 {array} models.ProgressView
// @Security ApiKeyAuth
// @Router /progress/parent/{parentId} [get]
func (pc *ProgressController) GetParentProgress(c *fiber.Ctx) error {
	parentID, err := paramID(c, "parentId")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}

	views, err := pc.Progress.ListByParent(c.UserContext(), parentID)
	if err != nil {
		return respondError(c, pc.Log, err)
	}
	return utils.Success(c, fiber.StatusOK, views)
}

// GetChildSummary godoc
// @Summary Dashboard summary for one child
// @Tags progress
// @Produce json
// @Param childId path int true "Child ID"
// @Success 200 {object} models.ChildProgressSummary
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress/child-summary/{childId} [get]
func (pc *ProgressController) GetChildSummary(c *fiber.Ctx) error {
	childID, err := paramID(c, "childId")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}

	summary, err := pc.Summary.ChildSummary(c.UserContext(), childID)
	if err != nil {
		return respondError(c, pc.Log, err)
	}
	return utils.Success(c, fiber.StatusOK, summary)
}

// GetChildrenSummary godoc
// @Summary Dashboard summaries for every child of a parent
// @Tags progress
// @Produce json
// @Param parentId path int true "Parent ID"
// @Success 200 {array} models.ChildProgressSummary
// @Security ApiKeyAuth
// @Router /progress/children-summary/{parentId} [get]
func (pc *ProgressController) GetChildrenSummary(c *fiber.Ctx) error {
	parentID, err := paramID(c, "parentId")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}

	summaries, err := pc.Summary.GuardianSummary(c.UserContext(), parentID)
	if err != nil {
		return respondError(c, pc.Log, err)
	}
	return utils.Success(c, fiber.StatusOK, summaries)
}

// CreateProgress godoc
// @Summary Start a new attempt on a module
// @Tags progress
// @Accept json
// @Produce json
// @Param progress body CreateProgressRequest true "Progress data"
// @Success 201 {object} models.ProgressView
// @Failure 400 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress [post]
func (pc *ProgressController) CreateProgress(c *fiber.Ctx) error {
	var req CreateProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}
	if errs := utils.ValidateStruct(req); errs != nil {
		return utils.ValidationError(c, errs)
	}

	view, err := pc.Progress.Create(c.UserContext(), services.CreateProgressInput{
		LearnerID:        req.UserID,
		ModuleID:         req.ModuleID,
		Status:           models.ProgressStatus(req.Status),
		Score:            req.Score,
		TimeSpentMinutes: req.TimeSpentMinutes,
	})
	if err != nil {
		return respondError(c, pc.Log, err)
	}
	return utils.Created(c, view)
}

// UpdateProgress godoc
// @Summary Overwrite a progress record
// @Tags progress
// @Accept json
// @Produce json
// @Param id path int true "Progress ID"
// @Param progress body UpdateProgressRequest true "Progress data"
// @Success 200 {object} models.ProgressView
// @Failure 404 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress/{id} [put]
func (pc *ProgressController) UpdateProgress(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}

	var req UpdateProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}
	if errs := utils.ValidateStruct(req); errs != nil {
		return utils.ValidationError(c, errs)
	}

	view, err := pc.Progress.Update(c.UserContext(), id, services.UpdateProgressInput{
		Status:           models.ProgressStatus(req.Status),
		Score:            req.Score,
		TimeSpentMinutes: req.TimeSpentMinutes,
		Attempts:         req.Attempts,
	})
	if err != nil {
		return respondError(c, pc.Log, err)
	}
	return utils.Success(c, fiber.StatusOK, view)
}

// DeleteProgress godoc
// @Summary Delete a progress record
// @Description Earned badges are kept
// @Tags progress
// @Param id path int true "Progress ID"
// @Success 204
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress/{id} [delete]
func (pc *ProgressController) DeleteProgress(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}

	if err := pc.Progress.Delete(c.UserContext(), id); err != nil {
		return respondError(c, pc.Log, err)
	}
	return utils.NoContent(c)
}

// GetUserBadges godoc
// @Summary List badges a learner has earned
// @Tags badges
// @Produce json
// @Param userId path int true "Learner ID"
// @Success 200 {array} models.EarnedBadgeView
// @Security ApiKeyAuth
// @Router /progress/badges/{userId} [get]
func (pc *ProgressController) GetUserBadges(c *fiber.Ctx) error {
	userID, err := paramID(c, "userId")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}

	badges, err := pc.Progress.Badges(c.UserContext(), userID)
	if err != nil {
		return respondError(c, pc.Log, err)
	}
	return utils.Success(c, fiber.StatusOK, badges)
}
