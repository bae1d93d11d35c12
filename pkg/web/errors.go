package web

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"

	"github.com/clipline/clipline/pkg/automation"
	"github.com/clipline/clipline/pkg/models"
	"github.com/clipline/clipline/pkg/persistence"
	"github.com/clipline/clipline/pkg/workflow"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func unauthorized(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(401).
		WithInstance(c.Path()).
		WithType("missing_operator").
		WithDetail(detail)

	return c.Status(fiber.StatusUnauthorized).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func conflict(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(409).
		WithInstance(c.Path()).
		WithType("conflict").
		WithDetail(detail)

	return c.Status(fiber.StatusConflict).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleServiceError maps domain errors onto problem responses.
func handleServiceError(c fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors

	switch {
	case errors.Is(err, workflow.ErrStillProcessing),
		errors.Is(err, workflow.ErrEditWhileProcessing),
		errors.Is(err, automation.ErrRunActive):
		return conflict(c, err.Error())

	case errors.Is(err, workflow.ErrStageForwardUpdate),
		errors.Is(err, models.ErrInvalidSceneSplit),
		errors.Is(err, models.ErrInvalidRenderOptionsDocument),
		errors.Is(err, models.ErrInvalidSchedule),
		errors.As(err, &validationErrors):
		return badRequest(c, err.Error())

	case persistence.IsWorkflowNotFound(err):
		return notFound(c, "workflow not found")

	case persistence.IsScheduleNotFound(err):
		return notFound(c, "schedule not found")

	case persistence.IsTemplateNotFound(err):
		return notFound(c, "no template pinned")

	default:
		return internalError(c, err)
	}
}
