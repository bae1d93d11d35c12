// Package web provides the HTTP boundary for workflows and automation.
package web

import (
	"context"
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/clipline/clipline/pkg/automation"
	"github.com/clipline/clipline/pkg/models"
	"github.com/clipline/clipline/pkg/scheduler"
	"github.com/clipline/clipline/pkg/workflow"
)

// OperatorHeader identifies the calling operator on every request.
const OperatorHeader = "X-Operator-ID"

const operatorKey = "operator_id"

type APIHandlers struct {
	workflows *workflow.Service
	runner    *automation.Runner
	scheduler *scheduler.Scheduler
	validator *validator.Validate
}

func NewAPIHandlers(
	workflows *workflow.Service,
	runner *automation.Runner,
	sched *scheduler.Scheduler,
	validate *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		workflows: workflows,
		runner:    runner,
		scheduler: sched,
		validator: validate,
	}
}

// RequireOperator rejects requests without an operator identity.
func (h *APIHandlers) RequireOperator(c fiber.Ctx) error {
	operatorID := c.Get(OperatorHeader)
	if operatorID == "" {
		return unauthorized(c, "missing "+OperatorHeader+" header")
	}

	c.Locals(operatorKey, operatorID)

	return c.Next()
}

func operatorID(c fiber.Ctx) string {
	id, _ := c.Locals(operatorKey).(string)

	return id
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	var req CreateWorkflowRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return badRequest(c, "Invalid JSON body: "+err.Error())
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	var options models.RenderOptions

	if len(req.RenderOptions) > 0 {
		parsed, err := models.ParseRenderOptionsJSON(req.RenderOptions)
		if err != nil {
			return handleServiceError(c, err)
		}

		options = parsed
	}

	created, err := h.workflows.Start(c.Context(), operatorID(c), req.Brief(), options)
	if err != nil {
		return handleServiceError(c, err)
	}

	// A failed production step still yields the created workflow; its
	// status and error fields carry the failure.
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) ListWorkflows(c fiber.Ctx) error {
	workflows, err := h.workflows.List(c.Context(), operatorID(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflows)
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	found, err := h.workflows.Get(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(found)
}

func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	var req UpdateWorkflowRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return badRequest(c, "Invalid JSON body: "+err.Error())
	}

	patch := workflow.UpdateRequest{
		Stage:     req.Stage,
		Narration: req.Narration,
		Scenes:    req.Scenes,
	}

	if len(req.RenderOptions) > 0 {
		parsed, err := models.ParseRenderOptionsJSON(req.RenderOptions)
		if err != nil {
			return handleServiceError(c, err)
		}

		patch.RenderOptions = &parsed
	}

	updated, err := h.workflows.Update(c.Context(), c.Params("id"), patch)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) AdvanceWorkflow(c fiber.Ctx) error {
	advanced, err := h.workflows.Advance(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(advanced)
}

func (h *APIHandlers) StartRun(c fiber.Ctx) error {
	var req StartRunRequest

	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return badRequest(c, "Invalid JSON body: "+err.Error())
		}

		if err := h.validator.Struct(req); err != nil {
			return badRequest(c, err.Error())
		}
	}

	if h.runner.Active() {
		return conflict(c, automation.ErrRunActive.Error())
	}

	config := models.ScheduleConfig{
		OperatorID:    operatorID(c),
		ItemsPerRun:   req.ItemsPerRun,
		SheetRef:      req.SheetRef,
		UploadMode:    req.UploadMode,
		PrivacyStatus: req.PrivacyStatus,
		TemplateMode:  req.TemplateMode,
	}

	// The run performs multi-second external calls per item, so it runs
	// detached from the request; State exposes its progress.
	go func() {
		_ = h.runner.StartRun(context.WithoutCancel(c.Context()), config)
	}()

	return c.Status(fiber.StatusAccepted).JSON(h.runner.State())
}

func (h *APIHandlers) StopRun(c fiber.Ctx) error {
	h.runner.RequestStop()

	return c.Status(fiber.StatusAccepted).JSON(h.runner.State())
}

func (h *APIHandlers) RunStatus(c fiber.Ctx) error {
	return c.JSON(h.runner.State())
}

func (h *APIHandlers) GetSchedule(c fiber.Ctx) error {
	state, err := h.scheduler.GetState(c.Context(), operatorID(c))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(state)
}

func (h *APIHandlers) UpdateSchedule(c fiber.Ctx) error {
	var req UpdateScheduleRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return badRequest(c, "Invalid JSON body: "+err.Error())
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	state, err := h.scheduler.UpdateConfig(c.Context(), req.Config(operatorID(c)))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(state)
}

func (h *APIHandlers) GetTemplate(c fiber.Ctx) error {
	snapshot, err := h.workflows.PinnedTemplate(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(snapshot)
}

func (h *APIHandlers) PinTemplate(c fiber.Ctx) error {
	var req PinTemplateRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return badRequest(c, "Invalid JSON body: "+err.Error())
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	snapshot, err := h.workflows.PinTemplate(c.Context(), req.WorkflowID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(snapshot)
}

// Register mounts the API routes behind the operator identity middleware.
func (h *APIHandlers) Register(app *fiber.App) {
	app.Use(h.RequireOperator)

	w := app.Group("/workflows")
	w.Post("/", h.CreateWorkflow)
	w.Get("/", h.ListWorkflows)
	w.Get("/:id", h.GetWorkflow)
	w.Patch("/:id", h.UpdateWorkflow)
	w.Post("/:id/advance", h.AdvanceWorkflow)

	a := app.Group("/automation")
	a.Post("/run", h.StartRun)
	a.Post("/stop", h.StopRun)
	a.Get("/status", h.RunStatus)
	a.Get("/schedule", h.GetSchedule)
	a.Put("/schedule", h.UpdateSchedule)
	a.Get("/template", h.GetTemplate)
	a.Put("/template", h.PinTemplate)
}
