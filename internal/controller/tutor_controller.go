package controller

import (
	"fmt"

	"ai-tutoring-be/internal/dto"
	"ai-tutoring-be/internal/pkg/serverutils"
	"ai-tutoring-be/internal/service"
	"ai-tutoring-be/pkg/tutor"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ITutorController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	Ask(ctx *fiber.Ctx) error
	StartFresh(ctx *fiber.Ctx) error
	CurrentSession(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
}

type tutorController struct {
	tutorService service.ITutorService
}

func NewTutorController(tutorService service.ITutorService) ITutorController {
	return &tutorController{
		tutorService: tutorService,
	}
}

func (c *tutorController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/tutor/v1")
	h.Use(auth)
	h.Post("ask", c.Ask)
	h.Post("session/fresh", c.StartFresh)
	h.Get("session", c.CurrentSession)
	h.Get("history/:sessionId", c.History)
}

func (c *tutorController) Ask(ctx *fiber.Ctx) error {
	userId, err := requireUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fmt.Errorf("%w: %v", tutor.ErrValidation, err)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return fmt.Errorf("%w: %v", tutor.ErrValidation, err)
	}

	res, err := c.tutorService.Ask(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Answer generated", res))
}

func (c *tutorController) StartFresh(ctx *fiber.Ctx) error {
	userId, err := requireUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.StartFreshRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fmt.Errorf("%w: %v", tutor.ErrValidation, err)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return fmt.Errorf("%w: %v", tutor.ErrValidation, err)
	}

	res, err := c.tutorService.StartFresh(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Fresh session started", res))
}

func (c *tutorController) CurrentSession(ctx *fiber.Ctx) error {
	userId, err := requireUserId(ctx)
	if err != nil {
		return err
	}

	chapterId, err := uuid.Parse(ctx.Query("chapter_id"))
	if err != nil {
		return fmt.Errorf("%w: chapter_id query param is required", tutor.ErrValidation)
	}

	res, err := c.tutorService.CurrentSession(ctx.Context(), userId, chapterId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Active session", res))
}

func (c *tutorController) History(ctx *fiber.Ctx) error {
	userId, err := requireUserId(ctx)
	if err != nil {
		return err
	}

	sessionId, err := uuid.Parse(ctx.Params("sessionId"))
	if err != nil {
		return fmt.Errorf("%w: invalid session id", tutor.ErrValidation)
	}

	res, err := c.tutorService.History(ctx.Context(), userId, sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Session history", res))
}

func requireUserId(ctx *fiber.Ctx) (uuid.UUID, error) {
	userIdStr, ok := ctx.Locals("user_id").(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: missing identity", tutor.ErrAuth)
	}
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed identity", tutor.ErrAuth)
	}
	return userId, nil
}
