package controller

import (
	"fmt"

	"ai-tutoring-be/internal/dto"
	"ai-tutoring-be/internal/pkg/serverutils"
	"ai-tutoring-be/internal/service"
	"ai-tutoring-be/pkg/tutor"

	"github.com/gofiber/fiber/v2"
)

type IContentController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	Index(ctx *fiber.Ctx) error
}

type contentController struct {
	indexerService service.IIndexerService
}

func NewContentController(indexerService service.IIndexerService) IContentController {
	return &contentController{
		indexerService: indexerService,
	}
}

func (c *contentController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/content/v1")
	h.Use(auth)
	h.Post("index", c.Index)
}

// Index accepts chapter content and queues it for asynchronous chunking
// and embedding. The response confirms acceptance, not completion.
func (c *contentController) Index(ctx *fiber.Ctx) error {
	var req dto.IndexChapterRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fmt.Errorf("%w: %v", tutor.ErrValidation, err)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return fmt.Errorf("%w: %v", tutor.ErrValidation, err)
	}

	if err := c.indexerService.Enqueue(ctx.Context(), &req); err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse[any]("Chapter content queued for indexing", nil))
}
