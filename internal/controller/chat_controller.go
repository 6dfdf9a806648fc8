package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"ai-support-be/internal/dto"
	"ai-support-be/internal/pkg/serverutils"
	"ai-support-be/internal/service"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router, middleware ...fiber.Handler)
	Chat(ctx *fiber.Ctx) error
	ReloadCatalog(ctx *fiber.Ctx) error
}

type chatController struct {
	assistantService service.IAssistantService
}

func NewChatController(assistantService service.IAssistantService) IChatController {
	return &chatController{
		assistantService: assistantService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router, middleware ...fiber.Handler) {
	h := r.Group("/chat/v1")
	for _, m := range middleware {
		h.Use(m)
	}
	h.Post("", c.Chat)
	h.Post("/catalog/reload", c.ReloadCatalog)
}

func (c *chatController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	req.Message = strings.TrimSpace(req.Message)

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.assistantService.Chat(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *chatController) ReloadCatalog(ctx *fiber.Ctx) error {
	count, err := c.assistantService.ReloadCatalog(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Catalog reloaded", dto.ReloadCatalogResponse{Entries: count}))
}
