package controller

import (
	"uny-compass-be/internal/dto"
	"uny-compass-be/internal/pkg/serverutils"
	"uny-compass-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatbotController interface {
	RegisterRoutes(r fiber.Router, jwt fiber.Handler)
	Ask(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
	ContextStats(ctx *fiber.Ctx) error
}

type chatbotController struct {
	service service.IChatbotService
}

func NewChatbotController(service service.IChatbotService) IChatbotController {
	return &chatbotController{service: service}
}

func (c *chatbotController) RegisterRoutes(r fiber.Router, jwt fiber.Handler) {
	h := r.Group("/chatbot", jwt)
	h.Post("/ask", c.Ask)
	h.Get("/status", c.Status)
	h.Get("/context-stats", c.ContextStats)
}

func (c *chatbotController) Ask(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	var req dto.AskRequest
	if err := serverutils.ParseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Ask(ctx.Context(), userId, serverutils.Username(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success ask chatbot", res))
}

func (c *chatbotController) Status(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get chatbot status", c.service.Status(ctx.Context())))
}

func (c *chatbotController) ContextStats(ctx *fiber.Ctx) error {
	res, err := c.service.ContextStats(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get context stats", res))
}
