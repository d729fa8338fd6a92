package controller

import (
	"strconv"

	"uny-compass-be/internal/dto"
	"uny-compass-be/internal/pkg/apperror"
	"uny-compass-be/internal/pkg/serverutils"
	"uny-compass-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router, jwt fiber.Handler)
	GetPersonalityTypes(ctx *fiber.Ctx) error
	CreateChatSession(ctx *fiber.Ctx) error
	GetChatSessions(ctx *fiber.Ctx) error
	CreateMessage(ctx *fiber.Ctx) error
	GetMessages(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
}

func NewChatController(service service.IChatService) IChatController {
	return &chatController{service: service}
}

func (c *chatController) RegisterRoutes(r fiber.Router, jwt fiber.Handler) {
	r.Get("/personality-types", c.GetPersonalityTypes)

	sessions := r.Group("/chat-sessions", jwt)
	sessions.Post("", c.CreateChatSession)
	sessions.Get("", c.GetChatSessions)

	messages := r.Group("/messages", jwt)
	messages.Post("", c.CreateMessage)
	messages.Get("/:sessionId", c.GetMessages)
}

func (c *chatController) GetPersonalityTypes(ctx *fiber.Ctx) error {
	res, err := c.service.GetPersonalityTypes(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get personality types", res))
}

func (c *chatController) CreateChatSession(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateChatSessionRequest
	if len(ctx.Body()) > 0 {
		if err := serverutils.ParseBody(ctx, &req); err != nil {
			return err
		}
	}

	res, err := c.service.CreateChatSession(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create chat session", res))
}

func (c *chatController) GetChatSessions(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	var req dto.ListChatSessionsRequest
	if err := ctx.QueryParser(&req); err != nil {
		return apperror.Wrap(apperror.KindValidation, "Invalid pagination parameters", err)
	}

	res, err := c.service.GetChatSessions(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get chat sessions", res))
}

func (c *chatController) CreateMessage(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateMessageRequest
	if err := serverutils.ParseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.CreateMessage(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	if res.Turn != nil {
		return ctx.JSON(serverutils.SuccessResponse("Success create message", res.Turn))
	}
	return ctx.JSON(serverutils.SuccessResponse("Success create message", res.Message))
}

func (c *chatController) GetMessages(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	sessionId, err := strconv.ParseUint(ctx.Params("sessionId"), 10, 64)
	if err != nil {
		return apperror.Validation("Invalid session id")
	}

	res, err := c.service.GetMessages(ctx.Context(), userId, uint(sessionId))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get messages", res))
}
