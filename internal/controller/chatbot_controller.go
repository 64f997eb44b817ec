package controller

import (
	"errors"

	"mindease-be/internal/dto"
	"mindease-be/internal/pkg/serverutils"
	"mindease-be/internal/service"
	"mindease-be/pkg/rag/executor"

	"github.com/gofiber/fiber/v2"
)

type IChatbotController interface {
	RegisterRoutes(r fiber.Router)
	ListModels(ctx *fiber.Ctx) error
	ListDocuments(ctx *fiber.Ctx) error
	CreateSession(ctx *fiber.Ctx) error
	GetSession(ctx *fiber.Ctx) error
	UpdateConfig(ctx *fiber.Ctx) error
	SendChat(ctx *fiber.Ctx) error
	ResetSession(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
}

// ChatbotStatusMapper maps chat service errors that are not part of the shared error set
func ChatbotStatusMapper(err error) (int, bool) {
	switch {
	case errors.Is(err, service.ErrSessionBusy):
		return fiber.StatusConflict, true
	case errors.Is(err, executor.ErrEmptyQuestion):
		return fiber.StatusBadRequest, true
	}
	return 0, false
}

type chatbotController struct {
	service service.IChatbotService
}

func NewChatbotController(service service.IChatbotService) IChatbotController {
	return &chatbotController{service: service}
}

func (c *chatbotController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Get("models", c.ListModels)
	h.Get("documents", c.ListDocuments)
	h.Post("sessions", c.CreateSession)
	h.Get("sessions/:id", c.GetSession)
	h.Put("sessions/:id/config", c.UpdateConfig)
	h.Post("sessions/:id/messages", c.SendChat)
	h.Delete("sessions/:id/messages", c.ResetSession)
	h.Delete("sessions/:id", c.DeleteSession)
}

func (c *chatbotController) ListModels(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get models", c.service.ListModels(ctx.UserContext())))
}

func (c *chatbotController) ListDocuments(ctx *fiber.Ctx) error {
	res, err := c.service.ListDocuments(ctx.UserContext())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get documents", res))
}

func (c *chatbotController) CreateSession(ctx *fiber.Ctx) error {
	var req dto.CreateSessionRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
	}

	res, err := c.service.CreateSession(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create session", res))
}

func (c *chatbotController) GetSession(ctx *fiber.Ctx) error {
	res, err := c.service.GetSession(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get session", res))
}

func (c *chatbotController) UpdateConfig(ctx *fiber.Ctx) error {
	var req dto.UpdateSessionConfigRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.UpdateConfig(ctx.UserContext(), ctx.Params("id"), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update session config", res))
}

func (c *chatbotController) SendChat(ctx *fiber.Ctx) error {
	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SendChat(ctx.UserContext(), ctx.Params("id"), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success send chat", res))
}

func (c *chatbotController) ResetSession(ctx *fiber.Ctx) error {
	res, err := c.service.ResetSession(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success reset session", res))
}

func (c *chatbotController) DeleteSession(ctx *fiber.Ctx) error {
	if err := c.service.DeleteSession(ctx.UserContext(), ctx.Params("id")); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete session", nil))
}
