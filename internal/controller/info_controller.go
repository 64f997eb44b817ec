package controller

import (
	"mindease-be/internal/constant"
	"mindease-be/internal/dto"
	"mindease-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
)

type IInfoController interface {
	RegisterRoutes(r fiber.Router)
	Get(ctx *fiber.Ctx) error
}

type infoController struct{}

func NewInfoController() IInfoController {
	return &infoController{}
}

func (c *infoController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/info/v1")
	h.Get("", c.Get)
}

func (c *infoController) Get(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get info", InfoPage()))
}

// InfoPage is the static MindEase introduction
func InfoPage() *dto.InfoResponse {
	res := &dto.InfoResponse{Title: constant.InfoTitle}
	for _, s := range constant.InfoSections {
		res.Sections = append(res.Sections, dto.InfoSection{Heading: s.Heading, Body: s.Body})
	}
	return res
}
