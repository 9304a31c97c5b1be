package controller

import (
	"live-assist-be/internal/dto"
	"live-assist-be/internal/pkg/serverutils"
	"live-assist-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ITranscriptController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Rescan(ctx *fiber.Ctx) error
	Reingest(ctx *fiber.Ctx) error
}

type transcriptController struct {
	transcriptService service.ITranscriptService
}

func NewTranscriptController(transcriptService service.ITranscriptService) ITranscriptController {
	return &transcriptController{
		transcriptService: transcriptService,
	}
}

func (c *transcriptController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/transcripts")
	h.Get("", c.List)
	h.Post("rescan", c.Rescan)
	h.Post("reingest", c.Reingest)
}

func (c *transcriptController) List(ctx *fiber.Ctx) error {
	res, err := c.transcriptService.ListFiles()
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list transcripts", res))
}

func (c *transcriptController) Rescan(ctx *fiber.Ctx) error {
	res, err := c.transcriptService.Rescan(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success queue rescan", res))
}

func (c *transcriptController) Reingest(ctx *fiber.Ctx) error {
	var req dto.ReingestRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.transcriptService.Reingest(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success reingest transcript", res))
}
