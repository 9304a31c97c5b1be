package controller

import (
	"live-assist-be/internal/dto"
	"live-assist-be/internal/pkg/serverutils"
	"live-assist-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IKnowledgeController interface {
	RegisterRoutes(r fiber.Router)
	Ingest(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
	ListVectors(ctx *fiber.Ctx) error
	DeleteVector(ctx *fiber.Ctx) error
	ClearVectors(ctx *fiber.Ctx) error
}

type knowledgeController struct {
	knowledgeService service.IKnowledgeService
}

func NewKnowledgeController(knowledgeService service.IKnowledgeService) IKnowledgeController {
	return &knowledgeController{
		knowledgeService: knowledgeService,
	}
}

func (c *knowledgeController) RegisterRoutes(r fiber.Router) {
	r.Post("/ingest", c.Ingest)
	r.Post("/search", c.Search)

	h := r.Group("/vectors")
	h.Get("", c.ListVectors)
	h.Delete(":id", c.DeleteVector)
	h.Delete("", c.ClearVectors)
}

func (c *knowledgeController) Ingest(ctx *fiber.Ctx) error {
	var req dto.IngestRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.knowledgeService.Ingest(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success ingest documents", res))
}

func (c *knowledgeController) Search(ctx *fiber.Ctx) error {
	var req dto.SearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.knowledgeService.SearchResults(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success search", res))
}

func (c *knowledgeController) ListVectors(ctx *fiber.Ctx) error {
	limit := ctx.QueryInt("limit", 50)
	offset := ctx.QueryInt("offset", 0)

	res, err := c.knowledgeService.ListVectors(ctx.Context(), limit, offset)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list vectors", res))
}

func (c *knowledgeController) DeleteVector(ctx *fiber.Ctx) error {
	if err := c.knowledgeService.DeleteVector(ctx.Context(), ctx.Params("id")); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete vector", nil))
}

func (c *knowledgeController) ClearVectors(ctx *fiber.Ctx) error {
	if err := c.knowledgeService.ClearVectors(ctx.Context()); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success clear vectors", nil))
}
