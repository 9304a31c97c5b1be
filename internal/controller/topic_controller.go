package controller

import (
	"live-assist-be/internal/dto"
	"live-assist-be/internal/pkg/serverutils"
	"live-assist-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ITopicController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type topicController struct {
	topicService service.ITopicService
}

func NewTopicController(topicService service.ITopicService) ITopicController {
	return &topicController{
		topicService: topicService,
	}
}

func (c *topicController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/topics")
	h.Get("", c.List)
	h.Post("", c.Create)
	h.Get(":id", c.Show)
	h.Put(":id", c.Update)
	h.Delete(":id", c.Delete)
}

func (c *topicController) List(ctx *fiber.Ctx) error {
	res, err := c.topicService.List()
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list topics", res))
}

func (c *topicController) Show(ctx *fiber.Ctx) error {
	res, err := c.topicService.Get(ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get topic", res))
}

func (c *topicController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateTopicRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.topicService.Create(&req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create topic", res))
}

func (c *topicController) Update(ctx *fiber.Ctx) error {
	var req dto.UpdateTopicRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = ctx.Params("id")
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.topicService.Update(&req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success update topic", res))
}

func (c *topicController) Delete(ctx *fiber.Ctx) error {
	if err := c.topicService.Delete(ctx.Params("id")); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete topic", nil))
}
