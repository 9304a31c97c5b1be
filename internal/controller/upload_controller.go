package controller

import (
	"live-assist-be/internal/dto"
	"live-assist-be/internal/pkg/serverutils"
	"live-assist-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IUploadController interface {
	RegisterRoutes(r fiber.Router)
	IssueURL(ctx *fiber.Ctx) error
	Upload(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type uploadController struct {
	uploadService service.IUploadService
}

func NewUploadController(uploadService service.IUploadService) IUploadController {
	return &uploadController{
		uploadService: uploadService,
	}
}

func (c *uploadController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/uploads")
	h.Post("url", c.IssueURL)
	h.Put(":id", c.Upload)
	h.Get("", c.List)
	h.Delete(":id", c.Delete)
}

func (c *uploadController) IssueURL(ctx *fiber.Ctx) error {
	var req dto.IssueUploadURLRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.uploadService.IssueUploadURL(&req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success issue upload url", res))
}

// Upload receives the raw file body issued against an upload id.
func (c *uploadController) Upload(ctx *fiber.Ctx) error {
	res, err := c.uploadService.SaveUpload(ctx.Context(), ctx.Params("id"), ctx.Body())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success upload document", res))
}

func (c *uploadController) List(ctx *fiber.Ctx) error {
	res, err := c.uploadService.List()
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list uploads", res))
}

func (c *uploadController) Delete(ctx *fiber.Ctx) error {
	if err := c.uploadService.Delete(ctx.Params("id")); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete upload", nil))
}
