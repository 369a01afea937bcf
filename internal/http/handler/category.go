package handler

import (
	"github.com/gofiber/fiber/v2"

	"docvault/internal/model"
	"docvault/internal/service"
)

type categoryRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=1000"`
}

type categoryLinkRequest struct {
	ChildID string `json:"child_id" validate:"required,uuid4"`
}

func registerCategoryRoutes(app *fiber.App, svc service.CategoryService) {
	cats := app.Group("/categories")

	cats.Get("/", func(c *fiber.Ctx) error {
		items, err := svc.List(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(items)
	})

	cats.Post("/", func(c *fiber.Ctx) error {
		var req categoryRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", err.Error())
		}
		cat, err := svc.Create(c.UserContext(), model.Category{Name: req.Name, Description: req.Description})
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(cat)
	})

	cats.Get("/:id", func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		cat, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(cat)
	})

	cats.Delete("/:id", func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	cats.Post("/:id/children", func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		var req categoryLinkRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", err.Error())
		}
		if err := svc.AddChild(c.UserContext(), id, req.ChildID); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	cats.Delete("/:id/children/:childID", func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		childID, ok := uuidParam(c, "childID")
		if !ok {
			return nil
		}
		if err := svc.RemoveChild(c.UserContext(), id, childID); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	cats.Get("/:id/tree", func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		node, err := svc.Tree(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(node)
	})
}
