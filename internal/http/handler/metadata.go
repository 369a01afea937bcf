package handler

import (
	"github.com/gofiber/fiber/v2"

	"docvault/internal/model"
	"docvault/internal/repository"
	"docvault/internal/service"
)

type fieldRequest struct {
	Name            string `json:"name" validate:"required,max=255"`
	Description     string `json:"description" validate:"max=1000"`
	Type            string `json:"type" validate:"required"`
	IsMultiValued   bool   `json:"is_multi_valued"`
	EnumValues      string `json:"enum_values"`
	ValidationRules string `json:"validation_rules"`
	DefaultValue    string `json:"default_value"`
}

func (r fieldRequest) toModel(id string) model.MetadataField {
	return model.MetadataField{
		ID:              id,
		Name:            r.Name,
		Description:     r.Description,
		Type:            model.FieldType(r.Type),
		IsMultiValued:   r.IsMultiValued,
		EnumValues:      r.EnumValues,
		ValidationRules: r.ValidationRules,
		DefaultValue:    r.DefaultValue,
	}
}

type documentTypeRequest struct {
	Name        string             `json:"name" validate:"required,max=255"`
	Description string             `json:"description" validate:"max=1000"`
	Fields      []associationEntry `json:"fields" validate:"dive"`
}

type associationEntry struct {
	FieldID    string `json:"field_id" validate:"required,uuid4"`
	IsRequired bool   `json:"is_required"`
}

func toSpecs(entries []associationEntry) []repository.AssociationSpec {
	specs := make([]repository.AssociationSpec, 0, len(entries))
	for _, e := range entries {
		specs = append(specs, repository.AssociationSpec{FieldID: e.FieldID, IsRequired: e.IsRequired})
	}
	return specs
}

func registerMetadataRoutes(app *fiber.App, svc service.MetadataService) {
	fields := app.Group("/metadata/fields")

	fields.Get("/", func(c *fiber.Ctx) error {
		items, err := svc.ListFields(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(items)
	})

	fields.Post("/", func(c *fiber.Ctx) error {
		var req fieldRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", err.Error())
		}
		field, err := svc.CreateField(c.UserContext(), req.toModel(""))
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(field)
	})

	fields.Get("/:id", func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		field, err := svc.GetField(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(field)
	})

	fields.Put("/:id", func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		var req fieldRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", err.Error())
		}
		field, err := svc.UpdateField(c.UserContext(), req.toModel(id))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(field)
	})

	fields.Delete("/:id", func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		if err := svc.DeleteField(c.UserContext(), id); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	types := app.Group("/document-types")

	types.Get("/", func(c *fiber.Ctx) error {
		items, err := svc.ListDocumentTypes(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(items)
	})

	types.Post("/", func(c *fiber.Ctx) error {
		var req documentTypeRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", err.Error())
		}
		dt, err := svc.CreateDocumentType(c.UserContext(), model.DocumentType{Name: req.Name, Description: req.Description}, toSpecs(req.Fields))
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(dt)
	})

	types.Get("/:id", func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		dt, err := svc.GetDocumentType(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(dt)
	})

	types.Put("/:id", func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		var req documentTypeRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", err.Error())
		}
		dt, err := svc.UpdateDocumentType(c.UserContext(), model.DocumentType{ID: id, Name: req.Name, Description: req.Description})
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(dt)
	})

	types.Delete("/:id", func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		if err := svc.DeleteDocumentType(c.UserContext(), id); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	types.Post("/:id/fields", func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		var req associationEntry
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", err.Error())
		}
		if err := svc.AssociateField(c.UserContext(), id, req.FieldID, req.IsRequired); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	types.Put("/:id/fields", func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		var entries []associationEntry
		if err := c.BodyParser(&entries); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		for _, e := range entries {
			if err := validate.Struct(e); err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", err.Error())
			}
		}
		if err := svc.ReplaceFieldAssociations(c.UserContext(), id, toSpecs(entries)); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	types.Delete("/:id/fields/:fieldID", func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		fieldID, ok := uuidParam(c, "fieldID")
		if !ok {
			return nil
		}
		if err := svc.DissociateField(c.UserContext(), id, fieldID); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
