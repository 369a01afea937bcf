package handler

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"docvault/internal/service"
)

type createDocumentRequest struct {
	Title          string         `json:"title" validate:"required,max=255"`
	Content        string         `json:"content"`
	DocumentTypeID string         `json:"document_type_id" validate:"omitempty,uuid4"`
	Metadata       map[string]any `json:"metadata"`
}

type updateDocumentRequest struct {
	Title   *string `json:"title" validate:"omitempty,min=1,max=255"`
	Content *string `json:"content"`
}

type updateMetadataRequest struct {
	DocumentTypeID string         `json:"document_type_id" validate:"omitempty,uuid4"`
	Metadata       map[string]any `json:"metadata" validate:"required"`
}

func registerDocumentRoutes(app *fiber.App, docSvc service.DocumentService) {
	// List documents with limit & offset.
	app.Get("/documents", func(c *fiber.Ctx) error {
		limit, offset, ok := pageParams(c)
		if !ok {
			return nil
		}
		res, err := docSvc.List(c.UserContext(), limit, offset)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	})

	// Search documents by filename/title substring and exact metadata values.
	// The metadata filter arrives as a JSON object in the query string.
	app.Get("/documents/search", func(c *fiber.Ctx) error {
		limit, offset, ok := pageParams(c)
		if !ok {
			return nil
		}
		in := service.SearchInput{
			Filename: c.Query("filename"),
			Title:    c.Query("title"),
			Limit:    limit,
			Offset:   offset,
		}
		if raw := c.Query("metadata"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &in.Metadata); err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_METADATA", "metadata filter must be a JSON object")
			}
		}
		res, err := docSvc.Search(c.UserContext(), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	})

	// Create a document without a file.
	app.Post("/documents", func(c *fiber.Ctx) error {
		var req createDocumentRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
		}
		if err := validate.Struct(req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", err.Error())
		}
		doc, err := docSvc.Create(c.UserContext(), service.CreateDocumentInput{
			Title:          req.Title,
			Content:        req.Content,
			DocumentTypeID: req.DocumentTypeID,
			Metadata:       req.Metadata,
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	})

	// Upload a document with a file (multipart/form-data: file + document JSON).
	app.Post("/documents/upload", func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		var req createDocumentRequest
		if raw := c.FormValue("document"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &req); err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "document must be a JSON object")
			}
		}
		if req.Title == "" {
			req.Title = fh.Filename
		}
		if err := validate.Struct(req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", err.Error())
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		doc, err := docSvc.Upload(c.UserContext(), f, service.UploadInput{
			Filename:       fh.Filename,
			Size:           fh.Size,
			Title:          req.Title,
			Content:        req.Content,
			DocumentTypeID: req.DocumentTypeID,
			Metadata:       req.Metadata,
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	})

	// Get document by ID.
	app.Get("/documents/:id", func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		doc, err := docSvc.Get(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(doc)
	})

	// Update title/content; snapshots the pre-update state.
	app.Put("/documents/:id", func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		var req updateDocumentRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
		}
		if err := validate.Struct(req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", err.Error())
		}
		doc, err := docSvc.Update(c.UserContext(), id, service.UpdateDocumentInput{
			Title:   req.Title,
			Content: req.Content,
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(doc)
	})

	// Replace the attached file; snapshots the pre-update state.
	app.Put("/documents/:id/file", func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		doc, err := docSvc.ReplaceFile(c.UserContext(), id, f, fh.Filename, fh.Size)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(doc)
	})

	// Update document type and metadata values; no snapshot.
	app.Put("/documents/:id/metadata", func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		var req updateMetadataRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
		}
		if err := validate.Struct(req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", err.Error())
		}
		doc, err := docSvc.UpdateMetadata(c.UserContext(), id, req.DocumentTypeID, req.Metadata)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(doc)
	})

	// List version snapshots in ascending order.
	app.Get("/documents/:id/versions", func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		versions, err := docSvc.GetVersions(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(versions)
	})

	// Get the most recent version snapshot.
	app.Get("/documents/:id/versions/latest", func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		v, err := docSvc.GetLatestVersion(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(v)
	})

	// Download the attached file.
	app.Get("/documents/:id/download", func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		rc, doc, err := docSvc.Download(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		c.Set(fiber.HeaderContentType, "application/octet-stream")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", doc.FileName))
		return c.SendStream(rc)
	})

	// Delete document by ID.
	app.Delete("/documents/:id", func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		if err := docSvc.Delete(c.UserContext(), id); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

// pageParams parses limit/offset, writing the error response itself when a
// value does not parse.
func pageParams(c *fiber.Ctx) (limit, offset int, ok bool) {
	limit, err := strconv.Atoi(c.Query("limit", "10"))
	if err != nil {
		writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		return 0, 0, false
	}
	offset, err = strconv.Atoi(c.Query("offset", "0"))
	if err != nil {
		writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		return 0, 0, false
	}
	return limit, offset, true
}

// uuidParam parses a UUID path parameter, writing the error response itself
// when the value is malformed.
func uuidParam(c *fiber.Ctx, name string) (string, bool) {
	id := c.Params(name)
	if _, err := uuid.Parse(id); err != nil {
		writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		return "", false
	}
	return id, true
}
