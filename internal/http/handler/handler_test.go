package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docvault/internal/apperr"
	"docvault/internal/model"
	"docvault/internal/service"
	serviceMocks "docvault/internal/service/mocks"
)

type handlerFixture struct {
	app        *fiber.App
	dbMock     sqlmock.Sqlmock
	documents  *serviceMocks.MockDocumentService
	metadata   *serviceMocks.MockMetadataService
	categories *serviceMocks.MockCategoryService
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &handlerFixture{
		dbMock:     dbMock,
		documents:  new(serviceMocks.MockDocumentService),
		metadata:   new(serviceMocks.MockMetadataService),
		categories: new(serviceMocks.MockCategoryService),
	}
	f.app = fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	RegisterRoutes(f.app, db, Services{
		Documents:  f.documents,
		Metadata:   f.metadata,
		Categories: f.categories,
	})
	return f
}

func decodeError(t *testing.T, body io.Reader) errorPayload {
	t.Helper()
	var payload errorPayload
	require.NoError(t, json.NewDecoder(body).Decode(&payload))
	return payload
}

func TestHealth(t *testing.T) {
	f := newHandlerFixture(t)

	t.Run("healthy", func(t *testing.T) {
		f.dbMock.ExpectPing().WillReturnError(nil)

		resp, _ := f.app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("unhealthy", func(t *testing.T) {
		f.dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		resp, _ := f.app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("liveness", func(t *testing.T) {
		resp, _ := f.app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestListDocuments(t *testing.T) {
	f := newHandlerFixture(t)

	t.Run("success", func(t *testing.T) {
		f.documents.On("List", mock.Anything, 10, 0).Return(&service.DocumentListResult{
			Items: []model.Document{{ID: uuid.NewString(), Title: "Report"}},
			Total: 1,
		}, nil).Once()

		resp, _ := f.app.Test(httptest.NewRequest(http.MethodGet, "/documents?limit=10&offset=0", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var result service.DocumentListResult
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Len(t, result.Items, 1)
		assert.Equal(t, 1, result.Total)
		f.documents.AssertExpectations(t)
	})

	t.Run("invalid limit", func(t *testing.T) {
		resp, _ := f.app.Test(httptest.NewRequest(http.MethodGet, "/documents?limit=abc", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_LIMIT", decodeError(t, resp.Body).Error.Code)
	})
}

func TestSearchDocuments(t *testing.T) {
	f := newHandlerFixture(t)

	t.Run("metadata filter is parsed from the query string", func(t *testing.T) {
		f.documents.On("Search", mock.Anything, mock.MatchedBy(func(in service.SearchInput) bool {
			return in.Filename == "report" && in.Metadata["department"] == "finance"
		})).Return(&service.DocumentListResult{Items: []model.Document{}, Total: 0}, nil).Once()

		target := "/documents/search?filename=report&metadata=" + url.QueryEscape(`{"department":"finance"}`)
		resp, _ := f.app.Test(httptest.NewRequest(http.MethodGet, target, nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		f.documents.AssertExpectations(t)
	})

	t.Run("malformed metadata filter", func(t *testing.T) {
		target := "/documents/search?metadata=" + url.QueryEscape(`{broken`)
		resp, _ := f.app.Test(httptest.NewRequest(http.MethodGet, target, nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_METADATA", decodeError(t, resp.Body).Error.Code)
	})
}

func TestGetDocument(t *testing.T) {
	f := newHandlerFixture(t)
	id := uuid.NewString()

	t.Run("found", func(t *testing.T) {
		f.documents.On("Get", mock.Anything, id).Return(&model.Document{ID: id, Title: "Report"}, nil).Once()

		resp, _ := f.app.Test(httptest.NewRequest(http.MethodGet, "/documents/"+id, nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("not found", func(t *testing.T) {
		f.documents.On("Get", mock.Anything, id).Return(nil, apperr.ErrNotFound).Once()

		resp, _ := f.app.Test(httptest.NewRequest(http.MethodGet, "/documents/"+id, nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		resp, _ := f.app.Test(httptest.NewRequest(http.MethodGet, "/documents/not-a-uuid", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_ID", decodeError(t, resp.Body).Error.Code)
	})
}

func TestCreateDocument(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.documents.On("Create", mock.Anything, mock.MatchedBy(func(in service.CreateDocumentInput) bool {
			return in.Title == "Notes"
		})).Return(&model.Document{ID: uuid.NewString(), Title: "Notes"}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/documents", strings.NewReader(`{"title":"Notes"}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, _ := f.app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("missing title fails request validation", func(t *testing.T) {
		f := newHandlerFixture(t)
		req := httptest.NewRequest(http.MethodPost, "/documents", strings.NewReader(`{"content":"x"}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, _ := f.app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		f.documents.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("schema failure surfaces as 422 with the field", func(t *testing.T) {
		f := newHandlerFixture(t)
		typeID := uuid.NewString()
		f.documents.On("Create", mock.Anything, mock.Anything).
			Return(nil, apperr.Validation("confidential", "required field is missing")).Once()

		body := `{"title":"Policy","document_type_id":"` + typeID + `","metadata":{}}`
		req := httptest.NewRequest(http.MethodPost, "/documents", strings.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, _ := f.app.Test(req)

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		payload := decodeError(t, resp.Body)
		assert.Equal(t, "VALIDATION_ERROR", payload.Error.Code)
		assert.Equal(t, "confidential", payload.Error.Field)
	})
}

func TestUploadDocument(t *testing.T) {
	f := newHandlerFixture(t)

	buildMultipart := func(t *testing.T, docJSON string) (*bytes.Buffer, string) {
		t.Helper()
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		fw, err := w.CreateFormFile("file", "report.pdf")
		require.NoError(t, err)
		fw.Write([]byte("file content"))
		if docJSON != "" {
			require.NoError(t, w.WriteField("document", docJSON))
		}
		require.NoError(t, w.Close())
		return &buf, w.FormDataContentType()
	}

	t.Run("uploads with document JSON", func(t *testing.T) {
		f.documents.On("Upload", mock.Anything, mock.Anything, mock.MatchedBy(func(in service.UploadInput) bool {
			return in.Filename == "report.pdf" && in.Title == "Q3 Report"
		})).Return(&model.Document{ID: uuid.NewString()}, nil).Once()

		body, contentType := buildMultipart(t, `{"title":"Q3 Report"}`)
		req := httptest.NewRequest(http.MethodPost, "/documents/upload", body)
		req.Header.Set(fiber.HeaderContentType, contentType)
		resp, _ := f.app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		f.documents.AssertExpectations(t)
	})

	t.Run("title defaults to the file name", func(t *testing.T) {
		f.documents.On("Upload", mock.Anything, mock.Anything, mock.MatchedBy(func(in service.UploadInput) bool {
			return in.Title == "report.pdf"
		})).Return(&model.Document{ID: uuid.NewString()}, nil).Once()

		body, contentType := buildMultipart(t, "")
		req := httptest.NewRequest(http.MethodPost, "/documents/upload", body)
		req.Header.Set(fiber.HeaderContentType, contentType)
		resp, _ := f.app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("missing file part", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/documents/upload", strings.NewReader(""))
		resp, _ := f.app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "FILE_REQUIRED", decodeError(t, resp.Body).Error.Code)
	})
}

func TestUpdateMetadata(t *testing.T) {
	f := newHandlerFixture(t)
	id := uuid.NewString()

	t.Run("enum violation reports the valid set", func(t *testing.T) {
		f.documents.On("UpdateMetadata", mock.Anything, id, "", map[string]any{"department": "D"}).
			Return(nil, apperr.Validation("department", "must be one of: A, B, C")).Once()

		req := httptest.NewRequest(http.MethodPut, "/documents/"+id+"/metadata",
			strings.NewReader(`{"metadata":{"department":"D"}}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, _ := f.app.Test(req)

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		payload := decodeError(t, resp.Body)
		assert.Equal(t, "department", payload.Error.Field)
		assert.Equal(t, "must be one of: A, B, C", payload.Error.Message)
	})
}

func TestDeleteDocument(t *testing.T) {
	f := newHandlerFixture(t)
	id := uuid.NewString()

	f.documents.On("Delete", mock.Anything, id).Return(nil).Once()

	resp, _ := f.app.Test(httptest.NewRequest(http.MethodDelete, "/documents/"+id, nil))

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	f.documents.AssertExpectations(t)
}

func TestCreateMetadataField(t *testing.T) {
	f := newHandlerFixture(t)

	t.Run("duplicate name maps to conflict", func(t *testing.T) {
		f.metadata.On("CreateField", mock.Anything, mock.Anything).
			Return(nil, apperr.Conflictf("field %q", "department")).Once()

		body := `{"name":"department","type":"text"}`
		req := httptest.NewRequest(http.MethodPost, "/metadata/fields", strings.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, _ := f.app.Test(req)

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "CONFLICT", decodeError(t, resp.Body).Error.Code)
	})
}

func TestCategoryChildren(t *testing.T) {
	f := newHandlerFixture(t)
	parent := uuid.NewString()
	child := uuid.NewString()

	t.Run("cycle maps to conflict", func(t *testing.T) {
		f.categories.On("AddChild", mock.Anything, parent, child).
			Return(service.ErrCategoryCycle).Once()

		body := `{"child_id":"` + child + `"}`
		req := httptest.NewRequest(http.MethodPost, "/categories/"+parent+"/children", strings.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, _ := f.app.Test(req)

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "CYCLE", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("links when no cycle", func(t *testing.T) {
		f.categories.On("AddChild", mock.Anything, parent, child).Return(nil).Once()

		body := `{"child_id":"` + child + `"}`
		req := httptest.NewRequest(http.MethodPost, "/categories/"+parent+"/children", strings.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, _ := f.app.Test(req)

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})
}
