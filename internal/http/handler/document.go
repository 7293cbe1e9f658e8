package handler

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"docvault/internal/http/middleware"
	"docvault/internal/model"
	"docvault/internal/service"
)

// ingestTimeout caps the background ingestion call; the upload response
// never waits on it.
const ingestTimeout = 60 * time.Second

// UploadDocument accepts multipart/form-data with a "file" part plus
// "title" and optional "content" fields. The stored document starts as
// pending; ingestion is dispatched in the background after the row is
// written, so a slow ingestion service never delays the upload response.
func UploadDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity := middleware.IdentityFromCtx(c)

		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		title := c.FormValue("title")
		if title == "" {
			return writeError(c, fiber.StatusBadRequest, "TITLE_REQUIRED", "title is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		in := service.CreateDocumentInput{Title: title, Content: c.FormValue("content")}
		doc, err := docSvc.Upload(c.UserContext(), in, f, fh.Filename, ct, fh.Size, identity)
		if err != nil {
			return writeServiceError(c, err)
		}

		// Fire-and-forget: the request context dies with the response, so
		// the ingestion call runs on its own context.
		go func(id, path string) {
			ctx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
			defer cancel()
			if err := docSvc.TriggerIngestion(ctx, id, path); err != nil {
				log.Printf("ingestion trigger failed for document %s: %v", id, err)
			}
		}(doc.ID, doc.FileURL)

		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// ListDocuments returns a page of documents scoped by the caller's role.
func ListDocuments(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity := middleware.IdentityFromCtx(c)

		page, err := strconv.Atoi(c.Query("page", "1"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PAGE", "invalid page")
		}
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}

		res, err := docSvc.List(c.UserContext(), identity, page, limit)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// GetDocument returns a document by ID.
func GetDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := docSvc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// DownloadDocument responds with a presigned, time-limited URL for the
// document's stored file instead of proxying the bytes.
func DownloadDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		url, err := docSvc.DownloadURL(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"url": url})
	}
}

type updateDocumentRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Status  *string `json:"status"`
}

// UpdateDocument merges the provided fields into the document. The
// service applies the ownership rule: non-admins may only update their
// own uploads.
func UpdateDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		var req updateDocumentRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
		}

		patch := service.UpdateDocumentInput{Title: req.Title, Content: req.Content}
		if req.Status != nil {
			status, err := model.ParseStatus(*req.Status)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_STATUS", "invalid status value")
			}
			patch.Status = &status
		}

		doc, err := docSvc.Update(c.UserContext(), id, patch, middleware.IdentityFromCtx(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// DeleteDocument removes a document permanently.
func DeleteDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := docSvc.Delete(c.UserContext(), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
