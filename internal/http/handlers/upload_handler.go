package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	applog "marketplace/internal/log"
	"marketplace/internal/storage"
)

var uploadTypes = map[storage.Kind]map[string]string{
	storage.KindImages: {
		"image/jpeg": ".jpg",
		"image/png":  ".png",
		"image/webp": ".webp",
		"image/gif":  ".gif",
	},
	storage.KindDocuments: {
		"application/pdf": ".pdf",
		"image/jpeg":      ".jpg",
		"image/png":       ".png",
	},
}

type UploadHandler struct {
	Store storage.ObjectStore
}

// POST /api/uploads/:kind (multipart field "file")
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	kind, ok := storage.ParseKind(c.Params("kind"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown upload kind"})
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file is required"})
	}
	ct := strings.ToLower(strings.TrimSpace(strings.Split(fh.Header.Get(fiber.HeaderContentType), ";")[0]))
	ext, ok := uploadTypes[kind][ct]
	if !ok {
		applog.Security(c, "upload.type.reject", map[string]any{"kind": kind, "content_type": ct})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unsupported file type"})
	}
	f, err := fh.Open()
	if err != nil {
		return fail(c, "upload.open.fail", err, nil)
	}
	defer f.Close()

	key := string(kind) + "/" + uuid.NewString() + ext
	url, err := h.Store.Put(c.UserContext(), kind, key, f, ct)
	if errors.Is(err, storage.ErrNotConfigured) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "uploads are not configured"})
	}
	if err != nil {
		return fail(c, "upload.put.fail", err, map[string]any{"key": key})
	}
	c.Status(fiber.StatusCreated)
	applog.Audit(c, "upload.put", map[string]any{"key": key, "size": fh.Size})
	return c.JSON(fiber.Map{"url": url})
}
