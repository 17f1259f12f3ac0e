package handlers

import (
	"errors"
	"path/filepath"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/media"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// MediaHandler streams stored uploads.
type MediaHandler struct {
	store media.Store
}

// NewMediaHandler constructs handler.
func NewMediaHandler(store media.Store) *MediaHandler {
	return &MediaHandler{store: store}
}

// Download GET /media/:filename.
func (h *MediaHandler) Download(c *fiber.Ctx) error {
	name := c.Params("filename")
	rc, err := h.store.Open(c.UserContext(), name)
	if err != nil {
		if errors.Is(err, media.ErrNotFound) {
			return apperrors.NewNotFound("media", map[string]any{"filename": name})
		}
		return apperrors.NewInternalError(err)
	}
	if ext := filepath.Ext(name); ext != "" {
		c.Type(ext)
	}
	return c.SendStream(rc)
}
