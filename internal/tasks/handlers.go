package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/nadia/mockdeck/internal/database/models"
	"gorm.io/gorm"
)

type Handler struct {
	db              *gorm.DB
	logger          *slog.Logger
	rendererBaseURL string
}

func NewHandler(db *gorm.DB, logger *slog.Logger, rendererBaseURL string) *Handler {
	return &Handler{
		db:              db,
		logger:          logger,
		rendererBaseURL: rendererBaseURL,
	}
}

func (h *Handler) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeThumbnailRender, h.HandleThumbnailRender)
}

// HandleThumbnailRender writes the renderer URL for a mockup's current
// revision onto the row. The renderer serves the actual image; this core
// only stores the pointer to it.
func (h *Handler) HandleThumbnailRender(ctx context.Context, t *asynq.Task) error {
	var payload ThumbnailRenderPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	var m models.Mockup
	if err := h.db.WithContext(ctx).First(&m, "id = ?", payload.MockupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Mockup deleted between enqueue and processing; nothing to do.
			h.logger.Debug("thumbnail render skipped, mockup gone", "mockup_id", payload.MockupID)
			return nil
		}
		return err
	}

	url := fmt.Sprintf("%s/render/%s.png?rev=%d", h.rendererBaseURL, m.ID, m.UpdatedAt.Unix())

	// UpdateColumn keeps updated_at untouched: a thumbnail refresh is not
	// a content edit.
	if err := h.db.WithContext(ctx).Model(&m).UpdateColumn("thumbnail_url", url).Error; err != nil {
		return fmt.Errorf("updating thumbnail url: %w", err)
	}

	h.logger.Info("thumbnail rendered", "mockup_id", m.ID, "url", url)
	return nil
}
