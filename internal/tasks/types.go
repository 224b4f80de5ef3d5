package tasks

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Task type names
const (
	TypeThumbnailRender = "thumbnail:render"
)

// ThumbnailRenderPayload asks the worker to refresh a mockup's thumbnail
// against the external renderer.
type ThumbnailRenderPayload struct {
	MockupID uuid.UUID `json:"mockup_id"`
}

func NewThumbnailRenderTask(payload ThumbnailRenderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeThumbnailRender, data), nil
}
