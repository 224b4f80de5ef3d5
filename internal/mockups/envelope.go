package mockups

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nadia/mockdeck/internal/database/models"
)

// EnvelopeVersion is the informal schema version of exported mockup files.
const EnvelopeVersion = "1.0"

// Envelope is the offline import/export file format. Data and appearance
// stay opaque through the round trip.
type Envelope struct {
	Version    string            `json:"version"`
	ExportedAt time.Time         `json:"exported_at"`
	MockupType models.MockupType `json:"mockup_type"`
	Platform   string            `json:"platform"`
	Name       string            `json:"name,omitempty"`
	Data       json.RawMessage   `json:"data"`
	Appearance json.RawMessage   `json:"appearance"`
}

// Export wraps a mockup's content in the versioned envelope. Any viewer
// may export.
func (s *Service) Export(ctx context.Context, id uuid.UUID, r *Requester) (*Envelope, error) {
	m, _, err := s.Get(ctx, id, r)
	if err != nil {
		return nil, err
	}

	return &Envelope{
		Version:    EnvelopeVersion,
		ExportedAt: time.Now().UTC(),
		MockupType: m.Type,
		Platform:   m.Platform,
		Name:       m.Name,
		Data:       json.RawMessage(m.Data),
		Appearance: json.RawMessage(m.Appearance),
	}, nil
}

func (env *Envelope) validate() error {
	fields := make(map[string]string)
	if env.Version != EnvelopeVersion {
		fields["version"] = "Unsupported envelope version"
	}
	if !models.ValidMockupType(env.MockupType) {
		fields["mockup_type"] = "Invalid mockup type"
	} else if !models.ValidPlatform(env.MockupType, env.Platform) {
		fields["platform"] = "Invalid platform for type " + string(env.MockupType)
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func rawOrEmpty(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "{}"
	}
	return string(raw)
}

// Import creates a new mockup from an exported envelope.
func (s *Service) Import(ctx context.Context, ownerID uuid.UUID, env Envelope) (*models.Mockup, error) {
	if err := env.validate(); err != nil {
		return nil, err
	}

	name := env.Name
	if name == "" {
		name = "Imported mockup"
	}

	return s.Create(ctx, ownerID, CreateInput{
		Name:       name,
		Type:       env.MockupType,
		Platform:   env.Platform,
		Data:       rawOrEmpty(env.Data),
		Appearance: rawOrEmpty(env.Appearance),
	})
}

// ImportInto replaces an existing mockup's content with an envelope's.
// The envelope's mockup type must match the target; requires edit tier.
func (s *Service) ImportInto(ctx context.Context, id uuid.UUID, r *Requester, env Envelope) (*models.Mockup, error) {
	if err := env.validate(); err != nil {
		return nil, err
	}

	m, perm, err := s.Get(ctx, id, r)
	if err != nil {
		return nil, err
	}
	if !perm.CanEdit() {
		return nil, ErrPermissionDenied
	}
	if env.MockupType != m.Type {
		return nil, validationError("mockup_type", "Envelope type does not match mockup type")
	}

	in := UpdateInput{
		Data:       ptr(rawOrEmpty(env.Data)),
		Appearance: ptr(rawOrEmpty(env.Appearance)),
	}
	if env.Name != "" {
		in.Name = &env.Name
	}

	return s.Update(ctx, id, r, in)
}

func ptr[T any](v T) *T {
	return &v
}
