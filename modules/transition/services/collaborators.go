package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/domain/entities/recipientconfig"
)

// OwnershipLookup resolves the owner's contact address for a unit. Backed by
// the unit registry; the engine never writes ownership data.
type OwnershipLookup interface {
	OwnerEmail(ctx context.Context, unitID uuid.UUID) (string, error)
}

// Artifact is a rendered notification document ready for transport.
type Artifact struct {
	Subject     string
	Body        []byte
	ContentType string
}

// Renderer produces the notification artifact for a template type. The
// document service owns templates; the engine only passes data through.
type Renderer interface {
	Render(ctx context.Context, templateType recipientconfig.TemplateType, data map[string]string) (*Artifact, error)
}

// Transport delivers a rendered artifact. Retries, if any, belong to the
// implementation; the engine attempts each dispatch once.
type Transport interface {
	Send(ctx context.Context, artifact *Artifact, primary, cc []string) error
}
