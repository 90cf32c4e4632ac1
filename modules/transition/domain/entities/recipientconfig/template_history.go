package recipientconfig

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type TemplateType string

const (
	TemplateMoveIn        TemplateType = "move-in"
	TemplateMoveOut       TemplateType = "move-out"
	TemplateWelcomePack   TemplateType = "welcome-pack"
	TemplateRecipientMail TemplateType = "recipient-mail"
)

// Snapshot is a point-in-time copy of the recipient configuration for a
// scope. Rows are written whenever the configuration changes and never
// updated, so "which list was in effect for transition N" stays answerable
// after later edits.
type Snapshot struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	TemplateType TemplateType
	Scope        Scope
	MIP          []string
	MOP          []string
	CreatedAt    time.Time
}

type HistoryRepository interface {
	Append(ctx context.Context, snapshot *Snapshot) error
	// ListForScope returns snapshots for the exact scope tuple, newest first.
	ListForScope(ctx context.Context, scope Scope, templateType TemplateType) ([]*Snapshot, error)
}
