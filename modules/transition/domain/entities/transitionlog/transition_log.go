package transitionlog

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/domain/aggregates/request"
)

// Entry is one immutable audit record of a status transition. Entries are
// append-only; nothing updates or deletes them. Sequence is assigned by
// storage in insertion order and breaks created-at ties.
type Entry struct {
	ID         uuid.UUID
	Sequence   int64
	TenantID   uuid.UUID
	RequestID  uuid.UUID
	FromStatus request.Status
	ToStatus   request.Status
	ActorID    uuid.UUID
	ActorType  request.ActorType
	Remark     string
	CreatedAt  time.Time
}

// Repository stores the audit trail. History returns entries oldest first,
// ordered by created-at with sequence as the tie-break.
type Repository interface {
	Append(ctx context.Context, entry *Entry) (*Entry, error)
	History(ctx context.Context, requestID uuid.UUID) ([]*Entry, error)
	Count(ctx context.Context, requestID uuid.UUID) (int64, error)
}
