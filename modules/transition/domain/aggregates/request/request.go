package request

import (
	"time"

	"github.com/google/uuid"

	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/domain/entities/recipientconfig"
)

// Request is the occupancy-transition aggregate: a move-in or move-out
// submission progressing through the status machine. Instances are
// immutable; WithStatus and WithDetail return modified copies.
type Request struct {
	id             uuid.UUID
	tenantID       uuid.UUID
	kind           Kind
	category       Category
	unitID         uuid.UUID
	requesterID    uuid.UUID
	scope          recipientconfig.Scope
	status         Status
	autoApproved   bool
	priorRequestID uuid.UUID
	detail         Detail
	createdAt      time.Time
	updatedAt      time.Time
}

// Option configures optional attributes at construction time.
type Option func(*Request)

// WithPriorRequest links a move-out or renewal to the move-in it follows on
// from.
func WithPriorRequest(id uuid.UUID) Option {
	return func(r *Request) {
		r.priorRequestID = id
	}
}

// New creates a request in status new. The detail's category becomes the
// request's category.
func New(
	tenantID uuid.UUID,
	kind Kind,
	unitID uuid.UUID,
	requesterID uuid.UUID,
	scope recipientconfig.Scope,
	detail Detail,
	opts ...Option,
) *Request {
	now := time.Now()
	r := &Request{
		id:          uuid.New(),
		tenantID:    tenantID,
		kind:        kind,
		category:    detail.Category(),
		unitID:      unitID,
		requesterID: requesterID,
		scope:       scope,
		status:      StatusNew,
		detail:      detail,
		createdAt:   now,
		updatedAt:   now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Hydrate reconstructs a request from storage without touching timestamps
// or generating IDs.
func Hydrate(
	id uuid.UUID,
	tenantID uuid.UUID,
	kind Kind,
	category Category,
	unitID uuid.UUID,
	requesterID uuid.UUID,
	scope recipientconfig.Scope,
	status Status,
	autoApproved bool,
	priorRequestID uuid.UUID,
	detail Detail,
	createdAt, updatedAt time.Time,
) *Request {
	return &Request{
		id:             id,
		tenantID:       tenantID,
		kind:           kind,
		category:       category,
		unitID:         unitID,
		requesterID:    requesterID,
		scope:          scope,
		status:         status,
		autoApproved:   autoApproved,
		priorRequestID: priorRequestID,
		detail:         detail,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

func (r *Request) ID() uuid.UUID                { return r.id }
func (r *Request) TenantID() uuid.UUID          { return r.tenantID }
func (r *Request) Kind() Kind                   { return r.kind }
func (r *Request) Category() Category           { return r.category }
func (r *Request) UnitID() uuid.UUID            { return r.unitID }
func (r *Request) RequesterID() uuid.UUID       { return r.requesterID }
func (r *Request) Scope() recipientconfig.Scope { return r.scope }
func (r *Request) Status() Status               { return r.status }
func (r *Request) AutoApproved() bool           { return r.autoApproved }
func (r *Request) PriorRequestID() uuid.UUID    { return r.priorRequestID }
func (r *Request) HasPriorRequest() bool        { return r.priorRequestID != uuid.Nil }
func (r *Request) Detail() Detail               { return r.detail }
func (r *Request) CreatedAt() time.Time         { return r.createdAt }
func (r *Request) UpdatedAt() time.Time         { return r.updatedAt }

// WithStatus returns a copy in the given status. Auto-approval is marked
// when the system actor approves a freshly submitted request.
func (r *Request) WithStatus(status Status) *Request {
	out := *r
	out.status = status
	out.updatedAt = time.Now()
	return &out
}

// MarkAutoApproved returns a copy flagged as approved without human review.
func (r *Request) MarkAutoApproved() *Request {
	out := *r
	out.autoApproved = true
	out.updatedAt = time.Now()
	return &out
}

// WithDetail returns a copy carrying an amended payload. The category may
// not change through amendment.
func (r *Request) WithDetail(detail Detail) *Request {
	out := *r
	out.detail = detail
	out.updatedAt = time.Now()
	return &out
}
