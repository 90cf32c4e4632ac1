package request

import (
	"context"

	"github.com/google/uuid"
)

// FindParams filters paginated listings. Zero values mean "no filter".
type FindParams struct {
	Limit  int
	Offset int
	Status Status
	Kind   Kind
	UnitID uuid.UUID
}

// Repository persists transition requests. Implementations read the
// transaction and tenant from the context.
type Repository interface {
	Count(ctx context.Context, params *FindParams) (int64, error)
	GetPaginated(ctx context.Context, params *FindParams) ([]*Request, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Request, error)
	// GetByIDForUpdate locks the row for the remainder of the transaction
	// so concurrent transitions serialize on it.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Request, error)
	Create(ctx context.Context, req *Request) (*Request, error)
	// UpdateStatus moves the request from one status to another and returns
	// ErrConcurrentModification when the stored status no longer matches
	// from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, autoApproved bool) error
	UpdateDetail(ctx context.Context, id uuid.UUID, detail Detail) error
}
