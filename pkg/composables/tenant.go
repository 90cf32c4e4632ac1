package composables

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/fatimahitawala/Transition-Services-sub002/pkg/constants"
)

var ErrNoTenant = errors.New("no tenant found in context")

// Tenant identifies the community operator the current call acts for.
type Tenant struct {
	ID   uuid.UUID
	Name string
}

func WithTenantID(ctx context.Context, tenantID uuid.UUID) context.Context {
	return context.WithValue(ctx, constants.TenantIDKey, tenantID)
}

func UseTenantID(ctx context.Context) (uuid.UUID, error) {
	tenantID, ok := ctx.Value(constants.TenantIDKey).(uuid.UUID)
	if !ok || tenantID == uuid.Nil {
		return uuid.Nil, ErrNoTenant
	}
	return tenantID, nil
}
