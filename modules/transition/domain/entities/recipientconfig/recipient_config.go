package recipientconfig

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Scope addresses a node in the community hierarchy. TowerID and CommunityID
// may be uuid.Nil: a configuration stored with a nil tower applies to the
// whole community, one with a nil community to the whole master community.
type Scope struct {
	MasterCommunityID uuid.UUID
	CommunityID       uuid.UUID
	TowerID           uuid.UUID
}

// Broader returns the next wider scope, dropping the most specific non-nil
// level. The second return value is false once the scope cannot widen.
func (s Scope) Broader() (Scope, bool) {
	if s.TowerID != uuid.Nil {
		s.TowerID = uuid.Nil
		return s, true
	}
	if s.CommunityID != uuid.Nil {
		s.CommunityID = uuid.Nil
		return s, true
	}
	return s, false
}

// Config holds the per-scope notification recipient lists: MIP for move-in
// (occupancy) notifications, MOP for move-out.
type Config struct {
	id        uuid.UUID
	tenantID  uuid.UUID
	scope     Scope
	mip       []string
	mop       []string
	createdAt time.Time
	updatedAt time.Time
}

func New(tenantID uuid.UUID, scope Scope, mip, mop []string) Config {
	return Config{
		tenantID: tenantID,
		scope:    scope,
		mip:      dedupe(mip),
		mop:      dedupe(mop),
	}
}

func Hydrate(
	id uuid.UUID,
	tenantID uuid.UUID,
	scope Scope,
	mip, mop []string,
	createdAt, updatedAt time.Time,
) Config {
	return Config{
		id:        id,
		tenantID:  tenantID,
		scope:     scope,
		mip:       mip,
		mop:       mop,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (c Config) ID() uuid.UUID        { return c.id }
func (c Config) TenantID() uuid.UUID  { return c.tenantID }
func (c Config) Scope() Scope         { return c.scope }
func (c Config) MIP() []string        { return c.mip }
func (c Config) MOP() []string        { return c.mop }
func (c Config) CreatedAt() time.Time { return c.createdAt }
func (c Config) UpdatedAt() time.Time { return c.updatedAt }
func (c Config) IsZero() bool         { return c.id == uuid.Nil && len(c.mip) == 0 && len(c.mop) == 0 }

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

type Repository interface {
	// GetByScope returns the configuration stored for the exact scope tuple.
	GetByScope(ctx context.Context, scope Scope) (Config, error)
	// Upsert stores the configuration for its scope, replacing any previous
	// lists for the same tuple.
	Upsert(ctx context.Context, c Config) (Config, error)
}
