package ownership

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fatimahitawala/Transition-Services-sub002/pkg/composables"
)

// PgLookup reads owner contact data from the unit_owners table, which is
// synced from the unit registry. A unit without a row resolves to an empty
// address rather than an error so notification resolution can proceed.
type PgLookup struct{}

func NewPgLookup() *PgLookup {
	return &PgLookup{}
}

func (l *PgLookup) OwnerEmail(ctx context.Context, unitID uuid.UUID) (string, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return "", err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return "", err
	}

	var email string
	if err := tx.QueryRow(ctx, `
		SELECT owner_email FROM unit_owners
		WHERE unit_id = $1 AND tenant_id = $2`,
		unitID, tenantID,
	).Scan(&email); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return email, nil
}
