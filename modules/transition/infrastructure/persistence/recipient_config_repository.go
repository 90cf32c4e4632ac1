package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/domain/entities/recipientconfig"
	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/infrastructure/persistence/models"
	"github.com/fatimahitawala/Transition-Services-sub002/pkg/composables"
)

type RecipientConfigRepository struct{}

func NewRecipientConfigRepository() recipientconfig.Repository {
	return &RecipientConfigRepository{}
}

func (r *RecipientConfigRepository) GetByScope(ctx context.Context, scope recipientconfig.Scope) (recipientconfig.Config, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return recipientconfig.Config{}, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return recipientconfig.Config{}, err
	}

	master, community, tower := toDBScope(scope)
	var row models.RecipientConfiguration
	if err := tx.QueryRow(ctx, `
		SELECT id, tenant_id, master_community_id, community_id, tower_id, mip, mop, created_at, updated_at
		FROM recipient_configurations
		WHERE tenant_id = $1
		  AND master_community_id = $2
		  AND community_id IS NOT DISTINCT FROM $3
		  AND tower_id IS NOT DISTINCT FROM $4`,
		tenantID, master, community, tower,
	).Scan(
		&row.ID,
		&row.TenantID,
		&row.MasterCommunityID,
		&row.CommunityID,
		&row.TowerID,
		&row.MIP,
		&row.MOP,
		&row.CreatedAt,
		&row.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return recipientconfig.Config{}, recipientconfig.ErrNotFound
		}
		return recipientconfig.Config{}, err
	}
	return toDomainRecipientConfig(&row), nil
}

func (r *RecipientConfigRepository) Upsert(ctx context.Context, c recipientconfig.Config) (recipientconfig.Config, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return recipientconfig.Config{}, err
	}
	tenantID := c.TenantID()
	if tenantID == uuid.Nil {
		tenantID, err = composables.UseTenantID(ctx)
		if err != nil {
			return recipientconfig.Config{}, err
		}
	}

	master, community, tower := toDBScope(c.Scope())
	var row models.RecipientConfiguration
	if err := tx.QueryRow(ctx, `
		INSERT INTO recipient_configurations (tenant_id, master_community_id, community_id, tower_id, mip, mop)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (tenant_id, master_community_id, community_id, tower_id)
		DO UPDATE SET mip = EXCLUDED.mip, mop = EXCLUDED.mop, updated_at = now()
		RETURNING id, tenant_id, master_community_id, community_id, tower_id, mip, mop, created_at, updated_at`,
		tenantID, master, community, tower, c.MIP(), c.MOP(),
	).Scan(
		&row.ID,
		&row.TenantID,
		&row.MasterCommunityID,
		&row.CommunityID,
		&row.TowerID,
		&row.MIP,
		&row.MOP,
		&row.CreatedAt,
		&row.UpdatedAt,
	); err != nil {
		return recipientconfig.Config{}, err
	}
	return toDomainRecipientConfig(&row), nil
}
