package persistence

import (
	"context"

	"github.com/google/uuid"

	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/domain/entities/recipientconfig"
	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/infrastructure/persistence/models"
	"github.com/fatimahitawala/Transition-Services-sub002/pkg/composables"
)

type TemplateHistoryRepository struct{}

func NewTemplateHistoryRepository() recipientconfig.HistoryRepository {
	return &TemplateHistoryRepository{}
}

func (r *TemplateHistoryRepository) Append(ctx context.Context, snapshot *recipientconfig.Snapshot) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tenantID := snapshot.TenantID
	if tenantID == uuid.Nil {
		tenantID, err = composables.UseTenantID(ctx)
		if err != nil {
			return err
		}
	}

	master, community, tower := toDBScope(snapshot.Scope)
	return tx.QueryRow(ctx, `
		INSERT INTO template_history (tenant_id, template_type, master_community_id, community_id, tower_id, mip, mop)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		tenantID,
		string(snapshot.TemplateType),
		master,
		community,
		tower,
		snapshot.MIP,
		snapshot.MOP,
	).Scan(&snapshot.ID, &snapshot.CreatedAt)
}

func (r *TemplateHistoryRepository) ListForScope(
	ctx context.Context,
	scope recipientconfig.Scope,
	templateType recipientconfig.TemplateType,
) ([]*recipientconfig.Snapshot, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	master, community, tower := toDBScope(scope)
	rows, err := tx.Query(ctx, `
		SELECT id, tenant_id, template_type, master_community_id, community_id, tower_id, mip, mop, created_at
		FROM template_history
		WHERE tenant_id = $1
		  AND template_type = $2
		  AND master_community_id = $3
		  AND community_id IS NOT DISTINCT FROM $4
		  AND tower_id IS NOT DISTINCT FROM $5
		ORDER BY created_at DESC, id DESC`,
		tenantID, string(templateType), master, community, tower,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*recipientconfig.Snapshot
	for rows.Next() {
		var row models.TemplateHistory
		if err := rows.Scan(
			&row.ID,
			&row.TenantID,
			&row.TemplateType,
			&row.MasterCommunityID,
			&row.CommunityID,
			&row.TowerID,
			&row.MIP,
			&row.MOP,
			&row.CreatedAt,
		); err != nil {
			return nil, err
		}
		results = append(results, toDomainTemplateHistory(&row))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
