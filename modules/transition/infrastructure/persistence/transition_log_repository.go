package persistence

import (
	"context"

	"github.com/google/uuid"

	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/domain/entities/transitionlog"
	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/infrastructure/persistence/models"
	"github.com/fatimahitawala/Transition-Services-sub002/pkg/composables"
)

type TransitionLogRepository struct{}

func NewTransitionLogRepository() transitionlog.Repository {
	return &TransitionLogRepository{}
}

func (r *TransitionLogRepository) Append(ctx context.Context, entry *transitionlog.Entry) (*transitionlog.Entry, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID := entry.TenantID
	if tenantID == uuid.Nil {
		tenantID, err = composables.UseTenantID(ctx)
		if err != nil {
			return nil, err
		}
	}

	stored := *entry
	stored.TenantID = tenantID
	if err := tx.QueryRow(ctx, `
		INSERT INTO transition_logs (tenant_id, request_id, from_status, to_status, actor_id, actor_type, remark, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, clock_timestamp())
		RETURNING id, sequence, created_at`,
		tenantID,
		entry.RequestID,
		string(entry.FromStatus),
		string(entry.ToStatus),
		nullableUUID(entry.ActorID),
		string(entry.ActorType),
		entry.Remark,
	).Scan(&stored.ID, &stored.Sequence, &stored.CreatedAt); err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *TransitionLogRepository) History(ctx context.Context, requestID uuid.UUID) ([]*transitionlog.Entry, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT id, sequence, tenant_id, request_id, from_status, to_status, actor_id, actor_type, remark, created_at
		FROM transition_logs
		WHERE request_id = $1 AND tenant_id = $2
		ORDER BY created_at ASC, sequence ASC`,
		requestID, tenantID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*transitionlog.Entry
	for rows.Next() {
		var row models.TransitionLog
		if err := rows.Scan(
			&row.ID,
			&row.Sequence,
			&row.TenantID,
			&row.RequestID,
			&row.FromStatus,
			&row.ToStatus,
			&row.ActorID,
			&row.ActorType,
			&row.Remark,
			&row.CreatedAt,
		); err != nil {
			return nil, err
		}
		entry, err := toDomainTransitionLog(&row)
		if err != nil {
			return nil, err
		}
		results = append(results, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *TransitionLogRepository) Count(ctx context.Context, requestID uuid.UUID) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM transition_logs
		WHERE request_id = $1 AND tenant_id = $2`,
		requestID, tenantID,
	).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
