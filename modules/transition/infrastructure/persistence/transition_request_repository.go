package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/domain/aggregates/request"
	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/infrastructure/persistence/models"
	"github.com/fatimahitawala/Transition-Services-sub002/pkg/composables"
	"github.com/fatimahitawala/Transition-Services-sub002/pkg/repo"
)

const transitionRequestColumns = `
	id, tenant_id, kind, category, unit_id, requester_id,
	master_community_id, community_id, tower_id,
	status, auto_approved, prior_request_id, detail, created_at, updated_at`

type TransitionRequestRepository struct{}

func NewTransitionRequestRepository() request.Repository {
	return &TransitionRequestRepository{}
}

func (r *TransitionRequestRepository) Count(ctx context.Context, params *request.FindParams) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return 0, err
	}
	where, args := buildRequestFilters(params, tenantID)

	var count int64
	if err := tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM transition_requests
		WHERE `+strings.Join(where, " AND "),
		args...,
	).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *TransitionRequestRepository) GetPaginated(ctx context.Context, params *request.FindParams) ([]*request.Request, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	where, args := buildRequestFilters(params, tenantID)
	query := `
		SELECT ` + transitionRequestColumns + `
		FROM transition_requests
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_at DESC, id DESC
	`
	if params != nil {
		query += " " + repo.FormatLimitOffset(params.Limit, params.Offset)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*request.Request
	for rows.Next() {
		entity, err := scanTransitionRequest(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *TransitionRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*request.Request, error) {
	return r.getByID(ctx, id, false)
}

func (r *TransitionRequestRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*request.Request, error) {
	return r.getByID(ctx, id, true)
}

func (r *TransitionRequestRepository) getByID(ctx context.Context, id uuid.UUID, forUpdate bool) (*request.Request, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT ` + transitionRequestColumns + `
		FROM transition_requests
		WHERE id = $1 AND tenant_id = $2`
	if forUpdate {
		query += " FOR UPDATE"
	}

	entity, err := scanTransitionRequest(tx.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, request.ErrNotFound
		}
		return nil, err
	}
	return entity, nil
}

func (r *TransitionRequestRepository) Create(ctx context.Context, entity *request.Request) (*request.Request, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	row, err := toDBTransitionRequest(entity)
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO transition_requests (`+transitionRequestColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		row.ID,
		row.TenantID,
		row.Kind,
		row.Category,
		row.UnitID,
		row.RequesterID,
		row.MasterCommunityID,
		row.CommunityID,
		row.TowerID,
		row.Status,
		row.AutoApproved,
		row.PriorRequestID,
		row.Detail,
		row.CreatedAt,
		row.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return entity, nil
}

// UpdateStatus writes the new status only when the stored status still
// matches from, so two writers racing from the same prior state cannot both
// succeed.
func (r *TransitionRequestRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to request.Status, autoApproved bool) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE transition_requests
		SET status = $1, auto_approved = $2, updated_at = now()
		WHERE id = $3 AND tenant_id = $4 AND status = $5`,
		string(to), autoApproved, id, tenantID, string(from),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM transition_requests WHERE id = $1 AND tenant_id = $2)`,
			id, tenantID,
		).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return request.ErrNotFound
		}
		return request.ErrConcurrentModification
	}
	return nil
}

func (r *TransitionRequestRepository) UpdateDetail(ctx context.Context, id uuid.UUID, detail request.Detail) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}

	raw, err := request.MarshalDetail(detail)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `
		UPDATE transition_requests
		SET detail = $1, updated_at = now()
		WHERE id = $2 AND tenant_id = $3`,
		raw, id, tenantID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return request.ErrNotFound
	}
	return nil
}

func scanTransitionRequest(row pgx.Row) (*request.Request, error) {
	var m models.TransitionRequest
	if err := row.Scan(
		&m.ID,
		&m.TenantID,
		&m.Kind,
		&m.Category,
		&m.UnitID,
		&m.RequesterID,
		&m.MasterCommunityID,
		&m.CommunityID,
		&m.TowerID,
		&m.Status,
		&m.AutoApproved,
		&m.PriorRequestID,
		&m.Detail,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return toDomainTransitionRequest(&m)
}

func buildRequestFilters(params *request.FindParams, tenantID uuid.UUID) ([]string, []interface{}) {
	where := []string{"tenant_id = $1"}
	args := []interface{}{tenantID}
	argPos := 2
	if params == nil {
		return where, args
	}

	if params.Status != "" {
		where = append(where, fmt.Sprintf("status = $%d", argPos))
		args = append(args, string(params.Status))
		argPos++
	}
	if params.Kind != "" {
		where = append(where, fmt.Sprintf("kind = $%d", argPos))
		args = append(args, string(params.Kind))
		argPos++
	}
	if params.UnitID != uuid.Nil {
		where = append(where, fmt.Sprintf("unit_id = $%d", argPos))
		args = append(args, params.UnitID)
	}
	return where, args
}
