package persistence

import (
	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/domain/aggregates/request"
	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/domain/entities/recipientconfig"
	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/domain/entities/transitionlog"
	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/infrastructure/persistence/models"
)

func nullableUUID(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: id != uuid.Nil}
}

func fromNullableUUID(id uuid.NullUUID) uuid.UUID {
	if !id.Valid {
		return uuid.Nil
	}
	return id.UUID
}

func toDBScope(scope recipientconfig.Scope) (uuid.UUID, uuid.NullUUID, uuid.NullUUID) {
	return scope.MasterCommunityID, nullableUUID(scope.CommunityID), nullableUUID(scope.TowerID)
}

func toDomainScope(master uuid.UUID, community, tower uuid.NullUUID) recipientconfig.Scope {
	return recipientconfig.Scope{
		MasterCommunityID: master,
		CommunityID:       fromNullableUUID(community),
		TowerID:           fromNullableUUID(tower),
	}
}

func toDBTransitionRequest(entity *request.Request) (*models.TransitionRequest, error) {
	detail, err := request.MarshalDetail(entity.Detail())
	if err != nil {
		return nil, err
	}
	master, community, tower := toDBScope(entity.Scope())
	return &models.TransitionRequest{
		ID:                entity.ID(),
		TenantID:          entity.TenantID(),
		Kind:              string(entity.Kind()),
		Category:          string(entity.Category()),
		UnitID:            entity.UnitID(),
		RequesterID:       entity.RequesterID(),
		MasterCommunityID: master,
		CommunityID:       community,
		TowerID:           tower,
		Status:            string(entity.Status()),
		AutoApproved:      entity.AutoApproved(),
		PriorRequestID:    nullableUUID(entity.PriorRequestID()),
		Detail:            detail,
		CreatedAt:         entity.CreatedAt(),
		UpdatedAt:         entity.UpdatedAt(),
	}, nil
}

func toDomainTransitionRequest(row *models.TransitionRequest) (*request.Request, error) {
	status, ok := request.NormalizeStatus(row.Status)
	if !ok {
		return nil, errors.Errorf("unknown stored status %q for request %s", row.Status, row.ID)
	}
	detail, err := request.UnmarshalDetail(row.Detail)
	if err != nil {
		return nil, errors.Wrapf(err, "request %s", row.ID)
	}
	return request.Hydrate(
		row.ID,
		row.TenantID,
		request.Kind(row.Kind),
		request.Category(row.Category),
		row.UnitID,
		row.RequesterID,
		toDomainScope(row.MasterCommunityID, row.CommunityID, row.TowerID),
		status,
		row.AutoApproved,
		fromNullableUUID(row.PriorRequestID),
		detail,
		row.CreatedAt,
		row.UpdatedAt,
	), nil
}

func toDomainTransitionLog(row *models.TransitionLog) (*transitionlog.Entry, error) {
	var from request.Status
	if row.FromStatus != "" {
		normalized, ok := request.NormalizeStatus(row.FromStatus)
		if !ok {
			return nil, errors.Errorf("unknown stored status %q in log %s", row.FromStatus, row.ID)
		}
		from = normalized
	}
	to, ok := request.NormalizeStatus(row.ToStatus)
	if !ok {
		return nil, errors.Errorf("unknown stored status %q in log %s", row.ToStatus, row.ID)
	}
	return &transitionlog.Entry{
		ID:         row.ID,
		Sequence:   row.Sequence,
		TenantID:   row.TenantID,
		RequestID:  row.RequestID,
		FromStatus: from,
		ToStatus:   to,
		ActorID:    fromNullableUUID(row.ActorID),
		ActorType:  request.ActorType(row.ActorType),
		Remark:     row.Remark,
		CreatedAt:  row.CreatedAt,
	}, nil
}

func toDomainRecipientConfig(row *models.RecipientConfiguration) recipientconfig.Config {
	return recipientconfig.Hydrate(
		row.ID,
		row.TenantID,
		toDomainScope(row.MasterCommunityID, row.CommunityID, row.TowerID),
		row.MIP,
		row.MOP,
		row.CreatedAt,
		row.UpdatedAt,
	)
}

func toDomainTemplateHistory(row *models.TemplateHistory) *recipientconfig.Snapshot {
	return &recipientconfig.Snapshot{
		ID:           row.ID,
		TenantID:     row.TenantID,
		TemplateType: recipientconfig.TemplateType(row.TemplateType),
		Scope:        toDomainScope(row.MasterCommunityID, row.CommunityID, row.TowerID),
		MIP:          row.MIP,
		MOP:          row.MOP,
		CreatedAt:    row.CreatedAt,
	}
}
