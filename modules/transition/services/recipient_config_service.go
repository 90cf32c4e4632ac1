package services

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/domain/entities/recipientconfig"
	"github.com/fatimahitawala/Transition-Services-sub002/pkg/composables"
	"github.com/fatimahitawala/Transition-Services-sub002/pkg/constants"
	"github.com/fatimahitawala/Transition-Services-sub002/pkg/serrors"
)

// UpsertRecipientConfigDTO replaces the recipient lists for one scope tuple.
type UpsertRecipientConfigDTO struct {
	MasterCommunityID uuid.UUID `validate:"required"`
	CommunityID       uuid.UUID
	TowerID           uuid.UUID
	MIP               []string `validate:"dive,email"`
	MOP               []string `validate:"dive,email"`
}

// Ok validates the DTO and returns field errors keyed by field name.
func (d *UpsertRecipientConfigDTO) Ok() (serrors.ValidationErrors, bool) {
	if err := constants.Validate.Struct(d); err != nil {
		errs, ok := err.(validator.ValidationErrors)
		if !ok {
			return serrors.ValidationErrors{"": serrors.NewError("ValidationError", err.Error(), "")}, false
		}
		return serrors.ProcessValidatorErrors(errs, nil), false
	}
	return nil, true
}

// RecipientConfigService manages per-scope recipient lists. Every write
// snapshots the new lists into template history in the same transaction, so
// a resolver read never observes a configuration without its history row.
type RecipientConfigService struct {
	configs recipientconfig.Repository
	history recipientconfig.HistoryRepository
}

func NewRecipientConfigService(
	configs recipientconfig.Repository,
	history recipientconfig.HistoryRepository,
) *RecipientConfigService {
	return &RecipientConfigService{
		configs: configs,
		history: history,
	}
}

// GetByScope returns the configuration stored for the exact scope tuple
// without fallback. Preview tooling that wants fallback goes through the
// resolver instead.
func (s *RecipientConfigService) GetByScope(ctx context.Context, scope recipientconfig.Scope) (recipientconfig.Config, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (recipientconfig.Config, error) {
		return s.configs.GetByScope(txCtx, scope)
	})
}

// Upsert stores the lists for the DTO's scope and appends one immutable
// recipient-mail history snapshot, atomically.
func (s *RecipientConfigService) Upsert(ctx context.Context, dto *UpsertRecipientConfigDTO) (recipientconfig.Config, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return recipientconfig.Config{}, err
	}

	scope := recipientconfig.Scope{
		MasterCommunityID: dto.MasterCommunityID,
		CommunityID:       dto.CommunityID,
		TowerID:           dto.TowerID,
	}
	cfg := recipientconfig.New(tenantID, scope, dto.MIP, dto.MOP)

	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (recipientconfig.Config, error) {
		saved, err := s.configs.Upsert(txCtx, cfg)
		if err != nil {
			return recipientconfig.Config{}, err
		}
		if err := s.history.Append(txCtx, &recipientconfig.Snapshot{
			TenantID:     tenantID,
			TemplateType: recipientconfig.TemplateRecipientMail,
			Scope:        scope,
			MIP:          saved.MIP(),
			MOP:          saved.MOP(),
		}); err != nil {
			return recipientconfig.Config{}, err
		}
		return saved, nil
	})
}

// HistoryForScope lists the stored snapshots for a scope, newest first.
func (s *RecipientConfigService) HistoryForScope(
	ctx context.Context,
	scope recipientconfig.Scope,
	templateType recipientconfig.TemplateType,
) ([]*recipientconfig.Snapshot, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) ([]*recipientconfig.Snapshot, error) {
		return s.history.ListForScope(txCtx, scope, templateType)
	})
}
