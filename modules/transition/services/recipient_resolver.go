package services

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/domain/aggregates/request"
	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/domain/entities/recipientconfig"
	"github.com/fatimahitawala/Transition-Services-sub002/pkg/composables"
)

// ErrNoRecipientsConfigured is returned when no configuration exists at any
// scope level. Callers on the notification path treat it as a warning, not
// a failure.
var ErrNoRecipientsConfigured = errors.New("no recipients configured for scope")

// Recipients is a resolved addressee set. An address never appears in both
// lists.
type Recipients struct {
	Primary []string
	CC      []string
}

// ResolveQuery carries the inputs of a recipient resolution. RequesterEmail
// comes from the request detail; UnitID feeds the ownership lookup for
// non-owner categories.
type ResolveQuery struct {
	Category       request.Category
	Scope          recipientconfig.Scope
	Kind           request.Kind
	RequesterEmail string
	UnitID         uuid.UUID
}

// RecipientResolver turns a request's category, scope and kind into the
// addressee set for its notifications. The narrowest configured scope wins:
// tower, then community, then master community.
type RecipientResolver struct {
	configs   recipientconfig.Repository
	ownership OwnershipLookup
}

func NewRecipientResolver(configs recipientconfig.Repository, ownership OwnershipLookup) *RecipientResolver {
	return &RecipientResolver{
		configs:   configs,
		ownership: ownership,
	}
}

// Resolve computes the primary and CC sets. Move-in and account-renewal
// transitions draw the base CC set from the MIP list, move-out from the MOP
// list. For categories
// where the occupant is not the owner the unit owner's address joins CC;
// for the owner category the requester already is the owner.
func (r *RecipientResolver) Resolve(ctx context.Context, q *ResolveQuery) (*Recipients, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (*Recipients, error) {
		cfg, err := r.lookupConfig(txCtx, q.Scope)
		if err != nil {
			return nil, err
		}

		var base []string
		switch q.Kind {
		case request.KindMoveOut:
			base = cfg.MOP()
		case request.KindRenewal:
			// Renewals keep the occupancy in place, so the move-in list
			// stays the audience.
			base = cfg.MIP()
		default:
			base = cfg.MIP()
		}

		var primary []string
		if q.RequesterEmail != "" {
			primary = append(primary, q.RequesterEmail)
		}

		cc := append([]string{}, base...)
		if q.Category != request.CategoryOwner && q.UnitID != uuid.Nil {
			ownerEmail, err := r.ownership.OwnerEmail(txCtx, q.UnitID)
			if err != nil {
				return nil, errors.Wrap(err, "failed to look up unit owner")
			}
			if ownerEmail != "" {
				cc = append(cc, ownerEmail)
			}
		}

		return dedupeRecipients(primary, cc), nil
	})
}

// lookupConfig walks the scope chain from narrowest to broadest and returns
// the first configuration found.
func (r *RecipientResolver) lookupConfig(ctx context.Context, scope recipientconfig.Scope) (recipientconfig.Config, error) {
	for {
		cfg, err := r.configs.GetByScope(ctx, scope)
		if err == nil {
			return cfg, nil
		}
		if !errors.Is(err, recipientconfig.ErrNotFound) {
			return recipientconfig.Config{}, err
		}
		broader, ok := scope.Broader()
		if !ok {
			return recipientconfig.Config{}, ErrNoRecipientsConfigured
		}
		scope = broader
	}
}

// dedupeRecipients removes duplicates within each set and drops any CC
// address already present in primary.
func dedupeRecipients(primary, cc []string) *Recipients {
	seen := make(map[string]struct{}, len(primary)+len(cc))
	outPrimary := make([]string, 0, len(primary))
	for _, addr := range primary {
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		outPrimary = append(outPrimary, addr)
	}
	outCC := make([]string, 0, len(cc))
	for _, addr := range cc {
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		outCC = append(outCC, addr)
	}
	return &Recipients{Primary: outPrimary, CC: outCC}
}
