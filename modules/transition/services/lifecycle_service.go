package services

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/domain/aggregates/request"
	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/domain/entities/recipientconfig"
	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/domain/entities/transitionlog"
	"github.com/fatimahitawala/Transition-Services-sub002/pkg/composables"
	"github.com/fatimahitawala/Transition-Services-sub002/pkg/eventbus"
)

// SubmitDTO carries a new move-in or move-out submission. The category is
// taken from the detail payload.
type SubmitDTO struct {
	Kind           request.Kind
	UnitID         uuid.UUID
	RequesterID    uuid.UUID
	Scope          recipientconfig.Scope
	Detail         request.Detail
	PriorRequestID uuid.UUID
}

// LifecycleService orchestrates the request state machine. Every accepted
// change runs as one transaction covering the status write and its audit
// entry; notifications go out only after that transaction commits.
type LifecycleService struct {
	repo      request.Repository
	logs      transitionlog.Repository
	policy    request.Policy
	notifier  Notifier
	publisher eventbus.EventBus
	log       *logrus.Logger
}

func NewLifecycleService(
	repo request.Repository,
	logs transitionlog.Repository,
	policy request.Policy,
	notifier Notifier,
	publisher eventbus.EventBus,
	log *logrus.Logger,
) *LifecycleService {
	return &LifecycleService{
		repo:      repo,
		logs:      logs,
		policy:    policy,
		notifier:  notifier,
		publisher: publisher,
		log:       log,
	}
}

func (s *LifecycleService) Count(ctx context.Context, params *request.FindParams) (int64, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (int64, error) {
		return s.repo.Count(txCtx, params)
	})
}

func (s *LifecycleService) GetPaginated(ctx context.Context, params *request.FindParams) ([]*request.Request, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) ([]*request.Request, error) {
		return s.repo.GetPaginated(txCtx, params)
	})
}

func (s *LifecycleService) GetByID(ctx context.Context, id uuid.UUID) (*request.Request, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (*request.Request, error) {
		return s.repo.GetByID(txCtx, id)
	})
}

// History returns the audit trail for a request, oldest entry first.
func (s *LifecycleService) History(ctx context.Context, requestID uuid.UUID) ([]*transitionlog.Entry, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) ([]*transitionlog.Entry, error) {
		if _, err := s.repo.GetByID(txCtx, requestID); err != nil {
			return nil, err
		}
		return s.logs.History(txCtx, requestID)
	})
}

// Submit validates the payload against the category policy and persists the
// request. Payloads that qualify for auto-approval land directly in status
// approved with a single system audit entry; nothing is persisted when
// validation fails.
func (s *LifecycleService) Submit(ctx context.Context, dto *SubmitDTO) (*request.Request, error) {
	if dto == nil || dto.Detail == nil {
		return nil, request.NewValidationError("detail", "submission payload is required")
	}
	if err := s.policy.Validate(dto.Detail); err != nil {
		return nil, err
	}

	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	var opts []request.Option
	if dto.PriorRequestID != uuid.Nil {
		opts = append(opts, request.WithPriorRequest(dto.PriorRequestID))
	}
	entity := request.New(tenantID, dto.Kind, dto.UnitID, dto.RequesterID, dto.Scope, dto.Detail, opts...)

	autoApproved := s.policy.IsAutoApprovable(dto.Detail)

	created, err := composables.InTenantTxResult(ctx, func(txCtx context.Context) (*request.Request, error) {
		toCreate := entity
		logEntry := &transitionlog.Entry{
			TenantID:  tenantID,
			RequestID: entity.ID(),
			ToStatus:  request.StatusNew,
			ActorID:   dto.RequesterID,
			ActorType: request.ActorUser,
			Remark:    "submitted",
		}
		if autoApproved {
			toCreate = entity.WithStatus(request.StatusApproved).MarkAutoApproved()
			logEntry = &transitionlog.Entry{
				TenantID:   tenantID,
				RequestID:  entity.ID(),
				FromStatus: request.StatusNew,
				ToStatus:   request.StatusApproved,
				ActorType:  request.ActorSystem,
				Remark:     "auto-approved on submission",
			}
		}

		persisted, err := s.repo.Create(txCtx, toCreate)
		if err != nil {
			return nil, err
		}
		if _, err := s.logs.Append(txCtx, logEntry); err != nil {
			return nil, err
		}
		return persisted, nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(request.NewSubmittedEvent(created))
	if autoApproved {
		s.afterCommit(ctx, request.NewTransitionedEvent(request.StatusNew, request.StatusApproved, request.SystemActor(), created))
	}
	return created, nil
}

// Transition moves a request to the requested status on behalf of an actor.
// The locking read, legality check, status write, linked-request close and
// audit append commit as one unit; dispatching the notification happens
// afterwards and never unwinds the committed change.
func (s *LifecycleService) Transition(
	ctx context.Context,
	id uuid.UUID,
	requested request.Status,
	actor request.Actor,
	remark string,
) (*request.Request, error) {
	type txOutcome struct {
		updated *request.Request
		from    request.Status
	}

	out, err := composables.InTenantTxResult(ctx, func(txCtx context.Context) (*txOutcome, error) {
		current, err := s.repo.GetByIDForUpdate(txCtx, id)
		if err != nil {
			return nil, err
		}
		from := current.Status()
		if !request.CanTransition(from, requested, actor.Type) {
			return nil, &request.InvalidTransitionError{From: from, To: requested, Actor: actor.Type}
		}

		if err := s.repo.UpdateStatus(txCtx, id, from, requested, current.AutoApproved()); err != nil {
			return nil, err
		}
		if _, err := s.logs.Append(txCtx, &transitionlog.Entry{
			TenantID:   current.TenantID(),
			RequestID:  id,
			FromStatus: from,
			ToStatus:   requested,
			ActorID:    actor.ID,
			ActorType:  actor.Type,
			Remark:     remark,
		}); err != nil {
			return nil, err
		}

		if requested == request.StatusApproved && current.Kind() == request.KindMoveOut && current.HasPriorRequest() {
			if err := s.closePriorRequest(txCtx, current); err != nil {
				return nil, err
			}
		}

		return &txOutcome{updated: current.WithStatus(requested), from: from}, nil
	})
	if err != nil {
		return nil, err
	}

	ev := request.NewTransitionedEvent(out.from, requested, actor, out.updated)
	s.publisher.Publish(ev)
	s.afterCommit(ctx, ev)
	return out.updated, nil
}

// AmendDetail replaces the payload while answering a request for
// information. It is only legal as part of the rfi-pending -> rfi-submitted
// move, so both happen in one transaction.
func (s *LifecycleService) AmendDetail(
	ctx context.Context,
	id uuid.UUID,
	detail request.Detail,
	actor request.Actor,
) (*request.Request, error) {
	if detail == nil {
		return nil, request.NewValidationError("detail", "amended payload is required")
	}

	out, err := composables.InTenantTxResult(ctx, func(txCtx context.Context) (*request.Request, error) {
		current, err := s.repo.GetByIDForUpdate(txCtx, id)
		if err != nil {
			return nil, err
		}
		from := current.Status()
		if from != request.StatusRFIPending {
			return nil, &request.InvalidTransitionError{From: from, To: request.StatusRFISubmitted, Actor: actor.Type}
		}
		if detail.Category() != current.Category() {
			return nil, request.NewValidationError("category", "amendment may not change the request category")
		}
		if !request.CanTransition(from, request.StatusRFISubmitted, actor.Type) {
			return nil, &request.InvalidTransitionError{From: from, To: request.StatusRFISubmitted, Actor: actor.Type}
		}
		if err := s.policy.Validate(detail); err != nil {
			return nil, err
		}

		if err := s.repo.UpdateDetail(txCtx, id, detail); err != nil {
			return nil, err
		}
		if err := s.repo.UpdateStatus(txCtx, id, from, request.StatusRFISubmitted, current.AutoApproved()); err != nil {
			return nil, err
		}
		if _, err := s.logs.Append(txCtx, &transitionlog.Entry{
			TenantID:   current.TenantID(),
			RequestID:  id,
			FromStatus: from,
			ToStatus:   request.StatusRFISubmitted,
			ActorID:    actor.ID,
			ActorType:  actor.Type,
			Remark:     "information submitted",
		}); err != nil {
			return nil, err
		}
		return current.WithDetail(detail).WithStatus(request.StatusRFISubmitted), nil
	})
	if err != nil {
		return nil, err
	}

	ev := request.NewTransitionedEvent(request.StatusRFIPending, request.StatusRFISubmitted, actor, out)
	s.publisher.Publish(ev)
	s.afterCommit(ctx, ev)
	return out, nil
}

// closePriorRequest closes the move-in a freshly approved move-out points
// at. A prior request no longer in approved status is left alone.
func (s *LifecycleService) closePriorRequest(ctx context.Context, moveOut *request.Request) error {
	prior, err := s.repo.GetByIDForUpdate(ctx, moveOut.PriorRequestID())
	if err != nil {
		if errors.Is(err, request.ErrNotFound) {
			return nil
		}
		return err
	}
	if prior.Status() != request.StatusApproved {
		return nil
	}
	if err := s.repo.UpdateStatus(ctx, prior.ID(), request.StatusApproved, request.StatusClosed, prior.AutoApproved()); err != nil {
		return err
	}
	_, err = s.logs.Append(ctx, &transitionlog.Entry{
		TenantID:   prior.TenantID(),
		RequestID:  prior.ID(),
		FromStatus: request.StatusApproved,
		ToStatus:   request.StatusClosed,
		ActorType:  request.ActorSystem,
		Remark:     "closed by approved move-out " + moveOut.ID().String(),
	})
	return err
}

// afterCommit queues the notification for a committed transition. Failures
// are logged and dropped: losing an email must never lose a recorded
// decision.
func (s *LifecycleService) afterCommit(ctx context.Context, ev *request.TransitionedEvent) {
	if s.notifier == nil {
		return
	}
	notifyCtx := context.WithoutCancel(ctx)
	result, err := s.notifier.Notify(notifyCtx, ev)
	fields := logrus.Fields{
		"request_id": ev.Result.ID(),
		"from":       ev.From,
		"to":         ev.To,
	}
	switch {
	case err != nil:
		s.log.WithError(err).WithFields(fields).Warn("transition notification failed")
	case result != nil && result.Skipped:
		s.log.WithFields(fields).WithField("reason", result.Reason).Warn("transition notification skipped")
	}
}
