package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/domain/aggregates/request"
	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/domain/entities/recipientconfig"
	"github.com/fatimahitawala/Transition-Services-sub002/pkg/composables"
	"github.com/fatimahitawala/Transition-Services-sub002/pkg/outbox"
)

// NotificationOutboxTable is the outbox table notifications are queued into.
var NotificationOutboxTable = pgx.Identifier{"transition_notification_outbox"}

// NotificationTopic labels outbox messages carrying rendered emails.
const NotificationTopic = "transition.email"

// EmailPayload is the outbox message body: the rendered artifact plus its
// addressee sets, everything the dispatcher needs to hand to transport.
type EmailPayload struct {
	RequestID    uuid.UUID                    `json:"request_id"`
	TemplateType recipientconfig.TemplateType `json:"template_type"`
	Subject      string                       `json:"subject"`
	Body         []byte                       `json:"body"`
	ContentType  string                       `json:"content_type"`
	Primary      []string                     `json:"primary"`
	CC           []string                     `json:"cc"`
}

// DispatchResult reports what the notifier did for one transition. Skipped
// results carry the reason so operators can follow up; they are never
// errors.
type DispatchResult struct {
	Skipped      bool
	Reason       string
	TemplateType recipientconfig.TemplateType
	Recipients   *Recipients
}

// Notifier queues the notification for a committed transition. Failures are
// reported, never propagated into the transition's outcome.
type Notifier interface {
	Notify(ctx context.Context, ev *request.TransitionedEvent) (*DispatchResult, error)
}

// NotificationService resolves recipients, renders the artifact and queues
// it on the outbox. Delivery itself happens asynchronously in the relay, so
// a slow or failing transport never blocks a caller.
type NotificationService struct {
	resolver  *RecipientResolver
	renderer  Renderer
	publisher outbox.Publisher
}

func NewNotificationService(
	resolver *RecipientResolver,
	renderer Renderer,
	publisher outbox.Publisher,
) *NotificationService {
	return &NotificationService{
		resolver:  resolver,
		renderer:  renderer,
		publisher: publisher,
	}
}

// Notify queues the email for a committed transition. Missing recipient
// configuration produces a skipped result rather than an error; only
// infrastructure failures (store, renderer) are returned.
func (s *NotificationService) Notify(ctx context.Context, ev *request.TransitionedEvent) (*DispatchResult, error) {
	req := &ev.Result
	templateType := TemplateForTransition(req.Kind(), ev.To)

	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (*DispatchResult, error) {
		recipients, err := s.resolver.Resolve(txCtx, &ResolveQuery{
			Category:       req.Category(),
			Scope:          req.Scope(),
			Kind:           req.Kind(),
			RequesterEmail: req.Detail().Email(),
			UnitID:         req.UnitID(),
		})
		if errors.Is(err, ErrNoRecipientsConfigured) {
			return &DispatchResult{
				Skipped:      true,
				Reason:       "no recipients configured for scope",
				TemplateType: templateType,
			}, nil
		}
		if err != nil {
			return nil, err
		}

		artifact, err := s.renderer.Render(txCtx, templateType, templateData(ev))
		if err != nil {
			return nil, errors.Wrap(err, "failed to render notification")
		}

		payload, err := json.Marshal(EmailPayload{
			RequestID:    req.ID(),
			TemplateType: templateType,
			Subject:      artifact.Subject,
			Body:         artifact.Body,
			ContentType:  artifact.ContentType,
			Primary:      recipients.Primary,
			CC:           recipients.CC,
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal notification payload")
		}

		tx, err := composables.UseTx(txCtx)
		if err != nil {
			return nil, err
		}
		if _, err := s.publisher.Enqueue(txCtx, tx, NotificationOutboxTable, outbox.Message{
			TenantID: req.TenantID(),
			Topic:    NotificationTopic,
			EventID:  notificationEventID(req.ID(), ev.From, ev.To),
			Payload:  payload,
		}); err != nil {
			return nil, errors.Wrap(err, "failed to enqueue notification")
		}

		return &DispatchResult{
			TemplateType: templateType,
			Recipients:   recipients,
		}, nil
	})
}

// TemplateForTransition picks the document template for a transition.
// Approved move-ins get the welcome pack; renewals reuse the move-in
// template since the occupancy continues; move-outs use their own.
func TemplateForTransition(kind request.Kind, to request.Status) recipientconfig.TemplateType {
	switch kind {
	case request.KindMoveOut:
		return recipientconfig.TemplateMoveOut
	case request.KindRenewal:
		return recipientconfig.TemplateMoveIn
	default:
		if to == request.StatusApproved {
			return recipientconfig.TemplateWelcomePack
		}
		return recipientconfig.TemplateMoveIn
	}
}

func templateData(ev *request.TransitionedEvent) map[string]string {
	req := &ev.Result
	data := map[string]string{
		"request_id": req.ID().String(),
		"kind":       string(req.Kind()),
		"category":   string(req.Category()),
		"status":     string(ev.To),
		"unit_id":    req.UnitID().String(),
	}
	for field, value := range req.Detail().Values() {
		data[string(field)] = value
	}
	return data
}

// notificationEventID derives a stable event ID from the transition edge so
// the outbox enqueue stays idempotent for the same committed move.
func notificationEventID(requestID uuid.UUID, from, to request.Status) uuid.UUID {
	name := fmt.Sprintf("%s:%s:%s", requestID, from, to)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name))
}
