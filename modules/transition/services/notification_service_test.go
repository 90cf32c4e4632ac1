package services_test

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/domain/aggregates/request"
	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/domain/entities/recipientconfig"
	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/services"
)

func approvedMoveIn(t *testing.T, unitID uuid.UUID) *request.TransitionedEvent {
	t.Helper()
	req := request.New(
		testTenantID,
		request.KindMoveIn,
		unitID,
		uuid.New(),
		testScope(),
		request.TenantDetail{
			ContactEmail:   "tenant@example.com",
			Phone:          "+971500000002",
			ContractNumber: "EJARI-193845",
		},
	).WithStatus(request.StatusApproved)
	return request.NewTransitionedEvent(request.StatusNew, request.StatusApproved, request.SystemActor(), req)
}

func TestNotificationService_QueuesWelcomePackForApprovedMoveIn(t *testing.T) {
	configs := newMockConfigRepo()
	seedConfig(configs, testScope(), []string{"security@tower.example.com"}, nil)

	unitID := uuid.New()
	ownership := &mockOwnership{emails: map[uuid.UUID]string{unitID: "landlord@example.com"}}
	renderer := &mockRenderer{}
	publisher := &mockOutboxPublisher{}

	svc := services.NewNotificationService(
		services.NewRecipientResolver(configs, ownership),
		renderer,
		publisher,
	)

	result, err := svc.Notify(testContext(), approvedMoveIn(t, unitID))
	require.NoError(t, err)
	assert.False(t, result.Skipped)
	assert.Equal(t, recipientconfig.TemplateWelcomePack, result.TemplateType)
	require.Equal(t, []recipientconfig.TemplateType{recipientconfig.TemplateWelcomePack}, renderer.rendered)

	require.Len(t, publisher.messages, 1)
	msg := publisher.messages[0]
	assert.Equal(t, testTenantID, msg.TenantID)
	assert.Equal(t, services.NotificationTopic, msg.Topic)
	assert.NotEqual(t, uuid.Nil, msg.EventID)

	var payload services.EmailPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Equal(t, []string{"tenant@example.com"}, payload.Primary)
	assert.ElementsMatch(t, []string{"security@tower.example.com", "landlord@example.com"}, payload.CC)
	assert.Equal(t, "text/html", payload.ContentType)
}

func TestNotificationService_MissingConfigIsSkippedNotFailed(t *testing.T) {
	svc := services.NewNotificationService(
		services.NewRecipientResolver(newMockConfigRepo(), &mockOwnership{}),
		&mockRenderer{},
		&mockOutboxPublisher{},
	)

	result, err := svc.Notify(testContext(), approvedMoveIn(t, uuid.New()))
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.NotEmpty(t, result.Reason)
}

func TestNotificationService_RendererFailurePropagates(t *testing.T) {
	configs := newMockConfigRepo()
	seedConfig(configs, testScope(), []string{"security@tower.example.com"}, nil)

	publisher := &mockOutboxPublisher{}
	svc := services.NewNotificationService(
		services.NewRecipientResolver(configs, &mockOwnership{}),
		&mockRenderer{err: assert.AnError},
		publisher,
	)

	_, err := svc.Notify(testContext(), approvedMoveIn(t, uuid.New()))
	require.Error(t, err)
	assert.Empty(t, publisher.messages)
}

func TestNotificationService_StableEventIDPerEdge(t *testing.T) {
	configs := newMockConfigRepo()
	seedConfig(configs, testScope(), []string{"security@tower.example.com"}, nil)

	publisher := &mockOutboxPublisher{}
	svc := services.NewNotificationService(
		services.NewRecipientResolver(configs, &mockOwnership{}),
		&mockRenderer{},
		publisher,
	)

	ev := approvedMoveIn(t, uuid.New())
	_, err := svc.Notify(testContext(), ev)
	require.NoError(t, err)
	_, err = svc.Notify(testContext(), ev)
	require.NoError(t, err)

	require.Len(t, publisher.messages, 2)
	assert.Equal(t, publisher.messages[0].EventID, publisher.messages[1].EventID)
}

func TestTemplateForTransition(t *testing.T) {
	assert.Equal(t, recipientconfig.TemplateWelcomePack,
		services.TemplateForTransition(request.KindMoveIn, request.StatusApproved))
	assert.Equal(t, recipientconfig.TemplateMoveIn,
		services.TemplateForTransition(request.KindMoveIn, request.StatusRFIPending))
	assert.Equal(t, recipientconfig.TemplateMoveOut,
		services.TemplateForTransition(request.KindMoveOut, request.StatusApproved))
	assert.Equal(t, recipientconfig.TemplateMoveOut,
		services.TemplateForTransition(request.KindMoveOut, request.StatusClosed))
	// Renewals never re-send the welcome pack; the move-in template
	// covers every renewal transition.
	assert.Equal(t, recipientconfig.TemplateMoveIn,
		services.TemplateForTransition(request.KindRenewal, request.StatusApproved))
	assert.Equal(t, recipientconfig.TemplateMoveIn,
		services.TemplateForTransition(request.KindRenewal, request.StatusRFIPending))
}
