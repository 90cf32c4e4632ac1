package services_test

import (
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/domain/aggregates/request"
	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/services"
	"github.com/fatimahitawala/Transition-Services-sub002/pkg/eventbus"
)

type lifecycleFixture struct {
	svc      *services.LifecycleService
	repo     *mockRequestRepo
	logs     *mockLogRepo
	notifier *mockNotifier
}

func newLifecycleFixture(t *testing.T) *lifecycleFixture {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	repo := newMockRequestRepo()
	logs := &mockLogRepo{}
	notifier := &mockNotifier{}
	svc := services.NewLifecycleService(
		repo,
		logs,
		request.DefaultPolicy(),
		notifier,
		eventbus.NewEventPublisher(log),
		log,
	)
	return &lifecycleFixture{svc: svc, repo: repo, logs: logs, notifier: notifier}
}

func ownerSubmission(moveDate time.Time) *services.SubmitDTO {
	return &services.SubmitDTO{
		Kind:        request.KindMoveIn,
		UnitID:      uuid.New(),
		RequesterID: uuid.New(),
		Scope:       testScope(),
		Detail: request.OwnerDetail{
			ContactEmail: "owner@example.com",
			Phone:        "+971500000001",
			MoveDate:     moveDate,
		},
	}
}

func TestLifecycleService_Submit_AutoApproval(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := testContext()

	created, err := f.svc.Submit(ctx, ownerSubmission(time.Now().AddDate(0, 1, 0)))
	require.NoError(t, err)

	assert.Equal(t, request.StatusApproved, created.Status())
	assert.True(t, created.AutoApproved())

	entries := f.logs.forRequest(created.ID())
	require.Len(t, entries, 1)
	assert.Equal(t, request.StatusNew, entries[0].FromStatus)
	assert.Equal(t, request.StatusApproved, entries[0].ToStatus)
	assert.Equal(t, request.ActorSystem, entries[0].ActorType)

	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, request.StatusApproved, f.notifier.events[0].To)
}

func TestLifecycleService_Submit_ManualReviewPath(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := testContext()

	created, err := f.svc.Submit(ctx, ownerSubmission(time.Time{}))
	require.NoError(t, err)

	assert.Equal(t, request.StatusNew, created.Status())
	assert.False(t, created.AutoApproved())

	entries := f.logs.forRequest(created.ID())
	require.Len(t, entries, 1)
	assert.Equal(t, request.StatusNew, entries[0].ToStatus)
	assert.Equal(t, request.ActorUser, entries[0].ActorType)
	assert.Empty(t, f.notifier.events)
}

func TestLifecycleService_Submit_ValidationFailurePersistsNothing(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := testContext()

	_, err := f.svc.Submit(ctx, &services.SubmitDTO{
		Kind:        request.KindMoveIn,
		UnitID:      uuid.New(),
		RequesterID: uuid.New(),
		Scope:       testScope(),
		Detail: request.HHOCompanyDetail{
			ContactEmail:       "ops@stays.example.com",
			CompanyName:        "Coastal Stays LLC",
			TradeLicenseExpiry: time.Now().AddDate(1, 0, 0),
		},
	})
	var vErr *request.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, string(request.FieldTradeLicenseNumber), vErr.Field)

	count, err := f.repo.Count(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, f.logs.entries)
}

func TestLifecycleService_Transition_HappyPath(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := testContext()

	created, err := f.svc.Submit(ctx, ownerSubmission(time.Time{}))
	require.NoError(t, err)

	admin := request.Actor{ID: uuid.New(), Type: request.ActorCommunityAdmin, Email: "admin@example.com"}
	updated, err := f.svc.Transition(ctx, created.ID(), request.StatusApproved, admin, "documents verified")
	require.NoError(t, err)
	assert.Equal(t, request.StatusApproved, updated.Status())

	entries := f.logs.forRequest(created.ID())
	require.Len(t, entries, 2)
	assert.Equal(t, request.StatusApproved, entries[1].ToStatus)
	assert.Equal(t, request.ActorCommunityAdmin, entries[1].ActorType)
	assert.Equal(t, "documents verified", entries[1].Remark)

	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, request.StatusNew, f.notifier.events[0].From)
	assert.Equal(t, request.StatusApproved, f.notifier.events[0].To)
}

func TestLifecycleService_Transition_IllegalMoveMakesNoChange(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := testContext()

	created, err := f.svc.Submit(ctx, ownerSubmission(time.Time{}))
	require.NoError(t, err)

	user := request.Actor{ID: created.RequesterID(), Type: request.ActorUser}
	_, err = f.svc.Transition(ctx, created.ID(), request.StatusApproved, user, "")
	var itErr *request.InvalidTransitionError
	require.ErrorAs(t, err, &itErr)
	assert.Equal(t, request.StatusNew, itErr.From)

	stored, err := f.repo.GetByID(ctx, created.ID())
	require.NoError(t, err)
	assert.Equal(t, request.StatusNew, stored.Status())
	assert.Len(t, f.logs.forRequest(created.ID()), 1)
	assert.Empty(t, f.notifier.events)
}

func TestLifecycleService_Transition_SelfTransitionRejected(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := testContext()

	created, err := f.svc.Submit(ctx, ownerSubmission(time.Time{}))
	require.NoError(t, err)

	admin := request.Actor{ID: uuid.New(), Type: request.ActorSuperAdmin}
	_, err = f.svc.Transition(ctx, created.ID(), request.StatusNew, admin, "")
	var itErr *request.InvalidTransitionError
	require.ErrorAs(t, err, &itErr)
	assert.Len(t, f.logs.forRequest(created.ID()), 1)
}

func TestLifecycleService_Transition_TerminalStatesRejectEverything(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := testContext()

	created, err := f.svc.Submit(ctx, ownerSubmission(time.Time{}))
	require.NoError(t, err)

	admin := request.Actor{ID: uuid.New(), Type: request.ActorSuperAdmin}
	_, err = f.svc.Transition(ctx, created.ID(), request.StatusCancelled, admin, "duplicate")
	require.NoError(t, err)

	for _, target := range []request.Status{
		request.StatusNew,
		request.StatusRFIPending,
		request.StatusApproved,
		request.StatusClosed,
	} {
		_, err := f.svc.Transition(ctx, created.ID(), target, admin, "")
		var itErr *request.InvalidTransitionError
		require.ErrorAs(t, err, &itErr, "target %s", target)
	}
}

func TestLifecycleService_Transition_ConcurrentModification(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := testContext()

	created, err := f.svc.Submit(ctx, ownerSubmission(time.Time{}))
	require.NoError(t, err)

	// Another writer moved the row between our read and our write.
	f.repo.updateErr = request.ErrConcurrentModification

	admin := request.Actor{ID: uuid.New(), Type: request.ActorCommunityAdmin}
	_, err = f.svc.Transition(ctx, created.ID(), request.StatusApproved, admin, "")
	require.ErrorIs(t, err, request.ErrConcurrentModification)
	assert.Len(t, f.logs.forRequest(created.ID()), 1)
	assert.Empty(t, f.notifier.events)
}

func TestLifecycleService_Transition_NotFound(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := testContext()

	admin := request.Actor{ID: uuid.New(), Type: request.ActorCommunityAdmin}
	_, err := f.svc.Transition(ctx, uuid.New(), request.StatusApproved, admin, "")
	require.ErrorIs(t, err, request.ErrNotFound)
}

func TestLifecycleService_Transition_NotifierFailureDoesNotUnwind(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := testContext()

	created, err := f.svc.Submit(ctx, ownerSubmission(time.Time{}))
	require.NoError(t, err)

	f.notifier.err = assert.AnError

	admin := request.Actor{ID: uuid.New(), Type: request.ActorCommunityAdmin}
	updated, err := f.svc.Transition(ctx, created.ID(), request.StatusApproved, admin, "")
	require.NoError(t, err)
	assert.Equal(t, request.StatusApproved, updated.Status())

	stored, err := f.repo.GetByID(ctx, created.ID())
	require.NoError(t, err)
	assert.Equal(t, request.StatusApproved, stored.Status())
}

func TestLifecycleService_Transition_MoveOutApprovalClosesLinkedMoveIn(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := testContext()

	moveIn, err := f.svc.Submit(ctx, ownerSubmission(time.Now().AddDate(0, 1, 0)))
	require.NoError(t, err)
	require.Equal(t, request.StatusApproved, moveIn.Status())

	moveOut, err := f.svc.Submit(ctx, &services.SubmitDTO{
		Kind:        request.KindMoveOut,
		UnitID:      moveIn.UnitID(),
		RequesterID: moveIn.RequesterID(),
		Scope:       testScope(),
		Detail: request.OwnerDetail{
			ContactEmail: "owner@example.com",
			Phone:        "+971500000001",
		},
		PriorRequestID: moveIn.ID(),
	})
	require.NoError(t, err)
	require.Equal(t, request.StatusNew, moveOut.Status())

	admin := request.Actor{ID: uuid.New(), Type: request.ActorCommunityAdmin}
	updated, err := f.svc.Transition(ctx, moveOut.ID(), request.StatusApproved, admin, "")
	require.NoError(t, err)
	assert.Equal(t, request.StatusApproved, updated.Status())

	closedMoveIn, err := f.repo.GetByID(ctx, moveIn.ID())
	require.NoError(t, err)
	assert.Equal(t, request.StatusClosed, closedMoveIn.Status())

	moveInTrail := f.logs.forRequest(moveIn.ID())
	require.Len(t, moveInTrail, 2)
	assert.Equal(t, request.StatusClosed, moveInTrail[1].ToStatus)
	assert.Equal(t, request.ActorSystem, moveInTrail[1].ActorType)
}

func TestLifecycleService_RenewalApprovalKeepsPriorMoveInOpen(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := testContext()

	moveIn, err := f.svc.Submit(ctx, ownerSubmission(time.Now().AddDate(0, 1, 0)))
	require.NoError(t, err)
	require.Equal(t, request.StatusApproved, moveIn.Status())

	renewal, err := f.svc.Submit(ctx, &services.SubmitDTO{
		Kind:        request.KindRenewal,
		UnitID:      moveIn.UnitID(),
		RequesterID: moveIn.RequesterID(),
		Scope:       testScope(),
		Detail: request.OwnerDetail{
			ContactEmail: "owner@example.com",
			Phone:        "+971500000001",
		},
		PriorRequestID: moveIn.ID(),
	})
	require.NoError(t, err)
	assert.Equal(t, moveIn.ID(), renewal.PriorRequestID())

	admin := request.Actor{ID: uuid.New(), Type: request.ActorCommunityAdmin}
	updated, err := f.svc.Transition(ctx, renewal.ID(), request.StatusApproved, admin, "")
	require.NoError(t, err)
	assert.Equal(t, request.StatusApproved, updated.Status())

	// The occupancy continues: only move-out approval closes the
	// originating move-in.
	prior, err := f.repo.GetByID(ctx, moveIn.ID())
	require.NoError(t, err)
	assert.Equal(t, request.StatusApproved, prior.Status())
	assert.Len(t, f.logs.forRequest(moveIn.ID()), 1)
}

func TestLifecycleService_AmendDetail(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := testContext()

	created, err := f.svc.Submit(ctx, ownerSubmission(time.Time{}))
	require.NoError(t, err)

	admin := request.Actor{ID: uuid.New(), Type: request.ActorCommunityAdmin}
	_, err = f.svc.Transition(ctx, created.ID(), request.StatusRFIPending, admin, "need move date")
	require.NoError(t, err)

	user := request.Actor{ID: created.RequesterID(), Type: request.ActorUser}
	amended := request.OwnerDetail{
		ContactEmail: "owner@example.com",
		Phone:        "+971500000001",
		MoveDate:     time.Now().AddDate(0, 2, 0),
	}
	updated, err := f.svc.AmendDetail(ctx, created.ID(), amended, user)
	require.NoError(t, err)
	assert.Equal(t, request.StatusRFISubmitted, updated.Status())
	assert.Equal(t, amended, updated.Detail())

	entries := f.logs.forRequest(created.ID())
	require.Len(t, entries, 3)
	assert.Equal(t, request.StatusRFISubmitted, entries[2].ToStatus)
}

func TestLifecycleService_AmendDetail_OnlyWhileRFIPending(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := testContext()

	created, err := f.svc.Submit(ctx, ownerSubmission(time.Time{}))
	require.NoError(t, err)

	user := request.Actor{ID: created.RequesterID(), Type: request.ActorUser}
	_, err = f.svc.AmendDetail(ctx, created.ID(), request.OwnerDetail{
		ContactEmail: "owner@example.com",
		Phone:        "+971500000001",
	}, user)
	var itErr *request.InvalidTransitionError
	require.ErrorAs(t, err, &itErr)
}

func TestLifecycleService_History(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := testContext()

	created, err := f.svc.Submit(ctx, ownerSubmission(time.Time{}))
	require.NoError(t, err)

	admin := request.Actor{ID: uuid.New(), Type: request.ActorCommunityAdmin}
	_, err = f.svc.Transition(ctx, created.ID(), request.StatusApproved, admin, "")
	require.NoError(t, err)
	_, err = f.svc.Transition(ctx, created.ID(), request.StatusClosed, admin, "")
	require.NoError(t, err)

	trail, err := f.svc.History(ctx, created.ID())
	require.NoError(t, err)
	require.Len(t, trail, 3)
	for i := 1; i < len(trail); i++ {
		assert.False(t, trail[i].CreatedAt.Before(trail[i-1].CreatedAt))
	}
	stored, err := f.repo.GetByID(ctx, created.ID())
	require.NoError(t, err)
	assert.Equal(t, stored.Status(), trail[len(trail)-1].ToStatus)

	_, err = f.svc.History(ctx, uuid.New())
	require.ErrorIs(t, err, request.ErrNotFound)
}

func TestLifecycleService_History_InsertionOrderUnderEqualTimestamps(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := testContext()

	// Freeze the clock so every audit entry lands on the same
	// created-at and only the storage sequence can order them.
	frozen := time.Now().UTC()
	f.logs.now = func() time.Time { return frozen }

	created, err := f.svc.Submit(ctx, ownerSubmission(time.Time{}))
	require.NoError(t, err)

	admin := request.Actor{ID: uuid.New(), Type: request.ActorCommunityAdmin}
	_, err = f.svc.Transition(ctx, created.ID(), request.StatusApproved, admin, "")
	require.NoError(t, err)
	_, err = f.svc.Transition(ctx, created.ID(), request.StatusClosed, admin, "")
	require.NoError(t, err)

	trail, err := f.svc.History(ctx, created.ID())
	require.NoError(t, err)
	require.Len(t, trail, 3)

	assert.Equal(t, request.StatusNew, trail[0].ToStatus)
	assert.Equal(t, request.StatusApproved, trail[1].ToStatus)
	assert.Equal(t, request.StatusClosed, trail[2].ToStatus)
	for i := 1; i < len(trail); i++ {
		assert.True(t, trail[i].CreatedAt.Equal(trail[i-1].CreatedAt))
		assert.Greater(t, trail[i].Sequence, trail[i-1].Sequence)
	}
}
