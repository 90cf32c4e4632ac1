package persistence

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/domain/aggregates/request"
	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/domain/entities/recipientconfig"
	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/infrastructure/persistence/models"
)

func TestTransitionRequestRowMapping_RoundTrip(t *testing.T) {
	scope := recipientconfig.Scope{
		MasterCommunityID: uuid.New(),
		CommunityID:       uuid.New(),
	}
	entity := request.New(
		uuid.New(),
		request.KindMoveIn,
		uuid.New(),
		uuid.New(),
		scope,
		request.TenantDetail{
			ContactEmail:   "tenant@example.com",
			Phone:          "+971500000002",
			LeaseStart:     time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
			LeaseEnd:       time.Date(2027, 8, 31, 0, 0, 0, 0, time.UTC),
			ContractNumber: "EJARI-193845",
		},
		request.WithPriorRequest(uuid.New()),
	)

	row, err := toDBTransitionRequest(entity)
	require.NoError(t, err)
	assert.True(t, row.CommunityID.Valid)
	assert.False(t, row.TowerID.Valid, "unset tower maps to NULL")
	assert.True(t, row.PriorRequestID.Valid)

	back, err := toDomainTransitionRequest(row)
	require.NoError(t, err)
	assert.Equal(t, entity.ID(), back.ID())
	assert.Equal(t, entity.Status(), back.Status())
	assert.Equal(t, entity.Scope(), back.Scope())
	assert.Equal(t, entity.PriorRequestID(), back.PriorRequestID())
	assert.Equal(t, entity.Detail(), back.Detail())
}

func TestToDomainTransitionRequest_NormalizesLegacyStatuses(t *testing.T) {
	base := request.New(
		uuid.New(),
		request.KindMoveOut,
		uuid.New(),
		uuid.New(),
		recipientconfig.Scope{MasterCommunityID: uuid.New()},
		request.OwnerDetail{ContactEmail: "owner@example.com", Phone: "+971500000001"},
	)
	row, err := toDBTransitionRequest(base)
	require.NoError(t, err)

	cases := map[string]request.Status{
		"open":    request.StatusNew,
		"rfi":     request.StatusRFIPending,
		"approve": request.StatusApproved,
		"cancel":  request.StatusCancelled,
	}
	for stored, want := range cases {
		row.Status = stored
		entity, err := toDomainTransitionRequest(row)
		require.NoError(t, err, "stored status %q", stored)
		assert.Equal(t, want, entity.Status())
	}

	row.Status = "archived"
	_, err = toDomainTransitionRequest(row)
	require.Error(t, err)
}

func TestToDomainTransitionLog(t *testing.T) {
	row := &models.TransitionLog{
		ID:         uuid.New(),
		TenantID:   uuid.New(),
		RequestID:  uuid.New(),
		FromStatus: "rfi",
		ToStatus:   "rfi-submitted",
		ActorID:    uuid.NullUUID{UUID: uuid.New(), Valid: true},
		ActorType:  "user",
		Remark:     "information submitted",
		CreatedAt:  time.Now(),
	}

	entry, err := toDomainTransitionLog(row)
	require.NoError(t, err)
	assert.Equal(t, request.StatusRFIPending, entry.FromStatus)
	assert.Equal(t, request.StatusRFISubmitted, entry.ToStatus)
	assert.Equal(t, request.ActorUser, entry.ActorType)

	t.Run("submission entry has empty from", func(t *testing.T) {
		row.FromStatus = ""
		entry, err := toDomainTransitionLog(row)
		require.NoError(t, err)
		assert.Equal(t, request.Status(""), entry.FromStatus)
	})
}

func TestScopeMapping(t *testing.T) {
	master := uuid.New()
	scope := recipientconfig.Scope{MasterCommunityID: master}

	m, community, tower := toDBScope(scope)
	assert.Equal(t, master, m)
	assert.False(t, community.Valid)
	assert.False(t, tower.Valid)

	back := toDomainScope(m, community, tower)
	assert.Equal(t, scope, back)
}
