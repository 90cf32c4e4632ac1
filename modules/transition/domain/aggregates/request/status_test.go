package request_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition/domain/aggregates/request"
)

func TestCanTransition_AllowedEdges(t *testing.T) {
	cases := []struct {
		name  string
		from  request.Status
		to    request.Status
		actor request.ActorType
	}{
		{"admin requests info", request.StatusNew, request.StatusRFIPending, request.ActorCommunityAdmin},
		{"super admin requests info", request.StatusNew, request.StatusRFIPending, request.ActorSuperAdmin},
		{"admin approves", request.StatusNew, request.StatusApproved, request.ActorCommunityAdmin},
		{"system auto-approves", request.StatusNew, request.StatusApproved, request.ActorSystem},
		{"admin cancels", request.StatusNew, request.StatusCancelled, request.ActorCommunityAdmin},
		{"user withdraws new request", request.StatusNew, request.StatusUserCancelled, request.ActorUser},
		{"user answers info request", request.StatusRFIPending, request.StatusRFISubmitted, request.ActorUser},
		{"user withdraws during rfi", request.StatusRFIPending, request.StatusUserCancelled, request.ActorUser},
		{"admin approves after rfi", request.StatusRFISubmitted, request.StatusApproved, request.ActorSuperAdmin},
		{"admin asks again", request.StatusRFISubmitted, request.StatusRFIPending, request.ActorCommunityAdmin},
		{"admin cancels after rfi", request.StatusRFISubmitted, request.StatusCancelled, request.ActorCommunityAdmin},
		{"admin closes", request.StatusApproved, request.StatusClosed, request.ActorCommunityAdmin},
		{"system closes", request.StatusApproved, request.StatusClosed, request.ActorSystem},
		{"security closes", request.StatusApproved, request.StatusClosed, request.ActorSecurity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, request.CanTransition(tc.from, tc.to, tc.actor))
		})
	}
}

func TestCanTransition_RejectedEdges(t *testing.T) {
	cases := []struct {
		name  string
		from  request.Status
		to    request.Status
		actor request.ActorType
	}{
		{"user cannot approve", request.StatusNew, request.StatusApproved, request.ActorUser},
		{"user cannot cancel administratively", request.StatusNew, request.StatusCancelled, request.ActorUser},
		{"admin cannot answer rfi", request.StatusRFIPending, request.StatusRFISubmitted, request.ActorCommunityAdmin},
		{"system cannot approve rfi answer", request.StatusRFISubmitted, request.StatusApproved, request.ActorSystem},
		{"security cannot approve", request.StatusNew, request.StatusApproved, request.ActorSecurity},
		{"user cannot close", request.StatusApproved, request.StatusClosed, request.ActorUser},
		{"no skip from new to closed", request.StatusNew, request.StatusClosed, request.ActorSuperAdmin},
		{"no revival from cancelled", request.StatusCancelled, request.StatusNew, request.ActorSuperAdmin},
		{"no revival from user-cancelled", request.StatusUserCancelled, request.StatusApproved, request.ActorSuperAdmin},
		{"no reopening closed", request.StatusClosed, request.StatusApproved, request.ActorSuperAdmin},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.False(t, request.CanTransition(tc.from, tc.to, tc.actor))
		})
	}
}

func TestCanTransition_SelfTransitionRejected(t *testing.T) {
	for _, s := range []request.Status{
		request.StatusNew,
		request.StatusRFIPending,
		request.StatusRFISubmitted,
		request.StatusApproved,
	} {
		for _, a := range []request.ActorType{
			request.ActorCommunityAdmin,
			request.ActorSuperAdmin,
			request.ActorSystem,
			request.ActorUser,
			request.ActorSecurity,
		} {
			assert.False(t, request.CanTransition(s, s, a), "self transition on %s by %s", s, a)
		}
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.True(t, request.StatusUserCancelled.IsTerminal())
	assert.True(t, request.StatusCancelled.IsTerminal())
	assert.True(t, request.StatusClosed.IsTerminal())
	assert.False(t, request.StatusNew.IsTerminal())
	assert.False(t, request.StatusRFIPending.IsTerminal())
	assert.False(t, request.StatusRFISubmitted.IsTerminal())
	assert.False(t, request.StatusApproved.IsTerminal())
}

func TestNormalizeStatus(t *testing.T) {
	cases := map[string]request.Status{
		"open":          request.StatusNew,
		"rfi":           request.StatusRFIPending,
		"approve":       request.StatusApproved,
		"cancel":        request.StatusCancelled,
		"new":           request.StatusNew,
		"rfi-submitted": request.StatusRFISubmitted,
		"closed":        request.StatusClosed,
	}
	for raw, want := range cases {
		got, ok := request.NormalizeStatus(raw)
		require.True(t, ok, "value %q", raw)
		assert.Equal(t, want, got)
	}

	_, ok := request.NormalizeStatus("pending")
	assert.False(t, ok)
	_, ok = request.NormalizeStatus("")
	assert.False(t, ok)
}
