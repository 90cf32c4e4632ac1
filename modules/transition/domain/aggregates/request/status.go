package request

// Status is the closed lifecycle state set for a transition request.
type Status string

const (
	StatusNew           Status = "new"
	StatusRFIPending    Status = "rfi-pending"
	StatusRFISubmitted  Status = "rfi-submitted"
	StatusApproved      Status = "approved"
	StatusUserCancelled Status = "user-cancelled"
	StatusCancelled     Status = "cancelled"
	StatusClosed        Status = "closed"
)

// ActorType identifies who performed a transition, as recorded in the audit
// trail.
type ActorType string

const (
	ActorCommunityAdmin ActorType = "community-admin"
	ActorSuperAdmin     ActorType = "super-admin"
	ActorSystem         ActorType = "system"
	ActorUser           ActorType = "user"
	ActorSecurity       ActorType = "security"
)

// transitions is the actor-gated digraph of legal status moves. A missing
// edge means the move is illegal for everyone.
var transitions = map[Status]map[Status][]ActorType{
	StatusNew: {
		StatusRFIPending:    {ActorCommunityAdmin, ActorSuperAdmin},
		StatusApproved:      {ActorCommunityAdmin, ActorSuperAdmin, ActorSystem},
		StatusCancelled:     {ActorCommunityAdmin, ActorSuperAdmin},
		StatusUserCancelled: {ActorUser},
	},
	StatusRFIPending: {
		StatusRFISubmitted:  {ActorUser},
		StatusUserCancelled: {ActorUser},
	},
	StatusRFISubmitted: {
		StatusApproved:   {ActorCommunityAdmin, ActorSuperAdmin},
		StatusRFIPending: {ActorCommunityAdmin, ActorSuperAdmin},
		StatusCancelled:  {ActorCommunityAdmin, ActorSuperAdmin},
	},
	StatusApproved: {
		StatusClosed: {ActorCommunityAdmin, ActorSuperAdmin, ActorSystem, ActorSecurity},
	},
}

// IsValid reports whether s belongs to the closed status set.
func (s Status) IsValid() bool {
	switch s {
	case StatusNew, StatusRFIPending, StatusRFISubmitted, StatusApproved,
		StatusUserCancelled, StatusCancelled, StatusClosed:
		return true
	}
	return false
}

// IsTerminal reports whether s accepts no further transitions.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusUserCancelled, StatusCancelled, StatusClosed:
		return true
	}
	return false
}

// CanTransition reports whether the actor type may move a request from
// current to requested. Self-transitions are always rejected so a repeated
// call cannot double up audit entries or notifications.
func CanTransition(current, requested Status, actor ActorType) bool {
	if current == requested {
		return false
	}
	allowed, ok := transitions[current][requested]
	if !ok {
		return false
	}
	for _, a := range allowed {
		if a == actor {
			return true
		}
	}
	return false
}

// legacyStatuses maps values written by earlier releases to the current
// status set. Stored rows are normalized on read until the backfill
// migration has run everywhere.
var legacyStatuses = map[string]Status{
	"open":    StatusNew,
	"rfi":     StatusRFIPending,
	"approve": StatusApproved,
	"cancel":  StatusCancelled,
}

// NormalizeStatus maps a stored status value onto the current closed set.
// The second return value is false for values that are neither current nor
// legacy.
func NormalizeStatus(raw string) (Status, bool) {
	if s := Status(raw); s.IsValid() {
		return s, true
	}
	if s, ok := legacyStatuses[raw]; ok {
		return s, true
	}
	return "", false
}
