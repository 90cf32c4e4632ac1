package request

import "github.com/google/uuid"

// Actor identifies who triggers a transition. System-driven moves use
// SystemActor so the audit trail never carries an empty actor.
type Actor struct {
	ID    uuid.UUID
	Type  ActorType
	Email string
}

// SystemActor is the synthetic actor recorded for automated transitions
// such as auto-approval.
func SystemActor() Actor {
	return Actor{ID: uuid.Nil, Type: ActorSystem}
}
