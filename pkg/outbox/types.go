package outbox

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Message is the unit stored in a notification outbox table. It is written
// in the same transaction as the state change that caused it, so a committed
// transition always has its notification queued and an aborted one never
// does.
type Message struct {
	TenantID uuid.UUID
	Topic    string
	EventID  uuid.UUID
	Payload  json.RawMessage
}

// Meta is the stable dispatch metadata (idempotency + ops).
type Meta struct {
	Table    pgx.Identifier
	TenantID uuid.UUID
	Topic    string
	EventID  uuid.UUID
	Sequence int64
	Attempts int
}

// DispatchedMessage is the unit delivered by Relay to a Dispatcher.
type DispatchedMessage struct {
	Meta    Meta
	Payload json.RawMessage
}

// Dispatcher hands a claimed message to its delivery channel. A returned
// error causes the relay to retry with backoff until MaxAttempts.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg DispatchedMessage) error
}
