package outbox

import "time"

// Status tracks an outbox row through the relay: pending -> in_progress ->
// sent, or back to pending on a failed dispatch until it is parked as failed.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusSent       Status = "sent"
	StatusFailed     Status = "failed"
)

// Message headers set on every dispatched event.
const (
	HeaderEventType     = "event_type"
	HeaderAggregateType = "aggregate_type"
)

// Event is one state change recorded in the same transaction as the change
// itself. AggregateID is the partition key, so events of one order stay in
// order on the topic.
type Event struct {
	ID            int64
	AggregateType string
	AggregateID   string
	Type          string
	Payload       []byte
	Headers       map[string]string
	Traceparent   string
	CreatedAt     time.Time
	Status        Status
	RelayID       string
	RetryCount    int
}
