// internal/events/types.go
package events

import (
	"time"
)

// EventType represents the type of event.
type EventType string

const (
	// Transaction lifecycle events
	TxSubmitted EventType = "tx.submitted"
	TxConfirmed EventType = "tx.confirmed"
	TxExpired   EventType = "tx.expired"
	TxFailed    EventType = "tx.failed"
)

// AllTxEvents lists every transaction lifecycle event type.
var AllTxEvents = []EventType{TxSubmitted, TxConfirmed, TxExpired, TxFailed}

// Event is the base interface for all events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	EventType EventType `json:"type"`
	EventTime time.Time `json:"time"`
}

// NewBase returns a BaseEvent stamped with the current UTC time.
func NewBase(t EventType) BaseEvent {
	return BaseEvent{EventType: t, EventTime: time.Now().UTC()}
}

// Type returns the event type.
func (e BaseEvent) Type() EventType {
	return e.EventType
}

// Timestamp returns when the event occurred.
func (e BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

// TxSubmittedEvent is emitted after a signed transaction is accepted by the RPC node.
type TxSubmittedEvent struct {
	BaseEvent
	CorrelationID string `json:"correlation_id"`
	Label         string `json:"label"`
	FeePayer      string `json:"fee_payer"`
	Signature     string `json:"signature"`
	Attempt       int    `json:"attempt"`
}

// TxConfirmedEvent is emitted when a transaction reaches confirmed or finalized.
type TxConfirmedEvent struct {
	BaseEvent
	CorrelationID string        `json:"correlation_id"`
	Label         string        `json:"label"`
	FeePayer      string        `json:"fee_payer"`
	Signature     string        `json:"signature"`
	Status        string        `json:"status"`
	Attempts      int           `json:"attempts"`
	Duration      time.Duration `json:"duration"`
}

// TxExpiredEvent is emitted when an attempt's blockhash expires before confirmation.
type TxExpiredEvent struct {
	BaseEvent
	CorrelationID string `json:"correlation_id"`
	Signature     string `json:"signature"`
	Attempt       int    `json:"attempt"`
}

// TxFailedEvent is emitted when the whole submission fails.
type TxFailedEvent struct {
	BaseEvent
	CorrelationID string `json:"correlation_id"`
	Label         string `json:"label"`
	FeePayer      string `json:"fee_payer"`
	Attempts      int    `json:"attempts"`
	Error         string `json:"error"`
}
