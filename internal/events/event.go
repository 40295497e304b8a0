// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"claim_contact_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Claims Domain Events
// =============================================================================

// ClaimPhoneExtracted is published after an extraction attempt for a stored
// claim has been persisted, whatever its outcome.
type ClaimPhoneExtracted struct {
	BaseEvent
	ClaimID     uuid.UUID `json:"claimId"`
	ClaimNumber string    `json:"claimNumber"`
	Status      string    `json:"status"`
	Label       string    `json:"label,omitempty"`
	Classifier  string    `json:"classifier"`
	Error       string    `json:"error,omitempty"`
}

func (e ClaimPhoneExtracted) EventName() string { return "claims.phone_extracted" }

// ClaimsImported is published when a batch of claims has been stored.
type ClaimsImported struct {
	BaseEvent
	Imported int `json:"imported"`
	Rejected int `json:"rejected"`
}

func (e ClaimsImported) EventName() string { return "claims.imported" }
