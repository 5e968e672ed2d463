package domain

import "time"

// ConversationState is the per-session progress of information gathering
type ConversationState string

const (
	// StateNeedAppliance - Initial state, no appliance selected
	StateNeedAppliance ConversationState = "need_appliance"
	// StateNeedModel - Appliance selected, waiting for a model number
	StateNeedModel ConversationState = "need_model"
	// StateReady - Appliance and model known, lookups may execute
	StateReady ConversationState = "ready"
)

// ConversationSession accumulates what the assistant knows about one
// conversation: the selected appliance, the model number, the active
// service, and the turn history. Appliance must be set before a model
// number is accepted; the model must be set before a service lookup runs.
type ConversationSession struct {
	ID             string
	Appliance      Appliance
	ModelNumber    string
	Service        ServiceType
	Messages       []ChatMessage
	LastAccessTime time.Time     // For session expiration checking
	timeout        time.Duration // Configurable session timeout
	maxTurns       int           // Configurable maximum conversation turns
}

// NewConversationSession creates an empty session for the given id
// with configurable timeout and maxTurns parameters
func NewConversationSession(id string, timeout time.Duration, maxTurns int) *ConversationSession {
	return &ConversationSession{
		ID:             id,
		Messages:       make([]ChatMessage, 0),
		LastAccessTime: time.Now(),
		timeout:        timeout,
		maxTurns:       maxTurns,
	}
}

// State derives the gathering state from the appliance and model fields.
func (s *ConversationSession) State() ConversationState {
	switch {
	case s.Appliance == ApplianceUnset:
		return StateNeedAppliance
	case s.ModelNumber == "":
		return StateNeedModel
	default:
		return StateReady
	}
}

// Reset clears appliance, model number and active service. The turn
// history survives so the fallback prompt keeps its context. This is the
// only transition that ever clears a previously set field.
func (s *ConversationSession) Reset() {
	s.Appliance = ApplianceUnset
	s.ModelNumber = ""
	s.Service = ServiceUnset
}

// IsExpired checks if the session has exceeded the configured timeout
func (s *ConversationSession) IsExpired() bool {
	return time.Since(s.LastAccessTime) > s.timeout
}

// AddTurn adds a user message and assistant response to the conversation.
// If the history limit is reached, the oldest turn (2 messages) is removed.
func (s *ConversationSession) AddTurn(userMsg, assistantMsg ChatMessage) {
	if len(s.Messages) >= s.maxTurns*2 {
		s.Messages = s.Messages[2:]
	}
	s.Messages = append(s.Messages, userMsg, assistantMsg)
}

// GetHistory returns a copy of the conversation history
func (s *ConversationSession) GetHistory() []ChatMessage {
	if len(s.Messages) == 0 {
		return []ChatMessage{}
	}
	history := make([]ChatMessage, len(s.Messages))
	copy(history, s.Messages)
	return history
}
