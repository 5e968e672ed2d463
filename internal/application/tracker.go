package application

import (
	"strings"

	"appliancebot/internal/domain"
)

// StateTracker owns the conversation transition rules. It advances a
// session using the signals the classifier extracted; it does no extraction
// of its own and touches nothing beyond the three tracked fields.
type StateTracker struct{}

// NewStateTracker func - Creates a new state tracker
func NewStateTracker() *StateTracker {
	return &StateTracker{}
}

// Advance applies one turn's intent to the session and returns the
// resulting state.
//
// Rules:
//   - an explicit reset clears appliance, model and service; nothing else
//     ever clears a set field;
//   - the appliance is accepted only while unset;
//   - a model number is accepted only after the appliance is set and only
//     while unset;
//   - a service keyword sets or overrides the active service any time after
//     the appliance is set, even before a model number arrives.
func (t *StateTracker) Advance(session *domain.ConversationSession, intent domain.Intent) domain.ConversationState {
	if intent.Reset {
		session.Reset()
		return session.State()
	}

	if session.Appliance == domain.ApplianceUnset && intent.Appliance != domain.ApplianceUnset {
		session.Appliance = intent.Appliance
	}

	if session.Appliance != domain.ApplianceUnset {
		if session.ModelNumber == "" && intent.ModelNumber != "" {
			session.ModelNumber = strings.ToUpper(strings.TrimSpace(intent.ModelNumber))
		}
		if intent.Service != domain.ServiceUnset {
			session.Service = intent.Service
		}
	}

	return session.State()
}
