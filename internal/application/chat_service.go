package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"appliancebot/internal/domain"
	"appliancebot/internal/ports/output"

	"github.com/sirupsen/logrus"
)

// ChatService struct - Application service implementing the chat use case.
// Receives one user message, advances the conversation state, classifies
// the intent and dispatches to the matching handler or the fallback. It is
// stateless aside from the session store; calls for distinct sessions run
// in parallel, turns within one session are serialized in arrival order.
type ChatService struct {
	store      output.SessionStore
	classifier *IntentClassifier
	tracker    *StateTracker
	handlers   *HandlerSet
	table      map[domain.ServiceType]HandlerFunc

	sessionTimeout  time.Duration
	sessionMaxTurns int

	mu    sync.Mutex
	locks map[string]*turnLock
}

// turnLock serializes the turns of one session while any are in flight.
type turnLock struct {
	sync.Mutex
	refs int
}

// NewChatService func - Creates the chat application service
func NewChatService(store output.SessionStore, handlers *HandlerSet, sessionTimeout time.Duration, sessionMaxTurns int) *ChatService {
	return &ChatService{
		store:           store,
		classifier:      NewIntentClassifier(),
		tracker:         NewStateTracker(),
		handlers:        handlers,
		table:           handlers.Table(),
		sessionTimeout:  sessionTimeout,
		sessionMaxTurns: sessionMaxTurns,
		locks:           make(map[string]*turnLock),
	}
}

// Respond func - Use case: process one user turn and produce the reply.
// Internal failures become user-facing text; the error return stays nil for
// everything the assistant can recover from.
func (s *ChatService) Respond(ctx context.Context, request domain.ChatRequest) (domain.ChatResponse, error) {
	lock := s.acquireSessionLock(request.SessionID)
	defer s.releaseSessionLock(request.SessionID, lock)

	session, err := s.store.GetSession(request.SessionID)
	if err != nil {
		logrus.Errorf("Session load failed for %s: %v", request.SessionID, err)
	}
	if session == nil {
		session = domain.NewConversationSession(request.SessionID, s.sessionTimeout, s.sessionMaxTurns)
	}

	intent := s.classifier.Classify(session, request.UserQuery)
	logrus.Infof("Classified turn for session %s: appliance=%s service=%s model=%q outOfDomain=%t",
		request.SessionID, intent.Appliance, intent.Service, intent.ModelNumber, intent.OutOfDomain)

	response := s.dispatch(ctx, session, intent, request.UserQuery)

	session.AddTurn(
		domain.ChatMessage{Role: domain.ChatMessageRoleUser, Content: request.UserQuery},
		domain.ChatMessage{Role: domain.ChatMessageRoleAssistant, Content: response.Content},
	)
	if err := s.store.UpdateSession(session); err != nil {
		logrus.Errorf("Session persist failed for %s: %v", request.SessionID, err)
	}

	return response, nil
}

func (s *ChatService) dispatch(ctx context.Context, session *domain.ConversationSession, intent domain.Intent, userText string) domain.ChatResponse {
	if intent.OutOfDomain {
		return s.handlers.HandleFallback(ctx, session, userText)
	}

	state := s.tracker.Advance(session, intent)

	if intent.Reset {
		return domain.NewAssistantResponse(
			"Okay, let's start over. Are you working with a refrigerator or a dishwasher?")
	}

	switch state {
	case domain.StateNeedAppliance:
		return domain.NewAssistantResponse(
			"I can help with refrigerators and dishwashers. Which appliance do you have a question about?")

	case domain.StateNeedModel:
		return needModelResponse(session.Appliance)

	default: // StateReady
		if session.Service == domain.ServiceUnset {
			return servicesMenuResponse(session.Appliance)
		}
		handler := s.table[session.Service]
		response, completed := handler(ctx, session, intent)
		if completed {
			// A completed lookup closes the active service; the appliance
			// and model stay for the next question. Clarification turns
			// keep the service open so the user's answer is routed back.
			session.Service = domain.ServiceUnset
		}
		return response
	}
}

func servicesMenuResponse(appliance domain.Appliance) domain.ChatResponse {
	return domain.NewAssistantResponse(fmt.Sprintf(
		"Thank you. Here are the services I can provide for your %s:\n"+
			"1. Product manual or care guide\n"+
			"2. Finding a replacement part\n"+
			"3. Help with a problem or symptom\n"+
			"4. Installation information\n\n"+
			"What kind of help do you need?", appliance))
}

// acquireSessionLock takes the mutex serializing turns for one session id,
// so a session never processes turn N+1 before turn N's mutation is
// committed. Entries are reference-counted and removed by
// releaseSessionLock once no turn is in flight, keeping the map bounded
// by concurrency rather than by session count.
func (s *ChatService) acquireSessionLock(sessionID string) *turnLock {
	s.mu.Lock()
	lock, ok := s.locks[sessionID]
	if !ok {
		lock = &turnLock{}
		s.locks[sessionID] = lock
	}
	lock.refs++
	s.mu.Unlock()

	lock.Lock()
	return lock
}

func (s *ChatService) releaseSessionLock(sessionID string, lock *turnLock) {
	lock.Unlock()
	s.mu.Lock()
	lock.refs--
	if lock.refs == 0 {
		delete(s.locks, sessionID)
	}
	s.mu.Unlock()
}
