package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"appliancebot/internal/domain"

	"github.com/gofiber/fiber/v2"
)

// mockChatService is a mock implementation of the ChatService port
type mockChatService struct {
	respondFunc      func(ctx context.Context, request domain.ChatRequest) (domain.ChatResponse, error)
	capturedRequests []domain.ChatRequest
}

func (m *mockChatService) Respond(ctx context.Context, request domain.ChatRequest) (domain.ChatResponse, error) {
	m.capturedRequests = append(m.capturedRequests, request)
	if m.respondFunc != nil {
		return m.respondFunc(ctx, request)
	}
	return domain.NewAssistantResponse("ok"), nil
}

func newTestApp(srv *mockChatService) *fiber.App {
	app := fiber.New()
	handler := New(srv)
	app.Post("/chat", handler.Chat)
	app.Get("/health", handler.HealthCheck)
	return app
}

func postChat(t *testing.T, app *fiber.App, body string) ([]byte, int) {
	t.Helper()
	req := httptest.NewRequest("POST", "/chat", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test returned error: %v", err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading response body: %v", err)
	}
	return payload, resp.StatusCode
}

// TestChatReturnsAssistantResponse tests that a valid request produces the
// assistant role and content from the service.
func TestChatReturnsAssistantResponse(t *testing.T) {
	srv := &mockChatService{
		respondFunc: func(ctx context.Context, request domain.ChatRequest) (domain.ChatResponse, error) {
			return domain.NewAssistantResponse("Which appliance do you need help with?"), nil
		},
	}
	app := newTestApp(srv)

	payload, status := postChat(t, app, `{"userQuery":"hello","sessionId":"abc-123"}`)

	if status != fiber.StatusOK {
		t.Fatalf("expected status 200, got %d", status)
	}

	var body ChatResponse
	if err := json.Unmarshal(payload, &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body.Role != "assistant" {
		t.Errorf("expected role assistant, got %q", body.Role)
	}
	if body.Content != "Which appliance do you need help with?" {
		t.Errorf("unexpected content: %q", body.Content)
	}
	if body.SessionID != "abc-123" {
		t.Errorf("expected session id to be echoed, got %q", body.SessionID)
	}
}

// TestChatMintsSessionIDWhenAbsent tests that a request without a sessionId
// gets a generated one passed to the service and echoed in the response.
func TestChatMintsSessionIDWhenAbsent(t *testing.T) {
	srv := &mockChatService{}
	app := newTestApp(srv)

	payload, status := postChat(t, app, `{"userQuery":"my dishwasher is broken"}`)

	if status != fiber.StatusOK {
		t.Fatalf("expected status 200, got %d", status)
	}

	if len(srv.capturedRequests) != 1 {
		t.Fatalf("expected 1 service call, got %d", len(srv.capturedRequests))
	}
	if srv.capturedRequests[0].SessionID == "" {
		t.Error("expected a minted session id, got empty")
	}

	var body ChatResponse
	if err := json.Unmarshal(payload, &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body.SessionID != srv.capturedRequests[0].SessionID {
		t.Errorf("expected response session id %q to match service call, got %q",
			srv.capturedRequests[0].SessionID, body.SessionID)
	}
}

// TestChatRejectsMissingUserQuery tests that validation failures return 400
// without reaching the service.
func TestChatRejectsMissingUserQuery(t *testing.T) {
	srv := &mockChatService{}
	app := newTestApp(srv)

	_, status := postChat(t, app, `{"sessionId":"abc-123"}`)

	if status != fiber.StatusBadRequest {
		t.Errorf("expected status 400, got %d", status)
	}
	if len(srv.capturedRequests) != 0 {
		t.Errorf("expected no service calls, got %d", len(srv.capturedRequests))
	}
}

// TestChatRejectsMalformedJSON tests that unparseable bodies return 400.
func TestChatRejectsMalformedJSON(t *testing.T) {
	srv := &mockChatService{}
	app := newTestApp(srv)

	_, status := postChat(t, app, `{"userQuery": `)

	if status != fiber.StatusBadRequest {
		t.Errorf("expected status 400, got %d", status)
	}
}

// TestHealthCheckReturnsOK tests the liveness route.
func TestHealthCheckReturnsOK(t *testing.T) {
	app := newTestApp(&mockChatService{})

	req := httptest.NewRequest("GET", "/health", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test returned error: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
}
