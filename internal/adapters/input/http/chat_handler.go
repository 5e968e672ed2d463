package http

import (
	"appliancebot/internal/domain"
	"appliancebot/internal/ports/input"
	"appliancebot/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// HTTPHandler struct - Primary/Driving adapter for HTTP
type HTTPHandler struct {
	srv       input.ChatService
	validator validator.Validator
}

// New func - Creates new HTTP handler
func New(srv input.ChatService) *HTTPHandler {
	return &HTTPHandler{
		srv:       srv,
		validator: validator.New(),
	}
}

// HealthCheck func
func (hdl *HTTPHandler) HealthCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: ""})
}

// Chat func - Handles one conversation turn.
// A request without a sessionId gets a freshly minted UUID; the id is
// echoed back so the client can keep the conversation going.
func (hdl *HTTPHandler) Chat(c *fiber.Ctx) error {
	var request ChatRequest
	if err := c.BodyParser(&request); err != nil {
		logrus.Errorln(err)
		return c.Status(fiber.StatusBadRequest).JSON(ResponseBody{Status: BadRequest})
	}
	if err := hdl.validator.ValidateStruct(request); err != nil {
		msg := ResponseBody{
			Status: BadRequest,
		}
		msg.Status.Message = []string{
			err.Error(),
		}
		return c.Status(fiber.StatusBadRequest).JSON(msg)
	}

	if request.SessionID == "" {
		request.SessionID = uuid.NewString()
	}

	// Convert HTTP request to domain request
	domainReq := domain.ChatRequest{
		SessionID: request.SessionID,
		UserQuery: request.UserQuery,
		Context:   request.Context,
	}
	response, err := hdl.srv.Respond(c.UserContext(), domainReq)
	if err != nil {
		logrus.Errorln(err)
		msg := ResponseBody{
			Status: InternalServerError,
		}
		msg.Status.Message = []string{
			err.Error(),
		}
		return c.Status(fiber.StatusInternalServerError).JSON(msg)
	}

	return c.Status(fiber.StatusOK).JSON(ChatResponse{
		Role:      string(response.Role),
		Content:   response.Content,
		SessionID: request.SessionID,
	})
}
