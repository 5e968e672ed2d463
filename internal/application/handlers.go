package application

import (
	"context"
	"fmt"
	"strings"

	"appliancebot/internal/domain"
	"appliancebot/internal/ports/output"

	"github.com/sirupsen/logrus"
)

// HandlerFunc - One specialized handler: consumes the session and the
// turn's intent, produces the assistant response. Handlers never surface
// raw errors; every failure becomes user-facing text. The second return
// reports whether the request completed: false means the handler asked a
// clarifying question or hit a transient failure, so the active service
// stays open for the user's next turn.
type HandlerFunc func(ctx context.Context, session *domain.ConversationSession, intent domain.Intent) (domain.ChatResponse, bool)

// HandlerSet struct - The specialized handlers plus the fallback, sharing
// the cache, fetcher and language-model collaborators
type HandlerSet struct {
	cache          output.LookupCache
	fetcher        output.CatalogFetcher
	llm            output.LLMClient
	fallbackPrompt string
}

// NewHandlerSet func - Creates the handler set
func NewHandlerSet(cache output.LookupCache, fetcher output.CatalogFetcher, llm output.LLMClient, fallbackPrompt string) *HandlerSet {
	if fallbackPrompt == "" {
		fallbackPrompt = defaultFallbackPrompt
	}
	return &HandlerSet{
		cache:          cache,
		fetcher:        fetcher,
		llm:            llm,
		fallbackPrompt: fallbackPrompt,
	}
}

const defaultFallbackPrompt = "You are a customer support assistant for refrigerators and dishwashers. " +
	"Answer only questions related to those appliances, their parts, care and installation. " +
	"If the user's request is unrelated, politely explain that you can only help with " +
	"refrigerator and dishwasher questions and invite them to ask one."

const closingLine = "\n\nIs there anything else I can help you with?"

const retryText = "I ran into a problem reaching the parts catalog. Please try again in a moment."

// Table returns the static dispatch table: one handler per service type.
func (h *HandlerSet) Table() map[domain.ServiceType]HandlerFunc {
	return map[domain.ServiceType]HandlerFunc{
		domain.ServiceManual:       h.HandleManual,
		domain.ServiceParts:        h.HandleParts,
		domain.ServiceDiagnosis:    h.HandleDiagnosis,
		domain.ServiceInstallation: h.HandleInstallation,
	}
}

// HandleManual looks up manuals and care guides for the session's model.
func (h *HandlerSet) HandleManual(ctx context.Context, session *domain.ConversationSession, intent domain.Intent) (domain.ChatResponse, bool) {
	if session.ModelNumber == "" {
		return needModelResponse(session.Appliance), false
	}

	descriptor := domain.QueryDescriptor{
		Appliance:   session.Appliance,
		ModelNumber: session.ModelNumber,
		Service:     domain.ServiceManual,
	}

	result, err := h.cache.GetOrFetch(ctx, descriptor, h.fetcher)
	if err != nil {
		logrus.Errorf("Manual lookup failed for model %s: %v", session.ModelNumber, err)
		return domain.NewAssistantResponse(retryText), false
	}

	if result.Kind == domain.ResultNotFound || len(result.Manuals) == 0 {
		return domain.NewAssistantResponse(fmt.Sprintf(
			"I couldn't find any manuals for model %s. Please double-check the model number on the label inside your %s.",
			session.ModelNumber, session.Appliance)), true
	}

	return domain.NewAssistantResponse(renderManuals(session.ModelNumber, result.Manuals) + closingLine), true
}

// HandleParts searches replacement parts for the session's model. Without
// a part description it asks for one and keeps the parts service open, so
// the user's answer runs the search.
func (h *HandlerSet) HandleParts(ctx context.Context, session *domain.ConversationSession, intent domain.Intent) (domain.ChatResponse, bool) {
	if session.ModelNumber == "" {
		return needModelResponse(session.Appliance), false
	}
	if strings.TrimSpace(intent.Query) == "" {
		return domain.NewAssistantResponse(
			"What part are you looking for? For example: water filter, shelf, drawer."), false
	}

	descriptor := domain.QueryDescriptor{
		Appliance:   session.Appliance,
		ModelNumber: session.ModelNumber,
		Service:     domain.ServiceParts,
		Query:       intent.Query,
	}

	result, err := h.cache.GetOrFetch(ctx, descriptor, h.fetcher)
	if err != nil {
		logrus.Errorf("Parts lookup failed for model %s (%q): %v", session.ModelNumber, intent.Query, err)
		return domain.NewAssistantResponse(retryText), false
	}

	if result.Kind == domain.ResultNotFound || len(result.Parts) == 0 {
		return domain.NewAssistantResponse(fmt.Sprintf(
			"I searched for %q parts for your %s, but couldn't find a match.%s",
			intent.Query, session.ModelNumber, closingLine)), true
	}

	return domain.NewAssistantResponse(renderPartCard(result.Parts[0]) + closingLine), true
}

// HandleDiagnosis - Symptom troubleshooting placeholder
func (h *HandlerSet) HandleDiagnosis(ctx context.Context, session *domain.ConversationSession, intent domain.Intent) (domain.ChatResponse, bool) {
	return domain.NewAssistantResponse(
		"Symptom troubleshooting is still under development. In the meantime I can look up manuals or replacement parts for your " +
			string(session.Appliance) + "."), true
}

// HandleInstallation - Installation guidance placeholder
func (h *HandlerSet) HandleInstallation(ctx context.Context, session *domain.ConversationSession, intent domain.Intent) (domain.ChatResponse, bool) {
	return domain.NewAssistantResponse(
		"Installation guidance is still under development. In the meantime I can look up manuals or replacement parts for your " +
			string(session.Appliance) + "."), true
}

// HandleFallback answers out-of-domain turns through the language model,
// constrained to the appliance domain. It never touches the cache or the
// catalog fetcher.
func (h *HandlerSet) HandleFallback(ctx context.Context, session *domain.ConversationSession, userText string) domain.ChatResponse {
	text, err := h.llm.Generate(ctx, h.fallbackPrompt, session.GetHistory(), userText)
	if err != nil {
		logrus.Errorf("Fallback generation failed: %v", err)
		return domain.NewAssistantResponse(
			"Sorry, I had trouble answering that. I can help with refrigerator and dishwasher questions - manuals, parts, problems or installation.")
	}
	return domain.NewAssistantResponse(strings.TrimSpace(text))
}

func needModelResponse(appliance domain.Appliance) domain.ChatResponse {
	name := string(appliance)
	if name == "" {
		name = "appliance"
	}
	return domain.NewAssistantResponse(fmt.Sprintf(
		"Could you please provide your %s's model number? It's usually found on a label inside the appliance.", name))
}

func renderManuals(model string, manuals []domain.ManualDoc) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Here are the manuals and guides for model %s:\n", model)
	for _, m := range manuals {
		b.WriteString("\n- ")
		b.WriteString(m.Title)
		if m.DocType != "" {
			fmt.Fprintf(&b, " (%s)", m.DocType)
		}
		if m.Size != "" {
			fmt.Fprintf(&b, "\n  Size: %s", m.Size)
		}
		fmt.Fprintf(&b, "\n  Download: %s", m.URL)
	}
	return b.String()
}

func renderPartCard(part domain.Part) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Here's the best match I found:\n\n")
	fmt.Fprintf(&b, "Name: %s\n", part.Name)
	if part.PartSelectNumber != "" {
		fmt.Fprintf(&b, "PartSelect #: %s\n", part.PartSelectNumber)
	}
	if part.ManufacturerNumber != "" {
		fmt.Fprintf(&b, "Manufacturer #: %s\n", part.ManufacturerNumber)
	}
	if part.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", part.Description)
	}
	fmt.Fprintf(&b, "Price: %s\n", part.Price)
	fmt.Fprintf(&b, "View and purchase this part here: %s", part.URL)
	return b.String()
}
