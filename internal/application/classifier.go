package application

import (
	"regexp"
	"strings"

	"appliancebot/internal/domain"
)

// IntentClassifier - maps raw user text plus current conversation state to
// a structured intent. Purely a text-to-structure function: no network or
// cache access, deterministic given (session, text).
type IntentClassifier struct{}

// NewIntentClassifier func - Creates a new intent classifier
func NewIntentClassifier() *IntentClassifier {
	return &IntentClassifier{}
}

// modelTokenPattern matches a model-number-shaped token: alphanumeric with
// optional dashes, length >= 5. Candidates must also carry both a letter
// and a digit, checked separately.
var modelTokenPattern = regexp.MustCompile(`[A-Za-z0-9][A-Za-z0-9-]{4,}`)

var resetPhrases = []string{"start over", "restart", "reset", "new conversation"}

var applianceKeywords = map[string]domain.Appliance{
	"refrigerator": domain.ApplianceRefrigerator,
	"fridge":       domain.ApplianceRefrigerator,
	"dishwasher":   domain.ApplianceDishwasher,
	"dish washer":  domain.ApplianceDishwasher,
}

// serviceRule binds a service to its trigger vocabulary. Rules are ordered
// from most to least specific; when several services match one turn the
// earlier rule wins unless the session's active service is among the
// matches, which keeps routing stable across turns.
type serviceRule struct {
	service domain.ServiceType
	words   []string
	phrases []string
}

var serviceRules = []serviceRule{
	{
		service: domain.ServiceParts,
		words: []string{
			"part", "parts", "replacement", "price", "cost", "buy", "purchase", "order",
			"filter", "shelf", "shelves", "drawer", "bin", "gasket", "seal", "hinge",
			"rack", "tray", "motor", "pump", "hose", "valve", "thermostat",
			"compressor", "icemaker", "dispenser",
		},
		phrases: []string{"ice maker", "water filter"},
	},
	{
		service: domain.ServiceManual,
		words:   []string{"manual", "manuals", "guide", "guides", "documentation", "handbook"},
		phrases: []string{"care guide", "user guide"},
	},
	{
		service: domain.ServiceDiagnosis,
		words: []string{
			"problem", "problems", "issue", "issues", "symptom", "symptoms",
			"broken", "error", "trouble", "troubleshoot", "troubleshooting",
			"leak", "leaking", "noise", "noisy",
		},
		phrases: []string{"not working", "not cooling", "not draining", "won't start", "wont start"},
	},
	{
		service: domain.ServiceInstallation,
		words:   []string{"install", "installation", "installing", "setup", "mount", "placement"},
		phrases: []string{"set up", "hook up"},
	},
}

// genericTriggerWords are request words that select a service but carry no
// search content, so they are stripped from the free-text remainder. Part
// nouns like "filter" stay in the remainder - they are what the parts
// search is for.
var genericTriggerWords = map[string]bool{
	"part": true, "parts": true, "replacement": true, "price": true, "cost": true,
	"buy": true, "purchase": true, "order": true,
	"manual": true, "manuals": true, "guide": true, "guides": true,
	"documentation": true, "handbook": true,
	"problem": true, "problems": true, "issue": true, "issues": true,
	"symptom": true, "symptoms": true, "trouble": true,
	"troubleshoot": true, "troubleshooting": true,
	"install": true, "installation": true, "installing": true, "setup": true,
}

var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "i": true, "im": true, "i'm": true,
	"my": true,
	"is": true, "it": true, "its": true, "it's": true, "for": true, "to": true,
	"of": true,
	"and": true, "or": true, "need": true, "needs": true, "want": true,
	"would": true, "like": true, "please": true, "me": true, "you": true,
	"can": true, "could": true, "help": true, "with": true, "on": true,
	"in": true, "do": true, "does": true, "have": true, "has": true,
	"what": true, "whats": true, "what's": true, "how": true, "where": true,
	"when": true,
	"looking": true, "find": true, "get": true, "some": true, "new": true,
}

// extraVocabulary extends the in-domain check beyond the trigger tables:
// words that reference appliances or their parts without selecting a
// service on their own.
var extraVocabulary = []string{
	"appliance", "model", "ice", "water", "cold", "cooling", "freezer",
	"dish", "dishes", "door", "light", "kitchen", "repair", "fix",
	"instructions", "diagram", "warranty",
}

// menuServices maps numeric menu replies to services, in the order the
// services menu lists them.
var menuServices = map[string]domain.ServiceType{
	"1": domain.ServiceManual,
	"2": domain.ServiceParts,
	"3": domain.ServiceDiagnosis,
	"4": domain.ServiceInstallation,
}

// Classify produces the intent for one user turn. Fields the text does not
// override are inherited from the session so the intent is self-contained.
func (c *IntentClassifier) Classify(session *domain.ConversationSession, userText string) domain.Intent {
	normalized := normalizeText(userText)
	tokens := strings.Fields(normalized)
	tokenSet := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		tokenSet[t] = true
	}

	intent := domain.Intent{
		Appliance:   session.Appliance,
		ModelNumber: session.ModelNumber,
		Service:     session.Service,
	}

	for _, phrase := range resetPhrases {
		if strings.Contains(normalized, phrase) {
			intent.Reset = true
			return intent
		}
	}

	applianceMentioned := false
	for keyword, appliance := range applianceKeywords {
		if matchKeyword(normalized, tokenSet, keyword) {
			applianceMentioned = true
			if intent.Appliance == domain.ApplianceUnset {
				intent.Appliance = appliance
			}
			break
		}
	}

	model := extractModelToken(userText)
	if model != "" {
		intent.ModelNumber = strings.ToUpper(model)
	}

	matched := c.matchServices(normalized, tokenSet)
	menuReply := false
	if service, ok := resolveServiceMatches(matched, session.Service); ok {
		intent.Service = service
	} else if session.Appliance != domain.ApplianceUnset {
		// Numeric reply selecting from the services menu
		if service, ok := menuServices[strings.TrimRight(strings.TrimSpace(normalized), ".)")]; ok {
			intent.Service = service
			menuReply = true
		}
	}

	intent.Query = buildQueryRemainder(tokens, model)
	if menuReply {
		// The numeral selected a service; it is not search content.
		intent.Query = ""
	}

	// Out-of-domain only when the turn carries no signal at all and the
	// conversation has not selected an appliance yet. Once an appliance is
	// set, unmatched text flows on to clarification instead of the fallback.
	if session.Appliance == domain.ApplianceUnset &&
		!applianceMentioned && len(matched) == 0 && model == "" && !intent.Reset &&
		!c.referencesDomain(normalized, tokenSet) {
		intent.OutOfDomain = true
	}

	return intent
}

// matchServices returns the services whose vocabulary appears in the turn,
// in specificity order.
func (c *IntentClassifier) matchServices(normalized string, tokenSet map[string]bool) []domain.ServiceType {
	var matched []domain.ServiceType
	for _, rule := range serviceRules {
		hit := false
		for _, w := range rule.words {
			if tokenSet[w] {
				hit = true
				break
			}
		}
		if !hit {
			for _, p := range rule.phrases {
				if strings.Contains(normalized, p) {
					hit = true
					break
				}
			}
		}
		if hit {
			matched = append(matched, rule.service)
		}
	}
	return matched
}

// resolveServiceMatches applies the ambiguity policy: a single match wins
// outright; with several matches the previously active service wins if it
// is among them, otherwise the most specific (earliest rule) does.
func resolveServiceMatches(matched []domain.ServiceType, active domain.ServiceType) (domain.ServiceType, bool) {
	if len(matched) == 0 {
		return domain.ServiceUnset, false
	}
	if len(matched) > 1 && active != domain.ServiceUnset {
		for _, m := range matched {
			if m == active {
				return active, true
			}
		}
	}
	return matched[0], true
}

func (c *IntentClassifier) referencesDomain(normalized string, tokenSet map[string]bool) bool {
	for _, w := range extraVocabulary {
		if tokenSet[w] {
			return true
		}
	}
	return false
}

// matchKeyword checks a single word against the token set and a phrase
// against the normalized text.
func matchKeyword(normalized string, tokenSet map[string]bool, keyword string) bool {
	if strings.ContainsRune(keyword, ' ') {
		return strings.Contains(normalized, keyword)
	}
	return tokenSet[keyword]
}

// extractModelToken finds the first model-number-shaped token: length >= 5,
// containing both letters and digits. Works on the raw text so casing in
// model numbers survives.
func extractModelToken(text string) string {
	for _, candidate := range modelTokenPattern.FindAllString(text, -1) {
		hasLetter, hasDigit := false, false
		for _, r := range candidate {
			switch {
			case r >= '0' && r <= '9':
				hasDigit = true
			case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
				hasLetter = true
			}
		}
		if hasLetter && hasDigit {
			return candidate
		}
	}
	return ""
}

// buildQueryRemainder keeps the tokens that carry search content: part
// nouns and qualifiers survive, request filler and the model token do not.
func buildQueryRemainder(tokens []string, model string) string {
	modelLower := strings.ToLower(model)
	var kept []string
	for _, t := range tokens {
		if stopWords[t] || genericTriggerWords[t] || t == modelLower {
			continue
		}
		if _, ok := applianceKeywords[t]; ok {
			continue
		}
		kept = append(kept, t)
	}
	return strings.Join(kept, " ")
}

// normalizeText lower-cases, strips punctuation apart from token-internal
// dashes and apostrophes, and collapses whitespace.
func normalizeText(text string) string {
	lower := strings.ToLower(text)
	var b strings.Builder
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '\'':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
