// Package intent is the rule-based classifier behind the chat: an ordered
// list of predicate → label rules evaluated first-match-wins, an entity
// extractor backed by the catalog gazetteer, and the canned replies used
// whenever the text generator is unavailable.
package intent

import (
	"regexp"
	"strings"

	"github.com/boddenberg/cargo-chat-bfa-go/internal/domain"
)

// Intent is a coarse classification of a user utterance.
type Intent string

const (
	Quote          Intent = "quote"
	Route          Intent = "route"
	Price          Intent = "price"
	Tracking       Intent = "tracking"
	Documents      Intent = "documents"
	Company        Intent = "company"
	Contact        Intent = "contact"
	Greeting       Intent = "greeting"
	Decline        Intent = "decline"
	QuoteSubmitted Intent = "quote_submitted"
	Fallback       Intent = "fallback"
)

// TrackingCodePattern matches shipment codes on folded (lower-case) text:
// three letters followed by six to eight digits, e.g. ecr1234567.
var TrackingCodePattern = regexp.MustCompile(`\b([a-z]{3}[0-9]{6,8})\b`)

// ExportPrefix marks tracking codes of export shipments.
const ExportPrefix = "ECR"

// FindTrackingCode returns the first tracking code in text, upper-cased.
func FindTrackingCode(text string) string {
	m := TrackingCodePattern.FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return ""
	}
	return strings.ToUpper(m[1])
}

// Entities are the values pulled out of an utterance.
type Entities struct {
	Locations     []string `json:"locations,omitempty"` // port names, order of appearance, at most two
	TrackingCode  string   `json:"trackingCode,omitempty"`
	ContainerType string   `json:"containerType,omitempty"`
}

// Decision is the router's verdict for one turn.
type Decision struct {
	Intent   Intent
	Entities Entities

	// Route is the catalog route the turn refers to, if any.
	Route *domain.Route

	// Reply is the canned response for this turn. It is what the user
	// sees when the text generator fails.
	Reply string

	// Elaborated is set when a short affirmative answered a previous
	// question and Reply expands on that earlier intent.
	Elaborated bool

	// StartQuote asks the caller to open the quote form.
	StartQuote bool

	// ExpectsFollowUp is true when Reply ends in a yes/no question.
	ExpectsFollowUp bool
}
