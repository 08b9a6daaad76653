package intent

import (
	"github.com/boddenberg/cargo-chat-bfa-go/internal/catalog"
	chatdomain "github.com/boddenberg/cargo-chat-bfa-go/internal/chat/domain"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/domain"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/textnorm"
)

// Router classifies utterances and keeps the session context up to date.
type Router struct {
	rules     []Rule
	extractor *Extractor
	store     *catalog.Store
	replies   *Replies
}

// NewRouter builds a router over the catalog. A nil rule set means
// DefaultRules.
func NewRouter(store *catalog.Store, rules []Rule) *Router {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Router{
		rules:     rules,
		extractor: NewExtractor(store),
		store:     store,
		replies:   NewReplies(store),
	}
}

// Extract exposes entity extraction for callers that only need entities.
func (r *Router) Extract(text string) Entities {
	return r.extractor.Extract(text)
}

// Classify runs the rules over text, first match wins.
func (r *Router) Classify(text string) (Intent, Entities) {
	t := textnorm.Fold(text)
	ent := r.extractor.Extract(t)
	for _, rule := range r.rules {
		if rule.Match(t, ent) {
			return rule.Intent, ent
		}
	}
	return Fallback, ent
}

// Route decides how to answer text and updates sc in place.
//
// AwaitingResponse is consumed on every call. When it was set and the
// user answered with a short yes, the previous intent is elaborated
// instead of classifying the text again.
func (r *Router) Route(text string, sc *chatdomain.SessionContext) Decision {
	awaiting := sc.AwaitingResponse
	sc.AwaitingResponse = false

	if awaiting && sc.LastIntention != "" {
		switch {
		case IsAffirmative(text):
			if d, ok := r.elaborate(Intent(sc.LastIntention), sc); ok {
				r.commit(d, sc)
				return d
			}
		case IsNegative(text):
			d := Decision{Intent: Decline, Reply: r.replies.Decline()}
			r.commit(d, sc)
			return d
		}
	}

	in, ent := r.Classify(text)
	d := Decision{Intent: in, Entities: ent}
	d.Route = r.resolveRoute(in, ent, sc)
	r.replies.Fill(&d)
	r.commit(d, sc)
	return d
}

// QuoteSubmitted answers a completed quote form without classifying the
// synthesized summary.
func (r *Router) QuoteSubmitted(summary string, sc *chatdomain.SessionContext) Decision {
	d := Decision{Intent: QuoteSubmitted, Reply: r.replies.QuoteSubmitted(summary)}
	sc.AwaitingResponse = false
	r.commit(d, sc)
	return d
}

// Fallback is the reply used when nothing better is available.
func (r *Router) Fallback() string {
	return r.replies.Fallback()
}

func (r *Router) commit(d Decision, sc *chatdomain.SessionContext) {
	sc.LastIntention = string(d.Intent)
	if d.Route != nil {
		sc.LastRoute = d.Route.ID
	}
	sc.AwaitingResponse = d.ExpectsFollowUp
}

func (r *Router) resolveRoute(in Intent, ent Entities, sc *chatdomain.SessionContext) *domain.Route {
	if len(ent.Locations) >= 2 {
		if rt, ok := r.store.FindRoute(ent.Locations[0], ent.Locations[1]); ok {
			return &rt
		}
		return nil
	}
	if len(ent.Locations) == 0 && (in == Price || in == Route) && sc.LastRoute != "" {
		if rt, ok := r.store.RouteByID(sc.LastRoute); ok {
			return &rt
		}
	}
	return nil
}

// elaborate expands on the intent whose reply asked a yes/no question.
func (r *Router) elaborate(prev Intent, sc *chatdomain.SessionContext) (Decision, bool) {
	var rt *domain.Route
	if sc.LastRoute != "" {
		if found, ok := r.store.RouteByID(sc.LastRoute); ok {
			rt = &found
		}
	}

	switch prev {
	case Route:
		d := Decision{Intent: Price, Route: rt, Elaborated: true}
		r.replies.Fill(&d)
		return d, true
	case Price:
		return Decision{
			Intent:     Quote,
			Route:      rt,
			Reply:      r.replies.QuoteStart(),
			Elaborated: true,
			StartQuote: true,
		}, true
	case Tracking:
		return Decision{Intent: Documents, Reply: r.replies.Documents(), Elaborated: true}, true
	case Company:
		return Decision{Intent: Route, Reply: r.replies.RouteOverview(), Elaborated: true}, true
	}
	return Decision{}, false
}
