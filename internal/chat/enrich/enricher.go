// Package enrich inspects an assistant reply (and the user text that
// prompted it) and attaches the structured payloads the widget renders:
// tracking map, agent card, WhatsApp invitation, document list and
// quick-reply buttons. Every check is independent; several payloads can
// land on the same message.
package enrich

import (
	"fmt"
	"math/rand"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/boddenberg/cargo-chat-bfa-go/internal/catalog"
	chatdomain "github.com/boddenberg/cargo-chat-bfa-go/internal/chat/domain"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/chat/intent"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/textnorm"
)

// Phrase lists, folded.
var (
	trackingPhrases = []string{"rastre", "donde esta", "estado", "estatus", "status", "ubicacion", "seguimiento", "track", "en transito", "mapa", "localiz"}
	contactPhrases  = []string{"asesor", "ejecutiv", "agente", "hablar con", "contactar", "contacto", "comunic", "llamar", "atencion a clientes", "persona"}
	documentPhrases = []string{"documento", "bill of lading", "factura", "lista de empaque", "packing list", "certificado de origen", "conocimiento de embarque"}
	yesNoOpeners    = []string{"¿desea", "¿le gustaria", "¿quiere", "¿necesita", "¿prefiere que", "¿le interesa"}
)

// Enrichment is the set of payloads attached to one reply.
type Enrichment struct {
	Tracking     *chatdomain.TrackingVisualization
	Agent        *chatdomain.AgentCard
	WhatsApp     *chatdomain.WhatsAppAlert
	Attachments  []chatdomain.Attachment
	QuickReplies []string
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithRand replaces the random source used for agent phone suffixes.
func WithRand(r *rand.Rand) Option {
	return func(e *Enricher) { e.rnd = r }
}

// Enricher runs the payload checks.
type Enricher struct {
	store *catalog.Store

	mu  sync.Mutex
	rnd *rand.Rand
}

// New creates an enricher.
func New(store *catalog.Store, opts ...Option) *Enricher {
	e := &Enricher{store: store, rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich runs every check over reply and userText. in is the intent the
// router resolved for the turn; it steers the quick replies and, for
// menu-style intents, limits the payload checks to the user's text.
func (e *Enricher) Enrich(reply, userText string, in intent.Intent) Enrichment {
	user := textnorm.Fold(userText)
	combined := user + " " + textnorm.Fold(reply)

	code := intent.FindTrackingCode(user)
	if code == "" {
		code = intent.FindTrackingCode(reply)
	}

	// Menu-style replies list every topic we cover; only the user's own
	// words may trigger the agent, WhatsApp and document payloads there.
	scan := combined
	if menuIntent(in) {
		scan = user
	}

	var out Enrichment
	if code != "" && textnorm.ContainsAny(combined, trackingPhrases...) {
		out.Tracking = Tracking(code)
	}
	if textnorm.ContainsAny(scan, contactPhrases...) {
		out.Agent = e.agent(code)
	}
	if strings.Contains(scan, "whatsapp") {
		out.WhatsApp = e.whatsApp()
	}
	if textnorm.ContainsAny(scan, documentPhrases...) || hasWord(scan, "bl") {
		out.Attachments = Documents()
	}
	out.QuickReplies = QuickReplies(reply, in)
	return out
}

func menuIntent(in intent.Intent) bool {
	switch in {
	case intent.Greeting, intent.Fallback, intent.Decline, intent.Company:
		return true
	}
	return false
}

// IsYesNoQuestion reports whether reply ends by asking a yes/no question.
func IsYesNoQuestion(reply string) bool {
	r := strings.TrimSpace(reply)
	if !strings.HasSuffix(r, "?") {
		return false
	}
	start := strings.LastIndex(r, "¿")
	if start < 0 {
		return false
	}
	last := textnorm.Fold(r[start:])
	for _, op := range yesNoOpeners {
		if strings.HasPrefix(last, op) {
			return true
		}
	}
	return false
}

// QuickReplies suggests buttons: Sí/No after a yes/no question, otherwise
// shortcuts that fit the intent.
func QuickReplies(reply string, in intent.Intent) []string {
	if IsYesNoQuestion(reply) {
		return []string{"Sí", "No"}
	}
	switch in {
	case intent.Greeting, intent.Fallback, intent.Decline:
		return []string{"Ver rutas", "Cotizar", "Rastrear envío", "Hablar con un asesor"}
	case intent.Route:
		return []string{"Shanghai a Manzanillo", "Veracruz a Rotterdam", "Cotizar"}
	case intent.Price:
		return []string{"Cotizar", "Ver rutas"}
	case intent.Documents:
		return []string{"Rastrear envío", "Hablar con un asesor"}
	case intent.Contact:
		return []string{"Escribir por WhatsApp", "Cotizar"}
	case intent.QuoteSubmitted:
		return []string{"Rastrear envío", "Ver rutas"}
	}
	return nil
}

func (e *Enricher) agent(code string) *chatdomain.AgentCard {
	e.mu.Lock()
	suffix := 1000 + e.rnd.Intn(9000)
	e.mu.Unlock()

	c := e.store.Company()
	card := &chatdomain.AgentCard{
		Name:     "Carlos Ramírez",
		Role:     "Ejecutivo de importaciones",
		Email:    "importaciones@" + emailDomain(c.Email),
		Schedule: c.Hours,
	}
	if strings.HasPrefix(code, intent.ExportPrefix) {
		card.Name = "Mariana López"
		card.Role = "Ejecutiva de exportaciones"
		card.Email = "exportaciones@" + emailDomain(c.Email)
	}
	card.Phone = fmt.Sprintf("%s %04d", phonePrefix(c.Phone), suffix)
	return card
}

func (e *Enricher) whatsApp() *chatdomain.WhatsAppAlert {
	c := e.store.Company()
	msg := "Hola, vengo del chat del sitio web y necesito ayuda con un embarque."
	return &chatdomain.WhatsAppAlert{
		Phone:   c.WhatsApp,
		Message: msg,
		URL:     "https://wa.me/" + digits(c.WhatsApp) + "?text=" + url.QueryEscape(msg),
	}
}

// Documents is the fixed shipment paperwork list.
func Documents() []chatdomain.Attachment {
	return []chatdomain.Attachment{
		{Name: "Bill_of_Lading.pdf", Size: "245 KB", MimeType: "application/pdf"},
		{Name: "Factura_Comercial.pdf", Size: "128 KB", MimeType: "application/pdf"},
		{Name: "Lista_de_Empaque.xlsx", Size: "56 KB", MimeType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
		{Name: "Certificado_de_Origen.pdf", Size: "98 KB", MimeType: "application/pdf"},
	}
}

func hasWord(text, w string) bool {
	for _, f := range strings.FieldsFunc(text, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}) {
		if f == w {
			return true
		}
	}
	return false
}

// phonePrefix drops the last group of a formatted phone number.
func phonePrefix(phone string) string {
	if i := strings.LastIndex(phone, " "); i > 0 {
		return phone[:i]
	}
	return phone
}

func emailDomain(email string) string {
	if i := strings.LastIndex(email, "@"); i >= 0 {
		return email[i+1:]
	}
	return email
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
