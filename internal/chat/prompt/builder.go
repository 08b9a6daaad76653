// Package prompt assembles the text sent to the generative endpoint.
//
// The prompt is a document made of named sections, each rendered by its
// own function so it can be tested in isolation:
//
//	identity  → who the assistant is and for which company
//	knowledge → company, insurance, customs and financing data
//	rules     → numbered behavioural instructions
//	routes    → candidate routes with their tariffs
//	history   → the last N turns of the conversation
//	query     → the current user message
package prompt

import (
	"fmt"
	"strings"

	"github.com/boddenberg/cargo-chat-bfa-go/internal/catalog"
	chatdomain "github.com/boddenberg/cargo-chat-bfa-go/internal/chat/domain"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/chat/intent"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/domain"
)

// Section names, in render order.
const (
	SectionIdentity  = "identity"
	SectionKnowledge = "knowledge"
	SectionRules     = "rules"
	SectionRoutes    = "routes"
	SectionHistory   = "history"
	SectionQuery     = "query"
)

// Order is the fixed order sections appear in.
var Order = []string{SectionIdentity, SectionKnowledge, SectionRules, SectionRoutes, SectionHistory, SectionQuery}

// Rules are the behavioural instructions given to the model.
var Rules = []string{
	"Responde siempre en español, con un tono profesional y cordial, tratando al cliente de usted.",
	"Usa únicamente las rutas, tarifas y datos de la empresa incluidos en este documento; no inventes precios ni servicios.",
	"Cuando menciones una tarifa, cítala exactamente como aparece, en dólares estadounidenses y con su unidad.",
	"Si el cliente pide rastrear un embarque y no da un número de seguimiento, pídeselo (tres letras seguidas de 6 a 8 dígitos).",
	"Si el cliente quiere hablar con una persona, ofrécele el teléfono, el correo o WhatsApp de la empresa.",
	"Si la pregunta requiere una cotización formal, invítalo a escribir «cotizar».",
	"Cuando hagas una pregunta de sí o no, termínala con un signo de interrogación.",
	"Responde en un máximo de 150 palabras; usa viñetas (•) para listas.",
}

// Input is everything a prompt needs for one turn.
type Input struct {
	Query     string
	Locations []string
	History   []chatdomain.ChatMessage
}

// Builder renders prompts over a catalog.
type Builder struct {
	store *catalog.Store
}

// NewBuilder creates a prompt builder.
func NewBuilder(store *catalog.Store) *Builder {
	return &Builder{store: store}
}

// Sections renders every section by name.
func (b *Builder) Sections(in Input) map[string]string {
	return map[string]string{
		SectionIdentity:  b.Identity(),
		SectionKnowledge: b.Knowledge(),
		SectionRules:     RulesSection(),
		SectionRoutes:    b.Routes(in.Locations),
		SectionHistory:   History(in.History),
		SectionQuery:     Query(in.Query),
	}
}

// Build concatenates the sections in Order, skipping empty ones.
func (b *Builder) Build(in Input) string {
	sections := b.Sections(in)
	parts := make([]string, 0, len(Order))
	for _, name := range Order {
		if s := sections[name]; s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Identity is the opening paragraph.
func (b *Builder) Identity() string {
	c := b.store.Company()
	return fmt.Sprintf("Eres el asistente virtual de %s, una empresa de logística internacional. "+
		"Atiendes a clientes en el chat del sitio web: rutas, tarifas, rastreo de embarques, documentos y cotizaciones.", c.Name)
}

// Knowledge serializes company facts and ancillary services.
func (b *Builder) Knowledge() string {
	data := b.store.Data()
	c := data.Company

	var sb strings.Builder
	sb.WriteString("## Información de la empresa\n")
	fmt.Fprintf(&sb, "Nombre: %s\n%s\n", c.Name, c.Description)
	fmt.Fprintf(&sb, "Oficinas: %s\n", strings.Join(c.Offices, "; "))
	fmt.Fprintf(&sb, "Teléfono: %s | WhatsApp: %s | Correo: %s | Horario: %s\n", c.Phone, c.WhatsApp, c.Email, c.Hours)
	fmt.Fprintf(&sb, "Servicios: %s\n", strings.Join(c.Services, ", "))

	if len(data.Companies) > 0 {
		sb.WriteString("\n## Socios\n")
		for _, p := range data.Companies {
			fmt.Fprintf(&sb, "• %s (%s)\n", p.Name, p.Kind)
		}
	}
	if len(data.Insurance) > 0 {
		sb.WriteString("\n## Seguros de carga\n")
		for _, i := range data.Insurance {
			fmt.Fprintf(&sb, "• %s: %s, %.2f%% del valor, mínimo USD %d\n", i.Name, i.Coverage, i.RatePct, i.MinUSD)
		}
	}
	if len(data.Customs) > 0 {
		sb.WriteString("\n## Despacho aduanal\n")
		for _, cu := range data.Customs {
			fmt.Fprintf(&sb, "• %s (%s): USD %d, %s\n", cu.Name, cu.Scope, cu.FeeUSD, cu.LeadTime)
		}
	}
	if len(data.Financing) > 0 {
		sb.WriteString("\n## Financiamiento\n")
		for _, f := range data.Financing {
			fmt.Fprintf(&sb, "• %s: %d días, %.2f%% mensual. %s\n", f.Name, f.TermDay, f.RatePct, f.Notes)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// RulesSection numbers Rules.
func RulesSection() string {
	var sb strings.Builder
	sb.WriteString("## Reglas\n")
	for i, r := range Rules {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, r)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Routes lists the candidate routes for the extracted locations, or every
// route when none matched.
func (b *Builder) Routes(locations []string) string {
	routes := b.store.RoutesFor(locations...)
	if len(routes) == 0 {
		routes = b.store.Routes()
	}

	var sb strings.Builder
	sb.WriteString("## Rutas y tarifas\n")
	for _, r := range routes {
		sb.WriteString(routeBlock(r))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func routeBlock(r domain.Route) string {
	var sb strings.Builder
	sb.WriteString(intent.RouteLine(r))
	fmt.Fprintf(&sb, ", salidas %s, vigencia %s\n", r.Frequency, r.ValidUntil)
	for _, t := range r.Tariffs {
		sb.WriteString("  ")
		sb.WriteString(intent.TariffLine(t))
		sb.WriteString("\n")
	}
	return sb.String()
}

// History renders prior turns oldest first. System messages are omitted.
func History(msgs []chatdomain.ChatMessage) string {
	var sb strings.Builder
	for _, m := range msgs {
		var who string
		switch m.Role {
		case chatdomain.RoleUser:
			who = "Cliente"
		case chatdomain.RoleAssistant:
			who = "Asistente"
		default:
			continue
		}
		fmt.Fprintf(&sb, "%s: %s\n", who, m.Content)
	}
	if sb.Len() == 0 {
		return ""
	}
	return "## Conversación previa\n" + strings.TrimRight(sb.String(), "\n")
}

// Query is the trailing instruction with the user's message.
func Query(q string) string {
	return "## Mensaje del cliente\n" + strings.TrimSpace(q) + "\n\nAsistente:"
}
