package intent

import (
	"fmt"
	"strings"

	"github.com/boddenberg/cargo-chat-bfa-go/internal/catalog"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/domain"
)

// Replies renders the canned responses. Every text is deterministic for a
// given catalog and decision.
type Replies struct {
	store *catalog.Store
}

// NewReplies creates the canned-reply renderer.
func NewReplies(store *catalog.Store) *Replies {
	return &Replies{store: store}
}

// Fill sets Reply and ExpectsFollowUp on d according to its intent.
func (p *Replies) Fill(d *Decision) {
	switch d.Intent {
	case Greeting:
		d.Reply = p.Greeting()
	case Route:
		d.Reply, d.ExpectsFollowUp = p.route(d)
	case Price:
		d.Reply, d.ExpectsFollowUp = p.price(d)
	case Tracking:
		d.Reply, d.ExpectsFollowUp = p.tracking(d.Entities.TrackingCode)
	case Documents:
		d.Reply = p.Documents()
	case Company:
		d.Reply, d.ExpectsFollowUp = p.company(), true
	case Contact:
		d.Reply = p.contact()
	case Quote:
		d.Reply, d.StartQuote = p.QuoteStart(), true
	default:
		d.Intent = Fallback
		d.Reply = p.Fallback()
	}
}

// Greeting welcomes the user.
func (p *Replies) Greeting() string {
	return fmt.Sprintf("¡Hola! Soy el asistente virtual de %s. Puedo ayudarle con rutas, tarifas, "+
		"rastreo de embarques, documentos y cotizaciones. ¿En qué puedo ayudarle hoy?", p.store.Company().Name)
}

// Fallback is the generic help message.
func (p *Replies) Fallback() string {
	return "Disculpe, no estoy seguro de haber entendido. Puedo ayudarle con rutas y tiempos de tránsito, " +
		"tarifas, rastreo de embarques, documentos o una cotización formal. ¿Sobre qué tema le gustaría saber?"
}

// Decline acknowledges a "no" to a follow-up question.
func (p *Replies) Decline() string {
	return "Entendido. Si necesita algo más, aquí estoy para ayudarle."
}

// QuoteStart introduces the quote form.
func (p *Replies) QuoteStart() string {
	return "Perfecto, iniciemos su cotización. Le haré algunas preguntas breves; puede escribir «volver» " +
		"para corregir el paso anterior o «cancelar» para salir en cualquier momento."
}

// QuoteSubmitted confirms a completed quote form.
func (p *Replies) QuoteSubmitted(summary string) string {
	return "¡Gracias! Hemos registrado su solicitud de cotización.\n\n" + summary +
		"\n\nUn ejecutivo le enviará la propuesta en menos de 24 horas hábiles."
}

// Documents lists the shipment paperwork available for download.
func (p *Replies) Documents() string {
	return "Estos son los documentos disponibles de su embarque: Bill of Lading, factura comercial, " +
		"lista de empaque y certificado de origen. Puede descargarlos desde los archivos adjuntos."
}

// RouteOverview lists every published route.
func (p *Replies) RouteOverview() string {
	var b strings.Builder
	b.WriteString("Estas son nuestras rutas disponibles:\n")
	for _, r := range p.store.Routes() {
		b.WriteString(RouteLine(r))
		b.WriteString("\n")
	}
	b.WriteString("Indíqueme origen y destino para darle tarifas específicas.")
	return b.String()
}

func (p *Replies) route(d *Decision) (string, bool) {
	if d.Route != nil {
		r := d.Route
		return fmt.Sprintf("La ruta %s → %s opera con %s, salidas %s y un tiempo de tránsito aproximado de %d días (%s). "+
			"¿Desea conocer las tarifas de esta ruta?", r.Origin, r.Destination, r.Carrier, r.Frequency, r.TransitDays, ModeLabel(r.Mode)), true
	}
	if len(d.Entities.Locations) >= 2 {
		return fmt.Sprintf("Por el momento no tenemos una ruta publicada entre %s y %s. %s",
			d.Entities.Locations[0], d.Entities.Locations[1], p.RouteOverview()), false
	}
	if len(d.Entities.Locations) == 1 {
		routes := p.store.RoutesFor(d.Entities.Locations[0])
		if len(routes) > 0 {
			var b strings.Builder
			fmt.Fprintf(&b, "Estas son las rutas que tocan %s:\n", d.Entities.Locations[0])
			for _, r := range routes {
				b.WriteString(RouteLine(r))
				b.WriteString("\n")
			}
			b.WriteString("Indíqueme el otro extremo del trayecto para darle el detalle.")
			return b.String(), false
		}
	}
	return p.RouteOverview(), false
}

func (p *Replies) price(d *Decision) (string, bool) {
	if d.Route == nil {
		return "Para darle una tarifa necesito el origen y el destino, por ejemplo: «precio Shanghai Manzanillo». " +
			"También puede escribir «cotizar» para iniciar una cotización formal.", false
	}
	r := d.Route
	var b strings.Builder
	fmt.Fprintf(&b, "Tarifas vigentes %s → %s (%s, %s, válidas hasta %s):\n", r.Origin, r.Destination, r.Carrier, ModeLabel(r.Mode), r.ValidUntil)
	if code := d.Entities.ContainerType; code != "" {
		for _, t := range r.Tariffs {
			if strings.EqualFold(t.ContainerType, code) {
				fmt.Fprintf(&b, "Para %s: %s\n", code, TariffAmount(t))
			}
		}
	}
	for _, t := range r.Tariffs {
		b.WriteString(TariffLine(t))
		b.WriteString("\n")
	}
	b.WriteString("Las tarifas no incluyen seguro ni despacho aduanal. ¿Desea que iniciemos una cotización formal?")
	return b.String(), true
}

func (p *Replies) tracking(code string) (string, bool) {
	if code == "" {
		return "Con gusto le ayudo a rastrear su embarque. Compártame su número de seguimiento: " +
			"tres letras seguidas de 6 a 8 dígitos, tal como aparece en su confirmación de reserva.", false
	}
	direction := "importación"
	if strings.HasPrefix(code, ExportPrefix) {
		direction = "exportación"
	}
	return fmt.Sprintf("Su embarque de %s %s está en tránsito. Le muestro el estado y la ubicación actual en el mapa. "+
		"¿Desea que le comparta la papelería de este embarque?", direction, code), true
}

func (p *Replies) company() string {
	c := p.store.Company()
	return fmt.Sprintf("%s: %s Contamos con oficinas en %s. Nuestros servicios: %s. ¿Le gustaría conocer nuestras rutas disponibles?",
		c.Name, c.Description, strings.Join(c.Offices, "; "), strings.Join(c.Services, ", "))
}

func (p *Replies) contact() string {
	c := p.store.Company()
	return fmt.Sprintf("Con gusto le comunico con un ejecutivo de atención a clientes. Puede contactarnos al %s, "+
		"por correo a %s o por WhatsApp; los datos de su agente aparecen a continuación. Horario: %s.", c.Phone, c.Email, c.Hours)
}

// ModeLabel renders a transport mode for display.
func ModeLabel(mode string) string {
	switch mode {
	case "maritimo":
		return "marítimo"
	case "aereo":
		return "aéreo"
	default:
		return mode
	}
}

// RouteLine renders one route as a bullet.
func RouteLine(r domain.Route) string {
	return fmt.Sprintf("• %s → %s (%s, %d días, %s)", r.Origin, r.Destination, ModeLabel(r.Mode), r.TransitDays, r.Carrier)
}

// TariffAmount renders the price of a tariff with its unit.
func TariffAmount(t domain.Tariff) string {
	return fmt.Sprintf("USD %d por %s", t.PriceUSD, t.Unit)
}

// TariffLine renders one tariff as a bullet.
func TariffLine(t domain.Tariff) string {
	return fmt.Sprintf("• %s: %s", t.ContainerType, TariffAmount(t))
}
