package intent

import (
	"strings"

	"github.com/boddenberg/cargo-chat-bfa-go/internal/textnorm"
)

// Rule pairs a predicate with the intent it yields. Text is folded.
type Rule struct {
	Intent Intent
	Match  func(text string, e Entities) bool
}

var (
	quoteKeywords    = []string{"cotizar", "cotizacion", "cotiza ", "quiero una cotizacion", "solicitar cotizacion", "quote"}
	routeKeywords    = []string{"ruta", "tiempo de transito", "dias de transito", "transit time", "salidas", "frecuencia", "naviera", "shipping", "route"}
	priceKeywords    = []string{"precio", "costo", "cuanto cuesta", "cuanto sale", "cuanto cobran", "tarifa", "price", "dolares"}
	trackingKeywords = []string{"rastrear", "rastreo", "seguimiento", "donde esta mi", "estatus de mi", "estado de mi", "track", "ubicacion de mi"}
	documentKeywords = []string{"documento", "factura", "bill of lading", "conocimiento de embarque", "pedimento", "packing list", "lista de empaque", "certificado de origen"}
	companyKeywords  = []string{"empresa", "quienes son", "su compania", "servicios", "oficinas", "acerca de", "sobre ustedes", "aduana", "financiamiento", "credito", "asegurar", "poliza"}
	insuranceWords   = []string{"seguro de carga", "seguro de mercancia", "seguro de la carga", "seguros", "un seguro", "el seguro", "algun seguro", "incluye seguro", "con seguro"}
	contactKeywords  = []string{"contacto", "contactar", "agente", "asesor", "ejecutivo", "hablar con", "telefono", "llamar", "whatsapp", "correo", "email", "humano", "persona real"}
	greetingWords    = []string{"hola", "hello", "hi", "hey", "saludos", "buenas", "buen dia", "buenos dias", "buenas tardes", "buenas noches", "que tal"}
	affirmativeWords = []string{"si", "yes", "claro", "ok", "okay", "dale", "por favor", "sip", "correcto", "de acuerdo", "va", "sale", "perfecto"}
	negativeWords    = []string{"no", "nop", "no gracias", "negativo", "ahora no", "despues"}
)

// DefaultRules is the ordered rule set. Order matters: the first rule
// whose predicate holds wins, and anything unmatched is Fallback.
func DefaultRules() []Rule {
	return []Rule{
		{Intent: Quote, Match: func(t string, _ Entities) bool {
			return textnorm.ContainsAny(t+" ", quoteKeywords...) && !strings.Contains(t, "cancelar")
		}},
		{Intent: Route, Match: func(t string, e Entities) bool {
			if textnorm.ContainsAny(t, routeKeywords...) {
				return true
			}
			return len(e.Locations) >= 2 && !textnorm.ContainsAny(t, priceKeywords...)
		}},
		{Intent: Price, Match: func(t string, _ Entities) bool {
			return textnorm.ContainsAny(t, priceKeywords...)
		}},
		{Intent: Tracking, Match: func(t string, e Entities) bool {
			return e.TrackingCode != "" || textnorm.ContainsAny(t, trackingKeywords...)
		}},
		{Intent: Documents, Match: func(t string, _ Entities) bool {
			return textnorm.ContainsAny(t, documentKeywords...) || hasWord(t, "bl")
		}},
		{Intent: Company, Match: func(t string, _ Entities) bool {
			return textnorm.ContainsAny(t, companyKeywords...) || hasWord(t, insuranceWords...)
		}},
		{Intent: Contact, Match: func(t string, _ Entities) bool {
			return textnorm.ContainsAny(t, contactKeywords...)
		}},
		{Intent: Greeting, Match: func(t string, _ Entities) bool {
			return hasWord(t, greetingWords...)
		}},
	}
}

// words splits folded text into punctuation-free tokens.
func words(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '\'')
	})
}

// hasWord reports whether any phrase appears as whole words in text.
func hasWord(text string, phrases ...string) bool {
	padded := " " + strings.Join(words(text), " ") + " "
	for _, p := range phrases {
		if strings.Contains(padded, " "+p+" ") {
			return true
		}
	}
	return false
}

// isShortAnswer reports whether text is at most four words long and
// contains one of the vocabulary phrases ("sí", "claro que sí").
func isShortAnswer(text string, vocabulary []string) bool {
	ws := words(text)
	if len(ws) == 0 || len(ws) > 4 {
		return false
	}
	return hasWord(text, vocabulary...)
}

// IsAffirmative reports whether text is a short yes.
func IsAffirmative(text string) bool {
	t := textnorm.Fold(text)
	return isShortAnswer(t, affirmativeWords) && !hasWord(t, "no")
}

// IsNegative reports whether text is a short no.
func IsNegative(text string) bool {
	return isShortAnswer(textnorm.Fold(text), negativeWords)
}
