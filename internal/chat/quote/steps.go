package quote

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	chatdomain "github.com/boddenberg/cargo-chat-bfa-go/internal/chat/domain"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/textnorm"
)

// step describes one input step of the form.
type step struct {
	prompt      string
	suggestions func(f chatdomain.QuoteFields) []string
	apply       func(input string, f *chatdomain.QuoteFields) error
}

var (
	numberPattern     = regexp.MustCompile(`\d[\d.,]*`)
	negativePattern   = regexp.MustCompile(`(^|[^\w])[-−]\s*\d`)
	integerPattern    = regexp.MustCompile(`\d+`)
	dimensionsPattern = regexp.MustCompile(`\d+(?:[.,]\d+)?\s*[x×*]\s*\d+(?:[.,]\d+)?\s*[x×*]\s*\d+(?:[.,]\d+)?`)
	containerPattern  = regexp.MustCompile(`\b(20|40|45)\s*('|pies|hc|gp|rf)`)
	hsCodePattern     = regexp.MustCompile(`\b(\d{4}\.\d{2}(?:\.\d{2,4})?|\d{6,10})\b`)
	weightUnitPattern = regexp.MustCompile(`\b(kg|kgs|kilos?|kilogramos?|t|ton|tons|toneladas?|lb|lbs|libras?)\b`)
)

var incoterms = []string{"EXW", "FCA", "FAS", "FOB", "CFR", "CIF", "CPT", "CIP", "DAP", "DPU", "DDP"}

// errInput is a validation message shown to the user before re-prompting.
type errInput string

func (e errInput) Error() string { return string(e) }

var steps = map[chatdomain.QuoteStep]step{
	chatdomain.StepOrigin: {
		prompt: "¿Cuál es el origen de la carga? (ciudad o puerto)",
		suggestions: func(chatdomain.QuoteFields) []string {
			return []string{"Shanghai, China", "Manzanillo, México", "Veracruz, México", "Los Ángeles, EE. UU."}
		},
		apply: func(in string, f *chatdomain.QuoteFields) error {
			v, err := place(in)
			if err != nil {
				return err
			}
			f.Origin = v
			return nil
		},
	},
	chatdomain.StepDestination: {
		prompt:      "¿Cuál es el destino de la carga?",
		suggestions: destinationSuggestions,
		apply: func(in string, f *chatdomain.QuoteFields) error {
			v, err := place(in)
			if err != nil {
				return err
			}
			if textnorm.Fold(v) == textnorm.Fold(f.Origin) {
				return errInput("El destino debe ser distinto del origen.")
			}
			f.Destination = v
			return nil
		},
	},
	chatdomain.StepMode: {
		prompt: "¿Qué modalidad de transporte prefiere?",
		suggestions: func(chatdomain.QuoteFields) []string {
			return []string{"Marítimo", "Aéreo", "Terrestre", "Multimodal"}
		},
		apply: func(in string, f *chatdomain.QuoteFields) error {
			t := textnorm.Fold(in)
			switch {
			case textnorm.ContainsAny(t, "multimodal", "combinado"):
				f.Mode = "Multimodal"
			case textnorm.ContainsAny(t, "maritimo", "mar", "barco", "buque"):
				f.Mode = "Marítimo"
			case textnorm.ContainsAny(t, "aereo", "avion"):
				f.Mode = "Aéreo"
			case textnorm.ContainsAny(t, "terrestre", "camion", "tren", "ferrocarril"):
				f.Mode = "Terrestre"
			default:
				return errInput("No reconocí la modalidad. Elija marítimo, aéreo, terrestre o multimodal.")
			}
			return nil
		},
	},
	chatdomain.StepWeight: {
		prompt: "¿Cuál es el peso total aproximado? (por ejemplo, 1,500 kg)",
		suggestions: func(chatdomain.QuoteFields) []string {
			return []string{"500 kg", "1,000 kg", "5,000 kg", "20,000 kg"}
		},
		apply: func(in string, f *chatdomain.QuoteFields) error {
			num := numberPattern.FindString(in)
			if num == "" || negativePattern.MatchString(in) || parseAmount(num) <= 0 {
				return errInput("Indique el peso con un número mayor a cero, por ejemplo 1,500 kg.")
			}
			unit := weightUnitPattern.FindString(textnorm.Fold(in))
			if unit == "" {
				unit = "kg"
			}
			f.Weight = num + " " + unit
			return nil
		},
	},
	chatdomain.StepQuantity: {
		prompt: "¿Cuántos bultos o contenedores son?",
		suggestions: func(chatdomain.QuoteFields) []string {
			return []string{"1", "2", "5", "10"}
		},
		apply: func(in string, f *chatdomain.QuoteFields) error {
			n, err := strconv.Atoi(integerPattern.FindString(in))
			if err != nil || n <= 0 || negativePattern.MatchString(in) {
				return errInput("Indique la cantidad con un número entero mayor a cero.")
			}
			f.Quantity = strconv.Itoa(n)
			return nil
		},
	},
	chatdomain.StepDimensions: {
		prompt:      "¿Cuáles son las dimensiones por bulto (largo x ancho x alto) o el tipo de contenedor?",
		suggestions: dimensionSuggestions,
		apply: func(in string, f *chatdomain.QuoteFields) error {
			t := textnorm.Fold(in)
			switch {
			case textnorm.ContainsAny(t, "no lo se", "no se", "desconozco", "por definir"):
				f.Dimensions = "Por definir"
			case dimensionsPattern.MatchString(t), strings.Contains(t, "contenedor"), containerPattern.MatchString(t):
				f.Dimensions = strings.TrimSpace(in)
			default:
				return errInput("Indique las medidas como largo x ancho x alto (por ejemplo 120x80x100 cm) o el tipo de contenedor.")
			}
			return nil
		},
	},
	chatdomain.StepCargoType: {
		prompt: "¿Qué tipo de mercancía es? Si conoce la fracción arancelaria (HS), inclúyala.",
		suggestions: func(chatdomain.QuoteFields) []string {
			return []string{"Carga general", "Perecederos", "Mercancía peligrosa", "Electrónicos"}
		},
		apply: func(in string, f *chatdomain.QuoteFields) error {
			v := strings.TrimSpace(in)
			if len([]rune(v)) < 3 {
				return errInput("Describa brevemente la mercancía (al menos 3 caracteres).")
			}
			f.CargoType = v
			f.HSCode = hsCodePattern.FindString(v)
			return nil
		},
	},
	chatdomain.StepIncoterm: {
		prompt: "¿Qué Incoterm aplica a la operación?",
		suggestions: func(chatdomain.QuoteFields) []string {
			return []string{"FOB", "CIF", "EXW", "DDP", "No lo sé"}
		},
		apply: func(in string, f *chatdomain.QuoteFields) error {
			t := textnorm.Fold(in)
			if textnorm.ContainsAny(t, "no lo se", "no se", "desconozco") {
				f.Incoterm = "Por definir (requiere asesoría)"
				return nil
			}
			for _, w := range strings.FieldsFunc(strings.ToUpper(in), func(r rune) bool { return r < 'A' || r > 'Z' }) {
				for _, ic := range incoterms {
					if w == ic {
						f.Incoterm = ic
						return nil
					}
				}
			}
			return errInput(fmt.Sprintf("No reconocí el Incoterm. Opciones válidas: %s.", strings.Join(incoterms, ", ")))
		},
	},
	chatdomain.StepNotes: {
		prompt: "¿Alguna nota adicional? (fechas, requisitos especiales, seguro, etc.)",
		suggestions: func(chatdomain.QuoteFields) []string {
			return []string{"Sin notas adicionales"}
		},
		apply: func(in string, f *chatdomain.QuoteFields) error {
			t := textnorm.Fold(in)
			if t == "no" || textnorm.ContainsAny(t, "sin notas", "ninguna", "nada") {
				f.Notes = "Sin notas adicionales"
				return nil
			}
			f.Notes = strings.TrimSpace(in)
			return nil
		},
	},
}

// destinationSuggestions depends on where the cargo starts: Mexican
// origins get foreign destinations and Chinese origins get Mexican ports.
func destinationSuggestions(f chatdomain.QuoteFields) []string {
	o := textnorm.Fold(f.Origin)
	switch {
	case strings.Contains(o, "mexico"):
		return []string{"Los Ángeles, EE. UU.", "Shanghai, China", "Rotterdam, Países Bajos", "Houston, EE. UU."}
	case strings.Contains(o, "china"):
		return []string{"Manzanillo, México", "Lázaro Cárdenas, México", "Ciudad de México, México"}
	default:
		return []string{"Manzanillo, México", "Veracruz, México", "Ciudad de México, México"}
	}
}

func dimensionSuggestions(f chatdomain.QuoteFields) []string {
	if f.Mode == "Marítimo" || f.Mode == "Multimodal" {
		return []string{"Contenedor 20'", "Contenedor 40'", "Contenedor 40' HC", "No lo sé"}
	}
	return []string{"120x80x100 cm", "60x40x40 cm", "No lo sé"}
}

func place(in string) (string, error) {
	v := strings.TrimSpace(in)
	letters := 0
	for _, r := range v {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r > 127 {
			letters++
		}
	}
	if letters < 2 {
		return "", errInput("Indique una ciudad o puerto válido.")
	}
	return v, nil
}

// parseAmount reads "1,500" or "1.500,5" loosely; only the sign matters here.
func parseAmount(s string) float64 {
	clean := strings.NewReplacer(",", "", ".", "").Replace(s)
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0
	}
	return v
}
