// Package quote drives the guided multi-step quote request.
//
// The form state lives on the session (chatdomain.QuoteFormState) so a
// reload of the widget resumes at the same step. Form only mutates that
// state; it never stores anything of its own.
package quote

import (
	"errors"
	"fmt"
	"strings"

	chatdomain "github.com/boddenberg/cargo-chat-bfa-go/internal/chat/domain"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/textnorm"
)

// Control words recognised at any step.
const (
	BackLabel   = "Volver"
	CancelLabel = "Cancelar"
)

// Reply is what the form wants the assistant to say next.
type Reply struct {
	Text         string
	QuickReplies []string
	Completed    bool
	Cancelled    bool
	// Summary and Fields are set only when Completed is true.
	Summary string
	Fields  chatdomain.QuoteFields
}

// Form is the quote state machine bound to one session's state.
type Form struct {
	state *chatdomain.QuoteFormState
}

// New binds a form to state.
func New(state *chatdomain.QuoteFormState) *Form {
	return &Form{state: state}
}

// Active reports whether the form is collecting answers.
func (f *Form) Active() bool { return f.state.Active }

// Step returns the current step, StepInactive when the form is closed.
func (f *Form) Step() chatdomain.QuoteStep { return f.state.Step }

// Start resets the form and asks the first question.
func (f *Form) Start() Reply {
	*f.state = chatdomain.QuoteFormState{Active: true, Step: chatdomain.StepOrigin}
	return f.ask("")
}

// Handle consumes one user answer.
func (f *Form) Handle(input string) Reply {
	if !f.state.Active {
		return f.Start()
	}

	t := textnorm.Fold(input)
	switch {
	case isCancel(t):
		f.reset()
		return Reply{
			Text:         "Cotización cancelada. Si lo desea, puedo ayudarle con rutas, tarifas o el rastreo de un embarque.",
			QuickReplies: []string{"Cotizar", "Ver rutas", "Rastrear envío"},
			Cancelled:    true,
		}
	case isBack(t):
		return f.back()
	}

	st, ok := steps[f.state.Step]
	if !ok {
		// Corrupt step, start over.
		return f.Start()
	}
	if err := st.apply(input, &f.state.Fields); err != nil {
		var msg errInput
		if errors.As(err, &msg) {
			return f.ask(string(msg))
		}
		return f.ask("No pude procesar su respuesta.")
	}

	f.state.History = append(f.state.History, f.state.Step)
	f.state.Step++
	if f.state.Step >= chatdomain.StepSummary {
		fields := f.state.Fields
		summary := Summary(fields)
		f.reset()
		return Reply{Text: summary, Completed: true, Summary: summary, Fields: fields}
	}
	return f.ask("")
}

// Progress is the form snapshot attached to chat responses.
func (f *Form) Progress() *chatdomain.QuoteProgress {
	return &chatdomain.QuoteProgress{
		Active:     f.state.Active,
		Step:       int(f.state.Step),
		TotalSteps: chatdomain.TotalQuoteSteps,
		Fields:     f.state.Fields,
	}
}

func (f *Form) back() Reply {
	h := f.state.History
	if len(h) == 0 {
		return f.ask("Ya se encuentra en el primer paso.")
	}
	f.state.Step = h[len(h)-1]
	f.state.History = h[:len(h)-1]
	return f.ask("De acuerdo, regresemos al paso anterior.")
}

func (f *Form) reset() {
	*f.state = chatdomain.QuoteFormState{}
}

func (f *Form) ask(prefix string) Reply {
	st := steps[f.state.Step]
	var b strings.Builder
	if prefix != "" {
		b.WriteString(prefix)
		b.WriteString(" ")
	}
	fmt.Fprintf(&b, "Paso %d de %d: %s", f.state.Step, chatdomain.TotalQuoteSteps, st.prompt)

	qr := append([]string(nil), st.suggestions(f.state.Fields)...)
	if f.state.Step > chatdomain.StepOrigin {
		qr = append(qr, BackLabel)
	}
	qr = append(qr, CancelLabel)
	return Reply{Text: b.String(), QuickReplies: qr}
}

// Summary renders the collected fields as a bullet list.
func Summary(q chatdomain.QuoteFields) string {
	cargo := q.CargoType
	if q.HSCode != "" && !strings.Contains(cargo, q.HSCode) {
		cargo += " (HS " + q.HSCode + ")"
	}
	lines := []string{
		"Resumen de su solicitud de cotización:",
		"• Origen: " + q.Origin,
		"• Destino: " + q.Destination,
		"• Modalidad: " + q.Mode,
		"• Peso: " + q.Weight,
		"• Cantidad: " + q.Quantity,
		"• Dimensiones: " + q.Dimensions,
		"• Tipo de carga: " + cargo,
		"• Incoterm: " + q.Incoterm,
		"• Notas: " + q.Notes,
	}
	return strings.Join(lines, "\n")
}

func isCancel(t string) bool {
	return t == "cancelar" || strings.HasPrefix(t, "cancelar ")
}

func isBack(t string) bool {
	switch t {
	case "volver", "atras", "regresar", "paso anterior", "volver atras":
		return true
	}
	return false
}
