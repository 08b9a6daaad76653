package domain

// ============================================================
// Quote form — guided freight-quote collection
// ============================================================
//
// The form walks a fixed sequence of steps:
//
//	1 origin → 2 destination → 3 mode → 4 weight → 5 quantity →
//	6 dimensions → 7 cargo type → 8 incoterm → 9 notes → 10 summary
//
// Step only moves forward, except on "volver" which pops exactly one
// entry from History.

// QuoteStep is a position in the quote form.
type QuoteStep int

const (
	StepInactive QuoteStep = iota
	StepOrigin
	StepDestination
	StepMode
	StepWeight
	StepQuantity
	StepDimensions
	StepCargoType
	StepIncoterm
	StepNotes
	StepSummary
)

// TotalQuoteSteps is the number of input steps before the summary.
const TotalQuoteSteps = int(StepNotes)

// QuoteFields are the values collected so far.
type QuoteFields struct {
	Origin      string `json:"origin,omitempty"`
	Destination string `json:"destination,omitempty"`
	Mode        string `json:"mode,omitempty"`
	Weight      string `json:"weight,omitempty"`
	Quantity    string `json:"quantity,omitempty"`
	Dimensions  string `json:"dimensions,omitempty"`
	CargoType   string `json:"cargoType,omitempty"`
	HSCode      string `json:"hsCode,omitempty"`
	Incoterm    string `json:"incoterm,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// QuoteFormState is the live state of a session's quote form.
type QuoteFormState struct {
	Active  bool        `json:"active"`
	Step    QuoteStep   `json:"step"`
	Fields  QuoteFields `json:"fields"`
	History []QuoteStep `json:"history,omitempty"`
}

// QuoteProgress is what the widget needs to draw the form's progress bar.
type QuoteProgress struct {
	Active     bool        `json:"active"`
	Step       int         `json:"step"`
	TotalSteps int         `json:"totalSteps"`
	Fields     QuoteFields `json:"fields"`
	Completed  bool        `json:"completed,omitempty"`
	Cancelled  bool        `json:"cancelled,omitempty"`
}
