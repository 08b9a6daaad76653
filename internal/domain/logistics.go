package domain

// ============================================================
// Logistics reference data
// ============================================================
//
// These records are loaded once at startup from the catalog and never
// mutated afterwards. They are what the assistant quotes from.

// Catalog groups every reference table the assistant knows about.
type Catalog struct {
	Company        Company         `yaml:"company" json:"company"`
	Companies      []Partner       `yaml:"companies" json:"companies"`
	Ports          []Port          `yaml:"ports" json:"ports"`
	Routes         []Route         `yaml:"routes" json:"routes"`
	ContainerTypes []ContainerType `yaml:"containerTypes" json:"containerTypes"`
	Insurance      []Insurance     `yaml:"insurance" json:"insurance"`
	Customs        []CustomsOption `yaml:"customs" json:"customs"`
	Financing      []Financing     `yaml:"financing" json:"financing"`
}

// Company describes the logistics company operating the widget.
type Company struct {
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Offices     []string `yaml:"offices" json:"offices"`
	Phone       string   `yaml:"phone" json:"phone"`
	Email       string   `yaml:"email" json:"email"`
	WhatsApp    string   `yaml:"whatsapp" json:"whatsapp"`
	Hours       string   `yaml:"hours" json:"hours"`
	Services    []string `yaml:"services" json:"services"`
}

// Partner is a carrier or agent the company works with.
type Partner struct {
	Name    string `yaml:"name" json:"name"`
	Kind    string `yaml:"kind" json:"kind"` // naviera, aerolinea, transportista, agente
	Country string `yaml:"country" json:"country"`
}

// Port is a location the gazetteer recognises.
type Port struct {
	Code    string   `yaml:"code" json:"code"`
	Name    string   `yaml:"name" json:"name"`
	Country string   `yaml:"country" json:"country"`
	Aliases []string `yaml:"aliases" json:"aliases,omitempty"`
}

// Route is a scheduled lane between two ports with its tariffs.
type Route struct {
	ID            string   `yaml:"id" json:"id"`
	Origin        string   `yaml:"origin" json:"origin"`
	Destination   string   `yaml:"destination" json:"destination"`
	Mode          string   `yaml:"mode" json:"mode"` // maritimo, aereo, terrestre
	Carrier       string   `yaml:"carrier" json:"carrier"`
	TransitDays   int      `yaml:"transitDays" json:"transitDays"`
	Frequency     string   `yaml:"frequency" json:"frequency"`
	Tariffs       []Tariff `yaml:"tariffs" json:"tariffs"`
	ValidUntil    string   `yaml:"validUntil" json:"validUntil"`
	Transshipment string   `yaml:"transshipment" json:"transshipment,omitempty"`
}

// Tariff is a price for one container type (or unit) on a route.
type Tariff struct {
	ContainerType string `yaml:"containerType" json:"containerType"`
	Unit          string `yaml:"unit" json:"unit"` // contenedor, cbm, kg
	PriceUSD      int    `yaml:"priceUSD" json:"priceUSD"`
}

// ContainerType describes equipment that can be requested.
type ContainerType struct {
	Code        string   `yaml:"code" json:"code"`
	Name        string   `yaml:"name" json:"name"`
	Keywords    []string `yaml:"keywords" json:"keywords"`
	MaxPayloadK int      `yaml:"maxPayloadKg" json:"maxPayloadKg"`
	VolumeCBM   float64  `yaml:"volumeCbm" json:"volumeCbm"`
}

// Insurance is a cargo insurance product.
type Insurance struct {
	Name     string  `yaml:"name" json:"name"`
	Coverage string  `yaml:"coverage" json:"coverage"`
	RatePct  float64 `yaml:"ratePct" json:"ratePct"`
	MinUSD   int     `yaml:"minUSD" json:"minUSD"`
}

// CustomsOption is a customs brokerage service.
type CustomsOption struct {
	Name     string `yaml:"name" json:"name"`
	Scope    string `yaml:"scope" json:"scope"` // importacion, exportacion
	FeeUSD   int    `yaml:"feeUSD" json:"feeUSD"`
	LeadTime string `yaml:"leadTime" json:"leadTime"`
}

// Financing is a trade-finance product.
type Financing struct {
	Name    string  `yaml:"name" json:"name"`
	TermDay int     `yaml:"termDays" json:"termDays"`
	RatePct float64 `yaml:"ratePct" json:"ratePct"`
	Notes   string  `yaml:"notes" json:"notes"`
}
