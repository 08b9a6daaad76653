package enrich

import (
	"strings"

	chatdomain "github.com/boddenberg/cargo-chat-bfa-go/internal/chat/domain"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/chat/intent"
)

var (
	manzanillo = chatdomain.GeoPoint{Name: "Manzanillo, MX", Lat: 19.0522, Lng: -104.3158}
	shanghai   = chatdomain.GeoPoint{Name: "Shanghai, CN", Lat: 31.2304, Lng: 121.4737}
	honolulu   = chatdomain.GeoPoint{Name: "Pacífico Norte (Hawái)", Lat: 21.3069, Lng: -157.8583}
	midPacific = chatdomain.GeoPoint{Name: "Pacífico Norte", Lat: 30.5, Lng: 170.0}
	yokohama   = chatdomain.GeoPoint{Name: "Yokohama, JP", Lat: 35.4437, Lng: 139.6380}
)

// Tracking builds the map payload for code. The geography depends only on
// whether the code is an export (ECR prefix) or an import, so the same
// code always renders the same journey.
func Tracking(code string) *chatdomain.TrackingVisualization {
	code = strings.ToUpper(code)
	if strings.HasPrefix(code, intent.ExportPrefix) {
		return &chatdomain.TrackingVisualization{
			Code:        code,
			Direction:   "export",
			Status:      "En tránsito marítimo",
			Vessel:      "COSCO PACIFIC STAR",
			Origin:      manzanillo,
			Destination: shanghai,
			Current:     midPacific,
			Waypoints:   []chatdomain.GeoPoint{manzanillo, honolulu, midPacific, yokohama, shanghai},
			Milestones: []chatdomain.Milestone{
				{Label: "Recolección en planta", Location: "Guadalajara, MX", DayOffset: 0, Done: true},
				{Label: "Despacho aduanal de exportación", Location: "Manzanillo, MX", DayOffset: 2, Done: true},
				{Label: "Zarpe del buque", Location: "Manzanillo, MX", DayOffset: 4, Done: true},
				{Label: "Tránsito transpacífico", Location: "Océano Pacífico", DayOffset: 12, Done: false},
				{Label: "Arribo a puerto", Location: "Shanghai, CN", DayOffset: 28, Done: false},
				{Label: "Entrega final", Location: "Shanghai, CN", DayOffset: 31, Done: false},
			},
			ProgressPct: 55,
			ETADays:     16,
		}
	}
	return &chatdomain.TrackingVisualization{
		Code:        code,
		Direction:   "import",
		Status:      "En tránsito marítimo",
		Vessel:      "MAERSK MANZANILLO",
		Origin:      shanghai,
		Destination: manzanillo,
		Current:     honolulu,
		Waypoints:   []chatdomain.GeoPoint{shanghai, yokohama, midPacific, honolulu, manzanillo},
		Milestones: []chatdomain.Milestone{
			{Label: "Carga consolidada", Location: "Shanghai, CN", DayOffset: 0, Done: true},
			{Label: "Zarpe del buque", Location: "Shanghai, CN", DayOffset: 3, Done: true},
			{Label: "Tránsito transpacífico", Location: "Océano Pacífico", DayOffset: 10, Done: true},
			{Label: "Arribo a puerto", Location: "Manzanillo, MX", DayOffset: 28, Done: false},
			{Label: "Despacho aduanal de importación", Location: "Manzanillo, MX", DayOffset: 30, Done: false},
			{Label: "Entrega final", Location: "Ciudad de México, MX", DayOffset: 32, Done: false},
		},
		ProgressPct: 70,
		ETADays:     9,
	}
}
