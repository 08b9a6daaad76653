package domain

import "time"

// Role identifies who authored a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ParseRole maps widget role strings onto Role; anything unknown is user.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleAssistant, "model", "bot":
		return RoleAssistant
	case RoleSystem:
		return RoleSystem
	default:
		return RoleUser
	}
}

// ChatMessage is one entry of a session's history. Once appended it is
// never modified.
type ChatMessage struct {
	ID           string                 `json:"id"`
	Role         Role                   `json:"role"`
	Content      string                 `json:"content"`
	Timestamp    time.Time              `json:"timestamp"`
	Intent       string                 `json:"intent,omitempty"`
	Attachments  []Attachment           `json:"attachments,omitempty"`
	QuickReplies []string               `json:"quickReplies,omitempty"`
	Tracking     *TrackingVisualization `json:"tracking,omitempty"`
	Agent        *AgentCard             `json:"agent,omitempty"`
	WhatsApp     *WhatsAppAlert         `json:"whatsapp,omitempty"`
}

// ============================================================
// Structured payloads rendered by the widget
// ============================================================

// Attachment is a downloadable document listed under a message.
type Attachment struct {
	Name     string `json:"name"`
	Size     string `json:"size"`
	MimeType string `json:"mimeType"`
}

// GeoPoint is a named coordinate on the tracking map.
type GeoPoint struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// Milestone is one step of a shipment's journey. DayOffset counts days
// from pickup so the payload stays deterministic for a given code.
type Milestone struct {
	Label     string `json:"label"`
	Location  string `json:"location"`
	DayOffset int    `json:"dayOffset"`
	Done      bool   `json:"done"`
}

// TrackingVisualization drives the shipment map.
type TrackingVisualization struct {
	Code        string      `json:"code"`
	Direction   string      `json:"direction"` // export, import
	Status      string      `json:"status"`
	Vessel      string      `json:"vessel"`
	Origin      GeoPoint    `json:"origin"`
	Destination GeoPoint    `json:"destination"`
	Current     GeoPoint    `json:"current"`
	Waypoints   []GeoPoint  `json:"waypoints"`
	Milestones  []Milestone `json:"milestones"`
	ProgressPct int         `json:"progressPct"`
	ETADays     int         `json:"etaDays"`
}

// AgentCard is the customer-service contact shown to the user.
type AgentCard struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Schedule string `json:"schedule"`
}

// WhatsAppAlert invites the user to continue on WhatsApp.
type WhatsAppAlert struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
	URL     string `json:"url"`
}
