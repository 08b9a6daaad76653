package domain

// ============================================================
// Health & Metrics API Responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded, unhealthy
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual dependency.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	Detail      string `json:"detail,omitempty"`
	LastChecked string `json:"lastChecked"`
}

// ChatMetrics is returned by GET /api/chat/metrics.
type ChatMetrics struct {
	TotalTurns       int64            `json:"totalTurns"`
	TurnsByIntent    map[string]int64 `json:"turnsByIntent"`
	FallbackRate     float64          `json:"fallbackRate"`
	GenerationErrors int64            `json:"generationErrors"`
	PromptTokens     int64            `json:"promptTokens"`
	CompletionTokens int64            `json:"completionTokens"`
	ActiveSessions   int64            `json:"activeSessions"`
	EvictedSessions  int64            `json:"evictedSessions"`
	Period           string           `json:"period"`
}
