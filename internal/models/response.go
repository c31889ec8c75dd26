package models

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// AssistantResponse is returned by POST /generate-message/. Exactly one of
// Appointments, Intent or UserFriendlyMessage is set on success.
type AssistantResponse struct {
	Appointments        any    `json:"appointments,omitempty"`
	Intent              string `json:"intent,omitempty"`
	UserFriendlyMessage string `json:"user_friendly_message,omitempty"`
	Error               string `json:"error,omitempty"`
}

// DressResponse is returned by POST /api/weather-assistant/dress-recommendation
type DressResponse struct {
	Date            string         `json:"date"`
	Location        string         `json:"location"`
	WeatherSummary  string         `json:"weather_summary"`
	Temperature     float64        `json:"temperature"`
	Conditions      string         `json:"conditions"`
	Recommendations map[string]any `json:"recommendations"`
}
