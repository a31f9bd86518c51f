package server

// ============================================================================
// ERROR RESPONSES
// ============================================================================
type ErrorMessage struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ============================================================================
// JOIN (join)
// ============================================================================
type JoinRequest struct {
	Channel  string `json:"channel"`
	Username string `json:"username"`
	Token    string `json:"token,omitempty"`
}

type JoinResponse struct {
	Token    string   `json:"token"`
	Username string   `json:"username"`
	Channel  string   `json:"channel"`
	Members  []string `json:"members"`
}

// ============================================================================
// CHAT INPUT (say, dm, react)
// ============================================================================
type SayRequest struct {
	Text string `json:"text"`
}

type ReactRequest struct {
	Marker string `json:"marker"`
}

// ============================================================================
// CHANNEL OUTPUT (message broadcast)
// ============================================================================

// ChatMessage is a line shown in a channel. Author is empty for game output.
type ChatMessage struct {
	Channel string   `json:"channel"`
	Author  string   `json:"author,omitempty"`
	Kind    string   `json:"kind,omitempty"`
	Text    string   `json:"text"`
	Markers []string `json:"markers,omitempty"`
}

// ============================================================================
// STATS (HTTP)
// ============================================================================
type LeaderboardResponse struct {
	Game    string   `json:"game"`
	Records []Record `json:"records"`
}
