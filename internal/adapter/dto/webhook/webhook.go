package webhook

// Response acknowledges a provider delivery
type Response struct {
	Message   string  `json:"message"`
	SessionID *string `json:"session_id,omitempty"`
	Status    string  `json:"status"`
}
