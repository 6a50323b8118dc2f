package ws

// Event is one reward notification pushed to a client.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}
