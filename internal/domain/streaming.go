package domain

// StreamingSource is one where-to-watch listing for a title.
type StreamingSource struct {
	Name   string `json:"name"`
	Region string `json:"region"`
	Type   string `json:"type"`
	WebURL string `json:"web_url,omitempty"`
}
