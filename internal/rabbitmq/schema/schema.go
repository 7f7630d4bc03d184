package schema

import (
	"encoding/json"
	"time"
)

// Email is the message body of the outgoing email queue.
type Email struct {
	To         string    `json:"to"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

func (m *Email) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

func (m *Email) Unmarshal(data []byte) error {
	return json.Unmarshal(data, m)
}
