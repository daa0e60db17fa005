package models

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Session is a named, ordered conversation thread owned by one client.
type Session struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Messages  []Message `json:"messages"`
	CreatedAt int64     `json:"createdAt"` // Unix milliseconds
}

func (s Session) Created() time.Time {
	return time.UnixMilli(s.CreatedAt)
}

// Clone returns a copy that shares no message storage with s.
func (s Session) Clone() Session {
	out := s
	out.Messages = make([]Message, len(s.Messages))
	copy(out.Messages, s.Messages)
	return out
}

// RelayRequest is the payload accepted by the relay endpoint.
type RelayRequest struct {
	Prompt   string    `json:"prompt,omitempty"`
	Messages []Message `json:"messages,omitempty"`
	Model    string    `json:"model,omitempty"`
}

// RelayResponse carries the extracted completion text.
type RelayResponse struct {
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}
