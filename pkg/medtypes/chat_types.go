package medtypes

// Sender identifies who authored a chat message.
type Sender string

const (
	// SenderUser marks messages typed by the local user.
	SenderUser Sender = "user"
	// SenderAssistant marks messages produced by MedBot, including synthetic ones.
	SenderAssistant Sender = "assistant"
)

// SenderFromRole maps a server history role onto a Sender.
// Only "user" maps to SenderUser; every other role is treated as the assistant.
func SenderFromRole(role string) Sender {
	if role == "user" {
		return SenderUser
	}
	return SenderAssistant
}

// MessageStatus tracks the delivery of a message through a dispatch cycle.
type MessageStatus string

const (
	// StatusPending is a user echo whose request is still in flight.
	StatusPending MessageStatus = "pending"
	// StatusDelivered is a message that is final.
	StatusDelivered MessageStatus = "delivered"
	// StatusFailed is a user echo whose request failed.
	StatusFailed MessageStatus = "failed"
)

// Message is one entry of a conversation log.
type Message struct {
	ID        string        `json:"id"`
	Text      string        `json:"text"`
	Sender    Sender        `json:"sender"`
	Timestamp string        `json:"timestamp"` // ISO-8601
	IsWelcome bool          `json:"is_welcome,omitempty"`
	IsError   bool          `json:"is_error,omitempty"`
	Status    MessageStatus `json:"status"`
}
