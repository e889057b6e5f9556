package line

// Webhook is the envelope the platform POSTs to the callback URL.
type Webhook struct {
	Destination string  `json:"destination"`
	Events      []Event `json:"events"`
}

// EventTypeMessage is the only event type this service acts on; every other
// type is a defined no-op.
const EventTypeMessage = "message"

// Event is one platform event, discriminated by Type.
type Event struct {
	Type       string  `json:"type"`
	ReplyToken string  `json:"replyToken,omitempty"`
	Source     Source  `json:"source"`
	Timestamp  int64   `json:"timestamp,omitempty"`
	Message    Message `json:"message,omitempty"`
}

// Source identifies the sender of an event.
type Source struct {
	Type   string `json:"type,omitempty"`
	UserID string `json:"userId,omitempty"`
}

// Message kinds carried inside a message event.
const (
	MessageTypeText  = "text"
	MessageTypeFile  = "file"
	MessageTypeImage = "image"
	MessageTypeVideo = "video"
	MessageTypeAudio = "audio"
)

// Message is the message payload, discriminated by Type. Text is set for
// text messages; ID keys attachment content; FileName is only present on
// file messages.
type Message struct {
	Type     string `json:"type"`
	ID       string `json:"id,omitempty"`
	Text     string `json:"text,omitempty"`
	FileName string `json:"fileName,omitempty"`
}

// HasContent reports whether the message carries downloadable content.
func (m Message) HasContent() bool {
	switch m.Type {
	case MessageTypeFile, MessageTypeImage, MessageTypeVideo, MessageTypeAudio:
		return true
	}
	return false
}
