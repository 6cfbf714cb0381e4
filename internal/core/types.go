package core

import "time"

const (
	AppName       = "SolarSmart"
	AppUserAgent  = "SolarSmart-Agent/0.1"
	RepositoryURL = "https://github.com/solarsmart/salesbot"
	AppVersion    = "0.1.0"
)

const (
	SpeakerUser      = "You"
	SpeakerAssistant = "Assistant"
)

// Memory entries carry the speaker as a prefix label so that the
// concatenated log reads as a transcript inside the prompt.
const (
	UserPrefix      = "User: "
	AssistantPrefix = "Assistant: "
)

const (
	// Greeting seeds the visible history of a fresh session. It is never
	// written to the durable memory log.
	Greeting = "Hello, I am your SolarSmart assistant. Do you need any help with our solar panels or services?"

	// PendingPlaceholder is shown in the session view while a draft awaits review.
	PendingPlaceholder = "Awaiting human approval..."
)

// Entry is one immutable record of a user's memory log.
type Entry struct {
	UserID    string    `json:"user_id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Passage is one retrieved reference snippet from the knowledge base.
type Passage struct {
	ID      string  `json:"id"`
	Content string  `json:"content"`
	Score   float32 `json:"score"`
}

// TurnResult is the outcome of a single conversational turn.
type TurnResult struct {
	Reply      string `json:"reply"`
	NeedsHuman bool   `json:"needs_human"`
}
