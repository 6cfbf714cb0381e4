package session

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/solarsmart/salesbot/internal/core"
)

// Message is one visible line of a session. It serializes as a
// two-element array, matching the (speaker, text) pairs the widget expects.
type Message struct {
	Speaker string
	Text    string
}

func (m Message) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{m.Speaker, m.Text})
}

func (m *Message) UnmarshalJSON(data []byte) error {
	var pair [2]string
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("session message must be a [speaker, text] pair: %w", err)
	}
	m.Speaker = pair[0]
	m.Text = pair[1]
	return nil
}

// Store keeps the transient per-user session views. A view is what the chat
// widget renders: the visible transcript plus the awaiting-approval
// placeholder while a draft is pending. Views are seeded with the fixed
// greeting, which never reaches durable memory.
type Store struct {
	mu       sync.RWMutex
	sessions map[string][]Message
}

func NewStore() *Store {
	return &Store{sessions: make(map[string][]Message)}
}

// Init returns the existing view for userID, or allocates a fresh user with
// a greeting-seeded view when userID is empty or unknown.
func (s *Store) Init(userID string) (string, []Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if userID != "" {
		if messages, ok := s.sessions[userID]; ok {
			return userID, append([]Message(nil), messages...)
		}
	}

	newID := uuid.NewString()
	s.sessions[newID] = []Message{{Speaker: core.SpeakerAssistant, Text: core.Greeting}}
	return newID, append([]Message(nil), s.sessions[newID]...)
}

// Ensure guarantees a session exists for userID, seeding it when needed,
// and returns the effective user ID (a fresh one when userID is empty).
func (s *Store) Ensure(userID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if userID == "" {
		userID = uuid.NewString()
	}
	if _, ok := s.sessions[userID]; !ok {
		s.sessions[userID] = []Message{{Speaker: core.SpeakerAssistant, Text: core.Greeting}}
	}
	return userID
}

// Exists reports whether a session view is present for userID.
func (s *Store) Exists(userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[userID]
	return ok
}

// RecordTurn appends the user's message and the assistant's visible line:
// the reply when it was delivered, the pending placeholder when it awaits
// review.
func (s *Store) RecordTurn(userID, userMessage string, result core.TurnResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[userID] = append(s.sessions[userID], Message{Speaker: core.SpeakerUser, Text: userMessage})

	visible := result.Reply
	if result.NeedsHuman {
		visible = core.PendingPlaceholder
	}
	s.sessions[userID] = append(s.sessions[userID], Message{Speaker: core.SpeakerAssistant, Text: visible})
}

// ResolvePending replaces the most recent assistant line with the delivered
// reply after a draft is resolved.
func (s *Store) ResolvePending(userID, reply string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages := s.sessions[userID]
	if len(messages) == 0 {
		return
	}
	if last := &messages[len(messages)-1]; last.Speaker == core.SpeakerAssistant {
		last.Text = reply
	}
}

// View returns a copy of the current session view.
func (s *Store) View(userID string) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Message(nil), s.sessions[userID]...)
}
