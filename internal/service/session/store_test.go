package session

import (
	"encoding/json"
	"testing"

	"github.com/solarsmart/salesbot/internal/core"
)

func TestStore_InitSeedsGreeting(t *testing.T) {
	store := NewStore()

	userID, messages := store.Init("")
	if userID == "" {
		t.Fatal("expected a generated user id")
	}
	if len(messages) != 1 {
		t.Fatalf("expected 1 seeded message, got %d", len(messages))
	}
	if messages[0].Speaker != core.SpeakerAssistant || messages[0].Text != core.Greeting {
		t.Errorf("seeded message = %+v", messages[0])
	}
}

func TestStore_InitReturnsExistingSession(t *testing.T) {
	store := NewStore()

	userID, _ := store.Init("")
	store.RecordTurn(userID, "hello", core.TurnResult{Reply: "hi"})

	sameID, messages := store.Init(userID)
	if sameID != userID {
		t.Errorf("expected same user id, got %q", sameID)
	}
	if len(messages) != 3 {
		t.Errorf("expected 3 messages, got %d", len(messages))
	}
}

func TestStore_InitUnknownIDAllocatesFresh(t *testing.T) {
	store := NewStore()

	userID, messages := store.Init("never-seen")
	if userID == "never-seen" {
		t.Error("unknown id must not be adopted")
	}
	if len(messages) != 1 {
		t.Errorf("expected greeting only, got %d messages", len(messages))
	}
}

func TestStore_RecordTurn(t *testing.T) {
	store := NewStore()
	userID := store.Ensure("")

	store.RecordTurn(userID, "What do you sell?", core.TurnResult{Reply: "Panels."})
	store.RecordTurn(userID, "How much?", core.TurnResult{NeedsHuman: true})

	messages := store.View(userID)
	if len(messages) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(messages))
	}
	if messages[2].Text != "Panels." {
		t.Errorf("delivered reply = %q", messages[2].Text)
	}
	if messages[4].Text != core.PendingPlaceholder {
		t.Errorf("pending line = %q", messages[4].Text)
	}
}

func TestStore_ResolvePending(t *testing.T) {
	store := NewStore()
	userID := store.Ensure("")
	store.RecordTurn(userID, "How much?", core.TurnResult{NeedsHuman: true})

	store.ResolvePending(userID, "Our quote is $3000 installed.")

	messages := store.View(userID)
	last := messages[len(messages)-1]
	if last.Speaker != core.SpeakerAssistant || last.Text != "Our quote is $3000 installed." {
		t.Errorf("last message = %+v", last)
	}
}

func TestMessage_JSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(Message{Speaker: "Assistant", Text: "hello"})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `["Assistant","hello"]` {
		t.Errorf("marshal = %s", data)
	}

	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if m.Speaker != "Assistant" || m.Text != "hello" {
		t.Errorf("round trip = %+v", m)
	}
}
