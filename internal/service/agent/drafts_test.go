package agent

import "testing"

func TestDraftStore_StageAndTake(t *testing.T) {
	drafts := NewDraftStore()

	if _, ok := drafts.Take("u1"); ok {
		t.Fatal("expected no draft initially")
	}

	drafts.Stage("u1", "draft one")
	got, ok := drafts.Take("u1")
	if !ok || got != "draft one" {
		t.Errorf("Take = %q, %v", got, ok)
	}

	// Take clears the slot
	if _, ok := drafts.Take("u1"); ok {
		t.Error("expected slot cleared after Take")
	}
}

func TestDraftStore_StageOverwrites(t *testing.T) {
	drafts := NewDraftStore()

	drafts.Stage("u1", "first")
	drafts.Stage("u1", "second")

	got, ok := drafts.Take("u1")
	if !ok || got != "second" {
		t.Errorf("expected last write to win, got %q, %v", got, ok)
	}
}

func TestDraftStore_PeekDoesNotClear(t *testing.T) {
	drafts := NewDraftStore()
	drafts.Stage("u1", "pending")

	if got, ok := drafts.Peek("u1"); !ok || got != "pending" {
		t.Errorf("Peek = %q, %v", got, ok)
	}
	if _, ok := drafts.Peek("u1"); !ok {
		t.Error("Peek must not clear the slot")
	}
}

func TestDraftStore_UsersAreIndependent(t *testing.T) {
	drafts := NewDraftStore()
	drafts.Stage("u1", "for u1")
	drafts.Stage("u2", "for u2")

	if got, _ := drafts.Take("u1"); got != "for u1" {
		t.Errorf("u1 draft = %q", got)
	}
	if got, _ := drafts.Take("u2"); got != "for u2" {
		t.Errorf("u2 draft = %q", got)
	}
}
