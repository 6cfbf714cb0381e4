package agent

import "sync"

// DraftStore holds at most one staged response per user. Staging overwrites
// any unresolved draft (last write wins); taking a draft clears the slot so
// a resolution cannot be applied twice.
type DraftStore struct {
	mu     sync.Mutex
	drafts map[string]string
}

func NewDraftStore() *DraftStore {
	return &DraftStore{drafts: make(map[string]string)}
}

func (d *DraftStore) Stage(userID, text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.drafts[userID] = text
}

// Take returns the staged draft and clears the slot.
func (d *DraftStore) Take(userID string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	text, ok := d.drafts[userID]
	if ok {
		delete(d.drafts, userID)
	}
	return text, ok
}

// Peek returns the staged draft without clearing it.
func (d *DraftStore) Peek(userID string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	text, ok := d.drafts[userID]
	return text, ok
}
