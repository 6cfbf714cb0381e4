package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/solarsmart/salesbot/internal/config"
	"github.com/solarsmart/salesbot/internal/core"
)

type fakeMemory struct {
	mu         sync.Mutex
	logs       map[string][]core.Entry
	failAppend bool
}

func newFakeMemory() *fakeMemory {
	return &fakeMemory{logs: make(map[string][]core.Entry)}
}

func (m *fakeMemory) Append(_ context.Context, userID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAppend {
		return fmt.Errorf("%w: disk full", core.ErrStorage)
	}
	m.logs[userID] = append(m.logs[userID], core.Entry{
		UserID:    userID,
		Text:      text,
		Timestamp: time.Now(),
	})
	return nil
}

func (m *fakeMemory) Read(_ context.Context, userID string) ([]core.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.Entry(nil), m.logs[userID]...), nil
}

func (m *fakeMemory) texts(userID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.logs[userID]))
	for _, e := range m.logs[userID] {
		out = append(out, e.Text)
	}
	return out
}

type fakeProvider struct {
	mu         sync.Mutex
	response   string
	err        error
	lastPrompt string
}

func (p *fakeProvider) Complete(_ context.Context, prompt string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastPrompt = prompt
	if p.err != nil {
		return "", p.err
	}
	return p.response, nil
}

type fakeRetriever struct {
	passages []core.Passage
	err      error
}

func (r *fakeRetriever) Retrieve(_ context.Context, _ string) ([]core.Passage, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.passages, nil
}

func newTestAgent(memory core.MemoryRepository, provider core.CompletionProvider, retriever core.Retriever) *Agent {
	appCfg := &config.AppConfig{MemoryTokenBudget: 0}
	return NewAgent(appCfg, provider, retriever, memory, newTestGate())
}

func TestSubmit_NormalTurn(t *testing.T) {
	memory := newFakeMemory()
	provider := &fakeProvider{response: "We offer monocrystalline panels."}
	retriever := &fakeRetriever{passages: []core.Passage{{Content: "Monocrystalline panels have the highest efficiency."}}}
	ag := newTestAgent(memory, provider, retriever)

	result, err := ag.Submit(context.Background(), "u1", "What panels do you sell?")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if result.Reply != "We offer monocrystalline panels." || result.NeedsHuman {
		t.Errorf("unexpected result: %+v", result)
	}

	texts := memory.texts("u1")
	want := []string{
		"User: What panels do you sell?",
		"Assistant: We offer monocrystalline panels.",
	}
	if len(texts) != 2 || texts[0] != want[0] || texts[1] != want[1] {
		t.Errorf("memory = %v, want %v", texts, want)
	}
}

func TestSubmit_PromptSections(t *testing.T) {
	memory := newFakeMemory()
	memory.Append(context.Background(), "u1", "User: earlier question")
	provider := &fakeProvider{response: "ok"}
	retriever := &fakeRetriever{passages: []core.Passage{{Content: "passage one"}, {Content: "passage two"}}}
	ag := newTestAgent(memory, provider, retriever)

	if _, err := ag.Submit(context.Background(), "u1", "follow-up"); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	prompt := provider.lastPrompt
	for _, section := range []string{
		"Memory:\nUser: earlier question",
		"Documents:\npassage one\n---\npassage two",
		"User: follow-up\nAssistant:",
	} {
		if !strings.Contains(prompt, section) {
			t.Errorf("prompt missing %q:\n%s", section, prompt)
		}
	}
}

func TestSubmit_FlaggedTurn(t *testing.T) {
	memory := newFakeMemory()
	provider := &fakeProvider{response: "Our quote is $3000 installed."}
	ag := newTestAgent(memory, provider, &fakeRetriever{})

	result, err := ag.Submit(context.Background(), "u1", "How much would it be?")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if result.Reply != "" || !result.NeedsHuman {
		t.Errorf("unexpected result: %+v", result)
	}

	// Only the user message is persisted; the reply is withheld.
	texts := memory.texts("u1")
	if len(texts) != 1 || texts[0] != "User: How much would it be?" {
		t.Errorf("memory = %v", texts)
	}

	draft, ok := ag.drafts.Peek("u1")
	if !ok || draft != "Our quote is $3000 installed." {
		t.Errorf("draft = %q, %v", draft, ok)
	}
	if !ag.HasPendingDraft("u1") {
		t.Error("expected pending draft")
	}
}

func TestResolveApprove(t *testing.T) {
	memory := newFakeMemory()
	provider := &fakeProvider{response: "Our quote is $3000 installed."}
	ag := newTestAgent(memory, provider, &fakeRetriever{})
	ctx := context.Background()

	if _, err := ag.Submit(ctx, "u1", "How much would it be?"); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	reply, err := ag.ResolveApprove(ctx, "u1")
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if reply != "Our quote is $3000 installed." {
		t.Errorf("reply = %q", reply)
	}

	texts := memory.texts("u1")
	if len(texts) != 2 || texts[1] != "Assistant: Our quote is $3000 installed." {
		t.Errorf("memory = %v", texts)
	}
	if ag.HasPendingDraft("u1") {
		t.Error("draft should be cleared after approval")
	}

	// Approving twice is an error: the slot was consumed.
	if _, err := ag.ResolveApprove(ctx, "u1"); !errors.Is(err, core.ErrNoDraft) {
		t.Errorf("expected ErrNoDraft, got %v", err)
	}
}

func TestResolveReject(t *testing.T) {
	memory := newFakeMemory()
	provider := &fakeProvider{response: "Our quote is $3000 installed."}
	ag := newTestAgent(memory, provider, &fakeRetriever{})
	ctx := context.Background()

	if _, err := ag.Submit(ctx, "u1", "How much would it be?"); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	reply, err := ag.ResolveReject(ctx, "u1", "Contact sales for pricing.")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if reply != "Contact sales for pricing." {
		t.Errorf("reply = %q", reply)
	}

	for _, text := range memory.texts("u1") {
		if strings.Contains(text, "$3000") {
			t.Errorf("original draft leaked into memory: %q", text)
		}
	}
	texts := memory.texts("u1")
	if texts[len(texts)-1] != "Assistant: Contact sales for pricing." {
		t.Errorf("memory = %v", texts)
	}
}

func TestResolveReject_RequiresEditedText(t *testing.T) {
	ag := newTestAgent(newFakeMemory(), &fakeProvider{}, &fakeRetriever{})

	_, err := ag.ResolveReject(context.Background(), "u1", "")
	if !errors.Is(err, core.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestResolve_NoDraft(t *testing.T) {
	ag := newTestAgent(newFakeMemory(), &fakeProvider{}, &fakeRetriever{})

	if _, err := ag.ResolveApprove(context.Background(), "u1"); !errors.Is(err, core.ErrNoDraft) {
		t.Errorf("expected ErrNoDraft, got %v", err)
	}
	if _, err := ag.ResolveReject(context.Background(), "u1", "edited"); !errors.Is(err, core.ErrNoDraft) {
		t.Errorf("expected ErrNoDraft, got %v", err)
	}
}

func TestSubmit_ProviderFailureLeavesMemoryUntouched(t *testing.T) {
	memory := newFakeMemory()
	provider := &fakeProvider{err: fmt.Errorf("%w: upstream down", core.ErrProvider)}
	ag := newTestAgent(memory, provider, &fakeRetriever{})

	_, err := ag.Submit(context.Background(), "u1", "hello")
	if !errors.Is(err, core.ErrProvider) {
		t.Fatalf("expected ErrProvider, got %v", err)
	}
	if texts := memory.texts("u1"); len(texts) != 0 {
		t.Errorf("memory should be untouched, got %v", texts)
	}
}

func TestSubmit_RetrievalFailureDegrades(t *testing.T) {
	memory := newFakeMemory()
	provider := &fakeProvider{response: "Happy to help."}
	retriever := &fakeRetriever{err: errors.New("index offline")}
	ag := newTestAgent(memory, provider, retriever)

	result, err := ag.Submit(context.Background(), "u1", "hello")
	if err != nil {
		t.Fatalf("turn must survive retrieval failure: %v", err)
	}
	if result.Reply != "Happy to help." {
		t.Errorf("reply = %q", result.Reply)
	}
	if !strings.Contains(provider.lastPrompt, "Documents:\n\nUser:") {
		t.Errorf("expected empty documents section, got:\n%s", provider.lastPrompt)
	}
}

func TestSubmit_OverwritesPendingDraft(t *testing.T) {
	memory := newFakeMemory()
	provider := &fakeProvider{response: "First quote: $100."}
	ag := newTestAgent(memory, provider, &fakeRetriever{})
	ctx := context.Background()

	if _, err := ag.Submit(ctx, "u1", "price?"); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	provider.response = "Second quote: $200."
	if _, err := ag.Submit(ctx, "u1", "and now?"); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	draft, _ := ag.drafts.Peek("u1")
	if draft != "Second quote: $200." {
		t.Errorf("expected the newer draft, got %q", draft)
	}
}

func TestSubmit_ConcurrentUsersDoNotInterfere(t *testing.T) {
	memory := newFakeMemory()
	provider := &fakeProvider{response: "Sure."}
	ag := newTestAgent(memory, provider, &fakeRetriever{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			userID := fmt.Sprintf("user-%d", i)
			for j := 0; j < 5; j++ {
				if _, err := ag.Submit(context.Background(), userID, fmt.Sprintf("msg %d", j)); err != nil {
					t.Errorf("submit failed for %s: %v", userID, err)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 8; i++ {
		userID := fmt.Sprintf("user-%d", i)
		texts := memory.texts(userID)
		if len(texts) != 10 {
			t.Errorf("%s has %d entries, want 10", userID, len(texts))
			continue
		}
		for _, text := range texts {
			if strings.HasPrefix(text, "User: ") {
				continue
			}
			if text != "Assistant: Sure." {
				t.Errorf("%s has foreign entry %q", userID, text)
			}
		}
	}
}

type recordingNotifier struct {
	mu     sync.Mutex
	userID string
	draft  string
	done   chan struct{}
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{done: make(chan struct{}, 1)}
}

func (n *recordingNotifier) DraftStaged(_ context.Context, userID, draft string) {
	n.mu.Lock()
	n.userID = userID
	n.draft = draft
	n.mu.Unlock()
	n.done <- struct{}{}
}

func (n *recordingNotifier) recorded() (string, string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.userID, n.draft
}

func TestSubmit_NotifiesReviewer(t *testing.T) {
	memory := newFakeMemory()
	provider := &fakeProvider{response: "The contract runs 20 years."}
	ag := newTestAgent(memory, provider, &fakeRetriever{})

	notifier := newRecordingNotifier()
	ag.SetNotifier(notifier)

	if _, err := ag.Submit(context.Background(), "u1", "terms?"); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	select {
	case <-notifier.done:
	case <-time.After(2 * time.Second):
		t.Fatal("notifier was never called")
	}
	userID, draft := notifier.recorded()
	if userID != "u1" || draft != "The contract runs 20 years." {
		t.Errorf("notifier got %q / %q", userID, draft)
	}
}

// stallingNotifier blocks inside DraftStaged until released.
type stallingNotifier struct {
	entered chan struct{}
	release chan struct{}
}

func newStallingNotifier() *stallingNotifier {
	return &stallingNotifier{
		entered: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
}

func (n *stallingNotifier) DraftStaged(_ context.Context, _, _ string) {
	n.entered <- struct{}{}
	<-n.release
}

func TestSubmit_SlowNotifierDoesNotDelayTurn(t *testing.T) {
	memory := newFakeMemory()
	provider := &fakeProvider{response: "The price is $500."}
	ag := newTestAgent(memory, provider, &fakeRetriever{})

	notifier := newStallingNotifier()
	defer close(notifier.release)
	ag.SetNotifier(notifier)

	// The first submit must return while the notifier is still stalled.
	result, err := ag.Submit(context.Background(), "u1", "price?")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if !result.NeedsHuman {
		t.Fatal("expected the turn to be staged for review")
	}

	select {
	case <-notifier.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("notifier was never called")
	}

	// A second same-user turn must not queue behind the stalled notifier.
	second := make(chan error, 1)
	go func() {
		_, err := ag.Submit(context.Background(), "u1", "what does a quote include?")
		second <- err
	}()
	select {
	case err := <-second:
		if err != nil {
			t.Fatalf("second submit failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("second submit blocked behind the stalled notifier")
	}
}
