package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/solarsmart/salesbot/internal/config"
	"github.com/solarsmart/salesbot/internal/core"
	"github.com/solarsmart/salesbot/pkg/log"
	"github.com/solarsmart/salesbot/pkg/retry"
)

// ReviewNotifier is told when a draft has been staged for human review.
// The agent calls DraftStaged on its own goroutine, so a slow notifier
// never delays the turn.
type ReviewNotifier interface {
	DraftStaged(ctx context.Context, userID, draft string)
}

// Agent orchestrates one conversational turn: it builds the augmented
// prompt from memory and retrieved passages, generates a completion, and
// either delivers it or stages it for human approval.
//
// Per user the agent is a two-state machine: Idle (no staged draft) and
// PendingReview (one staged draft). A submit while a draft is pending is
// deliberately allowed and may overwrite the draft; the system never blocks
// customer input on a slow reviewer.
type Agent struct {
	appCfg    *config.AppConfig
	provider  core.CompletionProvider
	retriever core.Retriever
	memory    core.MemoryRepository
	gate      *Gate
	drafts    *DraftStore
	retrier   *retry.Retrier
	notifier  ReviewNotifier

	providerTimeout  time.Duration
	retrieverTimeout time.Duration

	mu    sync.Mutex
	users map[string]*sync.Mutex
}

func NewAgent(
	appCfg *config.AppConfig,
	provider core.CompletionProvider,
	retriever core.Retriever,
	memory core.MemoryRepository,
	gate *Gate,
) *Agent {
	return &Agent{
		appCfg:           appCfg,
		provider:         provider,
		retriever:        retriever,
		memory:           memory,
		gate:             gate,
		drafts:           NewDraftStore(),
		retrier:          retry.NewDefaultRetrier(),
		providerTimeout:  60 * time.Second,
		retrieverTimeout: 15 * time.Second,
		users:            make(map[string]*sync.Mutex),
	}
}

// SetNotifier registers an optional reviewer notification channel.
func (a *Agent) SetNotifier(n ReviewNotifier) {
	a.notifier = n
}

// SetTimeouts overrides the bounds applied to provider and retriever calls.
func (a *Agent) SetTimeouts(provider, retriever time.Duration) {
	if provider > 0 {
		a.providerTimeout = provider
	}
	if retriever > 0 {
		a.retrieverTimeout = retriever
	}
}

// userLock serializes submit/resolve for a single user. Different users
// proceed independently.
func (a *Agent) userLock(userID string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	mu, ok := a.users[userID]
	if !ok {
		mu = &sync.Mutex{}
		a.users[userID] = mu
	}
	return mu
}

// HasPendingDraft reports whether the user is awaiting human review.
func (a *Agent) HasPendingDraft(userID string) bool {
	_, ok := a.drafts.Peek(userID)
	return ok
}

// Submit runs one turn for the user. The returned TurnResult carries either
// the delivered reply, or an empty reply with NeedsHuman set when the
// response was staged for review.
//
// Memory is only written after the completion succeeds: a provider failure
// leaves the log untouched.
func (a *Agent) Submit(ctx context.Context, userID, userMessage string) (core.TurnResult, error) {
	mu := a.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	logger := log.FromCtx(ctx)

	entries, err := a.memory.Read(ctx, userID)
	if err != nil {
		return core.TurnResult{}, fmt.Errorf("failed to read memory: %w", err)
	}

	passages := a.retrieve(ctx, userMessage)

	prompt := buildPrompt(
		memoryContext(entries, a.appCfg.MemoryTokenBudget),
		docsContext(passages),
		userMessage,
	)

	response, err := a.complete(ctx, prompt)
	if err != nil {
		return core.TurnResult{}, err
	}

	if a.gate.RequiresReview(response) {
		// Withhold the response: persist only the user's side of the turn
		// and stage the draft for a human.
		if err := a.memory.Append(ctx, userID, core.UserPrefix+userMessage); err != nil {
			return core.TurnResult{}, fmt.Errorf("failed to save user message: %w", err)
		}
		a.drafts.Stage(userID, response)
		logger.Info().Str("user_id", userID).Msg("response staged for human review")

		if a.notifier != nil {
			// Detached from the request lifetime: the notification must
			// survive the HTTP response and never hold the user lock.
			go a.notifier.DraftStaged(context.WithoutCancel(ctx), userID, response)
		}
		return core.TurnResult{Reply: "", NeedsHuman: true}, nil
	}

	if err := a.memory.Append(ctx, userID, core.UserPrefix+userMessage); err != nil {
		return core.TurnResult{}, fmt.Errorf("failed to save user message: %w", err)
	}
	if err := a.memory.Append(ctx, userID, core.AssistantPrefix+response); err != nil {
		return core.TurnResult{}, fmt.Errorf("failed to save assistant reply: %w", err)
	}

	return core.TurnResult{Reply: response, NeedsHuman: false}, nil
}

// ResolveApprove delivers the staged draft verbatim and persists it.
func (a *Agent) ResolveApprove(ctx context.Context, userID string) (string, error) {
	mu := a.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	draft, ok := a.drafts.Take(userID)
	if !ok {
		return "", core.ErrNoDraft
	}

	if err := a.memory.Append(ctx, userID, core.AssistantPrefix+draft); err != nil {
		// Keep the draft so the reviewer can retry the resolution.
		a.drafts.Stage(userID, draft)
		return "", fmt.Errorf("failed to persist approved reply: %w", err)
	}

	log.FromCtx(ctx).Info().Str("user_id", userID).Msg("draft approved")
	return draft, nil
}

// ResolveReject discards the staged draft and delivers editedText in its
// place. The original draft never reaches the memory log.
func (a *Agent) ResolveReject(ctx context.Context, userID, editedText string) (string, error) {
	if editedText == "" {
		return "", fmt.Errorf("%w: edited reply is required on rejection", core.ErrValidation)
	}

	mu := a.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	draft, ok := a.drafts.Take(userID)
	if !ok {
		return "", core.ErrNoDraft
	}

	if err := a.memory.Append(ctx, userID, core.AssistantPrefix+editedText); err != nil {
		a.drafts.Stage(userID, draft)
		return "", fmt.Errorf("failed to persist edited reply: %w", err)
	}

	log.FromCtx(ctx).Info().Str("user_id", userID).Msg("draft rejected and replaced")
	return editedText, nil
}

// retrieve degrades to an empty document context on any failure; retrieval
// problems never abort a turn.
func (a *Agent) retrieve(ctx context.Context, query string) []core.Passage {
	rctx, cancel := context.WithTimeout(ctx, a.retrieverTimeout)
	defer cancel()

	passages, err := a.retriever.Retrieve(rctx, query)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("retrieval degraded, proceeding without documents")
		return nil
	}
	return passages
}

func (a *Agent) complete(ctx context.Context, prompt string) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, a.providerTimeout)
	defer cancel()

	var response string
	err := a.retrier.Do(cctx, func() error {
		var err error
		response, err = a.provider.Complete(cctx, prompt)
		return err
	})
	if err != nil {
		if !errors.Is(err, core.ErrProvider) {
			// Timeouts and cancellations surface as provider failures too.
			return "", fmt.Errorf("%w: completion failed: %v", core.ErrProvider, err)
		}
		return "", fmt.Errorf("completion failed: %w", err)
	}
	return response, nil
}
