package telegram

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/solarsmart/salesbot/internal/config"
	"github.com/solarsmart/salesbot/internal/service/agent"
	"github.com/solarsmart/salesbot/internal/service/session"
	"github.com/solarsmart/salesbot/pkg/conv"
	"github.com/solarsmart/salesbot/pkg/log"
)

const baseContextKey = "base_context"

const maxTelegramMsgLen = 4000 // Safety margin below 4096

// Reviewer is the human-in-the-loop channel. Staged drafts are pushed to the
// configured reviewer chat with an inline Approve button; replying to a
// notification delivers the reply text as the edited answer instead.
type Reviewer struct {
	bot        *tele.Bot
	cfg        *config.TelegramConfig
	agent      *agent.Agent
	sessions   *session.Store
	approveBtn tele.Btn

	mu      sync.Mutex
	pending map[int]string // notification message ID -> user ID
}

func NewReviewer(
	ctx context.Context,
	cfg *config.TelegramConfig,
	agent *agent.Agent,
	sessions *session.Store,
) (*Reviewer, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	markup := &tele.ReplyMarkup{}
	r := &Reviewer{
		bot:        b,
		cfg:        cfg,
		agent:      agent,
		sessions:   sessions,
		approveBtn: markup.Data("Approve", "approve_draft"),
		pending:    make(map[int]string),
	}

	// Use context from Signal with logger
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	// Middleware: Only allow the reviewer
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if c.Sender() == nil || c.Sender().ID != cfg.ReviewerID {
				return nil // Ignore unauthorized users
			}
			return next(c)
		}
	})

	b.Handle(&r.approveBtn, r.handleApprove)
	b.Handle(tele.OnText, r.handleEditedReply)

	return r, nil
}

func (r *Reviewer) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Int64("reviewer_id", r.cfg.ReviewerID).Msg("starting telegram reviewer bot")
	r.bot.Start()
	return nil
}

func (r *Reviewer) Shutdown(ctx context.Context) error {
	r.bot.Stop()
	return nil
}

// DraftStaged pushes a staged draft to the reviewer chat. Delivery failures
// are logged and swallowed; the draft stays staged and remains resolvable
// through the HTTP bridge.
func (r *Reviewer) DraftStaged(ctx context.Context, userID, draft string) {
	logger := log.FromCtx(ctx)
	to := tele.ChatID(r.cfg.ReviewerID)

	header := fmt.Sprintf("Draft for user %s awaits review. Approve below, or reply to this message with an edited answer.", userID)
	headerMsg, err := r.bot.Send(to, header)
	if err != nil {
		logger.Error().Err(err).Str("user_id", userID).Msg("failed to send review header")
		return
	}

	// A reply to the header resolves the draft too, not just one to a chunk.
	r.mu.Lock()
	r.pending[headerMsg.ID] = userID
	r.mu.Unlock()

	html := strings.TrimSpace(conv.MarkdownToTelegramHTML([]byte(draft)))
	chunks := conv.SplitHTML(html, maxTelegramMsgLen)
	for i, chunk := range chunks {
		opts := []interface{}{tele.ModeHTML}
		if i == len(chunks)-1 {
			markup := &tele.ReplyMarkup{}
			btn := r.approveBtn
			btn.Data = userID
			markup.Inline(markup.Row(btn))
			opts = append(opts, markup)
		}

		msg, err := r.bot.Send(to, chunk, opts...)
		if err != nil {
			logger.Error().Err(err).Int("chunk", i).Str("user_id", userID).Msg("failed to send draft chunk")
			return
		}

		r.mu.Lock()
		r.pending[msg.ID] = userID
		r.mu.Unlock()
	}
}

func (r *Reviewer) handleApprove(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	logger := log.FromCtx(ctx)
	userID := strings.TrimSpace(c.Data())

	reply, err := r.agent.ResolveApprove(ctx, userID)
	if err != nil {
		logger.Error().Err(err).Str("user_id", userID).Msg("approve from telegram failed")
		return c.Respond(&tele.CallbackResponse{Text: fmt.Sprintf("error: %v", err)})
	}

	r.sessions.ResolvePending(userID, reply)
	r.forget(userID)
	return c.Respond(&tele.CallbackResponse{Text: "Draft approved and delivered."})
}

// handleEditedReply treats a reply to a draft notification as the edited
// answer for that user's pending draft.
func (r *Reviewer) handleEditedReply(c tele.Context) error {
	replyTo := c.Message().ReplyTo
	if replyTo == nil {
		return nil
	}

	r.mu.Lock()
	userID, ok := r.pending[replyTo.ID]
	r.mu.Unlock()
	if !ok {
		return nil
	}

	ctx := c.Get(baseContextKey).(context.Context)
	logger := log.FromCtx(ctx)

	reply, err := r.agent.ResolveReject(ctx, userID, c.Text())
	if err != nil {
		logger.Error().Err(err).Str("user_id", userID).Msg("edited reply from telegram failed")
		return c.Send(fmt.Sprintf("error: %v", err))
	}

	r.sessions.ResolvePending(userID, reply)
	r.forget(userID)
	return c.Send("Edited reply delivered.")
}

func (r *Reviewer) forget(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, uid := range r.pending {
		if uid == userID {
			delete(r.pending, id)
		}
	}
}
