// Package chatbot implements the per-turn orchestration of the widget
// backend: persistence sequencing, the escalation state machine and the
// completion call.
package chatbot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/barekit/concierge/pkg/escalation"
	"github.com/barekit/concierge/pkg/llm"
	"github.com/barekit/concierge/pkg/notify"
	"github.com/barekit/concierge/pkg/prompt"
	"github.com/barekit/concierge/pkg/store"
)

// State is the escalation state of a conversation, derived each turn from
// the last persisted assistant message.
type State int

const (
	// StateFresh means no handoff offer is pending.
	StateFresh State = iota
	// StateAwaitingConfirmation means the last assistant message offered a
	// handoff and the next user turn is read as a confirmation candidate.
	StateAwaitingConfirmation
)

// TurnRequest is one incoming widget message with its optional context.
type TurnRequest struct {
	Message        string
	ConversationID string
	PageContent    string
}

// TurnResult is the outcome of a completed turn.
type TurnResult struct {
	Reply          string
	ConversationID string
	NeedsHuman     bool
}

// CompletionError wraps a completion-service failure. The conversation id is
// carried so the caller can retry within the same thread.
type CompletionError struct {
	ConversationID string
	Err            error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("completion failed for conversation %s: %v", e.ConversationID, e.Err)
}

func (e *CompletionError) Unwrap() error {
	return e.Err
}

// Chatbot runs the turn state machine. All collaborators are injected.
type Chatbot struct {
	store    store.Store
	provider llm.Provider
	detector *escalation.Detector
	notifier notify.Notifier
	replies  Replies
	debug    bool
}

// Option is a function that configures a Chatbot.
type Option func(*Chatbot)

// New creates a new Chatbot.
func New(st store.Store, provider llm.Provider, opts ...Option) *Chatbot {
	b := &Chatbot{
		store:    st,
		provider: provider,
		detector: escalation.NewDetector(escalation.English()),
		notifier: notify.Noop{},
		replies:  EnglishReplies(),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// WithDetector sets the escalation detector.
func WithDetector(d *escalation.Detector) Option {
	return func(b *Chatbot) {
		b.detector = d
	}
}

// WithNotifier sets the escalation notifier.
func WithNotifier(n notify.Notifier) Option {
	return func(b *Chatbot) {
		b.notifier = n
	}
}

// WithReplies sets the canned handoff replies.
func WithReplies(r Replies) Option {
	return func(b *Chatbot) {
		b.replies = r
	}
}

// WithLocale selects the built-in vocabulary and replies for a locale.
func WithLocale(locale string) Option {
	return func(b *Chatbot) {
		b.detector = escalation.NewDetector(escalation.ForLocale(locale))
		b.replies = RepliesForLocale(locale)
	}
}

// WithDebug enables debug logging.
func WithDebug(enable bool) Option {
	return func(b *Chatbot) {
		b.debug = enable
	}
}

// stateOf derives the conversation state from the last assistant message.
// Only the canned handoff proposal carries the offer marker.
func (b *Chatbot) stateOf(last *store.Message) State {
	if last != nil && strings.Contains(last.Content, b.replies.OfferMarker) {
		return StateAwaitingConfirmation
	}
	return StateFresh
}

// HandleTurn runs one complete request/response cycle.
//
// Ordering is significant: a pending confirmation is checked before the
// generic human-request match, so a bare "yes" in the awaiting state is never
// re-routed; an explicit human request is answered before the completion
// provider is ever called.
func (b *Chatbot) HandleTurn(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	conv, created, err := b.store.GetOrCreate(ctx, req.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve conversation: %w", err)
	}
	if b.debug {
		slog.Info("turn started", "conversation_id", conv.ID, "new_conversation", created)
	}

	last, err := b.store.LastAssistantMessage(ctx, conv.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read conversation state: %w", err)
	}
	state := b.stateOf(last)

	if _, err := b.store.AppendMessage(ctx, conv.ID, llm.RoleUser, req.Message); err != nil {
		return nil, fmt.Errorf("failed to persist user message: %w", err)
	}

	if state == StateAwaitingConfirmation && b.detector.IsAffirmativeConfirmation(req.Message) {
		b.notifyEscalation(ctx, conv.ID, req.Message)
		return b.finishTurn(ctx, conv.ID, b.replies.HumanConfirmed, true)
	}

	if b.detector.IsExplicitHumanRequest(req.Message) {
		return b.finishTurn(ctx, conv.ID, b.replies.HumanProposal, true)
	}

	history, err := b.store.History(ctx, conv.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	payload := prompt.Build(req.PageContent, history)
	response, err := b.provider.Chat(ctx, payload)
	if err != nil {
		// The user message persisted above stays stored; the client can
		// retry in the same thread with the returned conversation id.
		return nil, &CompletionError{ConversationID: conv.ID, Err: err}
	}

	reply := response.Content
	needsHuman := false
	if b.detector.IndicatesMissingInformation(reply) {
		reply = b.replies.HumanProposal
		needsHuman = true
	}

	return b.finishTurn(ctx, conv.ID, reply, needsHuman)
}

// finishTurn persists the assistant reply and builds the result.
func (b *Chatbot) finishTurn(ctx context.Context, conversationID, reply string, needsHuman bool) (*TurnResult, error) {
	if _, err := b.store.AppendMessage(ctx, conversationID, llm.RoleAssistant, reply); err != nil {
		return nil, fmt.Errorf("failed to persist assistant message: %w", err)
	}

	return &TurnResult{
		Reply:          reply,
		ConversationID: conversationID,
		NeedsHuman:     needsHuman,
	}, nil
}

// notifyEscalation sends the escalation alert. Failures are logged and never
// reach the reply path.
func (b *Chatbot) notifyEscalation(ctx context.Context, conversationID, visitorMessage string) {
	esc := notify.Escalation{
		ConversationID: conversationID,
		VisitorMessage: visitorMessage,
		RequestedAt:    time.Now(),
	}
	if err := b.notifier.Send(ctx, esc); err != nil {
		slog.Error("escalation notification failed", "error", err, "conversation_id", conversationID)
	}
}
