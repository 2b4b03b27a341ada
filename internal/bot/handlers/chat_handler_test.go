package handlers_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/go-telegram/bot/models"

	"scopebot/internal/ai"
	"scopebot/internal/auth"
	"scopebot/internal/bot/handlers"
	"scopebot/internal/command"
	"scopebot/internal/scope"
)

type fakeAI struct {
	calls    int
	lastTurn string
	reply    string
}

func (f *fakeAI) GenerateReply(_ context.Context, req ai.ChatRequest) (string, int, error) {
	f.calls++
	if len(req.Turns) > 0 {
		f.lastTurn = req.Turns[len(req.Turns)-1].Content
	}
	return f.reply, 7, nil
}

func (f *fakeAI) GenerateImage(context.Context, string) ([]byte, error) {
	return nil, nil
}

type memberResolver struct{}

func (memberResolver) ResolveRole(context.Context, *scope.Request) (auth.Role, error) {
	return auth.RoleMember, nil
}

func newChatFixture(t *testing.T) (*fixture, *fakeAI, func(ctx context.Context, text string)) {
	t.Helper()

	fx := newFixture(t)
	client := &fakeAI{reply: "Ahoy."}
	fx.deps.AI = client

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	dispatcher := command.NewDispatcher(
		command.NewRegistry(),
		auth.NewAuthorizer(memberResolver{}, false, log),
		fx.replier,
		log,
	)
	handler := handlers.NewChatHandler(fx.deps, dispatcher, scope.BotIdentity{ID: 777, Name: "scopebot"})

	send := func(ctx context.Context, text string) {
		handler(ctx, nil, &models.Update{Message: &models.Message{
			ID:   5,
			Text: text,
			Chat: models.Chat{ID: -1, Type: "group"},
			From: &models.User{ID: 2},
		}})
	}
	return fx, client, send
}

func TestChatHandler_GroupRequiresMention(t *testing.T) {
	t.Parallel()

	fx, client, send := newChatFixture(t)
	ctx := context.Background()

	// No mention at all.
	send(ctx, "hello there")
	// A longer username sharing the prefix is not a mention.
	send(ctx, "@scopebotx hello")

	if client.calls != 0 {
		t.Errorf("AI calls = %d, want 0", client.calls)
	}
	if len(fx.replier.messages) != 0 {
		t.Errorf("replies = %v, want none", fx.replier.messages)
	}
}

func TestChatHandler_MentionedGroupMessageAnswers(t *testing.T) {
	t.Parallel()

	fx, client, send := newChatFixture(t)
	ctx := context.Background()

	send(ctx, "@scopebot hello")

	if client.calls != 1 {
		t.Fatalf("AI calls = %d, want 1", client.calls)
	}
	if client.lastTurn != "hello" {
		t.Errorf("user turn = %q, want %q", client.lastTurn, "hello")
	}
	if got := fx.replier.last(); got != "Ahoy." {
		t.Errorf("reply = %q, want %q", got, "Ahoy.")
	}

	// The transcript lands in the speaker-scoped namespace.
	turns := fx.deps.Histories.Load(ctx, "history:-1:777:2")
	if len(turns) != 2 {
		t.Fatalf("saved turns = %d, want 2", len(turns))
	}
	if turns[1].Content != "Ahoy." {
		t.Errorf("assistant turn = %q, want %q", turns[1].Content, "Ahoy.")
	}
}

func TestChatHandler_MentionInsideWordInPunctuationCounts(t *testing.T) {
	t.Parallel()

	_, client, send := newChatFixture(t)
	ctx := context.Background()

	// Punctuation after the mention is a valid token boundary.
	send(ctx, "@scopebot, hello")

	if client.calls != 1 {
		t.Fatalf("AI calls = %d, want 1", client.calls)
	}
	if client.lastTurn != ", hello" {
		t.Errorf("user turn = %q, want %q", client.lastTurn, ", hello")
	}
}
