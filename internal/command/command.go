// Package command holds the declarative command table, the trigger-matching
// dispatcher, and the platform command-menu synchronization.
package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot/models"

	"scopebot/internal/auth"
	"scopebot/internal/scope"
)

// HandlerFunc executes one command. trigger is the literal token that
// matched; args is the message text after the trigger and one separator,
// trimmed. A returned error is normalized into a user-facing reply by the
// dispatcher and never propagates further.
type HandlerFunc func(ctx context.Context, req *scope.Request, trigger, args string) error

// MenuScope is a platform audience class used to decide which commands are
// advertised in a context's command menu.
type MenuScope string

const (
	ScopeAllPrivateChats       MenuScope = "all_private_chats"
	ScopeAllGroupChats         MenuScope = "all_group_chats"
	ScopeAllChatAdministrators MenuScope = "all_chat_administrators"
)

// Command is one entry in the registry.
type Command struct {
	// Trigger is the literal token, e.g. "/new". No spaces allowed.
	Trigger string
	Help    string
	Scopes  []MenuScope
	Policy  auth.Policy
	Handler HandlerFunc
}

// Replier is the outbound message transport boundary. Implementations wrap
// the actual messaging platform; the command layer only ever replies through
// this interface.
type Replier interface {
	SendMessage(ctx context.Context, chat *scope.ChatContext, text string) error
	SendPhoto(ctx context.Context, chat *scope.ChatContext, caption string, data []byte) error

	// SendChatAction is fire-and-forget: it returns immediately and its
	// failure never affects the request outcome.
	SendChatAction(ctx context.Context, chatID int64, action models.ChatAction)
}

// Registry is the fixed mapping from trigger token to command, preserving
// registration order so dispatch is deterministic. It is populated once at
// startup and read-only during dispatch.
type Registry struct {
	ordered   []*Command
	byTrigger map[string]*Command
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byTrigger: make(map[string]*Command)}
}

// Register adds a command. Triggers must be non-empty, contain no spaces,
// and be unique; together with the token-boundary match rule this guarantees
// no two registered triggers can match the same input.
func (r *Registry) Register(cmd *Command) error {
	if cmd == nil || cmd.Handler == nil {
		return fmt.Errorf("command and handler must be non-nil")
	}
	if cmd.Trigger == "" {
		return fmt.Errorf("command trigger must not be empty")
	}
	if strings.ContainsRune(cmd.Trigger, ' ') {
		return fmt.Errorf("command trigger %q must not contain spaces", cmd.Trigger)
	}
	if _, exists := r.byTrigger[cmd.Trigger]; exists {
		return fmt.Errorf("command trigger %q is already registered", cmd.Trigger)
	}
	r.ordered = append(r.ordered, cmd)
	r.byTrigger[cmd.Trigger] = cmd
	return nil
}

// Commands returns all commands in registration order.
func (r *Registry) Commands() []*Command {
	return r.ordered
}

// Match finds the command whose trigger matches text: either the whole text
// equals the trigger, or the text starts with the trigger followed by a
// space. The remainder after the trigger and one separator, trimmed, is
// returned as args.
func (r *Registry) Match(text string) (*Command, string, bool) {
	for _, cmd := range r.ordered {
		if text == cmd.Trigger || strings.HasPrefix(text, cmd.Trigger+" ") {
			args := strings.TrimSpace(strings.TrimPrefix(text, cmd.Trigger))
			return cmd, args, true
		}
	}
	return nil, "", false
}
