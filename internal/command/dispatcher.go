package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"scopebot/internal/auth"
	"scopebot/internal/scope"
)

// Dispatcher routes inbound text to exactly one registered command. Every
// matched path ends in a delivered reply; failures inside authorization or
// handlers are normalized into user-facing messages here and never
// propagate.
type Dispatcher struct {
	registry   *Registry
	authorizer *auth.Authorizer
	replier    Replier
	logger     *slog.Logger
}

// NewDispatcher creates a Dispatcher over the given registry, authorizer,
// and outbound transport.
func NewDispatcher(registry *Registry, authorizer *auth.Authorizer, replier Replier, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Dispatcher{
		registry:   registry,
		authorizer: authorizer,
		replier:    replier,
		logger:     logger.With("component", "dispatcher"),
	}
}

// Dispatch matches the request's message text against the registry. It
// returns false when no trigger matches, letting the caller fall through to
// the chat path. On a match it runs the command's policy and handler and
// always replies, returning true.
func (d *Dispatcher) Dispatch(ctx context.Context, req *scope.Request) bool {
	cmd, args, ok := d.registry.Match(req.Message.Text)
	if !ok {
		return false
	}

	log := d.logger.With("trigger", cmd.Trigger, "chat_id", req.Share.ChatID, "speaker_id", req.Share.SpeakerID)

	if err := d.authorizer.Authorize(ctx, req, cmd.Policy); err != nil {
		log.WarnContext(ctx, "Command authorization failed", "error", err)
		d.reply(ctx, req, authFailureText(err))
		return true
	}

	if err := cmd.Handler(ctx, req, cmd.Trigger, args); err != nil {
		log.ErrorContext(ctx, "Command handler failed", "error", err)
		d.reply(ctx, req, fmt.Sprintf("Command execution error: %s", err))
		return true
	}

	log.DebugContext(ctx, "Command handled")
	return true
}

// authFailureText converts an authorization error into the user-facing
// denial message.
func authFailureText(err error) string {
	var insufficient *auth.InsufficientRoleError
	switch {
	case errors.As(err, &insufficient):
		return insufficient.Error()
	case errors.Is(err, auth.ErrIdentityUnresolved):
		return "Identity verification failed, please try again later."
	default:
		return fmt.Sprintf("Authorization error: %s", err)
	}
}

func (d *Dispatcher) reply(ctx context.Context, req *scope.Request, text string) {
	if err := d.replier.SendMessage(ctx, &req.Chat, text); err != nil {
		d.logger.ErrorContext(ctx, "Failed to send reply", "chat_id", req.Chat.ChatID, "error", err)
	}
}
