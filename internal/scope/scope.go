// Package scope derives the per-request conversation namespace: the storage
// keys, chat metadata, and speaker identity every other component keys off.
package scope

import (
	"errors"
	"fmt"

	"github.com/go-telegram/bot/models"

	"scopebot/internal/userconfig"
)

// ErrMissingChatID is returned when an inbound message carries no chat id.
// The request cannot be scoped to any namespace and must be dropped without
// a reply, since no destination is known.
var ErrMissingChatID = errors.New("chat id not found in message")

// BotIdentity identifies the deployed bot handling a request. Populated once
// at startup and read-only afterwards.
type BotIdentity struct {
	ID    int64
	Token string
	Name  string
}

// ChatContext carries the reply destination for the current request.
// Handlers may adjust RenderMode for a single reply (e.g. switch to HTML);
// nothing outside the request ever sees the change.
type ChatContext struct {
	ChatID int64

	// ReplyTo is the inbound message id to quote, set only in group chats
	// so replies stay threaded. Zero means reply unthreaded.
	ReplyTo int

	RenderMode models.ParseMode
}

// ShareContext is the derived namespace for persisted state. All keys are
// deterministic: identical (bot, chat kind, chat, speaker, share mode)
// inputs always derive identical keys, and any difference in those inputs
// derives different keys.
type ShareContext struct {
	BotID int64

	HistoryKey    string
	ConfigKey     string
	GroupAdminKey string // empty outside group chats
	UsageKey      string

	ChatKind  string
	ChatID    int64
	SpeakerID int64
}

// Request bundles everything derived from one inbound message. It is created
// at the start of handling and discarded at the end; it is never shared
// across requests.
type Request struct {
	Bot     BotIdentity
	Chat    ChatContext
	Share   ShareContext
	Message *models.Message

	// Config is attached by the pipeline after the namespace is resolved,
	// before dispatch.
	Config *userconfig.Config
}

// IsGroupKind reports whether the chat kind is a group-like conversation.
func IsGroupKind(kind string) bool {
	return kind == "group" || kind == "supergroup"
}

// Resolve derives the request context from an inbound message, the active
// bot identity, and the bot-wide share-mode flag.
//
// Key layout:
//
//	history:{chatID}[:{botID}][:{speakerID}]
//	user_config:{chatID}[:{botID}][:{speakerID}]
//	group_admin:{chatID}          (group kinds only)
//	usage:{botID}
//
// The speaker suffix is appended only in group kinds with share mode off,
// giving each member an isolated namespace; with share mode on the whole
// group shares one.
func Resolve(msg *models.Message, ident BotIdentity, shareMode bool) (*Request, error) {
	if msg == nil || msg.Chat.ID == 0 {
		return nil, ErrMissingChatID
	}

	chatID := msg.Chat.ID
	kind := string(msg.Chat.Type)
	group := IsGroupKind(kind)

	historyKey := fmt.Sprintf("history:%d", chatID)
	configKey := fmt.Sprintf("user_config:%d", chatID)
	if ident.ID != 0 {
		historyKey += fmt.Sprintf(":%d", ident.ID)
		configKey += fmt.Sprintf(":%d", ident.ID)
	}

	groupAdminKey := ""
	if group {
		if !shareMode && msg.From != nil && msg.From.ID != 0 {
			historyKey += fmt.Sprintf(":%d", msg.From.ID)
			configKey += fmt.Sprintf(":%d", msg.From.ID)
		}
		groupAdminKey = fmt.Sprintf("group_admin:%d", chatID)
	}

	speakerID := chatID
	if msg.From != nil && msg.From.ID != 0 {
		speakerID = msg.From.ID
	}

	replyTo := 0
	if group {
		replyTo = msg.ID
	}

	return &Request{
		Bot: ident,
		Chat: ChatContext{
			ChatID:     chatID,
			ReplyTo:    replyTo,
			RenderMode: models.ParseModeMarkdown,
		},
		Share: ShareContext{
			BotID:         ident.ID,
			HistoryKey:    historyKey,
			ConfigKey:     configKey,
			GroupAdminKey: groupAdminKey,
			UsageKey:      fmt.Sprintf("usage:%d", ident.ID),
			ChatKind:      kind,
			ChatID:        chatID,
			SpeakerID:     speakerID,
		},
		Message: msg,
	}, nil
}
