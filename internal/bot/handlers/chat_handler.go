package handlers

import (
	"context"
	"log/slog"
	"strings"
	"unicode"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"scopebot/internal/ai"
	"scopebot/internal/command"
	"scopebot/internal/history"
	"scopebot/internal/scope"
)

// NewChatHandler returns the default handler for all inbound text. It
// resolves the request's namespace, loads the conversation configuration,
// offers the text to the command dispatcher, and falls through to the AI
// chat path when no command matches.
func NewChatHandler(deps HandlerDeps, dispatcher *command.Dispatcher, ident scope.BotIdentity) bot.HandlerFunc {
	return chatHandler{deps: deps, dispatcher: dispatcher, ident: ident}.Handle
}

type chatHandler struct {
	deps       HandlerDeps
	dispatcher *command.Dispatcher
	ident      scope.BotIdentity
}

func (h chatHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "chat")

	msg := update.Message
	if msg == nil || msg.Text == "" {
		return
	}

	req, err := scope.Resolve(msg, h.ident, h.deps.Config.Bot.GroupShareMode)
	if err != nil {
		// Without a chat id there is no reply destination.
		log.WarnContext(ctx, "Dropping unresolvable message", "update_id", update.ID, "error", err)
		return
	}
	req.Config = h.deps.Configs.Load(ctx, req.Share.ConfigKey)

	if h.dispatcher.Dispatch(ctx, req) {
		return
	}

	h.chat(ctx, req, log)
}

// chat runs the non-command fall-through: mention gating in groups, then one
// AI turn over the stored transcript.
func (h chatHandler) chat(ctx context.Context, req *scope.Request, log *slog.Logger) {
	text := req.Message.Text

	if scope.IsGroupKind(req.Share.ChatKind) {
		stripped, mentioned := stripMention(text, h.ident.Name)
		if !mentioned {
			log.DebugContext(ctx, "Ignoring group message without mention", "chat_id", req.Share.ChatID)
			return
		}
		text = stripped
	}

	if text == "" {
		h.reply(ctx, req, "What can I do for you?", log)
		return
	}

	log.InfoContext(ctx, "Handling chat message", "chat_id", req.Share.ChatID, "speaker_id", req.Share.SpeakerID)

	h.deps.Replier.SendChatAction(ctx, req.Chat.ChatID, models.ChatActionTyping)

	entries := h.deps.Histories.Load(ctx, req.Share.HistoryKey)
	if req.Config.AutoTrimHistory {
		entries = history.Trim(entries, h.deps.Config.Bot.MaxHistoryLength)
	}

	initMessage, extraParams := h.resolvePersona(req)

	turns := append(entries, history.Entry{Role: history.RoleUser, Content: text})
	reply, tokens, err := h.deps.AI.GenerateReply(ctx, ai.ChatRequest{
		InitMessage: initMessage,
		Model:       req.Config.Model,
		Temperature: req.Config.Temperature,
		ExtraParams: extraParams,
		Turns:       turns,
	})
	if err != nil {
		log.ErrorContext(ctx, "Chat completion failed", "chat_id", req.Share.ChatID, "error", err)
		h.reply(ctx, req, "Sorry, I could not process your message. Please try again later.", log)
		return
	}

	turns = append(turns, history.Entry{Role: history.RoleAssistant, Content: reply})
	if req.Config.AutoTrimHistory {
		turns = history.Trim(turns, h.deps.Config.Bot.MaxHistoryLength)
	}
	if err := h.deps.Histories.Save(ctx, req.Share.HistoryKey, turns); err != nil {
		log.ErrorContext(ctx, "Failed to save history", "key", req.Share.HistoryKey, "error", err)
	}

	if h.deps.Config.Bot.EnableUsageStats {
		if err := h.deps.Usage.Record(ctx, req.Share.UsageKey, req.Share.ChatID, tokens); err != nil {
			log.WarnContext(ctx, "Failed to record usage", "key", req.Share.UsageKey, "error", err)
		}
	}

	h.reply(ctx, req, reply, log)
}

// stripMention removes @username occurrences from the text and reports
// whether any were present. A match must end at a token boundary, so a
// longer username sharing the prefix does not count as a mention.
func stripMention(text, username string) (string, bool) {
	if username == "" {
		return text, false
	}
	mention := "@" + username

	var b strings.Builder
	found := false
	for i := 0; i < len(text); {
		j := strings.Index(text[i:], mention)
		if j < 0 {
			b.WriteString(text[i:])
			break
		}
		j += i
		end := j + len(mention)
		if end == len(text) || !isUsernameChar(rune(text[end])) {
			found = true
			b.WriteString(text[i:j])
		} else {
			b.WriteString(text[i:end])
		}
		i = end
	}
	if !found {
		return text, false
	}
	return strings.TrimSpace(b.String()), true
}

// isUsernameChar reports whether r can appear in a Telegram username.
func isUsernameChar(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// resolvePersona returns the effective system prompt and extra params. An
// init message of the form "~name" selects the named role preset.
func (h chatHandler) resolvePersona(req *scope.Request) (string, map[string]any) {
	initMessage := req.Config.InitMessage
	extraParams := req.Config.ExtraParams

	if name, ok := strings.CutPrefix(initMessage, "~"); ok {
		if preset := req.Config.Role(name); preset != nil {
			initMessage = preset.InitMessage
			if len(preset.ExtraParams) > 0 {
				extraParams = preset.ExtraParams
			}
		}
	}
	return initMessage, extraParams
}

func (h chatHandler) reply(ctx context.Context, req *scope.Request, text string, log *slog.Logger) {
	if err := h.deps.Replier.SendMessage(ctx, &req.Chat, text); err != nil {
		log.ErrorContext(ctx, "Failed to send chat reply", "chat_id", req.Chat.ChatID, "error", err)
	}
}
