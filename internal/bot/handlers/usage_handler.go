package handlers

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"scopebot/internal/command"
	"scopebot/internal/scope"
)

// maxUsageChats caps how many per-chat counters the /usage reply lists.
const maxUsageChats = 30

// NewUsageHandler returns a handler for the /usage command.
func NewUsageHandler(deps HandlerDeps) command.HandlerFunc {
	return usageHandler{deps}.Handle
}

type usageHandler struct {
	deps HandlerDeps
}

func (h usageHandler) Handle(ctx context.Context, req *scope.Request, trigger, args string) error {
	log := h.deps.Logger.With("handler", "usage")
	log.InfoContext(ctx, "Handling /usage command", "chat_id", req.Share.ChatID)

	if !h.deps.Config.Bot.EnableUsageStats {
		return h.deps.Replier.SendMessage(ctx, &req.Chat, "Usage statistics are not enabled.")
	}

	counters, err := h.deps.Usage.Load(ctx, req.Share.UsageKey)
	if err != nil {
		return fmt.Errorf("failed to load usage counters: %w", err)
	}

	type chatUsage struct {
		chatID string
		tokens int64
	}
	chats := make([]chatUsage, 0, len(counters.Tokens.Chats))
	for id, tokens := range counters.Tokens.Chats {
		chats = append(chats, chatUsage{chatID: id, tokens: tokens})
	}
	sort.Slice(chats, func(i, j int) bool { return chats[i].tokens > chats[j].tokens })
	if len(chats) > maxUsageChats {
		chats = chats[:maxUsageChats]
	}

	var sb strings.Builder
	sb.WriteString("Usage statistics\n")
	fmt.Fprintf(&sb, "Total tokens: %d\n", counters.Tokens.Total)
	if len(chats) > 0 {
		sb.WriteString("By chat:\n")
		for _, c := range chats {
			fmt.Fprintf(&sb, "  %s: %d\n", c.chatID, c.tokens)
		}
	}

	return h.deps.Replier.SendMessage(ctx, &req.Chat, sb.String())
}
