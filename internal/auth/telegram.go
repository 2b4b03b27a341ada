package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"scopebot/internal/database"
	"scopebot/internal/scope"
)

const defaultAdminCacheTTL = 2 * time.Hour

// ChatMemberAPI is the slice of the Telegram API the resolver needs.
type ChatMemberAPI interface {
	GetChatAdministrators(ctx context.Context, params *bot.GetChatAdministratorsParams) ([]models.ChatMember, error)
}

// TelegramResolver resolves roles from the chat's administrator list,
// caching the list in the key-value store under the request's group-admin
// key so repeated commands in the same group don't refetch it.
type TelegramResolver struct {
	api    ChatMemberAPI
	kv     database.KV
	ttl    time.Duration
	logger *slog.Logger
}

// NewTelegramResolver creates a resolver over the Telegram API with a
// KV-backed admin cache.
func NewTelegramResolver(api ChatMemberAPI, kv database.KV, logger *slog.Logger) *TelegramResolver {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &TelegramResolver{
		api:    api,
		kv:     kv,
		ttl:    defaultAdminCacheTTL,
		logger: logger.With("component", "role_resolver"),
	}
}

// cachedAdmins is the JSON blob stored under group_admin:{chatID}.
type cachedAdmins struct {
	FetchedAt time.Time    `json:"fetched_at"`
	Admins    []adminEntry `json:"admins"`
}

type adminEntry struct {
	UserID int64 `json:"user_id"`
	Role   Role  `json:"role"`
}

// ResolveRole returns the speaker's role in the request's chat. In private
// chats the speaker owns the conversation and resolves to creator without a
// lookup. In group chats the admin list decides: listed as owner → creator,
// listed as administrator → administrator, otherwise member.
func (r *TelegramResolver) ResolveRole(ctx context.Context, req *scope.Request) (Role, error) {
	if !scope.IsGroupKind(req.Share.ChatKind) {
		return RoleCreator, nil
	}

	admins, err := r.adminList(ctx, req.Share.GroupAdminKey, req.Share.ChatID)
	if err != nil {
		return "", err
	}

	for _, admin := range admins {
		if admin.UserID == req.Share.SpeakerID {
			return admin.Role, nil
		}
	}
	return RoleMember, nil
}

// adminList returns the chat's admins from cache when fresh, refetching and
// re-caching otherwise. Cache write failures are logged, not returned: the
// lookup itself succeeded.
func (r *TelegramResolver) adminList(ctx context.Context, cacheKey string, chatID int64) ([]adminEntry, error) {
	if raw, err := r.kv.Get(ctx, cacheKey); err == nil {
		var cached cachedAdmins
		if err := json.Unmarshal(raw, &cached); err == nil && time.Since(cached.FetchedAt) < r.ttl {
			return cached.Admins, nil
		}
	} else if !errors.Is(err, database.ErrNotFound) {
		r.logger.WarnContext(ctx, "Failed to read admin cache", "key", cacheKey, "error", err)
	}

	members, err := r.api.GetChatAdministrators(ctx, &bot.GetChatAdministratorsParams{ChatID: chatID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chat administrators: %w", err)
	}

	admins := make([]adminEntry, 0, len(members))
	for _, member := range members {
		switch {
		case member.Owner != nil && member.Owner.User != nil:
			admins = append(admins, adminEntry{UserID: member.Owner.User.ID, Role: RoleCreator})
		case member.Administrator != nil:
			admins = append(admins, adminEntry{UserID: member.Administrator.User.ID, Role: RoleAdministrator})
		}
	}

	raw, err := json.Marshal(cachedAdmins{FetchedAt: time.Now().UTC(), Admins: admins})
	if err == nil {
		if putErr := r.kv.Put(ctx, cacheKey, raw); putErr != nil {
			r.logger.WarnContext(ctx, "Failed to cache admin list", "key", cacheKey, "error", putErr)
		}
	}

	return admins, nil
}
