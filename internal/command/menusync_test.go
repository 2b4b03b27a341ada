package command_test

import (
	"context"
	"errors"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"scopebot/internal/auth"
	"scopebot/internal/command"
	"scopebot/internal/scope"
)

type fakeMenuAPI struct {
	calls map[string][]models.BotCommand
	err   error
}

func newFakeMenuAPI() *fakeMenuAPI {
	return &fakeMenuAPI{calls: make(map[string][]models.BotCommand)}
}

func (f *fakeMenuAPI) SetMyCommands(_ context.Context, params *bot.SetMyCommandsParams) (bool, error) {
	key := "unknown"
	switch params.Scope.(type) {
	case *models.BotCommandScopeAllPrivateChats:
		key = "private"
	case *models.BotCommandScopeAllGroupChats:
		key = "group"
	case *models.BotCommandScopeAllChatAdministrators:
		key = "admin"
	}
	f.calls[key] = params.Commands
	if f.err != nil {
		return false, f.err
	}
	return true, nil
}

func menuRegistry(t *testing.T) *command.Registry {
	t.Helper()

	registry := command.NewRegistry()
	commands := []*command.Command{
		{
			Trigger: "/help",
			Help:    "Show help",
			Scopes: []command.MenuScope{
				command.ScopeAllPrivateChats,
				command.ScopeAllGroupChats,
				command.ScopeAllChatAdministrators,
			},
			Policy:  auth.PolicyOpen,
			Handler: func(context.Context, *scope.Request, string, string) error { return nil },
		},
		{
			Trigger: "/setenv",
			Help:    "Set config",
			Scopes: []command.MenuScope{
				command.ScopeAllPrivateChats,
				command.ScopeAllChatAdministrators,
			},
			Policy:  auth.PolicyOpen,
			Handler: func(context.Context, *scope.Request, string, string) error { return nil },
		},
	}
	for _, cmd := range commands {
		if err := registry.Register(cmd); err != nil {
			t.Fatalf("Register(%s) error = %v", cmd.Trigger, err)
		}
	}
	return registry
}

func TestSyncMenu_GroupsByScope(t *testing.T) {
	t.Parallel()

	api := newFakeMenuAPI()
	results := command.SyncMenu(context.Background(), api, menuRegistry(t), nil, nil)

	for menuScope, err := range results {
		if err != nil {
			t.Errorf("scope %s error = %v", menuScope, err)
		}
	}

	if got := len(api.calls["private"]); got != 2 {
		t.Errorf("private scope has %d commands, want 2", got)
	}
	if got := len(api.calls["group"]); got != 1 {
		t.Errorf("group scope has %d commands, want 1", got)
	}
	if got := len(api.calls["admin"]); got != 2 {
		t.Errorf("admin scope has %d commands, want 2", got)
	}

	// Telegram command names carry no slash.
	for _, cmd := range api.calls["private"] {
		if cmd.Command == "" || cmd.Command[0] == '/' {
			t.Errorf("menu command %q should not carry a leading slash", cmd.Command)
		}
	}
}

func TestSyncMenu_HiddenTriggersExcluded(t *testing.T) {
	t.Parallel()

	api := newFakeMenuAPI()
	command.SyncMenu(context.Background(), api, menuRegistry(t), []string{"/setenv"}, nil)

	if got := len(api.calls["private"]); got != 1 {
		t.Errorf("private scope has %d commands, want 1 with /setenv hidden", got)
	}
}

func TestSyncMenu_EmptyScopesStillCleared(t *testing.T) {
	t.Parallel()

	api := newFakeMenuAPI()
	command.SyncMenu(context.Background(), api, command.NewRegistry(), nil, nil)

	// Every standard scope gets a (possibly empty) replacement so stale menus
	// are cleared.
	for _, key := range []string{"private", "group", "admin"} {
		if _, ok := api.calls[key]; !ok {
			t.Errorf("scope %s was not synced", key)
		}
	}
}

func TestSyncMenu_ReportsPerScopeErrors(t *testing.T) {
	t.Parallel()

	api := newFakeMenuAPI()
	api.err = errors.New("telegram unavailable")

	results := command.SyncMenu(context.Background(), api, menuRegistry(t), nil, nil)
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for menuScope, err := range results {
		if err == nil {
			t.Errorf("scope %s error = nil, want failure", menuScope)
		}
	}
}
