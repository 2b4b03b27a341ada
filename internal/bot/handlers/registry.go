package handlers

import (
	"fmt"

	"scopebot/internal/auth"
	"scopebot/internal/command"
)

// RegisterAll builds the command registry with every handler wired to its
// trigger, policy, and menu scopes. Registration order is dispatch order.
// The dev-only /echo command is included only when dev mode is on.
func RegisterAll(deps HandlerDeps) (*command.Registry, error) {
	registry := command.NewRegistry()

	allScopes := []command.MenuScope{
		command.ScopeAllPrivateChats,
		command.ScopeAllGroupChats,
		command.ScopeAllChatAdministrators,
	}
	adminScopes := []command.MenuScope{
		command.ScopeAllPrivateChats,
		command.ScopeAllChatAdministrators,
	}

	commands := []*command.Command{
		{
			Trigger: "/help",
			Help:    "Show available commands",
			Scopes:  allScopes,
			Policy:  auth.PolicyOpen,
			Handler: NewHelpHandler(deps, registry),
		},
		{
			Trigger: "/new",
			Help:    "Start a new conversation",
			Scopes:  allScopes,
			Policy:  auth.PolicyElevatedUnlessShared,
			Handler: NewNewHandler(deps),
		},
		{
			Trigger: "/start",
			Help:    "Start a new conversation and show your IDs",
			Scopes:  allScopes,
			Policy:  auth.PolicyElevatedInGroups,
			Handler: NewStartHandler(deps),
		},
		{
			Trigger: "/img",
			Help:    "Generate an image from a description",
			Scopes:  allScopes,
			Policy:  auth.PolicyElevatedUnlessShared,
			Handler: NewImageHandler(deps),
		},
		{
			Trigger: "/version",
			Help:    "Check for a newer build",
			Scopes:  adminScopes,
			Policy:  auth.PolicyElevatedInGroups,
			Handler: NewVersionHandler(deps),
		},
		{
			Trigger: "/setenv",
			Help:    "Set a configuration value (KEY=VALUE)",
			Scopes:  adminScopes,
			Policy:  auth.PolicyElevatedUnlessShared,
			Handler: NewSetEnvHandler(deps),
		},
		{
			Trigger: "/usage",
			Help:    "Show token usage statistics",
			Scopes:  adminScopes,
			Policy:  auth.PolicyElevatedInGroups,
			Handler: NewUsageHandler(deps),
		},
		{
			Trigger: "/system",
			Help:    "Show system diagnostics",
			Scopes:  adminScopes,
			Policy:  auth.PolicyElevatedInGroups,
			Handler: NewSystemHandler(deps),
		},
		{
			Trigger: "/role",
			Help:    "Manage role presets (show | <name> del | <name> KEY=VALUE)",
			Scopes:  []command.MenuScope{command.ScopeAllPrivateChats},
			Policy:  auth.PolicyElevatedUnlessShared,
			Handler: NewRoleHandler(deps),
		},
	}

	if deps.Config.Bot.DevMode {
		commands = append(commands, &command.Command{
			Trigger: "/echo",
			Help:    "Echo the raw message",
			Scopes:  nil,
			Policy:  auth.PolicyElevatedInGroups,
			Handler: NewEchoHandler(deps),
		})
	}

	for _, cmd := range commands {
		if err := registry.Register(cmd); err != nil {
			return nil, fmt.Errorf("failed to register %s: %w", cmd.Trigger, err)
		}
	}

	deps.Logger.Info("Registered commands", "count", len(commands))
	return registry, nil
}
