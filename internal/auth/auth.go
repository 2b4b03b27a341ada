// Package auth resolves a speaker's role within a conversation and checks it
// against a command's required-role set.
package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"scopebot/internal/scope"
)

// Role is a speaker's standing within a chat, as reported by the chat
// platform. It is a closed set; a failed lookup is an error, never a role.
type Role string

const (
	RoleCreator       Role = "creator"
	RoleAdministrator Role = "administrator"
	RoleMember        Role = "member"
)

// ErrIdentityUnresolved signals that the speaker's role could not be
// determined. It is distinct from any legitimate role, including member.
var ErrIdentityUnresolved = errors.New("could not resolve speaker role")

// InsufficientRoleError reports a resolved role that is not in the
// command's required set.
type InsufficientRoleError struct {
	Required []Role
	Actual   Role
}

func (e *InsufficientRoleError) Error() string {
	names := make([]string, len(e.Required))
	for i, r := range e.Required {
		names[i] = string(r)
	}
	return fmt.Sprintf("insufficient role: requires %s, current %s", strings.Join(names, ","), e.Actual)
}

// Policy selects which roles a command requires, computed from the ambient
// request rather than fixed per command. The set is closed so every command's
// authorization behavior is enumerable and testable.
type Policy int

const (
	// PolicyOpen skips authorization entirely.
	PolicyOpen Policy = iota

	// PolicyElevatedInGroups requires administrator or creator in group
	// chats and is open everywhere else.
	PolicyElevatedInGroups

	// PolicyElevatedUnlessShared behaves like PolicyElevatedInGroups, but is
	// also open in groups when share mode is off: each member already has an
	// isolated namespace, so restricting mutations adds nothing.
	PolicyElevatedUnlessShared
)

var elevatedRoles = []Role{RoleAdministrator, RoleCreator}

// RequiredRoles computes the role set the policy demands for the given chat
// kind and share-mode flag. A nil result means the command is open.
func (p Policy) RequiredRoles(chatKind string, shareMode bool) []Role {
	switch p {
	case PolicyElevatedInGroups:
		if scope.IsGroupKind(chatKind) {
			return elevatedRoles
		}
	case PolicyElevatedUnlessShared:
		if scope.IsGroupKind(chatKind) && shareMode {
			return elevatedRoles
		}
	}
	return nil
}

// RoleResolver looks up a speaker's role for the request's chat. It is the
// external identity collaborator; implementations may cache.
type RoleResolver interface {
	ResolveRole(ctx context.Context, req *scope.Request) (Role, error)
}

// Authorizer checks resolved roles against required-role sets.
type Authorizer struct {
	resolver  RoleResolver
	shareMode bool
	logger    *slog.Logger
}

// NewAuthorizer creates an Authorizer using the given resolver and the
// bot-wide share-mode flag.
func NewAuthorizer(resolver RoleResolver, shareMode bool, logger *slog.Logger) *Authorizer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Authorizer{
		resolver:  resolver,
		shareMode: shareMode,
		logger:    logger.With("component", "authorizer"),
	}
}

// Authorize evaluates the policy for the request. An open policy always
// succeeds without touching the resolver. Otherwise the speaker's role is
// resolved; lookup failure yields ErrIdentityUnresolved and a role outside
// the required set yields *InsufficientRoleError.
func (a *Authorizer) Authorize(ctx context.Context, req *scope.Request, policy Policy) error {
	required := policy.RequiredRoles(req.Share.ChatKind, a.shareMode)
	if required == nil {
		return nil
	}

	role, err := a.resolver.ResolveRole(ctx, req)
	if err != nil {
		a.logger.WarnContext(ctx, "Role lookup failed",
			"chat_id", req.Share.ChatID, "speaker_id", req.Share.SpeakerID, "error", err)
		return fmt.Errorf("%w: %v", ErrIdentityUnresolved, err)
	}
	if !slices.Contains(required, role) {
		return &InsufficientRoleError{Required: required, Actual: role}
	}
	return nil
}
