package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"scopebot/internal/command"
	"scopebot/internal/scope"
	"scopebot/internal/version"
)

// NewVersionHandler returns a handler for the /version command, comparing
// the local build metadata against the published manifest.
func NewVersionHandler(deps HandlerDeps) command.HandlerFunc {
	return versionHandler{deps}.Handle
}

type versionHandler struct {
	deps HandlerDeps
}

func (h versionHandler) Handle(ctx context.Context, req *scope.Request, trigger, args string) error {
	log := h.deps.Logger.With("handler", "version")
	log.InfoContext(ctx, "Handling /version command", "chat_id", req.Share.ChatID)

	current := version.Current()

	latest, err := h.deps.Versions.Latest(ctx)
	if err != nil {
		log.WarnContext(ctx, "Failed to fetch latest build info", "error", err)
		return h.deps.Replier.SendMessage(ctx, &req.Chat,
			fmt.Sprintf("Current build: %s\nCould not reach the update server.", formatBuild(current)))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Current build: %s\n", formatBuild(current))
	fmt.Fprintf(&sb, "Latest build: %s\n", formatBuild(latest))
	if latest.Timestamp > current.Timestamp {
		sb.WriteString("A newer build is available.")
	} else {
		sb.WriteString("You are up to date.")
	}

	return h.deps.Replier.SendMessage(ctx, &req.Chat, sb.String())
}

func formatBuild(info version.BuildInfo) string {
	if info.Timestamp == 0 {
		return fmt.Sprintf("unknown (%s)", info.Commit)
	}
	return fmt.Sprintf("%s (%s)", time.Unix(info.Timestamp, 0).UTC().Format(time.RFC3339), info.Commit)
}
