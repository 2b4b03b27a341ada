package ai

import (
	"testing"

	"google.golang.org/genai"

	"scopebot/internal/history"
)

func TestConversationContents(t *testing.T) {
	t.Parallel()

	turns := []history.Entry{
		{Role: history.RoleUser, Content: "hello"},
		{Role: history.RoleAssistant, Content: "hi there"},
		{Role: history.RoleUser, Content: "how are you"},
	}

	contents := conversationContents(turns)
	if len(contents) != 3 {
		t.Fatalf("got %d contents, want 3", len(contents))
	}

	wantRoles := []genai.Role{genai.RoleUser, genai.RoleModel, genai.RoleUser}
	for i, content := range contents {
		if genai.Role(content.Role) != wantRoles[i] {
			t.Errorf("turn %d role = %q, want %q", i, content.Role, wantRoles[i])
		}
		if len(content.Parts) != 1 || content.Parts[0].Text != turns[i].Content {
			t.Errorf("turn %d parts = %+v, want single text %q", i, content.Parts, turns[i].Content)
		}
	}
}

func TestApplyExtraParams(t *testing.T) {
	t.Parallel()

	cfg := &genai.GenerateContentConfig{}
	applyExtraParams(cfg, map[string]any{
		"top_p":             0.9,
		"top_k":             40.0,
		"max_output_tokens": 256.0,
		"unknown":           "ignored",
	})

	if cfg.TopP == nil || *cfg.TopP != 0.9 {
		t.Errorf("TopP = %v, want 0.9", cfg.TopP)
	}
	if cfg.TopK == nil || *cfg.TopK != 40 {
		t.Errorf("TopK = %v, want 40", cfg.TopK)
	}
	if cfg.MaxOutputTokens != 256 {
		t.Errorf("MaxOutputTokens = %d, want 256", cfg.MaxOutputTokens)
	}
}

func TestApplyExtraParams_NonNumericIgnored(t *testing.T) {
	t.Parallel()

	cfg := &genai.GenerateContentConfig{}
	applyExtraParams(cfg, map[string]any{"top_p": "0.9", "top_k": true})

	if cfg.TopP != nil || cfg.TopK != nil {
		t.Errorf("non-numeric params applied: TopP=%v TopK=%v", cfg.TopP, cfg.TopK)
	}
}
