package userconfig_test

import (
	"errors"
	"testing"

	"scopebot/internal/userconfig"
)

func TestConfig_Merge(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		key     string
		value   string
		wantErr error
		check   func(t *testing.T, cfg *userconfig.Config)
	}{
		{
			name:  "string field",
			key:   userconfig.KeyInitMessage,
			value: "You are a pirate.",
			check: func(t *testing.T, cfg *userconfig.Config) {
				if cfg.InitMessage != "You are a pirate." {
					t.Errorf("InitMessage = %q", cfg.InitMessage)
				}
			},
		},
		{
			name:  "number field",
			key:   userconfig.KeyTemperature,
			value: "0.7",
			check: func(t *testing.T, cfg *userconfig.Config) {
				if cfg.Temperature != 0.7 {
					t.Errorf("Temperature = %v", cfg.Temperature)
				}
			},
		},
		{
			name:  "bool field true",
			key:   userconfig.KeyAutoTrimHistory,
			value: "true",
			check: func(t *testing.T, cfg *userconfig.Config) {
				if !cfg.AutoTrimHistory {
					t.Error("AutoTrimHistory = false, want true")
				}
			},
		},
		{
			name:  "json field",
			key:   userconfig.KeyExtraParams,
			value: `{"top_p": 0.9}`,
			check: func(t *testing.T, cfg *userconfig.Config) {
				if cfg.ExtraParams["top_p"] != 0.9 {
					t.Errorf("ExtraParams = %v", cfg.ExtraParams)
				}
			},
		},
		{
			name:    "unknown key",
			key:     "NOT_A_KEY",
			value:   "x",
			wantErr: userconfig.ErrUnknownKey,
		},
		{
			name:    "bool rejects non-literal",
			key:     userconfig.KeyAutoTrimHistory,
			value:   "abc",
			wantErr: userconfig.ErrTypeMismatch,
		},
		{
			name:    "bool is case-sensitive",
			key:     userconfig.KeyAutoTrimHistory,
			value:   "True",
			wantErr: userconfig.ErrTypeMismatch,
		},
		{
			name:    "number rejects trailing garbage",
			key:     userconfig.KeyTemperature,
			value:   "1.5x",
			wantErr: userconfig.ErrTypeMismatch,
		},
		{
			name:    "json rejects malformed input",
			key:     userconfig.KeyExtraParams,
			value:   "{not json",
			wantErr: userconfig.ErrInvalidJSON,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := &userconfig.Config{}
			err := cfg.Merge(tt.key, tt.value)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Merge() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Merge() error = %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestConfig_MergeFailureLeavesConfigUnchanged(t *testing.T) {
	t.Parallel()

	cfg := &userconfig.Config{Temperature: 1.0, AutoTrimHistory: true}

	if err := cfg.Merge(userconfig.KeyTemperature, "abc"); err == nil {
		t.Fatal("Merge() succeeded, want error")
	}
	if cfg.Temperature != 1.0 {
		t.Errorf("Temperature changed to %v after failed merge", cfg.Temperature)
	}

	if err := cfg.Merge(userconfig.KeyAutoTrimHistory, "yes"); err == nil {
		t.Fatal("Merge() succeeded, want error")
	}
	if !cfg.AutoTrimHistory {
		t.Error("AutoTrimHistory changed after failed merge")
	}
}

func TestRolePreset_Merge(t *testing.T) {
	t.Parallel()

	preset := &userconfig.RolePreset{}

	if err := preset.Merge(userconfig.KeyInitMessage, "Act surly."); err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if preset.InitMessage != "Act surly." {
		t.Errorf("InitMessage = %q", preset.InitMessage)
	}

	// Fields outside the role schema are unknown even if Config accepts them.
	if err := preset.Merge(userconfig.KeyTemperature, "0.5"); !errors.Is(err, userconfig.ErrUnknownKey) {
		t.Fatalf("Merge() error = %v, want ErrUnknownKey", err)
	}
}

func TestConfig_DeleteRoleIdempotent(t *testing.T) {
	t.Parallel()

	cfg := &userconfig.Config{Roles: map[string]*userconfig.RolePreset{
		"pirate": {InitMessage: "Arr."},
	}}

	cfg.DeleteRole("pirate")
	if cfg.Role("pirate") != nil {
		t.Error("role still present after delete")
	}
	cfg.DeleteRole("pirate") // deleting again must not panic or fail
	cfg.DeleteRole("never-existed")
}

func TestConfig_CloneIsDeep(t *testing.T) {
	t.Parallel()

	cfg := &userconfig.Config{
		InitMessage: "base",
		ExtraParams: map[string]any{"top_p": 0.9},
		Roles: map[string]*userconfig.RolePreset{
			"pirate": {InitMessage: "Arr.", ExtraParams: map[string]any{"top_k": 40.0}},
		},
	}

	clone := cfg.Clone()
	clone.ExtraParams["top_p"] = 0.1
	clone.Roles["pirate"].InitMessage = "changed"
	clone.Roles["pirate"].ExtraParams["top_k"] = 1.0

	if cfg.ExtraParams["top_p"] != 0.9 {
		t.Error("clone shares ExtraParams with original")
	}
	if cfg.Roles["pirate"].InitMessage != "Arr." {
		t.Error("clone shares role presets with original")
	}
	if cfg.Roles["pirate"].ExtraParams["top_k"] != 40.0 {
		t.Error("clone shares role ExtraParams with original")
	}
}
