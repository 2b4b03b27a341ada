package command_test

import (
	"context"
	"testing"

	"scopebot/internal/command"
	"scopebot/internal/scope"
)

func noopHandler(context.Context, *scope.Request, string, string) error { return nil }

func TestRegistry_Register(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cmd     *command.Command
		wantErr bool
	}{
		{"valid", &command.Command{Trigger: "/new", Handler: noopHandler}, false},
		{"nil command", nil, true},
		{"nil handler", &command.Command{Trigger: "/new"}, true},
		{"empty trigger", &command.Command{Trigger: "", Handler: noopHandler}, true},
		{"trigger with space", &command.Command{Trigger: "/a b", Handler: noopHandler}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := command.NewRegistry().Register(tt.cmd)
			if (err != nil) != tt.wantErr {
				t.Errorf("Register() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRegistry_RejectsDuplicateTrigger(t *testing.T) {
	t.Parallel()

	r := command.NewRegistry()
	if err := r.Register(&command.Command{Trigger: "/new", Handler: noopHandler}); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}
	if err := r.Register(&command.Command{Trigger: "/new", Handler: noopHandler}); err == nil {
		t.Fatal("duplicate Register() succeeded, want error")
	}
}

func TestRegistry_Match(t *testing.T) {
	t.Parallel()

	r := command.NewRegistry()
	for _, trigger := range []string{"/new", "/setenv"} {
		if err := r.Register(&command.Command{Trigger: trigger, Handler: noopHandler}); err != nil {
			t.Fatalf("Register(%s) error = %v", trigger, err)
		}
	}

	tests := []struct {
		name        string
		text        string
		wantTrigger string
		wantArgs    string
		wantMatch   bool
	}{
		{"exact match", "/new", "/new", "", true},
		{"match with args", "/setenv TEMPERATURE=0.7", "/setenv", "TEMPERATURE=0.7", true},
		{"args are trimmed", "/setenv   A=1  ", "/setenv", "A=1", true},
		{"prefix without boundary does not match", "/newfoo", "", "", false},
		{"plain chat text does not match", "hello there", "", "", false},
		{"empty text does not match", "", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cmd, args, ok := r.Match(tt.text)
			if ok != tt.wantMatch {
				t.Fatalf("Match(%q) ok = %v, want %v", tt.text, ok, tt.wantMatch)
			}
			if !ok {
				return
			}
			if cmd.Trigger != tt.wantTrigger {
				t.Errorf("trigger = %q, want %q", cmd.Trigger, tt.wantTrigger)
			}
			if args != tt.wantArgs {
				t.Errorf("args = %q, want %q", args, tt.wantArgs)
			}
		})
	}
}
