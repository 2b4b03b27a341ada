package auth_test

import (
	"context"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"scopebot/internal/auth"
	"scopebot/internal/database"
	"scopebot/internal/scope"
)

type fakeMemberAPI struct {
	members []models.ChatMember
	err     error
	calls   int
}

func (f *fakeMemberAPI) GetChatAdministrators(context.Context, *bot.GetChatAdministratorsParams) ([]models.ChatMember, error) {
	f.calls++
	return f.members, f.err
}

type fakeKV struct {
	data map[string][]byte
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string][]byte)}
}

func (f *fakeKV) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := f.data[key]
	if !ok {
		return nil, database.ErrNotFound
	}
	return v, nil
}

func (f *fakeKV) Put(_ context.Context, key string, value []byte) error {
	f.data[key] = value
	return nil
}

func (f *fakeKV) Delete(_ context.Context, key string) error {
	delete(f.data, key)
	return nil
}

func adminMembers() []models.ChatMember {
	return []models.ChatMember{
		{Owner: &models.ChatMemberOwner{User: &models.User{ID: 10}}},
		{Administrator: &models.ChatMemberAdministrator{User: models.User{ID: 20}}},
	}
}

func requestFor(speakerID int64) *scope.Request {
	return &scope.Request{
		Share: scope.ShareContext{
			ChatKind:      "group",
			ChatID:        -1,
			SpeakerID:     speakerID,
			GroupAdminKey: "group_admin:-1",
		},
	}
}

func TestTelegramResolver_ResolveRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		speakerID int64
		want      auth.Role
	}{
		{"owner resolves to creator", 10, auth.RoleCreator},
		{"listed admin resolves to administrator", 20, auth.RoleAdministrator},
		{"unlisted speaker resolves to member", 30, auth.RoleMember},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			api := &fakeMemberAPI{members: adminMembers()}
			resolver := auth.NewTelegramResolver(api, newFakeKV(), nil)

			role, err := resolver.ResolveRole(context.Background(), requestFor(tt.speakerID))
			if err != nil {
				t.Fatalf("ResolveRole() error = %v", err)
			}
			if role != tt.want {
				t.Errorf("ResolveRole() = %q, want %q", role, tt.want)
			}
		})
	}
}

func TestTelegramResolver_PrivateChatSkipsLookup(t *testing.T) {
	t.Parallel()

	api := &fakeMemberAPI{}
	resolver := auth.NewTelegramResolver(api, newFakeKV(), nil)

	req := &scope.Request{Share: scope.ShareContext{ChatKind: "private", SpeakerID: 1}}
	role, err := resolver.ResolveRole(context.Background(), req)
	if err != nil {
		t.Fatalf("ResolveRole() error = %v", err)
	}
	if role != auth.RoleCreator {
		t.Errorf("ResolveRole() = %q, want creator", role)
	}
	if api.calls != 0 {
		t.Errorf("api called %d times, want 0", api.calls)
	}
}

func TestTelegramResolver_CachesAdminList(t *testing.T) {
	t.Parallel()

	api := &fakeMemberAPI{members: adminMembers()}
	resolver := auth.NewTelegramResolver(api, newFakeKV(), nil)
	ctx := context.Background()

	if _, err := resolver.ResolveRole(ctx, requestFor(10)); err != nil {
		t.Fatalf("ResolveRole() error = %v", err)
	}
	if _, err := resolver.ResolveRole(ctx, requestFor(20)); err != nil {
		t.Fatalf("ResolveRole() error = %v", err)
	}

	if api.calls != 1 {
		t.Errorf("api called %d times, want 1 (second lookup should hit cache)", api.calls)
	}
}
