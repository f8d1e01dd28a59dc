package blog

import (
	"context"
	"errors"
	"testing"
)

func TestSetPasswordNeverStoresPlaintext(t *testing.T) {
	t.Parallel()

	u := &User{}
	if err := u.SetPassword("hunter2"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	if len(u.PasswordHash) == 0 {
		t.Fatal("no hash stored")
	}
	if string(u.PasswordHash) == "hunter2" {
		t.Fatal("plaintext password stored as hash")
	}

	ok, err := u.PasswordMatches("hunter2")
	if err != nil {
		t.Fatalf("PasswordMatches: %v", err)
	}
	if !ok {
		t.Fatal("correct password rejected")
	}

	ok, err = u.PasswordMatches("hunter3")
	if err != nil {
		t.Fatalf("PasswordMatches: %v", err)
	}
	if ok {
		t.Fatal("wrong password accepted")
	}
}

func TestGravatarURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		email string
		want  string
	}{
		{"a@x.com", "https://www.gravatar.com/avatar/743173788aa9166801df2e18f0e7ff24?s=100&d=retro&r=g"},
		{" A@X.com ", "https://www.gravatar.com/avatar/743173788aa9166801df2e18f0e7ff24?s=100&d=retro&r=g"},
		{"alice@example.com", "https://www.gravatar.com/avatar/c160f8cc69a4f0bf2b0362752353d060?s=100&d=retro&r=g"},
	}
	for _, tt := range tests {
		if got := GravatarURL(tt.email); got != tt.want {
			t.Errorf("GravatarURL(%q) = %q, want %q", tt.email, got, tt.want)
		}
	}
}

func TestRegisterFirstUserBecomesAdmin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newMemStore()

	alice, err := Register(ctx, store, "a@x.com", "pw1", "Alice")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if alice.Role != RoleAdmin {
		t.Fatalf("first user role = %q, want %q", alice.Role, RoleAdmin)
	}
	if !alice.IsAdmin() {
		t.Fatal("first user should be admin")
	}

	bob, err := Register(ctx, store, "b@x.com", "pw2", "Bob")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if bob.Role != RoleMember {
		t.Fatalf("second user role = %q, want %q", bob.Role, RoleMember)
	}
	if bob.IsAdmin() {
		t.Fatal("second user should not be admin")
	}
}

func TestRegisterDuplicateEmailLeavesStoreUnchanged(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newMemStore()

	if _, err := Register(ctx, store, "a@x.com", "pw1", "Alice"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, err := Register(ctx, store, "a@x.com", "pw2", "Impostor")
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("err = %v, want ErrDuplicateEmail", err)
	}

	count, err := store.CountUsers(ctx)
	if err != nil {
		t.Fatalf("CountUsers: %v", err)
	}
	if count != 1 {
		t.Fatalf("user count = %d, want 1", count)
	}
	u, err := store.GetUserByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if u.DisplayName != "Alice" {
		t.Fatalf("display name = %q, original record was altered", u.DisplayName)
	}
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newMemStore()

	if _, err := Register(ctx, store, "a@x.com", "pw1", "Alice"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	user, err := Authenticate(ctx, store, "a@x.com", "pw1")
	if err != nil {
		t.Fatalf("Authenticate with correct password: %v", err)
	}
	if user.Email != "a@x.com" {
		t.Fatalf("authenticated as %q", user.Email)
	}

	if _, err := Authenticate(ctx, store, "a@x.com", "pw2"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := Authenticate(ctx, store, "nobody@x.com", "pw1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: err = %v, want ErrInvalidCredentials", err)
	}
}

func TestAnonymousIsNeverAdmin(t *testing.T) {
	t.Parallel()
	var anonymous *User
	if anonymous.IsAdmin() {
		t.Fatal("nil user reported as admin")
	}
}
