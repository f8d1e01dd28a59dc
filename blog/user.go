package blog

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

func NewUser(email, password, displayName, role string) (*User, error) {
	u := &User{
		Email:       email,
		DisplayName: displayName,
		Role:        role,
	}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) PasswordMatches(input string) (bool, error) {
	err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(input))
	if err != nil {
		switch {
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			//invalid password
			return false, nil
		default:
			//unknown error
			return false, err
		}
	}
	return true, nil
}

func (u *User) Sanitize() {
	u.PasswordHash = nil
}

// GravatarURL builds the avatar URL shown next to a comment. The size
// and fallback settings match what the site has always rendered.
func GravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?s=100&d=retro&r=g", sum)
}

// Register creates a new account and returns it. The first account in
// the store becomes the administrator. The store's unique constraint
// backs up the duplicate check against concurrent registrations.
func Register(ctx context.Context, store Store, email, password, displayName string) (*User, error) {
	existing, err := store.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateEmail
	}

	count, err := store.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	role := RoleMember
	if count == 0 {
		role = RoleAdmin
	}

	user, err := NewUser(email, password, displayName, role)
	if err != nil {
		return nil, err
	}
	if err := store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate verifies a login attempt. Unknown email and wrong
// password both come back as ErrInvalidCredentials so the login form
// never reveals which field was wrong.
func Authenticate(ctx context.Context, store Store, email, password string) (*User, error) {
	user, err := store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	ok, err := user.PasswordMatches(password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
