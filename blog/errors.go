// blog/errors.go
package blog

import "errors"

var (
	ErrDuplicateEmail     = errors.New("a user with that email already exists")
	ErrDuplicateTitle     = errors.New("a post with that title already exists")
	ErrInvalidCredentials = errors.New("email or password is incorrect")
	ErrNotFound           = errors.New("record not found")
)
