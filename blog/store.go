// blog/store.go
package blog

import "context"

// Store is the credential store plus the content graph. *Database is
// the postgres implementation; tests run against an in-memory one.
//
// Lookup methods return ErrNotFound for missing records. CreateUser
// and CreatePost return ErrDuplicateEmail / ErrDuplicateTitle on
// unique-constraint collisions.
type Store interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id int) (*User, error)
	CountUsers(ctx context.Context) (int, error)

	ListPosts(ctx context.Context) ([]Post, error)
	GetPost(ctx context.Context, id int) (*Post, error)
	CreatePost(ctx context.Context, post *Post) error
	UpdatePost(ctx context.Context, post *Post) error
	DeletePost(ctx context.Context, id int) error

	ListComments(ctx context.Context, postID int) ([]Comment, error)
	AddComment(ctx context.Context, comment *Comment) error
}
