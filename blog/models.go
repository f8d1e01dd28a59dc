// blog/models.go
package blog

// DateLayout is the long-form calendar date stamped on a post when it
// is published, e.g. "April 03, 2024". Edits never touch it.
const DateLayout = "January 02, 2006"

// Roles are assigned at registration. The first account ever created
// becomes the administrator; every later account is a member.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

type User struct {
	ID           int    `json:"id" db:"id"`
	Email        string `json:"email" db:"email"`
	PasswordHash []byte `json:"-" db:"password_hash"`
	DisplayName  string `json:"display_name" db:"display_name"`
	Role         string `json:"role" db:"role"`
}

// IsAdmin is safe to call on a nil receiver; an anonymous visitor is
// never an admin.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

type Post struct {
	ID          int    `json:"id" db:"id"`
	Title       string `json:"title" db:"title"`
	Subtitle    string `json:"subtitle" db:"subtitle"`
	Body        string `json:"body" db:"body"`
	ImageURL    string `json:"image_url" db:"image_url"`
	PublishedOn string `json:"published_on" db:"published_on"`
	AuthorID    int    `json:"author_id" db:"author_id"`

	// AuthorName is joined in at read time for rendering.
	AuthorName string `json:"author_name" db:"-"`
}

type Comment struct {
	ID       int    `json:"id" db:"id"`
	Text     string `json:"text" db:"text"`
	AuthorID int    `json:"author_id" db:"author_id"`
	PostID   int    `json:"post_id" db:"post_id"`

	// Joined in at read time for rendering.
	AuthorName string `json:"author_name" db:"-"`
	AvatarURL  string `json:"avatar_url" db:"-"`
}
