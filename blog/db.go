// blog/database.go
package blog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// The sessions table belongs to the scs pgxstore; everything else is
// the content graph.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id SERIAL PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    password_hash BYTEA NOT NULL,
    display_name TEXT NOT NULL,
    role TEXT NOT NULL DEFAULT 'member'
);
CREATE TABLE IF NOT EXISTS posts (
    id SERIAL PRIMARY KEY,
    title TEXT NOT NULL UNIQUE,
    subtitle TEXT NOT NULL,
    body TEXT NOT NULL,
    image_url TEXT NOT NULL,
    published_on TEXT NOT NULL,
    author_id INTEGER NOT NULL,
    CONSTRAINT fk_post_author
        FOREIGN KEY(author_id)
        REFERENCES users(id)
);
CREATE TABLE IF NOT EXISTS comments (
    id SERIAL PRIMARY KEY,
    text TEXT NOT NULL,
    author_id INTEGER NOT NULL,
    post_id INTEGER NOT NULL,
    CONSTRAINT fk_comment_author
        FOREIGN KEY(author_id)
        REFERENCES users(id),
    CONSTRAINT fk_comment_post
        FOREIGN KEY(post_id)
        REFERENCES posts(id)
        ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_comments_on_post_id ON comments(post_id);
CREATE TABLE IF NOT EXISTS sessions (
    token TEXT PRIMARY KEY,
    data BYTEA NOT NULL,
    expiry TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);
`

type Database struct {
	pool *pgxpool.Pool
}

func NewDatabase(connectionString string) (*Database, error) {
	pool, err := pgxpool.New(context.Background(), connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Database{pool: pool}, nil
}

func (d *Database) CreateTables() error {
	_, err := d.pool.Exec(context.Background(), schema)
	return err
}

// Pool exposes the underlying connection pool so the session store can
// share it.
func (d *Database) Pool() *pgxpool.Pool {
	return d.pool
}

// isUniqueViolation reports whether err is a postgres unique-constraint
// error (SQLSTATE 23505) on the named constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == constraint
	}
	return false
}

// --- User Functions ---

func (d *Database) CreateUser(ctx context.Context, user *User) error {
	query := `INSERT INTO users (email, password_hash, display_name, role) VALUES ($1, $2, $3, $4) RETURNING id`
	err := d.pool.QueryRow(ctx, query, user.Email, user.PasswordHash, user.DisplayName, user.Role).Scan(&user.ID)
	if isUniqueViolation(err, "users_email_key") {
		return ErrDuplicateEmail
	}
	return err
}

func (d *Database) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	query := `SELECT id, email, password_hash, display_name, role FROM users WHERE email = $1`
	row := d.pool.QueryRow(ctx, query, email)
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.DisplayName, &user.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *Database) GetUserByID(ctx context.Context, id int) (*User, error) {
	var user User
	query := `SELECT id, email, password_hash, display_name, role FROM users WHERE id = $1`
	row := d.pool.QueryRow(ctx, query, id)
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.DisplayName, &user.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *Database) CountUsers(ctx context.Context) (int, error) {
	var count int
	err := d.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

// --- Post Functions ---

func (d *Database) ListPosts(ctx context.Context) ([]Post, error) {
	query := `SELECT p.id, p.title, p.subtitle, p.body, p.image_url, p.published_on, p.author_id, u.display_name
              FROM posts p
              JOIN users u ON u.id = p.author_id
              ORDER BY p.id ASC`
	rows, err := d.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var posts []Post
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Subtitle, &p.Body, &p.ImageURL, &p.PublishedOn, &p.AuthorID, &p.AuthorName); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (d *Database) GetPost(ctx context.Context, id int) (*Post, error) {
	var p Post
	query := `SELECT p.id, p.title, p.subtitle, p.body, p.image_url, p.published_on, p.author_id, u.display_name
              FROM posts p
              JOIN users u ON u.id = p.author_id
              WHERE p.id = $1`
	row := d.pool.QueryRow(ctx, query, id)
	err := row.Scan(&p.ID, &p.Title, &p.Subtitle, &p.Body, &p.ImageURL, &p.PublishedOn, &p.AuthorID, &p.AuthorName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (d *Database) CreatePost(ctx context.Context, post *Post) error {
	query := `INSERT INTO posts (title, subtitle, body, image_url, published_on, author_id)
              VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := d.pool.QueryRow(ctx, query, post.Title, post.Subtitle, post.Body, post.ImageURL, post.PublishedOn, post.AuthorID).Scan(&post.ID)
	if isUniqueViolation(err, "posts_title_key") {
		return ErrDuplicateTitle
	}
	return err
}

// UpdatePost replaces everything except the publish date.
func (d *Database) UpdatePost(ctx context.Context, post *Post) error {
	query := `UPDATE posts SET title = $1, subtitle = $2, body = $3, image_url = $4, author_id = $5 WHERE id = $6`
	tag, err := d.pool.Exec(ctx, query, post.Title, post.Subtitle, post.Body, post.ImageURL, post.AuthorID, post.ID)
	if isUniqueViolation(err, "posts_title_key") {
		return ErrDuplicateTitle
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *Database) DeletePost(ctx context.Context, id int) error {
	tag, err := d.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Comment Functions ---

func (d *Database) ListComments(ctx context.Context, postID int) ([]Comment, error) {
	query := `SELECT c.id, c.text, c.author_id, c.post_id, u.display_name, u.email
              FROM comments c
              JOIN users u ON u.id = c.author_id
              WHERE c.post_id = $1
              ORDER BY c.id ASC`
	rows, err := d.pool.Query(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var comments []Comment
	for rows.Next() {
		var c Comment
		var email string
		if err := rows.Scan(&c.ID, &c.Text, &c.AuthorID, &c.PostID, &c.AuthorName, &email); err != nil {
			return nil, err
		}
		c.AvatarURL = GravatarURL(email)
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (d *Database) AddComment(ctx context.Context, comment *Comment) error {
	query := `INSERT INTO comments (text, author_id, post_id) VALUES ($1, $2, $3) RETURNING id`
	return d.pool.QueryRow(ctx, query, comment.Text, comment.AuthorID, comment.PostID).Scan(&comment.ID)
}
