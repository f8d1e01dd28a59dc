package blog

import (
	"context"
	"sort"
	"sync"
)

// memStore is an in-memory arena standing in for postgres in tests:
// maps keyed by id, relationships as foreign-key fields.
type memStore struct {
	mu          sync.Mutex
	users       map[int]*User
	posts       map[int]*Post
	comments    map[int]*Comment
	nextUser    int
	nextPost    int
	nextComment int
}

func newMemStore() *memStore {
	return &memStore{
		users:       make(map[int]*User),
		posts:       make(map[int]*Post),
		comments:    make(map[int]*Comment),
		nextUser:    1,
		nextPost:    1,
		nextComment: 1,
	}
}

func (m *memStore) CreateUser(_ context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return ErrDuplicateEmail
		}
	}
	user.ID = m.nextUser
	m.nextUser++
	stored := *user
	m.users[stored.ID] = &stored
	return nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) GetUserByID(_ context.Context, id int) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *memStore) CountUsers(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users), nil
}

func (m *memStore) ListPosts(_ context.Context) ([]Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var posts []Post
	for _, p := range m.posts {
		copied := *p
		if author, ok := m.users[p.AuthorID]; ok {
			copied.AuthorName = author.DisplayName
		}
		posts = append(posts, copied)
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID < posts[j].ID })
	return posts, nil
}

func (m *memStore) GetPost(_ context.Context, id int) (*Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *p
	if author, ok := m.users[p.AuthorID]; ok {
		copied.AuthorName = author.DisplayName
	}
	return &copied, nil
}

func (m *memStore) CreatePost(_ context.Context, post *Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.posts {
		if p.Title == post.Title {
			return ErrDuplicateTitle
		}
	}
	post.ID = m.nextPost
	m.nextPost++
	stored := *post
	m.posts[stored.ID] = &stored
	return nil
}

func (m *memStore) UpdatePost(_ context.Context, post *Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.posts[post.ID]
	if !ok {
		return ErrNotFound
	}
	for _, p := range m.posts {
		if p.ID != post.ID && p.Title == post.Title {
			return ErrDuplicateTitle
		}
	}
	existing.Title = post.Title
	existing.Subtitle = post.Subtitle
	existing.Body = post.Body
	existing.ImageURL = post.ImageURL
	existing.AuthorID = post.AuthorID
	// PublishedOn is deliberately left alone.
	return nil
}

func (m *memStore) DeletePost(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[id]; !ok {
		return ErrNotFound
	}
	delete(m.posts, id)
	for cid, c := range m.comments {
		if c.PostID == id {
			delete(m.comments, cid)
		}
	}
	return nil
}

func (m *memStore) ListComments(_ context.Context, postID int) ([]Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var comments []Comment
	for _, c := range m.comments {
		if c.PostID != postID {
			continue
		}
		copied := *c
		if author, ok := m.users[c.AuthorID]; ok {
			copied.AuthorName = author.DisplayName
			copied.AvatarURL = GravatarURL(author.Email)
		}
		comments = append(comments, copied)
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })
	return comments, nil
}

func (m *memStore) AddComment(_ context.Context, comment *Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	comment.ID = m.nextComment
	m.nextComment++
	stored := *comment
	m.comments[stored.ID] = &stored
	return nil
}

func (m *memStore) countComments() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.comments)
}
