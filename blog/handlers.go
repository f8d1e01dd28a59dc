// blog/handlers.go
package blog

import (
	"errors"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
)

const (
	sessionUserKey = "userID"
	flashKey       = "flash"
)

// IndexViewData is the data structure for the post list page.
type IndexViewData struct {
	CurrentUser *User
	Flash       string
	Posts       []Post
}

// PostViewData is the data structure for the single post page.
type PostViewData struct {
	CurrentUser *User
	Flash       string
	Post        *Post
	Comments    []Comment
}

// EditorViewData is the data structure for the create/edit post form.
type EditorViewData struct {
	CurrentUser *User
	Flash       string
	Post        *Post
	IsEdit      bool
}

// AuthViewData is the data structure for the register and login forms.
type AuthViewData struct {
	CurrentUser *User
	Flash       string
}

type Handlers struct {
	store     Store
	session   *scs.SessionManager
	templates *template.Template
}

func NewHandlers(store Store, session *scs.SessionManager, templateGlob string) (*Handlers, error) {
	// Post bodies are rich text written by the admin; render them
	// unescaped.
	funcs := template.FuncMap{
		"rich": func(s string) template.HTML { return template.HTML(s) },
	}
	tpl, err := template.New("").Funcs(funcs).ParseGlob(templateGlob)
	if err != nil {
		return nil, err
	}
	return &Handlers{store: store, session: session, templates: tpl}, nil
}

func (h *Handlers) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/", h.index)
	mux.HandleFunc("/register", h.register)
	mux.HandleFunc("/login", h.login)
	mux.HandleFunc("/logout", h.logout)
	mux.HandleFunc("/post/", h.showPost)
	mux.HandleFunc("/new-post", h.requireAdmin(h.newPost))
	mux.HandleFunc("/edit-post/", h.requireAdmin(h.editPost))
	mux.HandleFunc("/delete/", h.requireAdmin(h.deletePost))
	mux.HandleFunc("/about", h.staticPage("about.html"))
	mux.HandleFunc("/contact", h.staticPage("contact.html"))
}

// currentUser resolves the identity stored in the session to a full
// user record, or nil for an anonymous visitor. A stale session whose
// user no longer exists resolves to anonymous as well.
func (h *Handlers) currentUser(r *http.Request) *User {
	id := h.session.GetInt(r.Context(), sessionUserKey)
	if id == 0 {
		return nil
	}
	user, err := h.store.GetUserByID(r.Context(), id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Printf("Error resolving session user %d: %v", id, err)
		}
		return nil
	}
	return user
}

// loginSession binds the session to a user. The token is renewed to
// prevent session fixation.
func (h *Handlers) loginSession(r *http.Request, user *User) error {
	if err := h.session.RenewToken(r.Context()); err != nil {
		return err
	}
	h.session.Put(r.Context(), sessionUserKey, user.ID)
	return nil
}

func (h *Handlers) flash(r *http.Request, message string) {
	h.session.Put(r.Context(), flashKey, message)
}

func (h *Handlers) popFlash(r *http.Request) string {
	return h.session.PopString(r.Context(), flashKey)
}

func (h *Handlers) render(w http.ResponseWriter, name string, data any) {
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("Error executing template %s: %v", name, err)
	}
}

// index lists every post, oldest first.
func (h *Handlers) index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	posts, err := h.store.ListPosts(r.Context())
	if err != nil {
		log.Printf("Error listing posts: %v", err)
		http.Error(w, "Failed to retrieve posts", http.StatusInternalServerError)
		return
	}
	h.render(w, "index.html", IndexViewData{
		CurrentUser: h.currentUser(r),
		Flash:       h.popFlash(r),
		Posts:       posts,
	})
}

func (h *Handlers) register(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.render(w, "register.html", AuthViewData{
			CurrentUser: h.currentUser(r),
			Flash:       h.popFlash(r),
		})
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Failed to parse form", http.StatusBadRequest)
			return
		}
		email := strings.TrimSpace(r.FormValue("email"))
		password := r.FormValue("password")
		name := strings.TrimSpace(r.FormValue("name"))
		if email == "" || password == "" || name == "" {
			h.flash(r, "Email, password, and name are all required.")
			http.Redirect(w, r, "/register", http.StatusSeeOther)
			return
		}

		user, err := Register(r.Context(), h.store, email, password, name)
		if errors.Is(err, ErrDuplicateEmail) {
			h.flash(r, "You've already signed up with that email, log in instead.")
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		if err != nil {
			log.Printf("Error registering user: %v", err)
			http.Error(w, "Failed to register", http.StatusInternalServerError)
			return
		}
		if err := h.loginSession(r, user); err != nil {
			log.Printf("Error establishing session: %v", err)
			http.Error(w, "Failed to register", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.render(w, "login.html", AuthViewData{
			CurrentUser: h.currentUser(r),
			Flash:       h.popFlash(r),
		})
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Failed to parse form", http.StatusBadRequest)
			return
		}
		user, err := Authenticate(r.Context(), h.store, strings.TrimSpace(r.FormValue("email")), r.FormValue("password"))
		if errors.Is(err, ErrInvalidCredentials) {
			h.flash(r, "Email or password is incorrect, please try again.")
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		if err != nil {
			log.Printf("Error authenticating: %v", err)
			http.Error(w, "Failed to log in", http.StatusInternalServerError)
			return
		}
		if err := h.loginSession(r, user); err != nil {
			log.Printf("Error establishing session: %v", err)
			http.Error(w, "Failed to log in", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handlers) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Destroy(r.Context()); err != nil {
		log.Printf("Error destroying session: %v", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// showPost renders a single post with its comments; a POST adds a
// comment, which requires a logged-in author.
func (h *Handlers) showPost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r.URL.Path, "/post/")
	if !ok {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		post, err := h.store.GetPost(r.Context(), id)
		if errors.Is(err, ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		if err != nil {
			log.Printf("Error getting post %d: %v", id, err)
			http.Error(w, "Failed to retrieve post", http.StatusInternalServerError)
			return
		}
		comments, err := h.store.ListComments(r.Context(), id)
		if err != nil {
			log.Printf("Error listing comments for post %d: %v", id, err)
			http.Error(w, "Failed to retrieve comments", http.StatusInternalServerError)
			return
		}
		h.render(w, "post.html", PostViewData{
			CurrentUser: h.currentUser(r),
			Flash:       h.popFlash(r),
			Post:        post,
			Comments:    comments,
		})
	case http.MethodPost:
		h.requireUser(h.addComment)(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handlers) addComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r.URL.Path, "/post/")
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}
	text := strings.TrimSpace(r.FormValue("text"))
	if text == "" {
		h.flash(r, "A comment needs some text.")
		http.Redirect(w, r, "/post/"+strconv.Itoa(id), http.StatusSeeOther)
		return
	}

	if _, err := h.store.GetPost(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Printf("Error getting post %d: %v", id, err)
		http.Error(w, "Failed to add comment", http.StatusInternalServerError)
		return
	}

	user := h.currentUser(r)
	comment := Comment{Text: text, AuthorID: user.ID, PostID: id}
	if err := h.store.AddComment(r.Context(), &comment); err != nil {
		log.Printf("Error adding comment: %v", err)
		http.Error(w, "Failed to add comment", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/post/"+strconv.Itoa(id), http.StatusSeeOther)
}

func (h *Handlers) newPost(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.render(w, "make-post.html", EditorViewData{
			CurrentUser: h.currentUser(r),
			Flash:       h.popFlash(r),
			Post:        &Post{},
		})
	case http.MethodPost:
		fields, ok := h.postForm(w, r, "/new-post")
		if !ok {
			return
		}
		fields.PublishedOn = time.Now().Format(DateLayout)
		fields.AuthorID = h.currentUser(r).ID
		err := h.store.CreatePost(r.Context(), fields)
		if errors.Is(err, ErrDuplicateTitle) {
			h.flash(r, "A post with that title already exists.")
			http.Redirect(w, r, "/new-post", http.StatusSeeOther)
			return
		}
		if err != nil {
			log.Printf("Error creating post: %v", err)
			http.Error(w, "Failed to create post", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handlers) editPost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r.URL.Path, "/edit-post/")
	if !ok {
		http.NotFound(w, r)
		return
	}
	post, err := h.store.GetPost(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		log.Printf("Error getting post %d: %v", id, err)
		http.Error(w, "Failed to retrieve post", http.StatusInternalServerError)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.render(w, "make-post.html", EditorViewData{
			CurrentUser: h.currentUser(r),
			Flash:       h.popFlash(r),
			Post:        post,
			IsEdit:      true,
		})
	case http.MethodPost:
		fields, ok := h.postForm(w, r, "/edit-post/"+strconv.Itoa(id))
		if !ok {
			return
		}
		fields.ID = id
		fields.AuthorID = h.currentUser(r).ID
		// The publish date stays what it was; UpdatePost never touches it.
		err := h.store.UpdatePost(r.Context(), fields)
		if errors.Is(err, ErrDuplicateTitle) {
			h.flash(r, "A post with that title already exists.")
			http.Redirect(w, r, "/edit-post/"+strconv.Itoa(id), http.StatusSeeOther)
			return
		}
		if err != nil {
			log.Printf("Error updating post %d: %v", id, err)
			http.Error(w, "Failed to update post", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/post/"+strconv.Itoa(id), http.StatusSeeOther)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handlers) deletePost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, ok := pathID(r.URL.Path, "/delete/")
	if !ok {
		http.NotFound(w, r)
		return
	}
	err := h.store.DeletePost(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		log.Printf("Error deleting post %d: %v", id, err)
		http.Error(w, "Failed to delete post", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handlers) staticPage(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.render(w, name, AuthViewData{
			CurrentUser: h.currentUser(r),
			Flash:       h.popFlash(r),
		})
	}
}

// postForm parses and validates the post editor form. On a validation
// failure it flashes, redirects back, and reports false.
func (h *Handlers) postForm(w http.ResponseWriter, r *http.Request, backTo string) (*Post, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return nil, false
	}
	post := &Post{
		Title:    strings.TrimSpace(r.FormValue("title")),
		Subtitle: strings.TrimSpace(r.FormValue("subtitle")),
		Body:     r.FormValue("body"),
		ImageURL: strings.TrimSpace(r.FormValue("img_url")),
	}
	if post.Title == "" || post.Subtitle == "" || post.Body == "" || post.ImageURL == "" {
		h.flash(r, "Title, subtitle, body, and image URL are all required.")
		http.Redirect(w, r, backTo, http.StatusSeeOther)
		return nil, false
	}
	return post, true
}

// pathID extracts the trailing integer id from a path like /post/42.
func pathID(path, prefix string) (int, bool) {
	raw := strings.TrimPrefix(path, prefix)
	if raw == "" || strings.Contains(raw, "/") {
		return 0, false
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}
