// Package blog holds the blog domain: entities, the SQLite-backed store,
// and the post workflow service that keeps tag/category associations and
// embedded post images consistent on every save.
package blog

import (
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a referenced post or comment does not exist.
var ErrNotFound = errors.New("blog: not found")

// Post is the central content entity. Tags and Categories carry the shared
// entity names in the order they were attached; Comments are exclusively
// owned by their post.
type Post struct {
	ID           string
	Title        string
	Slug         string
	Excerpt      string
	Content      string
	IsPublished  bool
	PubDate      time.Time
	LastModified time.Time
	Tags         []string
	Categories   []string
	Comments     []Comment
}

// Tag is a shared label entity. Name is the natural key everywhere outside
// the store; ID only exists for the join tables.
type Tag struct {
	ID   string
	Name string
}

// Category mirrors Tag; the two taxonomies only differ in how templates
// present them.
type Category struct {
	ID   string
	Name string
}

// Comment belongs to exactly one post.
type Comment struct {
	ID      string
	Author  string
	Email   string
	Content string
	IsAdmin bool
	PubDate time.Time
}

// PostInput is the request-shaped representation accepted by Service.Save.
// An empty ID means create. Comments are never part of a save.
type PostInput struct {
	ID          string
	Title       string
	Slug        string
	Excerpt     string
	Content     string
	IsPublished bool
	PubDate     time.Time // zero means keep existing / stamp now on create
	Tags        []string
	Categories  []string
}

// CommentInput is the caller-supplied part of a new comment; the service
// stamps ID and PubDate.
type CommentInput struct {
	Author  string
	Email   string
	Content string
	IsAdmin bool
}

// NewPostID returns a fresh time-derived post id. Ids sort chronologically,
// which is what the listing queries order by.
func NewPostID(now time.Time) string {
	return strconv.FormatInt(now.UnixNano(), 10)
}

// newEntityID returns an opaque id for tags, categories and comments.
func newEntityID() string {
	return uuid.NewString()
}

// Link returns the canonical site-relative URL of the post.
func (p Post) Link() string {
	return "/blog/" + p.Slug + "/"
}

// CommentsOpen reports whether new comments are still accepted, given the
// configured closing window in days. A window of zero keeps comments open
// forever.
func (p Post) CommentsOpen(closeAfterDays int, now time.Time) bool {
	if closeAfterDays <= 0 {
		return true
	}
	return !p.PubDate.AddDate(0, 0, closeAfterDays).Before(now)
}
