// Package views holds the models handed to user-provided templ components
// and the helpers templates call while rendering them.
package views

import "time"

// Site holds site-wide settings every page model carries so nothing is
// hardcoded in templates.
type Site struct {
	Name        string
	URL         string
	Description string
	Author      string
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
}

// Post is the render-ready shape of a blog post. Content has already been
// through the lazy-image and embed transforms.
type Post struct {
	ID           string
	Title        string
	Slug         string
	Link         string
	Excerpt      string
	Content      string
	IsPublished  bool
	PubDate      time.Time
	LastModified time.Time
	Tags         []string
	Categories   []string
	Comments     []Comment
	CommentsOpen bool
}

// Comment is one rendered comment.
type Comment struct {
	ID      string
	Author  string
	Email   string
	Content string
	IsAdmin bool
	PubDate time.Time
}

// PostList is the model for the home page and the tag/category listings.
// AllTags and AllCategories feed the browse navigation and come from the
// post cache, so they only cover names that could have published posts.
type PostList struct {
	Site          Site
	Posts         []Post
	Filter        string // active tag or category, empty on the home page
	FilterKind    string // "tag" or "category"
	AllTags       []string
	AllCategories []string
	Page          int // zero-based
	TotalPages    int
	Total         int
}

// PostPage is the model for a single post page.
type PostPage struct {
	Site      Site
	Post      Post
	CsrfToken string
}

// Login is the model for the admin login form.
type Login struct {
	Site      Site
	ShowError bool
	CsrfToken string
}

// Dashboard is the model for the admin overview.
type Dashboard struct {
	Site      Site
	Posts     []Post
	Message   string
	CsrfToken string
}

// Editor is the model for the post edit form.
type Editor struct {
	Site          Site
	Post          Post
	AllCategories []string
	CsrfToken     string
}

// ImageFile is one stored upload shown on the admin images page.
type ImageFile struct {
	Name string
	URL  string
	Size int64
}

// ImageList is the model for the admin images page.
type ImageList struct {
	Site      Site
	Images    []ImageFile
	CsrfToken string
}
