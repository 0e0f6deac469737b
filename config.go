package minipress

import "time"

// Config holds all configuration for a minipress site.
type Config struct {
	Name        string // Site name (default "Blog")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for feeds and meta tags
	Author      string // Author name for JSON-LD and Atom

	Addr         string // Listen address (default ":3000")
	DatabasePath string // SQLite path (default "data/blog.db")
	StorageRoot  string // Root for uploaded files (default "wwwroot")

	PostsPerPage           int // Listing page size (default 4)
	CommentsCloseAfterDays int // 0 keeps comments open forever

	AdminUser         string // Required: admin login name
	AdminPasswordHash string // Required: hex PBKDF2-HMAC-SHA1 hash of the admin password
	AdminSalt         string // Required: salt the hash was derived with
	SessionSecret     string // Required: session encryption secret
	CookieSecure      bool   // Set true for HTTPS

	PostCacheTTL time.Duration // Published-post cache TTL (default 5min)
}

func (c *Config) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/blog.db"
	}
	if c.StorageRoot == "" {
		c.StorageRoot = "wwwroot"
	}
	if c.PostsPerPage == 0 {
		c.PostsPerPage = 4
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 5 * time.Minute
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}
