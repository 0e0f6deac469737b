// Package minipress is a personal-blog publishing engine built with Go,
// Echo, and templ. It provides post CRUD with tags, categories and
// comments, an admin dashboard, RSS/Atom feeds, a sitemap, and a
// MetaWeblog XML-RPC endpoint for remote publishing clients.
//
// Users provide their own templ templates via the ViewFuncs struct, and
// minipress handles the handler logic, middleware, and database operations.
package minipress

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/minipress/minipress/blog"
	"github.com/minipress/minipress/metaweblog"
	"github.com/minipress/minipress/storage"
	"github.com/minipress/minipress/views"
)

// ViewFuncs holds user-provided templ components that the engine calls when
// rendering pages. This is the inversion-of-control mechanism that lets
// users own and customize all templates.
type ViewFuncs struct {
	Home           func(model views.PostList) templ.Component
	Post           func(model views.PostPage) templ.Component
	Login          func(model views.Login) templ.Component
	AdminDashboard func(model views.Dashboard) templ.Component
	AdminEditor    func(model views.Editor) templ.Component
	AdminImages    func(model views.ImageList) templ.Component
	NotFound       func() templ.Component
	ServerError    func() templ.Component
}

// App is the central minipress application. It wires together the store,
// the post workflow service, file storage, cache, handlers, middleware, and
// user-provided templates.
type App struct {
	Config Config
	Echo   *echo.Echo
	Store  *blog.Store
	Blog   *blog.Service
	Files  *storage.FileStore
	Cache  *PostCache
	Views  ViewFuncs
	Log    zerolog.Logger

	loginLimiter *LoginLimiter
	customRoutes []func(*App)
	staticDir    string
}

// New creates a minipress App with the given configuration and view functions.
func New(cfg Config, viewFns ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     viewFns,
		Log:       zerolog.Nop(),
		staticDir: "public",
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// WithLogger sets the structured logger used by the App and its services.
func WithLogger(log zerolog.Logger) Option {
	return func(a *App) {
		a.Log = log
	}
}

// Start initializes the database, services, middleware, and routes, then
// starts the server. It blocks until the server stops.
func (a *App) Start() error {
	if a.Config.AdminUser == "" || a.Config.AdminPasswordHash == "" || a.Config.AdminSalt == "" {
		return fmt.Errorf("minipress: AdminUser, AdminPasswordHash and AdminSalt are required")
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("minipress: SessionSecret is required")
	}

	store, err := blog.NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("minipress: init store: %w", err)
	}
	a.Store = store

	a.Files = storage.NewFileStore(a.Config.StorageRoot)
	a.Blog = blog.NewService(store, a.Files, a.Config.PostsPerPage, a.Log)
	a.Cache = NewPostCache(a.Blog, a.Config.PostCacheTTL)
	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}

	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// User's static assets and uploaded post files.
	e.Static("/public", a.staticDir)
	e.Static("/Posts", a.Config.StorageRoot+"/Posts")
	e.GET("/favicon.svg", a.handleFavicon)

	// Discovery and syndication.
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/rsd.xml", a.handleRsd)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed/rss", a.handleRssFeed)
	e.GET("/feed/atom", a.handleAtomFeed)

	// Public blog routes.
	e.GET("/", a.handleHome)
	e.GET("/blog", handleBlogRedirect)
	e.GET("/blog/:slug/", a.handlePost)
	e.GET("/blog/tag/:tag/", a.handleTag)
	e.GET("/blog/category/:category/", a.handleCategory)
	e.POST("/blog/comment/:postId", a.handleAddComment)
	e.POST("/blog/comment/:postId/delete/:commentId", a.handleDeleteComment)

	// Admin routes.
	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)
	e.GET("/admin/post/", a.handleAdminNewPost)
	e.GET("/admin/post/:id/", a.handleAdminEditPost)
	e.POST("/admin/save/", a.handleAdminSave)
	e.DELETE("/admin/post/:id/", a.handleAdminDelete)
	e.GET("/admin/images/", a.handleImageList)
	e.POST("/admin/images/upload/", a.handleImageUpload)
	e.DELETE("/admin/images/:filename/", a.handleImageDelete)

	// MetaWeblog XML-RPC endpoint for remote publishing clients.
	mw := metaweblog.NewHandler(metaweblog.Options{
		BlogID:      "1",
		BlogName:    a.Config.Name,
		SiteURL:     a.Config.URL,
		Blog:        a.Blog,
		Files:       a.Files,
		Credentials: a.checkCredentials,
		Log:         a.Log,
	})
	e.POST("/metaweblog", func(c echo.Context) error {
		a.Cache.Invalidate()
		mw.ServeHTTP(c.Response(), c.Request())
		return nil
	})
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		fmt.Fprintf(os.Stderr, "minipress: required environment variable %s is not set\n", key)
		os.Exit(1)
	}
	return v
}
