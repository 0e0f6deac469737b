package minipress

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/minipress/minipress/blog"
	"github.com/minipress/minipress/views"
)

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.Login(views.Login{
			Site:      a.site(),
			CsrfToken: CsrfToken(c),
		}))
	}
	return a.renderAdminDashboard(c, c.QueryParam("msg"))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	if !a.loginLimiter.Check(c.RealIP()) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	user := c.FormValue("username")
	pass := c.FormValue("password")
	if a.checkCredentials(user, pass) {
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.loginLimiter.Record(c.RealIP())
	a.Log.Warn().Str("ip", c.RealIP()).Msg("failed admin login")
	return Render(c, a.Views.Login(views.Login{
		Site:      a.site(),
		ShowError: true,
		CsrfToken: CsrfToken(c),
	}))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

func (a *App) handleAdminNewPost(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	return a.renderEditor(c, views.Post{IsPublished: true})
}

func (a *App) handleAdminEditPost(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	post, err := a.Blog.FindByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, blog.ErrNotFound) {
			return c.NoContent(http.StatusNotFound)
		}
		return err
	}
	return a.renderEditor(c, a.viewPost(post))
}

func (a *App) renderEditor(c echo.Context, post views.Post) error {
	categories, err := a.Blog.Categories(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminEditor(views.Editor{
		Site:          a.site(),
		Post:          post,
		AllCategories: categories,
		CsrfToken:     CsrfToken(c),
	}))
}

func (a *App) handleAdminSave(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if err := c.Request().ParseForm(); err != nil {
		return err
	}

	title := strings.TrimSpace(c.FormValue("title"))
	excerpt := strings.TrimSpace(c.FormValue("excerpt"))
	content := c.FormValue("content")
	if title == "" || excerpt == "" || strings.TrimSpace(content) == "" {
		return a.redirectDashboard(c, "Title, excerpt and content are required.")
	}
	slug := strings.TrimSpace(c.FormValue("slug"))
	if slug == "" {
		slug = blog.CreateSlug(title)
	}
	if slug == "" {
		return a.redirectDashboard(c, "Slug is required. Add a title or slug.")
	}

	in := blog.PostInput{
		ID:          strings.TrimSpace(c.FormValue("id")),
		Title:       title,
		Slug:        slug,
		Excerpt:     excerpt,
		Content:     content,
		IsPublished: c.FormValue("published") != "",
		Tags:        splitNames(c.FormValue("tags")),
		Categories:  splitNames(c.FormValue("categories")),
	}
	if _, err := a.Blog.Save(c.Request().Context(), in); err != nil {
		if errors.Is(err, blog.ErrNotFound) {
			return c.NoContent(http.StatusNotFound)
		}
		return err
	}
	a.Cache.Invalidate()
	return a.redirectDashboard(c, "saved")
}

func (a *App) handleAdminDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if err := a.Blog.Delete(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, blog.ErrNotFound) {
			return c.NoContent(http.StatusNotFound)
		}
		return err
	}
	a.Cache.Invalidate()
	return a.redirectDashboard(c, "deleted")
}

func (a *App) redirectDashboard(c echo.Context, msg string) error {
	return c.Redirect(http.StatusSeeOther, "/admin/?msg="+url.QueryEscape(msg))
}

func (a *App) renderAdminDashboard(c echo.Context, msg string) error {
	posts, err := a.Blog.All(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminDashboard(views.Dashboard{
		Site:      a.site(),
		Posts:     a.viewPosts(posts),
		Message:   msg,
		CsrfToken: CsrfToken(c),
	}))
}

// splitNames parses a comma-separated tag or category list, dropping empty
// entries.
func splitNames(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if name := strings.TrimSpace(part); name != "" {
			out = append(out, name)
		}
	}
	return out
}
