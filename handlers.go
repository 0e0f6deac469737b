package minipress

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/minipress/minipress/blog"
	"github.com/minipress/minipress/views"
)

func (a *App) site() views.Site {
	return views.Site{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		Description: a.Config.Description,
		Author:      a.Config.Author,
	}
}

// viewPost maps a domain post to its render-ready shape.
func (a *App) viewPost(p *blog.Post) views.Post {
	comments := make([]views.Comment, len(p.Comments))
	for i, c := range p.Comments {
		comments[i] = views.Comment{
			ID:      c.ID,
			Author:  c.Author,
			Email:   c.Email,
			Content: c.Content,
			IsAdmin: c.IsAdmin,
			PubDate: c.PubDate,
		}
	}
	return views.Post{
		ID:           p.ID,
		Title:        p.Title,
		Slug:         p.Slug,
		Link:         p.Link(),
		Excerpt:      p.Excerpt,
		Content:      blog.RenderContent(p.Content),
		IsPublished:  p.IsPublished,
		PubDate:      p.PubDate,
		LastModified: p.LastModified,
		Tags:         p.Tags,
		Categories:   p.Categories,
		Comments:     comments,
		CommentsOpen: p.CommentsOpen(a.Config.CommentsCloseAfterDays, time.Now().UTC()),
	}
}

func (a *App) viewPosts(posts []*blog.Post) []views.Post {
	out := make([]views.Post, len(posts))
	for i, p := range posts {
		out[i] = a.viewPost(p)
	}
	return out
}

// browseNames reads the tag and category name lists for the listing
// navigation from the post cache.
func (a *App) browseNames(ctx context.Context) ([]string, []string, error) {
	tags, err := a.Cache.Tags(ctx)
	if err != nil {
		return nil, nil, err
	}
	categories, err := a.Cache.Categories(ctx)
	if err != nil {
		return nil, nil, err
	}
	return tags, categories, nil
}

func pageParam(c echo.Context) int {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 0 {
		return 0
	}
	return page
}

func totalPages(total, size int) int {
	if size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

func (a *App) handleHome(c echo.Context) error {
	ctx := c.Request().Context()
	page := pageParam(c)
	result, err := a.Blog.GetAll(ctx, page, 0)
	if err != nil {
		return err
	}
	tags, categories, err := a.browseNames(ctx)
	if err != nil {
		return err
	}
	return Render(c, a.Views.Home(views.PostList{
		Site:          a.site(),
		Posts:         a.viewPosts(result.Items),
		AllTags:       tags,
		AllCategories: categories,
		Page:          page,
		TotalPages:    totalPages(result.Total, a.Config.PostsPerPage),
		Total:         result.Total,
	}))
}

func (a *App) handlePost(c echo.Context) error {
	slug := c.Param("slug")
	post, err := a.Blog.FindBySlug(c.Request().Context(), slug)
	if err != nil {
		if errors.Is(err, blog.ErrNotFound) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		}
		return err
	}
	// Drafts are only visible to the admin.
	if !post.IsPublished && !IsAdmin(c) {
		return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
	}
	return Render(c, a.Views.Post(views.PostPage{
		Site:      a.site(),
		Post:      a.viewPost(post),
		CsrfToken: CsrfToken(c),
	}))
}

func (a *App) handleTag(c echo.Context) error {
	ctx := c.Request().Context()
	tag := c.Param("tag")
	page := pageParam(c)
	result, err := a.Blog.FindAllByTag(ctx, page, tag)
	if err != nil {
		return err
	}
	tags, categories, err := a.browseNames(ctx)
	if err != nil {
		return err
	}
	return Render(c, a.Views.Home(views.PostList{
		Site:          a.site(),
		Posts:         a.viewPosts(result.Items),
		Filter:        tag,
		FilterKind:    "tag",
		AllTags:       tags,
		AllCategories: categories,
		Page:          page,
		TotalPages:    totalPages(result.Total, a.Config.PostsPerPage),
		Total:         result.Total,
	}))
}

func (a *App) handleCategory(c echo.Context) error {
	ctx := c.Request().Context()
	category := c.Param("category")
	page := pageParam(c)
	result, err := a.Blog.FindAllByCategory(ctx, page, category)
	if err != nil {
		return err
	}
	tags, categories, err := a.browseNames(ctx)
	if err != nil {
		return err
	}
	return Render(c, a.Views.Home(views.PostList{
		Site:          a.site(),
		Posts:         a.viewPosts(result.Items),
		Filter:        category,
		FilterKind:    "category",
		AllTags:       tags,
		AllCategories: categories,
		Page:          page,
		TotalPages:    totalPages(result.Total, a.Config.PostsPerPage),
		Total:         result.Total,
	}))
}

func (a *App) handleAddComment(c echo.Context) error {
	ctx := c.Request().Context()
	postID := c.Param("postId")

	post, err := a.Blog.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, blog.ErrNotFound) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		}
		return err
	}

	author := strings.TrimSpace(c.FormValue("author"))
	email := strings.TrimSpace(c.FormValue("email"))
	content := strings.TrimSpace(c.FormValue("content"))
	if author == "" || email == "" || content == "" {
		return c.Redirect(http.StatusSeeOther, post.Link()+"#comments")
	}
	if !post.CommentsOpen(a.Config.CommentsCloseAfterDays, time.Now().UTC()) {
		return c.Redirect(http.StatusSeeOther, post.Link())
	}

	// The comment form ships with a hidden "website" field that browsers
	// leave empty and spam robots fill in.
	if c.FormValue("website") != "" {
		return c.Redirect(http.StatusSeeOther, post.Link())
	}

	commentID, err := a.Blog.AddComment(ctx, postID, blog.CommentInput{
		Author:  author,
		Email:   email,
		Content: content,
		IsAdmin: IsAdmin(c),
	})
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/blog/"+url.PathEscape(post.Slug)+"/#"+commentID)
}

func (a *App) handleDeleteComment(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	ctx := c.Request().Context()
	postID := c.Param("postId")
	commentID := c.Param("commentId")

	if err := a.Blog.DeleteComment(ctx, postID, commentID); err != nil {
		if errors.Is(err, blog.ErrNotFound) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		}
		return err
	}
	post, err := a.Blog.FindByID(ctx, postID)
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, post.Link()+"#comments")
}

func handleBlogRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/")
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(a.staticDir + "/favicon.svg")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Log.Error().Err(err).Str("uri", c.Request().RequestURI).Msg("server error")
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
