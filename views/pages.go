package views

import (
	"context"
	"fmt"
	"html"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// The components below are the stock templates. They render a complete,
// unstyled-beyond-basics blog so a fresh install works out of the box;
// most installs replace them with their own templ components.

type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *htmlWriter) text(s string) {
	h.raw(html.EscapeString(s))
}

func (h *htmlWriter) rawf(format string, args ...any) {
	h.raw(fmt.Sprintf(format, args...))
}

func component(fn func(h *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		fn(h)
		return h.err
	})
}

func pageHead(h *htmlWriter, site Site, meta PageMeta) {
	h.raw("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	h.raw("<meta charset=\"utf-8\">\n")
	h.raw("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	h.rawf("<title>%s</title>\n", html.EscapeString(meta.Title))
	if meta.Description != "" {
		h.rawf("<meta name=\"description\" content=\"%s\">\n", html.EscapeString(meta.Description))
	}
	h.rawf("<meta property=\"og:title\" content=\"%s\">\n", html.EscapeString(meta.Title))
	if meta.OGType != "" {
		h.rawf("<meta property=\"og:type\" content=\"%s\">\n", html.EscapeString(meta.OGType))
	}
	if meta.URL != "" {
		h.rawf("<meta property=\"og:url\" content=\"%s\">\n", html.EscapeString(meta.URL))
		h.rawf("<link rel=\"canonical\" href=\"%s\">\n", html.EscapeString(meta.URL))
	}
	h.raw("<link rel=\"alternate\" type=\"application/rss+xml\" href=\"/feed/rss\">\n")
	h.raw("<link rel=\"alternate\" type=\"application/atom+xml\" href=\"/feed/atom\">\n")
	h.raw("<link rel=\"EditURI\" type=\"application/rsd+xml\" href=\"/rsd.xml\">\n")
	h.raw("<link rel=\"stylesheet\" href=\"/public/css/site.css\">\n")
	h.raw("</head>\n<body>\n")
	h.raw("<header><h1><a href=\"/\">")
	h.text(site.Name)
	h.raw("</a></h1><p>")
	h.text(site.Description)
	h.raw("</p></header>\n<main>\n")
}

func pageFoot(h *htmlWriter, site Site) {
	h.raw("</main>\n<footer><p>")
	h.text(site.Author)
	h.raw(" &middot; <a href=\"/feed/rss\">RSS</a> &middot; <a href=\"/admin/\">Admin</a></p></footer>\n")
	h.raw("</body>\n</html>\n")
}

func postSummary(h *htmlWriter, p Post) {
	h.raw("<article class=\"summary\">\n<h2><a href=\"")
	h.text(p.Link)
	h.raw("\">")
	h.text(p.Title)
	h.raw("</a></h2>\n")
	h.rawf("<time datetime=\"%s\">%s</time>\n",
		p.PubDate.Format("2006-01-02"), p.PubDate.Format("January 2, 2006"))
	h.raw("<p>")
	h.text(p.Excerpt)
	h.raw("</p>\n</article>\n")
}

func pagination(h *htmlWriter, base string, page, totalPages int) {
	if totalPages <= 1 {
		return
	}
	h.raw("<nav class=\"pagination\">")
	if page > 0 {
		h.rawf("<a href=\"%s?page=%d\">Newer</a> ", base, page-1)
	}
	h.rawf("<span>Page %d of %d</span>", page+1, totalPages)
	if page < totalPages-1 {
		h.rawf(" <a href=\"%s?page=%d\">Older</a>", base, page+1)
	}
	h.raw("</nav>\n")
}

// Home renders the post listing used by the home page and the tag and
// category filters.
func Home(model PostList) templ.Component {
	return component(func(h *htmlWriter) {
		title := model.Site.Name
		base := "/"
		if model.Filter != "" {
			title = model.Filter + " - " + model.Site.Name
			base = "/blog/" + model.FilterKind + "/" + PathEscape(model.Filter) + "/"
		}
		pageHead(h, model.Site, PageMeta{
			Title:       title,
			Description: model.Site.Description,
			URL:         BuildURL(model.Site.URL),
			OGType:      "website",
		})
		h.rawf("<script type=\"application/ld+json\">%s</script>\n", WebsiteJsonLD(model.Site))
		if model.Filter != "" {
			h.rawf("<p class=\"filter\">Posts in %s <strong>", html.EscapeString(model.FilterKind))
			h.text(model.Filter)
			h.raw("</strong></p>\n")
		}
		if len(model.Posts) == 0 {
			h.raw("<p>No posts yet.</p>\n")
		}
		for _, p := range model.Posts {
			postSummary(h, p)
		}
		pagination(h, base, model.Page, model.TotalPages)
		browseNav(h, model)
		pageFoot(h, model.Site)
	})
}

func browseNav(h *htmlWriter, model PostList) {
	if len(model.AllTags) == 0 && len(model.AllCategories) == 0 {
		return
	}
	h.raw("<nav class=\"browse\">\n")
	if len(model.AllCategories) > 0 {
		h.raw("<p>Categories: ")
		for i, name := range model.AllCategories {
			if i > 0 {
				h.raw(", ")
			}
			h.rawf("<a href=\"/blog/category/%s/\">", PathEscape(name))
			h.text(name)
			h.raw("</a>")
		}
		h.raw("</p>\n")
	}
	if len(model.AllTags) > 0 {
		h.raw("<p>Tags: ")
		for i, name := range model.AllTags {
			if i > 0 {
				h.raw(", ")
			}
			h.rawf("<a href=\"/blog/tag/%s/\">", PathEscape(name))
			h.text(name)
			h.raw("</a>")
		}
		h.raw("</p>\n")
	}
	h.raw("</nav>\n")
}

// PostView renders a single post with its comments and comment form.
func PostView(model PostPage) templ.Component {
	return component(func(h *htmlWriter) {
		p := model.Post
		pageHead(h, model.Site, PageMeta{
			Title:       p.Title + " - " + model.Site.Name,
			Description: p.Excerpt,
			URL:         BuildURL(model.Site.URL, "blog", p.Slug),
			OGType:      "article",
		})
		h.rawf("<script type=\"application/ld+json\">%s</script>\n", BlogPostingJsonLD(p, model.Site))
		h.raw("<article class=\"post\">\n<h2>")
		h.text(p.Title)
		h.raw("</h2>\n")
		if !p.IsPublished {
			h.raw("<p class=\"draft\">Draft</p>\n")
		}
		h.rawf("<time datetime=\"%s\">%s</time>\n",
			p.PubDate.Format("2006-01-02"), p.PubDate.Format("January 2, 2006"))
		h.raw("<div class=\"content\">")
		h.raw(p.Content)
		h.raw("</div>\n")
		if len(p.Categories) > 0 {
			h.raw("<p class=\"categories\">Posted in ")
			for i, name := range p.Categories {
				if i > 0 {
					h.raw(", ")
				}
				h.rawf("<a href=\"/blog/category/%s/\">", PathEscape(name))
				h.text(name)
				h.raw("</a>")
			}
			h.raw("</p>\n")
		}
		if len(p.Tags) > 0 {
			h.raw("<p class=\"tags\">Tagged ")
			for i, name := range p.Tags {
				if i > 0 {
					h.raw(", ")
				}
				h.rawf("<a href=\"/blog/tag/%s/\">", PathEscape(name))
				h.text(name)
				h.raw("</a>")
			}
			h.raw("</p>\n")
		}
		h.raw("</article>\n")
		comments(h, model)
		pageFoot(h, model.Site)
	})
}

func comments(h *htmlWriter, model PostPage) {
	p := model.Post
	h.rawf("<section class=\"comments\"><h3>%d comments</h3>\n", len(p.Comments))
	for _, c := range p.Comments {
		h.rawf("<article class=\"comment\" id=\"%s\">\n<p class=\"author", html.EscapeString(c.ID))
		if c.IsAdmin {
			h.raw(" admin")
		}
		h.raw("\">")
		h.text(c.Author)
		h.rawf("</p>\n<time datetime=\"%s\">%s</time>\n<p>",
			c.PubDate.Format("2006-01-02"), c.PubDate.Format("January 2, 2006"))
		h.text(c.Content)
		h.raw("</p>\n</article>\n")
	}
	if !p.CommentsOpen {
		h.raw("<p>Comments are closed.</p>\n</section>\n")
		return
	}
	h.rawf("<form method=\"post\" action=\"/blog/comment/%s\">\n", html.EscapeString(p.ID))
	h.rawf("<input type=\"hidden\" name=\"_csrf\" value=\"%s\">\n", html.EscapeString(model.CsrfToken))
	h.raw("<label>Name <input type=\"text\" name=\"author\" required></label>\n")
	h.raw("<label>Email <input type=\"email\" name=\"email\" required></label>\n")
	h.raw("<label>Comment <textarea name=\"content\" required></textarea></label>\n")
	// Honeypot. Hidden from people, filled in by comment bots.
	h.raw("<input type=\"text\" name=\"website\" tabindex=\"-1\" autocomplete=\"off\" style=\"display:none\">\n")
	h.raw("<button type=\"submit\">Post comment</button>\n</form>\n</section>\n")
}

// LoginView renders the admin login form.
func LoginView(model Login) templ.Component {
	return component(func(h *htmlWriter) {
		pageHead(h, model.Site, PageMeta{Title: "Sign in - " + model.Site.Name})
		h.raw("<h2>Sign in</h2>\n")
		if model.ShowError {
			h.raw("<p class=\"error\">Wrong username or password.</p>\n")
		}
		h.raw("<form method=\"post\" action=\"/admin/login/\">\n")
		h.rawf("<input type=\"hidden\" name=\"_csrf\" value=\"%s\">\n", html.EscapeString(model.CsrfToken))
		h.raw("<label>Username <input type=\"text\" name=\"username\" required></label>\n")
		h.raw("<label>Password <input type=\"password\" name=\"password\" required></label>\n")
		h.raw("<button type=\"submit\">Sign in</button>\n</form>\n")
		pageFoot(h, model.Site)
	})
}

// DashboardView renders the admin post overview.
func DashboardView(model Dashboard) templ.Component {
	return component(func(h *htmlWriter) {
		pageHead(h, model.Site, PageMeta{Title: "Dashboard - " + model.Site.Name})
		h.raw("<h2>Posts</h2>\n")
		if model.Message != "" {
			h.raw("<p class=\"message\">")
			h.text(model.Message)
			h.raw("</p>\n")
		}
		h.raw("<p><a href=\"/admin/post/\">New post</a> &middot; <a href=\"/admin/images/\">Images</a></p>\n")
		h.raw("<table>\n<tr><th>Title</th><th>Published</th><th>Comments</th><th></th></tr>\n")
		for _, p := range model.Posts {
			h.raw("<tr><td><a href=\"/admin/post/")
			h.text(p.ID)
			h.raw("/\">")
			h.text(p.Title)
			h.raw("</a></td><td>")
			if p.IsPublished {
				h.text(p.PubDate.Format("2006-01-02"))
			} else {
				h.raw("draft")
			}
			h.rawf("</td><td>%d</td><td>", len(p.Comments))
			h.rawf("<button class=\"delete\" data-url=\"/admin/post/%s/\">Delete</button>", html.EscapeString(p.ID))
			h.raw("</td></tr>\n")
		}
		h.raw("</table>\n")
		h.rawf("<form method=\"post\" action=\"/admin/logout/\"><input type=\"hidden\" name=\"_csrf\" value=\"%s\"><button type=\"submit\">Sign out</button></form>\n",
			html.EscapeString(model.CsrfToken))
		pageFoot(h, model.Site)
	})
}

// EditorView renders the post edit form.
func EditorView(model Editor) templ.Component {
	return component(func(h *htmlWriter) {
		p := model.Post
		title := "New post"
		if p.ID != "" {
			title = "Edit post"
		}
		pageHead(h, model.Site, PageMeta{Title: title + " - " + model.Site.Name})
		h.rawf("<h2>%s</h2>\n", title)
		h.raw("<form method=\"post\" action=\"/admin/save/\" class=\"editor\">\n")
		h.rawf("<input type=\"hidden\" name=\"_csrf\" value=\"%s\">\n", html.EscapeString(model.CsrfToken))
		h.raw("<input type=\"hidden\" name=\"id\" value=\"")
		h.text(p.ID)
		h.raw("\">\n<label>Title <input type=\"text\" name=\"title\" required value=\"")
		h.text(p.Title)
		h.raw("\"></label>\n<label>Slug <input type=\"text\" name=\"slug\" value=\"")
		h.text(p.Slug)
		h.raw("\"></label>\n<label>Excerpt <textarea name=\"excerpt\" required>")
		h.text(p.Excerpt)
		h.raw("</textarea></label>\n<label>Content <textarea name=\"content\" rows=\"20\" required>")
		h.text(p.Content)
		h.raw("</textarea></label>\n<label>Tags <input type=\"text\" name=\"tags\" value=\"")
		h.text(JoinNames(p.Tags))
		h.raw("\" placeholder=\"comma, separated\"></label>\n<label>Categories <input type=\"text\" name=\"categories\" value=\"")
		h.text(JoinNames(p.Categories))
		h.raw("\" list=\"all-categories\"></label>\n<datalist id=\"all-categories\">\n")
		for _, name := range model.AllCategories {
			h.raw("<option value=\"")
			h.text(name)
			h.raw("\">\n")
		}
		h.raw("</datalist>\n<label><input type=\"checkbox\" name=\"published\" value=\"true\"")
		if p.IsPublished {
			h.raw(" checked")
		}
		h.raw("> Published</label>\n<button type=\"submit\">Save</button>\n</form>\n")
		pageFoot(h, model.Site)
	})
}

// ImagesView renders the admin upload gallery.
func ImagesView(model ImageList) templ.Component {
	return component(func(h *htmlWriter) {
		pageHead(h, model.Site, PageMeta{Title: "Images - " + model.Site.Name})
		h.raw("<h2>Images</h2>\n")
		h.raw("<form method=\"post\" action=\"/admin/images/upload/\" enctype=\"multipart/form-data\">\n")
		h.rawf("<input type=\"hidden\" name=\"_csrf\" value=\"%s\">\n", html.EscapeString(model.CsrfToken))
		h.raw("<input type=\"file\" name=\"image\" accept=\"image/*\" required>\n")
		h.raw("<button type=\"submit\">Upload</button>\n</form>\n<ul class=\"images\">\n")
		for _, img := range model.Images {
			h.raw("<li><a href=\"")
			h.text(img.URL)
			h.raw("\">")
			h.text(img.Name)
			h.raw("</a> <span>" + formatSize(img.Size) + "</span></li>\n")
		}
		h.raw("</ul>\n")
		pageFoot(h, model.Site)
	})
}

func formatSize(n int64) string {
	if n >= 1<<20 {
		return strconv.FormatInt(n>>20, 10) + " MB"
	}
	if n >= 1<<10 {
		return strconv.FormatInt(n>>10, 10) + " KB"
	}
	return strconv.FormatInt(n, 10) + " B"
}

// NotFound renders the 404 page.
func NotFound() templ.Component {
	return component(func(h *htmlWriter) {
		h.raw("<!DOCTYPE html>\n<html lang=\"en\"><head><meta charset=\"utf-8\"><title>Not found</title></head>\n")
		h.raw("<body><h1>404</h1><p>The page you are looking for does not exist. <a href=\"/\">Go home</a>.</p></body></html>\n")
	})
}

// ServerError renders the 500 page.
func ServerError() templ.Component {
	return component(func(h *htmlWriter) {
		h.raw("<!DOCTYPE html>\n<html lang=\"en\"><head><meta charset=\"utf-8\"><title>Something went wrong</title></head>\n")
		h.raw("<body><h1>500</h1><p>Something went wrong. <a href=\"/\">Go home</a>.</p></body></html>\n")
	})
}
