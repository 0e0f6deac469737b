package metaweblog

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/minipress/minipress/blog"
	"github.com/minipress/minipress/storage"
)

// XML-RPC fault codes. 403/404 follow what desktop publishing clients
// expect; the negative codes are the standard parse/dispatch faults.
const (
	faultUnauthorized  = 403
	faultNotFound      = 404
	faultParseError    = -32700
	faultUnknownMethod = -32601
	faultInternal      = -32500
)

const maxRequestSize = 25 << 20 // base64 media uploads are large

// PostService is the slice of the blog service the MetaWeblog surface needs.
type PostService interface {
	Save(ctx context.Context, in blog.PostInput) (*blog.Post, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*blog.Post, error)
	GetAll(ctx context.Context, page, pageSize int) (blog.Page, error)
	Categories(ctx context.Context) ([]string, error)
	Tags(ctx context.Context) ([]string, error)
}

// Options wires a Handler.
type Options struct {
	BlogID      string
	BlogName    string
	SiteURL     string
	Blog        PostService
	Files       blog.FileSaver
	Credentials func(username, password string) bool
	Log         zerolog.Logger
}

// Handler serves the MetaWeblog XML-RPC endpoint.
type Handler struct {
	opts Options
}

// NewHandler returns a Handler for the given options.
func NewHandler(opts Options) *Handler {
	return &Handler{opts: opts}
}

// ServeHTTP decodes one methodCall, dispatches it, and writes the
// methodResponse. Every error is reported as an XML-RPC fault with HTTP
// 200, which is what clients expect.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestSize))
	if err != nil {
		h.writeFault(w, faultParseError, "could not read request")
		return
	}
	call, err := parseMethodCall(body)
	if err != nil {
		h.writeFault(w, faultParseError, "malformed XML-RPC request")
		return
	}

	result, code, err := h.dispatch(r.Context(), call)
	if err != nil {
		h.opts.Log.Warn().Err(err).Str("method", call.MethodName).Msg("metaweblog fault")
		h.writeFault(w, code, err.Error())
		return
	}
	h.write(w, marshalResponse(result))
}

func (h *Handler) dispatch(ctx context.Context, call *methodCall) (any, int, error) {
	switch call.MethodName {
	case "metaWeblog.newPost":
		return h.withAuth(ctx, call, 1, h.newPost)
	case "metaWeblog.editPost":
		return h.withAuth(ctx, call, 1, h.editPost)
	case "metaWeblog.getPost":
		return h.withAuth(ctx, call, 1, h.getPost)
	case "metaWeblog.getRecentPosts":
		return h.withAuth(ctx, call, 1, h.getRecentPosts)
	case "metaWeblog.getCategories":
		return h.withAuth(ctx, call, 1, h.getCategories)
	case "metaWeblog.newMediaObject":
		return h.withAuth(ctx, call, 1, h.newMediaObject)
	case "blogger.deletePost":
		// blogger methods carry a leading appkey before the id parameter.
		return h.withAuth(ctx, call, 2, h.deletePost)
	case "blogger.getUsersBlogs":
		return h.withAuth(ctx, call, 1, h.getUsersBlogs)
	case "wp.getTags":
		return h.withAuth(ctx, call, 1, h.getTags)
	default:
		return nil, faultUnknownMethod, errors.New("unknown method " + call.MethodName)
	}
}

// withAuth validates the username/password pair found at positions credPos
// and credPos+1 before invoking fn.
func (h *Handler) withAuth(ctx context.Context, call *methodCall, credPos int,
	fn func(ctx context.Context, call *methodCall) (any, int, error)) (any, int, error) {
	username := call.arg(credPos).str()
	password := call.arg(credPos + 1).str()
	if !h.opts.Credentials(username, password) {
		return nil, faultUnauthorized, errors.New("Unauthorized")
	}
	return fn(ctx, call)
}

// postInput builds a PostInput from the wire post struct at position pos.
func (h *Handler) postInput(call *methodCall, pos int, id string) blog.PostInput {
	m := call.arg(pos).structMap()
	title := m["title"].str()
	slug := strings.TrimSpace(m["wp_slug"].str())
	if slug == "" {
		slug = blog.CreateSlug(title)
	}

	var categories []string
	for _, v := range m["categories"].slice() {
		if name := strings.TrimSpace(v.str()); name != "" {
			categories = append(categories, name)
		}
	}
	var tags []string
	for _, part := range strings.Split(m["mt_keywords"].str(), ",") {
		if name := strings.TrimSpace(part); name != "" {
			tags = append(tags, name)
		}
	}

	return blog.PostInput{
		ID:          id,
		Title:       title,
		Slug:        slug,
		Excerpt:     m["mt_excerpt"].str(),
		Content:     m["description"].str(),
		IsPublished: call.arg(pos + 1).boolVal(),
		PubDate:     m["dateCreated"].timeVal(),
		Tags:        tags,
		Categories:  categories,
	}
}

func (h *Handler) newPost(ctx context.Context, call *methodCall) (any, int, error) {
	in := h.postInput(call, 3, "")
	post, err := h.opts.Blog.Save(ctx, in)
	if err != nil {
		return nil, faultInternal, err
	}
	return post.ID, 0, nil
}

func (h *Handler) editPost(ctx context.Context, call *methodCall) (any, int, error) {
	postID := call.arg(0).str()
	in := h.postInput(call, 3, postID)
	if _, err := h.opts.Blog.Save(ctx, in); err != nil {
		if errors.Is(err, blog.ErrNotFound) {
			return false, 0, nil
		}
		return nil, faultInternal, err
	}
	return true, 0, nil
}

func (h *Handler) deletePost(ctx context.Context, call *methodCall) (any, int, error) {
	postID := call.arg(1).str()
	if err := h.opts.Blog.Delete(ctx, postID); err != nil {
		if errors.Is(err, blog.ErrNotFound) {
			return false, 0, nil
		}
		return nil, faultInternal, err
	}
	return true, 0, nil
}

func (h *Handler) getPost(ctx context.Context, call *methodCall) (any, int, error) {
	post, err := h.opts.Blog.FindByID(ctx, call.arg(0).str())
	if err != nil {
		if errors.Is(err, blog.ErrNotFound) {
			return nil, faultNotFound, errors.New("post not found")
		}
		return nil, faultInternal, err
	}
	return h.wirePost(post), 0, nil
}

func (h *Handler) getRecentPosts(ctx context.Context, call *methodCall) (any, int, error) {
	count := call.arg(3).intVal()
	if count <= 0 {
		count = 10
	}
	page, err := h.opts.Blog.GetAll(ctx, 0, count)
	if err != nil {
		return nil, faultInternal, err
	}
	posts := make([]rpcStruct, len(page.Items))
	for i, p := range page.Items {
		posts[i] = h.wirePost(p)
	}
	return posts, 0, nil
}

func (h *Handler) getCategories(ctx context.Context, call *methodCall) (any, int, error) {
	categories, err := h.opts.Blog.Categories(ctx)
	if err != nil {
		return nil, faultInternal, err
	}
	out := make([]rpcStruct, len(categories))
	for i, name := range categories {
		out[i] = rpcStruct{
			{Name: "categoryid", Value: name},
			{Name: "title", Value: name},
			{Name: "description", Value: name},
		}
	}
	return out, 0, nil
}

func (h *Handler) getTags(ctx context.Context, call *methodCall) (any, int, error) {
	tags, err := h.opts.Blog.Tags(ctx)
	if err != nil {
		return nil, faultInternal, err
	}
	out := make([]rpcStruct, len(tags))
	for i, name := range tags {
		out[i] = rpcStruct{{Name: "name", Value: name}}
	}
	return out, 0, nil
}

func (h *Handler) getUsersBlogs(ctx context.Context, call *methodCall) (any, int, error) {
	return []rpcStruct{{
		{Name: "blogid", Value: h.opts.BlogID},
		{Name: "blogName", Value: h.opts.BlogName},
		{Name: "url", Value: h.opts.SiteURL},
	}}, 0, nil
}

func (h *Handler) newMediaObject(ctx context.Context, call *methodCall) (any, int, error) {
	m := call.arg(3).structMap()
	name := m["name"].str()
	bits, err := m["bits"].bytesVal()
	if err != nil {
		return nil, faultParseError, errors.New("bits is not valid base64")
	}

	// Same treatment as the admin upload form: oversized raster images
	// are downscaled and re-encoded, undecodable formats stored as-is.
	if processed, perr := storage.ShrinkImage(bytes.NewReader(bits)); perr == nil {
		bits = processed.Data
		name = strings.TrimSuffix(name, filepath.Ext(name)) + ".jpg"
	}

	path, err := h.opts.Files.SaveFile(bits, name)
	if err != nil {
		return nil, faultInternal, err
	}
	return rpcStruct{{Name: "url", Value: strings.TrimRight(h.opts.SiteURL, "/") + path}}, 0, nil
}

func (h *Handler) wirePost(p *blog.Post) rpcStruct {
	return rpcStruct{
		{Name: "postid", Value: p.ID},
		{Name: "title", Value: p.Title},
		{Name: "wp_slug", Value: p.Slug},
		{Name: "permalink", Value: strings.TrimRight(h.opts.SiteURL, "/") + p.Link()},
		{Name: "dateCreated", Value: p.PubDate},
		{Name: "mt_excerpt", Value: p.Excerpt},
		{Name: "description", Value: p.Content},
		{Name: "categories", Value: p.Categories},
		{Name: "mt_keywords", Value: strings.Join(p.Tags, ",")},
	}
}

func (h *Handler) write(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *Handler) writeFault(w http.ResponseWriter, code int, msg string) {
	h.write(w, marshalFault(code, msg))
}
