package metaweblog

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minipress/minipress/blog"
)

type fakeService struct {
	posts     map[string]*blog.Post
	lastInput blog.PostInput
	nextID    int
}

func newFakeService() *fakeService {
	return &fakeService{posts: make(map[string]*blog.Post), nextID: 100}
}

func (f *fakeService) Save(ctx context.Context, in blog.PostInput) (*blog.Post, error) {
	f.lastInput = in
	id := in.ID
	if id == "" {
		f.nextID++
		id = fmt.Sprint(f.nextID)
	} else if _, ok := f.posts[id]; !ok {
		return nil, blog.ErrNotFound
	}
	p := &blog.Post{
		ID: id, Title: in.Title, Slug: in.Slug, Excerpt: in.Excerpt,
		Content: in.Content, IsPublished: in.IsPublished,
		PubDate: in.PubDate, Tags: in.Tags, Categories: in.Categories,
	}
	f.posts[id] = p
	return p, nil
}

func (f *fakeService) Delete(ctx context.Context, id string) error {
	if _, ok := f.posts[id]; !ok {
		return blog.ErrNotFound
	}
	delete(f.posts, id)
	return nil
}

func (f *fakeService) FindByID(ctx context.Context, id string) (*blog.Post, error) {
	p, ok := f.posts[id]
	if !ok {
		return nil, blog.ErrNotFound
	}
	return p, nil
}

func (f *fakeService) GetAll(ctx context.Context, page, pageSize int) (blog.Page, error) {
	var items []*blog.Post
	for _, p := range f.posts {
		items = append(items, p)
	}
	return blog.Page{Items: items, Total: len(items)}, nil
}

func (f *fakeService) Categories(ctx context.Context) ([]string, error) {
	return []string{"Programming"}, nil
}

func (f *fakeService) Tags(ctx context.Context) ([]string, error) {
	return []string{"go", "web"}, nil
}

type fakeFiles struct {
	saved map[string][]byte
}

func (f *fakeFiles) SaveFile(data []byte, suggestedName string) (string, error) {
	if f.saved == nil {
		f.saved = make(map[string][]byte)
	}
	f.saved[suggestedName] = data
	return "/Posts/files/" + suggestedName, nil
}

func setupHandler(t *testing.T) (*Handler, *fakeService, *fakeFiles) {
	t.Helper()
	svc := newFakeService()
	files := &fakeFiles{}
	h := NewHandler(Options{
		BlogID:   "1",
		BlogName: "Test Blog",
		SiteURL:  "https://example.com",
		Blog:     svc,
		Files:    files,
		Credentials: func(user, pass string) bool {
			return user == "admin" && pass == "secret"
		},
		Log: zerolog.Nop(),
	})
	return h, svc, files
}

func call(t *testing.T, h *Handler, body string) string {
	t.Helper()
	req := httptest.NewRequest("POST", "/metaweblog", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, 200, rec.Code, "XML-RPC always answers 200")
	return rec.Body.String()
}

func TestNewPost(t *testing.T) {
	h, svc, _ := setupHandler(t)

	out := call(t, h, `<?xml version="1.0"?>
<methodCall><methodName>metaWeblog.newPost</methodName><params>
<param><value><string>1</string></value></param>
<param><value><string>admin</string></value></param>
<param><value><string>secret</string></value></param>
<param><value><struct>
<member><name>title</name><value><string>Remote Post</string></value></member>
<member><name>description</name><value><string>body</string></value></member>
<member><name>mt_keywords</name><value><string>go, web ,</string></value></member>
<member><name>categories</name><value><array><data><value><string>Programming</string></value></data></array></value></member>
</struct></value></param>
<param><value><boolean>1</boolean></value></param>
</params></methodCall>`)

	assert.NotContains(t, out, "<fault>")
	assert.Contains(t, out, "<string>101</string>", "new post id is returned")

	in := svc.lastInput
	assert.Equal(t, "Remote Post", in.Title)
	assert.Equal(t, "remote-post", in.Slug, "missing wp_slug falls back to the title slug")
	assert.Equal(t, []string{"go", "web"}, in.Tags, "keywords split and trimmed")
	assert.Equal(t, []string{"Programming"}, in.Categories)
	assert.True(t, in.IsPublished)
}

func TestEditPostNotFound(t *testing.T) {
	h, _, _ := setupHandler(t)

	out := call(t, h, `<?xml version="1.0"?>
<methodCall><methodName>metaWeblog.editPost</methodName><params>
<param><value><string>missing</string></value></param>
<param><value><string>admin</string></value></param>
<param><value><string>secret</string></value></param>
<param><value><struct>
<member><name>title</name><value><string>T</string></value></member>
<member><name>description</name><value><string>b</string></value></member>
</struct></value></param>
<param><value><boolean>0</boolean></value></param>
</params></methodCall>`)

	assert.NotContains(t, out, "<fault>")
	assert.Contains(t, out, "<boolean>0</boolean>", "editing a missing post answers false")
}

func TestGetPost(t *testing.T) {
	h, svc, _ := setupHandler(t)
	svc.posts["42"] = &blog.Post{
		ID: "42", Title: "Existing", Slug: "existing",
		PubDate: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Tags:    []string{"go"}, Categories: []string{"Programming"},
	}

	out := call(t, h, `<?xml version="1.0"?>
<methodCall><methodName>metaWeblog.getPost</methodName><params>
<param><value><string>42</string></value></param>
<param><value><string>admin</string></value></param>
<param><value><string>secret</string></value></param>
</params></methodCall>`)

	assert.Contains(t, out, "<name>postid</name><value><string>42</string></value>")
	assert.Contains(t, out, "https://example.com/blog/existing/")
	assert.Contains(t, out, "<dateTime.iso8601>20250601T12:00:00</dateTime.iso8601>")
	assert.Contains(t, out, "<name>mt_keywords</name><value><string>go</string></value>")
}

func TestDeletePost(t *testing.T) {
	h, svc, _ := setupHandler(t)
	svc.posts["42"] = &blog.Post{ID: "42"}

	body := `<?xml version="1.0"?>
<methodCall><methodName>blogger.deletePost</methodName><params>
<param><value><string>appkey</string></value></param>
<param><value><string>42</string></value></param>
<param><value><string>admin</string></value></param>
<param><value><string>secret</string></value></param>
<param><value><boolean>1</boolean></value></param>
</params></methodCall>`

	out := call(t, h, body)
	assert.Contains(t, out, "<boolean>1</boolean>")
	assert.Empty(t, svc.posts)

	// Deleting again reports false, not a fault.
	out = call(t, h, body)
	assert.NotContains(t, out, "<fault>")
	assert.Contains(t, out, "<boolean>0</boolean>")
}

func TestNewMediaObject(t *testing.T) {
	h, _, files := setupHandler(t)

	payload := []byte{0xff, 0xd8, 0xff}
	out := call(t, h, `<?xml version="1.0"?>
<methodCall><methodName>metaWeblog.newMediaObject</methodName><params>
<param><value><string>1</string></value></param>
<param><value><string>admin</string></value></param>
<param><value><string>secret</string></value></param>
<param><value><struct>
<member><name>name</name><value><string>shot.jpg</string></value></member>
<member><name>type</name><value><string>image/jpeg</string></value></member>
<member><name>bits</name><value><base64>`+base64.StdEncoding.EncodeToString(payload)+`</base64></value></member>
</struct></value></param>
</params></methodCall>`)

	assert.Contains(t, out, "<name>url</name><value><string>https://example.com/Posts/files/shot.jpg</string></value>")
	assert.Equal(t, payload, files.saved["shot.jpg"], "undecodable bytes are stored untouched")
}

func TestNewMediaObjectShrinksRasterImages(t *testing.T) {
	h, _, files := setupHandler(t)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1600, 400))))

	out := call(t, h, `<?xml version="1.0"?>
<methodCall><methodName>metaWeblog.newMediaObject</methodName><params>
<param><value><string>1</string></value></param>
<param><value><string>admin</string></value></param>
<param><value><string>secret</string></value></param>
<param><value><struct>
<member><name>name</name><value><string>wide.png</string></value></member>
<member><name>type</name><value><string>image/png</string></value></member>
<member><name>bits</name><value><base64>`+base64.StdEncoding.EncodeToString(buf.Bytes())+`</base64></value></member>
</struct></value></param>
</params></methodCall>`)

	assert.Contains(t, out, "https://example.com/Posts/files/wide.jpg", "re-encoded uploads are renamed .jpg")

	stored := files.saved["wide.jpg"]
	require.NotEmpty(t, stored)
	cfg, format, err := image.DecodeConfig(bytes.NewReader(stored))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 800, cfg.Width, "oversized uploads are downscaled")
}

func TestGetUsersBlogs(t *testing.T) {
	h, _, _ := setupHandler(t)

	out := call(t, h, `<?xml version="1.0"?>
<methodCall><methodName>blogger.getUsersBlogs</methodName><params>
<param><value><string>appkey</string></value></param>
<param><value><string>admin</string></value></param>
<param><value><string>secret</string></value></param>
</params></methodCall>`)

	assert.Contains(t, out, "<name>blogid</name><value><string>1</string></value>")
	assert.Contains(t, out, "<name>blogName</name><value><string>Test Blog</string></value>")
}

func TestWrongCredentials(t *testing.T) {
	h, _, _ := setupHandler(t)

	out := call(t, h, `<?xml version="1.0"?>
<methodCall><methodName>metaWeblog.getCategories</methodName><params>
<param><value><string>1</string></value></param>
<param><value><string>admin</string></value></param>
<param><value><string>wrong</string></value></param>
</params></methodCall>`)

	assert.Contains(t, out, "<fault>")
	assert.Contains(t, out, "<value><int>403</int></value>")
	assert.Contains(t, out, "Unauthorized")
}

func TestUnknownMethod(t *testing.T) {
	h, _, _ := setupHandler(t)

	out := call(t, h, `<?xml version="1.0"?>
<methodCall><methodName>system.doMischief</methodName><params></params></methodCall>`)

	assert.Contains(t, out, "<fault>")
	assert.Contains(t, out, "<value><int>-32601</int></value>")
}

func TestMalformedRequest(t *testing.T) {
	h, _, _ := setupHandler(t)

	out := call(t, h, "this is not xml")
	assert.Contains(t, out, "<fault>")
	assert.Contains(t, out, "<value><int>-32700</int></value>")
}
