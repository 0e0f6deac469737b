package blog

import (
	"context"
	"encoding/base64"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestService(t *testing.T) (*Service, *fakeSaver) {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "blog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	saver := &fakeSaver{}
	svc := NewService(store, saver, 4, zerolog.Nop())
	return svc, saver
}

func TestSaveCreatesPostWithTagsAndCategories(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	saved, err := svc.Save(ctx, PostInput{
		Title:       "My First Post",
		Slug:        "my-first-post",
		Excerpt:     "e",
		Content:     "<p>hello</p>",
		IsPublished: true,
		Tags:        []string{"go", "web"},
		Categories:  []string{"Programming"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)
	assert.False(t, saved.PubDate.IsZero(), "PubDate should be stamped on create")

	got, err := svc.FindBySlug(ctx, "my-first-post")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, []string{"go", "web"}, got.Tags)
	assert.Equal(t, []string{"Programming"}, got.Categories)

	names, err := svc.Tags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "web"}, names, "tag entities sorted by name")
}

func TestResaveReconcilesAssociationsAndKeepsEntities(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	saved, err := svc.Save(ctx, PostInput{
		Title: "P", Slug: "p", Excerpt: "e", Content: "c",
		Tags: []string{"a", "b"},
	})
	require.NoError(t, err)

	_, err = svc.Save(ctx, PostInput{
		ID: saved.ID, Title: "P", Slug: "p", Excerpt: "e", Content: "c",
		Tags: []string{"b", "c"},
	})
	require.NoError(t, err)

	got, err := svc.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, got.Tags, "post links exactly the requested names")

	names, err := svc.Tags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, names, "dropping a link never deletes the shared entity")
}

func TestSaveDeduplicatesRequestedNames(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	saved, err := svc.Save(ctx, PostInput{
		Title: "P", Slug: "p", Excerpt: "e", Content: "c",
		Tags: []string{"go", "go", "web"},
	})
	require.NoError(t, err)

	got, err := svc.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "web"}, got.Tags)
}

func TestSaveUpdateKeepsPubDate(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	saved, err := svc.Save(ctx, PostInput{Title: "P", Slug: "p", Excerpt: "e", Content: "c"})
	require.NoError(t, err)
	created := saved.PubDate

	_, err = svc.Save(ctx, PostInput{ID: saved.ID, Title: "P2", Slug: "p", Excerpt: "e", Content: "c"})
	require.NoError(t, err)

	got, err := svc.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.True(t, got.PubDate.Equal(created), "PubDate must survive updates")
	assert.True(t, got.LastModified.After(created) || got.LastModified.Equal(created))

	override := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err = svc.Save(ctx, PostInput{ID: saved.ID, Title: "P2", Slug: "p", Excerpt: "e", Content: "c", PubDate: override})
	require.NoError(t, err)
	got, err = svc.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.True(t, got.PubDate.Equal(override), "explicit PubDate overrides")
}

func TestSaveUnknownIDFails(t *testing.T) {
	svc, _ := setupTestService(t)

	_, err := svc.Save(context.Background(), PostInput{
		ID: "nope", Title: "P", Slug: "p", Excerpt: "e", Content: "c",
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSaveExternalizesEmbeddedImages(t *testing.T) {
	svc, saver := setupTestService(t)
	ctx := context.Background()

	payload := []byte{1, 2, 3}
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(payload)
	saved, err := svc.Save(ctx, PostInput{
		Title: "P", Slug: "p", Excerpt: "e",
		Content: `<img data-filename="pic.png" src="` + uri + `">`,
	})
	require.NoError(t, err)

	got, err := svc.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Contains(t, got.Content, `src="/Posts/files/pic.png"`)
	assert.NotContains(t, got.Content, "data-filename")
	assert.Equal(t, payload, saver.saved["pic.png"])
}

func TestGetAllPagination(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	var ids []string
	for _, slug := range []string{"one", "two", "three"} {
		saved, err := svc.Save(ctx, PostInput{Title: slug, Slug: slug, Excerpt: "e", Content: "c"})
		require.NoError(t, err)
		ids = append(ids, saved.ID)
	}

	first, err := svc.GetAll(ctx, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Total)
	require.Len(t, first.Items, 1)
	assert.Equal(t, ids[0], first.Items[0].ID, "listing is chronological")

	last, err := svc.GetAll(ctx, 2, 1)
	require.NoError(t, err)
	require.Len(t, last.Items, 1)
	assert.Equal(t, ids[2], last.Items[0].ID)

	past, err := svc.GetAll(ctx, 9, 1)
	require.NoError(t, err)
	assert.Empty(t, past.Items, "a page past the end is empty, not an error")
	assert.Equal(t, 3, past.Total)
}

func TestFindAllByTag(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, PostInput{Title: "A", Slug: "a", Excerpt: "e", Content: "c", Tags: []string{"go"}})
	require.NoError(t, err)
	_, err = svc.Save(ctx, PostInput{Title: "B", Slug: "b", Excerpt: "e", Content: "c", Tags: []string{"web"}})
	require.NoError(t, err)

	page, err := svc.FindAllByTag(ctx, 0, "go")
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "a", page.Items[0].Slug)
}

func TestComments(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	saved, err := svc.Save(ctx, PostInput{Title: "P", Slug: "p", Excerpt: "e", Content: "c"})
	require.NoError(t, err)

	id, err := svc.AddComment(ctx, saved.ID, CommentInput{Author: "Ann", Email: "a@example.com", Content: "nice"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := svc.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, "Ann", got.Comments[0].Author)
	assert.False(t, got.Comments[0].PubDate.IsZero())

	// A missing comment deletes silently, a missing post does not.
	require.NoError(t, svc.DeleteComment(ctx, saved.ID, "no-such-comment"))
	require.ErrorIs(t, svc.DeleteComment(ctx, "no-such-post", id), ErrNotFound)

	require.NoError(t, svc.DeleteComment(ctx, saved.ID, id))
	got, err = svc.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Comments)
}

func TestAddCommentToMissingPost(t *testing.T) {
	svc, _ := setupTestService(t)

	_, err := svc.AddComment(context.Background(), "missing", CommentInput{Author: "A", Email: "a@b.c", Content: "x"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPublishedFilter(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, PostInput{Title: "Live", Slug: "live", Excerpt: "e", Content: "c", IsPublished: true})
	require.NoError(t, err)
	_, err = svc.Save(ctx, PostInput{Title: "Draft", Slug: "draft", Excerpt: "e", Content: "c"})
	require.NoError(t, err)

	published, err := svc.Published(ctx)
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.Equal(t, "live", published[0].Slug)

	all, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
