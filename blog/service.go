package blog

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Service orchestrates the post workflows: saving a post keeps its
// tag/category name lists exactly reflected as associations to the shared
// entities and externalizes embedded images before the post is persisted.
type Service struct {
	store    *Store
	files    FileSaver
	pageSize int
	log      zerolog.Logger
	now      func() time.Time
}

// Page is one window of a listing plus the total count over the same
// filter. The two are computed by separate queries, so the total can drift
// from the items under concurrent writes.
type Page struct {
	Items []*Post
	Total int
}

// NewService wires a Service over the store and file storage. pageSize is
// the default listing window when callers pass none.
func NewService(store *Store, files FileSaver, pageSize int, log zerolog.Logger) *Service {
	if pageSize <= 0 {
		pageSize = 4
	}
	return &Service{
		store:    store,
		files:    files,
		pageSize: pageSize,
		log:      log,
		now:      time.Now,
	}
}

// Save creates or updates a post from in. The whole workflow runs in one
// transaction: upserting unseen tags and categories by name, reconciling
// the association sets, and persisting the post. A failure anywhere leaves
// no partial tag or association rows behind. Embedded images are
// written to file storage before the transaction commits; a file orphaned
// by a late failure is accepted and not cleaned up.
//
// Comments are never part of a save.
func (s *Service) Save(ctx context.Context, in PostInput) (*Post, error) {
	var saved *Post
	err := s.store.InTx(ctx, func(ctx context.Context) error {
		tagIDs, err := s.upsertTags(ctx, in.Tags)
		if err != nil {
			return err
		}
		categoryIDs, err := s.upsertCategories(ctx, in.Categories)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		var post *Post
		if in.ID != "" {
			post, err = s.store.FindPostByID(ctx, in.ID)
			if err != nil {
				return fmt.Errorf("resolve post %s: %w", in.ID, err)
			}
		} else {
			post = &Post{ID: NewPostID(now), PubDate: now}
		}

		post.Title = in.Title
		post.Slug = in.Slug
		post.Excerpt = in.Excerpt
		post.IsPublished = in.IsPublished
		post.LastModified = now
		if !in.PubDate.IsZero() {
			post.PubDate = in.PubDate.UTC()
		}

		content, err := externalizeImages(in.Content, s.files)
		if err != nil {
			return err
		}
		post.Content = content

		if err := s.store.UpsertPost(ctx, post); err != nil {
			return err
		}
		if err := s.store.ReplacePostTags(ctx, post.ID, tagIDs); err != nil {
			return err
		}
		if err := s.store.ReplacePostCategories(ctx, post.ID, categoryIDs); err != nil {
			return err
		}

		post.Tags = append([]string(nil), in.Tags...)
		post.Categories = append([]string(nil), in.Categories...)
		saved = post
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("post", saved.ID).Str("slug", saved.Slug).Msg("post saved")
	return saved, nil
}

// upsertTags maps the requested names to tag ids, creating entities for
// names seen for the first time. Duplicate names in the request collapse to
// one association.
func (s *Service) upsertTags(ctx context.Context, names []string) ([]string, error) {
	all, err := s.store.AllTags(ctx)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]string, len(all))
	for _, t := range all {
		byName[t.Name] = t.ID
	}
	ids := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		id, ok := byName[name]
		if !ok {
			t := Tag{ID: newEntityID(), Name: name}
			if err := s.store.SaveTag(ctx, t); err != nil {
				return nil, err
			}
			byName[name] = t.ID
			id = t.ID
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Service) upsertCategories(ctx context.Context, names []string) ([]string, error) {
	all, err := s.store.AllCategories(ctx)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]string, len(all))
	for _, c := range all {
		byName[c.Name] = c.ID
	}
	ids := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		id, ok := byName[name]
		if !ok {
			c := Category{ID: newEntityID(), Name: name}
			if err := s.store.SaveCategory(ctx, c); err != nil {
				return nil, err
			}
			byName[name] = c.ID
			id = c.ID
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Delete removes a post and its comments. Shared tags and categories stay.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeletePost(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("post", id).Msg("post deleted")
	return nil
}

// FindByID returns the full post or ErrNotFound.
func (s *Service) FindByID(ctx context.Context, id string) (*Post, error) {
	return s.store.FindPostByID(ctx, id)
}

// FindBySlug returns the full post or ErrNotFound.
func (s *Service) FindBySlug(ctx context.Context, slug string) (*Post, error) {
	return s.store.FindPostBySlug(ctx, slug)
}

// GetAll returns the zero-based page of all posts. pageSize <= 0 selects
// the configured default.
func (s *Service) GetAll(ctx context.Context, page, pageSize int) (Page, error) {
	take := pageSize
	if take <= 0 {
		take = s.pageSize
	}
	items, err := s.store.FindAllPosts(ctx, page*take, take)
	if err != nil {
		return Page{}, err
	}
	total, err := s.store.CountPosts(ctx)
	if err != nil {
		return Page{}, err
	}
	return Page{Items: items, Total: total}, nil
}

// FindAllByTag returns the zero-based page of posts linked to tag.
func (s *Service) FindAllByTag(ctx context.Context, page int, tag string) (Page, error) {
	items, err := s.store.FindPostsByTag(ctx, page*s.pageSize, s.pageSize, tag)
	if err != nil {
		return Page{}, err
	}
	total, err := s.store.CountPostsByTag(ctx, tag)
	if err != nil {
		return Page{}, err
	}
	return Page{Items: items, Total: total}, nil
}

// FindAllByCategory returns the zero-based page of posts linked to category.
func (s *Service) FindAllByCategory(ctx context.Context, page int, category string) (Page, error) {
	items, err := s.store.FindPostsByCategory(ctx, page*s.pageSize, s.pageSize, category)
	if err != nil {
		return Page{}, err
	}
	total, err := s.store.CountPostsByCategory(ctx, category)
	if err != nil {
		return Page{}, err
	}
	return Page{Items: items, Total: total}, nil
}

// All returns every post, drafts included, in chronological order.
func (s *Service) All(ctx context.Context) ([]*Post, error) {
	// LIMIT -1 is SQLite for "no limit".
	return s.store.FindAllPosts(ctx, 0, -1)
}

// Published returns every published post, newest first.
func (s *Service) Published(ctx context.Context) ([]*Post, error) {
	return s.store.FindPublishedPosts(ctx)
}

// Tags returns every known tag name.
func (s *Service) Tags(ctx context.Context) ([]string, error) {
	tags, err := s.store.AllTags(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return names, nil
}

// Categories returns every known category name.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.store.AllCategories(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.Name
	}
	return names, nil
}

// AddComment appends a comment to the post, stamping its id and publication
// time, and returns the new comment id. ErrNotFound if the post is missing.
func (s *Service) AddComment(ctx context.Context, postID string, in CommentInput) (string, error) {
	if _, err := s.store.FindPostByID(ctx, postID); err != nil {
		return "", err
	}
	c := Comment{
		ID:      newEntityID(),
		Author:  in.Author,
		Email:   in.Email,
		Content: in.Content,
		IsAdmin: in.IsAdmin,
		PubDate: s.now().UTC(),
	}
	if err := s.store.InsertComment(ctx, postID, c); err != nil {
		return "", err
	}
	return c.ID, nil
}

// DeleteComment removes a comment from the post. A missing comment is a
// silent no-op; a missing post is ErrNotFound.
func (s *Service) DeleteComment(ctx context.Context, postID, commentID string) error {
	if _, err := s.store.FindPostByID(ctx, postID); err != nil {
		return err
	}
	return s.store.DeleteComment(ctx, postID, commentID)
}
