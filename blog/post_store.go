package blog

import (
	"context"
	"database/sql"
	"fmt"
)

const upsertPostQuery = `
INSERT INTO posts (id, title, slug, excerpt, content, is_published, pub_date, last_modified)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    title = excluded.title,
    slug = excluded.slug,
    excerpt = excluded.excerpt,
    content = excluded.content,
    is_published = excluded.is_published,
    pub_date = excluded.pub_date,
    last_modified = excluded.last_modified
`

// UpsertPost inserts or updates the scalar columns of a post. Associations
// and comments are managed separately.
func (s *Store) UpsertPost(ctx context.Context, p *Post) error {
	published := 0
	if p.IsPublished {
		published = 1
	}
	_, err := s.exec(ctx).ExecContext(ctx, upsertPostQuery,
		p.ID, p.Title, p.Slug, p.Excerpt, p.Content, published,
		storeTime(p.PubDate), storeTime(p.LastModified))
	if err != nil {
		return fmt.Errorf("upsert post %s: %w", p.ID, err)
	}
	return nil
}

// DeletePost removes a post by id. Comments and join rows cascade; shared
// tag and category entities stay.
func (s *Store) DeletePost(ctx context.Context, id string) error {
	res, err := s.exec(ctx).ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete post %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

const selectPostColumns = `id, title, slug, excerpt, content, is_published, pub_date, last_modified`

// FindPostByID returns the full post, including ordered tag and category
// names and its comments, or ErrNotFound.
func (s *Store) FindPostByID(ctx context.Context, id string) (*Post, error) {
	return s.findPost(ctx, `SELECT `+selectPostColumns+` FROM posts WHERE id = ?`, id)
}

// FindPostBySlug returns the full post by slug, or ErrNotFound.
func (s *Store) FindPostBySlug(ctx context.Context, slug string) (*Post, error) {
	return s.findPost(ctx, `SELECT `+selectPostColumns+` FROM posts WHERE slug = ? LIMIT 1`, slug)
}

func (s *Store) findPost(ctx context.Context, query string, arg any) (*Post, error) {
	row := s.exec(ctx).QueryRowContext(ctx, query, arg)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find post: %w", err)
	}
	if err := s.loadRelations(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// FindAllPosts returns a window of posts ordered by id ascending. Ids are
// time-derived, so this is chronological order.
func (s *Store) FindAllPosts(ctx context.Context, skip, take int) ([]*Post, error) {
	return s.listPosts(ctx,
		`SELECT `+selectPostColumns+` FROM posts ORDER BY id LIMIT ? OFFSET ?`,
		take, skip)
}

// FindPublishedPosts returns every published post, newest first. Feeds and
// the sitemap read this through the post cache.
func (s *Store) FindPublishedPosts(ctx context.Context) ([]*Post, error) {
	return s.listPosts(ctx,
		`SELECT `+selectPostColumns+` FROM posts WHERE is_published = 1 ORDER BY pub_date DESC`)
}

// CountPosts returns the total number of posts.
func (s *Store) CountPosts(ctx context.Context) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM posts`)
}

// FindPostsByTag returns a window of posts linked to the named tag.
func (s *Store) FindPostsByTag(ctx context.Context, skip, take int, tag string) ([]*Post, error) {
	return s.listPosts(ctx, `
		SELECT p.id, p.title, p.slug, p.excerpt, p.content, p.is_published, p.pub_date, p.last_modified
		FROM posts p
		JOIN post_tags pt ON pt.post_id = p.id
		JOIN tags t ON t.id = pt.tag_id
		WHERE t.name = ?
		ORDER BY p.id LIMIT ? OFFSET ?`,
		tag, take, skip)
}

// CountPostsByTag counts posts linked to the named tag.
func (s *Store) CountPostsByTag(ctx context.Context, tag string) (int, error) {
	return s.count(ctx, `
		SELECT COUNT(*)
		FROM posts p
		JOIN post_tags pt ON pt.post_id = p.id
		JOIN tags t ON t.id = pt.tag_id
		WHERE t.name = ?`, tag)
}

// FindPostsByCategory returns a window of posts linked to the named category.
func (s *Store) FindPostsByCategory(ctx context.Context, skip, take int, category string) ([]*Post, error) {
	return s.listPosts(ctx, `
		SELECT p.id, p.title, p.slug, p.excerpt, p.content, p.is_published, p.pub_date, p.last_modified
		FROM posts p
		JOIN post_categories pc ON pc.post_id = p.id
		JOIN categories c ON c.id = pc.category_id
		WHERE c.name = ?
		ORDER BY p.id LIMIT ? OFFSET ?`,
		category, take, skip)
}

// CountPostsByCategory counts posts linked to the named category.
func (s *Store) CountPostsByCategory(ctx context.Context, category string) (int, error) {
	return s.count(ctx, `
		SELECT COUNT(*)
		FROM posts p
		JOIN post_categories pc ON pc.post_id = p.id
		JOIN categories c ON c.id = pc.category_id
		WHERE c.name = ?`, category)
}

func (s *Store) listPosts(ctx context.Context, query string, args ...any) ([]*Post, error) {
	rows, err := s.exec(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []*Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post row: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate post rows: %w", err)
	}
	for _, p := range posts {
		if err := s.loadRelations(ctx, p); err != nil {
			return nil, err
		}
	}
	return posts, nil
}

func (s *Store) count(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	if err := s.exec(ctx).QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*Post, error) {
	var p Post
	var published int
	var pubDate, lastModified string
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Content,
		&published, &pubDate, &lastModified)
	if err != nil {
		return nil, err
	}
	p.IsPublished = published == 1
	p.PubDate = parseStoreTime(pubDate)
	p.LastModified = parseStoreTime(lastModified)
	return &p, nil
}

func (s *Store) loadRelations(ctx context.Context, p *Post) error {
	var err error
	if p.Tags, err = s.linkedNames(ctx, `
		SELECT t.name FROM tags t
		JOIN post_tags pt ON pt.tag_id = t.id
		WHERE pt.post_id = ? ORDER BY pt.position`, p.ID); err != nil {
		return fmt.Errorf("load post tags: %w", err)
	}
	if p.Categories, err = s.linkedNames(ctx, `
		SELECT c.name FROM categories c
		JOIN post_categories pc ON pc.category_id = c.id
		WHERE pc.post_id = ? ORDER BY pc.position`, p.ID); err != nil {
		return fmt.Errorf("load post categories: %w", err)
	}
	if p.Comments, err = s.postComments(ctx, p.ID); err != nil {
		return fmt.Errorf("load post comments: %w", err)
	}
	return nil
}

func (s *Store) linkedNames(ctx context.Context, query, postID string) ([]string, error) {
	rows, err := s.exec(ctx).QueryContext(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *Store) postComments(ctx context.Context, postID string) ([]Comment, error) {
	rows, err := s.exec(ctx).QueryContext(ctx, `
		SELECT id, author, email, content, is_admin, pub_date
		FROM comments WHERE post_id = ? ORDER BY pub_date`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var c Comment
		var admin int
		var pubDate string
		if err := rows.Scan(&c.ID, &c.Author, &c.Email, &c.Content, &admin, &pubDate); err != nil {
			return nil, err
		}
		c.IsAdmin = admin == 1
		c.PubDate = parseStoreTime(pubDate)
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// ReplacePostTags reconciles the post_tags join rows so the post is linked
// to exactly tagIDs. Existing links keep their position; new links are
// appended after the current maximum.
func (s *Store) ReplacePostTags(ctx context.Context, postID string, tagIDs []string) error {
	return s.replaceLinks(ctx, "post_tags", "tag_id", postID, tagIDs)
}

// ReplacePostCategories is ReplacePostTags for the category join table.
func (s *Store) ReplacePostCategories(ctx context.Context, postID string, categoryIDs []string) error {
	return s.replaceLinks(ctx, "post_categories", "category_id", postID, categoryIDs)
}

func (s *Store) replaceLinks(ctx context.Context, table, column, postID string, ids []string) error {
	ex := s.exec(ctx)
	rows, err := ex.QueryContext(ctx,
		`SELECT `+column+`, position FROM `+table+` WHERE post_id = ?`, postID)
	if err != nil {
		return fmt.Errorf("load %s: %w", table, err)
	}
	current := make(map[string]int)
	maxPos := -1
	for rows.Next() {
		var id string
		var pos int
		if err := rows.Scan(&id, &pos); err != nil {
			rows.Close()
			return fmt.Errorf("scan %s: %w", table, err)
		}
		current[id] = pos
		if pos > maxPos {
			maxPos = pos
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("iterate %s: %w", table, err)
	}
	rows.Close()

	desired := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		desired[id] = struct{}{}
	}
	for id := range current {
		if _, ok := desired[id]; ok {
			continue
		}
		if _, err := ex.ExecContext(ctx,
			`DELETE FROM `+table+` WHERE post_id = ? AND `+column+` = ?`, postID, id); err != nil {
			return fmt.Errorf("unlink %s: %w", table, err)
		}
	}
	for _, id := range ids {
		if _, ok := current[id]; ok {
			continue
		}
		maxPos++
		if _, err := ex.ExecContext(ctx,
			`INSERT INTO `+table+` (post_id, `+column+`, position) VALUES (?, ?, ?)`,
			postID, id, maxPos); err != nil {
			return fmt.Errorf("link %s: %w", table, err)
		}
	}
	return nil
}

// InsertComment appends a comment to its post.
func (s *Store) InsertComment(ctx context.Context, postID string, c Comment) error {
	admin := 0
	if c.IsAdmin {
		admin = 1
	}
	_, err := s.exec(ctx).ExecContext(ctx, `
		INSERT INTO comments (id, post_id, author, email, content, is_admin, pub_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, postID, c.Author, c.Email, c.Content, admin, storeTime(c.PubDate))
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

// DeleteComment removes a comment from its post. Deleting a comment that is
// already gone is not an error.
func (s *Store) DeleteComment(ctx context.Context, postID, commentID string) error {
	_, err := s.exec(ctx).ExecContext(ctx,
		`DELETE FROM comments WHERE post_id = ? AND id = ?`, postID, commentID)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}
