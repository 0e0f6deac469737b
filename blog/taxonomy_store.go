package blog

import (
	"context"
	"fmt"
)

// AllTags returns every tag entity, ordered by name.
func (s *Store) AllTags(ctx context.Context) ([]Tag, error) {
	rows, err := s.exec(ctx).QueryContext(ctx, `SELECT id, name FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// SaveTag persists a tag entity. Tags are only ever created, never updated
// or deleted, so a plain insert is enough.
func (s *Store) SaveTag(ctx context.Context, t Tag) error {
	if _, err := s.exec(ctx).ExecContext(ctx,
		`INSERT INTO tags (id, name) VALUES (?, ?)`, t.ID, t.Name); err != nil {
		return fmt.Errorf("save tag %q: %w", t.Name, err)
	}
	return nil
}

// AllCategories returns every category entity, ordered by name.
func (s *Store) AllCategories(ctx context.Context) ([]Category, error) {
	rows, err := s.exec(ctx).QueryContext(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// SaveCategory persists a category entity.
func (s *Store) SaveCategory(ctx context.Context, c Category) error {
	if _, err := s.exec(ctx).ExecContext(ctx,
		`INSERT INTO categories (id, name) VALUES (?, ?)`, c.ID, c.Name); err != nil {
		return fmt.Errorf("save category %q: %w", c.Name, err)
	}
	return nil
}
