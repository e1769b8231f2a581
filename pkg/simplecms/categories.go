package simplecms

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

func (s *service) ensureCategorySlugAvailable(ctx context.Context, op, slug string, excludeID uuid.UUID) error {
	ok, err := isSlugAvailable(ctx, s.repository.CategorySlugOwner, slug, excludeID)
	if err != nil {
		return s.fail("category", op, excludeID, err)
	}
	if !ok {
		return s.fail("category", op, excludeID, fmt.Errorf("%w: a category with slug %q already exists", ErrConflict, slug))
	}
	return nil
}

func (s *service) CreateCategory(ctx context.Context, in CategoryInput, actorID uuid.UUID) (*Category, error) {
	if err := in.Validate(); err != nil {
		return nil, s.fail("category", "create", uuid.Nil, invalidInput(err))
	}
	slug, err := resolveSlug(in.Name, in.Slug)
	if err != nil {
		return nil, s.fail("category", "create", uuid.Nil, err)
	}
	if err := s.ensureCategorySlugAvailable(ctx, "create", slug, uuid.Nil); err != nil {
		return nil, err
	}

	c := &Category{ID: uuid.New(), Name: in.Name, Slug: slug}
	if err := s.repository.CreateCategory(ctx, c); err != nil {
		return nil, s.fail("category", "create", c.ID, err)
	}
	s.record(ctx, actorID, "create", "category", c.ID, map[string]interface{}{"name": c.Name, "slug": c.Slug})
	return c, nil
}

// UpdateCategory renames a category. The slug is kept unless a new one is
// supplied, and only re-checked when it actually changes.
func (s *service) UpdateCategory(ctx context.Context, id uuid.UUID, in CategoryInput, actorID uuid.UUID) (*Category, error) {
	existing, err := s.repository.GetCategory(ctx, id)
	if err != nil {
		return nil, s.fail("category", "update", id, err)
	}
	if err := in.Validate(); err != nil {
		return nil, s.fail("category", "update", id, invalidInput(err))
	}

	updated := *existing
	updated.Name = in.Name
	if in.Slug != "" && in.Slug != existing.Slug {
		if err := s.ensureCategorySlugAvailable(ctx, "update", in.Slug, id); err != nil {
			return nil, err
		}
		updated.Slug = in.Slug
	}
	if err := s.repository.UpdateCategory(ctx, &updated); err != nil {
		return nil, s.fail("category", "update", id, err)
	}
	s.record(ctx, actorID, "update", "category", id, map[string]interface{}{"name": updated.Name, "slug": updated.Slug})
	return &updated, nil
}

// DeleteCategory removes a category and its links to pages and articles.
func (s *service) DeleteCategory(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error {
	if _, err := s.repository.GetCategory(ctx, id); err != nil {
		return s.fail("category", "delete", id, err)
	}
	if err := s.repository.DeleteCategory(ctx, id); err != nil {
		return s.fail("category", "delete", id, err)
	}
	s.record(ctx, actorID, "delete", "category", id, nil)
	return nil
}

func (s *service) GetCategory(ctx context.Context, id uuid.UUID) (*Category, error) {
	c, err := s.repository.GetCategory(ctx, id)
	if err != nil {
		return nil, s.fail("category", "get", id, err)
	}
	return c, nil
}

// ListCategories returns all categories ordered by name.
func (s *service) ListCategories(ctx context.Context) ([]*Category, error) {
	categories, err := s.repository.ListCategories(ctx)
	if err != nil {
		return nil, s.fail("category", "list", uuid.Nil, err)
	}
	return categories, nil
}
