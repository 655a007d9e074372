package service

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Skotchmaster/sport_shop/pkg/apperr"
	"github.com/Skotchmaster/sport_shop/services/catalog/internal/models"
	"github.com/Skotchmaster/sport_shop/services/catalog/internal/transport"
)

var (
	slugPattern  = regexp.MustCompile(`^[a-z0-9-]+$`)
	nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)
)

// Slugify lowercases name and joins its alphanumeric runs with hyphens.
func Slugify(name string) string {
	s := nonSlugChars.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.CategoryWithCount, error) {
	return s.Repo.ListCategories(ctx)
}

func (s *CatalogService) GetCategory(ctx context.Context, id uint) (*transport.CategoryDetail, error) {
	if id == 0 {
		return nil, apperr.New(apperr.ErrValidation, "Valid ID is required")
	}
	c, products, err := s.Repo.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	return &transport.CategoryDetail{Category: *c, Products: products}, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, req transport.CategoryRequest) (*models.Category, error) {
	if req.Name == nil {
		return nil, apperr.Validation(apperr.FieldError{Field: "name", Message: "Name is required"})
	}
	name, slug, fields := normalizeCategory(req)
	if slug == "" && len(fields) == 0 {
		slug = Slugify(name)
		fields = append(fields, validateSlug(slug)...)
	}
	if len(fields) > 0 {
		return nil, apperr.Validation(fields...)
	}

	c := &models.Category{Name: name, Slug: slug}
	if err := s.Repo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}

	s.publish(ctx, categoryKey(c.ID), EventCategoryCreated, c)
	return c, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id uint, req transport.CategoryRequest) (*models.Category, error) {
	if id == 0 {
		return nil, apperr.New(apperr.ErrValidation, "Valid ID is required")
	}
	name, slug, fields := normalizeCategory(req)
	if len(fields) > 0 {
		return nil, apperr.Validation(fields...)
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = name
	}
	if req.Slug != nil {
		updates["slug"] = slug
	}

	c, err := s.Repo.UpdateCategory(ctx, id, updates)
	if err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		s.publish(ctx, categoryKey(c.ID), EventCategoryUpdated, c)
	}
	return c, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id uint) error {
	if id == 0 {
		return apperr.New(apperr.ErrValidation, "Valid ID is required")
	}
	if err := s.Repo.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, categoryKey(id), EventCategoryDeleted, map[string]uint{"id": id})
	return nil
}

// normalizeCategory trims the name, lowercases the slug and validates whichever of
// the two is present.
func normalizeCategory(req transport.CategoryRequest) (name, slug string, fields []apperr.FieldError) {
	if req.Name != nil {
		name = strings.TrimSpace(*req.Name)
		n := utf8.RuneCountInString(name)
		switch {
		case n < 2:
			fields = append(fields, apperr.FieldError{Field: "name", Message: "Name must be at least 2 characters"})
		case n > 100:
			fields = append(fields, apperr.FieldError{Field: "name", Message: "Name must not exceed 100 characters"})
		}
	}
	if req.Slug != nil {
		slug = strings.ToLower(strings.TrimSpace(*req.Slug))
		fields = append(fields, validateSlug(slug)...)
	}
	return name, slug, fields
}

func validateSlug(slug string) []apperr.FieldError {
	n := len(slug)
	switch {
	case n < 2:
		return []apperr.FieldError{{Field: "slug", Message: "Slug must be at least 2 characters"}}
	case n > 100:
		return []apperr.FieldError{{Field: "slug", Message: "Slug must not exceed 100 characters"}}
	case !slugPattern.MatchString(slug):
		return []apperr.FieldError{{Field: "slug", Message: "Slug must contain only lowercase letters, numbers, and hyphens"}}
	}
	return nil
}

func categoryKey(id uint) string {
	return "category:" + strconv.FormatUint(uint64(id), 10)
}
