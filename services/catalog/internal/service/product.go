package service

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/sport_shop/pkg/apperr"
	"github.com/Skotchmaster/sport_shop/pkg/logging"
	"github.com/Skotchmaster/sport_shop/pkg/mykafka"
	"github.com/Skotchmaster/sport_shop/services/catalog/internal/models"
	"github.com/Skotchmaster/sport_shop/services/catalog/internal/repo"
	"github.com/Skotchmaster/sport_shop/services/catalog/internal/search"
	"github.com/Skotchmaster/sport_shop/services/catalog/internal/transport"
	"github.com/Skotchmaster/sport_shop/services/catalog/internal/util"
)

const (
	EventProductCreated  = "product_created"
	EventProductUpdated  = "product_updated"
	EventProductDeleted  = "product_deleted"
	EventCategoryCreated = "category_created"
	EventCategoryUpdated = "category_updated"
	EventCategoryDeleted = "category_deleted"

	EngineElasticsearch = "elasticsearch"
	EngineDatabase      = "database"

	relatedLimit = 4
	reindexBatch = 200
)

// CatalogService serves products and categories. Index is optional; without it
// search runs against the database.
type CatalogService struct {
	Repo   *repo.GormRepo
	Events mykafka.Publisher
	Index  search.Index
}

func (s *CatalogService) ListProducts(ctx context.Context, q transport.ProductQuery) (*transport.ProductPage, error) {
	page, offset, limit := util.Calculate(q.Page, q.Limit)

	total, items, err := s.Repo.ListProducts(ctx, repo.ProductFilter{
		Search:     strings.TrimSpace(q.Search),
		CategoryID: q.CategoryID,
		MinPrice:   q.MinPrice,
		MaxPrice:   q.MaxPrice,
		SortBy:     q.SortBy,
		Asc:        strings.EqualFold(q.Order, "asc"),
		Offset:     offset,
		Limit:      limit,
	})
	if err != nil {
		return nil, err
	}
	return &transport.ProductPage{Products: items, Meta: util.NewMeta(page, offset, limit, total)}, nil
}

// SearchProducts asks the index first and falls back to a LIKE query when the index
// is not configured or fails.
func (s *CatalogService) SearchProducts(ctx context.Context, q string, page, size int) (*transport.SearchPage, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, apperr.New(apperr.ErrValidation, "Search query is required")
	}
	page, offset, limit := util.Calculate(page, size)

	if s.Index != nil {
		total, ids, err := s.Index.Search(ctx, q, offset, limit)
		if err == nil {
			items, err := s.Repo.ProductsByID(ctx, ids)
			if err != nil {
				return nil, err
			}
			return &transport.SearchPage{
				Query:    q,
				Engine:   EngineElasticsearch,
				Products: items,
				Meta:     util.NewMeta(page, offset, limit, total),
			}, nil
		}
		logging.FromContext(ctx).Warn("search_index_unavailable", "reason", "falling back to database", "error", err)
	}

	total, items, err := s.Repo.ListProducts(ctx, repo.ProductFilter{
		Search: q,
		SortBy: repo.SortName,
		Asc:    true,
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}
	return &transport.SearchPage{
		Query:    q,
		Engine:   EngineDatabase,
		Products: items,
		Meta:     util.NewMeta(page, offset, limit, total),
	}, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*transport.ProductDetail, error) {
	if id == 0 {
		return nil, apperr.New(apperr.ErrValidation, "Valid product ID is required")
	}

	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	reviews, stats, err := s.Repo.ProductReviews(ctx, id)
	if err != nil {
		return nil, err
	}
	related, err := s.Repo.RelatedProducts(ctx, p, relatedLimit)
	if err != nil {
		return nil, err
	}

	return &transport.ProductDetail{
		Product:         *p,
		Category:        p.Category,
		Reviews:         reviews,
		Stats:           stats,
		RelatedProducts: related,
	}, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, userID string, req transport.CreateProductRequest) (*models.Product, error) {
	stock := 0
	if req.Stock != nil {
		stock = *req.Stock
	}

	fields := validateProduct(productFields{
		name:        &req.Name,
		description: &req.Description,
		price:       req.Price,
		stock:       &stock,
		imageURL:    &req.ImageURL,
	})
	if req.Price == nil {
		fields = append(fields, apperr.FieldError{Field: "price", Message: "Price is required"})
	}
	if len(fields) > 0 {
		return nil, apperr.Validation(fields...)
	}

	p := &models.Product{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Price:       req.Price.Round(2),
		Stock:       stock,
		ImageURL:    strings.TrimSpace(req.ImageURL),
		CategoryID:  req.CategoryID,
		CreatedBy:   userID,
	}
	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}

	s.indexProduct(ctx, *p)
	s.publish(ctx, productKey(p.ID), EventProductCreated, p)
	return p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, req transport.PatchProductRequest) (*models.Product, error) {
	if id == 0 {
		return nil, apperr.New(apperr.ErrValidation, "Valid product ID is required")
	}

	if fields := validateProduct(productFields{
		name:        req.Name,
		description: req.Description,
		price:       req.Price,
		stock:       req.Stock,
		imageURL:    req.ImageURL,
	}); len(fields) > 0 {
		return nil, apperr.Validation(fields...)
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Price != nil {
		updates["price"] = req.Price.Round(2)
	}
	if req.Stock != nil {
		updates["stock"] = *req.Stock
	}
	if req.ImageURL != nil {
		updates["image_url"] = strings.TrimSpace(*req.ImageURL)
	}
	if req.CategoryID != nil {
		updates["category_id"] = *req.CategoryID
	}

	p, err := s.Repo.UpdateProduct(ctx, id, updates)
	if err != nil {
		return nil, err
	}

	s.indexProduct(ctx, *p)
	s.publish(ctx, productKey(p.ID), EventProductUpdated, p)
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	if id == 0 {
		return apperr.New(apperr.ErrValidation, "Valid product ID is required")
	}
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return err
	}

	if s.Index != nil {
		if err := s.Index.Delete(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("search_index_delete_failed", "product_id", id, "error", err)
		}
	}
	s.publish(ctx, productKey(id), EventProductDeleted, transport.DeletedProduct{ID: id})
	return nil
}

// Reindex pushes every product into the search index and returns how many were
// written.
func (s *CatalogService) Reindex(ctx context.Context) (int, error) {
	if s.Index == nil {
		return 0, nil
	}
	n := 0
	err := s.Repo.EachProduct(ctx, reindexBatch, func(batch []models.Product) error {
		for _, p := range batch {
			if err := s.Index.Put(ctx, p); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	return n, err
}

type productFields struct {
	name        *string
	description *string
	price       *decimal.Decimal
	stock       *int
	imageURL    *string
}

func validateProduct(f productFields) []apperr.FieldError {
	var out []apperr.FieldError
	if f.name != nil {
		n := utf8.RuneCountInString(strings.TrimSpace(*f.name))
		switch {
		case n < 3:
			out = append(out, apperr.FieldError{Field: "name", Message: "Name must be at least 3 characters"})
		case n > 200:
			out = append(out, apperr.FieldError{Field: "name", Message: "Name must not exceed 200 characters"})
		}
	}
	if f.description != nil && utf8.RuneCountInString(strings.TrimSpace(*f.description)) < 10 {
		out = append(out, apperr.FieldError{Field: "description", Message: "Description must be at least 10 characters"})
	}
	if f.price != nil && !f.price.Round(2).IsPositive() {
		out = append(out, apperr.FieldError{Field: "price", Message: "Price must be positive"})
	}
	if f.stock != nil && *f.stock < 0 {
		out = append(out, apperr.FieldError{Field: "stock", Message: "Stock cannot be negative"})
	}
	if f.imageURL != nil && strings.TrimSpace(*f.imageURL) != "" && !validURL(strings.TrimSpace(*f.imageURL)) {
		out = append(out, apperr.FieldError{Field: "imageUrl", Message: "Invalid URL format"})
	}
	return out
}

func validURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func (s *CatalogService) indexProduct(ctx context.Context, p models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Put(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("search_index_put_failed", "product_id", p.ID, "error", err)
	}
}

func productKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func (s *CatalogService) publish(ctx context.Context, key, typ string, data any) {
	if s.Events == nil {
		return
	}
	if err := s.Events.PublishEvent(ctx, mykafka.TopicProduct, key, mykafka.NewEvent(typ, data)); err != nil {
		logging.FromContext(ctx).Warn("catalog_event_publish_failed", "type", typ, "error", err)
	}
}
