package transport

import (
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/sport_shop/services/catalog/internal/models"
	"github.com/Skotchmaster/sport_shop/services/catalog/internal/util"
)

type ProductQuery struct {
	Search     string
	CategoryID *uint
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	SortBy     string
	Order      string
	Page       int
	Limit      int
}

type CreateProductRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	ImageURL    string           `json:"imageUrl"`
	CategoryID  *uint            `json:"categoryId"`
}

type PatchProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	ImageURL    *string          `json:"imageUrl"`
	CategoryID  *uint            `json:"categoryId"`
}

type ProductPage struct {
	Products []models.Product `json:"products"`
	Meta     util.Meta        `json:"meta"`
}

type SearchPage struct {
	Query    string           `json:"query"`
	Engine   string           `json:"engine"`
	Products []models.Product `json:"products"`
	Meta     util.Meta        `json:"meta"`
}

type ProductDetail struct {
	Product         models.Product     `json:"product"`
	Category        *models.Category   `json:"category"`
	Reviews         []models.Review    `json:"reviews"`
	Stats           models.ReviewStats `json:"stats"`
	RelatedProducts []models.Product   `json:"relatedProducts"`
}

type DeletedProduct struct {
	ID uint `json:"id"`
}

type CategoryRequest struct {
	Name *string `json:"name"`
	Slug *string `json:"slug"`
}

type CategoryDetail struct {
	Category models.Category  `json:"category"`
	Products []models.Product `json:"products"`
}
