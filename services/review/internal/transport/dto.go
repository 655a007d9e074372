package transport

import "github.com/Skotchmaster/sport_shop/services/review/internal/models"

type CreateReviewRequest struct {
	ProductID *uint   `json:"productId"`
	Rating    *int    `json:"rating"`
	Comment   *string `json:"comment"`
}

type UpdateReviewRequest struct {
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment"`
}

type ReviewList struct {
	Reviews []models.Review `json:"reviews"`
	Stats   models.Stats    `json:"stats"`
}
