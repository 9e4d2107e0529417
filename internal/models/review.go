package models

import "time"

type Review struct {
	ID           string     `json:"id"`
	ProductID    string     `json:"product_id"`
	UserID       string     `json:"user_id"`
	OrderID      *string    `json:"order_id,omitempty"`
	Rating       int        `json:"rating"`
	Comment      string     `json:"comment"`
	HelpfulCount int        `json:"helpful_count"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
	UserName     string     `json:"user_name,omitempty"`
	UserEmail    string     `json:"user_email,omitempty"`
}

type ReviewInput struct {
	ProductID string  `json:"product_id,omitempty"`
	OrderID   *string `json:"order_id,omitempty"`
	Rating    int     `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Comment   string  `json:"comment,omitempty" validate:"omitempty,min=10,max=1000"`
}

type ReviewStats struct {
	TotalReviews       int            `json:"total_reviews"`
	AverageRating      float64        `json:"average_rating"`
	RatingDistribution map[string]int `json:"rating_distribution"`
}
