package services

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"shopnest-bff/internal/models"
)

func (s *ServiceClient) CreateReview(ctx context.Context, token string, in models.ReviewInput) (*models.Review, error) {
	var review models.Review
	if err := s.send(ctx, svcProducts, http.MethodPost, s.cfg.ProductServiceURL+"/reviews", token, in, &review); err != nil {
		return nil, err
	}
	return &review, nil
}

func (s *ServiceClient) ProductReviews(ctx context.Context, productID string, skip, limit int) ([]models.Review, error) {
	var reviews []models.Review
	q := url.Values{"skip": {strconv.Itoa(skip)}, "limit": {strconv.Itoa(limit)}}
	u := endpoint(s.cfg.ProductServiceURL, "/reviews/product/"+url.PathEscape(productID), q)
	if err := s.get(ctx, svcProducts, u, "", &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (s *ServiceClient) ProductReviewStats(ctx context.Context, productID string) (*models.ReviewStats, error) {
	var stats models.ReviewStats
	u := s.cfg.ProductServiceURL + "/reviews/product/" + url.PathEscape(productID) + "/stats"
	if err := s.get(ctx, svcProducts, u, "", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *ServiceClient) MyReviews(ctx context.Context, token string) ([]models.Review, error) {
	var reviews []models.Review
	if err := s.get(ctx, svcProducts, s.cfg.ProductServiceURL+"/reviews/my-reviews", token, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (s *ServiceClient) UpdateReview(ctx context.Context, token, id string, in models.ReviewInput) (*models.Review, error) {
	var review models.Review
	u := s.cfg.ProductServiceURL + "/reviews/" + url.PathEscape(id)
	if err := s.send(ctx, svcProducts, http.MethodPut, u, token, in, &review); err != nil {
		return nil, err
	}
	return &review, nil
}

func (s *ServiceClient) DeleteReview(ctx context.Context, token, id string) error {
	u := s.cfg.ProductServiceURL + "/reviews/" + url.PathEscape(id)
	return s.send(ctx, svcProducts, http.MethodDelete, u, token, nil, nil)
}

func (s *ServiceClient) MarkReviewHelpful(ctx context.Context, token, id string) (*models.MessageResponse, error) {
	var out models.MessageResponse
	u := s.cfg.ProductServiceURL + "/reviews/" + url.PathEscape(id) + "/helpful"
	if err := s.send(ctx, svcProducts, http.MethodPost, u, token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
