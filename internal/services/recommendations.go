package services

import (
	"context"
	"net/url"
	"strconv"

	"shopnest-bff/internal/models"
	"shopnest-bff/internal/resilience"
)

// recommend fetches a product list through the recommendation breaker.
// Callers that render pages treat any error as an empty list.
func (s *ServiceClient) recommend(ctx context.Context, path string, q url.Values) ([]models.Product, error) {
	u := endpoint(s.cfg.RecommendationServiceURL, "/recommendations"+path, q)
	return resilience.Call(s.recommendationCB, func() ([]models.Product, error) {
		var recs []models.Product
		if err := s.get(ctx, svcRecommendations, u, "", &recs); err != nil {
			return nil, err
		}
		return recs, nil
	})
}

func limitQuery(limit int) url.Values {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return q
}

func (s *ServiceClient) Similar(ctx context.Context, productID string, limit int) ([]models.Product, error) {
	return s.recommend(ctx, "/similar/"+url.PathEscape(productID), limitQuery(limit))
}

func (s *ServiceClient) Popular(ctx context.Context, limit int) ([]models.Product, error) {
	return s.recommend(ctx, "/popular", limitQuery(limit))
}

func (s *ServiceClient) Trending(ctx context.Context, limit int) ([]models.Product, error) {
	return s.recommend(ctx, "/trending", limitQuery(limit))
}

// SellerOther lists other products from the seller of productID.
func (s *ServiceClient) SellerOther(ctx context.Context, sellerID, productID string, limit int) ([]models.Product, error) {
	return s.recommend(ctx, "/seller/"+url.PathEscape(sellerID)+"/other/"+url.PathEscape(productID), limitQuery(limit))
}

func (s *ServiceClient) BoughtTogether(ctx context.Context, productID string, limit int) ([]models.Product, error) {
	u := endpoint(s.cfg.RecommendationServiceURL, "/recommendations/bought-together/"+url.PathEscape(productID), limitQuery(limit))
	out, err := resilience.Call(s.recommendationCB, func() (*models.BoughtTogether, error) {
		var bt models.BoughtTogether
		if err := s.get(ctx, svcRecommendations, u, "", &bt); err != nil {
			return nil, err
		}
		return &bt, nil
	})
	if err != nil {
		return nil, err
	}
	return out.Recommendations, nil
}

func (s *ServiceClient) Category(ctx context.Context, categoryID, excludeID string, limit int) ([]models.Product, error) {
	q := limitQuery(limit)
	if excludeID != "" {
		q.Set("exclude_id", excludeID)
	}
	return s.recommend(ctx, "/category/"+url.PathEscape(categoryID), q)
}
