package services

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"shopnest-bff/internal/models"
)

func (s *ServiceClient) ListProducts(ctx context.Context, q models.ProductQuery) ([]models.Product, error) {
	var products []models.Product
	u := endpoint(s.cfg.ProductServiceURL, "/products", q.Values())
	if err := s.get(ctx, svcProducts, u, "", &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *ServiceClient) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	u := s.cfg.ProductServiceURL + "/products/" + url.PathEscape(id)
	if err := s.get(ctx, svcProducts, u, "", &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *ServiceClient) CreateProduct(ctx context.Context, token string, in models.ProductInput) (*models.Product, error) {
	var product models.Product
	u := s.cfg.ProductServiceURL + "/products"
	if err := s.send(ctx, svcProducts, http.MethodPost, u, token, in, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *ServiceClient) UpdateProduct(ctx context.Context, token, id string, in models.ProductInput) (*models.Product, error) {
	var product models.Product
	u := s.cfg.ProductServiceURL + "/products/" + url.PathEscape(id)
	if err := s.send(ctx, svcProducts, http.MethodPut, u, token, in, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *ServiceClient) DeleteProduct(ctx context.Context, token, id string) error {
	u := s.cfg.ProductServiceURL + "/products/" + url.PathEscape(id)
	return s.send(ctx, svcProducts, http.MethodDelete, u, token, nil, nil)
}

// ListMyProducts returns the calling seller's products.
func (s *ServiceClient) ListMyProducts(ctx context.Context, token string, includeInactive bool) ([]models.Product, error) {
	var products []models.Product
	q := url.Values{"include_inactive": {strconv.FormatBool(includeInactive)}}
	u := endpoint(s.cfg.ProductServiceURL, "/products/seller/my-products", q)
	if err := s.get(ctx, svcProducts, u, token, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *ServiceClient) ListCategories(ctx context.Context, includeInactive bool) ([]models.Category, error) {
	var categories []models.Category
	q := url.Values{"include_inactive": {strconv.FormatBool(includeInactive)}}
	u := endpoint(s.cfg.ProductServiceURL, "/categories", q)
	if err := s.get(ctx, svcProducts, u, "", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *ServiceClient) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	var category models.Category
	u := s.cfg.ProductServiceURL + "/categories/" + url.PathEscape(id)
	if err := s.get(ctx, svcProducts, u, "", &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *ServiceClient) CreateCategory(ctx context.Context, token string, in models.CategoryInput) (*models.Category, error) {
	var category models.Category
	u := s.cfg.ProductServiceURL + "/categories"
	if err := s.send(ctx, svcProducts, http.MethodPost, u, token, in, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *ServiceClient) UpdateCategory(ctx context.Context, token, id string, in models.CategoryInput) (*models.Category, error) {
	var category models.Category
	u := s.cfg.ProductServiceURL + "/categories/" + url.PathEscape(id)
	if err := s.send(ctx, svcProducts, http.MethodPut, u, token, in, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *ServiceClient) DeleteCategory(ctx context.Context, token, id string) error {
	u := s.cfg.ProductServiceURL + "/categories/" + url.PathEscape(id)
	return s.send(ctx, svcProducts, http.MethodDelete, u, token, nil, nil)
}
