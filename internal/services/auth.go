package services

import (
	"context"
	"net/http"

	"shopnest-bff/internal/models"
)

func (s *ServiceClient) Register(ctx context.Context, req models.RegisterRequest) (*models.TokenResponse, error) {
	var out models.TokenResponse
	err := s.send(ctx, svcUsers, http.MethodPost, s.cfg.UserServiceURL+"/auth/register", "", req, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ServiceClient) Login(ctx context.Context, req models.LoginRequest) (*models.TokenResponse, error) {
	var out models.TokenResponse
	err := s.send(ctx, svcUsers, http.MethodPost, s.cfg.UserServiceURL+"/auth/login", "", req, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ServiceClient) Refresh(ctx context.Context, refreshToken string) (*models.TokenResponse, error) {
	var out models.TokenResponse
	body := models.RefreshRequest{RefreshToken: refreshToken}
	err := s.send(ctx, svcUsers, http.MethodPost, s.cfg.UserServiceURL+"/auth/refresh", "", body, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
