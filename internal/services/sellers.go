package services

import (
	"context"
	"net/http"
	"net/url"

	"shopnest-bff/internal/models"
)

func (s *ServiceClient) GetSellerProfile(ctx context.Context, token string) (*models.SellerProfile, error) {
	var profile models.SellerProfile
	if err := s.get(ctx, svcUsers, s.cfg.UserServiceURL+"/sellers/profile", token, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *ServiceClient) CreateSellerProfile(ctx context.Context, token string, in models.SellerProfileInput) (*models.SellerProfile, error) {
	var profile models.SellerProfile
	if err := s.send(ctx, svcUsers, http.MethodPost, s.cfg.UserServiceURL+"/sellers/profile", token, in, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *ServiceClient) UpdateSellerProfile(ctx context.Context, token string, in models.SellerProfileInput) (*models.SellerProfile, error) {
	var profile models.SellerProfile
	if err := s.send(ctx, svcUsers, http.MethodPut, s.cfg.UserServiceURL+"/sellers/profile", token, in, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *ServiceClient) SellerDashboard(ctx context.Context, token string) (models.Dashboard, error) {
	var out models.Dashboard
	if err := s.get(ctx, svcUsers, s.cfg.UserServiceURL+"/sellers/dashboard", token, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ServiceClient) PendingSellers(ctx context.Context, token string) ([]models.SellerProfile, error) {
	var sellers []models.SellerProfile
	if err := s.get(ctx, svcUsers, s.cfg.UserServiceURL+"/admin/sellers/pending", token, &sellers); err != nil {
		return nil, err
	}
	return sellers, nil
}

func (s *ServiceClient) AllSellers(ctx context.Context, token string) ([]models.SellerProfile, error) {
	var sellers []models.SellerProfile
	if err := s.get(ctx, svcUsers, s.cfg.UserServiceURL+"/admin/sellers/all", token, &sellers); err != nil {
		return nil, err
	}
	return sellers, nil
}

// ReviewSeller approves or rejects a pending seller.
func (s *ServiceClient) ReviewSeller(ctx context.Context, token, sellerID string, decision models.SellerApproval) (*models.SellerActionResponse, error) {
	var out models.SellerActionResponse
	u := s.cfg.UserServiceURL + "/admin/sellers/" + url.PathEscape(sellerID) + "/approval"
	if err := s.send(ctx, svcUsers, http.MethodPost, u, token, decision, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ServiceClient) SuspendSeller(ctx context.Context, token, sellerID string) (*models.SellerActionResponse, error) {
	return s.sellerAction(ctx, token, sellerID, "suspend")
}

func (s *ServiceClient) ReactivateSeller(ctx context.Context, token, sellerID string) (*models.SellerActionResponse, error) {
	return s.sellerAction(ctx, token, sellerID, "reactivate")
}

func (s *ServiceClient) sellerAction(ctx context.Context, token, sellerID, action string) (*models.SellerActionResponse, error) {
	var out models.SellerActionResponse
	u := s.cfg.UserServiceURL + "/admin/sellers/" + url.PathEscape(sellerID) + "/" + action
	if err := s.send(ctx, svcUsers, http.MethodPut, u, token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ServiceClient) AdminDashboard(ctx context.Context, token string) (models.Dashboard, error) {
	var out models.Dashboard
	if err := s.get(ctx, svcUsers, s.cfg.UserServiceURL+"/admin/dashboard", token, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ServiceClient) ListSettings(ctx context.Context, token string) ([]models.PlatformSetting, error) {
	var settings []models.PlatformSetting
	if err := s.get(ctx, svcUsers, s.cfg.UserServiceURL+"/admin/settings", token, &settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *ServiceClient) GroupedSettings(ctx context.Context, token string) (*models.SettingsGroup, error) {
	var group models.SettingsGroup
	if err := s.get(ctx, svcUsers, s.cfg.UserServiceURL+"/admin/settings/grouped", token, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

// ConfirmSetting changes a setting that requires the admin's password.
func (s *ServiceClient) ConfirmSetting(ctx context.Context, token string, change models.SettingConfirmation) (*models.PlatformSetting, error) {
	var setting models.PlatformSetting
	u := s.cfg.UserServiceURL + "/admin/settings/confirm"
	if err := s.send(ctx, svcUsers, http.MethodPost, u, token, change, &setting); err != nil {
		return nil, err
	}
	return &setting, nil
}

func (s *ServiceClient) SettingsAuditLog(ctx context.Context, token string) ([]models.AuditLogEntry, error) {
	var entries []models.AuditLogEntry
	if err := s.get(ctx, svcUsers, s.cfg.UserServiceURL+"/admin/settings/audit-log", token, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
