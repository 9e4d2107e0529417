package demo

import (
	"net/http"
	"sort"

	"github.com/shopspring/decimal"

	"shopnest-bff/internal/models"
)

var defaultCommission = decimal.RequireFromString("10.00")

func (b *Backend) profileFor(userID string) *models.SellerProfile {
	for _, s := range b.sellers {
		if s.UserID == userID {
			return s
		}
	}
	return nil
}

func (b *Backend) sellerProfile(w http.ResponseWriter, r *http.Request, user models.User) {
	b.mu.RLock()
	profile := b.profileFor(user.ID)
	var out models.SellerProfile
	if profile != nil {
		out = *profile
	}
	b.mu.RUnlock()

	if profile == nil {
		detail(w, http.StatusNotFound, "Seller profile not found")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// createSellerProfile registers a seller for approval.
func (b *Backend) createSellerProfile(w http.ResponseWriter, r *http.Request, user models.User) {
	if user.Role != models.RoleSeller {
		detail(w, http.StatusForbidden, "Only sellers can create a seller profile")
		return
	}
	var req models.SellerProfileInput
	if !decode(w, r, &req) {
		return
	}
	if len(req.BusinessName) < 2 {
		detail(w, http.StatusUnprocessableEntity, "business_name must be at least 2 characters")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.profileFor(user.ID) != nil {
		detail(w, http.StatusBadRequest, "Seller profile already exists")
		return
	}

	profile := &models.SellerProfile{
		ID:             newID(),
		UserID:         user.ID,
		BusinessName:   req.BusinessName,
		ApprovalStatus: models.ApprovalPending,
		CommissionRate: defaultCommission,
		CreatedAt:      b.now().UTC(),
	}
	if req.BusinessDescription != nil {
		profile.BusinessDescription = *req.BusinessDescription
	}
	if req.BusinessAddress != nil {
		profile.BusinessAddress = *req.BusinessAddress
	}
	b.sellers[profile.ID] = profile
	writeJSON(w, http.StatusCreated, profile)
}

func (b *Backend) sellerList(keep func(*models.SellerProfile) bool) []models.SellerProfile {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := []models.SellerProfile{}
	for _, s := range b.sellers {
		if keep(s) {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (b *Backend) pendingSellers(w http.ResponseWriter, r *http.Request, _ models.User) {
	writeJSON(w, http.StatusOK, b.sellerList(func(s *models.SellerProfile) bool {
		return s.ApprovalStatus == models.ApprovalPending
	}))
}

func (b *Backend) allSellers(w http.ResponseWriter, r *http.Request, _ models.User) {
	writeJSON(w, http.StatusOK, b.sellerList(func(*models.SellerProfile) bool { return true }))
}

func (b *Backend) reviewSeller(w http.ResponseWriter, r *http.Request, user models.User) {
	var req models.SellerApproval
	if !decode(w, r, &req) {
		return
	}
	if req.Action != models.ActionApprove && req.Action != models.ActionReject {
		detail(w, http.StatusUnprocessableEntity, "action must be approve or reject")
		return
	}
	if err := req.Validate(); err != nil {
		detail(w, http.StatusBadRequest, "Rejection reason is required")
		return
	}
	b.transition(w, r.PathValue("id"), req.Action)
}

func (b *Backend) sellerAction(action models.ApprovalAction) userHandler {
	return func(w http.ResponseWriter, r *http.Request, _ models.User) {
		b.transition(w, r.PathValue("id"), action)
	}
}

func (b *Backend) transition(w http.ResponseWriter, sellerID string, action models.ApprovalAction) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.sellers[sellerID]
	if !ok {
		detail(w, http.StatusNotFound, "Seller not found")
		return
	}
	next, err := s.ApprovalStatus.Apply(action)
	if err != nil {
		detail(w, http.StatusBadRequest, err.Error())
		return
	}
	s.ApprovalStatus = next

	writeJSON(w, http.StatusOK, models.SellerActionResponse{
		Message: "Seller " + string(next),
		Seller:  *s,
	})
}
