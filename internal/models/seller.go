package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type ApprovalStatus string

const (
	ApprovalPending   ApprovalStatus = "pending"
	ApprovalApproved  ApprovalStatus = "approved"
	ApprovalRejected  ApprovalStatus = "rejected"
	ApprovalSuspended ApprovalStatus = "suspended"
)

type ApprovalAction string

const (
	ActionApprove    ApprovalAction = "approve"
	ActionReject     ApprovalAction = "reject"
	ActionSuspend    ApprovalAction = "suspend"
	ActionReactivate ApprovalAction = "reactivate"
)

// Apply returns the status a seller moves to under action. Only pending
// sellers can be approved or rejected, only approved sellers suspended and
// only suspended sellers reactivated.
func (s ApprovalStatus) Apply(action ApprovalAction) (ApprovalStatus, error) {
	switch action {
	case ActionApprove, ActionReject:
		if s != ApprovalPending {
			return s, fmt.Errorf("seller is already %s", s)
		}
		if action == ActionApprove {
			return ApprovalApproved, nil
		}
		return ApprovalRejected, nil
	case ActionSuspend:
		if s != ApprovalApproved {
			return s, fmt.Errorf("only approved sellers can be suspended")
		}
		return ApprovalSuspended, nil
	case ActionReactivate:
		if s != ApprovalSuspended {
			return s, fmt.Errorf("only suspended sellers can be reactivated")
		}
		return ApprovalApproved, nil
	default:
		return s, fmt.Errorf("unknown action %q", action)
	}
}

type SellerProfile struct {
	ID                  string          `json:"id"`
	UserID              string          `json:"user_id"`
	BusinessName        string          `json:"business_name"`
	BusinessDescription string          `json:"business_description,omitempty"`
	BusinessLogo        string          `json:"business_logo,omitempty"`
	BusinessAddress     string          `json:"business_address,omitempty"`
	ApprovalStatus      ApprovalStatus  `json:"approval_status"`
	CommissionRate      decimal.Decimal `json:"commission_rate"`
	TotalSales          decimal.Decimal `json:"total_sales"`
	RatingAverage       decimal.Decimal `json:"rating_average"`
	TotalReviews        int             `json:"total_reviews"`
	CreatedAt           time.Time       `json:"created_at"`
}

type SellerProfileInput struct {
	BusinessName        string  `json:"business_name,omitempty" validate:"omitempty,min=2,max=200"`
	BusinessDescription *string `json:"business_description,omitempty"`
	BusinessLogo        *string `json:"business_logo,omitempty"`
	BusinessAddress     *string `json:"business_address,omitempty"`
	TaxID               *string `json:"tax_id,omitempty"`
}

// SellerApproval is the admin's decision on a pending seller.
type SellerApproval struct {
	Action          ApprovalAction `json:"action" validate:"required,oneof=approve reject"`
	RejectionReason *string        `json:"rejection_reason"`
}

// Validate enforces that rejections carry a reason.
func (a SellerApproval) Validate() error {
	if a.Action == ActionReject && (a.RejectionReason == nil || *a.RejectionReason == "") {
		return fmt.Errorf("rejection reason is required")
	}
	return nil
}

type SellerActionResponse struct {
	Message string        `json:"message"`
	Seller  SellerProfile `json:"seller"`
}

// Dashboard bodies are aggregates computed by the backend and relayed as-is.
type Dashboard = json.RawMessage
