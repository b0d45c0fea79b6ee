// Package billing reads the subscription state written by the billing
// provider integration. Nothing in this service mutates subscriptions.
package billing

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus mirrors the provider's lifecycle states.
type SubscriptionStatus string

const (
	SubscriptionStatusActive     SubscriptionStatus = "active"
	SubscriptionStatusTrialing   SubscriptionStatus = "trialing"
	SubscriptionStatusPastDue    SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled   SubscriptionStatus = "canceled"
	SubscriptionStatusIncomplete SubscriptionStatus = "incomplete"
)

const (
	PlanFree = "free"
	PlanPro  = "pro"
)

// Subscription is the billing state of one team.
type Subscription struct {
	TeamID           uuid.UUID          `json:"team_id"`
	Status           SubscriptionStatus `json:"status"`
	Plan             string             `json:"plan"`
	CurrentPeriodEnd *time.Time         `json:"current_period_end,omitempty"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// IsActive reports whether the subscription is paid up right now.
func (s *Subscription) IsActive() bool {
	return s.IsActiveAt(time.Now())
}

// IsActiveAt reports whether the subscription is active or trialing and its
// current period has not ended at t.
func (s *Subscription) IsActiveAt(t time.Time) bool {
	if s == nil {
		return false
	}
	switch s.Status {
	case SubscriptionStatusActive, SubscriptionStatusTrialing:
	default:
		return false
	}
	if s.CurrentPeriodEnd != nil && !s.CurrentPeriodEnd.After(t) {
		return false
	}
	return true
}

// PlanAt returns the display plan: pro while active, free otherwise.
func PlanAt(s *Subscription, t time.Time) string {
	if s.IsActiveAt(t) {
		return PlanPro
	}
	return PlanFree
}
