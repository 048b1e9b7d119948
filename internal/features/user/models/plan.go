package models

import "time"

type PlanStatus string

const (
	PlanStatusActive    PlanStatus = "active"
	PlanStatusCancelled PlanStatus = "cancelled"
	PlanStatusExpired   PlanStatus = "expired"
)

// Plan is the subscription record behind User.PlanType.
type Plan struct {
	PlanType     PlanType   `json:"plan_type" example:"basic" enums:"free,basic,premium"`
	PlanDuration *int       `json:"plan_duration,omitempty" example:"30"` // days
	StartDate    time.Time  `json:"start_date"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	Status       PlanStatus `json:"status" example:"active" enums:"active,cancelled,expired"`
}

// DefaultPlan is reported for users that never subscribed.
func DefaultPlan(since time.Time) Plan {
	return Plan{
		PlanType:  PlanFree,
		StartDate: since,
		Status:    PlanStatusActive,
	}
}

// NewPlan starts a plan now; durationDays <= 0 means open-ended.
func NewPlan(planType PlanType, durationDays int, now time.Time) Plan {
	p := Plan{
		PlanType:  planType,
		StartDate: now,
		Status:    PlanStatusActive,
	}
	if durationDays > 0 {
		end := now.AddDate(0, 0, durationDays)
		p.PlanDuration = &durationDays
		p.EndDate = &end
	}
	return p
}

// Lapsed reports an active plan whose end date has passed.
func (p Plan) Lapsed(now time.Time) bool {
	return p.Status == PlanStatusActive && p.EndDate != nil && !p.EndDate.After(now)
}
