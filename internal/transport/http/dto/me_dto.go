package dto

import "time"

type MeResponse struct {
	ID                      string              `json:"id"`
	Email                   string              `json:"email"`
	Name                    string              `json:"name"`
	Role                    string              `json:"role,omitempty"`
	PlanType                string              `json:"plan_type"`
	IsPro                   bool                `json:"is_pro"`
	SubscriptionStatus      string              `json:"subscription_status,omitempty"`
	SubscriptionValidUntil  *time.Time          `json:"subscription_valid_until"`
	SheetsEnabled           bool                `json:"sheets_enabled"`
	NextGenerationAllowedAt *time.Time          `json:"next_generation_allowed_at"`
	Preferences             MePreferencesObject `json:"preferences"`
}

type MePreferencesObject struct {
	Roles           []string `json:"role"`
	Locations       []string `json:"location"`
	TechStack       []string `json:"tech_stack"`
	ExperienceLevel string   `json:"experience_level"`
	JobType         []string `json:"job_type"`
	WorkArrangement []string `json:"work_arrangement"`
}
