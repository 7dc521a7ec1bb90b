package dto

import "time"

type EligibilityResponse struct {
	CanGenerate    bool       `json:"can_generate"`
	RetryAfterDays int        `json:"retry_after_days"`
	IntervalDays   int        `json:"interval_days"`
	NextAllowedAt  *time.Time `json:"next_allowed_at"`
}

type RecommendedJobResponse struct {
	Title      string `json:"title"`
	Company    string `json:"company"`
	Location   string `json:"location"`
	MatchScore int    `json:"match_score"`
	Reason     string `json:"reason"`
	JobURL     string `json:"job_url"`
}

type RecommendationsResponse struct {
	RecommendedJobs         []RecommendedJobResponse `json:"recommended_jobs"`
	GeneratedAt             time.Time                `json:"generated_at"`
	NextGenerationAllowedAt *time.Time               `json:"next_generation_allowed_at"`
}
