package model

import "time"

type RecommendedJob struct {
	Title      string `bson:"title" json:"title"`
	Company    string `bson:"company" json:"company"`
	Location   string `bson:"location" json:"location"`
	MatchScore int    `bson:"match_score" json:"match_score"`
	Reason     string `bson:"reason" json:"reason"`
	JobURL     string `bson:"job_url" json:"job_url"`
}

// Recommendation is keyed by the user id hex string, latest by GeneratedAt.
type Recommendation struct {
	UserID          string           `bson:"user_id" json:"user_id"`
	RecommendedJobs []RecommendedJob `bson:"recommended_jobs" json:"recommended_jobs"`
	GeneratedAt     time.Time        `bson:"generated_at" json:"generated_at"`
}

type JobListing struct {
	Title       string `bson:"title" json:"title"`
	Company     string `bson:"company" json:"company"`
	Location    string `bson:"location" json:"location"`
	Description string `bson:"description" json:"description"`
	JobURL      string `bson:"job_url" json:"job_url"`
}
