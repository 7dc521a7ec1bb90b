package model

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/praneeth552/Jobfinder/internal/domain/enums"
)

// User is the subset of the stored user document this service reads.
type User struct {
	ID                     primitive.ObjectID        `bson:"_id" json:"id"`
	Email                  string                    `bson:"email" json:"email"`
	Name                   string                    `bson:"name" json:"name"`
	PlanType               enums.PlanType            `bson:"plan_type" json:"plan_type"`
	PlanStatus             *enums.PlanStatus         `bson:"plan_status,omitempty" json:"plan_status"`
	SubscriptionStatus     *enums.SubscriptionStatus `bson:"subscription_status,omitempty" json:"subscription_status"`
	SubscriptionValidUntil Timestamp                 `bson:"subscription_valid_until" json:"subscription_valid_until"`
	RazorpaySubscriptionID *string                   `bson:"razorpay_subscription_id,omitempty" json:"-"`
	RazorpayCustomerID     *string                   `bson:"razorpay_customer_id,omitempty" json:"-"`
	SheetsEnabled          bool                      `bson:"sheets_enabled" json:"sheets_enabled"`
	SpreadsheetID          *string                   `bson:"spreadsheet_id,omitempty" json:"-"`
	DeletionRequestedAt    Timestamp                 `bson:"deletion_requested_at" json:"deletion_requested_at"`
	LastResumeUpload       Timestamp                 `bson:"last_resume_upload" json:"last_resume_upload"`
	Preferences            Preferences               `bson:"preferences" json:"preferences"`
	CreatedAt              Timestamp                 `bson:"created_at" json:"created_at"`
}

type Preferences struct {
	Roles           []string `bson:"role" json:"role"`
	Locations       []string `bson:"location" json:"location"`
	TechStack       []string `bson:"tech_stack" json:"tech_stack"`
	ExperienceLevel string   `bson:"experience_level" json:"experience_level"`
	JobType         []string `bson:"job_type" json:"job_type"`
	WorkArrangement []string `bson:"work_arrangement" json:"work_arrangement"`
}

func (u User) HexID() string {
	return u.ID.Hex()
}

func (u User) SubscriptionID() string {
	if u.RazorpaySubscriptionID == nil {
		return ""
	}
	return *u.RazorpaySubscriptionID
}

func (u User) CustomerID() string {
	if u.RazorpayCustomerID == nil {
		return ""
	}
	return *u.RazorpayCustomerID
}
