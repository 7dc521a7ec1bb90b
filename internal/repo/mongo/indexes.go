package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the billing lookups and scans rely on,
// plus the TTL index on short-lived OTP records.
func EnsureIndexes(ctx context.Context, db *mongodrv.Database) error {
	specs := []struct {
		collection string
		model      mongodrv.IndexModel
	}{
		{usersCollection, mongodrv.IndexModel{
			Keys:    bson.D{{Key: "razorpay_subscription_id", Value: 1}},
			Options: options.Index().SetName("razorpay_subscription_id").SetSparse(true),
		}},
		{usersCollection, mongodrv.IndexModel{
			Keys:    bson.D{{Key: "plan_type", Value: 1}, {Key: "subscription_valid_until", Value: 1}},
			Options: options.Index().SetName("plan_type_valid_until"),
		}},
		{recommendationsCollection, mongodrv.IndexModel{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "generated_at", Value: -1}},
			Options: options.Index().SetName("user_generated_at"),
		}},
		{"otps", mongodrv.IndexModel{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetName("expires_at_ttl").SetExpireAfterSeconds(0),
		}},
	}

	for _, idx := range specs {
		if _, err := db.Collection(idx.collection).Indexes().CreateOne(ctx, idx.model); err != nil {
			return fmt.Errorf("create index on %s: %w", idx.collection, err)
		}
	}
	return nil
}
