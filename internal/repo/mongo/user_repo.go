package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/praneeth552/Jobfinder/internal/domain/enums"
	"github.com/praneeth552/Jobfinder/internal/domain/model"
	"github.com/praneeth552/Jobfinder/internal/domain/rules"
)

const usersCollection = "users"

var ErrInvalidID = errors.New("invalid object id")

// UserRepo only ever writes partial $set updates so concurrent writers of
// unrelated fields are not clobbered.
type UserRepo struct {
	coll *mongodrv.Collection
}

func NewUserRepo(db *mongodrv.Database) *UserRepo {
	return &UserRepo{coll: db.Collection(usersCollection)}
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (model.User, bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.User{}, false, ErrInvalidID
	}

	var user model.User
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongodrv.ErrNoDocuments) {
			return model.User{}, false, nil
		}
		return model.User{}, false, fmt.Errorf("find user by id: %w", err)
	}
	return user, true, nil
}

func (r *UserRepo) FindBySubscriptionID(ctx context.Context, subscriptionID string) (model.User, bool, error) {
	var user model.User
	err := r.coll.FindOne(ctx, bson.M{"razorpay_subscription_id": subscriptionID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongodrv.ErrNoDocuments) {
			return model.User{}, false, nil
		}
		return model.User{}, false, fmt.Errorf("find user by subscription: %w", err)
	}
	return user, true, nil
}

func (r *UserRepo) ApplyPatch(ctx context.Context, id primitive.ObjectID, patch rules.Patch, now time.Time) (bool, error) {
	if patch.Empty() {
		return false, nil
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": PatchDocument(patch, now)})
	if err != nil {
		return false, fmt.Errorf("update user entitlement: %w", err)
	}
	return res.MatchedCount > 0, nil
}

// ApplyDowngrade only matches records that are still pro and not renewed
// past now, so repeating it, racing another downgrade or racing a charge
// leaves the document alone.
func (r *UserRepo) ApplyDowngrade(ctx context.Context, id primitive.ObjectID, patch rules.Patch, now time.Time) (bool, error) {
	if patch.Empty() {
		return false, nil
	}
	res, err := r.coll.UpdateOne(ctx, DowngradeFilter(id, now), bson.M{"$set": PatchDocument(patch, now)})
	if err != nil {
		return false, fmt.Errorf("downgrade user: %w", err)
	}
	return res.ModifiedCount > 0, nil
}

// DowngradeFilter matches id while it is pro and its valid_until is not a
// date at or after now. String-typed legacy values still match and are
// decided in code before the write.
func DowngradeFilter(id primitive.ObjectID, now time.Time) bson.M {
	return bson.M{
		"_id":                      id,
		"plan_type":                enums.PlanTypePro,
		"subscription_valid_until": bson.M{"$not": bson.M{"$gte": now.UTC()}},
	}
}

// ApplyBySubscriptionID updates the user owning subscriptionID and returns
// the record as it is after the update.
func (r *UserRepo) ApplyBySubscriptionID(ctx context.Context, subscriptionID string, patch rules.Patch, now time.Time) (model.User, bool, error) {
	if subscriptionID == "" {
		return model.User{}, false, nil
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user model.User
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"razorpay_subscription_id": subscriptionID},
		bson.M{"$set": PatchDocument(patch, now)},
		opts,
	).Decode(&user)
	if err != nil {
		if errors.Is(err, mongodrv.ErrNoDocuments) {
			return model.User{}, false, nil
		}
		return model.User{}, false, fmt.Errorf("update user by subscription: %w", err)
	}
	return user, true, nil
}

// ForEachRenewalCandidate visits active pro users whose period ends in (from, to].
func (r *UserRepo) ForEachRenewalCandidate(ctx context.Context, from, to time.Time, fn func(model.User) error) error {
	filter := bson.M{
		"plan_type":           enums.PlanTypePro,
		"subscription_status": enums.SubscriptionStatusActive,
		"subscription_valid_until": bson.M{
			"$gt":  from.UTC(),
			"$lte": to.UTC(),
		},
	}
	return r.scan(ctx, filter, fn)
}

// ForEachExpiredPro visits pro users whose valid_until is in the past or
// stored in a non-date form that needs a decision in code.
func (r *UserRepo) ForEachExpiredPro(ctx context.Context, now time.Time, fn func(model.User) error) error {
	filter := bson.M{
		"plan_type": enums.PlanTypePro,
		"$or": bson.A{
			bson.M{"subscription_valid_until": bson.M{"$lt": now.UTC()}},
			bson.M{"subscription_valid_until": bson.M{"$type": "string"}},
		},
	}
	return r.scan(ctx, filter, fn)
}

func (r *UserRepo) scan(ctx context.Context, filter bson.M, fn func(model.User) error) error {
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetBatchSize(200))
	if err != nil {
		return fmt.Errorf("find users: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var user model.User
		if err := cursor.Decode(&user); err != nil {
			return fmt.Errorf("decode user: %w", err)
		}
		if err := fn(user); err != nil {
			return err
		}
	}
	if err := cursor.Err(); err != nil {
		return fmt.Errorf("iterate users: %w", err)
	}
	return nil
}

// PatchDocument renders a patch as the body of a $set.
func PatchDocument(p rules.Patch, now time.Time) bson.M {
	set := bson.M{"updated_at": now.UTC()}
	if p.PlanType != nil {
		set["plan_type"] = *p.PlanType
	}
	if p.PlanStatus != nil {
		set["plan_status"] = *p.PlanStatus
	}
	if p.SubscriptionStatus != nil {
		set["subscription_status"] = *p.SubscriptionStatus
	}
	if p.ValidUntil != nil {
		set["subscription_valid_until"] = p.ValidUntil.UTC()
	}
	if p.SubscriptionID != nil {
		set["razorpay_subscription_id"] = nullable(*p.SubscriptionID)
	}
	if p.CustomerID != nil {
		set["razorpay_customer_id"] = nullable(*p.CustomerID)
	}
	if p.RevokeIntegrations {
		set["sheets_enabled"] = false
		set["google_tokens"] = nil
		set["spreadsheet_id"] = nil
	}
	return set
}

func nullable(v string) interface{} {
	if v == "" {
		return nil
	}
	return v
}
