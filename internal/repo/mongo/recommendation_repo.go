package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/praneeth552/Jobfinder/internal/domain/model"
)

const (
	recommendationsCollection = "recommendations"
	jobsCollection            = "jobs"
)

type RecommendationRepo struct {
	coll *mongodrv.Collection
}

func NewRecommendationRepo(db *mongodrv.Database) *RecommendationRepo {
	return &RecommendationRepo{coll: db.Collection(recommendationsCollection)}
}

// LatestGeneratedAt returns nil when the user never generated.
func (r *RecommendationRepo) LatestGeneratedAt(ctx context.Context, userID string) (*time.Time, error) {
	opts := options.FindOne().
		SetSort(bson.D{{Key: "generated_at", Value: -1}}).
		SetProjection(bson.M{"generated_at": 1})

	var doc struct {
		GeneratedAt model.Timestamp `bson:"generated_at"`
	}
	err := r.coll.FindOne(ctx, bson.M{"user_id": userID}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongodrv.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find latest recommendation: %w", err)
	}
	return doc.GeneratedAt.Ptr(), nil
}

func (r *RecommendationRepo) Latest(ctx context.Context, userID string) (model.Recommendation, bool, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "generated_at", Value: -1}})

	var rec model.Recommendation
	err := r.coll.FindOne(ctx, bson.M{"user_id": userID}, opts).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongodrv.ErrNoDocuments) {
			return model.Recommendation{}, false, nil
		}
		return model.Recommendation{}, false, fmt.Errorf("find recommendation: %w", err)
	}
	return rec, true, nil
}

func (r *RecommendationRepo) Save(ctx context.Context, rec model.Recommendation) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"user_id": rec.UserID},
		bson.M{"$set": bson.M{
			"user_id":          rec.UserID,
			"recommended_jobs": rec.RecommendedJobs,
			"generated_at":     rec.GeneratedAt.UTC(),
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("save recommendation: %w", err)
	}
	return nil
}

type JobRepo struct {
	coll *mongodrv.Collection
}

func NewJobRepo(db *mongodrv.Database) *JobRepo {
	return &JobRepo{coll: db.Collection(jobsCollection)}
}

func (r *JobRepo) ListRecent(ctx context.Context, limit int) ([]model.JobListing, error) {
	if limit <= 0 {
		limit = 50
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find jobs: %w", err)
	}
	defer cursor.Close(ctx)

	jobs := make([]model.JobListing, 0, limit)
	if err := cursor.All(ctx, &jobs); err != nil {
		return nil, fmt.Errorf("decode jobs: %w", err)
	}
	return jobs, nil
}
