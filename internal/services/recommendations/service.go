package recommendations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/praneeth552/Jobfinder/internal/domain/model"
	"github.com/praneeth552/Jobfinder/internal/domain/rules"
)

var (
	ErrNoProfile         = errors.New("user preferences are empty")
	ErrNoJobs            = errors.New("no job listings available")
	ErrGeneratorDisabled = errors.New("recommendation generator is not configured")
)

type Limiter interface {
	Check(ctx context.Context, user model.User) (rules.GenerationDecision, error)
	Allow(ctx context.Context, user model.User) (rules.GenerationDecision, error)
}

type Store interface {
	Latest(ctx context.Context, userID string) (model.Recommendation, bool, error)
	Save(ctx context.Context, rec model.Recommendation) error
}

type JobSource interface {
	ListRecent(ctx context.Context, limit int) ([]model.JobListing, error)
}

type Generator interface {
	Recommend(ctx context.Context, profile string, jobs []model.JobListing) ([]model.RecommendedJob, error)
}

type Config struct {
	JobsLimit int
}

type Service struct {
	limiter   Limiter
	store     Store
	jobs      JobSource
	generator Generator
	cfg       Config
	logger    *zap.Logger
	now       func() time.Time
}

type Result struct {
	Recommendation model.Recommendation
	Decision       rules.GenerationDecision
}

func NewService(limiter Limiter, store Store, jobs JobSource, generator Generator, cfg Config, logger *zap.Logger) *Service {
	if cfg.JobsLimit <= 0 {
		cfg.JobsLimit = 50
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		limiter:   limiter,
		store:     store,
		jobs:      jobs,
		generator: generator,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Service) Eligibility(ctx context.Context, user model.User) (rules.GenerationDecision, error) {
	return s.limiter.Check(ctx, user)
}

// Generate is gated by the limiter before any model call is made. The
// returned decision describes the window after this generation.
func (s *Service) Generate(ctx context.Context, user model.User) (Result, error) {
	decision, err := s.limiter.Allow(ctx, user)
	if err != nil {
		return Result{Decision: decision}, err
	}
	if s.generator == nil {
		return Result{}, ErrGeneratorDisabled
	}

	profile := BuildProfile(user.Preferences)
	if profile == "" {
		return Result{}, ErrNoProfile
	}

	jobs, err := s.jobs.ListRecent(ctx, s.cfg.JobsLimit)
	if err != nil {
		return Result{}, fmt.Errorf("list jobs: %w", err)
	}
	if len(jobs) == 0 {
		return Result{}, ErrNoJobs
	}

	picked, err := s.generator.Recommend(ctx, profile, jobs)
	if err != nil {
		return Result{}, fmt.Errorf("generate recommendations: %w", err)
	}

	rec := model.Recommendation{
		UserID:          user.HexID(),
		RecommendedJobs: picked,
		GeneratedAt:     s.now().UTC(),
	}
	if err := s.store.Save(ctx, rec); err != nil {
		return Result{}, err
	}

	next := rec.GeneratedAt.Add(time.Duration(decision.IntervalDays) * 24 * time.Hour)
	s.logger.Info("recommendations generated",
		zap.String("user_id", rec.UserID),
		zap.Int("jobs", len(picked)),
		zap.Time("next_allowed_at", next),
	)

	return Result{
		Recommendation: rec,
		Decision: rules.GenerationDecision{
			Allowed:        false,
			RetryAfterDays: decision.IntervalDays,
			IntervalDays:   decision.IntervalDays,
			NextAllowedAt:  &next,
		},
	}, nil
}

func (s *Service) Latest(ctx context.Context, user model.User) (model.Recommendation, bool, error) {
	return s.store.Latest(ctx, user.HexID())
}

// BuildProfile renders preferences as the plain text block the model reads.
func BuildProfile(p model.Preferences) string {
	var lines []string
	add := func(label string, values []string) {
		cleaned := make([]string, 0, len(values))
		for _, v := range values {
			if v = strings.TrimSpace(v); v != "" {
				cleaned = append(cleaned, v)
			}
		}
		if len(cleaned) > 0 {
			lines = append(lines, label+": "+strings.Join(cleaned, ", "))
		}
	}
	add("Roles", p.Roles)
	add("Locations", p.Locations)
	add("Tech stack", p.TechStack)
	add("Experience level", []string{p.ExperienceLevel})
	add("Job type", p.JobType)
	add("Work arrangement", p.WorkArrangement)
	return strings.Join(lines, "\n")
}
