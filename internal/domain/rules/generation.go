package rules

import "time"

const day = 24 * time.Hour

type GenerationDecision struct {
	Allowed        bool
	RetryAfterDays int
	IntervalDays   int
	NextAllowedAt  *time.Time
}

func GenerationIntervalDays(isPro bool, policy Policy) int {
	if isPro {
		return policy.ProGenerationInterval
	}
	return policy.FreeGenerationInterval
}

// CanGenerate allows one generation per interval. Elapsed time counts in
// whole days, so exactly interval days after the last run is allowed.
func CanGenerate(isPro bool, lastGeneratedAt *time.Time, now time.Time, policy Policy) GenerationDecision {
	interval := GenerationIntervalDays(isPro, policy)
	decision := GenerationDecision{Allowed: true, IntervalDays: interval}
	if lastGeneratedAt == nil || lastGeneratedAt.IsZero() {
		return decision
	}

	next := lastGeneratedAt.UTC().Add(time.Duration(interval) * day)
	decision.NextAllowedAt = &next

	elapsed := ElapsedDays(*lastGeneratedAt, now)
	if elapsed < interval {
		decision.Allowed = false
		decision.RetryAfterDays = interval - elapsed
	}
	return decision
}

// ElapsedDays counts whole 24h periods between from and to.
func ElapsedDays(from, to time.Time) int {
	return int(to.Sub(from) / day)
}

func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
