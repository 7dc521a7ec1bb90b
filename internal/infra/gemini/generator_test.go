package gemini

import (
	"errors"
	"strings"
	"testing"

	"github.com/praneeth552/Jobfinder/internal/domain/model"
)

func TestParseRecommendationsStripsCodeFence(t *testing.T) {
	raw := "```json\n[{\"title\":\"Go Engineer\",\"company\":\"Acme\",\"match_score\":87,\"reason\":\"fits\",\"job_url\":\"https://acme.dev/1\"}]\n```"
	jobs, err := ParseRecommendations(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(jobs) != 1 || jobs[0].MatchScore != 87 || jobs[0].Company != "Acme" {
		t.Fatalf("unexpected jobs: %+v", jobs)
	}
}

func TestParseRecommendationsRejectsEmpty(t *testing.T) {
	if _, err := ParseRecommendations("[]"); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
	if _, err := ParseRecommendations("  "); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse for blank text, got %v", err)
	}
	if _, err := ParseRecommendations("{not json"); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestBuildPromptTruncatesDescriptions(t *testing.T) {
	prompt, err := BuildPrompt("Roles: backend", []model.JobListing{
		{Title: "SRE", Description: strings.Repeat("x", 400)},
	})
	if err != nil {
		t.Fatalf("build prompt: %v", err)
	}
	if strings.Contains(prompt, strings.Repeat("x", 301)) {
		t.Fatalf("description was not truncated")
	}
	if !strings.Contains(prompt, "Roles: backend") {
		t.Fatalf("profile missing from prompt")
	}
}
