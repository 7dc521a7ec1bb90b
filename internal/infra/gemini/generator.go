package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/praneeth552/Jobfinder/internal/domain/model"
)

var ErrEmptyResponse = errors.New("model returned no recommendations")

const descriptionLimit = 300

// Generator ranks stored job listings against a user profile with Gemini.
type Generator struct {
	client *genai.Client
	model  string
}

func New(ctx context.Context, apiKey, modelName string) (*Generator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Generator{client: client, model: modelName}, nil
}

func (g *Generator) Close() error {
	return g.client.Close()
}

func (g *Generator) Recommend(ctx context.Context, profile string, jobs []model.JobListing) ([]model.RecommendedJob, error) {
	prompt, err := BuildPrompt(profile, jobs)
	if err != nil {
		return nil, err
	}

	m := g.client.GenerativeModel(g.model)
	m.ResponseMIMEType = "application/json"
	m.SetTemperature(0.4)

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
		break
	}

	return ParseRecommendations(sb.String())
}

type promptJob struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Description string `json:"description"`
	JobURL      string `json:"job_url"`
}

func BuildPrompt(profile string, jobs []model.JobListing) (string, error) {
	listed := make([]promptJob, 0, len(jobs))
	for _, job := range jobs {
		desc := job.Description
		if desc == "" {
			desc = "No description"
		}
		if len(desc) > descriptionLimit {
			desc = desc[:descriptionLimit] + "..."
		}
		listed = append(listed, promptJob{
			Title:       job.Title,
			Company:     job.Company,
			Location:    job.Location,
			Description: desc,
			JobURL:      job.JobURL,
		})
	}
	encoded, err := json.MarshalIndent(listed, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode job listings: %w", err)
	}

	return fmt.Sprintf(`Analyze the user profile and job listings. Return ONLY a JSON array of the top 5-8 best matches.

USER PROFILE:
%s

AVAILABLE JOBS:
%s

Each element must have: title, company, location, match_score (0-100), reason (under 30 words), job_url.
`, profile, encoded), nil
}

// ParseRecommendations accepts a bare JSON array or one wrapped in a
// markdown code fence.
func ParseRecommendations(raw string) ([]model.RecommendedJob, error) {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimPrefix(text, "json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}
	if text == "" {
		return nil, ErrEmptyResponse
	}

	var jobs []model.RecommendedJob
	if err := json.Unmarshal([]byte(text), &jobs); err != nil {
		return nil, fmt.Errorf("decode recommendations: %w", err)
	}
	if len(jobs) == 0 {
		return nil, ErrEmptyResponse
	}
	return jobs, nil
}
