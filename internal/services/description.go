package services

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DescriptionService drafts product descriptions with Gemini.
type DescriptionService struct {
	model string
}

// NewDescriptionService constructs a DescriptionService targeting the given
// Gemini model. The API key is read from the environment by the genai client.
func NewDescriptionService(model string) *DescriptionService {
	return &DescriptionService{model: model}
}

// Generate returns a short marketing description for a product. The wording
// is intentionally constrained to plain prose so the result can be stored
// directly on the product record.
func (s *DescriptionService) Generate(ctx context.Context, name, category string, keywords []string) (string, error) {
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDescriptionGen, err)
	}

	prompt := fmt.Sprintf(
		"Write a short product description (2-3 sentences, plain text, no markdown) for a farm product named %q",
		name,
	)
	if category != "" {
		prompt += fmt.Sprintf(" in the %q category", category)
	}
	if len(keywords) > 0 {
		prompt += ". Mention: " + strings.Join(keywords, ", ")
	}
	prompt += "."

	resp, err := client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDescriptionGen, err)
	}

	description := strings.TrimSpace(resp.Text())
	if description == "" {
		return "", ErrDescriptionGen
	}
	return description, nil
}
