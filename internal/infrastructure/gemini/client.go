package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/amoradev/amora-backend/internal/domain"
)

type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewClient(apiKey string) (*Client, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel("gemini-1.5-pro")
	model.SetTemperature(0.7)

	return &Client{
		client: client,
		model:  model,
	}, nil
}

func (c *Client) Close() {
	c.client.Close()
}

// GenerateIcebreakers produces a short numbered list of opening lines one
// matched user could send the other, based on their hobbies and bios.
func (c *Client) GenerateIcebreakers(ctx context.Context, a, b *domain.Profile) (string, error) {
	prompt := fmt.Sprintf(`
		Generate 3 creative icebreaker messages for a dating app match.
		User 1 hobbies: %v. Bio: %q
		User 2 hobbies: %v. Bio: %q

		Task: Create 3 distinct opening lines that User 1 could send to User 2.
		Focus on shared hobbies or interesting contrasts.
		Output: JSON array of strings. Example: ["Hi...", "Hello..."]
	`, a.Hobbies, a.Bio, b.Hobbies, b.Bio)

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no content generated")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}

	responseText := strings.TrimSpace(sb.String())
	// Clean up markdown code blocks if present
	responseText = strings.TrimPrefix(responseText, "```json")
	responseText = strings.TrimPrefix(responseText, "```")
	responseText = strings.TrimSuffix(responseText, "```")
	responseText = strings.TrimSpace(responseText)

	var icebreakers []string
	if err := json.Unmarshal([]byte(responseText), &icebreakers); err != nil {
		// Fallback if JSON parsing fails - just return raw text split by newlines
		for _, line := range strings.Split(responseText, "\n") {
			line = strings.TrimSpace(line)
			if line != "" && !strings.HasPrefix(line, "[") && !strings.HasSuffix(line, "]") {
				icebreakers = append(icebreakers, line)
			}
		}
		if len(icebreakers) == 0 {
			return "", fmt.Errorf("failed to parse icebreakers: %w", err)
		}
	}

	var out strings.Builder
	for i, line := range icebreakers {
		fmt.Fprintf(&out, "%d. %s\n", i+1, line)
	}
	return strings.TrimSpace(out.String()), nil
}
