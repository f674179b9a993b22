// Package ai holds the optional LLM integration. The engine works without it;
// callers fall back to generated placeholders when no generator is configured.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// LLM parameters for nickname generation
const (
	nicknameTimeout      = 15 * time.Second
	nicknameMaxTokens    = 20
	nicknameTemperature  = 0.3
	nicknameTitleMaxLen  = 500
	nicknameMaxRuneCount = 40
)

const defaultModel = "gpt-4o-mini"

// NicknameGenerator names flavours after the content item they were seeded
// from, via an OpenAI-compatible chat completion endpoint.
type NicknameGenerator struct {
	client *openai.Client
	model  string
}

// NicknameGeneratorConfig holds configuration for the nickname generator.
type NicknameGeneratorConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// NewNicknameGenerator creates a new nickname generator instance.
func NewNicknameGenerator(cfg NicknameGeneratorConfig) *NicknameGenerator {
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	return &NicknameGenerator{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

// GenerateNickname derives a short topic label from a content headline.
func (ng *NicknameGenerator) GenerateNickname(ctx context.Context, title string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, nicknameTimeout)
	defer cancel()

	if len(title) > nicknameTitleMaxLen {
		title = title[:nicknameTitleMaxLen] + "..."
	}

	req := openai.ChatCompletionRequest{
		Model:       ng.model,
		MaxTokens:   nicknameMaxTokens,
		Temperature: nicknameTemperature,
		Stop:        []string{"\n"},
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: nicknameSystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("Headline: %s", title),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "nickname_generation",
				Strict: true,
				Schema: nicknameJSONSchema,
			},
		},
	}

	start := time.Now()
	resp, err := ng.client.CreateChatCompletion(ctx, req)
	latency := time.Since(start)

	if err != nil {
		slog.Error("nickname_generation_failed",
			"model", ng.model,
			"error", err,
			"latency_ms", latency.Milliseconds())
		return "", fmt.Errorf("LLM request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from LLM")
	}

	var result struct {
		Nickname string `json:"nickname"`
	}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &result); err != nil {
		slog.Warn("nickname_generation_parse_failed",
			"model", ng.model,
			"content", resp.Choices[0].Message.Content,
			"error", err)
		return "", fmt.Errorf("parse response failed: %w", err)
	}

	nickname := strings.TrimSpace(result.Nickname)
	if nickname == "" {
		return "", fmt.Errorf("empty nickname in response")
	}

	// Truncate to max length (rune-aware for UTF-8)
	runes := []rune(nickname)
	if len(runes) > nicknameMaxRuneCount {
		nickname = string(runes[:nicknameMaxRuneCount])
	}

	slog.Debug("nickname_generation_success",
		"model", ng.model,
		"nickname", nickname,
		"latency_ms", latency.Milliseconds(),
		"tokens_total", resp.Usage.TotalTokens)

	return nickname, nil
}

// nicknameSystemPrompt is the system prompt for nickname generation.
const nicknameSystemPrompt = `You name interest feeds after a single news headline.

Rules:
1. Output a short topic label, 1-4 words.
2. Name the broad topic, not the specific event.
3. No punctuation, no quotes, no trailing period.
4. Keep the headline's language.

Examples:
- "Quantum startup raises $200M to build error-corrected chips" -> "Quantum Computing"
- "Arsenal edge City in five-goal thriller" -> "Football"
- "Fed holds rates steady as inflation cools" -> "Monetary Policy"
`

// nicknameJSONSchema defines the JSON schema for nickname generation response.
var nicknameJSONSchema = &jsonSchema{
	Type:                 "object",
	AdditionalProperties: false,
	Required:             []string{"nickname"},
	Properties: map[string]*jsonSchema{
		"nickname": {
			Type:        "string",
			Description: "Short topic label for the headline, 1-4 words",
		},
	},
}

// jsonSchema implements json.Marshaler for OpenAI's JSON Schema format.
// The alias type prevents infinite recursion during marshaling.
type jsonSchema struct {
	Properties           map[string]*jsonSchema `json:"properties,omitempty"`
	Type                 string                 `json:"type"`
	Description          string                 `json:"description,omitempty"`
	Required             []string               `json:"required,omitempty"`
	Enum                 []string               `json:"enum,omitempty"`
	AdditionalProperties bool                   `json:"additionalProperties"`
}

func (s *jsonSchema) MarshalJSON() ([]byte, error) {
	type alias jsonSchema
	return json.Marshal((*alias)(s))
}
