// Package answer synthesizes natural-language answers from ranked
// search results, with an extractive fallback when no LLM is
// reachable.
package answer

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	seekerrors "github.com/reportseek/reportseek/internal/errors"
	"github.com/reportseek/reportseek/internal/search"
)

// Summarizer synthesizes an answer to question from documents in rank
// order. Implementations must not reorder docs; rank carries meaning.
type Summarizer interface {
	Summarize(ctx context.Context, question string, docs []search.RankedDocument) (string, error)
}

const (
	defaultModel   = "gpt-4o-mini"
	defaultTimeout = 30 * time.Second

	// maxExcerptChars caps the evidence passed per document so a large
	// report cannot blow the prompt budget.
	maxExcerptChars = 4000
)

var _ Summarizer = (*OpenAISummarizer)(nil)

// OpenAISummarizer answers questions through an OpenAI-compatible
// chat completion API.
type OpenAISummarizer struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAISummarizer creates a summarizer. baseURL may point at any
// OpenAI-compatible endpoint; empty uses the default. Zero model and
// timeout fall back to defaults.
func NewOpenAISummarizer(apiKey, model, baseURL string, timeout time.Duration) (*OpenAISummarizer, error) {
	if apiKey == "" {
		return nil, seekerrors.New(seekerrors.ErrCodeSummarizerUnavailable, "missing API key", nil).
			WithSuggestion("set OPENAI_API_KEY or configure summarizer.provider: \"\" to disable synthesis")
	}
	if model == "" {
		model = defaultModel
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAISummarizer{
		client:  openai.NewClientWithConfig(cfg),
		model:   model,
		timeout: timeout,
	}, nil
}

const systemPrompt = `You are a helpful analyst for an engineering report archive. Answer the user's question using ONLY the evidence excerpts provided.
If the excerpts do not contain the answer, say you don't have enough info.

Requirements:
- Respond in clear, readable Markdown with short paragraphs.
- Be concise and cite specific numbers if present.
- Bold key phrases like "Work Order" or section names when mentioned.
- If you infer, say it's a best-effort based on the excerpts.
- NEVER fabricate numbers.
- Skip introductions like "Based on the document"; go straight to the answer.
- End with a short "Sources" line listing the filenames you used.`

// Summarize asks the model for an answer grounded in the documents.
func (s *OpenAISummarizer) Summarize(ctx context.Context, question string, docs []search.RankedDocument) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: 0.2,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(question, docs)},
		},
	})
	if err != nil {
		return "", seekerrors.New(seekerrors.ErrCodeSummarizerUnavailable,
			"chat completion failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", seekerrors.New(seekerrors.ErrCodeSummarizerUnavailable,
			"model returned no choices", nil)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// buildPrompt lays out the question and per-document evidence excerpts
// in rank order.
func buildPrompt(question string, docs []search.RankedDocument) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question:\n%s\n\nEvidence excerpts (most relevant first):\n", question)
	for _, d := range docs {
		excerpt := d.Content
		if len(excerpt) > maxExcerptChars {
			excerpt = excerpt[:maxExcerptChars]
		}
		fmt.Fprintf(&b, "\n--- %s ---\n%s\n", d.Filename, strings.TrimSpace(excerpt))
	}
	fmt.Fprintf(&b, "\nSources: %s\n", strings.Join(sourceNames(docs), ", "))
	return b.String()
}

func sourceNames(docs []search.RankedDocument) []string {
	names := make([]string, 0, len(docs))
	for _, d := range docs {
		names = append(names, d.Filename)
	}
	return names
}
