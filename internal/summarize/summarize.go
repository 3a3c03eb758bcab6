// Package summarize turns an extract into a short Markdown summary using a
// chat model.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/goextract/internal/extract"
	"github.com/hyperifyio/goextract/internal/llm"
)

// ErrNoSummary indicates the model produced no usable text.
var ErrNoSummary = errors.New("no summary produced")

// DefaultMaxContentChars bounds the content sent to the model.
const DefaultMaxContentChars = 12000

const defaultSystemPrompt = "You summarize web pages and Reddit threads for a read-later list. Write 3 to 6 concise Markdown bullet points using only the provided content. Do not invent facts."

// Summarizer calls the LLM to summarize one extract.
type Summarizer struct {
	Client llm.Client
	Model  string
	// SystemPrompt, when non-empty, overrides the default system message.
	SystemPrompt    string
	MaxContentChars int
}

// Summarize returns the model's Markdown summary of ex.
func (s *Summarizer) Summarize(ctx context.Context, ex extract.Extract) (string, error) {
	if s.Client == nil || strings.TrimSpace(s.Model) == "" {
		return "", errors.New("summarizer not configured")
	}
	system := defaultSystemPrompt
	if strings.TrimSpace(s.SystemPrompt) != "" {
		system = s.SystemPrompt
	}
	req := openai.ChatCompletionRequest{
		Model: s.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: buildUserMessage(ex, s.maxChars())},
		},
		Temperature: 0.1,
		N:           1,
	}
	resp, err := s.Client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("summarize call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoSummary
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", ErrNoSummary
	}
	return out, nil
}

func (s *Summarizer) maxChars() int {
	if s.MaxContentChars <= 0 {
		return DefaultMaxContentChars
	}
	return s.MaxContentChars
}

func buildUserMessage(ex extract.Extract, maxChars int) string {
	var sb strings.Builder
	sb.WriteString("Title: ")
	sb.WriteString(ex.Title)
	sb.WriteString("\nSource type: ")
	sb.WriteString(string(ex.ExtractType))
	if ex.ExtractType == extract.TagRedditPost || ex.ExtractType == extract.TagSubreddit {
		sb.WriteString("\nThe content is JSON describing Reddit posts and their comment trees.")
	}
	sb.WriteString("\n\nContent:\n\n")
	content := ex.Content
	if r := []rune(content); len(r) > maxChars {
		content = string(r[:maxChars])
	}
	sb.WriteString(content)
	sb.WriteString("\n\nOutput only the Markdown summary.")
	return sb.String()
}
