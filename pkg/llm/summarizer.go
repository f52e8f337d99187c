package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/umputun/feedpost/pkg/config"
)

// Summarizer produces short message summaries via an OpenAI-compatible API
type Summarizer struct {
	client    *openai.Client
	config    config.SummaryConfig
	systemMsg string
}

// default system prompt for entry summarization
const defaultSystemPrompt = `Summarize the given post for a Telegram channel in 2-4 sentences.
Use Telegram HTML formatting only (allowed tags: b, i, u, s, code, pre, a), never Markdown.
Write directly about the content itself, do not start with "The article" or "The post".
Write the summary in the same language as the post.`

// NewSummarizer creates a new LLM summarizer
func NewSummarizer(cfg config.SummaryConfig) *Summarizer {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientConfig.BaseURL = cfg.Endpoint
	}

	// use custom system prompt if provided, otherwise use default
	systemMsg := cfg.SystemPrompt
	if systemMsg == "" {
		systemMsg = defaultSystemPrompt
	}

	return &Summarizer{
		client:    openai.NewClientWithConfig(clientConfig),
		config:    cfg,
		systemMsg: systemMsg,
	}
}

// Summarize returns a short summary of the entry's title and body
func (s *Summarizer) Summarize(ctx context.Context, title, body string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       s.config.Model,
		Temperature: float32(s.config.Temperature),
		MaxTokens:   s.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: s.systemMsg},
			{Role: openai.ChatMessageRoleUser, Content: title + "\n\n" + body},
		},
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("llm request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from llm")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
