package app

import (
	"strings"
	"time"

	"github.com/hyperifyio/goextract/internal/fetch"
	"github.com/hyperifyio/goextract/internal/reddit"
)

// Config holds runtime configuration for the application.
type Config struct {
	// OutputPath receives one JSON line per URL. Empty or "-" means stdout.
	OutputPath string

	// Reddit
	RedditBaseURL       string
	RedditBaseURLs      []string
	RedditFallbackImage string
	RedditNewLimit      int

	// Fetch
	UserAgent          string
	FetchTimeout       time.Duration
	FetchAttempts      int
	FetchMaxConcurrent int

	// LLM
	LLMBaseURL string
	LLMModel   string
	LLMAPIKey  string

	// Downstream stages
	Summarize           bool
	SummarySystemPrompt string
	PublishDir          string

	Verbose bool
}

// DefaultConfig returns the built-in defaults, the lowest precedence layer.
func DefaultConfig() Config {
	ro := reddit.DefaultOptions()
	return Config{
		RedditBaseURL:       ro.BaseURL,
		RedditBaseURLs:      ro.AdditionalBaseURLs,
		RedditFallbackImage: ro.FallbackImageURL,
		RedditNewLimit:      ro.NewPostsLimit,
		UserAgent:           fetch.DefaultUserAgent,
		FetchTimeout:        15 * time.Second,
		FetchAttempts:       2,
		FetchMaxConcurrent:  8,
	}
}

// RedditOptions projects the Reddit settings.
func (c Config) RedditOptions() reddit.Options {
	return reddit.Options{
		BaseURL:            c.RedditBaseURL,
		AdditionalBaseURLs: append([]string(nil), c.RedditBaseURLs...),
		FallbackImageURL:   c.RedditFallbackImage,
		NewPostsLimit:      c.RedditNewLimit,
	}
}

// splitList parses a comma separated list, dropping blanks.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	list := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			list = append(list, v)
		}
	}
	return list
}
