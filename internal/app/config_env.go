package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides overrides cfg fields with environment variables when they
// are set. Call it after ApplyFileConfig so env wins over the file, and before
// applying explicitly set flags.
func ApplyEnvOverrides(cfg *Config) {
	if cfg == nil {
		return
	}

	if v := os.Getenv("REDDIT_BASE_URL"); v != "" {
		cfg.RedditBaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("REDDIT_BASE_URLS")); v != "" {
		cfg.RedditBaseURLs = splitList(v)
	}
	if v := os.Getenv("REDDIT_FALLBACK_IMAGE"); v != "" {
		cfg.RedditFallbackImage = v
	}
	setInt(&cfg.RedditNewLimit, "REDDIT_NEW_LIMIT")

	if v := os.Getenv("FETCH_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if s := os.Getenv("FETCH_TIMEOUT"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			cfg.FetchTimeout = d
		}
	}
	setInt(&cfg.FetchAttempts, "FETCH_ATTEMPTS")
	setInt(&cfg.FetchMaxConcurrent, "FETCH_MAX_CONCURRENT")

	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLMBaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLMModel = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLMAPIKey = v
	}
	if v := os.Getenv("SUMMARY_SYSTEM_PROMPT"); v != "" {
		cfg.SummarySystemPrompt = v
	}
	if v := os.Getenv("PUBLISH_DIR"); v != "" {
		cfg.PublishDir = v
	}
	if v := os.Getenv("OUTPUT"); v != "" {
		cfg.OutputPath = v
	}

	setBool(&cfg.Summarize, "SUMMARIZE")
	setBool(&cfg.Verbose, "VERBOSE")
}

// setBool overrides when the env var is present and truthy/falsey.
func setBool(dst *bool, envKey string) {
	if s := strings.ToLower(strings.TrimSpace(os.Getenv(envKey))); s != "" {
		switch s {
		case "1", "true", "yes", "on":
			*dst = true
		case "0", "false", "no", "off":
			*dst = false
		}
	}
}

func setInt(dst *int, envKey string) {
	if s := strings.TrimSpace(os.Getenv(envKey)); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			*dst = n
		}
	}
}
