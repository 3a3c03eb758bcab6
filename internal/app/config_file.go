package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/hyperifyio/goextract/internal/failure"
)

// FileConfig represents the single-file configuration schema.
type FileConfig struct {
	Output string `yaml:"output" json:"output"`

	Reddit struct {
		Base          string   `yaml:"base" json:"base"`
		Bases         []string `yaml:"bases" json:"bases"`
		FallbackImage string   `yaml:"fallbackImage" json:"fallbackImage"`
		NewLimit      int      `yaml:"newLimit" json:"newLimit"`
	} `yaml:"reddit" json:"reddit"`

	Fetch struct {
		UA            string        `yaml:"ua" json:"ua"`
		Timeout       time.Duration `yaml:"timeout" json:"timeout"`
		Attempts      int           `yaml:"attempts" json:"attempts"`
		MaxConcurrent int           `yaml:"maxConcurrent" json:"maxConcurrent"`
	} `yaml:"fetch" json:"fetch"`

	LLM struct {
		BaseURL string `yaml:"base" json:"base"`
		Model   string `yaml:"model" json:"model"`
		APIKey  string `yaml:"key" json:"key"`
	} `yaml:"llm" json:"llm"`

	Summarize    *bool  `yaml:"summarize" json:"summarize"`
	SystemPrompt string `yaml:"summaryPrompt" json:"summaryPrompt"`

	Publish struct {
		Dir string `yaml:"dir" json:"dir"`
	} `yaml:"publish" json:"publish"`

	Verbose bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, failure.Config(path, err, "read config file")
	}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, failure.Config(path, err, "parse yaml")
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, failure.Config(path, err, "parse json")
		}
	default:
		// Try YAML then JSON
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, failure.Config(path, fmt.Errorf("%v (yaml) / %v (json)", err, jerr), "parse config")
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays every value present in fc onto cfg. The file sits
// above defaults and below env and flags.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	if fc.Output != "" {
		cfg.OutputPath = fc.Output
	}

	if fc.Reddit.Base != "" {
		cfg.RedditBaseURL = fc.Reddit.Base
	}
	if len(fc.Reddit.Bases) > 0 {
		cfg.RedditBaseURLs = append([]string(nil), fc.Reddit.Bases...)
	}
	if fc.Reddit.FallbackImage != "" {
		cfg.RedditFallbackImage = fc.Reddit.FallbackImage
	}
	if fc.Reddit.NewLimit > 0 {
		cfg.RedditNewLimit = fc.Reddit.NewLimit
	}

	if fc.Fetch.UA != "" {
		cfg.UserAgent = fc.Fetch.UA
	}
	if fc.Fetch.Timeout > 0 {
		cfg.FetchTimeout = fc.Fetch.Timeout
	}
	if fc.Fetch.Attempts > 0 {
		cfg.FetchAttempts = fc.Fetch.Attempts
	}
	if fc.Fetch.MaxConcurrent > 0 {
		cfg.FetchMaxConcurrent = fc.Fetch.MaxConcurrent
	}

	if fc.LLM.BaseURL != "" {
		cfg.LLMBaseURL = fc.LLM.BaseURL
	}
	if fc.LLM.Model != "" {
		cfg.LLMModel = fc.LLM.Model
	}
	if fc.LLM.APIKey != "" {
		cfg.LLMAPIKey = fc.LLM.APIKey
	}
	if fc.Summarize != nil {
		cfg.Summarize = *fc.Summarize
	}
	if fc.SystemPrompt != "" {
		cfg.SummarySystemPrompt = fc.SystemPrompt
	}
	if fc.Publish.Dir != "" {
		cfg.PublishDir = fc.Publish.Dir
	}
	if fc.Verbose {
		cfg.Verbose = true
	}
}

// ValidateConfig checks the settings every run depends on.
func ValidateConfig(cfg Config) error {
	if err := cfg.RedditOptions().Validate(); err != nil {
		return err
	}
	if cfg.FetchAttempts < 0 || cfg.FetchMaxConcurrent < 0 || cfg.FetchTimeout < 0 {
		return failure.Config("", nil, "negative fetch limits are not allowed")
	}
	if cfg.Summarize && strings.TrimSpace(cfg.LLMModel) == "" {
		return failure.Config("", nil, "llm.model is required for summarization (or set LLM_MODEL)")
	}
	return nil
}
