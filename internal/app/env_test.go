package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadEnvFiles_LoadsKeyValues(t *testing.T) {
	t.Setenv("FOO", "")
	t.Setenv("BAR", "")

	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env.test")
	content := "\n# sample dotenv file\nFOO=alpha\nexport BAR='beta gamma'\n"
	if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}

	if err := LoadEnvFiles(envPath, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadEnvFiles error: %v", err)
	}

	if got := os.Getenv("FOO"); got != "alpha" {
		t.Fatalf("FOO=%q, want alpha", got)
	}
	if got := os.Getenv("BAR"); got != "beta gamma" {
		t.Fatalf("BAR=%q, want beta gamma", got)
	}
}

// Later files override earlier ones when loading multiple dotenv files.
func TestLoadEnvFiles_OverrideOrder(t *testing.T) {
	t.Setenv("K", "")
	dir := t.TempDir()
	a := filepath.Join(dir, ".env.a")
	b := filepath.Join(dir, ".env.b")
	if err := os.WriteFile(a, []byte("K=first\n"), 0o600); err != nil {
		t.Fatalf("write a: %v", err)
	}
	if err := os.WriteFile(b, []byte("K=second\n"), 0o600); err != nil {
		t.Fatalf("write b: %v", err)
	}

	if err := LoadEnvFiles(a, b); err != nil {
		t.Fatalf("LoadEnvFiles error: %v", err)
	}
	if got := os.Getenv("K"); got != "second" {
		t.Fatalf("override order failed: got %q, want second", got)
	}
}

func TestApplyEnvOverrides_FromEnv(t *testing.T) {
	t.Setenv("REDDIT_BASE_URL", "https://reddit.example")
	t.Setenv("REDDIT_BASE_URLS", " https://a.example, ,https://b.example ")
	t.Setenv("REDDIT_NEW_LIMIT", "25")
	t.Setenv("FETCH_TIMEOUT", "3s")
	t.Setenv("FETCH_ATTEMPTS", "not-a-number")
	t.Setenv("SUMMARIZE", "yes")
	t.Setenv("VERBOSE", "off")
	t.Setenv("LLM_MODEL", "tiny")

	cfg := DefaultConfig()
	cfg.Verbose = true
	ApplyEnvOverrides(&cfg)
	if cfg.RedditBaseURL != "https://reddit.example" {
		t.Fatalf("RedditBaseURL=%q", cfg.RedditBaseURL)
	}
	if len(cfg.RedditBaseURLs) != 2 || cfg.RedditBaseURLs[1] != "https://b.example" {
		t.Fatalf("RedditBaseURLs=%v", cfg.RedditBaseURLs)
	}
	if cfg.RedditNewLimit != 25 || cfg.FetchTimeout != 3*time.Second {
		t.Fatalf("limit=%d timeout=%v", cfg.RedditNewLimit, cfg.FetchTimeout)
	}
	if cfg.FetchAttempts != DefaultConfig().FetchAttempts {
		t.Fatalf("invalid int should be ignored, got %d", cfg.FetchAttempts)
	}
	if !cfg.Summarize || cfg.Verbose || cfg.LLMModel != "tiny" {
		t.Fatalf("booleans/model not applied: %+v", cfg)
	}
}
