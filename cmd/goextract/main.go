package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/goextract/internal/app"
	"github.com/hyperifyio/goextract/internal/failure"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := app.LoadEnvFiles(".env"); err != nil {
		log.Error().Err(err).Msg("env load failed")
		os.Exit(exitCode(err))
	}
	cfg, urls, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		log.Error().Err(err).Msg("invalid arguments")
		os.Exit(exitCode(err))
	}

	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, cfg, urls); err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(exitCode(err))
	}
}

// parseArgs layers configuration as defaults < config file < env < flags and
// returns the positional URLs.
func parseArgs(args []string, stderr io.Writer) (app.Config, []string, error) {
	fs := flag.NewFlagSet("goextract", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: goextract [flags] URL...\n")
		fs.PrintDefaults()
	}

	def := app.DefaultConfig()
	var (
		configPath    string
		output        string
		redditBase    string
		redditBases   string
		fallbackImage string
		newLimit      int
		userAgent     string
		timeout       time.Duration
		attempts      int
		maxConcurrent int
		llmBaseURL    string
		llmModel      string
		llmKey        string
		summarize     bool
		summaryPrompt string
		publishDir    string
		verbose       bool
	)
	fs.StringVar(&configPath, "config", os.Getenv("GOEXTRACT_CONFIG"), "Path to YAML or JSON config file")
	fs.StringVar(&output, "output", "", "Write JSON lines here instead of stdout")
	fs.StringVar(&redditBase, "reddit.base", def.RedditBaseURL, "Reddit base URL used for API calls and permalinks")
	fs.StringVar(&redditBases, "reddit.bases", strings.Join(def.RedditBaseURLs, ","), "Comma-separated additional Reddit base URLs accepted in links")
	fs.StringVar(&fallbackImage, "reddit.fallbackImage", def.RedditFallbackImage, "Image URL used when no subreddit image resolves")
	fs.IntVar(&newLimit, "reddit.newLimit", def.RedditNewLimit, "Number of new posts read from a subreddit")
	fs.StringVar(&userAgent, "fetch.ua", def.UserAgent, "User-Agent for outbound requests")
	fs.DurationVar(&timeout, "fetch.timeout", def.FetchTimeout, "Per-request timeout")
	fs.IntVar(&attempts, "fetch.attempts", def.FetchAttempts, "Attempts per request including the first")
	fs.IntVar(&maxConcurrent, "fetch.maxConcurrent", def.FetchMaxConcurrent, "Maximum concurrent requests (0 = unlimited)")
	fs.StringVar(&llmBaseURL, "llm.base", "", "OpenAI-compatible base URL")
	fs.StringVar(&llmModel, "llm.model", "", "Model name")
	fs.StringVar(&llmKey, "llm.key", "", "API key for OpenAI-compatible server")
	fs.BoolVar(&summarize, "summarize", false, "Summarize each extract with the LLM")
	fs.StringVar(&summaryPrompt, "summary.systemPrompt", "", "Override the summarization system prompt")
	fs.StringVar(&publishDir, "publish.dir", "", "Write one PDF per extract into this directory")
	fs.BoolVar(&verbose, "v", false, "Verbose logging")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return app.Config{}, nil, err
		}
		return app.Config{}, nil, failure.Validation(strings.Join(args, " "), "goextract [flags] URL...", "%v", err)
	}

	cfg := def
	if strings.TrimSpace(configPath) != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			return app.Config{}, nil, err
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	app.ApplyEnvOverrides(&cfg)

	// Only flags given on the command line override lower layers.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "output":
			cfg.OutputPath = output
		case "reddit.base":
			cfg.RedditBaseURL = redditBase
		case "reddit.bases":
			cfg.RedditBaseURLs = splitList(redditBases)
		case "reddit.fallbackImage":
			cfg.RedditFallbackImage = fallbackImage
		case "reddit.newLimit":
			cfg.RedditNewLimit = newLimit
		case "fetch.ua":
			cfg.UserAgent = userAgent
		case "fetch.timeout":
			cfg.FetchTimeout = timeout
		case "fetch.attempts":
			cfg.FetchAttempts = attempts
		case "fetch.maxConcurrent":
			cfg.FetchMaxConcurrent = maxConcurrent
		case "llm.base":
			cfg.LLMBaseURL = llmBaseURL
		case "llm.model":
			cfg.LLMModel = llmModel
		case "llm.key":
			cfg.LLMAPIKey = llmKey
		case "summarize":
			cfg.Summarize = summarize
		case "summary.systemPrompt":
			cfg.SummarySystemPrompt = summaryPrompt
		case "publish.dir":
			cfg.PublishDir = publishDir
		case "v":
			cfg.Verbose = verbose
		}
	})

	urls := fs.Args()
	if len(urls) == 0 {
		fs.Usage()
		return app.Config{}, nil, failure.Validation("", "at least one URL", "no URLs given")
	}
	return cfg, urls, nil
}

func run(ctx context.Context, cfg app.Config, urls []string) error {
	a, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	return a.Run(ctx, urls)
}

// exitCode maps validation errors to 2 and every other failure to 1.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case failure.IsValidation(err):
		return 2
	default:
		return 1
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
