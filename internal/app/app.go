package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/goextract/internal/extract"
	"github.com/hyperifyio/goextract/internal/fetch"
	"github.com/hyperifyio/goextract/internal/llm"
	"github.com/hyperifyio/goextract/internal/publish"
	"github.com/hyperifyio/goextract/internal/reddit"
	"github.com/hyperifyio/goextract/internal/summarize"
)

// App wires the dispatcher and the optional downstream stages.
type App struct {
	cfg        Config
	dispatcher *extract.Dispatcher
	summarizer *summarize.Summarizer
	publisher  publish.Publisher
}

// Result is one line of batch output.
type Result struct {
	URL string `json:"url"`
	extract.Extract
	Summary   string `json:"summary,omitempty"`
	Published string `json:"published,omitempty"`
	Error     string `json:"error,omitempty"`
}

// New validates cfg and builds every component.
func New(cfg Config) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	hc := newHTTPClient(cfg.FetchTimeout)
	fetcher := &fetch.Client{
		HTTPClient:        hc,
		UserAgent:         cfg.UserAgent,
		MaxAttempts:       cfg.FetchAttempts,
		PerRequestTimeout: cfg.FetchTimeout,
		MaxConcurrent:     cfg.FetchMaxConcurrent,
	}
	opts := cfg.RedditOptions()
	posts := reddit.NewPostClient(fetcher, opts)
	subs := reddit.NewSubredditClient(fetcher, posts, opts)
	images := reddit.NewImageResolver(subs, fetcher, opts)

	html, err := extract.NewHTML(extract.TagHTML, fetcher)
	if err != nil {
		return nil, err
	}
	postEx, err := extract.NewRedditPost(extract.TagRedditPost, opts, posts, images)
	if err != nil {
		return nil, err
	}
	subEx, err := extract.NewSubreddit(extract.TagSubreddit, opts, subs, images)
	if err != nil {
		return nil, err
	}
	d, err := extract.NewDispatcher(html, postEx, subEx)
	if err != nil {
		return nil, fmt.Errorf("init dispatcher: %w", err)
	}

	a := &App{cfg: cfg, dispatcher: d}
	if cfg.Summarize {
		a.summarizer = &summarize.Summarizer{
			Client:       llm.NewOpenAI(cfg.LLMBaseURL, cfg.LLMAPIKey, hc),
			Model:        cfg.LLMModel,
			SystemPrompt: cfg.SummarySystemPrompt,
		}
	}
	if strings.TrimSpace(cfg.PublishDir) != "" {
		a.publisher = &publish.PDFPublisher{Dir: cfg.PublishDir}
	}
	log.Debug().Bool("summarize", cfg.Summarize).Str("publishDir", cfg.PublishDir).Str("reddit", opts.BaseURL).Msg("app ready")
	return a, nil
}

// Extract runs the dispatcher for one URL.
func (a *App) Extract(ctx context.Context, rawURL string) (extract.Extract, error) {
	return a.dispatcher.Extract(ctx, rawURL)
}

// Process extracts one URL and runs the enabled downstream stages. A failed
// summary or publish is recorded on the result without discarding the
// extract.
func (a *App) Process(ctx context.Context, rawURL string) (Result, error) {
	res := Result{URL: rawURL}
	ex, err := a.Extract(ctx, rawURL)
	if err != nil {
		res.Error = err.Error()
		return res, err
	}
	res.Extract = ex
	var stageErrs []error
	if a.summarizer != nil {
		s, err := a.summarizer.Summarize(ctx, ex)
		if err != nil {
			log.Warn().Err(err).Str("url", rawURL).Msg("summarize failed")
			stageErrs = append(stageErrs, err)
		}
		res.Summary = s
	}
	if a.publisher != nil {
		path, err := a.publisher.Publish(ctx, publish.Item{URL: rawURL, Extract: ex, Summary: res.Summary})
		if err != nil {
			log.Warn().Err(err).Str("url", rawURL).Msg("publish failed")
			stageErrs = append(stageErrs, err)
		}
		res.Published = path
	}
	if err := errors.Join(stageErrs...); err != nil {
		res.Error = err.Error()
		return res, err
	}
	return res, nil
}

// Run processes urls and writes JSON lines to the configured output.
func (a *App) Run(ctx context.Context, urls []string) error {
	out := strings.TrimSpace(a.cfg.OutputPath)
	if out == "" || out == "-" {
		return a.Write(ctx, urls, os.Stdout)
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	runErr := a.Write(ctx, urls, f)
	if err := f.Close(); err != nil && runErr == nil {
		runErr = fmt.Errorf("close output: %w", err)
	}
	return runErr
}

// Write processes urls in order. A failing URL does not stop the batch; the
// returned error joins every per-URL failure.
func (a *App) Write(ctx context.Context, urls []string, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	var errs []error
	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		res, err := a.Process(ctx, u)
		if err != nil {
			log.Error().Err(err).Str("url", u).Msg("extraction failed")
			errs = append(errs, fmt.Errorf("%s: %w", u, err))
		}
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
	}
	return errors.Join(errs...)
}
