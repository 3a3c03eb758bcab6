package reddit

import (
	"context"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
)

// SubredditImageKeys is the order in which about.json fields are tried.
// Icons come before banners because they are square and small.
var SubredditImageKeys = []string{
	"icon_img",
	"community_icon",
	"banner_background_image",
	"banner_img",
	"mobile_banner_image",
}

// Prober checks that a URL can be fetched.
type Prober interface {
	ProbeReachable(ctx context.Context, url string) bool
}

// ImageResolver picks a representative image for a subreddit.
type ImageResolver struct {
	subreddits *SubredditClient
	prober     Prober
	opts       Options
}

func NewImageResolver(subreddits *SubredditClient, prober Prober, opts Options) *ImageResolver {
	return &ImageResolver{subreddits: subreddits, prober: prober, opts: opts}
}

// SubredditImage fetches the about page of name and resolves its image. It
// fails only when the about page cannot be fetched.
func (r *ImageResolver) SubredditImage(ctx context.Context, name string) (string, error) {
	about, err := r.subreddits.About(ctx, name)
	if err != nil {
		return "", err
	}
	return r.FromAbout(ctx, about), nil
}

// FromAbout walks SubredditImageKeys and returns the first value that is a
// fetchable http(s) URL and passes the reachability probe. When nothing
// qualifies it returns the configured fallback image.
func (r *ImageResolver) FromAbout(ctx context.Context, about About) string {
	for _, key := range SubredditImageKeys {
		candidate := strings.TrimSpace(html.UnescapeString(about.Field(key)))
		if candidate == "" {
			continue
		}
		if !isFetchableImageURL(candidate) {
			log.Debug().Str("key", key).Str("url", candidate).Msg("subreddit image rejected")
			continue
		}
		if r.prober != nil && !r.prober.ProbeReachable(ctx, candidate) {
			log.Debug().Str("key", key).Str("url", candidate).Msg("subreddit image unreachable")
			continue
		}
		return candidate
	}
	return r.fallback()
}

func (r *ImageResolver) fallback() string {
	if isBlank(r.opts.FallbackImageURL) {
		return DefaultFallbackImageURL
	}
	return r.opts.FallbackImageURL
}

// isFetchableImageURL accepts only absolute http and https URLs, which rules
// out data:, file:, javascript: and mailto: values.
func isFetchableImageURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return false
	}
	s := strings.ToLower(u.Scheme)
	return s == "http" || s == "https"
}
