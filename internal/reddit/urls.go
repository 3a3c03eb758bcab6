package reddit

import (
	"net/url"
	"strings"

	"github.com/hyperifyio/goextract/internal/failure"
)

const (
	PostURLShape      = "https://<reddit host>/r/{subreddit}/comments/{postId}[/{title}]"
	SubredditURLShape = "https://<reddit host>/r/{subreddit}[/]"
)

// PostRef identifies a post parsed from a URL.
type PostRef struct {
	Subreddit string
	PostID    string
}

// ParsePostURL validates raw as a post URL on a configured Reddit host.
func (o Options) ParsePostURL(raw string) (PostRef, error) {
	segs, err := o.redditPath(raw, PostURLShape)
	if err != nil {
		return PostRef{}, err
	}
	if (len(segs) != 4 && len(segs) != 5) || !strings.EqualFold(segs[0], "r") || !strings.EqualFold(segs[2], "comments") {
		return PostRef{}, failure.Validation(raw, PostURLShape, "not a reddit post url")
	}
	return PostRef{Subreddit: segs[1], PostID: segs[3]}, nil
}

// ParseSubredditURL validates raw as a subreddit URL and returns its name.
// Query string and fragment are ignored.
func (o Options) ParseSubredditURL(raw string) (string, error) {
	segs, err := o.redditPath(raw, SubredditURLShape)
	if err != nil {
		return "", err
	}
	if len(segs) != 2 || !strings.EqualFold(segs[0], "r") {
		return "", failure.Validation(raw, SubredditURLShape, "not a subreddit url")
	}
	return segs[1], nil
}

// IsPostURL reports whether ParsePostURL would succeed.
func (o Options) IsPostURL(raw string) bool {
	_, err := o.ParsePostURL(raw)
	return err == nil
}

// IsSubredditURL reports whether ParseSubredditURL would succeed.
func (o Options) IsSubredditURL(raw string) bool {
	_, err := o.ParseSubredditURL(raw)
	return err == nil
}

// redditPath checks that raw is absolute and on a Reddit host and returns its
// non-empty path segments. A single trailing slash is tolerated.
func (o Options) redditPath(raw, shape string) ([]string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || !u.IsAbs() || u.Host == "" {
		return nil, failure.Validation(raw, shape, "url is not absolute")
	}
	if !o.MatchesHost(u.Hostname()) {
		return nil, failure.Validation(raw, shape, "host %q is not a configured reddit domain", u.Hostname())
	}
	p := strings.TrimPrefix(u.Path, "/")
	p = strings.TrimSuffix(p, "/")
	if p == "" {
		return nil, nil
	}
	segs := strings.Split(p, "/")
	for _, s := range segs {
		if s == "" {
			return nil, failure.Validation(raw, shape, "url path has empty segments")
		}
	}
	return segs, nil
}
