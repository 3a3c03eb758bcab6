package reddit

import (
	"net"
	"net/url"
	"strings"

	"github.com/hyperifyio/goextract/internal/failure"
)

const (
	// DefaultBaseURL is the address used for API calls and permalinks.
	DefaultBaseURL = "https://www.reddit.com"
	// DefaultFallbackImageURL is returned when no image can be resolved.
	DefaultFallbackImageURL = "https://www.redditstatic.com/icon.png"
	// DefaultNewPostsLimit caps the subreddit "new" listing.
	DefaultNewPostsLimit = 10
)

// DefaultAdditionalBaseURLs lists the other Reddit front ends whose links are
// accepted. They are only used for host matching.
var DefaultAdditionalBaseURLs = []string{
	"https://reddit.com",
	"https://old.reddit.com",
	"https://new.reddit.com",
	"https://np.reddit.com",
}

// Options configures every Reddit component. It is loaded once at start-up
// and must not be mutated afterwards.
type Options struct {
	BaseURL            string
	AdditionalBaseURLs []string
	FallbackImageURL   string
	NewPostsLimit      int
}

// DefaultOptions returns options pointing at the public Reddit site.
func DefaultOptions() Options {
	return Options{
		BaseURL:            DefaultBaseURL,
		AdditionalBaseURLs: append([]string(nil), DefaultAdditionalBaseURLs...),
		FallbackImageURL:   DefaultFallbackImageURL,
		NewPostsLimit:      DefaultNewPostsLimit,
	}
}

// Validate checks every configured address.
func (o Options) Validate() error {
	if _, err := o.base(); err != nil {
		return err
	}
	for _, a := range o.AdditionalBaseURLs {
		if _, err := parseAbsoluteHTTP(a); err != nil {
			return failure.Config(a, err, "invalid additional reddit base address")
		}
	}
	if _, err := parseAbsoluteHTTP(o.FallbackImageURL); err != nil {
		return failure.Config(o.FallbackImageURL, err, "invalid fallback image url")
	}
	if o.NewPostsLimit < 0 {
		return failure.Config("", nil, "negative new posts limit")
	}
	return nil
}

// base returns BaseURL without a trailing slash, or a configuration error
// when it is not an absolute http(s) URI.
func (o Options) base() (string, error) {
	if _, err := parseAbsoluteHTTP(o.BaseURL); err != nil {
		return "", failure.Config(o.BaseURL, err, "invalid reddit base address")
	}
	return strings.TrimRight(strings.TrimSpace(o.BaseURL), "/"), nil
}

// Hosts returns the normalised hosts of the default and additional addresses.
func (o Options) Hosts() []string {
	all := append([]string{o.BaseURL}, o.AdditionalBaseURLs...)
	seen := make(map[string]struct{}, len(all))
	out := make([]string, 0, len(all))
	for _, a := range all {
		u, err := parseAbsoluteHTTP(a)
		if err != nil {
			continue
		}
		h := normalizeHost(u.Hostname())
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	return out
}

// MatchesHost reports whether host belongs to a configured Reddit address.
func (o Options) MatchesHost(host string) bool {
	h := normalizeHost(host)
	if h == "" {
		return false
	}
	for _, known := range o.Hosts() {
		if known == h {
			return true
		}
	}
	return false
}

func (o Options) newPostsLimit() int {
	if o.NewPostsLimit <= 0 {
		return DefaultNewPostsLimit
	}
	return o.NewPostsLimit
}

// normalizeHost lowercases, drops a port and IPv6 brackets, and drops a
// leading "www.". It accepts both host and host:port forms.
func normalizeHost(host string) string {
	h := strings.ToLower(strings.TrimSpace(host))
	if hostOnly, _, err := net.SplitHostPort(h); err == nil {
		h = hostOnly
	}
	h = strings.TrimSuffix(strings.TrimPrefix(h, "["), "]")
	return strings.TrimPrefix(h, "www.")
}

type errNotAbsolute string

func (e errNotAbsolute) Error() string { return string(e) }

func parseAbsoluteHTTP(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, errNotAbsolute("not an absolute url")
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u, nil
	}
	return nil, errNotAbsolute("scheme must be http or https")
}
