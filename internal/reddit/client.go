package reddit

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/rs/zerolog/log"
)

// JSONGetter downloads a URL and decodes its JSON body into v.
type JSONGetter interface {
	GetJSON(ctx context.Context, url string, v any) error
}

// PostClient fetches single posts with their comments.
type PostClient struct {
	http        JSONGetter
	opts        Options
	transformer *Transformer
}

func NewPostClient(g JSONGetter, opts Options) *PostClient {
	return &PostClient{http: g, opts: opts, transformer: NewTransformer(opts)}
}

// Post fetches /comments/{postID}.json and transforms it.
func (c *PostClient) Post(ctx context.Context, postID string) (Post, error) {
	base, err := c.opts.base()
	if err != nil {
		return Post{}, err
	}
	u := fmt.Sprintf("%s/comments/%s.json", base, url.PathEscape(postID))
	var listings []Listing
	if err := c.http.GetJSON(ctx, u, &listings); err != nil {
		return Post{}, fmt.Errorf("reddit post %s: %w", postID, err)
	}
	log.Debug().Str("post", postID).Int("listings", len(listings)).Msg("reddit post fetched")
	return c.transformer.Transform(listings)
}

// SubredditClient reads subreddit feeds.
type SubredditClient struct {
	http  JSONGetter
	opts  Options
	posts *PostClient
}

func NewSubredditClient(g JSONGetter, posts *PostClient, opts Options) *SubredditClient {
	return &SubredditClient{http: g, opts: opts, posts: posts}
}

// NewPosts fetches the "new" listing and resolves every post concurrently.
// Results keep the listing order; the first failure fails the whole batch.
func (c *SubredditClient) NewPosts(ctx context.Context, name string) ([]Post, error) {
	base, err := c.opts.base()
	if err != nil {
		return nil, err
	}
	u := fmt.Sprintf("%s/r/%s/new.json?limit=%d", base, url.PathEscape(name), c.opts.newPostsLimit())
	var listing Listing
	if err := c.http.GetJSON(ctx, u, &listing); err != nil {
		return nil, fmt.Errorf("subreddit %s new posts: %w", name, err)
	}

	ids := make([]string, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		if child.Kind != KindPost || child.Data.ID.String() == "" {
			continue
		}
		ids = append(ids, child.Data.ID.String())
	}
	log.Debug().Str("subreddit", name).Int("posts", len(ids)).Msg("subreddit listing fetched")
	return c.resolve(ctx, ids)
}

func (c *SubredditClient) resolve(ctx context.Context, ids []string) ([]Post, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	posts := make([]Post, len(ids))
	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	wg.Add(len(ids))
	for i, id := range ids {
		go func(i int, id string) {
			defer wg.Done()
			p, err := c.posts.Post(ctx, id)
			if err != nil {
				once.Do(func() {
					firstErr = err
					cancel()
				})
				return
			}
			posts[i] = p
		}(i, id)
	}
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return posts, nil
}

// About fetches /r/{name}/about.json.
func (c *SubredditClient) About(ctx context.Context, name string) (About, error) {
	base, err := c.opts.base()
	if err != nil {
		return About{}, err
	}
	u := fmt.Sprintf("%s/r/%s/about.json", base, url.PathEscape(name))
	var about About
	if err := c.http.GetJSON(ctx, u, &about); err != nil {
		return About{}, fmt.Errorf("subreddit %s about: %w", name, err)
	}
	return about, nil
}
