package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/hyperifyio/goextract/internal/reddit"
)

// PostSource fetches a single Reddit post with comments.
type PostSource interface {
	Post(ctx context.Context, postID string) (reddit.Post, error)
}

// SubredditImager resolves a subreddit's representative image. The result
// is never empty when err is nil.
type SubredditImager interface {
	SubredditImage(ctx context.Context, name string) (string, error)
}

// RedditPost extracts a Reddit post and its comment tree.
type RedditPost struct {
	base
	opts   reddit.Options
	posts  PostSource
	images SubredditImager
}

func NewRedditPost(tag Tag, opts reddit.Options, posts PostSource, images SubredditImager) (*RedditPost, error) {
	b, err := newBase(tag)
	if err != nil {
		return nil, err
	}
	return &RedditPost{base: b, opts: opts, posts: posts, images: images}, nil
}

func (r *RedditPost) CanHandle(rawURL string) bool { return r.opts.IsPostURL(rawURL) }

// Extract serialises the post as JSON into Content. When the post has no
// image of its own the subreddit image is used.
func (r *RedditPost) Extract(ctx context.Context, rawURL string) (Extract, error) {
	ref, err := r.opts.ParsePostURL(rawURL)
	if err != nil {
		return Extract{}, err
	}
	post, err := r.posts.Post(ctx, ref.PostID)
	if err != nil {
		return Extract{}, err
	}
	if !post.HasImage() {
		img, err := r.images.SubredditImage(ctx, ref.Subreddit)
		if err != nil {
			return Extract{}, err
		}
		post.Post.ImageURL = img
	}
	content, err := json.Marshal(post)
	if err != nil {
		return Extract{}, fmt.Errorf("encode reddit post %s: %w", ref.PostID, err)
	}
	return r.result(post.Post.Title, string(content), post.Post.ImageURL), nil
}

// SubredditFeed reads the listings of a subreddit.
type SubredditFeed interface {
	NewPosts(ctx context.Context, name string) ([]reddit.Post, error)
	About(ctx context.Context, name string) (reddit.About, error)
}

// AboutImager picks an image from subreddit metadata; never returns "".
type AboutImager interface {
	FromAbout(ctx context.Context, about reddit.About) string
}

// Subreddit extracts the newest posts of a subreddit.
type Subreddit struct {
	base
	opts   reddit.Options
	feed   SubredditFeed
	images AboutImager
}

func NewSubreddit(tag Tag, opts reddit.Options, feed SubredditFeed, images AboutImager) (*Subreddit, error) {
	b, err := newBase(tag)
	if err != nil {
		return nil, err
	}
	return &Subreddit{base: b, opts: opts, feed: feed, images: images}, nil
}

func (s *Subreddit) CanHandle(rawURL string) bool { return s.opts.IsSubredditURL(rawURL) }

// Extract fetches the new-posts listing and the about page concurrently.
func (s *Subreddit) Extract(ctx context.Context, rawURL string) (Extract, error) {
	name, err := s.opts.ParseSubredditURL(rawURL)
	if err != nil {
		return Extract{}, err
	}

	var (
		wg       sync.WaitGroup
		posts    []reddit.Post
		about    reddit.About
		postsErr error
		aboutErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		posts, postsErr = s.feed.NewPosts(ctx, name)
	}()
	go func() {
		defer wg.Done()
		about, aboutErr = s.feed.About(ctx, name)
	}()
	wg.Wait()
	if postsErr != nil {
		return Extract{}, postsErr
	}
	if aboutErr != nil {
		return Extract{}, aboutErr
	}

	if posts == nil {
		posts = []reddit.Post{}
	}
	content, err := json.Marshal(posts)
	if err != nil {
		return Extract{}, fmt.Errorf("encode subreddit %s: %w", name, err)
	}
	return s.result("New in r/"+name, string(content), s.images.FromAbout(ctx, about)), nil
}
