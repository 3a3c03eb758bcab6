package reddit

import (
	"fmt"
	"math"
	"time"

	"github.com/hyperifyio/goextract/internal/failure"
)

const payloadShape = "a JSON array of at least 2 listings whose first listing holds the post"

// Transformer converts raw listing payloads into Post values. It is pure and
// safe for concurrent use.
type Transformer struct {
	opts Options
}

func NewTransformer(opts Options) *Transformer {
	return &Transformer{opts: opts}
}

// Transform builds a Post from the two listings returned by
// /comments/{id}.json: the first holds the post, the second its top-level
// comments.
func (t *Transformer) Transform(listings []Listing) (Post, error) {
	if len(listings) < 2 {
		return Post{}, failure.Validation(fmt.Sprintf("%d listings", len(listings)), payloadShape, "reddit payload has too few listings")
	}
	if len(listings[0].Data.Children) == 0 {
		return Post{}, failure.Validation("post listing with 0 children", payloadShape, "reddit post listing is empty")
	}
	data := listings[0].Data.Children[0].Data
	if data.Title == nil {
		return Post{}, failure.Validation("post "+data.ID.String(), "a post with a title", "reddit post has no title")
	}
	base, err := t.opts.base()
	if err != nil {
		return Post{}, err
	}

	postID := data.ID.String()
	subreddit := deref(data.Subreddit)
	content := PostContent{
		ID:         postID,
		Title:      *data.Title,
		Author:     deref(data.Author),
		Subreddit:  subreddit,
		Score:      data.Score,
		Content:    deref(data.SelfText),
		CreatedUTC: unixUTC(data.CreatedUTC),
		ImageURL:   SelectImage(data),
		URL:        fmt.Sprintf("%s/r/%s/comments/%s/", base, subreddit, postID),
	}

	b := treeBuilder{base: base, subreddit: subreddit, postID: postID}
	return Post{
		Post:     content,
		Comments: b.comments(listings[1].Data.Children),
	}, nil
}

type treeBuilder struct {
	base      string
	subreddit string
	postID    string
}

// comments keeps only t1 children; "more" placeholders are dropped.
func (b treeBuilder) comments(children []Child) []Comment {
	out := make([]Comment, 0, len(children))
	for _, c := range children {
		if c.Kind != KindComment {
			continue
		}
		out = append(out, b.comment(c.Data))
	}
	return out
}

func (b treeBuilder) comment(d CommentData) Comment {
	id := d.ID.String()
	return Comment{
		ID:         id,
		Author:     deref(d.Author),
		Score:      d.Score,
		Content:    deref(d.Body),
		CreatedUTC: unixUTC(d.CreatedUTC),
		Permalink:  b.permalink(id),
		Replies:    b.comments(d.Replies.Children()),
	}
}

func (b treeBuilder) permalink(commentID string) string {
	return fmt.Sprintf("%s/r/%s/comments/%s/comment/%s/", b.base, b.subreddit, b.postID, commentID)
}

func unixUTC(seconds float64) time.Time {
	whole, frac := math.Modf(seconds)
	return time.Unix(int64(whole), int64(frac*float64(time.Second))).UTC()
}
