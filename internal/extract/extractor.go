package extract

import (
	"context"
	"fmt"
)

// Extract is the source-agnostic result of one extraction. PreviewImageURL is
// empty when no image was found.
type Extract struct {
	Title           string `json:"title"`
	Content         string `json:"content"`
	PreviewImageURL string `json:"preview_image_url,omitempty"`
	ExtractType     Tag    `json:"extract_type"`
}

// Tag identifies the strategy that produced an Extract.
type Tag string

const (
	TagHTML       Tag = "Html"
	TagRedditPost Tag = "RedditPost"
	TagSubreddit  Tag = "Subreddit"
	TagStrategy   Tag = "Strategy"
)

// Extractor defines a content extraction strategy. Implementations must be
// safe for concurrent use.
type Extractor interface {
	// Tag is stable for the lifetime of the extractor.
	Tag() Tag
	// CanHandle reports whether Extract accepts rawURL. It must not do I/O.
	CanHandle(rawURL string) bool
	Extract(ctx context.Context, rawURL string) (Extract, error)
}

// base carries the tag every concrete extractor declares at construction.
type base struct {
	tag Tag
}

func newBase(tag Tag) (base, error) {
	if err := tag.Validate(); err != nil {
		return base{}, err
	}
	return base{tag: tag}, nil
}

func (b base) Tag() Tag { return b.tag }

func (b base) result(title, content, image string) Extract {
	return Extract{Title: title, Content: content, PreviewImageURL: image, ExtractType: b.tag}
}

// Validate accepts non-empty tags made of ASCII letters and digits.
func (t Tag) Validate() error {
	if t == "" {
		return fmt.Errorf("extractor tag is empty")
	}
	for _, r := range t {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return fmt.Errorf("extractor tag %q: invalid character %q", string(t), r)
		}
	}
	return nil
}
