package reddit

import (
	"bytes"
	"encoding/json"

	"github.com/rs/zerolog/log"
)

// Kinds used by the listing endpoints.
const (
	KindListing = "Listing"
	KindComment = "t1"
	KindPost    = "t3"
	KindMore    = "more"
)

// Listing is Reddit's paginated container.
type Listing struct {
	Kind string      `json:"kind"`
	Data ListingData `json:"data"`
}

// ListingData holds the children of a listing. Children is never nil after
// decoding.
type ListingData struct {
	After    string  `json:"after,omitempty"`
	Children []Child `json:"children"`
}

// Child is a single thing inside a listing: a post, a comment or a "more"
// placeholder.
type Child struct {
	Kind string      `json:"kind"`
	Data CommentData `json:"data"`
}

// UnmarshalJSON decodes children one at a time. A child that cannot be
// decoded is dropped without affecting its siblings, and a data member that
// is not an object leaves the listing empty. Children is never nil.
func (l *Listing) UnmarshalJSON(b []byte) error {
	var env struct {
		Kind json.RawMessage `json:"kind"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}
	out := Listing{Data: ListingData{Children: []Child{}}}
	decodeOptional(env.Kind, &out.Kind)

	var data map[string]json.RawMessage
	if err := json.Unmarshal(env.Data, &data); err == nil {
		decodeOptional(data["after"], &out.Data.After)
		var children []json.RawMessage
		decodeOptional(data["children"], &children)
		for i, raw := range children {
			var c Child
			if err := json.Unmarshal(raw, &c); err != nil {
				log.Debug().Err(err).Int("index", i).Msg("skipping undecodable listing child")
				continue
			}
			out.Data.Children = append(out.Data.Children, c)
		}
	}
	*l = out
	return nil
}

// CommentData is shared by posts and comments; upstream uses one shape for
// both so most fields are only populated for one of them.
type CommentData struct {
	ID        FlexString `json:"id"`
	Name      string     `json:"name,omitempty"`
	Title     *string    `json:"title,omitempty"`
	Author    *string    `json:"author,omitempty"`
	Subreddit *string    `json:"subreddit,omitempty"`
	Score     int        `json:"score"`
	Body      *string    `json:"body,omitempty"`
	SelfText  *string    `json:"selftext,omitempty"`
	// CreatedUTC is seconds since the epoch.
	CreatedUTC float64 `json:"created_utc"`
	Permalink  string  `json:"permalink,omitempty"`

	URL                 *string `json:"url,omitempty"`
	URLOverriddenByDest *string `json:"url_overridden_by_dest,omitempty"`
	Thumbnail           *string `json:"thumbnail,omitempty"`

	IsGallery     bool                     `json:"is_gallery,omitempty"`
	GalleryData   *GalleryData             `json:"gallery_data,omitempty"`
	MediaMetadata map[string]MediaMetadata `json:"media_metadata,omitempty"`
	Preview       *Preview                 `json:"preview,omitempty"`

	Replies Replies `json:"replies"`
}

// UnmarshalJSON requires an object but treats every field as optional: a
// field with an unexpected type keeps its zero value instead of failing the
// whole payload.
func (d *CommentData) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	var out CommentData
	decodeOptional(fields["id"], &out.ID)
	decodeOptional(fields["name"], &out.Name)
	decodeOptional(fields["title"], &out.Title)
	decodeOptional(fields["author"], &out.Author)
	decodeOptional(fields["subreddit"], &out.Subreddit)
	decodeOptional(fields["score"], &out.Score)
	decodeOptional(fields["body"], &out.Body)
	decodeOptional(fields["selftext"], &out.SelfText)
	decodeOptional(fields["created_utc"], &out.CreatedUTC)
	decodeOptional(fields["permalink"], &out.Permalink)
	decodeOptional(fields["url"], &out.URL)
	decodeOptional(fields["url_overridden_by_dest"], &out.URLOverriddenByDest)
	decodeOptional(fields["thumbnail"], &out.Thumbnail)
	decodeOptional(fields["is_gallery"], &out.IsGallery)
	decodeOptional(fields["gallery_data"], &out.GalleryData)
	decodeOptional(fields["media_metadata"], &out.MediaMetadata)
	decodeOptional(fields["preview"], &out.Preview)
	decodeOptional(fields["replies"], &out.Replies)
	*d = out
	return nil
}

// decodeOptional stores raw into dst only when it decodes cleanly, so a
// malformed value leaves dst at its zero value. Missing values are ignored.
func decodeOptional[T any](raw json.RawMessage, dst *T) {
	if len(raw) == 0 {
		return
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		log.Debug().Err(err).Msg("ignoring malformed optional field")
		return
	}
	*dst = v
}

// GalleryData lists the media IDs of a gallery post in display order.
type GalleryData struct {
	Items []GalleryItem `json:"items"`
}

type GalleryItem struct {
	MediaID string     `json:"media_id"`
	ID      FlexString `json:"id"`
}

// MediaMetadata describes one gallery media entry. S is the full-size source.
type MediaMetadata struct {
	Status string      `json:"status"`
	E      string      `json:"e,omitempty"`
	M      string      `json:"m,omitempty"`
	S      MediaSource `json:"s"`
}

// MediaSource is the compact source descriptor used by media_metadata:
// U is the URL, X and Y the dimensions.
type MediaSource struct {
	U   string `json:"u,omitempty"`
	Gif string `json:"gif,omitempty"`
	X   int    `json:"x"`
	Y   int    `json:"y"`
}

type Preview struct {
	Images []PreviewImage `json:"images"`
}

type PreviewImage struct {
	Source      ImageSource   `json:"source"`
	Resolutions []ImageSource `json:"resolutions,omitempty"`
}

type ImageSource struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Replies is the decoded "replies" field of a comment. Upstream sends null,
// an empty string or a nested listing; after decoding only two cases remain:
// empty, or a listing whose Children is non-nil.
type Replies struct {
	listing *Listing
}

// EmptyReplies returns the empty variant.
func EmptyReplies() Replies { return Replies{} }

// RepliesOf returns the listing variant.
func RepliesOf(children ...Child) Replies {
	if children == nil {
		children = []Child{}
	}
	return Replies{listing: &Listing{Kind: KindListing, Data: ListingData{Children: children}}}
}

// IsEmpty reports whether there are no nested children.
func (r Replies) IsEmpty() bool { return len(r.Children()) == 0 }

// Children returns the nested children; never nil.
func (r Replies) Children() []Child {
	if r.listing == nil || r.listing.Data.Children == nil {
		return []Child{}
	}
	return r.listing.Data.Children
}

// UnmarshalJSON never fails: anything that is not a decodable listing object
// degrades to the empty variant. Nested replies inside the listing are
// decoded by this method again, one level per comment.
func (r *Replies) UnmarshalJSON(b []byte) error {
	*r = Replies{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	var l Listing
	if err := json.Unmarshal(b, &l); err != nil {
		return nil
	}
	r.listing = &l
	return nil
}

func (r Replies) MarshalJSON() ([]byte, error) {
	if r.listing == nil {
		return []byte(`""`), nil
	}
	return json.Marshal(r.listing)
}

// About is the response of /r/{name}/about.json. Data is kept as raw fields
// so image keys can be looked up in a configurable order.
type About struct {
	Kind string                     `json:"kind"`
	Data map[string]json.RawMessage `json:"data"`
}

// Field returns the string value stored under key, or "" when it is missing,
// null or not a string.
func (a About) Field(key string) string {
	raw, ok := a.Data[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
