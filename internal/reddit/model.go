package reddit

import "time"

// Post is a Reddit post together with its comment tree.
type Post struct {
	Post     PostContent `json:"post"`
	Comments []Comment   `json:"comments"`
}

// PostContent carries the fields of a post. ImageURL is empty when no image
// could be resolved from the post itself.
type PostContent struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Author     string    `json:"author"`
	Subreddit  string    `json:"subreddit"`
	Score      int       `json:"score"`
	Content    string    `json:"content"`
	CreatedUTC time.Time `json:"created_utc"`
	ImageURL   string    `json:"image_url,omitempty"`
	URL        string    `json:"url"`
}

// Comment is one node of the comment tree. Replies is never nil.
type Comment struct {
	ID         string    `json:"id"`
	Author     string    `json:"author"`
	Score      int       `json:"score"`
	Content    string    `json:"content"`
	CreatedUTC time.Time `json:"created_utc"`
	Permalink  string    `json:"permalink"`
	Replies    []Comment `json:"replies"`
}

// HasImage reports whether the post resolved a non-blank image.
func (p Post) HasImage() bool { return !isBlank(p.Post.ImageURL) }
