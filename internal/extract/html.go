package extract

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"

	"github.com/hyperifyio/goextract/internal/failure"
)

// ContentNotFound is the Content of a page without any text block.
const ContentNotFound = "Content not found"

const pageURLShape = "an absolute http or https URL"

// TextFetcher downloads a page as text.
type TextFetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// Page is a simplified representation of extracted page content.
type Page struct {
	Title    string
	Text     string
	ImageURL string
}

// HTML extracts any web page with simple structural heuristics. It is the
// fallback strategy and accepts every URL.
type HTML struct {
	base
	pages TextFetcher
}

func NewHTML(tag Tag, pages TextFetcher) (*HTML, error) {
	b, err := newBase(tag)
	if err != nil {
		return nil, err
	}
	return &HTML{base: b, pages: pages}, nil
}

func (h *HTML) CanHandle(string) bool { return true }

func (h *HTML) Extract(ctx context.Context, rawURL string) (Extract, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return Extract{}, failure.Validation(rawURL, pageURLShape, "cannot fetch url")
	}
	body, err := h.pages.FetchText(ctx, u.String())
	if err != nil {
		return Extract{}, err
	}
	page := FromHTML(body, u)
	return h.result(page.Title, page.Text, page.ImageURL), nil
}

// FromHTML extracts title, main text and the largest image of a document.
//
// Title: og:title, then <title>, then the page URL. Text: the div, article
// or p element with the longest text. Image: the <img> with the largest
// declared width*height, resolved against pageURL.
func FromHTML(input string, pageURL *url.URL) Page {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(input))
	if err != nil {
		return Page{Title: pageURL.String(), Text: ContentNotFound}
	}
	doc.Find("script, style, noscript, template").Remove()
	return Page{
		Title:    findTitle(doc, pageURL),
		Text:     findText(doc),
		ImageURL: findImage(doc, pageURL),
	}
}

func findTitle(doc *goquery.Document, pageURL *url.URL) string {
	if og, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
		if t := cleanText(og); t != "" {
			return t
		}
	}
	if t := cleanText(doc.Find("title").First().Text()); t != "" {
		return t
	}
	return pageURL.String()
}

func findText(doc *goquery.Document) string {
	best, bestLen := "", 0
	doc.Find("div, article, p").Each(func(_ int, s *goquery.Selection) {
		if isBoilerplateContainer(s) {
			return
		}
		text := normalizeWhitespace(s.Text())
		if n := utf8.RuneCountInString(text); n > bestLen {
			best, bestLen = text, n
		}
	})
	if bestLen == 0 {
		return ContentNotFound
	}
	return norm.NFC.String(best)
}

func findImage(doc *goquery.Document, pageURL *url.URL) string {
	best, bestArea := "", -1
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src := strings.TrimSpace(s.AttrOr("src", ""))
		if src == "" || strings.HasPrefix(strings.ToLower(src), "data:") {
			return
		}
		area := dimension(s, "width") * dimension(s, "height")
		if area > bestArea {
			best, bestArea = src, area
		}
	})
	if best == "" {
		return ""
	}
	if ref, err := url.Parse(best); err == nil {
		return pageURL.ResolveReference(ref).String()
	}
	return best
}

// dimension reads a width/height attribute such as "640" or "640px";
// anything else counts as zero.
func dimension(s *goquery.Selection, attr string) int {
	v := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s.AttrOr(attr, "")), "px"))
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// isBoilerplateContainer returns true if the element looks like a cookie/consent banner.
func isBoilerplateContainer(s *goquery.Selection) bool {
	for _, attr := range []string{"id", "class", "role", "aria-label"} {
		val := strings.ToLower(s.AttrOr(attr, ""))
		if containsAny(val, []string{"cookie", "consent", "gdpr"}) {
			return true
		}
	}
	return false
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func cleanText(s string) string {
	return norm.NFC.String(collapseSpaces(strings.TrimSpace(s)))
}

func normalizeWhitespace(s string) string {
	// Collapse multiple spaces and blank lines
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			// Keep at most one consecutive blank
			if len(out) > 0 && out[len(out)-1] == "" {
				continue
			}
			out = append(out, "")
			continue
		}
		out = append(out, collapseSpaces(trimmed))
	}
	for len(out) > 0 && out[0] == "" {
		out = out[1:]
	}
	// trim trailing blank line
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}

func collapseSpaces(s string) string {
	var b strings.Builder
	lastSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return b.String()
}
