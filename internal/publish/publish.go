// Package publish renders extracts into read-later documents.
package publish

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/jung-kurt/gofpdf"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/hyperifyio/goextract/internal/extract"
)

// Item is one extract ready to be published.
type Item struct {
	URL     string
	Extract extract.Extract
	// Summary is optional Markdown produced by the summarizer.
	Summary string
}

// Publisher persists an item and returns where it was written.
type Publisher interface {
	Publish(ctx context.Context, item Item) (string, error)
}

// PDFPublisher writes one A4 PDF per item into Dir.
type PDFPublisher struct {
	Dir string
}

var linkRe = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)

func (p *PDFPublisher) Publish(ctx context.Context, item Item) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(p.Dir) == "" {
		return "", errors.New("publish: output directory is required")
	}
	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return "", fmt.Errorf("publish: create dir: %w", err)
	}
	out := filepath.Join(p.Dir, Slug(item.Extract.Title, item.URL)+".pdf")

	pdf := gofpdf.New("P", "mm", "A4", "")
	// Core fonts are cp1252; translate so accented titles survive.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.MultiCell(0, 8, tr(item.Extract.Title), "", "L", false)
	pdf.SetFont("Helvetica", "", 9)
	pdf.WriteLinkString(5, tr(item.URL), item.URL)
	pdf.Ln(6)
	if item.Extract.PreviewImageURL != "" {
		pdf.Write(5, "Image: ")
		pdf.WriteLinkString(5, tr(item.Extract.PreviewImageURL), item.Extract.PreviewImageURL)
		pdf.Ln(6)
	}
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "", 11)
	if strings.TrimSpace(item.Summary) != "" {
		writeMarkdown(pdf, tr, "## Summary\n"+item.Summary)
		pdf.Ln(4)
	}
	writeMarkdown(pdf, tr, "## Content\n"+item.Extract.Content)

	if err := pdf.OutputFileAndClose(out); err != nil {
		return "", fmt.Errorf("publish: write pdf: %w", err)
	}
	log.Debug().Str("path", out).Msg("published")
	return out, nil
}

// writeMarkdown renders headings, paragraphs and [text](url) links. It is not
// a full Markdown layout engine.
func writeMarkdown(pdf *gofpdf.Fpdf, tr func(string) string, markdown string) {
	scanner := bufio.NewScanner(strings.NewReader(markdown))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		s := strings.TrimSpace(scanner.Text())
		if s == "" {
			pdf.Ln(5)
			continue
		}
		if strings.HasPrefix(s, "#") {
			i := 0
			for i < len(s) && s[i] == '#' {
				i++
			}
			text := strings.TrimSpace(s[i:])
			if text == "" {
				continue
			}
			size := 14.0
			if i >= 2 {
				size = 12.0
			}
			pdf.SetFont("Helvetica", "B", size)
			pdf.CellFormat(0, 8, tr(text), "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 11)
			continue
		}
		parts := linkRe.FindAllStringSubmatchIndex(s, -1)
		if len(parts) == 0 {
			pdf.MultiCell(0, 5, tr(s), "", "L", false)
			continue
		}
		pos := 0
		for _, m := range parts {
			if m[0] > pos {
				pdf.Write(5, tr(s[pos:m[0]]))
			}
			pdf.WriteLinkString(5, tr(s[m[2]:m[3]]), s[m[4]:m[5]])
			pos = m[1]
		}
		if pos < len(s) {
			pdf.Write(5, tr(s[pos:]))
		}
		pdf.Ln(6)
	}
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug derives a lowercase ASCII file name from title, falling back to the
// URL and finally to "extract". The result is at most 80 characters.
func Slug(title, rawURL string) string {
	for _, s := range []string{title, rawURL} {
		slug := slugify(s)
		if slug != "" {
			return slug
		}
	}
	return "extract"
}

func slugify(s string) string {
	// Decompose, then drop the combining marks: "é" becomes "e".
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(fold, s); err == nil {
		s = folded
	}
	s = strings.ToLower(s)
	s = strings.Trim(nonSlug.ReplaceAllString(s, "-"), "-")
	if len(s) > 80 {
		s = strings.TrimRight(s[:80], "-")
	}
	return s
}
