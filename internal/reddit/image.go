package reddit

import (
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/html"
)

var imageExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".webp": {}, ".bmp": {}, ".svg": {},
}

// Thumbnail placeholders Reddit uses instead of a URL.
var thumbnailSentinels = map[string]struct{}{
	"self": {}, "default": {}, "nsfw": {},
}

// SelectImage picks the best image for a post, first match wins: gallery,
// preview images, direct link, thumbnail. It returns "" when none applies.
func SelectImage(d CommentData) string {
	if u := galleryImage(d); u != "" {
		return u
	}
	if u := previewImage(d); u != "" {
		return u
	}
	if u := directImage(d); u != "" {
		return u
	}
	return thumbnailImage(d)
}

func galleryImage(d CommentData) string {
	if !d.IsGallery || d.GalleryData == nil || len(d.GalleryData.Items) == 0 || len(d.MediaMetadata) == 0 {
		return ""
	}
	best, bestArea := "", -1
	for _, item := range d.GalleryData.Items {
		meta, ok := d.MediaMetadata[item.MediaID]
		if !ok || !strings.EqualFold(meta.Status, "valid") {
			continue
		}
		src := meta.S.U
		if src == "" {
			src = meta.S.Gif
		}
		if src == "" {
			continue
		}
		if area := meta.S.X * meta.S.Y; area > bestArea {
			best, bestArea = src, area
		}
	}
	return html.UnescapeString(best)
}

func previewImage(d CommentData) string {
	if d.Preview == nil {
		return ""
	}
	best, bestArea := "", -1
	for _, img := range d.Preview.Images {
		if img.Source.URL == "" {
			continue
		}
		if area := img.Source.Width * img.Source.Height; area > bestArea {
			best, bestArea = img.Source.URL, area
		}
	}
	return html.UnescapeString(best)
}

func directImage(d CommentData) string {
	candidate := deref(d.URLOverriddenByDest)
	if isBlank(candidate) {
		candidate = deref(d.URL)
	}
	if IsImageURL(candidate) {
		return candidate
	}
	return ""
}

func thumbnailImage(d CommentData) string {
	t := strings.TrimSpace(deref(d.Thumbnail))
	if _, sentinel := thumbnailSentinels[strings.ToLower(t)]; sentinel {
		return ""
	}
	if IsImageURL(t) {
		return t
	}
	return ""
}

// IsImageURL reports whether raw is an absolute URL whose path ends in a
// known image extension. The comparison is case-insensitive.
func IsImageURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return false
	}
	_, ok := imageExtensions[strings.ToLower(path.Ext(u.Path))]
	return ok
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }
