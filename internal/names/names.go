// Package names derives filesystem- and URL-safe identifiers from
// user-supplied text: project slugs and stored photo filenames.
package names

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const maxSlugLen = 60

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	slugStripRe  = regexp.MustCompile(`[^a-z0-9_\-]`)
	fileStripRe  = regexp.MustCompile(`[^a-z0-9_.\-]`)
)

var allowedExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"webp": true,
}

// Slugify converts a project name into its directory slug: lowercased,
// whitespace runs collapsed to underscores, everything else outside
// [a-z0-9_-] stripped, truncated to 60 characters. An empty result
// falls back to "project".
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = whitespaceRe.ReplaceAllString(s, "_")
	s = slugStripRe.ReplaceAllString(s, "")
	if len(s) > maxSlugLen {
		s = s[:maxSlugLen]
	}
	if s == "" {
		return "project"
	}
	return s
}

// BaseFromDisplayName builds a safe filename stem from a photo's
// display name. Falls back to a timestamped stem when nothing survives
// sanitizing.
func BaseFromDisplayName(displayName string, now time.Time) string {
	s := strings.ToLower(strings.TrimSpace(displayName))
	s = whitespaceRe.ReplaceAllString(s, "_")
	s = fileStripRe.ReplaceAllString(s, "")
	s = strings.Trim(s, "_")
	if s == "" {
		return fmt.Sprintf("foto_%d", now.Unix())
	}
	return s
}

// TimestampedFilename appends a unix-timestamp suffix so stored
// filenames stay unique across re-uploads of the same display name.
func TimestampedFilename(base, ext string, now time.Time) string {
	return fmt.Sprintf("%s_%d.%s", base, now.Unix(), ext)
}

// Ext returns the lowercased extension of filename without the dot.
func Ext(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}

// AllowedExt reports whether ext (without dot) is a permitted image type.
func AllowedExt(ext string) bool {
	return allowedExtensions[strings.ToLower(ext)]
}

// AllowedImage reports whether filename carries a permitted image
// extension (png, jpg, jpeg, webp).
func AllowedImage(filename string) bool {
	return AllowedExt(Ext(filename))
}
