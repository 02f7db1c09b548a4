package domain

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

var badPathChars = regexp.MustCompile(`[\\/:*?"<>|]`)

// DeriveName picks a local file name from the URL path. Falls back to
// "download" for URLs with no usable path component.
func DeriveName(rawURL string) string {
	name := ""
	if u, err := url.Parse(rawURL); err == nil {
		name = path.Base(u.Path)
	}
	if name == "." || name == "/" {
		name = ""
	}

	// Windows/Linux/macOS safety
	name = badPathChars.ReplaceAllString(name, "_")
	name = strings.TrimSpace(name)

	if name == "" {
		name = "download"
	}
	return name
}
