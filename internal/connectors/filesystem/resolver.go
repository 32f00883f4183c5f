package filesystem

import (
	"net/url"
	"strings"
)

// ResolvePath converts a file:// URI to a local path.
// Percent-escapes in URIs are decoded; bare paths pass through unchanged.
func ResolvePath(uri string) string {
	if !strings.HasPrefix(uri, "file://") {
		return uri
	}
	if u, err := url.Parse(uri); err == nil && u.Path != "" {
		return u.Path
	}
	return strings.TrimPrefix(uri, "file://")
}
