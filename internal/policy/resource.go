package policy

import (
	"net/url"
	"strings"
)

// ResourceIDExtractor derives the addressed resource id from a request path.
type ResourceIDExtractor interface {
	ResourceID(path string) (string, bool)
}

// LastSegment takes the last non-empty path segment, percent-decoded.
type LastSegment struct{}

// ResourceID returns false when the path has no non-empty segment or the
// segment is not valid percent-encoding.
func (LastSegment) ResourceID(path string) (string, bool) {
	segments := strings.Split(path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] == "" {
			continue
		}
		id, err := url.PathUnescape(segments[i])
		if err != nil || id == "" {
			return "", false
		}
		return id, true
	}
	return "", false
}
