package providers

import "net/url"

// ValidPhotoURL reports whether s is an absolute http(s) URL. Photo
// entries failing this check are dropped at adaptation time and never
// surfaced to callers.
func ValidPhotoURL(s string) bool {
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
