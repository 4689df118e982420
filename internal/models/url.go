package models

import "net/url"

// IsWebURL reports whether raw is an absolute http or https URL with a host.
// Creative and landing URLs end up in src and href attributes, so anything
// else (javascript:, data:, relative paths) is refused.
func IsWebURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
