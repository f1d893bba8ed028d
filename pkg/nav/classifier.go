// Package nav classifies CRM page URLs. The toolkit's navigation stream is
// the only signal available for inferring what happened to a "create new
// record" modal, so these predicates sit underneath the whole
// reconciliation machinery.
package nav

import (
	"net/url"
	"strings"

	"crm-softphone-connector/pkg/constants"
)

// IsNewRecordModal reports whether the URL's path is one of the CRM's
// "create new record" modal pages.
func IsNewRecordModal(rawURL string) bool {
	path := pathOf(rawURL)
	if path == "" {
		return false
	}
	for _, modal := range constants.NewRecordModalPaths {
		if path == modal {
			return true
		}
	}
	return false
}

// BackgroundContextPath extracts the path of the page that was beneath a
// modal, from the query parameter the CRM appends when it overlays one.
// Returns "" when the URL carries no background context.
func BackgroundContextPath(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	bg := u.Query().Get(constants.BackgroundContextParam)
	if bg == "" {
		return ""
	}
	// The parameter may itself be a full URL; reduce it to a path.
	if p := pathOf(bg); p != "" {
		return p
	}
	return bg
}

// SameURL is the idempotence guard for the navigation listener: the CRM
// may fire duplicate notifications with no observable page change.
func SameURL(a, b string) bool {
	return strings.TrimSpace(a) == strings.TrimSpace(b)
}

// PathOf reduces a raw URL to its path component, tolerating bare paths.
func PathOf(rawURL string) string {
	return pathOf(rawURL)
}

func pathOf(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if u.Path != "" {
		return u.Path
	}
	return u.Opaque
}
