// Package links normalizes candidate URLs before fetching, unwrapping
// known redirect wrappers that block or mis-serve automated clients.
package links

import (
	"net/url"
	"strings"
)

// Resolve unwraps known wrapper URLs and returns the destination URL.
// Unrecognized or malformed input is returned unchanged; Resolve never
// fails and is idempotent.
func Resolve(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}

	host := strings.ToLower(u.Host)

	// Facebook redirector: https://l.facebook.com/l.php?u=<escaped-url>&h=...
	if strings.Contains(host, "l.facebook.com") && strings.HasPrefix(u.Path, "/l.php") {
		if target := u.Query().Get("u"); target != "" {
			return target
		}
	}

	// Embedded post wrapper: facebook.com/plugins/post.php?href=<url>
	if strings.Contains(host, "facebook.com") && u.Query().Get("href") != "" {
		return u.Query().Get("href")
	}

	// t.co cannot be expanded without a request; redirect following during
	// fetch handles it.
	return rawURL
}
