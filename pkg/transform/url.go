// Package transform provides the pure presentation transforms applied to
// upstream assets: CDN URL derivation and background-color classification.
package transform

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// Fixed pixel targets for the responsive URL set.
const (
	SizeStandard = 1024
	SizeMobile   = 640
	SizeLarge    = 1920
)

// cdnBase is the delivery host all derived URLs are rewritten onto.
const cdnBase = "https://cdn.gallery-proxy.net/a"

// DeriveURL rewrites an upstream secure URL onto the CDN delivery host at the
// given pixel size. The filename is taken from the last path element with its
// extension normalized to .jpg; a "v" (version) query parameter is preserved
// when present; w/h parameters are appended iff size > 0.
//
// The function is total: input that does not parse as a URL is returned
// unchanged. Applying it to an already-derived URL yields the same host and
// path again.
func DeriveURL(secureURL string, size int) string {
	u, err := url.Parse(secureURL)
	if err != nil || u.Path == "" {
		return secureURL
	}

	name := path.Base(u.Path)
	if ext := path.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	name += ".jpg"

	derived := cdnBase + "/" + name

	params := url.Values{}
	if v := u.Query().Get("v"); v != "" {
		params.Set("v", v)
	}
	if size > 0 {
		params.Set("w", fmt.Sprintf("%d", size))
		params.Set("h", fmt.Sprintf("%d", size))
	}

	if len(params) > 0 {
		derived += "?" + params.Encode()
	}
	return derived
}
