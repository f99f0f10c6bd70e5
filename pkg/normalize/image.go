// Package normalize maps raw upstream asset descriptors into stable,
// presentation-ready image records.
package normalize

import (
	"regexp"
	"strings"

	"github.com/artgrid/gallery-proxy/pkg/provider"
	"github.com/artgrid/gallery-proxy/pkg/transform"
)

// TransparentColor is the background sentinel used when the upstream color
// analysis yields fewer than four swatches.
const TransparentColor = "transparent"

// placeholderPrefix prefixes ids of assets without a caption.
const placeholderPrefix = "p"

// NormalizedImage is the derived record served to clients. It is created once
// per asset per regeneration cycle and never mutated; invalidation supersedes
// it with a fresh normalization.
type NormalizedImage struct {
	ID              string  `json:"id"`
	URL             string  `json:"url"`
	MobileURL       string  `json:"mobileUrl"`
	LargeURL        string  `json:"largeUrl"`
	BackgroundColor string  `json:"backgroundColor"`
	Color           string  `json:"color"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	Caption         *string `json:"caption"`
}

// slugSeparators matches the caption characters replaced by hyphens.
var slugSeparators = regexp.MustCompile(`[,\s]+`)

// imageID builds the stable id: slugified caption joined with the first four
// characters of the asset id, or "p-<first4>" when no caption exists.
func imageID(caption, assetID string) string {
	short := assetID
	if len(short) > 4 {
		short = short[:4]
	}

	if caption == "" {
		return placeholderPrefix + "-" + short
	}

	slug := strings.ToLower(caption)
	slug = slugSeparators.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	return slug + "-" + short
}

// backgroundColor picks the fourth swatch when at least four exist, else the
// transparent sentinel.
func backgroundColor(colors []provider.Swatch) string {
	if len(colors) >= 4 {
		return colors[3].Hex
	}
	return TransparentColor
}

// fromResource assembles the normalized record from the listing entry and its
// color detail.
func fromResource(res *provider.RawResource, colors []provider.Swatch) NormalizedImage {
	caption := res.Caption()
	background := backgroundColor(colors)

	img := NormalizedImage{
		ID:              imageID(caption, res.AssetID),
		URL:             transform.DeriveURL(res.SecureURL, transform.SizeStandard),
		MobileURL:       transform.DeriveURL(res.SecureURL, transform.SizeMobile),
		LargeURL:        transform.DeriveURL(res.SecureURL, transform.SizeLarge),
		BackgroundColor: background,
		Color:           transform.TextColor(background),
		Width:           res.Width,
		Height:          res.Height,
	}
	if caption != "" {
		img.Caption = &caption
	}
	return img
}
