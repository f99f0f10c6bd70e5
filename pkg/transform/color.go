package transform

import (
	"regexp"
	"strconv"
)

// hexColorPattern accepts 3- or 6-digit hex colors with an optional leading #.
var hexColorPattern = regexp.MustCompile(`^#?([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// lightThreshold is the luminance cutoff on the 0-255 scale above which a
// color is treated as light. 186 keeps mid-gray (#808080, luminance 128) on
// the dark side.
const lightThreshold = 186

// IsLight reports whether a hex background color is light enough to require
// dark overlay text. It uses the ITU-R BT.601 weighted luminance
// 0.299*R + 0.587*G + 0.114*B compared against a fixed threshold.
//
// Malformed input returns false. That is the defined fallback (dark
// background, white text), not an error.
func IsLight(hex string) bool {
	m := hexColorPattern.FindStringSubmatch(hex)
	if m == nil {
		return false
	}

	digits := m[1]
	if len(digits) == 3 {
		// Expand shorthand: "abc" -> "aabbcc".
		digits = string([]byte{
			digits[0], digits[0],
			digits[1], digits[1],
			digits[2], digits[2],
		})
	}

	r, _ := strconv.ParseUint(digits[0:2], 16, 8)
	g, _ := strconv.ParseUint(digits[2:4], 16, 8)
	b, _ := strconv.ParseUint(digits[4:6], 16, 8)

	luminance := 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
	return luminance > lightThreshold
}

// TextColor returns the overlay text color ("black" or "white") that
// contrasts with the given background color.
func TextColor(background string) string {
	if IsLight(background) {
		return "black"
	}
	return "white"
}
