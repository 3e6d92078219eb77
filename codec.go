// Package vsmark embeds signed provenance metadata into plain text using
// Unicode variation selectors, and extracts and verifies it later.
package vsmark

import "strings"

// Variation selectors block (VS1-VS16) and supplement (VS17-VS256).
// Together the two ranges cover exactly 256 code points, one per byte value.
const (
	variationSelectorStart rune = 0xFE00
	variationSelectorEnd   rune = 0xFE0F

	variationSupplementStart rune = 0xE0100
	variationSupplementEnd   rune = 0xE01EF
)

// byteToSelector maps a byte to its variation selector code point.
// Bytes 0-15 land in the base block, 16-255 in the supplement.
func byteToSelector(b byte) rune {
	if b < 16 {
		return variationSelectorStart + rune(b)
	}
	return variationSupplementStart + rune(b) - 16
}

// selectorToByte maps a variation selector code point back to its byte.
// Returns false for any rune outside the two selector ranges.
func selectorToByte(r rune) (byte, bool) {
	switch {
	case r >= variationSelectorStart && r <= variationSelectorEnd:
		return byte(r - variationSelectorStart), true
	case r >= variationSupplementStart && r <= variationSupplementEnd:
		return byte(r - variationSupplementStart + 16), true
	}
	return 0, false
}

// EncodeBytes converts data into a run of variation selector characters.
// One selector is produced per input byte.
func EncodeBytes(data []byte) string {
	var sb strings.Builder
	sb.Grow(len(data) * 4)
	for _, b := range data {
		sb.WriteRune(byteToSelector(b))
	}
	return sb.String()
}

// DecodeBytes extracts the first embedded byte run from text.
//
// Characters before the run are carrier text and are skipped. Once
// collection has begun, the first non-selector character ends the scan:
// only a contiguous run is recovered.
func DecodeBytes(text string) []byte {
	var out []byte
	for _, r := range text {
		b, ok := selectorToByte(r)
		if !ok {
			if len(out) > 0 {
				break
			}
			continue
		}
		out = append(out, b)
	}
	return out
}

// EncodeText hides text inside a single base character by appending one
// variation selector per UTF-8 byte of text.
func EncodeText(base string, text string) string {
	return base + EncodeBytes([]byte(text))
}

// DecodeText recovers a string previously hidden with EncodeText.
// Returns the empty string when text carries no selectors.
func DecodeText(text string) string {
	return string(DecodeBytes(text))
}

// StripSelectors removes every variation selector from text, returning
// the visible character sequence.
func StripSelectors(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	for _, r := range text {
		if _, ok := selectorToByte(r); ok {
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
