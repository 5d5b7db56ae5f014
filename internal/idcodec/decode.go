package idcodec

import (
	"fmt"
	"unicode/utf16"

	"github.com/standardbeagle/assetid/internal/encoding"
	errs "github.com/standardbeagle/assetid/internal/errors"
)

// Decode converts a short form identifier to standard form.
//
//	fcmR3XADNLgJ1ByKhqcC5Z       -> fc991dd7-0033-4b80-9d41-c8a86a702e59
//	fcmR3XADNLgJ1ByKhqcC5Z@f9941 -> fc991dd7-0033-4b80-9d41-c8a86a702e59@f9941
//
// Inputs whose pre-'@' part is not exactly 22 characters are returned as-is.
func Decode(input string) string {
	out, err := TryDecode(input)
	return orInput(OpDecode, input, out, err)
}

// TryDecode is Decode with an error explaining why the input was not decoded.
func TryDecode(input string) (string, error) {
	return guard(OpDecode, input, func() (string, error) {
		base, _, _ := SplitSuffix(input)
		units := codeUnits(base)
		if n := len(units); n != ShortLength {
			return "", errs.NewCodecError(errs.ErrorTypeLength, OpDecode,
				fmt.Errorf("identifier has %d characters, want %d", n, ShortLength)).WithInput(input)
		}
		// Everything after the 22-character segment, including "@suffix",
		// is carried over verbatim.
		return decodeShort(units) + input[len(base):], nil
	})
}

// codeUnits returns s as UTF-16 code units. Short id lengths and positions
// are measured in code units, so a character outside the Basic Multilingual
// Plane counts twice.
func codeUnits(s string) []uint16 {
	return utf16.Encode([]rune(s))
}

// decodeShort expands a 22-unit short id. The first two units are copied
// verbatim; each following pair yields three hex digits. Surrogate halves
// look up as 0.
func decodeShort(units []uint16) string {
	tmpl := encoding.NewTemplate()
	slots := encoding.FillSlots()

	j := 2
	for i := 2; i < ShortLength; i += 2 {
		lhs := encoding.Base64Value(rune(units[i]))
		rhs := encoding.Base64Value(rune(units[i+1]))
		tmpl[slots[j]] = encoding.HexChar(lhs >> 2)
		tmpl[slots[j+1]] = encoding.HexChar(((lhs & 3) << 2) | rhs>>4)
		tmpl[slots[j+2]] = encoding.HexChar(rhs & 0xF)
		j += 3
	}

	return string(utf16.Decode(units[:2])) + string(tmpl[2:])
}
