// Package encoding provides the low-level tables and byte helpers behind the
// asset identifier codec. It has no dependencies on the rest of the module.
//
// Alphabet: A-Z (0-25), a-z (26-51), 0-9 (52-61), + (62), / (63), = (padding)
package encoding

import (
	"errors"
	"fmt"
	"strconv"
)

// Base64 alphabet constants
const (
	Base64Keys = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/="
	HexDigits  = "0123456789abcdef"

	// PaddingValue is the table entry for '=' and for every code below
	// maxKeyCode that is not part of the alphabet.
	PaddingValue = 64

	// maxKeyCode is one past the highest character code in Base64Keys ('z').
	maxKeyCode = 123
)

// Common errors for encoding operations
var (
	ErrInvalidHex = errors.New("invalid hex pair")
)

var base64Values [maxKeyCode]byte

func init() {
	for i := range base64Values {
		base64Values[i] = PaddingValue
	}
	for i := 0; i < 64; i++ {
		base64Values[Base64Keys[i]] = byte(i)
	}
}

// Base64Value returns the 6-bit value of c in the alphabet. '=' and other
// codes below 123 that are not in the alphabet yield PaddingValue; codes past
// the end of the table yield 0.
func Base64Value(c rune) byte {
	if !inTable(c) {
		return 0
	}
	return base64Values[c]
}

func inTable(c rune) bool {
	return c >= 0 && c < maxKeyCode
}

// HexChar converts the low 4 bits of nibble to a lowercase hex digit.
func HexChar(nibble byte) byte {
	return HexDigits[nibble&0xF]
}

// HexPairsToBytes parses s two characters at a time as base-16 bytes.
// A trailing unpaired character is ignored.
func HexPairsToBytes(s string) ([]byte, error) {
	out := make([]byte, 0, len(s)/2)
	for i := 0; i+1 < len(s); i += 2 {
		v, err := strconv.ParseUint(s[i:i+2], 16, 8)
		if err != nil {
			return nil, fmt.Errorf("%w %q at offset %d", ErrInvalidHex, s[i:i+2], i)
		}
		out = append(out, byte(v))
	}
	return out, nil
}

// DecodeBase64Lenient decodes s the way permissive base64 readers do: it stops
// at the first '=', skips characters outside the alphabet, accepts the
// URL-safe '-' and '_' as 62 and 63, and drops incomplete trailing bits.
// It never fails.
func DecodeBase64Lenient(s string) []byte {
	out := make([]byte, 0, len(s)*3/4)
	var acc uint32
	var bits uint
	for _, c := range s {
		if c == '=' {
			break
		}
		var v byte
		switch c {
		case '-':
			v = 62
		case '_':
			v = 63
		default:
			if !inTable(c) {
				continue
			}
			v = base64Values[c]
		}
		if v == PaddingValue {
			continue
		}
		acc = acc<<6 | uint32(v)
		bits += 6
		if bits >= 8 {
			bits -= 8
			out = append(out, byte(acc>>bits))
			acc &= 1<<bits - 1
		}
	}
	return out
}
