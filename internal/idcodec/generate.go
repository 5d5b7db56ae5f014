package idcodec

import (
	"crypto/rand"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// shortIDAlphabet is the character set of generated short ids.
const shortIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Largest multiple of len(shortIDAlphabet) that fits in a byte; bytes at or
// above it are rejected to keep the distribution uniform.
const shortIDRejectAbove = 256 - 256%len(shortIDAlphabet)

var standardIDPattern = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// GenerateShortID returns 22 random characters. Callers must treat the result
// as opaque; no uniqueness guarantee is made beyond randomness.
func GenerateShortID() string {
	out := make([]byte, 0, ShortLength)
	buf := make([]byte, ShortLength*2)
	for len(out) < ShortLength {
		if _, err := rand.Read(buf); err != nil {
			// crypto/rand only fails when the OS entropy source is unusable
			panic("idcodec: reading random bytes: " + err.Error())
		}
		for _, b := range buf {
			if int(b) >= shortIDRejectAbove {
				continue
			}
			out = append(out, shortIDAlphabet[int(b)%len(shortIDAlphabet)])
			if len(out) == ShortLength {
				break
			}
		}
	}
	return string(out)
}

// GenerateStandardID returns a random RFC 4122 version 4 identifier.
func GenerateStandardID() string {
	return uuid.NewString()
}

// IsValidStandardID reports whether s is a canonical 8-4-4-4-12 hex
// identifier. Case is ignored and no suffix is allowed.
func IsValidStandardID(s string) bool {
	return standardIDPattern.MatchString(s)
}

// Kind is the shape of an identifier.
type Kind int

const (
	KindUnknown Kind = iota
	KindStandard
	KindShort
	KindPacked
)

func (k Kind) String() string {
	switch k {
	case KindStandard:
		return "standard"
	case KindShort:
		return "short"
	case KindPacked:
		return "packed"
	default:
		return "unknown"
	}
}

// Classify reports the shape of the pre-'@' part of s. Short and packed
// forms are recognised by length only.
func Classify(s string) Kind {
	base, _, _ := SplitSuffix(s)
	if IsValidStandardID(base) {
		return KindStandard
	}
	switch len(codeUnits(base)) {
	case ShortLength:
		return KindShort
	case PackedLength:
		return KindPacked
	}
	return KindUnknown
}

// Normalize brings s to lowercase standard form where that is possible:
// short ids are decoded, standard ids are lowercased, anything else is
// returned unchanged. The suffix is preserved.
func Normalize(s string) string {
	switch Classify(s) {
	case KindShort:
		return Decode(s)
	case KindStandard:
		base, suffix, ok := SplitSuffix(s)
		return joinSuffix(strings.ToLower(base), suffix, ok)
	}
	return s
}
