// Package idcodec converts asset identifiers between their three textual forms:
//
//   - standard form: 36-character hyphenated hex, 8-4-4-4-12
//   - short form:    22 characters, two hex digits followed by 20 base64 characters
//   - packed form:   23 characters, five verbatim characters followed by 18 base64 characters
//
// Any identifier may carry a sub-asset suffix after the first '@'
// ("fcmR3XADNLgJ1ByKhqcC5Z@f9941"). Every operation transforms only the part
// before the '@' and copies the suffix through untouched.
//
// The exported transformations are total: when a transformation does not
// apply they return their input unchanged. The Try* variants expose the same
// transformations with a typed *errors.CodecError explaining the fallback.
package idcodec

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/standardbeagle/assetid/internal/debug"
	errs "github.com/standardbeagle/assetid/internal/errors"
)

// Identifier lengths, excluding any suffix
const (
	StandardLength = 36
	ShortLength    = 22
	PackedLength   = 23
)

// SuffixSeparator separates an identifier from its sub-asset suffix.
const SuffixSeparator = '@'

// Operation names used in errors and logs
const (
	OpDecode      = "decode"
	OpCompress    = "compress"
	OpDecompress  = "decompress"
	OpReconstruct = "reconstruct"
)

// SplitSuffix splits s at the first '@'. ok reports whether a separator was
// present, so "id@" (empty suffix) and "id" stay distinguishable.
func SplitSuffix(s string) (base, suffix string, ok bool) {
	i := strings.IndexByte(s, SuffixSeparator)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+1:], true
}

func joinSuffix(base, suffix string, ok bool) string {
	if !ok {
		return base
	}
	return base + string(SuffixSeparator) + suffix
}

// splitRunes returns the first n characters of s and the remainder.
func splitRunes(s string, n int) (head, tail string) {
	i := 0
	for ; n > 0 && i < len(s); n-- {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return s[:i], s[i:]
}

// guard runs fn and converts a panic into an internal codec error.
func guard(op, input string, fn func() (string, error)) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = ""
			err = errs.NewCodecError(errs.ErrorTypeInternal, op, fmt.Errorf("%v", r)).WithInput(input)
		}
	}()
	return fn()
}

// transformSuffixed applies fn to the pre-'@' part of input and re-attaches
// the suffix.
func transformSuffixed(op, input string, fn func(base string) (string, error)) (string, error) {
	return guard(op, input, func() (string, error) {
		base, suffix, ok := SplitSuffix(input)
		out, err := fn(base)
		if err != nil {
			var codecErr *errs.CodecError
			if errors.As(err, &codecErr) {
				return "", codecErr.WithInput(input)
			}
			return "", err
		}
		return joinSuffix(out, suffix, ok), nil
	})
}

// orInput is the fallback policy of the total functions.
func orInput(op, input string, out string, err error) string {
	if err != nil {
		debug.LogCodec("%s returned input unchanged: %v", op, err)
		return input
	}
	return out
}
