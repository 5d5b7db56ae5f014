package idcodec

import (
	"encoding/base64"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/standardbeagle/assetid/internal/encoding"
	errs "github.com/standardbeagle/assetid/internal/errors"
)

const (
	// compressHeaderLen characters are kept verbatim by Compress and Reconstruct.
	compressHeaderLen = 5
	// decompressHeaderLen is intentionally shorter than compressHeaderLen;
	// Decompress is not the inverse of Compress.
	decompressHeaderLen = 2
	// reconstructKeep is how much of the Decompress output Reconstruct keeps.
	reconstructKeep = 4

	// sentinel is appended to the hex content before pairing. With a standard
	// id it turns 27 digits into 14 whole bytes, whose base64 encoding ends
	// in one significant character plus '='; trimTail drops both.
	sentinel = "f"
	trimTail = 2
)

// Compress packs a standard form identifier into the 23-character packed form.
//
//	fc991dd7-0033-4b80-9d41-c8a86a702e59 -> fc9913XADNLgJ1ByKhqcC5Z
//
// Inputs containing non-hex content after the fifth character are returned
// unchanged.
func Compress(input string) string {
	out, err := TryCompress(input)
	return orInput(OpCompress, input, out, err)
}

// TryCompress is Compress with an error explaining why the input was not packed.
func TryCompress(input string) (string, error) {
	return transformSuffixed(OpCompress, input, compressBase)
}

func compressBase(base string) (string, error) {
	header, rest := splitRunes(base, compressHeaderLen)
	raw, err := sentinelBytes(OpCompress, rest)
	if err != nil {
		return "", err
	}
	encoded := base64.StdEncoding.EncodeToString(raw)
	if len(encoded) < trimTail {
		return header, nil
	}
	return header + encoded[:len(encoded)-trimTail], nil
}

// Decompress keeps the first two characters and renders the remaining hex
// content, sentinel included, as dot-separated decimal byte values.
//
//	fc991dd7-0033-4b80-9d41-c8a86a702e59 -> fc153.29.215.0.51.75.128.157.65.200.168.106.112.46.89
func Decompress(input string) string {
	out, err := TryDecompress(input)
	return orInput(OpDecompress, input, out, err)
}

// TryDecompress is Decompress with an error explaining the fallback.
func TryDecompress(input string) (string, error) {
	return transformSuffixed(OpDecompress, input, decompressBase)
}

func decompressBase(base string) (string, error) {
	header, rest := splitRunes(base, decompressHeaderLen)
	raw, err := sentinelBytes(OpDecompress, rest)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(raw))
	for i, b := range raw {
		parts[i] = strconv.Itoa(int(b))
	}
	return header + strings.Join(parts, "."), nil
}

// Reconstruct recovers a 22-character value from a packed identifier: the
// packed tail is base64-decoded, prefixed with the five-character header,
// run through Decompress, and the first four characters of that result are
// joined with the original tail.
//
//	fc9913XADNLgJ1ByKhqcC5Z -> fc153XADNLgJ1ByKhqcC5Z
func Reconstruct(input string) string {
	out, err := TryReconstruct(input)
	return orInput(OpReconstruct, input, out, err)
}

// TryReconstruct is Reconstruct with an error explaining the fallback.
func TryReconstruct(input string) (string, error) {
	return transformSuffixed(OpReconstruct, input, reconstructBase)
}

func reconstructBase(base string) (string, error) {
	header, end := splitRunes(base, compressHeaderLen)

	padded := end
	switch len(end) % 3 {
	case 1:
		padded += "=="
	case 2:
		padded += "="
	}

	long := header + hex.EncodeToString(encoding.DecodeBase64Lenient(padded))

	// A Decompress fallback is part of the contract: the intermediate value
	// itself is truncated then.
	expanded, err := decompressBase(long)
	if err != nil {
		expanded = long
	}
	head, _ := splitRunes(expanded, reconstructKeep)
	return head + end, nil
}

// sentinelBytes strips hyphens from content, appends the sentinel and parses
// the result as hex pairs.
func sentinelBytes(op, content string) ([]byte, error) {
	digits := strings.ReplaceAll(content, "-", "") + sentinel
	raw, err := encoding.HexPairsToBytes(digits)
	if err != nil {
		return nil, errs.NewCodecError(errs.ErrorTypeHex, op, err)
	}
	return raw, nil
}
