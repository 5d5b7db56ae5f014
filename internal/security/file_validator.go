package security

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// ErrBinaryContent is returned for files that hold binary data under a
	// text asset name.
	ErrBinaryContent = errors.New("binary content")
	// ErrNotJSON is returned for JSON asset types whose content does not
	// start like a JSON document.
	ErrNotJSON = errors.New("not a JSON document")
)

// FileValidator checks that a file matched by the include patterns really
// holds text asset data before identifiers are extracted from it. Images,
// audio and bundles live next to their .meta files and a mis-typed glob
// should not turn those into id sources.
type FileValidator struct {
	HeaderSize int // bytes inspected from the start of the file
}

func NewFileValidator() *FileValidator {
	return &FileValidator{
		HeaderSize: 8 * 1024,
	}
}

// jsonAssetExts are serialized as JSON by the editor.
var jsonAssetExts = map[string]bool{
	".meta":             true,
	".scene":            true,
	".prefab":           true,
	".anim":             true,
	".mtl":              true,
	".pmtl":             true,
	".physics-material": true,
	".json":             true,
}

// magicBytes are signatures of binary formats commonly found in asset trees.
var magicBytes = []struct {
	name  string
	magic []byte
}{
	{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	{"jpeg", []byte{0xFF, 0xD8, 0xFF}},
	{"gif", []byte("GIF8")},
	{"webp", []byte("RIFF")},
	{"zip", []byte{0x50, 0x4B, 0x03, 0x04}},
	{"gzip", []byte{0x1F, 0x8B}},
	{"ogg", []byte("OggS")},
	{"mp3", []byte("ID3")},
	{"pdf", []byte("%PDF-")},
	{"wasm", []byte{0x00, 0x61, 0x73, 0x6D}},
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Validate inspects the start of content. path is only used for its
// extension and in error messages.
func (fv *FileValidator) Validate(path string, content []byte) error {
	header := content
	if fv.HeaderSize > 0 && len(header) > fv.HeaderSize {
		header = header[:fv.HeaderSize]
	}
	if len(header) == 0 {
		return nil
	}

	if name, ok := fv.checkMagicBytes(header); ok {
		return fmt.Errorf("%s: %w (%s signature)", path, ErrBinaryContent, name)
	}
	if fv.isBinaryData(header) {
		return fmt.Errorf("%s: %w", path, ErrBinaryContent)
	}
	return fv.validateAssetFile(path, header)
}

func (fv *FileValidator) checkMagicBytes(header []byte) (string, bool) {
	for _, m := range magicBytes {
		if bytes.HasPrefix(header, m.magic) {
			return m.name, true
		}
	}
	return "", false
}

// isBinaryData reports whether more than 30% of data is control characters
// other than tab, LF and CR.
func (fv *FileValidator) isBinaryData(data []byte) bool {
	nonPrintable := 0
	for _, b := range data {
		if b < 9 || (b > 13 && b < 32) || b == 127 {
			nonPrintable++
		}
	}
	return float64(nonPrintable)/float64(len(data)) > 0.3
}

func (fv *FileValidator) validateAssetFile(path string, header []byte) error {
	if !jsonAssetExts[strings.ToLower(filepath.Ext(path))] {
		return nil
	}
	trimmed := bytes.TrimLeft(bytes.TrimPrefix(header, utf8BOM), " \t\r\n")
	if len(trimmed) == 0 {
		return nil
	}
	if trimmed[0] != '{' && trimmed[0] != '[' {
		return fmt.Errorf("%s: %w", path, ErrNotJSON)
	}
	return nil
}
