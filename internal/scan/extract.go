package scan

import (
	"bytes"
	"regexp"

	"github.com/standardbeagle/assetid/internal/idcodec"
)

var (
	// Standard ids can appear anywhere: meta files, prefab references, logs.
	standardPattern = regexp.MustCompile(`(?i)\b[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}(?:@[0-9a-z_-]+)?`)

	// Short and packed ids are only trusted as values of known keys; 22 or 23
	// free-floating characters are far too common otherwise.
	keyedPattern = regexp.MustCompile(`"(?:uuid|__uuid__|__type__|__expectedType__)"\s*:\s*"([^"\s]+)"`)
)

// Occurrence is one identifier found in a file.
type Occurrence struct {
	ID   string
	Kind idcodec.Kind
	Path string
	Line int
}

// Extract returns every identifier in content, in file order.
func Extract(path string, content []byte) []Occurrence {
	var out []Occurrence
	lines := newLineIndex(content)

	for _, loc := range standardPattern.FindAllIndex(content, -1) {
		out = append(out, Occurrence{
			ID:   string(content[loc[0]:loc[1]]),
			Kind: idcodec.KindStandard,
			Path: path,
			Line: lines.lineAt(loc[0]),
		})
	}

	for _, m := range keyedPattern.FindAllSubmatchIndex(content, -1) {
		value := string(content[m[2]:m[3]])
		kind := idcodec.Classify(value)
		// Standard values were already picked up above
		if kind != idcodec.KindShort && kind != idcodec.KindPacked {
			continue
		}
		out = append(out, Occurrence{
			ID:   value,
			Kind: kind,
			Path: path,
			Line: lines.lineAt(m[2]),
		})
	}

	sortOccurrences(out)
	return out
}

// lineIndex maps byte offsets to 1-based line numbers.
type lineIndex []int

func newLineIndex(content []byte) lineIndex {
	idx := lineIndex{0}
	for off := 0; ; {
		i := bytes.IndexByte(content[off:], '\n')
		if i < 0 {
			return idx
		}
		off += i + 1
		idx = append(idx, off)
	}
}

func (li lineIndex) lineAt(offset int) int {
	lo, hi := 0, len(li)
	for lo < hi {
		mid := (lo + hi) / 2
		if li[mid] <= offset {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}
