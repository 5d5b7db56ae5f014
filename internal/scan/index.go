package scan

import (
	"cmp"
	"slices"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/standardbeagle/assetid/internal/idcodec"
)

// Entry is one unique identifier and where it was seen.
type Entry struct {
	ID       string   `json:"id"`
	Kind     string   `json:"kind"`
	Standard string   `json:"standard,omitempty"`
	Count    int      `json:"count"`
	Files    []string `json:"files"`
}

type entry struct {
	id       string
	kind     idcodec.Kind
	standard string
	perFile  map[string]int
}

func (e *entry) snapshot() Entry {
	files := make([]string, 0, len(e.perFile))
	count := 0
	for f, n := range e.perFile {
		files = append(files, f)
		count += n
	}
	slices.Sort(files)
	return Entry{
		ID:       e.id,
		Kind:     e.kind.String(),
		Standard: e.standard,
		Count:    count,
		Files:    files,
	}
}

// Index deduplicates identifiers across files. Identifiers are bucketed by
// their xxhash; buckets hold the rare colliding ids side by side.
type Index struct {
	mu      sync.RWMutex
	buckets map[uint64][]*entry
	files   map[string][]string
	size    int
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{
		buckets: make(map[uint64][]*entry),
		files:   make(map[string][]string),
	}
}

// Set replaces everything known about path with occ. It returns the
// identifiers that were not in the index before.
func (ix *Index) Set(path string, occ []Occurrence) []Entry {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.removeLocked(path)

	var added []*entry
	ids := make([]string, 0, len(occ))
	for _, o := range occ {
		e, created := ix.getOrCreateLocked(o.ID, o.Kind)
		if created {
			added = append(added, e)
		}
		if e.perFile[path] == 0 {
			ids = append(ids, o.ID)
		}
		e.perFile[path]++
	}
	if len(ids) > 0 {
		ix.files[path] = ids
	}

	out := make([]Entry, len(added))
	for i, e := range added {
		out[i] = e.snapshot()
	}
	return out
}

// Remove forgets path. Identifiers seen only there disappear.
func (ix *Index) Remove(path string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.removeLocked(path)
}

// Len returns the number of unique identifiers.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.size
}

// Files returns the number of files with at least one identifier.
func (ix *Index) Files() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.files)
}

// Lookup returns the entry for id, if any.
func (ix *Index) Lookup(id string) (Entry, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	for _, e := range ix.buckets[xxhash.Sum64String(id)] {
		if e.id == id {
			return e.snapshot(), true
		}
	}
	return Entry{}, false
}

// Entries returns all identifiers sorted by id.
func (ix *Index) Entries() []Entry {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	out := make([]Entry, 0, ix.size)
	for _, bucket := range ix.buckets {
		for _, e := range bucket {
			out = append(out, e.snapshot())
		}
	}
	slices.SortFunc(out, func(a, b Entry) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

func (ix *Index) getOrCreateLocked(id string, kind idcodec.Kind) (*entry, bool) {
	h := xxhash.Sum64String(id)
	for _, e := range ix.buckets[h] {
		if e.id == id {
			return e, false
		}
	}
	e := &entry{
		id:       id,
		kind:     kind,
		standard: standardForm(id),
		perFile:  make(map[string]int),
	}
	ix.buckets[h] = append(ix.buckets[h], e)
	ix.size++
	return e, true
}

func (ix *Index) removeLocked(path string) {
	for _, id := range ix.files[path] {
		h := xxhash.Sum64String(id)
		bucket := ix.buckets[h]
		for i, e := range bucket {
			if e.id != id {
				continue
			}
			delete(e.perFile, path)
			if len(e.perFile) == 0 {
				bucket = slices.Delete(bucket, i, i+1)
				ix.size--
			}
			break
		}
		if len(bucket) == 0 {
			delete(ix.buckets, h)
		} else {
			ix.buckets[h] = bucket
		}
	}
	delete(ix.files, path)
}

// standardForm is the lowercase standard id for id, or "" when the packed
// form has no recoverable standard id.
func standardForm(id string) string {
	n := idcodec.Normalize(id)
	base, _, _ := idcodec.SplitSuffix(n)
	if !idcodec.IsValidStandardID(base) {
		return ""
	}
	return n
}

func sortOccurrences(occ []Occurrence) {
	slices.SortStableFunc(occ, func(a, b Occurrence) int { return cmp.Compare(a.Line, b.Line) })
}
