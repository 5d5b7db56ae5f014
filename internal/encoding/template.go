package encoding

// Standard identifier layout: 8-4-4-4-12 hex digits with hyphens between groups.
const (
	TemplateLength = 36
	FillSlotCount  = 32
)

// HyphenPositions are the fixed hyphen offsets of a standard identifier.
var HyphenPositions = [4]int{8, 13, 18, 23}

var fillSlots [FillSlotCount]int

func init() {
	j := 0
	for i := 0; i < TemplateLength; i++ {
		if isHyphenPosition(i) {
			continue
		}
		fillSlots[j] = i
		j++
	}
}

func isHyphenPosition(i int) bool {
	for _, p := range HyphenPositions {
		if p == i {
			return true
		}
	}
	return false
}

// FillSlots returns the ordered template offsets that hold hex digits.
func FillSlots() [FillSlotCount]int {
	return fillSlots
}

// NewTemplate returns a blank standard identifier layout with the hyphens
// already in place and '0' in every fill slot.
func NewTemplate() [TemplateLength]byte {
	var t [TemplateLength]byte
	for i := range t {
		t[i] = '0'
	}
	for _, p := range HyphenPositions {
		t[p] = '-'
	}
	return t
}
