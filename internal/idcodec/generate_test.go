package idcodec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateShortID(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := GenerateShortID()
		require.Len(t, id, ShortLength)
		for _, c := range id {
			require.True(t, strings.ContainsRune(shortIDAlphabet, c), "unexpected %q in %s", c, id)
		}
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, 1000, "22 random characters should not collide in 1000 draws")
}

func TestGenerateShortID_Decodes(t *testing.T) {
	id := GenerateShortID()
	assertStandardShape(t, Decode(id))
}

func TestGenerateStandardID(t *testing.T) {
	for i := 0; i < 1000; i++ {
		id := GenerateStandardID()
		require.True(t, IsValidStandardID(id), id)
		assert.Equal(t, byte('4'), id[14], "version nibble of %s", id)
		assert.Contains(t, "89ab", string(id[19]), "variant nibble of %s", id)
	}
}

func TestIsValidStandardID(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"00000000-0000-0000-0000-000000000000", true},
		{"ffffffff-ffff-ffff-ffff-ffffffffffff", true},
		{"FC991DD7-0033-4B80-9D41-C8A86A702E59", true},
		{"fc991dd7-0033-4b80-9d41-c8a86a702e59", true},
		{"not-a-uuid", false},
		{"", false},
		{"fc991dd7-0033-4b80-9d41-c8a86a702e5", false},
		{"fc991dd7-0033-4b80-9d41-c8a86a702e59@f9941", false},
		{"fc991dd700334b809d41c8a86a702e59", false},
		{"{fc991dd7-0033-4b80-9d41-c8a86a702e59}", false},
		{"gc991dd7-0033-4b80-9d41-c8a86a702e59", false},
		{" fc991dd7-0033-4b80-9d41-c8a86a702e59", false},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.valid, IsValidStandardID(tc.input))
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		input    string
		expected Kind
	}{
		{sampleStandard, KindStandard},
		{sampleStandard + "@f9941", KindStandard},
		{sampleShort, KindShort},
		{sampleShort + "@f9941", KindShort},
		{samplePacked, KindPacked},
		{"😀" + strings.Repeat("A", 20), KindShort},
		{"db://assets/ui/main-menu.scene", KindUnknown},
		{"", KindUnknown},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, Classify(tc.input))
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "standard", KindStandard.String())
	assert.Equal(t, "short", KindShort.String())
	assert.Equal(t, "packed", KindPacked.String())
	assert.Equal(t, "unknown", KindUnknown.String())
	assert.Equal(t, "unknown", Kind(99).String())
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, sampleStandard, Normalize(sampleShort))
	assert.Equal(t, sampleStandard+"@f9941", Normalize(sampleShort+"@f9941"))
	assert.Equal(t, sampleStandard+"@F9941", Normalize(strings.ToUpper(sampleStandard)+"@F9941"))
	assert.Equal(t, samplePacked, Normalize(samplePacked))
	assert.Equal(t, "db://assets/a.prefab", Normalize("db://assets/a.prefab"))
}
