package encoding

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBase64Value_Alphabet(t *testing.T) {
	tests := []struct {
		char     rune
		expected byte
	}{
		{'A', 0},
		{'Z', 25},
		{'a', 26},
		{'z', 51},
		{'0', 52},
		{'9', 61},
		{'+', 62},
		{'/', 63},
	}

	for _, tc := range tests {
		t.Run(string(tc.char), func(t *testing.T) {
			assert.Equal(t, tc.expected, Base64Value(tc.char))
		})
	}
}

func TestBase64Value_Padding(t *testing.T) {
	for _, c := range []rune{'=', '!', '@', ' ', '`', 0} {
		assert.Equal(t, byte(PaddingValue), Base64Value(c), "char %q", c)
	}
}

func TestBase64Value_BeyondTable(t *testing.T) {
	for _, c := range []rune{'{', '~', 'é', '\uFFFD', 0xD83D, -1} {
		assert.Equal(t, byte(0), Base64Value(c), "char %q", c)
	}
}

func TestBase64Value_EveryKeyRoundTrips(t *testing.T) {
	for i := 0; i < 64; i++ {
		assert.Equal(t, byte(i), Base64Value(rune(Base64Keys[i])))
	}
}

func TestHexChar(t *testing.T) {
	assert.Equal(t, byte('0'), HexChar(0))
	assert.Equal(t, byte('a'), HexChar(10))
	assert.Equal(t, byte('f'), HexChar(15))
	// Only the low nibble counts
	assert.Equal(t, byte('0'), HexChar(16))
}

func TestHexPairsToBytes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []byte
	}{
		{"empty", "", []byte{}},
		{"single char ignored", "f", []byte{}},
		{"one pair", "ff", []byte{0xff}},
		{"odd tail ignored", "0a1", []byte{0x0a}},
		{"uppercase", "AbCd", []byte{0xab, 0xcd}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := HexPairsToBytes(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, result)
		})
	}
}

func TestHexPairsToBytes_Invalid(t *testing.T) {
	for _, s := range []string{"zz", "0g", "a-", "12 4"} {
		t.Run(s, func(t *testing.T) {
			_, err := HexPairsToBytes(s)
			assert.ErrorIs(t, err, ErrInvalidHex)
		})
	}
}

func TestDecodeBase64Lenient_MatchesStrictOnCanonicalInput(t *testing.T) {
	inputs := [][]byte{
		{},
		{0x00},
		{0xfb, 0xff},
		{0x01, 0x02, 0x03},
		[]byte("hello, asset"),
	}

	for _, raw := range inputs {
		encoded := base64.StdEncoding.EncodeToString(raw)
		assert.Equal(t, raw, DecodeBase64Lenient(encoded), "input %q", encoded)
	}
}

func TestDecodeBase64Lenient_Unpadded(t *testing.T) {
	// 18 characters carry 13 whole bytes plus 4 dropped bits
	raw := []byte{0x1d, 0xd7, 0x00, 0x33, 0x4b, 0x80, 0x9d, 0x41, 0xc8, 0xa8, 0x6a, 0x70, 0x2e}
	encoded := base64.RawStdEncoding.EncodeToString(raw)
	decoded := DecodeBase64Lenient(encoded[:18])
	assert.Equal(t, raw, decoded)
}

func TestDecodeBase64Lenient_Permissive(t *testing.T) {
	assert.Equal(t, []byte{0xfb, 0xff}, DecodeBase64Lenient("-_8"), "URL-safe characters")
	assert.Equal(t, []byte("hi"), DecodeBase64Lenient("aG k!"), "junk is skipped")
	assert.Equal(t, []byte("hi"), DecodeBase64Lenient("a~G{ék"), "codes past the table are skipped")
	assert.Equal(t, []byte("h"), DecodeBase64Lenient("aG=k"), "stops at padding")
	assert.Empty(t, DecodeBase64Lenient("a"), "single char has no whole byte")
}

func TestTemplate(t *testing.T) {
	tmpl := NewTemplate()
	assert.Equal(t, "00000000-0000-0000-0000-000000000000", string(tmpl[:]))

	slots := FillSlots()
	assert.Equal(t, 0, slots[0])
	assert.Equal(t, 7, slots[7])
	assert.Equal(t, 9, slots[8], "first slot after the first hyphen")
	assert.Equal(t, 35, slots[FillSlotCount-1])
	for _, s := range slots {
		assert.NotEqual(t, byte('-'), tmpl[s])
	}
}

func BenchmarkDecodeBase64Lenient(b *testing.B) {
	for i := 0; i < b.N; i++ {
		DecodeBase64Lenient("HddwAzS4CdQcioanAu")
	}
}
