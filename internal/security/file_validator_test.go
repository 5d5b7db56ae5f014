package security

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileValidator(t *testing.T) {
	validator := NewFileValidator()

	t.Run("MetaFile", func(t *testing.T) {
		content := `{
  "ver": "1.0.27",
  "uuid": "fc991dd7-0033-4b80-9d41-c8a86a702e59"
}`
		assert.NoError(t, validator.Validate("hero.png.meta", []byte(content)))
	})

	t.Run("PrefabArray", func(t *testing.T) {
		assert.NoError(t, validator.Validate("hero.prefab", []byte(`[{"__type__": "cc.Prefab"}]`)))
	})

	t.Run("BOMAndWhitespace", func(t *testing.T) {
		content := append([]byte{0xEF, 0xBB, 0xBF}, []byte("\r\n  {\"uuid\": \"x\"}")...)
		assert.NoError(t, validator.Validate("a.scene", content))
	})

	t.Run("EmptyFile", func(t *testing.T) {
		assert.NoError(t, validator.Validate("new.meta", nil))
		assert.NoError(t, validator.Validate("new.meta", []byte("  \n")))
	})

	t.Run("EffectIsNotJSON", func(t *testing.T) {
		content := "CCEffect %{\n  techniques:\n  - passes:\n    - vert: sprite-vs:vert\n}%"
		assert.NoError(t, validator.Validate("sprite.effect", []byte(content)))
	})

	t.Run("PNGSavedAsMeta", func(t *testing.T) {
		content := append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, bytes.Repeat([]byte("x"), 64)...)
		err := validator.Validate("icon.meta", content)
		assert.ErrorIs(t, err, ErrBinaryContent)
		assert.Contains(t, err.Error(), "png")
	})

	t.Run("GzipBundle", func(t *testing.T) {
		err := validator.Validate("bundle.scene", []byte{0x1F, 0x8B, 0x08, 0x00})
		assert.ErrorIs(t, err, ErrBinaryContent)
	})

	t.Run("ControlCharacters", func(t *testing.T) {
		content := bytes.Repeat([]byte{0x01, 0x02, 'a'}, 100)
		assert.ErrorIs(t, validator.Validate("data.anim", content), ErrBinaryContent)
	})

	t.Run("PlainTextUnderJSONExtension", func(t *testing.T) {
		err := validator.Validate("notes.meta", []byte("remember to re-import"))
		assert.ErrorIs(t, err, ErrNotJSON)
		assert.Contains(t, err.Error(), "notes.meta")
	})

	t.Run("ExtensionIsCaseInsensitive", func(t *testing.T) {
		assert.ErrorIs(t, validator.Validate("NOTES.META", []byte("text")), ErrNotJSON)
	})

	t.Run("OtherTextFiles", func(t *testing.T) {
		assert.NoError(t, validator.Validate("ids.txt", []byte("fc991dd7-0033-4b80-9d41-c8a86a702e59\n")))
	})
}

func TestFileValidator_HeaderSizeLimitsInspection(t *testing.T) {
	validator := &FileValidator{HeaderSize: 16}
	content := append([]byte(`{"uuid": "abc"} `), bytes.Repeat([]byte{0x00}, 1024)...)
	assert.NoError(t, validator.Validate("a.meta", content))

	validator.HeaderSize = 0
	assert.ErrorIs(t, validator.Validate("a.meta", content), ErrBinaryContent)
}
