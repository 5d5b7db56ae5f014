package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/assetid/internal/idcodec"
)

const (
	sampleStandard = "fc991dd7-0033-4b80-9d41-c8a86a702e59"
	sampleShort    = "fcmR3XADNLgJ1ByKhqcC5Z"
	samplePacked   = "fc9913XADNLgJ1ByKhqcC5Z"
)

const sampleMeta = `{
  "ver": "1.1.50",
  "importer": "image",
  "uuid": "fc991dd7-0033-4b80-9d41-c8a86a702e59",
  "subMetas": {
    "6c48a": {
      "uuid": "fc991dd7-0033-4b80-9d41-c8a86a702e59@6c48a",
      "importer": "texture"
    }
  }
}
`

const samplePrefab = `[
  {
    "__type__": "cc.Prefab",
    "_name": "Hero"
  },
  {
    "__type__": "fc9913XADNLgJ1ByKhqcC5Z",
    "_spriteFrame": {
      "__uuid__": "fcmR3XADNLgJ1ByKhqcC5Z@f9941",
      "__expectedType__": "cc.SpriteFrame"
    }
  }
]
`

func TestExtract_Meta(t *testing.T) {
	occ := Extract("hero.png.meta", []byte(sampleMeta))
	require.Len(t, occ, 2)

	assert.Equal(t, sampleStandard, occ[0].ID)
	assert.Equal(t, idcodec.KindStandard, occ[0].Kind)
	assert.Equal(t, 4, occ[0].Line)
	assert.Equal(t, "hero.png.meta", occ[0].Path)

	assert.Equal(t, sampleStandard+"@6c48a", occ[1].ID)
	assert.Equal(t, 7, occ[1].Line)
}

func TestExtract_PrefabKeyedValues(t *testing.T) {
	occ := Extract("hero.prefab", []byte(samplePrefab))
	require.Len(t, occ, 2, "cc.Prefab and cc.SpriteFrame are class names, not ids")

	assert.Equal(t, samplePacked, occ[0].ID)
	assert.Equal(t, idcodec.KindPacked, occ[0].Kind)
	assert.Equal(t, 7, occ[0].Line)

	assert.Equal(t, sampleShort+"@f9941", occ[1].ID)
	assert.Equal(t, idcodec.KindShort, occ[1].Kind)
	assert.Equal(t, 9, occ[1].Line)
}

func TestExtract_FreeTextShortIDsIgnored(t *testing.T) {
	occ := Extract("notes.txt", []byte("see "+sampleShort+" and "+samplePacked))
	assert.Empty(t, occ)
}

func TestExtract_StandardInFreeText(t *testing.T) {
	occ := Extract("log.txt", []byte("line one\nopened FC991DD7-0033-4B80-9D41-C8A86A702E59 ok\n"))
	require.Len(t, occ, 1)
	assert.Equal(t, "FC991DD7-0033-4B80-9D41-C8A86A702E59", occ[0].ID)
	assert.Equal(t, 2, occ[0].Line)
}

func TestExtract_Empty(t *testing.T) {
	assert.Empty(t, Extract("empty", nil))
}

func TestLineIndex(t *testing.T) {
	li := newLineIndex([]byte("a\nbc\n\nd"))
	assert.Equal(t, 1, li.lineAt(0))
	assert.Equal(t, 1, li.lineAt(1))
	assert.Equal(t, 2, li.lineAt(2))
	assert.Equal(t, 2, li.lineAt(4))
	assert.Equal(t, 3, li.lineAt(5))
	assert.Equal(t, 4, li.lineAt(6))
}
