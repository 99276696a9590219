package normalizers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zhnorm/internal/pkg/zhnorm/align"
)

func TestMarshal(t *testing.T) {
	t.Run("Should write the Bert configuration with its tag", func(t *testing.T) {
		n, err := NewBert()
		require.NoError(t, err)
		data, err := Marshal(n)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"type": "BertNormalizer",
			"clean_text": true,
			"handle_chinese_chars": true,
			"separate_numbers": false,
			"strip_accents": null,
			"lowercase": true,
			"special_chars": "",
			"zh_norm": false
		}`, string(data))
	})

	t.Run("Should write nested sequences", func(t *testing.T) {
		n := NewSequence(NewLowercase(), NewSequence(NewStrip(false, true)))
		data, err := Marshal(n)
		require.NoError(t, err)
		assert.JSONEq(t, `{"type": "Sequence", "normalizers": [
			{"type": "Lowercase"},
			{"type": "Sequence", "normalizers": [
				{"type": "Strip", "strip_left": false, "strip_right": true}
			]}
		]}`, string(data))
	})

	t.Run("Should write an empty sequence as an empty list", func(t *testing.T) {
		data, err := Marshal(NewSequence())
		require.NoError(t, err)
		assert.JSONEq(t, `{"type": "Sequence", "normalizers": []}`, string(data))
	})

	t.Run("Should reject a nil normalizer", func(t *testing.T) {
		_, err := Marshal(nil)
		require.ErrorIs(t, err, ErrInvalidConfiguration)
	})
}

func TestUnmarshal(t *testing.T) {
	t.Run("Should fill omitted Bert options with defaults", func(t *testing.T) {
		n, err := Unmarshal([]byte(`{"type": "BertNormalizer", "zh_norm": true, "special_chars": "$"}`))
		require.NoError(t, err)
		bert, ok := n.(*Bert)
		require.True(t, ok)
		cfg := bert.Config()
		assert.True(t, cfg.CleanText)
		assert.True(t, cfg.HandleChineseChars)
		assert.True(t, cfg.Lowercase)
		assert.True(t, cfg.ZhNorm)
		assert.Equal(t, "$", cfg.SpecialChars)
		assert.Nil(t, cfg.StripAccents)
	})

	t.Run("Should default Strip to both sides", func(t *testing.T) {
		n, err := Unmarshal([]byte(`{"type": "Strip"}`))
		require.NoError(t, err)
		strip := n.(*Strip)
		assert.True(t, strip.Left())
		assert.True(t, strip.Right())
	})

	t.Run("Should round trip every preset", func(t *testing.T) {
		for _, name := range Presets() {
			n, err := Preset(name)
			require.NoError(t, err)
			data, err := Marshal(n)
			require.NoError(t, err)

			decoded, err := Unmarshal(data)
			require.NoError(t, err, name)
			assert.Equal(t, n, decoded, name)

			const text = "  Hello 世界 123 联系 \u00c9t\u00e9  "
			assert.Equal(t, NormalizeString(n, text), NormalizeString(decoded, text), name)
		}
	})

	errorCases := []struct {
		name  string
		input string
	}{
		{"Should reject malformed JSON", `{"type": `},
		{"Should reject a non object", `["Lowercase"]`},
		{"Should reject a missing type", `{"strip_left": true}`},
		{"Should reject a non string type", `{"type": 3}`},
		{"Should reject unknown fields", `{"type": "Lowercase", "extra": 1}`},
		{"Should reject a mistyped option", `{"type": "BertNormalizer", "lowercase": "yes"}`},
		{"Should reject a key spelled in another case", `{"type": "Strip", "STRIP_LEFT": false}`},
		{"Should reject a duplicate type", `{"type": "Strip", "type": "Lowercase"}`},
		{"Should reject a duplicate option", `{"type": "Strip", "strip_left": true, "strip_left": false}`},
		{"Should reject a mixed case key in a child", `{"type": "Sequence", "normalizers": [{"type": "Strip", "Strip_Right": false}]}`},
		{"Should reject a bad child", `{"type": "Sequence", "normalizers": [{"type": "Lowercase"}, {"type": "Nope"}]}`},
	}
	for _, tt := range errorCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.input))
			require.ErrorIs(t, err, ErrInvalidConfiguration)
		})
	}

	t.Run("Should name an unknown kind and the failing child", func(t *testing.T) {
		_, err := Unmarshal([]byte(`{"type": "Sequence", "normalizers": [{"type": "Lowercase"}, {"type": "Nope"}]}`))
		require.ErrorIs(t, err, ErrUnknownKind)
		assert.Contains(t, err.Error(), "normalizer 1")
		assert.Contains(t, err.Error(), `"Nope"`)
	})
}

func TestYAML(t *testing.T) {
	t.Run("Should round trip through YAML", func(t *testing.T) {
		bert, err := NewBert(WithSeparateNumbers(true), WithStripAccents(false))
		require.NoError(t, err)
		n := NewSequence(bert, NewStrip(true, false))

		data, err := MarshalYAML(n)
		require.NoError(t, err)
		assert.Contains(t, string(data), "type: Sequence")

		decoded, err := UnmarshalYAML(data)
		require.NoError(t, err)
		assert.Equal(t, n, decoded)
	})

	t.Run("Should read a hand written document", func(t *testing.T) {
		doc := []byte(`
type: Sequence
normalizers:
  - type: BertNormalizer
    zh_norm: true
    handle_chinese_chars: false
    lowercase: false
  - type: Strip
    strip_right: false
`)
		n, err := UnmarshalYAML(doc)
		require.NoError(t, err)
		assert.Equal(t, "聯繫 ", NormalizeString(n, "  联系 "))
	})

	t.Run("Should reject broken YAML", func(t *testing.T) {
		_, err := UnmarshalYAML([]byte("type: [unclosed"))
		require.ErrorIs(t, err, ErrInvalidConfiguration)
	})
}

func TestLoadSave(t *testing.T) {
	dir := t.TempDir()
	n := NewSequence(NewLowercase(), NewStrip(true, true))

	for _, name := range []string{"norm.json", "norm.yaml", "norm.yml"} {
		t.Run("Should save and load "+name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, Save(path, n))

			loaded, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, n, loaded)
		})
	}

	t.Run("Should report a missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "missing.json"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

type upper struct{}

func (upper) Kind() string { return "TestUpper" }

func (upper) Normalize(b *align.Buffer) {
	b.MapRune(func(r rune) rune {
		if r >= 'a' && r <= 'z' {
			return r - 'a' + 'A'
		}
		return r
	})
}

func TestRegister(t *testing.T) {
	t.Run("Should list the built in kinds", func(t *testing.T) {
		kinds := Kinds()
		for _, kind := range []string{KindBert, KindLowercase, KindSequence, KindStrip} {
			assert.Contains(t, kinds, kind)
			assert.True(t, IsRegistered(kind))
		}
		assert.IsIncreasing(t, kinds)
	})

	t.Run("Should decode a registered custom kind inside a sequence", func(t *testing.T) {
		if !IsRegistered("TestUpper") {
			Register("TestUpper", func([]byte) (Normalizer, error) { return upper{}, nil })
		}
		n, err := Unmarshal([]byte(`{"type": "Sequence", "normalizers": [{"type": "TestUpper"}]}`))
		require.NoError(t, err)
		assert.Equal(t, "ABC", NormalizeString(n, "abc"))
	})

	t.Run("Should panic on a duplicate kind", func(t *testing.T) {
		assert.Panics(t, func() { Register(KindBert, decodeBert) })
	})

	t.Run("Should panic on a nil decoder", func(t *testing.T) {
		assert.Panics(t, func() { Register("TestNil", nil) })
	})
}

func TestPreset(t *testing.T) {
	t.Run("Should build every listed preset", func(t *testing.T) {
		for _, name := range Presets() {
			n, err := Preset(name)
			require.NoError(t, err, name)
			assert.NotNil(t, n)
		}
	})

	t.Run("Should reject an unknown preset", func(t *testing.T) {
		_, err := Preset("nope")
		require.ErrorIs(t, err, ErrInvalidConfiguration)
	})
}
