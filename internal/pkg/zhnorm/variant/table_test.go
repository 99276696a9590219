package variant

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("Should read entries and skip comments", func(t *testing.T) {
		table, err := Parse(strings.NewReader("# header\n\na\tb\n\\u0000\t\\s\nxy\tZ\r\n"))
		require.NoError(t, err)
		assert.Equal(t, 3, table.Len())
		assert.Equal(t, 2, table.MaxKeyLen())

		v, ok := table.Lookup(0)
		require.True(t, ok)
		assert.Equal(t, " ", v)
		assert.Equal(t, "Z", table.Convert("xy"))
	})

	t.Run("Should keep leading spaces in values", func(t *testing.T) {
		table, err := Parse(strings.NewReader("q\t o能\n"))
		require.NoError(t, err)
		v, ok := table.Lookup('q')
		require.True(t, ok)
		assert.Equal(t, " o能", v)
	})

	t.Run("Should reject a line without a tab", func(t *testing.T) {
		_, err := Parse(strings.NewReader("a\tb\nbroken\n"))
		require.ErrorIs(t, err, ErrMalformedEntry)
		assert.Contains(t, err.Error(), "line 2")
	})

	t.Run("Should reject an empty value", func(t *testing.T) {
		_, err := Parse(strings.NewReader("a\t\n"))
		require.ErrorIs(t, err, ErrMalformedEntry)
	})
}

func TestNew(t *testing.T) {
	t.Run("Should build a table from a map", func(t *testing.T) {
		table, err := New(map[string]string{"a": "A", "abc": "X"})
		require.NoError(t, err)
		assert.Equal(t, "Xb", table.Convert("abcb"))
		assert.Equal(t, 3, table.MaxKeyLen())
	})

	t.Run("Should reject invalid UTF-8", func(t *testing.T) {
		_, err := New(map[string]string{"\xff": "A"})
		require.ErrorIs(t, err, ErrMalformedEntry)
	})

	t.Run("Should report an empty table", func(t *testing.T) {
		table, err := New(nil)
		require.NoError(t, err)
		assert.Equal(t, 0, table.Len())
		assert.Equal(t, 0, table.MaxKeyLen())
		assert.Equal(t, "abc", table.Convert("abc"))
	})
}

func TestTable_Match(t *testing.T) {
	table, err := New(map[string]string{"a": "1", "ab": "2", "abc": "3"})
	require.NoError(t, err)

	tests := []struct {
		name  string
		input string
		at    int
		n     int
		value string
		ok    bool
	}{
		{"Should prefer the longest phrase", "abcd", 0, 3, "3", true},
		{"Should fall back to a shorter phrase", "abd", 0, 2, "2", true},
		{"Should fall back to a single character", "ad", 0, 1, "1", true},
		{"Should not match a phrase cut by the end", "xab", 1, 2, "2", true},
		{"Should report no match", "xyz", 0, 0, "", false},
		{"Should ignore an out of range index", "a", 1, 0, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, value, ok := table.Match([]rune(tt.input), tt.at)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.n, n)
			assert.Equal(t, tt.value, value)
		})
	}
}

func TestDefault(t *testing.T) {
	table := Default()
	require.NotNil(t, table)
	assert.Same(t, table, Default())
	assert.Greater(t, table.Len(), 500)

	t.Run("Should apply the custom variants", func(t *testing.T) {
		assert.Equal(t,
			"系列 聯系 << 聯繫  o氹 氹 席 榮 折木  o能 <n>  ",
			table.Convert("系列 聯系 « 联系 𠱁 氹 𥱊 栄 梊 𠹌 <n> \x00"),
		)
	})

	t.Run("Should resolve context dependent characters by phrase", func(t *testing.T) {
		assert.Equal(t, "頭髮", table.Convert("头发"))
		assert.Equal(t, "頭髮絲", table.Convert("头发丝"))
		assert.Equal(t, "系", table.Convert("系"))
	})

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Should keep 于 as a surname", "于先生", "于先生"},
		{"Should convert 于 inside a phrase", "关于", "關於"},
		{"Should keep a lone 钟", "钟", "钟"},
		{"Should convert 钟 for a clock", "时钟", "時鐘"},
		{"Should convert 钟 for affection", "钟情", "鍾情"},
		{"Should convert 历 for history", "历史", "歷史"},
		{"Should convert 历 for a calendar", "日历", "日曆"},
		{"Should keep a lone 发", "发", "发"},
		{"Should convert 发 for development", "发展", "發展"},
		{"Should convert 获 for a harvest", "收获", "收穫"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, table.Convert(tt.input))
		})
	}

	t.Run("Should map characters with several forms only inside phrases", func(t *testing.T) {
		for _, r := range "于钟历发获赞系后里面干复准" {
			_, ok := table.Lookup(r)
			assert.False(t, ok, "%c", r)
		}
	})

	t.Run("Should be idempotent on its own output", func(t *testing.T) {
		once := table.Convert("这里的面条很干净")
		assert.Equal(t, once, table.Convert(once))
	})
}
