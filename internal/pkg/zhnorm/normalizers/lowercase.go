package normalizers

import (
	"encoding/json"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"zhnorm/internal/pkg/zhnorm/align"
)

// Lowercase applies full Unicode lowercasing. A single rune may lower to
// several (U+0130 becomes "i̇"); all of them keep the source alignment.
type Lowercase struct{}

func NewLowercase() *Lowercase {
	return &Lowercase{}
}

func (n *Lowercase) Kind() string {
	return KindLowercase
}

func (n *Lowercase) Normalize(b *align.Buffer) {
	lowercase(b)
}

func (n *Lowercase) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
	}{Type: KindLowercase})
}

func decodeLowercase(data []byte) (Normalizer, error) {
	var wire struct {
		Type string `json:"type"`
	}
	if err := decodeStrict(data, &wire); err != nil {
		return nil, err
	}
	return NewLowercase(), nil
}

func lowercase(b *align.Buffer) {
	// Casers carry state between calls, so each buffer gets its own.
	caser := cases.Lower(language.Und)
	b.CaseMap(func(r rune) string {
		if r < utf8.RuneSelf {
			if 'A' <= r && r <= 'Z' {
				r += 'a' - 'A'
			}
			return string(r)
		}
		return caser.String(string(r))
	})
}
