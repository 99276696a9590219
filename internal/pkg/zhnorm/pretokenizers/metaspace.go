package pretokenizers

import (
	"strings"
	"unicode"

	"zhnorm/internal/pkg/zhnorm/align"
	"zhnorm/internal/pkg/zhnorm/pipeline"
)

// DefaultReplacement is U+2581 LOWER ONE EIGHTH BLOCK.
const DefaultReplacement = '▁'

// Metaspace replaces whitespace with a visible meta character and splits
// before every occurrence of it.
type Metaspace struct {
	replacement        rune
	addPrefixSpace     bool
	noConsecutiveSpace bool
}

func NewMetaspace(replacement rune, addPrefixSpace, noConsecutiveSpace bool) *Metaspace {
	return &Metaspace{
		replacement:        replacement,
		addPrefixSpace:     addPrefixSpace,
		noConsecutiveSpace: noConsecutiveSpace,
	}
}

func DefaultMetaspace() *Metaspace {
	return NewMetaspace(DefaultReplacement, true, false)
}

// PreTokenize splits b into words. When the prefix space is enabled and b
// does not start with a space one is prepended to b. A word's normalized
// range always ends where the word ends and spans as many runes as the word
// holds, so with collapsed spaces the meta character is attributed to the
// last space of the run.
func (m *Metaspace) PreTokenize(b *align.Buffer) ([]pipeline.Split, error) {
	if m.addPrefixSpace && !strings.HasPrefix(b.String(), " ") {
		b.Prepend(" ")
	}

	var (
		splits []pipeline.Split
		word   []rune
		lastWS bool
	)
	emit := func(offset int) {
		start := offset - len(word)
		orig, _ := b.OriginalRange(start, offset)
		splits = append(splits, pipeline.Split{
			Text:       string(word),
			Normalized: align.Alignment{Start: start, End: offset},
			Original:   orig,
		})
		word = word[:0]
	}

	offset := 0
	for _, r := range b.Runes() {
		if unicode.IsSpace(r) {
			if !m.noConsecutiveSpace || !lastWS {
				if len(word) > 0 {
					emit(offset)
				}
				lastWS = true
				word = append(word, m.replacement)
			}
		} else {
			lastWS = false
			word = append(word, r)
		}
		offset++
	}
	if len(word) > 0 && (!m.noConsecutiveSpace || !lastWS) {
		emit(offset)
	}

	return splits, nil
}

// Decode joins tokens back into text, turning the meta character into
// spaces and dropping the prefix space.
func (m *Metaspace) Decode(tokens []string) string {
	var sb strings.Builder
	i := 0
	for _, token := range tokens {
		for _, r := range token {
			switch {
			case r != m.replacement:
				sb.WriteRune(r)
			case i == 0 && m.addPrefixSpace:
			default:
				sb.WriteRune(' ')
			}
			i++
		}
	}
	return sb.String()
}
