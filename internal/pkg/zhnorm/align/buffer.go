package align

import (
	"fmt"
	"slices"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Alignment is a half-open byte range [Start, End) in the original text.
type Alignment struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (a Alignment) Len() int {
	return a.End - a.Start
}

func union(as []Alignment) Alignment {
	return Alignment{Start: as[0].Start, End: as[len(as)-1].End}
}

// Buffer is a normalized string that remembers, for every rune, the byte
// range of the original text it was produced from.
//
// A Buffer is owned by a single normalization call and is not safe for
// concurrent use.
type Buffer struct {
	original   string
	normalized []rune
	alignments []Alignment
}

// Matcher reports whether a replacement starts at rs[i]. n is the number of
// runes it consumes and must be at least 1 when ok is true.
type Matcher func(rs []rune, i int) (n int, replacement string, ok bool)

func New(text string) *Buffer {
	n := utf8.RuneCountInString(text)
	b := &Buffer{
		original:   text,
		normalized: make([]rune, 0, n),
		alignments: make([]Alignment, 0, n),
	}
	for i, r := range text {
		size := utf8.RuneLen(r)
		if r == utf8.RuneError {
			_, size = utf8.DecodeRuneInString(text[i:])
		}
		b.normalized = append(b.normalized, r)
		b.alignments = append(b.alignments, Alignment{Start: i, End: i + size})
	}
	return b
}

func (b *Buffer) String() string {
	return string(b.normalized)
}

func (b *Buffer) Original() string {
	return b.original
}

// Len returns the number of runes in the normalized text.
func (b *Buffer) Len() int {
	return len(b.normalized)
}

func (b *Buffer) IsEmpty() bool {
	return len(b.normalized) == 0
}

// Runes returns a copy of the normalized runes.
func (b *Buffer) Runes() []rune {
	out := make([]rune, len(b.normalized))
	copy(out, b.normalized)
	return out
}

// Alignments returns a copy of the per-rune alignments.
func (b *Buffer) Alignments() []Alignment {
	out := make([]Alignment, len(b.alignments))
	copy(out, b.alignments)
	return out
}

// OriginalRange converts the normalized rune range [start, end) into the
// byte range of the original text it covers. An empty range maps to the
// zero-width boundary before start.
func (b *Buffer) OriginalRange(start, end int) (Alignment, bool) {
	return Span(b.alignments, start, end)
}

// Span resolves the rune range [start, end) of a per-rune alignment slice
// the way Buffer.OriginalRange does. It reports false for an invalid range.
func Span(aligns []Alignment, start, end int) (Alignment, bool) {
	if start < 0 || end > len(aligns) || start > end {
		return Alignment{}, false
	}
	if start == end {
		p := anchor(aligns, start)
		return Alignment{Start: p, End: p}, true
	}
	return union(aligns[start:end]), true
}

// OriginalText returns the slice of the original text covered by the
// normalized rune range [start, end).
func (b *Buffer) OriginalText(start, end int) (string, bool) {
	a, ok := b.OriginalRange(start, end)
	if !ok {
		return "", false
	}
	return b.original[a.Start:a.End], true
}

func (b *Buffer) checkRange(start, end int) {
	if start < 0 || end > len(b.normalized) || start > end {
		panic(fmt.Sprintf("align: range [%d:%d] out of bounds for buffer of length %d", start, end, len(b.normalized)))
	}
}

// anchor is the original byte position an insertion at rune index i is tied
// to.
func anchor(aligns []Alignment, i int) int {
	switch {
	case i > 0:
		return aligns[i-1].End
	case i < len(aligns):
		return aligns[i].Start
	default:
		return 0
	}
}

// ReplaceRange removes the runes in [start, end) and inserts replacement in
// their place. Every inserted rune is aligned to the union of the removed
// range, or to the insertion boundary when the range is empty.
func (b *Buffer) ReplaceRange(start, end int, replacement string) {
	b.checkRange(start, end)

	var a Alignment
	if start == end {
		p := anchor(b.alignments, start)
		a = Alignment{Start: p, End: p}
	} else {
		a = union(b.alignments[start:end])
	}

	ins := []rune(replacement)
	tail := len(b.normalized) - end
	size := start + len(ins) + tail

	runes := make([]rune, size)
	aligns := make([]Alignment, size)
	copy(runes, b.normalized[:start])
	copy(aligns, b.alignments[:start])
	for i, r := range ins {
		runes[start+i] = r
		aligns[start+i] = a
	}
	copy(runes[start+len(ins):], b.normalized[end:])
	copy(aligns[start+len(ins):], b.alignments[end:])

	b.normalized = runes
	b.alignments = aligns
}

// Prepend inserts s at the beginning of the buffer.
func (b *Buffer) Prepend(s string) {
	b.ReplaceRange(0, 0, s)
}

// Append inserts s at the end of the buffer.
func (b *Buffer) Append(s string) {
	b.ReplaceRange(len(b.normalized), len(b.normalized), s)
}

// Map rewrites every rune with fn. Each rune of the output inherits the
// alignment of the rune it came from; an empty output deletes the rune.
func (b *Buffer) Map(fn func(r rune) string) {
	runes := make([]rune, 0, len(b.normalized))
	aligns := make([]Alignment, 0, len(b.alignments))
	for i, r := range b.normalized {
		out := fn(r)
		if len(out) == 1 && out[0] < utf8.RuneSelf {
			runes = append(runes, rune(out[0]))
			aligns = append(aligns, b.alignments[i])
			continue
		}
		for _, o := range out {
			runes = append(runes, o)
			aligns = append(aligns, b.alignments[i])
		}
	}
	b.normalized = runes
	b.alignments = aligns
}

// CaseMap applies a 1-to-N case transformation rune by rune.
func (b *Buffer) CaseMap(fn func(r rune) string) {
	b.Map(fn)
}

// MapRune rewrites runes 1-to-1 in place.
func (b *Buffer) MapRune(fn func(r rune) rune) {
	for i, r := range b.normalized {
		b.normalized[i] = fn(r)
	}
}

// Filter keeps only the runes for which keep returns true.
func (b *Buffer) Filter(keep func(r rune) bool) {
	n := 0
	for i, r := range b.normalized {
		if keep(r) {
			b.normalized[n] = r
			b.alignments[n] = b.alignments[i]
			n++
		}
	}
	b.normalized = b.normalized[:n]
	b.alignments = b.alignments[:n]
}

// ReplaceMatches scans the buffer once from left to right. Wherever match
// claims a span, the span is replaced and the scan resumes after it, so
// replacement output is never matched again in the same pass.
func (b *Buffer) ReplaceMatches(match Matcher) {
	src := b.normalized
	runes := make([]rune, 0, len(src))
	aligns := make([]Alignment, 0, len(src))

	for i := 0; i < len(src); {
		n, repl, ok := match(src, i)
		if !ok || n <= 0 {
			runes = append(runes, src[i])
			aligns = append(aligns, b.alignments[i])
			i++
			continue
		}
		if i+n > len(src) {
			panic(fmt.Sprintf("align: match at %d claims %d runes past end of buffer", i, n))
		}
		a := union(b.alignments[i : i+n])
		for _, r := range repl {
			runes = append(runes, r)
			aligns = append(aligns, a)
		}
		i += n
	}

	b.normalized = runes
	b.alignments = aligns
}

// NFD decomposes the buffer to Unicode canonical decomposition. Runs of
// combining marks are put in canonical order; marks moved across source
// runes share the union of their run's alignments.
func (b *Buffer) NFD() {
	if norm.NFD.IsNormalString(b.String()) {
		return
	}

	b.Map(func(r rune) string {
		if r < utf8.RuneSelf {
			return string(r)
		}
		return norm.NFD.String(string(r))
	})
	b.reorderMarks()
}

func ccc(r rune) uint8 {
	return norm.NFD.PropertiesString(string(r)).CCC()
}

func (b *Buffer) reorderMarks() {
	for i := 0; i < len(b.normalized); {
		if ccc(b.normalized[i]) == 0 {
			i++
			continue
		}
		j := i
		for j < len(b.normalized) && ccc(b.normalized[j]) != 0 {
			j++
		}
		if j-i > 1 {
			b.sortRun(i, j)
		}
		i = j
	}
}

func (b *Buffer) sortRun(start, end int) {
	run := b.normalized[start:end]
	byClass := func(x, y rune) int { return int(ccc(x)) - int(ccc(y)) }
	if slices.IsSortedFunc(run, byClass) {
		return
	}
	slices.SortStableFunc(run, byClass)
	a := union(b.alignments[start:end])
	for k := start; k < end; k++ {
		b.alignments[k] = a
	}
}

// LStrip removes leading runes for which pred returns true.
func (b *Buffer) LStrip(pred func(r rune) bool) {
	n := 0
	for n < len(b.normalized) && pred(b.normalized[n]) {
		n++
	}
	if n > 0 {
		b.ReplaceRange(0, n, "")
	}
}

// RStrip removes trailing runes for which pred returns true.
func (b *Buffer) RStrip(pred func(r rune) bool) {
	n := len(b.normalized)
	for n > 0 && pred(b.normalized[n-1]) {
		n--
	}
	if n < len(b.normalized) {
		b.ReplaceRange(n, len(b.normalized), "")
	}
}
