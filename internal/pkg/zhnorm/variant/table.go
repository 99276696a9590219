package variant

import (
	"bufio"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"
)

var ErrMalformedEntry = errors.New("variant: malformed entry")

//go:embed data/zh_variants.tsv
var defaultData string

var defaultTable = mustParse(defaultData)

// Default returns the compiled-in variant table. It is built once at
// process start and shared by every caller.
func Default() *Table {
	return defaultTable
}

// Table maps variant characters and short phrases to their canonical form.
// A Table is immutable once built and safe for concurrent use.
type Table struct {
	single  map[rune]string
	phrases map[string]string
	lengths []int // phrase key lengths in runes, longest first
}

func New(entries map[string]string) (*Table, error) {
	t := &Table{
		single:  make(map[rune]string),
		phrases: make(map[string]string),
	}
	for key, value := range entries {
		if err := t.add(key, value); err != nil {
			return nil, err
		}
	}
	t.finish()
	return t, nil
}

// Parse reads a table in tab separated form: one "key<TAB>value" pair per
// line. Blank lines and lines starting with '#' are skipped. A value of
// `\s` stands for a single space.
func Parse(r io.Reader) (*Table, error) {
	t := &Table{
		single:  make(map[rune]string),
		phrases: make(map[string]string),
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "\t", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("%w: line %d: expected key and value separated by a tab", ErrMalformedEntry, lineNo)
		}
		value := parts[1]
		if value == `\s` {
			value = " "
		}
		if err := t.add(unescapeKey(parts[0]), value); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read variant table: %w", err)
	}

	t.finish()
	return t, nil
}

func mustParse(data string) *Table {
	t, err := Parse(strings.NewReader(data))
	if err != nil {
		panic("variant: embedded table: " + err.Error())
	}
	return t
}

// unescapeKey turns a `\uXXXX` key into its rune so that control characters
// can be listed in the data file.
func unescapeKey(key string) string {
	if len(key) == 6 && strings.HasPrefix(key, `\u`) {
		if v, err := strconv.ParseUint(key[2:], 16, 32); err == nil {
			return string(rune(v))
		}
	}
	return key
}

func (t *Table) add(key, value string) error {
	if key == "" || !utf8.ValidString(key) {
		return fmt.Errorf("%w: invalid key %q", ErrMalformedEntry, key)
	}
	if value == "" || !utf8.ValidString(value) {
		return fmt.Errorf("%w: invalid value for key %q", ErrMalformedEntry, key)
	}
	if utf8.RuneCountInString(key) == 1 {
		r, _ := utf8.DecodeRuneInString(key)
		t.single[r] = value
		return nil
	}
	t.phrases[key] = value
	return nil
}

func (t *Table) finish() {
	seen := make(map[int]bool)
	for key := range t.phrases {
		n := utf8.RuneCountInString(key)
		if !seen[n] {
			seen[n] = true
			t.lengths = append(t.lengths, n)
		}
	}
	slices.Sort(t.lengths)
	slices.Reverse(t.lengths)
}

// Match looks for an entry starting at rs[i]. Phrase keys are tried longest
// first, then the single character map. It returns the number of runes the
// entry consumes and its replacement.
func (t *Table) Match(rs []rune, i int) (int, string, bool) {
	if i < 0 || i >= len(rs) {
		return 0, "", false
	}
	for _, n := range t.lengths {
		if i+n > len(rs) {
			continue
		}
		if value, ok := t.phrases[string(rs[i:i+n])]; ok {
			return n, value, true
		}
	}
	if value, ok := t.single[rs[i]]; ok {
		return 1, value, true
	}
	return 0, "", false
}

// Lookup returns the replacement for a single character.
func (t *Table) Lookup(r rune) (string, bool) {
	value, ok := t.single[r]
	return value, ok
}

// Len returns the number of entries in the table.
func (t *Table) Len() int {
	return len(t.single) + len(t.phrases)
}

// MaxKeyLen returns the length in runes of the longest key.
func (t *Table) MaxKeyLen() int {
	if len(t.lengths) > 0 {
		return t.lengths[0]
	}
	if len(t.single) > 0 {
		return 1
	}
	return 0
}

// Convert applies the table to s in a single left-to-right pass.
func (t *Table) Convert(s string) string {
	rs := []rune(s)
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(rs); {
		n, value, ok := t.Match(rs, i)
		if !ok {
			sb.WriteRune(rs[i])
			i++
			continue
		}
		sb.WriteString(value)
		i += n
	}
	return sb.String()
}
