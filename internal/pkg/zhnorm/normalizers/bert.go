package normalizers

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"

	"zhnorm/internal/pkg/zhnorm/align"
	"zhnorm/internal/pkg/zhnorm/variant"
)

var nonSpacingMarks = runes.In(unicode.Mn)

// BertConfig is the serializable configuration of a Bert normalizer.
type BertConfig struct {
	CleanText          bool   `json:"clean_text" yaml:"clean_text"`
	HandleChineseChars bool   `json:"handle_chinese_chars" yaml:"handle_chinese_chars"`
	SeparateNumbers    bool   `json:"separate_numbers" yaml:"separate_numbers"`
	StripAccents       *bool  `json:"strip_accents" yaml:"strip_accents"`
	Lowercase          bool   `json:"lowercase" yaml:"lowercase"`
	SpecialChars       string `json:"special_chars" yaml:"special_chars" validate:"utf8text,max=4096"`
	ZhNorm             bool   `json:"zh_norm" yaml:"zh_norm"`
}

// DefaultBertConfig cleans text, spaces out CJK ideographs, strips accents
// and lowercases.
func DefaultBertConfig() BertConfig {
	return BertConfig{
		CleanText:          true,
		HandleChineseChars: true,
		Lowercase:          true,
	}
}

type BertOption func(*bertSettings)

type bertSettings struct {
	cfg   BertConfig
	table *variant.Table
}

func WithCleanText(v bool) BertOption {
	return func(s *bertSettings) { s.cfg.CleanText = v }
}

func WithHandleChineseChars(v bool) BertOption {
	return func(s *bertSettings) { s.cfg.HandleChineseChars = v }
}

func WithSeparateNumbers(v bool) BertOption {
	return func(s *bertSettings) { s.cfg.SeparateNumbers = v }
}

// WithStripAccents overrides the accent stripping default, which otherwise
// follows the lowercase setting.
func WithStripAccents(v bool) BertOption {
	return func(s *bertSettings) { s.cfg.StripAccents = &v }
}

func WithLowercase(v bool) BertOption {
	return func(s *bertSettings) { s.cfg.Lowercase = v }
}

// WithSpecialChars sets the characters that get a space on each side.
func WithSpecialChars(chars string) BertOption {
	return func(s *bertSettings) { s.cfg.SpecialChars = chars }
}

func WithZhNorm(v bool) BertOption {
	return func(s *bertSettings) { s.cfg.ZhNorm = v }
}

// WithVariantTable replaces the compiled-in zh_norm table. The table is not
// part of the serialized configuration.
func WithVariantTable(t *variant.Table) BertOption {
	return func(s *bertSettings) {
		if t != nil {
			s.table = t
		}
	}
}

// Bert is the BERT basic normalizer extended with digit splitting, special
// character splitting and Chinese variant canonicalization.
type Bert struct {
	cfg          BertConfig
	stripAccents bool
	special      map[rune]struct{}
	table        *variant.Table
}

func NewBert(opts ...BertOption) (*Bert, error) {
	s := bertSettings{cfg: DefaultBertConfig(), table: variant.Default()}
	for _, opt := range opts {
		opt(&s)
	}
	return newBert(s)
}

func NewBertFromConfig(cfg BertConfig) (*Bert, error) {
	return newBert(bertSettings{cfg: cfg, table: variant.Default()})
}

func newBert(s bertSettings) (*Bert, error) {
	if err := validate.Struct(s.cfg); err != nil {
		return nil, fmt.Errorf("%w: bert: %w", ErrInvalidConfiguration, err)
	}

	n := &Bert{
		cfg:     s.cfg,
		special: make(map[rune]struct{}),
		table:   s.table,
	}
	if s.cfg.StripAccents != nil {
		v := *s.cfg.StripAccents
		n.cfg.StripAccents = &v
		n.stripAccents = v
	} else {
		n.stripAccents = s.cfg.Lowercase
	}
	for _, r := range s.cfg.SpecialChars {
		n.special[r] = struct{}{}
	}
	return n, nil
}

func (n *Bert) Kind() string {
	return KindBert
}

// Config returns a copy of the configuration the normalizer was built with.
func (n *Bert) Config() BertConfig {
	cfg := n.cfg
	if n.cfg.StripAccents != nil {
		v := *n.cfg.StripAccents
		cfg.StripAccents = &v
	}
	return cfg
}

func (n *Bert) Normalize(b *align.Buffer) {
	if n.cfg.CleanText {
		cleanText(b)
	}
	switch {
	case n.cfg.ZhNorm:
		b.ReplaceMatches(n.matchVariant)
	case n.spacing():
		b.Map(n.separate)
	}
	if n.stripAccents {
		stripAccents(b)
	}
	if n.cfg.Lowercase {
		lowercase(b)
	}
}

// separate puts a space on both sides of r when it is a CJK ideograph, a
// digit or a special character. A rune matching several categories is
// still spaced once.
func (n *Bert) separate(r rune) string {
	if n.needsSpace(r) {
		return " " + string(r) + " "
	}
	return string(r)
}

func (n *Bert) needsSpace(r rune) bool {
	return n.cfg.HandleChineseChars && isChineseChar(r) ||
		n.cfg.SeparateNumbers && isDigit(r) ||
		n.isSpecial(r)
}

func (n *Bert) spacing() bool {
	return n.cfg.HandleChineseChars || n.cfg.SeparateNumbers || len(n.special) > 0
}

// matchVariant runs spacing and zh_norm as one scan. Phrase keys are matched
// against the unspaced text and every rune of a replacement is spaced as if
// it had been in the input.
func (n *Bert) matchVariant(rs []rune, i int) (int, string, bool) {
	size, repl, ok := n.table.Match(rs, i)
	if !ok {
		if !n.needsSpace(rs[i]) {
			return 0, "", false
		}
		return 1, " " + string(rs[i]) + " ", true
	}
	if !n.spacing() {
		return size, repl, true
	}
	var sb strings.Builder
	for _, r := range repl {
		sb.WriteString(n.separate(r))
	}
	return size, sb.String(), true
}

func (n *Bert) isSpecial(r rune) bool {
	_, ok := n.special[r]
	return ok
}

func cleanText(b *align.Buffer) {
	b.Filter(func(r rune) bool {
		return r != 0 && r != unicode.ReplacementChar && !isControl(r)
	})
	b.MapRune(func(r rune) rune {
		if isWhitespace(r) {
			return ' '
		}
		return r
	})
}

func stripAccents(b *align.Buffer) {
	b.NFD()
	b.Filter(func(r rune) bool {
		return !nonSpacingMarks.Contains(r)
	})
}

func (n *Bert) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		BertConfig
	}{
		Type:       KindBert,
		BertConfig: n.Config(),
	})
}

func decodeBert(data []byte) (Normalizer, error) {
	wire := struct {
		Type string `json:"type"`
		BertConfig
	}{
		BertConfig: DefaultBertConfig(),
	}
	if err := decodeStrict(data, &wire); err != nil {
		return nil, err
	}
	return NewBertFromConfig(wire.BertConfig)
}
