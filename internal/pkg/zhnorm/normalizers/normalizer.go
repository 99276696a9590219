// Package normalizers implements the normalization rules of the tokenizer
// front end. Each rule rewrites an align.Buffer in place so that the
// mapping from normalized runes back to the original text survives every
// step.
//
// Rules are immutable once constructed and may be shared between
// goroutines. The buffer they operate on may not.
//
// Rules serialize to a tagged JSON (or YAML) record whose "type" field names
// the rule kind:
//
//	{"type": "Sequence", "normalizers": [
//	    {"type": "BertNormalizer", "clean_text": true, "zh_norm": true},
//	    {"type": "Strip", "strip_left": true, "strip_right": true}
//	]}
package normalizers

import "zhnorm/internal/pkg/zhnorm/align"

const (
	KindBert      = "BertNormalizer"
	KindLowercase = "Lowercase"
	KindStrip     = "Strip"
	KindSequence  = "Sequence"
)

type Normalizer interface {
	// Normalize rewrites b in place.
	Normalize(b *align.Buffer)
	// Kind is the tag used for the rule in serialized definitions.
	Kind() string
}

// NormalizeString runs n over text and returns the normalized string only.
func NormalizeString(n Normalizer, text string) string {
	b := align.New(text)
	n.Normalize(b)
	return b.String()
}
