package pipeline

import "zhnorm/internal/pkg/zhnorm/align"

// Split is one word-like unit produced by a pre-tokenizer.
type Split struct {
	Text string `json:"text"`
	// Normalized is the rune range of the split in the normalized text.
	Normalized align.Alignment `json:"normalized"`
	// Original is the byte range of the original text the split covers.
	Original align.Alignment `json:"original"`
}

// PreTokenizer consumes a normalized buffer and splits it into words. It may
// modify the buffer (for example to add a prefix space).
type PreTokenizer interface {
	PreTokenize(b *align.Buffer) ([]Split, error)
}
