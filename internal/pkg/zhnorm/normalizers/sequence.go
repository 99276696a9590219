package normalizers

import (
	"encoding/json"
	"fmt"

	"zhnorm/internal/pkg/zhnorm/align"
)

// Sequence applies its children in order on the same buffer. An empty
// Sequence leaves the buffer untouched.
type Sequence struct {
	normalizers []Normalizer
}

func NewSequence(normalizers ...Normalizer) *Sequence {
	children := make([]Normalizer, 0, len(normalizers))
	for _, n := range normalizers {
		if n != nil {
			children = append(children, n)
		}
	}
	return &Sequence{normalizers: children}
}

func (n *Sequence) Kind() string {
	return KindSequence
}

// Normalizers returns the children in application order.
func (n *Sequence) Normalizers() []Normalizer {
	out := make([]Normalizer, len(n.normalizers))
	copy(out, n.normalizers)
	return out
}

func (n *Sequence) Len() int {
	return len(n.normalizers)
}

func (n *Sequence) Normalize(b *align.Buffer) {
	for _, child := range n.normalizers {
		child.Normalize(b)
	}
}

func (n *Sequence) MarshalJSON() ([]byte, error) {
	children := n.normalizers
	if children == nil {
		children = []Normalizer{}
	}
	return json.Marshal(struct {
		Type        string       `json:"type"`
		Normalizers []Normalizer `json:"normalizers"`
	}{
		Type:        KindSequence,
		Normalizers: children,
	})
}

func decodeSequence(data []byte) (Normalizer, error) {
	var wire struct {
		Type        string            `json:"type"`
		Normalizers []json.RawMessage `json:"normalizers"`
	}
	if err := decodeStrict(data, &wire); err != nil {
		return nil, err
	}
	children := make([]Normalizer, 0, len(wire.Normalizers))
	for i, raw := range wire.Normalizers {
		child, err := Unmarshal(raw)
		if err != nil {
			return nil, fmt.Errorf("normalizer %d: %w", i, err)
		}
		children = append(children, child)
	}
	return NewSequence(children...), nil
}
