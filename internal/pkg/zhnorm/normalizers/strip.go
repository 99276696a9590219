package normalizers

import (
	"encoding/json"

	"zhnorm/internal/pkg/zhnorm/align"
)

// Strip removes leading and/or trailing whitespace.
type Strip struct {
	left  bool
	right bool
}

type stripConfig struct {
	Left  bool `json:"strip_left" yaml:"strip_left"`
	Right bool `json:"strip_right" yaml:"strip_right"`
}

func NewStrip(left, right bool) *Strip {
	return &Strip{left: left, right: right}
}

func (n *Strip) Kind() string {
	return KindStrip
}

func (n *Strip) Left() bool  { return n.left }
func (n *Strip) Right() bool { return n.right }

func (n *Strip) Normalize(b *align.Buffer) {
	if n.left {
		b.LStrip(isWhitespace)
	}
	if n.right {
		b.RStrip(isWhitespace)
	}
}

func (n *Strip) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		stripConfig
	}{
		Type:        KindStrip,
		stripConfig: stripConfig{Left: n.left, Right: n.right},
	})
}

func decodeStrip(data []byte) (Normalizer, error) {
	wire := struct {
		Type string `json:"type"`
		stripConfig
	}{
		stripConfig: stripConfig{Left: true, Right: true},
	}
	if err := decodeStrict(data, &wire); err != nil {
		return nil, err
	}
	return NewStrip(wire.Left, wire.Right), nil
}
