package normalizers

import (
	"fmt"
	"sort"
)

var presets = map[string]func() (Normalizer, error){
	"bert": func() (Normalizer, error) {
		return NewBert()
	},
	"bert-cased": func() (Normalizer, error) {
		return NewBert(WithLowercase(false), WithStripAccents(false))
	},
	"bert-zh": func() (Normalizer, error) {
		return NewBert(WithSeparateNumbers(true), WithZhNorm(true))
	},
	"lowercase": func() (Normalizer, error) {
		return NewLowercase(), nil
	},
	"strip": func() (Normalizer, error) {
		return NewStrip(true, true), nil
	},
	"lowercase-strip": func() (Normalizer, error) {
		return NewSequence(NewLowercase(), NewStrip(true, true)), nil
	},
}

// Preset returns one of the named stock normalizers.
func Preset(name string) (Normalizer, error) {
	build, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown preset %q (available: %v)", ErrInvalidConfiguration, name, Presets())
	}
	return build()
}

func Presets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
