package normalizers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/tidwall/gjson"
)

// Marshal encodes n as a tagged JSON record.
func Marshal(n Normalizer) ([]byte, error) {
	if n == nil {
		return nil, fmt.Errorf("%w: nil normalizer", ErrInvalidConfiguration)
	}
	return json.Marshal(n)
}

// Unmarshal decodes a tagged JSON record into the normalizer its "type"
// field names. Keys must be lowercase and unique. Every failure wraps
// ErrInvalidConfiguration.
func Unmarshal(data []byte) (Normalizer, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrInvalidConfiguration)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: expected an object, got %s", ErrInvalidConfiguration, root.Type)
	}
	if err := checkKeys(root); err != nil {
		return nil, err
	}
	kind := root.Get("type")
	if !kind.Exists() || kind.Type != gjson.String || kind.Str == "" {
		return nil, fmt.Errorf("%w: missing or invalid type", ErrInvalidConfiguration)
	}
	decode, err := lookup(kind.Str)
	if err != nil {
		return nil, err
	}
	n, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", kind.Str, err)
	}
	return n, nil
}

// MarshalYAML encodes n as a tagged YAML document.
func MarshalYAML(n Normalizer) ([]byte, error) {
	data, err := Marshal(n)
	if err != nil {
		return nil, err
	}
	return yaml.JSONToYAML(data)
}

// UnmarshalYAML decodes a tagged YAML document.
func UnmarshalYAML(data []byte) (Normalizer, error) {
	js, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse YAML: %w", ErrInvalidConfiguration, err)
	}
	return Unmarshal(js)
}

// Load reads a normalizer definition from path. Files ending in .yaml or
// .yml are read as YAML, everything else as JSON.
func Load(path string) (Normalizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read normalizer definition: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return UnmarshalYAML(data)
	default:
		return Unmarshal(data)
	}
}

// Save writes n to path in the format its extension selects.
func Save(path string, n Normalizer) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = MarshalYAML(n)
	default:
		data, err = json.MarshalIndent(n, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to encode normalizer definition: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write normalizer definition: %w", err)
	}
	return nil
}

// checkKeys rejects duplicate keys and keys that are not lowercase. Field
// names in definitions are lowercase snake case and encoding/json would
// otherwise fold other spellings onto them.
func checkKeys(root gjson.Result) error {
	seen := make(map[string]bool)
	var err error
	root.ForEach(func(key, _ gjson.Result) bool {
		name := key.String()
		switch {
		case seen[name]:
			err = fmt.Errorf("%w: duplicate key %q", ErrInvalidConfiguration, name)
		case name != strings.ToLower(name):
			err = fmt.Errorf("%w: key %q must be lowercase", ErrInvalidConfiguration, name)
		}
		seen[name] = true
		return err == nil
	})
	return err
}

func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	return nil
}
