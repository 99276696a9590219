package normalizers

import (
	"fmt"
	"sort"
	"sync"
)

// Decoder builds a normalizer from its serialized JSON record, "type" field
// included.
type Decoder func(data []byte) (Normalizer, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Decoder)
)

func init() {
	Register(KindBert, decodeBert)
	Register(KindLowercase, decodeLowercase)
	Register(KindStrip, decodeStrip)
	Register(KindSequence, decodeSequence)
}

// Register makes a normalizer kind available to Unmarshal. It panics if
// decoder is nil or the kind is already registered.
func Register(kind string, decoder Decoder) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if decoder == nil {
		panic("normalizers: Register decoder is nil")
	}
	if _, dup := registry[kind]; dup {
		panic("normalizers: Register called twice for " + kind)
	}
	registry[kind] = decoder
}

func lookup(kind string) (Decoder, error) {
	registryMu.RLock()
	decoder, ok := registry[kind]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %w %q (registered: %v)", ErrInvalidConfiguration, ErrUnknownKind, kind, Kinds())
	}
	return decoder, nil
}

// Kinds lists the registered kinds in sorted order.
func Kinds() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	kinds := make([]string, 0, len(registry))
	for kind := range registry {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

func IsRegistered(kind string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[kind]
	return ok
}
