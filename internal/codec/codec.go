// Package codec wraps each serialization strategy behind one Encode/Decode/SizeOf
// contract. Schema-bound codecs are compiled by Prepare, outside any timed loop.
package codec

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	benchErrors "serbench/internal/errors"
	"serbench/internal/schema"
)

// Kind tags the strategy a codec implements.
type Kind int

const (
	KindText Kind = iota
	KindSchemaText
	KindBinary
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindSchemaText:
		return "schema-text"
	case KindBinary:
		return "binary"
	}
	return "unknown"
}

// Codec encodes and decodes canonical values. Implementations never mutate v.
type Codec interface {
	Name() string
	Kind() Kind
	Encode(v any) ([]byte, error)
	Decode(b []byte) (any, error)
	// SizeOf reports len(Encode(v)).
	SizeOf(v any) (int, error)
}

// Factory compiles a codec for one schema. Schema-free codecs ignore it.
type Factory func(s *schema.Schema) (Codec, error)

// SnappySuffix selects the snappy-compressed variant of any registered codec.
const SnappySuffix = "+snappy"

var registry = map[string]Factory{
	"json":        func(*schema.Schema) (Codec, error) { return NewJSON(), nil },
	"jsoniter":    func(*schema.Schema) (Codec, error) { return NewJSONIter(), nil },
	"schema-json": func(s *schema.Schema) (Codec, error) { return NewSchemaJSON(s) },
	"protobuf":    func(s *schema.Schema) (Codec, error) { return NewProtobuf(s) },
	"msgpack":     func(*schema.Schema) (Codec, error) { return NewMsgpack(), nil },
}

// Names lists the registered base codec names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register adds a codec factory under name. Names are unique and may not
// carry the snappy suffix.
func Register(name string, f Factory) error {
	if name == "" || strings.HasSuffix(name, SnappySuffix) {
		return fmt.Errorf("invalid codec name %q: %w", name, benchErrors.ErrInvalidConfiguration)
	}
	if _, ok := registry[name]; ok {
		return fmt.Errorf("codec %q already registered: %w", name, benchErrors.ErrInvalidConfiguration)
	}
	registry[name] = f
	return nil
}

// Available reports whether name resolves to a codec.
func Available(name string) bool {
	_, ok := registry[strings.TrimSuffix(name, SnappySuffix)]
	return ok
}

// Prepare resolves name and compiles it against s.
func Prepare(name string, s *schema.Schema) (Codec, error) {
	base := strings.TrimSuffix(name, SnappySuffix)
	factory, ok := registry[base]
	if !ok {
		return nil, fmt.Errorf("codec %q: %w", name, benchErrors.ErrCodecUnavailable)
	}

	c, err := factory(s)
	if err != nil {
		return nil, fmt.Errorf("codec %q: %v: %w", name, err, benchErrors.ErrCodecUnavailable)
	}
	if base != name {
		c = NewSnappy(c)
	}
	return c, nil
}

func encodeErr(codec string, err error) error {
	var v *schema.Violation
	if errors.As(err, &v) {
		return benchErrors.NewEncodingError(codec, v.Path, errors.New(v.Msg))
	}
	return benchErrors.NewEncodingError(codec, "", err)
}

func decodeErr(codec string, err error) error {
	var v *schema.Violation
	if errors.As(err, &v) {
		return benchErrors.NewDecodingError(codec, v.Path, errors.New(v.Msg))
	}
	return benchErrors.NewDecodingError(codec, "", err)
}

func typeError(path string, v any) error {
	return &schema.Violation{Path: path, Msg: fmt.Sprintf("unsupported value type %T", v)}
}
