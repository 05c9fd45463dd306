package codec

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"serbench/internal/schema"

	jsoniter "github.com/json-iterator/go"
)

type encodeFunc func(st *jsoniter.Stream, v any, path string) error

// SchemaTextCodec writes JSON through encoders compiled from a schema, so
// field order and types are fixed ahead of time. Decoding parses generically
// and then validates against the same schema.
type SchemaTextCodec struct {
	schema *schema.Schema
	api    jsoniter.API
	encode encodeFunc
}

// NewSchemaJSON compiles s into a schema-bound JSON codec.
func NewSchemaJSON(s *schema.Schema) (*SchemaTextCodec, error) {
	if s == nil {
		return nil, fmt.Errorf("schema-json requires a schema")
	}
	api := jsoniter.ConfigCompatibleWithStandardLibrary
	enc, err := compileNode(api, s.Root)
	if err != nil {
		return nil, err
	}
	return &SchemaTextCodec{schema: s, api: api, encode: enc}, nil
}

func (c *SchemaTextCodec) Name() string { return "schema-json" }
func (c *SchemaTextCodec) Kind() Kind   { return KindSchemaText }

func (c *SchemaTextCodec) Encode(v any) ([]byte, error) {
	st := c.api.BorrowStream(nil)
	defer c.api.ReturnStream(st)

	if err := c.encode(st, v, "$"); err != nil {
		return nil, encodeErr(c.Name(), err)
	}
	if st.Error != nil {
		return nil, encodeErr(c.Name(), st.Error)
	}
	out := make([]byte, st.Buffered())
	copy(out, st.Buffer())
	return out, nil
}

func (c *SchemaTextCodec) Decode(b []byte) (any, error) {
	if len(b) == 0 {
		return nil, decodeErr(c.Name(), io.ErrUnexpectedEOF)
	}
	var v any
	if err := c.api.Unmarshal(b, &v); err != nil {
		return nil, decodeErr(c.Name(), err)
	}
	if err := c.schema.Validate(v); err != nil {
		return nil, decodeErr(c.Name(), err)
	}
	return v, nil
}

func (c *SchemaTextCodec) SizeOf(v any) (int, error) {
	b, err := c.Encode(v)
	if err != nil {
		return 0, err
	}
	return len(b), nil
}

func compileNode(api jsoniter.API, n *schema.Node) (encodeFunc, error) {
	switch n.Type {
	case schema.String:
		return func(st *jsoniter.Stream, v any, path string) error {
			s, ok := v.(string)
			if !ok {
				return typeViolation(path, n.Type, v)
			}
			st.WriteString(s)
			return nil
		}, nil
	case schema.Boolean:
		return func(st *jsoniter.Stream, v any, path string) error {
			b, ok := v.(bool)
			if !ok {
				return typeViolation(path, n.Type, v)
			}
			st.WriteBool(b)
			return nil
		}, nil
	case schema.Integer:
		return func(st *jsoniter.Stream, v any, path string) error {
			i, ok := schema.AsInt(v)
			if !ok {
				return typeViolation(path, n.Type, v)
			}
			st.WriteInt64(i)
			return nil
		}, nil
	case schema.Number:
		return func(st *jsoniter.Stream, v any, path string) error {
			f, ok := schema.AsFloat(v)
			if !ok {
				return typeViolation(path, n.Type, v)
			}
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return &schema.Violation{Path: path, Msg: "number is not finite"}
			}
			st.WriteFloat64(f)
			return nil
		}, nil
	case schema.Array:
		item, err := compileNode(api, n.Items)
		if err != nil {
			return nil, err
		}
		return func(st *jsoniter.Stream, v any, path string) error {
			items, ok := v.([]any)
			if !ok {
				return typeViolation(path, n.Type, v)
			}
			st.WriteArrayStart()
			for i, it := range items {
				if i > 0 {
					st.WriteMore()
				}
				if err := item(st, it, path+"["+strconv.Itoa(i)+"]"); err != nil {
					return err
				}
			}
			st.WriteArrayEnd()
			return nil
		}, nil
	case schema.Object:
		return compileObject(api, n)
	}
	return nil, fmt.Errorf("unsupported schema type %q", n.Type)
}

type objectField struct {
	name     string
	key      string // quoted name followed by a colon
	optional bool
	encode   encodeFunc
}

func compileObject(api jsoniter.API, n *schema.Node) (encodeFunc, error) {
	fields := make([]objectField, len(n.Properties))
	for i := range n.Properties {
		p := &n.Properties[i]
		quoted, err := api.MarshalToString(p.Name)
		if err != nil {
			return nil, err
		}
		enc, err := compileNode(api, &p.Node)
		if err != nil {
			return nil, err
		}
		fields[i] = objectField{name: p.Name, key: quoted + ":", optional: p.Optional, encode: enc}
	}

	return func(st *jsoniter.Stream, v any, path string) error {
		obj, ok := v.(map[string]any)
		if !ok {
			return typeViolation(path, schema.Object, v)
		}
		st.WriteObjectStart()
		written := 0
		for _, f := range fields {
			fv, present := obj[f.name]
			if !present {
				if f.optional {
					continue
				}
				return &schema.Violation{Path: path + "." + f.name, Msg: "required property missing"}
			}
			if written > 0 {
				st.WriteMore()
			}
			st.WriteRaw(f.key)
			if err := f.encode(st, fv, path+"."+f.name); err != nil {
				return err
			}
			written++
		}
		if written != len(obj) {
			return &schema.Violation{Path: path, Msg: "unknown properties"}
		}
		st.WriteObjectEnd()
		return nil
	}, nil
}

func typeViolation(path string, want schema.Type, v any) error {
	return &schema.Violation{Path: path, Msg: fmt.Sprintf("expected %s, got %T", want, v)}
}
