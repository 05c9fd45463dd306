package codec

import (
	"encoding/json"
	"io"

	jsoniter "github.com/json-iterator/go"
)

// TextCodec is a generic, schema-free text encoding.
type TextCodec struct {
	name      string
	marshal   func(any) ([]byte, error)
	unmarshal func([]byte, any) error
}

// NewJSON returns the standard library JSON codec.
func NewJSON() *TextCodec {
	return &TextCodec{name: "json", marshal: json.Marshal, unmarshal: json.Unmarshal}
}

// NewJSONIter returns the accelerated JSON codec. The standard-library
// compatible config keeps float formatting lossless.
func NewJSONIter() *TextCodec {
	api := jsoniter.ConfigCompatibleWithStandardLibrary
	return &TextCodec{name: "jsoniter", marshal: api.Marshal, unmarshal: api.Unmarshal}
}

func (c *TextCodec) Name() string { return c.name }
func (c *TextCodec) Kind() Kind   { return KindText }

func (c *TextCodec) Encode(v any) ([]byte, error) {
	b, err := c.marshal(v)
	if err != nil {
		return nil, encodeErr(c.name, err)
	}
	return b, nil
}

func (c *TextCodec) Decode(b []byte) (any, error) {
	if len(b) == 0 {
		return nil, decodeErr(c.name, io.ErrUnexpectedEOF)
	}
	var v any
	if err := c.unmarshal(b, &v); err != nil {
		return nil, decodeErr(c.name, err)
	}
	return v, nil
}

func (c *TextCodec) SizeOf(v any) (int, error) {
	b, err := c.Encode(v)
	if err != nil {
		return 0, err
	}
	return len(b), nil
}
