package codec

import (
	"github.com/golang/snappy"
)

// SnappyCodec compresses the output of another codec with snappy block format.
type SnappyCodec struct {
	inner Codec
}

func NewSnappy(inner Codec) *SnappyCodec {
	return &SnappyCodec{inner: inner}
}

func (c *SnappyCodec) Name() string { return c.inner.Name() + SnappySuffix }
func (c *SnappyCodec) Kind() Kind   { return c.inner.Kind() }

func (c *SnappyCodec) Encode(v any) ([]byte, error) {
	raw, err := c.inner.Encode(v)
	if err != nil {
		return nil, err
	}
	return snappy.Encode(nil, raw), nil
}

func (c *SnappyCodec) Decode(b []byte) (any, error) {
	raw, err := snappy.Decode(nil, b)
	if err != nil {
		return nil, decodeErr(c.Name(), err)
	}
	return c.inner.Decode(raw)
}

// SizeOf has to compress; the compressed length is not derivable from v.
func (c *SnappyCodec) SizeOf(v any) (int, error) {
	b, err := c.Encode(v)
	if err != nil {
		return 0, err
	}
	return len(b), nil
}
