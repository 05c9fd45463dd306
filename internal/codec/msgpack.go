package codec

import (
	"fmt"
	"math"
	"sort"

	"github.com/tinylib/msgp/msgp"
)

// MsgpackCodec is a schema-free, length-prefixed binary encoding.
type MsgpackCodec struct{}

func NewMsgpack() *MsgpackCodec { return &MsgpackCodec{} }

func (c *MsgpackCodec) Name() string { return "msgpack" }
func (c *MsgpackCodec) Kind() Kind   { return KindBinary }

func (c *MsgpackCodec) Encode(v any) ([]byte, error) {
	n, err := c.SizeOf(v)
	if err != nil {
		return nil, err
	}
	b, err := msgp.AppendIntf(make([]byte, 0, n), v)
	if err != nil {
		return nil, encodeErr(c.Name(), err)
	}
	return b, nil
}

func (c *MsgpackCodec) Decode(b []byte) (any, error) {
	v, rest, err := msgp.ReadIntfBytes(b)
	if err != nil {
		return nil, decodeErr(c.Name(), err)
	}
	if len(rest) != 0 {
		return nil, decodeErr(c.Name(), fmt.Errorf("%d trailing bytes", len(rest)))
	}
	return v, nil
}

// SizeOf walks v and sums the msgpack header and payload widths without
// encoding. Only canonical value types are accepted.
func (c *MsgpackCodec) SizeOf(v any) (int, error) {
	n, err := msgpackSize(v, "$")
	if err != nil {
		return 0, encodeErr(c.Name(), err)
	}
	return n, nil
}

func msgpackSize(v any, path string) (int, error) {
	switch x := v.(type) {
	case nil, bool:
		return 1, nil
	case float64:
		return 9, nil
	case string:
		return strHeaderSize(len(x)) + len(x), nil
	case []any:
		total := collHeaderSize(len(x))
		for i, item := range x {
			n, err := msgpackSize(item, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return 0, err
			}
			total += n
		}
		return total, nil
	case map[string]any:
		total := collHeaderSize(len(x))
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			n, err := msgpackSize(x[k], path+"."+k)
			if err != nil {
				return 0, err
			}
			total += strHeaderSize(len(k)) + len(k) + n
		}
		return total, nil
	}
	return 0, typeError(path, v)
}

func strHeaderSize(n int) int {
	switch {
	case n < 32:
		return 1
	case n <= math.MaxUint8:
		return 2
	case n <= math.MaxUint16:
		return 3
	}
	return 5
}

func collHeaderSize(n int) int {
	switch {
	case n < 16:
		return 1
	case n <= math.MaxUint16:
		return 3
	}
	return 5
}
