package codec

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"serbench/internal/schema"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
)

// ProtobufCodec encodes values as protocol buffers. The message descriptors
// are generated from the schema at prepare time: integers map to sint64,
// numbers to double, arrays to repeated fields. proto2 syntax keeps explicit
// presence so zero values survive a round trip.
type ProtobufCodec struct {
	root *pbMessage
}

type pbMessage struct {
	desc   protoreflect.MessageDescriptor
	fields []pbField
}

type pbField struct {
	name     string
	optional bool
	repeated bool
	elemType schema.Type
	fd       protoreflect.FieldDescriptor
	msg      *pbMessage // set for object elements
}

// NewProtobuf compiles s into protobuf descriptors.
func NewProtobuf(s *schema.Schema) (*ProtobufCodec, error) {
	if s == nil {
		return nil, fmt.Errorf("protobuf requires a schema")
	}
	if s.Root.Type != schema.Object {
		return nil, fmt.Errorf("protobuf schema root must be an object, got %s", s.Root.Type)
	}

	pkg := "serbench." + identifier(s.Name, false)
	b := &descBuilder{
		pkg: pkg,
		file: &descriptorpb.FileDescriptorProto{
			Name:    proto.String("serbench/" + identifier(s.Name, false) + ".proto"),
			Package: proto.String(pkg),
			Syntax:  proto.String("proto2"),
		},
		names: make(map[string]bool),
	}
	if _, err := b.addMessage("Root", s.Root); err != nil {
		return nil, err
	}

	fd, err := protodesc.NewFile(b.file, new(protoregistry.Files))
	if err != nil {
		return nil, fmt.Errorf("failed to build descriptors for %s: %w", s.Name, err)
	}
	md := fd.Messages().ByName("Root")
	if md == nil {
		return nil, fmt.Errorf("root message missing from %s", s.Name)
	}
	return &ProtobufCodec{root: bindMessage(md, s.Root)}, nil
}

func (c *ProtobufCodec) Name() string { return "protobuf" }
func (c *ProtobufCodec) Kind() Kind   { return KindBinary }

func (c *ProtobufCodec) Encode(v any) ([]byte, error) {
	msg, err := c.build(v)
	if err != nil {
		return nil, err
	}
	b, err := proto.Marshal(msg)
	if err != nil {
		return nil, encodeErr(c.Name(), err)
	}
	return b, nil
}

func (c *ProtobufCodec) Decode(b []byte) (any, error) {
	msg := dynamicpb.NewMessage(c.root.desc)
	if err := proto.Unmarshal(b, msg); err != nil {
		return nil, decodeErr(c.Name(), err)
	}
	v, err := c.root.extract(msg, "$")
	if err != nil {
		return nil, decodeErr(c.Name(), err)
	}
	return v, nil
}

func (c *ProtobufCodec) SizeOf(v any) (int, error) {
	msg, err := c.build(v)
	if err != nil {
		return 0, err
	}
	return proto.Size(msg), nil
}

func (c *ProtobufCodec) build(v any) (*dynamicpb.Message, error) {
	msg := dynamicpb.NewMessage(c.root.desc)
	if err := c.root.fill(msg, v, "$"); err != nil {
		return nil, encodeErr(c.Name(), err)
	}
	return msg, nil
}

type descBuilder struct {
	pkg   string
	file  *descriptorpb.FileDescriptorProto
	names map[string]bool
}

// addMessage declares a message for an object node and returns its
// fully qualified type name.
func (b *descBuilder) addMessage(name string, n *schema.Node) (string, error) {
	if b.names[name] {
		return "", fmt.Errorf("message name collision: %s", name)
	}
	b.names[name] = true

	msg := &descriptorpb.DescriptorProto{Name: proto.String(name)}
	fieldNames := make(map[string]bool, len(n.Properties))

	for i := range n.Properties {
		p := &n.Properties[i]
		fname := identifier(p.Name, false)
		if fieldNames[fname] {
			return "", fmt.Errorf("%s: field name collision on %q", name, fname)
		}
		fieldNames[fname] = true

		f := &descriptorpb.FieldDescriptorProto{
			Name:     proto.String(fname),
			JsonName: proto.String(p.Name),
			Number:   proto.Int32(int32(i + 1)),
			Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		}

		elem := &p.Node
		if elem.Type == schema.Array {
			f.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
			elem = elem.Items
			if elem.Type == schema.Array {
				return "", fmt.Errorf("%s.%s: nested arrays have no protobuf representation", name, p.Name)
			}
		}

		switch elem.Type {
		case schema.String:
			f.Type = descriptorpb.FieldDescriptorProto_TYPE_STRING.Enum()
		case schema.Number:
			f.Type = descriptorpb.FieldDescriptorProto_TYPE_DOUBLE.Enum()
		case schema.Integer:
			f.Type = descriptorpb.FieldDescriptorProto_TYPE_SINT64.Enum()
		case schema.Boolean:
			f.Type = descriptorpb.FieldDescriptorProto_TYPE_BOOL.Enum()
		case schema.Object:
			typeName, err := b.addMessage(name+"_"+identifier(p.Name, true), elem)
			if err != nil {
				return "", err
			}
			f.Type = descriptorpb.FieldDescriptorProto_TYPE_MESSAGE.Enum()
			f.TypeName = proto.String(typeName)
		default:
			return "", fmt.Errorf("%s.%s: unsupported type %q", name, p.Name, elem.Type)
		}
		msg.Field = append(msg.Field, f)
	}

	b.file.MessageType = append(b.file.MessageType, msg)
	return "." + b.pkg + "." + name, nil
}

func bindMessage(md protoreflect.MessageDescriptor, n *schema.Node) *pbMessage {
	m := &pbMessage{desc: md, fields: make([]pbField, len(n.Properties))}
	for i := range n.Properties {
		p := &n.Properties[i]
		fd := md.Fields().ByNumber(protoreflect.FieldNumber(i + 1))
		f := pbField{name: p.Name, optional: p.Optional, fd: fd}

		elem := &p.Node
		if elem.Type == schema.Array {
			f.repeated = true
			elem = elem.Items
		}
		f.elemType = elem.Type
		if elem.Type == schema.Object {
			f.msg = bindMessage(fd.Message(), elem)
		}
		m.fields[i] = f
	}
	return m
}

func (m *pbMessage) fill(msg protoreflect.Message, v any, path string) error {
	obj, ok := v.(map[string]any)
	if !ok {
		return typeViolation(path, schema.Object, v)
	}

	seen := 0
	for _, f := range m.fields {
		fv, present := obj[f.name]
		if !present {
			if f.optional {
				continue
			}
			return &schema.Violation{Path: path + "." + f.name, Msg: "required property missing"}
		}
		seen++
		fpath := path + "." + f.name

		if f.repeated {
			items, ok := fv.([]any)
			if !ok {
				return typeViolation(fpath, schema.Array, fv)
			}
			list := msg.Mutable(f.fd).List()
			for i, item := range items {
				ipath := fpath + "[" + strconv.Itoa(i) + "]"
				if f.msg != nil {
					elem := list.NewElement()
					if err := f.msg.fill(elem.Message(), item, ipath); err != nil {
						return err
					}
					list.Append(elem)
					continue
				}
				pv, err := toScalar(f.elemType, item, ipath)
				if err != nil {
					return err
				}
				list.Append(pv)
			}
			continue
		}

		if f.msg != nil {
			sub := msg.NewField(f.fd)
			if err := f.msg.fill(sub.Message(), fv, fpath); err != nil {
				return err
			}
			msg.Set(f.fd, sub)
			continue
		}
		pv, err := toScalar(f.elemType, fv, fpath)
		if err != nil {
			return err
		}
		msg.Set(f.fd, pv)
	}

	if seen != len(obj) {
		return &schema.Violation{Path: path, Msg: "unknown properties"}
	}
	return nil
}

// extract rebuilds the canonical value. Repeated fields are always emitted,
// so an absent array decodes as an empty one.
func (m *pbMessage) extract(msg protoreflect.Message, path string) (map[string]any, error) {
	if len(msg.GetUnknown()) > 0 {
		return nil, &schema.Violation{Path: path, Msg: "unknown fields in message"}
	}

	out := make(map[string]any, len(m.fields))
	for _, f := range m.fields {
		fpath := path + "." + f.name

		if f.repeated {
			list := msg.Get(f.fd).List()
			items := make([]any, list.Len())
			for i := range items {
				if f.msg != nil {
					sub, err := f.msg.extract(list.Get(i).Message(), fpath+"["+strconv.Itoa(i)+"]")
					if err != nil {
						return nil, err
					}
					items[i] = sub
					continue
				}
				items[i] = fromScalar(f.elemType, list.Get(i))
			}
			out[f.name] = items
			continue
		}

		if !msg.Has(f.fd) {
			if f.optional {
				continue
			}
			return nil, &schema.Violation{Path: fpath, Msg: "required field missing"}
		}
		if f.msg != nil {
			sub, err := f.msg.extract(msg.Get(f.fd).Message(), fpath)
			if err != nil {
				return nil, err
			}
			out[f.name] = sub
			continue
		}
		out[f.name] = fromScalar(f.elemType, msg.Get(f.fd))
	}
	return out, nil
}

func toScalar(t schema.Type, v any, path string) (protoreflect.Value, error) {
	switch t {
	case schema.String:
		if s, ok := v.(string); ok {
			return protoreflect.ValueOfString(s), nil
		}
	case schema.Boolean:
		if b, ok := v.(bool); ok {
			return protoreflect.ValueOfBool(b), nil
		}
	case schema.Integer:
		if i, ok := schema.AsInt(v); ok {
			return protoreflect.ValueOfInt64(i), nil
		}
	case schema.Number:
		if f, ok := schema.AsFloat(v); ok {
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return protoreflect.Value{}, &schema.Violation{Path: path, Msg: "number is not finite"}
			}
			return protoreflect.ValueOfFloat64(f), nil
		}
	}
	return protoreflect.Value{}, typeViolation(path, t, v)
}

func fromScalar(t schema.Type, v protoreflect.Value) any {
	switch t {
	case schema.String:
		return v.String()
	case schema.Boolean:
		return v.Bool()
	case schema.Integer:
		return float64(v.Int())
	default:
		return v.Float()
	}
}

// identifier turns a property or schema name into a protobuf identifier.
func identifier(name string, exported bool) string {
	var sb strings.Builder
	for i, r := range name {
		switch {
		case r == '_' || r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if i == 0 && unicode.IsDigit(r) {
				sb.WriteByte('_')
			}
			if i == 0 && exported {
				r = unicode.ToUpper(r)
			}
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	if sb.Len() == 0 {
		return "_"
	}
	return sb.String()
}
