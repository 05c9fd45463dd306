// Package schema describes the shape of benchmark datasets. Schema-bound
// codecs compile a Schema once before any timing loop runs.
package schema

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Type is the kind of a schema node.
type Type string

const (
	Object  Type = "object"
	Array   Type = "array"
	String  Type = "string"
	Number  Type = "number"
	Integer Type = "integer"
	Boolean Type = "boolean"
)

// Node describes one value. Objects list their properties in encoding order.
type Node struct {
	Type       Type       `yaml:"type"`
	Properties []Property `yaml:"properties,omitempty"`
	Items      *Node      `yaml:"items,omitempty"`
}

// Property is a named field of an object node.
type Property struct {
	Name     string `yaml:"name"`
	Optional bool   `yaml:"optional,omitempty"`
	Node     `yaml:",inline"`
}

// Schema is a named root node.
type Schema struct {
	Name string `yaml:"name"`
	Root *Node  `yaml:"root"`
}

// Parse reads a YAML schema document and checks it is well formed.
func Parse(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("schema has no name")
	}
	if s.Root == nil {
		return nil, fmt.Errorf("schema %s has no root", s.Name)
	}
	if err := s.Root.check("$"); err != nil {
		return nil, fmt.Errorf("schema %s: %w", s.Name, err)
	}
	return &s, nil
}

func (n *Node) check(path string) error {
	switch n.Type {
	case String, Number, Integer, Boolean:
		return nil
	case Array:
		if n.Items == nil {
			return fmt.Errorf("%s: array without items", path)
		}
		return n.Items.check(path + "[]")
	case Object:
		if len(n.Properties) == 0 {
			return fmt.Errorf("%s: object without properties", path)
		}
		seen := make(map[string]bool, len(n.Properties))
		for i := range n.Properties {
			p := &n.Properties[i]
			if p.Name == "" {
				return fmt.Errorf("%s: property %d has no name", path, i)
			}
			if seen[p.Name] {
				return fmt.Errorf("%s: duplicate property %q", path, p.Name)
			}
			seen[p.Name] = true
			if err := p.Node.check(path + "." + p.Name); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%s: unknown type %q", path, n.Type)
	}
}

// Violation reports where a value departs from its schema.
type Violation struct {
	Path string
	Msg  string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Msg)
}

// Validate checks that v conforms to the schema.
func (s *Schema) Validate(v any) error {
	return s.Root.Validate(v, "$")
}

// Validate checks v against n. Unknown object keys are rejected.
func (n *Node) Validate(v any, path string) error {
	switch n.Type {
	case String:
		if _, ok := v.(string); !ok {
			return mismatch(path, n.Type, v)
		}
	case Boolean:
		if _, ok := v.(bool); !ok {
			return mismatch(path, n.Type, v)
		}
	case Number:
		f, ok := AsFloat(v)
		if !ok {
			return mismatch(path, n.Type, v)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return &Violation{Path: path, Msg: "number is not finite"}
		}
	case Integer:
		if _, ok := AsInt(v); !ok {
			return mismatch(path, n.Type, v)
		}
	case Array:
		items, ok := v.([]any)
		if !ok {
			return mismatch(path, n.Type, v)
		}
		for i, item := range items {
			if err := n.Items.Validate(item, path+"["+strconv.Itoa(i)+"]"); err != nil {
				return err
			}
		}
	case Object:
		obj, ok := v.(map[string]any)
		if !ok {
			return mismatch(path, n.Type, v)
		}
		for _, p := range n.Properties {
			fv, present := obj[p.Name]
			if !present {
				if p.Optional {
					continue
				}
				return &Violation{Path: path + "." + p.Name, Msg: "required property missing"}
			}
			if err := p.Node.Validate(fv, path+"."+p.Name); err != nil {
				return err
			}
		}
		if hasUnknown(n, obj) {
			return &Violation{Path: path, Msg: fmt.Sprintf("unknown properties %v", unknownKeys(n, obj))}
		}
	}
	return nil
}

// Property returns the named property of an object node.
func (n *Node) Property(name string) (*Property, bool) {
	for i := range n.Properties {
		if n.Properties[i].Name == name {
			return &n.Properties[i], true
		}
	}
	return nil, false
}

func hasUnknown(n *Node, obj map[string]any) bool {
	for k := range obj {
		if _, ok := n.Property(k); !ok {
			return true
		}
	}
	return false
}

func unknownKeys(n *Node, obj map[string]any) []string {
	var keys []string
	for k := range obj {
		if _, ok := n.Property(k); !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func mismatch(path string, want Type, v any) error {
	return &Violation{Path: path, Msg: fmt.Sprintf("expected %s, got %T", want, v)}
}

// AsFloat accepts the numeric representations a dataset value may carry.
func AsFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	}
	return 0, false
}

// AsInt accepts integral numbers, including float64 values with no
// fractional part inside the int64 range.
func AsInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case float64:
		if n != math.Trunc(n) || n < math.MinInt64 || n >= math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}
