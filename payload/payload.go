// Package payload builds JSON request bodies from named fields.
//
// A field is either a literal or a value that is generated each time the payload is built, such
// as a random first name. Field names containing dots describe nested objects, so
// "bookingdates.checkin" becomes {"bookingdates":{"checkin":...}}.
package payload

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
	"gopkg.in/yaml.v3"
)

type generatorKind string

const (
	genNone      generatorKind = ""
	genFirstName generatorKind = "firstName"
	genLastName  generatorKind = "lastName"
	genInt       generatorKind = "int"
	genBool      generatorKind = "bool"
)

// Value is one field of a payload. The zero value is a JSON null literal.
type Value struct {
	literal  ldvalue.Value
	generate generatorKind
	min, max int
}

func Literal(v ldvalue.Value) Value { return Value{literal: v} }
func String(s string) Value         { return Value{literal: ldvalue.String(s)} }
func Int(n int) Value               { return Value{literal: ldvalue.Int(n)} }
func Bool(b bool) Value             { return Value{literal: ldvalue.Bool(b)} }

func FirstName() Value              { return Value{generate: genFirstName} }
func LastName() Value               { return Value{generate: genLastName} }
func IntBetween(min, max int) Value { return Value{generate: genInt, min: min, max: max} }
func RandomBool() Value             { return Value{generate: genBool} }

// IsGenerated returns true if the value is produced by a Generator rather than fixed.
func (v Value) IsGenerated() bool { return v.generate != genNone }

// LiteralValue returns the fixed value, or null for a generated one.
func (v Value) LiteralValue() ldvalue.Value { return v.literal }

func (v Value) resolve(g Generator) ldvalue.Value {
	switch v.generate {
	case genFirstName:
		return ldvalue.String(g.FirstName())
	case genLastName:
		return ldvalue.String(g.LastName())
	case genInt:
		return ldvalue.Int(g.IntBetween(v.min, v.max))
	case genBool:
		return ldvalue.Bool(g.Bool())
	default:
		return v.literal
	}
}

func (v Value) String() string {
	switch v.generate {
	case genNone:
		return v.literal.JSONString()
	case genInt:
		return fmt.Sprintf("<int %d..%d>", v.min, v.max)
	default:
		return "<" + string(v.generate) + ">"
	}
}

// UnmarshalYAML accepts either a plain YAML value, which is a literal, or a mapping of the form
// {generate: firstName|lastName|int|bool, min: N, max: N}.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.MappingNode {
		if err := checkGeneratorKeys(node); err != nil {
			return err
		}
		var gen struct {
			Generate *string `yaml:"generate"`
			Min      int     `yaml:"min"`
			Max      int     `yaml:"max"`
		}
		if err := node.Decode(&gen); err == nil && gen.Generate != nil {
			switch k := generatorKind(*gen.Generate); k {
			case genFirstName, genLastName, genBool:
				*v = Value{generate: k}
			case genInt:
				if gen.Max < gen.Min {
					return fmt.Errorf("line %d: generated int has max %d below min %d", node.Line, gen.Max, gen.Min)
				}
				*v = Value{generate: k, min: gen.Min, max: gen.Max}
			default:
				return fmt.Errorf("line %d: unknown generator %q", node.Line, *gen.Generate)
			}
			return nil
		}
	}
	var raw interface{}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*v = Value{literal: ldvalue.CopyArbitraryValue(normalizeYAML(raw))}
	return nil
}

// checkGeneratorKeys rejects a mapping that has a generate key along with keys other than min and
// max, or that has a key that looks like a misspelled generate. Any other mapping is an object
// literal.
func checkGeneratorKeys(node *yaml.Node) error {
	hasGenerate := false
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == "generate" {
			hasGenerate = true
		}
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		switch {
		case key.Value == "generate":
		case hasGenerate && (key.Value == "min" || key.Value == "max"):
		case hasGenerate:
			return fmt.Errorf("line %d: unknown generator setting %q", key.Line, key.Value)
		case strings.HasPrefix(strings.ToLower(key.Value), "gen"):
			return fmt.Errorf("line %d: unknown key %q, did you mean \"generate\"?", key.Line, key.Value)
		}
	}
	return nil
}

// yaml.v3 decodes mappings with non-string keys as map[interface{}]interface{}, which ldvalue
// does not understand.
func normalizeYAML(raw interface{}) interface{} {
	switch t := raw.(type) {
	case map[string]interface{}:
		for k, v := range t {
			t[k] = normalizeYAML(v)
		}
		return t
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, v := range t {
			m[fmt.Sprint(k)] = normalizeYAML(v)
		}
		return m
	case []interface{}:
		for i, v := range t {
			t[i] = normalizeYAML(v)
		}
		return t
	default:
		return raw
	}
}

// Fields maps field names to values. A field that is not present is omitted from the payload.
type Fields map[string]Value

// With returns a copy of f with the given field added or replaced.
func (f Fields) With(name string, value Value) Fields {
	ret := f.clone()
	ret[name] = value
	return ret
}

// Without returns a copy of f without the named fields. Removing a name also removes any nested
// fields under it.
func (f Fields) Without(names ...string) Fields {
	ret := f.clone()
	for _, name := range names {
		for k := range ret {
			if k == name || strings.HasPrefix(k, name+".") {
				delete(ret, k)
			}
		}
	}
	return ret
}

func (f Fields) clone() Fields {
	ret := make(Fields, len(f))
	for k, v := range f {
		ret[k] = v
	}
	return ret
}

// Names returns the field names in sorted order.
func (f Fields) Names() []string {
	names := make([]string, 0, len(f))
	for k := range f {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Builder renders Fields into JSON values.
type Builder struct {
	gen Generator
}

func NewBuilder(gen Generator) *Builder {
	return &Builder{gen: gen}
}

// Build renders fields as a JSON object. Generated values are drawn fresh on every call. Where a
// dotted name and a plain name refer to the same key, the dotted name's field is set inside the
// plain name's object value.
func (b *Builder) Build(fields Fields) ldvalue.Value {
	root := newNode()
	for _, name := range fields.Names() {
		root.set(strings.Split(name, "."), fields[name].resolve(b.gen))
	}
	return root.value()
}

// BuildJSON is Build followed by serialization.
func (b *Builder) BuildJSON(fields Fields) []byte {
	return []byte(b.Build(fields).JSONString())
}

type node struct {
	base     ldvalue.Value
	hasBase  bool
	children map[string]*node
	order    []string
}

func newNode() *node {
	return &node{children: make(map[string]*node)}
}

func (n *node) set(path []string, v ldvalue.Value) {
	child, ok := n.children[path[0]]
	if !ok {
		child = newNode()
		n.children[path[0]] = child
		n.order = append(n.order, path[0])
	}
	if len(path) == 1 {
		child.base, child.hasBase = v, true
		return
	}
	child.set(path[1:], v)
}

func (n *node) value() ldvalue.Value {
	if len(n.children) == 0 {
		return n.base
	}
	ob := ldvalue.ObjectBuild()
	if n.hasBase && n.base.Type() == ldvalue.ObjectType {
		for _, k := range n.base.Keys() {
			ob.Set(k, n.base.GetByKey(k))
		}
	}
	for _, k := range n.order {
		ob.Set(k, n.children[k].value())
	}
	return ob.Build()
}
