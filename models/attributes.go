package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Attribute is a single key/value pair of a model instance.
type Attribute struct {
	Key   string
	Value interface{}
}

// Attributes is an ordered key/value collection. Order is significant: every
// list in the detected settings follows it.
type Attributes []Attribute

// Get returns the value stored under key.
func (a Attributes) Get(key string) (interface{}, bool) {
	for _, attr := range a {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return nil, false
}

// Set replaces the value of an existing key in place or appends a new one.
func (a *Attributes) Set(key string, value interface{}) {
	for i := range *a {
		if (*a)[i].Key == key {
			(*a)[i].Value = value
			return
		}
	}
	*a = append(*a, Attribute{Key: key, Value: value})
}

func (a Attributes) Keys() []string {
	keys := make([]string, 0, len(a))
	for _, attr := range a {
		keys = append(keys, attr.Key)
	}
	return keys
}

// attributeBuilder collects decoded pairs. A repeated key keeps its first
// position and takes the last value.
type attributeBuilder struct {
	result   Attributes
	position map[string]int
}

func newAttributeBuilder() *attributeBuilder {
	return &attributeBuilder{result: Attributes{}, position: map[string]int{}}
}

func (b *attributeBuilder) add(key string, value interface{}) {
	if i, ok := b.position[key]; ok {
		b.result[i].Value = value
		return
	}
	b.position[key] = len(b.result)
	b.result = append(b.result, Attribute{Key: key, Value: value})
}

// Intersect keeps the attributes whose key is also present in other, in the
// receiver's order and with the receiver's values.
func (a Attributes) Intersect(other Attributes) Attributes {
	present := make(map[string]struct{}, len(other))
	for _, attr := range other {
		present[attr.Key] = struct{}{}
	}

	result := make(Attributes, 0, len(a))
	for _, attr := range a {
		if _, ok := present[attr.Key]; ok {
			result = append(result, attr)
		}
	}
	return result
}

// UnmarshalJSON decodes a JSON object keeping the key order of the document.
// Numbers are kept as json.Number.
func (a *Attributes) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*a = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("attributes must be a JSON object, got %v", tok)
	}

	b := newAttributeBuilder()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected attribute key %v", tok)
		}
		var value interface{}
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("attribute %q: %w", key, err)
		}
		b.add(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*a = b.result
	return nil
}

func (a Attributes) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, attr := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(attr.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(attr.Value)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", attr.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (a *Attributes) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: attributes must be a mapping", node.Line)
	}

	b := newAttributeBuilder()
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]
		var value interface{}
		if err := valueNode.Decode(&value); err != nil {
			return fmt.Errorf("attribute %q: %w", keyNode.Value, err)
		}
		b.add(keyNode.Value, value)
	}

	*a = b.result
	return nil
}

func (a Attributes) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, attr := range a {
		var value yaml.Node
		if n, ok := attr.Value.(json.Number); ok {
			// plain scalar so it resolves back to a number
			value = yaml.Node{Kind: yaml.ScalarNode, Value: n.String()}
		} else if err := value.Encode(attr.Value); err != nil {
			return nil, fmt.Errorf("attribute %q: %w", attr.Key, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: attr.Key},
			&value,
		)
	}
	return node, nil
}
