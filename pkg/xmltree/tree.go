// Package xmltree decodes XML documents into a loosely typed tree.
//
// Each element becomes either a string (no attributes and no child elements;
// whitespace-only text collapses to "") or a map[string]any holding its attributes and children side by side.
// A child name that occurs once maps to the child itself; a name that occurs
// several times maps to a []any in document order. Consumers must therefore
// treat any collection as "one or many" and go through AsList.
package xmltree

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// TextKey holds the character data of an element that also has attributes or children.
const TextKey = "_"

// ErrEmptyDocument is returned when the input has no root element.
var ErrEmptyDocument = errors.New("document has no root element")

type frame struct {
	name   string
	fields map[string]any
	lists  map[string]bool
	text   strings.Builder
}

func (f *frame) add(name string, value any) {
	existing, ok := f.fields[name]
	switch {
	case !ok:
		f.fields[name] = value
	case f.lists[name]:
		f.fields[name] = append(existing.([]any), value)
	default:
		f.fields[name] = []any{existing, value}
		f.lists[name] = true
	}
}

func (f *frame) value() any {
	if len(f.fields) == 0 {
		text := f.text.String()
		if strings.TrimSpace(text) == "" {
			return ""
		}
		return text
	}
	if text := f.text.String(); strings.TrimSpace(text) != "" {
		f.fields[TextKey] = text
	}
	return f.fields
}

// Decode reads one XML document and returns {rootName: rootNode}.
func Decode(r io.Reader) (map[string]any, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	var stack []*frame
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, ErrEmptyDocument
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			f := &frame{
				name:   t.Name.Local,
				fields: make(map[string]any),
				lists:  make(map[string]bool),
			}
			for _, attr := range t.Attr {
				if attr.Name.Space == "xmlns" || attr.Name.Local == "xmlns" {
					continue
				}
				f.add(attr.Name.Local, attr.Value)
			}
			stack = append(stack, f)

		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("unexpected end element %s", t.Name.Local)
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return map[string]any{top.name: top.value()}, nil
			}
			stack[len(stack)-1].add(top.name, top.value())
		}
	}
}

// DecodeBytes is Decode over an in-memory document.
func DecodeBytes(data []byte) (map[string]any, error) {
	return Decode(bytes.NewReader(data))
}

// AsList coerces a one-or-many node into a slice. nil yields nil.
func AsList(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	default:
		return []any{t}
	}
}

// Child returns the named child of a map node.
func Child(node any, name string) (any, bool) {
	m, ok := node.(map[string]any)
	if !ok {
		return nil, false
	}
	v, ok := m[name]
	return v, ok
}

// Text returns the character data of a leaf or mixed node.
// Lists yield the text of their first element.
func Text(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any:
		s, _ := t[TextKey].(string)
		return s
	case []any:
		if len(t) > 0 {
			return Text(t[0])
		}
	}
	return ""
}

// Field returns the text of a node's named child or attribute.
func Field(node any, name string) string {
	v, ok := Child(node, name)
	if !ok {
		return ""
	}
	return Text(v)
}
