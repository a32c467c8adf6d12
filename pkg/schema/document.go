// Package schema resolves template schema versions and loads the versioned
// schema documents that drive dynamic flag generation.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Property describes one entry of a schema document's properties map.
type Property struct {
	Name        string      `json:"-"`
	Type        string      `json:"type"`
	Description string      `json:"description"`
	Default     interface{} `json:"default"`
	Enum        []string    `json:"enum"`
}

// HasDefault reports whether the property declares a default value.
func (p *Property) HasDefault() bool { return p.Default != nil }

// Document is a parsed schema.json. Properties keep the declared order of
// the source document: flag ordering in generated help output is a
// user-facing contract.
type Document struct {
	Properties []Property
	Required   []string
}

// IsRequired reports whether name appears in the document's required list.
func (d *Document) IsRequired(name string) bool {
	for _, r := range d.Required {
		if r == name {
			return true
		}
	}
	return false
}

// ParseDocument parses a schema.json body, preserving property declaration
// order. json.Unmarshal into a map would lose it, so the top-level object is
// walked token by token.
func ParseDocument(raw []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	if err := expectDelim(dec, '{'); err != nil {
		return nil, fmt.Errorf("schema document: %w", err)
	}

	doc := &Document{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("schema document: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("schema document: unexpected token %v", tok)
		}

		switch key {
		case "properties":
			props, err := parseProperties(dec)
			if err != nil {
				return nil, err
			}
			doc.Properties = props
		case "required":
			if err := dec.Decode(&doc.Required); err != nil {
				return nil, fmt.Errorf("schema required list: %w", err)
			}
		default:
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, fmt.Errorf("schema field %q: %w", key, err)
			}
		}
	}
	return doc, nil
}

func parseProperties(dec *json.Decoder) ([]Property, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, fmt.Errorf("schema properties: %w", err)
	}

	var props []Property
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("schema properties: %w", err)
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("schema properties: unexpected token %v", tok)
		}

		var p Property
		if err := dec.Decode(&p); err != nil {
			return nil, fmt.Errorf("schema property %q: %w", name, err)
		}
		p.Name = name
		props = append(props, p)
	}

	// consume the closing brace
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("schema properties: %w", err)
	}
	return props, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}
