// Package models defines data types for named graphs and the documents they span.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// System attribute names. They are addressable by example patterns and are
// carried in JSON alongside the user attributes.
const (
	AttrID   = "_id"
	AttrKey  = "_key"
	AttrFrom = "_from"
	AttrTo   = "_to"
)

// maxKeyLength caps collection names and document keys.
const maxKeyLength = 255

// Document is a vertex or edge document read from a collection.
// Edge documents have non-empty From and To.
type Document struct {
	ID         string
	Collection string
	Key        string
	From       string
	To         string
	Attributes map[string]any
}

// IsEdge reports whether the document carries both endpoints.
func (d *Document) IsEdge() bool {
	return d.From != "" && d.To != ""
}

// Attribute returns a named attribute, resolving system attributes first.
func (d *Document) Attribute(name string) (any, bool) {
	switch name {
	case AttrID:
		return d.ID, true
	case AttrKey:
		return d.Key, true
	case AttrFrom:
		if d.From == "" {
			return nil, false
		}
		return d.From, true
	case AttrTo:
		if d.To == "" {
			return nil, false
		}
		return d.To, true
	}

	v, ok := d.Attributes[name]

	return v, ok
}

// MarshalJSON flattens the document into a single object with system attributes.
func (d Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Attributes)+4)
	for k, v := range d.Attributes {
		out[k] = v
	}

	out[AttrID] = d.ID
	out[AttrKey] = d.Key

	if d.From != "" {
		out[AttrFrom] = d.From
	}

	if d.To != "" {
		out[AttrTo] = d.To
	}

	return json.Marshal(out)
}

// UnmarshalJSON splits a flat object into system and user attributes.
// Collection is derived from _id when present. Numbers are kept as
// json.Number so large integers survive unchanged.
func (d *Document) UnmarshalJSON(data []byte) error {
	raw, err := DecodeAttributes(data)
	if err != nil {
		return err
	}

	doc := Document{Attributes: make(map[string]any, len(raw))}

	for k, v := range raw {
		switch k {
		case AttrID, AttrKey, AttrFrom, AttrTo:
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("%s must be a string", k)
			}

			switch k {
			case AttrID:
				doc.ID = s
			case AttrKey:
				doc.Key = s
			case AttrFrom:
				doc.From = s
			case AttrTo:
				doc.To = s
			}
		default:
			doc.Attributes[k] = v
		}
	}

	if doc.ID != "" {
		coll, key, err := ParseDocumentID(doc.ID)
		if err != nil {
			return err
		}

		doc.Collection = coll
		if doc.Key == "" {
			doc.Key = key
		}
	}

	*d = doc

	return nil
}

// DecodeAttributes decodes a JSON object, keeping numbers as json.Number.
func DecodeAttributes(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var attrs map[string]any
	if err := dec.Decode(&attrs); err != nil {
		return nil, err
	}

	return attrs, nil
}

// ParseDocumentID splits "collection/key". Both parts must be non-empty and
// the key must not contain another slash.
func ParseDocumentID(id string) (collection, key string, err error) {
	collection, key, ok := strings.Cut(id, "/")
	if !ok || collection == "" || key == "" || strings.Contains(key, "/") {
		return "", "", fmt.Errorf("malformed document id %q", id)
	}

	return collection, key, nil
}

// DocumentID joins a collection name and key.
func DocumentID(collection, key string) string {
	return collection + "/" + key
}

// ValidateCollectionName checks a collection name for emptiness, length and slashes.
func ValidateCollectionName(name string) error {
	if name == "" {
		return fmt.Errorf("collection name is required")
	}

	if len(name) > maxKeyLength {
		return ErrFieldTooLong("collection", maxKeyLength)
	}

	if strings.Contains(name, "/") {
		return fmt.Errorf("collection name %q must not contain '/'", name)
	}

	return nil
}

// PrepareForCollection fills ID/Collection/Key for a document being loaded
// into collection and checks endpoint ids when the document is an edge.
func (d *Document) PrepareForCollection(collection string) error {
	if d.Key == "" {
		return fmt.Errorf("_key is required")
	}

	if len(d.Key) > maxKeyLength {
		return ErrFieldTooLong("_key", maxKeyLength)
	}

	if strings.Contains(d.Key, "/") {
		return fmt.Errorf("_key %q must not contain '/'", d.Key)
	}

	id := DocumentID(collection, d.Key)
	if d.ID != "" && d.ID != id {
		return fmt.Errorf("_id %q does not belong to collection %q", d.ID, collection)
	}

	d.ID = id
	d.Collection = collection

	if (d.From == "") != (d.To == "") {
		return fmt.Errorf("edge documents need both _from and _to")
	}

	for _, endpoint := range []string{d.From, d.To} {
		if endpoint == "" {
			continue
		}

		if _, _, err := ParseDocumentID(endpoint); err != nil {
			return err
		}
	}

	if d.Attributes == nil {
		d.Attributes = map[string]any{}
	}

	return nil
}
