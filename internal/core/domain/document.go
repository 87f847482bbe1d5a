package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Document is a unit of content submitted for ingestion.
// It is either RawText or a StructuredDocument and is resolved once
// at the ingestion boundary via Resolve.
type Document interface {
	isDocument()
}

// RawText is a plain text document with no title or metadata.
type RawText string

func (RawText) isDocument() {}

// StructuredDocument is a record-like document.
type StructuredDocument struct {
	// Content is the text that gets chunked and embedded.
	Content string

	// Title is an optional human-readable title.
	Title string

	// Metadata contains arbitrary caller-supplied fields.
	Metadata map[string]any
}

func (StructuredDocument) isDocument() {}

// ResolvedDocument is the normalised view of either document shape.
type ResolvedDocument struct {
	Content  string
	Title    string
	Metadata map[string]any
}

// Resolve flattens a Document into its content, title and metadata.
// A nil document resolves to empty content.
func Resolve(doc Document) ResolvedDocument {
	switch d := doc.(type) {
	case RawText:
		return ResolvedDocument{Content: string(d)}
	case StructuredDocument:
		return ResolvedDocument{Content: d.Content, Title: d.Title, Metadata: d.Metadata}
	case *StructuredDocument:
		if d == nil {
			return ResolvedDocument{}
		}
		return ResolvedDocument{Content: d.Content, Title: d.Title, Metadata: d.Metadata}
	default:
		return ResolvedDocument{}
	}
}

// Coerce converts loosely typed input into a Document.
// Maps with a "content" key become structured documents; every other
// value is coerced to its string representation.
func Coerce(v any) Document {
	switch d := v.(type) {
	case nil:
		return RawText("")
	case Document:
		return d
	case string:
		return RawText(d)
	case []byte:
		return RawText(string(d))
	case map[string]any:
		return coerceMap(d)
	case map[string]string:
		m := make(map[string]any, len(d))
		for k, val := range d {
			m[k] = val
		}
		return coerceMap(m)
	case fmt.Stringer:
		return RawText(d.String())
	default:
		return RawText(fmt.Sprint(v))
	}
}

func coerceMap(m map[string]any) Document {
	content, ok := m["content"]
	if !ok {
		return RawText(fmt.Sprint(m))
	}

	doc := StructuredDocument{Content: stringify(content)}
	if title, ok := m["title"]; ok && title != nil {
		doc.Title = stringify(title)
	}
	for k, val := range m {
		if k == "content" || k == "title" {
			continue
		}
		if doc.Metadata == nil {
			doc.Metadata = make(map[string]any)
		}
		doc.Metadata[k] = val
	}
	return doc
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// DocumentID returns the deterministic identifier of a document: the
// hex-encoded SHA-256 of its canonical serialization. Raw text hashes its
// bytes; structured documents hash canonical JSON of content, title and
// metadata (encoding/json sorts map keys).
func DocumentID(doc Document) string {
	return hashHex(serialize(doc))
}

func serialize(doc Document) []byte {
	if raw, ok := doc.(RawText); ok {
		return []byte(raw)
	}

	r := Resolve(doc)
	payload := struct {
		Content  string         `json:"content"`
		Title    string         `json:"title,omitempty"`
		Metadata map[string]any `json:"metadata,omitempty"`
	}{r.Content, r.Title, r.Metadata}

	data, err := json.Marshal(payload)
	if err != nil {
		// Unmarshalable metadata values fall back to their printed form.
		return []byte(fmt.Sprintf("%s\x00%s\x00%v", r.Content, r.Title, r.Metadata))
	}
	return data
}

func hashHex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
