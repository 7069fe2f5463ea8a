package wols

import (
	"bytes"
	"encoding/json"
)

// SerializeSpecimen renders the canonical single-line wire form: the two
// JSON-LD markers first, then the declared field order with _meta last.
// Absent optional fields are omitted entirely, never emitted as null. The
// output carries no HTML escaping and no line breaks, keeping it safe as a
// QR payload. Nested maps marshal with sorted keys, so equal specimens
// serialize to identical bytes.
func SerializeSpecimen(s Specimen) (string, error) {
	b, err := s.MarshalJSON()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// MarshalJSON implements the canonical field ordering, so specimens embedded
// in larger structures serialize the same way SerializeSpecimen does.
func (s Specimen) MarshalJSON() ([]byte, error) {
	w := newFieldWriter()
	w.field("@context", s.Context)
	w.field("@type", s.DocType)
	w.field("id", string(s.ID))
	w.field("version", s.Version)
	w.field("type", string(s.Type))
	w.field("species", s.Species)
	if s.Strain != nil {
		w.field("strain", s.Strain)
	}
	if s.Stage != "" {
		w.field("stage", string(s.Stage))
	}
	if s.Created != "" {
		w.field("created", s.Created)
	}
	if s.Batch != "" {
		w.field("batch", s.Batch)
	}
	if s.Organization != "" {
		w.field("organization", s.Organization)
	}
	if s.Creator != "" {
		w.field("creator", s.Creator)
	}
	if s.Custom != nil {
		w.field("custom", s.Custom)
	}
	if s.Signature != "" {
		w.field("signature", s.Signature)
	}
	if s.Meta != nil {
		w.field("_meta", s.Meta)
	}
	return w.finish()
}

// fieldWriter assembles a JSON object with explicit field order. Keys are
// trusted literals; values go through encodeJSONValue.
type fieldWriter struct {
	buf bytes.Buffer
	err error
}

func newFieldWriter() *fieldWriter {
	w := &fieldWriter{}
	w.buf.WriteByte('{')
	return w
}

func (w *fieldWriter) field(name string, value any) {
	if w.err != nil {
		return
	}
	encoded, err := encodeJSONValue(value)
	if err != nil {
		w.err = err
		return
	}
	if w.buf.Len() > 1 {
		w.buf.WriteByte(',')
	}
	w.buf.WriteByte('"')
	w.buf.WriteString(name)
	w.buf.WriteString(`":`)
	w.buf.Write(encoded)
}

func (w *fieldWriter) finish() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	w.buf.WriteByte('}')
	return w.buf.Bytes(), nil
}

// encodeJSONValue marshals a single value without HTML escaping. The
// trailing newline appended by json.Encoder is trimmed.
func encodeJSONValue(value any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
