package output

import (
	"encoding/json"
	"io"

	"github.com/aretw0/tendril/pkg/domain"
)

// JSONWriter emits every event as one JSON line (NDJSON).
// It is the structured counterpart of XMLWriter for machine consumers.
type JSONWriter struct {
	Encoder *json.Encoder
}

// NewJSONWriter creates an NDJSON sink.
func NewJSONWriter(w io.Writer) *JSONWriter {
	return &JSONWriter{Encoder: json.NewEncoder(w)}
}

func (j *JSONWriter) StartDocument() error {
	return j.Encoder.Encode(Event{Kind: KindStartDocument})
}

func (j *JSONWriter) EndDocument() error {
	return j.Encoder.Encode(Event{Kind: KindEndDocument})
}

func (j *JSONWriter) StartElement(name domain.QName, attrs []Attr) error {
	return j.Encoder.Encode(Event{Kind: KindStartElement, Name: name, Attrs: attrs})
}

func (j *JSONWriter) EndElement(name domain.QName) error {
	return j.Encoder.Encode(Event{Kind: KindEndElement, Name: name})
}

func (j *JSONWriter) Write(text string) error {
	if text == "" {
		return nil
	}
	return j.Encoder.Encode(Event{Kind: KindText, Text: text})
}
