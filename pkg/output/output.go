// Package output defines the sink scripts stream structured content to.
//
// Sinks receive a document bracket, element start/end events and text. Whether text is
// escaped is decided when a sink is constructed, never per call. Sinks are not safe for
// concurrent use; each run owns its sink.
package output

import "github.com/aretw0/tendril/pkg/domain"

// Output is the streaming destination of a script run.
type Output interface {
	StartDocument() error
	EndDocument() error
	StartElement(name domain.QName, attrs []Attr) error
	EndElement(name domain.QName) error
	Write(text string) error
}

// Attr is an evaluated attribute of an emitted element.
type Attr struct {
	Name  domain.QName `json:"name"`
	Value string       `json:"value"`
}

// Discard is an Output that drops everything.
var Discard Output = discard{}

type discard struct{}

func (discard) StartDocument() error {
	return nil
}

func (discard) EndDocument() error {
	return nil
}

func (discard) StartElement(domain.QName, []Attr) error {
	return nil
}

func (discard) EndElement(domain.QName) error {
	return nil
}

func (discard) Write(string) error {
	return nil
}
