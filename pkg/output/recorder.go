package output

import (
	"fmt"
	"strings"

	"github.com/aretw0/tendril/pkg/domain"
)

// EventKind classifies recorded events.
type EventKind string

const (
	KindStartDocument EventKind = "start_document"
	KindEndDocument   EventKind = "end_document"
	KindStartElement  EventKind = "start_element"
	KindEndElement    EventKind = "end_element"
	KindText          EventKind = "text"
)

// Event is one recorded sink call.
type Event struct {
	Kind  EventKind    `json:"type"`
	Name  domain.QName `json:"name,omitzero"`
	Attrs []Attr       `json:"attrs,omitempty"`
	Text  string       `json:"text,omitempty"`
}

// Recorder is an Output that keeps every event in memory.
type Recorder struct {
	Events []Event
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) StartDocument() error {
	r.Events = append(r.Events, Event{Kind: KindStartDocument})
	return nil
}

func (r *Recorder) EndDocument() error {
	r.Events = append(r.Events, Event{Kind: KindEndDocument})
	return nil
}

func (r *Recorder) StartElement(name domain.QName, attrs []Attr) error {
	r.Events = append(r.Events, Event{Kind: KindStartElement, Name: name, Attrs: append([]Attr(nil), attrs...)})
	return nil
}

func (r *Recorder) EndElement(name domain.QName) error {
	r.Events = append(r.Events, Event{Kind: KindEndElement, Name: name})
	return nil
}

func (r *Recorder) Write(text string) error {
	if text == "" {
		return nil
	}
	// Adjacent writes are coalesced so trees compare independently of chunking.
	if n := len(r.Events); n > 0 && r.Events[n-1].Kind == KindText {
		r.Events[n-1].Text += text
		return nil
	}
	r.Events = append(r.Events, Event{Kind: KindText, Text: text})
	return nil
}

// Text concatenates every written text.
func (r *Recorder) Text() string {
	var b strings.Builder
	for _, e := range r.Events {
		if e.Kind == KindText {
			b.WriteString(e.Text)
		}
	}
	return b.String()
}

// Replay sends the recorded events to out, skipping the document bracket.
func (r *Recorder) Replay(out Output) error {
	for _, e := range r.Events {
		var err error
		switch e.Kind {
		case KindStartElement:
			err = out.StartElement(e.Name, e.Attrs)
		case KindEndElement:
			err = out.EndElement(e.Name)
		case KindText:
			err = out.Write(e.Text)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Document builds a tree from the recorded events.
// The returned node is a synthetic root holding the top-level content.
func (r *Recorder) Document() (*Node, error) {
	root := &Node{}
	stack := []*Node{root}
	for _, e := range r.Events {
		top := stack[len(stack)-1]
		switch e.Kind {
		case KindStartElement:
			n := &Node{Name: e.Name, Attrs: e.Attrs}
			top.Children = append(top.Children, n)
			stack = append(stack, n)
		case KindEndElement:
			if len(stack) == 1 || top.Name != e.Name {
				return nil, fmt.Errorf("unbalanced end element </%s>", e.Name)
			}
			stack = stack[:len(stack)-1]
		case KindText:
			top.Children = append(top.Children, &Node{Text: e.Text})
		}
	}
	if len(stack) != 1 {
		return nil, fmt.Errorf("unclosed element <%s>", stack[len(stack)-1].Name)
	}
	return root, nil
}
