package domain

import "fmt"

// QName identifies a tag by namespace and local name.
// An empty Namespace denotes plain markup with no tag library bound to it.
type QName struct {
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Local     string `json:"local" yaml:"local"`
}

// Name builds a QName.
func Name(namespace, local string) QName {
	return QName{Namespace: namespace, Local: local}
}

// String renders the name in Clark notation ({ns}local).
func (q QName) String() string {
	if q.Namespace == "" {
		return q.Local
	}
	return fmt.Sprintf("{%s}%s", q.Namespace, q.Local)
}

// Location points at the source position a script node was compiled from.
type Location struct {
	Source string `json:"source,omitempty"`
	Line   int    `json:"line,omitempty"`
}

func (l Location) String() string {
	switch {
	case l.Source == "" && l.Line == 0:
		return "<unknown>"
	case l.Line == 0:
		return l.Source
	default:
		return fmt.Sprintf("%s:%d", l.Source, l.Line)
	}
}

// Attribute is a raw attribute declaration as written in the source.
type Attribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}
