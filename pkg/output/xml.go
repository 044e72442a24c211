package output

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/tendril/pkg/domain"
)

// XMLWriter serializes events as markup.
// Elements are written with their local name; a default namespace declaration is added
// whenever an element's namespace differs from its parent's.
type XMLWriter struct {
	w       *bufio.Writer
	escape  bool
	pending bool
	stack   []string
}

// NewXMLWriter creates a markup sink. When escape is false, text is written raw, which
// lets scripts produce markup through plain text.
func NewXMLWriter(w io.Writer, escape bool) *XMLWriter {
	return &XMLWriter{
		w:      bufio.NewWriter(w),
		escape: escape,
	}
}

// NewTextWriter creates a sink that writes text raw and drops element events.
func NewTextWriter(w io.Writer) Output {
	return &textWriter{w: w}
}

func (x *XMLWriter) StartDocument() error {
	return nil
}

func (x *XMLWriter) EndDocument() error {
	if err := x.closePending(); err != nil {
		return err
	}
	return x.Flush()
}

// Flush writes buffered data to the underlying writer.
func (x *XMLWriter) Flush() error {
	return x.w.Flush()
}

func (x *XMLWriter) StartElement(name domain.QName, attrs []Attr) error {
	if err := x.closePending(); err != nil {
		return err
	}
	parentNS := ""
	if n := len(x.stack); n > 0 {
		parentNS = x.stack[n-1]
	}
	x.stack = append(x.stack, name.Namespace)

	x.w.WriteByte('<')
	x.w.WriteString(name.Local)
	if name.Namespace != parentNS {
		x.writeAttr("xmlns", name.Namespace)
	}
	for _, a := range attrs {
		x.writeAttr(a.Name.Local, a.Value)
	}
	x.pending = true
	return nil
}

func (x *XMLWriter) EndElement(name domain.QName) error {
	if len(x.stack) == 0 {
		return fmt.Errorf("end element </%s> without matching start", name.Local)
	}
	x.stack = x.stack[:len(x.stack)-1]
	if x.pending {
		x.pending = false
		_, err := x.w.WriteString("/>")
		return err
	}
	_, err := fmt.Fprintf(x.w, "</%s>", name.Local)
	return err
}

func (x *XMLWriter) Write(text string) error {
	if text == "" {
		return nil
	}
	if err := x.closePending(); err != nil {
		return err
	}
	if !x.escape {
		_, err := x.w.WriteString(text)
		return err
	}
	return xml.EscapeText(x.w, []byte(text))
}

func (x *XMLWriter) closePending() error {
	if !x.pending {
		return nil
	}
	x.pending = false
	return x.w.WriteByte('>')
}

func (x *XMLWriter) writeAttr(name, value string) {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(value))
	fmt.Fprintf(x.w, ` %s="%s"`, name, b.String())
}

type textWriter struct {
	w io.Writer
}

func (t *textWriter) StartDocument() error {
	return nil
}

func (t *textWriter) EndDocument() error {
	return nil
}

func (t *textWriter) StartElement(domain.QName, []Attr) error {
	return nil
}

func (t *textWriter) EndElement(domain.QName) error {
	return nil
}

func (t *textWriter) Write(text string) error {
	_, err := io.WriteString(t.w, text)
	return err
}

// Render serializes the events replayed by emit into a string.
func Render(escape bool, emit func(Output) error) (string, error) {
	var b strings.Builder
	w := NewXMLWriter(&b, escape)
	if err := emit(w); err != nil {
		return "", err
	}
	if err := w.EndDocument(); err != nil {
		return "", err
	}
	return b.String(), nil
}
