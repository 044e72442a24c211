// Package xml parses markup into document trees and prints them back.
//
// Tags live in the "tendril:xml" namespace. parse binds an *output.Node, which
// expressions can navigate (doc.Elements("item"), node.Content()) and print re-emits.
package xml

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/tendril/pkg/domain"
	"github.com/aretw0/tendril/pkg/expression"
	"github.com/aretw0/tendril/pkg/library"
	"github.com/aretw0/tendril/pkg/output"
	"github.com/aretw0/tendril/pkg/script"
)

// Namespace is the URI the xml library is registered under.
const Namespace = "tendril:xml"

// Library returns a library with parse and print.
func Library() *library.Library {
	return library.New().
		Register("parse", func() script.Tag { return &ParseTag{} }).
		Register("print", func() script.Tag { return &PrintTag{} })
}

// ParseTag parses the resource named by uri, or its body text, and binds the
// document to var.
type ParseTag struct {
	script.Support
	Var string `attr:"var"`
	URI string `attr:"uri"`
}

func (t *ParseTag) Validate() error {
	if t.Var == "" {
		return domain.MissingAttribute("var")
	}
	return nil
}

func (t *ParseTag) DoTag(ctx context.Context, out output.Output) error {
	var r io.Reader
	if t.URI != "" {
		rc, err := t.Scope().Resolve(ctx, t.URI)
		if err != nil {
			return err
		}
		defer rc.Close()
		r = rc
	} else {
		text, err := t.BodyText(ctx)
		if err != nil {
			return err
		}
		r = strings.NewReader(text)
	}

	doc, err := Parse(r)
	if err != nil {
		return err
	}
	t.Scope().SetLocal(t.Var, doc)
	return nil
}

// PrintTag re-emits a parsed document or node. Strings are written as text.
type PrintTag struct {
	script.Support
	Value any `attr:"value"`
}

func (t *PrintTag) DoTag(ctx context.Context, out output.Output) error {
	switch v := t.Value.(type) {
	case nil:
		return domain.MissingAttribute("value")
	case *output.Node:
		return v.Emit(out)
	case []*output.Node:
		for _, n := range v {
			if err := n.Emit(out); err != nil {
				return err
			}
		}
		return nil
	default:
		return out.Write(expression.ToString(v))
	}
}

// Parse reads markup into a tree. The returned node is a synthetic root whose
// children are the document's top-level nodes.
func Parse(r io.Reader) (*output.Node, error) {
	rec := output.NewRecorder()
	dec := xml.NewDecoder(r)
	dec.Entity = xml.HTMLEntity
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse document: %w", err)
		}
		switch tk := tok.(type) {
		case xml.StartElement:
			attrs := make([]output.Attr, 0, len(tk.Attr))
			for _, a := range tk.Attr {
				if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" && a.Name.Space == "" {
					continue
				}
				attrs = append(attrs, output.Attr{Name: domain.Name(a.Name.Space, a.Name.Local), Value: a.Value})
			}
			_ = rec.StartElement(domain.Name(tk.Name.Space, tk.Name.Local), attrs)
		case xml.EndElement:
			_ = rec.EndElement(domain.Name(tk.Name.Space, tk.Name.Local))
		case xml.CharData:
			_ = rec.Write(string(tk))
		}
	}
	return rec.Document()
}
