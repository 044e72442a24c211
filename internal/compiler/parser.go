// Package compiler turns markup documents into script trees.
package compiler

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/tendril/pkg/domain"
	"github.com/aretw0/tendril/pkg/expression"
	"github.com/aretw0/tendril/pkg/script"
)

// ErrEmptyDocument is returned for sources without a root element.
var ErrEmptyDocument = errors.New("document has no root element")

// Parser is responsible for converting markup into a script tree.
// Elements become invocations keyed by namespace URI and local name, character data
// becomes text, with ${...} placeholders compiled into dynamic text.
type Parser struct{}

// NewParser creates a new parser instance.
func NewParser() *Parser {
	return &Parser{}
}

type element struct {
	inv      *script.Invocation
	children []script.Script
}

// Parse reads one document. name is used for diagnostics and source locations.
func (p *Parser) Parse(r io.Reader, name string) (script.Script, error) {
	dec := xml.NewDecoder(r)
	dec.Entity = xml.HTMLEntity

	var (
		stack []*element
		root  script.Script
		text  strings.Builder
	)

	fail := func(err error) error {
		line, _ := dec.InputPos()
		var syntax *xml.SyntaxError
		if errors.As(err, &syntax) {
			line = syntax.Line
		}
		return &domain.ParseError{Source: name, Line: line, Err: err}
	}

	flush := func() error {
		if text.Len() == 0 {
			return nil
		}
		raw := text.String()
		text.Reset()
		if len(stack) == 0 {
			if strings.TrimSpace(raw) != "" {
				return fmt.Errorf("text outside the root element: %q", strings.TrimSpace(raw))
			}
			return nil
		}
		node, err := compileText(raw)
		if err != nil {
			return err
		}
		top := stack[len(stack)-1]
		top.children = append(top.children, node)
		return nil
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fail(err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if err := flush(); err != nil {
				return nil, fail(err)
			}
			if len(stack) == 0 && root != nil {
				return nil, fail(errors.New("multiple root elements"))
			}
			line, _ := dec.InputPos()
			inv := &script.Invocation{
				Name:     domain.Name(t.Name.Space, t.Name.Local),
				Location: domain.Location{Source: name, Line: line},
			}
			for _, a := range t.Attr {
				if isNamespaceDecl(a.Name) {
					continue
				}
				expr, err := expression.CompileAttribute(a.Value)
				if err != nil {
					return nil, fail(fmt.Errorf("attribute %q: %w", a.Name.Local, err))
				}
				inv.Attributes = append(inv.Attributes, script.AttributeExpr{Name: a.Name.Local, Expr: expr})
			}
			stack = append(stack, &element{inv: inv})

		case xml.EndElement:
			if err := flush(); err != nil {
				return nil, fail(err)
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			top.inv.Body = collapse(top.children)
			if len(stack) == 0 {
				root = top.inv
				continue
			}
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, top.inv)

		case xml.CharData:
			text.Write(t)
		}
	}

	if err := flush(); err != nil {
		return nil, fail(err)
	}
	if root == nil {
		return nil, fail(ErrEmptyDocument)
	}
	return root, nil
}

// compileText builds a Text, or a DynamicText when raw holds placeholders.
func compileText(raw string) (script.Script, error) {
	frags, err := expression.ParseTemplate(raw)
	if err != nil {
		return nil, err
	}
	if !expression.HasPlaceholders(frags) {
		lit := ""
		if len(frags) == 1 {
			lit = frags[0].Literal
		}
		return script.NewText(lit), nil
	}
	return script.NewDynamicText(frags...), nil
}

// collapse turns children into a body. A single child is the body itself.
func collapse(children []script.Script) script.Script {
	switch len(children) {
	case 0:
		return script.Empty()
	case 1:
		return children[0]
	default:
		return script.NewSequence(children...)
	}
}

func isNamespaceDecl(name xml.Name) bool {
	return name.Space == "xmlns" || (name.Space == "" && name.Local == "xmlns")
}
