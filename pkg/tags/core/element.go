package core

import (
	"context"
	"errors"

	"github.com/aretw0/tendril/pkg/domain"
	"github.com/aretw0/tendril/pkg/expression"
	"github.com/aretw0/tendril/pkg/output"
	"github.com/aretw0/tendril/pkg/script"
)

// ErrAttributeOutsideElement is returned by attribute without an enclosing element.
var ErrAttributeOutsideElement = errors.New("must be nested in an element tag")

// ElementTag emits an element whose name is computed at run time.
// Attributes come from nested attribute tags; the rest of the body is its content.
type ElementTag struct {
	script.Support
	Name string `attr:"name"`
	URI  string `attr:"uri"`

	attrs []output.Attr
}

func (t *ElementTag) Validate() error {
	if t.Name == "" {
		return domain.MissingAttribute("name")
	}
	return nil
}

// SetElementAttribute adds or replaces an attribute of the element.
func (t *ElementTag) SetElementAttribute(name, value string) {
	for i, a := range t.attrs {
		if a.Name.Local == name {
			t.attrs[i].Value = value
			return
		}
	}
	t.attrs = append(t.attrs, output.Attr{Name: domain.Name("", name), Value: value})
}

func (t *ElementTag) DoTag(ctx context.Context, out output.Output) error {
	content := output.NewRecorder()
	if err := t.InvokeBody(ctx, content); err != nil {
		return err
	}

	name := domain.Name(t.URI, t.Name)
	if err := out.StartElement(name, t.attrs); err != nil {
		return err
	}
	if err := content.Replay(out); err != nil {
		return err
	}
	return out.EndElement(name)
}

// AttributeTag sets an attribute on the enclosing element, from value or the body text.
type AttributeTag struct {
	script.Support
	Name  string `attr:"name"`
	Value any    `attr:"value"`
}

func (t *AttributeTag) Validate() error {
	if t.Name == "" {
		return domain.MissingAttribute("name")
	}
	return nil
}

func (t *AttributeTag) DoTag(ctx context.Context, out output.Output) error {
	element, ok := script.FindAncestor[*ElementTag](t)
	if !ok {
		return ErrAttributeOutsideElement
	}
	value := expression.ToString(t.Value)
	if t.Value == nil {
		text, err := t.BodyText(ctx)
		if err != nil {
			return err
		}
		value = text
	}
	element.SetElementAttribute(t.Name, value)
	return nil
}
