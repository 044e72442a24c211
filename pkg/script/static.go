package script

import (
	"context"

	"github.com/aretw0/tendril/pkg/domain"
	"github.com/aretw0/tendril/pkg/expression"
	"github.com/aretw0/tendril/pkg/output"
)

// StaticTag re-emits an element no library provides: start element, body, end element.
type StaticTag struct {
	Support
	Name  domain.QName
	Attrs []output.Attr
}

// NewStaticTag creates a static tag for name.
func NewStaticTag(name domain.QName) *StaticTag {
	return &StaticTag{Name: name}
}

func (t *StaticTag) SetAttribute(name string, value any) error {
	t.Attrs = append(t.Attrs, output.Attr{Name: domain.Name("", name), Value: expression.ToString(value)})
	return nil
}

func (t *StaticTag) DoTag(ctx context.Context, out output.Output) error {
	if err := out.StartElement(t.Name, t.Attrs); err != nil {
		return err
	}
	if err := t.InvokeBody(ctx, out); err != nil {
		return err
	}
	return out.EndElement(t.Name)
}
