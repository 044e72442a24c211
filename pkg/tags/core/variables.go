package core

import (
	"context"
	"encoding/xml"
	"strings"

	"github.com/aretw0/tendril/pkg/domain"
	"github.com/aretw0/tendril/pkg/expression"
	"github.com/aretw0/tendril/pkg/output"
	"github.com/aretw0/tendril/pkg/script"
)

// SetTag binds var to value, or to the body text when value is absent.
// With export the binding goes to the nearest export boundary instead of the
// enclosing scope.
type SetTag struct {
	script.Support
	Var    string `attr:"var"`
	Value  any    `attr:"value"`
	Export bool   `attr:"export"`
}

func (t *SetTag) Validate() error {
	if t.Var == "" {
		return domain.MissingAttribute("var")
	}
	return nil
}

func (t *SetTag) DoTag(ctx context.Context, out output.Output) error {
	value := t.Value
	if value == nil {
		text, err := t.BodyText(ctx)
		if err != nil {
			return err
		}
		value = text
	}
	if t.Export {
		t.Scope().SetExported(t.Var, value)
	} else {
		t.Scope().SetLocal(t.Var, value)
	}
	return nil
}

// RemoveTag deletes a binding from the enclosing scope.
type RemoveTag struct {
	script.Support
	Var string `attr:"var"`
}

func (t *RemoveTag) Validate() error {
	if t.Var == "" {
		return domain.MissingAttribute("var")
	}
	return nil
}

func (t *RemoveTag) DoTag(ctx context.Context, out output.Output) error {
	t.Scope().Remove(t.Var)
	return nil
}

// OutTag writes value as text. With escape the text is escaped for markup before it
// reaches the sink, which is useful with raw sinks.
type OutTag struct {
	script.Support
	Value  any  `attr:"value"`
	Escape bool `attr:"escape"`
}

func (t *OutTag) DoTag(ctx context.Context, out output.Output) error {
	text := expression.ToString(t.Value)
	if t.Escape {
		var b strings.Builder
		if err := xml.EscapeText(&b, []byte(text)); err != nil {
			return err
		}
		text = b.String()
	}
	return out.Write(text)
}

// ScopeTag runs its body in a new child scope.
type ScopeTag struct {
	script.Support
}

func (t *ScopeTag) DoTag(ctx context.Context, out output.Output) error {
	return t.Body().Run(ctx, t.Scope().NewChild(), out)
}

// WhitespaceTag runs its body without whitespace normalization.
type WhitespaceTag struct {
	script.Support
}

// NewWhitespaceTag creates a tag with trimming disabled, inherited by nested tags.
func NewWhitespaceTag() script.Tag {
	t := &WhitespaceTag{}
	t.SetTrim(false)
	return t
}

func (t *WhitespaceTag) DoTag(ctx context.Context, out output.Output) error {
	return t.InvokeBody(ctx, out)
}
