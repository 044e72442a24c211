// Package beans builds nested maps from markup.
//
// Every element in the "tendril:beans" namespace is a bean, whatever its name: its
// attributes become map entries and nested beans are attached under their element
// name (repeated names collect into a list). The outermost bean is bound with var.
//
//	<b:server xmlns:b="tendril:beans" var="cfg" port="${8080}">
//	  <b:route path="/a"/>
//	  <b:route path="/b"/>
//	</b:server>
package beans

import (
	"context"
	"maps"

	"github.com/aretw0/tendril/pkg/domain"
	"github.com/aretw0/tendril/pkg/library"
	"github.com/aretw0/tendril/pkg/output"
	"github.com/aretw0/tendril/pkg/script"
)

// Namespace is the URI the beans library is registered under.
const Namespace = "tendril:beans"

// VarAttribute names the attribute that binds a bean instead of attaching it.
const VarAttribute = "var"

// Library returns a library resolving every local name to a bean.
func Library() *library.Library {
	return library.New().SetDynamic(func(local string) (script.Factory, bool) {
		return func() script.Tag { return &Tag{Name: local} }, true
	})
}

// Tag builds one bean.
type Tag struct {
	script.MapSupport
	Name string

	bean map[string]any
}

// Attach adds value under name, turning repeated names into a list.
func (t *Tag) Attach(name string, value any) {
	if t.bean == nil {
		t.bean = make(map[string]any)
	}
	existing, ok := t.bean[name]
	if !ok {
		t.bean[name] = value
		return
	}
	if list, ok := existing.([]any); ok {
		t.bean[name] = append(list, value)
		return
	}
	t.bean[name] = []any{existing, value}
}

func (t *Tag) DoTag(ctx context.Context, out output.Output) error {
	if t.bean == nil {
		t.bean = make(map[string]any)
	}
	maps.Copy(t.bean, t.Attributes)
	delete(t.bean, VarAttribute)

	if err := t.InvokeBody(ctx, out); err != nil {
		return err
	}

	if v, ok := t.Attributes[VarAttribute]; ok {
		name, _ := v.(string)
		if name == "" {
			return domain.MissingAttribute(VarAttribute)
		}
		t.Scope().SetExported(name, t.bean)
		return nil
	}
	if parent, ok := script.FindAncestor[*Tag](t); ok {
		parent.Attach(t.Name, t.bean)
		return nil
	}
	return domain.MissingAttribute(VarAttribute)
}
