package core

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/aretw0/tendril/pkg/domain"
	"github.com/aretw0/tendril/pkg/expression"
	"github.com/aretw0/tendril/pkg/output"
	"github.com/aretw0/tendril/pkg/script"
)

// DefaultMaxIterations bounds while loops that set no explicit max.
const DefaultMaxIterations = 10000

// ForEachTag runs its body once per item, each time in a fresh child scope holding
// var (the item) and indexVar (its position). Without items it counts from begin to end.
//
// Items may be a slice, an array, a map (iterated by sorted key as {key, value}
// entries) or a comma separated string.
type ForEachTag struct {
	script.Support
	Items    any    `attr:"items"`
	Var      string `attr:"var"`
	IndexVar string `attr:"indexVar"`
	Begin    int    `attr:"begin"`
	End      *int   `attr:"end"`
	Step     int    `attr:"step"`
}

func (t *ForEachTag) Validate() error {
	if t.Begin < 0 {
		return fmt.Errorf("begin must not be negative, got %d", t.Begin)
	}
	if t.Step <= 0 {
		return fmt.Errorf("step must be positive, got %d", t.Step)
	}
	if t.Items == nil && t.End == nil {
		return fmt.Errorf("either items or end is required")
	}
	return nil
}

func (t *ForEachTag) DoTag(ctx context.Context, out output.Output) error {
	items, err := toItems(t.Items)
	if err != nil {
		return err
	}

	end := len(items) - 1
	if t.End != nil && (t.Items == nil || *t.End < end) {
		end = *t.End
	}

	body := t.Body()
	for i := t.Begin; i <= end; i += t.Step {
		if err := ctx.Err(); err != nil {
			return err
		}
		iter := t.Scope().NewChild()
		if t.Var != "" {
			if t.Items == nil {
				iter.SetLocal(t.Var, i)
			} else {
				iter.SetLocal(t.Var, items[i])
			}
		}
		if t.IndexVar != "" {
			iter.SetLocal(t.IndexVar, i)
		}
		if err := body.Run(ctx, iter, out); err != nil {
			return err
		}
	}
	return nil
}

func toItems(v any) ([]any, error) {
	switch items := v.(type) {
	case nil:
		return nil, nil
	case []any:
		return items, nil
	case string:
		if strings.TrimSpace(items) == "" {
			return nil, nil
		}
		parts := strings.Split(items, ",")
		out := make([]any, len(parts))
		for i, p := range parts {
			out[i] = strings.TrimSpace(p)
		}
		return out, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, nil
	case reflect.Map:
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
		})
		out := make([]any, len(keys))
		for i, k := range keys {
			out[i] = map[string]any{"key": k.Interface(), "value": rv.MapIndex(k).Interface()}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("cannot iterate over %T", v)
	}
}

// WhileTag runs its body as long as test holds.
// test is an expression source without ${}, evaluated before every iteration
// against the enclosing scope, so the body can change its outcome.
type WhileTag struct {
	script.Support
	Test string `attr:"test"`
	Max  int    `attr:"max"`
}

func (t *WhileTag) DoTag(ctx context.Context, out output.Output) error {
	test, err := expression.Compile(t.Test)
	if err != nil {
		return err
	}
	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		v, err := test.Evaluate(t.Scope())
		if err != nil {
			return err
		}
		if !expression.ToBool(v) {
			return nil
		}
		if t.Max > 0 && i >= t.Max {
			return fmt.Errorf("while %q exceeded %d iterations", t.Test, t.Max)
		}
		if err := t.InvokeBody(ctx, out); err != nil {
			return err
		}
	}
}

func (t *WhileTag) Validate() error {
	if strings.TrimSpace(t.Test) == "" {
		return domain.MissingAttribute("test")
	}
	return nil
}
