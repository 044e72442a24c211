package script

import (
	"fmt"

	"github.com/aretw0/tendril/pkg/expression"
	"github.com/mitchellh/mapstructure"
)

// AttributeTag is the struct tag naming the attribute a field binds to.
const AttributeTag = "attr"

// assign delivers one evaluated attribute to tag. Static markup keeps trim as an
// ordinary attribute.
func assign(tag Tag, name string, value any) error {
	if _, static := tag.(*StaticTag); name == "trim" && !static {
		if t, ok := tag.(Trimmer); ok {
			t.SetTrim(expression.ToBool(value))
			return nil
		}
	}
	if s, ok := tag.(AttributeSetter); ok {
		return s.SetAttribute(name, value)
	}
	return Bind(tag, map[string]any{name: value})
}

// Bind decodes attrs into the struct target points to. Field names come from `attr`
// struct tags; values are converted weakly ("3" fills an int) and unknown names fail.
func Bind(target any, attrs map[string]any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          AttributeTag,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Squash:           true,
		Result:           target,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return fmt.Errorf("cannot bind attributes to %T: %w", target, err)
	}
	return dec.Decode(attrs)
}
