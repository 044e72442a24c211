package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoTag is returned by operations that need an enclosing tag when there is none.
var ErrNoTag = errors.New("no enclosing tag")

// ParseError represents malformed source. It is fatal to the compilation.
type ParseError struct {
	Source string
	Line   int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s:%d: %v", e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ExpressionError attributes an evaluator failure to the expression source.
type ExpressionError struct {
	Expression string
	Err        error
}

func (e *ExpressionError) Error() string {
	return fmt.Sprintf("expression %q: %v", e.Expression, e.Err)
}

func (e *ExpressionError) Unwrap() error { return e.Err }

// AttributeError reports a failure to evaluate or assign a tag attribute.
// The tag is never executed when one of these is raised.
type AttributeError struct {
	Tag       QName
	Attribute string
	Stack     []QName
	Err       error
}

func (e *AttributeError) Error() string {
	return fmt.Sprintf("tag <%s> attribute %q: %v", e.Tag, e.Attribute, e.Err)
}

func (e *AttributeError) Unwrap() error { return e.Err }

func (e *AttributeError) Trace() string { return trace(e.Stack) }

// MissingAttributeError reports a required attribute that was not supplied.
// Tags usually create it through MissingAttribute and the driver fills in Tag.
type MissingAttributeError struct {
	Tag       QName
	Attribute string
	Stack     []QName
}

func (e *MissingAttributeError) Error() string {
	if e.Tag.Local == "" {
		return fmt.Sprintf("missing required attribute %q", e.Attribute)
	}
	return fmt.Sprintf("tag <%s> is missing required attribute %q", e.Tag, e.Attribute)
}

func (e *MissingAttributeError) Trace() string { return trace(e.Stack) }

// MissingAttribute creates a MissingAttributeError for the named attribute.
func MissingAttribute(attribute string) error {
	return &MissingAttributeError{Attribute: attribute}
}

// UnresolvedTagError is raised for unknown tags when the engine runs in strict mode.
type UnresolvedTagError struct {
	Tag      QName
	Location Location
	Stack    []QName
}

func (e *UnresolvedTagError) Error() string {
	return fmt.Sprintf("no tag library provides <%s> (at %s)", e.Tag, e.Location)
}

func (e *UnresolvedTagError) Trace() string { return trace(e.Stack) }

// TagError wraps a failure raised while executing a tag.
// Stack holds the names of the active tags at failure time, innermost first.
type TagError struct {
	Tag      QName
	Location Location
	Stack    []QName
	Err      error
}

func (e *TagError) Error() string {
	return fmt.Sprintf("tag <%s> at %s failed: %v", e.Tag, e.Location, e.Err)
}

func (e *TagError) Unwrap() error { return e.Err }

// Trace renders the synthetic stack as "a > b > c", outermost first.
func (e *TagError) Trace() string { return trace(e.Stack) }

// Traced is implemented by errors that carry the stack of active tags.
type Traced interface {
	error
	Trace() string
}

// TraceOf returns the trace of the first error in err's chain that carries one.
func TraceOf(err error) (string, bool) {
	var t Traced
	if errors.As(err, &t) && t.Trace() != "" {
		return t.Trace(), true
	}
	return "", false
}

func trace(stack []QName) string {
	parts := make([]string, len(stack))
	for i, name := range stack {
		parts[len(stack)-1-i] = name.String()
	}
	return strings.Join(parts, " > ")
}
