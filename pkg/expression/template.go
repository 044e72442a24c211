package expression

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnterminated is returned for a "${" without its closing brace.
var ErrUnterminated = errors.New("unterminated ${ placeholder")

// Fragment is one piece of a template: literal text or an expression.
type Fragment struct {
	Literal string
	Expr    Expression
}

// IsLiteral reports whether the fragment is plain text.
func (f Fragment) IsLiteral() bool {
	return f.Expr == nil
}

// ParseTemplate splits text into literal and ${...} fragments.
// "$${" produces a literal "${". Adjacent literals are merged.
func ParseTemplate(text string) ([]Fragment, error) {
	var (
		frags []Fragment
		lit   strings.Builder
	)
	flush := func() {
		if lit.Len() > 0 {
			frags = append(frags, Fragment{Literal: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(text); {
		if strings.HasPrefix(text[i:], "$${") {
			lit.WriteString("${")
			i += 3
			continue
		}
		if !strings.HasPrefix(text[i:], "${") {
			lit.WriteByte(text[i])
			i++
			continue
		}
		end := closingBrace(text, i+2)
		if end < 0 {
			return nil, &templateError{text: text, err: ErrUnterminated}
		}
		src := strings.TrimSpace(text[i+2 : end])
		e, err := Compile(src)
		if err != nil {
			return nil, err
		}
		flush()
		frags = append(frags, Fragment{Expr: e})
		i = end + 1
	}
	flush()
	return frags, nil
}

// closingBrace finds the brace that closes a placeholder opened before start,
// skipping nested braces and quoted strings.
func closingBrace(text string, start int) int {
	depth := 0
	var quote byte
	for i := start; i < len(text); i++ {
		c := text[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'' || c == '`':
			quote = c
		case c == '{':
			depth++
		case c == '}':
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return -1
}

// HasPlaceholders reports whether text contains at least one expression.
func HasPlaceholders(frags []Fragment) bool {
	for _, f := range frags {
		if !f.IsLiteral() {
			return true
		}
	}
	return false
}

// CompileAttribute compiles an attribute value.
// Literal text yields a Constant, a lone placeholder yields its expression so the value
// keeps its type, anything else concatenates.
func CompileAttribute(text string) (Expression, error) {
	frags, err := ParseTemplate(text)
	if err != nil {
		return nil, err
	}
	switch {
	case !HasPlaceholders(frags):
		lit := ""
		if len(frags) == 1 {
			lit = frags[0].Literal
		}
		return Constant{Value: lit, Text: text}, nil
	case len(frags) == 1:
		return frags[0].Expr, nil
	default:
		return &Concat{Fragments: frags, Text: text}, nil
	}
}

// Concat evaluates fragments and joins their string forms.
type Concat struct {
	Fragments []Fragment
	Text      string
}

func (c *Concat) Evaluate(vars Variables) (any, error) {
	var b strings.Builder
	for _, f := range c.Fragments {
		if f.IsLiteral() {
			b.WriteString(f.Literal)
			continue
		}
		v, err := f.Expr.Evaluate(vars)
		if err != nil {
			return nil, err
		}
		b.WriteString(ToString(v))
	}
	return b.String(), nil
}

func (c *Concat) Source() string { return c.Text }

type templateError struct {
	text string
	err  error
}

func (e *templateError) Error() string { return fmt.Sprintf("%v in %q", e.err, e.text) }

func (e *templateError) Unwrap() error { return e.err }
