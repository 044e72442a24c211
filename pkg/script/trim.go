package script

import (
	"strings"
	"unicode"

	"github.com/aretw0/tendril/pkg/expression"
)

// Trim returns the whitespace-normalized form of s:
//   - a sequence holding dynamic text loses leading whitespace on its first child and
//     trailing whitespace on its last, interior children are untouched;
//   - any other sequence drops whitespace-only text children and trims the rest;
//   - lone text, static or dynamic, is trimmed at both ends.
//
// The result is computed once per node and never alters s. Trim is idempotent.
func Trim(s Script) Script {
	switch n := s.(type) {
	case *Text:
		n.trimOnce.Do(func() {
			n.trimmed = &Text{Value: strings.TrimSpace(n.Value)}
		})
		return n.trimmed
	case *DynamicText:
		n.trimOnce.Do(func() {
			n.trimmed = trimDynamic(n, true, true)
		})
		return n.trimmed
	case *Sequence:
		n.trimOnce.Do(func() {
			n.trimmed = trimSequence(n)
		})
		return n.trimmed
	default:
		return s
	}
}

func trimSequence(seq *Sequence) Script {
	dynamic := false
	for _, c := range seq.Children {
		if _, ok := c.(*DynamicText); ok {
			dynamic = true
			break
		}
	}

	if dynamic {
		children := append([]Script(nil), seq.Children...)
		last := len(children) - 1
		children[0] = trimEdge(children[0], true, last == 0)
		if last > 0 {
			children[last] = trimEdge(children[last], false, true)
		}
		return NewSequence(children...)
	}

	children := make([]Script, 0, len(seq.Children))
	for _, c := range seq.Children {
		t, ok := c.(*Text)
		if !ok {
			children = append(children, c)
			continue
		}
		if v := strings.TrimSpace(t.Value); v != "" {
			children = append(children, &Text{Value: v})
		}
	}
	return NewSequence(children...)
}

func trimEdge(s Script, left, right bool) Script {
	switch n := s.(type) {
	case *Text:
		v := n.Value
		if left {
			v = strings.TrimLeftFunc(v, unicode.IsSpace)
		}
		if right {
			v = strings.TrimRightFunc(v, unicode.IsSpace)
		}
		return &Text{Value: v}
	case *DynamicText:
		return trimDynamic(n, left, right)
	default:
		return s
	}
}

// trimDynamic trims the literal fragments at the edges. Expression results are never trimmed.
func trimDynamic(d *DynamicText, left, right bool) *DynamicText {
	frags := append([]expression.Fragment(nil), d.Fragments...)
	if n := len(frags); n > 0 {
		if left && frags[0].IsLiteral() {
			frags[0].Literal = strings.TrimLeftFunc(frags[0].Literal, unicode.IsSpace)
		}
		if right && frags[n-1].IsLiteral() {
			frags[n-1].Literal = strings.TrimRightFunc(frags[n-1].Literal, unicode.IsSpace)
		}
	}
	return NewDynamicText(frags...)
}
