package script

import (
	"context"

	"github.com/aretw0/tendril/pkg/output"
	"github.com/aretw0/tendril/pkg/scope"
)

// Support implements the Tag plumbing. Concrete tags embed it and add DoTag.
type Support struct {
	parent     Tag
	body       Script
	scope      *scope.Scope
	trim       *bool
	normalized bool
}

func (s *Support) Parent() Tag {
	return s.parent
}

func (s *Support) SetParent(parent Tag) {
	s.parent = parent
}

// Body returns the body, whitespace-normalized on first access when IsTrim is true.
func (s *Support) Body() Script {
	if !s.normalized {
		if s.body != nil && s.IsTrim() {
			s.body = Trim(s.body)
		}
		s.normalized = true
	}
	return s.body
}

func (s *Support) SetBody(body Script) {
	s.body = body
	s.normalized = false
}

func (s *Support) Scope() *scope.Scope {
	return s.scope
}

func (s *Support) SetScope(sc *scope.Scope) error {
	s.scope = sc
	return nil
}

func (s *Support) SetTrim(trim bool) {
	s.trim = &trim
}

// IsTrim reports whether the body is whitespace-normalized.
// When never set, the value is inherited from the parent if it tracks trim, and true
// otherwise. The first answer is kept.
func (s *Support) IsTrim() bool {
	if s.trim == nil {
		trim := true
		if p, ok := s.parent.(Trimmer); ok {
			trim = p.IsTrim()
		}
		s.trim = &trim
	}
	return *s.trim
}

func (s *Support) InvokeBody(ctx context.Context, out output.Output) error {
	body := s.Body()
	if body == nil {
		return nil
	}
	return body.Run(ctx, s.scope, out)
}

// BodyText runs the body and returns what it wrote, markup included and unescaped.
func (s *Support) BodyText(ctx context.Context) (string, error) {
	return RenderText(ctx, s.Body(), s.scope)
}

// BodyTextEscaped is BodyText with text escaped for markup.
func (s *Support) BodyTextEscaped(ctx context.Context) (string, error) {
	body := s.Body()
	if body == nil {
		return "", nil
	}
	return output.Render(true, func(out output.Output) error {
		return body.Run(ctx, s.scope, out)
	})
}

// MapSupport collects every attribute into a map. Dynamic libraries use it when the
// attribute set is not known in advance.
type MapSupport struct {
	Support
	Attributes map[string]any
}

func (m *MapSupport) SetAttribute(name string, value any) error {
	if m.Attributes == nil {
		m.Attributes = make(map[string]any)
	}
	m.Attributes[name] = value
	return nil
}
