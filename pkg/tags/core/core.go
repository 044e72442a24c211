// Package core provides the control-flow and variable tags every script can use.
//
// Bind the namespace "tendril:core" in a document to use them:
//
//	<page xmlns:c="tendril:core">
//	  <c:set var="greeting" value="Hello"/>
//	  <c:if test="${name != nil}">${greeting}, ${name}!</c:if>
//	</page>
package core

import (
	"github.com/aretw0/tendril/pkg/library"
	"github.com/aretw0/tendril/pkg/script"
)

// Namespace is the URI the core library is registered under.
const Namespace = "tendril:core"

// Library returns a library with every core tag.
func Library() *library.Library {
	return library.New().
		Register("set", func() script.Tag { return &SetTag{} }).
		Register("out", func() script.Tag { return &OutTag{} }).
		Register("if", func() script.Tag { return &IfTag{} }).
		Register("choose", func() script.Tag { return &ChooseTag{} }).
		Register("when", func() script.Tag { return &WhenTag{} }).
		Register("otherwise", func() script.Tag { return &OtherwiseTag{} }).
		Register("forEach", func() script.Tag { return &ForEachTag{Step: 1} }).
		Register("while", func() script.Tag { return &WhileTag{Max: DefaultMaxIterations} }).
		Register("catch", func() script.Tag { return &CatchTag{} }).
		Register("scope", func() script.Tag { return &ScopeTag{} }).
		Register("whitespace", NewWhitespaceTag).
		Register("include", func() script.Tag { return &IncludeTag{Export: true} }).
		Register("remove", func() script.Tag { return &RemoveTag{} }).
		Register("element", func() script.Tag { return &ElementTag{} }).
		Register("attribute", func() script.Tag { return &AttributeTag{} })
}
