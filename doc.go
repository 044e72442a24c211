/*
Package tendril is a tag-based script execution engine.

A markup document is compiled once into a tree of script nodes. Each run walks the tree
against a hierarchical variable scope, creates a fresh handler ("tag") for every element
bound to a tag library and streams structured output to a sink. Compiled trees are
immutable, so one script can serve any number of concurrent runs.

# Concept

Elements whose namespace is bound to a library are executed; everything else is plain
markup and is re-emitted as is. Text and attribute values may embed expressions with
${...}, evaluated by github.com/expr-lang/expr against the visible variables.

	<page xmlns:c="tendril:core">
	  <c:forEach items="${users}" var="user">
	    <li>${user.Name}</li>
	  </c:forEach>
	</page>

# Key Features

  - Compile once, run many: tag instances are per run, never shared.
  - Scoped variables: child scopes delegate reads to their parent and export
    boundaries collect results published by nested tags.
  - Pluggable vocabularies: libraries map namespace + local name to tags, with a
    dynamic fallback for open vocabularies.
  - Whitespace normalization: tag bodies are trimmed unless trim="false".
  - Resources from files, Loam repositories, Redis or memory.

# Usage

	package main

	import (
		"context"
		"log"
		"os"

		"github.com/aretw0/tendril"
		"github.com/aretw0/tendril/pkg/adapters/file"
		"github.com/aretw0/tendril/pkg/output"
	)

	func main() {
		eng := tendril.New(tendril.WithResources(file.New("./scripts")))

		out := output.NewXMLWriter(os.Stdout, true)
		err := eng.RunResource(context.Background(), "index.xml", map[string]any{"name": "Ada"}, out)
		if err != nil {
			log.Fatal(err)
		}
	}
*/
package tendril
