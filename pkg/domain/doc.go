/*
Package domain contains the core vocabulary shared by every layer of the tendril engine.

It defines the identifiers, error taxonomy and observability events used by the script
tree, the tag libraries and the adapters. This package is kept pure and free of external
dependencies like I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - QName: The (namespace, local name) pair a tag invocation is resolved by.
  - Location: Where in the source a script node came from.
  - Errors: ParseError, ExpressionError, AttributeError, MissingAttributeError,
    UnresolvedTagError and TagError.
  - LifecycleHooks: Callbacks fired around every tag execution.
*/
package domain
