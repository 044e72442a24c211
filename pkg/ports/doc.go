/*
Package ports defines the driven ports (interfaces) for the tendril engine.

These interfaces decouple the execution core from the places script sources and other
resources live, allowing the engine to work with the filesystem, Loam repositories,
Redis or plain memory without changing a line of the core.

# Key Interfaces

  - ResourceResolver: Opens a resource by (possibly relative) identifier.
  - ResourceLister: Enumerates the resources a resolver can open.
  - Watchable: Notifies about backend changes for hot reload.
*/
package ports
