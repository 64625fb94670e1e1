/*
Package ports defines the driven ports (interfaces) of the mediaflow compiler.

These interfaces decouple the core evaluator from the external collaborators it
drives, so the core works with any media engine, reference resolver, or cache.

# Key Interfaces

  - Resolver: turns a reference (remote URL or local path) into a local file path.
  - Prober: reads media metadata (duration, dimensions, codecs, format).
  - Runner: materializes a compiled filter graph into an output file.
  - AssetCache: remembers where a remote reference was retrieved to.
*/
package ports
