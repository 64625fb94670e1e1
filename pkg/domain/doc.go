/*
Package domain contains the core domain models of the mediaflow compiler.

It defines the typed workflow tree, the closed set of editing actions with their
parameters, the probe metadata returned by the engine, and the error taxonomy
shared by every layer. This package is kept pure and free of I/O.

# Key Entities

  - Node: a workflow tree node, either a Leaf (a media reference) or an ActionNode.
  - ActionKind: the closed enumeration of editing actions.
  - Params: the typed parameter block of one ActionNode, one struct per kind.
  - MediaInfo: the metadata an engine reports for a media file.
*/
package domain
