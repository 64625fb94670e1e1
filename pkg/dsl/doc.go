/*
Package dsl provides the workflow builder: one validating constructor per action kind.

Every constructor checks its parameters immediately and returns a
*domain.ValidationError before any media resource is touched. Inputs may be
given as a reference string, a previously built node, or a slice of either;
they are normalized into the typed tree of package domain.

Example usage:

	package main

	import (
		"github.com/ofekfell/mediaflow/pkg/dsl"
	)

	func main() {
		intro, err := dsl.From("intro.mp4").Trim(0, 3).Fade(dsl.FadeIn, 0, 1).Build()
		if err != nil {
			panic(err)
		}

		// Lists mix references and built nodes freely.
		tree, err := dsl.Concat([]any{intro, "https://example.com/main.mp4"})
		if err != nil {
			panic(err)
		}

		// The resulting tree is passed to mediaflow.Engine.Render.
		_ = tree
	}

Chained fades are not checked against each other. An "out" fade whose window
precedes a later "in" fade renders black; ordering them is the caller's job.
*/
package dsl
