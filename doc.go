/*
Package mediaflow compiles declarative media editing workflows into a single
ffmpeg invocation.

A workflow is a tree: leaves are media references (local paths or http(s)
URLs) and inner nodes are edit actions such as trim, concat, overlay or
crossfade. The engine resolves every reference, duplicates inputs that are
used more than once, normalizes each input to a common pixel format, frame
rate and sample rate, and emits one filter graph that ffmpeg runs to produce
one output file.

# Usage

Build trees with the pkg/dsl constructors, or decode JSON/YAML documents with
pkg/schema, then render:

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/ofekfell/mediaflow"
		"github.com/ofekfell/mediaflow/pkg/dsl"
	)

	func main() {
		eng, err := mediaflow.New()
		if err != nil {
			log.Fatal(err)
		}

		intro, _ := dsl.Trim("intro.mp4", 0, 5)
		root, err := dsl.Concat([]any{intro, "main.mp4"})
		if err != nil {
			log.Fatal(err)
		}

		out, err := eng.Render(context.Background(), root)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(out)
	}

# Adapters

The core only talks to ports (pkg/ports). The default adapters drive the
ffmpeg and ffprobe binaries (pkg/adapters/ffmpeg) and download remote
references over HTTP (pkg/adapters/resolver). The same engine is exposed as
an HTTP API (pkg/adapters/http), as MCP tools (pkg/adapters/mcp) and as the
mediaflow CLI (cmd/mediaflow).
*/
package mediaflow
