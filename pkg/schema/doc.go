// Package schema converts workflow trees to and from their wire form.
//
// A wire node is either a leaf or an action:
//
//	{"url": "https://example.com/intro.mp4"}
//	{"action": "trim", "input": {"url": "intro.mp4"}, "start": 0, "duration": 3}
//
// N-ary actions (concat, crossfade, audio_mix, overlay) carry a list under
// "input". Parameters sit flat beside "action" and "input". Two legacy shapes
// are accepted on input: a bare string stands for a leaf, and
// {"result_stream": "<token>"} embeds a previously encoded tree.
//
// Decoding runs every action through dsl.Build, so a decoded tree has passed
// the same validation as one built in Go.
//
// Tokens are base64 encoded JSON trees. They let a client chain builder calls
// across a stateless tool surface:
//
//	tok, _ := schema.EncodeToken(node)
//	node, _ = schema.DecodeToken(tok)
package schema
