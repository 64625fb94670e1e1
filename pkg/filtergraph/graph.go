// Package filtergraph builds ffmpeg filter graphs out of immutable stream handles.
//
// A Graph is owned by one render. Handles returned by Input, Filter and Join
// describe streams; nothing runs until the compiled Job is handed to an engine.
// A Graph is not safe for concurrent use.
package filtergraph

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrStreamReused is returned when one stream handle feeds more than one consumer.
var ErrStreamReused = errors.New("stream consumed more than once")

// MediaType is the channel a stream carries.
type MediaType int

const (
	Video MediaType = iota
	Audio
)

func (m MediaType) String() string {
	if m == Audio {
		return "audio"
	}
	return "video"
}

// Stream is an immutable handle to one pad of the graph.
type Stream struct {
	graph *Graph
	kind  MediaType
	label string
	input bool
}

// Type returns the channel carried by the stream.
func (s *Stream) Type() MediaType { return s.kind }

// Label returns the pad label used in the compiled filter graph.
func (s *Stream) Label() string { return s.label }

// Arg is one filter option. An empty Key makes it positional.
type Arg struct {
	Key   string
	Value string
}

// KV builds a named filter option.
func KV(key string, value any) Arg {
	return Arg{Key: key, Value: format(value)}
}

// Pos builds a positional filter option.
func Pos(value any) Arg {
	return Arg{Value: format(value)}
}

func format(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		if x {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprint(x)
	}
}

type filter struct {
	name    string
	args    []Arg
	inputs  []*Stream
	outputs []*Stream
}

// Graph accumulates inputs and filters for one materialization.
type Graph struct {
	inputs  []string
	filters []*filter
	next    int
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{}
}

// Input registers a media file and returns its video and audio handles.
// Every call adds a distinct engine input, even for a repeated path.
func (g *Graph) Input(path string) (video, audio *Stream) {
	idx := len(g.inputs)
	g.inputs = append(g.inputs, path)
	video = &Stream{graph: g, kind: Video, label: fmt.Sprintf("%d:v", idx), input: true}
	audio = &Stream{graph: g, kind: Audio, label: fmt.Sprintf("%d:a", idx), input: true}
	return video, audio
}

// Filter applies a single-input, single-output filter and returns the new handle.
// The receiver is left untouched.
func (s *Stream) Filter(name string, args ...Arg) *Stream {
	return s.graph.apply(name, args, []MediaType{s.kind}, s)[0]
}

// Join applies a filter consuming every stream in order and producing one output of kind out.
func (g *Graph) Join(name string, out MediaType, args []Arg, in ...*Stream) *Stream {
	return g.apply(name, args, []MediaType{out}, in...)[0]
}

func (g *Graph) apply(name string, args []Arg, outs []MediaType, in ...*Stream) []*Stream {
	f := &filter{name: name, args: args, inputs: in}
	for _, kind := range outs {
		f.outputs = append(f.outputs, &Stream{graph: g, kind: kind, label: fmt.Sprintf("s%d", g.next)})
		g.next++
	}
	g.filters = append(g.filters, f)
	return f.outputs
}

// Inputs returns the registered input paths in engine order.
func (g *Graph) Inputs() []string {
	out := make([]string, len(g.inputs))
	copy(out, g.inputs)
	return out
}

// FilterComplex renders the whole graph in ffmpeg -filter_complex syntax.
func (g *Graph) FilterComplex() string {
	return render(g.filters)
}

func render(filters []*filter) string {
	chains := make([]string, 0, len(filters))
	for _, f := range filters {
		var sb strings.Builder
		for _, in := range f.inputs {
			sb.WriteString("[" + in.label + "]")
		}
		sb.WriteString(f.name)
		if len(f.args) > 0 {
			sb.WriteString("=")
			parts := make([]string, 0, len(f.args))
			for _, a := range f.args {
				if a.Key == "" {
					parts = append(parts, escape(a.Value))
				} else {
					parts = append(parts, a.Key+"="+escape(a.Value))
				}
			}
			sb.WriteString(strings.Join(parts, ":"))
		}
		for _, out := range f.outputs {
			sb.WriteString("[" + out.label + "]")
		}
		chains = append(chains, sb.String())
	}
	return strings.Join(chains, ";")
}

// reachable returns, in creation order, the filters that feed any of the
// given streams. ffmpeg rejects filter outputs left unconnected, so branches
// nobody maps (the discarded audio of an overlay) are dropped.
func (g *Graph) reachable(streams []*Stream) []*filter {
	producer := make(map[string]*filter, len(g.filters))
	for _, f := range g.filters {
		for _, out := range f.outputs {
			producer[out.label] = f
		}
	}

	keep := make(map[*filter]bool)
	stack := append([]*Stream(nil), streams...)
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		f, ok := producer[s.label]
		if !ok || keep[f] {
			continue
		}
		keep[f] = true
		stack = append(stack, f.inputs...)
	}

	out := make([]*filter, 0, len(keep))
	for _, f := range g.filters {
		if keep[f] {
			out = append(out, f)
		}
	}
	return out
}

// Filters returns the filter names in creation order.
func (g *Graph) Filters() []string {
	out := make([]string, 0, len(g.filters))
	for _, f := range g.filters {
		out = append(out, f.name)
	}
	return out
}

var (
	optionEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`, `:`, `\:`)
	graphEscaper  = strings.NewReplacer(`\`, `\\`, `'`, `\'`, `,`, `\,`, `;`, `\;`, `[`, `\[`, `]`, `\]`, ` `, `\ `)
)

// escape quotes an option value for both parsing levels: the graph parser
// strips one level of escaping before the filter splits its options on ':'.
func escape(v string) string {
	if !strings.ContainsAny(v, `\':,;[] `) {
		return v
	}
	return graphEscaper.Replace(optionEscaper.Replace(v))
}
