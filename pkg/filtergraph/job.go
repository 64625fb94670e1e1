package filtergraph

import (
	"fmt"
	"sort"
)

// Job is a compiled graph bound to one output path.
type Job struct {
	Inputs        []string `json:"inputs"`
	FilterComplex string   `json:"filter_complex,omitempty"`
	Maps          []string `json:"maps"`
	Output        string   `json:"output"`
}

// Output compiles the graph, mapping the given streams into path.
// Nil streams are skipped, so an absent audio channel needs no special casing.
// Filters that feed none of the mapped streams are left out of the job.
func (g *Graph) Output(path string, streams ...*Stream) (*Job, error) {
	var mapped []*Stream
	job := &Job{Inputs: g.Inputs(), Output: path}
	for _, s := range streams {
		if s == nil {
			continue
		}
		if s.graph != g {
			return nil, fmt.Errorf("stream %s belongs to another graph", s.label)
		}
		mapped = append(mapped, s)
		if s.input {
			job.Maps = append(job.Maps, s.label)
		} else {
			job.Maps = append(job.Maps, "["+s.label+"]")
		}
	}
	if len(job.Maps) == 0 {
		return nil, fmt.Errorf("no streams to map into %s", path)
	}

	filters := g.reachable(mapped)
	uses := make(map[string]int)
	for _, f := range filters {
		for _, in := range f.inputs {
			uses[in.label]++
		}
	}
	for _, s := range mapped {
		uses[s.label]++
	}

	var reused []string
	for label, n := range uses {
		if n > 1 {
			reused = append(reused, label)
		}
	}
	if len(reused) > 0 {
		sort.Strings(reused)
		return nil, fmt.Errorf("%w: %v", ErrStreamReused, reused)
	}

	job.FilterComplex = render(filters)
	return job, nil
}

// Args returns the engine command line, without the binary name.
func (j *Job) Args() []string {
	args := []string{"-y", "-hide_banner", "-loglevel", "error"}
	for _, in := range j.Inputs {
		args = append(args, "-i", in)
	}
	if j.FilterComplex != "" {
		args = append(args, "-filter_complex", j.FilterComplex)
	}
	for _, m := range j.Maps {
		args = append(args, "-map", m)
	}
	return append(args, j.Output)
}
