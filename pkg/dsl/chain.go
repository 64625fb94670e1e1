package dsl

import "github.com/ofekfell/mediaflow/pkg/domain"

// Chain provides a fluent API for stacking unary actions on one input.
// The first failing step is kept and reported by Build; later steps are skipped.
type Chain struct {
	node domain.Node
	err  error
}

// From starts a chain on a reference string or a built node.
func From(input any) *Chain {
	n, err := normalizeOne("", input)
	return &Chain{node: n, err: err}
}

func (c *Chain) then(build func(any) (*domain.ActionNode, error)) *Chain {
	if c.err != nil {
		return c
	}
	n, err := build(c.node)
	if err != nil {
		return &Chain{err: err}
	}
	return &Chain{node: n}
}

func (c *Chain) Trim(start, duration float64) *Chain {
	return c.then(func(in any) (*domain.ActionNode, error) { return Trim(in, start, duration) })
}

func (c *Chain) Cut(x, y, width, height int) *Chain {
	return c.then(func(in any) (*domain.ActionNode, error) { return Cut(in, x, y, width, height) })
}

func (c *Chain) ChangeVolume(volume float64) *Chain {
	return c.then(func(in any) (*domain.ActionNode, error) { return ChangeVolume(in, volume) })
}

func (c *Chain) Scale(width, height int) *Chain {
	return c.then(func(in any) (*domain.ActionNode, error) { return Scale(in, width, height) })
}

func (c *Chain) Fade(fadeType string, startTime, duration float64) *Chain {
	return c.then(func(in any) (*domain.ActionNode, error) { return Fade(in, fadeType, startTime, duration) })
}

func (c *Chain) Rotate(angle float64) *Chain {
	return c.then(func(in any) (*domain.ActionNode, error) { return Rotate(in, angle) })
}

func (c *Chain) Speed(factor float64) *Chain {
	return c.then(func(in any) (*domain.ActionNode, error) { return Speed(in, factor) })
}

func (c *Chain) Blur(radius float64) *Chain {
	return c.then(func(in any) (*domain.ActionNode, error) { return Blur(in, radius) })
}

func (c *Chain) SetFPS(fps float64) *Chain {
	return c.then(func(in any) (*domain.ActionNode, error) { return SetFPS(in, fps) })
}

func (c *Chain) SetFormat(format string) *Chain {
	return c.then(func(in any) (*domain.ActionNode, error) { return SetFormat(in, format) })
}

func (c *Chain) AudioResample(sampleRate int) *Chain {
	return c.then(func(in any) (*domain.ActionNode, error) { return AudioResample(in, sampleRate) })
}

// Build returns the chained node, or the first error encountered.
func (c *Chain) Build() (domain.Node, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.node, nil
}
