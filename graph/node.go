package graph

import (
	"slices"

	"github.com/lixenwraith/ambient/constant"
)

// Node is a vertex of the signal graph
type Node interface {
	// Connect routes this node's output into dst
	Connect(dst Node)
	// ConnectParam adds this node's output to a parameter value (modulation)
	ConnectParam(p *Param)
	// Disconnect removes every outgoing edge
	Disconnect()
	// Dispose stops sources, removes all edges and releases the node; safe to repeat
	Dispose()
	// Kind names the node type
	Kind() string

	base() *node
}

// processor fills n.out for one block
type processor interface {
	process(block uint64)
}

// stopper is implemented by scheduled sources
type stopper interface {
	stopNow()
}

// node carries the edges, output buffer and render memo shared by all node types
type node struct {
	ctx  *Context
	kind string
	proc processor

	ins       []*node
	outs      []*node
	outParams []*Param
	params    []*Param

	out []float64
	mix []float64

	stamp    uint64 // block+1 when out holds the rendered block
	busy     bool
	disposed bool
}

func (n *node) init(ctx *Context, kind string, proc processor) {
	n.ctx = ctx
	n.kind = kind
	n.proc = proc
	n.out = make([]float64, constant.BlockSize)
	n.mix = make([]float64, constant.BlockSize)
}

func (n *node) base() *node {
	return n
}

// Kind implements Node
func (n *node) Kind() string {
	return n.kind
}

// Connect implements Node
func (n *node) Connect(dst Node) {
	if dst == nil {
		return
	}
	n.ctx.mu.Lock()
	defer n.ctx.mu.Unlock()

	d := dst.base()
	if n.disposed || d.disposed || d.ctx != n.ctx {
		return
	}
	if slices.Contains(n.outs, d) {
		return
	}
	n.outs = append(n.outs, d)
	d.ins = append(d.ins, n)
}

// ConnectParam implements Node
func (n *node) ConnectParam(p *Param) {
	if p == nil {
		return
	}
	n.ctx.mu.Lock()
	defer n.ctx.mu.Unlock()

	if n.disposed || p.ctx != n.ctx || (p.owner != nil && p.owner.disposed) {
		return
	}
	if slices.Contains(n.outParams, p) {
		return
	}
	n.outParams = append(n.outParams, p)
	p.ins = append(p.ins, n)
}

// Disconnect implements Node
func (n *node) Disconnect() {
	n.ctx.mu.Lock()
	defer n.ctx.mu.Unlock()
	n.disconnectLocked()
}

// Dispose implements Node
func (n *node) Dispose() {
	n.ctx.mu.Lock()
	defer n.ctx.mu.Unlock()
	n.disposeLocked()
}

func (n *node) disconnectLocked() {
	for _, d := range n.outs {
		d.ins = removeNode(d.ins, n)
	}
	n.outs = n.outs[:0]
	for _, p := range n.outParams {
		p.ins = removeNode(p.ins, n)
	}
	n.outParams = n.outParams[:0]
}

func (n *node) disposeLocked() {
	if n.disposed {
		return
	}
	if s, ok := n.proc.(stopper); ok {
		s.stopNow()
	}
	n.disconnectLocked()
	for _, in := range n.ins {
		in.outs = removeNode(in.outs, n)
	}
	n.ins = nil
	for _, p := range n.params {
		for _, m := range p.ins {
			m.outParams = removeParam(m.outParams, p)
		}
		p.ins = nil
	}
	n.disposed = true
	n.ctx.unregister(n)
}

// render returns the output for block, rendering it at most once
// A re-entered node (cycle without a delay) contributes silence
func (n *node) render(block uint64) []float64 {
	if n.stamp == block+1 {
		return n.out
	}
	if n.busy {
		return n.ctx.silence
	}
	n.busy = true
	n.proc.process(block)
	n.stamp = block + 1
	n.busy = false
	return n.out
}

// pullInputs sums every input for block into n.mix
func (n *node) pullInputs(block uint64) []float64 {
	clear(n.mix)
	for _, in := range n.ins {
		src := in.render(block)
		for i, v := range src {
			n.mix[i] += v
		}
	}
	return n.mix
}

func (n *node) newParam(name string, value, lo, hi float64) *Param {
	p := &Param{
		ctx:   n.ctx,
		owner: n,
		name:  name,
		lo:    lo,
		hi:    hi,
		buf:   make([]float64, constant.BlockSize),
	}
	p.cur.v0 = value
	n.params = append(n.params, p)
	return p
}

func removeNode(list []*node, n *node) []*node {
	if i := slices.Index(list, n); i >= 0 {
		return slices.Delete(list, i, i+1)
	}
	return list
}

func removeParam(list []*Param, p *Param) []*Param {
	if i := slices.Index(list, p); i >= 0 {
		return slices.Delete(list, i, i+1)
	}
	return list
}

// Destination sums its inputs into the context output
type Destination struct {
	node
}

func (d *Destination) process(block uint64) {
	copy(d.out, d.pullInputs(block))
}

// Gain scales its input by an automatable gain
type Gain struct {
	node
	Gain *Param
}

// NewGain creates a gain node with the given initial gain
func (c *Context) NewGain(gain float64) *Gain {
	c.mu.Lock()
	defer c.mu.Unlock()

	g := &Gain{}
	g.init(c, "gain", g)
	g.Gain = g.newParam("gain", gain, -maxParam, maxParam)
	c.register(&g.node)
	return g
}

func (g *Gain) process(block uint64) {
	in := g.pullInputs(block)
	gain := g.Gain.fill(block)
	for i, v := range in {
		g.out[i] = v * gain[i]
	}
}
