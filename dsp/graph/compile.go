package graph

import (
	"fmt"

	"github.com/cwbudde/algo-binaural/dsp/core"
)

// compiledNode is a node with its runtime and resolved wiring.
type compiledNode struct {
	node    Node
	runtime Runtime
	// inputs holds the connections feeding each input port.
	inputs [][]Connection
	// params holds the connections modulating each declared param.
	params map[string][]Connection
	specs  []ParamSpec
	// outputs holds the buses returned by the last Process call.
	outputs []Bus
}

// program is a validated graph in execution order.
type program struct {
	order       []*compiledNode
	byID        map[string]*compiledNode
	destination *compiledNode
}

// Validate checks that g is a well-formed graph for reg without rendering it.
// A nil registry means DefaultRegistry.
func Validate(g *Graph, reg *Registry) error {
	if reg == nil {
		reg = DefaultRegistry()
	}

	_, err := compile(g, reg, Context{SampleRate: core.DefaultSampleRate})

	return err
}

//nolint:cyclop,funlen
func compile(g *Graph, reg *Registry, ctx Context) (*program, error) {
	if g == nil || len(g.Nodes) == 0 {
		return nil, fmt.Errorf("%w: graph has no nodes", ErrInvalidGraph)
	}

	prog := &program{byID: make(map[string]*compiledNode, len(g.Nodes))}
	declared := make([]*compiledNode, 0, len(g.Nodes))

	for _, n := range g.Nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("%w: node with empty id", ErrInvalidGraph)
		}

		if _, dup := prog.byID[n.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate node id %q", ErrInvalidGraph, n.ID)
		}

		factory := reg.Lookup(n.Type)
		if factory == nil {
			return nil, fmt.Errorf("%w: node %q type %q", ErrUnknownNodeType, n.ID, n.Type)
		}

		rt, err := factory(ctx, n)
		if err != nil {
			return nil, fmt.Errorf("graph: node %q: %w", n.ID, err)
		}

		cn := &compiledNode{
			node:    n,
			runtime: rt,
			inputs:  make([][]Connection, rt.Inputs()),
			params:  make(map[string][]Connection),
			specs:   rt.Params(),
		}
		prog.byID[n.ID] = cn
		declared = append(declared, cn)

		if n.Type == TypeDestination {
			if prog.destination != nil {
				return nil, fmt.Errorf("%w: more than one destination node", ErrInvalidGraph)
			}

			prog.destination = cn
		}
	}

	if prog.destination == nil {
		return nil, fmt.Errorf("%w: graph has no destination node", ErrInvalidGraph)
	}

	for _, c := range g.Connections {
		err := prog.wire(c)
		if err != nil {
			return nil, err
		}
	}

	order, err := topoSort(declared)
	if err != nil {
		return nil, err
	}

	prog.order = order

	return prog, nil
}

func (p *program) wire(c Connection) error {
	from, ok := p.byID[c.From]
	if !ok {
		return fmt.Errorf("%w: connection from unknown node %q", ErrInvalidGraph, c.From)
	}

	to, ok := p.byID[c.To]
	if !ok {
		return fmt.Errorf("%w: connection to unknown node %q", ErrInvalidGraph, c.To)
	}

	if c.From == c.To {
		return fmt.Errorf("%w: self-loop on %q", ErrInvalidGraph, c.From)
	}

	if from == p.destination {
		return fmt.Errorf("%w: destination %q cannot have outgoing connections", ErrInvalidGraph, c.From)
	}

	if c.FromPort < 0 || c.FromPort >= from.runtime.Outputs() {
		return fmt.Errorf("%w: %q has no output port %d", ErrInvalidGraph, c.From, c.FromPort)
	}

	if c.Param != "" {
		if !hasParam(to.specs, c.Param) {
			return fmt.Errorf("%w: %q has no param %q", ErrInvalidGraph, c.To, c.Param)
		}

		to.params[c.Param] = append(to.params[c.Param], c)

		return nil
	}

	if c.ToPort < 0 || c.ToPort >= len(to.inputs) {
		return fmt.Errorf("%w: %q has no input port %d", ErrInvalidGraph, c.To, c.ToPort)
	}

	to.inputs[c.ToPort] = append(to.inputs[c.ToPort], c)

	return nil
}

func hasParam(specs []ParamSpec, name string) bool {
	for _, s := range specs {
		if s.Name == name {
			return true
		}
	}

	return false
}

// upstream lists the distinct nodes feeding cn through ports or params.
func (cn *compiledNode) upstream() []string {
	var ids []string

	seen := make(map[string]bool)
	add := func(conns []Connection) {
		for _, c := range conns {
			if !seen[c.From] {
				seen[c.From] = true
				ids = append(ids, c.From)
			}
		}
	}

	for _, conns := range cn.inputs {
		add(conns)
	}

	for _, s := range cn.specs {
		add(cn.params[s.Name])
	}

	return ids
}

// topoSort orders nodes with Kahn's algorithm. Ties resolve in declaration
// order so the execution order is reproducible.
func topoSort(declared []*compiledNode) ([]*compiledNode, error) {
	index := make(map[string]int, len(declared))
	for i, cn := range declared {
		index[cn.node.ID] = i
	}

	inDegree := make([]int, len(declared))
	children := make([][]int, len(declared))

	for i, cn := range declared {
		for _, id := range cn.upstream() {
			parent := index[id]
			children[parent] = append(children[parent], i)
			inDegree[i]++
		}
	}

	done := make([]bool, len(declared))
	order := make([]*compiledNode, 0, len(declared))

	for len(order) < len(declared) {
		next := -1

		for i := range declared {
			if !done[i] && inDegree[i] == 0 {
				next = i
				break
			}
		}

		if next < 0 {
			return nil, fmt.Errorf("%w: %d nodes unresolved", ErrCycle, len(declared)-len(order))
		}

		done[next] = true
		order = append(order, declared[next])

		for _, child := range children[next] {
			inDegree[child]--
		}
	}

	return order, nil
}
