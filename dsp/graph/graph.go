package graph

import (
	"encoding/json"
	"fmt"
	"math"
)

// Primitive node types.
const (
	TypeSource      = "source"
	TypeSplit       = "split"
	TypeMerge       = "merge"
	TypeGain        = "gain"
	TypeDelay       = "delay"
	TypeOscillator  = "oscillator"
	TypeDestination = "destination"
)

// AudioParam names.
const (
	ParamGain      = "gain"
	ParamDelayTime = "delayTime"
	ParamFrequency = "frequency"
)

// Static node settings, read once when the node runtime is created.
const (
	SettingOutputs      = "outputs"
	SettingInputs       = "inputs"
	SettingChannels     = "channels"
	SettingMaxDelayTime = "maxDelayTime"

	// SettingInterpolation holds an interp.Mode: 0 linear, 1 Hermite.
	SettingInterpolation = "interpolation"
)

// Node is one processing element of a graph.
type Node struct {
	ID     string             `json:"id"`
	Type   string             `json:"type"`
	Params map[string]float64 `json:"params,omitempty"`
}

// GetNum safely extracts a numeric parameter, returning def if missing or invalid.
func (n Node) GetNum(key string, def float64) float64 {
	if n.Params == nil {
		return def
	}

	v, ok := n.Params[key]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}

	return v
}

// Connection routes output port FromPort of node From into node To.
// With Param empty the signal feeds input port ToPort; otherwise it is summed
// into the named AudioParam of To.
type Connection struct {
	From     string `json:"from"`
	To       string `json:"to"`
	FromPort int    `json:"fromPort,omitempty"`
	ToPort   int    `json:"toPort,omitempty"`
	Param    string `json:"param,omitempty"`
}

// Graph is a serializable routing graph description.
type Graph struct {
	Nodes       []Node       `json:"nodes"`
	Connections []Connection `json:"connections"`
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{}
}

// AddNode appends a node and returns its ID.
func (g *Graph) AddNode(id, nodeType string, params map[string]float64) string {
	g.Nodes = append(g.Nodes, Node{ID: id, Type: nodeType, Params: params})
	return id
}

// Connect routes output port fromPort of from into input port toPort of to.
func (g *Graph) Connect(from string, fromPort int, to string, toPort int) {
	g.Connections = append(g.Connections, Connection{
		From:     from,
		To:       to,
		FromPort: fromPort,
		ToPort:   toPort,
	})
}

// ConnectParam sums output port fromPort of from into AudioParam param of to.
func (g *Graph) ConnectParam(from string, fromPort int, to, param string) {
	g.Connections = append(g.Connections, Connection{
		From:     from,
		To:       to,
		FromPort: fromPort,
		Param:    param,
	})
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}

	return Node{}, false
}

// JSON returns the indented JSON form of the graph.
func (g *Graph) JSON() ([]byte, error) {
	return json.MarshalIndent(g, "", "  ")
}

// Parse decodes a JSON graph description. An empty input yields an empty graph.
func Parse(raw []byte) (*Graph, error) {
	if len(raw) == 0 {
		return New(), nil
	}

	var g Graph

	err := json.Unmarshal(raw, &g)
	if err != nil {
		return nil, fmt.Errorf("graph: invalid json: %w", err)
	}

	return &g, nil
}
