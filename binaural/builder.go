package binaural

import "github.com/cwbudde/algo-binaural/dsp/graph"

// Routing graph node IDs.
const (
	NodeSource      = "source"
	NodeSplit       = "split"
	NodeChannel1    = "ch1"
	NodeMerge       = "merge"
	NodeDestination = "destination"
)

// BuildGraph returns the stereo routing graph for p: channel 0 is wired
// straight to the merger, channel 1 through the modulation stage.
func BuildGraph(p Parameters, opts ...StageOption) (*graph.Graph, error) {
	stage, err := NewModulationStage(p.ModulationRate, opts...)
	if err != nil {
		return nil, err
	}

	g := graph.New()
	g.AddNode(NodeSource, graph.TypeSource, nil)
	g.AddNode(NodeSplit, graph.TypeSplit, map[string]float64{graph.SettingOutputs: 2})
	g.AddNode(NodeChannel1, graph.TypeGain, map[string]float64{graph.ParamGain: 1})

	g.Connect(NodeSource, 0, NodeSplit, 0)
	g.Connect(NodeSplit, 1, NodeChannel1, 0)

	wet := stage.Attach(g, NodeChannel1, 0)

	g.AddNode(NodeMerge, graph.TypeMerge, map[string]float64{graph.SettingInputs: 2})
	g.AddNode(NodeDestination, graph.TypeDestination, map[string]float64{graph.SettingChannels: 2})

	g.Connect(NodeSplit, 0, NodeMerge, 0)
	g.Connect(wet, 0, NodeMerge, 1)
	g.Connect(NodeMerge, 0, NodeDestination, 0)

	return g, nil
}
