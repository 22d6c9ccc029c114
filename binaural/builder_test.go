package binaural

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-binaural/dsp/graph"
)

func TestBuildGraphTopology(t *testing.T) {
	t.Parallel()

	p, err := Derive("theta")
	require.NoError(t, err)

	g, err := BuildGraph(p)
	require.NoError(t, err)
	require.NoError(t, graph.Validate(g, nil))

	assert.Equal(t, []graph.Connection{{From: NodeSplit, FromPort: 0, To: NodeMerge, ToPort: 0}, {From: NodeMix, To: NodeMerge, ToPort: 1}},
		incoming(g, NodeMerge))
	assert.Equal(t, []graph.Connection{{From: NodeSplit, FromPort: 1, To: NodeChannel1}}, incoming(g, NodeChannel1))
	assert.Equal(t, []graph.Connection{{From: NodeSource, To: NodeSplit}}, incoming(g, NodeSplit))
	assert.Equal(t, []graph.Connection{{From: NodeMerge, To: NodeDestination}}, incoming(g, NodeDestination))

	dest, ok := g.Node(NodeDestination)
	require.True(t, ok)
	assert.InDelta(t, 2.0, dest.Params[graph.SettingChannels], 0)

	lfo, _ := g.Node(NodeLFO)
	assert.InDelta(t, 0.06, lfo.Params[graph.ParamFrequency], 1e-15)
}

func TestBuildGraphSurvivesJSON(t *testing.T) {
	t.Parallel()

	p, err := Derive("beta")
	require.NoError(t, err)

	g, err := BuildGraph(p)
	require.NoError(t, err)

	raw, err := g.JSON()
	require.NoError(t, err)

	back, err := graph.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, g, back)
}

func TestBuildGraphRejectsBadOptions(t *testing.T) {
	t.Parallel()

	p, err := Derive("alpha")
	require.NoError(t, err)

	_, err = BuildGraph(p, WithMixGain(2))
	assert.Error(t, err)
}
