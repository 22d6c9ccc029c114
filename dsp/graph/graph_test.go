package graph

import (
	"errors"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("empty input yields empty graph", func(t *testing.T) {
		t.Parallel()

		g, err := Parse(nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(g.Nodes) != 0 || len(g.Connections) != 0 {
			t.Fatalf("graph = %+v, want empty", g)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		t.Parallel()

		_, err := Parse([]byte("{nodes"))
		if err == nil || !strings.Contains(err.Error(), "invalid json") {
			t.Fatalf("err = %v, want invalid json error", err)
		}
	})

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		g := New()
		g.AddNode("in", TypeSource, nil)
		g.AddNode("lfo", TypeOscillator, map[string]float64{ParamFrequency: 0.1})
		g.AddNode("d", TypeDelay, nil)
		g.AddNode("out", TypeDestination, nil)
		g.Connect("in", 0, "d", 0)
		g.ConnectParam("lfo", 0, "d", ParamDelayTime)
		g.Connect("d", 0, "out", 0)

		raw, err := g.JSON()
		if err != nil {
			t.Fatalf("JSON: %v", err)
		}

		back, err := Parse(raw)
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}

		if len(back.Nodes) != 4 || len(back.Connections) != 3 {
			t.Fatalf("got %d nodes %d connections, want 4 and 3", len(back.Nodes), len(back.Connections))
		}

		if back.Connections[1].Param != ParamDelayTime {
			t.Fatalf("param = %q, want %q", back.Connections[1].Param, ParamDelayTime)
		}

		lfo, ok := back.Node("lfo")
		if !ok || lfo.GetNum(ParamFrequency, 0) != 0.1 {
			t.Fatalf("lfo = %+v, want frequency 0.1", lfo)
		}
	})
}

func TestNodeGetNum(t *testing.T) {
	t.Parallel()

	n := Node{Params: map[string]float64{"x": 2, "bad": nan()}}

	if got := n.GetNum("x", 1); got != 2 {
		t.Fatalf("GetNum(x) = %v, want 2", got)
	}

	if got := n.GetNum("bad", 1); got != 1 {
		t.Fatalf("GetNum(bad) = %v, want default", got)
	}

	if got := (Node{}).GetNum("x", 3); got != 3 {
		t.Fatalf("GetNum on nil params = %v, want 3", got)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		build func(g *Graph)
		want  error
	}{
		{
			name:  "no nodes",
			build: func(*Graph) {},
			want:  ErrInvalidGraph,
		},
		{
			name: "empty id",
			build: func(g *Graph) {
				g.AddNode("", TypeGain, nil)
			},
			want: ErrInvalidGraph,
		},
		{
			name: "duplicate id",
			build: func(g *Graph) {
				g.AddNode("x", TypeGain, nil)
				g.AddNode("x", TypeDestination, nil)
			},
			want: ErrInvalidGraph,
		},
		{
			name: "unknown type",
			build: func(g *Graph) {
				g.AddNode("x", "reverb", nil)
			},
			want: ErrUnknownNodeType,
		},
		{
			name: "no destination",
			build: func(g *Graph) {
				g.AddNode("x", TypeGain, nil)
			},
			want: ErrInvalidGraph,
		},
		{
			name: "two destinations",
			build: func(g *Graph) {
				g.AddNode("a", TypeDestination, nil)
				g.AddNode("b", TypeDestination, nil)
			},
			want: ErrInvalidGraph,
		},
		{
			name: "unknown endpoint",
			build: func(g *Graph) {
				g.AddNode("out", TypeDestination, nil)
				g.Connect("ghost", 0, "out", 0)
			},
			want: ErrInvalidGraph,
		},
		{
			name: "self loop",
			build: func(g *Graph) {
				g.AddNode("g", TypeGain, nil)
				g.AddNode("out", TypeDestination, nil)
				g.Connect("g", 0, "g", 0)
			},
			want: ErrInvalidGraph,
		},
		{
			name: "output port out of range",
			build: func(g *Graph) {
				g.AddNode("s", TypeSplit, nil)
				g.AddNode("out", TypeDestination, nil)
				g.Connect("s", 2, "out", 0)
			},
			want: ErrInvalidGraph,
		},
		{
			name: "input port out of range",
			build: func(g *Graph) {
				g.AddNode("g", TypeGain, nil)
				g.AddNode("out", TypeDestination, nil)
				g.Connect("g", 0, "out", 1)
			},
			want: ErrInvalidGraph,
		},
		{
			name: "unknown param",
			build: func(g *Graph) {
				g.AddNode("lfo", TypeOscillator, nil)
				g.AddNode("g", TypeGain, nil)
				g.AddNode("out", TypeDestination, nil)
				g.ConnectParam("lfo", 0, "g", ParamDelayTime)
			},
			want: ErrInvalidGraph,
		},
		{
			name: "edge leaving destination",
			build: func(g *Graph) {
				g.AddNode("out", TypeDestination, nil)
				g.AddNode("g", TypeGain, nil)
				g.Connect("out", 0, "g", 0)
			},
			want: ErrInvalidGraph,
		},
		{
			name: "bad max delay",
			build: func(g *Graph) {
				g.AddNode("d", TypeDelay, map[string]float64{SettingMaxDelayTime: 0})
				g.AddNode("out", TypeDestination, nil)
			},
			want: ErrInvalidGraph,
		},
		{
			name: "bad port count",
			build: func(g *Graph) {
				g.AddNode("m", TypeMerge, map[string]float64{SettingInputs: 1.5})
				g.AddNode("out", TypeDestination, nil)
			},
			want: ErrInvalidGraph,
		},
		{
			name: "cycle",
			build: func(g *Graph) {
				g.AddNode("a", TypeGain, nil)
				g.AddNode("b", TypeGain, nil)
				g.AddNode("out", TypeDestination, nil)
				g.Connect("a", 0, "b", 0)
				g.Connect("b", 0, "a", 0)
				g.Connect("b", 0, "out", 0)
			},
			want: ErrCycle,
		},
		{
			name: "bad interpolation",
			build: func(g *Graph) {
				g.AddNode("d", TypeDelay, map[string]float64{SettingInterpolation: 2})
				g.AddNode("out", TypeDestination, nil)
				g.Connect("d", 0, "out", 0)
			},
			want: ErrInvalidGraph,
		},
		{
			name: "fractional interpolation",
			build: func(g *Graph) {
				g.AddNode("d", TypeDelay, map[string]float64{SettingInterpolation: 0.5})
				g.AddNode("out", TypeDestination, nil)
				g.Connect("d", 0, "out", 0)
			},
			want: ErrInvalidGraph,
		},
		{
			name: "param cycle",
			build: func(g *Graph) {
				g.AddNode("a", TypeGain, nil)
				g.AddNode("b", TypeGain, nil)
				g.AddNode("out", TypeDestination, nil)
				g.Connect("a", 0, "b", 0)
				g.ConnectParam("b", 0, "a", ParamGain)
				g.Connect("b", 0, "out", 0)
			},
			want: ErrCycle,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			g := New()
			tc.build(g)

			err := Validate(g, nil)
			if !errors.Is(err, tc.want) {
				t.Fatalf("Validate() = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestValidateAcceptsWellFormedGraph(t *testing.T) {
	t.Parallel()

	err := Validate(swapGraph(), DefaultRegistry())
	if err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestTopoSortFollowsDeclarationOrder(t *testing.T) {
	t.Parallel()

	g := New()
	g.AddNode("out", TypeDestination, nil)
	g.AddNode("b", TypeGain, nil)
	g.AddNode("a", TypeSource, nil)
	g.AddNode("c", TypeSource, nil)
	g.Connect("a", 0, "b", 0)
	g.Connect("c", 0, "out", 0)
	g.Connect("b", 0, "out", 0)

	prog, err := compile(g, DefaultRegistry(), Context{SampleRate: 48000})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	var ids []string
	for _, cn := range prog.order {
		ids = append(ids, cn.node.ID)
	}

	if got, want := strings.Join(ids, ","), "a,b,c,out"; got != want {
		t.Fatalf("order = %s, want %s", got, want)
	}
}
