// Command binaural renders a stereo WAV recording with a band-driven
// modulation applied to the right channel.
//
// Usage:
//
//	binaural [flags] -in input.wav
//
// Examples:
//
//	binaural -in speech.wav -band theta
//	binaural -in speech.wav -band alpha -out alpha.wav -analyze
//	binaural -dump-graph -band beta > beta.json
//	binaural -in speech.wav -graph beta.json
//	binaural -list-bands
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-binaural/binaural"
	"github.com/cwbudde/algo-binaural/dsp/buffer"
	"github.com/cwbudde/algo-binaural/dsp/graph"
	"github.com/cwbudde/algo-binaural/internal/config"
	"github.com/cwbudde/algo-binaural/internal/infrastructure"
	"github.com/cwbudde/algo-binaural/measure/stereo"
	"github.com/cwbudde/algo-binaural/wav"
)

var errUsage = errors.New("usage")

type options struct {
	in         string
	out        string
	band       string
	configPath string
	logLevel   string
	graphPath  string
	analyze    bool
	dumpGraph  bool
	listBands  bool
	dither     bool
	ditherSeed int64
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	if err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}

		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, *flag.FlagSet, error) {
	var o options

	fs := flag.NewFlagSet("binaural", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.in, "in", "", "input WAV file")
	fs.StringVar(&o.out, "out", "", "output WAV file (default from config, "+config.DefaultOutput+")")
	fs.StringVar(&o.band, "band", "", "frequency band: "+fmt.Sprint(binaural.BandNames()))
	fs.StringVar(&o.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&o.graphPath, "graph", "", "render through a routing graph JSON file (see -dump-graph) instead of the band graph")
	fs.BoolVar(&o.analyze, "analyze", false, "print channel statistics of the rendering")
	fs.BoolVar(&o.dumpGraph, "dump-graph", false, "print the routing graph as JSON and exit")
	fs.BoolVar(&o.listBands, "list-bands", false, "list available bands and exit")
	fs.BoolVar(&o.dither, "dither", false, "add TPDF dither when quantizing")
	fs.Int64Var(&o.ditherSeed, "dither-seed", 1, "dither noise seed")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: binaural [flags] -in input.wav\n\n")
		fmt.Fprintf(stderr, "Renders a binaural variant of a stereo recording.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	err := fs.Parse(args)
	if err != nil {
		return o, fs, errUsage
	}

	return o, fs, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	o, fs, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	if o.listBands {
		return printBands(stdout)
	}

	cfg, err := loadConfig(o, fs)
	if err != nil {
		return err
	}

	logger, err := infrastructure.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer infrastructure.SyncLogger(logger) //nolint:errcheck

	if o.dumpGraph {
		return dumpGraph(stdout, cfg, o, logger)
	}

	if o.in == "" {
		fs.Usage()
		return errUsage
	}

	return renderFile(ctx, cfg, o, stdout, logger)
}

// routingGraph returns the graph loaded from -graph, or nil when the band
// graph should be used.
func routingGraph(o options) (*graph.Graph, error) {
	if o.graphPath == "" {
		return nil, nil //nolint:nilnil
	}

	raw, err := os.ReadFile(o.graphPath)
	if err != nil {
		return nil, err
	}

	g, err := graph.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("graph file %s: %w", o.graphPath, err)
	}

	return g, nil
}

func dumpGraph(w io.Writer, cfg *config.Config, o options, logger *zap.Logger) error {
	g, err := routingGraph(o)
	if err != nil {
		return err
	}

	if g == nil {
		g, err = cfg.Renderer(logger).Graph(cfg.Band)
	} else {
		err = graph.Validate(g, nil)
	}

	if err != nil {
		return err
	}

	data, err := g.JSON()
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "%s\n", data)

	return err
}

func loadConfig(o options, fs *flag.FlagSet) (*config.Config, error) {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return nil, err
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if o.band != "" {
		cfg.Band = o.band
	}

	if o.out != "" {
		cfg.Output = o.out
	}

	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}

	if set["dither"] {
		cfg.Encoder.Dither = o.dither
	}

	if set["dither-seed"] {
		cfg.Encoder.DitherSeed = o.ditherSeed
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func renderFile(ctx context.Context, cfg *config.Config, o options, stdout io.Writer, logger *zap.Logger) error {
	g, err := routingGraph(o)
	if err != nil {
		return err
	}

	src, err := os.Open(o.in)
	if err != nil {
		return err
	}
	defer src.Close()

	p := cfg.Pipeline(logger)

	var data []byte
	if g != nil {
		data, err = p.ProcessGraph(ctx, src, g)
	} else {
		data, err = p.Process(ctx, src, cfg.Band)
	}

	if err != nil {
		return err
	}

	err = writeOutput(cfg.Output, data)
	if err != nil {
		return &binaural.StageError{Stage: binaural.StageEncode, Err: err}
	}

	logger.Info("wrote rendering",
		zap.String("path", cfg.Output),
		zap.Int("bytes", len(data)),
		zap.String("band", cfg.Band))

	if !o.analyze {
		return nil
	}

	out, err := wav.Decode(bytes.NewReader(data))
	if err != nil {
		return err
	}

	return printAnalysis(stdout, out)
}

// writeOutput writes data to path. A partially written file is removed.
func writeOutput(path string, data []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	_, err = f.Write(data)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		os.Remove(path) //nolint:errcheck
	}

	return err
}

func printBands(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Band\tMin [Hz]\tMax [Hz]\tCenter [Hz]\tRate [Hz]\n")
	fmt.Fprintf(tw, "----\t--------\t--------\t-----------\t---------\n")

	for _, b := range binaural.Bands() {
		p, err := binaural.Derive(b.Name)
		if err != nil {
			return err
		}

		fmt.Fprintf(tw, "%s\t%.0f\t%.0f\t%.1f\t%.3f\n", b.Name, b.MinHz, b.MaxHz, p.CenterHz, p.ModulationRate)
	}

	return tw.Flush()
}

func printAnalysis(w io.Writer, a *buffer.Audio) error {
	report, err := stereo.Analyze(a)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Channel\tRMS\tPeak\tDominant [Hz]\n")
	fmt.Fprintf(tw, "-------\t---\t----\t-------------\n")

	for i, c := range report.Channels {
		fmt.Fprintf(tw, "%d\t%.6f\t%.6f\t%.2f\n", i, c.RMS, c.Peak, c.DominantHz)
	}

	err = tw.Flush()
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "frames=%d rate=%d correlation=%.6f max_diff=%.6f\n",
		report.Frames, report.SampleRate, report.Correlation, report.MaxDiff)

	return err
}
