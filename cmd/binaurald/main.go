// Command binaurald serves binaural renderings over HTTP.
//
// Usage:
//
//	binaurald [-config config.yaml]
//
// Endpoints:
//
//	POST /v1/render?band=alpha   body: WAV, response: WAV
//	GET  /v1/bands
//	GET  /healthz
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/fx"

	"github.com/cwbudde/algo-binaural/internal/config"
	"github.com/cwbudde/algo-binaural/internal/infrastructure"
	"github.com/cwbudde/algo-binaural/internal/server"
)

const shutdownTimeout = 30 * time.Second

func newApp(configPath string) *fx.App {
	return fx.New(
		config.Module,
		infrastructure.LoggerModule,
		server.Module,
		fx.Supply(config.Path(configPath)),
		fx.WithLogger(infrastructure.NewFxLogger),
	)
}

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	flag.Parse()

	app := newApp(*configPath)

	startCtx, cancel := context.WithTimeout(context.Background(), app.StartTimeout())
	err := app.Start(startCtx)
	cancel()

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	fmt.Printf("Received signal: %s, initiating shutdown.\n", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	err = app.Stop(shutdownCtx)
	cancel()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
		os.Exit(1)
	}
}
