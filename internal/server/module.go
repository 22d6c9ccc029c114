package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-binaural/binaural"
	"github.com/cwbudde/algo-binaural/internal/config"
)

const readHeaderTimeout = 10 * time.Second

// Module provides the HTTP server and binds it to the Fx lifecycle.
var Module = fx.Module("server",
	fx.Provide(
		NewRenderCacheFromConfig,
		NewPipeline,
		NewFromConfig,
	),
	fx.Invoke(RegisterHooks),
)

// NewRenderCacheFromConfig sizes the cache from the configuration.
func NewRenderCacheFromConfig(cfg *config.Config) (*RenderCache, error) {
	return NewRenderCache(cfg.Server.CacheSize)
}

// NewPipeline builds the render pipeline from the configuration.
func NewPipeline(cfg *config.Config, logger *zap.Logger) *binaural.Pipeline {
	return cfg.Pipeline(logger)
}

// NewServerParams holds dependencies for NewFromConfig.
type NewServerParams struct {
	fx.In
	Cfg      *config.Config
	Pipeline *binaural.Pipeline
	Cache    *RenderCache
	Logger   *zap.Logger
}

// NewFromConfig builds a Server from the configuration.
func NewFromConfig(params NewServerParams) *Server {
	return New(params.Pipeline, params.Cache, params.Logger, Options{
		DefaultBand:    params.Cfg.Band,
		MaxUploadBytes: params.Cfg.Server.MaxUploadBytes,
	})
}

// RegisterHooks listens on the configured address when the application
// starts and drains connections when it stops.
func RegisterHooks(lc fx.Lifecycle, cfg *config.Config, s *Server, logger *zap.Logger) {
	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           s,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", httpServer.Addr)
			if err != nil {
				logger.Error("Failed to listen", zap.String("addr", httpServer.Addr), zap.Error(err))

				return err
			}

			logger.Info("HTTP server listening", zap.String("addr", ln.Addr().String()))

			go func() {
				err := httpServer.Serve(ln)
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("HTTP server stopped", zap.Error(err))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Shutting down HTTP server")

			return httpServer.Shutdown(ctx)
		},
	})
}
