// Package infrastructure provides logging and its Fx modules.
package infrastructure

import (
	"context"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-binaural/internal/config"
)

// LoggerModule provides *zap.Logger.
var LoggerModule = fx.Module("logger",
	fx.Provide(NewZapLogger),
)

// NewZapLoggerParams holds dependencies for NewZapLogger.
type NewZapLoggerParams struct {
	fx.In
	Cfg *config.Config
	LC  fx.Lifecycle
}

// NewZapLogger creates the application logger and flushes it on stop.
func NewZapLogger(params NewZapLoggerParams) (*zap.Logger, error) {
	logger, err := NewLogger(params.Cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	params.LC.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return SyncLogger(logger)
		},
	})

	return logger, nil
}

// FxLogger routes Fx lifecycle events to zap.
type FxLogger struct {
	logger *zap.Logger
}

// NewFxLogger adapts logger to fxevent.Logger.
func NewFxLogger(logger *zap.Logger) fxevent.Logger {
	return &FxLogger{logger: logger.Named("fx")}
}

// LogEvent implements fxevent.Logger.
func (l *FxLogger) LogEvent(event fxevent.Event) {
	switch e := event.(type) {
	case *fxevent.OnStartExecuted:
		l.hook("OnStart", e.CallerName, e.FunctionName, e.Runtime.String(), e.Err)
	case *fxevent.OnStopExecuted:
		l.hook("OnStop", e.CallerName, e.FunctionName, e.Runtime.String(), e.Err)
	case *fxevent.Provided:
		if e.Err != nil {
			l.logger.Error("provide failed", zap.Strings("types", e.OutputTypeNames), zap.Error(e.Err))
			return
		}

		l.logger.Debug("provided", zap.String("types", strings.Join(e.OutputTypeNames, ", ")))
	case *fxevent.Invoked:
		if e.Err != nil {
			l.logger.Error("invoke failed", zap.String("function", e.FunctionName), zap.Error(e.Err))
		}
	case *fxevent.Stopping:
		l.logger.Info("stopping", zap.String("signal", e.Signal.String()))
	case *fxevent.RollingBack:
		l.logger.Error("start failed, rolling back", zap.Error(e.StartErr))
	case *fxevent.Started:
		if e.Err != nil {
			l.logger.Error("start failed", zap.Error(e.Err))
			return
		}

		l.logger.Info("started")
	case *fxevent.LoggerInitialized:
		if e.Err != nil {
			l.logger.Error("custom logger initialization failed", zap.Error(e.Err))
		}
	}
}

func (l *FxLogger) hook(kind, caller, function, runtime string, err error) {
	if err != nil {
		l.logger.Error(kind+" hook failed",
			zap.String("caller", caller),
			zap.String("function", function),
			zap.Error(err))

		return
	}

	l.logger.Debug(kind+" hook executed",
		zap.String("caller", caller),
		zap.String("function", function),
		zap.String("runtime", runtime))
}
