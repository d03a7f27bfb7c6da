package log

import (
	"context"

	"github.com/coachdesk/coachdesk/internal/config"
	"github.com/coachdesk/coachdesk/pkg/log/ctxlogger"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Module provides the process-wide zap logger.
var Module = fx.Provide(NewLogger)

// NewLogger builds the process logger: JSON to stdout, info level in
// production and debug elsewhere. Globals are replaced so early startup
// paths log through the same sink.
func NewLogger(cfg config.Config) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if !cfg.IsProduction() {
		zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	zapCfg.Encoding = "json"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	zapCfg.OutputPaths = []string{"stdout"}
	zapCfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := zapCfg.Build(zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, err
	}

	ctxlogger.SetServiceName(cfg.AppName)
	zap.ReplaceGlobals(logger)
	return logger, nil
}

// L returns a context-aware logger with request metadata attached.
func L(ctx context.Context) *zap.Logger {
	return ctxlogger.FromContext(ctx)
}
