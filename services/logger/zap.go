package logsvc

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/trezcool/schoolops/core"
)

// NewZap builds a console logger in debug mode and a JSON one otherwise.
func NewZap(conf *core.Config) (*zap.Logger, error) {
	var zc zap.Config
	if conf.Debug {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
		zc.EncoderConfig.TimeKey = "timestamp"
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		zc.OutputPaths = []string{"stdout"}
		zc.ErrorOutputPaths = []string{"stderr"}
	}
	if conf.TestMode {
		zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}

	lg, err := zc.Build()
	if err != nil {
		return nil, err
	}
	return lg.With(zap.String("app", conf.AppName), zap.String("build", conf.Build)), nil
}
