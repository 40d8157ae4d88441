// internal/pkg/logger/logger.go
package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// Logger 是进程级别的根日志器，所有请求日志都从它派生。
var Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Init 设置服务名与日志级别。level 无法解析时退回 info。
func Init(serviceName, level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano
	Logger = zerolog.New(os.Stdout).Level(lvl).With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}

// SetOutput 替换日志输出，测试中用来捕获日志。
func SetOutput(w io.Writer) {
	Logger = Logger.Output(w)
}

// Ctx 返回一个带有链路信息 (trace_id / span_id) 的日志器。
func Ctx(ctx context.Context) *zerolog.Logger {
	l := Logger
	if ctx == nil {
		return &l
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		l = l.With().
			Str("trace_id", sc.TraceID().String()).
			Str("span_id", sc.SpanID().String()).
			Logger()
	}
	return &l
}
