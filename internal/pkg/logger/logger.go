// internal/pkg/logger/logger.go
package logger

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// Logger 是全局的基础 logger 实例，在 Init 之后可用。
var Logger zerolog.Logger

// Init 初始化全局 logger。
// 本地开发时 (LOG_PRETTY=true) 使用 ConsoleWriter 提高可读性，
// 生产环境输出 JSON，方便日志采集。
func Init(serviceName string) {
	zerolog.TimeFieldFormat = time.RFC3339

	var w = zerolog.LevelWriter(zerolog.MultiLevelWriter(os.Stdout))
	if os.Getenv("LOG_PRETTY") == "true" {
		w = zerolog.MultiLevelWriter(zerolog.ConsoleWriter{Out: os.Stdout})
	}

	Logger = zerolog.New(w).With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}

// Ctx 返回一个与请求上下文绑定的 logger。
// 如果 ctx 中存在正在记录的 Span，会自动附加 trace_id / span_id，
// 从而把日志和 Jaeger 中的调用链关联起来。
func Ctx(ctx context.Context) *zerolog.Logger {
	span := trace.SpanFromContext(ctx)
	if sc := span.SpanContext(); sc.IsValid() {
		l := Logger.With().
			Str("trace_id", sc.TraceID().String()).
			Str("span_id", sc.SpanID().String()).
			Logger()
		return &l
	}
	return &Logger
}
