package logger

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/exp/slog"
)

// Logger middleware для логирования входящих HTTP запросов
type Logger struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Logger {
	return &Logger{
		log: log.With(slog.String("component", "http_logger")),
	}
}

// Middleware возвращает middleware для операций huma
func (l *Logger) Middleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		start := time.Now()

		method := ctx.Method()
		path := ctx.URL().Path
		remoteAddr := ctx.RemoteAddr()

		next(ctx)

		l.request(method, path, ctx.Status(), time.Since(start), remoteAddr, ctx.Header("Range"))
	}
}

// Handler middleware для обычных chi-маршрутов (раздача файлов)
func (l *Logger) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		l.request(r.Method, r.URL.Path, status, time.Since(start), r.RemoteAddr, r.Header.Get("Range"),
			slog.Int("bytes", ww.BytesWritten()))
	})
}

func (l *Logger) request(method, path string, status int, duration time.Duration, remoteAddr, rangeHeader string, extra ...any) {
	args := []any{
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Duration("duration", duration),
		slog.String("remote_addr", remoteAddr),
	}
	if rangeHeader != "" {
		args = append(args, slog.String("range", rangeHeader))
	}
	args = append(args, extra...)

	l.log.Info("HTTP request", args...)
}
